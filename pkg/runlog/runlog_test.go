package runlog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func tempLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestOpen_CreatesTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer l.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("db file not created: %v", err)
	}
	runs, err := l.List(0)
	if err != nil {
		t.Fatalf("List on empty db: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected 0 runs, got %d", len(runs))
	}
}

func TestStartFinish(t *testing.T) {
	l := tempLedger(t)

	id, err := l.Start(Run{Mode: "full", Transport: "cli", Input: "ms.xml", InputDigest: "abc", TablesID: "cc-rasm", TablesDigest: "def"})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(id) != 36 {
		t.Errorf("id = %q, want a uuid", id)
	}

	r, err := l.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if r.Status != StatusRunning || r.FinishedAt != nil || r.Error != nil {
		t.Errorf("running run = %+v", r)
	}

	if err := l.Finish(id, Outcome{Source: "Ms-1", Output: "ms_trans.xml", Words: 4, Clusters: 20}); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	r, err = l.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if r.Status != StatusOK || r.FinishedAt == nil || r.Words != 4 || r.Clusters != 20 || r.Source != "Ms-1" {
		t.Errorf("finished run = %+v", r)
	}
	if r.Mode != "full" || r.TablesID != "cc-rasm" || r.InputDigest != "abc" {
		t.Errorf("run header = %+v", r)
	}
}

func TestFinish_Failed(t *testing.T) {
	l := tempLedger(t)

	id, _ := l.Start(Run{Mode: "plain", Transport: "http", Input: "-"})
	if err := l.Finish(id, Outcome{Err: errors.New("word 3: unknown letter")}); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	r, err := l.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if r.Status != StatusFailed || r.Error == nil || *r.Error != "word 3: unknown letter" {
		t.Errorf("failed run = %+v", r)
	}
}

func TestFinish_Unknown(t *testing.T) {
	l := tempLedger(t)
	if err := l.Finish("missing", Outcome{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, err := l.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestList_NewestFirst(t *testing.T) {
	l := tempLedger(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	l.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	var ids []string
	for _, in := range []string{"a.xml", "b.xml", "c.xml"} {
		id, err := l.Start(Run{Mode: "plain", Transport: "cli", Input: in})
		if err != nil {
			t.Fatalf("Start: %v", err)
		}
		ids = append(ids, id)
	}
	l.Finish(ids[1], Outcome{Err: errors.New("boom")})

	runs, err := l.List(0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(runs) != 3 || runs[0].Input != "c.xml" || runs[2].Input != "a.xml" {
		t.Errorf("order = %v", runs)
	}

	limited, err := l.List(2)
	if err != nil {
		t.Fatalf("List(2): %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("List(2) = %d runs", len(limited))
	}

	counts, err := l.Counts()
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts[StatusRunning] != 2 || counts[StatusFailed] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	id, _ := l.Start(Run{Mode: "plain", Transport: "cli", Input: "a.xml"})
	l.Close()

	l, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer l.Close()
	if _, err := l.Get(id); err != nil {
		t.Errorf("run lost across reopen: %v", err)
	}
}
