package source

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const transcription = `<text src="ms"><w n="1">بسم</w></text>`

func fastFetcher() *Fetcher {
	return &Fetcher{Backoff: time.Millisecond}
}

func TestFetch_File(t *testing.T) {
	p := filepath.Join(t.TempDir(), "sura1.xml")
	os.WriteFile(p, []byte(transcription), 0o644)

	in, err := Fetch(context.Background(), p)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(in.Data) != transcription || in.Name != "sura1.xml" || in.Location != p {
		t.Errorf("input = %+v", in)
	}
	if in.Digest != Digest([]byte(transcription)) || len(in.Digest) != 64 {
		t.Errorf("digest = %q", in.Digest)
	}
}

func TestFetch_MissingFile(t *testing.T) {
	if _, err := Fetch(context.Background(), filepath.Join(t.TempDir(), "nope.xml")); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestFetch_URL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(transcription))
	}))
	defer ts.Close()

	in, err := fastFetcher().Fetch(context.Background(), ts.URL+"/files/ms-12.xml")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(in.Data) != transcription || in.Name != "ms-12.xml" {
		t.Errorf("input = %+v", in)
	}
}

func TestFetch_Retry(t *testing.T) {
	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer ts.Close()

	in, err := fastFetcher().Fetch(context.Background(), ts.URL+"/a.xml")
	if err != nil {
		t.Fatalf("Fetch with retries: %v", err)
	}
	if attempts != 3 || string(in.Data) != "ok" {
		t.Errorf("attempts = %d, data = %q", attempts, in.Data)
	}
}

func TestFetch_AllFail(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	if _, err := fastFetcher().Fetch(context.Background(), ts.URL); err == nil {
		t.Error("expected error after all retries exhausted")
	}
}

func TestFetch_NotFoundIsNotRetried(t *testing.T) {
	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	if _, err := fastFetcher().Fetch(context.Background(), ts.URL); err == nil {
		t.Error("expected error for 404")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func zipped(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range []string{"README.txt", "export/ms-7.xml"} {
		content, ok := files[name]
		if !ok {
			continue
		}
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		w.Write([]byte(content))
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func TestFetch_Zip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "export.zip")
	os.WriteFile(p, zipped(t, map[string]string{
		"README.txt":      "not a transcription",
		"export/ms-7.xml": transcription,
	}), 0o644)

	in, err := Fetch(context.Background(), p)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(in.Data) != transcription || in.Name != "ms-7.xml" {
		t.Errorf("input = %+v", in)
	}
	if in.Digest != Digest([]byte(transcription)) {
		t.Error("digest should cover the extracted transcription")
	}
}

func TestFetch_ZipWithoutXML(t *testing.T) {
	p := filepath.Join(t.TempDir(), "export.zip")
	os.WriteFile(p, zipped(t, map[string]string{"README.txt": "nothing"}), 0o644)

	if _, err := Fetch(context.Background(), p); err == nil {
		t.Error("expected error for a zip without xml")
	}
}

func TestIsURL(t *testing.T) {
	tests := map[string]bool{
		"http://example.org/a.xml":  true,
		"https://example.org/a.xml": true,
		"/tmp/a.xml":                false,
		"ftp://example.org/a.xml":   false,
		"a.xml":                     false,
	}
	for in, want := range tests {
		if got := IsURL(in); got != want {
			t.Errorf("IsURL(%q) = %v, want %v", in, got, want)
		}
	}
}
