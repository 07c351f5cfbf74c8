// CLAUDE:SUMMARY Transport-agnostic endpoints (transform, segment, describe tables, runs) shared by the HTTP router and the MCP tools.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/karina-jasmin/quran-collate/pkg/kit"
	"github.com/karina-jasmin/quran-collate/pkg/plaintext"
	"github.com/karina-jasmin/quran-collate/pkg/runlog"
	"github.com/karina-jasmin/quran-collate/pkg/segment"
	"github.com/karina-jasmin/quran-collate/pkg/source"
	"github.com/karina-jasmin/quran-collate/pkg/tables"
	"github.com/karina-jasmin/quran-collate/pkg/textprep"
	"github.com/karina-jasmin/quran-collate/pkg/transform"
)

// errNoLedger is returned by the run endpoints when no ledger is configured.
var errNoLedger = errors.New("run ledger disabled")

// Service backs every endpoint: the table registry, an optional run ledger
// and the worker bound handed to the segmentation engine.
type Service struct {
	reg     *tables.Registry
	ledger  *runlog.Ledger
	workers int
	logger  *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLedger records every transformation in l.
func WithLedger(l *runlog.Ledger) Option {
	return func(s *Service) { s.ledger = l }
}

// WithWorkers bounds the words segmented in parallel per request.
func WithWorkers(n int) Option {
	return func(s *Service) { s.workers = n }
}

// WithLogger sets the logger of the endpoints. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService returns a Service over reg.
func NewService(reg *tables.Registry, opts ...Option) *Service {
	s := &Service{
		reg:     reg,
		workers: 1,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Shared request/response types used by both HTTP and MCP transports.

type transformReq struct {
	Mode   transform.Mode
	Tables string
	Name   string
	Input  []byte
	Vowels bool
}

type transformResponse struct {
	RunID    string         `json:"run_id,omitempty"`
	Tables   string         `json:"tables"`
	Mode     transform.Mode `json:"mode"`
	Source   string         `json:"source,omitempty"`
	Words    int            `json:"words"`
	Clusters int            `json:"clusters,omitempty"`
	Output   string         `json:"output"`
}

type segmentReq struct {
	Tables string
	Word   segment.Word
}

type segmentResponse struct {
	Tables   string            `json:"tables"`
	Word     segment.Word      `json:"word"`
	Clusters []segment.Cluster `json:"clusters"`
}

type tablesResponse struct {
	Tables []tables.SetInfo `json:"tables"`
}

type runsReq struct {
	Limit int
}

type runsResponse struct {
	Runs   []runlog.Run          `json:"runs"`
	Counts map[runlog.Status]int `json:"counts"`
}

func (s *Service) transformEndpoint() kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*transformReq)
		if len(req.Input) == 0 {
			return nil, badRequest("empty transcription")
		}
		set, err := s.reg.Get(req.Tables)
		if err != nil {
			return nil, err
		}

		runID := s.startRun(ctx, req, set)
		p := transform.New(set, segment.WithWorkers(s.workers))
		res, err := p.Run(ctx, req.Mode, req.Input, plaintext.Options{Vowels: req.Vowels})
		s.finishRun(runID, res, err)
		if err != nil {
			return nil, err
		}

		return transformResponse{
			RunID:    runID,
			Tables:   set.Manifest.ID,
			Mode:     res.Mode,
			Source:   res.Source,
			Words:    res.Words,
			Clusters: res.Clusters,
			Output:   string(res.Output),
		}, nil
	}
}

// startRun records a running run. Ledger failures never fail the request.
func (s *Service) startRun(ctx context.Context, req *transformReq, set *tables.Set) string {
	if s.ledger == nil {
		return ""
	}
	id, err := s.ledger.Start(runlog.Run{
		Mode:         string(req.Mode),
		Transport:    kit.GetTransport(ctx),
		Input:        req.Name,
		InputDigest:  source.Digest(req.Input),
		TablesID:     set.Manifest.ID,
		TablesDigest: set.Digest,
	})
	if err != nil {
		s.logger.Warn("record run", "error", err)
		return ""
	}
	return id
}

func (s *Service) finishRun(id string, res *transform.Result, runErr error) {
	if id == "" {
		return
	}
	o := runlog.Outcome{Err: runErr}
	if res != nil {
		o.Source, o.Words, o.Clusters = res.Source, res.Words, res.Clusters
	}
	if err := s.ledger.Finish(id, o); err != nil {
		s.logger.Warn("record run outcome", "run", id, "error", err)
	}
}

// segmentEndpoint segments one flattened word. The text between control
// markers is cleaned; the markers are kept.
func (s *Service) segmentEndpoint() kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		req := request.(*segmentReq)
		set, err := s.reg.Get(req.Tables)
		if err != nil {
			return nil, err
		}
		w := req.Word
		w.Text = textprep.ForTables(set).CleanWord(w.Text)
		if w.Text == "" {
			return nil, badRequest("empty word")
		}
		clusters, err := segment.New(set).Segment(w)
		if err != nil {
			return nil, err
		}
		return segmentResponse{Tables: set.Manifest.ID, Word: w, Clusters: clusters}, nil
	}
}

func (s *Service) listTablesEndpoint() kit.Endpoint {
	return func(_ context.Context, _ any) (any, error) {
		return tablesResponse{Tables: s.reg.ListSets()}, nil
	}
}

func (s *Service) listRunsEndpoint() kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		if s.ledger == nil {
			return nil, errNoLedger
		}
		req := request.(*runsReq)
		runs, err := s.ledger.List(req.Limit)
		if err != nil {
			return nil, err
		}
		counts, err := s.ledger.Counts()
		if err != nil {
			return nil, err
		}
		if runs == nil {
			runs = []runlog.Run{}
		}
		return runsResponse{Runs: runs, Counts: counts}, nil
	}
}

func (s *Service) getRunEndpoint() kit.Endpoint {
	return func(_ context.Context, request any) (any, error) {
		if s.ledger == nil {
			return nil, errNoLedger
		}
		return s.ledger.Get(request.(string))
	}
}

// badRequestError marks a request the caller must fix.
type badRequestError struct{ msg string }

func (e *badRequestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &badRequestError{msg: fmt.Sprintf(format, args...)}
}
