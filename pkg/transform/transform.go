// CLAUDE:SUMMARY Pipeline from transcription bytes to plain text or TEI: clean, flatten, segment, assemble.
package transform

import (
	"context"
	"fmt"

	"github.com/karina-jasmin/quran-collate/pkg/markup"
	"github.com/karina-jasmin/quran-collate/pkg/plaintext"
	"github.com/karina-jasmin/quran-collate/pkg/segment"
	"github.com/karina-jasmin/quran-collate/pkg/tables"
	"github.com/karina-jasmin/quran-collate/pkg/tei"
	"github.com/karina-jasmin/quran-collate/pkg/textprep"
)

// Mode selects the output format.
type Mode string

const (
	ModePlain Mode = "plain"
	ModeFull  Mode = "full"
)

// ParseMode accepts the mode names and the historical plain_trans and
// full_trans spellings.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "plain", "plain_trans":
		return ModePlain, nil
	case "full", "full_trans", "tei":
		return ModeFull, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// Extension returns the output file extension of the mode.
func (m Mode) Extension() string {
	if m == ModeFull {
		return ".xml"
	}
	return ".txt"
}

// Result is the output of one transformation.
type Result struct {
	Mode     Mode   `json:"mode"`
	Source   string `json:"source,omitempty"`
	Words    int    `json:"words"`
	Clusters int    `json:"clusters,omitempty"`
	Output   []byte `json:"-"`
}

// Pipeline transforms transcriptions with one table set. It is safe for
// concurrent use.
type Pipeline struct {
	tables *tables.Set
	prep   *textprep.Preprocessor
	engine *segment.Engine
}

// New returns a Pipeline over t.
func New(t *tables.Set, opts ...segment.Option) *Pipeline {
	return &Pipeline{
		tables: t,
		prep:   textprep.ForTables(t),
		engine: segment.New(t, opts...),
	}
}

// Tables returns the table set of the pipeline.
func (p *Pipeline) Tables() *tables.Set { return p.tables }

// Words parses and flattens a transcription.
func (p *Pipeline) Words(input []byte) (*markup.Document, []segment.Word, error) {
	doc, err := markup.ParseBytes(input)
	if err != nil {
		return nil, nil, err
	}
	words, err := markup.Flatten(doc, p.prep.Clean)
	if err != nil {
		return nil, nil, err
	}
	return doc, words, nil
}

// Plain renders a transcription as plain text.
func (p *Pipeline) Plain(ctx context.Context, input []byte, opts plaintext.Options) (*Result, error) {
	doc, words, err := p.Words(input)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text, err := plaintext.Assemble(words, p.tables, opts)
	if err != nil {
		return nil, err
	}
	return &Result{Mode: ModePlain, Source: doc.Source, Words: len(words), Output: []byte(text)}, nil
}

// Full renders a transcription as a TEI document.
func (p *Pipeline) Full(ctx context.Context, input []byte) (*Result, error) {
	if len(p.tables.Skeleton) == 0 || len(p.tables.CharDecl) == 0 {
		return nil, fmt.Errorf("tables %s ship no TEI skeleton or character declaration", p.tables.Manifest.ID)
	}
	doc, words, err := p.Words(input)
	if err != nil {
		return nil, err
	}
	clusters, err := p.engine.SegmentAll(ctx, words)
	if err != nil {
		return nil, err
	}
	out, err := tei.Assemble(p.tables.Skeleton, p.tables.CharDecl, clusters)
	if err != nil {
		return nil, err
	}
	return &Result{Mode: ModeFull, Source: doc.Source, Words: len(words), Clusters: len(clusters), Output: out}, nil
}

// Run dispatches on mode.
func (p *Pipeline) Run(ctx context.Context, mode Mode, input []byte, opts plaintext.Options) (*Result, error) {
	switch mode {
	case ModePlain:
		return p.Plain(ctx, input, opts)
	case ModeFull:
		return p.Full(ctx, input)
	}
	return nil, fmt.Errorf("unknown mode %q", mode)
}
