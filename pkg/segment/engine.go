// CLAUDE:SUMMARY Position-aware segmentation: folds each flattened word into archigrapheme clusters with diacritics and vowels.
package segment

import (
	"context"
	"fmt"
	"sync"

	"github.com/karina-jasmin/quran-collate/pkg/tables"
)

// Engine segments flattened words against one table set. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	tables  *tables.Set
	workers int
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers bounds the number of words SegmentAll processes in parallel.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// New returns an Engine for the given tables.
func New(t *tables.Set, opts ...Option) *Engine {
	e := &Engine{tables: t, workers: 1}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Tables returns the table set the engine resolves letters against.
func (e *Engine) Tables() *tables.Set { return e.tables }

// Segment turns one word into its clusters.
func (e *Engine) Segment(w Word) ([]Cluster, error) {
	st := NewState(w.Text)
	var clusters []Cluster

	for _, r := range w.Text {
		var step Step
		st, step = Advance(st, r)

		switch step.Kind {
		case StepMarker:
		case StepVowel:
			if len(clusters) == 0 {
				return nil, &MalformedWordError{
					Ordinal: w.Ordinal,
					Reason:  fmt.Sprintf("mark %q (U+%04X) precedes every letter", r, r),
				}
			}
			last := &clusters[len(clusters)-1]
			last.Vowels = append(last.Vowels, Grapheme{Kind: KindVowel, Text: string(r)})
		case StepLetter:
			c, err := e.cluster(w, r, step)
			if err != nil {
				return nil, err
			}
			clusters = append(clusters, c)
		}
	}
	return clusters, nil
}

func (e *Engine) cluster(w Word, r rune, step Step) (Cluster, error) {
	letter := FoldHomoglyph(r, step.Position)
	entry, ok := e.tables.Lookup(letter, step.Position.Context())
	if !ok {
		return Cluster{}, &UnknownCharacterError{Char: letter, Ordinal: w.Ordinal}
	}

	c := Cluster{Archigrapheme: Grapheme{
		Kind:     KindArchigrapheme,
		Position: step.Position,
		RefID:    entry.ID,
		Text:     entry.Archigrapheme,
	}}
	if step.Unclear || w.Uncertain {
		c.Archigrapheme.Certainty = CertaintyMedium
	}

	// A letter with dots on both sides keeps only the below descriptor.
	var descriptor string
	if entry.DotsAbove > 0 {
		descriptor = tables.Descriptor(entry.DotsAbove, false)
	}
	if entry.DotsBelow > 0 {
		descriptor = tables.Descriptor(entry.DotsBelow, true)
	}
	if descriptor == "" {
		return c, nil
	}

	sign, ok := e.tables.Diacritic(descriptor)
	if !ok {
		return Cluster{}, &MissingDiacriticError{Descriptor: descriptor, Ordinal: w.Ordinal}
	}
	c.Diacritic = &Grapheme{
		Kind:     KindDiacritic,
		Position: step.Position,
		RefID:    descriptor,
		Text:     sign,
	}
	return c, nil
}

// SegmentAll segments words in order and returns their clusters as one
// sequence. The error of the earliest failing word is returned and no
// clusters are.
func (e *Engine) SegmentAll(ctx context.Context, words []Word) ([]Cluster, error) {
	if e.workers <= 1 || len(words) < 2 {
		var out []Cluster
		for _, w := range words {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			cs, err := e.Segment(w)
			if err != nil {
				return nil, err
			}
			out = append(out, cs...)
		}
		return out, nil
	}

	results := make([][]Cluster, len(words))
	errs := make([]error, len(words))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for range min(e.workers, len(words)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i], errs[i] = e.Segment(words[i])
			}
		}()
	}

feed:
	for i := range words {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	total := 0
	for i, err := range errs {
		if err != nil {
			return nil, err
		}
		total += len(results[i])
	}
	out := make([]Cluster, 0, total)
	for _, cs := range results {
		out = append(out, cs...)
	}
	return out, nil
}
