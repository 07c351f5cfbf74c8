package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/karina-jasmin/quran-collate/pkg/kit"
	"github.com/karina-jasmin/quran-collate/pkg/plaintext"
	"github.com/karina-jasmin/quran-collate/pkg/runlog"
	"github.com/karina-jasmin/quran-collate/pkg/segment"
	"github.com/karina-jasmin/quran-collate/pkg/source"
	"github.com/karina-jasmin/quran-collate/pkg/transform"
)

// PlainCmd writes the plain archigraphemic text of a transcription.
type PlainCmd struct {
	Input    string `arg:"" help:"Transcription XML file, ZIP export or http(s) URL"`
	Output   string `arg:"" optional:"" help:"Output file; <input>_trans.txt when omitted"`
	NoVowels bool   `name:"no-vowels" help:"Drop vowel marks"`
	Stdout   bool   `help:"Write the result to standard output"`
}

func (c *PlainCmd) Run(g *Globals) error {
	return runTransform(g, job{
		mode:   transform.ModePlain,
		input:  c.Input,
		output: c.Output,
		stdout: c.Stdout,
		opts:   plaintext.Options{Vowels: !c.NoVowels},
	})
}

// FullCmd writes the TEI grapheme document of a transcription.
type FullCmd struct {
	Input  string `arg:"" help:"Transcription XML file, ZIP export or http(s) URL"`
	Output string `arg:"" optional:"" help:"Output file; <input>_trans.xml when omitted"`
	Stdout bool   `help:"Write the result to standard output"`
}

func (c *FullCmd) Run(g *Globals) error {
	return runTransform(g, job{
		mode:   transform.ModeFull,
		input:  c.Input,
		output: c.Output,
		stdout: c.Stdout,
	})
}

type job struct {
	mode   transform.Mode
	input  string
	output string
	stdout bool
	opts   plaintext.Options
	out    io.Writer // standard output, replaced in tests
}

func runTransform(g *Globals, j job) error {
	cfg, logger, err := g.setup()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reg, err := loadRegistry(cfg, logger)
	if err != nil {
		return err
	}
	set, err := reg.Get(g.TablesID)
	if err != nil {
		return err
	}

	in, err := source.Fetch(ctx, j.input)
	if err != nil {
		return err
	}

	output := j.output
	switch {
	case j.stdout:
		output = ""
	case output == "" && source.IsURL(in.Location):
		output = transform.DefaultOutput(in.Name, j.mode)
	case output == "":
		output = transform.DefaultOutput(j.input, j.mode)
	}

	ledger, err := openLedger(cfg)
	if err != nil {
		return err
	}
	var runID string
	if ledger != nil {
		defer ledger.Close()
		runID, err = ledger.Start(runlog.Run{
			Mode:         string(j.mode),
			Transport:    kit.TransportCLI,
			Input:        in.Location,
			InputDigest:  in.Digest,
			TablesID:     set.Manifest.ID,
			TablesDigest: set.Digest,
		})
		if err != nil {
			logger.Warn("record run", "error", err)
		}
	}

	p := transform.New(set, segment.WithWorkers(cfg.Workers))
	res, err := p.Run(ctx, j.mode, in.Data, j.opts)
	if err == nil {
		err = writeResult(j, output, res.Output)
	}

	if runID != "" {
		o := runlog.Outcome{Output: output, Err: err}
		if res != nil {
			o.Source, o.Words, o.Clusters = res.Source, res.Words, res.Clusters
		}
		if ferr := ledger.Finish(runID, o); ferr != nil {
			logger.Warn("record run outcome", "run", runID, "error", ferr)
		}
	}
	if err != nil {
		return fmt.Errorf("%s: %w", in.Location, err)
	}

	logger.Info("transformed",
		"mode", j.mode,
		"input", in.Location,
		"output", output,
		"source", res.Source,
		"words", res.Words,
		"clusters", res.Clusters,
		"tables", set.Manifest.ID,
		"run", runID,
	)
	return nil
}

func writeResult(j job, path string, data []byte) error {
	if path != "" {
		return transform.WriteFile(path, data)
	}
	w := j.out
	if w == nil {
		w = os.Stdout
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		_, err := io.WriteString(w, "\n")
		return err
	}
	return nil
}
