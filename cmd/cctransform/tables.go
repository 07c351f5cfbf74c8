package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/karina-jasmin/quran-collate/pkg/tables"
	"github.com/karina-jasmin/quran-collate/pkg/textprep"
)

// TablesCmd groups the table set commands.
type TablesCmd struct {
	List  TablesListCmd  `cmd:"" default:"1" help:"List the loaded table sets"`
	Check TablesCheckCmd `cmd:"" help:"Validate table sets"`
	Build TablesBuildCmd `cmd:"" help:"Compile a table set directory into its gob cache"`
}

// TablesListCmd lists the loaded table sets.
type TablesListCmd struct {
	out io.Writer
}

func (c *TablesListCmd) Run(g *Globals) error {
	cfg, logger, err := g.setup()
	if err != nil {
		return err
	}
	reg, err := loadRegistry(cfg, logger)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(stdout(c.out), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tVERSION\tCHARS\tENTRIES\tDIACRITICS\tREPLACEMENTS\tDIGEST\t")
	for _, info := range reg.ListSets() {
		id := info.ID
		if info.Default {
			id += " *"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%.12s\t\n", id, info.Version,
			info.Characters, info.Entries, info.Diacritics, info.Replacements, info.Digest)
	}
	return tw.Flush()
}

// TablesCheckCmd validates every loaded table set: diacritic totality,
// the replacement fixed point and the TEI fragments. The two-context rule
// of the base table is enforced while loading.
type TablesCheckCmd struct {
	out io.Writer
}

// errCheckFailed reports a table set with problems.
var errCheckFailed = errors.New("table check failed")

func (c *TablesCheckCmd) Run(g *Globals) error {
	cfg, logger, err := g.setup()
	if err != nil {
		return err
	}
	reg, err := loadRegistry(cfg, logger)
	if err != nil {
		return err
	}

	w := stdout(c.out)
	failed := 0
	for _, info := range reg.ListSets() {
		set, err := reg.Get(info.ID)
		if err != nil {
			return err
		}
		problems := checkSet(set)
		if len(problems) == 0 {
			fmt.Fprintf(w, "%s: ok (%d characters, %d entries)\n", info.ID, info.Characters, info.Entries)
			continue
		}
		failed++
		fmt.Fprintf(w, "%s: %d problem(s)\n", info.ID, len(problems))
		for _, p := range problems {
			fmt.Fprintf(w, "  - %s\n", p)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d table set(s)", errCheckFailed, failed)
	}
	return nil
}

func checkSet(set *tables.Set) []string {
	var problems []string
	for _, d := range set.Check() {
		problems = append(problems, fmt.Sprintf("diacritic %q is produced by the base table but missing from the diacritic table", d))
	}
	if ok, offending := textprep.ForTables(set).FixedPoint(); !ok {
		for _, r := range offending {
			problems = append(problems, fmt.Sprintf("replacement %q -> %q is undone by a later pass", r.From, r.To))
		}
	}
	if len(set.Skeleton) == 0 || len(set.CharDecl) == 0 {
		problems = append(problems, "no TEI skeleton or character declaration; full mode is unavailable")
	}
	return problems
}

// TablesBuildCmd compiles the CSV sources of a table set directory into
// the gob cache read by later loads.
type TablesBuildCmd struct {
	Dir string `arg:"" help:"Table set directory holding manifest.yaml" type:"existingdir"`
}

func (c *TablesBuildCmd) Run(g *Globals) error {
	_, logger, err := g.setup()
	if err != nil {
		return err
	}
	set, err := tables.LoadDir(c.Dir)
	if err != nil {
		return err
	}
	path := filepath.Join(c.Dir, tables.CacheFile)
	if err := tables.SaveGob(set, path); err != nil {
		return err
	}
	logger.Info("table cache written", "id", set.Manifest.ID, "path", path, "digest", set.Digest)
	return nil
}

func stdout(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}
