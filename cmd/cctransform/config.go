package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/karina-jasmin/quran-collate/data"
	"github.com/karina-jasmin/quran-collate/pkg/runlog"
	"github.com/karina-jasmin/quran-collate/pkg/tables"
)

// config is the YAML configuration file.
type config struct {
	Addr      string   `yaml:"addr"`
	TablesDir string   `yaml:"tables_dir"`
	RunsDB    string   `yaml:"runs_db"`
	CertFile  string   `yaml:"cert_file"`
	KeyFile   string   `yaml:"key_file"`
	Hosts     []string `yaml:"hosts"`
	Workers   int      `yaml:"workers"`
	MCP       bool     `yaml:"mcp"`
	LogLevel  string   `yaml:"log_level"`
}

func defaultConfig() config {
	return config{
		Addr:     ":8420",
		RunsDB:   "runs.db",
		Workers:  runtime.NumCPU(),
		MCP:      true,
		LogLevel: "info",
	}
}

// loadConfig reads path over the defaults. A missing file is not an error.
func loadConfig(path string) (config, bool, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, false, nil
		}
		return cfg, false, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, false, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return cfg, true, nil
}

// Globals are the flags shared by every command.
type Globals struct {
	Config    string `short:"c" default:"config.yaml" help:"Path to the YAML config file" type:"path"`
	TablesDir string `name:"tables-dir" help:"Tables directory; overrides tables_dir" type:"path"`
	TablesID  string `name:"tables" help:"Table set id; the default set when empty"`
	RunsDB    string `name:"runs-db" help:"Run ledger database; overrides runs_db"`
	NoLedger  bool   `name:"no-ledger" help:"Do not record runs"`
	Workers   int    `help:"Words segmented in parallel; overrides workers"`
	Verbose   bool   `short:"v" help:"Debug logging"`

	stderr io.Writer
}

// setup loads the config, applies flag overrides and builds the logger.
func (g *Globals) setup() (config, *slog.Logger, error) {
	cfg, found, err := loadConfig(g.Config)
	if err != nil {
		return cfg, nil, err
	}
	if g.TablesDir != "" {
		cfg.TablesDir = g.TablesDir
	}
	if g.RunsDB != "" {
		cfg.RunsDB = g.RunsDB
	}
	if g.NoLedger {
		cfg.RunsDB = ""
	}
	if g.Workers > 0 {
		cfg.Workers = g.Workers
	}

	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		return cfg, nil, fmt.Errorf("log_level: %w", err)
	}
	if g.Verbose {
		level = slog.LevelDebug
	}
	w := g.stderr
	if w == nil {
		w = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	if !found {
		logger.Debug("no config file, using defaults", "path", g.Config)
	}
	return cfg, logger, nil
}

// registry loads the configured table sets, or the embedded default set
// when no tables directory is configured.
func loadRegistry(cfg config, logger *slog.Logger) (*tables.Registry, error) {
	reg := tables.NewRegistry(cfg.TablesDir, data.Tables())
	if err := reg.Load(); err != nil {
		return nil, err
	}
	for _, info := range reg.ListSets() {
		logger.Debug("tables loaded", "id", info.ID, "version", info.Version,
			"entries", info.Entries, "diacritics", info.Diacritics, "default", info.Default)
	}
	return reg, nil
}

// openLedger opens the run ledger, or returns nil when it is disabled.
func openLedger(cfg config) (*runlog.Ledger, error) {
	if cfg.RunsDB == "" {
		return nil, nil
	}
	return runlog.Open(cfg.RunsDB)
}
