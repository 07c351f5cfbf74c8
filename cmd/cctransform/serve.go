package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/karina-jasmin/quran-collate/pkg/api"
	"github.com/karina-jasmin/quran-collate/pkg/chassis"
)

// ServeCmd runs the transformation server until interrupted. SIGHUP
// reloads the table sets.
type ServeCmd struct {
	Addr  string `help:"Listen address, TCP and UDP; overrides addr"`
	NoMCP bool   `name:"no-mcp" help:"Disable MCP over QUIC"`
}

func (c *ServeCmd) Run(g *Globals) error {
	cfg, logger, err := g.setup()
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.Addr = c.Addr
	}
	if c.NoMCP {
		cfg.MCP = false
	}

	reg, err := loadRegistry(cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("tables loaded", "sets", reg.SetCount())

	ledger, err := openLedger(cfg)
	if err != nil {
		return err
	}
	opts := []api.Option{api.WithWorkers(cfg.Workers), api.WithLogger(logger)}
	if ledger != nil {
		defer ledger.Close()
		opts = append(opts, api.WithLedger(ledger))
		logger.Info("run ledger opened", "path", cfg.RunsDB)
	}
	svc := api.NewService(reg, opts...)

	var mcpSrv *server.MCPServer
	if cfg.MCP {
		mcpSrv = server.NewMCPServer("cctransform", version, server.WithToolCapabilities(false))
		api.RegisterMCPTools(mcpSrv, svc)
	}

	srv, err := chassis.New(chassis.Config{
		Addr:      cfg.Addr,
		CertFile:  cfg.CertFile,
		KeyFile:   cfg.KeyFile,
		Hosts:     cfg.Hosts,
		Handler:   api.NewRouter(svc),
		MCPServer: mcpSrv,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	// SIGHUP: hot reload tables.
	// SIGINT/SIGTERM: graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	defer signal.Stop(sighup)
	go func() {
		for {
			select {
			case <-sighup:
				logger.Info("SIGHUP received, reloading tables")
				if err := reg.Reload(); err != nil {
					logger.Error("reload failed", "error", err)
				} else {
					logger.Info("tables reloaded", "sets", reg.SetCount())
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	err = srv.Start(ctx)
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if stopErr := srv.Stop(shutdownCtx); err == nil {
		err = stopErr
	}
	return err
}
