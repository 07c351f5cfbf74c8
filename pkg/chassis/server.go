// Package chassis serves the transformation API on one port over two
// transports.
//
// Two listeners on the same port:
//   - TCP -> HTTP/1.1 + HTTP/2 (TLS)
//   - UDP -> QUIC with ALPN demux:
//     "h3"                 -> HTTP/3 (same handler as TCP)
//     "cctransform-mcp-v1" -> MCP JSON-RPC over a QUIC stream
//
// HTTP responses carry an Alt-Svc header advertising HTTP/3. Without cert
// files a self-signed ECDSA P-256 cert is generated at startup.
package chassis

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"

	"github.com/karina-jasmin/quran-collate/pkg/mcpquic"
)

// Server runs HTTP/1.1+HTTP/2 on TCP and HTTP/3 + MCP-over-QUIC on UDP.
type Server struct {
	addr   string
	logger *slog.Logger
	tlsCfg *tls.Config
	mcp    *mcpquic.Handler

	mu      sync.Mutex
	handler http.Handler
	tcp     *http.Server
	h3      *http3.Server
	quicLn  *quic.Listener
}

// Config holds configuration for the chassis server.
type Config struct {
	Addr      string            // listen address for both TCP and UDP, e.g. ":8420"
	TLS       *tls.Config       // nil: CertFile/KeyFile, else a development cert
	CertFile  string            // PEM certificate
	KeyFile   string            // PEM key
	Hosts     []string          // extra names for the development cert
	Handler   http.Handler      // HTTP API
	MCPServer *server.MCPServer // nil disables MCP
	Logger    *slog.Logger
}

// New prepares a server. Nothing listens until Start.
func New(cfg Config) (*Server, error) {
	if cfg.Handler == nil {
		return nil, errors.New("chassis: no HTTP handler")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	tlsCfg, err := serverTLSConfig(cfg)
	if err != nil {
		return nil, err
	}

	s := &Server{
		addr:    cfg.Addr,
		logger:  cfg.Logger,
		tlsCfg:  tlsCfg,
		handler: securityHeaders(altSvcMiddleware(cfg.Addr, cfg.Handler)),
	}
	if cfg.MCPServer != nil {
		s.mcp = mcpquic.NewHandler(cfg.MCPServer, cfg.Logger)
	}
	return s, nil
}

func serverTLSConfig(cfg Config) (*tls.Config, error) {
	switch {
	case cfg.TLS != nil:
		return cfg.TLS, nil
	case cfg.CertFile != "" && cfg.KeyFile != "":
		tlsCfg, err := ProductionTLSConfig(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, err
		}
		cfg.Logger.Info("TLS certificate loaded", "cert", cfg.CertFile)
		return tlsCfg, nil
	}

	hosts := cfg.Hosts
	if host, _, err := net.SplitHostPort(cfg.Addr); err == nil && host != "" {
		hosts = append([]string{host}, hosts...)
	}
	tlsCfg, err := DevelopmentTLSConfig(hosts...)
	if err != nil {
		return nil, fmt.Errorf("development certificate: %w", err)
	}
	cfg.Logger.Warn("TLS: serving a self-signed development certificate",
		"valid_for", DevValidity, "sha256", Fingerprint(tlsCfg.Certificates[0]))
	return tlsCfg, nil
}

// securityHeaders adds standard security headers to every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		next.ServeHTTP(w, r)
	})
}

// altSvcMiddleware advertises HTTP/3 on the same port.
func altSvcMiddleware(addr string, next http.Handler) http.Handler {
	_, port, _ := net.SplitHostPort(addr)
	if port == "" {
		port = "8420"
	}
	altSvc := fmt.Sprintf(`h3=":%s"; ma=86400`, port)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Alt-Svc", altSvc)
		next.ServeHTTP(w, r)
	})
}

// Start opens both listeners and serves until ctx is done or a listener
// fails.
func (s *Server) Start(ctx context.Context) error {
	tcpLn, quicLn, err := s.listen()
	if err != nil {
		return err
	}
	s.logger.Info("chassis started",
		"addr", s.addr,
		"tcp", "HTTP/1.1+HTTP/2 (TLS)",
		"udp", "QUIC (HTTP/3 + MCP)",
		"mcp", s.mcp != nil,
	)

	errCh := make(chan error, 2)
	go func() {
		if err := s.tcp.Serve(tcpLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("TCP: %w", err)
		}
	}()
	go s.acceptQUIC(ctx, quicLn, errCh)

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) listen() (net.Listener, *quic.Listener, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tcpTLS := s.tlsCfg.Clone()
	tcpTLS.NextProtos = []string{"h2", "http/1.1"}
	tcpLn, err := tls.Listen("tcp", s.addr, tcpTLS)
	if err != nil {
		return nil, nil, fmt.Errorf("TCP listen %s: %w", s.addr, err)
	}
	quicLn, err := quic.ListenAddr(s.addr, s.tlsCfg, mcpquic.QUICConfig())
	if err != nil {
		tcpLn.Close()
		return nil, nil, fmt.Errorf("QUIC listen %s: %w", s.addr, err)
	}

	s.tcp = &http.Server{Handler: s.handler, TLSConfig: tcpTLS, ReadHeaderTimeout: 10 * time.Second}
	s.h3 = &http3.Server{Handler: s.handler}
	s.quicLn = quicLn
	return tcpLn, quicLn, nil
}

// acceptQUIC demultiplexes QUIC connections by negotiated ALPN.
func (s *Server) acceptQUIC(ctx context.Context, ln *quic.Listener, errCh chan<- error) {
	for {
		conn, err := ln.Accept(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, quic.ErrServerClosed) {
				return
			}
			errCh <- fmt.Errorf("QUIC accept: %w", err)
			return
		}

		alpn := conn.ConnectionState().TLS.NegotiatedProtocol
		switch alpn {
		case "h3":
			go func() {
				if err := s.h3.ServeQUICConn(conn); err != nil {
					s.logger.Debug("HTTP/3 conn done", "remote", conn.RemoteAddr(), "error", err)
				}
			}()
		case mcpquic.ALPNProtocolMCP:
			if s.mcp == nil {
				conn.CloseWithError(mcpquic.ConnErrorMCPDisabled, "MCP not enabled")
				continue
			}
			go s.mcp.ServeConn(ctx, conn)
		default:
			s.logger.Warn("unknown ALPN, closing", "alpn", alpn, "remote", conn.RemoteAddr())
			conn.CloseWithError(mcpquic.ConnErrorUnknownALPN, "unsupported ALPN: "+alpn)
		}
	}
}

// Stop drains HTTP connections and closes the QUIC listener. It is safe to
// call before Start.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	if s.tcp != nil {
		errs = append(errs, s.tcp.Shutdown(ctx))
	}
	if s.h3 != nil {
		errs = append(errs, s.h3.Close())
	}
	if s.quicLn != nil {
		errs = append(errs, s.quicLn.Close())
	}

	s.logger.Info("chassis stopped")
	return errors.Join(errs...)
}
