// CLAUDE:SUMMARY MCP-over-QUIC protocol constants and the QUIC/TLS settings shared by the server handler and the client.
package mcpquic

import (
	"crypto/tls"
	"time"

	"github.com/quic-go/quic-go"
)

const (
	// ALPNProtocolMCP selects MCP on a QUIC connection shared with HTTP/3.
	ALPNProtocolMCP = "cctransform-mcp-v1"
	// MagicBytesMCP opens every MCP stream.
	MagicBytesMCP = "CCT1"

	// MaxMessageSize bounds one JSON-RPC line. It leaves room for a full
	// transcription plus its TEI output.
	MaxMessageSize = 96 << 20

	DefaultHandshakeTimeout = 10 * time.Second
	DefaultIdleTimeout      = 5 * time.Minute
	DefaultKeepAlive        = 30 * time.Second
)

// QUICConfig returns the QUIC settings used on both ends.
func QUICConfig() *quic.Config {
	return &quic.Config{
		HandshakeIdleTimeout:       DefaultHandshakeTimeout,
		MaxStreamReceiveWindow:     16 << 20,
		MaxConnectionReceiveWindow: 64 << 20,
		MaxIdleTimeout:             DefaultIdleTimeout,
		KeepAlivePeriod:            DefaultKeepAlive,
	}
}

// ClientTLSConfig returns the client TLS settings. insecure skips
// certificate verification, for servers running a self-signed dev cert.
func ClientTLSConfig(insecure bool) *tls.Config {
	return &tls.Config{
		NextProtos:         []string{ALPNProtocolMCP},
		MinVersion:         tls.VersionTLS13,
		InsecureSkipVerify: insecure,
	}
}
