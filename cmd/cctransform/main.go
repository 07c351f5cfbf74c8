// Command cctransform turns word-level TEI transcriptions of Quranic
// manuscripts into plain archigraphemic text or TEI grapheme documents,
// and serves the same transformations over HTTP and MCP-over-QUIC.
package main

import (
	"fmt"

	"github.com/alecthomas/kong"
)

var version = "dev"

// CLI is the command-line interface of cctransform.
type CLI struct {
	Globals

	Plain   PlainCmd   `cmd:"" help:"Transform a transcription into plain text"`
	Full    FullCmd    `cmd:"" help:"Transform a transcription into a TEI grapheme document"`
	Tables  TablesCmd  `cmd:"" help:"Inspect, validate and compile table sets"`
	Runs    RunsCmd    `cmd:"" help:"List recorded transformation runs"`
	Serve   ServeCmd   `cmd:"" help:"Serve the HTTP API, HTTP/3 and MCP over QUIC"`
	Call    CallCmd    `cmd:"" help:"Call an MCP tool on a running server over QUIC"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println("cctransform", version)
	return nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("cctransform"),
		kong.Description("Archigraphemic transformation of Quranic manuscript transcriptions"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Bind(&cli.Globals),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
