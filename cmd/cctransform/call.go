package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/karina-jasmin/quran-collate/pkg/mcpquic"
)

// CallCmd invokes one MCP tool on a running server over QUIC.
type CallCmd struct {
	Addr    string            `default:"localhost:8420" help:"Server address"`
	Tool    string            `arg:"" optional:"" help:"Tool name; lists the tools when omitted"`
	Args    map[string]string `short:"a" help:"Tool argument key=value; a value starting with @ names a file to read"`
	Timeout time.Duration     `default:"60s" help:"Call timeout"`
	Verify  bool              `help:"Verify the server certificate"`

	out io.Writer
}

func (c *CallCmd) Run(g *Globals) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	cl := mcpquic.NewClient(c.Addr, mcpquic.ClientTLSConfig(!c.Verify))
	cl.SetVersion(version)
	if err := cl.Connect(ctx); err != nil {
		return err
	}
	defer cl.Close()

	w := stdout(c.out)
	if c.Tool == "" {
		res, err := cl.ListTools(ctx)
		if err != nil {
			return err
		}
		for _, t := range res.Tools {
			fmt.Fprintf(w, "%-16s %s\n", t.Name, t.Description)
		}
		return nil
	}

	args, err := toolArgs(c.Args)
	if err != nil {
		return err
	}
	text, err := cl.CallToolText(ctx, c.Tool, args)
	if err != nil {
		return err
	}
	return printToolResult(w, text)
}

// toolArgs converts key=value flags into tool arguments. @path values are
// read from disk; true and false become booleans.
func toolArgs(kv map[string]string) (map[string]any, error) {
	args := make(map[string]any, len(kv))
	for k, v := range kv {
		switch {
		case strings.HasPrefix(v, "@"):
			data, err := os.ReadFile(v[1:])
			if err != nil {
				return nil, fmt.Errorf("argument %s: %w", k, err)
			}
			args[k] = string(data)
		case v == "true" || v == "false":
			args[k], _ = strconv.ParseBool(v)
		default:
			args[k] = v
		}
	}
	return args, nil
}

// printToolResult prints the output field of a transform result verbatim
// and any other result as indented JSON.
func printToolResult(w io.Writer, text string) error {
	var result map[string]any
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		_, err := fmt.Fprintln(w, text)
		return err
	}
	if out, ok := result["output"].(string); ok {
		_, err := fmt.Fprintln(w, out)
		return err
	}
	pretty, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(pretty))
	return err
}
