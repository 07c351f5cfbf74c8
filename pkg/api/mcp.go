package api

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/karina-jasmin/quran-collate/pkg/kit"
	"github.com/karina-jasmin/quran-collate/pkg/segment"
	"github.com/karina-jasmin/quran-collate/pkg/transform"
)

// RegisterMCPTools registers the transformation MCP tools on the server.
func RegisterMCPTools(srv *server.MCPServer, svc *Service) {
	transformTool := kit.Logging(svc.logger, "transform")(svc.transformEndpoint())

	kit.RegisterMCPTool(srv, mcp.NewTool("transform_plain",
		mcp.WithDescription("Transform a TEI word-level transcription of a Quranic manuscript into plain archigraphemic text."),
		mcp.WithString("input", mcp.Required(), mcp.Description("The transcription XML document")),
		mcp.WithString("tables", mcp.Description("Table set id; the default set when empty")),
		mcp.WithBoolean("vowels", mcp.DefaultBool(true), mcp.Description("Keep vowel marks in the output")),
	), transformTool, decodeTransform(transform.ModePlain))

	kit.RegisterMCPTool(srv, mcp.NewTool("transform_tei",
		mcp.WithDescription("Transform a TEI word-level transcription into a TEI document of archigrapheme, diacritic and vowel graphemes."),
		mcp.WithString("input", mcp.Required(), mcp.Description("The transcription XML document")),
		mcp.WithString("tables", mcp.Description("Table set id; the default set when empty")),
	), transformTool, decodeTransform(transform.ModeFull))

	kit.RegisterMCPTool(srv, mcp.NewTool("segment_word",
		mcp.WithDescription("Segment one flattened word into clusters. The text may carry [ ] { } and % markers."),
		mcp.WithString("text", mcp.Required(), mcp.Description("The flattened word")),
		mcp.WithString("n", mcp.Description("Word ordinal reported in errors")),
		mcp.WithBoolean("uncertain", mcp.Description("The whole word is uncertain")),
		mcp.WithString("tables", mcp.Description("Table set id; the default set when empty")),
	), kit.Logging(svc.logger, "segment")(svc.segmentEndpoint()), decodeSegment)

	kit.RegisterMCPTool(srv, mcp.NewTool("describe_tables",
		mcp.WithDescription("List the loaded table sets with their version, source, digest and sizes."),
	), svc.listTablesEndpoint(), func(mcp.CallToolRequest) (any, error) {
		return nil, nil
	})
}

func decodeTransform(mode transform.Mode) kit.MCPDecoder {
	return func(req mcp.CallToolRequest) (any, error) {
		input := req.GetString("input", "")
		if input == "" {
			return nil, fmt.Errorf("input is required")
		}
		return &transformReq{
			Mode:   mode,
			Tables: req.GetString("tables", ""),
			Name:   "mcp:" + req.Params.Name,
			Input:  []byte(input),
			Vowels: req.GetBool("vowels", true),
		}, nil
	}
}

func decodeSegment(req mcp.CallToolRequest) (any, error) {
	text := req.GetString("text", "")
	if text == "" {
		return nil, fmt.Errorf("text is required")
	}
	return &segmentReq{
		Tables: req.GetString("tables", ""),
		Word: segment.Word{
			Ordinal:   req.GetString("n", ""),
			Text:      text,
			Uncertain: req.GetBool("uncertain", false),
		},
	}, nil
}
