package mcp

import (
	"encoding/json"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"shelf-dcs/internal/shelf"
)

func formatResult(data any) string {
	out, _ := json.MarshalIndent(data, "", "  ")
	return string(out)
}

// respond renders data as indented JSON. Non-empty charts are appended as
// extra text blocks when Mermaid charts are enabled.
func (s *Server) respond(data any, charts ...string) (*sdk.CallToolResult, any, error) {
	res := &sdk.CallToolResult{
		Content: []sdk.Content{&sdk.TextContent{Text: formatResult(data)}},
	}
	if s.opts.EnableMermaidCharts {
		for _, c := range charts {
			if c != "" {
				res.Content = append(res.Content, &sdk.TextContent{Text: c})
			}
		}
	}
	return res, nil, nil
}

func confirmer(confirm bool) shelf.Confirmer {
	if confirm {
		return shelf.AlwaysConfirm
	}
	return shelf.NeverConfirm
}

func required(field, value string) error {
	if value == "" {
		return &shelf.ValidationError{Field: field, Reason: "is required"}
	}
	return nil
}

// overflowNote tells the client how to proceed after an unconfirmed overflow.
func overflowNote(w *shelf.OverflowWarning) string {
	if w == nil {
		return ""
	}
	return fmt.Sprintf("Not applied: %s. Ask the user, then repeat the call with confirm_overflow=true to apply anyway.", w)
}
