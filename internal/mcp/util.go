package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// textResult builds a successful text tool result.
func textResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
	}
}

// errorResult converts a failure into a well-formed textual tool result.
// Remote-service and recognition errors never propagate as protocol
// faults; the agent sees the error text and can react to it.
func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("Error: %v", err)}},
		IsError: true,
	}
}

// invalidResult reports a rejected input without a wrapped error value.
func invalidResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("Error: "+format, args...)}},
		IsError: true,
	}
}

// jsonText renders structured server data for a text result. Indented
// JSON keeps device listings readable in agent transcripts.
func jsonText(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// validButton reports whether the name is an accepted mouse button.
// Empty defaults to "left" at the call sites.
func validButton(name string) bool {
	switch name {
	case "", "left", "right", "middle":
		return true
	default:
		return false
	}
}

// buttonOrDefault applies the left-button default.
func buttonOrDefault(name string) string {
	if name == "" {
		return "left"
	}
	return name
}
