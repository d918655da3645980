package mcp

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sunasaji/mcp-serial-hid-kvm/internal/kvm"
)

// TypeTextInput defines the input schema for the type_text tool.
type TypeTextInput struct {
	Text        string `json:"text" jsonschema:"Text with optional {tag} sequences. Plain chars use the target keyboard layout configured on the KVM server. Tags: {enter}, {tab}, {f1}-{f12}, {0xNN} for raw HID keycodes, {mod+key} for combos (ctrl+c, shift+0x87). Use {{ / }} for literal braces."`
	CharDelayMS int    `json:"char_delay_ms,omitempty" jsonschema:"Delay between characters in milliseconds (default: 20)"`
}

// SendKeyInput defines the input schema for the send_key tool.
type SendKeyInput struct {
	Key       string   `json:"key" jsonschema:"Key name: a-z, 0-9, enter, tab, escape, backspace, delete, up, down, left, right, home, end, pageup, pagedown, f1-f12, space, insert, printscreen"`
	Modifiers []string `json:"modifiers,omitempty" jsonschema:"Modifier keys: ctrl, shift, alt, win"`
}

// KeyStepInput is one element of a send_key_sequence invocation.
type KeyStepInput struct {
	Key       string   `json:"key" jsonschema:"Key name"`
	Modifiers []string `json:"modifiers,omitempty" jsonschema:"Modifier keys"`
	DelayMS   int      `json:"delay_ms,omitempty" jsonschema:"Delay after this step in ms (default: 100)"`
}

// SendKeySequenceInput defines the input schema for send_key_sequence.
type SendKeySequenceInput struct {
	Steps          []KeyStepInput `json:"steps" jsonschema:"List of key steps to execute in order"`
	DefaultDelayMS int            `json:"default_delay_ms,omitempty" jsonschema:"Default delay between steps in ms (default: 100)"`
}

// registerKeyboardTools registers type_text, send_key and
// send_key_sequence to the MCP server.
func (s *Server) registerKeyboardTools() error {
	typeTextSchema, err := jsonschema.For[TypeTextInput](nil)
	if err != nil {
		return fmt.Errorf("schema for type_text: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "type_text",
		Description: "Type a string as keyboard input on the target PC. Supports inline tags: {enter}, {tab}, {0x87} (raw HID keycode), {ctrl+c}, {shift+0x87}, etc. Example: \"ls -la{enter}\"",
		InputSchema: typeTextSchema,
	}, s.TypeText)

	sendKeySchema, err := jsonschema.For[SendKeyInput](nil)
	if err != nil {
		return fmt.Errorf("schema for send_key: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "send_key",
		Description: "Send a single key press with optional modifier keys (e.g., Ctrl+C, Alt+F4).",
		InputSchema: sendKeySchema,
	}, s.SendKey)

	sequenceSchema, err := jsonschema.For[SendKeySequenceInput](nil)
	if err != nil {
		return fmt.Errorf("schema for send_key_sequence: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "send_key_sequence",
		Description: "Send a sequence of key steps with optional per-step delays. Useful for complex keyboard operations.",
		InputSchema: sequenceSchema,
	}, s.SendKeySequence)

	return nil
}

// TypeText handles the type_text MCP tool call.
func (s *Server) TypeText(ctx context.Context, req *mcp.CallToolRequest, in TypeTextInput) (*mcp.CallToolResult, any, error) {
	if err := s.kvm.TypeText(ctx, in.Text, in.CharDelayMS); err != nil {
		s.logger.Error("type_text failed", "error", err)
		return errorResult(err), nil, nil
	}

	return textResult("Typed %d characters", utf8.RuneCountInString(in.Text)), nil, nil
}

// SendKey handles the send_key MCP tool call.
func (s *Server) SendKey(ctx context.Context, req *mcp.CallToolRequest, in SendKeyInput) (*mcp.CallToolResult, any, error) {
	if err := s.kvm.SendKey(ctx, in.Key, in.Modifiers); err != nil {
		s.logger.Error("send_key failed", "key", in.Key, "error", err)
		return errorResult(err), nil, nil
	}

	var modStr string
	if len(in.Modifiers) > 0 {
		modStr = strings.Join(in.Modifiers, "+") + "+"
	}
	return textResult("Sent: %s%s", modStr, in.Key), nil, nil
}

// SendKeySequence handles the send_key_sequence MCP tool call. Step
// order is forwarded to the KVM server exactly as submitted.
func (s *Server) SendKeySequence(ctx context.Context, req *mcp.CallToolRequest, in SendKeySequenceInput) (*mcp.CallToolResult, any, error) {
	if len(in.Steps) == 0 {
		return invalidResult("steps must not be empty"), nil, nil
	}

	steps := make([]kvm.KeyStep, len(in.Steps))
	for i, step := range in.Steps {
		steps[i] = kvm.KeyStep{
			Key:       step.Key,
			Modifiers: step.Modifiers,
			DelayMS:   step.DelayMS,
		}
	}

	if err := s.kvm.SendKeySequence(ctx, steps, in.DefaultDelayMS); err != nil {
		s.logger.Error("send_key_sequence failed", "steps", len(steps), "error", err)
		return errorResult(err), nil, nil
	}

	return textResult("Sent %d key steps", len(steps)), nil, nil
}
