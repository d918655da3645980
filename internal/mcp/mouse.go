package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// dragStepDelay separates the press, move and release of a drag. The
// serial HID device reports each state as a discrete report; without the
// pause the target OS sees a click, not a drag.
const dragStepDelay = 50 * time.Millisecond

// MouseMoveInput defines the input schema for the mouse_move tool.
type MouseMoveInput struct {
	X        int  `json:"x" jsonschema:"X coordinate (screen pixels for absolute, offset for relative)"`
	Y        int  `json:"y" jsonschema:"Y coordinate (screen pixels for absolute, offset for relative)"`
	Relative bool `json:"relative,omitempty" jsonschema:"If true, move relative to current position (default: false)"`
}

// MouseClickInput defines the input schema for the mouse_click tool.
type MouseClickInput struct {
	Button string `json:"button,omitempty" jsonschema:"Mouse button: left, right or middle (default: left)"`
	X      *int   `json:"x,omitempty" jsonschema:"Optional X screen coordinate to click at"`
	Y      *int   `json:"y,omitempty" jsonschema:"Optional Y screen coordinate to click at"`
}

// MouseDragInput defines the input schema for the mouse_drag tool.
type MouseDragInput struct {
	StartX int    `json:"start_x" jsonschema:"Starting X screen coordinate"`
	StartY int    `json:"start_y" jsonschema:"Starting Y screen coordinate"`
	EndX   int    `json:"end_x" jsonschema:"Ending X screen coordinate"`
	EndY   int    `json:"end_y" jsonschema:"Ending Y screen coordinate"`
	Button string `json:"button,omitempty" jsonschema:"Mouse button: left, right or middle (default: left)"`
}

// MouseScrollInput defines the input schema for the mouse_scroll tool.
type MouseScrollInput struct {
	Amount int `json:"amount" jsonschema:"Scroll amount: positive=up, negative=down (-127 to 127)"`
}

// registerMouseTools registers mouse_move, mouse_click, mouse_drag and
// mouse_scroll to the MCP server.
func (s *Server) registerMouseTools() error {
	moveSchema, err := jsonschema.For[MouseMoveInput](nil)
	if err != nil {
		return fmt.Errorf("schema for mouse_move: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "mouse_move",
		Description: "Move the mouse cursor on the target PC.",
		InputSchema: moveSchema,
	}, s.MouseMove)

	clickSchema, err := jsonschema.For[MouseClickInput](nil)
	if err != nil {
		return fmt.Errorf("schema for mouse_click: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "mouse_click",
		Description: "Click a mouse button on the target PC, optionally at a specific position.",
		InputSchema: clickSchema,
	}, s.MouseClick)

	dragSchema, err := jsonschema.For[MouseDragInput](nil)
	if err != nil {
		return fmt.Errorf("schema for mouse_drag: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "mouse_drag",
		Description: "Drag from one position to another (press button at start, move to end, release). Useful for drag-and-drop, selecting text, resizing windows.",
		InputSchema: dragSchema,
	}, s.MouseDrag)

	scrollSchema, err := jsonschema.For[MouseScrollInput](nil)
	if err != nil {
		return fmt.Errorf("schema for mouse_scroll: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "mouse_scroll",
		Description: "Scroll the mouse wheel on the target PC.",
		InputSchema: scrollSchema,
	}, s.MouseScroll)

	return nil
}

// MouseMove handles the mouse_move MCP tool call.
func (s *Server) MouseMove(ctx context.Context, req *mcp.CallToolRequest, in MouseMoveInput) (*mcp.CallToolResult, any, error) {
	if err := s.kvm.MouseMove(ctx, in.X, in.Y, in.Relative); err != nil {
		s.logger.Error("mouse_move failed", "error", err)
		return errorResult(err), nil, nil
	}

	if in.Relative {
		return textResult("Moved mouse by (%d, %d)", in.X, in.Y), nil, nil
	}
	return textResult("Moved mouse to (%d, %d)", in.X, in.Y), nil, nil
}

// MouseClick handles the mouse_click MCP tool call.
func (s *Server) MouseClick(ctx context.Context, req *mcp.CallToolRequest, in MouseClickInput) (*mcp.CallToolResult, any, error) {
	if !validButton(in.Button) {
		return invalidResult("invalid button %q, expected left, right or middle", in.Button), nil, nil
	}
	button := buttonOrDefault(in.Button)

	if err := s.kvm.MouseClick(ctx, button, in.X, in.Y); err != nil {
		s.logger.Error("mouse_click failed", "button", button, "error", err)
		return errorResult(err), nil, nil
	}

	if in.X != nil && in.Y != nil {
		return textResult("Clicked %s at (%d, %d)", button, *in.X, *in.Y), nil, nil
	}
	return textResult("Clicked %s", button), nil, nil
}

// MouseDrag handles the mouse_drag MCP tool call. The drag is a fixed
// four-step sequence: button down at the start position, a settle delay,
// move to the end position, another settle delay, button up. The delays
// are part of the contract, not an optimization.
func (s *Server) MouseDrag(ctx context.Context, req *mcp.CallToolRequest, in MouseDragInput) (*mcp.CallToolResult, any, error) {
	if !validButton(in.Button) {
		return invalidResult("invalid button %q, expected left, right or middle", in.Button), nil, nil
	}
	button := buttonOrDefault(in.Button)

	if err := s.kvm.MouseDown(ctx, button, in.StartX, in.StartY); err != nil {
		s.logger.Error("mouse_drag failed", "step", "down", "error", err)
		return errorResult(err), nil, nil
	}
	if err := s.sleep(ctx, dragStepDelay); err != nil {
		return nil, nil, err
	}
	if err := s.kvm.MouseMove(ctx, in.EndX, in.EndY, false); err != nil {
		s.logger.Error("mouse_drag failed", "step", "move", "error", err)
		return errorResult(err), nil, nil
	}
	if err := s.sleep(ctx, dragStepDelay); err != nil {
		return nil, nil, err
	}
	if err := s.kvm.MouseUp(ctx, button, in.EndX, in.EndY); err != nil {
		s.logger.Error("mouse_drag failed", "step", "up", "error", err)
		return errorResult(err), nil, nil
	}

	return textResult("Dragged %s from (%d, %d) to (%d, %d)",
		button, in.StartX, in.StartY, in.EndX, in.EndY), nil, nil
}

// MouseScroll handles the mouse_scroll MCP tool call.
func (s *Server) MouseScroll(ctx context.Context, req *mcp.CallToolRequest, in MouseScrollInput) (*mcp.CallToolResult, any, error) {
	if err := s.kvm.MouseScroll(ctx, in.Amount); err != nil {
		s.logger.Error("mouse_scroll failed", "error", err)
		return errorResult(err), nil, nil
	}

	direction := "up"
	amount := in.Amount
	if amount < 0 {
		direction = "down"
		amount = -amount
	}
	return textResult("Scrolled %s by %d", direction, amount), nil, nil
}
