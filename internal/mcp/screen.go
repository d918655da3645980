package mcp

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sunasaji/mcp-serial-hid-kvm/internal/capture"
)

// captureQuality is the JPEG quality requested from the KVM server for a
// fresh frame. Transport-size concerns are handled locally by the
// bounded re-encode, so the fetch itself stays at high fidelity.
const captureQuality = 85

// enterSettleDelay separates typing a command from pressing enter in
// execute_and_read, so the target's input buffer has drained.
const enterSettleDelay = 100 * time.Millisecond

// CaptureScreenInput defines the (empty) input schema for capture_screen.
type CaptureScreenInput struct{}

// GetScreenTextInput defines the (empty) input schema for get_screen_text.
type GetScreenTextInput struct{}

// ExecuteAndReadInput defines the input schema for execute_and_read.
type ExecuteAndReadInput struct {
	Command     string  `json:"command" jsonschema:"Command to type and execute"`
	WaitSeconds float64 `json:"wait_seconds,omitempty" jsonschema:"Seconds to wait for output (default: 1.0)"`
}

// registerScreenTools registers capture_screen, get_screen_text and
// execute_and_read to the MCP server.
func (s *Server) registerScreenTools() error {
	captureSchema, err := jsonschema.For[CaptureScreenInput](nil)
	if err != nil {
		return fmt.Errorf("schema for capture_screen: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "capture_screen",
		Description: "Capture the target PC screen via HDMI capture device. Returns the image. Use sparingly as images consume many tokens.",
		InputSchema: captureSchema,
	}, s.CaptureScreen)

	textSchema, err := jsonschema.For[GetScreenTextInput](nil)
	if err != nil {
		return fmt.Errorf("schema for get_screen_text: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_screen_text",
		Description: "Capture the target PC screen and extract text using OCR. Prefer this over capture_screen for text content.",
		InputSchema: textSchema,
	}, s.GetScreenText)

	execSchema, err := jsonschema.For[ExecuteAndReadInput](nil)
	if err != nil {
		return fmt.Errorf("schema for execute_and_read: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "execute_and_read",
		Description: "Type a command, press Enter, wait for output, then capture screen and OCR. Convenient for running shell commands on the target PC.",
		InputSchema: execSchema,
	}, s.ExecuteAndRead)

	return nil
}

// captureImage fetches one frame from the KVM server and decodes it.
func (s *Server) captureImage(ctx context.Context) (image.Image, error) {
	data, _, _, err := s.kvm.CaptureFrameJPEG(ctx, captureQuality)
	if err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding captured frame: %w", err)
	}
	return img, nil
}

// CaptureScreen handles the capture_screen MCP tool call: fetch a frame,
// archive it, and return it encoded within the transport size budget.
func (s *Server) CaptureScreen(ctx context.Context, req *mcp.CallToolRequest, in CaptureScreenInput) (*mcp.CallToolResult, any, error) {
	img, err := s.captureImage(ctx)
	if err != nil {
		s.logger.Error("capture_screen failed", "error", err)
		return errorResult(err), nil, nil
	}

	s.captures.Save(img, "capture")

	data, err := capture.EncodeBounded(img, capture.MaxEncodedBytes)
	if err != nil {
		s.logger.Error("capture_screen encode failed", "error", err)
		return errorResult(err), nil, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.ImageContent{
			Data:     data,
			MIMEType: "image/jpeg",
		}},
	}, nil, nil
}

// GetScreenText handles the get_screen_text MCP tool call: fetch a
// frame, archive it, and run it through preprocessing and recognition.
func (s *Server) GetScreenText(ctx context.Context, req *mcp.CallToolRequest, in GetScreenTextInput) (*mcp.CallToolResult, any, error) {
	img, err := s.captureImage(ctx)
	if err != nil {
		s.logger.Error("get_screen_text failed", "error", err)
		return errorResult(err), nil, nil
	}

	s.captures.Save(img, "ocr")

	text := s.extractor.ExtractText(ctx, img, true)
	return textResult("%s", text), nil, nil
}

// ExecuteAndRead handles the execute_and_read MCP tool call. The fixed
// order is: type the command, settle, press enter, wait the requested
// time for output, then capture and recognize.
func (s *Server) ExecuteAndRead(ctx context.Context, req *mcp.CallToolRequest, in ExecuteAndReadInput) (*mcp.CallToolResult, any, error) {
	wait := in.WaitSeconds
	if wait <= 0 {
		wait = 1.0
	}

	if err := s.kvm.TypeText(ctx, in.Command, 0); err != nil {
		s.logger.Error("execute_and_read failed", "step", "type", "error", err)
		return errorResult(err), nil, nil
	}
	if err := s.sleep(ctx, enterSettleDelay); err != nil {
		return nil, nil, err
	}
	if err := s.kvm.SendKey(ctx, "enter", nil); err != nil {
		s.logger.Error("execute_and_read failed", "step", "enter", "error", err)
		return errorResult(err), nil, nil
	}
	if err := s.sleep(ctx, time.Duration(wait*float64(time.Second))); err != nil {
		return nil, nil, err
	}

	img, err := s.captureImage(ctx)
	if err != nil {
		s.logger.Error("execute_and_read failed", "step", "capture", "error", err)
		return errorResult(err), nil, nil
	}

	s.captures.Save(img, "exec")

	text := s.extractor.ExtractText(ctx, img, true)
	return textResult("%s", text), nil, nil
}
