package mcp

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// GetDeviceInfoInput defines the (empty) input schema for get_device_info.
type GetDeviceInfoInput struct{}

// ListCaptureDevicesInput defines the (empty) input schema for
// list_capture_devices.
type ListCaptureDevicesInput struct{}

// SetCaptureResolutionInput defines the input schema for
// set_capture_resolution.
type SetCaptureResolutionInput struct {
	Width  int `json:"width" jsonschema:"Capture width in pixels (e.g. 1920)"`
	Height int `json:"height" jsonschema:"Capture height in pixels (e.g. 1080)"`
}

// SetCaptureDeviceInput defines the input schema for set_capture_device.
type SetCaptureDeviceInput struct {
	Device string `json:"device" jsonschema:"Device index (e.g. '0', '1') or path (e.g. '/dev/video0')"`
}

// registerDeviceTools registers get_device_info, list_capture_devices,
// set_capture_resolution and set_capture_device to the MCP server.
func (s *Server) registerDeviceTools() error {
	infoSchema, err := jsonschema.For[GetDeviceInfoInput](nil)
	if err != nil {
		return fmt.Errorf("schema for get_device_info: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_device_info",
		Description: "Show connection status and device information for the serial adapter and HDMI capture device.",
		InputSchema: infoSchema,
	}, s.GetDeviceInfo)

	listSchema, err := jsonschema.For[ListCaptureDevicesInput](nil)
	if err != nil {
		return fmt.Errorf("schema for list_capture_devices: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_capture_devices",
		Description: "List all available video capture devices with their index and name. Use this to find the correct HDMI capture device.",
		InputSchema: listSchema,
	}, s.ListCaptureDevices)

	resolutionSchema, err := jsonschema.For[SetCaptureResolutionInput](nil)
	if err != nil {
		return fmt.Errorf("schema for set_capture_resolution: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "set_capture_resolution",
		Description: "Change the HDMI capture resolution. Common values: 1920x1080, 1280x720, 640x480. The actual resolution depends on what the capture device supports.",
		InputSchema: resolutionSchema,
	}, s.SetCaptureResolution)

	deviceSchema, err := jsonschema.For[SetCaptureDeviceInput](nil)
	if err != nil {
		return fmt.Errorf("schema for set_capture_device: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "set_capture_device",
		Description: "Switch the active capture device by index or path. Use list_capture_devices first to see available options. Reopens the capture device.",
		InputSchema: deviceSchema,
	}, s.SetCaptureDevice)

	return nil
}

// GetDeviceInfo handles the get_device_info MCP tool call.
func (s *Server) GetDeviceInfo(ctx context.Context, req *mcp.CallToolRequest, in GetDeviceInfoInput) (*mcp.CallToolResult, any, error) {
	info, err := s.kvm.DeviceInfo(ctx)
	if err != nil {
		s.logger.Error("get_device_info failed", "error", err)
		return errorResult(err), nil, nil
	}

	return textResult("%s", jsonText(info)), nil, nil
}

// ListCaptureDevices handles the list_capture_devices MCP tool call. An
// empty device list produces an explicit message rather than an empty
// structure, so the agent does not have to interpret "[]".
func (s *Server) ListCaptureDevices(ctx context.Context, req *mcp.CallToolRequest, in ListCaptureDevicesInput) (*mcp.CallToolResult, any, error) {
	devices, err := s.kvm.ListCaptureDevices(ctx)
	if err != nil {
		s.logger.Error("list_capture_devices failed", "error", err)
		return errorResult(err), nil, nil
	}

	if len(devices) == 0 {
		return textResult("No capture devices found."), nil, nil
	}
	return textResult("%s", jsonText(devices)), nil, nil
}

// SetCaptureResolution handles the set_capture_resolution MCP tool call.
// The result reports both the requested and the applied resolution: the
// device is free to pick the closest mode it supports.
func (s *Server) SetCaptureResolution(ctx context.Context, req *mcp.CallToolRequest, in SetCaptureResolutionInput) (*mcp.CallToolResult, any, error) {
	if in.Width <= 0 || in.Height <= 0 {
		return invalidResult("resolution must be positive, got %dx%d", in.Width, in.Height), nil, nil
	}

	info, err := s.kvm.SetCaptureResolution(ctx, in.Width, in.Height)
	if err != nil {
		s.logger.Error("set_capture_resolution failed", "error", err)
		return errorResult(err), nil, nil
	}

	return textResult("Resolution set: %dx%d (requested %dx%d)",
		info.Width, info.Height, in.Width, in.Height), nil, nil
}

// SetCaptureDevice handles the set_capture_device MCP tool call.
func (s *Server) SetCaptureDevice(ctx context.Context, req *mcp.CallToolRequest, in SetCaptureDeviceInput) (*mcp.CallToolResult, any, error) {
	if in.Device == "" {
		return invalidResult("device must not be empty"), nil, nil
	}

	info, err := s.kvm.SetCaptureDevice(ctx, in.Device)
	if err != nil {
		s.logger.Error("set_capture_device failed", "device", in.Device, "error", err)
		return errorResult(err), nil, nil
	}

	return textResult("Switched to device %s: %dx%d (%s)",
		in.Device, info.Width, info.Height, info.Backend), nil, nil
}
