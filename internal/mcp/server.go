package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sunasaji/mcp-serial-hid-kvm/internal/capture"
	"github.com/sunasaji/mcp-serial-hid-kvm/internal/kvm"
	"github.com/sunasaji/mcp-serial-hid-kvm/internal/log"
	"github.com/sunasaji/mcp-serial-hid-kvm/internal/ocr"
)

// Controller is the remote hardware surface consumed by the tool
// handlers. *kvm.Client satisfies it; tests substitute a recorder.
type Controller interface {
	CaptureFrameJPEG(ctx context.Context, quality int) ([]byte, int, int, error)
	TypeText(ctx context.Context, text string, charDelayMS int) error
	SendKey(ctx context.Context, key string, modifiers []string) error
	SendKeySequence(ctx context.Context, steps []kvm.KeyStep, defaultDelayMS int) error
	MouseMove(ctx context.Context, x, y int, relative bool) error
	MouseDown(ctx context.Context, button string, x, y int) error
	MouseUp(ctx context.Context, button string, x, y int) error
	MouseClick(ctx context.Context, button string, x, y *int) error
	MouseScroll(ctx context.Context, amount int) error
	DeviceInfo(ctx context.Context) (kvm.DeviceInfo, error)
	ListCaptureDevices(ctx context.Context) ([]kvm.CaptureDevice, error)
	SetCaptureResolution(ctx context.Context, width, height int) (kvm.CaptureInfo, error)
	SetCaptureDevice(ctx context.Context, device string) (kvm.CaptureInfo, error)
}

// Server wraps the MCP SDK server and the KVM bridge collaborators.
type Server struct {
	mcpServer *mcp.Server
	kvm       Controller
	extractor *ocr.Extractor
	captures  *capture.Logger
	logger    log.Logger
	name      string
	version   string

	// sleep implements the fixed inter-call delays that let the remote
	// device register discrete input states. Swappable for tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// Config holds the collaborators the server dispatches to. All fields
// are required; the capture logger may be a disabled instance but not
// nil.
type Config struct {
	Name       string
	Version    string
	Logger     log.Logger
	Controller Controller
	Extractor  *ocr.Extractor
	Captures   *capture.Logger
}

// NewServer creates the MCP server and registers all KVM tools.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("server name is required")
	}
	if cfg.Version == "" {
		return nil, fmt.Errorf("server version is required")
	}
	if cfg.Controller == nil {
		return nil, fmt.Errorf("KVM controller is required")
	}
	if cfg.Extractor == nil {
		return nil, fmt.Errorf("text extractor is required")
	}
	if cfg.Captures == nil {
		return nil, fmt.Errorf("capture logger is required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, nil)

	s := &Server{
		mcpServer: mcpServer,
		kvm:       cfg.Controller,
		extractor: cfg.Extractor,
		captures:  cfg.Captures,
		logger:    cfg.Logger,
		name:      cfg.Name,
		version:   cfg.Version,
		sleep:     sleepContext,
	}

	if err := s.registerKeyboardTools(); err != nil {
		return nil, fmt.Errorf("registering keyboard tools: %w", err)
	}
	if err := s.registerMouseTools(); err != nil {
		return nil, fmt.Errorf("registering mouse tools: %w", err)
	}
	if err := s.registerScreenTools(); err != nil {
		return nil, fmt.Errorf("registering screen tools: %w", err)
	}
	if err := s.registerDeviceTools(); err != nil {
		return nil, fmt.Errorf("registering device tools: %w", err)
	}

	return s, nil
}

// Run starts the MCP server on the given transport. This is a blocking
// call that handles all MCP protocol communication.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	return s.mcpServer.Run(ctx, transport)
}

// sleepContext waits for the duration or the context, whichever ends
// first. The delays in drag and execute-and-read are part of the tool
// contract and must only be skipped when the whole call is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
