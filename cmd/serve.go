package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	mcpSdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sunasaji/mcp-serial-hid-kvm/internal/capture"
	"github.com/sunasaji/mcp-serial-hid-kvm/internal/config"
	"github.com/sunasaji/mcp-serial-hid-kvm/internal/kvm"
	"github.com/sunasaji/mcp-serial-hid-kvm/internal/log"
	"github.com/sunasaji/mcp-serial-hid-kvm/internal/mcp"
	"github.com/sunasaji/mcp-serial-hid-kvm/internal/ocr"
)

const serverName = "serial-hid-kvm"

// runServe initializes the bridge and serves MCP on stdio until the
// process receives SIGINT or SIGTERM.
func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// stdout carries the MCP protocol; logs go to stderr.
	logger := log.New(log.Config{Level: log.ParseLevel(cfg.LogLevel)})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting MCP server",
		"version", AppVersion,
		"kvm_addr", fmt.Sprintf("%s:%d", cfg.KVMHost, cfg.KVMPort))

	client := kvm.NewClient(kvm.Config{
		Host:        cfg.KVMHost,
		Port:        cfg.KVMPort,
		DialTimeout: cfg.DialTimeout(),
		CallTimeout: cfg.CallTimeout(),
	}, logger)
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			logger.Warn("closing KVM connection", "error", closeErr)
		}
	}()

	engine := ocr.NewTesseract(cfg.OCRLanguage)
	defer func() {
		if closeErr := engine.Close(); closeErr != nil {
			logger.Warn("closing OCR engine", "error", closeErr)
		}
	}()

	captures := capture.NewLogger(cfg.CaptureLogDir, logger)
	if captures.Enabled() {
		logger.Info("capture logging enabled", "dir", cfg.CaptureLogDir)
	}

	server, err := mcp.NewServer(mcp.Config{
		Name:       serverName,
		Version:    AppVersion,
		Logger:     logger,
		Controller: client,
		Extractor:  ocr.NewExtractor(engine, logger),
		Captures:   captures,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	logger.Info("MCP server ready", "name", serverName, "transport", "stdio")

	if err := server.Run(ctx, &mcpSdk.StdioTransport{}); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}

	logger.Info("MCP server shut down gracefully")
	return nil
}
