package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mcp-serial-hid-kvm",
	Short: "MCP server for serial HID + HDMI capture KVM control",
	Long: `mcp-serial-hid-kvm exposes a hardware KVM (serial HID keyboard/mouse
plus an HDMI capture device) as MCP tools over stdio, so an AI agent can
type, click, watch the screen and read it back via OCR.

The actual hardware is driven by a separate KVM service reached over
TCP; this process bridges MCP tool calls to that service.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
