// Package mcp implements the Model Context Protocol (MCP) server for the
// KVM bridge.
//
// The server exposes remote-control tools (typing, key presses, mouse
// motion, screen capture and screen OCR) to MCP clients, and translates
// each tool call into one or more
// synchronous round-trips to the KVM server that owns the hardware.
//
// # Architecture
//
//	MCP Client (agent host)
//	     |
//	     | (MCP protocol over stdio)
//	     v
//	Server (MCP SDK)
//	     |
//	     +-- keyboard tools: type_text, send_key, send_key_sequence
//	     +-- mouse tools:    mouse_move, mouse_click, mouse_drag, mouse_scroll
//	     +-- screen tools:   capture_screen, get_screen_text, execute_and_read
//	     +-- device tools:   get_device_info, list_capture_devices,
//	     |                   set_capture_resolution, set_capture_device
//	     v
//	Controller (kvm.Client over TCP)  +  ocr.Extractor  +  capture.Logger
//
// # Ordering and timing
//
// Tool invocations are handled one at a time by the protocol loop.
// Within one invocation, remote calls execute in the exact order the
// tool defines; tools that model a physical action over time (mouse_drag,
// execute_and_read) interleave fixed delays between calls so the serial
// HID device registers each discrete state. Those delays are part of the
// tool contract and must not be removed.
//
// # Error handling
//
// A tool call never propagates a remote-service or recognition failure
// as a protocol fault. All such errors become textual results with
// IsError set, so the agent always receives a well-formed response it
// can read and react to. Only context cancellation (the host tearing
// down the call) surfaces as a Go error.
package mcp
