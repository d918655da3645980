// Package kvm implements the client side of the KVM server protocol.
//
// The KVM server owns all hardware: it injects keyboard and mouse events
// over a serial HID adapter and captures the target display over HDMI.
// This client speaks its TCP protocol, one JSON object per line in each
// direction, and exposes each remote operation as a typed method.
//
// The connection is established lazily on the first call and reused for
// the process lifetime. Calls are synchronous round-trips guarded by a
// mutex, so a Client is safe for concurrent use even though the MCP loop
// serializes tool calls. Every call carries a deadline; there are no
// retries. After a transport error the connection is dropped and the
// next call dials again, once.
package kvm

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/sunasaji/mcp-serial-hid-kvm/internal/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	// ErrService indicates a failure reported by the KVM server itself
	// (device not found, invalid parameter, serial error).
	ErrService = errors.New("kvm server error")

	// ErrTransport indicates the connection to the KVM server failed.
	ErrTransport = errors.New("kvm connection error")
)

// Config holds client connection settings.
type Config struct {
	Host        string
	Port        int
	DialTimeout time.Duration
	CallTimeout time.Duration
}

// Client is a synchronous client for the KVM server.
type Client struct {
	cfg    Config
	logger log.Logger

	// dial is swappable for tests; defaults to net.DialTimeout.
	dial func(addr string, timeout time.Duration) (net.Conn, error)

	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
}

// NewClient creates a client for the KVM server at cfg.Host:cfg.Port.
// No connection is made until the first call.
func NewClient(cfg Config, logger log.Logger) *Client {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 30 * time.Second
	}
	return &Client{
		cfg:    cfg,
		logger: logger,
		dial: func(addr string, timeout time.Duration) (net.Conn, error) {
			return net.DialTimeout("tcp", addr, timeout)
		},
	}
}

// Close closes the connection if one was established.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.reader = nil
	return err
}

// ensureLocked dials the KVM server if no connection is live.
// Caller must hold c.mu.
func (c *Client) ensureLocked() error {
	if c.conn != nil {
		return nil
	}

	addr := net.JoinHostPort(c.cfg.Host, strconv.Itoa(c.cfg.Port))
	conn, err := c.dial(addr, c.cfg.DialTimeout)
	if err != nil {
		return fmt.Errorf("%w: dialing %s: %v", ErrTransport, addr, err)
	}

	c.conn = conn
	c.reader = bufio.NewReader(conn)
	c.logger.Info("connected to KVM server", "addr", addr)
	return nil
}

// dropLocked discards a connection after a transport error so the next
// call redials. Caller must hold c.mu.
func (c *Client) dropLocked() {
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.conn = nil
	c.reader = nil
}

// call performs one request/response round-trip. The deadline covers
// both directions; context cancellation is checked before the write.
func (c *Client) call(ctx context.Context, cmd string, params any, out any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := c.ensureLocked(); err != nil {
		return err
	}

	deadline := time.Now().Add(c.cfg.CallTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		c.dropLocked()
		return fmt.Errorf("%w: setting deadline: %v", ErrTransport, err)
	}

	line, err := json.Marshal(request{Cmd: cmd, Params: params})
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", cmd, err)
	}
	line = append(line, '\n')

	if _, err := c.conn.Write(line); err != nil {
		c.dropLocked()
		return fmt.Errorf("%w: sending %s: %v", ErrTransport, cmd, err)
	}

	raw, err := c.reader.ReadBytes('\n')
	if err != nil {
		c.dropLocked()
		return fmt.Errorf("%w: reading %s response: %v", ErrTransport, cmd, err)
	}

	var resp response
	if err := json.Unmarshal(raw, &resp); err != nil {
		c.dropLocked()
		return fmt.Errorf("%w: malformed %s response: %v", ErrTransport, cmd, err)
	}

	if resp.Status != "ok" {
		return fmt.Errorf("%w: %s: %s", ErrService, cmd, resp.Error)
	}

	if out != nil && len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, out); err != nil {
			return fmt.Errorf("decoding %s response data: %w", cmd, err)
		}
	}
	return nil
}

// CaptureFrameJPEG fetches one frame from the capture device, encoded as
// JPEG at the given quality on the server side.
func (c *Client) CaptureFrameJPEG(ctx context.Context, quality int) ([]byte, int, int, error) {
	var data frameData
	if err := c.call(ctx, "capture_frame", captureFrameParams{Quality: quality}, &data); err != nil {
		return nil, 0, 0, err
	}
	if len(data.JPEG) == 0 {
		return nil, 0, 0, fmt.Errorf("%w: capture_frame: empty frame", ErrService)
	}
	return data.JPEG, data.Width, data.Height, nil
}

// TypeText types text on the target. Inline {tag} sequences are
// interpreted by the server. charDelayMS of 0 uses the server default.
func (c *Client) TypeText(ctx context.Context, text string, charDelayMS int) error {
	return c.call(ctx, "type_text", typeTextParams{Text: text, CharDelayMS: charDelayMS}, nil)
}

// SendKey presses a single key with optional modifiers.
func (c *Client) SendKey(ctx context.Context, key string, modifiers []string) error {
	return c.call(ctx, "send_key", sendKeyParams{Key: key, Modifiers: modifiers}, nil)
}

// SendKeySequence sends an ordered list of key steps. Step order is
// preserved exactly; defaultDelayMS applies to steps without a delay.
func (c *Client) SendKeySequence(ctx context.Context, steps []KeyStep, defaultDelayMS int) error {
	return c.call(ctx, "send_key_sequence", keySequenceParams{Steps: steps, DefaultDelayMS: defaultDelayMS}, nil)
}

// MouseMove moves the pointer, absolutely or relative to its position.
func (c *Client) MouseMove(ctx context.Context, x, y int, relative bool) error {
	return c.call(ctx, "mouse_move", mouseMoveParams{X: x, Y: y, Relative: relative}, nil)
}

// MouseDown presses a mouse button at the given position.
func (c *Client) MouseDown(ctx context.Context, button string, x, y int) error {
	return c.call(ctx, "mouse_down", mouseButtonParams{Button: button, X: &x, Y: &y}, nil)
}

// MouseUp releases a mouse button at the given position.
func (c *Client) MouseUp(ctx context.Context, button string, x, y int) error {
	return c.call(ctx, "mouse_up", mouseButtonParams{Button: button, X: &x, Y: &y}, nil)
}

// MouseClick clicks a button, optionally at a position. Nil coordinates
// click at the current pointer position.
func (c *Client) MouseClick(ctx context.Context, button string, x, y *int) error {
	return c.call(ctx, "mouse_click", mouseButtonParams{Button: button, X: x, Y: y}, nil)
}

// MouseScroll scrolls the wheel. Positive amounts scroll up.
func (c *Client) MouseScroll(ctx context.Context, amount int) error {
	return c.call(ctx, "mouse_scroll", mouseScrollParams{Amount: amount}, nil)
}

// DeviceInfo reports connection status and device information for the
// serial adapter and the capture device.
func (c *Client) DeviceInfo(ctx context.Context) (DeviceInfo, error) {
	var info DeviceInfo
	if err := c.call(ctx, "get_device_info", nil, &info); err != nil {
		return nil, err
	}
	return info, nil
}

// ListCaptureDevices lists available video capture devices in server
// enumeration order.
func (c *Client) ListCaptureDevices(ctx context.Context) ([]CaptureDevice, error) {
	var data captureDevicesData
	if err := c.call(ctx, "list_capture_devices", nil, &data); err != nil {
		return nil, err
	}
	return data.Devices, nil
}

// SetCaptureResolution requests a capture resolution change and returns
// the resolution actually applied, which may differ from the request.
func (c *Client) SetCaptureResolution(ctx context.Context, width, height int) (CaptureInfo, error) {
	var data captureInfoData
	if err := c.call(ctx, "set_capture_resolution", captureResolutionParams{Width: width, Height: height}, &data); err != nil {
		return CaptureInfo{}, err
	}
	return data.Info, nil
}

// SetCaptureDevice switches the active capture device by index or path
// and returns the resulting device state.
func (c *Client) SetCaptureDevice(ctx context.Context, device string) (CaptureInfo, error) {
	var data captureInfoData
	if err := c.call(ctx, "set_capture_device", captureDeviceParams{Device: device}, &data); err != nil {
		return CaptureInfo{}, err
	}
	return data.Info, nil
}
