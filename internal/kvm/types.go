package kvm

import jsoniter "github.com/json-iterator/go"

// request is one command frame sent to the KVM server.
type request struct {
	Cmd    string `json:"cmd"`
	Params any    `json:"params,omitempty"`
}

// response is one reply frame from the KVM server. Data is left raw so
// each call can decode its own payload shape.
type response struct {
	Status string              `json:"status"`
	Error  string              `json:"error,omitempty"`
	Data   jsoniter.RawMessage `json:"data,omitempty"`
}

// KeyStep is one element of a key sequence. Order within a sequence is
// significant and is forwarded to the server exactly as submitted.
type KeyStep struct {
	Key       string   `json:"key"`
	Modifiers []string `json:"modifiers,omitempty"`
	DelayMS   int      `json:"delay_ms,omitempty"`
}

// CaptureDevice describes one video capture device on the KVM server.
type CaptureDevice struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

// CaptureInfo describes the state of the active capture device.
type CaptureInfo struct {
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Backend string `json:"backend,omitempty"`
}

// DeviceInfo is the structured status reported by the KVM server for the
// serial adapter and the capture device. The shape is owned by the
// server; it is carried opaquely and rendered as JSON for the caller.
type DeviceInfo map[string]any

type frameData struct {
	JPEG   []byte `json:"jpeg"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type typeTextParams struct {
	Text        string `json:"text"`
	CharDelayMS int    `json:"char_delay_ms,omitempty"`
}

type sendKeyParams struct {
	Key       string   `json:"key"`
	Modifiers []string `json:"modifiers,omitempty"`
}

type keySequenceParams struct {
	Steps          []KeyStep `json:"steps"`
	DefaultDelayMS int       `json:"default_delay_ms,omitempty"`
}

type mouseMoveParams struct {
	X        int  `json:"x"`
	Y        int  `json:"y"`
	Relative bool `json:"relative,omitempty"`
}

type mouseButtonParams struct {
	Button string `json:"button"`
	X      *int   `json:"x,omitempty"`
	Y      *int   `json:"y,omitempty"`
}

type mouseScrollParams struct {
	Amount int `json:"amount"`
}

type captureFrameParams struct {
	Quality int `json:"quality"`
}

type captureResolutionParams struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type captureDeviceParams struct {
	Device string `json:"device"`
}

type captureInfoData struct {
	Info CaptureInfo `json:"info"`
}

type captureDevicesData struct {
	Devices []CaptureDevice `json:"devices"`
}
