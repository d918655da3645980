package mcp

import (
	"bytes"
	"context"
	"errors"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func TestCaptureScreen(t *testing.T) {
	fc := &fakeController{frame: testFrameJPEG(t, 64, 48), frameW: 64, frameH: 48}
	s := newTestServer(t, fc, nil, "")

	result, _, err := s.CaptureScreen(context.Background(), nil, CaptureScreenInput{})
	if err != nil {
		t.Fatalf("CaptureScreen returned error: %v", err)
	}

	if len(result.Content) != 1 {
		t.Fatalf("content count = %d, want 1", len(result.Content))
	}
	img, ok := result.Content[0].(*sdk.ImageContent)
	if !ok {
		t.Fatalf("content is %T, want image", result.Content[0])
	}
	if img.MIMEType != "image/jpeg" {
		t.Errorf("MIME type = %q, want image/jpeg", img.MIMEType)
	}

	decoded, err := imaging.Decode(bytes.NewReader(img.Data))
	if err != nil {
		t.Fatalf("payload is not decodable JPEG: %v", err)
	}
	if decoded.Bounds().Dx() != 64 || decoded.Bounds().Dy() != 48 {
		t.Errorf("payload = %dx%d, want 64x48", decoded.Bounds().Dx(), decoded.Bounds().Dy())
	}

	if fc.calls[0] != "capture_frame q85" {
		t.Errorf("calls = %v", fc.calls)
	}
}

func TestCaptureScreen_WritesCaptureLog(t *testing.T) {
	dir := t.TempDir()
	fc := &fakeController{frame: testFrameJPEG(t, 32, 24)}
	s := newTestServer(t, fc, nil, dir)

	if _, _, err := s.CaptureScreen(context.Background(), nil, CaptureScreenInput{}); err != nil {
		t.Fatalf("CaptureScreen returned error: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("capture log entries = %d, want 1", len(entries))
	}
	name := entries[0].Name()
	if !strings.HasSuffix(name, "_capture.jpg") {
		t.Errorf("capture log name = %q, want *_capture.jpg", name)
	}
}

func TestCaptureScreen_RemoteError(t *testing.T) {
	fc := &fakeController{errs: map[string]error{"capture_frame": errors.New("capture device not open")}}
	s := newTestServer(t, fc, nil, "")

	result, _, err := s.CaptureScreen(context.Background(), nil, CaptureScreenInput{})
	if err != nil {
		t.Fatalf("remote errors must not become protocol faults, got: %v", err)
	}
	if !result.IsError {
		t.Error("result should be IsError")
	}
	if got := resultText(t, result); !strings.Contains(got, "capture device not open") {
		t.Errorf("result = %q", got)
	}
}

func TestGetScreenText_PreprocessesFrame(t *testing.T) {
	engine := &fakeRecognizer{text: "login:"}
	fc := &fakeController{frame: testFrameJPEG(t, 64, 48)}
	s := newTestServer(t, fc, engine, "")

	result, _, err := s.GetScreenText(context.Background(), nil, GetScreenTextInput{})
	if err != nil {
		t.Fatalf("GetScreenText returned error: %v", err)
	}
	if got := resultText(t, result); got != "login:" {
		t.Errorf("result = %q", got)
	}

	// The engine must see the preprocessed frame: double dimensions.
	if engine.sawBounds.Dx() != 128 || engine.sawBounds.Dy() != 96 {
		t.Errorf("engine saw %dx%d, want 128x96",
			engine.sawBounds.Dx(), engine.sawBounds.Dy())
	}
}

func TestGetScreenText_EngineFailureBecomesText(t *testing.T) {
	engine := &fakeRecognizer{err: errors.New("tesseract crashed")}
	fc := &fakeController{frame: testFrameJPEG(t, 32, 24)}
	s := newTestServer(t, fc, engine, "")

	result, _, err := s.GetScreenText(context.Background(), nil, GetScreenTextInput{})
	if err != nil {
		t.Fatalf("GetScreenText returned error: %v", err)
	}
	// Recognition failure is embedded in the text, not an error result.
	if result.IsError {
		t.Error("OCR failure should still be a successful tool result")
	}
	if got := resultText(t, result); !strings.Contains(got, "tesseract crashed") {
		t.Errorf("result = %q", got)
	}
}

// TestExecuteAndRead_Sequence pins the fixed call order: type, settle,
// enter, output wait, capture.
func TestExecuteAndRead_Sequence(t *testing.T) {
	engine := &fakeRecognizer{text: "total 4"}
	fc := &fakeController{frame: testFrameJPEG(t, 32, 24)}
	s := newTestServer(t, fc, engine, "")

	result, _, err := s.ExecuteAndRead(context.Background(), nil, ExecuteAndReadInput{
		Command:     "ls -la",
		WaitSeconds: 2.5,
	})
	if err != nil {
		t.Fatalf("ExecuteAndRead returned error: %v", err)
	}
	if got := resultText(t, result); got != "total 4" {
		t.Errorf("result = %q", got)
	}

	want := []string{
		`type_text "ls -la" delay=0`,
		"sleep 100ms",
		"send_key enter mods=[]",
		"sleep 2.5s",
		"capture_frame q85",
	}
	if !reflect.DeepEqual(fc.calls, want) {
		t.Errorf("call order = %v, want %v", fc.calls, want)
	}
}

func TestExecuteAndRead_DefaultWait(t *testing.T) {
	fc := &fakeController{frame: testFrameJPEG(t, 32, 24)}
	s := newTestServer(t, fc, nil, "")

	if _, _, err := s.ExecuteAndRead(context.Background(), nil, ExecuteAndReadInput{Command: "uptime"}); err != nil {
		t.Fatalf("ExecuteAndRead returned error: %v", err)
	}

	if fc.calls[3] != "sleep 1s" {
		t.Errorf("output wait = %q, want sleep 1s", fc.calls[3])
	}
}

func TestExecuteAndRead_TypeFailureStopsSequence(t *testing.T) {
	fc := &fakeController{errs: map[string]error{"type_text": errors.New("not connected")}}
	s := newTestServer(t, fc, nil, "")

	result, _, err := s.ExecuteAndRead(context.Background(), nil, ExecuteAndReadInput{Command: "ls"})
	if err != nil {
		t.Fatalf("ExecuteAndRead returned error: %v", err)
	}
	if !result.IsError {
		t.Error("result should be IsError")
	}
	if len(fc.calls) != 1 {
		t.Errorf("sequence should stop after failed type, calls = %v", fc.calls)
	}
}

func TestExecuteAndRead_WritesExecCaptureLog(t *testing.T) {
	dir := t.TempDir()
	fc := &fakeController{frame: testFrameJPEG(t, 32, 24)}
	s := newTestServer(t, fc, nil, dir)

	if _, _, err := s.ExecuteAndRead(context.Background(), nil, ExecuteAndReadInput{Command: "ls"}); err != nil {
		t.Fatalf("ExecuteAndRead returned error: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || !strings.HasSuffix(entries[0].Name(), "_exec.jpg") {
		t.Errorf("capture log = %v, want one *_exec.jpg", entries)
	}
}
