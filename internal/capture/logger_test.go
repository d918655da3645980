package capture

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"

	"github.com/sunasaji/mcp-serial-hid-kvm/internal/log"
)

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 32, 24))
	for y := 0; y < 24; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 8), uint8(y * 10), 128, 255})
		}
	}
	return img
}

func fixedClock() time.Time {
	return time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)
}

func TestSave_WritesTimestampedJPEG(t *testing.T) {
	dir := t.TempDir()
	l := NewLogger(dir, log.NewNop())
	l.now = fixedClock

	path := l.Save(testImage(), "capture")

	want := filepath.Join(dir, "2025-03-14_15-09-26_capture.jpg")
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("reading saved capture: %v", err)
	}
	if _, err := imaging.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("saved capture is not decodable JPEG: %v", err)
	}
}

func TestSave_NoTag(t *testing.T) {
	dir := t.TempDir()
	l := NewLogger(dir, log.NewNop())
	l.now = fixedClock

	path := l.Save(testImage(), "")

	want := filepath.Join(dir, "2025-03-14_15-09-26.jpg")
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
}

func TestSave_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "captures")
	l := NewLogger(dir, log.NewNop())
	l.now = fixedClock

	if path := l.Save(testImage(), "ocr"); path == "" {
		t.Fatal("Save returned empty path, want created file")
	}

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("directory not created: %v", err)
	}
}

func TestSave_DisabledWritesNothing(t *testing.T) {
	l := NewLogger("", log.NewNop())

	if l.Enabled() {
		t.Error("logger with empty dir should be disabled")
	}
	if path := l.Save(testImage(), "capture"); path != "" {
		t.Errorf("disabled logger returned path %q", path)
	}
}

func TestSave_FailureSwallowed(t *testing.T) {
	// Point the logger at a path that cannot be a directory.
	file := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	l := NewLogger(filepath.Join(file, "captures"), log.NewNop())

	// Must not panic, must not return a path.
	if path := l.Save(testImage(), "exec"); path != "" {
		t.Errorf("Save under unusable dir returned %q", path)
	}
}
