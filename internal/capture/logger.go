package capture

import (
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"

	"github.com/sunasaji/mcp-serial-hid-kvm/internal/log"
)

// logQuality is the fixed JPEG quality for archived captures.
const logQuality = 85

// Logger archives captured frames to a directory for diagnostics. It is
// entirely best-effort: every failure is logged as a warning and
// swallowed, never surfaced to the tool call that triggered the capture.
// A Logger with an empty directory is disabled and writes nothing.
type Logger struct {
	dir    string
	logger log.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewLogger creates a capture logger writing to dir. An empty dir
// disables logging entirely.
func NewLogger(dir string, logger log.Logger) *Logger {
	return &Logger{dir: dir, logger: logger, now: time.Now}
}

// Enabled reports whether captures will be archived.
func (l *Logger) Enabled() bool {
	return l.dir != ""
}

// Save archives one frame, named by a second-resolution timestamp plus
// an optional tag suffix. It returns the written path, or "" when
// logging is disabled or the write failed.
func (l *Logger) Save(img image.Image, tag string) string {
	if l.dir == "" {
		return ""
	}

	if err := os.MkdirAll(l.dir, 0o750); err != nil {
		l.logger.Warn("failed to create capture log directory", "dir", l.dir, "error", err)
		return ""
	}

	name := l.now().Format("2006-01-02_15-04-05")
	if tag != "" {
		name += "_" + tag
	}
	path := filepath.Join(l.dir, name+".jpg")

	if err := imaging.Save(img, path, imaging.JPEGQuality(logQuality)); err != nil {
		l.logger.Warn("failed to save capture log", "path", path, "error", err)
		return ""
	}

	l.logger.Info("capture log saved", "path", path)
	return path
}
