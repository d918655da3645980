// Package ocr turns captured frames into text.
//
// It has two halves: a deterministic preprocessing pipeline that
// conditions a frame for recognition (see Preprocess), and an Extractor
// that runs a recognition engine on the result and cleans its raw
// output. The engine itself is an external collaborator behind the
// Recognizer interface; the production implementation binds Tesseract
// via gosseract, configured for single-block page segmentation as is
// appropriate for terminal screens.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"regexp"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/sunasaji/mcp-serial-hid-kvm/internal/log"
)

// Recognizer converts an image to text. Implementations may fail with an
// engine-specific error; Extractor turns that into a marker string so
// text tools never fault.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// Tesseract is a Recognizer backed by a local Tesseract installation.
// The underlying client is constructed lazily on first use and reused
// for the process lifetime.
type Tesseract struct {
	language string

	mu     sync.Mutex
	client *gosseract.Client
}

// NewTesseract creates a Tesseract recognizer for the given language
// (e.g. "eng"). No Tesseract resources are allocated until the first
// Recognize call.
func NewTesseract(language string) *Tesseract {
	return &Tesseract{language: language}
}

// Recognize runs Tesseract on the image in single-block mode.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.client == nil {
		client := gosseract.NewClient()
		if err := client.SetLanguage(t.language); err != nil {
			_ = client.Close()
			return "", fmt.Errorf("setting language %q: %w", t.language, err)
		}
		// Terminal captures are one uniform block of text, not a
		// document with columns or headings.
		if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
			_ = client.Close()
			return "", fmt.Errorf("setting page segmentation mode: %w", err)
		}
		t.client = client
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encoding image for recognition: %w", err)
	}
	if err := t.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("loading image into tesseract: %w", err)
	}

	text, err := t.client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract recognition: %w", err)
	}
	return text, nil
}

// Close releases the Tesseract client if one was created.
func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == nil {
		return nil
	}
	err := t.client.Close()
	t.client = nil
	return err
}

// Extractor extracts cleaned text from frames using a Recognizer.
type Extractor struct {
	engine Recognizer
	logger log.Logger
}

// NewExtractor creates an Extractor around the given engine.
func NewExtractor(engine Recognizer, logger log.Logger) *Extractor {
	return &Extractor{engine: engine, logger: logger}
}

// ExtractText recognizes text in a frame. When preprocess is true the
// frame is routed through Preprocess first; pass false for frames that
// were already preprocessed, since applying the pipeline twice
// over-processes the image.
//
// Engine failures are not propagated: the returned string embeds the
// failure reason so the tool layer always has text to report.
func (e *Extractor) ExtractText(ctx context.Context, img image.Image, preprocess bool) string {
	processed := img
	if preprocess {
		processed = Preprocess(img)
	}

	text, err := e.engine.Recognize(ctx, processed)
	if err != nil {
		e.logger.Error("OCR failed", "error", err)
		return fmt.Sprintf("[OCR Error: %s]", err)
	}

	return postprocess(text)
}

// blankRuns matches runs of four or more newlines, which OCR produces
// for large empty screen regions.
var blankRuns = regexp.MustCompile(`\n{4,}`)

// corrections maps known recognition confusions to their fix. Keys are
// literal substrings and do not overlap, so application order does not
// matter. The vertical-bar misread of "ls" is endemic in terminal
// captures.
var corrections = map[string]string{
	" |s ":  " ls ",
	" |s\n": " ls\n",
	"\n|s ": "\nls ",
}

// postprocess cleans raw recognizer output: trailing whitespace is
// stripped per line, long blank runs collapse to two blank lines, the
// correction table is applied, and the whole result is trimmed.
func postprocess(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}

	result := strings.Join(lines, "\n")
	result = blankRuns.ReplaceAllString(result, "\n\n\n")

	for wrong, correct := range corrections {
		result = strings.ReplaceAll(result, wrong, correct)
	}

	return strings.TrimSpace(result)
}
