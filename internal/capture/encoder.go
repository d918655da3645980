// Package capture handles the image side channels of the bridge: bounded
// JPEG encoding of captured frames for transport, and the best-effort
// on-disk capture log.
package capture

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// MaxEncodedBytes is the transport ceiling for an encoded frame. The MCP
// host rejects oversized payloads once base64 inflation is applied;
// 10 MB of JPEG stays safely under that limit.
const MaxEncodedBytes = 10_000_000

const (
	startQuality    = 85
	qualityStep     = 15
	minQuality      = 20
	fallbackQuality = 60
)

// EncodeBounded encodes a frame as JPEG, degrading until the result fits
// the limit: start at quality 85, step down by 15 while the output is
// over the limit and quality stays above 20, then as a terminal fallback
// halve both dimensions and encode once at quality 60. The fallback
// result is returned regardless of size; the degradation is bounded,
// not repeated.
func EncodeBounded(img image.Image, limit int) ([]byte, error) {
	quality := startQuality

	data, err := encodeJPEG(img, quality)
	if err != nil {
		return nil, err
	}

	for len(data) > limit && quality > minQuality {
		quality -= qualityStep
		if data, err = encodeJPEG(img, quality); err != nil {
			return nil, err
		}
	}

	if len(data) > limit {
		bounds := img.Bounds()
		half := imaging.Resize(img, bounds.Dx()/2, bounds.Dy()/2, imaging.NearestNeighbor)
		if data, err = encodeJPEG(half, fallbackQuality); err != nil {
			return nil, err
		}
	}

	return data, nil
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encoding JPEG at quality %d: %w", quality, err)
	}
	return buf.Bytes(), nil
}
