package ocr

import (
	"image"

	"github.com/disintegration/imaging"
)

const (
	// binarizeThreshold splits luminance into text and background after
	// contrast stretching. Tuned for terminal captures.
	binarizeThreshold = 180

	// upscaleFactor compensates for small terminal fonts; Tesseract
	// reads 2x upscaled glyphs far more reliably.
	upscaleFactor = 2
)

// Preprocess conditions a captured frame for text recognition. The
// pipeline: grayscale, 2.0x contrast about the mid-tone, sharpen, invert
// when the image is mostly dark (recognition prefers dark text on a
// light background), binarize at a fixed threshold, then upscale 2x with
// Lanczos resampling.
//
// The result is always double the input's width and height, single
// channel, containing only black and white. Preprocess is deterministic
// and has no shared state, but it is not idempotent: callers must apply
// it at most once per frame.
func Preprocess(img image.Image) *image.Gray {
	gray := toGray(img)

	applyLUT(gray, contrastLUT(2.0))

	gray = nrgbaToGray(imaging.Sharpen(gray, 1.0))

	if meanLuminance(gray) < 128 {
		invert(gray)
	}

	applyLUT(gray, thresholdLUT(binarizeThreshold))

	bounds := gray.Bounds()
	up := imaging.Resize(gray, bounds.Dx()*upscaleFactor, bounds.Dy()*upscaleFactor, imaging.Lanczos)

	// Lanczos resampling reintroduces intermediate tones along glyph
	// edges; requantize so the output stays strictly two-valued.
	out := nrgbaToGray(up)
	applyLUT(out, thresholdLUT(128))
	return out
}

// toGray converts any image to 8-bit grayscale luminance.
func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		bounds := g.Bounds()
		clone := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		for y := 0; y < bounds.Dy(); y++ {
			src := g.Pix[y*g.Stride : y*g.Stride+bounds.Dx()]
			copy(clone.Pix[y*clone.Stride:], src)
		}
		return clone
	}

	gray := nrgbaToGray(imaging.Grayscale(imaging.Clone(img)))
	return gray
}

// nrgbaToGray extracts the red channel of an NRGBA image whose channels
// are known to be equal (grayscale content).
func nrgbaToGray(src *image.NRGBA) *image.Gray {
	bounds := src.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := 0; y < bounds.Dy(); y++ {
		srcRow := src.Pix[y*src.Stride:]
		dstRow := gray.Pix[y*gray.Stride:]
		for x := 0; x < bounds.Dx(); x++ {
			dstRow[x] = srcRow[x*4]
		}
	}
	return gray
}

// contrastLUT builds a lookup table scaling luminance by factor around
// the mid-tone (128), clamped to [0, 255].
func contrastLUT(factor float64) [256]uint8 {
	var lut [256]uint8
	for i := range lut {
		v := 128 + factor*(float64(i)-128)
		switch {
		case v < 0:
			lut[i] = 0
		case v > 255:
			lut[i] = 255
		default:
			lut[i] = uint8(v)
		}
	}
	return lut
}

// thresholdLUT builds a lookup table mapping samples above the threshold
// to white and everything else to black.
func thresholdLUT(threshold uint8) [256]uint8 {
	var lut [256]uint8
	for i := range lut {
		if uint8(i) > threshold {
			lut[i] = 255
		}
	}
	return lut
}

// applyLUT rewrites every sample of the image through the table.
func applyLUT(img *image.Gray, lut [256]uint8) {
	for i, v := range img.Pix {
		img.Pix[i] = lut[v]
	}
}

// meanLuminance returns the average sample value of the image.
func meanLuminance(img *image.Gray) float64 {
	if len(img.Pix) == 0 {
		return 0
	}
	var sum uint64
	for _, v := range img.Pix {
		sum += uint64(v)
	}
	return float64(sum) / float64(len(img.Pix))
}

// invert flips every sample in place.
func invert(img *image.Gray) {
	for i, v := range img.Pix {
		img.Pix[i] = 255 - v
	}
}
