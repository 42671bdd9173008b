package images

import (
	"fmt"
	"image"

	"github.com/bbrks/go-blurhash"
	"golang.org/x/image/draw"
)

// Blurhash is computed on a small thumbnail; the placeholder carries no
// detail a larger source would add, and 64px keeps encoding fast.
const blurHashSize = 64

// ComputeBlurHash produces a blurhash placeholder string for an image.
// 4x3 components suit portrait book covers and avatars alike.
func ComputeBlurHash(img image.Image) (string, error) {
	hash, err := blurhash.Encode(4, 3, thumbnail(img))
	if err != nil {
		return "", fmt.Errorf("encode blurhash: %w", err)
	}
	return hash, nil
}

// thumbnail downscales img to at most blurHashSize on its longest edge.
func thumbnail(img image.Image) image.Image {
	bounds := img.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	if srcW <= blurHashSize && srcH <= blurHashSize {
		return img
	}

	var dstW, dstH int
	if srcW > srcH {
		dstW = blurHashSize
		dstH = max(1, (srcH*blurHashSize)/srcW)
	} else {
		dstH = blurHashSize
		dstW = max(1, (srcW*blurHashSize)/srcH)
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
