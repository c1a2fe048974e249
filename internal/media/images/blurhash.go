package images

import (
	"fmt"
	"image"

	"github.com/bbrks/go-blurhash"
)

// blurHashSize is the target size for BlurHash computation.
// A small thumbnail gives nearly the same hash in a fraction of the time.
const blurHashSize = 64

// BlurHash encodes img as a BlurHash placeholder with 4x3 components.
func BlurHash(img image.Image) (string, error) {
	hash, err := blurhash.Encode(4, 3, resizeForBlurHash(img))
	if err != nil {
		return "", fmt.Errorf("encode blurhash: %w", err)
	}
	return hash, nil
}

// resizeForBlurHash scales img down with nearest-neighbour sampling,
// keeping the aspect ratio.
func resizeForBlurHash(img image.Image) image.Image {
	bounds := img.Bounds()
	srcWidth := bounds.Dx()
	srcHeight := bounds.Dy()

	if srcWidth <= blurHashSize && srcHeight <= blurHashSize {
		return img
	}

	var dstWidth, dstHeight int
	if srcWidth > srcHeight {
		dstWidth = blurHashSize
		dstHeight = max((srcHeight*blurHashSize)/srcWidth, 1)
	} else {
		dstHeight = blurHashSize
		dstWidth = max((srcWidth*blurHashSize)/srcHeight, 1)
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstWidth, dstHeight))
	xRatio := float64(srcWidth) / float64(dstWidth)
	yRatio := float64(srcHeight) / float64(dstHeight)

	for y := range dstHeight {
		for x := range dstWidth {
			srcX := int(float64(x) * xRatio)
			srcY := int(float64(y) * yRatio)
			dst.Set(x, y, img.At(bounds.Min.X+srcX, bounds.Min.Y+srcY))
		}
	}

	return dst
}
