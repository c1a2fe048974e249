// Package images validates pictures uploaded for analysis.
package images

import (
	"bytes"
	"image"
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp" // Register WebP decoder

	"github.com/vitrinelab/vitrine/internal/domain"
	"github.com/vitrinelab/vitrine/internal/errors"
)

// DefaultMaxBytes is the largest accepted upload.
const DefaultMaxBytes = 10 << 20

// maxPixels bounds decoded size so a tiny file cannot expand into gigabytes.
const maxPixels = 50_000_000

// Accepted content types.
var accepted = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Info describes an accepted image.
type Info struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	BlurHash    string `json:"blurHash,omitempty"`
}

// Inspect checks that img is a JPEG, PNG or WebP of at most maxBytes that
// actually decodes. The returned image carries the sniffed content type,
// whatever the client declared.
func Inspect(img domain.Image, maxBytes int64) (domain.Image, Info, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if len(img.Data) == 0 {
		return img, Info{}, errors.Validationf("image %q is empty", img.Name)
	}
	if int64(len(img.Data)) > maxBytes {
		return img, Info{}, errors.PayloadTooLargef("image %q exceeds %d bytes", img.Name, maxBytes)
	}

	contentType := mimetype.Detect(img.Data).String()
	if !accepted[contentType] {
		return img, Info{}, errors.UnsupportedMediaf("image %q has unsupported type %s (want JPG, PNG or WEBP)", img.Name, contentType)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return img, Info{}, errors.Validationf("image %q could not be read", img.Name).WithCause(err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxPixels {
		return img, Info{}, errors.Validationf("image %q has unsupported dimensions %dx%d", img.Name, cfg.Width, cfg.Height)
	}

	decoded, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return img, Info{}, errors.Validationf("image %q could not be decoded", img.Name).WithCause(err)
	}

	info := Info{
		Name:        img.Name,
		ContentType: contentType,
		Size:        len(img.Data),
		Width:       cfg.Width,
		Height:      cfg.Height,
	}
	// The placeholder is cosmetic; an image that decodes is accepted without one.
	if hash, err := BlurHash(decoded); err == nil {
		info.BlurHash = hash
	}

	img.ContentType = contentType
	return img, info, nil
}

// InspectAll runs Inspect over imgs, stopping at the first rejection.
func InspectAll(imgs []domain.Image, maxBytes int64) ([]domain.Image, []Info, error) {
	out := make([]domain.Image, 0, len(imgs))
	infos := make([]Info, 0, len(imgs))
	for _, img := range imgs {
		checked, info, err := Inspect(img, maxBytes)
		if err != nil {
			return nil, nil, err
		}
		out = append(out, checked)
		infos = append(infos, info)
	}
	return out, infos, nil
}
