// Package media turns uploaded images into resized lossy WebP.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	// Registers the decoders image.Decode needs beyond jpeg, png and gif.
	_ "golang.org/x/image/webp"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gen2brain/webp"
	"github.com/samber/lo"
)

const (
	MaxWidth       = 400
	DefaultQuality = 80
	ContentType    = "image/webp"
	Extension      = "webp"
)

var ErrUnsupportedType = errors.New("unsupported image type")

var allowedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// Sniff returns the detected mime type of data, or ErrUnsupportedType when
// it is not one of the accepted image formats.
func Sniff(data []byte) (string, error) {
	mt := mimetype.Detect(data)
	match, ok := lo.Find(allowedTypes, func(t string) bool { return mt.Is(t) })
	if !ok {
		return mt.String(), fmt.Errorf("%w: %s", ErrUnsupportedType, mt.String())
	}
	return match, nil
}

func Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return imaging.Clone(img), nil
}

// Resize caps the width at maxWidth, keeping the aspect ratio. Narrower
// images are returned untouched.
func Resize(img image.Image, maxWidth int) image.Image {
	if maxWidth <= 0 || img.Bounds().Dx() <= maxWidth {
		return img
	}
	return imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
}

// Encode writes img as lossy WebP. When exif is non-empty it is embedded in
// an extended container.
func Encode(img image.Image, quality int, exif []byte) ([]byte, error) {
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, webp.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	if len(exif) == 0 {
		return buf.Bytes(), nil
	}
	b := img.Bounds()
	return InjectEXIF(buf.Bytes(), exif, b.Dx(), b.Dy())
}
