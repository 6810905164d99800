package imagegen

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"

	"github.com/gen2brain/webp"
)

var (
	pngMagic  = []byte("\x89PNG\r\n\x1a\n")
	riffMagic = []byte("RIFF")
	webpMagic = []byte("WEBP")
)

// NormalizePNG re-encodes a PNG, JPEG or WebP image as PNG. PNG input is
// returned unchanged.
func NormalizePNG(raw []byte) ([]byte, error) {
	if bytes.HasPrefix(raw, pngMagic) {
		return raw, nil
	}

	var (
		img image.Image
		err error
	)
	if len(raw) >= 12 && bytes.Equal(raw[:4], riffMagic) && bytes.Equal(raw[8:12], webpMagic) {
		img, err = webp.Decode(bytes.NewReader(raw))
	} else {
		img, _, err = image.Decode(bytes.NewReader(raw))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}
