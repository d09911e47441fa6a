package pdfdoc

import (
	"bytes"
	"fmt"
	"os"

	"github.com/disintegration/imaging"
)

// NormalizeSeal decodes a PNG or JPEG seal, scales it to widthPx pixels wide
// (keeping the aspect ratio) and re-encodes it as PNG for embedding.
func NormalizeSeal(data []byte, widthPx int) ([]byte, float64, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("pdfdoc: decode seal: %w", err)
	}
	if widthPx > 0 && img.Bounds().Dx() != widthPx {
		img = imaging.Resize(img, widthPx, 0, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, 0, fmt.Errorf("pdfdoc: encode seal: %w", err)
	}
	bounds := img.Bounds()
	ratio := float64(bounds.Dy()) / float64(bounds.Dx())
	return buf.Bytes(), ratio, nil
}

// LoadSeal reads and normalises the seal image stored at path.
func LoadSeal(path string, widthPx int) ([]byte, float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("pdfdoc: read seal: %w", err)
	}
	return NormalizeSeal(data, widthPx)
}
