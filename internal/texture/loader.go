package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/draw"
)

// Extensions lists the texture file types a lookup tries, in order.
var Extensions = []string{".png", ".tga"}

// LoadTexture reads an image file and returns it as NRGBA.
// The decoder is picked by the file extension.
func LoadTexture(path string) (*image.NRGBA, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("texture: read %s: %w", path, err)
	}
	img, err := DecodeTexture(filepath.Ext(path), raw)
	if err != nil {
		return nil, fmt.Errorf("texture: %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// DecodeTexture decodes in-memory image data of the given extension
// (".png" or ".tga") to NRGBA.
func DecodeTexture(ext string, raw []byte) (*image.NRGBA, error) {
	var img image.Image
	var err error
	switch strings.ToLower(ext) {
	case ".png":
		img, err = png.Decode(bytes.NewReader(raw))
	case ".tga":
		// TGA has no magic number, so it is never sniffed.
		img, err = tga.Decode(bytes.NewReader(raw))
	default:
		return nil, fmt.Errorf("unknown texture extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", ext, err)
	}
	return toNRGBA(img), nil
}

// toNRGBA converts any image to NRGBA format.
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Copy(dst, image.Point{}, src, b, draw.Src, nil)
	return dst
}
