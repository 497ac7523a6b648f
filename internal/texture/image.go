package texture

import (
	"image"
	"image/color"
	"sync"
)

// Image is a decoded texture held in memory. Packed images carry their
// pixels and have no dependency on the file they were loaded from.
type Image struct {
	Name     string
	Pixels   *image.NRGBA
	Packed   bool
	FilePath string // host-relative path, "//<name>.png"
}

var (
	placeholderOnce sync.Once
	placeholder     *Image
)

// Placeholder returns the shared 2×2 image used for every textured material
// without texture data. It is created once per process.
func Placeholder() *Image {
	placeholderOnce.Do(func() {
		px := image.NewNRGBA(image.Rect(0, 0, 2, 2))
		a := color.NRGBA{R: 255, G: 0, B: 128, A: 255}
		b := color.NRGBA{R: 128, G: 0, B: 255, A: 255}
		// rows are listed bottom-up, matching the float pixel layout of the hosts
		px.SetNRGBA(0, 1, a)
		px.SetNRGBA(1, 1, b)
		px.SetNRGBA(0, 0, b)
		px.SetNRGBA(1, 0, a)
		placeholder = &Image{Name: "default", Pixels: px, Packed: true}
	})
	return placeholder
}
