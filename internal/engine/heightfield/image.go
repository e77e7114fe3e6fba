package heightfield

import (
	"fmt"
	"image"
	"os"

	// Heightmaps come in as 8/16-bit grayscale PNG or BMP.
	_ "image/png"

	_ "golang.org/x/image/bmp"
)

// Load reads a heightmap image from disk and converts it to a Raster with
// heights normalized to [0,1]. 16-bit grayscale PNGs keep their full
// precision; everything else goes through the standard luminance path.
func Load(path string) (*Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open heightmap: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode heightmap %s: %w", path, err)
	}

	return FromImage(img)
}

// FromImage converts a decoded image to a Raster.
func FromImage(img image.Image) (*Raster, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	data := make([]float32, w*h)

	switch src := img.(type) {
	case *image.Gray16:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				data[y*w+x] = float32(src.Gray16At(bounds.Min.X+x, bounds.Min.Y+y).Y) / 65535.0
			}
		}
	case *image.Gray:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				data[y*w+x] = float32(src.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y) / 255.0
			}
		}
	default:
		// Generic path: RGBA components are 16-bit; use red as elevation,
		// which is what single-channel sources decode to.
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				red, _, _, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
				data[y*w+x] = float32(red) / 65535.0
			}
		}
	}

	return NewRaster(w, h, data)
}
