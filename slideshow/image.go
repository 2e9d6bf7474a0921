package slideshow

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/draw"
)

// Load decodes an image file. Animated gifs yield their first frame.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open image, %s, %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("unable to decode image, %s, %w", path, err)
	}
	return img, nil
}

// Fit returns the largest size with the image's aspect ratio that fits the screen. A screen wider
// than the image is filled top to bottom, otherwise side to side.
func Fit(imgW, imgH, screenW, screenH int) (int, int) {
	if imgW <= 0 || imgH <= 0 || screenW <= 0 || screenH <= 0 {
		return 0, 0
	}

	aspect := float64(imgW) / float64(imgH)
	var w, h int
	if float64(screenW)/float64(screenH) > aspect {
		h = screenH
		w = int(aspect * float64(h))
	} else {
		w = screenW
		h = int(float64(w) / aspect)
	}
	return max(w, 1), max(h, 1)
}

// Scale resizes img to fit the screen, preserving its aspect ratio
func Scale(img image.Image, screenW, screenH int) *image.RGBA {
	b := img.Bounds()
	w, h := Fit(b.Dx(), b.Dy(), screenW, screenH)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
