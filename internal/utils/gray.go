package utils

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// ImageProcessingError represents errors that can occur during image processing.
type ImageProcessingError struct {
	Operation string
	Err       error
}

func (e *ImageProcessingError) Error() string {
	return fmt.Sprintf("image processing error in %s: %v", e.Operation, e.Err)
}

func (e *ImageProcessingError) Unwrap() error { return e.Err }

// Gray is a dense 8-bit grayscale plane used by the CV pipeline.
// Pixels are stored row-major; index = y*Width + x.
type Gray struct {
	Pix    []uint8
	Width  int
	Height int
}

// NewGray allocates a zeroed grayscale plane.
func NewGray(width, height int) *Gray {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Gray{Pix: make([]uint8, width*height), Width: width, Height: height}
}

// GrayFromImage converts any image to a grayscale plane using luminance
// weighting via the imaging package.
func GrayFromImage(img image.Image) (*Gray, error) {
	if img == nil {
		return nil, &ImageProcessingError{Operation: "grayscale", Err: errors.New("input image is nil")}
	}
	g := imaging.Grayscale(img)
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := NewGray(w, h)
	for y := 0; y < h; y++ {
		row := g.Pix[y*g.Stride : y*g.Stride+w*4]
		for x := 0; x < w; x++ {
			out.Pix[y*w+x] = row[x*4]
		}
	}
	return out, nil
}

// At returns the pixel value at (x, y), or 0 outside the plane.
func (g *Gray) At(x, y int) uint8 {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return 0
	}
	return g.Pix[y*g.Width+x]
}

// Set writes the pixel value at (x, y); out-of-bounds writes are ignored.
func (g *Gray) Set(x, y int, v uint8) {
	if x < 0 || y < 0 || x >= g.Width || y >= g.Height {
		return
	}
	g.Pix[y*g.Width+x] = v
}

// Clone returns a deep copy of the plane.
func (g *Gray) Clone() *Gray {
	out := NewGray(g.Width, g.Height)
	copy(out.Pix, g.Pix)
	return out
}

// Crop returns a copy of the sub-plane described by r, clamped to g's bounds.
func (g *Gray) Crop(r image.Rectangle) *Gray {
	r = r.Intersect(image.Rect(0, 0, g.Width, g.Height))
	out := NewGray(r.Dx(), r.Dy())
	for y := 0; y < r.Dy(); y++ {
		src := (r.Min.Y+y)*g.Width + r.Min.X
		copy(out.Pix[y*out.Width:(y+1)*out.Width], g.Pix[src:src+r.Dx()])
	}
	return out
}

// ToImage converts the plane back to a standard image.Gray.
func (g *Gray) ToImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.Width, g.Height))
	for y := 0; y < g.Height; y++ {
		copy(img.Pix[y*img.Stride:y*img.Stride+g.Width], g.Pix[y*g.Width:(y+1)*g.Width])
	}
	return img
}

// Histogram returns the 256-bin intensity histogram.
func (g *Gray) Histogram() [256]int {
	var hist [256]int
	for _, p := range g.Pix {
		hist[p]++
	}
	return hist
}

// UniqueLevels counts distinct intensity values present in the plane.
func (g *Gray) UniqueLevels() int {
	hist := g.Histogram()
	n := 0
	for _, c := range hist {
		if c > 0 {
			n++
		}
	}
	return n
}

// MeanStdDev returns the mean and standard deviation of pixel intensities.
func (g *Gray) MeanStdDev() (float64, float64) {
	if len(g.Pix) == 0 {
		return 0, 0
	}
	var sum, sumSq float64
	for _, p := range g.Pix {
		v := float64(p)
		sum += v
		sumSq += v * v
	}
	n := float64(len(g.Pix))
	mean := sum / n
	variance := sumSq/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	return mean, math.Sqrt(variance)
}

// WhiteRatio returns the fraction of pixels at or above the threshold.
func (g *Gray) WhiteRatio(threshold uint8) float64 {
	if len(g.Pix) == 0 {
		return 0
	}
	n := 0
	for _, p := range g.Pix {
		if p >= threshold {
			n++
		}
	}
	return float64(n) / float64(len(g.Pix))
}

// OtsuThreshold computes the Otsu binarization threshold from the histogram.
func (g *Gray) OtsuThreshold() uint8 {
	hist := g.Histogram()
	total := len(g.Pix)
	if total == 0 {
		return 128
	}

	var sumAll float64
	for i, c := range hist {
		sumAll += float64(i) * float64(c)
	}

	var sumB, wB float64
	var maxVariance float64
	best := 128
	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])
		mB := sumB / wB
		mF := (sumAll - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > maxVariance {
			maxVariance = between
			best = t
		}
	}
	return uint8(best)
}

// Integral computes the summed-area table of the plane. The returned slice
// has (Width+1)*(Height+1) entries with a zero first row and column so that
// the sum over [x0,x1)x[y0,y1) is S(x1,y1)-S(x0,y1)-S(x1,y0)+S(x0,y0).
func (g *Gray) Integral() []uint64 {
	w1 := g.Width + 1
	out := make([]uint64, w1*(g.Height+1))
	for y := 1; y <= g.Height; y++ {
		var rowSum uint64
		for x := 1; x <= g.Width; x++ {
			rowSum += uint64(g.Pix[(y-1)*g.Width+(x-1)])
			out[y*w1+x] = out[(y-1)*w1+x] + rowSum
		}
	}
	return out
}

// IntegralSum returns the pixel sum over the half-open window [x0,x1)x[y0,y1)
// given a summed-area table produced by Integral.
func IntegralSum(integral []uint64, width, x0, y0, x1, y1 int) uint64 {
	w1 := width + 1
	return integral[y1*w1+x1] - integral[y0*w1+x1] - integral[y1*w1+x0] + integral[y0*w1+x0]
}
