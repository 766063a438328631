package region

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// RenderRegionOverlay draws labeled region boxes over the image and returns
// an RGBA copy for debugging. The input image is not modified.
func RenderRegionOverlay(img image.Image, regions []Region) *image.RGBA {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)

	for _, r := range regions {
		c := methodColor(r.DetectionMethod)
		drawRect(dst, r.Rect(), c)
		label := r.FieldType
		if label == "" {
			label = r.DetectionMethod
		}
		drawLabel(dst, r.X+2, r.Y-3, fmt.Sprintf("%s %.2f", label, r.Confidence), c)
	}
	return dst
}

func methodColor(method string) color.RGBA {
	switch method {
	case MethodEAST:
		return color.RGBA{R: 220, G: 40, B: 40, A: 255}
	case MethodTraditionalCV:
		return color.RGBA{R: 40, G: 160, B: 40, A: 255}
	case MethodContours:
		return color.RGBA{R: 40, G: 80, B: 220, A: 255}
	case MethodMerged:
		return color.RGBA{R: 200, G: 120, B: 20, A: 255}
	default:
		return color.RGBA{R: 120, G: 120, B: 120, A: 255}
	}
}

func drawRect(dst *image.RGBA, r image.Rectangle, c color.Color) {
	r = r.Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		dst.Set(x, r.Min.Y, c)
		dst.Set(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		dst.Set(r.Min.X, y, c)
		dst.Set(r.Max.X-1, y, c)
	}
}

func drawLabel(dst *image.RGBA, x, y int, text string, c color.Color) {
	if y < basicfont.Face7x13.Height {
		y = basicfont.Face7x13.Height
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
