// Package testutil generates synthetic scanned-document images for tests:
// rent-roll tables, form-style lease pages and degraded scan variants.
package testutil

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// RentRollRow is one data row of a synthetic rent-roll table.
type RentRollRow struct {
	Unit   string
	Tenant string
	Rent   string
	Sqft   string
}

// DefaultRentRollRows returns five plausible data rows.
func DefaultRentRollRows() []RentRollRow {
	return []RentRollRow{
		{"101", "Acme Corp", "$1,500.00", "1,200"},
		{"102", "Beta Industries", "$1,750.00", "1,350"},
		{"201", "Gamma LLC", "$2,100.00", "1,600"},
		{"202", "Delta Partners", "$1,950.00", "1,500"},
		{"301", "Epsilon Group", "$2,400.00", "1,800"},
	}
}

// RentRollImage renders a rent-roll style table: a header band, column
// headers and one row of cells per entry, separated by grid lines.
func RentRollImage(width, height int, rows []RentRollRow) *image.RGBA {
	img := blankPage(width, height)

	headers := []string{"Unit", "Tenant", "Monthly Rent", "SqFt"}
	cols := len(headers)
	colW := width / cols

	headerY := height / 10
	drawHLine(img, 0, width, headerY)
	for c, h := range headers {
		drawText(img, c*colW+10, headerY-8, h)
	}

	rowH := (height - headerY - 10) / (len(rows) + 1)
	for r, row := range rows {
		y := headerY + (r+1)*rowH
		drawHLine(img, 0, width, y)
		cells := []string{row.Unit, row.Tenant, row.Rent, row.Sqft}
		for c, cell := range cells {
			drawText(img, c*colW+10, y-rowH/2, cell)
		}
	}
	for c := 1; c < cols; c++ {
		drawVLine(img, c*colW, headerY, height-10)
	}
	return img
}

// LeaseFormImage renders a form-style page: left-aligned labels with values
// to their right, one pair per line.
func LeaseFormImage(width, height int, fields map[string]string, order []string) *image.RGBA {
	img := blankPage(width, height)

	drawText(img, width/3, height/12, "LEASE AGREEMENT")

	lineH := height / (len(order) + 4)
	y := height / 6
	for _, label := range order {
		drawText(img, 40, y, label+":")
		drawText(img, width*2/5, y, fields[label])
		y += lineH
	}
	return img
}

// TextImage renders a single centered string on a white page.
func TextImage(width, height int, text string) *image.RGBA {
	img := blankPage(width, height)
	face := basicfont.Face7x13
	textW := font.MeasureString(face, text).Ceil()
	drawText(img, (width-textW)/2, (height+face.Metrics().Height.Ceil())/2, text)
	return img
}

// Rotate returns the image rotated by the given angle in degrees, filled
// with white.
func Rotate(img image.Image, degrees float64) *image.RGBA {
	rotated := imaging.Rotate(img, degrees, color.White)
	out := image.NewRGBA(rotated.Bounds())
	draw.Draw(out, out.Bounds(), rotated, rotated.Bounds().Min, draw.Src)
	return out
}

// AddScanNoise flips a deterministic subset of pixels to simulate scanner
// artifacts. level is the approximate fraction of affected pixels.
func AddScanNoise(img *image.RGBA, level float64) *image.RGBA {
	bounds := img.Bounds()
	noisy := image.NewRGBA(bounds)
	draw.Draw(noisy, bounds, img, bounds.Min, draw.Src)

	if level <= 0 {
		return noisy
	}
	stride := int(math.Max(1, 1/level))
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			i++
			if i%stride != 0 {
				continue
			}
			r, g, b, _ := noisy.At(x, y).RGBA()
			noisy.Set(x, y, color.RGBA64{
				R: 65535 - uint16(r),
				G: 65535 - uint16(g),
				B: 65535 - uint16(b),
				A: 65535,
			})
		}
	}
	return noisy
}

// TinyImage returns a 1x1 white image for degradation tests.
func TinyImage() *image.RGBA {
	return blankPage(1, 1)
}

func blankPage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	return img
}

func drawText(img *image.RGBA, x, y int, text string) {
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(text)
}

func drawHLine(img *image.RGBA, x0, x1, y int) {
	for x := x0; x < x1; x++ {
		img.Set(x, y, color.Black)
	}
}

func drawVLine(img *image.RGBA, x, y0, y1 int) {
	for y := y0; y < y1; y++ {
		img.Set(x, y, color.Black)
	}
}
