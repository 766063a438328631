package preprocess

import (
	"math"

	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/utils"
)

// SobelEdges computes a binary edge map from Sobel gradient magnitudes.
// Pixels whose magnitude exceeds the threshold become foreground (255).
func SobelEdges(g *utils.Gray, threshold float64) *utils.Gray {
	if g == nil || g.Width < 3 || g.Height < 3 {
		return utils.NewGray(widthOrZero(g), heightOrZero(g))
	}
	if threshold <= 0 {
		threshold = 100
	}
	out := utils.NewGray(g.Width, g.Height)
	for y := 1; y < g.Height-1; y++ {
		for x := 1; x < g.Width-1; x++ {
			gx := -int(g.Pix[(y-1)*g.Width+x-1]) + int(g.Pix[(y-1)*g.Width+x+1]) +
				-2*int(g.Pix[y*g.Width+x-1]) + 2*int(g.Pix[y*g.Width+x+1]) +
				-int(g.Pix[(y+1)*g.Width+x-1]) + int(g.Pix[(y+1)*g.Width+x+1])
			gy := -int(g.Pix[(y-1)*g.Width+x-1]) - 2*int(g.Pix[(y-1)*g.Width+x]) - int(g.Pix[(y-1)*g.Width+x+1]) +
				int(g.Pix[(y+1)*g.Width+x-1]) + 2*int(g.Pix[(y+1)*g.Width+x]) + int(g.Pix[(y+1)*g.Width+x+1])
			if math.Hypot(float64(gx), float64(gy)) > threshold {
				out.Pix[y*g.Width+x] = 255
			}
		}
	}
	return out
}

// EdgeRatio returns the fraction of edge pixels in the plane, a cheap proxy
// for text density.
func EdgeRatio(g *utils.Gray, threshold float64) float64 {
	edges := SobelEdges(g, threshold)
	if len(edges.Pix) == 0 {
		return 0
	}
	n := 0
	for _, p := range edges.Pix {
		if p > 0 {
			n++
		}
	}
	return float64(n) / float64(len(edges.Pix))
}

func widthOrZero(g *utils.Gray) int {
	if g == nil {
		return 0
	}
	return g.Width
}

func heightOrZero(g *utils.Gray) int {
	if g == nil {
		return 0
	}
	return g.Height
}
