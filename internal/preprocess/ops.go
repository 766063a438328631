package preprocess

import (
	"sort"

	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/utils"
)

// EqualizeHistogram applies global histogram equalization to the plane.
func EqualizeHistogram(g *utils.Gray) *utils.Gray {
	if g == nil || len(g.Pix) == 0 {
		return g
	}
	hist := g.Histogram()
	total := len(g.Pix)

	var lut [256]uint8
	cum := 0
	for i := 0; i < 256; i++ {
		cum += hist[i]
		lut[i] = uint8((cum*255 + total/2) / total)
	}

	out := utils.NewGray(g.Width, g.Height)
	for i, p := range g.Pix {
		out.Pix[i] = lut[p]
	}
	return out
}

// CLAHE applies contrast-limited adaptive histogram equalization over a grid
// of tiles with bilinear interpolation between tile mappings.
func CLAHE(g *utils.Gray, tiles int, clipLimit float64) *utils.Gray {
	if g == nil || len(g.Pix) == 0 {
		return g
	}
	if tiles < 2 {
		tiles = 8
	}
	if clipLimit <= 0 {
		clipLimit = 2.0
	}

	tileW := (g.Width + tiles - 1) / tiles
	tileH := (g.Height + tiles - 1) / tiles
	if tileW == 0 || tileH == 0 {
		return EqualizeHistogram(g)
	}
	tilesX := (g.Width + tileW - 1) / tileW
	tilesY := (g.Height + tileH - 1) / tileH

	// Per-tile clipped LUTs.
	luts := make([][256]uint8, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		for tx := 0; tx < tilesX; tx++ {
			x0, y0 := tx*tileW, ty*tileH
			x1, y1 := minInt(x0+tileW, g.Width), minInt(y0+tileH, g.Height)
			luts[ty*tilesX+tx] = clippedLUT(g, x0, y0, x1, y1, clipLimit)
		}
	}

	out := utils.NewGray(g.Width, g.Height)
	for y := 0; y < g.Height; y++ {
		// Tile-space coordinate of the pixel center.
		fy := (float64(y)+0.5)/float64(tileH) - 0.5
		ty0 := int(fy)
		if fy < 0 {
			ty0 = 0
			fy = 0
		}
		ty1 := minInt(ty0+1, tilesY-1)
		wy := fy - float64(ty0)
		if ty0 >= tilesY {
			ty0 = tilesY - 1
			ty1 = ty0
			wy = 0
		}
		for x := 0; x < g.Width; x++ {
			fx := (float64(x)+0.5)/float64(tileW) - 0.5
			tx0 := int(fx)
			if fx < 0 {
				tx0 = 0
				fx = 0
			}
			tx1 := minInt(tx0+1, tilesX-1)
			wx := fx - float64(tx0)
			if tx0 >= tilesX {
				tx0 = tilesX - 1
				tx1 = tx0
				wx = 0
			}

			p := g.Pix[y*g.Width+x]
			v00 := float64(luts[ty0*tilesX+tx0][p])
			v01 := float64(luts[ty0*tilesX+tx1][p])
			v10 := float64(luts[ty1*tilesX+tx0][p])
			v11 := float64(luts[ty1*tilesX+tx1][p])
			top := v00 + (v01-v00)*wx
			bot := v10 + (v11-v10)*wx
			out.Pix[y*g.Width+x] = uint8(top + (bot-top)*wy + 0.5)
		}
	}
	return out
}

func clippedLUT(g *utils.Gray, x0, y0, x1, y1 int, clipLimit float64) [256]uint8 {
	var hist [256]int
	count := 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			hist[g.Pix[y*g.Width+x]]++
			count++
		}
	}
	var lut [256]uint8
	if count == 0 {
		for i := 0; i < 256; i++ {
			lut[i] = uint8(i)
		}
		return lut
	}

	// Clip histogram and redistribute the excess uniformly.
	limit := int(clipLimit * float64(count) / 256.0)
	if limit < 1 {
		limit = 1
	}
	excess := 0
	for i := 0; i < 256; i++ {
		if hist[i] > limit {
			excess += hist[i] - limit
			hist[i] = limit
		}
	}
	add := excess / 256
	for i := 0; i < 256; i++ {
		hist[i] += add
	}

	cum := 0
	for i := 0; i < 256; i++ {
		cum += hist[i]
		lut[i] = uint8((cum*255 + count/2) / count)
	}
	return lut
}

// MedianBlur applies a median filter with the given odd kernel size.
func MedianBlur(g *utils.Gray, kernelSize int) *utils.Gray {
	if g == nil || kernelSize <= 1 {
		return g
	}
	if kernelSize%2 == 0 {
		kernelSize++
	}
	half := kernelSize / 2
	out := utils.NewGray(g.Width, g.Height)
	window := make([]uint8, 0, kernelSize*kernelSize)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			window = window[:0]
			for ky := -half; ky <= half; ky++ {
				for kx := -half; kx <= half; kx++ {
					nx, ny := x+kx, y+ky
					if nx >= 0 && nx < g.Width && ny >= 0 && ny < g.Height {
						window = append(window, g.Pix[ny*g.Width+nx])
					}
				}
			}
			sort.Slice(window, func(i, j int) bool { return window[i] < window[j] })
			out.Pix[y*g.Width+x] = window[len(window)/2]
		}
	}
	return out
}

// BoxBlur applies a mean filter using an integral image.
func BoxBlur(g *utils.Gray, kernelSize int) *utils.Gray {
	if g == nil || kernelSize <= 1 {
		return g
	}
	half := kernelSize / 2
	integral := g.Integral()
	out := utils.NewGray(g.Width, g.Height)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			x0 := maxInt(x-half, 0)
			y0 := maxInt(y-half, 0)
			x1 := minInt(x+half+1, g.Width)
			y1 := minInt(y+half+1, g.Height)
			area := (x1 - x0) * (y1 - y0)
			sum := utils.IntegralSum(integral, g.Width, x0, y0, x1, y1)
			out.Pix[y*g.Width+x] = uint8((sum + uint64(area)/2) / uint64(area))
		}
	}
	return out
}

// AdaptiveThreshold binarizes the plane against a local mean computed over a
// blockSize window, offset by c. Inverted output maps dark ink to white
// foreground, matching the convention of the detection stages.
func AdaptiveThreshold(g *utils.Gray, blockSize int, c float64, inverted bool) *utils.Gray {
	if g == nil || len(g.Pix) == 0 {
		return g
	}
	if blockSize < 3 {
		blockSize = 3
	}
	if blockSize%2 == 0 {
		blockSize++
	}
	half := blockSize / 2
	integral := g.Integral()
	out := utils.NewGray(g.Width, g.Height)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			x0 := maxInt(x-half, 0)
			y0 := maxInt(y-half, 0)
			x1 := minInt(x+half+1, g.Width)
			y1 := minInt(y+half+1, g.Height)
			area := float64((x1 - x0) * (y1 - y0))
			mean := float64(utils.IntegralSum(integral, g.Width, x0, y0, x1, y1)) / area

			fg := float64(g.Pix[y*g.Width+x]) > mean-c
			if inverted {
				fg = !fg
			}
			if fg {
				out.Pix[y*g.Width+x] = 255
			}
		}
	}
	return out
}

// OtsuBinarize thresholds the plane at its Otsu level.
func OtsuBinarize(g *utils.Gray, inverted bool) *utils.Gray {
	if g == nil || len(g.Pix) == 0 {
		return g
	}
	t := g.OtsuThreshold()
	out := utils.NewGray(g.Width, g.Height)
	for i, p := range g.Pix {
		fg := p > t
		if inverted {
			fg = !fg
		}
		if fg {
			out.Pix[i] = 255
		}
	}
	return out
}

// Dilate expands bright regions with a kernelW x kernelH rectangular kernel.
func Dilate(g *utils.Gray, kernelW, kernelH int) *utils.Gray {
	return morphRect(g, kernelW, kernelH, true)
}

// Erode shrinks bright regions with a kernelW x kernelH rectangular kernel.
func Erode(g *utils.Gray, kernelW, kernelH int) *utils.Gray {
	return morphRect(g, kernelW, kernelH, false)
}

// Close fills gaps in bright regions (dilate then erode).
func Close(g *utils.Gray, kernelW, kernelH int) *utils.Gray {
	return Erode(Dilate(g, kernelW, kernelH), kernelW, kernelH)
}

// Open removes small bright speckles (erode then dilate).
func Open(g *utils.Gray, kernelW, kernelH int) *utils.Gray {
	return Dilate(Erode(g, kernelW, kernelH), kernelW, kernelH)
}

func morphRect(g *utils.Gray, kernelW, kernelH int, dilate bool) *utils.Gray {
	if g == nil || (kernelW <= 1 && kernelH <= 1) {
		return g
	}
	if kernelW < 1 {
		kernelW = 1
	}
	if kernelH < 1 {
		kernelH = 1
	}
	halfW := kernelW / 2
	halfH := kernelH / 2
	out := utils.NewGray(g.Width, g.Height)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			var best uint8
			if !dilate {
				best = 255
			}
			for ky := -halfH; ky <= halfH; ky++ {
				for kx := -halfW; kx <= halfW; kx++ {
					nx, ny := x+kx, y+ky
					if nx < 0 || nx >= g.Width || ny < 0 || ny >= g.Height {
						continue
					}
					v := g.Pix[ny*g.Width+nx]
					if dilate {
						if v > best {
							best = v
						}
					} else if v < best {
						best = v
					}
				}
			}
			out.Pix[y*g.Width+x] = best
		}
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
