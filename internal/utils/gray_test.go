package utils

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformGray(width, height int, v uint8) *Gray {
	g := NewGray(width, height)
	for i := range g.Pix {
		g.Pix[i] = v
	}
	return g
}

func TestGrayFromImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.White)
		}
	}
	img.Set(0, 0, color.Black)

	g, err := GrayFromImage(img)
	require.NoError(t, err)
	assert.Equal(t, 4, g.Width)
	assert.Equal(t, 3, g.Height)
	assert.Equal(t, uint8(0), g.At(0, 0))
	assert.Equal(t, uint8(255), g.At(3, 2))

	// Out of bounds reads are zero, writes are ignored.
	assert.Equal(t, uint8(0), g.At(-1, 0))
	g.Set(100, 100, 7)
}

func TestGrayFromImageNil(t *testing.T) {
	_, err := GrayFromImage(nil)
	require.Error(t, err)
	var perr *ImageProcessingError
	assert.ErrorAs(t, err, &perr)
}

func TestGrayCrop(t *testing.T) {
	g := NewGray(10, 10)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			g.Set(x, y, uint8(y*10+x))
		}
	}

	crop := g.Crop(image.Rect(2, 3, 6, 8))
	assert.Equal(t, 4, crop.Width)
	assert.Equal(t, 5, crop.Height)
	assert.Equal(t, g.At(2, 3), crop.At(0, 0))
	assert.Equal(t, g.At(5, 7), crop.At(3, 4))

	// Out-of-range rectangles are clamped rather than panicking.
	over := g.Crop(image.Rect(8, 8, 20, 20))
	assert.Equal(t, 2, over.Width)
	assert.Equal(t, 2, over.Height)
}

func TestGrayCloneIsDeep(t *testing.T) {
	g := uniformGray(3, 3, 10)
	c := g.Clone()
	c.Set(0, 0, 99)
	assert.Equal(t, uint8(10), g.At(0, 0))
}

func TestGrayToImageRoundTrip(t *testing.T) {
	g := NewGray(5, 4)
	g.Set(2, 1, 200)
	img := g.ToImage()

	back, err := GrayFromImage(img)
	require.NoError(t, err)
	assert.Equal(t, g.Pix, back.Pix)
}

func TestGrayStats(t *testing.T) {
	g := uniformGray(10, 10, 80)
	mean, std := g.MeanStdDev()
	assert.InDelta(t, 80, mean, 0.001)
	assert.InDelta(t, 0, std, 0.001)
	assert.Equal(t, 1, g.UniqueLevels())
	assert.Equal(t, 0.0, g.WhiteRatio(81))
	assert.Equal(t, 1.0, g.WhiteRatio(80))

	for i := 0; i < 50; i++ {
		g.Pix[i] = 200
	}
	assert.Equal(t, 2, g.UniqueLevels())
	assert.InDelta(t, 0.5, g.WhiteRatio(200), 0.001)
	mean, std = g.MeanStdDev()
	assert.InDelta(t, 140, mean, 0.001)
	assert.InDelta(t, 60, std, 0.001)
}

func TestOtsuThresholdSeparatesBimodal(t *testing.T) {
	g := NewGray(10, 10)
	for i := range g.Pix {
		if i < 50 {
			g.Pix[i] = 50
		} else {
			g.Pix[i] = 200
		}
	}

	threshold := g.OtsuThreshold()
	assert.GreaterOrEqual(t, threshold, uint8(50))
	assert.Less(t, threshold, uint8(200))
}

func TestIntegral(t *testing.T) {
	g := NewGray(3, 2)
	copy(g.Pix, []uint8{1, 2, 3, 4, 5, 6})

	integral := g.Integral()

	assert.Equal(t, uint64(21), IntegralSum(integral, 3, 0, 0, 3, 2))
	assert.Equal(t, uint64(1), IntegralSum(integral, 3, 0, 0, 1, 1))
	assert.Equal(t, uint64(16), IntegralSum(integral, 3, 1, 0, 3, 2))
	assert.Equal(t, uint64(15), IntegralSum(integral, 3, 0, 1, 3, 2))
}

func TestHistogram(t *testing.T) {
	g := uniformGray(4, 4, 7)
	hist := g.Histogram()
	assert.Equal(t, 16, hist[7])
	assert.Equal(t, 0, hist[8])
}
