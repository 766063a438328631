package utils

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBoxOrdersCoordinates(t *testing.T) {
	b := NewBox(10, 20, 2, 4)
	assert.Equal(t, 2.0, b.MinX)
	assert.Equal(t, 4.0, b.MinY)
	assert.Equal(t, 10.0, b.MaxX)
	assert.Equal(t, 20.0, b.MaxY)
	assert.Equal(t, 8.0, b.Width())
	assert.Equal(t, 16.0, b.Height())
	assert.Equal(t, 128.0, b.Area())
}

func TestIoU(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Box
		expected float64
	}{
		{"identical", NewBox(0, 0, 10, 10), NewBox(0, 0, 10, 10), 1.0},
		{"disjoint", NewBox(0, 0, 10, 10), NewBox(20, 20, 30, 30), 0.0},
		{"touching edges", NewBox(0, 0, 10, 10), NewBox(10, 0, 20, 10), 0.0},
		{"half overlap", NewBox(0, 0, 10, 10), NewBox(5, 0, 15, 10), 1.0 / 3.0},
		{"contained quarter", NewBox(0, 0, 10, 10), NewBox(0, 0, 5, 5), 0.25},
		{"degenerate", Box{}, Box{}, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, IoU(tt.a, tt.b), 0.001)
			assert.InDelta(t, tt.expected, IoU(tt.b, tt.a), 0.001)
		})
	}
}

func TestBoxUnion(t *testing.T) {
	u := NewBox(0, 0, 10, 10).Union(NewBox(20, 5, 30, 15))
	assert.Equal(t, NewBox(0, 0, 30, 15), u)
}

func TestBoxToRect(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 100)

	r := NewBox(10.4, 20.6, 30.2, 40.8).ToRect(bounds)
	assert.Equal(t, image.Rect(10, 20, 31, 41), r)

	// Clamped to the image.
	clamped := NewBox(-5, -5, 200, 200).ToRect(bounds)
	assert.Equal(t, bounds, clamped)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 5, ClampInt(5, 0, 10))
	assert.Equal(t, 0, ClampInt(-3, 0, 10))
	assert.Equal(t, 10, ClampInt(42, 0, 10))

	assert.Equal(t, 0.5, ClampFloat(0.5, 0, 1))
	assert.Equal(t, 0.0, ClampFloat(-2, 0, 1))
	assert.Equal(t, 1.0, ClampFloat(7, 0, 1))
}
