// Package region implements text region proposal for document pages:
// candidate generation with multiple detectors, semantic classification
// against document templates, overlap merging and bounds optimization.
package region

import (
	"fmt"
	"image"
	"sort"

	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/utils"
)

// Detection method tags carried on regions.
const (
	MethodEAST          = "east"
	MethodTraditionalCV = "traditional_cv"
	MethodContours      = "contours"
	MethodTemplate      = "template"
	MethodMerged        = "merged"
)

// Region is a candidate or finalized rectangle on a page image.
type Region struct {
	X               int     `json:"x"`
	Y               int     `json:"y"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	Confidence      float64 `json:"confidence"`
	DetectionMethod string  `json:"detection_method"`
	FieldType       string  `json:"field_type,omitempty"`
	QualityScore    float64 `json:"quality_score,omitempty"`
	Optimized       bool    `json:"optimized,omitempty"`
}

// Area returns the region area in pixels.
func (r Region) Area() int { return r.Width * r.Height }

// AspectRatio returns width/height, or 0 for a degenerate region.
func (r Region) AspectRatio() float64 {
	if r.Height <= 0 {
		return 0
	}
	return float64(r.Width) / float64(r.Height)
}

// Box returns the region as a float bounding box.
func (r Region) Box() utils.Box {
	return utils.Box{
		MinX: float64(r.X),
		MinY: float64(r.Y),
		MaxX: float64(r.X + r.Width),
		MaxY: float64(r.Y + r.Height),
	}
}

// Rect returns the region as an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Valid reports whether the region has positive extent and non-negative origin.
func (r Region) Valid() bool {
	return r.X >= 0 && r.Y >= 0 && r.Width > 0 && r.Height > 0
}

// ClipTo clamps the region to an image of the given dimensions. A region
// fully outside the image collapses to zero extent and becomes invalid.
func (r Region) ClipTo(imageWidth, imageHeight int) Region {
	x1 := utils.ClampInt(r.X, 0, imageWidth)
	y1 := utils.ClampInt(r.Y, 0, imageHeight)
	x2 := utils.ClampInt(r.X+r.Width, 0, imageWidth)
	y2 := utils.ClampInt(r.Y+r.Height, 0, imageHeight)
	out := r
	out.X = x1
	out.Y = y1
	out.Width = x2 - x1
	out.Height = y2 - y1
	return out
}

// IoU computes Intersection over Union with another region.
func (r Region) IoU(o Region) float64 {
	return utils.IoU(r.Box(), o.Box())
}

// Union returns the smallest region covering both inputs.
func (r Region) Union(o Region) Region {
	b := r.Box().Union(o.Box())
	return Region{
		X:      int(b.MinX),
		Y:      int(b.MinY),
		Width:  int(b.Width()),
		Height: int(b.Height()),
	}
}

func (r Region) String() string {
	return fmt.Sprintf("region(%d,%d %dx%d conf=%.2f method=%s field=%s)",
		r.X, r.Y, r.Width, r.Height, r.Confidence, r.DetectionMethod, r.FieldType)
}

// SortByConfidence sorts regions by confidence descending, in place.
// The sort is stable so equal-confidence candidates keep detector order.
func SortByConfidence(regions []Region) {
	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].Confidence > regions[j].Confidence
	})
}
