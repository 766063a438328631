package region

import (
	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/mempool"
	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/preprocess"
	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/utils"
)

// ContourDetector finds text candidates from edge contours: gradient edges
// are dilated horizontally so same-line glyphs merge into one run, then each
// external contour's bounding box becomes a candidate.
type ContourDetector struct {
	config DetectorConfig
}

// NewContourDetector creates the contour detection strategy.
func NewContourDetector(config DetectorConfig) *ContourDetector {
	return &ContourDetector{config: config}
}

func (d *ContourDetector) Name() string { return MethodContours }

// Available always reports true; this strategy needs no model artifact.
func (d *ContourDetector) Available() bool { return true }

// Detect extracts edge contours and converts them to region candidates.
func (d *ContourDetector) Detect(g *utils.Gray) ([]Region, error) {
	if g == nil || g.Width == 0 || g.Height == 0 {
		return nil, nil
	}
	edges := preprocess.SobelEdges(g, 120)
	// Horizontal kernel merges glyphs on the same text line.
	merged := preprocess.Dilate(edges, 9, 1)

	mask := mempool.GetBool(merged.Width * merged.Height)
	defer mempool.PutBool(mask)
	for i, p := range merged.Pix {
		if p > 0 {
			mask[i] = true
		}
	}

	comps := connectedComponents(mask, merged.Width, merged.Height)

	regions := make([]Region, 0, len(comps))
	for _, st := range comps {
		if !d.acceptContour(st, g.Width, g.Height) {
			continue
		}
		regions = append(regions, Region{
			X:               st.minX,
			Y:               st.minY,
			Width:           st.width(),
			Height:          st.height(),
			Confidence:      contourConfidence(st),
			DetectionMethod: MethodContours,
		})
	}
	return regions, nil
}

func (d *ContourDetector) acceptContour(st compStats, imageWidth, imageHeight int) bool {
	area := st.width() * st.height()
	if area < d.config.MinRegionArea || area > d.config.MaxRegionArea {
		return false
	}
	if st.width() < 8 || st.height() < 6 {
		return false
	}
	if float64(st.width()) > 0.95*float64(imageWidth) {
		return false
	}
	if float64(st.height()) > 0.5*float64(imageHeight) {
		return false
	}
	return true
}

// contourConfidence derives confidence from solidity, the filled fraction of
// the contour's bounding box. Capped at 0.7; edge contours are the least
// reliable of the strategies.
func contourConfidence(st compStats) float64 {
	area := float64(st.width() * st.height())
	if area <= 0 {
		return 0
	}
	solidity := float64(st.count) / area
	conf := 0.25 + 0.6*solidity
	if conf > 0.7 {
		conf = 0.7
	}
	return conf
}
