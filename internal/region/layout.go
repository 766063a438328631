package region

import (
	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/preprocess"
	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/template"
	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/utils"
)

// LayoutInfo summarizes the structural analysis of a page.
type LayoutInfo struct {
	Layout                template.Layout `json:"layout"`
	HorizontalLineDensity float64         `json:"horizontal_line_density"`
	VerticalLineDensity   float64         `json:"vertical_line_density"`
	TextDensity           float64         `json:"text_density"`
}

// AnalyzeDocumentLayout classifies the page as table, form or list from
// ruling-line density and text density. Line pixels are isolated with long
// thin morphological opening kernels over the binarized page; text density
// comes from the edge-pixel ratio.
func AnalyzeDocumentLayout(g *utils.Gray) LayoutInfo {
	info := LayoutInfo{Layout: template.LayoutForm}
	if g == nil || g.Width < 16 || g.Height < 16 {
		return info
	}

	binary := preprocess.AdaptiveThreshold(g, 31, 10, true)

	hKernel := utils.ClampInt(g.Width/20, 10, 80)
	vKernel := utils.ClampInt(g.Height/20, 10, 80)
	hLines := preprocess.Open(binary, hKernel, 1)
	vLines := preprocess.Open(binary, 1, vKernel)

	info.HorizontalLineDensity = foregroundRatio(hLines)
	info.VerticalLineDensity = foregroundRatio(vLines)
	info.TextDensity = preprocess.EdgeRatio(g, 120)

	switch {
	case info.HorizontalLineDensity > 0.01 && info.VerticalLineDensity > 0.005:
		info.Layout = template.LayoutTable
	case info.HorizontalLineDensity > 0.01 && info.TextDensity > 0.02:
		info.Layout = template.LayoutList
	default:
		info.Layout = template.LayoutForm
	}
	return info
}

func foregroundRatio(g *utils.Gray) float64 {
	if g == nil || len(g.Pix) == 0 {
		return 0
	}
	n := 0
	for _, p := range g.Pix {
		if p > 0 {
			n++
		}
	}
	return float64(n) / float64(len(g.Pix))
}
