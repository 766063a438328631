package region

import (
	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/template"
)

// Confidence bumps applied when a classification heuristic lands.
const (
	positionMatchBonus = 0.2
	patternMatchBonus  = 0.1
)

// Classifier assigns semantic field labels to raw regions using the document
// type's template plus position heuristics.
type Classifier struct{}

// NewClassifier creates a region classifier.
func NewClassifier() *Classifier { return &Classifier{} }

// ClassifyRegions labels each region with a field type where a heuristic
// applies and folds a geometry quality score into its confidence. Regions
// that match nothing stay unlabeled and are still returned.
func (c *Classifier) ClassifyRegions(regions []Region, documentType string,
	layout LayoutInfo, imageWidth, imageHeight int,
) []Region {
	tmpl := template.Lookup(documentType)
	out := make([]Region, 0, len(regions))
	for _, r := range regions {
		out = append(out, c.classifyRegion(r, tmpl, layout, imageWidth, imageHeight))
	}
	return out
}

func (c *Classifier) classifyRegion(r Region, tmpl *template.Template,
	layout LayoutInfo, imageWidth, imageHeight int,
) Region {
	if !tmpl.Empty() {
		if field := c.classifyByPosition(r, tmpl, layout, imageWidth, imageHeight); field != "" {
			r.FieldType = field
			r.Confidence = capConfidence(r.Confidence + positionMatchBonus)
		} else if field := c.classifyByShape(r, tmpl, imageHeight); field != "" {
			r.FieldType = field
			r.Confidence = capConfidence(r.Confidence + patternMatchBonus)
		}
	}

	r.QualityScore = c.scoreRegionQuality(r)
	r.Confidence = capConfidence(r.Confidence * r.QualityScore)
	return r
}

// classifyByPosition maps region placement onto the expected field list.
// Table layouts use column bands; form layouts partition the page height
// evenly across the expected fields.
func (c *Classifier) classifyByPosition(r Region, tmpl *template.Template,
	layout LayoutInfo, imageWidth, imageHeight int,
) string {
	if len(tmpl.Fields) == 0 || imageWidth <= 0 || imageHeight <= 0 {
		return ""
	}
	centerX := float64(r.X) + float64(r.Width)/2
	centerY := float64(r.Y) + float64(r.Height)/2

	if layout.Layout == template.LayoutTable {
		// Header band carries column titles, not data.
		if centerY < 0.12*float64(imageHeight) {
			return ""
		}
		switch {
		case centerX < 0.25*float64(imageWidth):
			return tmpl.Fields[0]
		case centerX > 0.7*float64(imageWidth) && tmpl.HasNumericField():
			return tmpl.NumericField()
		case len(tmpl.Fields) > 1:
			return tmpl.Fields[1]
		default:
			return ""
		}
	}

	// Form layout: proportional vertical position onto an equally spaced
	// partition of the field list.
	idx := int(centerY / float64(imageHeight) * float64(len(tmpl.Fields)))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(tmpl.Fields) {
		idx = len(tmpl.Fields) - 1
	}
	return tmpl.Fields[idx]
}

// classifyByShape is the pattern fallback: region geometry against the
// template's field set.
func (c *Classifier) classifyByShape(r Region, tmpl *template.Template, imageHeight int) string {
	aspect := r.AspectRatio()
	short := imageHeight > 0 && float64(r.Height) < 0.08*float64(imageHeight)

	// Wide, short strips in amount-bearing documents read as numbers.
	if aspect > 4 && short && tmpl.HasNumericField() {
		return tmpl.NumericField()
	}
	if aspect >= 2 && aspect <= 4 {
		for _, f := range tmpl.Fields {
			if f == "tenant_name" || f == "property_name" || f == "landlord_name" {
				return f
			}
		}
	}
	return ""
}

// scoreRegionQuality rates region geometry independently of classification:
// area adequacy, aspect-ratio sanity and a detection-method adjustment.
func (c *Classifier) scoreRegionQuality(r Region) float64 {
	score := 1.0

	area := float64(r.Area())
	switch {
	case area < 200:
		score *= 0.6
	case area < 500:
		score *= 0.8
	case area > 30000:
		score *= 0.85
	}

	aspect := r.AspectRatio()
	if aspect < 0.5 || aspect > 20 {
		score *= 0.7
	}

	switch r.DetectionMethod {
	case MethodEAST:
		score *= 1.1
	case MethodContours:
		score *= 0.9
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

func capConfidence(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}
	if v < 0 {
		return 0
	}
	return v
}
