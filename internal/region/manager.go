package region

import (
	"image"
	"log/slog"

	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/template"
	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/utils"
)

// ManagerConfig holds the suggestion pipeline parameters.
type ManagerConfig struct {
	Detector             DetectorConfig
	MergeIoUThreshold    float64 // cross-detector merge bound (default 0.5)
	ConfidenceThreshold  float64 // final keep threshold (default 0.6)
	HistoryCapacity      int     // per-document-type telemetry bound (default 100)
	HistoryMinConfidence float64 // regions at or above this are recorded (default 0.8)
}

// DefaultManagerConfig returns suggestion pipeline defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		Detector:             DefaultDetectorConfig(),
		MergeIoUThreshold:    0.5,
		ConfidenceThreshold:  0.6,
		HistoryCapacity:      defaultHistoryCapacity,
		HistoryMinConfidence: 0.8,
	}
}

// Manager composes detection, classification, deduplication and bounds
// optimization into the final ranked region list for a page. All failure
// modes degrade to fewer regions or an empty list; SuggestRegions never
// returns an error.
type Manager struct {
	config     ManagerConfig
	detector   *CompositeDetector
	classifier *Classifier
	history    *History
}

// NewManager builds a region manager. Detector availability is resolved
// once here.
func NewManager(config ManagerConfig) *Manager {
	if config.MergeIoUThreshold <= 0 {
		config.MergeIoUThreshold = 0.5
	}
	if config.ConfidenceThreshold <= 0 {
		config.ConfidenceThreshold = 0.6
	}
	if config.HistoryMinConfidence <= 0 {
		config.HistoryMinConfidence = 0.8
	}
	m := &Manager{
		config:     config,
		detector:   NewCompositeDetector(config.Detector),
		classifier: NewClassifier(),
		history:    NewHistory(config.HistoryCapacity),
	}
	slog.Debug("region manager initialized", "detectors", m.detector.Detectors())
	return m
}

// History exposes the advisory telemetry store.
func (m *Manager) History() *History { return m.history }

// SuggestRegions runs the full proposal pipeline for a page image and
// returns classified, deduplicated and optimized regions grouped by field
// type, ordered by confidence within each group.
func (m *Manager) SuggestRegions(documentType string, img image.Image) []Region {
	g, err := utils.GrayFromImage(img)
	if err != nil {
		slog.Warn("region suggestion skipped, unreadable image", "error", err)
		return nil
	}
	return m.suggestFromGray(documentType, g)
}

func (m *Manager) suggestFromGray(documentType string, g *utils.Gray) []Region {
	if g == nil || g.Width == 0 || g.Height == 0 {
		return nil
	}

	layout := AnalyzeDocumentLayout(g)
	candidates := m.detector.DetectTextRegions(g)
	candidates = append(candidates, m.templateRegions(documentType, layout, g.Width, g.Height)...)

	classified := m.classifier.ClassifyRegions(candidates, documentType, layout, g.Width, g.Height)

	optimized := make([]Region, 0, len(classified))
	for _, r := range classified {
		optimized = append(optimized, OptimizeRegionBounds(r, g))
	}

	kept := FilterByConfidence(optimized, m.config.ConfidenceThreshold)
	final := MergeOverlappingRegions(kept, m.config.MergeIoUThreshold)

	m.recordHistory(documentType, final)
	slog.Debug("region suggestion complete",
		"document_type", documentType,
		"layout", layout.Layout,
		"candidates", len(candidates),
		"final", len(final))
	return final
}

// SuggestRegionsForField runs the full pipeline and keeps regions labeled
// with the requested field, best first.
func (m *Manager) SuggestRegionsForField(fieldName, documentType string, img image.Image) []Region {
	all := m.SuggestRegions(documentType, img)
	out := make([]Region, 0, len(all))
	for _, r := range all {
		if r.FieldType == fieldName {
			out = append(out, r)
		}
	}
	SortByConfidence(out)
	return out
}

// templateRegions produces heuristic fallback regions from the document
// template: a column/row grid for table layouts, fixed proportional slots
// for form layouts. They supplement sparse CV detection and carry a low
// base confidence so detected regions win when both exist.
func (m *Manager) templateRegions(documentType string, layout LayoutInfo,
	imageWidth, imageHeight int,
) []Region {
	tmpl := template.Lookup(documentType)
	if tmpl.Empty() || imageWidth < 64 || imageHeight < 64 {
		return nil
	}

	if layout.Layout == template.LayoutTable {
		return tableGridRegions(tmpl, imageWidth, imageHeight)
	}
	return formSlotRegions(tmpl, imageWidth, imageHeight)
}

func tableGridRegions(tmpl *template.Template, imageWidth, imageHeight int) []Region {
	columns := len(tmpl.Fields)
	if columns > 4 {
		columns = 4
	}
	const rows = 5
	// Data rows sit below the header band.
	top := int(0.15 * float64(imageHeight))
	rowHeight := (int(0.85*float64(imageHeight)) - top) / rows
	colWidth := imageWidth / columns

	out := make([]Region, 0, rows*columns)
	for row := 0; row < rows; row++ {
		for col := 0; col < columns; col++ {
			out = append(out, Region{
				X:               col*colWidth + colWidth/10,
				Y:               top + row*rowHeight + rowHeight/6,
				Width:           colWidth * 8 / 10,
				Height:          rowHeight * 2 / 3,
				Confidence:      0.4,
				DetectionMethod: MethodTemplate,
			})
		}
	}
	return out
}

func formSlotRegions(tmpl *template.Template, imageWidth, imageHeight int) []Region {
	n := len(tmpl.Fields)
	out := make([]Region, 0, n)
	slotHeight := imageHeight / (n + 1)
	for i := 0; i < n; i++ {
		out = append(out, Region{
			X:               int(0.35 * float64(imageWidth)),
			Y:               (i+1)*slotHeight - slotHeight/4,
			Width:           int(0.55 * float64(imageWidth)),
			Height:          slotHeight / 2,
			Confidence:      0.4,
			DetectionMethod: MethodTemplate,
		})
	}
	return out
}

func (m *Manager) recordHistory(documentType string, regions []Region) {
	var strong []Region
	for _, r := range regions {
		if r.Confidence >= m.config.HistoryMinConfidence {
			strong = append(strong, r)
		}
	}
	m.history.Record(documentType, strong)
}
