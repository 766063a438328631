package region

import (
	"log/slog"

	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/utils"
)

// Detector proposes raw text region candidates from page pixel data.
// Implementations are pure functions of the input plane plus any preloaded,
// read-only model artifact.
type Detector interface {
	Name() string
	Available() bool
	Detect(g *utils.Gray) ([]Region, error)
}

// DetectorConfig holds parameters shared by the detection strategies.
type DetectorConfig struct {
	MinRegionArea    int     // smallest accepted candidate area (default 100)
	MaxRegionArea    int     // largest accepted candidate area (default 50000)
	OverlapThreshold float64 // per-detector greedy NMS IoU bound (default 0.3)

	EASTModelPath      string  // optional model artifact; empty disables the deep detector
	EASTScoreThreshold float64 // cell confidence cutoff (default 0.5)
	EASTNMSThreshold   float64 // NMS IoU for decoded boxes (default 0.4)
}

// DefaultDetectorConfig returns detection defaults.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		MinRegionArea:      100,
		MaxRegionArea:      50000,
		OverlapThreshold:   0.3,
		EASTScoreThreshold: 0.5,
		EASTNMSThreshold:   0.4,
	}
}

// CompositeDetector runs the available detection strategies and concatenates
// their pre-filtered outputs. A failing strategy is logged and skipped;
// total failure yields an empty list, never an error.
type CompositeDetector struct {
	detectors []Detector
	overlap   float64
}

// NewCompositeDetector builds the standard strategy set for the given
// configuration. Each strategy's availability is checked once here, not at
// call sites.
func NewCompositeDetector(config DetectorConfig) *CompositeDetector {
	candidates := []Detector{
		NewEASTDetector(config),
		NewComponentDetector(config),
		NewContourDetector(config),
	}
	available := make([]Detector, 0, len(candidates))
	for _, d := range candidates {
		if d.Available() {
			available = append(available, d)
			continue
		}
		slog.Debug("detector unavailable, skipping", "detector", d.Name())
	}
	return &CompositeDetector{detectors: available, overlap: config.OverlapThreshold}
}

// Detectors returns the active strategy names.
func (c *CompositeDetector) Detectors() []string {
	names := make([]string, 0, len(c.detectors))
	for _, d := range c.detectors {
		names = append(names, d.Name())
	}
	return names
}

// DetectTextRegions runs every available detector over the plane and returns
// the combined raw candidates, each detector's output locally de-overlapped.
func (c *CompositeDetector) DetectTextRegions(g *utils.Gray) []Region {
	if g == nil || g.Width == 0 || g.Height == 0 {
		return nil
	}
	var all []Region
	for _, d := range c.detectors {
		regions, err := d.Detect(g)
		if err != nil {
			slog.Warn("detector failed, continuing with remaining detectors",
				"detector", d.Name(), "error", err)
			continue
		}
		all = append(all, FilterOverlapping(regions, c.overlap)...)
	}
	return clipAll(all, g.Width, g.Height)
}

func clipAll(regions []Region, width, height int) []Region {
	out := make([]Region, 0, len(regions))
	for _, r := range regions {
		clipped := r.ClipTo(width, height)
		if clipped.Valid() {
			out = append(out, clipped)
		}
	}
	return out
}
