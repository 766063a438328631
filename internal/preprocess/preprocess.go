// Package preprocess implements the image preparation stages used before
// detection and OCR: grayscale conversion, deskew, denoising, contrast
// enhancement and binarization at multiple strengths.
package preprocess

import (
	"image"
	"log/slog"

	"github.com/disintegration/imaging"

	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/utils"
)

// Level selects how much cleanup is applied before OCR.
type Level string

const (
	LevelLight      Level = "light"
	LevelStandard   Level = "standard"
	LevelAggressive Level = "aggressive"
)

// Config holds preprocessing parameters.
type Config struct {
	CLAHETiles         int     // tile grid for CLAHE (default 8)
	CLAHEClipLimit     float64 // CLAHE clip limit (default 2.0)
	AdaptiveBlockSize  int     // window for adaptive threshold (default 31)
	AdaptiveConstant   float64 // offset for adaptive threshold (default 10)
	MinSideForUpscale  int     // upscale inputs smaller than this (default 300)
	DeskewMaxAngle     float64 // deskew search range in degrees (default 5)
	DeskewStep         float64 // deskew search step in degrees (default 0.5)
	BinaryLevelsCutoff int     // unique-level count at or below which an image counts as binary (default 2)
}

// DefaultConfig returns default preprocessing parameters.
func DefaultConfig() Config {
	return Config{
		CLAHETiles:         8,
		CLAHEClipLimit:     2.0,
		AdaptiveBlockSize:  31,
		AdaptiveConstant:   10,
		MinSideForUpscale:  300,
		DeskewMaxAngle:     5,
		DeskewStep:         0.5,
		BinaryLevelsCutoff: 2,
	}
}

// Preprocessor prepares page images for detection and OCR.
type Preprocessor struct {
	config Config
}

// New creates a preprocessor with the given configuration.
func New(config Config) *Preprocessor {
	if config.CLAHETiles <= 0 {
		config = DefaultConfig()
	}
	return &Preprocessor{config: config}
}

// IsBinary reports whether the plane already holds a binarized image.
// Such images need structural cleanup rather than contrast work.
func (p *Preprocessor) IsBinary(g *utils.Gray) bool {
	if g == nil {
		return false
	}
	return g.UniqueLevels() <= p.config.BinaryLevelsCutoff
}

// Apply runs the preprocessing pipeline for the given level and returns a
// new plane. Already-binary inputs are routed to the aggressive path
// regardless of the requested level.
func (p *Preprocessor) Apply(g *utils.Gray, level Level) *utils.Gray {
	if g == nil || len(g.Pix) == 0 {
		return g
	}
	if p.IsBinary(g) && level != LevelAggressive {
		slog.Debug("binary input detected, forcing aggressive preprocessing")
		level = LevelAggressive
	}
	switch level {
	case LevelLight:
		return p.applyLight(g)
	case LevelAggressive:
		return p.applyAggressive(g)
	default:
		return p.applyStandard(g)
	}
}

// applyLight handles already-clean scans with histogram equalization only.
func (p *Preprocessor) applyLight(g *utils.Gray) *utils.Gray {
	return EqualizeHistogram(g)
}

// applyStandard is the default path: CLAHE contrast, light denoise,
// adaptive threshold and a light morphological close.
func (p *Preprocessor) applyStandard(g *utils.Gray) *utils.Gray {
	out := CLAHE(g, p.config.CLAHETiles, p.config.CLAHEClipLimit)
	out = BoxBlur(out, 3)
	out = AdaptiveThreshold(out, p.config.AdaptiveBlockSize, p.config.AdaptiveConstant, false)
	out = Close(out, 2, 2)
	return out
}

// applyAggressive handles degraded or binary inputs: upscale small crops,
// median denoise, dual thresholding picking the variant with a white-pixel
// ratio closest to 0.5, then close+open to clear speckle noise.
func (p *Preprocessor) applyAggressive(g *utils.Gray) *utils.Gray {
	out := g
	if out.Width < p.config.MinSideForUpscale || out.Height < p.config.MinSideForUpscale {
		out = Upscale(out, 2)
	}
	out = MedianBlur(out, 3)

	otsu := OtsuBinarize(out, false)
	adaptive := AdaptiveThreshold(out, p.config.AdaptiveBlockSize, p.config.AdaptiveConstant, false)
	if distanceToHalf(otsu.WhiteRatio(128)) <= distanceToHalf(adaptive.WhiteRatio(128)) {
		out = otsu
	} else {
		out = adaptive
	}

	out = Close(out, 2, 2)
	out = Open(out, 2, 2)
	return out
}

func distanceToHalf(r float64) float64 {
	if r > 0.5 {
		return r - 0.5
	}
	return 0.5 - r
}

// Upscale resizes the plane by an integer factor using Lanczos resampling.
func Upscale(g *utils.Gray, factor int) *utils.Gray {
	if g == nil || factor <= 1 || g.Width == 0 || g.Height == 0 {
		return g
	}
	resized := imaging.Resize(g.ToImage(), g.Width*factor, g.Height*factor, imaging.Lanczos)
	out, err := utils.GrayFromImage(resized)
	if err != nil {
		return g
	}
	return out
}

// Deskew estimates the text skew angle via projection-profile variance over
// candidate rotations and returns the rotated plane plus the applied angle.
// Returns the input unchanged when no rotation improves the profile.
func (p *Preprocessor) Deskew(g *utils.Gray) (*utils.Gray, float64) {
	if g == nil || g.Width < 16 || g.Height < 16 {
		return g, 0
	}
	binary := OtsuBinarize(BoxBlur(g, 3), true)

	bestAngle := 0.0
	bestScore := profileVariance(binary)
	for angle := -p.config.DeskewMaxAngle; angle <= p.config.DeskewMaxAngle; angle += p.config.DeskewStep {
		if angle == 0 {
			continue
		}
		rotated := rotateGray(binary, angle)
		if score := profileVariance(rotated); score > bestScore {
			bestScore = score
			bestAngle = angle
		}
	}
	if bestAngle == 0 {
		return g, 0
	}
	slog.Debug("deskewing page", "angle", bestAngle)
	return rotateGray(g, bestAngle), bestAngle
}

// profileVariance scores how well text rows align horizontally: sharper
// row-sum peaks mean straighter lines.
func profileVariance(g *utils.Gray) float64 {
	if g.Height == 0 {
		return 0
	}
	rows := make([]float64, g.Height)
	var mean float64
	for y := 0; y < g.Height; y++ {
		var sum float64
		for x := 0; x < g.Width; x++ {
			if g.Pix[y*g.Width+x] > 0 {
				sum++
			}
		}
		rows[y] = sum
		mean += sum
	}
	mean /= float64(g.Height)
	var variance float64
	for _, r := range rows {
		d := r - mean
		variance += d * d
	}
	return variance / float64(g.Height)
}

func rotateGray(g *utils.Gray, angle float64) *utils.Gray {
	rotated := imaging.Rotate(g.ToImage(), angle, image.White.C)
	out, err := utils.GrayFromImage(rotated)
	if err != nil {
		return g
	}
	return out
}
