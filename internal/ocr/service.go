package ocr

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"image"
	"log/slog"
	"sync"

	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/preprocess"
	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/region"
	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/utils"
)

// Config holds OCR service settings.
type Config struct {
	Languages           []string
	DPI                 int
	Preprocess          preprocess.Config
	EarlyStopConfidence float64    // skip the aggressive pass above this (default 80)
	EnableCache         bool       // cache results keyed by image+region fingerprint
	Path                PathPolicy // filesystem input policy
}

// DefaultConfig returns OCR service defaults.
func DefaultConfig() Config {
	return Config{
		Languages:           []string{"eng"},
		DPI:                 300,
		Preprocess:          preprocess.DefaultConfig(),
		EarlyStopConfidence: 80,
		Path:                DefaultPathPolicy(),
	}
}

// Service extracts text from page images and regions. Every public method
// catches internal failures and returns a well-formed degraded Result; none
// of them panic or propagate errors.
type Service struct {
	config Config
	engine Engine
	pre    *preprocess.Preprocessor

	cacheMu sync.Mutex
	cache   map[string]Result
}

// NewService creates an OCR service. A nil engine defaults to Tesseract.
func NewService(config Config, engine Engine) *Service {
	if config.EarlyStopConfidence <= 0 {
		config.EarlyStopConfidence = 80
	}
	if engine == nil {
		engine = NewTesseractEngine(config.Languages, config.DPI)
	}
	s := &Service{
		config: config,
		engine: engine,
		pre:    preprocess.New(config.Preprocess),
	}
	if config.EnableCache {
		s.cache = make(map[string]Result)
	}
	return s
}

// ExtractTextFromImage extracts text from a page image, optionally limited
// to one region.
func (s *Service) ExtractTextFromImage(img image.Image, r *region.Region) Result {
	return s.ExtractTextFromImageContext(context.Background(), img, r)
}

// ExtractTextFromImageContext is ExtractTextFromImage with cancellation
// honored between preprocessing tiers.
func (s *Service) ExtractTextFromImageContext(ctx context.Context, img image.Image, r *region.Region) Result {
	if img == nil {
		return failed(CodeInvalidInput, "no image provided")
	}

	gray, err := utils.GrayFromImage(img)
	if err != nil {
		return failed(CodeInvalidImage, "image could not be decoded")
	}

	if r != nil {
		clipped := r.ClipTo(gray.Width, gray.Height)
		if !clipped.Valid() {
			return failed(CodeInvalidInput, "region has no overlap with the image")
		}
		gray = gray.Crop(clipped.Rect())
	}
	if gray.Width == 0 || gray.Height == 0 {
		return failed(CodeInvalidImage, "empty image")
	}

	key := s.cacheKey(gray, r)
	if cached, ok := s.cacheGet(key); ok {
		return cached
	}

	result := s.extract(ctx, gray)
	s.cachePut(key, result)
	return result
}

// ExtractTextFromRegion loads an image file under the path policy and
// extracts text from the given region.
func (s *Service) ExtractTextFromRegion(path string, r region.Region) Result {
	if code, message := s.config.Path.Check(path); code != "" {
		slog.Warn("ocr input rejected", "path_id", PathID(path), "code", code)
		return failed(code, message)
	}
	img, _, err := utils.LoadImage(path)
	if err != nil {
		slog.Warn("ocr input unreadable", "path_id", PathID(path), "error", err)
		return failed(CodeInvalidImage, "input file could not be decoded")
	}
	return s.ExtractTextFromImage(img, &r)
}

// ExtractStructuredData runs plain OCR over the image and then the fixed
// pattern battery over the corrected text.
func (s *Service) ExtractStructuredData(img image.Image) StructuredData {
	res := s.ExtractTextFromImage(img, nil)
	if !res.Success {
		return StructuredData{ExtractedFields: map[string]string{}}
	}
	return ExtractStructuredFields(res.Text, res.Confidence)
}

// extract runs the tiered recognition strategy: the standard pass first,
// then the aggressive pass only when the standard result is inadequate.
func (s *Service) extract(ctx context.Context, gray *utils.Gray) Result {
	levels := []preprocess.Level{preprocess.LevelStandard, preprocess.LevelAggressive}
	mode := s.selectMode(gray)

	var best Result
	for i, level := range levels {
		if i > 0 {
			// Cancellation is honored at tier granularity only.
			select {
			case <-ctx.Done():
				return s.finalize(best, mode)
			default:
			}
		}

		plane := s.pre.Apply(gray, level)
		engineResult, err := s.engine.Recognize(plane.ToImage(), mode)
		if err != nil {
			slog.Warn("ocr pass failed", "level", level, "mode", mode, "error", err)
			continue
		}
		confidence := WeightedConfidence(engineResult.Words)
		if confidence > best.Confidence || (best.RawText == "" && engineResult.Text != "") {
			best = Result{
				RawText:           engineResult.Text,
				Confidence:        confidence,
				Words:             engineResult.Words,
				PreprocessingUsed: string(level),
			}
		}
		if confidence > s.config.EarlyStopConfidence {
			break
		}
	}
	return s.finalize(best, mode)
}

// finalize applies corrections, validation and the success verdict.
func (s *Service) finalize(best Result, mode Mode) Result {
	if best.RawText == "" && best.Confidence == 0 {
		out := failed(CodeProcessingFailed, "no text could be extracted")
		out.Validation = ValidateResult(out)
		return out
	}
	best.Text = ApplyCorrections(best.RawText)
	best.EngineMode = string(mode)
	best.Success = true
	best.Validation = ValidateResult(best)
	return best
}

// selectMode picks the recognition mode from image characteristics: very
// wide thin crops read as a single line, tiny crops as a single word, pages
// with little edge activity as sparse text, everything else as the default
// document block mode.
func (s *Service) selectMode(gray *utils.Gray) Mode {
	if gray.Height > 0 {
		aspect := float64(gray.Width) / float64(gray.Height)
		if aspect > 6 && gray.Height < 80 {
			return ModeSingleLine
		}
	}
	if gray.Width < 140 && gray.Height < 60 {
		return ModeSingleWord
	}
	if preprocess.EdgeRatio(gray, 120) < 0.01 {
		return ModeSparseText
	}
	return ModeRealEstate
}

func (s *Service) cacheKey(gray *utils.Gray, r *region.Region) string {
	if s.cache == nil {
		return ""
	}
	h := sha256.New()
	var dims [16]byte
	binary.LittleEndian.PutUint32(dims[0:], uint32(gray.Width))
	binary.LittleEndian.PutUint32(dims[4:], uint32(gray.Height))
	if r != nil {
		binary.LittleEndian.PutUint32(dims[8:], uint32(r.X))
		binary.LittleEndian.PutUint32(dims[12:], uint32(r.Y))
	}
	h.Write(dims[:])
	// Sample the plane rather than hashing every pixel.
	step := len(gray.Pix)/4096 + 1
	for i := 0; i < len(gray.Pix); i += step {
		h.Write([]byte{gray.Pix[i]})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (s *Service) cacheGet(key string) (Result, bool) {
	if s.cache == nil || key == "" {
		return Result{}, false
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	res, ok := s.cache[key]
	return res, ok
}

func (s *Service) cachePut(key string, res Result) {
	if s.cache == nil || key == "" {
		return
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.cache[key] = res
}
