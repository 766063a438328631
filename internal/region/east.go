package region

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sync"

	"github.com/yalue/onnxruntime_go"

	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/utils"
)

// EAST channel means used during model training.
var eastMeans = [3]float32{123.68, 116.78, 103.94}

// EASTDetector runs an EAST-style deep text detection model through ONNX
// Runtime. The model artifact is optional: when missing, the detector
// reports itself unavailable and the pipeline continues with the classical
// strategies.
type EASTDetector struct {
	config  DetectorConfig
	session *onnxruntime_go.DynamicAdvancedSession
	mu      sync.Mutex
}

// NewEASTDetector creates the deep detection strategy. Session setup is
// deferred to the first Detect call so construction never fails.
func NewEASTDetector(config DetectorConfig) *EASTDetector {
	return &EASTDetector{config: config}
}

func (d *EASTDetector) Name() string { return MethodEAST }

// Available reports whether a model artifact exists on disk.
func (d *EASTDetector) Available() bool {
	if d.config.EASTModelPath == "" {
		return false
	}
	info, err := os.Stat(d.config.EASTModelPath)
	return err == nil && !info.IsDir()
}

// Close releases the inference session.
func (d *EASTDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.session != nil {
		err := d.session.Destroy()
		d.session = nil
		return err
	}
	return nil
}

func (d *EASTDetector) ensureSession() (*onnxruntime_go.DynamicAdvancedSession, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.session != nil {
		return d.session, nil
	}
	if !onnxruntime_go.IsInitialized() {
		if err := onnxruntime_go.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnx runtime: %w", err)
		}
	}
	session, err := onnxruntime_go.NewDynamicAdvancedSession(d.config.EASTModelPath,
		[]string{"input"}, []string{"scores", "geometry"}, nil)
	if err != nil {
		return nil, fmt.Errorf("create east session: %w", err)
	}
	slog.Debug("east detector session created", "model_path", d.config.EASTModelPath)
	d.session = session
	return session, nil
}

// Detect resizes the plane to a multiple-of-32 size, runs the forward pass
// and decodes rotated boxes back to axis-aligned regions in original image
// coordinates.
func (d *EASTDetector) Detect(g *utils.Gray) ([]Region, error) {
	if g == nil || g.Width == 0 || g.Height == 0 {
		return nil, nil
	}
	session, err := d.ensureSession()
	if err != nil {
		return nil, err
	}

	targetW := roundToMultiple(g.Width, 32)
	targetH := roundToMultiple(g.Height, 32)
	scaleX := float64(g.Width) / float64(targetW)
	scaleY := float64(g.Height) / float64(targetH)

	input := d.buildInputTensorData(g, targetW, targetH)
	inputTensor, err := onnxruntime_go.NewTensor(
		onnxruntime_go.NewShape(1, 3, int64(targetH), int64(targetW)), input)
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	defer func() {
		if err := inputTensor.Destroy(); err != nil {
			slog.Warn("failed to destroy input tensor", "error", err)
		}
	}()

	outputs := []onnxruntime_go.Value{nil, nil}
	if err := session.Run([]onnxruntime_go.Value{inputTensor}, outputs); err != nil {
		return nil, fmt.Errorf("east inference: %w", err)
	}
	defer func() {
		for _, out := range outputs {
			if out == nil {
				continue
			}
			if err := out.Destroy(); err != nil {
				slog.Warn("failed to destroy output tensor", "error", err)
			}
		}
	}()

	scores, scoreShape, err := tensorData(outputs[0])
	if err != nil {
		return nil, fmt.Errorf("east scores output: %w", err)
	}
	geometry, geoShape, err := tensorData(outputs[1])
	if err != nil {
		return nil, fmt.Errorf("east geometry output: %w", err)
	}
	if len(scoreShape) != 4 || len(geoShape) != 4 || geoShape[1] < 5 {
		return nil, fmt.Errorf("unexpected east output shapes %v / %v", scoreShape, geoShape)
	}

	mapH := int(scoreShape[2])
	mapW := int(scoreShape[3])
	raw := decodeEAST(scores, geometry, mapW, mapH, float32(d.config.EASTScoreThreshold))
	raw = FilterOverlapping(raw, d.config.EASTNMSThreshold)

	// Rescale from working resolution back to original image coordinates.
	out := make([]Region, 0, len(raw))
	for _, r := range raw {
		out = append(out, Region{
			X:               int(float64(r.X) * scaleX),
			Y:               int(float64(r.Y) * scaleY),
			Width:           int(math.Ceil(float64(r.Width) * scaleX)),
			Height:          int(math.Ceil(float64(r.Height) * scaleY)),
			Confidence:      r.Confidence,
			DetectionMethod: MethodEAST,
		})
	}
	return out, nil
}

// buildInputTensorData resamples the gray plane to the working size and
// replicates it across the three input channels with EAST mean subtraction.
func (d *EASTDetector) buildInputTensorData(g *utils.Gray, targetW, targetH int) []float32 {
	data := make([]float32, 3*targetH*targetW)
	for y := 0; y < targetH; y++ {
		srcY := y * g.Height / targetH
		for x := 0; x < targetW; x++ {
			srcX := x * g.Width / targetW
			v := float32(g.Pix[srcY*g.Width+srcX])
			for c := 0; c < 3; c++ {
				data[c*targetH*targetW+y*targetW+x] = v - eastMeans[c]
			}
		}
	}
	return data
}

// decodeEAST converts per-cell scores and RBOX geometry (4 edge distances
// plus rotation angle, at 1/4 input resolution) into axis-aligned regions in
// working-image coordinates.
func decodeEAST(scores, geometry []float32, mapW, mapH int, threshold float32) []Region {
	plane := mapW * mapH
	if len(scores) < plane || len(geometry) < 5*plane {
		return nil
	}
	var out []Region
	for y := 0; y < mapH; y++ {
		for x := 0; x < mapW; x++ {
			idx := y*mapW + x
			score := scores[idx]
			if score < threshold {
				continue
			}
			top := float64(geometry[0*plane+idx])
			right := float64(geometry[1*plane+idx])
			bottom := float64(geometry[2*plane+idx])
			left := float64(geometry[3*plane+idx])
			angle := float64(geometry[4*plane+idx])

			// Cell center in input pixels (feature maps are 1/4 resolution).
			cx := float64(x) * 4.0
			cy := float64(y) * 4.0

			cos := math.Cos(angle)
			sin := math.Sin(angle)

			// Rotated box corners relative to the cell, then AABB.
			w := left + right
			h := top + bottom
			x2 := cx + cos*right + sin*bottom
			y2 := cy - sin*right + cos*bottom
			x1 := x2 - cos*w - sin*h
			y1 := y2 + sin*w - cos*h

			minX := math.Min(x1, x2)
			minY := math.Min(y1, y2)
			bw := math.Abs(x2 - x1)
			bh := math.Abs(y2 - y1)
			if bw < 1 || bh < 1 {
				continue
			}
			out = append(out, Region{
				X:               int(minX),
				Y:               int(minY),
				Width:           int(math.Ceil(bw)),
				Height:          int(math.Ceil(bh)),
				Confidence:      float64(score),
				DetectionMethod: MethodEAST,
			})
		}
	}
	return out
}

func tensorData(v onnxruntime_go.Value) ([]float32, []int64, error) {
	if v == nil {
		return nil, nil, errors.New("nil output tensor")
	}
	t, ok := v.(*onnxruntime_go.Tensor[float32])
	if !ok {
		return nil, nil, fmt.Errorf("expected float32 tensor, got %T", v)
	}
	return t.GetData(), v.GetShape(), nil
}

func roundToMultiple(v, multiple int) int {
	r := (v / multiple) * multiple
	if r < multiple {
		r = multiple
	}
	return r
}
