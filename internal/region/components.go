package region

import (
	"container/list"

	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/mempool"
	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/preprocess"
	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/utils"
)

// compStats represents statistics for a connected component.
type compStats struct {
	count int
	minX  int
	minY  int
	maxX  int
	maxY  int
}

func (st compStats) width() int  { return st.maxX - st.minX + 1 }
func (st compStats) height() int { return st.maxY - st.minY + 1 }

// ComponentDetector finds text candidates through connected-component
// analysis of an adaptively binarized page.
type ComponentDetector struct {
	config DetectorConfig
}

// NewComponentDetector creates the connected-component detection strategy.
func NewComponentDetector(config DetectorConfig) *ComponentDetector {
	return &ComponentDetector{config: config}
}

func (d *ComponentDetector) Name() string { return MethodTraditionalCV }

// Available always reports true; this strategy needs no model artifact.
func (d *ComponentDetector) Available() bool { return true }

// Detect binarizes the plane (morphological close, inverted adaptive
// threshold so ink becomes foreground), labels 8-connected components and
// keeps the ones whose geometry looks like text.
func (d *ComponentDetector) Detect(g *utils.Gray) ([]Region, error) {
	if g == nil || g.Width == 0 || g.Height == 0 {
		return nil, nil
	}
	closed := preprocess.Close(g, 3, 3)
	binary := preprocess.AdaptiveThreshold(closed, 31, 10, true)

	mask := mempool.GetBool(binary.Width * binary.Height)
	defer mempool.PutBool(mask)
	for i, p := range binary.Pix {
		if p > 0 {
			mask[i] = true
		}
	}

	comps := connectedComponents(mask, binary.Width, binary.Height)

	regions := make([]Region, 0, len(comps))
	for _, st := range comps {
		if !d.acceptComponent(st, g.Width, g.Height) {
			continue
		}
		regions = append(regions, Region{
			X:               st.minX,
			Y:               st.minY,
			Width:           st.width(),
			Height:          st.height(),
			Confidence:      d.componentConfidence(st),
			DetectionMethod: MethodTraditionalCV,
		})
	}
	return regions, nil
}

// acceptComponent filters components by area and image-relative size bounds.
func (d *ComponentDetector) acceptComponent(st compStats, imageWidth, imageHeight int) bool {
	area := st.width() * st.height()
	if area < d.config.MinRegionArea || area > d.config.MaxRegionArea {
		return false
	}
	if st.width() < 8 || st.height() < 6 {
		return false
	}
	// Components spanning most of the page are rules or borders, not text.
	if float64(st.width()) > 0.95*float64(imageWidth) {
		return false
	}
	if float64(st.height()) > 0.5*float64(imageHeight) {
		return false
	}
	return true
}

// componentConfidence scores a component from its area and aspect ratio.
// Base 0.3 plus bonuses, capped at 0.8.
func (d *ComponentDetector) componentConfidence(st compStats) float64 {
	area := float64(st.width() * st.height())
	aspect := float64(st.width()) / float64(st.height())

	conf := 0.3
	areaBonus := 0.25 * (area / 5000.0)
	if areaBonus > 0.25 {
		areaBonus = 0.25
	}
	conf += areaBonus

	// Text runs read wide and short.
	switch {
	case aspect >= 1.5 && aspect <= 15:
		conf += 0.25
	case aspect >= 0.5 && aspect < 1.5:
		conf += 0.1
	}

	if conf > 0.8 {
		conf = 0.8
	}
	return conf
}

// connectedComponents labels 8-connected foreground components in the mask
// and returns their stats.
func connectedComponents(mask []bool, w, h int) []compStats {
	visited := mempool.GetBool(w * h)
	defer mempool.PutBool(visited)

	var comps []compStats
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			idx := y*w + x
			if mask[idx] && !visited[idx] {
				comps = append(comps, componentBFS(mask, visited, w, h, x, y))
			}
		}
	}
	return comps
}

// componentBFS performs BFS traversal for one component from a seed pixel.
func componentBFS(mask, visited []bool, w, h, startX, startY int) compStats {
	st := compStats{minX: startX, minY: startY, maxX: startX, maxY: startY}
	queue := list.New()
	queue.PushBack([2]int{startX, startY})
	visited[startY*w+startX] = true

	for queue.Len() > 0 {
		front := queue.Front()
		queue.Remove(front)
		p, _ := front.Value.([2]int)
		x, y := p[0], p[1]

		st.count++
		if x < st.minX {
			st.minX = x
		}
		if x > st.maxX {
			st.maxX = x
		}
		if y < st.minY {
			st.minY = y
		}
		if y > st.maxY {
			st.maxY = y
		}

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				nx, ny := x+dx, y+dy
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				nidx := ny*w + nx
				if mask[nidx] && !visited[nidx] {
					visited[nidx] = true
					queue.PushBack([2]int{nx, ny})
				}
			}
		}
	}
	return st
}
