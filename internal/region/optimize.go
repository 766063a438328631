package region

import (
	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/mempool"
	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/preprocess"
	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/utils"
)

// optimizePadding is applied around the tightened text bounds, clamped to
// the original crop.
const optimizePadding = 3

// OptimizeRegionBounds tightens a classified region's bounding box to the
// actual text pixels found inside it. The crop is binarized with Otsu,
// closed, and the union of foreground component boxes becomes the new
// bounds. When the crop holds no foreground, the input region is returned
// unchanged; this never fails, worst case is a no-op.
func OptimizeRegionBounds(r Region, g *utils.Gray) Region {
	if g == nil || g.Width == 0 || g.Height == 0 {
		return r
	}
	clipped := r.ClipTo(g.Width, g.Height)
	if !clipped.Valid() {
		return r
	}

	crop := g.Crop(clipped.Rect())
	binary := preprocess.Close(preprocess.OtsuBinarize(crop, true), 3, 3)

	mask := mempool.GetBool(binary.Width * binary.Height)
	defer mempool.PutBool(mask)
	foreground := false
	for i, p := range binary.Pix {
		if p > 0 {
			mask[i] = true
			foreground = true
		}
	}
	if !foreground {
		return clipped
	}

	comps := connectedComponents(mask, binary.Width, binary.Height)
	if len(comps) == 0 {
		return clipped
	}

	minX, minY := binary.Width, binary.Height
	maxX, maxY := 0, 0
	for _, st := range comps {
		if st.minX < minX {
			minX = st.minX
		}
		if st.minY < minY {
			minY = st.minY
		}
		if st.maxX > maxX {
			maxX = st.maxX
		}
		if st.maxY > maxY {
			maxY = st.maxY
		}
	}

	minX = utils.ClampInt(minX-optimizePadding, 0, binary.Width-1)
	minY = utils.ClampInt(minY-optimizePadding, 0, binary.Height-1)
	maxX = utils.ClampInt(maxX+optimizePadding, 0, binary.Width-1)
	maxY = utils.ClampInt(maxY+optimizePadding, 0, binary.Height-1)

	out := clipped
	out.X = clipped.X + minX
	out.Y = clipped.Y + minY
	out.Width = maxX - minX + 1
	out.Height = maxY - minY + 1
	out.Optimized = true
	return out.ClipTo(g.Width, g.Height)
}
