package region

// FilterOverlapping performs greedy non-maximum suppression: candidates are
// visited in confidence order and kept only when their IoU with every
// already-kept candidate stays at or below the threshold. This is the local
// pre-filter each detector applies to its own output; the cross-detector
// merge happens in the manager.
func FilterOverlapping(regions []Region, iouThreshold float64) []Region {
	if len(regions) <= 1 {
		return regions
	}
	sorted := make([]Region, len(regions))
	copy(sorted, regions)
	SortByConfidence(sorted)

	kept := make([]Region, 0, len(sorted))
	for _, candidate := range sorted {
		overlaps := false
		for _, k := range kept {
			if candidate.IoU(k) > iouThreshold {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, candidate)
		}
	}
	return kept
}

// FilterByConfidence keeps regions whose confidence meets the threshold.
func FilterByConfidence(regions []Region, threshold float64) []Region {
	out := make([]Region, 0, len(regions))
	for _, r := range regions {
		if r.Confidence >= threshold {
			out = append(out, r)
		}
	}
	return out
}
