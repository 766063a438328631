package region

// MergeOverlappingRegions removes near-duplicate candidates per field-type
// group. Within each group, regions are visited in confidence order; a
// candidate overlapping an already-accepted region beyond the IoU threshold
// is absorbed into it, taking the union bounding box and the mean of the two
// confidences and tagging the result as merged. Unlabeled regions form their
// own group, so a rent_amount region is never merged into a tenant_name
// region regardless of overlap.
func MergeOverlappingRegions(regions []Region, iouThreshold float64) []Region {
	if len(regions) <= 1 {
		return regions
	}

	groups := make(map[string][]Region)
	order := make([]string, 0)
	for _, r := range regions {
		if _, seen := groups[r.FieldType]; !seen {
			order = append(order, r.FieldType)
		}
		groups[r.FieldType] = append(groups[r.FieldType], r)
	}

	out := make([]Region, 0, len(regions))
	for _, fieldType := range order {
		out = append(out, mergeGroup(groups[fieldType], iouThreshold)...)
	}
	return out
}

func mergeGroup(group []Region, iouThreshold float64) []Region {
	if len(group) <= 1 {
		return group
	}
	SortByConfidence(group)

	accepted := make([]Region, 0, len(group))
	for _, candidate := range group {
		absorbed := false
		for i := range accepted {
			if accepted[i].IoU(candidate) > iouThreshold {
				accepted[i] = absorb(accepted[i], candidate)
				absorbed = true
				break
			}
		}
		if !absorbed {
			accepted = append(accepted, candidate)
		}
	}
	return accepted
}

func absorb(keeper, candidate Region) Region {
	merged := keeper.Union(candidate)
	merged.Confidence = (keeper.Confidence + candidate.Confidence) / 2
	merged.DetectionMethod = MethodMerged
	merged.FieldType = keeper.FieldType
	if keeper.QualityScore > candidate.QualityScore {
		merged.QualityScore = keeper.QualityScore
	} else {
		merged.QualityScore = candidate.QualityScore
	}
	return merged
}
