package template

import (
	"sort"
	"strings"
)

// Keyword evidence per document type. Phrases are strong signals, single
// words weak ones; scores are hit counts weighted accordingly.
var typeKeywords = map[string]struct {
	phrases []string
	words   []string
}{
	"rent_roll": {
		phrases: []string{"rent roll"},
		words:   []string{"unit", "tenant", "rent", "occupancy", "sqft"},
	},
	"offering_memo": {
		phrases: []string{"offering memorandum", "cap rate", "asking price"},
		words:   []string{"noi", "investment", "proforma"},
	},
	"lease_agreement": {
		phrases: []string{"lease agreement", "security deposit", "lease term"},
		words:   []string{"landlord", "lessee", "lessor", "premises"},
	},
	"comparable_sales": {
		phrases: []string{"comparable sales", "sale price", "price per"},
		words:   []string{"comps", "sold", "comparable"},
	},
}

const (
	phraseWeight = 3.0
	wordWeight   = 1.0
)

// SuggestType guesses the document type from extracted page text. Returns
// the best-scoring registered type and its raw keyword score, or an empty
// type when nothing matches.
func SuggestType(text string) (string, float64) {
	if strings.TrimSpace(text) == "" {
		return "", 0
	}
	lower := strings.ToLower(text)
	tokens := map[string]bool{}
	for _, tok := range strings.FieldsFunc(lower, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	}) {
		tokens[tok] = true
	}

	known := Known()
	sort.Strings(known)

	bestType := ""
	bestScore := 0.0
	for _, documentType := range known {
		kw, ok := typeKeywords[documentType]
		if !ok {
			continue
		}
		score := 0.0
		for _, phrase := range kw.phrases {
			if strings.Contains(lower, phrase) {
				score += phraseWeight
			}
		}
		for _, word := range kw.words {
			if tokens[word] {
				score += wordWeight
			}
		}
		if score > bestScore {
			bestType = documentType
			bestScore = score
		}
	}
	if bestScore == 0 {
		return "", 0
	}
	return bestType, bestScore
}
