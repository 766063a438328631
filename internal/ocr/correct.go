package ocr

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Deterministic corrections applied to every OCR string before validation.
// Character-confusion fixes only trigger adjacent to digits so prose is left
// alone. The full pass runs to a fixpoint, making it idempotent:
// ApplyCorrections(ApplyCorrections(s)) == ApplyCorrections(s).

type substitution struct {
	pattern     *regexp.Regexp
	replacement string
}

var confusionSubs = []substitution{
	// Letter O confused with zero next to digits.
	{regexp.MustCompile(`([0-9])O`), "${1}0"},
	{regexp.MustCompile(`O([0-9])`), "0${1}"},
	// l, I and pipe confused with one next to digits.
	{regexp.MustCompile(`([0-9])[lI|]`), "${1}1"},
	{regexp.MustCompile(`[lI|]([0-9])`), "1${1}"},
	// S confused with five next to digits.
	{regexp.MustCompile(`([0-9])S`), "${1}5"},
	{regexp.MustCompile(`S([0-9])`), "5${1}"},
	// Five confused with S at a word start before letters.
	{regexp.MustCompile(`\b5([A-Za-z]{2})`), "S${1}"},
	// B confused with eight next to digits.
	{regexp.MustCompile(`([0-9])B`), "${1}8"},
	{regexp.MustCompile(`B([0-9])`), "8${1}"},
}

var addressSubs = []substitution{
	{regexp.MustCompile(`\bSt\.`), "Street"},
	{regexp.MustCompile(`\bAve\.`), "Avenue"},
	{regexp.MustCompile(`\bBlvd\.`), "Boulevard"},
	{regexp.MustCompile(`\bDr\.`), "Drive"},
	{regexp.MustCompile(`\bRd\.`), "Road"},
	{regexp.MustCompile(`\bLn\.`), "Lane"},
	{regexp.MustCompile(`\bApt\.`), "Apartment"},
	{regexp.MustCompile(`\bSte\.`), "Suite"},
}

var (
	spaceRun   = regexp.MustCompile(`[ \t]+`)
	newlineRun = regexp.MustCompile(`\n{2,}`)
)

// maxCorrectionRounds bounds the fixpoint loop; real inputs converge in one
// or two rounds.
const maxCorrectionRounds = 8

// ApplyCorrections runs the deterministic correction pass over an OCR
// string: unicode normalization, digit-adjacent character confusion fixes,
// section-symbol to dollar normalization, address abbreviation expansion and
// whitespace collapsing.
func ApplyCorrections(s string) string {
	if s == "" {
		return s
	}
	out := norm.NFKC.String(s)
	out = strings.ReplaceAll(out, "§", "$")

	for range maxCorrectionRounds {
		next := out
		for _, sub := range confusionSubs {
			next = sub.pattern.ReplaceAllString(next, sub.replacement)
		}
		if next == out {
			break
		}
		out = next
	}

	for _, sub := range addressSubs {
		out = sub.pattern.ReplaceAllString(out, sub.replacement)
	}

	out = spaceRun.ReplaceAllString(out, " ")
	out = newlineRun.ReplaceAllString(out, "\n")
	return strings.TrimSpace(out)
}
