package pdf

import (
	"fmt"
	"strings"

	"github.com/dslipak/pdf"
)

// PageText is the embedded text layer of one page, with a usability score.
// Pages scoring at or above the probe threshold can skip OCR entirely.
type PageText struct {
	PageNumber int     `json:"page_number"`
	Text       string  `json:"text"`
	WordCount  int     `json:"word_count"`
	Searchable bool    `json:"searchable"`
	Score      float64 `json:"score"` // 0-1 usability of the embedded text
}

// TextLayerProbe inspects PDF pages for an embedded (vector) text layer.
type TextLayerProbe struct {
	threshold float64
}

const defaultTextLayerThreshold = 0.7

func NewTextLayerProbe(threshold float64) *TextLayerProbe {
	if threshold <= 0 || threshold > 1 {
		threshold = defaultTextLayerThreshold
	}
	return &TextLayerProbe{threshold: threshold}
}

// Probe reads the embedded text of the selected pages. Pages that fail to
// parse are skipped; a scanned-only PDF yields entries with empty text and
// zero scores rather than an error.
func (p *TextLayerProbe) Probe(filename string, pageRange string) (map[int]PageText, error) {
	pageNumbers, err := parsePageRange(pageRange)
	if err != nil {
		return nil, fmt.Errorf("invalid page range %q: %w", pageRange, err)
	}

	reader, err := pdf.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	total := reader.NumPage()
	if len(pageNumbers) == 0 {
		for i := 1; i <= total; i++ {
			pageNumbers = append(pageNumbers, i)
		}
	}

	results := make(map[int]PageText, len(pageNumbers))
	for _, num := range pageNumbers {
		if num < 1 || num > total {
			continue
		}
		page := reader.Page(num)
		if page.V.IsNull() {
			continue
		}
		text := readPageText(page)
		results[num] = scorePageText(num, text)
	}
	return results, nil
}

// Usable reports whether a page's embedded text is good enough to use
// instead of OCR.
func (p *TextLayerProbe) Usable(pt PageText) bool {
	return pt.Score >= p.threshold
}

func readPageText(page pdf.Page) string {
	var b strings.Builder
	rows, err := page.GetTextByRow()
	if err == nil && len(rows) > 0 {
		for _, row := range rows {
			for _, t := range row.Content {
				b.WriteString(t.S)
				b.WriteString(" ")
			}
			b.WriteString("\n")
		}
		return b.String()
	}
	fonts := make(map[string]*pdf.Font)
	plain, _ := page.GetPlainText(fonts)
	return plain
}

// scorePageText rates embedded text: presence, volume and a sane
// alphanumeric ratio. Sparse or garbled layers (bad OCR burned into the
// PDF) score low and fall back to our own OCR.
func scorePageText(pageNum int, text string) PageText {
	trimmed := strings.TrimSpace(text)
	words := strings.Fields(trimmed)

	score := 0.0
	if trimmed != "" {
		score += 0.4
		if len(words) > 5 {
			score += 0.3
		}
		if alphanumericRatio(trimmed) >= 0.5 {
			score += 0.3
		}
	}

	return PageText{
		PageNumber: pageNum,
		Text:       trimmed,
		WordCount:  len(words),
		Searchable: len(words) > 0,
		Score:      score,
	}
}

func alphanumericRatio(text string) float64 {
	if text == "" {
		return 0
	}
	count := 0
	for _, r := range text {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			count++
		}
	}
	return float64(count) / float64(len(text))
}
