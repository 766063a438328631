// Package pdf handles PDF ingestion: page image extraction for scanned
// documents and text-layer probing for searchable ones.
package pdf

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Page is one extracted document page. Scanned PDFs carry one embedded
// image per page; pages without an image come back with a nil Image so the
// caller sees the full page sequence.
type Page struct {
	Number int
	Images []image.Image
}

// PageCount returns the number of pages in a PDF file.
func PageCount(filename string) (int, error) {
	n, err := api.PageCountFile(filename)
	if err != nil {
		return 0, fmt.Errorf("count pages in %q: %w", filepath.Base(filename), err)
	}
	return n, nil
}

// ExtractPageImages extracts embedded page images from a PDF, ordered by
// page number. An empty pageRange means all pages. A valid PDF with no
// embedded images yields an empty slice, not an error.
func ExtractPageImages(filename string, pageRange string) ([]Page, error) {
	pageNumbers, err := parsePageRange(pageRange)
	if err != nil {
		return nil, fmt.Errorf("invalid page range %q: %w", pageRange, err)
	}

	tempDir, err := os.MkdirTemp("", "page-images-*")
	if err != nil {
		return nil, fmt.Errorf("create temp directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(tempDir) }()

	var selected []string
	for _, n := range pageNumbers {
		selected = append(selected, strconv.Itoa(n))
	}
	if err := api.ExtractImagesFile(filename, tempDir, selected, nil); err != nil {
		return nil, fmt.Errorf("extract images from %q: %w", filepath.Base(filename), err)
	}

	byPage, err := collectImages(tempDir)
	if err != nil {
		return nil, fmt.Errorf("collect extracted images: %w", err)
	}

	pages := make([]Page, 0, len(byPage))
	for num, imgs := range byPage {
		pages = append(pages, Page{Number: num, Images: imgs})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Number < pages[j].Number })
	return pages, nil
}

// collectImages walks the extraction directory and groups decoded images by
// page number. pdfcpu names files like page_3_Im0.png.
func collectImages(dir string) (map[int][]image.Image, error) {
	byPage := make(map[int][]image.Image)
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		num, err := pageNumberFromFilename(info.Name())
		if err != nil {
			return nil
		}
		img, err := decodeImageFile(path)
		if err != nil {
			// Unsupported codec (CCITT, JBIG2); skip the image but keep
			// the rest of the page set.
			return nil
		}
		byPage[num] = append(byPage[num], img)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return byPage, nil
}

func decodeImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	img, _, err := image.Decode(f)
	return img, err
}

func pageNumberFromFilename(name string) (int, error) {
	if !strings.HasPrefix(name, "page_") {
		return 0, fmt.Errorf("not a page image: %s", name)
	}
	parts := strings.Split(name, "_")
	if len(parts) < 2 {
		return 0, fmt.Errorf("unexpected image filename: %s", name)
	}
	return strconv.Atoi(parts[1])
}

// parsePageRange parses "1-5", "1,3,5" or a mix of both. Empty means all
// pages.
func parsePageRange(pageRange string) ([]int, error) {
	if pageRange == "" {
		return nil, nil
	}
	var pages []int
	for _, part := range strings.Split(pageRange, ",") {
		token, err := parseRangeToken(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		pages = append(pages, token...)
	}
	return pages, nil
}

func parseRangeToken(part string) ([]int, error) {
	if !strings.Contains(part, "-") {
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid page number: %s", part)
		}
		return []int{n}, nil
	}
	bounds := strings.Split(part, "-")
	if len(bounds) != 2 {
		return nil, fmt.Errorf("invalid range: %s", part)
	}
	start, err := strconv.Atoi(strings.TrimSpace(bounds[0]))
	if err != nil || start < 1 {
		return nil, fmt.Errorf("invalid start page: %s", bounds[0])
	}
	end, err := strconv.Atoi(strings.TrimSpace(bounds[1]))
	if err != nil {
		return nil, fmt.Errorf("invalid end page: %s", bounds[1])
	}
	if start > end {
		return nil, fmt.Errorf("start page %d after end page %d", start, end)
	}
	out := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		out = append(out, i)
	}
	return out, nil
}
