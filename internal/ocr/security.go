package ocr

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/CamiloRuizJ/pdf-transaction-extractor-sub000/internal/utils"
)

// DefaultMaxFileSize bounds accepted input files (50MB).
const DefaultMaxFileSize = 50 * 1024 * 1024

// PathPolicy validates filesystem inputs before any processing. Rejections
// use the fixed error-code vocabulary and generic messages; raw paths are
// never echoed back or logged, only their hash identifiers.
type PathPolicy struct {
	AllowedDirs []string // absolute directories inputs must live under; empty allows any
	MaxFileSize int64
}

// DefaultPathPolicy allows any directory with the default size cap.
func DefaultPathPolicy() PathPolicy {
	return PathPolicy{MaxFileSize: DefaultMaxFileSize}
}

// PathID returns the hash-based identifier used in logs in place of the
// filesystem path.
func PathID(path string) string {
	sum := sha256.Sum256([]byte(path))
	return hex.EncodeToString(sum[:8])
}

// Check validates a candidate input path. A nil return means the file may be
// read; otherwise the returned code and message are safe to surface.
func (p PathPolicy) Check(path string) (code, message string) {
	if strings.TrimSpace(path) == "" {
		return CodeInvalidInput, "no input file provided"
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return CodeInvalidInput, "input path could not be resolved"
	}
	abs = filepath.Clean(abs)

	if len(p.AllowedDirs) > 0 && !p.allowed(abs) {
		return CodeAccessDenied, "input file is outside the allowed directories"
	}

	if !utils.IsSupportedImage(abs) {
		return CodeInvalidImage, "unsupported input file type"
	}

	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		return CodeFileNotFound, "input file not found"
	}

	maxSize := p.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	if info.Size() > maxSize {
		return CodeFileTooLarge, fmt.Sprintf("input file exceeds the %dMB limit", maxSize/(1024*1024))
	}

	// Extension checks alone are spoofable; sniff the content type too.
	mt, err := mimetype.DetectFile(abs)
	if err != nil {
		return CodeInvalidImage, "input file could not be read"
	}
	if !strings.HasPrefix(mt.String(), "image/") {
		return CodeInvalidImage, "input file is not an image"
	}

	return "", ""
}

func (p PathPolicy) allowed(abs string) bool {
	for _, dir := range p.AllowedDirs {
		cleanDir := filepath.Clean(dir)
		if abs == cleanDir || strings.HasPrefix(abs, cleanDir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
