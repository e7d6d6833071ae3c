package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MaxCollisionAttempts bounds the " (N)" suffixes tried by NextAvailablePath.
const MaxCollisionAttempts = 999

const (
	defaultStem      = "document-signed"
	defaultExtension = "pdf"
)

// NextAvailablePath returns the first path in dir derived from fileName that does not exist:
// "<name>", then "<stem> (1).<ext>" up to "<stem> (999).<ext>", then "<stem>-export.<ext>".
// The last fallback is returned unchecked. Nothing is created; the caller should write
// immediately since another process may claim the name in between.
func NextAvailablePath(dir, fileName string) string {
	initial := filepath.Join(dir, fileName)
	if !exists(initial) {
		return initial
	}

	stem, ext := splitName(fileName)
	for idx := 1; idx <= MaxCollisionAttempts; idx++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s (%d).%s", stem, idx, ext))
		if !exists(candidate) {
			return candidate
		}
	}

	return filepath.Join(dir, fmt.Sprintf("%s-export.%s", stem, ext))
}

// splitName splits at the last dot. A leading dot does not start an extension.
func splitName(name string) (stem, ext string) {
	dot := strings.LastIndexByte(name, '.')
	if dot <= 0 {
		if name == "" {
			name = defaultStem
		}
		return name, defaultExtension
	}
	return name[:dot], name[dot+1:]
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
