package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7"), 0o644))
}

func TestNextAvailablePath_Free(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, filepath.Join(dir, "doc.pdf"), NextAvailablePath(dir, "doc.pdf"))
}

func TestNextAvailablePath_Collisions(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "doc.pdf"))

	assert.Equal(t, filepath.Join(dir, "doc (1).pdf"), NextAvailablePath(dir, "doc.pdf"))

	touch(t, filepath.Join(dir, "doc (1).pdf"))
	assert.Equal(t, filepath.Join(dir, "doc (2).pdf"), NextAvailablePath(dir, "doc.pdf"))
}

func TestNextAvailablePath_FillsGaps(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "doc.pdf"))
	touch(t, filepath.Join(dir, "doc (2).pdf"))

	assert.Equal(t, filepath.Join(dir, "doc (1).pdf"), NextAvailablePath(dir, "doc.pdf"))
}

func TestNextAvailablePath_ExhaustedFallsBackToExport(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "doc.pdf"))
	for i := 1; i <= MaxCollisionAttempts; i++ {
		touch(t, filepath.Join(dir, fmt.Sprintf("doc (%d).pdf", i)))
	}

	assert.Equal(t, filepath.Join(dir, "doc-export.pdf"), NextAvailablePath(dir, "doc.pdf"))
}

func TestNextAvailablePath_LastSlotBeforeFallback(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "doc.pdf"))
	for i := 1; i < MaxCollisionAttempts; i++ {
		touch(t, filepath.Join(dir, fmt.Sprintf("doc (%d).pdf", i)))
	}

	assert.Equal(t, filepath.Join(dir, "doc (999).pdf"), NextAvailablePath(dir, "doc.pdf"))
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		name, stem, ext string
	}{
		{"doc.pdf", "doc", "pdf"},
		{"archive.tar.pdf", "archive.tar", "pdf"},
		{".hidden", ".hidden", "pdf"},
		{"noext", "noext", "pdf"},
		{"", "document-signed", "pdf"},
	}
	for _, tt := range tests {
		stem, ext := splitName(tt.name)
		assert.Equal(t, tt.stem, stem, tt.name)
		assert.Equal(t, tt.ext, ext, tt.name)
	}
}
