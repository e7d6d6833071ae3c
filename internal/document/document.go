// Package document reads and writes raw PDF bytes on the local filesystem.
package document

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/Coubiac/signstamp/internal/logger"
	"github.com/Coubiac/signstamp/internal/paths"
	"github.com/Coubiac/signstamp/internal/repository"
	"github.com/Coubiac/signstamp/internal/storeerr"
)

// DefaultDisplayName names a loaded document whose path has no file name.
const DefaultDisplayName = "document.pdf"

const filePerm = 0o644

// LoadedPdf is a document read from disk.
type LoadedPdf struct {
	Bytes repository.Blob `json:"bytes"`
	Name  string          `json:"name"`
}

// DownloadsLocator resolves the user's downloads directory.
// paths.Resolver implements this interface.
type DownloadsLocator interface {
	DownloadsDir() (string, error)
}

// Service performs direct document I/O.
type Service struct {
	downloads DownloadsLocator
}

// NewService creates a document service.
func NewService(downloads DownloadsLocator) (*Service, error) {
	if downloads == nil {
		return nil, errors.New("downloads locator is required")
	}
	return &Service{downloads: downloads}, nil
}

// SaveAt writes data to path, replacing any existing file, and returns the absolute path.
// Parent directories are not created.
func (s *Service) SaveAt(path string, data []byte) (string, error) {
	target, err := filepath.Abs(path)
	if err != nil {
		return "", storeerr.IO("resolve document path", path, err)
	}
	if err := os.WriteFile(target, data, filePerm); err != nil {
		return "", storeerr.IO("write document", target, err)
	}
	logger.WithComponent("document").Debugf("saved %d bytes to %s", len(data), target)
	return target, nil
}

// LoadFrom reads the document at path. Its display name is the final path component.
func (s *Service) LoadFrom(path string) (LoadedPdf, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LoadedPdf{}, storeerr.IO("read document", path, err)
	}
	return LoadedPdf{Bytes: data, Name: displayName(path)}, nil
}

// ExportToDownloads writes data into the downloads directory under a sanitized,
// non-colliding name derived from desiredName, and returns the final path.
func (s *Service) ExportToDownloads(data []byte, desiredName string) (string, error) {
	dir, err := s.downloads.DownloadsDir()
	if err != nil {
		return "", err
	}

	target := paths.NextAvailablePath(dir, paths.SanitizeFileName(desiredName))
	// TODO: create with O_EXCL and retry the next name so a file appearing after the existence check is never truncated.
	if err := os.WriteFile(target, data, filePerm); err != nil {
		return "", storeerr.IO("write export", target, err)
	}

	logger.WithComponent("document").Infof("exported %d bytes to %s", len(data), target)
	return target, nil
}

func displayName(path string) string {
	base := filepath.Base(path)
	switch base {
	case "", ".", "..", string(filepath.Separator):
		return DefaultDisplayName
	}
	return base
}
