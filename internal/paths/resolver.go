// Package paths resolves the well-known storage locations of the application and derives
// safe file names for exported documents.
package paths

import (
	"errors"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/Coubiac/signstamp/internal/storeerr"
)

// Collection names a persisted collection. Its file lives in the application data directory.
type Collection string

const (
	Signatures Collection = "signatures"
	Snippets   Collection = "snippets"
)

// FileName returns the collection's file name inside the data directory.
func (c Collection) FileName() string {
	return string(c) + ".json"
}

// Options overrides platform resolution. Empty fields fall back to the platform defaults.
type Options struct {
	AppID        string
	DataDir      string
	DownloadsDir string
}

// Resolver computes per-user storage locations.
type Resolver struct {
	appID        string
	dataDir      string
	downloadsDir string

	// platform base directories, captured at construction
	dataHome  string
	downloads string
}

// NewResolver creates a resolver backed by the XDG / Known Folder / Library locations of the
// current platform.
func NewResolver(opts Options) *Resolver {
	return &Resolver{
		appID:        opts.AppID,
		dataDir:      opts.DataDir,
		downloadsDir: opts.DownloadsDir,
		dataHome:     xdg.DataHome,
		downloads:    xdg.UserDirs.Download,
	}
}

// AppDataDir returns the per-user data directory of the application. It does not create it.
func (r *Resolver) AppDataDir() (string, error) {
	if r.dataDir != "" {
		return filepath.Clean(r.dataDir), nil
	}
	if r.dataHome == "" {
		return "", storeerr.DirectoryUnavailable("resolve app data directory", errors.New("no per-user data directory for this session"))
	}
	if r.appID == "" {
		return "", storeerr.DirectoryUnavailable("resolve app data directory", errors.New("application identifier is not set"))
	}
	return filepath.Join(r.dataHome, r.appID), nil
}

// CollectionFile returns the JSON file backing the given collection.
func (r *Resolver) CollectionFile(c Collection) (string, error) {
	dir, err := r.AppDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.FileName()), nil
}

// DownloadsDir returns the user's downloads directory.
func (r *Resolver) DownloadsDir() (string, error) {
	if r.downloadsDir != "" {
		return filepath.Clean(r.downloadsDir), nil
	}
	if r.downloads == "" {
		return "", storeerr.DirectoryUnavailable("resolve downloads directory", errors.New("no downloads directory for this session"))
	}
	return r.downloads, nil
}
