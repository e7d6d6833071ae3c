package repository

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/Coubiac/signstamp/internal/logger"
	"github.com/Coubiac/signstamp/internal/paths"
	"github.com/Coubiac/signstamp/internal/storeerr"
)

// JSONCollection persists a whole collection of T as a single JSON array.
// A missing file is an empty collection; Save always replaces the whole file.
type JSONCollection[T any] struct {
	collection paths.Collection
	locator    Locator

	mu         sync.Mutex
	lastDigest digest // document this process last read or wrote
}

type digest [sha256.Size]byte

const collectionFileMode fs.FileMode = 0o644

// absentDigest marks a collection whose file does not exist.
var absentDigest digest

// NewJSONCollection binds a collection kind to its file as resolved by locator.
func NewJSONCollection[T any](collection paths.Collection, locator Locator) (*JSONCollection[T], error) {
	if collection == "" {
		return nil, errors.New("collection name is required")
	}
	if locator == nil {
		return nil, errors.New("locator is required")
	}
	return &JSONCollection[T]{collection: collection, locator: locator}, nil
}

// Name returns the collection name.
func (r *JSONCollection[T]) Name() string {
	return string(r.collection)
}

// Path resolves the backing file.
func (r *JSONCollection[T]) Path() (string, error) {
	return r.locator.CollectionFile(r.collection)
}

// Load reads and decodes the collection. The result is never nil.
func (r *JSONCollection[T]) Load() ([]T, error) {
	path, err := r.Path()
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", r.collection, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.WithComponent("repository").Debugf("%s file not found at %s, starting empty", r.collection, path)
			r.remember(absentDigest)
			return []T{}, nil
		}
		return nil, storeerr.IO("read "+r.Name(), path, err)
	}

	items, err := DecodeCollection[T](data)
	if err != nil {
		return nil, storeerr.Decode("decode "+r.Name(), path, err)
	}
	r.remember(sha256.Sum256(data))
	return items, nil
}

// Save replaces the persisted collection with items, creating the data directory if needed.
func (r *JSONCollection[T]) Save(items []T) error {
	path, err := r.Path()
	if err != nil {
		return fmt.Errorf("save %s: %w", r.collection, err)
	}

	if items == nil {
		items = []T{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return storeerr.Encode("encode "+r.Name(), err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return storeerr.IO("create data directory", dir, err)
	}
	if err := writeFileAtomic(path, payload); err != nil {
		return storeerr.IO("write "+r.Name(), path, err)
	}

	r.remember(sha256.Sum256(payload))
	logger.WithComponent("repository").Debugf("%s saved (%d items)", r.collection, len(items))
	return nil
}

// SyncFromDisk reports whether the file differs from the document this process last read
// or wrote, and records the current content as seen.
func (r *JSONCollection[T]) SyncFromDisk() (bool, error) {
	path, err := r.Path()
	if err != nil {
		return false, err
	}

	current := absentDigest
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		current = sha256.Sum256(data)
	case !errors.Is(err, fs.ErrNotExist):
		return false, storeerr.IO("read "+r.Name(), path, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	changed := current != r.lastDigest
	r.lastDigest = current
	return changed, nil
}

func (r *JSONCollection[T]) remember(d digest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastDigest = d
}

// DecodeCollection parses a whole collection document. The top level must be a JSON
// array and no element may be null.
func DecodeCollection[T any](data []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errors.New("expected a JSON array")
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, err
	}

	items := make([]T, len(raw))
	for i, elem := range raw {
		if bytes.Equal(elem, []byte("null")) {
			return nil, fmt.Errorf("element %d is null", i)
		}
		if err := json.Unmarshal(elem, &items[i]); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
	}
	return items, nil
}

// writeFileAtomic writes payload next to path and renames it into place.
func writeFileAtomic(path string, payload []byte) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
	}()

	// CreateTemp uses 0600; collection files keep the mode os.WriteFile would give them
	if err := tmpFile.Chmod(collectionFileMode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if _, err := tmpFile.Write(payload); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), path); err != nil {
		return fmt.Errorf("replace data file: %w", err)
	}

	return nil
}
