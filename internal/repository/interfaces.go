package repository

import "github.com/Coubiac/signstamp/internal/paths"

// Locator resolves the file that backs a collection.
// paths.Resolver implements this interface.
type Locator interface {
	CollectionFile(c paths.Collection) (string, error)
}

// Store loads and fully replaces a persisted collection.
// JSONCollection implements this interface.
type Store[T any] interface {
	Load() ([]T, error)
	Save(items []T) error
}

// SignatureStore persists signature assets.
type SignatureStore = Store[StoredSignature]

// SnippetStore persists text snippets in display order.
type SnippetStore = Store[string]
