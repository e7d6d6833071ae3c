package repository

import "github.com/Coubiac/signstamp/internal/paths"

// NewSignatureRepository returns the store backed by signatures.json.
func NewSignatureRepository(locator Locator) (*JSONCollection[StoredSignature], error) {
	return NewJSONCollection[StoredSignature](paths.Signatures, locator)
}

// NewSnippetRepository returns the store backed by snippets.json.
func NewSnippetRepository(locator Locator) (*JSONCollection[string], error) {
	return NewJSONCollection[string](paths.Snippets, locator)
}
