package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Coubiac/signstamp/internal/paths"
	"github.com/Coubiac/signstamp/internal/repository"
	"github.com/Coubiac/signstamp/internal/storeerr"
	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// memoryStore implements repository.Store[T]
type memoryStore[T any] struct {
	items   []T
	loadErr error
	saveErr error
	saves   int
}

func (m *memoryStore[T]) Load() ([]T, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.items == nil {
		return []T{}, nil
	}
	return m.items, nil
}

func (m *memoryStore[T]) Save(items []T) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.items = items
	return nil
}

func collectionRouter[T any](store repository.Store[T], resource string) *gin.Engine {
	r := gin.New()
	cc := &CollectionController[T]{Store: store}
	cc.RegisterRoutes(r.Group("/api"), resource)
	return r
}

func serve(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCollectionController_LoadEmpty(t *testing.T) {
	r := collectionRouter[string](&memoryStore[string]{}, "snippets")

	w := serve(r, http.MethodGet, "/api/snippets", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestCollectionController_SaveThenLoadKeepsOrder(t *testing.T) {
	store := &memoryStore[string]{}
	r := collectionRouter[string](store, "snippets")

	w := serve(r, http.MethodPut, "/api/snippets", `["Lu et approuvé","Paris","Paris"]`)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 1, store.saves)

	w = serve(r, http.MethodGet, "/api/snippets", "")
	require.Equal(t, http.StatusOK, w.Code)

	var got []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	if diff := cmp.Diff([]string{"Lu et approuvé", "Paris", "Paris"}, got); diff != "" {
		t.Errorf("snippets mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectionController_SaveEmptyArray(t *testing.T) {
	store := &memoryStore[string]{items: []string{"old"}}
	r := collectionRouter[string](store, "snippets")

	w := serve(r, http.MethodPut, "/api/snippets", `[]`)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.NotNil(t, store.items)
	assert.Empty(t, store.items)
}

func TestCollectionController_SaveRejectsNonArray(t *testing.T) {
	cases := map[string]string{
		"null":   `null`,
		"object": `{"a":1}`,
		"broken": `["a",`,
		"empty":  ``,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			store := &memoryStore[string]{}
			r := collectionRouter[string](store, "snippets")

			req := httptest.NewRequest(http.MethodPut, "/api/snippets", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Zero(t, store.saves)
		})
	}
}

func TestCollectionController_SaveRejectsIncompleteElements(t *testing.T) {
	for _, body := range []string{`[{}]`, `[{"unrelated":1}]`, `[null]`, `[{"id":"a","name":"","mime":"","bytes":[],"naturalW":1}]`} {
		t.Run(body, func(t *testing.T) {
			store := &memoryStore[repository.StoredSignature]{}
			r := collectionRouter[repository.StoredSignature](store, "signatures")

			w := serve(r, http.MethodPut, "/api/signatures", body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Zero(t, store.saves)
		})
	}

	store := &memoryStore[string]{}
	w := serve(collectionRouter[string](store, "snippets"), http.MethodPut, "/api/snippets", `[null,"a"]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, store.saves)
}

func TestCollectionController_SaveAcceptsEmptyStrings(t *testing.T) {
	store := &memoryStore[repository.StoredSignature]{}
	r := collectionRouter[repository.StoredSignature](store, "signatures")

	w := serve(r, http.MethodPut, "/api/signatures", `[{"id":"","name":"","mime":"","bytes":[],"naturalW":0,"naturalH":0}]`)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Len(t, store.items, 1)
	assert.Empty(t, store.items[0].ID)
}

func TestCollectionController_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		kind   storeerr.Kind
	}{
		{"directory unavailable", storeerr.DirectoryUnavailable("resolve", errors.New("no home")), http.StatusServiceUnavailable, storeerr.KindDirectoryUnavailable},
		{"decode", storeerr.Decode("load", "/x/signatures.json", errors.New("bad")), http.StatusUnprocessableEntity, storeerr.KindDecode},
		{"io permission", storeerr.IO("read", "/x/signatures.json", os.ErrPermission), http.StatusForbidden, storeerr.KindIO},
		{"io other", storeerr.IO("read", "/x/signatures.json", errors.New("disk gone")), http.StatusInternalServerError, storeerr.KindIO},
		{"encode", storeerr.Encode("save", errors.New("nope")), http.StatusInternalServerError, storeerr.KindEncode},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := collectionRouter[repository.StoredSignature](&memoryStore[repository.StoredSignature]{loadErr: tc.err}, "signatures")

			w := serve(r, http.MethodGet, "/api/signatures", "")

			assert.Equal(t, tc.status, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tc.err.Error(), resp.Error)
			assert.Equal(t, string(tc.kind), resp.Kind)
		})
	}
}

func TestCollectionController_SaveFailure(t *testing.T) {
	store := &memoryStore[string]{saveErr: storeerr.IO("write collection", "/ro/snippets.json", os.ErrPermission)}
	r := collectionRouter[string](store, "snippets")

	w := serve(r, http.MethodPut, "/api/snippets", `["a"]`)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, string(storeerr.KindIO), decodeError(t, w).Kind)
}

func TestCollectionController_SignaturesRoundTripThroughDisk(t *testing.T) {
	dir := t.TempDir()
	repo, err := repository.NewSignatureRepository(paths.NewResolver(paths.Options{DataDir: dir}))
	require.NoError(t, err)
	r := collectionRouter[repository.StoredSignature](repo, "signatures")

	body := `[{"id":"s1","name":"Initials","mime":"image/png","bytes":[137,80,78,71],"naturalW":120,"naturalH":40}]`
	w := serve(r, http.MethodPut, "/api/signatures", body)
	require.Equal(t, http.StatusNoContent, w.Code)

	raw, err := os.ReadFile(filepath.Join(dir, "signatures.json"))
	require.NoError(t, err)
	assert.JSONEq(t, body, string(raw))

	w = serve(r, http.MethodGet, "/api/signatures", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, body, w.Body.String())
}
