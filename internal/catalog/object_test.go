package catalog

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// objectStore is a minimal in-memory object store speaking PUT/GET/HEAD.
type objectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (s *objectStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		s.objects[r.URL.Path] = body
		w.WriteHeader(http.StatusOK)
	case http.MethodGet, http.MethodHead:
		body, ok := s.objects[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodGet {
			w.Write(body)
		}
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestObjectBackend_RoundTrip(t *testing.T) {
	store := &objectStore{objects: make(map[string][]byte)}
	srv := httptest.NewServer(store)
	defer srv.Close()

	ctx := context.Background()
	o, err := NewObjectBackend(srv.URL+"/bucket/", srv.Client())
	require.NoError(t, err)

	ok, err := o.Exists(ctx, "predictions")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = o.Load(ctx, "predictions")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, o.Save(ctx, "predictions", []string{"a", "b"}))
	assert.Contains(t, store.objects, "/bucket/predictions.json")

	ok, err = o.Exists(ctx, "predictions")
	require.NoError(t, err)
	assert.True(t, ok)

	v, err := o.Load(ctx, "predictions")
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, v)
}

func TestObjectBackend_UploadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	o, err := NewObjectBackend(srv.URL, nil)
	require.NoError(t, err)
	err = o.Save(context.Background(), "x", 1)
	assert.ErrorContains(t, err, "403")
}

func TestNewObjectBackend_RejectsScheme(t *testing.T) {
	_, err := NewObjectBackend("ftp://example.com", nil)
	assert.Error(t, err)
}
