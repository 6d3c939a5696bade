package unsplash

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anjohnson/fstop/internal/provider"
)

func listingPhoto(id string) map[string]any {
	return map[string]any{
		"id":         id,
		"title":      "Photo " + id,
		"created_at": "2024-01-01T00:00:00Z",
		"updated_at": "2024-01-02T00:00:00Z",
		"urls": map[string]any{
			"raw":     "https://img.example/" + id + "/raw",
			"regular": "https://img.example/" + id + "/regular",
		},
	}
}

func newTestClient(t *testing.T, handler http.Handler, cfg Config) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg.BaseURL = srv.URL
	if cfg.AccessKey == "" {
		cfg.AccessKey = "test-key"
	}
	if cfg.Username == "" {
		cfg.Username = "tester"
	}
	return New(cfg)
}

func TestUserPhotos_Paginates(t *testing.T) {
	var pages []string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/tester/photos", r.URL.Path)
		require.Equal(t, "Client-ID test-key", r.Header.Get("Authorization"))
		require.Equal(t, "true", r.URL.Query().Get("stats"))

		page := r.URL.Query().Get("page")
		pages = append(pages, page)

		// Two full pages, then a short one.
		var out []map[string]any
		switch page {
		case "1":
			out = []map[string]any{listingPhoto("a1"), listingPhoto("a2")}
		case "2":
			out = []map[string]any{listingPhoto("b1"), listingPhoto("b2")}
		default:
			out = []map[string]any{listingPhoto("c1")}
		}
		json.NewEncoder(w).Encode(out)
	}), Config{PerPage: 2})

	photos, err := provider.Collect(c.UserPhotos(context.Background(), ""))
	require.NoError(t, err)

	require.Len(t, photos, 5)
	assert.Equal(t, "a1", photos[0].ID)
	assert.Equal(t, "c1", photos[4].ID)
	assert.Equal(t, []string{"1", "2", "3"}, pages)
}

func TestUserPhotos_PageFailureEndsStream(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "1" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode([]map[string]any{listingPhoto("a1"), listingPhoto("a2")})
	}), Config{PerPage: 2})

	// The failed second page is absorbed: no error, just a shorter stream.
	photos, err := provider.Collect(c.UserPhotos(context.Background(), ""))
	require.NoError(t, err)
	require.Len(t, photos, 2)
}

func TestUserPhotos_LenientSkipsInvalid(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// One malformed record in the middle of ten.
		var out []map[string]any
		for i := 1; i <= 10; i++ {
			p := listingPhoto(fmt.Sprintf("p%d", i))
			if i == 5 {
				delete(p, "urls")
			}
			out = append(out, p)
		}
		json.NewEncoder(w).Encode(out)
	}), Config{PerPage: 30})

	photos, err := provider.Collect(c.UserPhotos(context.Background(), ""))
	require.NoError(t, err)
	require.Len(t, photos, 9)
	assert.Equal(t, "p4", photos[3].ID)
	assert.Equal(t, "p6", photos[4].ID)
}

func TestUserPhotos_FullyInvalidPageDoesNotEndStream(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var out []map[string]any
		switch r.URL.Query().Get("page") {
		case "1":
			// Every record on the first page is malformed.
			for _, id := range []string{"x1", "x2"} {
				p := listingPhoto(id)
				delete(p, "urls")
				out = append(out, p)
			}
		case "2":
			out = []map[string]any{listingPhoto("ok1"), listingPhoto("ok2")}
		}
		json.NewEncoder(w).Encode(out)
	}), Config{PerPage: 2})

	photos, err := provider.Collect(c.UserPhotos(context.Background(), ""))
	require.NoError(t, err)
	require.Len(t, photos, 2)
	assert.Equal(t, "ok1", photos[0].ID)
	assert.Equal(t, "ok2", photos[1].ID)
}

func TestUserPhotos_StrictFailsOnInvalid(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		broken := listingPhoto("bad")
		delete(broken, "urls")
		json.NewEncoder(w).Encode([]map[string]any{listingPhoto("ok"), broken})
	}), Config{PerPage: 30, Strict: true})

	_, err := provider.Collect(c.UserPhotos(context.Background(), ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
}

func TestUserPhotos_DetailMergeAndCache(t *testing.T) {
	detailCalls := 0
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/photos/a1" {
			detailCalls++
			json.NewEncoder(w).Encode(map[string]any{
				"id":         "a1",
				"created_at": "2024-01-01T00:00:00Z",
				"updated_at": "2024-01-02T00:00:00Z",
				"exif":       map[string]any{"make": "Fujifilm"},
			})
			return
		}
		json.NewEncoder(w).Encode([]map[string]any{listingPhoto("a1")})
	}), Config{PerPage: 30, Detail: true})

	photos, err := provider.Collect(c.UserPhotos(context.Background(), ""))
	require.NoError(t, err)
	require.Len(t, photos, 1)

	// Detail fields arrive, listing fields survive.
	require.NotNil(t, photos[0].Exif)
	assert.Equal(t, "Fujifilm", *photos[0].Exif.Make)
	assert.Equal(t, "https://img.example/a1/regular", photos[0].ResolveURL("regular"))

	// A second fetch for the same photo comes from the cache.
	_, err = c.PhotoDetails(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, 1, detailCalls)
}

func TestUserPhotos_DetailFailureKeepsListing(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/photos/a1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode([]map[string]any{listingPhoto("a1")})
	}), Config{PerPage: 30, Detail: true})

	photos, err := provider.Collect(c.UserPhotos(context.Background(), ""))
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Nil(t, photos[0].Exif)
	assert.Equal(t, "https://img.example/a1/regular", photos[0].ResolveURL("regular"))
}

func TestCollections(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/tester/collections", r.URL.Path)
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": "col-1", "title": "Landscapes", "total_photos": 12},
		})
	}), Config{PerPage: 30})

	cols, err := provider.Collect(c.Collections(context.Background()))
	require.NoError(t, err)
	require.Len(t, cols, 1)
	assert.Equal(t, "col-1", cols[0].ID)
	assert.Equal(t, "Landscapes", cols[0].Title)
	assert.Equal(t, 12, cols[0].TotalPhotos)
}

func TestPhotosInCollection_MaxItems(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/collections/col-1/photos", r.URL.Path)
		page := r.URL.Query().Get("page")
		out := []map[string]any{
			listingPhoto(fmt.Sprintf("p%s-1", page)),
			listingPhoto(fmt.Sprintf("p%s-2", page)),
		}
		json.NewEncoder(w).Encode(out)
	}), Config{PerPage: 2, MaxItems: 3})

	photos, err := provider.Collect(c.PhotosInCollection(context.Background(), "col-1"))
	require.NoError(t, err)
	require.Len(t, photos, 3)
	assert.Equal(t, "p1-1", photos[0].ID)
	assert.Equal(t, "p2-1", photos[2].ID)
}
