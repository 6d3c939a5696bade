// Package api serves the storage read surface as a JSON API for the UI
// layer. It never touches the sync engine.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	apierrs "github.com/anjohnson/fstop/internal/errors"
	"github.com/anjohnson/fstop/internal/fstop"
)

type (
	// Server is the HTTP portion serving the read API.
	Server struct {
		http.Server
	}

	// Config holds all of the different options for making a server.
	Config struct {
		Port int
	}
)

// NewServer builds the server with its routes attached.
func NewServer(cfg Config, store fstop.ReadStore) *Server {
	r := mux.NewRouter()

	r.Handle("/v1/photos", handlerE(listPhotos(store))).Methods(http.MethodGet)
	r.Handle("/v1/photos/{id}", handlerE(getPhoto(store))).Methods(http.MethodGet)
	r.Handle("/v1/search", handlerE(searchPhotos(store))).Methods(http.MethodGet)
	r.Handle("/v1/collections", handlerE(listCollections(store))).Methods(http.MethodGet)
	r.Handle("/v1/collections/stats", handlerE(collectionStats(store))).Methods(http.MethodGet)
	r.Handle("/v1/collections/{id}/photos", handlerE(listCollectionPhotos(store))).Methods(http.MethodGet)
	r.Handle("/v1/stats", handlerE(getStats(store))).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return &Server{
		Server: http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			Handler:      handlers.LoggingHandler(os.Stdout, r),
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("error encoding json response: %s", err)
	}

	return nil
}

// handlerE is a modified [http.HandlerFunc] that returns an error, which is
// coerced into a structured JSON error response.
type handlerE func(w http.ResponseWriter, r *http.Request) error

func (f handlerE) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	err := f(w, r)
	if err == nil {
		return
	}

	// Either it's already a structured error, or coerce it to one.
	sErr := &apierrs.Error{}
	if !errors.As(err, &sErr) {
		sErr = apierrs.E(http.StatusInternalServerError, err)
	}

	writeJSON(w, sErr.Status, sErr)
}

// photoPage is the response envelope for every paginated photo listing.
type photoPage struct {
	Photos  []fstop.Photo `json:"photos"`
	HasMore bool          `json:"has_more"`
}

func listPhotos(store fstop.ReadStore) handlerE {
	return func(w http.ResponseWriter, r *http.Request) error {
		page, perPage := parsePageParams(r)
		orderBy, err := parseOrder(r)
		if err != nil {
			return err
		}

		photos, hasMore, err := store.ListLatest(r.Context(), page, perPage, orderBy)
		if err != nil {
			return fmt.Errorf("error listing photos: %w", err)
		}

		return writeJSON(w, http.StatusOK, photoPage{Photos: photos, HasMore: hasMore})
	}
}

func listCollectionPhotos(store fstop.ReadStore) handlerE {
	return func(w http.ResponseWriter, r *http.Request) error {
		page, perPage := parsePageParams(r)
		orderBy, err := parseOrder(r)
		if err != nil {
			return err
		}

		collectionID := mux.Vars(r)["id"]
		photos, hasMore, err := store.ListCollectionPhotos(r.Context(), collectionID, page, perPage, orderBy)
		if err != nil {
			return fmt.Errorf("error listing collection photos: %w", err)
		}

		return writeJSON(w, http.StatusOK, photoPage{Photos: photos, HasMore: hasMore})
	}
}

func searchPhotos(store fstop.ReadStore) handlerE {
	return func(w http.ResponseWriter, r *http.Request) error {
		page, perPage := parsePageParams(r)
		orderBy, err := parseOrder(r)
		if err != nil {
			return err
		}

		photos, hasMore, err := store.Search(r.Context(), fstop.SearchParams{
			Query:        r.URL.Query().Get("q"),
			Page:         page,
			PerPage:      perPage,
			OrderBy:      orderBy,
			CollectionID: r.URL.Query().Get("collection_id"),
		})
		if errors.Is(err, fstop.ErrInvalidQuery) {
			return apierrs.E(http.StatusBadRequest, err, apierrs.Detail{
				Field: "q",
				Error: "malformed search expression",
			})
		}
		if err != nil {
			return fmt.Errorf("error searching photos: %w", err)
		}

		return writeJSON(w, http.StatusOK, photoPage{Photos: photos, HasMore: hasMore})
	}
}

func getPhoto(store fstop.ReadStore) handlerE {
	return func(w http.ResponseWriter, r *http.Request) error {
		photo, err := store.Photo(r.Context(), mux.Vars(r)["id"])
		if errors.Is(err, fstop.ErrNotFound) {
			return apierrs.E(http.StatusNotFound, err)
		}
		if err != nil {
			return fmt.Errorf("error fetching photo: %w", err)
		}

		return writeJSON(w, http.StatusOK, photo)
	}
}

func listCollections(store fstop.ReadStore) handlerE {
	return func(w http.ResponseWriter, r *http.Request) error {
		cols, err := store.Collections(r.Context())
		if err != nil {
			return fmt.Errorf("error listing collections: %w", err)
		}

		return writeJSON(w, http.StatusOK, map[string]any{"collections": cols})
	}
}

func getStats(store fstop.ReadStore) handlerE {
	return func(w http.ResponseWriter, r *http.Request) error {
		stats, err := store.Stats(r.Context())
		if err != nil {
			return fmt.Errorf("error fetching stats: %w", err)
		}

		return writeJSON(w, http.StatusOK, stats)
	}
}

func collectionStats(store fstop.ReadStore) handlerE {
	return func(w http.ResponseWriter, r *http.Request) error {
		stats, err := store.CollectionStats(r.Context())
		if err != nil {
			return fmt.Errorf("error fetching collection stats: %w", err)
		}

		return writeJSON(w, http.StatusOK, stats)
	}
}
