// Package fstop holds the canonical record types shared by the sync engine
// and the storage layer.
package fstop

import (
	"context"
	"errors"
)

var (
	ErrConflict     = errors.New("resource already exists")
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidQuery = errors.New("invalid search query")
)

// Placeholder values for fields the provider did not supply. Centralized so
// storage, enrichment, and the read API agree on what "missing" looks like.
const (
	DefaultUnknown = "Unknown"
	DefaultNA      = "N/A"
	DefaultColor   = "#000000"
)

// OrderBy is the whitelisted sort for photo listings.
type OrderBy string

const (
	OrderLatest  OrderBy = "latest"
	OrderOldest  OrderBy = "oldest"
	OrderPopular OrderBy = "popular"
)

// Valid reports whether the order is one of the whitelisted values.
func (o OrderBy) Valid() bool {
	switch o {
	case OrderLatest, OrderOldest, OrderPopular:
		return true
	}
	return false
}

type (
	// Photo is the canonical record, one row per external photo id.
	//
	// Timestamps stay ISO-8601 strings: the provider is the source of truth
	// for them and they are only ever compared, never computed with.
	// Pointer fields map to nullable columns; a nil value on upsert keeps
	// whatever is already stored.
	Photo struct {
		ID             string `db:"id" json:"id"`
		Title          string `db:"title" json:"title"`
		Description    string `db:"description" json:"description"`
		AltDescription string `db:"alt_description" json:"alt_description"`

		CreatedAt string `db:"created_at" json:"created_at"`
		UpdatedAt string `db:"updated_at" json:"updated_at"`

		Width    int    `db:"width" json:"width"`
		Height   int    `db:"height" json:"height"`
		Color    string `db:"color" json:"color"`
		BlurHash string `db:"blur_hash" json:"blur_hash"`

		Views     int `db:"views" json:"views"`
		Downloads int `db:"downloads" json:"downloads"`
		Likes     int `db:"likes" json:"likes"`

		URLRaw     string `db:"url_raw" json:"url_raw"`
		URLFull    string `db:"url_full" json:"url_full"`
		URLRegular string `db:"url_regular" json:"url_regular"`
		URLSmall   string `db:"url_small" json:"url_small"`
		URLThumb   string `db:"url_thumb" json:"url_thumb"`

		PhotographerName     string `db:"photographer_name" json:"photographer_name"`
		PhotographerUsername string `db:"photographer_username" json:"photographer_username"`
		PhotographerURL      string `db:"photographer_url" json:"photographer_url"`
		PhotographerAvatar   string `db:"photographer_avatar" json:"photographer_avatar"`

		LocationName      *string  `db:"location_name" json:"location_name"`
		LocationCity      *string  `db:"location_city" json:"location_city"`
		LocationCountry   *string  `db:"location_country" json:"location_country"`
		LocationLatitude  *float64 `db:"location_latitude" json:"location_latitude"`
		LocationLongitude *float64 `db:"location_longitude" json:"location_longitude"`

		ExifMake         *string `db:"exif_make" json:"exif_make"`
		ExifModel        *string `db:"exif_model" json:"exif_model"`
		ExifExposureTime *string `db:"exif_exposure_time" json:"exif_exposure_time"`
		ExifAperture     *string `db:"exif_aperture" json:"exif_aperture"`
		ExifFocalLength  *string `db:"exif_focal_length" json:"exif_focal_length"`
		ExifISO          *string `db:"exif_iso" json:"exif_iso"`

		Tags Tags `db:"tags" json:"tags"`

		SourceURL        string `db:"source_url" json:"source_url"`
		DownloadLocation string `db:"download_location" json:"download_location"`

		LastSyncedAt string `db:"last_synced_at" json:"last_synced_at"`
	}

	// Collection is a named grouping of photos at the provider.
	Collection struct {
		ID            string  `db:"id" json:"id"`
		Title         string  `db:"title" json:"title"`
		Slug          string  `db:"slug" json:"slug"`
		Description   *string `db:"description" json:"description"`
		TotalPhotos   int     `db:"total_photos" json:"total_photos"`
		PublishedAt   *string `db:"published_at" json:"published_at"`
		UpdatedAt     *string `db:"updated_at" json:"updated_at"`
		CoverPhotoID  *string `db:"cover_photo_id" json:"cover_photo_id"`
		CoverPhotoURL *string `db:"cover_photo_url" json:"cover_photo_url"`
		LastSyncedAt  string  `db:"last_synced_at" json:"last_synced_at"`
	}

	// Stats are the global aggregates over the photo table.
	Stats struct {
		TotalPhotos      int `db:"total_photos" json:"total_photos"`
		TotalCollections int `db:"total_collections" json:"total_collections"`
		TotalViews       int `db:"total_views" json:"total_views"`
		TotalDownloads   int `db:"total_downloads" json:"total_downloads"`
	}

	// CollectionStats are the aggregates for a single collection.
	CollectionStats struct {
		TotalPhotos    int `db:"total_photos" json:"total_photos"`
		TotalViews     int `db:"total_views" json:"total_views"`
		TotalDownloads int `db:"total_downloads" json:"total_downloads"`
		TotalLikes     int `db:"total_likes" json:"total_likes"`
	}

	// SearchParams bundle the arguments for a photo search.
	SearchParams struct {
		Query        string
		Page         int
		PerPage      int
		OrderBy      OrderBy
		CollectionID string
	}

	// ReadStore is the storage read surface consumed by the UI layer.
	ReadStore interface {
		ListLatest(ctx context.Context, page, perPage int, orderBy OrderBy) ([]Photo, bool, error)
		ListCollectionPhotos(ctx context.Context, collectionID string, page, perPage int, orderBy OrderBy) ([]Photo, bool, error)
		Search(ctx context.Context, params SearchParams) ([]Photo, bool, error)
		Photo(ctx context.Context, id string) (Photo, error)
		Collections(ctx context.Context) ([]Collection, error)
		Stats(ctx context.Context) (Stats, error)
		CollectionStats(ctx context.Context) (map[string]CollectionStats, error)
	}
)

// HasExif reports whether the photo carries any real EXIF data, as opposed
// to being entirely absent or placeholder values.
func (p Photo) HasExif() bool {
	for _, f := range []*string{p.ExifMake, p.ExifModel, p.ExifExposureTime, p.ExifAperture, p.ExifFocalLength, p.ExifISO} {
		if f == nil {
			continue
		}
		if *f != "" && *f != DefaultUnknown && *f != DefaultNA {
			return true
		}
	}
	return false
}
