// Package enrich fills in detail-only fields (EXIF, precise location, tags)
// for photos whose listing payload lacks them.
package enrich

import (
	"context"
	"log/slog"

	"github.com/anjohnson/fstop/internal/provider"
)

// DetailFetcher fetches the full payload for one photo.
type DetailFetcher interface {
	PhotoDetails(ctx context.Context, id string) (provider.RawPhoto, error)
}

type Enricher struct {
	fetcher DetailFetcher
	force   bool
}

// New creates an enricher. With force set, every record is refreshed from
// the detail endpoint regardless of what it already carries (full-load
// mode); otherwise records with real EXIF short-circuit, which bounds API
// calls to genuinely stale or new data.
func New(fetcher DetailFetcher, force bool) *Enricher {
	return &Enricher{fetcher: fetcher, force: force}
}

// Enrich merges the detail payload into the record when the trigger rule
// fires. A failed detail fetch degrades to the input record; enrichment
// never drops a photo.
func (e *Enricher) Enrich(ctx context.Context, raw provider.RawPhoto) provider.RawPhoto {
	if raw.ID == "" {
		return raw
	}
	if !e.force && raw.HasExif() {
		return raw
	}

	detail, err := e.fetcher.PhotoDetails(ctx, raw.ID)
	if err != nil {
		slog.Warn("error enriching photo, keeping listing payload", "photo_id", raw.ID, "error", err)
		return raw
	}

	return provider.MergeListingDetail(raw, detail)
}
