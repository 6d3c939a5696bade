// Package sync drives the end-to-end sync run: provider streams in,
// canonical records out to storage, with per-item fault isolation.
package sync

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/anjohnson/fstop/internal/enrich"
	"github.com/anjohnson/fstop/internal/provider"
	"github.com/anjohnson/fstop/internal/sqlite"
	"github.com/anjohnson/fstop/internal/transform"
	"github.com/anjohnson/fstop/logger"
)

// Config holds the run-shape knobs.
type Config struct {
	// Username whose photos and collections are synced.
	Username string
	// Full reprocesses every item regardless of stored state and forces
	// enrichment; otherwise the run is incremental.
	Full bool
}

// Summary is what a run reports when it finishes.
type Summary struct {
	CollectionsSynced int
	PhotosSynced      int
	PhotosSkipped     int
	PhotosFailed      int
}

// Engine runs one sync per invocation. Single-writer by design: the engine
// assumes no other sync process is mutating the same database.
type Engine struct {
	provider provider.Provider
	enricher *enrich.Enricher
	repo     sqlite.Repo
	cfg      Config
}

func New(p provider.Provider, e *enrich.Enricher, repo sqlite.Repo, cfg Config) *Engine {
	return &Engine{
		provider: p,
		enricher: e,
		repo:     repo,
		cfg:      cfg,
	}
}

// Run executes the two phases (user photos, then collections) and returns
// the summary. Only storage-level failures that prevent any progress are
// returned as errors; per-item failures are logged and counted.
func (e *Engine) Run(ctx context.Context) (Summary, error) {
	ctx = logger.Ctx(ctx, slog.String("run_id", uuid.NewString()))
	slog.InfoContext(ctx, "starting sync", "username", e.cfg.Username, "full", e.cfg.Full)

	// Incremental runs snapshot photo_id -> updated_at up front; the
	// snapshot only lives for this run.
	known := map[string]string{}
	if !e.cfg.Full {
		var err error
		if known, err = e.repo.UpdatedAtByID(ctx); err != nil {
			return Summary{}, err
		}
	}

	var (
		sum  Summary
		seen = map[string]struct{}{}
	)

	// Phase one: the user's own photos, committed as a single batch.
	err := e.repo.InTx(ctx, func(tx sqlite.Repo) error {
		photos := e.provider.UserPhotos(ctx, e.cfg.Username)
		for {
			raw, err := photos.Next()
			if errors.Is(err, provider.ErrDone) {
				break
			}
			if err != nil {
				// Strict validation aborts the sequence, not the run;
				// commit whatever was processed.
				slog.ErrorContext(ctx, "user photo stream terminated", "error", err)
				break
			}
			e.processPhoto(ctx, tx, raw, known, seen, &sum)
		}
		return nil
	})
	if err != nil {
		return sum, err
	}
	slog.InfoContext(ctx, "committed user photos phase", "synced", sum.PhotosSynced, "skipped", sum.PhotosSkipped)

	// Phase two: collections, one commit per collection so a crash loses at
	// most the collection in flight.
	collections := e.provider.Collections(ctx)
	for {
		rawCol, err := collections.Next()
		if errors.Is(err, provider.ErrDone) {
			break
		}
		if err != nil {
			slog.ErrorContext(ctx, "collection stream terminated", "error", err)
			break
		}

		if err := e.syncCollection(ctx, rawCol, known, seen, &sum); err != nil {
			slog.ErrorContext(ctx, "error syncing collection", "collection_id", rawCol.ID, "error", err)
			continue
		}
		sum.CollectionsSynced++
	}

	slog.InfoContext(ctx, "sync finished",
		"collections_synced", sum.CollectionsSynced,
		"photos_synced", sum.PhotosSynced,
		"photos_skipped", sum.PhotosSkipped,
		"photos_failed", sum.PhotosFailed,
	)

	return sum, nil
}

// syncCollection upserts one collection's metadata, processes its photos,
// and links membership, all in one transaction.
func (e *Engine) syncCollection(ctx context.Context, rawCol provider.RawCollection, known map[string]string, seen map[string]struct{}, sum *Summary) error {
	ctx = logger.Ctx(ctx, slog.String("collection_id", rawCol.ID))

	return e.repo.InTx(ctx, func(tx sqlite.Repo) error {
		if err := tx.UpsertCollection(ctx, transform.Collection(rawCol)); err != nil {
			return err
		}

		photos := e.provider.PhotosInCollection(ctx, rawCol.ID)
		for {
			raw, err := photos.Next()
			if errors.Is(err, provider.ErrDone) {
				break
			}
			if err != nil {
				slog.ErrorContext(ctx, "collection photo stream terminated", "error", err)
				break
			}

			e.processPhoto(ctx, tx, raw, known, seen, sum)

			// Membership is recorded even for skipped photos; the link is
			// idempotent.
			addedAt := raw.CreatedAt
			if addedAt == "" {
				addedAt = time.Now().UTC().Format(time.RFC3339)
			}
			if err := tx.LinkPhotoToCollection(ctx, raw.ID, rawCol.ID, addedAt); err != nil {
				slog.ErrorContext(ctx, "error linking photo", "photo_id", raw.ID, "error", err)
			}
		}

		return nil
	})
}

// processPhoto applies the skip/enrich/transform/upsert decision for a
// single photo. Failures are logged with the offending id and never abort
// the run.
func (e *Engine) processPhoto(ctx context.Context, tx sqlite.Repo, raw provider.RawPhoto, known map[string]string, seen map[string]struct{}, sum *Summary) {
	if _, done := seen[raw.ID]; done {
		return
	}
	seen[raw.ID] = struct{}{}

	ctx = logger.Ctx(ctx, slog.String("photo_id", raw.ID))

	if !e.cfg.Full {
		// Lexical compare: both sides are the provider's ISO-8601 UTC
		// strings, where string order equals time order.
		if stored, ok := known[raw.ID]; ok && stored >= raw.UpdatedAt {
			sum.PhotosSkipped++
			return
		}
	}

	enriched := e.enricher.Enrich(ctx, raw)
	photo := transform.Photo(enriched)

	if err := tx.UpsertPhoto(ctx, photo); err != nil {
		slog.ErrorContext(ctx, "error persisting photo", "error", err)
		sum.PhotosFailed++
		return
	}
	sum.PhotosSynced++
}
