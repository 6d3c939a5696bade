package sqlite

import (
	"context"
	"errors"
	"fmt"

	"modernc.org/sqlite"

	"github.com/anjohnson/fstop/internal/fstop"
)

// sqlite result codes this package keys behavior on.
const (
	// Constraint violation on a unique column.
	codeConstraintUnique = 2067
	// Generic SQLITE_ERROR, raised for unparseable FTS MATCH expressions
	// among other things.
	codeGenericError = 1
)

// UpsertCollection inserts or updates a collection keyed by id with the same
// field-level merge as photos. A slug collision with a different collection
// surfaces as ErrConflict.
func (r Repo) UpsertCollection(ctx context.Context, c fstop.Collection) error {
	const q = `INSERT INTO collections (
		id, title, slug, description, total_photos, published_at, updated_at,
		cover_photo_id, cover_photo_url, last_synced_at
	) VALUES (
		:id, :title, :slug, :description, :total_photos, :published_at, :updated_at,
		:cover_photo_id, :cover_photo_url, :last_synced_at
	)
	ON CONFLICT(id) DO UPDATE SET
		title=COALESCE(excluded.title, collections.title),
		slug=COALESCE(excluded.slug, collections.slug),
		description=COALESCE(excluded.description, collections.description),
		total_photos=COALESCE(excluded.total_photos, collections.total_photos),
		published_at=COALESCE(excluded.published_at, collections.published_at),
		updated_at=COALESCE(excluded.updated_at, collections.updated_at),
		cover_photo_id=COALESCE(excluded.cover_photo_id, collections.cover_photo_id),
		cover_photo_url=COALESCE(excluded.cover_photo_url, collections.cover_photo_url),
		last_synced_at=COALESCE(excluded.last_synced_at, collections.last_synced_at);`

	_, err := r.ext.NamedExecContext(ctx, q, c)
	if sqliteErr := (&sqlite.Error{}); errors.As(err, &sqliteErr) && sqliteErr.Code() == codeConstraintUnique {
		return fmt.Errorf("collection slug already taken: %w", fstop.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("error upserting collection: %w", err)
	}

	return nil
}

// LinkPhotoToCollection records membership; re-linking an existing pair is a
// silent no-op.
func (r Repo) LinkPhotoToCollection(ctx context.Context, photoID, collectionID, addedAt string) error {
	const q = `INSERT OR IGNORE INTO photo_collections (photo_id, collection_id, added_at)
	VALUES (?, ?, ?);`

	if _, err := r.ext.ExecContext(ctx, q, photoID, collectionID, addedAt); err != nil {
		return fmt.Errorf("error linking photo to collection: %w", err)
	}

	return nil
}

// Collections retrieves all collections, most recently updated first.
func (r Repo) Collections(ctx context.Context) ([]fstop.Collection, error) {
	const q = `SELECT * FROM collections ORDER BY updated_at DESC;`

	var cols []fstop.Collection
	if err := r.ext.SelectContext(ctx, &cols, q); err != nil {
		return nil, fmt.Errorf("error selecting collections: %w", err)
	}

	return cols, nil
}

// CollectionStats aggregates views/downloads/likes per collection.
func (r Repo) CollectionStats(ctx context.Context) (map[string]fstop.CollectionStats, error) {
	const q = `SELECT
		c.id AS id,
		c.total_photos AS total_photos,
		COALESCE(SUM(p.views), 0) AS total_views,
		COALESCE(SUM(p.downloads), 0) AS total_downloads,
		COALESCE(SUM(p.likes), 0) AS total_likes
	FROM collections c
	LEFT JOIN photo_collections pc ON pc.collection_id = c.id
	LEFT JOIN photos p ON p.id = pc.photo_id
	GROUP BY c.id;`

	var rows []struct {
		ID string `db:"id"`
		fstop.CollectionStats
	}
	if err := r.ext.SelectContext(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("error aggregating collection stats: %w", err)
	}

	stats := make(map[string]fstop.CollectionStats, len(rows))
	for _, row := range rows {
		stats[row.ID] = row.CollectionStats
	}

	return stats, nil
}
