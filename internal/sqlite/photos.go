package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"modernc.org/sqlite"

	"github.com/anjohnson/fstop/internal/fstop"
)

// UpsertPhoto inserts or updates a photo keyed by id. On conflict each
// column takes the incoming value only when it is not NULL, so a partial
// record never blanks previously-enriched fields. The update path must not
// be delete-then-insert: that would cascade through photo_collections and
// orphan collection membership.
func (r Repo) UpsertPhoto(ctx context.Context, p fstop.Photo) error {
	const q = `INSERT INTO photos (
		id, title, description, alt_description,
		created_at, updated_at,
		width, height, color, blur_hash,
		views, downloads, likes,
		url_raw, url_full, url_regular, url_small, url_thumb,
		photographer_name, photographer_username, photographer_url, photographer_avatar,
		location_name, location_city, location_country, location_latitude, location_longitude,
		exif_make, exif_model, exif_exposure_time, exif_aperture, exif_focal_length, exif_iso,
		tags, source_url, download_location, last_synced_at
	) VALUES (
		:id, :title, :description, :alt_description,
		:created_at, :updated_at,
		:width, :height, :color, :blur_hash,
		:views, :downloads, :likes,
		:url_raw, :url_full, :url_regular, :url_small, :url_thumb,
		:photographer_name, :photographer_username, :photographer_url, :photographer_avatar,
		:location_name, :location_city, :location_country, :location_latitude, :location_longitude,
		:exif_make, :exif_model, :exif_exposure_time, :exif_aperture, :exif_focal_length, :exif_iso,
		:tags, :source_url, :download_location, :last_synced_at
	)
	ON CONFLICT(id) DO UPDATE SET
		title=COALESCE(excluded.title, photos.title),
		description=COALESCE(excluded.description, photos.description),
		alt_description=COALESCE(excluded.alt_description, photos.alt_description),
		created_at=COALESCE(excluded.created_at, photos.created_at),
		updated_at=COALESCE(excluded.updated_at, photos.updated_at),
		width=COALESCE(excluded.width, photos.width),
		height=COALESCE(excluded.height, photos.height),
		color=COALESCE(excluded.color, photos.color),
		blur_hash=COALESCE(excluded.blur_hash, photos.blur_hash),
		views=COALESCE(excluded.views, photos.views),
		downloads=COALESCE(excluded.downloads, photos.downloads),
		likes=COALESCE(excluded.likes, photos.likes),
		url_raw=COALESCE(excluded.url_raw, photos.url_raw),
		url_full=COALESCE(excluded.url_full, photos.url_full),
		url_regular=COALESCE(excluded.url_regular, photos.url_regular),
		url_small=COALESCE(excluded.url_small, photos.url_small),
		url_thumb=COALESCE(excluded.url_thumb, photos.url_thumb),
		photographer_name=COALESCE(excluded.photographer_name, photos.photographer_name),
		photographer_username=COALESCE(excluded.photographer_username, photos.photographer_username),
		photographer_url=COALESCE(excluded.photographer_url, photos.photographer_url),
		photographer_avatar=COALESCE(excluded.photographer_avatar, photos.photographer_avatar),
		location_name=COALESCE(excluded.location_name, photos.location_name),
		location_city=COALESCE(excluded.location_city, photos.location_city),
		location_country=COALESCE(excluded.location_country, photos.location_country),
		location_latitude=COALESCE(excluded.location_latitude, photos.location_latitude),
		location_longitude=COALESCE(excluded.location_longitude, photos.location_longitude),
		exif_make=COALESCE(excluded.exif_make, photos.exif_make),
		exif_model=COALESCE(excluded.exif_model, photos.exif_model),
		exif_exposure_time=COALESCE(excluded.exif_exposure_time, photos.exif_exposure_time),
		exif_aperture=COALESCE(excluded.exif_aperture, photos.exif_aperture),
		exif_focal_length=COALESCE(excluded.exif_focal_length, photos.exif_focal_length),
		exif_iso=COALESCE(excluded.exif_iso, photos.exif_iso),
		tags=COALESCE(excluded.tags, photos.tags),
		source_url=COALESCE(excluded.source_url, photos.source_url),
		download_location=COALESCE(excluded.download_location, photos.download_location),
		last_synced_at=COALESCE(excluded.last_synced_at, photos.last_synced_at);`

	if _, err := r.ext.NamedExecContext(ctx, q, p); err != nil {
		return fmt.Errorf("error upserting photo: %w", err)
	}

	return r.refreshFTS(ctx, p.ID)
}

// refreshFTS replaces the search index row for one photo from the stored
// row, keeping index and table keyed to the same id.
func (r Repo) refreshFTS(ctx context.Context, photoID string) error {
	const del = `DELETE FROM photos_fts WHERE id = ?;`
	if _, err := r.ext.ExecContext(ctx, del, photoID); err != nil {
		return fmt.Errorf("error clearing search index row: %w", err)
	}

	const ins = `INSERT INTO photos_fts (
		id, title, description, alt_description, tags,
		location_name, location_city, location_country
	)
	SELECT id, title, description, alt_description, tags,
		location_name, location_city, location_country
	FROM photos WHERE id = ?;`
	if _, err := r.ext.ExecContext(ctx, ins, photoID); err != nil {
		return fmt.Errorf("error refreshing search index row: %w", err)
	}

	return nil
}

// Photo fetches a single photo by id.
func (r Repo) Photo(ctx context.Context, id string) (fstop.Photo, error) {
	const q = `SELECT * FROM photos WHERE id = ?;`

	var p fstop.Photo
	err := r.ext.GetContext(ctx, &p, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return fstop.Photo{}, fstop.ErrNotFound
	}
	if err != nil {
		return fstop.Photo{}, fmt.Errorf("error fetching photo: %w", err)
	}

	return p, nil
}

// ListLatest returns a page of photos with the whitelisted ordering and a
// has-more flag.
func (r Repo) ListLatest(ctx context.Context, page, perPage int, orderBy fstop.OrderBy) ([]fstop.Photo, bool, error) {
	order, err := orderClause(orderBy, "")
	if err != nil {
		return nil, false, err
	}
	limit, offset := pageWindow(page, perPage)

	q := fmt.Sprintf(`SELECT * FROM photos ORDER BY %s LIMIT ? OFFSET ?;`, order)
	var photos []fstop.Photo
	if err := r.ext.SelectContext(ctx, &photos, q, limit, offset); err != nil {
		return nil, false, fmt.Errorf("error listing photos: %w", err)
	}

	return trimPage(photos, limit)
}

// ListCollectionPhotos returns a page of one collection's photos.
func (r Repo) ListCollectionPhotos(ctx context.Context, collectionID string, page, perPage int, orderBy fstop.OrderBy) ([]fstop.Photo, bool, error) {
	order, err := orderClause(orderBy, "p.")
	if err != nil {
		return nil, false, err
	}
	limit, offset := pageWindow(page, perPage)

	q := fmt.Sprintf(`SELECT p.* FROM photos p
		JOIN photo_collections pc ON pc.photo_id = p.id
		WHERE pc.collection_id = ?
		ORDER BY %s LIMIT ? OFFSET ?;`, order)
	var photos []fstop.Photo
	if err := r.ext.SelectContext(ctx, &photos, q, collectionID, limit, offset); err != nil {
		return nil, false, fmt.Errorf("error listing collection photos: %w", err)
	}

	return trimPage(photos, limit)
}

// Search runs a full-text query, optionally filtered to a collection, with
// the same ordering whitelist as the listings.
func (r Repo) Search(ctx context.Context, params fstop.SearchParams) ([]fstop.Photo, bool, error) {
	order, err := orderClause(params.OrderBy, "p.")
	if err != nil {
		return nil, false, err
	}
	limit, offset := pageWindow(params.Page, params.PerPage)

	b := sq.Select("p.*").From("photos p")
	if params.Query != "" {
		b = b.Join("photos_fts ON photos_fts.id = p.id").
			Where("photos_fts MATCH ?", params.Query)
	}
	if params.CollectionID != "" {
		b = b.Join("photo_collections pc ON pc.photo_id = p.id").
			Where(sq.Eq{"pc.collection_id": params.CollectionID})
	}
	b = b.OrderBy(order).Limit(uint64(limit)).Offset(uint64(offset))

	query, args, err := b.ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("error constructing sql: %w", err)
	}

	var photos []fstop.Photo
	if err := r.ext.SelectContext(ctx, &photos, query, args...); err != nil {
		// The statement itself is fixed, so a generic sqlite error at this
		// call site means the user's MATCH expression failed to parse.
		if sqliteErr := (&sqlite.Error{}); errors.As(err, &sqliteErr) && sqliteErr.Code() == codeGenericError {
			return nil, false, fmt.Errorf("malformed search query %q: %w", params.Query, fstop.ErrInvalidQuery)
		}
		return nil, false, fmt.Errorf("error searching photos: %w", err)
	}

	return trimPage(photos, limit)
}

// UpdatedAtByID snapshots photo_id -> updated_at for the whole table, used
// by incremental runs to decide skip/process per item.
func (r Repo) UpdatedAtByID(ctx context.Context) (map[string]string, error) {
	const q = `SELECT id, updated_at FROM photos;`

	var rows []struct {
		ID        string         `db:"id"`
		UpdatedAt sql.NullString `db:"updated_at"`
	}
	if err := r.ext.SelectContext(ctx, &rows, q); err != nil {
		return nil, fmt.Errorf("error snapshotting photo timestamps: %w", err)
	}

	m := make(map[string]string, len(rows))
	for _, row := range rows {
		m[row.ID] = row.UpdatedAt.String
	}

	return m, nil
}

// Stats returns the global aggregates.
func (r Repo) Stats(ctx context.Context) (fstop.Stats, error) {
	const q = `SELECT
		(SELECT COUNT(*) FROM photos) AS total_photos,
		(SELECT COUNT(*) FROM collections) AS total_collections,
		(SELECT COALESCE(SUM(views), 0) FROM photos) AS total_views,
		(SELECT COALESCE(SUM(downloads), 0) FROM photos) AS total_downloads;`

	var stats fstop.Stats
	if err := r.ext.GetContext(ctx, &stats, q); err != nil {
		return fstop.Stats{}, fmt.Errorf("error fetching stats: %w", err)
	}

	return stats, nil
}

// trimPage drops the extra probe row and reports whether more pages exist.
func trimPage(photos []fstop.Photo, limit int) ([]fstop.Photo, bool, error) {
	hasMore := len(photos) == limit
	if hasMore {
		photos = photos[:limit-1]
	}
	if photos == nil {
		photos = []fstop.Photo{}
	}

	return photos, hasMore, nil
}
