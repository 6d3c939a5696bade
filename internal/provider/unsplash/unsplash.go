// Package unsplash implements the photo provider against the Unsplash API.
package unsplash

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/anjohnson/fstop/internal/provider"
)

const (
	defaultBaseURL = "https://api.unsplash.com"
	defaultPerPage = 30

	// Detail payloads rarely change between runs; keep them around long
	// enough to serve one sync without hammering the per-photo endpoint.
	detailCacheSize = 512
	detailCacheTTL  = 30 * time.Minute
)

// Config holds the knobs for a client. AccessKey and Username are required.
type Config struct {
	AccessKey string
	Username  string

	// BaseURL overrides the API host, used by tests.
	BaseURL string
	// PerPage is the page size requested from the API, default 30.
	PerPage int
	// Detail switches the photo streams to detail granularity: every
	// yielded record is merged with its /photos/{id} payload.
	Detail bool
	// Strict makes a malformed record terminate its sequence instead of
	// being logged and skipped.
	Strict bool
	// MaxItems caps each sequence, 0 for unbounded. Testing aid.
	MaxItems int
}

// Client talks to the Unsplash API and exposes the three record streams.
type Client struct {
	cfg     Config
	http    *http.Client
	details *expirable.LRU[string, provider.RawPhoto]
}

var _ provider.Provider = (*Client)(nil)

// New creates a client from the config, applying defaults.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.PerPage <= 0 {
		cfg.PerPage = defaultPerPage
	}

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: 10 * time.Second},
		details: expirable.NewLRU[string, provider.RawPhoto](detailCacheSize, nil, detailCacheTTL),
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.cfg.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+c.cfg.AccessKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error getting %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}

	return nil
}

func (c *Client) pageQuery(page int) url.Values {
	return url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(c.cfg.PerPage)},
	}
}

// PhotoDetails fetches the full payload for one photo, serving repeats from
// the TTL cache.
func (c *Client) PhotoDetails(ctx context.Context, id string) (provider.RawPhoto, error) {
	if cached, ok := c.details.Get(id); ok {
		return cached, nil
	}

	var photo provider.RawPhoto
	if err := c.get(ctx, "/photos/"+id, nil, &photo); err != nil {
		return provider.RawPhoto{}, fmt.Errorf("error fetching photo details: %w", err)
	}
	c.details.Add(id, photo)

	return photo, nil
}

// Collections streams the configured user's collections.
func (c *Client) Collections(ctx context.Context) *provider.Seq[provider.RawCollection] {
	path := "/users/" + c.cfg.Username + "/collections"

	return provider.Paged(ctx, c.cfg.MaxItems, func(ctx context.Context, page int) ([]provider.RawCollection, bool, error) {
		var cols []provider.RawCollection
		if err := c.get(ctx, path, c.pageQuery(page), &cols); err != nil {
			slog.Error("error fetching collections page", "page", page, "error", err)
			return nil, false, nil
		}

		return cols, len(cols) == c.cfg.PerPage, nil
	})
}

// PhotosInCollection streams the photos of one collection.
func (c *Client) PhotosInCollection(ctx context.Context, collectionID string) *provider.Seq[provider.RawPhoto] {
	path := "/collections/" + collectionID + "/photos"

	return c.photoSeq(ctx, path, nil, "collection", collectionID)
}

// UserPhotos streams all photos of a user, statistics included.
func (c *Client) UserPhotos(ctx context.Context, username string) *provider.Seq[provider.RawPhoto] {
	if username == "" {
		username = c.cfg.Username
	}

	return c.photoSeq(ctx, "/users/"+username+"/photos", url.Values{"stats": {"true"}}, "user", username)
}

// photoSeq builds a paginated photo stream over the given path, applying the
// validation policy and, in detail mode, the per-item detail merge.
func (c *Client) photoSeq(ctx context.Context, path string, extra url.Values, scopeKey, scope string) *provider.Seq[provider.RawPhoto] {
	return provider.Paged(ctx, c.cfg.MaxItems, func(ctx context.Context, page int) ([]provider.RawPhoto, bool, error) {
		query := c.pageQuery(page)
		for k, vs := range extra {
			query[k] = vs
		}

		var photos []provider.RawPhoto
		if err := c.get(ctx, path, query, &photos); err != nil {
			// A failed page ends the stream; callers keep whatever was
			// already yielded.
			slog.Error("error fetching photos page", scopeKey, scope, "page", page, "error", err)
			return nil, false, nil
		}
		hasMore := len(photos) == c.cfg.PerPage

		out := photos[:0]
		for _, photo := range photos {
			if c.cfg.Detail {
				photo = c.withDetails(ctx, photo)
			}
			if !provider.Validate(photo) {
				if c.cfg.Strict {
					return nil, false, fmt.Errorf("invalid photo shape from provider (missing required fields): %s", idOrPlaceholder(photo))
				}
				slog.Warn("skipping photo with invalid shape", scopeKey, scope, "photo_id", idOrPlaceholder(photo))
				continue
			}
			out = append(out, photo)
		}

		return out, hasMore, nil
	})
}

// withDetails merges the per-photo detail payload into the listing payload.
// A failed detail fetch degrades to the listing payload rather than dropping
// the photo.
func (c *Client) withDetails(ctx context.Context, listing provider.RawPhoto) provider.RawPhoto {
	if listing.ID == "" {
		return listing
	}

	detail, err := c.PhotoDetails(ctx, listing.ID)
	if err != nil {
		slog.Warn("error fetching detail payload, keeping listing data", "photo_id", listing.ID, "error", err)
		return listing
	}

	return provider.MergeListingDetail(listing, detail)
}

func idOrPlaceholder(p provider.RawPhoto) string {
	if p.ID == "" {
		return "<no-id>"
	}
	return p.ID
}
