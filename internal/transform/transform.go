// Package transform maps raw provider payloads into canonical records.
package transform

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/anjohnson/fstop/internal/fstop"
	"github.com/anjohnson/fstop/internal/provider"
)

// Photo maps a raw payload into the persisted schema. It is a total
// function: any payload shape produces a record, with missing values filled
// from the centralized defaults. last_synced_at is stamped at call time.
func Photo(raw provider.RawPhoto) fstop.Photo {
	p := fstop.Photo{
		ID:             raw.ID,
		Title:          title(raw),
		Description:    sanitize(deref(raw.Description)),
		AltDescription: sanitize(deref(raw.AltDescription)),
		CreatedAt:      raw.CreatedAt,
		UpdatedAt:      raw.UpdatedAt,
		Width:          raw.Width,
		Height:         raw.Height,
		Color:          fstop.DefaultColor,
		BlurHash:       deref(raw.BlurHash),

		URLRaw:     raw.ResolveURL("raw"),
		URLFull:    raw.ResolveURL("full"),
		URLRegular: raw.ResolveURL("regular"),
		URLSmall:   raw.ResolveURL("small"),
		URLThumb:   raw.ResolveURL("thumb"),

		PhotographerName: fstop.DefaultUnknown,

		LastSyncedAt: time.Now().UTC().Format(time.RFC3339),
	}

	if raw.Color != nil && *raw.Color != "" {
		p.Color = *raw.Color
	}

	p.Views, p.Downloads = statistics(raw)
	if raw.Likes != nil {
		p.Likes = *raw.Likes
	}

	if u := raw.User; u != nil {
		if u.Name != "" {
			p.PhotographerName = u.Name
		}
		p.PhotographerUsername = u.Username
		if u.Username != "" {
			p.PhotographerURL = "https://unsplash.com/@" + u.Username
		}
		if u.ProfileImage != nil {
			p.PhotographerAvatar = u.ProfileImage.Large
		}
	}

	if loc := raw.Location; loc != nil {
		p.LocationName = loc.Name
		p.LocationCity = loc.City
		p.LocationCountry = loc.Country
		if loc.Position != nil {
			p.LocationLatitude = loc.Position.Latitude
			p.LocationLongitude = loc.Position.Longitude
		}
	}

	// Empty exif fields stay nil so the upsert merge cannot blank values a
	// previous detail fetch already stored.
	if e := raw.Exif; e != nil {
		p.ExifMake = nonEmpty(e.Make)
		p.ExifModel = nonEmpty(e.Model)
		p.ExifExposureTime = nonEmpty(e.ExposureTime)
		p.ExifAperture = nonEmpty(e.Aperture)
		p.ExifFocalLength = nonEmpty(e.FocalLength)
		if e.ISO != nil {
			iso := strconv.Itoa(*e.ISO)
			p.ExifISO = &iso
		}
	}

	// Source duplicates pass through as-is; only empty titles are dropped.
	p.Tags = fstop.Tags{}
	for _, tag := range raw.Tags {
		if tag.Title == "" {
			continue
		}
		p.Tags = append(p.Tags, tag.Title)
	}

	if l := raw.Links; l != nil {
		p.SourceURL = l.HTML
		p.DownloadLocation = l.DownloadLocation
	}

	return p
}

// Collection maps a raw collection payload, deriving the slug from the title
// when the payload carries none.
func Collection(raw provider.RawCollection) fstop.Collection {
	c := fstop.Collection{
		ID:           raw.ID,
		Title:        raw.Title,
		Slug:         Slugify(raw.Title),
		Description:  raw.Description,
		TotalPhotos:  raw.TotalPhotos,
		PublishedAt:  raw.PublishedAt,
		UpdatedAt:    raw.UpdatedAt,
		LastSyncedAt: time.Now().UTC().Format(time.RFC3339),
	}

	if cover := raw.CoverPhoto; cover != nil && cover.ID != "" {
		id := cover.ID
		c.CoverPhotoID = &id
		if u := cover.ResolveURL("regular"); u != "" {
			c.CoverPhotoURL = &u
		}
	}

	return c
}

// title resolves the display title: explicit title, then alt text, then a
// generated fallback so it is never empty.
func title(raw provider.RawPhoto) string {
	for _, candidate := range []*string{raw.Title, raw.Description, raw.AltDescription} {
		if candidate != nil && *candidate != "" {
			return sanitize(*candidate)
		}
	}

	return fmt.Sprintf("Photo %s", raw.ID)
}

// statistics prefers the flattened totals and falls back to the nested
// shape, defaulting to zero when neither is present.
func statistics(raw provider.RawPhoto) (views, downloads int) {
	if raw.Views != nil {
		views = *raw.Views
	} else if raw.Statistics != nil && raw.Statistics.Views != nil {
		views = raw.Statistics.Views.Total
	}

	if raw.Downloads != nil {
		downloads = *raw.Downloads
	} else if raw.Statistics != nil && raw.Statistics.Downloads != nil {
		downloads = raw.Statistics.Downloads.Total
	}

	return views, downloads
}

var stripPolicy = bluemonday.StrictPolicy()

// Removes all html tags from the string, usually a description.
//
// Also limits the length of the string so there's not a massive chunk of text being stored.
func sanitize(s string) string {
	s = strings.TrimSpace(s)
	s = stripPolicy.Sanitize(s)
	if len(s) > 2048 {
		s = s[:2048]
	}

	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
