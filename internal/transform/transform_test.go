package transform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anjohnson/fstop/internal/fstop"
	"github.com/anjohnson/fstop/internal/provider"
)

func strPtr(s string) *string    { return &s }
func intPtr(i int) *int          { return &i }
func floatPtr(f float64) *float64 { return &f }

func fullRaw() provider.RawPhoto {
	return provider.RawPhoto{
		ID:             "abc123",
		Title:          strPtr("Sunset Ridge"),
		Description:    strPtr("<p>Golden hour</p>"),
		AltDescription: strPtr("a ridge at sunset"),
		CreatedAt:      "2024-01-01T00:00:00Z",
		UpdatedAt:      "2024-01-02T00:00:00Z",
		Width:          4000,
		Height:         3000,
		Color:          strPtr("#aabbcc"),
		BlurHash:       strPtr("LKO2?U%2Tw=w"),
		Likes:          intPtr(42),
		Views:          intPtr(1000),
		Downloads:      intPtr(50),
		URLs: &provider.RawURLs{
			Raw:     "https://img.example/raw",
			Full:    "https://img.example/full",
			Regular: "https://img.example/regular",
			Small:   "https://img.example/small",
			Thumb:   "https://img.example/thumb",
		},
		User: &provider.RawUser{
			Name:     "Ana Silva",
			Username: "anasilva",
			ProfileImage: &provider.RawProfileImage{
				Large: "https://img.example/avatar",
			},
		},
		Location: &provider.RawLocation{
			Name:    strPtr("Serra da Estrela"),
			City:    strPtr("Covilha"),
			Country: strPtr("Portugal"),
			Position: &provider.RawPosition{
				Latitude:  floatPtr(40.32),
				Longitude: floatPtr(-7.61),
			},
		},
		Exif: &provider.RawExif{
			Make:         strPtr("Fujifilm"),
			Model:        strPtr("X100V"),
			ExposureTime: strPtr("1/250"),
			Aperture:     strPtr("5.6"),
			FocalLength:  strPtr("23"),
			ISO:          intPtr(200),
		},
		Tags: []provider.RawTag{{Title: "sunset"}, {Title: "mountains"}},
		Links: &provider.RawLinks{
			HTML:             "https://unsplash.example/photos/abc123",
			DownloadLocation: "https://api.example/photos/abc123/download",
		},
	}
}

func TestPhoto_FullPayload(t *testing.T) {
	p := Photo(fullRaw())

	assert.Equal(t, "abc123", p.ID)
	assert.Equal(t, "Sunset Ridge", p.Title)
	assert.Equal(t, "Golden hour", p.Description)
	assert.Equal(t, "a ridge at sunset", p.AltDescription)
	assert.Equal(t, "#aabbcc", p.Color)
	assert.Equal(t, 1000, p.Views)
	assert.Equal(t, 50, p.Downloads)
	assert.Equal(t, 42, p.Likes)
	assert.Equal(t, "https://img.example/regular", p.URLRegular)

	assert.Equal(t, "Ana Silva", p.PhotographerName)
	assert.Equal(t, "https://unsplash.com/@anasilva", p.PhotographerURL)
	assert.Equal(t, "https://img.example/avatar", p.PhotographerAvatar)

	require.NotNil(t, p.LocationCountry)
	assert.Equal(t, "Portugal", *p.LocationCountry)
	require.NotNil(t, p.LocationLatitude)
	assert.InDelta(t, 40.32, *p.LocationLatitude, 0.001)

	require.NotNil(t, p.ExifMake)
	assert.Equal(t, "Fujifilm", *p.ExifMake)
	require.NotNil(t, p.ExifISO)
	assert.Equal(t, "200", *p.ExifISO)

	assert.Equal(t, fstop.Tags{"sunset", "mountains"}, p.Tags)
	assert.Equal(t, "https://unsplash.example/photos/abc123", p.SourceURL)

	// last_synced_at is a fresh RFC 3339 stamp.
	synced, err := time.Parse(time.RFC3339, p.LastSyncedAt)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), synced, time.Minute)
}

func TestPhoto_SparsePayloadDefaults(t *testing.T) {
	p := Photo(provider.RawPhoto{ID: "xyz"})

	assert.Equal(t, "Photo xyz", p.Title)
	assert.Equal(t, fstop.DefaultColor, p.Color)
	assert.Equal(t, fstop.DefaultUnknown, p.PhotographerName)
	assert.Zero(t, p.Views)
	assert.Zero(t, p.Downloads)

	// No exif object means the exif columns stay untouched on upsert.
	assert.Nil(t, p.ExifMake)
	assert.Nil(t, p.ExifISO)
	assert.Nil(t, p.LocationName)
	assert.NotNil(t, p.Tags)
	assert.Empty(t, p.Tags)
}

func TestPhoto_TitleFallbackChain(t *testing.T) {
	raw := provider.RawPhoto{ID: "id1", Description: strPtr("from description")}
	assert.Equal(t, "from description", Photo(raw).Title)

	raw = provider.RawPhoto{ID: "id1", AltDescription: strPtr("from alt")}
	assert.Equal(t, "from alt", Photo(raw).Title)

	raw = provider.RawPhoto{ID: "id1", Title: strPtr("")}
	assert.Equal(t, "Photo id1", Photo(raw).Title)
}

func TestPhoto_EmptyExifFieldsStayNil(t *testing.T) {
	// A partial exif object must not blank stored values: only fields the
	// payload actually carries map to non-nil columns.
	raw := provider.RawPhoto{
		ID:   "id1",
		Exif: &provider.RawExif{Make: strPtr("Canon"), Model: strPtr("")},
	}
	p := Photo(raw)

	require.NotNil(t, p.ExifMake)
	assert.Equal(t, "Canon", *p.ExifMake)
	assert.Nil(t, p.ExifModel)
	assert.Nil(t, p.ExifAperture)
	assert.Nil(t, p.ExifISO)
}

func TestPhoto_NestedStatisticsFallback(t *testing.T) {
	raw := provider.RawPhoto{
		ID: "id1",
		Statistics: &provider.RawStatistics{
			Views:     &provider.RawTotal{Total: 777},
			Downloads: &provider.RawTotal{Total: 33},
		},
	}
	p := Photo(raw)
	assert.Equal(t, 777, p.Views)
	assert.Equal(t, 33, p.Downloads)

	// The flattened keys win over the nested object.
	raw.Views = intPtr(900)
	assert.Equal(t, 900, Photo(raw).Views)
}

func TestPhoto_TagsKeepDuplicatesDropEmpty(t *testing.T) {
	raw := provider.RawPhoto{
		ID:   "id1",
		Tags: []provider.RawTag{{Title: "sea"}, {Title: ""}, {Title: "sea"}},
	}
	assert.Equal(t, fstop.Tags{"sea", "sea"}, Photo(raw).Tags)
}

func TestPhoto_SanitizesMarkup(t *testing.T) {
	raw := provider.RawPhoto{
		ID:    "id1",
		Title: strPtr("  <b>Bold</b> title  "),
	}
	assert.Equal(t, "Bold title", Photo(raw).Title)
}

func TestCollection(t *testing.T) {
	raw := provider.RawCollection{
		ID:          "col-1",
		Title:       "Café Mornings",
		Description: strPtr("slow starts"),
		TotalPhotos: 8,
		UpdatedAt:   strPtr("2024-03-01T00:00:00Z"),
		CoverPhoto: &provider.RawPhoto{
			ID:   "cover-1",
			URLs: &provider.RawURLs{Regular: "https://img.example/cover"},
		},
	}

	c := Collection(raw)
	assert.Equal(t, "col-1", c.ID)
	assert.Equal(t, "cafe-mornings", c.Slug)
	assert.Equal(t, 8, c.TotalPhotos)
	require.NotNil(t, c.CoverPhotoID)
	assert.Equal(t, "cover-1", *c.CoverPhotoID)
	require.NotNil(t, c.CoverPhotoURL)
	assert.Equal(t, "https://img.example/cover", *c.CoverPhotoURL)
	assert.NotEmpty(t, c.LastSyncedAt)
}

func TestCollection_NoCover(t *testing.T) {
	c := Collection(provider.RawCollection{ID: "col-2", Title: "Empty"})
	assert.Nil(t, c.CoverPhotoID)
	assert.Nil(t, c.CoverPhotoURL)
}
