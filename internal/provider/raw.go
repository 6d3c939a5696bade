package provider

type (
	// RawPhoto is the provider-side photo payload. It tolerates both the
	// upstream's nested shape (urls/statistics objects) and the flattened
	// shape (url_* keys, top-level views/downloads) so listing and detail
	// payloads share one type.
	RawPhoto struct {
		ID             string  `json:"id"`
		Title          *string `json:"title,omitempty"`
		Description    *string `json:"description"`
		AltDescription *string `json:"alt_description"`
		CreatedAt      string  `json:"created_at"`
		UpdatedAt      string  `json:"updated_at"`
		Width          int     `json:"width"`
		Height         int     `json:"height"`
		Color          *string `json:"color"`
		BlurHash       *string `json:"blur_hash"`
		Likes          *int    `json:"likes"`

		// Flattened statistics, preferred when present.
		Views     *int `json:"views,omitempty"`
		Downloads *int `json:"downloads,omitempty"`
		// Nested statistics fallback.
		Statistics *RawStatistics `json:"statistics,omitempty"`

		URLs *RawURLs `json:"urls,omitempty"`
		// Flattened URL variants, preferred when present.
		URLRaw     *string `json:"url_raw,omitempty"`
		URLFull    *string `json:"url_full,omitempty"`
		URLRegular *string `json:"url_regular,omitempty"`
		URLSmall   *string `json:"url_small,omitempty"`
		URLThumb   *string `json:"url_thumb,omitempty"`

		User     *RawUser     `json:"user,omitempty"`
		Location *RawLocation `json:"location,omitempty"`
		Exif     *RawExif     `json:"exif,omitempty"`
		Tags     []RawTag     `json:"tags,omitempty"`
		Links    *RawLinks    `json:"links,omitempty"`
	}

	RawURLs struct {
		Raw     string `json:"raw"`
		Full    string `json:"full"`
		Regular string `json:"regular"`
		Small   string `json:"small"`
		Thumb   string `json:"thumb"`
	}

	RawTotal struct {
		Total int `json:"total"`
	}

	RawStatistics struct {
		Views     *RawTotal `json:"views,omitempty"`
		Downloads *RawTotal `json:"downloads,omitempty"`
	}

	RawUser struct {
		Name         string           `json:"name"`
		Username     string           `json:"username"`
		PortfolioURL *string          `json:"portfolio_url"`
		ProfileImage *RawProfileImage `json:"profile_image,omitempty"`
	}

	RawProfileImage struct {
		Small  string `json:"small"`
		Medium string `json:"medium"`
		Large  string `json:"large"`
	}

	RawLocation struct {
		Name     *string      `json:"name"`
		City     *string      `json:"city"`
		Country  *string      `json:"country"`
		Position *RawPosition `json:"position,omitempty"`
	}

	RawPosition struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}

	RawExif struct {
		Make         *string `json:"make"`
		Model        *string `json:"model"`
		ExposureTime *string `json:"exposure_time"`
		Aperture     *string `json:"aperture"`
		FocalLength  *string `json:"focal_length"`
		ISO          *int    `json:"iso"`
	}

	RawTag struct {
		Title string `json:"title"`
	}

	RawLinks struct {
		HTML             string `json:"html"`
		Download         string `json:"download"`
		DownloadLocation string `json:"download_location"`
	}

	// RawCollection is the provider-side collection payload.
	RawCollection struct {
		ID          string    `json:"id"`
		Title       string    `json:"title"`
		Description *string   `json:"description"`
		TotalPhotos int       `json:"total_photos"`
		PublishedAt *string   `json:"published_at"`
		UpdatedAt   *string   `json:"updated_at"`
		CoverPhoto  *RawPhoto `json:"cover_photo,omitempty"`
	}
)

// ResolveURL returns the photo's URL for the given variant, preferring the
// flattened key and falling back to the nested urls object.
func (p RawPhoto) ResolveURL(variant string) string {
	flat := map[string]*string{
		"raw":     p.URLRaw,
		"full":    p.URLFull,
		"regular": p.URLRegular,
		"small":   p.URLSmall,
		"thumb":   p.URLThumb,
	}[variant]
	if flat != nil && *flat != "" {
		return *flat
	}
	if p.URLs == nil {
		return ""
	}
	switch variant {
	case "raw":
		return p.URLs.Raw
	case "full":
		return p.URLs.Full
	case "regular":
		return p.URLs.Regular
	case "small":
		return p.URLs.Small
	case "thumb":
		return p.URLs.Thumb
	}
	return ""
}

// HasExif reports whether the payload carries any non-empty EXIF field.
func (p RawPhoto) HasExif() bool {
	e := p.Exif
	if e == nil {
		return false
	}
	for _, f := range []*string{e.Make, e.Model, e.ExposureTime, e.Aperture, e.FocalLength} {
		if f != nil && *f != "" {
			return true
		}
	}
	return e.ISO != nil
}

// Validate performs the minimal-shape check providers run before yielding a
// photo: id, both the regular and raw URL variants, some usable title text,
// and both timestamps must be present.
func Validate(p RawPhoto) bool {
	if p.ID == "" || p.CreatedAt == "" || p.UpdatedAt == "" {
		return false
	}
	if p.ResolveURL("regular") == "" || p.ResolveURL("raw") == "" {
		return false
	}

	hasTitle := (p.Title != nil && *p.Title != "") ||
		(p.Description != nil && *p.Description != "") ||
		(p.AltDescription != nil && *p.AltDescription != "")
	return hasTitle
}

// MergeListingDetail reconciles a lightweight listing payload with the
// per-item detail payload. Identity fields and statistics fall back to the
// listing when the detail omits them; URLs come from the listing only when
// the detail has no urls object at all.
func MergeListingDetail(listing, detail RawPhoto) RawPhoto {
	merged := detail

	if merged.ID == "" {
		merged.ID = listing.ID
	}
	if merged.CreatedAt == "" {
		merged.CreatedAt = listing.CreatedAt
	}
	if merged.UpdatedAt == "" {
		merged.UpdatedAt = listing.UpdatedAt
	}

	// Statistics fallbacks: the detail endpoint often omits totals the
	// listing already reported.
	if merged.Views == nil {
		merged.Views = listing.Views
	}
	if merged.Downloads == nil {
		merged.Downloads = listing.Downloads
	}
	if merged.Statistics == nil {
		merged.Statistics = listing.Statistics
	}
	if merged.Likes == nil {
		merged.Likes = listing.Likes
	}

	if merged.URLs == nil {
		if listing.URLs != nil {
			merged.URLs = listing.URLs
		} else {
			merged.URLs = &RawURLs{
				Raw:     listing.ResolveURL("raw"),
				Full:    listing.ResolveURL("full"),
				Regular: listing.ResolveURL("regular"),
				Small:   listing.ResolveURL("small"),
				Thumb:   listing.ResolveURL("thumb"),
			}
		}
	}

	if merged.User == nil {
		merged.User = listing.User
	}
	if merged.Links == nil {
		merged.Links = listing.Links
	}

	return merged
}
