package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anjohnson/fstop/internal/provider"
)

type fakeFetcher struct {
	calls   int
	details map[string]provider.RawPhoto
	err     error
}

func (f *fakeFetcher) PhotoDetails(_ context.Context, id string) (provider.RawPhoto, error) {
	f.calls++
	if f.err != nil {
		return provider.RawPhoto{}, f.err
	}
	return f.details[id], nil
}

func strPtr(s string) *string { return &s }

func TestEnrich_FetchesMissingExif(t *testing.T) {
	fetcher := &fakeFetcher{details: map[string]provider.RawPhoto{
		"abc": {ID: "abc", Exif: &provider.RawExif{Make: strPtr("Sony")}},
	}}
	e := New(fetcher, false)

	got := e.Enrich(context.Background(), provider.RawPhoto{ID: "abc"})
	require.NotNil(t, got.Exif)
	assert.Equal(t, "Sony", *got.Exif.Make)
	assert.Equal(t, 1, fetcher.calls)
}

func TestEnrich_ShortCircuitsOnRealExif(t *testing.T) {
	fetcher := &fakeFetcher{}
	e := New(fetcher, false)

	in := provider.RawPhoto{ID: "abc", Exif: &provider.RawExif{Model: strPtr("X100V")}}
	got := e.Enrich(context.Background(), in)

	assert.Equal(t, in, got)
	assert.Zero(t, fetcher.calls)
}

func TestEnrich_ForceRefetchesEverything(t *testing.T) {
	fetcher := &fakeFetcher{details: map[string]provider.RawPhoto{
		"abc": {ID: "abc", Exif: &provider.RawExif{Model: strPtr("A7IV")}},
	}}
	e := New(fetcher, true)

	in := provider.RawPhoto{ID: "abc", Exif: &provider.RawExif{Model: strPtr("old")}}
	got := e.Enrich(context.Background(), in)

	assert.Equal(t, "A7IV", *got.Exif.Model)
	assert.Equal(t, 1, fetcher.calls)
}

func TestEnrich_FetchFailureKeepsInput(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("rate limited")}
	e := New(fetcher, false)

	in := provider.RawPhoto{ID: "abc", Title: strPtr("Sunset")}
	got := e.Enrich(context.Background(), in)

	assert.Equal(t, in, got)
}

func TestEnrich_SkipsRecordsWithoutID(t *testing.T) {
	fetcher := &fakeFetcher{}
	e := New(fetcher, true)

	got := e.Enrich(context.Background(), provider.RawPhoto{})
	assert.Zero(t, fetcher.calls)
	assert.Equal(t, provider.RawPhoto{}, got)
}
