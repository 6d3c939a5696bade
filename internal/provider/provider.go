// Package provider abstracts a remote photo source behind lazy sequences of
// raw records.
package provider

import (
	"context"
	"errors"
)

// ErrDone signals that a sequence has been exhausted.
var ErrDone = errors.New("sequence done")

// Seq is a lazy, finite, non-restartable sequence of records. Once Next
// returns ErrDone or any other error, the sequence stays terminated.
type Seq[T any] struct {
	next func() (T, error)
	err  error
}

// NewSeq wraps a pull function into a Seq.
func NewSeq[T any](next func() (T, error)) *Seq[T] {
	return &Seq[T]{next: next}
}

// Next returns the next record, ErrDone at the end of the sequence, or the
// error that terminated it.
func (s *Seq[T]) Next() (T, error) {
	if s.err != nil {
		var zero T
		return zero, s.err
	}

	v, err := s.next()
	if err != nil {
		s.err = err
		var zero T
		return zero, err
	}

	return v, nil
}

// Collect drains the sequence into a slice. An early-terminated sequence
// yields whatever was produced so far alongside the terminating error.
func Collect[T any](s *Seq[T]) ([]T, error) {
	var out []T
	for {
		v, err := s.Next()
		if errors.Is(err, ErrDone) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
}

// Paged builds a sequence that walks pages until the fetch signals no more
// results or errors. A max of 0 means unbounded.
//
// Transport failures are the fetch function's to absorb: returning
// hasMore=false ends the sequence early, which callers must treat as
// "whatever was yielded so far". A returned error terminates the sequence
// with that error (strict validation). An empty page with hasMore=true is
// skipped, not terminal: fetchers filter malformed records out of a page,
// and a fully-filtered page must not hide the valid pages behind it.
func Paged[T any](ctx context.Context, max int, fetch func(ctx context.Context, page int) ([]T, bool, error)) *Seq[T] {
	var (
		buf     []T
		page    = 1
		more    = true
		yielded int
	)
	return NewSeq(func() (T, error) {
		var zero T
		if max > 0 && yielded >= max {
			return zero, ErrDone
		}
		for len(buf) == 0 {
			if !more {
				return zero, ErrDone
			}
			items, hasMore, err := fetch(ctx, page)
			if err != nil {
				return zero, err
			}
			page++
			more = hasMore
			buf = items
		}
		item := buf[0]
		buf = buf[1:]
		yielded++
		return item, nil
	})
}

// Provider is a remote photo source. Each method returns a fresh, finite,
// non-restartable sequence; sequences end early on page-fetch failure.
type Provider interface {
	Collections(ctx context.Context) *Seq[RawCollection]
	PhotosInCollection(ctx context.Context, collectionID string) *Seq[RawPhoto]
	UserPhotos(ctx context.Context, username string) *Seq[RawPhoto]
}
