package api

import (
	"net/http"
	"strconv"

	apierrs "github.com/anjohnson/fstop/internal/errors"
	"github.com/anjohnson/fstop/internal/fstop"
)

const (
	defaultPerPage = 30
	maxPerPage     = 100
)

// parsePageParams parses page-based pagination parameters from an HTTP
// request (?page=2&per_page=30), falling back to defaults on anything
// invalid.
func parsePageParams(r *http.Request) (page, perPage int) {
	query := r.URL.Query()

	page, _ = strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}

	perPage, _ = strconv.Atoi(query.Get("per_page"))
	if perPage < 1 || perPage > maxPerPage {
		perPage = defaultPerPage
	}

	return page, perPage
}

// parseOrder validates the order_by parameter against the whitelist,
// defaulting to popular when absent.
func parseOrder(r *http.Request) (fstop.OrderBy, error) {
	raw := r.URL.Query().Get("order_by")
	if raw == "" {
		return fstop.OrderPopular, nil
	}

	orderBy := fstop.OrderBy(raw)
	if !orderBy.Valid() {
		return "", apierrs.E(http.StatusBadRequest, "invalid order", apierrs.Detail{
			Field: "order_by",
			Error: "must be one of latest, oldest, popular",
		})
	}

	return orderBy, nil
}
