package helpers

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Rakhulsr/go-storefront/app/services"
)

type Page struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

type PageParams struct {
	Page int
	Size int
}

func (p PageParams) Offset() int {
	return (p.Page - 1) * p.Size
}

// ParsePageParams reads page and page_size. page_size is capped at maxSize. A page whose
// offset cannot be represented is past the end of any result set.
func ParsePageParams(r *http.Request, defaultSize, maxSize int) (PageParams, error) {
	params := PageParams{Page: 1, Size: defaultSize}
	q := r.URL.Query()

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return params, services.NewValidationError("page", "Invalid page.", nil)
		}
		params.Page = page
	}
	if raw := q.Get("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			return params, services.NewValidationError("page_size", "Invalid page size.", nil)
		}
		params.Size = size
	}
	if maxSize > 0 && params.Size > maxSize {
		params.Size = maxSize
	}
	if params.Page > math.MaxInt/params.Size {
		return params, fmt.Errorf("invalid page %d: %w", params.Page, services.ErrNotFound)
	}
	return params, nil
}

// NewPage builds the envelope with absolute next/previous links that keep the other query
// parameters. Pages past the end are reported as not found.
func NewPage(r *http.Request, params PageParams, count int64, results interface{}) (*Page, error) {
	if params.Page > 1 && int64(params.Offset()) >= count {
		return nil, fmt.Errorf("invalid page %d: %w", params.Page, services.ErrNotFound)
	}

	page := &Page{Count: count, Results: results}
	if int64(params.Page*params.Size) < count {
		link := pageLink(r, params.Page+1)
		page.Next = &link
	}
	if params.Page > 1 {
		link := pageLink(r, params.Page-1)
		page.Previous = &link
	}
	return page, nil
}

func pageLink(r *http.Request, page int) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	q := r.URL.Query()
	if page == 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u := url.URL{Scheme: scheme, Host: r.Host, Path: r.URL.Path, RawQuery: q.Encode()}
	return u.String()
}
