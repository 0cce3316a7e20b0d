// Package listutil parses list-endpoint query strings and shapes paged responses.
package listutil

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

const (
	// DefaultPerPage applies when per_page is missing or unparsable.
	DefaultPerPage = 20
	// MaxPerPage caps per_page; larger requests are clamped, not rejected.
	MaxPerPage = 200
)

// Query is a parsed list request.
// INVARIANT: Page >= 1; 1 <= PerPage <= MaxPerPage; Dir is "asc" or "desc";
// Sort is empty or one of the columns the caller allowed
type Query struct {
	Page    int
	PerPage int
	Sort    string
	Dir     string
	Search  string
	Filters map[string]string
}

// Parse reads page, per_page, sort, dir, q and the named filters.
// Unknown sort columns are dropped so they never reach an ORDER BY.
func Parse(v url.Values, sortCols []string, filterKeys []string) Query {
	q := Query{
		Page:    atLeastOne(v.Get("page"), 1),
		PerPage: min(atLeastOne(v.Get("per_page"), DefaultPerPage), MaxPerPage),
		Dir:     "asc",
		Search:  strings.TrimSpace(v.Get("q")),
		Filters: map[string]string{},
	}
	if s := v.Get("sort"); slices.Contains(sortCols, s) {
		q.Sort = s
	}
	if strings.EqualFold(v.Get("dir"), "desc") {
		q.Dir = "desc"
	}
	for _, k := range filterKeys {
		if f := strings.TrimSpace(v.Get(k)); f != "" {
			q.Filters[k] = f
		}
	}
	return q
}

// Filter returns the value of a named filter, or "".
func (q Query) Filter(key string) string {
	return q.Filters[key]
}

// PageFor computes the page metadata once the matching row count is known.
func (q Query) PageFor(total int) PageInfo {
	return NewPageInfo(q.Page, q.PerPage, total)
}

func atLeastOne(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

// PageInfo is the "page" object of every list response.
type PageInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPageInfo clamps page into [1, TotalPages]. An empty result still has one page.
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	pages := max((total+perPage-1)/perPage, 1)
	return PageInfo{
		Page:       min(max(page, 1), pages),
		PerPage:    perPage,
		Total:      total,
		TotalPages: pages,
	}
}

// Offset is the number of rows before this page, for SQL OFFSET.
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Result is the body of every list endpoint.
type Result[T any] struct {
	Items []T      `json:"items"`
	Page  PageInfo `json:"page"`
}

// NewResult pairs items with their page. Items encode as [] rather than null.
func NewResult[T any](items []T, page PageInfo) Result[T] {
	if items == nil {
		items = []T{}
	}
	return Result[T]{Items: items, Page: page}
}

// Whole wraps a short, unpaginated collection (plans, categories, rules) as one page.
func Whole[T any](items []T) Result[T] {
	return NewResult(items, NewPageInfo(1, max(len(items), 1), len(items)))
}
