// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// defaultPageSize is the page size of admin lists.
const defaultPageSize = 20

// Pagination holds the pager shown under admin lists.
type Pagination struct {
	CurrentPage int
	TotalPages  int
	TotalItems  int
	PerPage     int
	Pages       []PageLink
	BaseURL     string
	QueryString string
}

// PageLink is one entry of the pager. Ellipsis entries have no number.
type PageLink struct {
	Number     int
	URL        string
	IsCurrent  bool
	IsEllipsis bool
}

// pageParam reads the 1-based "page" query parameter.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// skip converts a 1-based page into a skip offset.
func skip(page, perPage int) int {
	return (page - 1) * perPage
}

// buildPagination creates the pager for a list. query holds the filters to
// keep in every link; its "page" entry is ignored.
func buildPagination(currentPage, totalItems, perPage int, baseURL string, query url.Values) Pagination {
	if perPage < 1 {
		perPage = defaultPageSize
	}
	totalPages := max((totalItems+perPage-1)/perPage, 1)
	currentPage = min(max(currentPage, 1), totalPages)

	p := Pagination{
		CurrentPage: currentPage,
		TotalPages:  totalPages,
		TotalItems:  totalItems,
		PerPage:     perPage,
		BaseURL:     baseURL,
	}

	kept := make(url.Values)
	for k, v := range query {
		if k != "page" && len(v) > 0 && v[0] != "" {
			kept[k] = v
		}
	}
	if len(kept) > 0 {
		p.QueryString = kept.Encode()
	}

	// Five numbered links around the current page, plus first and last.
	start := max(currentPage-2, 1)
	end := min(start+4, totalPages)
	start = max(end-4, 1)

	if start > 1 {
		p.Pages = append(p.Pages, p.link(1))
		if start > 2 {
			p.Pages = append(p.Pages, PageLink{IsEllipsis: true})
		}
	}
	for i := start; i <= end; i++ {
		p.Pages = append(p.Pages, p.link(i))
	}
	if end < totalPages {
		if end < totalPages-1 {
			p.Pages = append(p.Pages, PageLink{IsEllipsis: true})
		}
		p.Pages = append(p.Pages, p.link(totalPages))
	}
	return p
}

func (p Pagination) link(n int) PageLink {
	return PageLink{Number: n, URL: p.PageURL(n), IsCurrent: n == p.CurrentPage}
}

// PageURL returns the URL for a specific page number.
func (p Pagination) PageURL(page int) string {
	if p.QueryString != "" {
		return fmt.Sprintf("%s?%s&page=%d", p.BaseURL, p.QueryString, page)
	}
	return fmt.Sprintf("%s?page=%d", p.BaseURL, page)
}

// HasPrev reports whether a previous page exists.
func (p Pagination) HasPrev() bool { return p.CurrentPage > 1 }

// HasNext reports whether a next page exists.
func (p Pagination) HasNext() bool { return p.CurrentPage < p.TotalPages }

// PrevURL returns the URL for the previous page.
func (p Pagination) PrevURL() string { return p.PageURL(p.CurrentPage - 1) }

// NextURL returns the URL for the next page.
func (p Pagination) NextURL() string { return p.PageURL(p.CurrentPage + 1) }

// ShouldShow returns true if pagination should be displayed (more than 1 page).
func (p Pagination) ShouldShow() bool {
	return p.TotalPages > 1
}

// PageRange describes the items on the current page, e.g. "21-40".
func (p Pagination) PageRange() string {
	if p.TotalItems == 0 {
		return "0"
	}
	start := (p.CurrentPage-1)*p.PerPage + 1
	end := min(p.CurrentPage*p.PerPage, p.TotalItems)
	return fmt.Sprintf("%d-%d", start, end)
}

// Pager is previous/next navigation for backend lists that report no total.
type Pager struct {
	Page    int
	HasPrev bool
	HasNext bool
	PrevURL string
	NextURL string
}

// buildPager builds a Pager. Callers fetch perPage+1 rows; got is the
// number returned, and a full extra row means a next page exists.
func buildPager(page, got, perPage int, baseURL string, query url.Values) Pager {
	p := buildPagination(page, (page-1)*perPage+min(got, perPage+1), perPage, baseURL, query)
	return Pager{
		Page:    page,
		HasPrev: page > 1,
		HasNext: got > perPage,
		PrevURL: p.PageURL(page - 1),
		NextURL: p.PageURL(page + 1),
	}
}
