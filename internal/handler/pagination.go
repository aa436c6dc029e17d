package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// Pagination holds pagination data for list templates.
type Pagination struct {
	CurrentPage int
	TotalPages  int
	TotalItems  int64
	PerPage     int
	HasPrev     bool
	HasNext     bool
	PrevPage    int
	NextPage    int
	BaseURL     string
}

// BuildPagination creates pagination data for a list page. baseURL is the
// path without query string (e.g. "/reports").
func BuildPagination(currentPage int, totalItems int64, perPage int, baseURL string) Pagination {
	totalPages := CalculateTotalPages(totalItems, perPage)
	currentPage = ClampPage(currentPage, totalPages)

	return Pagination{
		CurrentPage: currentPage,
		TotalPages:  totalPages,
		TotalItems:  totalItems,
		PerPage:     perPage,
		HasPrev:     currentPage > 1,
		HasNext:     currentPage < totalPages,
		PrevPage:    currentPage - 1,
		NextPage:    currentPage + 1,
		BaseURL:     baseURL,
	}
}

// PageURL returns the URL for a specific page number.
func (p Pagination) PageURL(page int) string {
	return fmt.Sprintf("%s?page=%d", p.BaseURL, page)
}

// PrevURL returns the URL for the previous page.
func (p Pagination) PrevURL() string {
	return p.PageURL(p.PrevPage)
}

// NextURL returns the URL for the next page.
func (p Pagination) NextURL() string {
	return p.PageURL(p.NextPage)
}

// ShouldShow returns true if pagination should be displayed.
func (p Pagination) ShouldShow() bool {
	return p.TotalPages > 1
}

// CalculateTotalPages returns the number of pages needed for totalItems.
// Always at least 1 so an empty list still has a valid current page.
func CalculateTotalPages(totalItems int64, perPage int) int {
	if perPage <= 0 {
		return 1
	}
	pages := int((totalItems + int64(perPage) - 1) / int64(perPage))
	if pages < 1 {
		return 1
	}
	return pages
}

// ClampPage clamps a page number to the range [1, totalPages].
func ClampPage(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// ParsePageParam parses the "page" query parameter from the request.
// Returns 1 if the parameter is missing, empty, or invalid.
func ParsePageParam(r *http.Request) int {
	str := r.URL.Query().Get("page")
	if str == "" {
		return 1
	}
	page, err := strconv.Atoi(str)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// ParseIDParam parses the "{id}" route parameter as a positive int64.
func ParseIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id parameter")
	}
	return id, nil
}
