package services

import (
	"math"
	"strconv"
)

// PageSize is the number of posts on every listing page.
const PageSize = 10

type Page struct {
	Number     int
	TotalPages int
	Total      int64
	PerPage    int
}

// ParsePage reads the ?page= value. Anything that is not an integer means the first page.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 1
	}
	return n
}

// Paginate clamps the requested page into [1, TotalPages]. An empty listing still has one page.
func Paginate(requested int, total int64, perPage int) Page {
	if perPage <= 0 {
		perPage = PageSize
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	if totalPages == 0 {
		totalPages = 1
	}

	number := requested
	if number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}
	return Page{Number: number, TotalPages: totalPages, Total: total, PerPage: perPage}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

func (p Page) HasPrev() bool { return p.Number > 1 }
func (p Page) HasNext() bool { return p.Number < p.TotalPages }
func (p Page) Prev() int     { return p.Number - 1 }
func (p Page) Next() int     { return p.Number + 1 }
