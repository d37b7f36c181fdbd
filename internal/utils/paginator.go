package utils

import "strconv"

// Paginator splits Count items into pages of PerPage items.
type Paginator struct {
	Count   int64
	PerPage int
}

// Page is one resolved page of a Paginator.
type Page struct {
	Number      int   `json:"page"`
	NumPages    int   `json:"total_pages"`
	PerPage     int   `json:"page_size"`
	Count       int64 `json:"total"`
	Offset      int   `json:"-"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// NumPages is never below one so an empty list still has a first page.
func (p Paginator) NumPages() int {
	if p.PerPage <= 0 || p.Count <= 0 {
		return 1
	}
	return int((p.Count + int64(p.PerPage) - 1) / int64(p.PerPage))
}

// Page resolves a raw page parameter. A missing or non-integer value
// yields the first page; an out of range number yields the last page.
func (p Paginator) Page(raw string) Page {
	numPages := p.NumPages()
	number, err := strconv.Atoi(raw)
	switch {
	case err != nil:
		number = 1
	case number < 1 || number > numPages:
		number = numPages
	}
	perPage := p.PerPage
	if perPage <= 0 {
		perPage = int(p.Count)
	}
	return Page{
		Number:      number,
		NumPages:    numPages,
		PerPage:     perPage,
		Count:       p.Count,
		Offset:      (number - 1) * perPage,
		HasNext:     number < numPages,
		HasPrevious: number > 1,
	}
}

// NextNumber is the following page number, used by templates.
func (pg Page) NextNumber() int { return pg.Number + 1 }

// PreviousNumber is the preceding page number, used by templates.
func (pg Page) PreviousNumber() int { return pg.Number - 1 }
