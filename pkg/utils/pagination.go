package utils

import (
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// Page describes one page of an ordered sequence. Number is always within
// [1, TotalPages]; an out-of-range request is clamped instead of failing.
type Page struct {
	Number      int   `json:"number"`
	Size        int   `json:"size"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	Offset      int   `json:"offset"`
	HasNext     bool  `json:"hasNext"`
	HasPrevious bool  `json:"hasPrevious"`
	StartIndex  int   `json:"startIndex"`
	EndIndex    int   `json:"endIndex"`
}

// ParsePageNumber reads the "page" query value. Anything that is not a
// positive integer selects the first page.
func ParsePageNumber(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func NewPage(total int64, size, number int) Page {
	if size < 1 {
		size = 1
	}
	if total < 0 {
		total = 0
	}

	totalPages := int((total + int64(size) - 1) / int64(size))
	if totalPages < 1 {
		totalPages = 1
	}

	if number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}

	p := Page{
		Number:      number,
		Size:        size,
		Total:       total,
		TotalPages:  totalPages,
		Offset:      (number - 1) * size,
		HasNext:     number < totalPages,
		HasPrevious: number > 1,
	}

	if total > 0 {
		p.StartIndex = p.Offset + 1
		p.EndIndex = int(min(int64(p.Offset+size), total))
	}

	return p
}

// Len is the number of items on the page.
func (p Page) Len() int {
	if p.Total == 0 {
		return 0
	}
	return p.EndIndex - p.Offset
}

func (p Page) NextNumber() int {
	if !p.HasNext {
		return p.Number
	}
	return p.Number + 1
}

func (p Page) PreviousNumber() int {
	if !p.HasPrevious {
		return p.Number
	}
	return p.Number - 1
}

// Paginate slices an in-memory ordered sequence: page N holds
// items[(N-1)*size, N*size).
func Paginate[T any](items []T, size, number int) ([]T, Page) {
	p := NewPage(int64(len(items)), size, number)
	return items[p.Offset : p.Offset+p.Len()], p
}

func ApplyPage(db *gorm.DB, p Page) *gorm.DB {
	return db.Offset(p.Offset).Limit(p.Size)
}
