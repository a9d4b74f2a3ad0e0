package query

import "strings"

// Page is a window of Docs plus metadata derived from the full match count.
type Page[T any] struct {
	Docs          []T    `json:"docs"`
	TotalDocs     int64  `json:"totalDocs"`
	Limit         int64  `json:"limit"`
	Page          int64  `json:"page"`
	TotalPages    int64  `json:"totalPages"`
	PagingCounter int64  `json:"pagingCounter"`
	HasPrevPage   bool   `json:"hasPrevPage"`
	HasNextPage   bool   `json:"hasNextPage"`
	PrevPage      *int64 `json:"prevPage"`
	NextPage      *int64 `json:"nextPage"`
}

func NewPage[T any](docs []T, total int64, p Params) *Page[T] {
	if docs == nil {
		docs = []T{}
	}
	totalPages := (total + p.Limit - 1) / p.Limit
	if totalPages < 1 {
		totalPages = 1
	}

	page := &Page[T]{
		Docs:          docs,
		TotalDocs:     total,
		Limit:         p.Limit,
		Page:          p.Page,
		TotalPages:    totalPages,
		PagingCounter: p.Skip() + 1,
		HasPrevPage:   p.Page > 1,
		HasNextPage:   p.Page < totalPages,
	}
	if page.HasPrevPage {
		prev := p.Page - 1
		page.PrevPage = &prev
	}
	if page.HasNextPage {
		next := p.Page + 1
		page.NextPage = &next
	}
	return page
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikePattern is a lower-cased, escaped "%search%" for SQL LIKE ... ESCAPE '\'.
func LikePattern(search string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
}
