// Package query turns list request parameters into a validated filter, sort
// and window, and builds pagination metadata from a total count.
package query

import (
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"videotube/pkg/apierror"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxPage keeps Skip from overflowing at any accepted limit.
	MaxPage = math.MaxInt64 / MaxLimit

	DefaultSortBy = "createdAt"
)

// Field maps an API sort key to the stored field name of each backend.
type Field struct {
	Bson   string
	Column string
}

// Sortable is the whitelist of sort keys for one resource. Only base fields
// belong here; joined fields do not exist when the sort stage runs.
type Sortable map[string]Field

var (
	VideoSorts = Sortable{
		"createdAt": {Bson: "createdAt", Column: "created_at"},
		"updatedAt": {Bson: "updatedAt", Column: "updated_at"},
		"views":     {Bson: "views", Column: "views"},
		"duration":  {Bson: "duration", Column: "duration"},
		"title":     {Bson: "title", Column: "title"},
	}

	TweetSorts = Sortable{
		"createdAt": {Bson: "createdAt", Column: "created_at"},
		"updatedAt": {Bson: "updatedAt", Column: "updated_at"},
	}

	// CreatedSorts is used by listings that only page, never re-sort.
	CreatedSorts = Sortable{
		"createdAt": {Bson: "createdAt", Column: "created_at"},
	}
)

// Raw is the list query string as bound by gin.
type Raw struct {
	Page     string `form:"page"`
	Limit    string `form:"limit"`
	Query    string `form:"query"`
	SortBy   string `form:"sortBy"`
	SortType string `form:"sortType"`
	UserID   string `form:"userId"`
}

type Sort struct {
	Key   string
	Field Field
	Desc  bool
}

type Params struct {
	Page    int64
	Limit   int64
	Search  string
	Sort    Sort
	OwnerID string
}

// Skip is the number of matching documents before the window.
func (p Params) Skip() int64 {
	return (p.Page - 1) * p.Limit
}

// Parse validates raw against the sort whitelist and fills in defaults.
func Parse(raw Raw, sorts Sortable) (Params, error) {
	p := Params{
		Page:   DefaultPage,
		Limit:  DefaultLimit,
		Search: strings.TrimSpace(raw.Query),
	}

	if raw.Page != "" {
		page, err := strconv.ParseInt(raw.Page, 10, 64)
		if err != nil || page < 1 {
			return p, apierror.BadRequest("page must be a positive integer")
		}
		if page > MaxPage {
			return p, apierror.BadRequest("page is out of range")
		}
		p.Page = page
	}

	if raw.Limit != "" {
		limit, err := strconv.ParseInt(raw.Limit, 10, 64)
		if err != nil || limit < 1 || limit > MaxLimit {
			return p, apierror.BadRequest("limit must be between 1 and " + strconv.Itoa(MaxLimit))
		}
		p.Limit = limit
	}

	key := raw.SortBy
	if key == "" {
		key = DefaultSortBy
	}
	field, ok := sorts[key]
	if !ok {
		return p, apierror.BadRequest("cannot sort by " + strconv.Quote(key))
	}
	p.Sort = Sort{Key: key, Field: field, Desc: true}

	switch strings.ToLower(raw.SortType) {
	case "", "desc":
	case "asc":
		p.Sort.Desc = false
	default:
		return p, apierror.BadRequest("sortType must be asc or desc")
	}

	if raw.UserID != "" {
		if _, err := uuid.Parse(raw.UserID); err != nil {
			return p, apierror.BadRequest("Invalid user ID")
		}
		p.OwnerID = raw.UserID
	}

	return p, nil
}

// Window builds params for listings that only accept page and limit.
func Window(raw Raw) (Params, error) {
	return Parse(Raw{Page: raw.Page, Limit: raw.Limit}, CreatedSorts)
}
