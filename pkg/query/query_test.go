package query

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"videotube/pkg/apierror"
)

func TestParse_Defaults(t *testing.T) {
	p, err := Parse(Raw{}, VideoSorts)
	require.NoError(t, err)

	assert.Equal(t, int64(1), p.Page)
	assert.Equal(t, int64(10), p.Limit)
	assert.Equal(t, int64(0), p.Skip())
	assert.Equal(t, "createdAt", p.Sort.Key)
	assert.Equal(t, "created_at", p.Sort.Field.Column)
	assert.True(t, p.Sort.Desc)
	assert.Empty(t, p.OwnerID)
}

func TestParse_Values(t *testing.T) {
	p, err := Parse(Raw{
		Page:     "3",
		Limit:    "25",
		Query:    "  golang  ",
		SortBy:   "views",
		SortType: "ASC",
		UserID:   "0b8f3a5e-5c1f-4a84-9a5f-4a1d6c1e2f10",
	}, VideoSorts)
	require.NoError(t, err)

	assert.Equal(t, int64(50), p.Skip())
	assert.Equal(t, "golang", p.Search)
	assert.Equal(t, "views", p.Sort.Field.Bson)
	assert.False(t, p.Sort.Desc)
	assert.Equal(t, "0b8f3a5e-5c1f-4a84-9a5f-4a1d6c1e2f10", p.OwnerID)
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]Raw{
		"zero page":          {Page: "0"},
		"negative page":      {Page: "-2"},
		"non numeric page":   {Page: "two"},
		"zero limit":         {Limit: "0"},
		"limit over max":     {Limit: "101"},
		"unknown sort field": {SortBy: "password"},
		"joined sort field":  {SortBy: "ownerDetails.username"},
		"bad sort type":      {SortType: "sideways"},
		"bad user id":        {UserID: "not-a-uuid"},
		"page past max":      {Page: "9223372036854775807", Limit: "10"},
		"page overflows int": {Page: "9223372036854775808"},
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(raw, VideoSorts)
			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, apierror.StatusOf(err))
		})
	}
}

func TestParse_LargestPageSkipsForward(t *testing.T) {
	p, err := Parse(Raw{Page: strconv.FormatInt(MaxPage, 10), Limit: strconv.Itoa(MaxLimit)}, VideoSorts)
	require.NoError(t, err)
	assert.Positive(t, p.Skip())
	assert.Equal(t, (int64(MaxPage)-1)*MaxLimit, p.Skip())
}

func TestWindow_IgnoresSortAndSearch(t *testing.T) {
	p, err := Window(Raw{Page: "2", Limit: "5", SortBy: "views", Query: "x"})
	require.NoError(t, err)

	assert.Equal(t, int64(5), p.Skip())
	assert.Equal(t, "createdAt", p.Sort.Key)
	assert.Empty(t, p.Search)
}

func TestNewPage(t *testing.T) {
	t.Run("middle page", func(t *testing.T) {
		page := NewPage([]int{4, 5, 6}, 10, Params{Page: 2, Limit: 3})

		assert.Equal(t, int64(10), page.TotalDocs)
		assert.Equal(t, int64(4), page.TotalPages)
		assert.Equal(t, int64(4), page.PagingCounter)
		assert.True(t, page.HasPrevPage)
		assert.True(t, page.HasNextPage)
		require.NotNil(t, page.PrevPage)
		require.NotNil(t, page.NextPage)
		assert.Equal(t, int64(1), *page.PrevPage)
		assert.Equal(t, int64(3), *page.NextPage)
	})

	t.Run("empty result", func(t *testing.T) {
		page := NewPage[string](nil, 0, Params{Page: 1, Limit: 10})

		assert.NotNil(t, page.Docs)
		assert.Empty(t, page.Docs)
		assert.Equal(t, int64(1), page.TotalPages)
		assert.False(t, page.HasNextPage)
		assert.Nil(t, page.NextPage)
	})

	t.Run("window past the end keeps the total", func(t *testing.T) {
		page := NewPage([]int{}, 7, Params{Page: 5, Limit: 10})

		assert.Equal(t, int64(7), page.TotalDocs)
		assert.Equal(t, int64(1), page.TotalPages)
		assert.True(t, page.HasPrevPage)
		assert.False(t, page.HasNextPage)
	})
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%go%", LikePattern("Go"))
	assert.Equal(t, `%100\%\_off\\%`, LikePattern(`100%_off\`))
}

func TestProperty_PageTotalIndependentOfWindow(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	window := func(total, page, limit int) []int {
		items := make([]int, total)
		p := Params{Page: int64(page), Limit: int64(limit)}
		start := int(p.Skip())
		if start >= total {
			return []int{}
		}
		end := start + limit
		if end > total {
			end = total
		}
		return items[start:end]
	}

	properties.Property("totalDocs equals the match count for any page and limit", prop.ForAll(
		func(total, page, limit int) bool {
			p := Params{Page: int64(page), Limit: int64(limit)}
			result := NewPage(window(total, page, limit), int64(total), p)
			return result.TotalDocs == int64(total)
		},
		gen.IntRange(0, 500),
		gen.IntRange(1, 60),
		gen.IntRange(1, MaxLimit),
	))

	properties.Property("walking every page yields every document once", prop.ForAll(
		func(total, limit int) bool {
			first := NewPage(window(total, 1, limit), int64(total), Params{Page: 1, Limit: int64(limit)})
			seen := 0
			for page := int64(1); page <= first.TotalPages; page++ {
				seen += len(window(total, int(page), limit))
			}
			return seen == total
		},
		gen.IntRange(0, 500),
		gen.IntRange(1, MaxLimit),
	))

	properties.Property("hasNextPage iff documents remain after the window", prop.ForAll(
		func(total, page, limit int) bool {
			p := Params{Page: int64(page), Limit: int64(limit)}
			result := NewPage(window(total, page, limit), int64(total), p)
			return result.HasNextPage == (int64(page)*int64(limit) < int64(total))
		},
		gen.IntRange(0, 500),
		gen.IntRange(1, 60),
		gen.IntRange(1, MaxLimit),
	))

	properties.TestingRun(t)
}
