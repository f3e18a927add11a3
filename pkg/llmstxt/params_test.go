package llmstxt

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pagination struct {
	PageSize  int    `query:"pageSize" default:"20" desc:"Number of results per page"`
	PageToken string `query:"pageToken" default:"" desc:"Token of the page to return"`
}

type genre string

type listQuery struct {
	Genre    *genre   `query:"genre" desc:"Filter books by genre"`
	MinPrice *float64 `query:"min_price" desc:"Minimum price filter"`
	Tags     []string `query:"tag" desc:"Tags to match"`
	pagination
	RequestID string `header:"X-Request-ID" desc:"Correlation ID"`
	Internal  string
	Ignored   string `query:"-"`
	secret    string `query:"secret"`
}

type createBody struct {
	BookID int     `path:"book_id" desc:"The ID of the book"`
	Title  string  `json:"title" desc:"The title of the book"`
	Price  float64 `json:"price,omitempty" desc:"The price of the book in USD"`
	Author string  `json:",omitempty"`
}

func TestParamsFrom_Query(t *testing.T) {
	got := ParamsFrom(listQuery{})

	require.Len(t, got, 6)
	names := make([]string, len(got))
	for i, p := range got {
		names[i] = p.Name
	}
	assert.Equal(t, []string{"genre", "min_price", "tag", "pageSize", "pageToken", "X-Request-ID"}, names)

	assert.Equal(t, Param{Name: "genre", In: InQuery, Type: "genre", Description: "Filter books by genre", HasDefault: true}, got[0])
	assert.Equal(t, "float64", got[1].Type)
	assert.False(t, got[1].Required())
	assert.Equal(t, "[]string", got[2].Type)
	assert.True(t, got[2].Required())
	assert.Equal(t, "20", got[3].Default)
	assert.False(t, got[3].Required())
	assert.Equal(t, InHeader, got[5].In)
	assert.True(t, got[5].Required())
}

func TestParamsFrom_BodyAndPath(t *testing.T) {
	got := ParamsFrom(&createBody{})

	require.Len(t, got, 4)
	assert.Equal(t, PathParam("book_id", "int", "The ID of the book"), got[0])
	assert.Equal(t, InBody, got[1].In)
	assert.True(t, got[1].Required())
	assert.Equal(t, "price", got[2].Name)
	assert.False(t, got[2].Required())
	assert.Equal(t, "Author", got[3].Name)
	assert.False(t, got[3].Required())
}

func TestParamsFrom_NotAStruct(t *testing.T) {
	assert.Nil(t, ParamsFrom(nil))
	assert.Nil(t, ParamsFrom(42))
	assert.Nil(t, ParamsFrom([]string{"a"}))
}

func TestTypeLabel(t *testing.T) {
	tests := []struct {
		value any
		want  string
	}{
		{value: 0, want: "int"},
		{value: "", want: "string"},
		{value: new(float64), want: "float64"},
		{value: []int{}, want: "[]int"},
		{value: [2]bool{}, want: "[2]bool"},
		{value: map[string][]genre{}, want: "map[string][]genre"},
		{value: time.Time{}, want: "Time"},
		{value: struct{ A int }{}, want: "struct { A int }"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, TypeLabel(reflect.TypeOf(tt.value)))
		})
	}
}

func TestParamRequired(t *testing.T) {
	assert.True(t, QueryParam("q", "string", "").Required())
	assert.False(t, QueryParam("q", "string", "").WithDefault("x").Required())
	assert.False(t, HeaderParam("X-Trace", "string", "").Optional().Required())
	assert.True(t, PathParam("id", "int", "").Optional().Required())
	assert.True(t, BodyParam("title", "string", "").Required())
}
