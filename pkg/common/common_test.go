package common

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	tests := []struct {
		name     string
		params   PageParams
		want     []int
		wantInfo PaginationInfo
	}{
		{
			name:     "first page",
			params:   PageParams{Page: 1, PageSize: 2},
			want:     []int{1, 2},
			wantInfo: PaginationInfo{Page: 1, PageSize: 2, Total: 5, TotalPages: 3, HasNext: true},
		},
		{
			name:     "last partial page",
			params:   PageParams{Page: 3, PageSize: 2},
			want:     []int{5},
			wantInfo: PaginationInfo{Page: 3, PageSize: 2, Total: 5, TotalPages: 3, HasPrev: true},
		},
		{
			name:     "past the end",
			params:   PageParams{Page: 9, PageSize: 2},
			want:     []int{},
			wantInfo: PaginationInfo{Page: 9, PageSize: 2, Total: 5, TotalPages: 3, HasPrev: true},
		},
		{
			name:     "zero values use defaults",
			params:   PageParams{},
			want:     []int{1, 2, 3, 4, 5},
			wantInfo: PaginationInfo{Page: 1, PageSize: defaultPageSize, Total: 5, TotalPages: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, info := Paginate(items, tt.params)
			assert.Equal(t, tt.want, page)
			assert.Equal(t, tt.wantInfo, *info)
		})
	}
}

func TestExtractPageParams(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/users?page=3&page_size=500", nil)
	assert.Equal(t, PageParams{Page: 3, PageSize: maxPageSize}, ExtractPageParams(r))

	r = httptest.NewRequest(http.MethodGet, "/users?page=-1&page_size=abc", nil)
	assert.Equal(t, PageParams{Page: 1, PageSize: defaultPageSize}, ExtractPageParams(r))
}

func TestResponses(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondJSON(rec, http.StatusCreated, map[string]string{"form": "21E"})

	var body APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, body.Success)

	rec = httptest.NewRecorder()
	RespondError(rec, http.StatusForbidden, CodeForbidden, "no access to AL")
	body = APIResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, CodeForbidden, body.Error.Code)
}

func TestParseJSONBody(t *testing.T) {
	var v struct {
		Final bool `json:"final"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"final":true}`))
	require.NoError(t, ParseJSONBody(r, &v, 1024))
	assert.True(t, v.Final)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"final":true,"other":1}`))
	assert.Error(t, ParseJSONBody(r, &v, 1024))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"final":true}`))
	assert.Error(t, ParseJSONBody(r, &v, 4))
}

func TestContextMetadata(t *testing.T) {
	ctx := WithStartTime(context.Background(), time.Now().Add(-time.Second))
	ctx = WithUserID(ctx, "u-1")
	ctx = WithRequestID(ctx, "req-1")

	meta := ExtractMetadata(ctx)
	assert.Equal(t, "u-1", meta.UserID)
	assert.Equal(t, "req-1", meta.RequestID)
	assert.Empty(t, meta.TraceID)
	assert.GreaterOrEqual(t, meta.Duration, time.Second)

	r := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	assert.Equal(t, "req-1", ExtractRequestID(r))
	r.Header.Set("X-Request-ID", "client-id")
	assert.Equal(t, "client-id", ExtractRequestID(r))
}
