package helpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"eventhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRequest struct {
	Name string `json:"name"`
}

func (r testRequest) Validate() []string {
	var errs []string
	if r.Name == "" {
		errs = append(errs, "name is required")
	}
	return errs
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) *APIError {
	t.Helper()
	var envelope APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	require.NotNil(t, envelope.Error)
	return envelope.Error
}

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantOK  bool
		wantMsg string
	}{
		{name: "valid", body: `{"name":"Go"}`, wantOK: true},
		{name: "empty body", body: "", wantMsg: "request body is required"},
		{name: "unknown field", body: `{"name":"Go","extra":1}`, wantMsg: "unknown field"},
		{name: "validation failure", body: `{}`, wantMsg: "name is required"},
		{name: "malformed json", body: `{"name":`, wantMsg: "unexpected EOF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(tt.body))
			var dest testRequest

			ok := DecodeAndValidate(rr, req, &dest)

			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, "Go", dest.Name)
				return
			}
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			apiErr := decodeError(t, rr)
			assert.Equal(t, ErrCodeBadRequest, apiErr.Code)
			assert.Contains(t, apiErr.Message, tt.wantMsg)
		})
	}
}

func TestPathUUID(t *testing.T) {
	mux := http.NewServeMux()
	var got string
	mux.HandleFunc("GET /events/{eventID}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := PathUUID(w, r, "eventID")
		if ok {
			got = id
			w.WriteHeader(http.StatusOK)
		}
	})

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/events/6F9619FF-8B86-D011-B42D-00C04FC964FF", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "6f9619ff-8b86-d011-b42d-00c04fc964ff", got)

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/events/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid eventID", decodeError(t, rr).Message)
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query        string
		wantPage     int
		wantPageSize int
	}{
		{"", DefaultPage, DefaultPageSize},
		{"page=3&page_size=5", 3, 5},
		{"page=0&page_size=-1", DefaultPage, DefaultPageSize},
		{"page=abc", DefaultPage, DefaultPageSize},
		{"page_size=1000", DefaultPage, MaxPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			p := ParsePagination(httptest.NewRequest(http.MethodGet, "/events?"+tt.query, nil))
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantPageSize, p.PageSize)
		})
	}
}

func TestNewPaginationMeta(t *testing.T) {
	assert.Equal(t, PaginationMeta{Page: 2, PageSize: 10, Total: 21, TotalPages: 3}, NewPaginationMeta(domain.PaginationParams{Page: 2, PageSize: 10}, 21))
	assert.Equal(t, 0, NewPaginationMeta(domain.PaginationParams{Page: 1}, 5).TotalPages)
}

func TestParsePagination_CapsPage(t *testing.T) {
	p := ParsePagination(httptest.NewRequest(http.MethodGet, "/events?page=999999999999", nil))
	assert.Equal(t, MaxPage, p.Page)
}
