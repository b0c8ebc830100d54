package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := CORS([]string{" https://app.example.com/ ", ""}, next)

	tests := []struct {
		name       string
		method     string
		origin     string
		wantStatus int
		wantAllow  string
	}{
		{name: "preflight allowed", method: http.MethodOptions, origin: "https://app.example.com", wantStatus: http.StatusNoContent, wantAllow: "https://app.example.com"},
		{name: "preflight unknown origin", method: http.MethodOptions, origin: "https://evil.example.com", wantStatus: http.StatusNoContent},
		{name: "simple request allowed", method: http.MethodGet, origin: "https://app.example.com", wantStatus: http.StatusOK, wantAllow: "https://app.example.com"},
		{name: "simple request unknown origin", method: http.MethodGet, origin: "https://evil.example.com", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "http://test/events", nil)
			req.Header.Set("Origin", tt.origin)
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantAllow, rr.Header().Get("Access-Control-Allow-Origin"))
			if tt.wantAllow != "" && tt.method == http.MethodOptions {
				assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), "PATCH")
			}
		})
	}
}
