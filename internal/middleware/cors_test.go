package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCors(t *testing.T) {
	handler := Cors()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	testCases := []struct {
		name               string
		origin             string
		host               string
		expectedStatusCode int
	}{
		{
			name:               "NoOrigin",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "AllowedDevOrigin",
			origin:             "http://localhost:8080",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "SameHostOrigin",
			origin:             "https://admin.example.com",
			host:               "admin.example.com",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "ForeignOrigin",
			origin:             "https://evil.example.com",
			host:               "admin.example.com",
			expectedStatusCode: http.StatusForbidden,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/clientes", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			if tc.host != "" {
				req.Host = tc.host
			}

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatusCode, rr.Code)
		})
	}
}
