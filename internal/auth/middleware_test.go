package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func request(t *testing.T, h http.Handler, header, value string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestMiddleware(t *testing.T) {
	cases := []struct {
		name   string
		mode   string
		key    string
		header string
		value  string
		want   int
	}{
		{"valid key", "apikey", "secret", "x-api-key", "secret", http.StatusOK},
		{"wrong key", "apikey", "secret", "x-api-key", "nope", http.StatusUnauthorized},
		{"missing key", "apikey", "secret", "", "", http.StatusUnauthorized},
		{"empty key header", "apikey", "secret", "x-api-key", "", http.StatusUnauthorized},
		{"mode none passes through", "none", "secret", "", "", http.StatusOK},
		{"unconfigured key passes through", "apikey", "", "", "", http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := Middleware(tc.mode, "x-api-key", tc.key, okHandler())
			rr := request(t, h, tc.header, tc.value)
			if rr.Code != tc.want {
				t.Errorf("status: got %d, want %d", rr.Code, tc.want)
			}
		})
	}
}

func TestMiddleware_CustomHeader(t *testing.T) {
	h := Middleware("apikey", "x-monitor-key", "secret", okHandler())

	rr := request(t, h, "x-monitor-key", "secret")
	if rr.Code != http.StatusOK {
		t.Errorf("custom header accepted key: got %d, want 200", rr.Code)
	}

	rr = request(t, h, "x-api-key", "secret")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("key in wrong header: got %d, want 401", rr.Code)
	}
}
