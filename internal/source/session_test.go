package source

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/flowcentral/flowcentral/internal/config"
)

func TestSession_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")

	s, err := NewSession(path)
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}

	origin := "https://portal.example.com"
	u, _ := url.Parse(origin)
	s.Jar().SetCookies(u, []*http.Cookie{
		{Name: "session-id", Value: "abc123"},
		{Name: "session-token", Value: "tok456"},
	})

	if err := s.Save(origin); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	restored, err := NewSession(path)
	if err != nil {
		t.Fatalf("NewSession(restored) error = %v", err)
	}
	cookies := restored.Jar().Cookies(u)
	if len(cookies) != 2 {
		t.Fatalf("restored %d cookies, want 2", len(cookies))
	}
	byName := map[string]string{}
	for _, c := range cookies {
		byName[c.Name] = c.Value
	}
	if byName["session-id"] != "abc123" || byName["session-token"] != "tok456" {
		t.Errorf("restored cookies = %v", byName)
	}
}

func TestNewSession_MissingFile(t *testing.T) {
	s, err := NewSession(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("NewSession() on missing file: %v", err)
	}
	if s.Jar() == nil {
		t.Fatal("expected a usable jar")
	}
}

func TestNewSession_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := NewSession(path); err == nil {
		t.Fatal("expected error for corrupt cookie file")
	}
}

func TestNewSession_EmptyPath(t *testing.T) {
	s, err := NewSession("")
	if err != nil {
		t.Fatalf("NewSession(\"\") error = %v", err)
	}
	if err := s.Save("https://portal.example.com"); err != nil {
		t.Fatalf("Save() without a path should be a no-op, got %v", err)
	}
}

func TestNewClient_APIKey(t *testing.T) {
	t.Setenv("SRC_KEY", "secret-key")

	var gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("x-api-key")
	}))
	defer srv.Close()

	client, err := NewClient(config.SourceAuth{Mode: "apikey", KeyEnv: "SRC_KEY"}, config.TLSConfig{}, nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	resp.Body.Close()

	if gotHeader != "secret-key" {
		t.Errorf("x-api-key = %q, want secret-key", gotHeader)
	}
}

func TestNewClient_Bearer(t *testing.T) {
	t.Setenv("SRC_TOKEN", "tok")

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	client, err := NewClient(config.SourceAuth{Mode: "bearer", TokenEnv: "SRC_TOKEN"}, config.TLSConfig{}, nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	resp.Body.Close()

	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization = %q, want Bearer tok", gotAuth)
	}
}

func TestNewClient_CookieRequiresJar(t *testing.T) {
	if _, err := NewClient(config.SourceAuth{Mode: "cookie"}, config.TLSConfig{}, nil); err == nil {
		t.Fatal("expected error for cookie mode without a jar")
	}
}
