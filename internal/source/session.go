package source

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
)

// Session wraps a cookie jar whose contents survive restarts. Cookies are
// written to a JSON file keyed by origin URL; the upstream SSO portal sets
// them once and later polls reuse the session without re-authenticating.
type Session struct {
	path string
	jar  *cookiejar.Jar
}

type savedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewSession creates a cookie jar backed by the file at path. An empty path
// yields an in-memory jar with Save as a no-op. A missing file is not an
// error; a corrupt one is.
func NewSession(path string) (*Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("session: new jar: %w", err)
	}
	s := &Session{path: path, jar: jar}

	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: read cookie file: %w", err)
	}

	var byOrigin map[string][]savedCookie
	if err := json.Unmarshal(data, &byOrigin); err != nil {
		return nil, fmt.Errorf("session: parse cookie file: %w", err)
	}

	for origin, cookies := range byOrigin {
		u, err := url.Parse(origin)
		if err != nil {
			return nil, fmt.Errorf("session: cookie file origin %q: %w", origin, err)
		}
		hc := make([]*http.Cookie, 0, len(cookies))
		for _, c := range cookies {
			hc = append(hc, &http.Cookie{Name: c.Name, Value: c.Value})
		}
		jar.SetCookies(u, hc)
	}
	return s, nil
}

// Jar returns the underlying cookie jar for use in an http.Client.
func (s *Session) Jar() http.CookieJar { return s.jar }

// Save writes the cookies currently held for the given origins back to the
// session file. Origins that fail to parse are skipped.
func (s *Session) Save(origins ...string) error {
	if s.path == "" {
		return nil
	}

	byOrigin := make(map[string][]savedCookie)
	for _, origin := range origins {
		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			continue
		}
		cookies := s.jar.Cookies(u)
		if len(cookies) == 0 {
			continue
		}
		sc := make([]savedCookie, 0, len(cookies))
		for _, c := range cookies {
			sc = append(sc, savedCookie{Name: c.Name, Value: c.Value})
		}
		byOrigin[u.Scheme+"://"+u.Host] = sc
	}

	data, err := json.MarshalIndent(byOrigin, "", "  ")
	if err != nil {
		return fmt.Errorf("session: encode cookies: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("session: write cookie file: %w", err)
	}
	return nil
}
