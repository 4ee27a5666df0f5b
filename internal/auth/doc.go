// Package auth provides authentication middleware for the REST API.
//
// Middleware(mode, header, key, next) validates the API key carried in the
// named HTTP header. When mode != "apikey" or key == "", all requests pass
// through (useful for local development with auth disabled). A missing or
// incorrect key gets a 401 JSON error response immediately.
package auth
