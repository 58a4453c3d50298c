package integrations

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const httpTimeout = 10 * time.Second

// DefaultCacheTTL is how long registry responses are reused.
const DefaultCacheTTL = 24 * time.Hour

var (
	// ErrNotFound is returned when a package or resource doesn't exist in the registry.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// NewHTTPClient creates an HTTP client with a standard timeout for registry requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// PackagePath escapes a package name for use as a registry URL path segment.
// Scoped names keep their leading "@" and encode the separator, as the npm
// registry expects: "@babel/core" becomes "@babel%2fcore".
func PackagePath(name string) string {
	name = strings.TrimSpace(name)
	if scope, pkg, ok := strings.Cut(name, "/"); ok && strings.HasPrefix(scope, "@") {
		return "@" + url.PathEscape(scope[1:]) + "%2f" + url.PathEscape(pkg)
	}
	return url.PathEscape(name)
}
