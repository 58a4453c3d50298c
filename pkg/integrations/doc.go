// Package integrations provides HTTP clients for package registry APIs.
//
// # Overview
//
// The [Client] type provides shared HTTP functionality used by registry
// clients: JSON GETs with default headers, status-code classification into
// [ErrNotFound] and [ErrNetwork], retry of transient failures, and response
// caching via [cache.Cache]. Each registry has its own subpackage:
//
//   - [npm]: Node Package Manager, the registry behind unpkg and jsDelivr
//
// # Client Pattern
//
//	base, _ := cache.NewFileCache(dir)
//	client, err := npm.NewClient(base, 24*time.Hour)
//	pkg, err := client.FetchPackage(ctx, "react", false) // false = use cache
//
// Clients handle:
//   - HTTP requests with retry (5xx, 429 and network errors)
//   - Response caching (configurable backend and TTL)
//   - API-specific parsing and normalization
//
// [npm]: github.com/matzehuels/cdnm/pkg/integrations/npm
// [cache.Cache]: github.com/matzehuels/cdnm/pkg/cache.Cache
package integrations
