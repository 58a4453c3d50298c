// Package pkg provides the core libraries for cdnm, the CDN dependency updater.
//
// # Overview
//
// cdnm treats npm packages loaded from CDN URLs in HTML as dependencies. The
// pkg directory is organized into three areas:
//
//  1. [cdn], [update] - Domain logic (URL grammar, extraction, version rewrites)
//  2. [resolver], [integrations] - Latest-version lookup against the npm registry
//  3. [cache], [errors], [observability] - Infrastructure shared by both
//
// # Architecture
//
// The typical data flow through cdnm:
//
//	HTML document (text or *html.Node tree)
//	         ↓
//	    [cdn] package (extract package references)
//	         ↓
//	    [resolver] package (latest version per package, concurrently)
//	         ↓
//	    [update] package (compute new specifiers, rewrite URLs)
//	         ↓
//	    Updated HTML
//
// # Quick Start
//
//	import (
//	    "context"
//	    "time"
//	    "github.com/matzehuels/cdnm/pkg/cache"
//	    "github.com/matzehuels/cdnm/pkg/integrations/npm"
//	    "github.com/matzehuels/cdnm/pkg/resolver"
//	    "github.com/matzehuels/cdnm/pkg/update"
//	)
//
//	client := npm.NewClient(cache.NewNullCache(), "", time.Hour)
//	u := update.New(resolver.NewNPM(client, false), nil, nil)
//	res, err := u.Text(context.Background(), doc)
//	// res.Output holds the rewritten document
//
// [cdn]: https://pkg.go.dev/github.com/matzehuels/cdnm/pkg/cdn
// [update]: https://pkg.go.dev/github.com/matzehuels/cdnm/pkg/update
// [resolver]: https://pkg.go.dev/github.com/matzehuels/cdnm/pkg/resolver
// [integrations]: https://pkg.go.dev/github.com/matzehuels/cdnm/pkg/integrations
// [cache]: https://pkg.go.dev/github.com/matzehuels/cdnm/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/cdnm/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/cdnm/pkg/observability
package pkg
