// Package npm provides an HTTP client for the npm registry API.
//
// # Overview
//
// This package fetches package metadata from the npm registry
// (https://registry.npmjs.org), which backs the unpkg and jsDelivr CDNs.
// Any registry speaking the same protocol (Verdaccio, GitHub Packages) can be
// used by passing its base URL.
//
// # Usage
//
//	client := npm.NewClient(cache.NewNullCache(), "", 24*time.Hour)
//
//	pkg, err := client.FetchPackage(ctx, "react", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println(pkg.Name, pkg.Latest())
//
// # PackageInfo
//
// [Client.FetchPackage] returns a [PackageInfo] containing:
//
//   - Name: Package identity as reported by the registry
//   - DistTags: Tag to version mapping ("latest", "next", ...)
//   - Versions: Every published version, sorted lexically
//
// The client requests the abbreviated packument, so per-version manifests are
// never downloaded.
//
// # Caching
//
// Responses are cached to reduce load on the registry. The cache TTL is set
// when creating the client. Pass refresh=true to bypass the cache.
package npm
