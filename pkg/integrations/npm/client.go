package npm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/cdnm/pkg/cache"
	cerrors "github.com/matzehuels/cdnm/pkg/errors"
	"github.com/matzehuels/cdnm/pkg/integrations"
)

// CachePrefix starts every cache key written by a [Client], whichever
// registry it talks to.
const CachePrefix = "npm:"

// DefaultRegistry is the public npm registry.
const DefaultRegistry = "https://registry.npmjs.org"

// abbreviatedAccept requests the abbreviated ("corgi") packument, which
// carries dist-tags and the version list without per-version manifests.
const abbreviatedAccept = "application/vnd.npm.install-v1+json; q=1.0, application/json; q=0.8"

type PackageInfo struct {
	Name     string            `json:"name"`
	DistTags map[string]string `json:"dist_tags"`
	Versions []string          `json:"versions"`
}

// Latest returns the version the "latest" dist-tag points at, or "".
func (p *PackageInfo) Latest() string { return p.DistTags["latest"] }

type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a registry client. An empty baseURL selects
// [DefaultRegistry]; responses are cached in c for ttl.
func NewClient(c cache.Cache, baseURL string, ttl time.Duration) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	namespace := CachePrefix
	if baseURL == "" {
		baseURL = DefaultRegistry
	} else if baseURL != DefaultRegistry {
		namespace = CachePrefix + baseURL + ":"
	}
	return &Client{
		Client:  integrations.NewClient(c, namespace, ttl, map[string]string{"Accept": abbreviatedAccept}),
		baseURL: baseURL,
	}
}

// BaseURL returns the registry the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) FetchPackage(ctx context.Context, pkg string, refresh bool) (*PackageInfo, error) {
	pkg = strings.TrimSpace(pkg)
	if err := cerrors.ValidateNpmPackageName(pkg); err != nil {
		return nil, err
	}

	var info PackageInfo
	err := c.Cached(ctx, pkg, refresh, &info, func() error {
		return c.fetch(ctx, pkg, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) fetch(ctx context.Context, pkg string, info *PackageInfo) error {
	var data registryResponse
	if err := c.Get(ctx, c.baseURL+"/"+integrations.PackagePath(pkg), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: npm package %s", err, pkg)
		}
		return err
	}

	versions := slices.Collect(maps.Keys(data.Versions))
	slices.Sort(versions)

	*info = PackageInfo{
		Name:     data.Name,
		DistTags: data.DistTags,
		Versions: versions,
	}
	if info.Name == "" {
		info.Name = pkg
	}
	return nil
}

type registryResponse struct {
	Name     string                     `json:"name"`
	DistTags map[string]string          `json:"dist-tags"`
	Versions map[string]json.RawMessage `json:"versions"`
}
