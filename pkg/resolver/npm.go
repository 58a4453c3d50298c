package resolver

import (
	"context"
	"errors"

	"github.com/Masterminds/semver/v3"

	cerrors "github.com/matzehuels/cdnm/pkg/errors"
	"github.com/matzehuels/cdnm/pkg/integrations"
	"github.com/matzehuels/cdnm/pkg/integrations/npm"
)

// NPM resolves against an npm registry.
//
// The answer is the version the "latest" dist-tag points at, independent of
// the constraint, with two exceptions: a constraint that names a dist-tag
// resolves to that tag, and a prerelease constraint may resolve to a newer
// prerelease. Without a latest tag the highest stable version is used.
type NPM struct {
	client  *npm.Client
	refresh bool
}

// NewNPM returns a resolver backed by client. With refresh set, cached
// registry responses are bypassed.
func NewNPM(client *npm.Client, refresh bool) *NPM {
	return &NPM{client: client, refresh: refresh}
}

// Resolve implements [Resolver].
func (n *NPM) Resolve(ctx context.Context, q Query) (string, error) {
	info, err := n.client.FetchPackage(ctx, q.Name, n.refresh)
	if err != nil {
		switch {
		case errors.Is(err, integrations.ErrNotFound):
			return "", cerrors.Wrap(cerrors.ErrCodePackageNotFound, err, "package %s not found", q.Name)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return "", err
		case cerrors.GetCode(err) != "":
			return "", err
		}
		return "", cerrors.Wrap(cerrors.ErrCodeResolverUnavailable, err, "query registry for %s", q.Name)
	}

	v := Latest(info, q.Constraint)
	if v == "" {
		return "", cerrors.New(cerrors.ErrCodePackageNotFound, "package %s has no published versions", q.Name)
	}
	return v, nil
}

// Latest picks the version to update to from registry metadata.
func Latest(info *npm.PackageInfo, constraint string) string {
	if tagged, ok := info.DistTags[constraint]; ok && constraint != "" {
		return tagged
	}

	latest := info.Latest()
	if cur, err := semver.NewVersion(constraint); err == nil && cur.Prerelease() != "" {
		if pre := highest(info.Versions, true); pre != nil && (latest == "" || newer(pre, latest)) && pre.GreaterThan(cur) {
			return pre.Original()
		}
	}
	if latest != "" {
		return latest
	}
	if v := highest(info.Versions, false); v != nil {
		return v.Original()
	}
	return ""
}

// highest returns the greatest parseable version, skipping prereleases
// unless pre is set.
func highest(versions []string, pre bool) *semver.Version {
	var best *semver.Version
	for _, s := range versions {
		v, err := semver.StrictNewVersion(s)
		if err != nil || (!pre && v.Prerelease() != "") {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
		}
	}
	return best
}

func newer(v *semver.Version, than string) bool {
	t, err := semver.NewVersion(than)
	return err != nil || v.GreaterThan(t)
}
