package update

import (
	"context"
	"errors"
	"net/url"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/cdnm/pkg/cdn"
	cerrors "github.com/matzehuels/cdnm/pkg/errors"
	"github.com/matzehuels/cdnm/pkg/resolver"
)

// Change records one rewritten URL.
type Change struct {
	Name   string `json:"name" yaml:"name"`
	From   string `json:"from" yaml:"from"`
	To     string `json:"to" yaml:"to"`
	Latest string `json:"latest" yaml:"latest"`
	URL    string `json:"url" yaml:"url"`
	NewURL string `json:"new_url" yaml:"new_url"`
}

// Result is the outcome of an update.
type Result struct {
	// Output is the rewritten document. Only set by [Updater.Text].
	Output string

	// Packages lists every distinct package found in the document, in order
	// of first appearance, whether or not it changed.
	Packages []string

	// Changes lists every reference whose URL changed, in document order.
	Changes []Change

	// Failures maps each package that could not be updated to its error.
	// A package referenced under several specifiers may fail for some of
	// them only; its error then joins every failed lookup.
	Failures map[string]error
}

// Updater rewrites CDN references to their latest versions.
//
// An Updater holds no per-document state and is safe for concurrent use
// as long as its fields are not modified.
type Updater struct {
	Resolver resolver.Resolver
	Grammar  *cdn.Grammar
	TextMode Mode
	NodeMode Mode
	Logger   *log.Logger
}

// New creates an updater with [TextMode] and [NodeMode] defaults.
// A nil grammar uses the default hosts and a nil logger uses log.Default().
func New(r resolver.Resolver, g *cdn.Grammar, logger *log.Logger) *Updater {
	if g == nil {
		g = cdn.MustGrammar()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Updater{
		Resolver: r,
		Grammar:  g,
		TextMode: TextMode(),
		NodeMode: NodeMode(),
		Logger:   logger,
	}
}

// Text rewrites every reference in doc and returns the new document in
// Result.Output. doc itself is never modified.
func (u *Updater) Text(ctx context.Context, doc string) (*Result, error) {
	set, err := cdn.NewExtractor(u.Grammar, u.TextMode.Extract, u.Logger).Extract(cdn.Text(doc))
	if err != nil {
		return nil, err
	}

	versions, failures := u.resolve(ctx, set)
	failErr := joinFailures(failures)
	if failErr != nil && u.TextMode.Failures == AllOrNothing {
		return nil, failErr
	}

	result := &Result{Packages: set.Names(), Failures: failures}
	var b strings.Builder
	b.Grow(len(doc))
	last := 0
	for _, ref := range set.References() {
		b.WriteString(doc[last:ref.Start])
		last = ref.End

		latest, ok := versions[queryFor(ref)]
		if !ok {
			b.WriteString(ref.Raw)
			continue
		}
		change := rewrite(ref, latest)
		b.WriteString(change.NewURL)
		if change.NewURL != change.URL {
			result.Changes = append(result.Changes, change)
		}
	}
	b.WriteString(doc[last:])
	result.Output = b.String()

	u.logResult(result)
	return result, failErr
}

// Document updates every script and stylesheet reference under root in
// place. Elements are rewritten concurrently, each by its own goroutine;
// all writes have finished when Document returns.
func (u *Updater) Document(ctx context.Context, root *html.Node) (*Result, error) {
	return u.nodes(ctx, cdn.Nodes{Root: root})
}

// Element updates a single script or stylesheet element in place and
// returns it. Other elements are returned unchanged.
func (u *Updater) Element(ctx context.Context, n *html.Node) (*html.Node, error) {
	_, err := u.nodes(ctx, cdn.Element{Node: n})
	return n, err
}

func (u *Updater) nodes(ctx context.Context, src cdn.Source) (*Result, error) {
	set, err := cdn.NewExtractor(u.Grammar, u.NodeMode.Extract, u.Logger).Extract(src)
	if err != nil {
		return nil, err
	}

	versions, failures := u.resolve(ctx, set)
	failErr := joinFailures(failures)
	if failErr != nil && u.NodeMode.Failures == AllOrNothing {
		return nil, failErr
	}

	refs := set.References()
	changes := make([]*Change, len(refs))

	var g errgroup.Group
	for i, ref := range refs {
		latest, ok := versions[queryFor(ref)]
		if !ok {
			continue
		}
		g.Go(func() error {
			change := rewrite(ref, latest)
			if change.NewURL == change.URL {
				return nil
			}
			if !ref.SetURL(change.NewURL) {
				return cerrors.New(cerrors.ErrCodeInternal, "element for %s lost its %s attribute", ref.Name, ref.Attr)
			}
			changes[i] = &change
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{Packages: set.Names(), Failures: failures}
	for _, c := range changes {
		if c != nil {
			result.Changes = append(result.Changes, *c)
		}
	}
	u.logResult(result)
	return result, failErr
}

// resolve looks up every distinct package and specifier pair once, so
// references to one package under different specifiers resolve against
// their own constraints. A pair whose resolved version is not semver is
// moved to the failures, which are joined per package name.
func (u *Updater) resolve(ctx context.Context, set *cdn.Set) (map[resolver.Query]string, map[string]error) {
	var queries []resolver.Query
	seen := make(map[resolver.Query]bool)
	for _, ref := range set.References() {
		q := queryFor(ref)
		if !seen[q] {
			seen[q] = true
			queries = append(queries, q)
		}
	}
	failures := make(map[string]error)
	if len(queries) == 0 {
		return map[resolver.Query]string{}, failures
	}

	versions, failed := resolver.BatchQueries(ctx, u.Resolver, queries)
	for q, v := range versions {
		if _, err := semver.NewVersion(v); err != nil {
			failed[q] = cerrors.ForPackage(q.Name, cerrors.Wrap(cerrors.ErrCodeInvalidVersion, err, "resolved version %q is not semver", v))
			delete(versions, q)
		}
	}
	for _, q := range queries {
		err, ok := failed[q]
		if !ok {
			continue
		}
		u.Logger.Debug("package not updated", "package", q.Name, "spec", q.Constraint, "err", err)
		if prev, ok := failures[q.Name]; ok {
			err = errors.Join(prev, err)
		}
		failures[q.Name] = err
	}
	return versions, failures
}

func queryFor(ref cdn.Reference) resolver.Query {
	return resolver.Query{Name: ref.Name, Constraint: ref.Spec}
}

func (u *Updater) logResult(r *Result) {
	for _, c := range r.Changes {
		u.Logger.Debug("rewrote reference", "package", c.Name, "from", c.From, "to", c.To)
	}
}

// rewrite computes the new URL for ref given the package's latest version.
// latest has already been checked to be semver.
func rewrite(ref cdn.Reference, latest string) Change {
	to := nextSpec(ref.Spec, latest)
	return Change{
		Name:   ref.Name,
		From:   ref.Spec,
		To:     to,
		Latest: latest,
		URL:    ref.Raw,
		NewURL: ref.WithSpec(to),
	}
}

// nextSpec applies [Next] to a specifier that may be percent-encoded in
// the URL, re-encoding the result when the input was encoded.
func nextSpec(spec, latest string) string {
	decoded, err := url.PathUnescape(spec)
	if err != nil || decoded == spec {
		next, err := Next(spec, latest)
		if err != nil {
			return spec
		}
		return next
	}
	next, err := Next(decoded, latest)
	if err != nil || next == decoded {
		return spec
	}
	return url.PathEscape(next)
}

// joinFailures joins per-package errors in package-name order.
func joinFailures(failures map[string]error) error {
	if len(failures) == 0 {
		return nil
	}
	names := make([]string, 0, len(failures))
	for name := range failures {
		names = append(names, name)
	}
	slices.Sort(names)
	errs := make([]error, 0, len(names))
	for _, name := range names {
		errs = append(errs, failures[name])
	}
	return errors.Join(errs...)
}
