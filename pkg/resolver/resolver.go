// Package resolver looks up the latest published version of npm packages.
//
// A [Resolver] answers one [Query] at a time; [Batch] fans a set of queries
// out concurrently and collects every outcome, so one failing package never
// hides the results of the others. [NPM] is the registry-backed
// implementation; [Static] and [Func] adapt fixed tables and closures for
// offline use and tests.
package resolver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	cerrors "github.com/matzehuels/cdnm/pkg/errors"
	"github.com/matzehuels/cdnm/pkg/observability"
)

// workers bounds concurrent lookups against a registry.
const workers = 20

// Query asks for the latest version of a package. Constraint is the
// specifier found in the document, or "" when there was none.
type Query struct {
	Name       string
	Constraint string
}

// Resolver returns the latest version of a package as a semver string.
//
// Resolve must be safe for concurrent use and should return ctx.Err()
// when ctx is canceled.
type Resolver interface {
	Resolve(ctx context.Context, q Query) (string, error)
}

// Func adapts a function to [Resolver].
type Func func(ctx context.Context, q Query) (string, error)

// Resolve implements [Resolver].
func (f Func) Resolve(ctx context.Context, q Query) (string, error) { return f(ctx, q) }

// Static resolves from a fixed name-to-version table.
type Static map[string]string

// Resolve implements [Resolver]. Unknown names are PACKAGE_NOT_FOUND.
func (s Static) Resolve(_ context.Context, q Query) (string, error) {
	if v, ok := s[q.Name]; ok {
		return v, nil
	}
	return "", cerrors.New(cerrors.ErrCodePackageNotFound, "package %s not found", q.Name)
}

// Batch resolves every query concurrently, one lookup per package.
//
// Queries are deduplicated by name; the first constraint seen for a name
// wins. Every query runs to completion: the returned maps partition the
// distinct names into resolved versions and per-package errors, each error
// attributed with [cerrors.ForPackage]. Cancelling ctx fails the queries
// still outstanding with the context's error.
func Batch(ctx context.Context, r Resolver, queries []Query) (map[string]string, map[string]error) {
	seen := make(map[string]bool, len(queries))
	unique := make([]Query, 0, len(queries))
	for _, q := range queries {
		if !seen[q.Name] {
			seen[q.Name] = true
			unique = append(unique, q)
		}
	}

	resolved, failed := BatchQueries(ctx, r, unique)
	versions := make(map[string]string, len(resolved))
	for q, v := range resolved {
		versions[q.Name] = v
	}
	failures := make(map[string]error, len(failed))
	for q, err := range failed {
		failures[q.Name] = err
	}
	return versions, failures
}

// BatchQueries is like [Batch] but deduplicates by the whole query, so the
// same package asked for under two constraints is resolved twice.
func BatchQueries(ctx context.Context, r Resolver, queries []Query) (map[Query]string, map[Query]error) {
	versions := make(map[Query]string)
	failures := make(map[Query]error)
	var mu sync.Mutex

	seen := make(map[Query]bool, len(queries))
	g := new(errgroup.Group)
	g.SetLimit(workers)

	for _, q := range queries {
		if seen[q] {
			continue
		}
		seen[q] = true

		g.Go(func() error {
			v, err := resolveOne(ctx, r, q)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures[q] = cerrors.ForPackage(q.Name, err)
			} else {
				versions[q] = v
			}
			return nil
		})
	}
	_ = g.Wait()

	return versions, failures
}

func resolveOne(ctx context.Context, r Resolver, q Query) (v string, err error) {
	hooks := observability.Resolve()
	hooks.OnResolveStart(ctx, q.Name)
	start := time.Now()
	defer func() {
		hooks.OnResolveComplete(ctx, q.Name, v, time.Since(start), err)
	}()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	defer func() {
		if p := recover(); p != nil {
			err = cerrors.New(cerrors.ErrCodeInternal, "resolver panicked: %v", p)
		}
	}()
	v, err = r.Resolve(ctx, q)
	if err == nil && v == "" {
		err = fmt.Errorf("resolver returned no version for %s", q.Name)
	}
	return v, err
}
