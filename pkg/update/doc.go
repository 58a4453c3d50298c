// Package update rewrites the version specifiers of CDN package references.
//
// For every distinct package in a document the [Updater] asks a
// [resolver.Resolver] for the latest version once, then computes each
// reference's new specifier with [Next]:
//
//	absent     https://unpkg.com/react            stays absent
//	exact      react@16.0.0      -> react@18.2.0  never downgraded
//	range      react@^16.0.0     -> react@^18.2.0 kept when already satisfied
//	tag        react@next                          never rewritten
//
// Text documents are rewritten into a new string by [Updater.Text]. Parsed
// HTML trees are updated in place by [Updater.Document], one goroutine per
// element; the caller reserializes the tree afterwards.
//
// A [FailurePolicy] decides what a per-package resolver failure means:
// [AllOrNothing] fails the call before anything is rewritten, [BestEffort]
// leaves the failed packages untouched and reports them alongside the
// partial result.
package update
