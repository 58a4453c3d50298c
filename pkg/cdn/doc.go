// Package cdn extracts npm package references from CDN URLs in HTML.
//
// # Overview
//
// A CDN URL names a package, optionally pinned to a version specifier and
// optionally to a file inside the package:
//
//	https://unpkg.com/react@^18.2.0/umd/react.production.min.js?module
//	\_____/ \_______/ \___/ \_____/ \____________________________/ \____/
//	scheme    host    name   spec             subpath              query
//
// Only allow-listed hosts are recognised ([DefaultHosts]: unpkg.com and
// cdn.jsdelivr.net/npm). URLs on any other host are not references at all.
//
// # Grammar
//
// A [Grammar] is an immutable, compiled definition of the URL shape for one
// host allow-list. [Grammar.Parse] turns a single URL into a [Reference]:
//
//   - name is "pkg" or "@scope/pkg"; neither segment contains "@" or "/"
//   - spec is everything between "@" and the next "/" or "?", kept opaque
//   - subpath runs from the next "/" up to "?", kept verbatim
//   - query is everything after "?", kept verbatim
//
// A bare host ("https://unpkg.com", "https://unpkg.com/") is not a reference.
// A URL on an allow-listed host that violates the grammar ("react@/index.js")
// is a MALFORMED_REFERENCE error.
//
// # Sources
//
// The [Extractor] reads candidate URLs from a [Source]:
//
//   - [Text]: every URL-shaped run in a flat string, regardless of markup
//   - [Nodes]: the src of <script> elements and the href of stylesheet
//     <link> elements in a parsed HTML tree, in document order
//   - [Element]: a single element
//
// # Policies
//
// A [Policy] decides what happens when the same package appears with two
// different specifiers ([ConflictReject] or [ConflictIndependent]) and when a
// malformed reference is found ([MalformedFail] or [MalformedSkip]).
// [TextPolicy] rejects both, because a text rewrite is one global
// substitution; [NodePolicy] tolerates both, because each element is updated
// on its own.
package cdn
