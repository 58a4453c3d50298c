package cdn

import (
	"strings"

	"github.com/package-url/packageurl-go"
	"golang.org/x/net/html"
)

// Reference is one package reference found in a document.
type Reference struct {
	// Raw is the URL exactly as it appeared in the source.
	Raw string

	// Scheme is "http" or "https".
	Scheme string

	// Host is the allow-listed CDN base the URL matched.
	Host string

	// Name is the package name, "pkg" or "@scope/pkg".
	Name string

	// Spec is the version specifier, or "" when the URL has none.
	Spec string

	// Subpath is the file path inside the package, including its leading
	// slash, or "".
	Subpath string

	// Query is the query string without "?", or "".
	Query string

	// Start and End locate Raw in a text source. Both are zero for
	// references read from a node tree.
	Start, End int

	// Node and Attr locate the reference in a node tree.
	Node *html.Node
	Attr string
}

// HasSpec reports whether the URL carries a version specifier.
func (r Reference) HasSpec() bool { return r.Spec != "" }

// Scope returns the "@scope" part of a scoped package name, or "".
func (r Reference) Scope() string {
	if scope, _, ok := strings.Cut(r.Name, "/"); ok {
		return scope
	}
	return ""
}

// URL rebuilds the reference from its parts with its original scheme.
// For any reference with a non-empty query, URL() == Raw.
func (r Reference) URL() string {
	return buildURL(r.Scheme, r.Host, r.Name, r.Spec, r.Subpath, r.Query)
}

// WithSpec rebuilds the reference as an https URL with spec replacing the
// version specifier. An empty spec drops the "@" separator.
func (r Reference) WithSpec(spec string) string {
	return buildURL("https", r.Host, r.Name, spec, r.Subpath, r.Query)
}

// PURL returns the package URL (pkg:npm/...) identifying the referenced
// package and version specifier.
func (r Reference) PURL() string {
	var namespace, name = "", r.Name
	if scope := r.Scope(); scope != "" {
		namespace, name = scope, strings.TrimPrefix(r.Name, scope+"/")
	}
	return packageurl.NewPackageURL(packageurl.TypeNPM, namespace, name, r.Spec, nil, "").ToString()
}

// SetURL replaces the attribute holding this reference on its node.
// It reports false when the reference was not read from a node tree.
func (r Reference) SetURL(u string) bool {
	if r.Node == nil {
		return false
	}
	for i := range r.Node.Attr {
		if r.Node.Attr[i].Namespace == "" && strings.EqualFold(r.Node.Attr[i].Key, r.Attr) {
			r.Node.Attr[i].Val = u
			return true
		}
	}
	return false
}

func buildURL(scheme, host, name, spec, subpath, query string) string {
	var b strings.Builder
	b.WriteString(scheme)
	b.WriteString("://")
	b.WriteString(host)
	b.WriteByte('/')
	b.WriteString(name)
	if spec != "" {
		b.WriteByte('@')
		b.WriteString(spec)
	}
	b.WriteString(subpath)
	if query != "" {
		b.WriteByte('?')
		b.WriteString(query)
	}
	return b.String()
}
