package cdn

import (
	"errors"
	"regexp"
	"slices"
	"strings"

	cerrors "github.com/matzehuels/cdnm/pkg/errors"
)

// ErrNotCDN is returned by [Grammar.Parse] for URLs that do not point at a
// package on an allow-listed CDN. It is never surfaced by the [Extractor].
var ErrNotCDN = errors.New("not a CDN package URL")

// DefaultHosts returns the CDN bases recognised when no allow-list is configured.
func DefaultHosts() []string {
	return []string{"cdn.jsdelivr.net/npm", "unpkg.com"}
}

// stop lists the characters that end a URL embedded in markup or CSS:
// whitespace, quotes, backticks, angle brackets, ")" and ";".
const stop = "\\s\"'`<>);"

// candidatePath matches the path of a URL in text. Outside a version
// specifier it stops at any [stop] character. After an "@" an angle
// bracket is kept when it starts a comparison such as ">=1.0.0" or
// "<2", so "a@<2.0.0" is one URL while "a@1.0.0</p>" ends at "<".
const candidatePath = "/(?:[^" + stop + "@]|@(?:[^" + stop + "/?]|[<>]=?[0-9vxX*])*)*"

// pathPattern is the grammar of everything after the host.
const pathPattern = `^/((?:@[^/@?]+/)?[^/@?]+)(?:@([^/?]+))?(/[^?]*)?(?:\?(.*))?$`

// Grammar is a compiled CDN URL grammar for one host allow-list.
// It is immutable and safe for concurrent use.
type Grammar struct {
	hosts     []string
	candidate *regexp.Regexp
	url       *regexp.Regexp
	path      *regexp.Regexp
}

// NewGrammar compiles the grammar for the given CDN bases. With no hosts,
// [DefaultHosts] is used. Each host is a hostname optionally followed by
// path segments, without scheme or trailing slash.
func NewGrammar(hosts ...string) (*Grammar, error) {
	if len(hosts) == 0 {
		hosts = DefaultHosts()
	}

	var clean []string
	for _, h := range hosts {
		h = strings.TrimSpace(h)
		if err := cerrors.ValidateHost(h); err != nil {
			return nil, err
		}
		if !slices.Contains(clean, h) {
			clean = append(clean, h)
		}
	}

	// Longest first, so "cdn.example.com/npm" wins over "cdn.example.com".
	alts := slices.Clone(clean)
	slices.SortStableFunc(alts, func(a, b string) int { return len(b) - len(a) })
	for i, h := range alts {
		alts[i] = regexp.QuoteMeta(h)
	}
	hostGroup := "(" + strings.Join(alts, "|") + ")"

	return &Grammar{
		hosts:     clean,
		candidate: regexp.MustCompile(`(https?)://` + hostGroup + `(` + candidatePath + `)?`),
		url:       regexp.MustCompile(`^(https?)://` + hostGroup + `(/.*)?$`),
		path:      regexp.MustCompile(pathPattern),
	}, nil
}

// MustGrammar is like [NewGrammar] but panics on an invalid host.
func MustGrammar(hosts ...string) *Grammar {
	g, err := NewGrammar(hosts...)
	if err != nil {
		panic(err)
	}
	return g
}

// Hosts returns the allow-listed CDN bases.
func (g *Grammar) Hosts() []string { return slices.Clone(g.hosts) }

// Parse parses a single URL.
//
// It returns [ErrNotCDN] when raw is not on an allow-listed host or is a bare
// host, and a MALFORMED_REFERENCE error when the host matches but the
// name/spec grammar does not.
func (g *Grammar) Parse(raw string) (Reference, error) {
	raw = strings.TrimSpace(raw)
	m := g.url.FindStringSubmatch(raw)
	if m == nil {
		return Reference{}, ErrNotCDN
	}
	return g.parsePath(raw, m[1], m[2], m[3])
}

func (g *Grammar) parsePath(raw, scheme, host, path string) (Reference, error) {
	if path == "" || path == "/" || strings.HasPrefix(path, "/?") || strings.HasPrefix(path, "/#") {
		return Reference{}, ErrNotCDN
	}
	m := g.path.FindStringSubmatch(path)
	if m == nil {
		return Reference{}, cerrors.New(cerrors.ErrCodeMalformedReference, "malformed CDN URL %q", raw)
	}
	return Reference{
		Raw:     raw,
		Scheme:  scheme,
		Host:    host,
		Name:    m[1],
		Spec:    m[2],
		Subpath: m[3],
		Query:   m[4],
	}, nil
}

// scan returns every URL-shaped run on an allow-listed host in text.
func (g *Grammar) scan(text string) []Candidate {
	var out []Candidate
	for _, loc := range g.candidate.FindAllStringIndex(text, -1) {
		out = append(out, Candidate{URL: text[loc[0]:loc[1]], Start: loc[0], End: loc[1]})
	}
	return out
}
