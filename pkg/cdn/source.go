package cdn

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Candidate is a URL-shaped string taken from a source, with its location.
type Candidate struct {
	URL string

	// Start and End are byte offsets into a text source.
	Start, End int

	// Node and Attr identify the attribute a node source read URL from.
	Node *html.Node
	Attr string
}

// Source yields candidate URLs for an [Extractor] in document order.
type Source interface {
	Candidates(g *Grammar) []Candidate
}

// Text is a flat document. Every URL on an allow-listed host is a
// candidate, whatever markup surrounds it.
type Text string

// Candidates implements [Source].
func (t Text) Candidates(g *Grammar) []Candidate {
	return g.scan(string(t))
}

// Nodes is a parsed HTML tree. Candidates are the src of every <script>
// and the href of every stylesheet <link> under Root.
type Nodes struct {
	Root *html.Node
}

// Candidates implements [Source].
func (s Nodes) Candidates(*Grammar) []Candidate {
	var out []Candidate
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if c, ok := candidateOf(n); ok {
			out = append(out, c)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	if s.Root != nil {
		walk(s.Root)
	}
	return out
}

// Element is a single HTML element.
type Element struct {
	Node *html.Node
}

// Candidates implements [Source].
func (s Element) Candidates(*Grammar) []Candidate {
	if c, ok := candidateOf(s.Node); ok {
		return []Candidate{c}
	}
	return nil
}

// URLAttr returns the attribute of n that holds a CDN URL, or "" when the
// element is not a script or a stylesheet link.
func URLAttr(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	switch n.DataAtom {
	case atom.Script:
		return "src"
	case atom.Link:
		if rel, ok := attr(n, "rel"); ok && hasToken(rel, "stylesheet") {
			return "href"
		}
	}
	return ""
}

func candidateOf(n *html.Node) (Candidate, bool) {
	key := URLAttr(n)
	if key == "" {
		return Candidate{}, false
	}
	val, ok := attr(n, key)
	if !ok {
		return Candidate{}, false
	}
	return Candidate{URL: val, Node: n, Attr: key}, true
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

// hasToken reports whether the space-separated list contains tok,
// ignoring ASCII case.
func hasToken(list, tok string) bool {
	for _, f := range strings.Fields(list) {
		if strings.EqualFold(f, tok) {
			return true
		}
	}
	return false
}
