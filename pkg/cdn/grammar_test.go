package cdn

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	cerrors "github.com/matzehuels/cdnm/pkg/errors"
)

func TestGrammarParse(t *testing.T) {
	t.Parallel()

	g := MustGrammar()

	tests := []struct {
		name string
		raw  string
		want Reference
	}{
		{
			name: "exact version with subpath",
			raw:  "https://unpkg.com/react@16.0.0/umd/react.production.min.js",
			want: Reference{Scheme: "https", Host: "unpkg.com", Name: "react", Spec: "16.0.0", Subpath: "/umd/react.production.min.js"},
		},
		{
			name: "no version",
			raw:  "https://unpkg.com/react",
			want: Reference{Scheme: "https", Host: "unpkg.com", Name: "react"},
		},
		{
			name: "trailing slash",
			raw:  "https://unpkg.com/react@16/",
			want: Reference{Scheme: "https", Host: "unpkg.com", Name: "react", Spec: "16", Subpath: "/"},
		},
		{
			name: "scoped package on jsdelivr",
			raw:  "http://cdn.jsdelivr.net/npm/@babel/standalone@7.0.0/babel.min.js",
			want: Reference{Scheme: "http", Host: "cdn.jsdelivr.net/npm", Name: "@babel/standalone", Spec: "7.0.0", Subpath: "/babel.min.js"},
		},
		{
			name: "tag",
			raw:  "https://unpkg.com/react@next",
			want: Reference{Scheme: "https", Host: "unpkg.com", Name: "react", Spec: "next"},
		},
		{
			name: "range",
			raw:  "https://unpkg.com/react@^16.0.0/index.js",
			want: Reference{Scheme: "https", Host: "unpkg.com", Name: "react", Spec: "^16.0.0", Subpath: "/index.js"},
		},
		{
			name: "query without version",
			raw:  "https://unpkg.com/react?module",
			want: Reference{Scheme: "https", Host: "unpkg.com", Name: "react", Query: "module"},
		},
		{
			name: "query after version",
			raw:  "https://unpkg.com/react@16.0.0?module&x=1",
			want: Reference{Scheme: "https", Host: "unpkg.com", Name: "react", Spec: "16.0.0", Query: "module&x=1"},
		},
		{
			name: "surrounding whitespace",
			raw:  "  https://unpkg.com/react@16.0.0 ",
			want: Reference{Scheme: "https", Host: "unpkg.com", Name: "react", Spec: "16.0.0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := g.Parse(tt.raw)
			require.NoError(t, err)
			tt.want.Raw = got.Raw
			require.Equal(t, tt.want, got)
		})
	}
}

func TestGrammarParseNotCDN(t *testing.T) {
	t.Parallel()

	g := MustGrammar()
	for _, raw := range []string{
		"https://unpkg.com",
		"https://unpkg.com/",
		"https://cdn.jsdelivr.net/npm/",
		"https://unpkg.com/?utm=1",
		"https://cdn.jsdelivr.net/npm/?x",
		"https://unpkg.com/#top",
		"https://example.com/react@16.0.0",
		"https://unpkg.com.evil.example/react",
		"ftp://unpkg.com/react",
		"/static/react.js",
		"",
	} {
		_, err := g.Parse(raw)
		require.ErrorIs(t, err, ErrNotCDN, raw)
	}
}

func TestGrammarScan(t *testing.T) {
	t.Parallel()

	g := MustGrammar()
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"quoted attribute", `<script src="https://unpkg.com/a@1.0.0/x.js"></script>`, []string{"https://unpkg.com/a@1.0.0/x.js"}},
		{"less than range", `<script src="https://unpkg.com/a@<2.0.0"></script>`, []string{"https://unpkg.com/a@<2.0.0"}},
		{"greater or equal range", `src='https://unpkg.com/a@>=1.0.0/x.js'`, []string{"https://unpkg.com/a@>=1.0.0/x.js"}},
		{"compound range", `"https://unpkg.com/a@>1.0.0<=2.0.0"`, []string{"https://unpkg.com/a@>1.0.0<=2.0.0"}},
		{"closing tag after version", `<p>https://unpkg.com/a@1.0.0</p>`, []string{"https://unpkg.com/a@1.0.0"}},
		{"tag after version", `https://unpkg.com/a@1.0.0<br>`, []string{"https://unpkg.com/a@1.0.0"}},
		{"css url", `src: url(https://unpkg.com/font@1.0.0/f.woff2);`, []string{"https://unpkg.com/font@1.0.0/f.woff2"}},
		{"css import", `@import "https://unpkg.com/a@1.0.0/a.css";`, []string{"https://unpkg.com/a@1.0.0/a.css"}},
		{"scoped", "`https://unpkg.com/@s/p@^1/x.js`", []string{"https://unpkg.com/@s/p@^1/x.js"}},
		{"two in a row", `https://unpkg.com/a@1 https://unpkg.com/b`, []string{"https://unpkg.com/a@1", "https://unpkg.com/b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var got []string
			for _, c := range g.scan(tt.text) {
				got = append(got, c.URL)
				require.Equal(t, c.URL, tt.text[c.Start:c.End])
			}
			require.Equal(t, tt.want, got)
		})
	}
}

func TestGrammarParseMalformed(t *testing.T) {
	t.Parallel()

	g := MustGrammar()
	for _, raw := range []string{
		"https://unpkg.com/react@/index.js",
		"https://unpkg.com/react@",
		"https://unpkg.com/@scope/",
		"https://unpkg.com/@scope",
		"https://unpkg.com/@/x",
	} {
		_, err := g.Parse(raw)
		require.Error(t, err, raw)
		require.False(t, errors.Is(err, ErrNotCDN), raw)
		require.True(t, cerrors.Is(err, cerrors.ErrCodeMalformedReference), raw)
	}
}

func TestNewGrammarCustomHosts(t *testing.T) {
	t.Parallel()

	g, err := NewGrammar("esm.sh", "cdn.example.com", "cdn.example.com/npm")
	require.NoError(t, err)
	require.Equal(t, []string{"esm.sh", "cdn.example.com", "cdn.example.com/npm"}, g.Hosts())

	ref, err := g.Parse("https://cdn.example.com/npm/react@18")
	require.NoError(t, err)
	require.Equal(t, "cdn.example.com/npm", ref.Host)
	require.Equal(t, "react", ref.Name)

	_, err = g.Parse("https://unpkg.com/react@18")
	require.ErrorIs(t, err, ErrNotCDN)
}

func TestNewGrammarInvalidHost(t *testing.T) {
	t.Parallel()

	for _, h := range []string{"https://unpkg.com", "unpkg.com/", "has space.com", ""} {
		_, err := NewGrammar(h)
		require.Error(t, err, h)
	}
}

func TestReferenceURL(t *testing.T) {
	t.Parallel()

	g := MustGrammar()
	for _, raw := range []string{
		"https://unpkg.com/react@16.0.0/umd/react.production.min.js",
		"http://unpkg.com/react",
		"https://cdn.jsdelivr.net/npm/@babel/standalone@7/babel.min.js?x=1",
		"https://unpkg.com/react@next/",
	} {
		ref, err := g.Parse(raw)
		require.NoError(t, err)
		require.Equal(t, raw, ref.URL())
	}
}

func TestReferenceWithSpec(t *testing.T) {
	t.Parallel()

	g := MustGrammar()
	tests := []struct {
		raw  string
		spec string
		want string
	}{
		{"http://unpkg.com/react@16.0.0/index.js", "18.2.0", "https://unpkg.com/react@18.2.0/index.js"},
		{"https://unpkg.com/react", "", "https://unpkg.com/react"},
		{"http://unpkg.com/react?module", "", "https://unpkg.com/react?module"},
		{"https://unpkg.com/@a/b@1?q", "2", "https://unpkg.com/@a/b@2?q"},
	}
	for _, tt := range tests {
		ref, err := g.Parse(tt.raw)
		require.NoError(t, err)
		require.Equal(t, tt.want, ref.WithSpec(tt.spec))
	}
}

func TestReferencePURL(t *testing.T) {
	t.Parallel()

	g := MustGrammar()

	ref, err := g.Parse("https://unpkg.com/react@16.0.0")
	require.NoError(t, err)
	require.Equal(t, "pkg:npm/react@16.0.0", ref.PURL())

	ref, err = g.Parse("https://unpkg.com/react")
	require.NoError(t, err)
	require.Equal(t, "pkg:npm/react", ref.PURL())
	require.Empty(t, ref.Scope())

	ref, err = g.Parse("https://unpkg.com/@babel/core@7.0.0")
	require.NoError(t, err)
	require.Equal(t, "@babel", ref.Scope())
	require.Contains(t, ref.PURL(), "/core@7.0.0")
	require.Contains(t, ref.PURL(), "babel")
}
