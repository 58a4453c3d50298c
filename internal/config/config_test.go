package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/matzehuels/cdnm/pkg/cdn"
	cerrors "github.com/matzehuels/cdnm/pkg/errors"
	"github.com/matzehuels/cdnm/pkg/integrations/npm"
	"github.com/matzehuels/cdnm/pkg/update"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Empty(t, cfg.Path())
	require.Equal(t, update.TextMode(), cfg.TextMode())
	require.Equal(t, update.NodeMode(), cfg.HTMLMode())
}

func TestLoadExplicitMissing(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.ErrorIs(t, err, ErrConfigLoadFailed)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
hosts = ["unpkg.com", "esm.sh"]
registry = "https://registry.example.com"

[cache]
backend = "redis"
ttl = "2h"
redis_url = "redis://localhost:6379/0"

[text]
conflicts = "independent"

[html]
malformed = "fail"
failures = "all"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, path, cfg.Path())
	require.Equal(t, []string{"unpkg.com", "esm.sh"}, cfg.Hosts)
	require.Equal(t, "https://registry.example.com", cfg.Registry)
	require.Equal(t, CacheRedis, cfg.Cache.Backend)
	require.Equal(t, 2*time.Hour, cfg.Cache.TTL.Duration)

	text := cfg.TextMode()
	require.Equal(t, cdn.ConflictIndependent, text.Extract.Conflicts)
	require.Equal(t, cdn.MalformedFail, text.Extract.Malformed)
	require.Equal(t, update.AllOrNothing, text.Failures)

	node := cfg.HTMLMode()
	require.Equal(t, cdn.ConflictIndependent, node.Extract.Conflicts)
	require.Equal(t, cdn.MalformedFail, node.Extract.Malformed)
	require.Equal(t, update.AllOrNothing, node.Failures)

	g, err := cfg.Grammar()
	require.NoError(t, err)
	require.Equal(t, []string{"unpkg.com", "esm.sh"}, g.Hosts())
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, `[cache]
backend = "none"
`))
	require.NoError(t, err)
	require.Equal(t, cdn.DefaultHosts(), cfg.Hosts)
	require.Equal(t, npm.DefaultRegistry, cfg.Registry)
	require.Equal(t, CacheNone, cfg.Cache.Backend)
	require.Equal(t, 24*time.Hour, cfg.Cache.TTL.Duration)
}

func TestLoadInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"bad toml", `hosts = [`},
		{"unknown key", `colour = "blue"`},
		{"bad host", `hosts = ["https://unpkg.com"]`},
		{"bad registry", `registry = "registry.npmjs.org"`},
		{"bad backend", "[cache]\nbackend = \"memcached\""},
		{"redis without url", "[cache]\nbackend = \"redis\""},
		{"bad redis url", "[cache]\nbackend = \"redis\"\nredis_url = \"http://x\""},
		{"bad ttl", "[cache]\nttl = \"soon\""},
		{"negative ttl", "[cache]\nttl = \"-1h\""},
		{"bad conflicts", "[text]\nconflicts = \"merge\""},
		{"bad malformed", "[html]\nmalformed = \"ignore\""},
		{"bad failures", "[html]\nfailures = \"some\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(writeConfig(t, tt.content))
			require.ErrorIs(t, err, ErrConfigLoadFailed)
		})
	}
}

func TestValidateCodes(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Cache.Backend = "memcached"
	require.True(t, cerrors.Is(cfg.Validate(), cerrors.ErrCodeInvalidConfig))
}
