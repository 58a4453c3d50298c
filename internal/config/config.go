// Package config loads the optional .cdnm.toml configuration file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/cdnm/pkg/cdn"
	cerrors "github.com/matzehuels/cdnm/pkg/errors"
	"github.com/matzehuels/cdnm/pkg/integrations"
	"github.com/matzehuels/cdnm/pkg/integrations/npm"
	"github.com/matzehuels/cdnm/pkg/update"
)

// DefaultConfigFile is read from the working directory when --config is
// not given.
const DefaultConfigFile = ".cdnm.toml"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config is the decoded configuration file.
type Config struct {
	Hosts    []string    `toml:"hosts"`
	Registry string      `toml:"registry"`
	Cache    CacheConfig `toml:"cache"`
	Text     ModeConfig  `toml:"text"`
	HTML     ModeConfig  `toml:"html"`

	path string
}

// CacheConfig selects where registry responses are cached.
type CacheConfig struct {
	Backend  string   `toml:"backend"`
	TTL      Duration `toml:"ttl"`
	RedisURL string   `toml:"redis_url"`
}

// ModeConfig overrides the policies of one input mode. Empty fields keep
// the mode's defaults.
type ModeConfig struct {
	Conflicts string `toml:"conflicts"`
	Malformed string `toml:"malformed"`
	Failures  string `toml:"failures"`
}

// Duration is a time.Duration decoded from strings like "12h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Hosts:    cdn.DefaultHosts(),
		Registry: npm.DefaultRegistry,
		Cache: CacheConfig{
			Backend: CacheFile,
			TTL:     Duration{integrations.DefaultCacheTTL},
		},
	}
}

// Load reads the configuration at path. An empty path reads
// DefaultConfigFile if it exists and falls back to [Default] otherwise;
// an explicit path must exist.
func Load(path string) (*Config, error) {
	path = strings.TrimSpace(path)
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: config file cannot be found (%s)", ErrConfigLoadFailed, path)
		}
		return nil, fmt.Errorf("%w: failed to stat config file (%s): %w", ErrConfigLoadFailed, path, err)
	}

	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode config from file (%s): %w", ErrConfigLoadFailed, path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: unknown key %q in %s", ErrConfigLoadFailed, undecoded[0].String(), path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: failed to validate config (%s): %w", ErrConfigLoadFailed, path, err)
	}
	cfg.path = path

	return cfg, nil
}

// Path returns the file the configuration was loaded from, or "".
func (c *Config) Path() string { return c.path }

// Validate checks every field and fills in defaults for empty ones.
func (c *Config) Validate() error {
	if len(c.Hosts) == 0 {
		c.Hosts = cdn.DefaultHosts()
	}
	for _, h := range c.Hosts {
		if err := cerrors.ValidateHost(h); err != nil {
			return cerrors.Wrap(cerrors.ErrCodeInvalidConfig, err, "hosts")
		}
	}

	if c.Registry == "" {
		c.Registry = npm.DefaultRegistry
	}
	if err := cerrors.ValidateURL(c.Registry); err != nil {
		return cerrors.Wrap(cerrors.ErrCodeInvalidConfig, err, "registry")
	}

	switch c.Cache.Backend {
	case "":
		c.Cache.Backend = CacheFile
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return cerrors.New(cerrors.ErrCodeInvalidConfig, "cache.redis_url is required for the redis backend")
		}
		if _, err := redis.ParseURL(c.Cache.RedisURL); err != nil {
			return cerrors.Wrap(cerrors.ErrCodeInvalidConfig, err, "cache.redis_url")
		}
	default:
		return cerrors.New(cerrors.ErrCodeInvalidConfig, "unknown cache backend %q (want %s, %s or %s)",
			c.Cache.Backend, CacheFile, CacheRedis, CacheNone)
	}
	if c.Cache.TTL.Duration < 0 {
		return cerrors.New(cerrors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	if c.Cache.TTL.Duration == 0 {
		c.Cache.TTL.Duration = integrations.DefaultCacheTTL
	}

	if _, err := c.Text.apply(update.TextMode()); err != nil {
		return cerrors.Wrap(cerrors.ErrCodeInvalidConfig, err, "text")
	}
	if _, err := c.HTML.apply(update.NodeMode()); err != nil {
		return cerrors.Wrap(cerrors.ErrCodeInvalidConfig, err, "html")
	}
	return nil
}

// TextMode returns the policies for text documents.
func (c *Config) TextMode() update.Mode {
	m, _ := c.Text.apply(update.TextMode())
	return m
}

// HTMLMode returns the policies for parsed HTML documents.
func (c *Config) HTMLMode() update.Mode {
	m, _ := c.HTML.apply(update.NodeMode())
	return m
}

// Grammar compiles the host allow-list.
func (c *Config) Grammar() (*cdn.Grammar, error) {
	return cdn.NewGrammar(c.Hosts...)
}

func (m ModeConfig) apply(base update.Mode) (update.Mode, error) {
	if m.Conflicts != "" {
		p, err := cdn.ParseConflictPolicy(m.Conflicts)
		if err != nil {
			return base, err
		}
		base.Extract.Conflicts = p
	}
	if m.Malformed != "" {
		p, err := cdn.ParseMalformedPolicy(m.Malformed)
		if err != nil {
			return base, err
		}
		base.Extract.Malformed = p
	}
	if m.Failures != "" {
		p, err := update.ParseFailurePolicy(m.Failures)
		if err != nil {
			return base, err
		}
		base.Failures = p
	}
	return base, nil
}
