package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cdnm/internal/config"
	"github.com/matzehuels/cdnm/pkg/buildinfo"
	"github.com/matzehuels/cdnm/pkg/cache"
	"github.com/matzehuels/cdnm/pkg/integrations/npm"
	"github.com/matzehuels/cdnm/pkg/observability"
	"github.com/matzehuels/cdnm/pkg/resolver"
	"github.com/matzehuels/cdnm/pkg/update"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "cdnm"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before every command runs.
	Config *config.Config

	configPath string
	noCache    bool
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "cdnm updates npm packages referenced by CDN URLs in HTML",
		Long: `cdnm (CDN manager) finds npm packages loaded from unpkg or jsDelivr URLs in HTML
files and rewrites their versions to the latest release, keeping ranges and tags intact.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&c.configPath, "config", "", "config file (default ./"+config.DefaultConfigFile+" if present)")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the registry response cache")

	root.AddCommand(c.listCommand())
	root.AddCommand(c.updateCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup runs before every command: it applies --verbose, loads the config
// file and attaches the logger to the command context.
func (c *CLI) setup(cmd *cobra.Command, _ []string) error {
	if c.verbose {
		c.SetLogLevel(LogDebug)
		hooks := &logHooks{logger: c.Logger}
		observability.SetResolveHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetHTTPHooks(hooks)
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	if cfg.Path() != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path())
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))
	return nil
}

// =============================================================================
// Updater Factory
// =============================================================================

// newUpdater wires the configured cache, registry and policies into an
// updater. The returned close function releases the cache.
func (c *CLI) newUpdater(ctx context.Context, refresh bool) (*update.Updater, func() error, error) {
	g, err := c.Config.Grammar()
	if err != nil {
		return nil, nil, err
	}
	store, err := c.newCache(ctx)
	if err != nil {
		return nil, nil, err
	}

	client := npm.NewClient(store, c.Config.Registry, c.Config.Cache.TTL.Duration)
	u := update.New(resolver.NewNPM(client, refresh), g, c.Logger)
	u.TextMode = c.Config.TextMode()
	u.NodeMode = c.Config.HTMLMode()
	return u, store.Close, nil
}

// newCache opens the configured cache backend. --no-cache and the "none"
// backend disable caching; an unusable file cache directory falls back to
// no cache.
func (c *CLI) newCache(ctx context.Context) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, c.Config.Cache.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("open redis cache: %w", err)
		}
		return rc, nil
	}

	dir, err := cacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/cdnm/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
