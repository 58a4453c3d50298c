package cli

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cdnm/internal/config"
	"github.com/matzehuels/cdnm/pkg/cache"
	"github.com/matzehuels/cdnm/pkg/integrations/npm"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the registry response cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached registry responses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if c.Config.Cache.Backend == config.CacheRedis {
				return c.clearRedis(cmd.Context(), w)
			}

			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			count, err := clearDir(dir)
			if err != nil {
				return err
			}
			if count == 0 {
				printInfo(w, "Cache is empty")
				return nil
			}
			printSuccess(w, "Cleared %d cached entries", count)
			printDetail(w, "Directory: %s", dir)
			return nil
		},
	}
}

// clearRedis deletes the registry entries cdnm stored in Redis. The local
// cache directory is not used with this backend and is left alone.
func (c *CLI) clearRedis(ctx context.Context, w io.Writer) error {
	rc, err := cache.NewRedisCache(ctx, c.Config.Cache.RedisURL)
	if err != nil {
		return fmt.Errorf("open redis cache: %w", err)
	}
	defer rc.Close()

	count, err := rc.Clear(ctx, npm.CachePrefix)
	if err != nil {
		return fmt.Errorf("clear redis cache: %w", err)
	}
	if count == 0 {
		printInfo(w, "Cache is empty")
		return nil
	}
	printSuccess(w, "Cleared %d cached entries", count)
	printDetail(w, "Redis: %s", redactURL(c.Config.Cache.RedisURL))
	return nil
}

// redactURL hides the password of a redis URL.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Redacted()
}

// clearDir removes every file below dir and then the empty directories,
// keeping dir itself. It returns the number of files removed.
func clearDir(dir string) (int, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return 0, nil
	}

	count := 0
	var dirs []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || path == dir {
			return nil
		}
		if d.IsDir() {
			dirs = append(dirs, path)
			return nil
		}
		if os.Remove(path) == nil {
			count++
		}
		return nil
	})
	if err != nil {
		return count, err
	}
	for i := len(dirs) - 1; i >= 0; i-- {
		os.Remove(dirs[i])
	}
	return count, nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

