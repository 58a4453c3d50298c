package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"
	"golang.org/x/net/html"

	cerrors "github.com/matzehuels/cdnm/pkg/errors"
	"github.com/matzehuels/cdnm/pkg/update"
)

type updateOptions struct {
	html    bool
	dryRun  bool
	refresh bool
}

// updateCommand creates the update command.
func (c *CLI) updateCommand() *cobra.Command {
	var opts updateOptions

	cmd := &cobra.Command{
		Use:   "update <path>",
		Short: "Update CDN package versions in a file",
		Long: `Update every npm package loaded from a CDN URL in an HTML file to its latest
version and write the file back in place.

Exact versions are replaced, ranges are only rewritten when the latest version
falls outside them, and tags (latest, next) and unversioned URLs are kept.
The file is left untouched when any package fails to resolve.`,
		Example: `  cdnm update index.html
  cdnm update index.html --dry-run
  cdnm update index.html --html --refresh`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runUpdate(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.html, "html", false, "parse the file as HTML and update script and stylesheet elements independently")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the changes without writing the file")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass cached registry responses")

	return cmd
}

func (c *CLI) runUpdate(ctx context.Context, w io.Writer, path string, opts updateOptions) error {
	logger := loggerFromContext(ctx)

	data, err := readDocument(path)
	if err != nil {
		return err
	}

	u, closeCache, err := c.newUpdater(ctx, opts.refresh)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeCache(); err != nil {
			logger.Warn("close cache", "err", err)
		}
	}()

	var status io.Writer = os.Stderr
	if c.verbose {
		status = io.Discard
	}
	spin := newSpinner(ctx, status, "Resolving latest versions...")
	spin.Start()

	prog := newProgress(logger)
	var (
		res    *update.Result
		output []byte
	)
	if opts.html {
		res, output, err = updateHTML(ctx, u, data)
	} else {
		res, err = u.Text(ctx, string(data))
		if res != nil {
			output = []byte(res.Output)
		}
	}
	spin.Stop()
	if res != nil {
		prog.done(fmt.Sprintf("Checked %d packages", len(res.Packages)))
		printFailures(w, res.Failures)
	}
	if err != nil {
		if res != nil {
			printWarning(w, "%s was not modified", path)
		}
		return err
	}

	if len(res.Changes) == 0 {
		printSuccess(w, "%s is up to date", path)
		return nil
	}

	if opts.dryRun {
		printInfo(w, "Would update %d references in %s", len(res.Changes), path)
		printChanges(w, res.Changes)
		return nil
	}

	if err := writeFileAtomic(path, output); err != nil {
		return err
	}
	printSuccess(w, "Updated %d references in %s", len(res.Changes), path)
	printChanges(w, res.Changes)
	return nil
}

// updateHTML updates a parsed document and reserializes it.
func updateHTML(ctx context.Context, u *update.Updater, data []byte) (*update.Result, []byte, error) {
	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("parse html: %w", err)
	}
	res, err := u.Document(ctx, root)
	if res == nil {
		return nil, nil, err
	}
	var buf bytes.Buffer
	if rerr := html.Render(&buf, root); rerr != nil {
		return nil, nil, fmt.Errorf("render html: %w", rerr)
	}
	return res, buf.Bytes(), err
}

func printChanges(w io.Writer, changes []update.Change) {
	for _, c := range changes {
		if c.From == c.To {
			printDetail(w, "%s %s", c.URL, iconArrow+" "+c.NewURL)
			continue
		}
		printChange(w, c.Name, c.From, c.To)
	}
}

func printFailures(w io.Writer, failures map[string]error) {
	names := make([]string, 0, len(failures))
	for name := range failures {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		printError(w, "%s: %s", name, cerrors.UserMessage(failures[name]))
	}
}

// writeFileAtomic replaces path with data, keeping its permissions.
func writeFileAtomic(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return cerrors.Wrap(cerrors.ErrCodeInvalidPath, err, "stat %s", path)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return os.Rename(tmp.Name(), path)
}
