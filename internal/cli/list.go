package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/cdnm/pkg/cdn"
	cerrors "github.com/matzehuels/cdnm/pkg/errors"
)

// Output formats for the list command.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// listEntry is one package in machine-readable list output.
type listEntry struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	PURL    string `json:"purl" yaml:"purl"`
}

type listOptions struct {
	format string
	html   bool
}

// listCommand creates the list command.
func (c *CLI) listCommand() *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list <path>",
		Short: "List the packages referenced by CDN URLs in a file",
		Long: `List the npm packages loaded from CDN URLs in an HTML file, with the version
specifier of each. Packages without a specifier float to the latest release.`,
		Example: `  cdnm list index.html
  cdnm list index.html --format json
  cdnm list index.html --html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runList(cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", formatText, "output format: text, json, yaml")
	cmd.Flags().BoolVar(&opts.html, "html", false, "parse the file as HTML and only read script and stylesheet elements")

	return cmd
}

func (c *CLI) runList(w io.Writer, path string, opts listOptions) error {
	switch opts.format {
	case formatText, formatJSON, formatYAML:
	default:
		return cerrors.New(cerrors.ErrCodeInvalidFormat, "unknown format %q (want %s, %s or %s)", opts.format, formatText, formatJSON, formatYAML)
	}

	data, err := readDocument(path)
	if err != nil {
		return err
	}
	g, err := c.Config.Grammar()
	if err != nil {
		return err
	}

	var set *cdn.Set
	if opts.html {
		root, err := html.Parse(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		set, err = cdn.NewExtractor(g, c.Config.HTMLMode().Extract, c.Logger).Extract(cdn.Nodes{Root: root})
		if err != nil {
			return err
		}
	} else {
		set, err = cdn.NewExtractor(g, c.Config.TextMode().Extract, c.Logger).Extract(cdn.Text(data))
		if err != nil {
			return err
		}
	}

	return writeList(w, set, opts.format)
}

func writeList(w io.Writer, set *cdn.Set, format string) error {
	entries := listEntries(set)

	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return err
		}
		return enc.Close()
	}

	if len(entries) == 0 {
		printInfo(w, "No CDN packages found")
		return nil
	}
	width := 0
	for _, e := range entries {
		width = max(width, len(e.Name))
	}
	for _, e := range entries {
		printPackage(w, e.Name, e.Version, width)
	}
	return nil
}

// listEntries returns one entry per package, taken from its first reference.
func listEntries(set *cdn.Set) []listEntry {
	entries := make([]listEntry, 0, len(set.Names()))
	seen := make(map[string]bool)
	for _, ref := range set.References() {
		if seen[ref.Name] {
			continue
		}
		seen[ref.Name] = true
		entries = append(entries, listEntry{Name: ref.Name, Version: ref.Spec, PURL: ref.PURL()})
	}
	return entries
}

// readDocument validates path and reads the file.
func readDocument(path string) ([]byte, error) {
	if err := cerrors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cerrors.Wrap(cerrors.ErrCodeInvalidPath, err, "read %s", path)
	}
	return data, nil
}
