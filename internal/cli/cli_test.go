package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	cerrors "github.com/matzehuels/cdnm/pkg/errors"
	"github.com/matzehuels/cdnm/pkg/observability"
)

const fixture = `<!DOCTYPE html>
<html>
<head>
<link rel="stylesheet" href="https://unpkg.com/normalize.css@8.0.0/normalize.css">
</head>
<body>
<script src="https://unpkg.com/juggernaut@2.1.0/index.js"></script>
<script src="https://cdn.jsdelivr.net/npm/@scope/lib@^1.0.0/lib.js"></script>
<script src="https://unpkg.com/floating"></script>
</body>
</html>
`

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := executeWithLogs(t, args...)
	return out, err
}

// executeWithLogs is like execute but also returns what was logged.
func executeWithLogs(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	c := New(&logs, log.InfoLevel)
	root := c.RootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), logs.String(), err
}

// newRegistry serves packuments for the fixture's packages.
func newRegistry(t *testing.T) *httptest.Server {
	t.Helper()
	packuments := map[string]string{
		"/normalize.css": `{"name":"normalize.css","dist-tags":{"latest":"8.0.1"},"versions":{"8.0.0":{},"8.0.1":{}}}`,
		"/juggernaut":    `{"name":"juggernaut","dist-tags":{"latest":"2.1.1"},"versions":{"2.1.0":{},"2.1.1":{}}}`,
		"/@scope%2flib":  `{"name":"@scope/lib","dist-tags":{"latest":"2.0.0"},"versions":{"1.0.0":{},"2.0.0":{}}}`,
		"/floating":      `{"name":"floating","dist-tags":{"latest":"4.0.0"},"versions":{"4.0.0":{}}}`,
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := packuments[r.URL.EscapedPath()]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

// setupProject writes the fixture and a config pointing at registry into a
// temporary directory and returns the fixture path and the config path.
func setupProject(t *testing.T, registry, doc string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	file := filepath.Join(dir, "index.html")
	if err := os.WriteFile(file, []byte(doc), 0o640); err != nil {
		t.Fatal(err)
	}
	cfg := filepath.Join(dir, "cdnm.toml")
	content := "registry = \"" + registry + "\"\n\n[cache]\nbackend = \"none\"\n"
	if err := os.WriteFile(cfg, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return file, cfg
}

func TestRootCommand(t *testing.T) {
	root := New(&bytes.Buffer{}, log.InfoLevel).RootCommand()

	want := []string{"cache", "completion", "list", "update"}
	var got []string
	for _, cmd := range root.Commands() {
		got = append(got, cmd.Name())
	}
	for _, name := range want {
		if !strings.Contains(strings.Join(got, " "), name) {
			t.Errorf("RootCommand() missing subcommand %q (have %v)", name, got)
		}
	}
	for _, flag := range []string{"verbose", "config", "no-cache"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("RootCommand() missing persistent flag --%s", flag)
		}
	}
}

func TestListText(t *testing.T) {
	file, cfg := setupProject(t, "http://127.0.0.1:1", fixture)

	out, err := execute(t, "--config", cfg, "list", file)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	for _, want := range []string{"normalize.css", "8.0.0", "juggernaut", "2.1.0", "@scope/lib", "^1.0.0", "floating", noVersion} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}
}

func TestListJSON(t *testing.T) {
	file, cfg := setupProject(t, "http://127.0.0.1:1", fixture)

	out, err := execute(t, "--config", cfg, "list", file, "--format", "json")
	if err != nil {
		t.Fatalf("list error: %v", err)
	}

	var entries []listEntry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("list --format json is not JSON: %v\n%s", err, out)
	}
	if len(entries) != 4 {
		t.Fatalf("got %d entries, want 4", len(entries))
	}
	if entries[1].Name != "juggernaut" || entries[1].Version != "2.1.0" || entries[1].PURL != "pkg:npm/juggernaut@2.1.0" {
		t.Errorf("entries[1] = %+v", entries[1])
	}
	if entries[3].Version != "" || entries[3].PURL != "pkg:npm/floating" {
		t.Errorf("entries[3] = %+v", entries[3])
	}
}

func TestListYAML(t *testing.T) {
	file, cfg := setupProject(t, "http://127.0.0.1:1", fixture)

	out, err := execute(t, "--config", cfg, "list", "--format", "yaml", file)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	var entries []listEntry
	if err := yaml.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("list --format yaml is not YAML: %v\n%s", err, out)
	}
	if len(entries) != 4 || entries[2].Name != "@scope/lib" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestListConflict(t *testing.T) {
	doc := `<script src="https://unpkg.com/pkg@1.0.0/a.js"></script><script src="https://unpkg.com/pkg@2.0.0/b.js"></script>`
	file, cfg := setupProject(t, "http://127.0.0.1:1", doc)

	_, err := execute(t, "--config", cfg, "list", file)
	if !cerrors.Is(err, cerrors.ErrCodeConflictingVersions) {
		t.Fatalf("list error = %v, want CONFLICTING_VERSIONS", err)
	}

	// Node mode updates each element on its own, so listing succeeds.
	if _, err := execute(t, "--config", cfg, "list", "--html", file); err != nil {
		t.Errorf("list --html error: %v", err)
	}
}

func TestListErrors(t *testing.T) {
	file, cfg := setupProject(t, "http://127.0.0.1:1", fixture)

	tests := []struct {
		name string
		args []string
		code cerrors.Code
	}{
		{"bad format", []string{"--config", cfg, "list", "--format", "xml", file}, cerrors.ErrCodeInvalidFormat},
		{"missing file", []string{"--config", cfg, "list", filepath.Join(t.TempDir(), "nope.html")}, cerrors.ErrCodeInvalidPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if !cerrors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}

	if _, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.toml"), "list", file); err == nil {
		t.Error("missing --config file should fail")
	}
}

func TestUpdate(t *testing.T) {
	registry := newRegistry(t)
	file, cfg := setupProject(t, registry.URL, fixture)

	out, err := execute(t, "--config", cfg, "update", file)
	if err != nil {
		t.Fatalf("update error: %v\n%s", err, out)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	for _, want := range []string{
		"https://unpkg.com/normalize.css@8.0.1/normalize.css",
		"https://unpkg.com/juggernaut@2.1.1/index.js",
		"https://cdn.jsdelivr.net/npm/@scope/lib@^2.0.0/lib.js",
		"https://unpkg.com/floating\"",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("updated file missing %q:\n%s", want, got)
		}
	}
	if !strings.Contains(out, "Updated 3 references") {
		t.Errorf("update output = %q", out)
	}

	info, err := os.Stat(file)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o640 {
		t.Errorf("file mode = %v, want 0640", info.Mode().Perm())
	}

	out, err = execute(t, "--config", cfg, "update", file)
	if err != nil {
		t.Fatalf("second update error: %v", err)
	}
	if !strings.Contains(out, "up to date") {
		t.Errorf("second update output = %q", out)
	}
}

func TestUpdateCountsCheckedPackages(t *testing.T) {
	t.Cleanup(observability.Reset)
	registry := newRegistry(t)
	file, cfg := setupProject(t, registry.URL, fixture)

	// floating has no version and never changes, but is still checked.
	_, logs, err := executeWithLogs(t, "--verbose", "--config", cfg, "update", "--dry-run", file)
	if err != nil {
		t.Fatalf("update error: %v", err)
	}
	if !strings.Contains(logs, "Checked 4 packages") {
		t.Errorf("logs missing package count:\n%s", logs)
	}
}

func TestUpdateDryRun(t *testing.T) {
	registry := newRegistry(t)
	file, cfg := setupProject(t, registry.URL, fixture)

	out, err := execute(t, "--config", cfg, "update", "--dry-run", file)
	if err != nil {
		t.Fatalf("update --dry-run error: %v", err)
	}
	if !strings.Contains(out, "Would update 3 references") {
		t.Errorf("dry-run output = %q", out)
	}

	data, _ := os.ReadFile(file)
	if string(data) != fixture {
		t.Error("update --dry-run modified the file")
	}
}

func TestUpdateHTML(t *testing.T) {
	registry := newRegistry(t)
	doc := `<!DOCTYPE html><html><head></head><body>` +
		`<script src="https://unpkg.com/juggernaut@2.1.0/index.js"></script>` +
		`<script src="https://unpkg.com/juggernaut@1.0.0/old.js"></script>` +
		`</body></html>`
	file, cfg := setupProject(t, registry.URL, doc)

	if _, err := execute(t, "--config", cfg, "update", "--html", file); err != nil {
		t.Fatalf("update --html error: %v", err)
	}
	data, _ := os.ReadFile(file)
	if got := strings.Count(string(data), "juggernaut@2.1.1"); got != 2 {
		t.Errorf("found %d updated references, want 2:\n%s", got, data)
	}
}

func TestUpdateFailureLeavesFileUntouched(t *testing.T) {
	registry := newRegistry(t)
	doc := fixture + `<script src="https://unpkg.com/does-not-exist@1.0.0"></script>`
	file, cfg := setupProject(t, registry.URL, doc)

	out, err := execute(t, "--config", cfg, "update", file)
	if !cerrors.Is(err, cerrors.ErrCodePackageNotFound) {
		t.Fatalf("update error = %v, want PACKAGE_NOT_FOUND", err)
	}
	_ = out

	data, _ := os.ReadFile(file)
	if string(data) != doc {
		t.Error("failed update modified the file")
	}

	// Best effort in node mode still refuses to write when a package failed.
	out, err = execute(t, "--config", cfg, "update", "--html", file)
	if err == nil {
		t.Error("update --html with a missing package should fail")
	}
	if !strings.Contains(out, "was not modified") {
		t.Errorf("update --html output = %q", out)
	}
	data, _ = os.ReadFile(file)
	if string(data) != doc {
		t.Error("failed update --html modified the file")
	}
}
