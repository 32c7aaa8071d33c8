package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"songdeck/internal/links"
	"songdeck/internal/testsupport"
	"songdeck/internal/track"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	cachePath  string
	outputDir  string
	trackIDs   []string
}

// setupCLITestEnv writes a config with every metadata source disabled so the
// commands can only run from the seeded playlist cache.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	t.Setenv("HOME", filepath.Join(base, "home"))
	t.Setenv("SPOTIFY_CLIENT_ID", "")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "")
	t.Setenv("DISCOGS_TOKEN", "")

	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "songdeck.toml"),
		cachePath:  filepath.Join(base, "cache", "playlist.json"),
		outputDir:  filepath.Join(base, "out"),
		trackIDs: []string{
			"4uLU6hMCjMI75M1A2tKUQC",
			"7qiZfU4dY1lWllzX7mPBI3",
			"2Fxmhks0bxGSBdJ92vM42m",
		},
	}
	writeTestConfig(t, env)
	return env
}

func writeTestConfig(t *testing.T, env *cliTestEnv) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
cache_file = %q
output_dir = %q
log_dir = ""

[spotify]
enabled = false

[spotify_web]
enabled = false

[itunes]
enabled = false

[discogs]
enabled = false

[musicbrainz]
enabled = false

[cards]
dpi = 100

[logging]
level = "error"
`, env.cachePath, env.outputDir)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// seedCache stores the env's tracks; the second one is unresolved.
func (env *cliTestEnv) seedCache(t *testing.T) {
	t.Helper()
	tracks := []track.Track{
		{ID: 1, Identifier: links.Canonical(env.trackIDs[0]), Title: "Never Gonna Give You Up", Artist: "Rick Astley", Year: 1987, YearSource: "spotify"},
		{ID: 2, Identifier: links.Canonical(env.trackIDs[1]), Unresolved: true},
		{ID: 3, Identifier: links.Canonical(env.trackIDs[2]), Title: "Dancing Queen", Artist: "ABBA", Year: 1976, YearSource: "manual"},
	}
	testsupport.SeedCache(t, env.cachePath, tracks)
}

func (env *cliTestEnv) writeLinks(t *testing.T, ids ...string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("# party playlist\n")
	for _, id := range ids {
		b.WriteString("https://open.spotify.com/track/" + id + "?si=abc\n")
	}
	path := filepath.Join(env.baseDir, "links.txt")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write links: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args []string, configPath, stdin string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
