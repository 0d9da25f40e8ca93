package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "Pinchtab", cfg.Site.Name)
	assert.Equal(t, "pinchtab/pinchtab", cfg.Content.Repo)
	assert.Equal(t, "main", cfg.Content.Branch)
	assert.Equal(t, "./public/docs", cfg.Build.Output)
	assert.Equal(t, ":8787", cfg.Preview.Addr)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docsite.yaml")
	body := `
site:
  name: Example
content:
  repo: example/content
  branch: release
  skip:
    - docs/broken.md
build:
  output: ./out
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Example", cfg.Site.Name)
	assert.Equal(t, "example/content", cfg.Content.Repo)
	assert.Equal(t, "release", cfg.Content.Branch)
	assert.Equal(t, []string{"docs/broken.md"}, cfg.Content.Skip)
	assert.Equal(t, "./out", cfg.Build.Output)
	// Unset fields keep defaults.
	assert.Equal(t, ":8787", cfg.Preview.Addr)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docsite.yaml")
	require.NoError(t, os.WriteFile(path, []byte("nonsense: true\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DOCSITE_MANIFEST_URL", "https://mirror.example/docs/index.json")
	t.Setenv("DOCSITE_CONTENT_BRANCH", "canary")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "https://mirror.example/docs/index.json", cfg.ManifestURL())
	assert.Equal(t, "canary", cfg.Content.Branch)
}

func TestManifestURLDerivedFromRepo(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t,
		"https://raw.githubusercontent.com/pinchtab/pinchtab/main/docs/index.json",
		cfg.ManifestURL())
}

func TestValidateBadRepo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docsite.yaml")
	require.NoError(t, os.WriteFile(path, []byte("content:\n  repo: nopath\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
