// Package config loads the docsite tool configuration: which content
// repository the docs manifest lives in, where build output goes, and the
// preview server address. Values come from an optional YAML file with
// environment overrides; .env files are loaded first.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root tool configuration.
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Content ContentConfig `yaml:"content"`
	Build   BuildConfig   `yaml:"build"`
	Preview PreviewConfig `yaml:"preview"`
}

// SiteConfig names the product the docs belong to.
type SiteConfig struct {
	Name string `yaml:"name"`
}

// ContentConfig locates the remote docs content.
type ContentConfig struct {
	// Repo is the owner/name of the content repository on GitHub.
	Repo   string `yaml:"repo"`
	Branch string `yaml:"branch"`
	// ManifestURL overrides the derived raw URL of docs/index.json.
	ManifestURL string `yaml:"manifest_url,omitempty"`
	// Skip lists source paths excluded from the manifest walk entirely
	// (exact match after normalization, case-insensitive). Used to omit
	// known-broken content without editing the remote manifest.
	Skip []string `yaml:"skip,omitempty"`
}

// BuildConfig holds build output settings.
type BuildConfig struct {
	Output string `yaml:"output"`
}

// PreviewConfig holds preview server settings.
type PreviewConfig struct {
	Addr string `yaml:"addr"`
}

// Defaults returns the configuration used when no file is present.
func Defaults() *Config {
	return &Config{
		Site:    SiteConfig{Name: "Pinchtab"},
		Content: ContentConfig{Repo: "pinchtab/pinchtab", Branch: "main"},
		Build:   BuildConfig{Output: "./public/docs"},
		Preview: PreviewConfig{Addr: ":8787"},
	}
}

// Load reads the configuration file at path. A missing file yields defaults;
// a present but unreadable or invalid file is an error. Environment
// variables (after .env/.env.local loading) override file values.
func Load(path string) (*Config, error) {
	// Missing .env files are fine; they are a local convenience.
	_ = godotenv.Load(".env", ".env.local")

	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		dec := yaml.NewDecoder(strings.NewReader(string(data)))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DOCSITE_CONTENT_REPO"); v != "" {
		cfg.Content.Repo = v
	}
	if v := os.Getenv("DOCSITE_CONTENT_BRANCH"); v != "" {
		cfg.Content.Branch = v
	}
	if v := os.Getenv("DOCSITE_MANIFEST_URL"); v != "" {
		cfg.Content.ManifestURL = v
	}
}

func applyDefaults(cfg *Config) {
	def := Defaults()
	if cfg.Site.Name == "" {
		cfg.Site.Name = def.Site.Name
	}
	if cfg.Content.Repo == "" {
		cfg.Content.Repo = def.Content.Repo
	}
	if cfg.Content.Branch == "" {
		cfg.Content.Branch = def.Content.Branch
	}
	if cfg.Build.Output == "" {
		cfg.Build.Output = def.Build.Output
	}
	if cfg.Preview.Addr == "" {
		cfg.Preview.Addr = def.Preview.Addr
	}
}

func validate(cfg *Config) error {
	if cfg.Content.ManifestURL == "" && !strings.Contains(cfg.Content.Repo, "/") {
		return fmt.Errorf("content.repo must be owner/name, got %q", cfg.Content.Repo)
	}
	return nil
}

// ManifestURL returns the configured or derived URL of the remote docs
// manifest (docs/index.json at the content repository root).
func (c *Config) ManifestURL() string {
	if c.Content.ManifestURL != "" {
		return c.Content.ManifestURL
	}
	return fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/docs/index.json",
		c.Content.Repo, c.Content.Branch)
}
