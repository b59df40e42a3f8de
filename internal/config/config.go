// Package config loads jrec settings from a YAML file, the environment, and
// command-line overrides applied by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/matsen/jrec/internal/browser"
	"github.com/matsen/jrec/internal/crawl"
	"github.com/matsen/jrec/internal/extract"
	"github.com/matsen/jrec/internal/fetch"
	"github.com/matsen/jrec/internal/logger"
	"github.com/matsen/jrec/internal/pace"
	"github.com/matsen/jrec/internal/recommend"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid configuration")

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "jrec"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"
	// DefaultCoAuthorTimeout bounds the wait for the co-author dialog.
	DefaultCoAuthorTimeout = 15 * time.Second
)

// Config is the full set of jrec settings.
type Config struct {
	DataDir     string `yaml:"data_dir"`     // Checkpoint directory
	AuthorsFile string `yaml:"authors_file"` // Seed names, one per line
	MaxDepth    int    `yaml:"max_depth"`

	Browser     BrowserConfig     `yaml:"browser"`
	Sites       SitesConfig       `yaml:"sites"`
	Pacing      PacingConfig      `yaml:"pacing"`
	Blocking    BlockingConfig    `yaml:"blocking"`
	Selectors   SelectorsConfig   `yaml:"selectors"`
	Recommender RecommenderConfig `yaml:"recommender"`
	Logging     logger.Config     `yaml:"logging"`
}

// BrowserConfig controls the automated browser.
type BrowserConfig struct {
	Headless        bool          `yaml:"headless"`
	UserAgent       string        `yaml:"user_agent,omitempty"`
	ExecPath        string        `yaml:"exec_path,omitempty"`
	WaitTimeout     time.Duration `yaml:"wait_timeout"`
	LoadTimeout     time.Duration `yaml:"load_timeout"`
	CoAuthorTimeout time.Duration `yaml:"coauthor_timeout"`
}

// SitesConfig holds the crawled sites' entry points.
type SitesConfig struct {
	ScholarURL  string `yaml:"scholar_url"`
	RegistryURL string `yaml:"sjr_url"`
}

// PacingConfig holds the random delay ranges between site interactions.
type PacingConfig struct {
	Search   pace.Range `yaml:"search"`   // After submitting a search
	Author   pace.Range `yaml:"author"`   // Between authors
	Articles pace.Range `yaml:"articles"` // Between article batches
	Journal  pace.Range `yaml:"journal"`  // Between journal lookups
	Page     pace.Range `yaml:"page"`     // After each "show more"
	Result   pace.Range `yaml:"result"`   // After opening a registry result
	Cooldown pace.Range `yaml:"cooldown"` // After a blocking page
	MaxRate  float64    `yaml:"max_rate"` // Requests per second ceiling; 0 disables
}

// BlockingConfig controls anti-bot detection.
type BlockingConfig struct {
	Token string `yaml:"token"`
}

// SelectorsConfig holds the per-site extraction selectors.
type SelectorsConfig struct {
	Scholar  extract.ScholarSelectors  `yaml:"scholar"`
	Registry extract.RegistrySelectors `yaml:"registry"`
}

// RecommenderConfig locates the model artifacts and dataset.
type RecommenderConfig struct {
	ModelDir string `yaml:"model_dir"`
	Dataset  string `yaml:"dataset"`
	TopK     int    `yaml:"top_k"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		DataDir:     "data",
		AuthorsFile: "authors.txt",
		MaxDepth:    crawl.DefaultMaxDepth,
		Browser: BrowserConfig{
			Headless:        true,
			WaitTimeout:     browser.DefaultWaitTimeout,
			LoadTimeout:     browser.DefaultLoadTimeout,
			CoAuthorTimeout: DefaultCoAuthorTimeout,
		},
		Sites: SitesConfig{
			ScholarURL:  fetch.DefaultScholarURL,
			RegistryURL: fetch.DefaultRegistryURL,
		},
		Pacing: PacingConfig{
			Search:   pace.Seconds(5, 15),
			Author:   pace.Seconds(1, 3),
			Articles: pace.Seconds(5, 15),
			Journal:  pace.Seconds(1, 3),
			Page:     pace.Seconds(2, 3),
			Result:   pace.Seconds(1, 3),
			Cooldown: pace.Seconds(60, 120),
			MaxRate:  pace.DefaultMaxRate,
		},
		Blocking: BlockingConfig{Token: pace.DefaultBlockToken},
		Selectors: SelectorsConfig{
			Scholar:  extract.DefaultScholar(),
			Registry: extract.DefaultRegistry(),
		},
		Recommender: RecommenderConfig{
			ModelDir: "models",
			Dataset:  filepath.Join("data", "df_clustering.csv"),
			TopK:     recommend.DefaultTopK,
		},
		Logging: logger.Config{
			Level:       logger.DefaultLevel,
			OutputPaths: logger.DefaultOutputPaths,
		},
	}
}

// Path returns the path to the user config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/jrec/config.yml.
func Path() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, ConfigFile)
}

// Load builds the configuration: defaults, then the user config file if it
// exists, then explicitPath if set (it must exist), then the environment.
// A .env file in the working directory is read into the environment first.
// The result is validated.
func Load(explicitPath string) (*Config, error) {
	if err := loadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}

	cfg := Default()
	if path := Path(); path != "" {
		if err := cfg.mergeFile(path, true); err != nil {
			return nil, err
		}
	}
	if explicitPath != "" {
		if err := cfg.mergeFile(ExpandPath(explicitPath), false); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	cfg.expandPaths()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFile overlays the YAML file at path onto c. Keys absent from the
// file keep their current values.
func (c *Config) mergeFile(path string, optional bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func (c *Config) expandPaths() {
	for _, p := range []*string{
		&c.DataDir,
		&c.AuthorsFile,
		&c.Browser.ExecPath,
		&c.Recommender.ModelDir,
		&c.Recommender.Dataset,
	} {
		*p = ExpandPath(*p)
	}
}

// Validate rejects settings the crawler or recommender cannot run with.
func (c *Config) Validate() error {
	if c.MaxDepth < 0 {
		return fmt.Errorf("%w: max_depth must not be negative, got %d", ErrInvalid, c.MaxDepth)
	}
	if c.DataDir == "" {
		return fmt.Errorf("%w: data_dir is empty", ErrInvalid)
	}

	for name, d := range map[string]time.Duration{
		"browser.wait_timeout":     c.Browser.WaitTimeout,
		"browser.load_timeout":     c.Browser.LoadTimeout,
		"browser.coauthor_timeout": c.Browser.CoAuthorTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %s", ErrInvalid, name, d)
		}
	}

	for _, r := range []struct {
		name string
		r    pace.Range
	}{
		{"search", c.Pacing.Search},
		{"author", c.Pacing.Author},
		{"articles", c.Pacing.Articles},
		{"journal", c.Pacing.Journal},
		{"page", c.Pacing.Page},
		{"result", c.Pacing.Result},
		{"cooldown", c.Pacing.Cooldown},
	} {
		if err := r.r.Validate(); err != nil {
			return fmt.Errorf("%w: pacing.%s: %v", ErrInvalid, r.name, err)
		}
	}
	if c.Pacing.MaxRate < 0 {
		return fmt.Errorf("%w: pacing.max_rate must not be negative", ErrInvalid)
	}

	if c.Recommender.TopK < 1 {
		return fmt.Errorf("%w: recommender.top_k must be at least 1, got %d", ErrInvalid, c.Recommender.TopK)
	}
	return nil
}

// Save writes c as YAML to path, creating parent directories.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
