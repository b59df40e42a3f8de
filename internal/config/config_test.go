package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matsen/jrec/internal/pace"
)

// isolate points XDG_CONFIG_HOME at an empty temp dir, clears the JREC_*
// variables, and runs the test from a temp working directory so no real
// config or .env leaks in.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	for _, key := range []string{EnvDataDir, EnvAuthorsFile, EnvMaxDepth, EnvHeadless,
		EnvChromePath, EnvModelDir, EnvDataset, EnvLogLevel} {
		t.Setenv(key, "")
	}
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	if got, want := Path(), "/custom/config/jrec/config.yml"; got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	if got, want := Path(), filepath.Join(home, ".config", "jrec", "config.yml"); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DataDir != "data" || cfg.AuthorsFile != "authors.txt" || cfg.MaxDepth != 2 {
		t.Errorf("crawl defaults = %q %q %d", cfg.DataDir, cfg.AuthorsFile, cfg.MaxDepth)
	}
	if !cfg.Browser.Headless || cfg.Browser.WaitTimeout != 10*time.Second || cfg.Browser.CoAuthorTimeout != 15*time.Second {
		t.Errorf("browser defaults = %+v", cfg.Browser)
	}
	if cfg.Pacing.Search != pace.Seconds(5, 15) || cfg.Pacing.Cooldown != pace.Seconds(60, 120) {
		t.Errorf("pacing defaults = %+v", cfg.Pacing)
	}
	if cfg.Blocking.Token != "captcha" {
		t.Errorf("Blocking.Token = %q, want captcha", cfg.Blocking.Token)
	}
	if cfg.Selectors.Scholar.SearchInput == "" || cfg.Selectors.Registry.SearchInput == "" {
		t.Error("default selectors are empty")
	}
	if cfg.Recommender.TopK != 10 || cfg.Recommender.ModelDir != "models" {
		t.Errorf("recommender defaults = %+v", cfg.Recommender)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoad_UserFileOverlaysDefaults(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "xdg", "jrec", "config.yml"), `
max_depth: 1
browser:
  headless: false
  wait_timeout: 20s
pacing:
  author:
    min: 2s
    max: 4s
selectors:
  scholar:
    search_input: "#search"
`)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MaxDepth != 1 {
		t.Errorf("MaxDepth = %d, want 1", cfg.MaxDepth)
	}
	if cfg.Browser.Headless {
		t.Error("Headless = true, want false from file")
	}
	if cfg.Browser.WaitTimeout != 20*time.Second {
		t.Errorf("WaitTimeout = %s, want 20s", cfg.Browser.WaitTimeout)
	}
	if cfg.Browser.LoadTimeout != 30*time.Second {
		t.Errorf("LoadTimeout = %s, want default 30s", cfg.Browser.LoadTimeout)
	}
	if cfg.Pacing.Author != pace.Seconds(2, 4) {
		t.Errorf("Pacing.Author = %s, want 2s-4s", cfg.Pacing.Author)
	}
	if cfg.Pacing.Journal != pace.Seconds(1, 3) {
		t.Errorf("Pacing.Journal = %s, want default", cfg.Pacing.Journal)
	}
	if cfg.Selectors.Scholar.SearchInput != "#search" {
		t.Errorf("SearchInput = %q, want #search", cfg.Selectors.Scholar.SearchInput)
	}
	if cfg.Selectors.Scholar.Name == "" {
		t.Error("unspecified selector lost its default")
	}
}

func TestLoad_ExplicitPath(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "xdg", "jrec", "config.yml"), "data_dir: from-user\nmax_depth: 1\n")
	explicit := filepath.Join(dir, "run.yml")
	writeFile(t, explicit, "data_dir: from-explicit\n")

	cfg, err := Load(explicit)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DataDir != "from-explicit" {
		t.Errorf("DataDir = %q, want from-explicit", cfg.DataDir)
	}
	if cfg.MaxDepth != 1 {
		t.Errorf("MaxDepth = %d, want 1 from user file", cfg.MaxDepth)
	}

	if _, err := Load(filepath.Join(dir, "missing.yml")); err == nil {
		t.Error("Load() with missing explicit path should fail")
	}
}

func TestLoad_Env(t *testing.T) {
	isolate(t)
	t.Setenv(EnvAuthorsFile, "seeds.txt")
	t.Setenv(EnvMaxDepth, "0")
	t.Setenv(EnvHeadless, "false")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AuthorsFile != "seeds.txt" || cfg.MaxDepth != 0 || cfg.Browser.Headless || cfg.Logging.Level != "debug" {
		t.Errorf("env not applied: %q %d %v %q", cfg.AuthorsFile, cfg.MaxDepth, cfg.Browser.Headless, cfg.Logging.Level)
	}

	t.Setenv(EnvMaxDepth, "deep")
	if _, err := Load(""); !errors.Is(err, ErrInvalid) {
		t.Errorf("Load() with bad %s error = %v, want ErrInvalid", EnvMaxDepth, err)
	}
}

func TestLoad_ExpandsHome(t *testing.T) {
	dir := isolate(t)
	t.Setenv("HOME", dir)
	t.Setenv(EnvModelDir, "~/models")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if want := filepath.Join(dir, "models"); cfg.Recommender.ModelDir != want {
		t.Errorf("ModelDir = %q, want %q", cfg.Recommender.ModelDir, want)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	os.Unsetenv(EnvDataDir)
	t.Cleanup(func() { os.Unsetenv(EnvDataDir) })
	writeFile(t, filepath.Join(dir, DotEnvFile), EnvDataDir+"=crawl-data\n")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DataDir != "crawl-data" {
		t.Errorf("DataDir = %q, want crawl-data from .env", cfg.DataDir)
	}
}

func TestLoad_MalformedDotEnv(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, DotEnvFile), EnvDataDir+"=\"unterminated\n")

	if _, err := Load(""); !errors.Is(err, ErrInvalid) {
		t.Errorf("Load() with malformed .env error = %v, want ErrInvalid", err)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, "xdg", "jrec", "config.yml"), "max_depth: [1, 2\n")

	if _, err := Load(""); err == nil {
		t.Error("Load() with malformed YAML should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"negative depth", func(c *Config) { c.MaxDepth = -1 }},
		{"empty data dir", func(c *Config) { c.DataDir = "" }},
		{"zero wait timeout", func(c *Config) { c.Browser.WaitTimeout = 0 }},
		{"zero coauthor timeout", func(c *Config) { c.Browser.CoAuthorTimeout = 0 }},
		{"inverted range", func(c *Config) { c.Pacing.Search = pace.Range{Min: 10 * time.Second, Max: time.Second} }},
		{"negative rate", func(c *Config) { c.Pacing.MaxRate = -1 }},
		{"zero top k", func(c *Config) { c.Recommender.TopK = 0 }},
	}

	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() error = %v, want ErrInvalid", err)
			}
		})
	}

	zeroDepth := Default()
	zeroDepth.MaxDepth = 0
	if err := zeroDepth.Validate(); err != nil {
		t.Errorf("max_depth 0 should be valid, got %v", err)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yml")

	cfg := Default()
	cfg.MaxDepth = 3
	cfg.Pacing.Page = pace.Seconds(4, 6)
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.MaxDepth != 3 || loaded.Pacing.Page != pace.Seconds(4, 6) {
		t.Errorf("round trip lost values: depth %d, page %s", loaded.MaxDepth, loaded.Pacing.Page)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"~/models", filepath.Join(home, "models")},
		{"/abs/path", "/abs/path"},
		{"relative", "relative"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.input); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
