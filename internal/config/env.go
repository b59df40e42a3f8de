package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// DotEnvFile is read into the environment before overrides are applied.
const DotEnvFile = ".env"

// Environment variables that override config file values.
const (
	EnvDataDir     = "JREC_DATA_DIR"
	EnvAuthorsFile = "JREC_AUTHORS_FILE"
	EnvMaxDepth    = "JREC_MAX_DEPTH"
	EnvHeadless    = "JREC_HEADLESS"
	EnvChromePath  = "JREC_CHROME_PATH"
	EnvModelDir    = "JREC_MODEL_DIR"
	EnvDataset     = "JREC_DATASET"
	EnvLogLevel    = "JREC_LOG_LEVEL"
)

// loadDotEnv reads path into the environment. Variables already set win,
// and a missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: reading %s: %v", ErrInvalid, path, err)
	}
	return nil
}

// ApplyEnv overlays the JREC_* environment variables onto c.
func (c *Config) ApplyEnv() error {
	setString(&c.DataDir, EnvDataDir)
	setString(&c.AuthorsFile, EnvAuthorsFile)
	setString(&c.Browser.ExecPath, EnvChromePath)
	setString(&c.Recommender.ModelDir, EnvModelDir)
	setString(&c.Recommender.Dataset, EnvDataset)
	setString(&c.Logging.Level, EnvLogLevel)

	if v, ok := os.LookupEnv(EnvMaxDepth); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalid, EnvMaxDepth, v)
		}
		c.MaxDepth = n
	}
	if v, ok := os.LookupEnv(EnvHeadless); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalid, EnvHeadless, v)
		}
		c.Browser.Headless = b
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
