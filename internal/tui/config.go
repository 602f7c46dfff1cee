package tui

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const defaultAPIURL = "http://localhost:8080"

// Config is read from tui.toml. MONEYLENS_API_URL and MONEYLENS_EMAIL
// override the file.
type Config struct {
	APIURL string `toml:"api_url"`
	Email  string `toml:"email"`
}

// DefaultConfigPath is tui.toml under the user's config directory.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config dir: %w", err)
	}
	return filepath.Join(dir, "moneylens", "tui.toml"), nil
}

// LoadConfig reads path when it exists. A missing file leaves the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := Config{APIURL: defaultAPIURL}

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if v := strings.TrimSpace(os.Getenv("MONEYLENS_API_URL")); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv("MONEYLENS_EMAIL")); v != "" {
		cfg.Email = v
	}
	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL
	}
	return cfg, nil
}
