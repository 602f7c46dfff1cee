// Package backup implements the storage maintenance commands: listing,
// uploading and pruning database dumps kept in a Supabase bucket.
package backup

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the backup tool settings.
type Config struct {
	URL      string `mapstructure:"url"`
	Key      string `mapstructure:"key"`
	LogLevel string `mapstructure:"log_level"`
}

// LoadConfig reads SUPABASE_URL, SUPABASE_KEY and LOG_LEVEL from the
// environment. When path is set the TOML file there is read as well and
// must exist. Precedence is flags, then environment, then file. The url,
// key and log-level flags are bound when flags defines them.
func LoadConfig(path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetDefault("log_level", "ERROR")
	v.SetConfigType("toml")

	_ = v.BindEnv("url", "SUPABASE_URL")
	_ = v.BindEnv("key", "SUPABASE_KEY")
	_ = v.BindEnv("log_level", "LOG_LEVEL")

	if flags != nil {
		for key, name := range map[string]string{"url": "url", "key": "key", "log_level": "log-level"} {
			if f := flags.Lookup(name); f != nil {
				_ = v.BindPFlag(key, f)
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	c.URL = strings.TrimSpace(c.URL)
	c.Key = strings.TrimSpace(c.Key)
	return c, nil
}

// Validate reports missing credentials.
func (c Config) Validate() error {
	if c.URL == "" || c.Key == "" {
		return fmt.Errorf("SUPABASE_URL and SUPABASE_KEY must be set")
	}
	return nil
}
