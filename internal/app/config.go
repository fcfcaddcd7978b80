package app

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/shrimpsizemoose/trekker/logger"
)

// Duration reads values like "2s" or "1m30s" from TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type Config struct {
	API struct {
		BaseURL string   `toml:"base_url"`
		Timeout Duration `toml:"timeout"`
	} `toml:"api"`

	UI struct {
		ReloadDelay     *Duration `toml:"reload_delay"`
		NotificationTTL Duration  `toml:"notification_ttl"`
	} `toml:"ui"`

	Cache struct {
		DSN string   `toml:"dsn"`
		Key string   `toml:"key"`
		TTL Duration `toml:"ttl"`
	} `toml:"cache"`

	Metrics struct {
		Listen string `toml:"listen"`
	} `toml:"metrics"`

	Server struct {
		Port string `toml:"port"`
	} `toml:"server"`

	Database struct {
		DSN           string `toml:"dsn"`
		MigrationsDir string `toml:"migrations_dir"`
	} `toml:"database"`
}

const (
	DefaultBaseURL         = "http://localhost:3000"
	DefaultReloadDelay     = 2 * time.Second
	DefaultNotificationTTL = 3 * time.Second
	DefaultServerPort      = ":3000"
	DefaultMigrationsDir   = "./migrations"
)

func DefaultConfig() *Config {
	var config Config
	config.applyDefaults()
	return &config
}

func (c *Config) applyDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.UI.ReloadDelay == nil {
		c.UI.ReloadDelay = &Duration{DefaultReloadDelay}
	}
	if c.UI.NotificationTTL.Duration == 0 {
		c.UI.NotificationTTL.Duration = DefaultNotificationTTL
	}
	if c.Server.Port == "" {
		c.Server.Port = DefaultServerPort
	}
	if c.Database.MigrationsDir == "" {
		c.Database.MigrationsDir = DefaultMigrationsDir
	}
}

// LoadConfig reads path, or falls back to defaults when path is empty.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf(
			"error reading config file %s\n> Error: %w\n> Content:\n%s",
			path,
			err,
			string(data),
		)
	}

	config.applyDefaults()

	if config.UI.ReloadDelay.Duration < 0 {
		return nil, fmt.Errorf("ui.reload_delay must not be negative, got %s", config.UI.ReloadDelay.Duration)
	}

	logger.Debug.Printf("Loaded api config: %+v", config.API)

	return &config, nil
}
