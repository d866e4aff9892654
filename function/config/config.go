package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/dimasma0305/ctfdsync/function/log"
	"github.com/dimasma0305/ctfdsync/function/utils"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

const (
	CONFIG_FILE = ".ctfdsync.yaml"
)

var ErrMissingConfiguration = errors.New("missing configuration")

// Config is the per-directory record of where challenges come from and how
// often they were synced.
type Config struct {
	PlatformURL string    `yaml:"platform_url" validate:"required,url"`
	CreatedAt   time.Time `yaml:"created_at"`
	LastSync    time.Time `yaml:"last_sync"`
	SyncCount   int       `yaml:"sync_count" validate:"gte=0"`
}

func Path(dir string) string {
	return filepath.Join(dir, CONFIG_FILE)
}

// Load reads the config stored in dir. A missing file is reported as fs.ErrNotExist.
func Load(dir string) (*Config, error) {
	data, err := os.ReadFile(Path(dir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config not found in %s: %w", dir, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("error open config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error decode config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", Path(dir), err)
	}
	return &config, nil
}

func Save(dir string, config *Config) error {
	if err := config.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid config: %w", err)
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("error create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("error encode config: %w", err)
	}
	if err := utils.WriteFileAtomic(Path(dir), data, 0600); err != nil {
		return fmt.Errorf("error write config file: %w", err)
	}
	return nil
}

// Resolve loads the config of dir, or bootstraps a new one from url.
// A stored platform url always wins over url.
func Resolve(dir string, url string, now time.Time) (*Config, error) {
	config, err := Load(dir)
	switch {
	case err == nil:
		if url != "" && url != config.PlatformURL {
			log.Warn("ignoring --url %s, %s is bound to %s", url, dir, config.PlatformURL)
		}
		return config, nil
	case !errors.Is(err, fs.ErrNotExist):
		return nil, err
	}

	if url == "" {
		return nil, fmt.Errorf("%w: no %s in %s, pass the platform url with -u/--url on the first run",
			ErrMissingConfiguration, CONFIG_FILE, dir)
	}
	config = &Config{
		PlatformURL: url,
		CreatedAt:   now,
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingConfiguration, err)
	}
	return config, nil
}

// Touch records one finished sync.
func (c *Config) Touch(now time.Time) {
	c.LastSync = now
	c.SyncCount++
}

func (c *Config) Validate() error {
	return validator.New().Struct(c)
}
