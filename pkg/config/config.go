// Package config holds the packing configuration: the ignore
// denylists and their file-based extensions. The defaults are an
// explicit value, copied fresh on every load and merged with
// caller-supplied additions at construction time, never mutated in
// place.
package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/arthur-debert/seda/pkg/logging"
)

var log = logging.GetLogger("config")

// ConfigFileName is the per-source configuration file, looked up in
// the source directory being packed.
const ConfigFileName = ".seda.toml"

// Config represents the seda configuration from .seda.toml
type Config struct {
	Ignore IgnoreConfig `toml:"ignore"`
}

// IgnoreConfig extends the built-in denylists.
type IgnoreConfig struct {
	Dirs       []string `toml:"dirs"`
	Extensions []string `toml:"extensions"`
}

// Default returns a fresh copy of the built-in configuration.
func Default() Config {
	return Config{
		Ignore: IgnoreConfig{
			Dirs: []string{
				"node_modules", "__pycache__", ".git", "dist", "build",
				".DS_Store", ".idea", ".vscode", "coverage",
			},
			Extensions: []string{
				".pyc", ".log", ".seda", ".exe", ".dll", ".so", ".dylib",
			},
		},
	}
}

// Load returns the defaults merged with the user configuration file
// from the XDG config directory and, when present, the source
// directory's own .seda.toml. User entries extend the denylists; they
// never remove defaults.
func Load(sourceDir string) (Config, error) {
	cfg := Default()

	paths := []string{
		filepath.Join(xdg.ConfigHome, "seda", "seda.toml"),
	}
	if sourceDir != "" {
		paths = append(paths, filepath.Join(sourceDir, ConfigFileName))
	}

	for _, path := range paths {
		user, err := loadFile(path)
		if err != nil {
			return Config{}, err
		}
		if user == nil {
			continue
		}
		cfg.Ignore.Dirs = append(cfg.Ignore.Dirs, user.Ignore.Dirs...)
		cfg.Ignore.Extensions = append(cfg.Ignore.Extensions, user.Ignore.Extensions...)
		log.Debug().
			Str("path", path).
			Int("dirs", len(user.Ignore.Dirs)).
			Int("extensions", len(user.Ignore.Extensions)).
			Msg("Merged user config")
	}

	return cfg, nil
}

// loadFile parses one config file, returning nil when it is absent.
func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
