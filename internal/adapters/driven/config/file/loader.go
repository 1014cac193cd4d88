// Package file loads configuration from a TOML file, overlaying values
// onto the built-in defaults so a partial file only overrides what it
// names. The default location follows the XDG base directory spec.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"

	"github.com/docsmith-labs/docsort-cli/internal/core/domain"
)

// ConfigFileName is the configuration file name inside the config
// directory.
const ConfigFileName = "config.toml"

// DefaultPath returns the default configuration file location,
// typically ~/.config/docsort/config.toml.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "docsort", ConfigFileName)
}

// Load reads configuration from path, or from the default location when
// path is empty. A missing file is not an error: the defaults apply.
func Load(path string) (domain.Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	cfg := domain.DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
