package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/corewp/corewp/internal/logging"
)

// settingsFileName is the optional tool-level settings file, looked up
// next to the host manifest.
const settingsFileName = ".corewp.yaml"

// Settings are tool-level options, separate from the host manifest's
// plugin configuration.
type Settings struct {
	Logging LoggingSettings `yaml:"logging"`
}

// LoggingSettings configures log output.
type LoggingSettings struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// DefaultSettings returns the settings used when no file is present.
func DefaultSettings() Settings {
	return Settings{
		Logging: LoggingSettings{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadSettings reads .corewp.yaml from dir. A missing file yields the
// defaults; a present but unparseable file is an error.
func LoadSettings(dir string) (Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(filepath.Join(dir, settingsFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, fmt.Errorf("reading %s: %w", settingsFileName, err)
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return DefaultSettings(), fmt.Errorf("parsing %s: %w", settingsFileName, err)
	}

	if settings.Logging.Level == "" {
		settings.Logging.Level = "info"
	}
	if settings.Logging.Format == "" {
		settings.Logging.Format = "console"
	}

	return settings, nil
}

// ToLoggingConfig bridges the settings file to the logging package.
func (ls LoggingSettings) ToLoggingConfig() logging.Config {
	return logging.Config{
		Level:  ls.Level,
		Format: ls.Format,
		File:   ls.File,
	}
}
