package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for gazeport.
type Config struct {
	Export ExportConfig
	Log    LogConfig

	// Rename maps default column names to caller-preferred export names.
	// Loaded from the [rename] table of the config file.
	Rename map[string]string
}

type ExportConfig struct {
	OutputDir    string // Directory for the exported table files
	Delimiter    string // Field delimiter; single character, default tab
	MissingToken string // Token rendered for missing cells (default: empty)
	Gzip         bool   // Gzip each output file
	FilePrefix   string // File name prefix; defaults to the input base name
}

type LogConfig struct {
	Level  string
	Format string
}

// Load loads configuration from defaults, an optional gazeport.toml, and
// GAZEPORT_-prefixed environment variables.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("GAZEPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("gazeport")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.gazeport/")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	cfg := &Config{
		Export: ExportConfig{
			OutputDir:    v.GetString("export.output_dir"),
			Delimiter:    v.GetString("export.delimiter"),
			MissingToken: v.GetString("export.missing_token"),
			Gzip:         v.GetBool("export.gzip"),
			FilePrefix:   v.GetString("export.file_prefix"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Rename: v.GetStringMapString("rename"),
	}

	if err := cfg.Export.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (e *ExportConfig) validate() error {
	if len([]rune(e.Delimiter)) != 1 {
		return fmt.Errorf("export.delimiter must be a single character, got %q", e.Delimiter)
	}
	return nil
}

// DelimiterRune returns the configured delimiter as a rune. Valid after
// Load.
func (e *ExportConfig) DelimiterRune() rune {
	return []rune(e.Delimiter)[0]
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("export.output_dir", "./export")
	v.SetDefault("export.delimiter", "\t")
	v.SetDefault("export.missing_token", "")
	v.SetDefault("export.gzip", false)
	v.SetDefault("export.file_prefix", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}
