package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	ProjectPaths []string `mapstructure:"projects"`
	ProjectsDir  string   `mapstructure:"projects_dir"`
	OutputPath   string   `mapstructure:"output"`
	ScriptPath   string   `mapstructure:"script"`
	Save         bool     `mapstructure:"save"`
	Serve        bool     `mapstructure:"serve"`
	JournalPath  string   `mapstructure:"journal"`
	UndoPrefix   string   `mapstructure:"undo_prefix"`
	Workers      int      `mapstructure:"workers"`
	ShowStats    bool     `mapstructure:"stats"`
	BuildVersion string   `mapstructure:"-"`
}

// Load reads configuration defaults, an optional YAML file at path and
// SNIPRR_* environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("projects", []string{})
	v.SetDefault("projects_dir", "projects")
	v.SetDefault("output", "")
	v.SetDefault("script", "")
	v.SetDefault("save", false)
	v.SetDefault("serve", false)
	v.SetDefault("journal", "")
	v.SetDefault("undo_prefix", "Sniprr")
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("stats", false)

	v.SetEnvPrefix("SNIPRR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.UndoPrefix == "" {
		c.UndoPrefix = "Sniprr"
	}
	return &c, nil
}

// Default returns the configuration with no file and no environment applied.
func Default() *Config {
	return &Config{
		ProjectsDir: "projects",
		UndoPrefix:  "Sniprr",
		Workers:     runtime.NumCPU(),
	}
}
