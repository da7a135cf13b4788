// Package config loads ffigen settings from ffigen.toml, FFIGEN_*
// environment variables and defaults, in increasing precedence: defaults,
// file, environment. Command-line flags are applied on top by the CLI.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// FileName is the project config file looked up from the working
// directory upwards.
const FileName = "ffigen.toml"

// EnvPrefix prefixes environment overrides, e.g. FFIGEN_GENERATE_BACKEND.
const EnvPrefix = "FFIGEN"

// Config is the ffigen configuration.
type Config struct {
	Generate GenerateConfig `mapstructure:"generate" toml:"generate"`
	Ledger   LedgerConfig   `mapstructure:"ledger" toml:"ledger"`
	Kotlin   KotlinConfig   `mapstructure:"kotlin" toml:"kotlin"`
	Python   PythonConfig   `mapstructure:"python" toml:"python"`
	Go       GoConfig       `mapstructure:"go" toml:"go"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-" toml:"-"`
}

// GenerateConfig holds defaults for ffigen generate.
type GenerateConfig struct {
	Backend string `mapstructure:"backend" toml:"backend"`
	OutDir  string `mapstructure:"out_dir" toml:"out_dir"`
	Workers int    `mapstructure:"workers" toml:"workers"`
}

// LedgerConfig configures the SQLite generation ledger.
type LedgerConfig struct {
	Path    string `mapstructure:"path" toml:"path"`
	Enabled bool   `mapstructure:"enabled" toml:"enabled"`
}

type KotlinConfig struct {
	Package string `mapstructure:"package" toml:"package"`
	Library string `mapstructure:"library" toml:"library"`
}

type PythonConfig struct {
	Library string `mapstructure:"library" toml:"library"`
}

type GoConfig struct {
	Package string `mapstructure:"package" toml:"package"`
	Library string `mapstructure:"library" toml:"library"`
}

// SetDefaults registers every key. Keys without a default are not
// picked up from the environment.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("generate.backend", "kotlin")
	v.SetDefault("generate.out_dir", ".")
	v.SetDefault("generate.workers", 1)

	v.SetDefault("ledger.path", "ffigen.db")
	v.SetDefault("ledger.enabled", false)

	v.SetDefault("kotlin.package", "")
	v.SetDefault("kotlin.library", "")
	v.SetDefault("python.library", "")
	v.SetDefault("go.package", "")
	v.SetDefault("go.library", "")
}

// Default returns the configuration with no file and no environment.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	var c Config
	// Defaults always decode.
	_ = v.Unmarshal(&c)
	return &c
}

// Load reads the configuration. An explicit path must exist; otherwise
// FileName is searched from dir upwards and is optional.
func Load(path, dir string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	file := path
	if file == "" {
		file = Find(dir)
	}
	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WithHint(
				errors.Wrapf(err, "read config %s", file),
				"run 'ffigen init' to write a starter "+FileName)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	c.File = file
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Find walks up from dir looking for FileName and returns its path, or ""
// when there is none.
func Find(dir string) string {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return ""
		}
		dir = wd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		p := filepath.Join(dir, FileName)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Validate checks values that have no usable zero.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Generate.Backend) == "" {
		return errors.New("config: generate.backend is empty")
	}
	if c.Generate.Workers < 1 {
		return errors.Newf("config: generate.workers must be at least 1, got %d", c.Generate.Workers)
	}
	if c.Ledger.Enabled && c.Ledger.Path == "" {
		return errors.New("config: ledger.enabled requires ledger.path")
	}
	return nil
}

// BackendOptions returns the template options configured for a backend.
// Unset values are left out so templates fall back to their defaults.
func (c *Config) BackendOptions(backend string) map[string]string {
	opts := map[string]string{}
	set := func(k, v string) {
		if v != "" {
			opts[k] = v
		}
	}
	switch backend {
	case "kotlin":
		set("package", c.Kotlin.Package)
		set("library", c.Kotlin.Library)
	case "python":
		set("library", c.Python.Library)
	case "go":
		set("package", c.Go.Package)
		set("library", c.Go.Library)
	}
	return opts
}
