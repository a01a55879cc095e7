package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// ConfigName is the config file base name, searched with yaml extensions.
const ConfigName = ".fieldsheet"

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	configFile  string
	searchPaths []string
}

// NewLoader creates a loader that searches searchPaths, in order, for
// .fieldsheet.yaml. A missing file is not an error.
func NewLoader(searchPaths ...string) Loader {
	return &loader{
		searchPaths: searchPaths,
	}
}

// NewFileLoader creates a loader for an explicit config file, which must exist.
func NewFileLoader(configFile string) Loader {
	return &loader{
		configFile: configFile,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (FIELDSHEET_*)
// 2. Config file
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		for _, p := range l.searchPaths {
			v.AddConfigPath(p)
		}
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("FIELDSHEET")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., FIELDSHEET_OUTPUT_LOG_FILE)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Only a searched-for file may be absent
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || l.configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// bindEnvVars binds every config key to its FIELDSHEET_* variable.
func bindEnvVars(v *viper.Viper) {
	v.BindEnv("source.extension")
	v.BindEnv("source.include")
	v.BindEnv("source.ignore")
	v.BindEnv("sheet.headers")
	v.BindEnv("output.extension")
	v.BindEnv("output.log_file")
	v.BindEnv("jobs")
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("source.extension", defaults.Source.Extension)
	v.SetDefault("source.include", defaults.Source.Include)
	v.SetDefault("source.ignore", defaults.Source.Ignore)

	v.SetDefault("sheet.headers", defaults.Sheet.Headers)

	v.SetDefault("output.extension", defaults.Output.Extension)
	v.SetDefault("output.log_file", defaults.Output.LogFile)

	v.SetDefault("jobs", defaults.Jobs)
}

// LoadConfig loads configuration from cfgFile when set, otherwise from the
// working directory and then the home directory.
func LoadConfig(cfgFile string) (*Config, error) {
	if cfgFile != "" {
		return NewFileLoader(cfgFile).Load()
	}

	var paths []string
	if wd, err := os.Getwd(); err == nil {
		paths = append(paths, wd)
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home)
	}
	return NewLoader(paths...).Load()
}
