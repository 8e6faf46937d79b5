package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/larder/internal/paths"
	"github.com/mesh-intelligence/larder/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "LARDER"

	cfgKeyServer      = "server"
	cfgKeyAPIBase     = "api_base"
	cfgKeyDataDir     = "data_dir"
	cfgKeyLogLevel    = "log_level"
	cfgKeyLogFormat   = "log_format"
	cfgKeySearchDelay = "search_delay_ms"
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# larder configuration
# Every key can also be set with a LARDER_ environment variable,
# e.g. LARDER_SERVER or LARDER_API_BASE.

# Backend origin. Required unless api_base is an absolute URL.
# server: https://recipes.example.com

# API base path appended to server, or an absolute URL.
api_base: /api

# Cache directory (optional; overridable by --data-dir).
# data_dir:

# debug, info, warn or error
log_level: warn

# text or json
log_format: text

# Quiet period before an interactive search runs.
search_delay_ms: 300
`

// flagKeys binds global flags to config keys. A flag that was set wins over
// the environment and config.yaml.
var flagKeys = map[string]string{
	"server":    cfgKeyServer,
	"api-base":  cfgKeyAPIBase,
	"log-level": cfgKeyLogLevel,
}

// loadConfig reads config.yaml from configDir, creating the directory and a
// default file on first run. A missing config.yaml is not an error.
func loadConfig(configDir string, flags *pflag.FlagSet) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyAPIBase, types.DefaultAPIBase)
	v.SetDefault(cfgKeyLogLevel, types.DefaultLogLevel)
	v.SetDefault(cfgKeyLogFormat, types.DefaultLogFormat)
	v.SetDefault(cfgKeySearchDelay, types.DefaultSearchDelayMS)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		if f := flags.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// configFromViper builds the process Config from resolved keys.
func configFromViper(v *viper.Viper) types.Config {
	return types.Config{
		Server:        v.GetString(cfgKeyServer),
		APIBase:       v.GetString(cfgKeyAPIBase),
		DataDir:       v.GetString(cfgKeyDataDir),
		LogLevel:      v.GetString(cfgKeyLogLevel),
		LogFormat:     v.GetString(cfgKeyLogFormat),
		SearchDelayMS: v.GetInt(cfgKeySearchDelay),
	}
}

// ensureDefaultConfigFile writes defaultConfigYAML unless config.yaml exists.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, paths.ConfigFileName)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
