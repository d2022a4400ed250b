// Config loading for the trialmirror CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/trialmirror/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyDataDir    = "data_dir"
	cfgKeyListenAddr = "listen_addr"
	cfgKeyBaseURL    = "fetch.base_url"
	cfgKeyPageSize   = "fetch.page_size"
	cfgKeyPageDelay  = "fetch.page_delay"
	cfgKeyRetryWait  = "fetch.retry_wait"
	cfgKeyTimeout    = "fetch.timeout"
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# trialmirror configuration

# Data directory holding trials.db (optional; overridable by --data-dir)
# data_dir:

# Read API listen address
listen_addr: ":8080"

# Upstream catalog client
fetch:
  base_url: https://clinicaltrials.gov/api/v2/studies
  page_size: 1000
  page_delay: 500ms
  retry_wait: 60s
  timeout: 30s
`

// loadConfig reads config.yaml from the config directory using Viper,
// creating the directory and a default file on first run. A missing
// config.yaml is not an error; defaults apply.
func loadConfig(configDir string) (types.Config, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return types.Config{}, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return types.Config{}, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyListenAddr, types.DefaultListenAddr)
	v.SetDefault(cfgKeyBaseURL, types.DefaultBaseURL)
	v.SetDefault(cfgKeyPageSize, types.DefaultPageSize)
	v.SetDefault(cfgKeyPageDelay, types.DefaultPageDelay)
	v.SetDefault(cfgKeyRetryWait, types.DefaultRetryWait)
	v.SetDefault(cfgKeyTimeout, types.DefaultTimeout)

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return types.Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := types.Config{
		DataDir:    v.GetString(cfgKeyDataDir),
		ListenAddr: v.GetString(cfgKeyListenAddr),
		Fetch: types.FetchConfig{
			BaseURL:   v.GetString(cfgKeyBaseURL),
			PageSize:  v.GetInt(cfgKeyPageSize),
			PageDelay: v.GetDuration(cfgKeyPageDelay),
			RetryWait: v.GetDuration(cfgKeyRetryWait),
			Timeout:   v.GetDuration(cfgKeyTimeout),
		},
	}
	return cfg, nil
}

// ensureDefaultConfigFile creates config.yaml if it does not exist.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
