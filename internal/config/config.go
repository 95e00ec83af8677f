package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config holds the daemon-wide defaults. Per-job retry settings on the
// start command override these.
type Config struct {
	DataDir         string  `json:"data_dir"`
	MaxRetries      int     `json:"max_retries"`
	RetryDelayMs    int64   `json:"retry_delay_ms"`
	BackoffMult     float64 `json:"backoff_mult"`
	MaxRetryDelayMs int64   `json:"max_retry_delay_ms"`
}

const configFileName = "config.json"

// NewConfig creates a config with default values.
func NewConfig() *Config {
	dataDir := ".jobd"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".jobd")
	}
	return &Config{
		DataDir:         dataDir,
		MaxRetries:      3,
		RetryDelayMs:    1000,
		BackoffMult:     2.0,
		MaxRetryDelayMs: 60000,
	}
}

func configPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	appConfigDir := filepath.Join(configDir, "jobd")
	if err := os.MkdirAll(appConfigDir, 0755); err != nil {
		return "", err
	}
	return filepath.Join(appConfigDir, configFileName), nil
}

func LoadConfig() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	cfg := NewConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// First run: persist the defaults so `config show` has a file.
			return cfg, SaveConfig(cfg)
		}
		return nil, err
	}
	if err := json.Unmarshal(file, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func SaveConfig(cfg *Config) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
