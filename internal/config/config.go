package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v9"
)

// Config represents runtime configuration for the service.
type Config struct {
	BasicConfig BasicConfig               `json:"basic_config"`
	Databases   map[string]DatabaseConfig `json:"databases"`
	Redis       RedisConfig               `json:"redis"`
	Providers   ProvidersConfig           `json:"providers"`
}

type BasicConfig struct {
	ServerAddress string `json:"server_address"`
	AppURL        string `json:"app_url"`
	AppTitle      string `json:"app_title"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	Params   string `json:"params"`
}

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// ProvidersConfig holds the primary and backup completion endpoints.
type ProvidersConfig struct {
	Primary ProviderConfig `json:"primary"`
	Backup  ProviderConfig `json:"backup"`
}

type ProviderConfig struct {
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
	APIKey  string `json:"api_key"`
}

// secrets are never read from the config file; they come from the
// environment and override whatever the file carries.
type secrets struct {
	PrimaryAPIKey string `env:"OPENROUTER_API_KEY"`
	BackupAPIKey  string `env:"GEMINI_API_KEY"`
	AppURL        string `env:"APP_URL"`
}

// Load reads configuration from the provided path (defaults to config.json)
// and applies environment overrides for the API keys.
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.json"
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("open config %s: %w", absPath, err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	var sec secrets
	if err := env.Parse(&sec); err != nil {
		return nil, fmt.Errorf("parse env overrides: %w", err)
	}
	if sec.PrimaryAPIKey != "" {
		cfg.Providers.Primary.APIKey = sec.PrimaryAPIKey
	}
	if sec.BackupAPIKey != "" {
		cfg.Providers.Backup.APIKey = sec.BackupAPIKey
	}
	if sec.AppURL != "" {
		cfg.BasicConfig.AppURL = sec.AppURL
	}

	if cfg.BasicConfig.AppTitle == "" {
		cfg.BasicConfig.AppTitle = "Yasmin GPT Chat"
	}
	if cfg.BasicConfig.AppURL == "" {
		cfg.BasicConfig.AppURL = "http://localhost:5000"
	}
	if len(cfg.Databases) == 0 {
		return nil, fmt.Errorf("at least one database must be configured")
	}

	return &cfg, nil
}
