package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the triage service
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	Provider  ProviderConfig  `mapstructure:"provider"`
	Search    SearchConfig    `mapstructure:"search"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Databases DatabasesConfig `mapstructure:"databases"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig contains HTTP server and auth settings
type ServerConfig struct {
	Address     string   `mapstructure:"address"`
	JWTSecret   string   `mapstructure:"jwt_secret"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// ProviderConfig describes the model-router backend and its deployments.
type ProviderConfig struct {
	Endpoint    string        `mapstructure:"endpoint"`
	APIKey      string        `mapstructure:"api_key"`
	APIVersion  string        `mapstructure:"api_version"`
	Deployments Deployments   `mapstructure:"deployments"`
	UseRouter   bool          `mapstructure:"use_router"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// Deployments names the backend deployment for each capability.
type Deployments struct {
	Router   string `mapstructure:"router"`
	Admin    string `mapstructure:"admin"`
	Clinical string `mapstructure:"clinical"`
	Vision   string `mapstructure:"vision"`
}

// SearchConfig controls the local knowledge-base retriever.
type SearchConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	IndexPath string `mapstructure:"index_path"`
	TopK      int    `mapstructure:"top_k"`
}

// TelemetryConfig contains audit-sink settings
type TelemetryConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	LogFile       string `mapstructure:"log_file"`
	RedisStream   string `mapstructure:"redis_stream"`
	RedisMaxLen   int64  `mapstructure:"redis_maxlen"`
	PostgresAudit bool   `mapstructure:"postgres_audit"`
}

// DatabasesConfig carries optional backing stores for the audit trail.
type DatabasesConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Pass string `mapstructure:"pass"`
	DB   int    `mapstructure:"db"`
}

// DSN builds a Postgres connection string from either the URL or the parts.
func (p PostgresConfig) DSN() (string, error) {
	if p.URL != "" {
		return p.URL, nil
	}
	if p.Host == "" || p.DBName == "" {
		return "", fmt.Errorf("postgres not configured (databases.postgres.host/dbname or url)")
	}
	port := p.Port
	if port == "" {
		port = "5432"
	}
	ssl := p.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", p.User, p.Password, p.Host, port, p.DBName, ssl), nil
}

func (s SearchConfig) Validate() error {
	if s.Enabled && strings.TrimSpace(s.IndexPath) == "" {
		return fmt.Errorf("search.index_path is required when search is enabled")
	}
	if s.TopK < 0 {
		return fmt.Errorf("search.top_k cannot be negative")
	}
	return nil
}

func (p ProviderConfig) Validate() error {
	if strings.TrimSpace(p.Endpoint) == "" {
		return fmt.Errorf("provider.endpoint is required")
	}
	if strings.TrimSpace(p.APIKey) == "" {
		return fmt.Errorf("provider.api_key is required")
	}
	return nil
}

// Normalize applies defaults for unset provider values.
func (p ProviderConfig) Normalize() ProviderConfig {
	if p.APIVersion == "" {
		p.APIVersion = "2024-02-15-preview"
	}
	if p.Deployments.Router == "" {
		p.Deployments.Router = "model-router"
	}
	if p.Deployments.Admin == "" {
		p.Deployments.Admin = "gpt-35-turbo"
	}
	if p.Deployments.Clinical == "" {
		p.Deployments.Clinical = "gpt-4"
	}
	if p.Deployments.Vision == "" {
		p.Deployments.Vision = "gpt-4-vision"
	}
	if p.Timeout <= 0 {
		p.Timeout = 60 * time.Second
	}
	return p
}

// LoadConfig reads configuration from file and environment (CARETRIAGE_*).
func LoadConfig(path string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("json")
	viper.SetDefault("general.log_level", "info")
	viper.SetDefault("server.address", ":8000")
	viper.SetDefault("server.cors_origins", []string{"http://localhost:5173", "http://localhost:3000"})
	viper.SetDefault("provider.use_router", true)
	viper.SetDefault("search.top_k", 3)
	viper.SetDefault("telemetry.enabled", true)
	viper.SetDefault("telemetry.redis_maxlen", 10000)

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		viper.AddConfigPath(exeDir)
		viper.AddConfigPath(filepath.Join(exeDir, ".."))
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("CARETRIAGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional; environment variables can carry everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Provider = cfg.Provider.Normalize()
	if err := cfg.Search.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
