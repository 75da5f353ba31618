package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ProfileEnv selects configs/config-<profile>.yaml instead of configs/config.yaml.
const ProfileEnv = "PROFILES_ACTIVE"

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Reduction  ReductionConfig  `mapstructure:"reduction"`
	Projection ProjectionConfig `mapstructure:"projection"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres, sqlite
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	Path            string        `mapstructure:"path"` // sqlite file
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN returns the connection string for the configured driver.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "sqlite" {
		return c.Path
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type StorageConfig struct {
	Type      string `mapstructure:"type"` // minio, s3, s3compatible, r2, memory
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Region    string `mapstructure:"region"`
}

type ProjectionConfig struct {
	DefaultNeighbors int    `mapstructure:"default_neighbors"`
	Workers          int    `mapstructure:"workers"`
	AuditUser        string `mapstructure:"audit_user"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	FileOnly   bool   `mapstructure:"file_only"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// Load reads the configuration file, applies defaults and environment overrides.
// An empty configPath looks for config.yaml (or config-<profile>.yaml) under ./configs and ".".
func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		name := "config"
		if profile := os.Getenv(ProfileEnv); profile != "" {
			name = "config-" + profile
		}
		v.SetConfigName(name)
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Explicit bindings for secrets and connection endpoints
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.name", "DB_NAME")
	v.BindEnv("storage.endpoint", "MINIO_ENDPOINT")
	v.BindEnv("storage.access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("storage.secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("storage.use_ssl", "MINIO_USE_SSL")
	v.BindEnv("reduction.base_url", "REDUCER_BASE_URL")
	v.BindEnv("reduction.api_key", "REDUCER_API_KEY")
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.file", "LOG_FILE")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Reduction.ResolveEnvVars()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", false)
	v.SetDefault("server.cors.allowed_origins", []string{})

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "morphingprojections")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "./data/projections.db")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", false)

	v.SetDefault("storage.type", "minio")
	v.SetDefault("storage.endpoint", "localhost:9000")
	v.SetDefault("storage.use_ssl", false)

	v.SetDefault("reduction.method", "remote")
	v.SetDefault("reduction.base_url", "http://localhost:8000")
	v.SetDefault("reduction.timeout", 10*time.Minute)
	v.SetDefault("reduction.learning_rate", 200.0)
	v.SetDefault("reduction.max_iter", 2000)
	v.SetDefault("reduction.init", "pca")
	v.SetDefault("reduction.tsne_method", "barnes_hut")

	v.SetDefault("projection.default_neighbors", 20)
	v.SetDefault("projection.workers", 1)
	v.SetDefault("projection.audit_user", "Administrator")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age", 30)
	v.SetDefault("log.compress", true)
}

// Validate checks the settings the job cannot run without.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("database: unknown driver %q", c.Database.Driver)
	}
	if c.Projection.DefaultNeighbors < 1 {
		return fmt.Errorf("projection: default_neighbors must be positive")
	}
	if c.Projection.Workers < 1 {
		return fmt.Errorf("projection: workers must be positive")
	}
	return c.Reduction.Validate()
}
