package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Content backends.
const (
	BackendSanity  = "sanity"
	BackendMongo   = "mongo"
	BackendFixture = "fixture"
)

// Asset backends.
const (
	AssetsSanity = "sanity"
	AssetsMinIO  = "minio"
)

// Config holds application configuration
type Config struct {
	Server  ServerConfig
	Site    SiteConfig
	Sanity  SanityConfig
	Content ContentConfig
	MongoDB MongoDBConfig
	Redis   RedisConfig
	Assets  AssetsConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type SiteConfig struct {
	Title string
	Intro string
}

// SanityConfig addresses the hosted content repository.
type SanityConfig struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	UseCDN     bool
	Token      string
	Timeout    time.Duration
}

type ContentConfig struct {
	Backend     string
	FixturePath string
	// Revalidate is how long a detail fetch may be served from cache.
	Revalidate time.Duration
}

type MongoDBConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port, or "" when Redis is not configured.
func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	return r.Host + ":" + r.Port
}

type AssetsConfig struct {
	Backend string
	MinIO   MinIOConfig
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	URLExpiry time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "3000")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_ENVIRONMENT", "development")
	viper.SetDefault("SERVER_SHUTDOWN_TIMEOUT", 10)
	viper.SetDefault("SITE_TITLE", "iSchool Undergraduate Student Council • Resources")
	viper.SetDefault("SITE_INTRO", "Howdy! This is the iSchool Undergraduate Student Council's resource page. Here you will find all the information that we have found to be helpful for iSchool students.")
	viper.SetDefault("SANITY_DATASET", "production")
	viper.SetDefault("SANITY_API_VERSION", "2023-12-01")
	viper.SetDefault("SANITY_USE_CDN", false)
	viper.SetDefault("SANITY_TIMEOUT", 10)
	viper.SetDefault("CONTENT_BACKEND", BackendSanity)
	viper.SetDefault("CONTENT_REVALIDATE_SECONDS", 30)
	viper.SetDefault("MONGODB_DATABASE", "resources")
	viper.SetDefault("MONGODB_COLLECTION", "posts")
	viper.SetDefault("MONGODB_TIMEOUT", 10)
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("ASSET_BACKEND", AssetsSanity)
	viper.SetDefault("MINIO_BUCKET", "resources")
	viper.SetDefault("MINIO_URL_EXPIRY_MINUTES", 60)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")

	cfg := &Config{
		Server: ServerConfig{
			Port:            viper.GetString("SERVER_PORT"),
			Host:            viper.GetString("SERVER_HOST"),
			Environment:     viper.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: time.Duration(viper.GetInt("SERVER_SHUTDOWN_TIMEOUT")) * time.Second,
		},
		Site: SiteConfig{
			Title: viper.GetString("SITE_TITLE"),
			Intro: viper.GetString("SITE_INTRO"),
		},
		Sanity: SanityConfig{
			ProjectID:  viper.GetString("SANITY_PROJECT_ID"),
			Dataset:    viper.GetString("SANITY_DATASET"),
			APIVersion: viper.GetString("SANITY_API_VERSION"),
			UseCDN:     viper.GetBool("SANITY_USE_CDN"),
			Token:      viper.GetString("SANITY_TOKEN"),
			Timeout:    time.Duration(viper.GetInt("SANITY_TIMEOUT")) * time.Second,
		},
		Content: ContentConfig{
			Backend:     strings.ToLower(viper.GetString("CONTENT_BACKEND")),
			FixturePath: viper.GetString("CONTENT_FIXTURE_PATH"),
			Revalidate:  time.Duration(viper.GetInt("CONTENT_REVALIDATE_SECONDS")) * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:        viper.GetString("MONGODB_URI"),
			Database:   viper.GetString("MONGODB_DATABASE"),
			Collection: viper.GetString("MONGODB_COLLECTION"),
			Timeout:    time.Duration(viper.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Assets: AssetsConfig{
			Backend: strings.ToLower(viper.GetString("ASSET_BACKEND")),
			MinIO: MinIOConfig{
				Endpoint:  viper.GetString("MINIO_ENDPOINT"),
				AccessKey: viper.GetString("MINIO_ACCESS_KEY"),
				SecretKey: viper.GetString("MINIO_SECRET_KEY"),
				UseSSL:    viper.GetBool("MINIO_USE_SSL"),
				Bucket:    viper.GetString("MINIO_BUCKET"),
				URLExpiry: time.Duration(viper.GetInt("MINIO_URL_EXPIRY_MINUTES")) * time.Minute,
			},
		},
		Log: LogConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected backends have what they need.
func (c *Config) Validate() error {
	switch c.Content.Backend {
	case BackendSanity:
		if c.Sanity.ProjectID == "" {
			return fmt.Errorf("SANITY_PROJECT_ID is required for the %q content backend", BackendSanity)
		}
		if c.Sanity.Dataset == "" {
			return fmt.Errorf("SANITY_DATASET is required")
		}
	case BackendMongo:
		if c.MongoDB.URI == "" {
			return fmt.Errorf("MONGODB_URI is required for the %q content backend", BackendMongo)
		}
	case BackendFixture:
		if c.Content.FixturePath == "" {
			return fmt.Errorf("CONTENT_FIXTURE_PATH is required for the %q content backend", BackendFixture)
		}
	default:
		return fmt.Errorf("unknown CONTENT_BACKEND %q", c.Content.Backend)
	}

	switch c.Assets.Backend {
	case AssetsSanity:
	case AssetsMinIO:
		if c.Assets.MinIO.Endpoint == "" {
			return fmt.Errorf("MINIO_ENDPOINT is required for the %q asset backend", AssetsMinIO)
		}
	default:
		return fmt.Errorf("unknown ASSET_BACKEND %q", c.Assets.Backend)
	}

	if c.Content.Revalidate < 0 {
		return fmt.Errorf("CONTENT_REVALIDATE_SECONDS must not be negative")
	}
	return nil
}
