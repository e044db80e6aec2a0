package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConf struct {
	Env                 string `mapstructure:"env"`
	Port                int    `mapstructure:"port"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds"`
	IdleTimeoutSeconds  int    `mapstructure:"idle_timeout_seconds"`
	ShutdownSeconds     int    `mapstructure:"shutdown_seconds"`
}

type MongoConf struct {
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

type RedisConf struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConf struct {
	AccessSecret   string `mapstructure:"access_secret"`
	RefreshSecret  string `mapstructure:"refresh_secret"`
	AccessTTLDays  int    `mapstructure:"access_ttl_days"`
	RefreshTTLDays int    `mapstructure:"refresh_ttl_days"`
}

type SecurityConf struct {
	APIKeySecret         string `mapstructure:"api_key_secret"`
	APIKeyReference      string `mapstructure:"api_key_reference"`
	BcryptCost           int    `mapstructure:"bcrypt_cost"`
	SignInLimitPerMinute int    `mapstructure:"signin_limit_per_minute"`
	VerifySendPerHour    int    `mapstructure:"verify_send_per_hour"`
}

type OAuthClientConf struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
}

type OAuthConf struct {
	Google   OAuthClientConf `mapstructure:"google"`
	Facebook OAuthClientConf `mapstructure:"facebook"`
}

type EmailConf struct {
	BrevoAPIKey string `mapstructure:"brevo_api_key"`
	FromEmail   string `mapstructure:"from_email"`
	FromName    string `mapstructure:"from_name"`
}

type Config struct {
	App      AppConf      `mapstructure:"app"`
	Mongo    MongoConf    `mapstructure:"mongo"`
	Redis    RedisConf    `mapstructure:"redis"`
	JWT      JWTConf      `mapstructure:"jwt"`
	Security SecurityConf `mapstructure:"security"`
	OAuth    OAuthConf    `mapstructure:"oauth"`
	Email    EmailConf    `mapstructure:"email"`

	// derived
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
}

// Load reads the YAML config and applies environment overrides
// (APP_MONGO_URI, APP_JWT_ACCESS_SECRET, ...).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.App.Port == 0 {
		cfg.App.Port = 5000
	}
	if cfg.App.ReadTimeoutSeconds == 0 {
		cfg.App.ReadTimeoutSeconds = 15
	}
	if cfg.App.WriteTimeoutSeconds == 0 {
		cfg.App.WriteTimeoutSeconds = 15
	}
	if cfg.App.IdleTimeoutSeconds == 0 {
		cfg.App.IdleTimeoutSeconds = 60
	}
	if cfg.App.ShutdownSeconds == 0 {
		cfg.App.ShutdownSeconds = 10
	}
	if cfg.Mongo.Collection == "" {
		cfg.Mongo.Collection = "users"
	}
	// The 30d access / 7d refresh defaults mirror the deployed API; the
	// inversion is configurable, not hardcoded.
	if cfg.JWT.AccessTTLDays == 0 {
		cfg.JWT.AccessTTLDays = 30
	}
	if cfg.JWT.RefreshTTLDays == 0 {
		cfg.JWT.RefreshTTLDays = 7
	}
	if cfg.Security.BcryptCost == 0 {
		cfg.Security.BcryptCost = 10
	}
	if cfg.Security.SignInLimitPerMinute == 0 {
		cfg.Security.SignInLimitPerMinute = 20
	}
	if cfg.Security.VerifySendPerHour == 0 {
		cfg.Security.VerifySendPerHour = 5
	}

	if cfg.Mongo.URI == "" {
		return nil, errors.New("mongo.uri is required")
	}
	if cfg.JWT.AccessSecret == "" || cfg.JWT.RefreshSecret == "" {
		return nil, errors.New("jwt.access_secret and jwt.refresh_secret are required")
	}
	if cfg.Security.APIKeySecret == "" || cfg.Security.APIKeyReference == "" {
		return nil, errors.New("security.api_key_secret and security.api_key_reference are required")
	}

	cfg.ReadTimeout = time.Duration(cfg.App.ReadTimeoutSeconds) * time.Second
	cfg.WriteTimeout = time.Duration(cfg.App.WriteTimeoutSeconds) * time.Second
	cfg.IdleTimeout = time.Duration(cfg.App.IdleTimeoutSeconds) * time.Second
	cfg.ShutdownTimeout = time.Duration(cfg.App.ShutdownSeconds) * time.Second
	cfg.AccessTTL = time.Duration(cfg.JWT.AccessTTLDays) * 24 * time.Hour
	cfg.RefreshTTL = time.Duration(cfg.JWT.RefreshTTLDays) * 24 * time.Hour

	return &cfg, nil
}
