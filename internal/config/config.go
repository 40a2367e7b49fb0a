package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix           = "ATTENDBOT"
	defaultHTTPAddress  = "0.0.0.0:8080"
	defaultDatabasePath = "attendbot.db"
	defaultSettingsPath = "settings.yaml"
	defaultLogLevel     = "info"
	defaultIssuer       = "chat-platform"
	defaultAudience     = "attendbot"
)

// AppConfig captures runtime configuration for the bot server.
type AppConfig struct {
	HTTPAddress     string
	DatabasePath    string
	SettingsPath    string
	PlatformBaseURL string
	PlatformToken   string
	CallbackSecret  string
	CallbackIssuer  string
	CallbackAud     string
	LogLevel        string
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("settings.path", defaultSettingsPath)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("callback.issuer", defaultIssuer)
	configViper.SetDefault("callback.audience", defaultAudience)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:     configViper.GetString("http.address"),
		DatabasePath:    configViper.GetString("database.path"),
		SettingsPath:    configViper.GetString("settings.path"),
		PlatformBaseURL: configViper.GetString("platform.base_url"),
		PlatformToken:   configViper.GetString("platform.bot_token"),
		CallbackSecret:  configViper.GetString("callback.signing_secret"),
		CallbackIssuer:  configViper.GetString("callback.issuer"),
		CallbackAud:     configViper.GetString("callback.audience"),
		LogLevel:        configViper.GetString("log.level"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database.path is required")
	}
	if strings.TrimSpace(c.SettingsPath) == "" {
		return fmt.Errorf("settings.path is required")
	}
	if strings.TrimSpace(c.PlatformBaseURL) == "" {
		return fmt.Errorf("platform.base_url is required")
	}
	if strings.TrimSpace(c.PlatformToken) == "" {
		return fmt.Errorf("platform.bot_token is required")
	}
	if strings.TrimSpace(c.CallbackSecret) == "" {
		return fmt.Errorf("callback.signing_secret is required")
	}
	return nil
}
