// Package config loads sitelog settings from .sitelog files and SITELOG_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Keys understood in .sitelog and as SITELOG_<KEY> (dots become underscores).
const (
	KeyPath       = "path"
	KeyAPIURL     = "api.url"
	KeyAPIToken   = "api.token"
	KeyAPITimeout = "api.timeout"
	KeyScope      = "scope"
	KeyRole       = "role"
	KeyTimezone   = "timezone"
	KeyLogLevel   = "log.level"
	KeyLogFormat  = "log.format"
	KeyLogFile    = "log.file"
)

// Config is the resolved configuration.
type Config struct {
	Path       string        `json:"path"`
	APIURL     string        `json:"apiUrl,omitempty"`
	APIToken   string        `json:"-"`
	APITimeout time.Duration `json:"apiTimeout"`
	Scope      string        `json:"scope,omitempty"`
	Role       string        `json:"role"`
	Timezone   string        `json:"timezone,omitempty"`
	LogLevel   string        `json:"logLevel"`
	LogFormat  string        `json:"logFormat"`
	LogFile    string        `json:"logFile,omitempty"`
}

// BasePath is where snapshots live.
func (c *Config) BasePath() string {
	return c.Path
}

// Location resolves Timezone, defaulting to the local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Offline reports whether no API is configured, so only snapshots are read.
func (c *Config) Offline() bool {
	return c.APIURL == ""
}

// Load walks ./ and SITELOG_CONFIG_PATH looking for a .sitelog file and
// overlays the environment.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault(KeyPath, "~/.sitelog.db")
	v.SetDefault(KeyAPITimeout, "10s")
	v.SetDefault(KeyRole, "viewer")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetConfigName(".sitelog") // .yaml is implicit
	v.SetEnvPrefix("SITELOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if override := os.Getenv("SITELOG_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	path, err := homedir.Expand(v.GetString(KeyPath))
	if err != nil {
		return nil, fmt.Errorf("config: expand path: %w", err)
	}
	return &Config{
		Path:       path,
		APIURL:     v.GetString(KeyAPIURL),
		APIToken:   v.GetString(KeyAPIToken),
		APITimeout: v.GetDuration(KeyAPITimeout),
		Scope:      v.GetString(KeyScope),
		Role:       v.GetString(KeyRole),
		Timezone:   v.GetString(KeyTimezone),
		LogLevel:   v.GetString(KeyLogLevel),
		LogFormat:  v.GetString(KeyLogFormat),
		LogFile:    v.GetString(KeyLogFile),
	}, nil
}
