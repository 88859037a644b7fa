// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kkyr/fig"
	"golang.org/x/text/language"

	"github.com/wneessen/weather-widget/internal/store"
)

const (
	configEnv = "WEATHERWIDGET"

	// AppDir is the directory below the user config dir that holds config and state files
	AppDir = "weather-widget"

	GeocoderOpenMeteo = "open-meteo"
	GeocoderNominatim = "nominatim"

	DefaultCardTpl = "{{.Current.Icon}} {{.Current.DisplayName}}\n" +
		"{{.Current.Description}}, {{.Current.Temperature}}°C\n" +
		"Feels like: {{.FeelsLike}}\nHumidity: {{.Humidity}}\nWind: {{.Wind}}\n" +
		"Sunrise: {{timeFormat .SunriseTime \"15:04 MST\"}}  Sunset: {{timeFormat .SunsetTime \"15:04 MST\"}}\n" +
		"Moon: {{.MoonphaseIconWithSpace}}{{.Moonphase}}"

	minRefreshInterval = time.Minute
)

// Config represents the application's configuration structure.
type Config struct {
	LogLevel slog.Level `fig:"loglevel" default:"0"`
	// BCP 47 language tag for geocoding results
	Language string `fig:"language" default:"en"`

	Geocoding struct {
		// Allowed values: open-meteo, nominatim
		Provider string `fig:"provider" default:"open-meteo"`
		Endpoint string `fig:"endpoint"`
	} `fig:"geocoding"`

	Weather struct {
		Endpoint string `fig:"endpoint"`
	} `fig:"weather"`

	HTTP struct {
		Timeout time.Duration `fig:"timeout" default:"10s"`
	} `fig:"http"`

	Store struct {
		// Allowed values: yaml, sqlite, memory
		Backend string `fig:"backend" default:"yaml"`
		Path    string `fig:"path"`
	} `fig:"store"`

	Templates struct {
		Card string `fig:"card"`
	} `fig:"templates"`

	Server struct {
		Addr           string   `fig:"addr" default:"127.0.0.1:8080"`
		AllowedOrigins []string `fig:"allowed_origins"`
	} `fig:"server"`

	Intervals struct {
		Refresh time.Duration `fig:"refresh" default:"15m"`
	} `fig:"intervals"`

	lang language.Tag
}

func NewFromFile(path, file string) (*Config, error) {
	conf := new(Config)
	_, err := os.Stat(filepath.Join(path, file))
	if err != nil {
		return conf, fmt.Errorf("failed to read Config: %w", err)
	}
	if err = fig.Load(conf, fig.Dirs(path), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func New() (*Config, error) {
	conf := new(Config)
	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, conf.Validate()
}

func (c *Config) Validate() error {
	lang, err := language.Parse(c.Language)
	if err != nil {
		return fmt.Errorf("invalid language %q: %w", c.Language, err)
	}
	c.lang = lang

	c.Geocoding.Provider = strings.ToLower(c.Geocoding.Provider)
	switch c.Geocoding.Provider {
	case GeocoderOpenMeteo, GeocoderNominatim:
	default:
		return fmt.Errorf("unsupported geocoding provider: %s", c.Geocoding.Provider)
	}

	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("invalid HTTP timeout: %s", c.HTTP.Timeout)
	}
	if c.Intervals.Refresh < minRefreshInterval {
		return fmt.Errorf("refresh interval must be at least %s, got %s", minRefreshInterval, c.Intervals.Refresh)
	}

	c.Store.Backend = strings.ToLower(c.Store.Backend)
	switch c.Store.Backend {
	case store.BackendYAML:
		if c.Store.Path == "" {
			c.Store.Path = defaultStatePath("state.yaml")
		}
	case store.BackendSQLite:
		if c.Store.Path == "" {
			c.Store.Path = defaultStatePath("state.db")
		}
	case store.BackendMemory:
	default:
		return fmt.Errorf("unsupported store backend: %s", c.Store.Backend)
	}

	if c.Templates.Card == "" {
		c.Templates.Card = DefaultCardTpl
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}

	return nil
}

// LanguageTag returns the parsed Language. It is only valid after Validate succeeded.
func (c *Config) LanguageTag() language.Tag {
	return c.lang
}

// Dir returns the directory config and state files are looked up in by default.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", AppDir)
}

func defaultStatePath(file string) string {
	return filepath.Join(Dir(), file)
}
