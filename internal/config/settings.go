// Package config loads mkservice settings from the environment and parses
// template manifests.
package config

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"

	"github.com/NielsdaWheelz/mkservice/internal/errors"
)

// EnvPrefix is prepended to every settings variable name.
const EnvPrefix = "MKSERVICE_"

// Settings holds the environment-driven configuration.
type Settings struct {
	TemplateDir    string        `env:"TEMPLATE_DIR"`
	DefaultName    string        `env:"DEFAULT_NAME" envDefault:"my-service"`
	Port           int           `env:"PORT" envDefault:"3000"`
	BrowserDelay   time.Duration `env:"BROWSER_DELAY" envDefault:"3s"`
	PackageManager string        `env:"PACKAGE_MANAGER" envDefault:"npm"`
	ContainerTool  string        `env:"CONTAINER_TOOL" envDefault:"docker"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"warn"`
}

// LoadSettings parses settings from environ (KEY -> value) and validates them.
// A nil environ reads the process environment.
// Returns E_CONFIG_INVALID on parse or validation failure.
func LoadSettings(environ map[string]string) (Settings, error) {
	var s Settings
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&s, opts); err != nil {
		return Settings{}, errors.Wrap(errors.EConfigInvalid, "parse environment", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks field ranges. Returns E_CONFIG_INVALID naming the variable.
func (s Settings) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return invalid("PORT", fmt.Sprintf("must be between 1 and 65535, got %d", s.Port))
	}
	if s.BrowserDelay < 0 {
		return invalid("BROWSER_DELAY", "must not be negative")
	}
	if err := validateTool("PACKAGE_MANAGER", s.PackageManager); err != nil {
		return err
	}
	if err := validateTool("CONTAINER_TOOL", s.ContainerTool); err != nil {
		return err
	}
	if strings.TrimSpace(s.DefaultName) == "" {
		return invalid("DEFAULT_NAME", "must not be empty")
	}
	if _, err := logrus.ParseLevel(s.LogLevel); err != nil {
		return invalid("LOG_LEVEL", "must be a log level (debug, info, warn, error)")
	}
	return nil
}

func validateTool(field, value string) error {
	if value == "" {
		return invalid(field, "must not be empty")
	}
	if strings.IndexFunc(value, unicode.IsSpace) >= 0 {
		return invalid(field, "must be a single executable (no args)")
	}
	return nil
}

func invalid(field, msg string) error {
	return errors.NewWithDetails(errors.EConfigInvalid, EnvPrefix+field+" "+msg,
		map[string]string{"field": EnvPrefix + field})
}
