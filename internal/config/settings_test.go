package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NielsdaWheelz/mkservice/internal/errors"
)

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := LoadSettings(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "", s.TemplateDir)
	assert.Equal(t, "my-service", s.DefaultName)
	assert.Equal(t, 3000, s.Port)
	assert.Equal(t, 3*time.Second, s.BrowserDelay)
	assert.Equal(t, "npm", s.PackageManager)
	assert.Equal(t, "docker", s.ContainerTool)
	assert.Equal(t, "warn", s.LogLevel)
}

func TestLoadSettings_Overrides(t *testing.T) {
	s, err := LoadSettings(map[string]string{
		"MKSERVICE_TEMPLATE_DIR":    "/srv/templates/go",
		"MKSERVICE_DEFAULT_NAME":    "orders",
		"MKSERVICE_PORT":            "8080",
		"MKSERVICE_BROWSER_DELAY":   "500ms",
		"MKSERVICE_PACKAGE_MANAGER": "pnpm",
		"MKSERVICE_CONTAINER_TOOL":  "podman",
		"MKSERVICE_LOG_LEVEL":       "debug",
		"PORT":                      "9999", // unprefixed variables are ignored
	})
	require.NoError(t, err)

	assert.Equal(t, "/srv/templates/go", s.TemplateDir)
	assert.Equal(t, "orders", s.DefaultName)
	assert.Equal(t, 8080, s.Port)
	assert.Equal(t, 500*time.Millisecond, s.BrowserDelay)
	assert.Equal(t, "pnpm", s.PackageManager)
	assert.Equal(t, "podman", s.ContainerTool)
	assert.Equal(t, "debug", s.LogLevel)
}

func TestLoadSettings_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		environ map[string]string
	}{
		{"port not a number", map[string]string{"MKSERVICE_PORT": "http"}},
		{"port out of range", map[string]string{"MKSERVICE_PORT": "70000"}},
		{"port zero", map[string]string{"MKSERVICE_PORT": "0"}},
		{"negative delay", map[string]string{"MKSERVICE_BROWSER_DELAY": "-1s"}},
		{"bad delay", map[string]string{"MKSERVICE_BROWSER_DELAY": "soon"}},
		{"tool with args", map[string]string{"MKSERVICE_PACKAGE_MANAGER": "npm --silent"}},
		{"blank default name", map[string]string{"MKSERVICE_DEFAULT_NAME": "   "}},
		{"unknown log level", map[string]string{"MKSERVICE_LOG_LEVEL": "loud"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSettings(tt.environ)
			require.Error(t, err)
			assert.Equal(t, errors.EConfigInvalid, errors.GetCode(err))
		})
	}
}

func TestValidate_NamesField(t *testing.T) {
	s := Settings{DefaultName: "x", Port: 3000, PackageManager: "npm", ContainerTool: ""}
	err := s.Validate()
	require.Error(t, err)

	se, ok := errors.AsScaffoldError(err)
	require.True(t, ok)
	assert.Equal(t, "MKSERVICE_CONTAINER_TOOL", se.Details["field"])
}
