package scaffold

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NielsdaWheelz/mkservice/internal/errors"
	"github.com/NielsdaWheelz/mkservice/internal/fs"
	"github.com/NielsdaWheelz/mkservice/internal/templates"
)

func TestResolveTemplate_Embedded(t *testing.T) {
	tmpl, err := ResolveTemplate(fs.NewRealFS(), "", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "embedded:"+templates.Default, tmpl.Source)
	assert.Contains(t, tmpl.Manifest.Substitute, "package.json")
}

func TestResolveTemplate_UserConfigDir(t *testing.T) {
	configDir := t.TempDir()
	dir := filepath.Join(configDir, "templates", templates.Default)
	writeFile(t, filepath.Join(dir, "README.md"), "# {{SERVICE_NAME}} (custom)")

	tmpl, err := ResolveTemplate(fs.NewRealFS(), "", configDir)
	require.NoError(t, err)
	assert.Equal(t, dir, tmpl.Source)
	assert.Equal(t, []string{"README.md"}, tmpl.Manifest.Substitute, "default manifest applies")
}

func TestResolveTemplate_ExplicitDirWins(t *testing.T) {
	configDir := t.TempDir()
	writeFile(t, filepath.Join(configDir, "templates", templates.Default, "README.md"), "user")

	explicit := t.TempDir()
	writeFile(t, filepath.Join(explicit, "scaffold.yaml"), "version: 1\nsubstitute: [main.go]\n")
	writeFile(t, filepath.Join(explicit, "main.go"), "package main // {{SERVICE_NAME}}")

	tmpl, err := ResolveTemplate(fs.NewRealFS(), explicit, configDir)
	require.NoError(t, err)
	assert.Equal(t, explicit, tmpl.Source)
	assert.Equal(t, []string{"main.go"}, tmpl.Manifest.Substitute)
}

func TestResolveTemplate_MissingExplicitDir(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	_, err := ResolveTemplate(fs.NewRealFS(), missing, "")
	require.Error(t, err)
	assert.Equal(t, errors.ETemplateInvalid, errors.GetCode(err))
}

func TestResolveTemplate_InvalidManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "scaffold.yaml"), "version: 2\n")

	_, err := ResolveTemplate(fs.NewRealFS(), dir, "")
	require.Error(t, err)
	assert.Equal(t, errors.ETemplateInvalid, errors.GetCode(err))
}
