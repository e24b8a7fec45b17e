package config

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NielsdaWheelz/mkservice/internal/errors"
)

func TestLoadManifest_MissingUsesDefault(t *testing.T) {
	m, err := LoadManifest(fstest.MapFS{
		"README.md": {Data: []byte("# {{SERVICE_NAME}}\n")},
	})
	require.NoError(t, err)
	assert.Equal(t, DefaultManifest(), m)
}

func TestLoadManifest_Parses(t *testing.T) {
	m, err := LoadManifest(fstest.MapFS{
		ManifestFile: {Data: []byte(`version: 1
substitute:
  - README.md
  - package.json
env:
  NODE_ENV: development
`)},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, m.Version)
	assert.Equal(t, []string{"README.md", "package.json"}, m.Substitute)
	assert.Equal(t, map[string]string{"NODE_ENV": "development"}, m.Env)
}

func TestParseManifest_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", ""},
		{"not yaml", "version: [1"},
		{"unknown field", "version: 1\nsubstitutes: [README.md]\n"},
		{"wrong version", "version: 2\n"},
		{"missing version", "substitute: [README.md]\n"},
		{"escaping path", "version: 1\nsubstitute: [../README.md]\n"},
		{"absolute path", "version: 1\nsubstitute: [/etc/passwd]\n"},
		{"backslash path", "version: 1\nsubstitute: ['docs\\README.md']\n"},
		{"dot path", "version: 1\nsubstitute: [.]\n"},
		{"lists itself", "version: 1\nsubstitute: [scaffold.yaml]\n"},
		{"bad env key", "version: 1\nenv:\n  'A B': x\n"},
		{"env key with equals", "version: 1\nenv:\n  'A=B': x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseManifest([]byte(tt.yaml))
			require.Error(t, err)
			assert.Equal(t, errors.ETemplateInvalid, errors.GetCode(err))
		})
	}
}
