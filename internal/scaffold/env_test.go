package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NielsdaWheelz/mkservice/internal/errors"
	"github.com/NielsdaWheelz/mkservice/internal/fs"
)

func TestWriteEnvFile_Creates(t *testing.T) {
	target := t.TempDir()

	merged, err := WriteEnvFile(fs.NewRealFS(), target, map[string]string{"SERVICE_NAME": "orders", "PORT": "3000"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"SERVICE_NAME": "orders", "PORT": "3000"}, merged)

	onDisk, err := godotenv.Read(filepath.Join(target, EnvFile))
	require.NoError(t, err)
	assert.Equal(t, merged, onDisk)
}

func TestWriteEnvFile_KeepsTemplateFile(t *testing.T) {
	target := t.TempDir()
	original := "# local settings\nLOG_LEVEL=info\nPORT=8080\n"
	writeFile(t, filepath.Join(target, EnvFile), original)

	got, err := WriteEnvFile(fs.NewRealFS(), target, map[string]string{"PORT": "3000"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"LOG_LEVEL": "info", "PORT": "8080"}, got)

	data, err := os.ReadFile(filepath.Join(target, EnvFile))
	require.NoError(t, err)
	assert.Equal(t, original, string(data), "template .env is not rewritten")
}

func TestWriteEnvFile_InvalidTemplateEnv(t *testing.T) {
	target := t.TempDir()
	writeFile(t, filepath.Join(target, EnvFile), "NOT VALID LINE WITHOUT EQUALS ' \n")

	_, err := WriteEnvFile(fs.NewRealFS(), target, map[string]string{"PORT": "3000"})
	require.Error(t, err)
	assert.Equal(t, errors.ETemplateInvalid, errors.GetCode(err))
}
