package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := NewEngineConfig()
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Encoding)
	assert.Equal(t, "-", cfg.Dump.InvalidPlaceholder)
	assert.Equal(t, 1024, cfg.Memory.DefaultCapacity)
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := NewEngineConfig()
	cfg.Logging.Level = "verbose"
	assert.Error(t, cfg.Validate())

	cfg = NewEngineConfig()
	cfg.Logging.Encoding = "xml"
	assert.Error(t, cfg.Validate())

	cfg = NewEngineConfig()
	cfg.Dump.MaxRows = -1
	assert.Error(t, cfg.Validate())
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("COLCORE_TEST_LEVEL", "debug")

	path := filepath.Join(t.TempDir(), "engine.yaml")
	content := `
logging:
  level: ${COLCORE_TEST_LEVEL}
  encoding: json
dump:
  max_rows: 20
  invalid_placeholder: "NULL"
memory:
  default_capacity: 256
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg := &EngineConfig{}
	require.NoError(t, Load(path, cfg))
	cfg.ApplyDefaults()

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Encoding)
	assert.Equal(t, 20, cfg.Dump.MaxRows)
	assert.Equal(t, "NULL", cfg.Dump.InvalidPlaceholder)
	assert.Equal(t, 256, cfg.Memory.DefaultCapacity)
	assert.NoError(t, cfg.Validate())
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")

	cfg := NewEngineConfig()
	cfg.Logging.Level = "warn"
	cfg.Dump.MaxRows = 5
	require.NoError(t, Save(path, cfg))

	loaded := &EngineConfig{}
	require.NoError(t, Load(path, loaded))
	assert.Equal(t, cfg, loaded)
}

func TestLoadMissingFile(t *testing.T) {
	err := Load(filepath.Join(t.TempDir(), "absent.yaml"), &EngineConfig{})
	assert.Error(t, err)
}
