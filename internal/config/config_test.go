package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "mongo", cfg.Database.Driver)
	assert.Equal(t, "confidence_coach", cfg.Database.Name)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 1500, cfg.LLM.MaxTokens)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.True(t, cfg.Plans.SupersedeSameDay)
	assert.Equal(t, 7, cfg.Plans.HistoryLimit)
	assert.False(t, cfg.S3.Enabled())
	assert.False(t, cfg.Auth.Required)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", `
server:
  address: ":9090"
database:
  driver: memory
jwt:
  secret: from-file
  expiration: 90m
llm:
  provider: gemini
  model: gemini-2.0-flash
app:
  timezone: Europe/Berlin
`)
	t.Setenv("LLM_API_KEY", "env-key")
	t.Setenv("SERVER_ADDRESS", ":7070")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Address, "env overrides file")
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.Equal(t, 90*time.Minute, cfg.JWT.Expiration)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "env-key", cfg.LLM.APIKey)

	loc, err := cfg.App.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "JWT_SECRET=dotenv-secret\n")
	// godotenv.Load sets process env; make sure it is cleaned up afterwards.
	t.Setenv("JWT_SECRET", "")
	require.NoError(t, os.Unsetenv("JWT_SECRET"))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "dotenv-secret", cfg.JWT.Secret)
}

func TestLoadConfig_Validation(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv("JWT_SECRET", "")
		_, err := LoadConfig(dir)
		assert.ErrorIs(t, err, ErrMissingJWTSecret)
	})

	t.Run("unknown driver", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv("JWT_SECRET", "s")
		t.Setenv("DATABASE_DRIVER", "postgres")
		_, err := LoadConfig(dir)
		assert.ErrorContains(t, err, "database.driver")
	})

	t.Run("unknown provider", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv("JWT_SECRET", "s")
		t.Setenv("LLM_PROVIDER", "claude")
		_, err := LoadConfig(dir)
		assert.ErrorContains(t, err, "llm.provider")
	})

	t.Run("bad timezone", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv("JWT_SECRET", "s")
		t.Setenv("APP_TIMEZONE", "Mars/Olympus")
		_, err := LoadConfig(dir)
		assert.ErrorContains(t, err, "app.timezone")
	})
}
