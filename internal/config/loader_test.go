package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/edgard/diariobot/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123456:test-token"
  allowed_user_ids: [42]
gemini:
  api_key: "test-key"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.ModelName)
	assert.Equal(t, 2*time.Minute, cfg.Gemini.Timeout)
	assert.Equal(t, "https://translate.google.com/translate_tts", cfg.TTS.BaseURL)
	assert.Equal(t, "data", cfg.Storage.DataDir)
	assert.Equal(t, time.Hour, cfg.Storage.AudioRetention)
	assert.Equal(t, []int64{42}, cfg.Telegram.AllowedUserIDs)
	assert.Equal(t, DefaultMessages.Welcome, cfg.Messages.Welcome)

	sweep, ok := cfg.Scheduler.Tasks["audio_sweep"]
	require.True(t, ok)
	assert.True(t, sweep.Enabled)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
telegram:
  token: "123456:test-token"
  allowed_user_ids: [42, 1000]
gemini:
  api_key: "test-key"
  model_name: "gemini-2.5-pro"
storage:
  data_dir: /var/lib/diariobot
messages:
  bio_saved: "Noted."
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "gemini-2.5-pro", cfg.Gemini.ModelName)
	assert.Equal(t, "/var/lib/diariobot", cfg.Storage.DataDir)
	assert.Equal(t, filepath.Join("/var/lib/diariobot", "audio"), cfg.Storage.AudioDir())
	assert.Equal(t, "Noted.", cfg.Messages.BioSaved)
	assert.Equal(t, DefaultMessages.Help, cfg.Messages.Help)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "missing token",
			content: `
telegram:
  allowed_user_ids: [42]
gemini:
  api_key: "k"
`,
		},
		{
			name: "empty allow-list",
			content: `
telegram:
  token: "t"
  allowed_user_ids: []
gemini:
  api_key: "k"
`,
		},
		{
			name: "non-positive user id",
			content: `
telegram:
  token: "t"
  allowed_user_ids: [0]
gemini:
  api_key: "k"
`,
		},
		{
			name: "missing gemini key",
			content: `
telegram:
  token: "t"
  allowed_user_ids: [42]
`,
		},
		{
			name: "bad log level",
			content: `
log:
  level: loud
telegram:
  token: "t"
  allowed_user_ids: [42]
gemini:
  api_key: "k"
`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.content)
			_, err := Load(path)
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeConfig, apperrors.Code(err))
		})
	}
}

func TestLoadMissingFileFailsValidation(t *testing.T) {
	t.Setenv("BOT_TELEGRAM_TOKEN", "123456:env-token")
	t.Setenv("BOT_GEMINI_API_KEY", "env-key")

	// viper's AutomaticEnv only resolves keys it knows about, so the
	// allow-list still has to come from a file or defaults; a missing
	// list must fail validation rather than silently allow nobody.
	path := filepath.Join(t.TempDir(), "absent.yaml")
	_, err := Load(path)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConfig, apperrors.Code(err))
}
