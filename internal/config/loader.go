package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	apperrors "github.com/edgard/diariobot/internal/errors"
)

// Load reads configuration from:
// 1. Default values
// 2. the config file at path (missing file is fine)
// 3. BOT_* environment variables
// and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("config file not readable, using defaults and environment", "path", path, "error", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to parse configuration", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, apperrors.NewConfigError("configuration validation failed", err)
	}

	slog.Info("configuration loaded",
		"log_level", cfg.Log.Level,
		"model", cfg.Gemini.ModelName,
		"data_dir", cfg.Storage.DataDir,
		"allowed_users", len(cfg.Telegram.AllowedUserIDs))

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)

	v.SetDefault("gemini.model_name", "gemini-2.0-flash")
	v.SetDefault("gemini.temperature", 0.7)
	v.SetDefault("gemini.timeout", 2*time.Minute)
	v.SetDefault("gemini.max_retries", 2)
	v.SetDefault("gemini.retry_delay_seconds", 5)
	v.SetDefault("gemini.instruction", DefaultInstruction)

	v.SetDefault("tts.base_url", "https://translate.google.com/translate_tts")
	v.SetDefault("tts.language", "en")
	v.SetDefault("tts.timeout", 60*time.Second)

	v.SetDefault("storage.data_dir", "data")
	v.SetDefault("storage.audio_retention", time.Hour)

	v.SetDefault("scheduler.tasks", map[string]TaskConfig{
		"audio_sweep": {Enabled: true, Schedule: "0 */30 * * * *"},
	})

	v.SetDefault("messages.welcome", DefaultMessages.Welcome)
	v.SetDefault("messages.help", DefaultMessages.Help)
	v.SetDefault("messages.not_authorized", DefaultMessages.NotAuthorized)
	v.SetDefault("messages.idle_nudge", DefaultMessages.IdleNudge)
	v.SetDefault("messages.still_processing", DefaultMessages.StillProcessing)
	v.SetDefault("messages.entry_prompt", DefaultMessages.EntryPrompt)
	v.SetDefault("messages.entry_too_short", DefaultMessages.EntryTooShort)
	v.SetDefault("messages.entry_too_long", DefaultMessages.EntryTooLong)
	v.SetDefault("messages.analyzing", DefaultMessages.Analyzing)
	v.SetDefault("messages.analysis_failed", DefaultMessages.AnalysisFailed)
	v.SetDefault("messages.save_failed", DefaultMessages.SaveFailed)
	v.SetDefault("messages.audio_question", DefaultMessages.AudioQuestion)
	v.SetDefault("messages.audio_failed", DefaultMessages.AudioFailed)
	v.SetDefault("messages.entry_saved_fmt", DefaultMessages.EntrySavedFmt)
	v.SetDefault("messages.rating_fmt", DefaultMessages.RatingFmt)
	v.SetDefault("messages.bio_prompt_fmt", DefaultMessages.BioPromptFmt)
	v.SetDefault("messages.bio_saved", DefaultMessages.BioSaved)
	v.SetDefault("messages.bio_too_long", DefaultMessages.BioTooLong)
	v.SetDefault("messages.no_entries", DefaultMessages.NoEntries)
	v.SetDefault("messages.recent_header", DefaultMessages.RecentHeader)
	v.SetDefault("messages.read_usage", DefaultMessages.ReadUsage)
	v.SetDefault("messages.read_not_found_fmt", DefaultMessages.ReadNotFoundFmt)
	v.SetDefault("messages.read_analysis_fmt", DefaultMessages.ReadAnalysisFmt)
	v.SetDefault("messages.general_error", DefaultMessages.GeneralError)
}
