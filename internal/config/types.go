// Package config provides configuration loading, validation, and defaults
// for the DiarioBot application. Values come from defaults, config.yaml,
// and BOT_* environment variables, in that order.
package config

import (
	"path/filepath"
	"time"
)

// Config defines the full application configuration.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	TTS       TTSConfig       `mapstructure:"tts"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// LogConfig controls the slog logger.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds the bot token and the fixed user allow-list.
// Every mutating or data-disclosing operation is gated on AllowedUserIDs.
type TelegramConfig struct {
	Token          string  `mapstructure:"token"            validate:"required"`
	AllowedUserIDs []int64 `mapstructure:"allowed_user_ids" validate:"required,min=1,dive,gt=0"`
}

// GeminiConfig holds settings for the analysis collaborator.
type GeminiConfig struct {
	APIKey            string        `mapstructure:"api_key"             validate:"required"`
	ModelName         string        `mapstructure:"model_name"          validate:"required"`
	Temperature       float32       `mapstructure:"temperature"         validate:"min=0,max=2"`
	Timeout           time.Duration `mapstructure:"timeout"             validate:"min=1s,max=10m"`
	MaxRetries        int           `mapstructure:"max_retries"         validate:"min=0,max=5"`
	RetryDelaySeconds int           `mapstructure:"retry_delay_seconds" validate:"min=0,max=60"`
	Instruction       string        `mapstructure:"instruction"         validate:"required"`
}

// TTSConfig holds settings for the speech collaborator.
type TTSConfig struct {
	BaseURL  string        `mapstructure:"base_url" validate:"required,url"`
	Language string        `mapstructure:"language" validate:"required"`
	Timeout  time.Duration `mapstructure:"timeout"  validate:"min=1s,max=5m"`
}

// StorageConfig holds the entry store root and the retention window for
// transient audio artifacts that failed to be delivered.
type StorageConfig struct {
	DataDir        string        `mapstructure:"data_dir"        validate:"required"`
	AudioRetention time.Duration `mapstructure:"audio_retention" validate:"min=1m"`
}

// AudioDir returns the directory for transient audio artifacts.
func (c StorageConfig) AudioDir() string {
	return filepath.Join(c.DataDir, "audio")
}

// TaskConfig enables a scheduled task and sets its cron schedule.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// SchedulerConfig maps task names to their schedules.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// MessagesConfig holds every user-visible string so deployments can
// localize or reword them without code changes.
type MessagesConfig struct {
	Welcome         string `mapstructure:"welcome"`
	Help            string `mapstructure:"help"`
	NotAuthorized   string `mapstructure:"not_authorized"`
	IdleNudge       string `mapstructure:"idle_nudge"`
	StillProcessing string `mapstructure:"still_processing"`

	EntryPrompt    string `mapstructure:"entry_prompt"`
	EntryTooShort  string `mapstructure:"entry_too_short"`
	EntryTooLong   string `mapstructure:"entry_too_long"`
	Analyzing      string `mapstructure:"analyzing"`
	AnalysisFailed string `mapstructure:"analysis_failed"`
	SaveFailed     string `mapstructure:"save_failed"`
	AudioQuestion  string `mapstructure:"audio_question"`
	AudioFailed    string `mapstructure:"audio_failed"`
	EntrySavedFmt  string `mapstructure:"entry_saved_fmt"`
	RatingFmt      string `mapstructure:"rating_fmt"`

	BioPromptFmt string `mapstructure:"bio_prompt_fmt"`
	BioSaved     string `mapstructure:"bio_saved"`
	BioTooLong   string `mapstructure:"bio_too_long"`

	NoEntries        string `mapstructure:"no_entries"`
	RecentHeader     string `mapstructure:"recent_header"`
	ReadUsage        string `mapstructure:"read_usage"`
	ReadNotFoundFmt  string `mapstructure:"read_not_found_fmt"`
	ReadAnalysisFmt  string `mapstructure:"read_analysis_fmt"`
	GeneralError     string `mapstructure:"general_error"`
}

// DefaultMessages is the built-in message catalog.
var DefaultMessages = MessagesConfig{
	Welcome: "👋 Hi! Welcome to your Daily Reflection Bot.\n\n" +
		"I'll help you track your daily activities and provide thoughtful insights.\n\n" +
		"Available commands:\n" +
		"/diary - Start a new diary entry\n" +
		"/setbio - Set your personal info for better analysis\n" +
		"/mydiary - View your recent diary entries\n" +
		"/help - Show all available commands\n\n" +
		"You can also just say 'hi' to start a new diary entry!",
	Help: "📔 Daily Reflection Bot Commands\n\n" +
		"/start - Initialize the bot\n" +
		"/help - Display this help message\n" +
		"/diary - Begin a new diary entry\n" +
		"/mydiary - List your recent diary entries\n" +
		"/read_YYYYMMDD - View a specific day's analysis\n" +
		"/setbio - Update your personal profile for better analysis\n\n" +
		"Just type 'hi' or 'hello' to start a new diary entry.",
	NotAuthorized:   "🚫 Access denied. Please contact the bot administrator if you believe this is an error.",
	IdleNudge:       "I'm not sure what to do with that. Use /diary to start a new entry, or /help to see all commands.",
	StillProcessing: "⏳ I'm still working on your previous message. Please wait a moment.",

	EntryPrompt: "📝 New Diary Entry\n\n" +
		"How did your day go? Please share your activities, thoughts, and experiences.\n\n" +
		"Be as detailed as you like - what you did, how you felt, what you learned, " +
		"and any moments that stood out.",
	EntryTooShort:  "Your diary entry seems very short. Please provide a bit more detail for better analysis.",
	EntryTooLong:   "Your diary entry is too long. Please keep it under 10,000 characters for effective analysis.",
	Analyzing:      "🔍 Analyzing your day...",
	AnalysisFailed: "I'm sorry, I couldn't analyze your diary entry right now. Please try again later.",
	SaveFailed:     "❌ I could not save your entry. Please try again later.",
	AudioQuestion:  "Your diary entry has been analyzed! Would you like to receive the analysis as audio as well? (yes/no)",
	AudioFailed:    "Sorry, there was an issue creating the audio. Sending text analysis only.",
	EntrySavedFmt:  "✍️ Your diary entry for %s has been saved.",
	RatingFmt:      "📊 Day Rating: %d/10\n\n%s",

	BioPromptFmt: "📋 Personal Bio Setup\n\n" +
		"Your bio helps me provide more personalized analysis of your diary entries.\n\n" +
		"Current bio:\n%s\n\n" +
		"Please send your new bio as a message.",
	BioSaved:   "✅ Bio updated successfully! I'll use this to personalize your diary analysis.",
	BioTooLong: "❌ Bio is too long. Please keep it under 2,000 characters.",

	NoEntries:       "You don't have any diary entries yet. Start by creating your first entry with /diary!",
	RecentHeader:    "📆 Your Recent Diary Entries:\n\n",
	ReadUsage:       "Please use the format /read_YYYYMMDD to read a specific diary entry.",
	ReadNotFoundFmt: "No diary entry found for %s.",
	ReadAnalysisFmt: "📖 Diary Entry: %s\n\n%s",
	GeneralError:    "❌ An error occurred. Please try again later.",
}

// DefaultInstruction is the analysis persona sent as the system
// instruction to the analysis collaborator.
const DefaultInstruction = "You are a compassionate and balanced life coach who understands " +
	"that being human means balancing productivity with rest, achievements with joy, and goals " +
	"with reality. Analyze the user's daily narration with both wisdom and empathy. Be direct " +
	"but compassionate. Offer small, doable improvements and balance ambition with self-compassion."
