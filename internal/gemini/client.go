// Package gemini implements the analysis collaborator client. It sends a
// diary entry (plus optional bio context) to the Gemini API and parses
// the structured response into a typed analysis.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/edgard/diariobot/internal/config"
	apperrors "github.com/edgard/diariobot/internal/errors"
	"github.com/edgard/diariobot/internal/store"
)

// Client defines the analysis operation used by the diary service.
type Client interface {
	// AnalyzeDay analyzes one diary entry. bio may be empty; the
	// analysis then proceeds without personalization.
	AnalyzeDay(ctx context.Context, date time.Time, entryText, bio string) (*store.Analysis, error)
}

type sdkClient struct {
	genaiClient      *genai.Client
	log              *slog.Logger
	contentConfig    *genai.GenerateContentConfig
	defaultModelName string
	maxRetries       int
	retryDelay       time.Duration
}

// NewClient creates a Gemini client from the configuration.
func NewClient(ctx context.Context, cfg config.GeminiConfig, log *slog.Logger) (Client, error) {
	if cfg.APIKey == "" {
		return nil, apperrors.NewConfigError("gemini API key is required", nil)
	}
	if log == nil {
		log = slog.Default()
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, apperrors.NewExternalServiceError("failed to create genai client", err)
	}

	// Diary entries are personal and sometimes raw; default safety
	// thresholds reject exactly the content this bot exists to hold.
	safetySettings := []*genai.SafetySetting{
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
	}

	baseCfg := &genai.GenerateContentConfig{
		Temperature:      &cfg.Temperature,
		SafetySettings:   safetySettings,
		ResponseMIMEType: "application/json",
		ResponseSchema:   analysisSchema,
	}
	if cfg.Instruction != "" {
		baseCfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: cfg.Instruction}}}
	}

	logger := log.With("component", "gemini_client")
	logger.Info("Gemini client initialized", "model", cfg.ModelName)
	return &sdkClient{
		genaiClient:      gi,
		log:              logger,
		contentConfig:    baseCfg,
		defaultModelName: cfg.ModelName,
		maxRetries:       cfg.MaxRetries,
		retryDelay:       time.Duration(cfg.RetryDelaySeconds) * time.Second,
	}, nil
}

// analysisSchema constrains the response to the fixed section set. The
// rating is the one mandatory field; everything else may come back empty.
var analysisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"gratitude":         {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: "2-3 specific things from the day that deserve gratitude."},
		"time_inefficiency": {Type: genai.TypeString, Description: "Moments where time could have been used more effectively. Be understanding that humans need downtime too."},
		"good_use":          {Type: genai.TypeString, Description: "Periods that were productive, meaningful, or restorative, and what made them valuable."},
		"memorable_moments": {Type: genai.TypeString, Description: "Joyful, reflective, or learning-based events worth remembering."},
		"suggestions":       {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: "1-2 practical, realistic improvements."},
		"habit_patterns":    {Type: genai.TypeString, Description: "Recurring habits, good or bad, and how they shape personal growth. Without judgment."},
		"day_summary":       {Type: genai.TypeString, Description: "A refined, empathetic narrative of how the day unfolded, preserving sequence and emotion."},
		"rating":            {Type: genai.TypeInteger, Description: "Balanced day rating from 1 to 10, where 5-6 is a normal day."},
	},
	Required: []string{"day_summary", "rating"},
}

func buildPrompt(date time.Time, entryText, bio string) string {
	if bio == "" {
		bio = "No personal information available yet."
	}
	return fmt.Sprintf(
		"USER BIO: %s\n\nTODAY'S JOURNAL ENTRY (%s): %s\n\n"+
			"Provide a balanced analysis of this day covering gratitude, time inefficiency, "+
			"good use of time, memorable moments, suggestions for improvement, habit patterns, "+
			"a day summary written as a story, and a 1-10 day rating.",
		bio, date.Format("2006-01-02"), entryText)
}

func (c *sdkClient) AnalyzeDay(ctx context.Context, date time.Time, entryText, bio string) (*store.Analysis, error) {
	c.log.DebugContext(ctx, "Analyzing diary entry", "entry_len", len(entryText), "has_bio", bio != "")

	contents := []*genai.Content{
		genai.NewContentFromText(buildPrompt(date, entryText, bio), genai.RoleUser),
	}

	resp, err := c.generateContentWithRetries(ctx, c.defaultModelName, contents, c.contentConfig)
	if err != nil {
		c.log.ErrorContext(ctx, "Gemini analysis call failed", "error", err)
		return nil, apperrors.NewExternalServiceError("analysis request failed", err)
	}

	text, err := c.extractTextFromResponse(ctx, resp)
	if err != nil {
		return nil, apperrors.NewExternalServiceError("analysis response unusable", err)
	}

	analysis, err := ParseAnalysis(text)
	if err != nil {
		c.log.ErrorContext(ctx, "Failed to parse analysis response", "error", err, "response_len", len(text))
		return nil, err
	}

	c.log.DebugContext(ctx, "Analysis parsed", "rating", analysis.Rating)
	return analysis, nil
}

func (c *sdkClient) generateContentWithRetries(ctx context.Context, modelName string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	var resp *genai.GenerateContentResponse
	var err error

	for i := 0; i <= c.maxRetries; i++ {
		resp, err = c.genaiClient.Models.GenerateContent(ctx, modelName, contents, cfg)
		if err == nil {
			return resp, nil
		}

		c.log.WarnContext(ctx, "Gemini API call failed, checking for retry", "attempt", i+1, "max_retries", c.maxRetries, "error", err)

		var apiErr *genai.APIError
		if errors.As(err, &apiErr) && (apiErr.Code == 500 || apiErr.Code == 503) {
			if i < c.maxRetries {
				c.log.InfoContext(ctx, "Retrying Gemini API call", "delay", c.retryDelay, "code", apiErr.Code)
				select {
				case <-time.After(c.retryDelay):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
				continue
			}
			return nil, fmt.Errorf("gemini API call failed after %d retries (code %d): %w", c.maxRetries, apiErr.Code, err)
		}

		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}
	return nil, err
}

func (c *sdkClient) extractTextFromResponse(ctx context.Context, resp *genai.GenerateContentResponse) (string, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		reasonMsg := fmt.Sprintf("%v", resp.PromptFeedback.BlockReason)
		if resp.PromptFeedback.BlockReasonMessage != "" {
			reasonMsg = resp.PromptFeedback.BlockReasonMessage
		}
		c.log.ErrorContext(ctx, "Gemini request blocked", "reason", reasonMsg)
		return "", fmt.Errorf("analysis blocked by safety filter: %s", reasonMsg)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		finishReason := "unknown"
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != genai.FinishReasonUnspecified {
			finishReason = fmt.Sprintf("%v", resp.Candidates[0].FinishReason)
		}
		c.log.WarnContext(ctx, "Gemini response missing content", "finish_reason", finishReason)
		return "", fmt.Errorf("analysis returned no content, finish reason: %s", finishReason)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("analysis returned empty text")
	}
	return text, nil
}
