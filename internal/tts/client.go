// Package tts renders text to speech via the Google Translate TTS
// endpoint. The endpoint caps input length per request, so long analyses
// are split into chunks and the MP3 segments concatenated.
package tts

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/edgard/diariobot/internal/config"
	apperrors "github.com/edgard/diariobot/internal/errors"
)

// maxChunkLen is the longest text accepted per request by the endpoint.
const maxChunkLen = 180

// Client defines the speech synthesis operation used by the diary service.
type Client interface {
	// Synthesize renders text as MP3 audio bytes.
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

type httpClient struct {
	baseURL    string
	language   string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a TTS client from the configuration.
func NewClient(cfg config.TTSConfig, log *slog.Logger) Client {
	if log == nil {
		log = slog.Default()
	}
	return &httpClient{
		baseURL:    cfg.BaseURL,
		language:   cfg.Language,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log.With("component", "tts_client"),
	}
}

func (c *httpClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("text to synthesize is empty", nil)
	}

	chunks := chunkText(text, maxChunkLen)
	c.log.DebugContext(ctx, "Synthesizing speech", "text_len", len(text), "chunks", len(chunks))

	var audio []byte
	for i, chunk := range chunks {
		segment, err := c.fetchChunk(ctx, chunk)
		if err != nil {
			return nil, apperrors.NewExternalServiceError(
				fmt.Sprintf("speech synthesis failed on segment %d of %d", i+1, len(chunks)), err)
		}
		audio = append(audio, segment...)
	}
	return audio, nil
}

func (c *httpClient) fetchChunk(ctx context.Context, chunk string) ([]byte, error) {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("client", "tw-ob")
	params.Set("tl", c.language)
	params.Set("q", chunk)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building TTS request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("TTS request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("TTS endpoint returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading TTS response: %w", err)
	}
	return data, nil
}

// chunkText splits text into pieces no longer than limit bytes,
// preferring sentence boundaries, then spaces, and only then hard cuts.
// Hard cuts land on rune boundaries so space-less multibyte text never
// produces an invalid UTF-8 chunk.
func chunkText(text string, limit int) []string {
	var chunks []string
	for len(text) > limit {
		cut := limit

		if idx := lastSentenceEnd(text[:limit]); idx > 0 {
			cut = idx + 1
		} else if idx := strings.LastIndexByte(text[:limit], ' '); idx > 0 {
			cut = idx
		} else {
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			if cut == 0 {
				// A single rune wider than the limit; take it whole.
				_, cut = utf8.DecodeRuneInString(text)
			}
		}

		chunks = append(chunks, strings.TrimSpace(text[:cut]))
		text = strings.TrimSpace(text[cut:])
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}

func lastSentenceEnd(s string) int {
	best := -1
	for _, p := range []string{".", "!", "?"} {
		if idx := strings.LastIndex(s, p); idx > best {
			best = idx
		}
	}
	return best
}
