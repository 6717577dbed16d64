package tts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/diariobot/internal/config"
	apperrors "github.com/edgard/diariobot/internal/errors"
)

func TestChunkText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		text  string
		limit int
		want  []string
	}{
		{
			name:  "short text single chunk",
			text:  "A quiet day.",
			limit: 180,
			want:  []string{"A quiet day."},
		},
		{
			name:  "splits at sentence boundary",
			text:  "First sentence. Second sentence follows here.",
			limit: 20,
			want:  []string{"First sentence.", "Second sentence", "follows here."},
		},
		{
			name:  "splits at space when no sentence end",
			text:  "word word word word",
			limit: 10,
			want:  []string{"word word", "word word"},
		},
		{
			name:  "hard cut with no boundaries",
			text:  "abcdefghij",
			limit: 4,
			want:  []string{"abcd", "efgh", "ij"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := chunkText(tc.text, tc.limit)
			assert.Equal(t, tc.want, got)
			for _, chunk := range got {
				assert.LessOrEqual(t, len(chunk), tc.limit)
			}
		})
	}
}

func TestChunkTextKeepsRunesIntact(t *testing.T) {
	t.Parallel()

	// Space-less multibyte text forces the hard-cut branch; every chunk
	// must still be valid UTF-8 and no characters may be lost.
	text := strings.Repeat("日記を書く", 20)
	chunks := chunkText(text, 16)
	require.NotEmpty(t, chunks)

	var rebuilt strings.Builder
	for _, chunk := range chunks {
		assert.True(t, utf8.ValidString(chunk), "chunk %q is not valid UTF-8", chunk)
		assert.LessOrEqual(t, len(chunk), 16)
		rebuilt.WriteString(chunk)
	}
	assert.Equal(t, text, rebuilt.String())
}

func TestChunkTextOversizedRune(t *testing.T) {
	t.Parallel()

	// A limit smaller than one rune still makes progress, one rune per
	// chunk, instead of looping or emitting broken bytes.
	chunks := chunkText("日記", 2)
	assert.Equal(t, []string{"日", "記"}, chunks)
	for _, chunk := range chunks {
		assert.True(t, utf8.ValidString(chunk))
	}
}

func TestSynthesizeConcatenatesChunks(t *testing.T) {
	t.Parallel()

	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "tw-ob", r.URL.Query().Get("client"))
		assert.Equal(t, "en", r.URL.Query().Get("tl"))
		assert.NotEmpty(t, r.URL.Query().Get("q"))
		_, _ = w.Write([]byte("mp3:" + r.URL.Query().Get("q") + ";"))
	}))
	defer srv.Close()

	c := NewClient(config.TTSConfig{BaseURL: srv.URL, Language: "en", Timeout: 5 * time.Second}, nil)

	// Long enough to force more than one chunk.
	text := strings.Repeat("One more sentence here. ", 20)
	audio, err := c.Synthesize(context.Background(), text)
	require.NoError(t, err)
	assert.Greater(t, requests, 1)
	assert.Contains(t, string(audio), "mp3:")
}

func TestSynthesizeEmptyText(t *testing.T) {
	t.Parallel()

	c := NewClient(config.TTSConfig{BaseURL: "http://localhost", Language: "en", Timeout: time.Second}, nil)
	_, err := c.Synthesize(context.Background(), "   ")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeValidation, apperrors.Code(err))
}

func TestSynthesizeServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(config.TTSConfig{BaseURL: srv.URL, Language: "en", Timeout: 5 * time.Second}, nil)
	_, err := c.Synthesize(context.Background(), "some text to speak")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeExternalService, apperrors.Code(err))
}
