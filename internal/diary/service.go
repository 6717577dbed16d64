// Package diary implements the core journaling workflow: the identity
// gate, the per-user conversation flow, entry persistence, analysis, and
// optional audio rendering of the analysis.
package diary

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/edgard/diariobot/internal/auth"
	"github.com/edgard/diariobot/internal/config"
	apperrors "github.com/edgard/diariobot/internal/errors"
	"github.com/edgard/diariobot/internal/gemini"
	"github.com/edgard/diariobot/internal/session"
	"github.com/edgard/diariobot/internal/store"
	"github.com/edgard/diariobot/internal/tts"
)

const (
	minEntryLen = 10
	maxEntryLen = 10000
	maxBioLen   = 2000
	recentLimit = 10
)

// Sink delivers replies back to the user. The transport layer provides
// an implementation per incoming update; the service never talks to the
// messaging platform directly.
type Sink interface {
	// Reply sends a text message to the user.
	Reply(ctx context.Context, userID int64, text string) error

	// ReplyChoices sends a text message with quick-reply options the
	// user can tap instead of typing.
	ReplyChoices(ctx context.Context, userID int64, text string, choices []string) error

	// ReplyVoice sends the audio file at voicePath as a voice message.
	ReplyVoice(ctx context.Context, userID int64, voicePath, caption string) error
}

// audioChoices are the quick replies offered with the audio question.
// The affirmative one matches the session vocabulary case-insensitively.
var audioChoices = []string{"Yes, send audio", "No, text only"}

// Service orchestrates the diary workflow. All entry points check the
// identity gate first and serialize per-user via the session manager.
type Service struct {
	log      *slog.Logger
	store    store.Store
	sessions *session.Manager
	analyzer gemini.Client
	speech   tts.Client
	gate     *auth.Gate
	msgs     config.MessagesConfig

	audioDir        string
	analysisTimeout time.Duration
	ttsTimeout      time.Duration

	now func() time.Time
}

// New creates the diary service.
func New(log *slog.Logger, st store.Store, sessions *session.Manager, analyzer gemini.Client, speech tts.Client, gate *auth.Gate, cfg *config.Config) (*Service, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := os.MkdirAll(cfg.Storage.AudioDir(), 0o750); err != nil {
		return nil, apperrors.NewStorageError("failed to create audio directory", err)
	}
	return &Service{
		log:             log.With("component", "diary"),
		store:           st,
		sessions:        sessions,
		analyzer:        analyzer,
		speech:          speech,
		gate:            gate,
		msgs:            cfg.Messages,
		audioDir:        cfg.Storage.AudioDir(),
		analysisTimeout: cfg.Gemini.Timeout,
		ttsTimeout:      cfg.TTS.Timeout,
		now:             time.Now,
	}, nil
}

// authorize checks the gate and replies with the denial message if the
// user is not on the allow-list. No state is read or written for denied
// users.
func (s *Service) authorize(ctx context.Context, sink Sink, userID int64) bool {
	if s.gate.IsAllowed(userID) {
		return true
	}
	s.log.WarnContext(ctx, "Unauthorized access attempt", "user_id", userID)
	s.reply(ctx, sink, userID, s.msgs.NotAuthorized)
	return false
}

func (s *Service) reply(ctx context.Context, sink Sink, userID int64, text string) {
	if err := sink.Reply(ctx, userID, text); err != nil {
		s.log.ErrorContext(ctx, "Failed to send reply", "user_id", userID, "error", err)
	}
}

func (s *Service) replyChoices(ctx context.Context, sink Sink, userID int64, text string, choices []string) {
	if err := sink.ReplyChoices(ctx, userID, text, choices); err != nil {
		s.log.ErrorContext(ctx, "Failed to send reply with choices", "user_id", userID, "error", err)
	}
}

// acquire wraps session acquisition with the busy reply.
func (s *Service) acquire(ctx context.Context, sink Sink, userID int64) (*session.Session, func(), bool) {
	sess, release, ok := s.sessions.Acquire(userID)
	if !ok {
		s.reply(ctx, sink, userID, s.msgs.StillProcessing)
		return nil, nil, false
	}
	return sess, release, true
}

// Start handles /start.
func (s *Service) Start(ctx context.Context, sink Sink, userID int64) {
	if !s.authorize(ctx, sink, userID) {
		return
	}
	s.reply(ctx, sink, userID, s.msgs.Welcome)
}

// Help handles /help.
func (s *Service) Help(ctx context.Context, sink Sink, userID int64) {
	if !s.authorize(ctx, sink, userID) {
		return
	}
	s.reply(ctx, sink, userID, s.msgs.Help)
}

// BeginEntry handles /diary. It moves the session to awaiting-entry even
// when a workflow was already in progress, discarding any pending data.
func (s *Service) BeginEntry(ctx context.Context, sink Sink, userID int64) {
	if !s.authorize(ctx, sink, userID) {
		return
	}
	sess, release, ok := s.acquire(ctx, sink, userID)
	if !ok {
		return
	}
	defer release()

	sess.Reset()
	sess.State = session.AwaitingEntry
	s.reply(ctx, sink, userID, s.msgs.EntryPrompt)
}

// BeginBio handles /setbio. With an inline argument the bio is saved
// directly; without one the session moves to awaiting-bio.
func (s *Service) BeginBio(ctx context.Context, sink Sink, userID int64, arg string) {
	if !s.authorize(ctx, sink, userID) {
		return
	}
	sess, release, ok := s.acquire(ctx, sink, userID)
	if !ok {
		return
	}
	defer release()

	if arg = strings.TrimSpace(arg); arg != "" {
		s.saveBio(ctx, sink, sess, arg)
		return
	}

	current, err := s.store.GetBio(ctx, userID)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to load bio", "user_id", userID, "error", err)
		s.reply(ctx, sink, userID, s.msgs.GeneralError)
		return
	}
	if current == "" {
		current = "(not set)"
	}

	sess.Reset()
	sess.State = session.AwaitingBio
	s.reply(ctx, sink, userID, fmt.Sprintf(s.msgs.BioPromptFmt, current))
}

// Recent handles /mydiary: the newest stored analyses with their ratings
// and the deep command to read each one.
func (s *Service) Recent(ctx context.Context, sink Sink, userID int64) {
	if !s.authorize(ctx, sink, userID) {
		return
	}

	tokens, err := s.store.ListRecent(ctx, userID, recentLimit)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to list recent entries", "user_id", userID, "error", err)
		s.reply(ctx, sink, userID, s.msgs.GeneralError)
		return
	}
	if len(tokens) == 0 {
		s.reply(ctx, sink, userID, s.msgs.NoEntries)
		return
	}

	var b strings.Builder
	b.WriteString(s.msgs.RecentHeader)
	for _, token := range tokens {
		line := store.FormatToken(token)
		if analysis, err := s.store.ReadAnalysis(ctx, userID, token); err == nil {
			line += fmt.Sprintf(" — %d/10", analysis.Rating)
		}
		fmt.Fprintf(&b, "%s\n/read_%s\n\n", line, token)
	}
	s.reply(ctx, sink, userID, b.String())
}

// Read handles /read_YYYYMMDD. The token is validated by the store
// before any path is built from it; malformed tokens get the usage
// message and unknown dates the not-found message.
func (s *Service) Read(ctx context.Context, sink Sink, userID int64, token string) {
	if !s.authorize(ctx, sink, userID) {
		return
	}

	analysis, err := s.store.ReadAnalysis(ctx, userID, token)
	if err != nil {
		switch apperrors.Code(err) {
		case apperrors.CodeValidation:
			s.reply(ctx, sink, userID, s.msgs.ReadUsage)
		case apperrors.CodeNotFound:
			s.reply(ctx, sink, userID, fmt.Sprintf(s.msgs.ReadNotFoundFmt, store.FormatToken(token)))
		default:
			s.log.ErrorContext(ctx, "Failed to read analysis", "user_id", userID, "token", token, "error", err)
			s.reply(ctx, sink, userID, s.msgs.GeneralError)
		}
		return
	}

	body := fmt.Sprintf(s.msgs.RatingFmt, analysis.Rating, formatAnalysis(analysis))
	if entry, err := s.store.ReadEntry(ctx, userID, token); err == nil {
		body += "\n\n📝 What you wrote:\n" + excerpt(entry, entryExcerptLen)
	}
	s.reply(ctx, sink, userID, fmt.Sprintf(s.msgs.ReadAnalysisFmt, store.FormatToken(token), body))
}

const entryExcerptLen = 500

func excerpt(text string, maxLen int) string {
	text = strings.TrimSpace(text)
	if len(text) <= maxLen {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen]) + "…"
}

// HandleText handles every non-command message and drives the state
// machine.
func (s *Service) HandleText(ctx context.Context, sink Sink, userID int64, text string) {
	if !s.authorize(ctx, sink, userID) {
		return
	}
	sess, release, ok := s.acquire(ctx, sink, userID)
	if !ok {
		return
	}
	defer release()

	switch sess.State {
	case session.Idle:
		if session.Classify(sess.State, text) == session.EventTrigger {
			sess.State = session.AwaitingEntry
			s.reply(ctx, sink, userID, s.msgs.EntryPrompt)
			return
		}
		s.reply(ctx, sink, userID, s.msgs.IdleNudge)

	case session.AwaitingEntry:
		s.processEntry(ctx, sink, sess, text)

	case session.AwaitingAudioChoice:
		s.finishEntry(ctx, sink, sess, text)

	case session.AwaitingBio:
		s.saveBio(ctx, sink, sess, text)
	}
}

// processEntry validates, persists, and analyzes a diary entry, then
// offers the audio rendering. The raw entry is saved before analysis so
// a collaborator outage never loses the user's text.
func (s *Service) processEntry(ctx context.Context, sink Sink, sess *session.Session, text string) {
	userID := sess.UserID
	text = strings.TrimSpace(text)

	if len(text) < minEntryLen {
		s.reply(ctx, sink, userID, s.msgs.EntryTooShort)
		return
	}
	if len(text) > maxEntryLen {
		s.reply(ctx, sink, userID, s.msgs.EntryTooLong)
		return
	}

	date := s.now()
	if err := s.store.SaveEntry(ctx, userID, date, text); err != nil {
		s.log.ErrorContext(ctx, "Failed to save entry", "user_id", userID, "error", err)
		s.reply(ctx, sink, userID, s.msgs.SaveFailed)
		return
	}
	s.reply(ctx, sink, userID, fmt.Sprintf(s.msgs.EntrySavedFmt, date.Format("2006-01-02")))
	s.reply(ctx, sink, userID, s.msgs.Analyzing)

	analysisCtx, cancel := context.WithTimeout(ctx, s.analysisTimeout)
	defer cancel()

	analysis, err := s.analyzer.AnalyzeDay(analysisCtx, date, text, s.loadBio(ctx, userID))
	if err != nil {
		s.log.ErrorContext(ctx, "Analysis failed", "user_id", userID, "error", err)
		s.reply(ctx, sink, userID, s.msgs.AnalysisFailed)
		sess.Reset()
		return
	}
	analysis.CreatedAt = s.now()

	sess.State = session.AwaitingAudioChoice
	sess.PendingEntry = text
	sess.PendingDate = date
	sess.PendingAnalysis = analysis
	s.replyChoices(ctx, sink, userID, s.msgs.AudioQuestion, audioChoices)
}

func (s *Service) loadBio(ctx context.Context, userID int64) string {
	bio, err := s.store.GetBio(ctx, userID)
	if err != nil {
		s.log.WarnContext(ctx, "Failed to load bio, analyzing without it", "user_id", userID, "error", err)
		return ""
	}
	return bio
}

// finishEntry completes the workflow after the audio choice. The
// analysis is persisted before any reply goes out, so a delivery failure
// cannot lose it. Anything that is not an affirmative counts as no.
func (s *Service) finishEntry(ctx context.Context, sink Sink, sess *session.Session, text string) {
	userID := sess.UserID
	analysis := sess.PendingAnalysis
	date := sess.PendingDate
	wantAudio := session.Classify(sess.State, text) == session.EventAffirmative
	sess.Reset()

	if analysis == nil {
		s.log.ErrorContext(ctx, "Audio choice with no pending analysis", "user_id", userID)
		s.reply(ctx, sink, userID, s.msgs.GeneralError)
		return
	}

	if err := s.store.SaveAnalysis(ctx, userID, date, analysis); err != nil {
		s.log.ErrorContext(ctx, "Failed to save analysis", "user_id", userID, "error", err)
		s.reply(ctx, sink, userID, s.msgs.SaveFailed)
		return
	}

	if wantAudio {
		s.sendAudio(ctx, sink, userID, analysis)
	}

	s.reply(ctx, sink, userID, fmt.Sprintf(s.msgs.RatingFmt, analysis.Rating, formatAnalysis(analysis)))
}

// sendAudio renders the day summary as speech and delivers it as a voice
// message. The artifact is removed again on every path; the scheduled
// sweep only mops up after crashes.
func (s *Service) sendAudio(ctx context.Context, sink Sink, userID int64, analysis *store.Analysis) {
	ttsCtx, cancel := context.WithTimeout(ctx, s.ttsTimeout)
	defer cancel()

	audio, err := s.speech.Synthesize(ttsCtx, speechText(analysis))
	if err != nil {
		s.log.ErrorContext(ctx, "Speech synthesis failed", "user_id", userID, "error", err)
		s.reply(ctx, sink, userID, s.msgs.AudioFailed)
		return
	}

	path := filepath.Join(s.audioDir, ulid.Make().String()+".mp3")
	if err := os.WriteFile(path, audio, 0o600); err != nil {
		s.log.ErrorContext(ctx, "Failed to write audio artifact", "user_id", userID, "error", err)
		s.reply(ctx, sink, userID, s.msgs.AudioFailed)
		return
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			s.log.WarnContext(ctx, "Failed to remove audio artifact", "path", path, "error", err)
		}
	}()

	if err := sink.ReplyVoice(ctx, userID, path, "🎧 Your day, summarized"); err != nil {
		s.log.ErrorContext(ctx, "Failed to send voice message", "user_id", userID, "error", err)
		s.reply(ctx, sink, userID, s.msgs.AudioFailed)
	}
}

func (s *Service) saveBio(ctx context.Context, sink Sink, sess *session.Session, text string) {
	userID := sess.UserID
	sess.Reset()

	text = strings.TrimSpace(text)
	if len(text) > maxBioLen {
		s.reply(ctx, sink, userID, s.msgs.BioTooLong)
		return
	}

	if err := s.store.SetBio(ctx, userID, text); err != nil {
		s.log.ErrorContext(ctx, "Failed to save bio", "user_id", userID, "error", err)
		s.reply(ctx, sink, userID, s.msgs.SaveFailed)
		return
	}
	s.reply(ctx, sink, userID, s.msgs.BioSaved)
}

// formatAnalysis renders the fixed section set as the text reply.
// Sections that came back empty are omitted.
func formatAnalysis(a *store.Analysis) string {
	var b strings.Builder

	if len(a.Gratitude) > 0 {
		b.WriteString("🙏 GRATITUDE:\n")
		for _, item := range a.Gratitude {
			b.WriteString("• " + item + "\n")
		}
		b.WriteString("\n")
	}
	writeSection(&b, "⏰ TIME INEFFICIENCY:", a.TimeInefficiency)
	writeSection(&b, "✅ GOOD USE OF TIME:", a.GoodUse)
	writeSection(&b, "✨ MEMORABLE MOMENTS:", a.MemorableMoments)
	if len(a.Suggestions) > 0 {
		b.WriteString("💡 SUGGESTIONS FOR IMPROVEMENT:\n")
		for _, item := range a.Suggestions {
			b.WriteString("• " + item + "\n")
		}
		b.WriteString("\n")
	}
	writeSection(&b, "🔄 HABIT PATTERN ANALYSIS:", a.HabitPatterns)
	writeSection(&b, "📖 DAY SUMMARY:", a.DaySummary)

	b.WriteString(ratingBar(a.Rating))
	return b.String()
}

func writeSection(b *strings.Builder, header, body string) {
	if body == "" {
		return
	}
	b.WriteString(header + "\n" + body + "\n\n")
}

// speechText flattens the full analysis for the speech collaborator:
// every section in reading order, plain spoken headers, no emoji and no
// rating bar. Empty sections are skipped.
func speechText(a *store.Analysis) string {
	var b strings.Builder

	writeSpokenList(&b, "Gratitude", a.Gratitude)
	writeSpokenSection(&b, "Time inefficiency", a.TimeInefficiency)
	writeSpokenSection(&b, "Good use of time", a.GoodUse)
	writeSpokenSection(&b, "Memorable moments", a.MemorableMoments)
	writeSpokenList(&b, "Suggestions for improvement", a.Suggestions)
	writeSpokenSection(&b, "Habit patterns", a.HabitPatterns)
	writeSpokenSection(&b, "Day summary", a.DaySummary)

	return strings.TrimSpace(b.String())
}

func writeSpokenSection(b *strings.Builder, header, body string) {
	if body == "" {
		return
	}
	b.WriteString(header + ". " + body + "\n")
}

func writeSpokenList(b *strings.Builder, header string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(header + ". " + strings.Join(items, ". ") + "\n")
}

// ratingBar renders a 1-10 rating as filled and empty stars.
func ratingBar(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 10 {
		rating = 10
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", 10-rating)
}
