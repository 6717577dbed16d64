// Package session implements the per-user conversation state machine.
// Sessions are ephemeral: created lazily on first interaction, mutated by
// one message at a time per user, and lost on restart (an in-progress
// entry must then be restarted).
package session

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/edgard/diariobot/internal/store"
)

// State is the conversation state of one user.
type State int

const (
	// Idle means no workflow is in progress.
	Idle State = iota
	// AwaitingEntry means the bot expects free-text diary content.
	AwaitingEntry
	// AwaitingAudioChoice means an analysis is pending the yes/no audio answer.
	AwaitingAudioChoice
	// AwaitingBio means the bot expects free-text bio content.
	AwaitingBio
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingEntry:
		return "awaiting_entry"
	case AwaitingAudioChoice:
		return "awaiting_audio_choice"
	case AwaitingBio:
		return "awaiting_bio"
	default:
		return "unknown"
	}
}

// Event classifies a free-text message relative to the current state.
type Event int

const (
	// EventText is free text with no special meaning in the current state.
	EventText Event = iota
	// EventTrigger is a greeting that starts the diary workflow from Idle.
	EventTrigger
	// EventAffirmative accepts the audio offer.
	EventAffirmative
	// EventNegative declines the audio offer.
	EventNegative
)

var triggerPhrases = map[string]struct{}{
	"hi":    {},
	"hello": {},
	"hey":   {},
}

var affirmatives = map[string]struct{}{
	"yes":             {},
	"y":               {},
	"yeah":            {},
	"yep":             {},
	"sure":            {},
	"yes, send audio": {},
}

// Classify maps a free-text message to an event for the given state. It
// is pure: fixed vocabularies, case-insensitive matching, no side
// effects. While awaiting the audio choice, anything that is not an
// affirmative counts as a negative so the workflow completes instead of
// stalling.
func Classify(state State, text string) Event {
	norm := strings.ToLower(strings.TrimSpace(text))
	switch state {
	case Idle:
		if _, ok := triggerPhrases[norm]; ok {
			return EventTrigger
		}
		return EventText
	case AwaitingAudioChoice:
		if _, ok := affirmatives[norm]; ok {
			return EventAffirmative
		}
		return EventNegative
	default:
		return EventText
	}
}

// Session tracks one user's progress through the diary workflow. Fields
// are only safe to touch while holding the session via Manager.Acquire.
type Session struct {
	UserID          int64
	State           State
	PendingEntry    string
	PendingDate     time.Time
	PendingAnalysis *store.Analysis
}

// Reset returns the session to Idle and clears all pending data.
func (s *Session) Reset() {
	s.State = Idle
	s.PendingEntry = ""
	s.PendingDate = time.Time{}
	s.PendingAnalysis = nil
}

type slot struct {
	mu      sync.Mutex
	session Session
}

// Manager owns the session map. The map is never exposed; all access goes
// through Acquire, which also serializes handlers for the same user.
type Manager struct {
	mu     sync.Mutex
	slots  map[int64]*slot
	logger *slog.Logger
}

// NewManager creates an empty session manager.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		slots:  make(map[int64]*slot),
		logger: logger.With("component", "sessions"),
	}
}

// Acquire locks the user's session and returns it with a release func.
// If another handler for the same user is still running (for example,
// mid-flight to the analysis collaborator), ok is false and the caller
// must tell the user the bot is still processing. The session pointer is
// only valid until release is called.
func (m *Manager) Acquire(userID int64) (sess *Session, release func(), ok bool) {
	m.mu.Lock()
	sl, exists := m.slots[userID]
	if !exists {
		sl = &slot{session: Session{UserID: userID}}
		m.slots[userID] = sl
		m.logger.Debug("Session created", "user_id", userID)
	}
	m.mu.Unlock()

	if !sl.mu.TryLock() {
		m.logger.Debug("Session busy, rejecting overlapping message", "user_id", userID)
		return nil, nil, false
	}
	return &sl.session, sl.mu.Unlock, true
}
