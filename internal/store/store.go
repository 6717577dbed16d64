// Package store implements the filesystem-backed entry store. Data is
// partitioned per user, then per month, with one file per day:
//
//	<root>/users/<userID>/bio.txt
//	<root>/users/<userID>/entries/<YYYY-MM>/<YYYYMMDD>.txt
//	<root>/users/<userID>/analyses/<YYYY-MM>/<YYYYMMDD>.json
//
// Filenames encode dates in a fixed-width, zero-padded format so a plain
// lexicographic sort is also a chronological sort.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/edgard/diariobot/internal/errors"
)

const (
	usersDir    = "users"
	entriesDir  = "entries"
	analysesDir = "analyses"
	bioFile     = "bio.txt"

	tokenLayout = "20060102"
	monthLayout = "2006-01"
)

// Analysis is the structured result derived from one diary entry.
type Analysis struct {
	Gratitude        []string  `json:"gratitude"`
	TimeInefficiency string    `json:"time_inefficiency"`
	GoodUse          string    `json:"good_use"`
	MemorableMoments string    `json:"memorable_moments"`
	Suggestions      []string  `json:"suggestions"`
	HabitPatterns    string    `json:"habit_patterns"`
	DaySummary       string    `json:"day_summary"`
	Rating           int       `json:"rating"`
	CreatedAt        time.Time `json:"created_at"`
}

// Store defines the persistence operations for diary entries, analyses,
// and per-user bios. Methods accept context for cancellation.
type Store interface {
	// SaveEntry writes the raw diary text for the given day. A second
	// write for the same (user, day) overwrites the first.
	SaveEntry(ctx context.Context, userID int64, date time.Time, rawText string) error

	// SaveAnalysis writes the structured analysis for the given day,
	// with the same overwrite semantics as SaveEntry.
	SaveAnalysis(ctx context.Context, userID int64, date time.Time, analysis *Analysis) error

	// ListRecent returns up to limit date tokens (YYYYMMDD) of stored
	// analyses for the user, newest first.
	ListRecent(ctx context.Context, userID int64, limit int) ([]string, error)

	// ReadAnalysis loads the analysis for a user-supplied date token.
	// The token is validated before any path is constructed.
	ReadAnalysis(ctx context.Context, userID int64, dateToken string) (*Analysis, error)

	// ReadEntry loads the raw diary text for a validated date token.
	ReadEntry(ctx context.Context, userID int64, dateToken string) (string, error)

	// GetBio returns the user's bio, or "" if none has been set.
	GetBio(ctx context.Context, userID int64) (string, error)

	// SetBio upserts the user's bio.
	SetBio(ctx context.Context, userID int64, bio string) error
}

// DateToken formats a calendar day as the fixed-width token used in
// filenames and in the /read_YYYYMMDD command.
func DateToken(t time.Time) string {
	return t.Format(tokenLayout)
}

// FormatToken renders a validated date token as YYYY-MM-DD for display.
func FormatToken(token string) string {
	if len(token) != 8 {
		return token
	}
	return token[:4] + "-" + token[4:6] + "-" + token[6:]
}

type fsStore struct {
	root   string
	logger *slog.Logger
}

// New creates a filesystem store rooted at dataDir, creating the root
// directory if needed.
func New(dataDir string, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Join(dataDir, usersDir), 0o750); err != nil {
		return nil, apperrors.NewStorageError("failed to create data directory", err)
	}
	return &fsStore{
		root:   dataDir,
		logger: logger.With("component", "store"),
	}, nil
}

// validateToken checks that a user-supplied date token is exactly eight
// digits forming a plausible calendar date. It runs before any path is
// constructed from the token, so no user-controlled substring can reach
// filesystem-path construction unchecked.
func validateToken(token string) error {
	if len(token) != 8 {
		return apperrors.NewValidationError("date token must be exactly 8 digits", nil)
	}
	for _, r := range token {
		if r < '0' || r > '9' {
			return apperrors.NewValidationError("date token must contain only digits", nil)
		}
	}
	year, _ := strconv.Atoi(token[:4])
	month, _ := strconv.Atoi(token[4:6])
	day, _ := strconv.Atoi(token[6:])
	if year < 2000 || year > 2099 {
		return apperrors.NewValidationError("date token year out of range", nil)
	}
	if month < 1 || month > 12 {
		return apperrors.NewValidationError("date token month out of range", nil)
	}
	if day < 1 || day > 31 {
		return apperrors.NewValidationError("date token day out of range", nil)
	}
	return nil
}

func (s *fsStore) userRoot(userID int64) string {
	return filepath.Join(s.root, usersDir, strconv.FormatInt(userID, 10))
}

// confine verifies that path resolves inside the user's own subtree.
// The token format check already forbids separators, so this is a second
// line of defense rather than the primary one.
func (s *fsStore) confine(userID int64, path string) error {
	rel, err := filepath.Rel(s.userRoot(userID), filepath.Clean(path))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return apperrors.NewNotFoundError("path resolves outside user storage", nil)
	}
	return nil
}

// tokenPath builds the day file path for a validated token.
func (s *fsStore) tokenPath(userID int64, kind, token, ext string) string {
	month := token[:4] + "-" + token[4:6]
	return filepath.Join(s.userRoot(userID), kind, month, token+ext)
}

func (s *fsStore) SaveEntry(ctx context.Context, userID int64, date time.Time, rawText string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	dir := filepath.Join(s.userRoot(userID), entriesDir, date.Format(monthLayout))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		s.logger.ErrorContext(ctx, "Failed to create entry directory", "user_id", userID, "dir", dir, "error", err)
		return apperrors.NewStorageError("failed to create entry directory", err)
	}

	path := filepath.Join(dir, DateToken(date)+".txt")
	if err := os.WriteFile(path, []byte(rawText), 0o600); err != nil {
		s.logger.ErrorContext(ctx, "Failed to write entry", "user_id", userID, "path", path, "error", err)
		return apperrors.NewStorageError("failed to write entry", err)
	}

	s.logger.DebugContext(ctx, "Entry saved", "user_id", userID, "date", DateToken(date), "bytes", len(rawText))
	return nil
}

func (s *fsStore) SaveAnalysis(ctx context.Context, userID int64, date time.Time, analysis *Analysis) error {
	if analysis == nil {
		return apperrors.NewStorageError("cannot save nil analysis", nil)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	dir := filepath.Join(s.userRoot(userID), analysesDir, date.Format(monthLayout))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		s.logger.ErrorContext(ctx, "Failed to create analysis directory", "user_id", userID, "dir", dir, "error", err)
		return apperrors.NewStorageError("failed to create analysis directory", err)
	}

	data, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return apperrors.NewStorageError("failed to serialize analysis", err)
	}

	path := filepath.Join(dir, DateToken(date)+".json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		s.logger.ErrorContext(ctx, "Failed to write analysis", "user_id", userID, "path", path, "error", err)
		return apperrors.NewStorageError("failed to write analysis", err)
	}

	s.logger.DebugContext(ctx, "Analysis saved", "user_id", userID, "date", DateToken(date), "rating", analysis.Rating)
	return nil
}

func (s *fsStore) ListRecent(ctx context.Context, userID int64, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	base := filepath.Join(s.userRoot(userID), analysesDir)
	months, err := os.ReadDir(base)
	if err != nil {
		if isNotExist(err) {
			return nil, nil
		}
		s.logger.ErrorContext(ctx, "Failed to list analysis months", "user_id", userID, "error", err)
		return nil, apperrors.NewStorageError("failed to list analyses", err)
	}

	// Month directory names are YYYY-MM, so a descending lexicographic
	// sort visits the newest month first.
	sort.Slice(months, func(i, j int) bool { return months[i].Name() > months[j].Name() })

	var tokens []string
	for _, month := range months {
		if !month.IsDir() {
			continue
		}
		days, err := os.ReadDir(filepath.Join(base, month.Name()))
		if err != nil {
			s.logger.WarnContext(ctx, "Failed to read month directory, skipping", "user_id", userID, "month", month.Name(), "error", err)
			continue
		}
		var monthTokens []string
		for _, day := range days {
			name := day.Name()
			if day.IsDir() || !strings.HasSuffix(name, ".json") {
				continue
			}
			token := strings.TrimSuffix(name, ".json")
			if validateToken(token) != nil {
				continue
			}
			monthTokens = append(monthTokens, token)
		}
		sort.Sort(sort.Reverse(sort.StringSlice(monthTokens)))
		tokens = append(tokens, monthTokens...)
		if len(tokens) >= limit {
			tokens = tokens[:limit]
			break
		}
	}

	s.logger.DebugContext(ctx, "Listed recent analyses", "user_id", userID, "count", len(tokens))
	return tokens, nil
}

func (s *fsStore) ReadAnalysis(ctx context.Context, userID int64, dateToken string) (*Analysis, error) {
	if err := validateToken(dateToken); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	path := s.tokenPath(userID, analysesDir, dateToken, ".json")
	if err := s.confine(userID, path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if isNotExist(err) {
			return nil, apperrors.NewNotFoundError("no analysis stored for "+FormatToken(dateToken), err)
		}
		s.logger.ErrorContext(ctx, "Failed to read analysis", "user_id", userID, "token", dateToken, "error", err)
		return nil, apperrors.NewStorageError("failed to read analysis", err)
	}

	var analysis Analysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		s.logger.ErrorContext(ctx, "Stored analysis is corrupt", "user_id", userID, "token", dateToken, "error", err)
		return nil, apperrors.NewStorageError("stored analysis is corrupt", err)
	}
	return &analysis, nil
}

func (s *fsStore) ReadEntry(ctx context.Context, userID int64, dateToken string) (string, error) {
	if err := validateToken(dateToken); err != nil {
		return "", err
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	path := s.tokenPath(userID, entriesDir, dateToken, ".txt")
	if err := s.confine(userID, path); err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if isNotExist(err) {
			return "", apperrors.NewNotFoundError("no entry stored for "+FormatToken(dateToken), err)
		}
		s.logger.ErrorContext(ctx, "Failed to read entry", "user_id", userID, "token", dateToken, "error", err)
		return "", apperrors.NewStorageError("failed to read entry", err)
	}
	return string(data), nil
}

func (s *fsStore) GetBio(ctx context.Context, userID int64) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	data, err := os.ReadFile(filepath.Join(s.userRoot(userID), bioFile))
	if err != nil {
		if isNotExist(err) {
			// Missing bio is valid: analysis proceeds without personalization.
			return "", nil
		}
		s.logger.ErrorContext(ctx, "Failed to read bio", "user_id", userID, "error", err)
		return "", apperrors.NewStorageError("failed to read bio", err)
	}
	return string(data), nil
}

func (s *fsStore) SetBio(ctx context.Context, userID int64, bio string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	dir := s.userRoot(userID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		s.logger.ErrorContext(ctx, "Failed to create user directory", "user_id", userID, "error", err)
		return apperrors.NewStorageError("failed to create user directory", err)
	}
	if err := os.WriteFile(filepath.Join(dir, bioFile), []byte(bio), 0o600); err != nil {
		s.logger.ErrorContext(ctx, "Failed to write bio", "user_id", userID, "error", err)
		return apperrors.NewStorageError("failed to write bio", err)
	}

	s.logger.DebugContext(ctx, "Bio saved", "user_id", userID, "bytes", len(bio))
	return nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
