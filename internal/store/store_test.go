package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/edgard/diariobot/internal/errors"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	st, err := New(t.TempDir(), nil)
	require.NoError(t, err)
	return st
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		token   string
		wantErr bool
	}{
		{name: "valid date", token: "20250830", wantErr: false},
		{name: "valid boundary day", token: "20250131", wantErr: false},
		{name: "too short", token: "2025083", wantErr: true},
		{name: "too long", token: "202508301", wantErr: true},
		{name: "empty", token: "", wantErr: true},
		{name: "non-digit", token: "2025O830", wantErr: true},
		{name: "path traversal", token: "../../etc", wantErr: true},
		{name: "separator smuggling", token: "2025/083", wantErr: true},
		{name: "year too old", token: "19990830", wantErr: true},
		{name: "year too far", token: "21000830", wantErr: true},
		{name: "month zero", token: "20250030", wantErr: true},
		{name: "month thirteen", token: "20251330", wantErr: true},
		{name: "day zero", token: "20250800", wantErr: true},
		{name: "day thirty-two", token: "20250832", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := validateToken(tc.token)
			if tc.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperrors.CodeValidation, apperrors.Code(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestReadAnalysisRejectsTraversalTokens(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()

	for _, token := range []string{"../../etc", "..%2F..%2F", "........", "20250830/../x"} {
		_, err := st.ReadAnalysis(ctx, 42, token)
		require.Error(t, err, "token %q must be rejected", token)
		assert.Equal(t, apperrors.CodeValidation, apperrors.Code(err))
	}
}

func TestSaveAndReadEntry(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()
	date := time.Date(2025, 8, 30, 21, 0, 0, 0, time.UTC)

	require.NoError(t, st.SaveEntry(ctx, 42, date, "a fine day overall"))

	got, err := st.ReadEntry(ctx, 42, "20250830")
	require.NoError(t, err)
	assert.Equal(t, "a fine day overall", got)

	// A second write for the same day overwrites the first.
	require.NoError(t, st.SaveEntry(ctx, 42, date, "revised recollection"))
	got, err = st.ReadEntry(ctx, 42, "20250830")
	require.NoError(t, err)
	assert.Equal(t, "revised recollection", got)
}

func TestSaveAndReadAnalysis(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()
	date := time.Date(2025, 8, 30, 21, 0, 0, 0, time.UTC)

	in := &Analysis{
		Gratitude:  []string{"morning run", "dinner with friends"},
		DaySummary: "A steady, satisfying day.",
		Rating:     7,
		CreatedAt:  date,
	}
	require.NoError(t, st.SaveAnalysis(ctx, 42, date, in))

	out, err := st.ReadAnalysis(ctx, 42, "20250830")
	require.NoError(t, err)
	assert.Equal(t, in.Rating, out.Rating)
	assert.Equal(t, in.DaySummary, out.DaySummary)
	assert.Equal(t, in.Gratitude, out.Gratitude)
}

func TestReadMissingReturnsNotFound(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.ReadAnalysis(ctx, 42, "20250101")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.Code(err))

	_, err = st.ReadEntry(ctx, 42, "20250101")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.Code(err))
}

func TestListRecentOrderAndLimit(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()

	// Spread entries across two months to exercise the month-dir walk.
	days := []time.Time{
		time.Date(2025, 7, 28, 12, 0, 0, 0, time.UTC),
		time.Date(2025, 7, 30, 12, 0, 0, 0, time.UTC),
		time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC),
		time.Date(2025, 8, 30, 12, 0, 0, 0, time.UTC),
	}
	for i, d := range days {
		require.NoError(t, st.SaveAnalysis(ctx, 42, d, &Analysis{DaySummary: "day", Rating: i + 1}))
	}

	tokens, err := st.ListRecent(ctx, 42, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"20250830", "20250815", "20250801"}, tokens)

	all, err := st.ListRecent(ctx, 42, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"20250830", "20250815", "20250801", "20250730", "20250728"}, all)
}

func TestListRecentEmpty(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	tokens, err := st.ListRecent(context.Background(), 42, 10)
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestBioRoundtrip(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()

	// Missing bio is not an error.
	bio, err := st.GetBio(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, bio)

	require.NoError(t, st.SetBio(ctx, 42, "software engineer, two kids"))
	bio, err = st.GetBio(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "software engineer, two kids", bio)

	require.NoError(t, st.SetBio(ctx, 42, "updated"))
	bio, err = st.GetBio(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "updated", bio)
}

func TestUsersAreIsolated(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	ctx := context.Background()
	date := time.Date(2025, 8, 30, 12, 0, 0, 0, time.UTC)

	require.NoError(t, st.SaveAnalysis(ctx, 1, date, &Analysis{DaySummary: "mine", Rating: 8}))

	_, err := st.ReadAnalysis(ctx, 2, "20250830")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.Code(err))

	tokens, err := st.ListRecent(ctx, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestWritesStayInsideUserSubtree(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	st, err := New(root, nil)
	require.NoError(t, err)
	ctx := context.Background()
	date := time.Date(2025, 8, 30, 12, 0, 0, 0, time.UTC)

	require.NoError(t, st.SaveEntry(ctx, 42, date, "entry text"))
	require.NoError(t, st.SaveAnalysis(ctx, 42, date, &Analysis{DaySummary: "day", Rating: 5}))
	require.NoError(t, st.SetBio(ctx, 42, "bio"))

	var outside []string
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, relErr := filepath.Rel(filepath.Join(root, "users", "42"), path)
		if relErr != nil || rel == ".." || filepath.IsAbs(rel) || len(rel) > 1 && rel[:2] == ".." {
			outside = append(outside, path)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Empty(t, outside, "all files must live under the user's subtree")
}

func TestDateTokenHelpers(t *testing.T) {
	t.Parallel()

	d := time.Date(2025, 8, 3, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "20250803", DateToken(d))
	assert.Equal(t, "2025-08-03", FormatToken("20250803"))
	assert.Equal(t, "garbage", FormatToken("garbage"))
}
