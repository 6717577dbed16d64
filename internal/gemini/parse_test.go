package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/edgard/diariobot/internal/errors"
)

func TestParseAnalysisJSON(t *testing.T) {
	t.Parallel()

	input := `{
		"gratitude": ["morning coffee", "a call with mom"],
		"time_inefficiency": "scrolled too long after lunch",
		"good_use": "deep work block before noon",
		"memorable_moments": "sunset walk",
		"suggestions": ["set a phone timer"],
		"habit_patterns": "afternoon slumps recur",
		"day_summary": "A day of quiet progress.",
		"rating": 7
	}`

	a, err := ParseAnalysis(input)
	require.NoError(t, err)
	assert.Equal(t, 7, a.Rating)
	assert.Equal(t, "A day of quiet progress.", a.DaySummary)
	assert.Equal(t, []string{"morning coffee", "a call with mom"}, a.Gratitude)
	assert.Equal(t, []string{"set a phone timer"}, a.Suggestions)
	assert.Equal(t, "afternoon slumps recur", a.HabitPatterns)
}

func TestParseAnalysisFencedJSON(t *testing.T) {
	t.Parallel()

	input := "```json\n{\"day_summary\": \"Fine.\", \"rating\": 5}\n```"

	a, err := ParseAnalysis(input)
	require.NoError(t, err)
	assert.Equal(t, 5, a.Rating)
	assert.Equal(t, "Fine.", a.DaySummary)
}

func TestParseAnalysisLabeledSections(t *testing.T) {
	t.Parallel()

	input := `GRATITUDE:
- the morning run
- a good book

TIME INEFFICIENCY: too many tabs open

GOOD USE OF TIME:
focused writing session

MEMORABLE MOMENTS: laughing with friends

SUGGESTIONS FOR IMPROVEMENT:
- go to bed earlier

HABIT PATTERN ANALYSIS: consistent exercise is paying off

DAY SUMMARY:
The day moved gently from work to rest.

DAY RATING: 8/10`

	a, err := ParseAnalysis(input)
	require.NoError(t, err)
	assert.Equal(t, 8, a.Rating)
	assert.Equal(t, []string{"the morning run", "a good book"}, a.Gratitude)
	assert.Equal(t, "too many tabs open", a.TimeInefficiency)
	assert.Equal(t, "focused writing session", a.GoodUse)
	assert.Equal(t, "laughing with friends", a.MemorableMoments)
	assert.Equal(t, []string{"go to bed earlier"}, a.Suggestions)
	assert.Equal(t, "consistent exercise is paying off", a.HabitPatterns)
	assert.Equal(t, "The day moved gently from work to rest.", a.DaySummary)
}

func TestParseAnalysisPartialSections(t *testing.T) {
	t.Parallel()

	// Missing sections stay empty; only the rating is mandatory.
	input := "DAY SUMMARY: short day\nDAY RATING: 5"

	a, err := ParseAnalysis(input)
	require.NoError(t, err)
	assert.Equal(t, 5, a.Rating)
	assert.Equal(t, "short day", a.DaySummary)
	assert.Empty(t, a.Gratitude)
	assert.Empty(t, a.TimeInefficiency)
}

func TestParseAnalysisRatingRequired(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "json missing rating", input: `{"day_summary": "no rating here"}`},
		{name: "json rating zero", input: `{"day_summary": "x", "rating": 0}`},
		{name: "json rating eleven", input: `{"day_summary": "x", "rating": 11}`},
		{name: "prose missing rating", input: "DAY SUMMARY: nothing else"},
		{name: "empty input", input: ""},
		{name: "plain prose", input: "today was a day like any other"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseAnalysis(tc.input)
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeAnalysisParse, apperrors.Code(err))
		})
	}
}

func TestParseAnalysisRatingVariants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
		want int
	}{
		{name: "with denominator", line: "DAY RATING: 8/10", want: 8},
		{name: "bare number", line: "DAY RATING: 3", want: 3},
		{name: "rating label only", line: "Rating: 10/10", want: 10},
		{name: "spaced denominator", line: "DAY RATING: 6 / 10", want: 6},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			a, err := ParseAnalysis("DAY SUMMARY: ok\n" + tc.line)
			require.NoError(t, err)
			assert.Equal(t, tc.want, a.Rating)
		})
	}
}

func TestStripCodeFences(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `{"a":1}`, stripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFences(`{"a":1}`))
}
