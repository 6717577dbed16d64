package gemini

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	apperrors "github.com/edgard/diariobot/internal/errors"
	"github.com/edgard/diariobot/internal/store"
)

var ratingPattern = regexp.MustCompile(`(\d+)\s*(?:/\s*10)?`)

// ParseAnalysis converts a model response into an Analysis. It first
// tries strict JSON (the schema-constrained happy path), then falls back
// to a labeled-section scan for responses that drifted into prose. The
// rating is mandatory: a missing or out-of-range rating fails the parse,
// while missing sections just stay empty.
func ParseAnalysis(text string) (*store.Analysis, error) {
	cleaned := stripCodeFences(text)

	analysis := &store.Analysis{}
	if err := json.Unmarshal([]byte(cleaned), analysis); err == nil {
		if analysis.Rating < 1 || analysis.Rating > 10 {
			return nil, apperrors.NewAnalysisParseError("rating missing or outside 1-10", nil)
		}
		return analysis, nil
	}

	analysis = parseLabeledSections(cleaned)
	if analysis.Rating < 1 || analysis.Rating > 10 {
		return nil, apperrors.NewAnalysisParseError("rating missing or outside 1-10", nil)
	}
	return analysis, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// sectionLabels maps the headers the model uses in prose mode to setter
// funcs. Matching is case-insensitive on the label up to the colon.
var sectionLabels = []struct {
	label string
	set   func(a *store.Analysis, body string)
}{
	{"GRATITUDE", func(a *store.Analysis, body string) { a.Gratitude = splitItems(body) }},
	{"TIME INEFFICIENCY", func(a *store.Analysis, body string) { a.TimeInefficiency = body }},
	{"GOOD USE OF TIME", func(a *store.Analysis, body string) { a.GoodUse = body }},
	{"MEMORABLE MOMENTS", func(a *store.Analysis, body string) { a.MemorableMoments = body }},
	{"SUGGESTIONS FOR IMPROVEMENT", func(a *store.Analysis, body string) { a.Suggestions = splitItems(body) }},
	{"HABIT PATTERN ANALYSIS", func(a *store.Analysis, body string) { a.HabitPatterns = body }},
	{"DAY SUMMARY", func(a *store.Analysis, body string) { a.DaySummary = body }},
}

func parseLabeledSections(text string) *store.Analysis {
	analysis := &store.Analysis{}

	lines := strings.Split(text, "\n")
	var current func(a *store.Analysis, body string)
	var buf []string

	flush := func() {
		if current != nil {
			current(analysis, strings.TrimSpace(strings.Join(buf, "\n")))
		}
		current = nil
		buf = nil
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if rating, ok := matchRatingLine(trimmed); ok {
			flush()
			analysis.Rating = rating
			continue
		}

		if set, rest, ok := matchSectionHeader(trimmed); ok {
			flush()
			current = set
			if rest != "" {
				buf = append(buf, rest)
			}
			continue
		}

		if current != nil && trimmed != "" {
			buf = append(buf, trimmed)
		}
	}
	flush()

	return analysis
}

func matchSectionHeader(line string) (set func(a *store.Analysis, body string), rest string, ok bool) {
	upper := strings.ToUpper(line)
	for _, sec := range sectionLabels {
		if strings.HasPrefix(upper, sec.label+":") {
			return sec.set, strings.TrimSpace(line[len(sec.label)+1:]), true
		}
		if upper == sec.label {
			return sec.set, "", true
		}
	}
	return nil, "", false
}

func matchRatingLine(line string) (int, bool) {
	upper := strings.ToUpper(line)
	if !strings.HasPrefix(upper, "DAY RATING") && !strings.HasPrefix(upper, "RATING") {
		return 0, false
	}
	m := ratingPattern.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// splitItems turns a bullet or dash list into individual items, falling
// back to one item for plain prose.
func splitItems(body string) []string {
	if body == "" {
		return nil
	}
	var items []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "- ")
		line = strings.TrimPrefix(line, "* ")
		line = strings.TrimPrefix(line, "• ")
		if line != "" {
			items = append(items, line)
		}
	}
	return items
}
