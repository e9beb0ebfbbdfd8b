package analyzer

import (
	"strings"
	"unicode/utf8"

	"tubelens-api/internal/infra/youtube"
)

const maxQuestionLen = 500

// questionsFromComments picks comments phrased as questions, most relevant first,
// skipping duplicates. Answers are filled in later.
func questionsFromComments(comments []youtube.Comment, limit int) []string {
	if limit <= 0 {
		return nil
	}

	seen := make(map[string]struct{})
	var out []string
	for _, c := range comments {
		text := strings.Join(strings.Fields(c.Text), " ")
		if !strings.Contains(text, "?") {
			continue
		}
		if utf8.RuneCountInString(text) > maxQuestionLen {
			text = string([]rune(text)[:maxQuestionLen])
		}
		key := strings.ToLower(text)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, text)
		if len(out) == limit {
			break
		}
	}
	return out
}
