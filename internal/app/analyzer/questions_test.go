package analyzer

import (
	"strings"
	"testing"

	"tubelens-api/internal/infra/youtube"

	"github.com/stretchr/testify/assert"
)

func TestQuestionsFromComments(t *testing.T) {
	comments := []youtube.Comment{
		{Text: "first!"},
		{Text: "How   long did\nthis take?"},
		{Text: "HOW LONG DID THIS TAKE?"},
		{Text: "Is this 4k?"},
		{Text: strings.Repeat("a", 600) + "?"},
	}

	got := questionsFromComments(comments, 10)
	assert.Equal(t, "How long did this take?", got[0])
	assert.Equal(t, "Is this 4k?", got[1])
	assert.Len(t, got, 3)
	assert.Len(t, []rune(got[2]), maxQuestionLen)

	assert.Len(t, questionsFromComments(comments, 1), 1)
	assert.Nil(t, questionsFromComments(comments, 0))
}
