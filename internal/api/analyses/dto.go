package analyses

import (
	"time"

	"tubelens-api/internal/domain/analysis"

	"github.com/google/uuid"
)

type createAnalysisInput struct {
	YoutubeType string `json:"youtube_type"`
	YoutubeID   string `json:"youtube_id"`
}

type questionInput struct {
	Question string `json:"question"`
}

type answerInput struct {
	Answer string `json:"answer"`
}

type QuestionDTO struct {
	ID       uuid.UUID `json:"id"`
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
}

type AnalysisDTO struct {
	ID          uuid.UUID     `json:"id"`
	YoutubeType string        `json:"youtube_type"`
	YoutubeID   string        `json:"youtube_id"`
	Title       string        `json:"title"`
	Summary     string        `json:"summary"`
	Questions   []QuestionDTO `json:"questions,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

type UsageDTO struct {
	Used    int       `json:"used"`
	Limit   int       `json:"limit"`
	ResetAt time.Time `json:"reset_at"`
}

type CreateAnalysisResponse struct {
	AnalysisDTO
	Usage UsageDTO `json:"usage"`
}

func toQuestionDTO(q analysis.AnalysisQuestion) QuestionDTO {
	return QuestionDTO{ID: q.ID, Question: q.Question, Answer: q.Answer}
}

func toAnalysisDTO(a analysis.YoutubeAnalysis) AnalysisDTO {
	out := AnalysisDTO{
		ID:          a.ID,
		YoutubeType: string(a.YoutubeType),
		YoutubeID:   a.YoutubeID,
		Title:       a.Title,
		Summary:     a.Summary,
		CreatedAt:   a.CreatedAt,
	}
	if len(a.Questions) > 0 {
		out.Questions = make([]QuestionDTO, 0, len(a.Questions))
		for _, q := range a.Questions {
			out.Questions = append(out.Questions, toQuestionDTO(q))
		}
	}
	return out
}
