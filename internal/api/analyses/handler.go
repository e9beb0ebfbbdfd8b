package analyses

import (
	"net/http"

	"tubelens-api/internal/app/analyzer"
	"tubelens-api/internal/app/http/middleware"
	"tubelens-api/internal/domain/analysis"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	analyzer *analyzer.Service
	logger   *zap.Logger
}

func NewHandler(an *analyzer.Service, logger *zap.Logger) *Handler {
	return &Handler{analyzer: an, logger: logger.Named("analyses")}
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return uuid.Nil, false
	}
	return id, true
}

// POST /analyses
func (h *Handler) Create(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return
	}

	var input createAnalysisInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed JSON"})
		return
	}

	res, err := h.analyzer.CreateAnalysis(c.Request.Context(), analyzer.Request{
		UserID:      userID,
		YoutubeType: analysis.YoutubeType(input.YoutubeType),
		YoutubeID:   input.YoutubeID,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreateAnalysisResponse{
		AnalysisDTO: toAnalysisDTO(res.Analysis),
		Usage: UsageDTO{
			Used:    res.Usage.AnalysesUsed,
			Limit:   res.Usage.AnalysesLimit,
			ResetAt: res.Usage.ResetAt,
		},
	})
}

// GET /analyses
func (h *Handler) List(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return
	}

	rows, err := h.analyzer.ListAnalyses(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	out := make([]AnalysisDTO, 0, len(rows))
	for _, a := range rows {
		out = append(out, toAnalysisDTO(a))
	}
	c.JSON(http.StatusOK, out)
}

// GET /analyses/:id
func (h *Handler) Get(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	a, err := h.analyzer.GetAnalysis(c.Request.Context(), userID, id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAnalysisDTO(*a))
}

// DELETE /analyses/:id
func (h *Handler) Delete(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.analyzer.DeleteAnalysis(c.Request.Context(), userID, id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /analyses/:id/questions
func (h *Handler) AddQuestion(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var input questionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed JSON"})
		return
	}

	q, err := h.analyzer.AddQuestion(c.Request.Context(), userID, id, input.Question)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toQuestionDTO(*q))
}

// PUT /analyses/:id/questions/:qid
func (h *Handler) AnswerQuestion(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	qid, ok := pathID(c, "qid")
	if !ok {
		return
	}

	var input answerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed JSON"})
		return
	}

	q, err := h.analyzer.AnswerQuestion(c.Request.Context(), userID, id, qid, input.Answer)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toQuestionDTO(*q))
}
