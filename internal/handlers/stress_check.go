package handlers

import (
	"net/http"

	"stresscheck-go/internal/models"
	"stresscheck-go/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type StressCheckHandler struct {
	log           *zap.Logger
	questionnaire *models.Questionnaire
	submissions   *services.SubmissionService
}

func NewStressCheckHandler(log *zap.Logger, questionnaire *models.Questionnaire, submissions *services.SubmissionService) *StressCheckHandler {
	return &StressCheckHandler{
		log:           log,
		questionnaire: questionnaire,
		submissions:   submissions,
	}
}

type answersRequest struct {
	Answers models.AnswerMap `json:"answers" binding:"required"`
}

// Questions serves the questionnaire items and whether the caller already
// has a result for the current period.
func (h *StressCheckHandler) Questions(c *gin.Context) {
	taken, err := h.submissions.AlreadyTaken(c, currentUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"questions":     h.questionnaire.Questions,
		"already_taken": taken,
	})
}

func (h *StressCheckHandler) Submit(c *gin.Context) {
	var req answersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "answers are required"})
		return
	}

	result, err := h.submissions.Submit(c, currentUserID(c), req.Answers)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *StressCheckHandler) History(c *gin.Context) {
	checks, err := h.submissions.History(c, currentUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	type historyItem struct {
		ID           uuid.UUID `json:"id"`
		Period       string    `json:"period"`
		TotalScore   int       `json:"total_score"`
		IsHighStress bool      `json:"is_high_stress"`
	}
	items := make([]historyItem, len(checks))
	for i, check := range checks {
		items[i] = historyItem{
			ID:           check.ID,
			Period:       check.Period.Format("2006-01-02"),
			TotalScore:   check.TotalScore,
			IsHighStress: check.IsHighStress,
		}
	}
	c.JSON(http.StatusOK, gin.H{"results": items})
}

func (h *StressCheckHandler) Result(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid result id"})
		return
	}

	result, err := h.submissions.Result(c, id, currentUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *StressCheckHandler) GetDraft(c *gin.Context) {
	draft, err := h.submissions.Draft(c, currentUserID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if draft == nil {
		c.JSON(http.StatusOK, gin.H{"answers": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"answers":    draft.Answers.Data(),
		"updated_at": draft.UpdatedAt,
	})
}

func (h *StressCheckHandler) SaveDraft(c *gin.Context) {
	var req answersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "answers are required"})
		return
	}

	draft, err := h.submissions.SaveDraft(c, currentUserID(c), req.Answers)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"answers":    draft.Answers.Data(),
		"updated_at": draft.UpdatedAt,
	})
}

func (h *StressCheckHandler) DeleteDraft(c *gin.Context) {
	if err := h.submissions.DiscardDraft(c, currentUserID(c)); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// NonTaken lists employees without a submission this period. Admin only.
func (h *StressCheckHandler) NonTaken(c *gin.Context) {
	entries, err := h.submissions.NonTaken(c, currentCompanyID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"non_taken": entries})
}
