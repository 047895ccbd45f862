package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/verihire/verihire/internal/models"
	pgrepo "github.com/verihire/verihire/internal/repositories/postgres"
	"github.com/verihire/verihire/internal/services"
	"github.com/verihire/verihire/internal/utils"
)

type VerificationHandler struct {
	svc    services.VerificationService
	audits pgrepo.AuditRepository
}

func NewVerificationHandler(svc services.VerificationService, audits pgrepo.AuditRepository) *VerificationHandler {
	return &VerificationHandler{svc: svc, audits: audits}
}

type SubmitRequest struct {
	Skill              string                  `json:"skill" binding:"required"`
	Question           models.LocalizedText    `json:"question" binding:"required"`
	ExpectedAnswer     string                  `json:"expected_answer"`
	MediaRef           string                  `json:"media_ref"`
	RecordedDurationMs int64                   `json:"recorded_duration_ms"`
	LanguageHint       string                  `json:"language_hint"`
	AcousticMetrics    *models.AcousticMetrics `json:"acoustic_metrics"`
}

type SubmitResponse struct {
	SubmissionID string `json:"submission_id"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
}

func (h *VerificationHandler) Submit(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "VerificationHandler.Submit", "invalid request body", err))
		return
	}

	sub, err := h.svc.Submit(c.Request.Context(), userID, services.SubmitInput{
		Skill:              req.Skill,
		Question:           req.Question,
		ExpectedAnswer:     req.ExpectedAnswer,
		MediaRef:           req.MediaRef,
		RecordedDurationMs: req.RecordedDurationMs,
		LanguageHint:       req.LanguageHint,
		AcousticMetrics:    req.AcousticMetrics,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, SubmitResponse{
		SubmissionID: sub.SubmissionID,
		Status:       sub.Status,
		CreatedAt:    sub.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

func (h *VerificationHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sub, err := h.svc.Get(c.Request.Context(), c.Param("submission_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if sub.UserID != userID {
		writeError(c, utils.E(utils.CodeForbidden, "VerificationHandler.Get", "forbidden", nil))
		return
	}

	c.JSON(http.StatusOK, sub)
}

func (h *VerificationHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	limit, _ := strconv.ParseInt(c.Query("limit"), 10, 64)
	subs, err := h.svc.ListByUser(c.Request.Context(), userID, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"submissions": subs})
}

// ListAudits is admin-only reporting over the relational audit trail.
func (h *VerificationHandler) ListAudits(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	var (
		rows []models.VerificationAudit
		err  error
	)
	if skill := c.Query("skill"); skill != "" {
		rows, err = h.audits.ListBySkill(c.Request.Context(), skill, limit)
	} else {
		rows, err = h.audits.ListRecent(c.Request.Context(), limit)
	}
	if err != nil {
		writeError(c, utils.E(utils.CodeInternal, "VerificationHandler.ListAudits", "failed to list audits", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"audits": rows})
}
