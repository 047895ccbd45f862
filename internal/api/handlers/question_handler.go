package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/verihire/verihire/internal/services"
)

type QuestionHandler struct {
	svc services.QuestionService
}

func NewQuestionHandler(svc services.QuestionService) *QuestionHandler {
	return &QuestionHandler{svc: svc}
}

func (h *QuestionHandler) Generate(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}

	q, err := h.svc.Generate(c.Request.Context(), c.Query("skill"), c.Query("locale"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, q)
}
