package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/verihire/verihire/internal/api/handlers"
	"github.com/verihire/verihire/internal/api/middleware"
)

type Deps struct {
	Verification *handlers.VerificationHandler
	Question     *handlers.QuestionHandler
	WS           *handlers.WSHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	auth := r.Group("/")
	auth.Use(middleware.JWTAuth())

	auth.GET("/question/generate", d.Question.Generate)

	auth.POST("/verification/submit", d.Verification.Submit)
	auth.GET("/verification/:submission_id", d.Verification.Get)
	auth.GET("/verifications", d.Verification.List)

	auth.GET("/ws/verification/:submission_id", d.WS.VerificationWS)

	admin := r.Group("/admin")
	admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	admin.GET("/audits", d.Verification.ListAudits)
}
