package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/verihire/verihire/config"
	"github.com/verihire/verihire/internal/analysis"
	"github.com/verihire/verihire/internal/api/handlers"
	"github.com/verihire/verihire/internal/api/middleware"
	"github.com/verihire/verihire/internal/api/routes"
	"github.com/verihire/verihire/internal/cache"
	"github.com/verihire/verihire/internal/logger"
	"github.com/verihire/verihire/internal/models"
	"github.com/verihire/verihire/internal/pipeline"
	"github.com/verihire/verihire/internal/providers/stt"
	"github.com/verihire/verihire/internal/providers/textgen"
	mongorepo "github.com/verihire/verihire/internal/repositories/mongo"
	pgrepo "github.com/verihire/verihire/internal/repositories/postgres"
	"github.com/verihire/verihire/internal/services"
	"github.com/verihire/verihire/internal/storage"
	"github.com/verihire/verihire/internal/workers"
)

func main() {
	_ = godotenv.Load()
	l := logger.New()

	if err := config.InitMongo(); err != nil {
		log.Fatalf("MongoDB init error: %v", err)
	}
	l.Info("MongoDB connected")

	if err := config.EnsureMongoIndexes(); err != nil {
		log.Fatalf("MongoDB index error: %v", err)
	}

	if err := config.InitPostgres(); err != nil {
		log.Fatalf("PostgreSQL init error: %v", err)
	}
	if err := config.PostgresDB.AutoMigrate(&models.VerificationAudit{}); err != nil {
		log.Fatalf("PostgreSQL migrate error: %v", err)
	}
	l.Info("PostgreSQL connected")

	if err := config.InitRedis(); err != nil {
		log.Fatalf("Redis init error: %v", err)
	}
	l.Info("Redis connected")

	ctx := context.Background()

	sttProvider, err := stt.NewGoogleSpeech(ctx)
	if err != nil {
		log.Fatalf("Speech client init error: %v", err)
	}
	defer sttProvider.Close()

	gateway := buildTextGateway(ctx, l)

	gcsStore, err := storage.NewGCSStore(ctx, os.Getenv("GCS_BUCKET"))
	if err != nil {
		log.Fatalf("GCS client init error: %v", err)
	}
	defer gcsStore.Close()

	retention := pipeline.NewRetentionManager(gcsStore, l)
	defer retention.Close()

	db := config.MongoDatabase()
	subRepo := mongorepo.NewSubmissionRepo(db)
	auditRepo := pgrepo.NewAuditRepo(config.PostgresDB)

	orch := pipeline.NewOrchestrator(
		sttProvider,
		analysis.NewOriginalityClassifier(gateway, l),
		analysis.NewCorrectnessGrader(gateway, l),
		subRepo,
		retention,
		pipeline.NewHTTPMediaFetcher(),
		l,
	)

	verifications := services.NewVerificationService(subRepo, auditRepo, orch, config.RedisClient, l)
	questions := services.NewQuestionService(gateway, cache.NewRedisCache(config.RedisClient), l)

	pool := &workers.VerifyWorkerPool{
		Redis:         config.RedisClient,
		Verifications: verifications,
		Logger:        l,
	}
	if err := pool.Start(ctx); err != nil {
		log.Fatalf("worker pool start error: %v", err)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(l))

	routes.RegisterRoutes(r, routes.Deps{
		Verification: handlers.NewVerificationHandler(verifications, auditRepo),
		Question:     handlers.NewQuestionHandler(questions),
		WS:           handlers.NewWSHandler(verifications, config.RedisClient),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// buildTextGateway assembles the generation backends from the
// environment. The first backend is the primary; the rest are tried in
// order when it fails.
func buildTextGateway(ctx context.Context, l *logrus.Logger) *textgen.Gateway {
	var backends []textgen.Backend

	keys := splitKeys(os.Getenv("GEMINI_API_KEYS"))
	gemini := textgen.NewGemini(os.Getenv("GEMINI_MODEL"), keys)

	var vertex textgen.Backend
	if project := os.Getenv("GOOGLE_CLOUD_PROJECT"); project != "" {
		v, err := textgen.NewVertexGemini(ctx, project, os.Getenv("GOOGLE_CLOUD_LOCATION"), os.Getenv("VERTEX_MODEL"))
		if err != nil {
			l.WithError(err).Warn("vertex backend unavailable")
		} else {
			vertex = v
		}
	}

	if strings.EqualFold(os.Getenv("TEXTGEN_PRIMARY"), "vertex") && vertex != nil {
		backends = append(backends, vertex)
		if len(keys) > 0 {
			backends = append(backends, gemini)
		}
	} else {
		if len(keys) > 0 {
			backends = append(backends, gemini)
		}
		if vertex != nil {
			backends = append(backends, vertex)
		}
	}

	if url := os.Getenv("OLLAMA_URL"); url != "" {
		backends = append(backends, textgen.NewOllama(url, os.Getenv("OLLAMA_MODEL")))
	}

	if len(backends) == 0 {
		log.Fatal("no text generation backend configured; set GEMINI_API_KEYS, GOOGLE_CLOUD_PROJECT, or OLLAMA_URL")
	}

	timeout := 30 * time.Second
	if v := os.Getenv("TEXTGEN_TIMEOUT_SECONDS"); v != "" {
		if n, err := time.ParseDuration(v + "s"); err == nil && n > 0 {
			timeout = n
		}
	}
	return textgen.NewGateway(l, timeout, backends...)
}

func splitKeys(raw string) []string {
	var out []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
