package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/verihire/verihire/internal/models"
	"github.com/verihire/verihire/internal/pipeline"
	mongorepo "github.com/verihire/verihire/internal/repositories/mongo"
	pgrepo "github.com/verihire/verihire/internal/repositories/postgres"
	"github.com/verihire/verihire/internal/utils"
)

// VerifyStream is the redis stream the worker pool consumes.
const VerifyStream = "verify:stream"

type SubmitInput struct {
	Skill              string
	Question           models.LocalizedText
	ExpectedAnswer     string
	MediaRef           string
	RecordedDurationMs int64
	LanguageHint       string
	AcousticMetrics    *models.AcousticMetrics
}

type VerificationService interface {
	// Submit stores the submission and queues it for analysis.
	Submit(ctx context.Context, userID string, in SubmitInput) (*models.Submission, error)
	Get(ctx context.Context, submissionID string) (*models.Submission, error)
	ListByUser(ctx context.Context, userID string, limit int64) ([]models.Submission, error)
	// Process runs the pipeline for a queued submission. Stage failures
	// never surface as errors; only a missing submission does.
	Process(ctx context.Context, submissionID string) (*models.AnalysisResult, error)
}

type verificationService struct {
	subs   mongorepo.SubmissionRepository
	audits pgrepo.AuditRepository
	orch   *pipeline.Orchestrator
	rdb    *redis.Client
	log    *logrus.Logger
}

func NewVerificationService(
	subs mongorepo.SubmissionRepository,
	audits pgrepo.AuditRepository,
	orch *pipeline.Orchestrator,
	rdb *redis.Client,
	log *logrus.Logger,
) VerificationService {
	if log == nil {
		log = logrus.New()
	}
	return &verificationService{subs: subs, audits: audits, orch: orch, rdb: rdb, log: log}
}

func (s *verificationService) Submit(ctx context.Context, userID string, in SubmitInput) (*models.Submission, error) {
	const op = "VerificationService.Submit"

	if userID == "" || in.Skill == "" || len(in.Question) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id, skill, and question are required", nil)
	}
	// media_ref may legitimately be absent; the pipeline still runs and
	// flags the submission.

	sub := &models.Submission{
		SubmissionID:       uuid.NewString(),
		UserID:             userID,
		Skill:              in.Skill,
		Question:           in.Question,
		ExpectedAnswer:     in.ExpectedAnswer,
		MediaRef:           in.MediaRef,
		RecordedDurationMs: in.RecordedDurationMs,
		LanguageHint:       in.LanguageHint,
		AcousticMetrics:    in.AcousticMetrics,
		Status:             models.StatusQueued,
	}

	if err := s.subs.Create(ctx, sub); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to store submission", err)
	}

	if err := s.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: VerifyStream,
		Values: map[string]any{
			"submission_id": sub.SubmissionID,
			"ts_unix":       time.Now().UTC().Unix(),
		},
	}).Err(); err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to enqueue submission", err)
	}

	return sub, nil
}

func (s *verificationService) Get(ctx context.Context, submissionID string) (*models.Submission, error) {
	const op = "VerificationService.Get"

	if submissionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "submission_id is required", nil)
	}
	out, err := s.subs.GetBySubmissionID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "submission not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get submission", err)
	}
	return out, nil
}

func (s *verificationService) ListByUser(ctx context.Context, userID string, limit int64) ([]models.Submission, error) {
	const op = "VerificationService.ListByUser"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	out, err := s.subs.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list submissions", err)
	}
	return out, nil
}

func (s *verificationService) Process(ctx context.Context, submissionID string) (*models.AnalysisResult, error) {
	const op = "VerificationService.Process"

	sub, err := s.Get(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	res := s.orch.Run(ctx, sub)

	s.recordAudit(ctx, sub, res)
	return res, nil
}

// recordAudit writes the relational audit row. Best-effort: the analysis
// already lives in the source of record.
func (s *verificationService) recordAudit(ctx context.Context, sub *models.Submission, res *models.AnalysisResult) {
	if s.audits == nil {
		return
	}

	flagsJSON, _ := json.Marshal(res.Flags)
	analysisJSON, _ := json.Marshal(res)

	row := &models.VerificationAudit{
		ID:              uuid.NewString(),
		SubmissionID:    sub.SubmissionID,
		UserID:          sub.UserID,
		Skill:           sub.Skill,
		Decision:        string(res.AutoDecision),
		ConfidenceScore: res.ConfidenceScore,
		Flags:           datatypes.JSON(flagsJSON),
		Analysis:        datatypes.JSON(analysisJSON),
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.audits.Insert(ctx, row); err != nil {
		s.log.WithField("submission_id", sub.SubmissionID).WithError(err).Warn("audit insert failed")
	}
}
