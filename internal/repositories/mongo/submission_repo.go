package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/verihire/verihire/internal/models"
	"github.com/verihire/verihire/internal/utils"
)

type SubmissionRepository interface {
	Create(ctx context.Context, s *models.Submission) error
	GetBySubmissionID(ctx context.Context, submissionID string) (*models.Submission, error)
	ListByUser(ctx context.Context, userID string, limit int64) ([]models.Submission, error)
	ApplyAnalysis(ctx context.Context, submissionID string, res *models.AnalysisResult) error
}

type submissionRepo struct {
	col *mongo.Collection
}

func NewSubmissionRepo(db *mongo.Database) SubmissionRepository {
	return &submissionRepo{col: db.Collection("submissions")}
}

func (r *submissionRepo) Create(ctx context.Context, s *models.Submission) error {
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	_, err := r.col.InsertOne(ctx, s)
	return err
}

func (r *submissionRepo) GetBySubmissionID(ctx context.Context, submissionID string) (*models.Submission, error) {
	var s models.Submission
	err := r.col.FindOne(ctx, bson.M{"submission_id": submissionID}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &s, err
}

func (r *submissionRepo) ListByUser(ctx context.Context, userID string, limit int64) ([]models.Submission, error) {
	if limit <= 0 {
		limit = 50
	}
	cur, err := r.col.Find(ctx,
		bson.M{"user_id": userID},
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: -1}}).
			SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Submission
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyAnalysis records the pipeline output against the submission.
// Last-write-wins: concurrent duplicate runs simply overwrite.
// reviewed_by stays null to signal that no human was involved.
func (r *submissionRepo) ApplyAnalysis(ctx context.Context, submissionID string, res *models.AnalysisResult) error {
	now := time.Now().UTC()
	_, err := r.col.UpdateOne(ctx,
		bson.M{"submission_id": submissionID},
		bson.M{"$set": bson.M{
			"analysis":     res,
			"status":       string(res.AutoDecision),
			"reviewed_by":  nil,
			"review_notes": "[AUTO] " + res.AutoDecisionReason,
			"reviewed_at":  now,
			"updated_at":   now,
		}},
	)
	return err
}
