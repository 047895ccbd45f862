package workers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/verihire/verihire/internal/services"
)

// VerifyWorkerPool consumes queued submissions from a redis stream and
// runs the verification pipeline on each. Status updates are published
// per submission so the websocket layer can forward them live.
type VerifyWorkerPool struct {
	Redis         *redis.Client
	Verifications services.VerificationService
	NumWorkers    int

	Logger *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string
}

func statusChannel(submissionID string) string {
	return "verify:" + submissionID + ":status"
}

func (p *VerifyWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Verifications == nil {
		return errors.New("VerifyWorkerPool missing dependency: Redis/Verifications must be set")
	}
	if p.Stream == "" {
		p.Stream = services.VerifyStream
	}
	if p.Group == "" {
		p.Group = "verify-workers"
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "v"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 3
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer)
	}
	return nil
}

func (p *VerifyWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    5,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if err == redis.Nil {
				continue
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				p.handleMsg(ctx, msg)
				_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
			}
		}
	}
}

func (p *VerifyWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) {
	submissionID := ""
	if v, ok := msg.Values["submission_id"]; ok {
		submissionID, _ = v.(string)
	}
	if submissionID == "" {
		return
	}

	log := p.Logger.WithFields(logrus.Fields{
		"redis_id":      msg.ID,
		"submission_id": submissionID,
	})

	ch := statusChannel(submissionID)
	p.publish(ctx, ch, map[string]any{
		"type":          "status",
		"status":        "processing",
		"submission_id": submissionID,
	})

	start := time.Now()
	res, err := p.Verifications.Process(ctx, submissionID)
	if err != nil {
		// Only a missing/unreadable submission lands here; pipeline stage
		// failures are already folded into the result.
		log.WithError(err).Error("verification run failed")
		p.publish(ctx, ch, map[string]any{
			"type":          "status",
			"status":        "failed",
			"submission_id": submissionID,
			"message":       "submission could not be processed",
		})
		return
	}

	log.WithFields(logrus.Fields{
		"decision":      res.AutoDecision,
		"confidence":    res.ConfidenceScore,
		"processing_ms": time.Since(start).Milliseconds(),
	}).Info("submission verified")

	p.publish(ctx, ch, map[string]any{
		"type":             "analysis_complete",
		"submission_id":    submissionID,
		"auto_decision":    res.AutoDecision,
		"confidence_score": res.ConfidenceScore,
		"reason":           res.AutoDecisionReason,
		"processing_ms":    time.Since(start).Milliseconds(),
	})
}

func (p *VerifyWorkerPool) publish(ctx context.Context, channel string, payload map[string]any) {
	b, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = p.Redis.Publish(ctx, channel, string(b)).Err()
}
