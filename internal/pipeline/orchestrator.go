// Package pipeline sequences the verification stages and guarantees a
// decision is produced and persisted exactly once per submission.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/verihire/verihire/internal/acoustic"
	"github.com/verihire/verihire/internal/analysis"
	"github.com/verihire/verihire/internal/models"
	"github.com/verihire/verihire/internal/providers/stt"
)

const (
	defaultPersistAttempts = 3
	defaultPersistBackoff  = 1500 * time.Millisecond
)

// Stage failure flags.
const (
	FlagNoMedia                 = "no media"
	FlagMediaFetchFailed        = "media fetch failed"
	FlagTranscriptionTransient  = "transcription failed (transient)"
	FlagTranscriptionFailed     = "transcription failed"
	FlagTranscriptTooShort      = "transcript too short for originality check"
	FlagOriginalityInconclusive = "originality check inconclusive"
	FlagAnswerCheckSkipped      = "answer check skipped: answer disqualified by originality check"
	FlagAnswerCheckInconclusive = "answer check inconclusive"
)

// AnalysisStore persists the finished result keyed by submission id.
type AnalysisStore interface {
	ApplyAnalysis(ctx context.Context, submissionID string, res *models.AnalysisResult) error
}

// MediaFetcher resolves a media reference to raw bytes plus a mime type.
type MediaFetcher interface {
	Fetch(ctx context.Context, ref string) (data []byte, mimeType string, err error)
}

// Scheduler receives the media reference after a successful persist.
type Scheduler interface {
	ScheduleDelete(mediaRef string)
}

// Orchestrator runs the stages in order, downgrading every stage failure
// into a flag plus a continuing default. It never aborts a run: the worst
// case is a pending decision with explanatory flags.
type Orchestrator struct {
	stt         stt.Provider
	originality *analysis.OriginalityClassifier
	correctness *analysis.CorrectnessGrader
	store       AnalysisStore
	retention   Scheduler
	fetcher     MediaFetcher
	log         *logrus.Logger

	persistAttempts int
	persistBackoff  time.Duration
}

func NewOrchestrator(
	sttProvider stt.Provider,
	originality *analysis.OriginalityClassifier,
	correctness *analysis.CorrectnessGrader,
	store AnalysisStore,
	retention Scheduler,
	fetcher MediaFetcher,
	log *logrus.Logger,
) *Orchestrator {
	if log == nil {
		log = logrus.New()
	}
	if fetcher == nil {
		fetcher = NewHTTPMediaFetcher()
	}
	return &Orchestrator{
		stt:             sttProvider,
		originality:     originality,
		correctness:     correctness,
		store:           store,
		retention:       retention,
		fetcher:         fetcher,
		log:             log,
		persistAttempts: defaultPersistAttempts,
		persistBackoff:  defaultPersistBackoff,
	}
}

// Run executes the full pipeline for one submission. It always returns a
// complete AnalysisResult with exactly one decision, even if every
// downstream call fails.
func (o *Orchestrator) Run(ctx context.Context, sub *models.Submission) *models.AnalysisResult {
	log := o.log.WithFields(logrus.Fields{
		"submission_id": sub.SubmissionID,
		"skill":         sub.Skill,
	})

	assessment := acoustic.Score(sub.AcousticMetrics)
	flags := append([]string{}, assessment.Flags...)

	mediaPresent := sub.MediaRef != ""
	var transcription models.TranscriptionResult
	retryableFailure := false

	if !mediaPresent {
		flags = append(flags, FlagNoMedia)
	} else {
		tr, retryable, flag := o.transcribe(ctx, sub, log)
		transcription = tr
		retryableFailure = retryable
		if flag != "" {
			flags = append(flags, flag)
		}
	}

	transcript := strings.TrimSpace(transcription.Text)
	question := sub.Question.Resolve(baseLocale(sub.LanguageHint))

	var originality *models.OriginalityVerdict
	if len(transcript) >= analysis.MinTranscriptChars {
		v, ok := o.originality.Classify(ctx, question, transcript)
		originality = &v
		if !ok {
			flags = append(flags, FlagOriginalityInconclusive)
		}
	} else if transcript != "" {
		flags = append(flags, FlagTranscriptTooShort)
	}

	var correctness *models.CorrectnessVerdict
	correctnessEvaluated := false
	switch {
	case originality != nil && !originality.IsOriginal && originality.Confidence >= 70:
		v := analysis.NotEvaluated()
		correctness = &v
		flags = append(flags, FlagAnswerCheckSkipped)
	case transcript != "" && !retryableFailure:
		v, ok := o.correctness.Grade(ctx, question, sub.ExpectedAnswer, transcript)
		correctness = &v
		correctnessEvaluated = ok
		if !ok {
			flags = append(flags, FlagAnswerCheckInconclusive)
		}
	}

	decision, reason := analysis.Decide(analysis.DecisionInput{
		MediaPresent:                  mediaPresent,
		Transcript:                    transcript,
		TranscriptionRetryableFailure: retryableFailure,
		Originality:                   originality,
		Correctness:                   correctness,
		CorrectnessEvaluated:          correctnessEvaluated,
	})
	composite := analysis.CompositeScore(assessment.Score, originality, correctness, correctnessEvaluated)
	isReading, isAiVoice, toneNatural := analysis.FuseSignals(assessment, originality)

	res := &models.AnalysisResult{
		ConfidenceScore:       composite,
		IsReading:             isReading,
		IsAiVoice:             isAiVoice,
		ToneNatural:           toneNatural,
		Flags:                 flags,
		Details:               buildDetails(decision, reason, assessment.Score, transcript, transcription.DetectedLanguage),
		AudioMetrics:          sub.AcousticMetrics,
		TranscribedText:       transcription.Text,
		TranscriptionLanguage: transcription.DetectedLanguage,
		OriginalityCheck:      originality,
		AnswerCheck:           correctness,
		AutoDecision:          decision,
		AutoDecisionReason:    reason,
	}

	if o.persist(ctx, sub.SubmissionID, res, log) && mediaPresent && o.retention != nil {
		o.retention.ScheduleDelete(sub.MediaRef)
	}

	log.WithFields(logrus.Fields{
		"decision":   res.AutoDecision,
		"confidence": res.ConfidenceScore,
		"flags":      len(res.Flags),
	}).Info("pipeline run complete")

	return res
}

func (o *Orchestrator) transcribe(ctx context.Context, sub *models.Submission, log *logrus.Entry) (models.TranscriptionResult, bool, string) {
	data, mimeType, err := o.fetcher.Fetch(ctx, sub.MediaRef)
	if err != nil {
		log.WithError(err).Warn("media fetch failed")
		// Network fetch faults are transient; a bad inline payload is not.
		return models.TranscriptionResult{}, stt.IsRetryable(err), FlagMediaFetchFailed
	}

	tr, err := o.stt.Transcribe(ctx, data, mimeType, sub.LanguageHint)
	if err != nil {
		log.WithError(err).Warn("transcription failed")
		if stt.IsRetryable(err) {
			return models.TranscriptionResult{}, true, FlagTranscriptionTransient
		}
		return models.TranscriptionResult{}, false, FlagTranscriptionFailed
	}
	return tr, false, ""
}

// persist writes the result with a bounded retry. A failure after the
// last attempt is logged but does not invalidate the computed analysis.
func (o *Orchestrator) persist(ctx context.Context, submissionID string, res *models.AnalysisResult, log *logrus.Entry) bool {
	backoff := o.persistBackoff
	var lastErr error

	for attempt := 1; attempt <= o.persistAttempts; attempt++ {
		if lastErr = o.store.ApplyAnalysis(ctx, submissionID, res); lastErr == nil {
			return true
		}
		log.WithError(lastErr).WithField("attempt", attempt).Warn("persist failed")

		if attempt == o.persistAttempts {
			break
		}
		select {
		case <-ctx.Done():
			log.WithError(ctx.Err()).Error("persist abandoned: context cancelled")
			return false
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	log.WithError(lastErr).Error("analysis could not be persisted; returning computed result anyway")
	return false
}

func buildDetails(decision models.Decision, reason string, audioScore int, transcript, language string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "auto decision %s: %s. ", decision, reason)
	fmt.Fprintf(&b, "Audio score %d.", audioScore)
	if transcript != "" {
		fmt.Fprintf(&b, " Transcript %d chars", len(transcript))
		if language != "" {
			fmt.Fprintf(&b, " (%s)", language)
		}
		b.WriteString(".")
	}
	return b.String()
}

func baseLocale(hint string) string {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return "en"
	}
	if i := strings.IndexAny(hint, "-_"); i > 0 {
		return hint[:i]
	}
	return hint
}
