package analysis

import (
	"fmt"
	"math"

	"github.com/verihire/verihire/internal/acoustic"
	"github.com/verihire/verihire/internal/models"
)

// Composite confidence weights.
const (
	weightAudio       = 0.25
	weightOriginality = 0.35
	weightCorrectness = 0.40
)

// Originality rejection threshold: a confident not-original verdict
// disqualifies the answer outright.
const originalityRejectConfidence = 70

// DecisionInput is everything the decision table looks at. The engine is
// a pure function of this struct.
type DecisionInput struct {
	MediaPresent                  bool
	Transcript                    string
	TranscriptionRetryableFailure bool

	Originality *models.OriginalityVerdict // nil when never evaluated

	Correctness          *models.CorrectnessVerdict // nil when never evaluated
	CorrectnessEvaluated bool                       // false for skipped/defaulted verdicts
}

// Decide walks the priority-ordered decision table; the first matching
// case wins. Transient infrastructure failures always land on pending,
// never rejected.
func Decide(in DecisionInput) (models.Decision, string) {
	switch {
	case in.TranscriptionRetryableFailure:
		return models.DecisionPending, "transcription unavailable due to a transient fault; submission will be re-checked"

	case in.MediaPresent && in.Transcript == "":
		return models.DecisionRejected, "no intelligible speech detected in the recording (silence)"

	case in.Originality != nil && !in.Originality.IsOriginal && in.Originality.Confidence >= originalityRejectConfidence:
		return models.DecisionRejected, fmt.Sprintf("answer flagged as %s speech (confidence %d)", patternLabel(in.Originality.SpeechPattern), in.Originality.Confidence)

	case in.CorrectnessEvaluated && !in.Correctness.IsCorrect:
		return models.DecisionRejected, "answer content does not match the expected answer"

	case in.CorrectnessEvaluated && in.Correctness.IsCorrect && in.Correctness.Score >= 50:
		return models.DecisionApproved, fmt.Sprintf("answer verified (score %d)", in.Correctness.Score)

	case in.CorrectnessEvaluated && in.Correctness.IsCorrect && in.Correctness.Score >= 40:
		return models.DecisionPending, fmt.Sprintf("borderline answer (score %d); deferred to human review", in.Correctness.Score)

	default:
		return models.DecisionPending, "evaluation inconclusive; deferred to human review"
	}
}

// CompositeScore fuses the three signals into one 0-100 confidence value.
// It is computed on every run, independent of which decision case fired.
func CompositeScore(audioScore int, originality *models.OriginalityVerdict, correctness *models.CorrectnessVerdict, correctnessEvaluated bool) int {
	origComponent := 50.0
	if originality != nil {
		if originality.IsOriginal {
			origComponent = 80
		} else {
			origComponent = 25
		}
	}

	corrComponent := 50.0
	if correctnessEvaluated && correctness != nil {
		corrComponent = float64(correctness.Score)
	}

	v := float64(audioScore)*weightAudio + origComponent*weightOriginality + corrComponent*weightCorrectness
	return clampScore(int(math.Round(v)))
}

// FuseSignals ORs the acoustic booleans with the originality speech
// pattern: a scripted or synthetic label overrides the cheap heuristics,
// a natural label confirms the tone.
func FuseSignals(a acoustic.Assessment, originality *models.OriginalityVerdict) (isReading, isAiVoice, toneNatural bool) {
	isReading = a.IsReading
	isAiVoice = a.IsAiVoice
	toneNatural = a.ToneNatural

	if originality == nil {
		return
	}
	switch originality.SpeechPattern {
	case models.PatternScripted, models.PatternMemorized:
		isReading = true
	case models.PatternAIGenerated:
		isAiVoice = true
	case models.PatternNatural:
		toneNatural = true
	}
	return
}

func patternLabel(p string) string {
	switch p {
	case models.PatternScripted:
		return "scripted"
	case models.PatternMemorized:
		return "memorized"
	case models.PatternAIGenerated:
		return "AI-generated"
	default:
		return "non-original"
	}
}
