package analysis

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/verihire/verihire/internal/models"
	"github.com/verihire/verihire/internal/providers/textgen"
)

const correctnessSystem = `You are a technical examiner for a skill-verification platform. You grade a spoken answer against an expected-answer rubric. Respond with strict JSON only.`

// CorrectnessGrader scores transcript content against the expected answer.
type CorrectnessGrader struct {
	gw  textgen.Completer
	log *logrus.Logger
}

func NewCorrectnessGrader(gw textgen.Completer, log *logrus.Logger) *CorrectnessGrader {
	if log == nil {
		log = logrus.New()
	}
	return &CorrectnessGrader{gw: gw, log: log}
}

// Grade returns the verdict and whether the answer was genuinely
// evaluated. evaluated=false means the gateway failed or returned
// unparseable output; the verdict is then the documented default and the
// decision engine must not treat it as a confirmed wrong answer.
func (g *CorrectnessGrader) Grade(ctx context.Context, question, expectedAnswer, transcript string) (models.CorrectnessVerdict, bool) {
	prompt := fmt.Sprintf(`A candidate answered a skill question with a recorded voice answer. Grade the transcript against the expected answer.

Return ONLY a JSON object:
{
  "is_correct": true or false,
  "score": 0-100,
  "matched_points": ["points the answer covered"],
  "missed_points": ["points the answer missed"],
  "summary": "one sentence"
}

Score reflects coverage and accuracy, not speaking style. is_correct means the substance of the answer is right.

Question: %s

Expected answer:
%s

Transcript:
%s`, question, expectedAnswer, transcript)

	raw, err := g.gw.Complete(ctx, correctnessSystem, prompt)
	if err != nil {
		g.log.WithError(err).Warn("answer check unavailable")
		return defaultCorrectness(), false
	}

	var v models.CorrectnessVerdict
	if err := DecodeModelJSON(raw, &v); err != nil {
		g.log.WithError(err).Warn("answer check response not valid JSON")
		return defaultCorrectness(), false
	}

	v.Score = clampScore(v.Score)
	return v, true
}

func defaultCorrectness() models.CorrectnessVerdict {
	return models.CorrectnessVerdict{
		IsCorrect: false,
		Score:     0,
		Summary:   "answer check unavailable",
	}
}

// NotEvaluated fills the correctness slot when the answer was disqualified
// before grading, so no inference call is spent on it.
func NotEvaluated() models.CorrectnessVerdict {
	return models.CorrectnessVerdict{
		IsCorrect: false,
		Score:     0,
		Summary:   "not evaluated: answer disqualified before grading",
	}
}
