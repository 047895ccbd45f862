package analysis

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/verihire/verihire/internal/models"
	"github.com/verihire/verihire/internal/providers/textgen"
)

// MinTranscriptChars is the shortest transcript worth an originality
// check; anything below is treated as silence.
const MinTranscriptChars = 10

const originalitySystem = `You are a speech-authenticity reviewer for a skill-verification platform. You judge whether a spoken answer sounds spontaneous or scripted. Respond with strict JSON only.`

// OriginalityClassifier asks the text-generation gateway whether a
// transcript reads as spontaneous speech.
type OriginalityClassifier struct {
	gw  textgen.Completer
	log *logrus.Logger
}

func NewOriginalityClassifier(gw textgen.Completer, log *logrus.Logger) *OriginalityClassifier {
	if log == nil {
		log = logrus.New()
	}
	return &OriginalityClassifier{gw: gw, log: log}
}

// Classify never fails: on any gateway or parse error it returns the
// benefit-of-the-doubt default (original, confidence 50) with ok=false.
func (c *OriginalityClassifier) Classify(ctx context.Context, question, transcript string) (models.OriginalityVerdict, bool) {
	prompt := fmt.Sprintf(`A candidate answered a skill question with a recorded voice answer. Judge whether the transcript below is spontaneous speech or a read/memorized/synthetic answer.

Return ONLY a JSON object:
{
  "is_original": true or false,
  "confidence": 0-100,
  "reasoning": "one or two sentences",
  "speech_pattern": "natural" | "scripted" | "memorized" | "ai_generated"
}

Question: %s

Transcript:
%s`, question, transcript)

	raw, err := c.gw.Complete(ctx, originalitySystem, prompt)
	if err != nil {
		c.log.WithError(err).Warn("originality check unavailable")
		return defaultOriginality(), false
	}

	var v models.OriginalityVerdict
	if err := DecodeModelJSON(raw, &v); err != nil {
		c.log.WithError(err).Warn("originality response not valid JSON")
		return defaultOriginality(), false
	}

	v.Confidence = clampScore(v.Confidence)
	switch v.SpeechPattern {
	case models.PatternNatural, models.PatternScripted, models.PatternMemorized, models.PatternAIGenerated:
	default:
		v.SpeechPattern = models.PatternNatural
	}
	return v, true
}

func defaultOriginality() models.OriginalityVerdict {
	return models.OriginalityVerdict{
		IsOriginal:    true,
		Confidence:    50,
		Reasoning:     "originality check unavailable",
		SpeechPattern: models.PatternNatural,
	}
}
