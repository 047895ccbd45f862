package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/verihire/verihire/internal/analysis"
	"github.com/verihire/verihire/internal/cache"
	"github.com/verihire/verihire/internal/models"
	"github.com/verihire/verihire/internal/providers/textgen"
	"github.com/verihire/verihire/internal/utils"
)

// Cached questions rotate quickly so repeat takers don't see the same
// question for long.
const questionCacheTTL = 5 * time.Minute

const questionSystem = `You write short spoken-interview questions that test whether someone genuinely has a claimed skill. Respond with strict JSON only.`

type GeneratedQuestion struct {
	Skill          string               `json:"skill"`
	Question       models.LocalizedText `json:"question"`
	ExpectedAnswer string               `json:"expected_answer"`
}

type QuestionService interface {
	Generate(ctx context.Context, skill, locale string) (*GeneratedQuestion, error)
}

type questionService struct {
	gw    textgen.Completer
	cache cache.Cache
	log   *logrus.Logger
}

func NewQuestionService(gw textgen.Completer, c cache.Cache, log *logrus.Logger) QuestionService {
	if log == nil {
		log = logrus.New()
	}
	return &questionService{gw: gw, cache: c, log: log}
}

func (s *questionService) Generate(ctx context.Context, skill, locale string) (*GeneratedQuestion, error) {
	const op = "QuestionService.Generate"

	if skill == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "skill is required", nil)
	}
	if locale == "" {
		locale = "en"
	}

	key := "question:" + skill + ":" + locale
	if s.cache != nil {
		var cached GeneratedQuestion
		if hit, err := s.cache.GetJSON(ctx, key, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	prompt := fmt.Sprintf(`Generate one spoken-interview question for the skill %q, answerable in under 90 seconds of speech.

Return ONLY a JSON object:
{
  "question": {"en": "...", %q: "..."},
  "expected_answer": "the key points a correct answer must cover"
}`, skill, locale)

	raw, err := s.gw.Complete(ctx, questionSystem, prompt)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "question generation failed", err)
	}

	var parsed struct {
		Question       models.LocalizedText `json:"question"`
		ExpectedAnswer string               `json:"expected_answer"`
	}
	if err := analysis.DecodeModelJSON(raw, &parsed); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "question generation returned invalid JSON", err)
	}
	if len(parsed.Question) == 0 || parsed.ExpectedAnswer == "" {
		return nil, utils.E(utils.CodeInternal, op, "question generation returned an incomplete question", nil)
	}

	q := &GeneratedQuestion{Skill: skill, Question: parsed.Question, ExpectedAnswer: parsed.ExpectedAnswer}
	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, q, questionCacheTTL); err != nil {
			s.log.WithError(err).Debug("question cache write failed")
		}
	}
	return q, nil
}
