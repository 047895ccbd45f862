package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/verihire/verihire/internal/analysis"
	"github.com/verihire/verihire/internal/models"
	"github.com/verihire/verihire/internal/providers/stt"
)

type fakeSTT struct {
	res   models.TranscriptionResult
	err   error
	calls int
}

func (f *fakeSTT) Transcribe(_ context.Context, _ []byte, _, _ string) (models.TranscriptionResult, error) {
	f.calls++
	return f.res, f.err
}

func (f *fakeSTT) Close() error { return nil }

type fakeCompleter struct {
	out   string
	err   error
	calls int
}

func (f *fakeCompleter) Complete(_ context.Context, _, _ string) (string, error) {
	f.calls++
	return f.out, f.err
}

type fakeStore struct {
	failures int // fail this many calls before succeeding
	calls    int
	saved    *models.AnalysisResult
}

func (f *fakeStore) ApplyAnalysis(_ context.Context, _ string, res *models.AnalysisResult) error {
	f.calls++
	if f.calls <= f.failures {
		return errors.New("write conflict")
	}
	f.saved = res
	return nil
}

type fakeScheduler struct {
	refs []string
}

func (f *fakeScheduler) ScheduleDelete(ref string) { f.refs = append(f.refs, ref) }

type fakeFetcher struct {
	data []byte
	err  error
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string) ([]byte, string, error) {
	return f.data, "audio/webm", f.err
}

type fixture struct {
	orch        *Orchestrator
	sttp        *fakeSTT
	origGW      *fakeCompleter
	corrGW      *fakeCompleter
	store       *fakeStore
	retention   *fakeScheduler
}

func newFixture(sttp *fakeSTT, origGW, corrGW *fakeCompleter, store *fakeStore) *fixture {
	retention := &fakeScheduler{}
	o := NewOrchestrator(
		sttp,
		analysis.NewOriginalityClassifier(origGW, nil),
		analysis.NewCorrectnessGrader(corrGW, nil),
		store,
		retention,
		&fakeFetcher{data: []byte("audio")},
		nil,
	)
	o.persistBackoff = time.Millisecond
	return &fixture{orch: o, sttp: sttp, origGW: origGW, corrGW: corrGW, store: store, retention: retention}
}

func submission() *models.Submission {
	return &models.Submission{
		SubmissionID:   "sub-1",
		UserID:         "user-1",
		Skill:          "golang",
		Question:       models.LocalizedText{"en": "What is a goroutine?"},
		ExpectedAnswer: "A lightweight thread managed by the Go runtime.",
		MediaRef:       "gs://bucket/answers/sub-1.webm",
		AcousticMetrics: &models.AcousticMetrics{
			VolumeVariance: 0.15, SilenceRatio: 0.2, PeakCount: 25, SpeechRateVariance: 0.06,
		},
	}
}

func hasFlag(flags []string, want string) bool {
	for _, f := range flags {
		if f == want {
			return true
		}
	}
	return false
}

func TestRunApprovesVerifiedAnswer(t *testing.T) {
	f := newFixture(
		&fakeSTT{res: models.TranscriptionResult{Text: "a goroutine is a lightweight thread", DetectedLanguage: "en-US"}},
		&fakeCompleter{out: `{"is_original": true, "confidence": 80, "speech_pattern": "natural"}`},
		&fakeCompleter{out: `{"is_correct": true, "score": 70, "summary": "covers the core idea"}`},
		&fakeStore{},
	)

	res := f.orch.Run(context.Background(), submission())

	if res.AutoDecision != models.DecisionApproved {
		t.Fatalf("decision = %s (%s)", res.AutoDecision, res.AutoDecisionReason)
	}
	// 80*.25 + 80*.35 + 70*.40
	if res.ConfidenceScore != 76 {
		t.Errorf("confidence = %d, want 76", res.ConfidenceScore)
	}
	if f.store.calls != 1 {
		t.Errorf("persist calls = %d, want exactly 1", f.store.calls)
	}
	if len(f.retention.refs) != 1 || f.retention.refs[0] != "gs://bucket/answers/sub-1.webm" {
		t.Errorf("retention refs = %v", f.retention.refs)
	}
	if res.TranscriptionLanguage != "en-US" {
		t.Errorf("language = %q", res.TranscriptionLanguage)
	}
	if !res.ToneNatural {
		t.Error("natural verdict should confirm tone")
	}
}

func TestRunTransientTranscriptionFailureIsPending(t *testing.T) {
	f := newFixture(
		&fakeSTT{err: &stt.TranscriptionError{Retryable: true, Err: errors.New("unavailable")}},
		&fakeCompleter{},
		&fakeCompleter{},
		&fakeStore{},
	)

	res := f.orch.Run(context.Background(), submission())

	if res.AutoDecision != models.DecisionPending {
		t.Fatalf("decision = %s, want pending, not a rejection for an infra fault", res.AutoDecision)
	}
	if !hasFlag(res.Flags, FlagTranscriptionTransient) {
		t.Errorf("flags = %v, want %q", res.Flags, FlagTranscriptionTransient)
	}
	if f.origGW.calls != 0 || f.corrGW.calls != 0 {
		t.Error("no model calls should be spent on a failed transcription")
	}
	if f.store.calls != 1 {
		t.Errorf("persist calls = %d, want 1", f.store.calls)
	}
}

func TestRunTerminalTranscriptionFailureRejectsAsSilence(t *testing.T) {
	f := newFixture(
		&fakeSTT{err: &stt.TranscriptionError{Retryable: false, Err: errors.New("corrupt media")}},
		&fakeCompleter{},
		&fakeCompleter{},
		&fakeStore{},
	)

	res := f.orch.Run(context.Background(), submission())

	if res.AutoDecision != models.DecisionRejected {
		t.Fatalf("decision = %s, want rejected", res.AutoDecision)
	}
	if !hasFlag(res.Flags, FlagTranscriptionFailed) {
		t.Errorf("flags = %v", res.Flags)
	}
}

func TestRunSilentRecordingRejected(t *testing.T) {
	f := newFixture(
		&fakeSTT{res: models.TranscriptionResult{Text: ""}},
		&fakeCompleter{},
		&fakeCompleter{},
		&fakeStore{},
	)

	res := f.orch.Run(context.Background(), submission())

	if res.AutoDecision != models.DecisionRejected {
		t.Fatalf("decision = %s, want rejected", res.AutoDecision)
	}
	if f.origGW.calls != 0 || f.corrGW.calls != 0 {
		t.Error("empty transcript should skip both model checks")
	}
}

func TestRunOriginalityRejectSkipsGrading(t *testing.T) {
	f := newFixture(
		&fakeSTT{res: models.TranscriptionResult{Text: "a goroutine is a lightweight thread"}},
		&fakeCompleter{out: `{"is_original": false, "confidence": 90, "speech_pattern": "ai_generated"}`},
		&fakeCompleter{out: `{"is_correct": true, "score": 95}`},
		&fakeStore{},
	)

	res := f.orch.Run(context.Background(), submission())

	if res.AutoDecision != models.DecisionRejected {
		t.Fatalf("decision = %s (%s)", res.AutoDecision, res.AutoDecisionReason)
	}
	if f.corrGW.calls != 0 {
		t.Error("grading must be skipped for a disqualified answer")
	}
	if !hasFlag(res.Flags, FlagAnswerCheckSkipped) {
		t.Errorf("flags = %v", res.Flags)
	}
	if res.AnswerCheck == nil || res.AnswerCheck.IsCorrect {
		t.Errorf("answer check = %+v, want synthetic not-evaluated verdict", res.AnswerCheck)
	}
	if !res.IsAiVoice {
		t.Error("ai_generated pattern should set the ai-voice signal")
	}
}

func TestRunShortTranscriptSkipsOriginalityOnly(t *testing.T) {
	f := newFixture(
		&fakeSTT{res: models.TranscriptionResult{Text: "yes ok"}},
		&fakeCompleter{out: `{"is_original": true, "confidence": 80}`},
		&fakeCompleter{out: `{"is_correct": true, "score": 55}`},
		&fakeStore{},
	)

	res := f.orch.Run(context.Background(), submission())

	if f.origGW.calls != 0 {
		t.Error("short transcript should skip the originality call")
	}
	if f.corrGW.calls != 1 {
		t.Errorf("grading calls = %d, want 1", f.corrGW.calls)
	}
	if !hasFlag(res.Flags, FlagTranscriptTooShort) {
		t.Errorf("flags = %v", res.Flags)
	}
	if res.AutoDecision != models.DecisionApproved {
		t.Errorf("decision = %s (%s)", res.AutoDecision, res.AutoDecisionReason)
	}
}

func TestRunNoMedia(t *testing.T) {
	sttp := &fakeSTT{}
	f := newFixture(sttp, &fakeCompleter{}, &fakeCompleter{}, &fakeStore{})

	sub := submission()
	sub.MediaRef = ""
	res := f.orch.Run(context.Background(), sub)

	if res.AutoDecision != models.DecisionPending {
		t.Fatalf("decision = %s, want pending", res.AutoDecision)
	}
	if !hasFlag(res.Flags, FlagNoMedia) {
		t.Errorf("flags = %v", res.Flags)
	}
	if sttp.calls != 0 {
		t.Error("no media means no transcription call")
	}
	if len(f.retention.refs) != 0 {
		t.Error("nothing to delete without media")
	}
}

func TestRunInconclusiveGradingNeverRejects(t *testing.T) {
	f := newFixture(
		&fakeSTT{res: models.TranscriptionResult{Text: "a goroutine is a lightweight thread"}},
		&fakeCompleter{out: `{"is_original": true, "confidence": 80, "speech_pattern": "natural"}`},
		&fakeCompleter{err: errors.New("all backends down")},
		&fakeStore{},
	)

	res := f.orch.Run(context.Background(), submission())

	if res.AutoDecision != models.DecisionPending {
		t.Fatalf("decision = %s, want pending when grading is unavailable", res.AutoDecision)
	}
	if !hasFlag(res.Flags, FlagAnswerCheckInconclusive) {
		t.Errorf("flags = %v", res.Flags)
	}
}

func TestRunPersistRetriesThenSucceeds(t *testing.T) {
	f := newFixture(
		&fakeSTT{res: models.TranscriptionResult{Text: "a goroutine is a lightweight thread"}},
		&fakeCompleter{out: `{"is_original": true, "confidence": 80, "speech_pattern": "natural"}`},
		&fakeCompleter{out: `{"is_correct": true, "score": 70}`},
		&fakeStore{failures: 1},
	)

	res := f.orch.Run(context.Background(), submission())

	if f.store.calls != 2 {
		t.Errorf("persist calls = %d, want 2", f.store.calls)
	}
	if f.store.saved != res {
		t.Error("persisted result should be the returned result")
	}
	if len(f.retention.refs) != 1 {
		t.Error("retention should run after a successful persist")
	}
}

func TestRunPersistExhaustedStillReturnsResult(t *testing.T) {
	f := newFixture(
		&fakeSTT{res: models.TranscriptionResult{Text: "a goroutine is a lightweight thread"}},
		&fakeCompleter{out: `{"is_original": true, "confidence": 80, "speech_pattern": "natural"}`},
		&fakeCompleter{out: `{"is_correct": true, "score": 70}`},
		&fakeStore{failures: 10},
	)

	res := f.orch.Run(context.Background(), submission())

	if res == nil || res.AutoDecision != models.DecisionApproved {
		t.Fatal("computed result must survive a persist failure")
	}
	if f.store.calls != 3 {
		t.Errorf("persist calls = %d, want bounded at 3", f.store.calls)
	}
	if len(f.retention.refs) != 0 {
		t.Error("media must be kept when the result was not persisted")
	}
}
