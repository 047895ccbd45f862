package models

// Decision is the pipeline's terminal verdict. Closed set: every run ends
// in exactly one of these.
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
	DecisionPending  Decision = "pending"
)

// Speech pattern labels emitted by the originality check.
const (
	PatternNatural     = "natural"
	PatternScripted    = "scripted"
	PatternMemorized   = "memorized"
	PatternAIGenerated = "ai_generated"
)

// TranscriptionResult is the speech-to-text output. Text may be empty
// when the recording is silent.
type TranscriptionResult struct {
	Text             string `bson:"text" json:"text"`
	DetectedLanguage string `bson:"detected_language,omitempty" json:"detected_language,omitempty"`
}

// OriginalityVerdict judges whether a transcript is spontaneous speech
// vs. read, memorized, or synthetic.
type OriginalityVerdict struct {
	IsOriginal    bool   `bson:"is_original" json:"is_original"`
	Confidence    int    `bson:"confidence" json:"confidence"` // 0-100
	Reasoning     string `bson:"reasoning,omitempty" json:"reasoning,omitempty"`
	SpeechPattern string `bson:"speech_pattern" json:"speech_pattern"` // natural|scripted|memorized|ai_generated
}

// CorrectnessVerdict scores transcript content against the expected-answer
// rubric.
type CorrectnessVerdict struct {
	IsCorrect     bool     `bson:"is_correct" json:"is_correct"`
	Score         int      `bson:"score" json:"score"` // 0-100
	MatchedPoints []string `bson:"matched_points,omitempty" json:"matched_points,omitempty"`
	MissedPoints  []string `bson:"missed_points,omitempty" json:"missed_points,omitempty"`
	Summary       string   `bson:"summary,omitempty" json:"summary,omitempty"`
}

// AnalysisResult is the aggregate pipeline output, produced exactly once
// per run.
type AnalysisResult struct {
	ConfidenceScore int  `bson:"confidence_score" json:"confidence_score"` // 0-100
	IsReading       bool `bson:"is_reading" json:"is_reading"`
	IsAiVoice       bool `bson:"is_ai_voice" json:"is_ai_voice"`
	ToneNatural     bool `bson:"tone_natural" json:"tone_natural"`

	Flags   []string `bson:"flags" json:"flags"`
	Details string   `bson:"details" json:"details"`

	AudioMetrics          *AcousticMetrics `bson:"audio_metrics,omitempty" json:"audio_metrics,omitempty"`
	TranscribedText       string           `bson:"transcribed_text,omitempty" json:"transcribed_text,omitempty"`
	TranscriptionLanguage string           `bson:"transcription_language,omitempty" json:"transcription_language,omitempty"`

	OriginalityCheck *OriginalityVerdict `bson:"originality_check,omitempty" json:"originality_check,omitempty"`
	AnswerCheck      *CorrectnessVerdict `bson:"answer_check,omitempty" json:"answer_check,omitempty"`

	AutoDecision       Decision `bson:"auto_decision" json:"auto_decision"`
	AutoDecisionReason string   `bson:"auto_decision_reason" json:"auto_decision_reason"`
}
