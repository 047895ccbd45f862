package acoustic

import "github.com/verihire/verihire/internal/models"

// Assessment is the heuristic judgment derived from acoustic metrics.
type Assessment struct {
	Score       int // 0-100
	Flags       []string
	IsReading   bool
	IsAiVoice   bool
	ToneNatural bool
}

// FlagNoMetrics marks submissions that arrived without capture metrics.
const FlagNoMetrics = "no audio metrics"

// Score applies the subtractive heuristic: baseline 80, deductions for
// signals typical of scripted or synthetic delivery, clamped to [0,100].
// Missing metrics get a neutral score and the benefit of the doubt.
func Score(m *models.AcousticMetrics) Assessment {
	if m == nil {
		return Assessment{
			Score:       50,
			Flags:       []string{FlagNoMetrics},
			ToneNatural: true,
		}
	}

	score := 80
	var flags []string

	switch {
	case m.VolumeVariance < 0.05:
		score -= 20
		flags = append(flags, "monotone delivery")
	case m.VolumeVariance < 0.1:
		score -= 10
	}

	switch {
	case m.SilenceRatio < 0.08:
		score -= 15
		flags = append(flags, "unnaturally fluent")
	case m.SilenceRatio > 0.5:
		score -= 10
		flags = append(flags, "excessive silence")
	}

	switch {
	case m.PeakCount < 10:
		score -= 15
		flags = append(flags, "few volume peaks")
	case m.PeakCount <= 20:
		score -= 8
	}

	switch {
	case m.SpeechRateVariance > 0 && m.SpeechRateVariance < 0.02:
		score -= 15
		flags = append(flags, "flat speech rate")
	case m.SpeechRateVariance < 0.05:
		score -= 10
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return Assessment{
		Score:       score,
		Flags:       flags,
		IsReading:   m.VolumeVariance < 0.1 && m.SpeechRateVariance < 0.08,
		IsAiVoice:   m.VolumeVariance < 0.05 && m.SilenceRatio < 0.1 && m.PeakCount < 15,
		ToneNatural: score >= 60,
	}
}
