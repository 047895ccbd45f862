package acoustic

import (
	"math"
	"testing"
)

func TestSamplerConstantSignal(t *testing.T) {
	s := NewSampler()
	for i := 0; i < 20; i++ {
		s.Tick(0.1)
	}
	m := s.Stop()

	if math.Abs(m.AvgVolume-0.1) > 1e-9 {
		t.Errorf("avg volume = %v, want 0.1", m.AvgVolume)
	}
	if m.VolumeVariance > 1e-9 {
		t.Errorf("variance = %v, want ~0", m.VolumeVariance)
	}
	if m.SilenceRatio != 0 {
		t.Errorf("silence ratio = %v, want 0", m.SilenceRatio)
	}
	if m.PeakCount != 0 {
		t.Errorf("peaks = %d, want 0", m.PeakCount)
	}
	// 20 frames = two full rate windows, both with mean 0.1
	if m.SpeechRateVariance > 1e-9 {
		t.Errorf("speech rate variance = %v, want ~0", m.SpeechRateVariance)
	}
}

func TestSamplerSilenceAndPeaks(t *testing.T) {
	s := NewSampler()
	s.Tick(0.01) // silent
	s.Tick(0.2)  // jump of 0.19 above floor: peak
	s.Tick(0.21) // jump too small
	s.Tick(0.01) // silent
	m := s.Stop()

	if got := m.SilenceRatio; math.Abs(got-0.5) > 1e-9 {
		t.Errorf("silence ratio = %v, want 0.5", got)
	}
	if m.PeakCount != 1 {
		t.Errorf("peaks = %d, want 1", m.PeakCount)
	}
}

func TestSamplerSpeechRateVariance(t *testing.T) {
	s := NewSampler()
	// one quiet window, one loud window
	for i := 0; i < 10; i++ {
		s.Tick(0.1)
	}
	for i := 0; i < 10; i++ {
		s.Tick(0.3)
	}
	m := s.Stop()

	// window means 0.1 and 0.3; population variance = 0.01
	if math.Abs(m.SpeechRateVariance-0.01) > 1e-9 {
		t.Errorf("speech rate variance = %v, want 0.01", m.SpeechRateVariance)
	}
}

func TestSamplerStopIdempotent(t *testing.T) {
	s := NewSampler()
	s.Tick(0.1)
	first := s.Stop()

	s.Tick(0.9) // ignored after stop
	second := s.Stop()

	if first != second {
		t.Errorf("second Stop = %+v, want %+v", second, first)
	}
}

func TestSamplerEmpty(t *testing.T) {
	m := NewSampler().Stop()
	if m.AvgVolume != 0 || m.SilenceRatio != 0 || m.PeakCount != 0 {
		t.Errorf("empty sampler metrics = %+v, want zero values", m)
	}
}

func TestRMS(t *testing.T) {
	if got := RMS(nil); got != 0 {
		t.Errorf("RMS(nil) = %v, want 0", got)
	}
	got := RMS([]float64{0.3, 0.4})
	want := math.Sqrt((0.09 + 0.16) / 2)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("RMS = %v, want %v", got, want)
	}
}
