// Package acoustic extracts a compact feature vector from a live audio
// stream and scores it as a cheap anti-cheat signal.
package acoustic

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/verihire/verihire/internal/models"
)

const (
	// DefaultInterval is the capture-time sampling interval.
	DefaultInterval = 100 * time.Millisecond

	silenceThreshold = 0.02
	peakJump         = 0.05
	peakFloor        = 0.05
	rateWindowFrames = 10
)

// SampleSource yields one RMS amplitude per frame. ok=false means the
// capture has ended. The pipeline never touches device APIs directly.
type SampleSource interface {
	ReadRMS() (rms float64, ok bool)
}

// Sampler accumulates acoustic features frame by frame. It owns only its
// own state; Tick can be driven by a real ticker or directly by tests.
type Sampler struct {
	mu      sync.Mutex
	stopped bool

	frames int
	silent int
	peaks  int
	prev   float64

	// Welford accumulators for volume mean/variance.
	mean float64
	m2   float64

	// Non-overlapping windows for speech-rate variance.
	windowSum   float64
	windowCount int
	windowMeans []float64

	snapshot models.AcousticMetrics
}

func NewSampler() *Sampler {
	return &Sampler{}
}

// Tick processes one frame's RMS amplitude.
func (s *Sampler) Tick(rms float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}

	s.frames++

	delta := rms - s.mean
	s.mean += delta / float64(s.frames)
	s.m2 += delta * (rms - s.mean)

	if rms < silenceThreshold {
		s.silent++
	}
	if s.frames > 1 && rms-s.prev > peakJump && rms > peakFloor {
		s.peaks++
	}
	s.prev = rms

	s.windowSum += rms
	s.windowCount++
	if s.windowCount == rateWindowFrames {
		s.windowMeans = append(s.windowMeans, s.windowSum/rateWindowFrames)
		s.windowSum = 0
		s.windowCount = 0
	}
}

// Stop finalizes the accumulators and returns the metrics snapshot.
// Idempotent: later calls return the same snapshot.
func (s *Sampler) Stop() models.AcousticMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return s.snapshot
	}
	s.stopped = true

	m := models.AcousticMetrics{}
	if s.frames > 0 {
		m.AvgVolume = s.mean
		m.VolumeVariance = s.m2 / float64(s.frames)
		m.SilenceRatio = clamp01(float64(s.silent) / float64(s.frames))
	}
	m.PeakCount = s.peaks
	m.SpeechRateVariance = variance(s.windowMeans)

	s.snapshot = m
	return m
}

// Run drives the sampler at a fixed interval until the source is drained
// or ctx is cancelled. It does not call Stop; the owner of the capture
// stops the sampler exactly once.
func (s *Sampler) Run(ctx context.Context, src SampleSource, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			rms, ok := src.ReadRMS()
			if !ok {
				return
			}
			s.Tick(rms)
		}
	}
}

// RMS computes root-mean-square amplitude of one frame of samples.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, v := range samples {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func variance(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var mean float64
	for _, v := range vals {
		mean += v
	}
	mean /= float64(len(vals))

	var m2 float64
	for _, v := range vals {
		m2 += (v - mean) * (v - mean)
	}
	return m2 / float64(len(vals))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
