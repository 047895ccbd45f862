package stt

import (
	"context"
	"errors"
	"fmt"

	"github.com/verihire/verihire/internal/models"
)

type Provider interface {
	// Transcribe converts recorded audio to text. languageHint may be empty.
	Transcribe(ctx context.Context, audio []byte, mimeType, languageHint string) (models.TranscriptionResult, error)
	Close() error
}

// TranscriptionError classifies a speech-to-text failure. Retryable means
// a transport/infrastructure fault: the submitter must not be penalized
// and the run should land on a pending decision.
type TranscriptionError struct {
	Retryable bool
	Err       error
}

func (e *TranscriptionError) Error() string {
	kind := "terminal"
	if e.Retryable {
		kind = "retryable"
	}
	return fmt.Sprintf("transcription failed (%s): %v", kind, e.Err)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is a retryable transcription failure.
func IsRetryable(err error) bool {
	var te *TranscriptionError
	if errors.As(err, &te) {
		return te.Retryable
	}
	return false
}
