package stt

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/verihire/verihire/internal/models"
)

type GoogleSpeech struct {
	c *speech.Client

	SampleRateHz int32
	CallTimeout  time.Duration
}

func NewGoogleSpeech(ctx context.Context) (*GoogleSpeech, error) {
	c, err := speech.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &GoogleSpeech{
		c:            c,
		SampleRateHz: 16000,
		CallTimeout:  30 * time.Second,
	}, nil
}

func (g *GoogleSpeech) Close() error { return g.c.Close() }

func (g *GoogleSpeech) Transcribe(ctx context.Context, audio []byte, mimeType, languageHint string) (models.TranscriptionResult, error) {
	language := normalizeLanguage(languageHint)

	ctx, cancel := context.WithTimeout(ctx, g.CallTimeout)
	defer cancel()

	resp, err := g.c.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   encodingFor(mimeType),
			SampleRateHertz:            g.SampleRateHz,
			LanguageCode:               language,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return models.TranscriptionResult{}, &TranscriptionError{Retryable: transportFault(err), Err: err}
	}

	var bestText string
	var bestConf float64
	detected := language
	for _, r := range resp.Results {
		if r.LanguageCode != "" {
			detected = r.LanguageCode
		}
		for _, alt := range r.Alternatives {
			if alt.Transcript != "" && float64(alt.Confidence) >= bestConf {
				bestText = alt.Transcript
				bestConf = float64(alt.Confidence)
			}
		}
	}

	return models.TranscriptionResult{Text: bestText, DetectedLanguage: detected}, nil
}

// transportFault separates network/infrastructure failures (retry later,
// don't penalize the user) from content faults like corrupt media.
func transportFault(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted, codes.Internal:
			return true
		}
	}
	return false
}

func encodingFor(mimeType string) speechpb.RecognitionConfig_AudioEncoding {
	switch {
	case strings.Contains(mimeType, "webm"):
		return speechpb.RecognitionConfig_WEBM_OPUS
	case strings.Contains(mimeType, "ogg"):
		return speechpb.RecognitionConfig_OGG_OPUS
	case strings.Contains(mimeType, "flac"):
		return speechpb.RecognitionConfig_FLAC
	default:
		return speechpb.RecognitionConfig_LINEAR16
	}
}

func normalizeLanguage(v string) string {
	v = strings.TrimSpace(v)
	switch v {
	case "", "en", "en-US":
		return "en-US"
	case "hi", "hi-IN":
		return "hi-IN"
	case "te", "te-IN":
		return "te-IN"
	default:
		return v
	}
}
