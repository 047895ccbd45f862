package stt

import (
	"context"
	"errors"
	"fmt"
	"testing"

	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestIsRetryable(t *testing.T) {
	retryable := &TranscriptionError{Retryable: true, Err: errors.New("unavailable")}
	terminal := &TranscriptionError{Retryable: false, Err: errors.New("bad audio")}

	if !IsRetryable(retryable) {
		t.Error("retryable error not recognized")
	}
	if IsRetryable(terminal) {
		t.Error("terminal error reported as retryable")
	}
	if !IsRetryable(fmt.Errorf("wrapped: %w", retryable)) {
		t.Error("wrapped retryable error not recognized")
	}
	if IsRetryable(errors.New("plain")) {
		t.Error("plain error reported as retryable")
	}
	if IsRetryable(nil) {
		t.Error("nil error reported as retryable")
	}
}

func TestTransportFault(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"grpc unavailable", status.Error(codes.Unavailable, "down"), true},
		{"grpc resource exhausted", status.Error(codes.ResourceExhausted, "quota"), true},
		{"grpc internal", status.Error(codes.Internal, "boom"), true},
		{"grpc invalid argument", status.Error(codes.InvalidArgument, "bad encoding"), false},
		{"grpc not found", status.Error(codes.NotFound, "no model"), false},
		{"plain error", errors.New("weird"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := transportFault(tt.err); got != tt.want {
				t.Errorf("transportFault = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEncodingFor(t *testing.T) {
	tests := []struct {
		mime string
		want speechpb.RecognitionConfig_AudioEncoding
	}{
		{"audio/webm;codecs=opus", speechpb.RecognitionConfig_WEBM_OPUS},
		{"audio/ogg", speechpb.RecognitionConfig_OGG_OPUS},
		{"audio/flac", speechpb.RecognitionConfig_FLAC},
		{"audio/wav", speechpb.RecognitionConfig_LINEAR16},
		{"", speechpb.RecognitionConfig_LINEAR16},
	}
	for _, tt := range tests {
		if got := encodingFor(tt.mime); got != tt.want {
			t.Errorf("encodingFor(%q) = %v, want %v", tt.mime, got, tt.want)
		}
	}
}

func TestNormalizeLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "en-US"},
		{"en", "en-US"},
		{"hi", "hi-IN"},
		{"te", "te-IN"},
		{"fr-FR", "fr-FR"},
		{" en ", "en-US"},
	}
	for _, tt := range tests {
		if got := normalizeLanguage(tt.in); got != tt.want {
			t.Errorf("normalizeLanguage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
