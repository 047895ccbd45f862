package services

import (
	"context"
	"testing"

	"github.com/verihire/verihire/internal/models"
	"github.com/verihire/verihire/internal/utils"
)

func TestSubmitValidation(t *testing.T) {
	svc := NewVerificationService(nil, nil, nil, nil, nil)

	tests := []struct {
		name   string
		userID string
		in     SubmitInput
	}{
		{"missing user", "", SubmitInput{Skill: "golang", Question: models.LocalizedText{"en": "q"}}},
		{"missing skill", "u1", SubmitInput{Question: models.LocalizedText{"en": "q"}}},
		{"missing question", "u1", SubmitInput{Skill: "golang"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), tt.userID, tt.in)
			if !utils.IsCode(err, utils.CodeInvalidArgument) {
				t.Errorf("err = %v, want invalid argument", err)
			}
		})
	}
}

func TestGetValidation(t *testing.T) {
	svc := NewVerificationService(nil, nil, nil, nil, nil)
	if _, err := svc.Get(context.Background(), ""); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Errorf("err = %v, want invalid argument", err)
	}
	if _, err := svc.ListByUser(context.Background(), "", 10); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Errorf("err = %v, want invalid argument", err)
	}
}
