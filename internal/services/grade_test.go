package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/classdesk/classdesk-backend/internal/authz"
	"github.com/classdesk/classdesk-backend/internal/types"
)

func TestGradeServiceCreateRequiresEnrollment(t *testing.T) {
	svc := &gradeService{}

	course := &types.Course{ID: uuid.New()}
	resolved := &authz.Resolved{Course: course}

	// The enrollment check runs before any store access, so an
	// unenrolled student never reaches the insert.
	_, err := svc.Create(context.Background(), resolved, uuid.New())
	if authz.AsError(err).Kind != authz.KindConflict {
		t.Fatalf("err=%v want conflict", err)
	}
}

func TestGradeServiceAssessmentValidation(t *testing.T) {
	svc := &gradeService{}
	resolved := &authz.Resolved{
		Course:      &types.Course{ID: uuid.New()},
		GradeRecord: &types.GradeRecord{ID: uuid.New()},
	}

	valid := AssessmentInput{Label: "P1", Kind: "exam", Score: 8, Weight: 2, Date: time.Now()}

	tests := []struct {
		name  string
		input AssessmentInput
	}{
		{"unknown kind", AssessmentInput{Label: "P1", Kind: "quiz", Score: 8, Weight: 2}},
		{"score below range", AssessmentInput{Label: "P1", Kind: "exam", Score: -1, Weight: 2}},
		{"score above range", AssessmentInput{Label: "P1", Kind: "exam", Score: 10.5, Weight: 2}},
		{"zero weight", AssessmentInput{Label: "P1", Kind: "exam", Score: 8, Weight: 0}},
		{"negative weight", AssessmentInput{Label: "P1", Kind: "activity", Score: 8, Weight: -1}},
		{"missing label", AssessmentInput{Kind: "exam", Score: 8, Weight: 2}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ReplaceAssessments(context.Background(), resolved, []AssessmentInput{valid, tc.input})
			if !isInvalidInput(err) {
				t.Fatalf("err=%v want invalid input", err)
			}
		})
	}
}
