package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/classdesk/classdesk-backend/internal/authz"
	"github.com/classdesk/classdesk-backend/internal/pkg/logger"
	"github.com/classdesk/classdesk-backend/internal/repos"
	"github.com/classdesk/classdesk-backend/internal/types"
)

type AssessmentInput struct {
	Label  string    `json:"label"`
	Kind   string    `json:"kind"`
	Score  float64   `json:"score"`
	Weight float64   `json:"weight"`
	Date   time.Time `json:"date"`
}

type GradeService interface {
	Create(ctx context.Context, resolved *authz.Resolved, studentID uuid.UUID) (*types.GradeRecord, error)
	ReplaceAssessments(ctx context.Context, resolved *authz.Resolved, inputs []AssessmentInput) (*types.GradeRecord, error)
	Delete(ctx context.Context, resolved *authz.Resolved) error
	Get(ctx context.Context, resolved *authz.Resolved) (*types.GradeRecord, error)
	ListByCourse(ctx context.Context, resolved *authz.Resolved) ([]*types.GradeRecord, error)
	GetOwn(ctx context.Context, resolved *authz.Resolved, studentID uuid.UUID) (*types.GradeRecord, error)
}

type gradeService struct {
	db        *gorm.DB
	log       *logger.Logger
	gradeRepo repos.GradeRecordRepo
}

func NewGradeService(db *gorm.DB, log *logger.Logger, gradeRepo repos.GradeRecordRepo) GradeService {
	return &gradeService{
		db:        db,
		log:       log.With("service", "GradeService"),
		gradeRepo: gradeRepo,
	}
}

// Create makes the lazily-created per-student record. A second create
// for the same (course, student) pair is a conflict, never an
// overwrite; the composite unique index is the authority under
// concurrency.
func (gs *gradeService) Create(ctx context.Context, resolved *authz.Resolved, studentID uuid.UUID) (*types.GradeRecord, error) {
	if !resolved.IsStudentOf(studentID) {
		return nil, authz.Conflict("student is not enrolled in this course")
	}
	record := &types.GradeRecord{
		ID:        uuid.New(),
		CourseID:  resolved.Course.ID,
		StudentID: studentID,
	}
	created, err := gs.gradeRepo.Create(ctx, nil, record)
	if err != nil {
		if errors.Is(err, repos.ErrDuplicateGradeRecord) {
			return nil, authz.Conflict("grade record already exists for this student")
		}
		return nil, fmt.Errorf("creating grade record: %w", err)
	}
	return created, nil
}

// ReplaceAssessments is the only mutation path for assessment entries.
func (gs *gradeService) ReplaceAssessments(ctx context.Context, resolved *authz.Resolved, inputs []AssessmentInput) (*types.GradeRecord, error) {
	record := resolved.GradeRecord
	assessments := make([]*types.Assessment, 0, len(inputs))
	for i, in := range inputs {
		kind := types.AssessmentKind(in.Kind)
		if !kind.Valid() {
			return nil, invalidf("assessment %d: kind must be exam or activity", i)
		}
		if in.Score < 0 || in.Score > 10 {
			return nil, invalidf("assessment %d: score must be between 0 and 10", i)
		}
		if in.Weight <= 0 {
			return nil, invalidf("assessment %d: weight must be positive", i)
		}
		if in.Label == "" {
			return nil, invalidf("assessment %d: label is required", i)
		}
		assessments = append(assessments, &types.Assessment{
			ID:     uuid.New(),
			Label:  in.Label,
			Kind:   kind,
			Score:  in.Score,
			Weight: in.Weight,
			Date:   in.Date,
		})
	}
	err := gs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return gs.gradeRepo.ReplaceAssessments(ctx, tx, record.ID, assessments)
	})
	if err != nil {
		return nil, fmt.Errorf("replacing assessments: %w", err)
	}
	record.Assessments = assessments
	return record, nil
}

func (gs *gradeService) Delete(ctx context.Context, resolved *authz.Resolved) error {
	return gs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return gs.gradeRepo.Delete(ctx, tx, resolved.GradeRecord.ID)
	})
}

func (gs *gradeService) Get(ctx context.Context, resolved *authz.Resolved) (*types.GradeRecord, error) {
	return resolved.GradeRecord, nil
}

func (gs *gradeService) ListByCourse(ctx context.Context, resolved *authz.Resolved) ([]*types.GradeRecord, error) {
	return gs.gradeRepo.ListByCourse(ctx, nil, resolved.Course.ID)
}

// GetOwn serves a student reading their own grades in a course.
func (gs *gradeService) GetOwn(ctx context.Context, resolved *authz.Resolved, studentID uuid.UUID) (*types.GradeRecord, error) {
	record, err := gs.gradeRepo.GetByCourseAndStudent(ctx, nil, resolved.Course.ID, studentID)
	if err != nil {
		return nil, fmt.Errorf("loading grade record: %w", err)
	}
	if record == nil {
		return nil, authz.NotFound("no grade record for this student")
	}
	return record, nil
}
