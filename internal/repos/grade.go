package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/classdesk/classdesk-backend/internal/pkg/logger"
	"github.com/classdesk/classdesk-backend/internal/types"
)

// ErrDuplicateGradeRecord surfaces the (course, student) uniqueness
// violation so the service can report a conflict instead of a silent
// overwrite.
var ErrDuplicateGradeRecord = errors.New("grade record already exists for this course and student")

type GradeRecordRepo interface {
	Create(ctx context.Context, tx *gorm.DB, record *types.GradeRecord) (*types.GradeRecord, error)
	GetByID(ctx context.Context, id uuid.UUID) (*types.GradeRecord, error)
	GetByCourseAndStudent(ctx context.Context, tx *gorm.DB, courseID, studentID uuid.UUID) (*types.GradeRecord, error)
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.GradeRecord, error)
	ReplaceAssessments(ctx context.Context, tx *gorm.DB, recordID uuid.UUID, assessments []*types.Assessment) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type gradeRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGradeRecordRepo(db *gorm.DB, baseLog *logger.Logger) GradeRecordRepo {
	return &gradeRecordRepo{db: db, log: baseLog.With("repo", "GradeRecordRepo")}
}

func (gr *gradeRecordRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return gr.db
}

func (gr *gradeRecordRepo) Create(ctx context.Context, tx *gorm.DB, record *types.GradeRecord) (*types.GradeRecord, error) {
	if err := gr.handle(tx).WithContext(ctx).Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateGradeRecord
		}
		return nil, err
	}
	return record, nil
}

func (gr *gradeRecordRepo) GetByID(ctx context.Context, id uuid.UUID) (*types.GradeRecord, error) {
	var record types.GradeRecord
	err := gr.db.WithContext(ctx).
		Preload("Assessments", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (gr *gradeRecordRepo) GetByCourseAndStudent(ctx context.Context, tx *gorm.DB, courseID, studentID uuid.UUID) (*types.GradeRecord, error) {
	var record types.GradeRecord
	err := gr.handle(tx).WithContext(ctx).
		Preload("Assessments", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&record, "course_id = ? AND student_id = ?", courseID, studentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (gr *gradeRecordRepo) ListByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.GradeRecord, error) {
	var records []*types.GradeRecord
	if err := gr.handle(tx).WithContext(ctx).
		Preload("Assessments", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("course_id = ?", courseID).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ReplaceAssessments is the only mutation path for a record's entries:
// delete-all plus insert-all, positions rewritten 0..n-1. Run inside a
// transaction by the caller.
func (gr *gradeRecordRepo) ReplaceAssessments(ctx context.Context, tx *gorm.DB, recordID uuid.UUID, assessments []*types.Assessment) error {
	h := gr.handle(tx).WithContext(ctx)
	if err := h.Where("grade_record_id = ?", recordID).Delete(&types.Assessment{}).Error; err != nil {
		return err
	}
	for i, a := range assessments {
		a.GradeRecordID = recordID
		a.Position = i
	}
	if len(assessments) == 0 {
		return nil
	}
	return h.Create(&assessments).Error
}

func (gr *gradeRecordRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	h := gr.handle(tx).WithContext(ctx)
	if err := h.Where("grade_record_id = ?", id).Delete(&types.Assessment{}).Error; err != nil {
		return err
	}
	return h.Delete(&types.GradeRecord{}, "id = ?", id).Error
}
