package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/classdesk/classdesk-backend/internal/pkg/logger"
	"github.com/classdesk/classdesk-backend/internal/types"
)

type CourseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, course *types.Course) (*types.Course, error)
	Update(ctx context.Context, tx *gorm.DB, course *types.Course) error
	GetByID(ctx context.Context, id uuid.UUID) (*types.Course, error)
	GetBySlug(ctx context.Context, slug string) (*types.Course, error)
	SlugTaken(ctx context.Context, tx *gorm.DB, slug string, ignoreID uuid.UUID) (bool, error)
	ListForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Course, error)
	ReplaceInstructors(ctx context.Context, tx *gorm.DB, course *types.Course, users []*types.User) error
	ReplaceStudents(ctx context.Context, tx *gorm.DB, course *types.Course, users []*types.User) error
	Delete(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) error
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return &courseRepo{db: db, log: baseLog.With("repo", "CourseRepo")}
}

func (cr *courseRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return cr.db
}

// withRelations loads the full decision context in one fetch: both
// membership sets and the ordered topic/material tree.
func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Instructors").
		Preload("Students").
		Preload("Topics", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, created_at ASC") }).
		Preload("Topics.Materials", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, created_at ASC") })
}

func (cr *courseRepo) Create(ctx context.Context, tx *gorm.DB, course *types.Course) (*types.Course, error) {
	if err := cr.handle(tx).WithContext(ctx).Create(course).Error; err != nil {
		return nil, err
	}
	return course, nil
}

func (cr *courseRepo) Update(ctx context.Context, tx *gorm.DB, course *types.Course) error {
	return cr.handle(tx).WithContext(ctx).
		Model(&types.Course{ID: course.ID}).
		Updates(map[string]interface{}{
			"slug":        course.Slug,
			"title":       course.Title,
			"description": course.Description,
			"metadata":    course.Metadata,
		}).Error
}

func (cr *courseRepo) GetByID(ctx context.Context, id uuid.UUID) (*types.Course, error) {
	var course types.Course
	err := withRelations(cr.db.WithContext(ctx)).First(&course, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (cr *courseRepo) GetBySlug(ctx context.Context, slug string) (*types.Course, error) {
	var course types.Course
	err := withRelations(cr.db.WithContext(ctx)).First(&course, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (cr *courseRepo) SlugTaken(ctx context.Context, tx *gorm.DB, slug string, ignoreID uuid.UUID) (bool, error) {
	q := cr.handle(tx).WithContext(ctx).
		Model(&types.Course{}).
		Where("slug = ?", slug)
	if ignoreID != uuid.Nil {
		q = q.Where("id <> ?", ignoreID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (cr *courseRepo) ListForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Course, error) {
	var courses []*types.Course
	err := cr.handle(tx).WithContext(ctx).
		Distinct("course.*").
		Joins("LEFT JOIN course_instructors ci ON ci.course_id = course.id").
		Joins("LEFT JOIN course_students cs ON cs.course_id = course.id").
		Where("ci.user_id = ? OR cs.user_id = ?", userID, userID).
		Order("course.title ASC").
		Find(&courses).Error
	if err != nil {
		return nil, err
	}
	return courses, nil
}

// ReplaceInstructors swaps the whole membership set in one association
// replace so no half-applied roster is ever visible.
func (cr *courseRepo) ReplaceInstructors(ctx context.Context, tx *gorm.DB, course *types.Course, users []*types.User) error {
	return cr.handle(tx).WithContext(ctx).
		Model(course).
		Association("Instructors").
		Replace(users)
}

func (cr *courseRepo) ReplaceStudents(ctx context.Context, tx *gorm.DB, course *types.Course, users []*types.User) error {
	return cr.handle(tx).WithContext(ctx).
		Model(course).
		Association("Students").
		Replace(users)
}

// Delete cascades through everything referencing the course. The caller
// is expected to run it inside a transaction.
func (cr *courseRepo) Delete(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) error {
	h := cr.handle(tx).WithContext(ctx)

	if err := h.Exec(`DELETE FROM reply WHERE comment_id IN (SELECT id FROM comment WHERE course_id = ?)`, courseID).Error; err != nil {
		return err
	}
	if err := h.Where("course_id = ?", courseID).Delete(&types.Comment{}).Error; err != nil {
		return err
	}
	if err := h.Exec(`DELETE FROM assessment WHERE grade_record_id IN (SELECT id FROM grade_record WHERE course_id = ?)`, courseID).Error; err != nil {
		return err
	}
	if err := h.Where("course_id = ?", courseID).Delete(&types.GradeRecord{}).Error; err != nil {
		return err
	}
	if err := h.Exec(`DELETE FROM material WHERE topic_id IN (SELECT id FROM topic WHERE course_id = ?)`, courseID).Error; err != nil {
		return err
	}
	if err := h.Where("course_id = ?", courseID).Delete(&types.Topic{}).Error; err != nil {
		return err
	}
	if err := h.Exec(`DELETE FROM course_instructors WHERE course_id = ?`, courseID).Error; err != nil {
		return err
	}
	if err := h.Exec(`DELETE FROM course_students WHERE course_id = ?`, courseID).Error; err != nil {
		return err
	}
	return h.Delete(&types.Course{}, "id = ?", courseID).Error
}
