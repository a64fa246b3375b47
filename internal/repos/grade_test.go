package repos

import (
	"context"
	"errors"
	"testing"

	"github.com/classdesk/classdesk-backend/internal/repos/testutil"
	"github.com/classdesk/classdesk-backend/internal/types"
)

func TestGradeRecordRepoUniquePair(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	courseRepo := NewCourseRepo(tx, testutil.Logger(t))
	gradeRepo := NewGradeRecordRepo(tx, testutil.Logger(t))

	creator := testutil.User(t, tx, "grade-prof@classdesk.test", types.RoleProfessor)
	student := testutil.User(t, tx, "grade-student@classdesk.test", types.RoleStudent)

	course := &types.Course{
		Slug:        "calculo-i",
		Title:       "Cálculo I",
		CreatorID:   creator.ID,
		Instructors: []*types.User{creator},
		Students:    []*types.User{student},
	}
	if _, err := courseRepo.Create(ctx, tx, course); err != nil {
		t.Fatalf("create course: %v", err)
	}

	rec := &types.GradeRecord{CourseID: course.ID, StudentID: student.ID}
	if _, err := gradeRepo.Create(ctx, tx, rec); err != nil {
		t.Fatalf("create record: %v", err)
	}

	// Second record for the same (course, student) pair is a conflict,
	// not an overwrite. The savepoint keeps the outer test transaction
	// usable after the constraint violation.
	if err := tx.SavePoint("dup").Error; err != nil {
		t.Fatalf("savepoint: %v", err)
	}
	_, err := gradeRepo.Create(ctx, tx, &types.GradeRecord{CourseID: course.ID, StudentID: student.ID})
	if !errors.Is(err, ErrDuplicateGradeRecord) {
		t.Fatalf("duplicate create: err=%v want ErrDuplicateGradeRecord", err)
	}
	if err := tx.RollbackTo("dup").Error; err != nil {
		t.Fatalf("rollback to savepoint: %v", err)
	}

	got, err := gradeRepo.GetByCourseAndStudent(ctx, tx, course.ID, student.ID)
	if err != nil || got == nil || got.ID != rec.ID {
		t.Fatalf("GetByCourseAndStudent: got=%v err=%v", got, err)
	}
}

func TestGradeRecordRepoReplaceAssessments(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	courseRepo := NewCourseRepo(tx, testutil.Logger(t))
	gradeRepo := NewGradeRecordRepo(tx, testutil.Logger(t))

	creator := testutil.User(t, tx, "assess-prof@classdesk.test", types.RoleProfessor)
	student := testutil.User(t, tx, "assess-student@classdesk.test", types.RoleStudent)

	course := &types.Course{
		Slug:        "biologia-i",
		Title:       "Biologia I",
		CreatorID:   creator.ID,
		Instructors: []*types.User{creator},
		Students:    []*types.User{student},
	}
	if _, err := courseRepo.Create(ctx, tx, course); err != nil {
		t.Fatalf("create course: %v", err)
	}
	rec := &types.GradeRecord{CourseID: course.ID, StudentID: student.ID}
	if _, err := gradeRepo.Create(ctx, tx, rec); err != nil {
		t.Fatalf("create record: %v", err)
	}

	first := []*types.Assessment{
		{Label: "P1", Kind: types.AssessmentExam, Score: 7.5, Weight: 2},
		{Label: "T1", Kind: types.AssessmentActivity, Score: 9, Weight: 1},
	}
	if err := gradeRepo.ReplaceAssessments(ctx, tx, rec.ID, first); err != nil {
		t.Fatalf("ReplaceAssessments: %v", err)
	}

	got, err := gradeRepo.GetByID(ctx, rec.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if len(got.Assessments) != 2 {
		t.Fatalf("assessments len=%d want 2", len(got.Assessments))
	}
	for i, a := range got.Assessments {
		if a.Position != i {
			t.Fatalf("assessment %q position=%d want %d", a.Label, a.Position, i)
		}
	}

	// Replacement swaps the whole set; nothing from the old one remains.
	second := []*types.Assessment{
		{Label: "P2", Kind: types.AssessmentExam, Score: 6, Weight: 3},
	}
	if err := gradeRepo.ReplaceAssessments(ctx, tx, rec.ID, second); err != nil {
		t.Fatalf("ReplaceAssessments swap: %v", err)
	}
	got, err = gradeRepo.GetByID(ctx, rec.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID after swap: got=%v err=%v", got, err)
	}
	if len(got.Assessments) != 1 || got.Assessments[0].Label != "P2" {
		t.Fatalf("assessments after swap: %+v", got.Assessments)
	}

	if err := gradeRepo.Delete(ctx, tx, rec.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, err := gradeRepo.GetByID(ctx, rec.ID); err != nil || got != nil {
		t.Fatalf("record survived delete: got=%v err=%v", got, err)
	}
}
