package repos

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/classdesk/classdesk-backend/internal/repos/testutil"
	"github.com/classdesk/classdesk-backend/internal/types"
)

func TestCourseRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	// The repo is built over the test transaction so lookups observe
	// uncommitted rows; rollback cleans everything up.
	repo := NewCourseRepo(tx, testutil.Logger(t))

	creator := testutil.User(t, tx, "creator@classdesk.test", types.RoleProfessor)
	student := testutil.User(t, tx, "student@classdesk.test", types.RoleStudent)
	outsider := testutil.User(t, tx, "outsider@classdesk.test", types.RoleStudent)

	course := &types.Course{
		Slug:        "fisica-i",
		Title:       "Física I",
		Description: "Mecânica clássica",
		CreatorID:   creator.ID,
		Instructors: []*types.User{creator},
		Students:    []*types.User{student},
	}
	if _, err := repo.Create(ctx, tx, course); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetBySlug(ctx, "fisica-i")
	if err != nil || got == nil {
		t.Fatalf("GetBySlug: got=%v err=%v", got, err)
	}
	if len(got.Instructors) != 1 || got.Instructors[0].ID != creator.ID {
		t.Fatalf("instructors not loaded: %+v", got.Instructors)
	}
	if len(got.Students) != 1 || got.Students[0].ID != student.ID {
		t.Fatalf("students not loaded: %+v", got.Students)
	}

	if got, err := repo.GetBySlug(ctx, "no-such-course"); err != nil || got != nil {
		t.Fatalf("GetBySlug miss: got=%v err=%v, want nil, nil", got, err)
	}
	if got, err := repo.GetByID(ctx, uuid.New()); err != nil || got != nil {
		t.Fatalf("GetByID miss: got=%v err=%v, want nil, nil", got, err)
	}

	taken, err := repo.SlugTaken(ctx, tx, "fisica-i", uuid.Nil)
	if err != nil || !taken {
		t.Fatalf("SlugTaken: taken=%v err=%v", taken, err)
	}
	// A course never collides with its own slug on update.
	taken, err = repo.SlugTaken(ctx, tx, "fisica-i", course.ID)
	if err != nil || taken {
		t.Fatalf("SlugTaken ignoring self: taken=%v err=%v", taken, err)
	}

	for _, u := range []*types.User{creator, student} {
		list, err := repo.ListForUser(ctx, tx, u.ID)
		if err != nil || len(list) != 1 {
			t.Fatalf("ListForUser(%s): err=%v len=%d", u.Email, err, len(list))
		}
	}
	if list, err := repo.ListForUser(ctx, tx, outsider.ID); err != nil || len(list) != 0 {
		t.Fatalf("ListForUser(outsider): err=%v len=%d", err, len(list))
	}
}

func TestCourseRepoReplaceRosters(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewCourseRepo(tx, testutil.Logger(t))

	creator := testutil.User(t, tx, "roster-creator@classdesk.test", types.RoleProfessor)
	coTeacher := testutil.User(t, tx, "roster-co@classdesk.test", types.RoleProfessor)
	s1 := testutil.User(t, tx, "roster-s1@classdesk.test", types.RoleStudent)
	s2 := testutil.User(t, tx, "roster-s2@classdesk.test", types.RoleStudent)

	course := &types.Course{
		Slug:        "quimica-ii",
		Title:       "Química II",
		CreatorID:   creator.ID,
		Instructors: []*types.User{creator},
	}
	if _, err := repo.Create(ctx, tx, course); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// The replacement set is the whole roster, not a delta.
	if err := repo.ReplaceInstructors(ctx, tx, course, []*types.User{creator, coTeacher}); err != nil {
		t.Fatalf("ReplaceInstructors add: %v", err)
	}
	if err := repo.ReplaceStudents(ctx, tx, course, []*types.User{s1, s2}); err != nil {
		t.Fatalf("ReplaceStudents: %v", err)
	}

	got, err := repo.GetByID(ctx, course.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: got=%v err=%v", got, err)
	}
	if len(got.Instructors) != 2 || len(got.Students) != 2 {
		t.Fatalf("roster sizes: instructors=%d students=%d", len(got.Instructors), len(got.Students))
	}

	if err := repo.ReplaceStudents(ctx, tx, course, []*types.User{s2}); err != nil {
		t.Fatalf("ReplaceStudents remove: %v", err)
	}
	got, err = repo.GetByID(ctx, course.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID after remove: got=%v err=%v", got, err)
	}
	if len(got.Students) != 1 || got.Students[0].ID != s2.ID {
		t.Fatalf("students after remove: %+v", got.Students)
	}
}

func TestCourseRepoDeleteCascades(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()

	courseRepo := NewCourseRepo(tx, testutil.Logger(t))
	topicRepo := NewTopicRepo(tx, testutil.Logger(t))
	materialRepo := NewMaterialRepo(tx, testutil.Logger(t))
	gradeRepo := NewGradeRecordRepo(tx, testutil.Logger(t))
	commentRepo := NewCommentRepo(tx, testutil.Logger(t))

	creator := testutil.User(t, tx, "cascade-creator@classdesk.test", types.RoleProfessor)
	student := testutil.User(t, tx, "cascade-student@classdesk.test", types.RoleStudent)

	course := &types.Course{
		Slug:        "historia-i",
		Title:       "História I",
		CreatorID:   creator.ID,
		Instructors: []*types.User{creator},
		Students:    []*types.User{student},
	}
	if _, err := courseRepo.Create(ctx, tx, course); err != nil {
		t.Fatalf("create course: %v", err)
	}

	topic := &types.Topic{CourseID: course.ID, Title: "Unidade 1"}
	if _, err := topicRepo.Create(ctx, tx, topic); err != nil {
		t.Fatalf("create topic: %v", err)
	}
	material := &types.Material{TopicID: topic.ID, Title: "Apostila"}
	if _, err := materialRepo.Create(ctx, tx, material); err != nil {
		t.Fatalf("create material: %v", err)
	}
	record := &types.GradeRecord{CourseID: course.ID, StudentID: student.ID}
	if _, err := gradeRepo.Create(ctx, tx, record); err != nil {
		t.Fatalf("create grade record: %v", err)
	}
	if err := gradeRepo.ReplaceAssessments(ctx, tx, record.ID, []*types.Assessment{
		{Label: "P1", Kind: types.AssessmentExam, Score: 8, Weight: 1},
	}); err != nil {
		t.Fatalf("replace assessments: %v", err)
	}
	comment := &types.Comment{CourseID: course.ID, TopicID: topic.ID, MaterialID: material.ID, AuthorID: student.ID, Body: "dúvida"}
	if _, err := commentRepo.Create(ctx, tx, comment); err != nil {
		t.Fatalf("create comment: %v", err)
	}
	if _, err := commentRepo.CreateReply(ctx, tx, &types.Reply{CommentID: comment.ID, AuthorID: creator.ID, Body: "resposta"}); err != nil {
		t.Fatalf("create reply: %v", err)
	}

	if err := courseRepo.Delete(ctx, tx, course.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if got, err := courseRepo.GetByID(ctx, course.ID); err != nil || got != nil {
		t.Fatalf("course survived delete: got=%v err=%v", got, err)
	}
	for table, where := range map[string][]interface{}{
		"topic":        {"course_id = ?", course.ID},
		"material":     {"topic_id = ?", topic.ID},
		"grade_record": {"course_id = ?", course.ID},
		"assessment":   {"grade_record_id = ?", record.ID},
		"comment":      {"course_id = ?", course.ID},
		"reply":        {"comment_id = ?", comment.ID},
	} {
		var count int64
		if err := tx.Table(table).Where(where[0].(string), where[1]).Count(&count).Error; err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if count != 0 {
			t.Fatalf("%s rows survived course delete: %d", table, count)
		}
	}
}
