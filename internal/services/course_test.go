package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/classdesk/classdesk-backend/internal/authz"
	"github.com/classdesk/classdesk-backend/internal/repos"
	"github.com/classdesk/classdesk-backend/internal/repos/testutil"
	"github.com/classdesk/classdesk-backend/internal/types"
)

func isInvalidInput(err error) bool {
	var ie *InvalidInputError
	return errors.As(err, &ie)
}

func TestCourseServiceCreateSlugCollision(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	courseRepo := repos.NewCourseRepo(tx, log)
	userRepo := repos.NewUserRepo(tx, log)
	svc := NewCourseService(tx, log, courseRepo, userRepo)

	prof := testutil.User(t, tx, "svc-prof@classdesk.test", types.RoleProfessor)
	principal := authz.Principal{ID: prof.ID, Role: types.RoleProfessor}

	first, err := svc.Create(ctx, principal, CreateCourseInput{Title: "Física I"})
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	if first.Slug != "fisica-i" {
		t.Fatalf("slug=%q want fisica-i", first.Slug)
	}
	if first.CreatorID != prof.ID {
		t.Fatalf("creator=%s want %s", first.CreatorID, prof.ID)
	}
	if len(first.Instructors) != 1 || first.Instructors[0].ID != prof.ID {
		t.Fatalf("creator not seeded as instructor: %+v", first.Instructors)
	}

	// The same title gets a suffixed slug, never a collision.
	second, err := svc.Create(ctx, principal, CreateCourseInput{Title: "Física I"})
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if second.Slug != "fisica-i-1" {
		t.Fatalf("slug=%q want fisica-i-1", second.Slug)
	}

	if _, err := svc.Create(ctx, principal, CreateCourseInput{}); !isInvalidInput(err) {
		t.Fatalf("empty title: err=%v want invalid input", err)
	}
}

func TestCourseServiceRosterRules(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	courseRepo := repos.NewCourseRepo(tx, log)
	userRepo := repos.NewUserRepo(tx, log)
	svc := NewCourseService(tx, log, courseRepo, userRepo)

	creator := testutil.User(t, tx, "roster-svc-creator@classdesk.test", types.RoleProfessor)
	coTeacher := testutil.User(t, tx, "roster-svc-co@classdesk.test", types.RoleProfessor)
	student := testutil.User(t, tx, "roster-svc-student@classdesk.test", types.RoleStudent)

	principal := authz.Principal{ID: creator.ID, Role: types.RoleProfessor}
	course, err := svc.Create(ctx, principal, CreateCourseInput{Title: "Química II"})
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	resolved := &authz.Resolved{Course: course}

	// Students cannot join the instructor set.
	err = svc.AddInstructor(ctx, resolved, student.ID)
	if authz.AsError(err).Kind != authz.KindConflict {
		t.Fatalf("student as instructor: err=%v want conflict", err)
	}

	if err := svc.AddInstructor(ctx, resolved, coTeacher.ID); err != nil {
		t.Fatalf("add co-instructor: %v", err)
	}
	if err := svc.AddStudent(ctx, resolved, student.ID); err != nil {
		t.Fatalf("add student: %v", err)
	}

	// Professors cannot be enrolled as students.
	err = svc.AddStudent(ctx, resolved, coTeacher.ID)
	if authz.AsError(err).Kind != authz.KindConflict {
		t.Fatalf("professor as student: err=%v want conflict", err)
	}

	// The creator is not removable, even by a direct service call.
	err = svc.RemoveInstructor(ctx, resolved, creator.ID)
	ae := authz.AsError(err)
	if ae.Kind != authz.KindForbidden || ae.Reason != authz.ReasonCannotRemoveCreator {
		t.Fatalf("remove creator: err=%v want forbidden/cannot_remove_creator", err)
	}

	reloaded, err := courseRepo.GetByID(ctx, course.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload course: got=%v err=%v", reloaded, err)
	}
	resolved = &authz.Resolved{Course: reloaded}

	if err := svc.RemoveInstructor(ctx, resolved, coTeacher.ID); err != nil {
		t.Fatalf("remove co-instructor: %v", err)
	}
	// Removing someone who is not on the roster reads as not found.
	if err := svc.RemoveStudent(ctx, resolved, uuid.New()); authz.AsError(err).Kind != authz.KindNotFound {
		t.Fatalf("remove non-member: err=%v want not_found", err)
	}
}

func TestCourseServiceReplaceStudentRoster(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	courseRepo := repos.NewCourseRepo(tx, log)
	userRepo := repos.NewUserRepo(tx, log)
	svc := NewCourseService(tx, log, courseRepo, userRepo)

	creator := testutil.User(t, tx, "bulk-svc-creator@classdesk.test", types.RoleProfessor)
	alice := testutil.User(t, tx, "bulk-svc-alice@classdesk.test", types.RoleStudent)
	bruno := testutil.User(t, tx, "bulk-svc-bruno@classdesk.test", types.RoleStudent)
	carla := testutil.User(t, tx, "bulk-svc-carla@classdesk.test", types.RoleStudent)

	principal := authz.Principal{ID: creator.ID, Role: types.RoleProfessor}
	course, err := svc.Create(ctx, principal, CreateCourseInput{Title: "História II"})
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	resolved := &authz.Resolved{Course: course}

	if err := svc.AddStudent(ctx, resolved, alice.ID); err != nil {
		t.Fatalf("seed enrollment: %v", err)
	}

	// The replace drops alice and enrolls bruno and carla in one shot.
	students, err := svc.ReplaceStudentRoster(ctx, resolved, []uuid.UUID{bruno.ID, carla.ID})
	if err != nil {
		t.Fatalf("ReplaceStudentRoster: %v", err)
	}
	if len(students) != 2 {
		t.Fatalf("roster size=%d want 2", len(students))
	}
	reloaded, err := courseRepo.GetByID(ctx, course.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload course: got=%v err=%v", reloaded, err)
	}
	got := map[uuid.UUID]bool{}
	for _, s := range reloaded.Students {
		got[s.ID] = true
	}
	if len(got) != 2 || !got[bruno.ID] || !got[carla.ID] || got[alice.ID] {
		t.Fatalf("persisted roster wrong: %v", got)
	}

	// An unknown id rejects the whole set.
	if _, err := svc.ReplaceStudentRoster(ctx, resolved, []uuid.UUID{bruno.ID, uuid.New()}); authz.AsError(err).Kind != authz.KindNotFound {
		t.Fatalf("unknown user: err=%v want not_found", err)
	}
	// So does a professor in the list.
	if _, err := svc.ReplaceStudentRoster(ctx, resolved, []uuid.UUID{bruno.ID, creator.ID}); authz.AsError(err).Kind != authz.KindConflict {
		t.Fatalf("professor in roster: err=%v want conflict", err)
	}
	// And a duplicated id.
	if _, err := svc.ReplaceStudentRoster(ctx, resolved, []uuid.UUID{bruno.ID, bruno.ID}); !isInvalidInput(err) {
		t.Fatalf("duplicate id: err=%v want invalid input", err)
	}
}

func TestCourseServiceUpdateRegeneratesSlug(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	courseRepo := repos.NewCourseRepo(tx, log)
	userRepo := repos.NewUserRepo(tx, log)
	svc := NewCourseService(tx, log, courseRepo, userRepo)

	prof := testutil.User(t, tx, "update-svc-prof@classdesk.test", types.RoleProfessor)
	principal := authz.Principal{ID: prof.ID, Role: types.RoleProfessor}

	course, err := svc.Create(ctx, principal, CreateCourseInput{Title: "História I"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(ctx, &authz.Resolved{Course: course}, UpdateCourseInput{Title: "História do Brasil"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Slug != "historia-do-brasil" {
		t.Fatalf("slug=%q want historia-do-brasil", updated.Slug)
	}

	// An unchanged title keeps the slug stable.
	again, err := svc.Update(ctx, &authz.Resolved{Course: updated}, UpdateCourseInput{Title: "História do Brasil", Description: "ementa nova"})
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if again.Slug != "historia-do-brasil" {
		t.Fatalf("slug changed without a title change: %q", again.Slug)
	}
}
