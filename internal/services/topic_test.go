package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/classdesk/classdesk-backend/internal/authz"
	"github.com/classdesk/classdesk-backend/internal/repos"
	"github.com/classdesk/classdesk-backend/internal/repos/testutil"
	"github.com/classdesk/classdesk-backend/internal/types"
)

func TestTopicServiceReorder(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	courseRepo := repos.NewCourseRepo(tx, log)
	topicRepo := repos.NewTopicRepo(tx, log)
	svc := NewTopicService(tx, log, topicRepo)

	creator := testutil.User(t, tx, "topic-svc-prof@classdesk.test", types.RoleProfessor)
	course := &types.Course{
		Slug:        "geografia-i",
		Title:       "Geografia I",
		CreatorID:   creator.ID,
		Instructors: []*types.User{creator},
	}
	if _, err := courseRepo.Create(ctx, tx, course); err != nil {
		t.Fatalf("create course: %v", err)
	}

	resolved := &authz.Resolved{Course: course}
	titles := []string{"Unidade 1", "Unidade 2", "Unidade 3"}
	var created []*types.Topic
	for _, title := range titles {
		topic, err := svc.Create(ctx, resolved, TopicInput{Title: title})
		if err != nil {
			t.Fatalf("create topic %q: %v", title, err)
		}
		created = append(created, topic)
		resolved.Course.Topics = append(resolved.Course.Topics, topic)
	}

	// Reverse the order; positions come back contiguous from zero.
	reordered, err := svc.Reorder(ctx, resolved, []uuid.UUID{created[2].ID, created[1].ID, created[0].ID})
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	if len(reordered) != 3 {
		t.Fatalf("len=%d want 3", len(reordered))
	}
	wantOrder := []uuid.UUID{created[2].ID, created[1].ID, created[0].ID}
	for i, topic := range reordered {
		if topic.ID != wantOrder[i] {
			t.Fatalf("position %d holds %s want %s", i, topic.Title, wantOrder[i])
		}
		if topic.Position != i {
			t.Fatalf("position field=%d want %d", topic.Position, i)
		}
	}

	// Incomplete and duplicated id lists are caller mistakes.
	if _, err := svc.Reorder(ctx, resolved, []uuid.UUID{created[0].ID}); !isInvalidInput(err) {
		t.Fatalf("short list: err=%v want invalid input", err)
	}
	if _, err := svc.Reorder(ctx, resolved, []uuid.UUID{created[0].ID, created[0].ID, created[1].ID}); !isInvalidInput(err) {
		t.Fatalf("duplicate id: err=%v want invalid input", err)
	}

	// An id from another course never reorders this one.
	foreign := []uuid.UUID{created[0].ID, created[1].ID, uuid.New()}
	if _, err := svc.Reorder(ctx, resolved, foreign); authz.AsError(err).Kind != authz.KindNotFound {
		t.Fatalf("foreign id: err=%v want not_found", err)
	}
}

func TestTopicServiceOwnershipGuard(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	courseRepo := repos.NewCourseRepo(tx, log)
	topicRepo := repos.NewTopicRepo(tx, log)
	svc := NewTopicService(tx, log, topicRepo)

	creator := testutil.User(t, tx, "guard-svc-prof@classdesk.test", types.RoleProfessor)
	mine := &types.Course{Slug: "curso-a", Title: "Curso A", CreatorID: creator.ID, Instructors: []*types.User{creator}}
	other := &types.Course{Slug: "curso-b", Title: "Curso B", CreatorID: creator.ID, Instructors: []*types.User{creator}}
	for _, c := range []*types.Course{mine, other} {
		if _, err := courseRepo.Create(ctx, tx, c); err != nil {
			t.Fatalf("create course %s: %v", c.Slug, err)
		}
	}

	otherResolved := &authz.Resolved{Course: other}
	stray, err := svc.Create(ctx, otherResolved, TopicInput{Title: "Unidade alheia"})
	if err != nil {
		t.Fatalf("create stray topic: %v", err)
	}

	// A topic of course B is invisible through course A's context.
	mineResolved := &authz.Resolved{Course: mine}
	if _, err := svc.Update(ctx, mineResolved, stray.ID, TopicInput{Title: "x"}); authz.AsError(err).Kind != authz.KindNotFound {
		t.Fatalf("cross-course update: err=%v want not_found", err)
	}
	if err := svc.Delete(ctx, mineResolved, stray.ID); authz.AsError(err).Kind != authz.KindNotFound {
		t.Fatalf("cross-course delete: err=%v want not_found", err)
	}
}
