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

func TestMaterialServiceDeleteRemovesRow(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	courseRepo := repos.NewCourseRepo(tx, log)
	topicRepo := repos.NewTopicRepo(tx, log)
	materialRepo := repos.NewMaterialRepo(tx, log)
	svc := NewMaterialService(tx, log, materialRepo)

	creator := testutil.User(t, tx, "material-del-prof@classdesk.test", types.RoleProfessor)
	course := &types.Course{Slug: "fisica-ii", Title: "Física II", CreatorID: creator.ID, Instructors: []*types.User{creator}}
	if _, err := courseRepo.Create(ctx, tx, course); err != nil {
		t.Fatalf("create course: %v", err)
	}
	topic, err := topicRepo.Create(ctx, tx, &types.Topic{ID: uuid.New(), CourseID: course.ID, Title: "Unidade 1"})
	if err != nil {
		t.Fatalf("create topic: %v", err)
	}
	course.Topics = append(course.Topics, topic)
	resolved := &authz.Resolved{Course: course}

	material, err := svc.Create(ctx, resolved, topic.ID, MaterialInput{Title: "Apostila"}, &Attachment{
		Name: "apostila.pdf",
		MIME: "application/pdf",
		Data: []byte("%PDF-1.4 conteudo"),
	})
	if err != nil {
		t.Fatalf("create material: %v", err)
	}
	topic.Materials = append(topic.Materials, material)

	got, err := svc.Download(ctx, resolved, material.ID)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if got.AttachmentName != "apostila.pdf" || !got.HasAttachment() {
		t.Fatalf("attachment not stored: %+v", got)
	}

	if err := svc.Delete(ctx, resolved, material.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	row, err := materialRepo.GetByID(ctx, tx, material.ID)
	if err != nil {
		t.Fatalf("reload after delete: %v", err)
	}
	if row != nil {
		t.Fatalf("material row survived delete: %+v", row)
	}
	rest, err := materialRepo.ListByTopic(ctx, tx, topic.ID)
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(rest) != 0 {
		t.Fatalf("topic still lists %d materials after delete", len(rest))
	}
}

func TestMaterialServiceOwnershipGuard(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	courseRepo := repos.NewCourseRepo(tx, log)
	topicRepo := repos.NewTopicRepo(tx, log)
	materialRepo := repos.NewMaterialRepo(tx, log)
	svc := NewMaterialService(tx, log, materialRepo)

	creator := testutil.User(t, tx, "material-guard-prof@classdesk.test", types.RoleProfessor)
	mine := &types.Course{Slug: "curso-meu", Title: "Curso Meu", CreatorID: creator.ID, Instructors: []*types.User{creator}}
	other := &types.Course{Slug: "curso-alheio", Title: "Curso Alheio", CreatorID: creator.ID, Instructors: []*types.User{creator}}
	for _, c := range []*types.Course{mine, other} {
		if _, err := courseRepo.Create(ctx, tx, c); err != nil {
			t.Fatalf("create course %s: %v", c.Slug, err)
		}
	}
	mineTopic, err := topicRepo.Create(ctx, tx, &types.Topic{ID: uuid.New(), CourseID: mine.ID, Title: "Unidade 1"})
	if err != nil {
		t.Fatalf("create topic: %v", err)
	}
	mine.Topics = append(mine.Topics, mineTopic)
	otherTopic, err := topicRepo.Create(ctx, tx, &types.Topic{ID: uuid.New(), CourseID: other.ID, Title: "Unidade alheia"})
	if err != nil {
		t.Fatalf("create other topic: %v", err)
	}
	other.Topics = append(other.Topics, otherTopic)

	otherResolved := &authz.Resolved{Course: other}
	stray, err := svc.Create(ctx, otherResolved, otherTopic.ID, MaterialInput{Title: "Apostila alheia"}, nil)
	if err != nil {
		t.Fatalf("create stray material: %v", err)
	}
	otherTopic.Materials = append(otherTopic.Materials, stray)

	// A material of the other course is invisible through this one's
	// context, even though the row exists.
	mineResolved := &authz.Resolved{Course: mine}
	if _, err := svc.Get(ctx, mineResolved, stray.ID); authz.AsError(err).Kind != authz.KindNotFound {
		t.Fatalf("cross-course get: err=%v want not_found", err)
	}
	if _, err := svc.Update(ctx, mineResolved, stray.ID, MaterialInput{Title: "x"}, nil); authz.AsError(err).Kind != authz.KindNotFound {
		t.Fatalf("cross-course update: err=%v want not_found", err)
	}
	if err := svc.Delete(ctx, mineResolved, stray.ID); authz.AsError(err).Kind != authz.KindNotFound {
		t.Fatalf("cross-course delete: err=%v want not_found", err)
	}
	if _, err := svc.Download(ctx, mineResolved, stray.ID); authz.AsError(err).Kind != authz.KindNotFound {
		t.Fatalf("cross-course download: err=%v want not_found", err)
	}
	if _, err := svc.ListByTopic(ctx, mineResolved, otherTopic.ID); authz.AsError(err).Kind != authz.KindNotFound {
		t.Fatalf("cross-course topic listing: err=%v want not_found", err)
	}

	// The guard blocked the delete: the row is still there.
	row, err := materialRepo.GetByID(ctx, tx, stray.ID)
	if err != nil || row == nil {
		t.Fatalf("stray material gone or unreadable: row=%v err=%v", row, err)
	}
}

func TestMaterialServiceUpdateIsFullReplace(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	courseRepo := repos.NewCourseRepo(tx, log)
	topicRepo := repos.NewTopicRepo(tx, log)
	materialRepo := repos.NewMaterialRepo(tx, log)
	svc := NewMaterialService(tx, log, materialRepo)

	creator := testutil.User(t, tx, "material-upd-prof@classdesk.test", types.RoleProfessor)
	course := &types.Course{Slug: "quimica-i", Title: "Química I", CreatorID: creator.ID, Instructors: []*types.User{creator}}
	if _, err := courseRepo.Create(ctx, tx, course); err != nil {
		t.Fatalf("create course: %v", err)
	}
	topic, err := topicRepo.Create(ctx, tx, &types.Topic{ID: uuid.New(), CourseID: course.ID, Title: "Unidade 1"})
	if err != nil {
		t.Fatalf("create topic: %v", err)
	}
	course.Topics = append(course.Topics, topic)
	resolved := &authz.Resolved{Course: course}

	material, err := svc.Create(ctx, resolved, topic.ID, MaterialInput{
		Title:       "Lista 1",
		ExternalURL: "https://example.test/lista-1",
		Weight:      2.5,
	}, nil)
	if err != nil {
		t.Fatalf("create material: %v", err)
	}
	topic.Materials = append(topic.Materials, material)

	// Title is mandatory on update, same as on course updates.
	if _, err := svc.Update(ctx, resolved, material.ID, MaterialInput{}, nil); !isInvalidInput(err) {
		t.Fatalf("empty title: err=%v want invalid input", err)
	}

	// Omitted scalar fields take their zero values, not the old ones.
	updated, err := svc.Update(ctx, resolved, material.ID, MaterialInput{Title: "Lista 1 revisada"}, nil)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "Lista 1 revisada" || updated.ExternalURL != "" || updated.Weight != 0 {
		t.Fatalf("update not a full replace: %+v", updated)
	}
	row, err := materialRepo.GetByID(ctx, tx, material.ID)
	if err != nil || row == nil {
		t.Fatalf("reload: row=%v err=%v", row, err)
	}
	if row.Title != "Lista 1 revisada" || row.ExternalURL != "" || row.Weight != 0 {
		t.Fatalf("persisted row diverges: %+v", row)
	}
}
