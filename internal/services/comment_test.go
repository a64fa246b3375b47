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

func TestCommentServiceReplyLifecycle(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	ctx := context.Background()

	courseRepo := repos.NewCourseRepo(tx, log)
	topicRepo := repos.NewTopicRepo(tx, log)
	materialRepo := repos.NewMaterialRepo(tx, log)
	commentRepo := repos.NewCommentRepo(tx, log)
	materialSvc := NewMaterialService(tx, log, materialRepo)
	svc := NewCommentService(tx, log, commentRepo)

	creator := testutil.User(t, tx, "reply-svc-prof@classdesk.test", types.RoleProfessor)
	student := testutil.User(t, tx, "reply-svc-student@classdesk.test", types.RoleStudent)
	course := &types.Course{
		Slug:        "portugues-i",
		Title:       "Português I",
		CreatorID:   creator.ID,
		Instructors: []*types.User{creator},
		Students:    []*types.User{student},
	}
	if _, err := courseRepo.Create(ctx, tx, course); err != nil {
		t.Fatalf("create course: %v", err)
	}
	topic, err := topicRepo.Create(ctx, tx, &types.Topic{ID: uuid.New(), CourseID: course.ID, Title: "Unidade 1"})
	if err != nil {
		t.Fatalf("create topic: %v", err)
	}
	course.Topics = append(course.Topics, topic)
	resolved := &authz.Resolved{Course: course}

	material, err := materialSvc.Create(ctx, resolved, topic.ID, MaterialInput{Title: "Leitura 1"}, nil)
	if err != nil {
		t.Fatalf("create material: %v", err)
	}
	topic.Materials = append(topic.Materials, material)

	author := authz.Principal{ID: student.ID, Role: types.RoleStudent}
	comment, err := svc.Create(ctx, author, resolved, material.ID, "Não entendi o exercício 3.")
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}

	threadResolved := &authz.Resolved{Course: course, Comment: comment}
	instructor := authz.Principal{ID: creator.ID, Role: types.RoleProfessor}
	reply, err := svc.Reply(ctx, instructor, threadResolved, "Veja o exemplo da aula 4.")
	if err != nil {
		t.Fatalf("create reply: %v", err)
	}
	if reply.Edited || reply.EditedAt != nil {
		t.Fatalf("fresh reply already marked edited: %+v", reply)
	}

	// Editing flips the flag and stamps the time.
	replyResolved := &authz.Resolved{Course: course, Comment: comment, Reply: reply}
	edited, err := svc.EditReply(ctx, replyResolved, "Veja o exemplo da aula 5.")
	if err != nil {
		t.Fatalf("EditReply: %v", err)
	}
	if !edited.Edited || edited.EditedAt == nil {
		t.Fatalf("edit did not mark the reply: %+v", edited)
	}
	row, err := commentRepo.GetReplyByID(ctx, reply.ID)
	if err != nil || row == nil {
		t.Fatalf("reload reply: row=%v err=%v", row, err)
	}
	if row.Body != "Veja o exemplo da aula 5." || !row.Edited || row.EditedAt == nil {
		t.Fatalf("persisted reply diverges: %+v", row)
	}

	if _, err := svc.EditReply(ctx, replyResolved, ""); !isInvalidInput(err) {
		t.Fatalf("empty body: err=%v want invalid input", err)
	}

	if err := svc.DeleteReply(ctx, replyResolved); err != nil {
		t.Fatalf("DeleteReply: %v", err)
	}
	row, err = commentRepo.GetReplyByID(ctx, reply.ID)
	if err != nil {
		t.Fatalf("reload after delete: %v", err)
	}
	if row != nil {
		t.Fatalf("reply row survived delete: %+v", row)
	}
}
