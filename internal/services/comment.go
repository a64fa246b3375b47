package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/classdesk/classdesk-backend/internal/authz"
	"github.com/classdesk/classdesk-backend/internal/pkg/logger"
	"github.com/classdesk/classdesk-backend/internal/repos"
	"github.com/classdesk/classdesk-backend/internal/types"
)

type CommentService interface {
	Create(ctx context.Context, principal authz.Principal, resolved *authz.Resolved, materialID uuid.UUID, body string) (*types.Comment, error)
	ListByMaterial(ctx context.Context, resolved *authz.Resolved, materialID uuid.UUID) ([]*types.Comment, error)
	Edit(ctx context.Context, resolved *authz.Resolved, body string) (*types.Comment, error)
	Delete(ctx context.Context, resolved *authz.Resolved) error
	Reply(ctx context.Context, principal authz.Principal, resolved *authz.Resolved, body string) (*types.Reply, error)
	EditReply(ctx context.Context, resolved *authz.Resolved, body string) (*types.Reply, error)
	DeleteReply(ctx context.Context, resolved *authz.Resolved) error
}

type commentService struct {
	db          *gorm.DB
	log         *logger.Logger
	commentRepo repos.CommentRepo
}

func NewCommentService(db *gorm.DB, log *logger.Logger, commentRepo repos.CommentRepo) CommentService {
	return &commentService{
		db:          db,
		log:         log.With("service", "CommentService"),
		commentRepo: commentRepo,
	}
}

func (cs *commentService) Create(ctx context.Context, principal authz.Principal, resolved *authz.Resolved, materialID uuid.UUID, body string) (*types.Comment, error) {
	if body == "" {
		return nil, invalidf("body is required")
	}
	_, topic, err := materialOf(resolved, materialID)
	if err != nil {
		return nil, err
	}
	comment := &types.Comment{
		ID:         uuid.New(),
		CourseID:   resolved.Course.ID,
		TopicID:    topic.ID,
		MaterialID: materialID,
		AuthorID:   principal.ID,
		Body:       body,
	}
	if _, err := cs.commentRepo.Create(ctx, nil, comment); err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}
	return comment, nil
}

func (cs *commentService) ListByMaterial(ctx context.Context, resolved *authz.Resolved, materialID uuid.UUID) ([]*types.Comment, error) {
	if _, _, err := materialOf(resolved, materialID); err != nil {
		return nil, err
	}
	return cs.commentRepo.ListByMaterial(ctx, nil, materialID)
}

// Edit marks the comment edited with a timestamp; authorship and
// moderation rules were already enforced by the pipeline.
func (cs *commentService) Edit(ctx context.Context, resolved *authz.Resolved, body string) (*types.Comment, error) {
	if body == "" {
		return nil, invalidf("body is required")
	}
	comment := resolved.Comment
	now := time.Now()
	comment.Body = body
	comment.Edited = true
	comment.EditedAt = &now
	if err := cs.commentRepo.Update(ctx, nil, comment); err != nil {
		return nil, fmt.Errorf("updating comment: %w", err)
	}
	return comment, nil
}

func (cs *commentService) Delete(ctx context.Context, resolved *authz.Resolved) error {
	return cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return cs.commentRepo.Delete(ctx, tx, resolved.Comment.ID)
	})
}

func (cs *commentService) Reply(ctx context.Context, principal authz.Principal, resolved *authz.Resolved, body string) (*types.Reply, error) {
	if body == "" {
		return nil, invalidf("body is required")
	}
	comment := resolved.Comment
	reply := &types.Reply{
		ID:        uuid.New(),
		CommentID: comment.ID,
		AuthorID:  principal.ID,
		Body:      body,
		Position:  len(comment.Replies),
	}
	if _, err := cs.commentRepo.CreateReply(ctx, nil, reply); err != nil {
		return nil, fmt.Errorf("creating reply: %w", err)
	}
	return reply, nil
}

// EditReply mirrors Edit for a single reply; the reply-author-or-
// instructor rule already ran in the pipeline.
func (cs *commentService) EditReply(ctx context.Context, resolved *authz.Resolved, body string) (*types.Reply, error) {
	if body == "" {
		return nil, invalidf("body is required")
	}
	reply := resolved.Reply
	now := time.Now()
	reply.Body = body
	reply.Edited = true
	reply.EditedAt = &now
	if err := cs.commentRepo.UpdateReply(ctx, nil, reply); err != nil {
		return nil, fmt.Errorf("updating reply: %w", err)
	}
	return reply, nil
}

func (cs *commentService) DeleteReply(ctx context.Context, resolved *authz.Resolved) error {
	return cs.commentRepo.DeleteReply(ctx, nil, resolved.Reply.ID)
}
