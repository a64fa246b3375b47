package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/classdesk/classdesk-backend/internal/pkg/logger"
	"github.com/classdesk/classdesk-backend/internal/types"
)

type CommentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, comment *types.Comment) (*types.Comment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*types.Comment, error)
	ListByMaterial(ctx context.Context, tx *gorm.DB, materialID uuid.UUID) ([]*types.Comment, error)
	Update(ctx context.Context, tx *gorm.DB, comment *types.Comment) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	CreateReply(ctx context.Context, tx *gorm.DB, reply *types.Reply) (*types.Reply, error)
	GetReplyByID(ctx context.Context, id uuid.UUID) (*types.Reply, error)
	UpdateReply(ctx context.Context, tx *gorm.DB, reply *types.Reply) error
	DeleteReply(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type commentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCommentRepo(db *gorm.DB, baseLog *logger.Logger) CommentRepo {
	return &commentRepo{db: db, log: baseLog.With("repo", "CommentRepo")}
}

func (cr *commentRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return cr.db
}

func (cr *commentRepo) Create(ctx context.Context, tx *gorm.DB, comment *types.Comment) (*types.Comment, error) {
	if err := cr.handle(tx).WithContext(ctx).Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

func (cr *commentRepo) GetByID(ctx context.Context, id uuid.UUID) (*types.Comment, error) {
	var comment types.Comment
	err := cr.db.WithContext(ctx).
		Preload("Replies", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, created_at ASC") }).
		First(&comment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (cr *commentRepo) ListByMaterial(ctx context.Context, tx *gorm.DB, materialID uuid.UUID) ([]*types.Comment, error) {
	var comments []*types.Comment
	if err := cr.handle(tx).WithContext(ctx).
		Preload("Replies", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, created_at ASC") }).
		Where("material_id = ?", materialID).
		Order("created_at ASC").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

func (cr *commentRepo) Update(ctx context.Context, tx *gorm.DB, comment *types.Comment) error {
	return cr.handle(tx).WithContext(ctx).
		Model(&types.Comment{ID: comment.ID}).
		Updates(map[string]interface{}{
			"body":      comment.Body,
			"edited":    comment.Edited,
			"edited_at": comment.EditedAt,
		}).Error
}

func (cr *commentRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	h := cr.handle(tx).WithContext(ctx)
	if err := h.Where("comment_id = ?", id).Delete(&types.Reply{}).Error; err != nil {
		return err
	}
	return h.Delete(&types.Comment{}, "id = ?", id).Error
}

func (cr *commentRepo) CreateReply(ctx context.Context, tx *gorm.DB, reply *types.Reply) (*types.Reply, error) {
	if err := cr.handle(tx).WithContext(ctx).Create(reply).Error; err != nil {
		return nil, err
	}
	return reply, nil
}

func (cr *commentRepo) GetReplyByID(ctx context.Context, id uuid.UUID) (*types.Reply, error) {
	var reply types.Reply
	err := cr.db.WithContext(ctx).First(&reply, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

func (cr *commentRepo) UpdateReply(ctx context.Context, tx *gorm.DB, reply *types.Reply) error {
	return cr.handle(tx).WithContext(ctx).
		Model(&types.Reply{ID: reply.ID}).
		Updates(map[string]interface{}{
			"body":      reply.Body,
			"edited":    reply.Edited,
			"edited_at": reply.EditedAt,
		}).Error
}

func (cr *commentRepo) DeleteReply(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return cr.handle(tx).WithContext(ctx).Delete(&types.Reply{}, "id = ?", id).Error
}
