package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/classdesk/classdesk-backend/internal/pkg/logger"
	"github.com/classdesk/classdesk-backend/internal/types"
)

type TopicRepo interface {
	Create(ctx context.Context, tx *gorm.DB, topic *types.Topic) (*types.Topic, error)
	Update(ctx context.Context, tx *gorm.DB, topic *types.Topic) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Topic, error)
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Topic, error)
	SetPosition(ctx context.Context, tx *gorm.DB, id uuid.UUID, position int) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type topicRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTopicRepo(db *gorm.DB, baseLog *logger.Logger) TopicRepo {
	return &topicRepo{db: db, log: baseLog.With("repo", "TopicRepo")}
}

func (tr *topicRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return tr.db
}

func (tr *topicRepo) Create(ctx context.Context, tx *gorm.DB, topic *types.Topic) (*types.Topic, error) {
	if err := tr.handle(tx).WithContext(ctx).Create(topic).Error; err != nil {
		return nil, err
	}
	return topic, nil
}

func (tr *topicRepo) Update(ctx context.Context, tx *gorm.DB, topic *types.Topic) error {
	return tr.handle(tx).WithContext(ctx).
		Model(&types.Topic{ID: topic.ID}).
		Updates(map[string]interface{}{
			"title":    topic.Title,
			"position": topic.Position,
		}).Error
}

func (tr *topicRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Topic, error) {
	var topic types.Topic
	err := tr.handle(tx).WithContext(ctx).
		Preload("Materials", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC, created_at ASC") }).
		First(&topic, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &topic, nil
}

func (tr *topicRepo) ListByCourse(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) ([]*types.Topic, error) {
	var topics []*types.Topic
	if err := tr.handle(tx).WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("position ASC, created_at ASC").
		Find(&topics).Error; err != nil {
		return nil, err
	}
	return topics, nil
}

func (tr *topicRepo) SetPosition(ctx context.Context, tx *gorm.DB, id uuid.UUID, position int) error {
	return tr.handle(tx).WithContext(ctx).
		Model(&types.Topic{}).
		Where("id = ?", id).
		Update("position", position).Error
}

func (tr *topicRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	h := tr.handle(tx).WithContext(ctx)
	if err := h.Where("topic_id = ?", id).Delete(&types.Material{}).Error; err != nil {
		return err
	}
	return h.Delete(&types.Topic{}, "id = ?", id).Error
}
