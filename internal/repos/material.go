package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/classdesk/classdesk-backend/internal/pkg/logger"
	"github.com/classdesk/classdesk-backend/internal/types"
)

type MaterialRepo interface {
	Create(ctx context.Context, tx *gorm.DB, material *types.Material) (*types.Material, error)
	Update(ctx context.Context, tx *gorm.DB, material *types.Material) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Material, error)
	ListByTopic(ctx context.Context, tx *gorm.DB, topicID uuid.UUID) ([]*types.Material, error)
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type materialRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMaterialRepo(db *gorm.DB, baseLog *logger.Logger) MaterialRepo {
	return &materialRepo{db: db, log: baseLog.With("repo", "MaterialRepo")}
}

func (mr *materialRepo) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return mr.db
}

func (mr *materialRepo) Create(ctx context.Context, tx *gorm.DB, material *types.Material) (*types.Material, error) {
	if err := mr.handle(tx).WithContext(ctx).Create(material).Error; err != nil {
		return nil, err
	}
	return material, nil
}

func (mr *materialRepo) Update(ctx context.Context, tx *gorm.DB, material *types.Material) error {
	return mr.handle(tx).WithContext(ctx).
		Model(&types.Material{ID: material.ID}).
		Updates(map[string]interface{}{
			"title":           material.Title,
			"external_url":    material.ExternalURL,
			"weight":          material.Weight,
			"deadline":        material.Deadline,
			"position":        material.Position,
			"metadata":        material.Metadata,
			"attachment_name": material.AttachmentName,
			"attachment_mime": material.AttachmentMIME,
			"attachment_data": material.AttachmentData,
		}).Error
}

func (mr *materialRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Material, error) {
	var material types.Material
	err := mr.handle(tx).WithContext(ctx).First(&material, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &material, nil
}

func (mr *materialRepo) ListByTopic(ctx context.Context, tx *gorm.DB, topicID uuid.UUID) ([]*types.Material, error) {
	var materials []*types.Material
	if err := mr.handle(tx).WithContext(ctx).
		Where("topic_id = ?", topicID).
		Order("position ASC, created_at ASC").
		Find(&materials).Error; err != nil {
		return nil, err
	}
	return materials, nil
}

func (mr *materialRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return mr.handle(tx).WithContext(ctx).Delete(&types.Material{}, "id = ?", id).Error
}
