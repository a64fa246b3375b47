package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/classdesk/classdesk-backend/internal/authz"
	"github.com/classdesk/classdesk-backend/internal/pkg/logger"
	"github.com/classdesk/classdesk-backend/internal/repos"
	"github.com/classdesk/classdesk-backend/internal/types"
)

type MaterialInput struct {
	Title       string         `json:"title"`
	ExternalURL string         `json:"external_url"`
	Weight      float64        `json:"weight"`
	Deadline    *time.Time     `json:"deadline"`
	Metadata    datatypes.JSON `json:"metadata,omitempty"`
}

type Attachment struct {
	Name string
	MIME string
	Data []byte
}

type MaterialService interface {
	Create(ctx context.Context, resolved *authz.Resolved, topicID uuid.UUID, input MaterialInput, attachment *Attachment) (*types.Material, error)
	Update(ctx context.Context, resolved *authz.Resolved, materialID uuid.UUID, input MaterialInput, attachment *Attachment) (*types.Material, error)
	Delete(ctx context.Context, resolved *authz.Resolved, materialID uuid.UUID) error
	Get(ctx context.Context, resolved *authz.Resolved, materialID uuid.UUID) (*types.Material, error)
	ListByTopic(ctx context.Context, resolved *authz.Resolved, topicID uuid.UUID) ([]*types.Material, error)
	Download(ctx context.Context, resolved *authz.Resolved, materialID uuid.UUID) (*types.Material, error)
}

type materialService struct {
	db           *gorm.DB
	log          *logger.Logger
	materialRepo repos.MaterialRepo
}

func NewMaterialService(db *gorm.DB, log *logger.Logger, materialRepo repos.MaterialRepo) MaterialService {
	return &materialService{
		db:           db,
		log:          log.With("service", "MaterialService"),
		materialRepo: materialRepo,
	}
}

// materialOf walks the resolved course's topic tree; a material id that
// is not inside this course is NotFound regardless of whether the row
// exists elsewhere.
func materialOf(resolved *authz.Resolved, materialID uuid.UUID) (*types.Material, *types.Topic, error) {
	for _, t := range resolved.Course.Topics {
		for _, m := range t.Materials {
			if m != nil && m.ID == materialID {
				return m, t, nil
			}
		}
	}
	return nil, nil, authz.NotFound("material not found in this course")
}

func (ms *materialService) Create(ctx context.Context, resolved *authz.Resolved, topicID uuid.UUID, input MaterialInput, attachment *Attachment) (*types.Material, error) {
	topic, err := topicOf(resolved, topicID)
	if err != nil {
		return nil, err
	}
	if input.Title == "" {
		return nil, invalidf("title is required")
	}
	material := &types.Material{
		ID:          uuid.New(),
		TopicID:     topic.ID,
		Title:       input.Title,
		ExternalURL: input.ExternalURL,
		Weight:      input.Weight,
		Deadline:    input.Deadline,
		Metadata:    input.Metadata,
		Position:    len(topic.Materials),
	}
	if attachment != nil {
		material.AttachmentName = attachment.Name
		material.AttachmentMIME = attachment.MIME
		material.AttachmentData = attachment.Data
	}
	if _, err := ms.materialRepo.Create(ctx, nil, material); err != nil {
		return nil, fmt.Errorf("creating material: %w", err)
	}
	return material, nil
}

// Update is a full replace like course updates: title is required and
// every scalar field takes the incoming value; only metadata and the
// attachment survive when omitted.
func (ms *materialService) Update(ctx context.Context, resolved *authz.Resolved, materialID uuid.UUID, input MaterialInput, attachment *Attachment) (*types.Material, error) {
	material, _, err := materialOf(resolved, materialID)
	if err != nil {
		return nil, err
	}
	if input.Title == "" {
		return nil, invalidf("title is required")
	}
	material.Title = input.Title
	material.ExternalURL = input.ExternalURL
	material.Weight = input.Weight
	material.Deadline = input.Deadline
	if input.Metadata != nil {
		material.Metadata = input.Metadata
	}
	if attachment != nil {
		material.AttachmentName = attachment.Name
		material.AttachmentMIME = attachment.MIME
		material.AttachmentData = attachment.Data
	}
	if err := ms.materialRepo.Update(ctx, nil, material); err != nil {
		return nil, fmt.Errorf("updating material: %w", err)
	}
	return material, nil
}

func (ms *materialService) Delete(ctx context.Context, resolved *authz.Resolved, materialID uuid.UUID) error {
	material, _, err := materialOf(resolved, materialID)
	if err != nil {
		return err
	}
	return ms.materialRepo.Delete(ctx, nil, material.ID)
}

// ListByTopic re-reads the rows so ordering and fresh edits come from
// the store, not the preloaded tree.
func (ms *materialService) ListByTopic(ctx context.Context, resolved *authz.Resolved, topicID uuid.UUID) ([]*types.Material, error) {
	topic, err := topicOf(resolved, topicID)
	if err != nil {
		return nil, err
	}
	return ms.materialRepo.ListByTopic(ctx, nil, topic.ID)
}

func (ms *materialService) Get(ctx context.Context, resolved *authz.Resolved, materialID uuid.UUID) (*types.Material, error) {
	material, _, err := materialOf(resolved, materialID)
	if err != nil {
		return nil, err
	}
	return material, nil
}

// Download re-reads the row because the preloaded tree does not carry
// attachment bytes for listing.
func (ms *materialService) Download(ctx context.Context, resolved *authz.Resolved, materialID uuid.UUID) (*types.Material, error) {
	if _, _, err := materialOf(resolved, materialID); err != nil {
		return nil, err
	}
	material, err := ms.materialRepo.GetByID(ctx, nil, materialID)
	if err != nil {
		return nil, fmt.Errorf("loading material: %w", err)
	}
	if material == nil || !material.HasAttachment() {
		return nil, authz.NotFound("material has no attachment")
	}
	return material, nil
}
