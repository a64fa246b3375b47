package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/classdesk/classdesk-backend/internal/authz"
	"github.com/classdesk/classdesk-backend/internal/pkg/logger"
	"github.com/classdesk/classdesk-backend/internal/repos"
	"github.com/classdesk/classdesk-backend/internal/types"
)

type TopicInput struct {
	Title string `json:"title"`
}

type TopicService interface {
	Create(ctx context.Context, resolved *authz.Resolved, input TopicInput) (*types.Topic, error)
	Update(ctx context.Context, resolved *authz.Resolved, topicID uuid.UUID, input TopicInput) (*types.Topic, error)
	Delete(ctx context.Context, resolved *authz.Resolved, topicID uuid.UUID) error
	Reorder(ctx context.Context, resolved *authz.Resolved, orderedIDs []uuid.UUID) ([]*types.Topic, error)
	List(ctx context.Context, resolved *authz.Resolved) ([]*types.Topic, error)
}

type topicService struct {
	db        *gorm.DB
	log       *logger.Logger
	topicRepo repos.TopicRepo
}

func NewTopicService(db *gorm.DB, log *logger.Logger, topicRepo repos.TopicRepo) TopicService {
	return &topicService{
		db:        db,
		log:       log.With("service", "TopicService"),
		topicRepo: topicRepo,
	}
}

// topicOf guards nested ownership: a topic id from the route must
// belong to the already-resolved course.
func topicOf(resolved *authz.Resolved, topicID uuid.UUID) (*types.Topic, error) {
	for _, t := range resolved.Course.Topics {
		if t != nil && t.ID == topicID {
			return t, nil
		}
	}
	return nil, authz.NotFound("topic not found in this course")
}

func (ts *topicService) Create(ctx context.Context, resolved *authz.Resolved, input TopicInput) (*types.Topic, error) {
	if input.Title == "" {
		return nil, invalidf("title is required")
	}
	topic := &types.Topic{
		ID:       uuid.New(),
		CourseID: resolved.Course.ID,
		Title:    input.Title,
		Position: len(resolved.Course.Topics),
	}
	if _, err := ts.topicRepo.Create(ctx, nil, topic); err != nil {
		return nil, fmt.Errorf("creating topic: %w", err)
	}
	return topic, nil
}

func (ts *topicService) Update(ctx context.Context, resolved *authz.Resolved, topicID uuid.UUID, input TopicInput) (*types.Topic, error) {
	topic, err := topicOf(resolved, topicID)
	if err != nil {
		return nil, err
	}
	if input.Title == "" {
		return nil, invalidf("title is required")
	}
	topic.Title = input.Title
	if err := ts.topicRepo.Update(ctx, nil, topic); err != nil {
		return nil, fmt.Errorf("updating topic: %w", err)
	}
	return topic, nil
}

func (ts *topicService) Delete(ctx context.Context, resolved *authz.Resolved, topicID uuid.UUID) error {
	topic, err := topicOf(resolved, topicID)
	if err != nil {
		return err
	}
	return ts.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return ts.topicRepo.Delete(ctx, tx, topic.ID)
	})
}

// Reorder rewrites every position to 0..n-1 in one transaction. The
// ordered list must name each topic of the course exactly once.
func (ts *topicService) Reorder(ctx context.Context, resolved *authz.Resolved, orderedIDs []uuid.UUID) ([]*types.Topic, error) {
	course := resolved.Course
	if len(orderedIDs) != len(course.Topics) {
		return nil, invalidf("reorder must list all %d topics, got %d", len(course.Topics), len(orderedIDs))
	}
	seen := make(map[uuid.UUID]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		if _, err := topicOf(resolved, id); err != nil {
			return nil, err
		}
		if seen[id] {
			return nil, invalidf("topic %s listed more than once", id)
		}
		seen[id] = true
	}
	err := ts.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range orderedIDs {
			if err := ts.topicRepo.SetPosition(ctx, tx, id, i); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reordering topics: %w", err)
	}
	return ts.topicRepo.ListByCourse(ctx, nil, course.ID)
}

// List normalizes positions for display: contiguous from 0 even when
// stored positions carry gaps or duplicates.
func (ts *topicService) List(ctx context.Context, resolved *authz.Resolved) ([]*types.Topic, error) {
	topics, err := ts.topicRepo.ListByCourse(ctx, nil, resolved.Course.ID)
	if err != nil {
		return nil, fmt.Errorf("listing topics: %w", err)
	}
	for i, t := range topics {
		t.Position = i
	}
	return topics, nil
}
