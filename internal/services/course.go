package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/classdesk/classdesk-backend/internal/authz"
	"github.com/classdesk/classdesk-backend/internal/pkg/logger"
	"github.com/classdesk/classdesk-backend/internal/repos"
	"github.com/classdesk/classdesk-backend/internal/slug"
	"github.com/classdesk/classdesk-backend/internal/types"
)

type CreateCourseInput struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Metadata    datatypes.JSON `json:"metadata,omitempty"`
}

type UpdateCourseInput struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Metadata    datatypes.JSON `json:"metadata,omitempty"`
}

type CourseService interface {
	Create(ctx context.Context, principal authz.Principal, input CreateCourseInput) (*types.Course, error)
	Update(ctx context.Context, resolved *authz.Resolved, input UpdateCourseInput) (*types.Course, error)
	Delete(ctx context.Context, resolved *authz.Resolved) error
	ListForUser(ctx context.Context, principal authz.Principal) ([]*types.Course, error)

	AddInstructor(ctx context.Context, resolved *authz.Resolved, userID uuid.UUID) error
	RemoveInstructor(ctx context.Context, resolved *authz.Resolved, userID uuid.UUID) error
	AddStudent(ctx context.Context, resolved *authz.Resolved, userID uuid.UUID) error
	RemoveStudent(ctx context.Context, resolved *authz.Resolved, userID uuid.UUID) error
	ReplaceStudentRoster(ctx context.Context, resolved *authz.Resolved, userIDs []uuid.UUID) ([]*types.User, error)
}

type courseService struct {
	db         *gorm.DB
	log        *logger.Logger
	courseRepo repos.CourseRepo
	userRepo   repos.UserRepo
}

func NewCourseService(db *gorm.DB, log *logger.Logger, courseRepo repos.CourseRepo, userRepo repos.UserRepo) CourseService {
	return &courseService{
		db:         db,
		log:        log.With("service", "CourseService"),
		courseRepo: courseRepo,
		userRepo:   userRepo,
	}
}

// Create makes the caller the course creator and seeds the instructor
// set with them.
func (cs *courseService) Create(ctx context.Context, principal authz.Principal, input CreateCourseInput) (*types.Course, error) {
	if input.Title == "" {
		return nil, invalidf("title is required")
	}
	creator, err := cs.userRepo.GetByID(ctx, principal.ID)
	if err != nil {
		return nil, fmt.Errorf("loading creator: %w", err)
	}
	if creator == nil {
		return nil, authz.NotFound("creator user not found")
	}

	var course *types.Course
	err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		s, sErr := slug.Unique(ctx, input.Title, func(ctx context.Context, candidate string) (bool, error) {
			return cs.courseRepo.SlugTaken(ctx, tx, candidate, uuid.Nil)
		})
		if sErr != nil {
			return sErr
		}
		course = &types.Course{
			ID:          uuid.New(),
			Slug:        s,
			Title:       input.Title,
			Description: input.Description,
			Metadata:    input.Metadata,
			CreatorID:   creator.ID,
			Instructors: []*types.User{creator},
		}
		_, cErr := cs.courseRepo.Create(ctx, tx, course)
		return cErr
	})
	if err != nil {
		return nil, fmt.Errorf("creating course: %w", err)
	}
	return course, nil
}

// Update regenerates the slug when the title changes, keeping global
// uniqueness with the course's own slug excluded from the check.
func (cs *courseService) Update(ctx context.Context, resolved *authz.Resolved, input UpdateCourseInput) (*types.Course, error) {
	course := resolved.Course
	if input.Title == "" {
		return nil, invalidf("title is required")
	}
	err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if input.Title != course.Title {
			s, sErr := slug.Unique(ctx, input.Title, func(ctx context.Context, candidate string) (bool, error) {
				return cs.courseRepo.SlugTaken(ctx, tx, candidate, course.ID)
			})
			if sErr != nil {
				return sErr
			}
			course.Slug = s
		}
		course.Title = input.Title
		course.Description = input.Description
		if input.Metadata != nil {
			course.Metadata = input.Metadata
		}
		return cs.courseRepo.Update(ctx, tx, course)
	})
	if err != nil {
		return nil, fmt.Errorf("updating course: %w", err)
	}
	return course, nil
}

func (cs *courseService) Delete(ctx context.Context, resolved *authz.Resolved) error {
	return cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return cs.courseRepo.Delete(ctx, tx, resolved.Course.ID)
	})
}

func (cs *courseService) ListForUser(ctx context.Context, principal authz.Principal) ([]*types.Course, error) {
	return cs.courseRepo.ListForUser(ctx, nil, principal.ID)
}

// Roster edits are single replace-set operations inside one
// transaction, so a concurrent reader never observes a half-applied
// membership list.

func (cs *courseService) AddInstructor(ctx context.Context, resolved *authz.Resolved, userID uuid.UUID) error {
	user, err := cs.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("loading user: %w", err)
	}
	if user == nil {
		return authz.NotFound("user not found")
	}
	if user.Role != types.RoleProfessor && user.Role != types.RoleAdmin {
		return authz.Conflict("only professors can be added as instructors")
	}
	course := resolved.Course
	next := withMember(course.Instructors, user)
	return cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return cs.courseRepo.ReplaceInstructors(ctx, tx, course, next)
	})
}

// RemoveInstructor re-asserts the creator invariant even though policy
// already denies it; a direct service call must not bypass it either.
func (cs *courseService) RemoveInstructor(ctx context.Context, resolved *authz.Resolved, userID uuid.UUID) error {
	course := resolved.Course
	if userID == course.CreatorID {
		return authz.Forbidden(authz.ReasonCannotRemoveCreator, "course creator cannot be removed from instructors")
	}
	next := withoutMember(course.Instructors, userID)
	if len(next) == len(course.Instructors) {
		return authz.NotFound("user is not an instructor of this course")
	}
	return cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return cs.courseRepo.ReplaceInstructors(ctx, tx, course, next)
	})
}

func (cs *courseService) AddStudent(ctx context.Context, resolved *authz.Resolved, userID uuid.UUID) error {
	user, err := cs.userRepo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("loading user: %w", err)
	}
	if user == nil {
		return authz.NotFound("user not found")
	}
	if user.Role != types.RoleStudent {
		return authz.Conflict("only students can be enrolled")
	}
	course := resolved.Course
	next := withMember(course.Students, user)
	return cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return cs.courseRepo.ReplaceStudents(ctx, tx, course, next)
	})
}

func (cs *courseService) RemoveStudent(ctx context.Context, resolved *authz.Resolved, userID uuid.UUID) error {
	course := resolved.Course
	next := withoutMember(course.Students, userID)
	if len(next) == len(course.Students) {
		return authz.NotFound("user is not a student of this course")
	}
	return cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return cs.courseRepo.ReplaceStudents(ctx, tx, course, next)
	})
}

// ReplaceStudentRoster swaps the whole enrollment for the given set in
// one transaction. Every id must name an existing student; duplicates
// in the request are an input error.
func (cs *courseService) ReplaceStudentRoster(ctx context.Context, resolved *authz.Resolved, userIDs []uuid.UUID) ([]*types.User, error) {
	seen := make(map[uuid.UUID]struct{}, len(userIDs))
	for _, id := range userIDs {
		if _, dup := seen[id]; dup {
			return nil, invalidf("duplicate user id %s", id)
		}
		seen[id] = struct{}{}
	}
	users, err := cs.userRepo.GetByIDs(ctx, nil, userIDs)
	if err != nil {
		return nil, fmt.Errorf("loading users: %w", err)
	}
	if len(users) != len(userIDs) {
		return nil, authz.NotFound("one or more users not found")
	}
	for _, u := range users {
		if u.Role != types.RoleStudent {
			return nil, authz.Conflict("only students can be enrolled")
		}
	}
	course := resolved.Course
	err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return cs.courseRepo.ReplaceStudents(ctx, tx, course, users)
	})
	if err != nil {
		return nil, fmt.Errorf("replacing students: %w", err)
	}
	course.Students = users
	return course.Students, nil
}

func withMember(set []*types.User, user *types.User) []*types.User {
	for _, u := range set {
		if u != nil && u.ID == user.ID {
			return set
		}
	}
	return append(append([]*types.User{}, set...), user)
}

func withoutMember(set []*types.User, userID uuid.UUID) []*types.User {
	next := make([]*types.User, 0, len(set))
	for _, u := range set {
		if u != nil && u.ID == userID {
			continue
		}
		next = append(next, u)
	}
	return next
}
