package authz

import (
	"context"

	"github.com/google/uuid"

	"github.com/classdesk/classdesk-backend/internal/pkg/logger"
	"github.com/classdesk/classdesk-backend/internal/types"
)

// Finders are the locator's view of the document store. They return
// (nil, nil) when nothing matches; an error always means the store
// itself failed.
type CourseFinder interface {
	GetBySlug(ctx context.Context, slug string) (*types.Course, error)
	GetByID(ctx context.Context, id uuid.UUID) (*types.Course, error)
}

type GradeRecordFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*types.GradeRecord, error)
}

type CommentFinder interface {
	GetByID(ctx context.Context, id uuid.UUID) (*types.Comment, error)
	GetReplyByID(ctx context.Context, id uuid.UUID) (*types.Reply, error)
}

// Params are the identifier fields a route may carry. Ref is the
// human-facing route value (slug, or an id on legacy links); CourseID
// and GenericID are the explicit admin-route params.
type Params struct {
	Ref           string
	CourseID      string
	GenericID     string
	GradeRecordID string
	CommentID     string
	ReplyID       string
}

// Resolved is the fetched decision context: the course (always, once
// located), plus the grade record, comment or reply when the request
// targets one. SubjectUserID scopes self-only reads; TargetUserID is
// the user a roster edit points at.
type Resolved struct {
	Course        *types.Course
	GradeRecord   *types.GradeRecord
	Comment       *types.Comment
	Reply         *types.Reply
	SubjectUserID uuid.UUID
	TargetUserID  uuid.UUID
}

// WithSubject and WithTarget return shallow copies so an attached
// Resolved is never mutated after the fact.
func (r *Resolved) WithSubject(id uuid.UUID) *Resolved {
	cp := *r
	cp.SubjectUserID = id
	return &cp
}

func (r *Resolved) WithTarget(id uuid.UUID) *Resolved {
	cp := *r
	cp.TargetUserID = id
	return &cp
}

// Locator resolves route identifiers into loaded documents, trying an
// explicit ordered list of named strategies.
type Locator struct {
	log     *logger.Logger
	courses CourseFinder
	grades  GradeRecordFinder
	// comments may be nil when no comment routes are mounted.
	comments CommentFinder
}

func NewLocator(log *logger.Logger, courses CourseFinder, grades GradeRecordFinder, comments CommentFinder) *Locator {
	return &Locator{
		log:      log.With("component", "Locator"),
		courses:  courses,
		grades:   grades,
		comments: comments,
	}
}

type courseStrategy struct {
	name   string
	lookup func(ctx context.Context, p Params) (*types.Course, error)
}

func (l *Locator) bySlug() courseStrategy {
	return courseStrategy{name: "slug", lookup: func(ctx context.Context, p Params) (*types.Course, error) {
		if p.Ref == "" {
			return nil, nil
		}
		return l.courses.GetBySlug(ctx, p.Ref)
	}}
}

func (l *Locator) byRefID() courseStrategy {
	return courseStrategy{name: "ref_id", lookup: func(ctx context.Context, p Params) (*types.Course, error) {
		id, err := uuid.Parse(p.Ref)
		if err != nil {
			return nil, nil
		}
		return l.courses.GetByID(ctx, id)
	}}
}

func (l *Locator) byCourseIDParam() courseStrategy {
	return courseStrategy{name: "course_id_param", lookup: func(ctx context.Context, p Params) (*types.Course, error) {
		id, err := uuid.Parse(p.CourseID)
		if err != nil {
			return nil, nil
		}
		return l.courses.GetByID(ctx, id)
	}}
}

func (l *Locator) byGenericID() courseStrategy {
	return courseStrategy{name: "generic_id", lookup: func(ctx context.Context, p Params) (*types.Course, error) {
		id, err := uuid.Parse(p.GenericID)
		if err != nil {
			return nil, nil
		}
		return l.courses.GetByID(ctx, id)
	}}
}

// courseStrategies is the canonical lookup order. Admin edit routes may
// supply any of several param shapes, so admins get the explicit
// course_id param first, then slug, then the generic id.
func (l *Locator) courseStrategies(p Principal) []courseStrategy {
	if p.Role == types.RoleAdmin {
		return []courseStrategy{l.byCourseIDParam(), l.bySlug(), l.byRefID(), l.byGenericID()}
	}
	return []courseStrategy{l.bySlug(), l.byRefID()}
}

func (l *Locator) LocateCourse(ctx context.Context, principal Principal, params Params) (*Resolved, error) {
	for _, s := range l.courseStrategies(principal) {
		course, err := s.lookup(ctx, params)
		if err != nil {
			return nil, Internal("course lookup failed", err)
		}
		if course != nil {
			l.log.Debug("Course resolved", "strategy", s.name, "course_id", course.ID, "slug", course.Slug)
			return &Resolved{Course: course}, nil
		}
	}
	return nil, NotFound("course not found")
}

// LocateGradeRecord dereferences the owning course as part of location;
// a record whose course is gone resolves to NotFound rather than a
// partially populated context.
func (l *Locator) LocateGradeRecord(ctx context.Context, params Params) (*Resolved, error) {
	id, err := uuid.Parse(params.GradeRecordID)
	if err != nil {
		return nil, NotFound("grade record not found")
	}
	rec, err := l.grades.GetByID(ctx, id)
	if err != nil {
		return nil, Internal("grade record lookup failed", err)
	}
	if rec == nil {
		return nil, NotFound("grade record not found")
	}
	course, err := l.courses.GetByID(ctx, rec.CourseID)
	if err != nil {
		return nil, Internal("owning course lookup failed", err)
	}
	if course == nil {
		return nil, NotFound("owning course not found")
	}
	return &Resolved{Course: course, GradeRecord: rec, SubjectUserID: rec.StudentID}, nil
}

// LocateComment loads a comment and its owning course so moderation
// rules can test course membership.
func (l *Locator) LocateComment(ctx context.Context, params Params) (*Resolved, error) {
	id, err := uuid.Parse(params.CommentID)
	if err != nil {
		return nil, NotFound("comment not found")
	}
	comment, err := l.comments.GetByID(ctx, id)
	if err != nil {
		return nil, Internal("comment lookup failed", err)
	}
	if comment == nil {
		return nil, NotFound("comment not found")
	}
	course, err := l.courses.GetByID(ctx, comment.CourseID)
	if err != nil {
		return nil, Internal("owning course lookup failed", err)
	}
	if course == nil {
		return nil, NotFound("owning course not found")
	}
	return &Resolved{Course: course, Comment: comment}, nil
}

// LocateReply narrows an already-located comment context to one of its
// replies. A reply id that exists under a different comment is NotFound,
// the same way a foreign material id is inside a course.
func (l *Locator) LocateReply(ctx context.Context, base *Resolved, params Params) (*Resolved, error) {
	if base == nil || base.Comment == nil {
		return nil, NotFound("comment not resolved")
	}
	id, err := uuid.Parse(params.ReplyID)
	if err != nil {
		return nil, NotFound("reply not found")
	}
	reply, err := l.comments.GetReplyByID(ctx, id)
	if err != nil {
		return nil, Internal("reply lookup failed", err)
	}
	if reply == nil || reply.CommentID != base.Comment.ID {
		return nil, NotFound("reply not found in this comment")
	}
	cp := *base
	cp.Reply = reply
	return &cp, nil
}
