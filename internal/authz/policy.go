package authz

import (
	"github.com/google/uuid"

	"github.com/classdesk/classdesk-backend/internal/pkg/logger"
	"github.com/classdesk/classdesk-backend/internal/types"
)

// Action is the closed set of protected operations.
type Action int

const (
	ActionCourseView Action = iota
	ActionCourseCreate
	ActionCourseUpdate
	ActionCourseDelete

	ActionRosterAddInstructor
	ActionRosterRemoveInstructor
	ActionRosterAddStudent
	ActionRosterRemoveStudent
	ActionRosterReplaceStudents

	ActionTopicCreate
	ActionTopicUpdate
	ActionTopicDelete
	ActionTopicReorder

	ActionMaterialCreate
	ActionMaterialUpdate
	ActionMaterialDelete
	ActionMaterialView
	ActionMaterialDownload

	ActionGradeCreate
	ActionGradeReplace
	ActionGradeDelete
	ActionGradeView
	ActionGradeViewOwn
	ActionGradeViewMine

	ActionCommentCreate
	ActionCommentView
	ActionCommentEdit
	ActionCommentDelete
	ActionReplyEdit
	ActionReplyDelete

	ActionPromoteAdmin
	ActionProfileViewSelf
)

var actionNames = map[Action]string{
	ActionCourseView:             "course.view",
	ActionCourseCreate:           "course.create",
	ActionCourseUpdate:           "course.update",
	ActionCourseDelete:           "course.delete",
	ActionRosterAddInstructor:    "roster.add_instructor",
	ActionRosterRemoveInstructor: "roster.remove_instructor",
	ActionRosterAddStudent:       "roster.add_student",
	ActionRosterRemoveStudent:    "roster.remove_student",
	ActionRosterReplaceStudents:  "roster.replace_students",
	ActionTopicCreate:            "topic.create",
	ActionTopicUpdate:            "topic.update",
	ActionTopicDelete:            "topic.delete",
	ActionTopicReorder:           "topic.reorder",
	ActionMaterialCreate:         "material.create",
	ActionMaterialUpdate:         "material.update",
	ActionMaterialDelete:         "material.delete",
	ActionMaterialView:           "material.view",
	ActionMaterialDownload:       "material.download",
	ActionGradeCreate:            "grade.create",
	ActionGradeReplace:           "grade.replace",
	ActionGradeDelete:            "grade.delete",
	ActionGradeView:              "grade.view",
	ActionGradeViewOwn:           "grade.view_own",
	ActionGradeViewMine:          "grade.view_mine",
	ActionCommentCreate:          "comment.create",
	ActionCommentView:            "comment.view",
	ActionCommentEdit:            "comment.edit",
	ActionCommentDelete:          "comment.delete",
	ActionReplyEdit:              "reply.edit",
	ActionReplyDelete:            "reply.delete",
	ActionPromoteAdmin:           "user.promote_admin",
	ActionProfileViewSelf:        "profile.view_self",
}

func (a Action) String() string {
	if n, ok := actionNames[a]; ok {
		return n
	}
	return "unknown"
}

// requiresInstructor: mutations of a course's content, roster and
// grades, plus the instructor-wide grade view.
func (a Action) requiresInstructor() bool {
	switch a {
	case ActionCourseUpdate, ActionCourseDelete,
		ActionRosterAddInstructor, ActionRosterRemoveInstructor,
		ActionRosterAddStudent, ActionRosterRemoveStudent, ActionRosterReplaceStudents,
		ActionTopicCreate, ActionTopicUpdate, ActionTopicDelete, ActionTopicReorder,
		ActionMaterialCreate, ActionMaterialUpdate, ActionMaterialDelete,
		ActionGradeCreate, ActionGradeReplace, ActionGradeDelete, ActionGradeView:
		return true
	}
	return false
}

// requiresMembership: read access any member of the course has.
func (a Action) requiresMembership() bool {
	switch a {
	case ActionCourseView, ActionMaterialView, ActionMaterialDownload,
		ActionGradeViewMine,
		ActionCommentCreate, ActionCommentView:
		return true
	}
	return false
}

func (a Action) selfScoped() bool {
	return a == ActionGradeViewOwn || a == ActionProfileViewSelf
}

// ownerModerated: the author always may, and any instructor of the
// course may (moderation).
func (a Action) ownerModerated() bool {
	switch a {
	case ActionCommentEdit, ActionCommentDelete, ActionReplyEdit, ActionReplyDelete:
		return true
	}
	return false
}

// moderationAuthor is the author whose ownership breaks the moderation
// tie for a: the targeted reply's author for reply actions, the
// comment's author otherwise.
func (r *Resolved) moderationAuthor(a Action) (uuid.UUID, bool) {
	if r == nil {
		return uuid.Nil, false
	}
	if a == ActionReplyEdit || a == ActionReplyDelete {
		if r.Reply == nil {
			return uuid.Nil, false
		}
		return r.Reply.AuthorID, true
	}
	if r.Comment == nil {
		return uuid.Nil, false
	}
	return r.Comment.AuthorID, true
}

// Decision is the output of policy evaluation; Reason is set on DENY.
type Decision struct {
	Allowed bool
	Reason  Reason
}

func allow() Decision             { return Decision{Allowed: true} }
func deny(reason Reason) Decision { return Decision{Reason: reason} }

func (d Decision) Denied() bool { return !d.Allowed }

func (d Decision) Err(a Action) error {
	if d.Allowed {
		return nil
	}
	return Forbidden(d.Reason, "not authorized for "+a.String())
}

// Evaluator encapsulates every role/relationship rule in the system.
type Evaluator struct {
	log *logger.Logger
}

func NewEvaluator(log *logger.Logger) *Evaluator {
	return &Evaluator{log: log.With("component", "Evaluator")}
}

// Decide applies the rules in precedence order, first match wins:
//
//  0. removing the course creator from its instructor set is denied for
//     everyone, admin included (structural invariant, not a privilege
//     check)
//  1. admin is allowed everything else
//  2. instructor-relationship actions need IsInstructorOf; comment and
//     reply edit/delete also admit the original author
//  3. read-membership actions need instructor or student membership
//  4. self-scoped actions need subject == principal
//  5. everything else is denied: NotMember when the action is
//     relationship-gated, InsufficientRole when it is purely role-gated
func (e *Evaluator) Decide(p Principal, r *Resolved, a Action) Decision {
	if a == ActionRosterRemoveInstructor && r != nil && r.Course != nil &&
		r.TargetUserID != uuid.Nil && r.TargetUserID == r.Course.CreatorID {
		return deny(ReasonCannotRemoveCreator)
	}

	if p.Role == types.RoleAdmin {
		return allow()
	}

	switch {
	case a.ownerModerated():
		if author, ok := r.moderationAuthor(a); ok && author == p.ID {
			return allow()
		}
		if r.IsInstructorOf(p.ID) {
			return allow()
		}
		return deny(ReasonNotMember)

	case a.requiresInstructor():
		if r.IsInstructorOf(p.ID) {
			return allow()
		}
		return deny(ReasonNotMember)

	case a.requiresMembership():
		if r.IsInstructorOf(p.ID) || r.IsStudentOf(p.ID) {
			return allow()
		}
		return deny(ReasonNotMember)

	case a.selfScoped():
		if r != nil && r.SubjectUserID != uuid.Nil && r.SubjectUserID == p.ID {
			return allow()
		}
		return deny(ReasonNotMember)

	case a == ActionCourseCreate:
		if p.Role == types.RoleProfessor {
			return allow()
		}
		return deny(ReasonInsufficientRole)

	case a == ActionPromoteAdmin:
		// only-admin-may-promote; admin already returned above
		return deny(ReasonInsufficientRole)
	}

	return deny(ReasonInsufficientRole)
}
