package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/classdesk/classdesk-backend/internal/authz"
	"github.com/classdesk/classdesk-backend/internal/handlers"
	"github.com/classdesk/classdesk-backend/internal/pkg/logger"
	"github.com/classdesk/classdesk-backend/internal/requestdata"
	"github.com/classdesk/classdesk-backend/internal/types"
)

// AuthMiddleware is the decision enforcement point: it runs the
// resolver -> locator -> evaluator pipeline in front of every protected
// route and short-circuits on DENY before any handler runs.
type AuthMiddleware struct {
	log       *logger.Logger
	resolver  *authz.Resolver
	locator   *authz.Locator
	evaluator *authz.Evaluator
}

func NewAuthMiddleware(log *logger.Logger, resolver *authz.Resolver, locator *authz.Locator, evaluator *authz.Evaluator) *AuthMiddleware {
	return &AuthMiddleware{
		log:       log.With("middleware", "AuthMiddleware"),
		resolver:  resolver,
		locator:   locator,
		evaluator: evaluator,
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return c.Query("token")
}

func (am *AuthMiddleware) abort(c *gin.Context, err error) {
	ae := authz.AsError(err)
	if ae.Kind == authz.KindInternal {
		am.log.Error("Pipeline failure", "error", ae)
	}
	handlers.RespondAuthzError(c, ae)
	c.Abort()
}

// RequireAuth decodes the credential and attaches the principal. The
// role check runs only after successful verification.
func (am *AuthMiddleware) RequireAuth(allowed ...types.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := am.resolver.ResolveWithRoles(c.Request.Context(), extractToken(c), allowed...)
		if err != nil {
			am.abort(c, err)
			return
		}
		c.Request = c.Request.WithContext(requestdata.WithPrincipal(c.Request.Context(), principal))
		c.Next()
	}
}

func paramsFrom(c *gin.Context) authz.Params {
	return authz.Params{
		Ref:           c.Param("course"),
		CourseID:      firstNonEmpty(c.Param("course_id"), c.Query("course_id")),
		GenericID:     firstNonEmpty(c.Param("id"), c.Query("id")),
		GradeRecordID: c.Param("grade_record_id"),
		CommentID:     c.Param("comment_id"),
		ReplyID:       c.Param("reply_id"),
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// ResolveCourse fetches the course once and attaches it; handlers and
// the evaluator reuse the same document.
func (am *AuthMiddleware) ResolveCourse() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := requestdata.GetPrincipal(c.Request.Context())
		if !ok {
			am.abort(c, authz.Unauthenticated("missing credential"))
			return
		}
		resolved, err := am.locator.LocateCourse(c.Request.Context(), principal, paramsFrom(c))
		if err != nil {
			am.abort(c, err)
			return
		}
		c.Request = c.Request.WithContext(requestdata.WithResolved(c.Request.Context(), resolved))
		c.Next()
	}
}

func (am *AuthMiddleware) ResolveGradeRecord() gin.HandlerFunc {
	return func(c *gin.Context) {
		resolved, err := am.locator.LocateGradeRecord(c.Request.Context(), paramsFrom(c))
		if err != nil {
			am.abort(c, err)
			return
		}
		c.Request = c.Request.WithContext(requestdata.WithResolved(c.Request.Context(), resolved))
		c.Next()
	}
}

func (am *AuthMiddleware) ResolveComment() gin.HandlerFunc {
	return func(c *gin.Context) {
		resolved, err := am.locator.LocateComment(c.Request.Context(), paramsFrom(c))
		if err != nil {
			am.abort(c, err)
			return
		}
		c.Request = c.Request.WithContext(requestdata.WithResolved(c.Request.Context(), resolved))
		c.Next()
	}
}

// ResolveReply runs after ResolveComment and narrows the attached
// context to the targeted reply.
func (am *AuthMiddleware) ResolveReply() gin.HandlerFunc {
	return func(c *gin.Context) {
		resolved, err := am.locator.LocateReply(c.Request.Context(), requestdata.GetResolved(c.Request.Context()), paramsFrom(c))
		if err != nil {
			am.abort(c, err)
			return
		}
		c.Request = c.Request.WithContext(requestdata.WithResolved(c.Request.Context(), resolved))
		c.Next()
	}
}

// TargetUserParam records which user a roster edit points at, so the
// creator invariant can be evaluated.
func (am *AuthMiddleware) TargetUserParam(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		resolved := requestdata.GetResolved(c.Request.Context())
		if resolved == nil {
			am.abort(c, authz.NotFound("resource not resolved"))
			return
		}
		id, err := uuid.Parse(c.Param(name))
		if err != nil {
			am.abort(c, authz.NotFound("target user not found"))
			return
		}
		c.Request = c.Request.WithContext(requestdata.WithResolved(c.Request.Context(), resolved.WithTarget(id)))
		c.Next()
	}
}

// SubjectUserParam scopes a self-only read to the user named in the
// route.
func (am *AuthMiddleware) SubjectUserParam(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		resolved := requestdata.GetResolved(c.Request.Context())
		if resolved == nil {
			resolved = &authz.Resolved{}
		}
		id, err := uuid.Parse(c.Param(name))
		if err != nil {
			am.abort(c, authz.NotFound("subject user not found"))
			return
		}
		c.Request = c.Request.WithContext(requestdata.WithResolved(c.Request.Context(), resolved.WithSubject(id)))
		c.Next()
	}
}

// Require evaluates policy for the already-resolved context. Locator
// ordering is guaranteed by route wiring: Resolve* always precedes
// Require in the chain.
func (am *AuthMiddleware) Require(action authz.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := requestdata.GetPrincipal(c.Request.Context())
		if !ok {
			am.abort(c, authz.Unauthenticated("missing credential"))
			return
		}
		resolved := requestdata.GetResolved(c.Request.Context())
		decision := am.evaluator.Decide(principal, resolved, action)
		if decision.Denied() {
			am.log.Debug("Denied", "action", action.String(), "principal", principal.ID, "reason", decision.Reason)
			am.abort(c, decision.Err(action))
			return
		}
		c.Next()
	}
}
