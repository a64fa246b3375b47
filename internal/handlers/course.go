package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/classdesk/classdesk-backend/internal/authz"
	"github.com/classdesk/classdesk-backend/internal/pkg/logger"
	"github.com/classdesk/classdesk-backend/internal/requestdata"
	"github.com/classdesk/classdesk-backend/internal/services"
)

type CourseHandler struct {
	log           *logger.Logger
	courseService services.CourseService
}

func NewCourseHandler(log *logger.Logger, courseService services.CourseService) *CourseHandler {
	return &CourseHandler{
		log:           log.With("handler", "CourseHandler"),
		courseService: courseService,
	}
}

// principalAndResolved pulls the decision context the middleware chain
// attached; both are guaranteed present behind protected routes.
func principalAndResolved(c *gin.Context) (authz.Principal, *authz.Resolved, bool) {
	principal, ok := requestdata.GetPrincipal(c.Request.Context())
	if !ok {
		RespondError(c, http.StatusUnauthorized, "unauthenticated", nil)
		return authz.Principal{}, nil, false
	}
	return principal, requestdata.GetResolved(c.Request.Context()), true
}

func (h *CourseHandler) Create(c *gin.Context) {
	principal, _, ok := principalAndResolved(c)
	if !ok {
		return
	}
	var input services.CreateCourseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	course, err := h.courseService.Create(c.Request.Context(), principal, input)
	if err != nil {
		h.log.Warn("Create course failed", "error", err, "user_id", principal.ID)
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{"course": course})
}

func (h *CourseHandler) Get(c *gin.Context) {
	_, resolved, ok := principalAndResolved(c)
	if !ok {
		return
	}
	RespondOK(c, gin.H{"course": resolved.Course})
}

func (h *CourseHandler) List(c *gin.Context) {
	principal, _, ok := principalAndResolved(c)
	if !ok {
		return
	}
	courses, err := h.courseService.ListForUser(c.Request.Context(), principal)
	if err != nil {
		h.log.Error("List courses failed", "error", err, "user_id", principal.ID)
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"courses": courses})
}

func (h *CourseHandler) Update(c *gin.Context) {
	_, resolved, ok := principalAndResolved(c)
	if !ok {
		return
	}
	var input services.UpdateCourseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	course, err := h.courseService.Update(c.Request.Context(), resolved, input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"course": course})
}

func (h *CourseHandler) Delete(c *gin.Context) {
	_, resolved, ok := principalAndResolved(c)
	if !ok {
		return
	}
	if err := h.courseService.Delete(c.Request.Context(), resolved); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

func (h *CourseHandler) rosterEdit(c *gin.Context, edit func(*gin.Context, *authz.Resolved, uuid.UUID) error) {
	_, resolved, ok := principalAndResolved(c)
	if !ok {
		return
	}
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
		return
	}
	if err := edit(c, resolved, userID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"updated": true})
}

func (h *CourseHandler) AddInstructor(c *gin.Context) {
	h.rosterEdit(c, func(c *gin.Context, r *authz.Resolved, id uuid.UUID) error {
		return h.courseService.AddInstructor(c.Request.Context(), r, id)
	})
}

func (h *CourseHandler) RemoveInstructor(c *gin.Context) {
	h.rosterEdit(c, func(c *gin.Context, r *authz.Resolved, id uuid.UUID) error {
		return h.courseService.RemoveInstructor(c.Request.Context(), r, id)
	})
}

func (h *CourseHandler) AddStudent(c *gin.Context) {
	h.rosterEdit(c, func(c *gin.Context, r *authz.Resolved, id uuid.UUID) error {
		return h.courseService.AddStudent(c.Request.Context(), r, id)
	})
}

func (h *CourseHandler) RemoveStudent(c *gin.Context) {
	h.rosterEdit(c, func(c *gin.Context, r *authz.Resolved, id uuid.UUID) error {
		return h.courseService.RemoveStudent(c.Request.Context(), r, id)
	})
}

type replaceStudentsRequest struct {
	UserIDs []uuid.UUID `json:"user_ids"`
}

func (h *CourseHandler) ReplaceStudents(c *gin.Context) {
	_, resolved, ok := principalAndResolved(c)
	if !ok {
		return
	}
	var req replaceStudentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	students, err := h.courseService.ReplaceStudentRoster(c.Request.Context(), resolved, req.UserIDs)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"students": students})
}
