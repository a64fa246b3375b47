package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/classdesk/classdesk-backend/internal/pkg/logger"
	"github.com/classdesk/classdesk-backend/internal/services"
)

type GradeHandler struct {
	log          *logger.Logger
	gradeService services.GradeService
}

func NewGradeHandler(log *logger.Logger, gradeService services.GradeService) *GradeHandler {
	return &GradeHandler{
		log:          log.With("handler", "GradeHandler"),
		gradeService: gradeService,
	}
}

type createGradeRequest struct {
	StudentID uuid.UUID `json:"student_id"`
}

func (h *GradeHandler) Create(c *gin.Context) {
	_, resolved, ok := principalAndResolved(c)
	if !ok {
		return
	}
	var req createGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	record, err := h.gradeService.Create(c.Request.Context(), resolved, req.StudentID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{"grade_record": record})
}

func (h *GradeHandler) ListByCourse(c *gin.Context) {
	_, resolved, ok := principalAndResolved(c)
	if !ok {
		return
	}
	records, err := h.gradeService.ListByCourse(c.Request.Context(), resolved)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"grade_records": records})
}

func (h *GradeHandler) Get(c *gin.Context) {
	_, resolved, ok := principalAndResolved(c)
	if !ok {
		return
	}
	record, err := h.gradeService.Get(c.Request.Context(), resolved)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"grade_record": record})
}

// GetOwn serves the student's own grade list in a course; the
// self-scope decision already matched the subject to the principal.
func (h *GradeHandler) GetOwn(c *gin.Context) {
	principal, resolved, ok := principalAndResolved(c)
	if !ok {
		return
	}
	record, err := h.gradeService.GetOwn(c.Request.Context(), resolved, principal.ID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"grade_record": record})
}

type replaceAssessmentsRequest struct {
	Assessments []services.AssessmentInput `json:"assessments"`
}

func (h *GradeHandler) ReplaceAssessments(c *gin.Context) {
	_, resolved, ok := principalAndResolved(c)
	if !ok {
		return
	}
	var req replaceAssessmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	record, err := h.gradeService.ReplaceAssessments(c.Request.Context(), resolved, req.Assessments)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"grade_record": record})
}

func (h *GradeHandler) Delete(c *gin.Context) {
	_, resolved, ok := principalAndResolved(c)
	if !ok {
		return
	}
	if err := h.gradeService.Delete(c.Request.Context(), resolved); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}
