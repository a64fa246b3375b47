package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/classdesk/classdesk-backend/internal/pkg/logger"
	"github.com/classdesk/classdesk-backend/internal/services"
)

type CommentHandler struct {
	log            *logger.Logger
	commentService services.CommentService
}

func NewCommentHandler(log *logger.Logger, commentService services.CommentService) *CommentHandler {
	return &CommentHandler{
		log:            log.With("handler", "CommentHandler"),
		commentService: commentService,
	}
}

type commentBodyRequest struct {
	Body string `json:"body"`
}

func (h *CommentHandler) Create(c *gin.Context) {
	principal, resolved, ok := principalAndResolved(c)
	if !ok {
		return
	}
	materialID, err := uuid.Parse(c.Param("material_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_material_id", err)
		return
	}
	var req commentBodyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	comment, err := h.commentService.Create(c.Request.Context(), principal, resolved, materialID, req.Body)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{"comment": comment})
}

func (h *CommentHandler) ListByMaterial(c *gin.Context) {
	_, resolved, ok := principalAndResolved(c)
	if !ok {
		return
	}
	materialID, err := uuid.Parse(c.Param("material_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_material_id", err)
		return
	}
	comments, err := h.commentService.ListByMaterial(c.Request.Context(), resolved, materialID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"comments": comments})
}

func (h *CommentHandler) Edit(c *gin.Context) {
	_, resolved, ok := principalAndResolved(c)
	if !ok {
		return
	}
	var req commentBodyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	comment, err := h.commentService.Edit(c.Request.Context(), resolved, req.Body)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"comment": comment})
}

func (h *CommentHandler) Delete(c *gin.Context) {
	_, resolved, ok := principalAndResolved(c)
	if !ok {
		return
	}
	if err := h.commentService.Delete(c.Request.Context(), resolved); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

func (h *CommentHandler) Reply(c *gin.Context) {
	principal, resolved, ok := principalAndResolved(c)
	if !ok {
		return
	}
	var req commentBodyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	reply, err := h.commentService.Reply(c.Request.Context(), principal, resolved, req.Body)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{"reply": reply})
}

func (h *CommentHandler) EditReply(c *gin.Context) {
	_, resolved, ok := principalAndResolved(c)
	if !ok {
		return
	}
	var req commentBodyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	reply, err := h.commentService.EditReply(c.Request.Context(), resolved, req.Body)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"reply": reply})
}

func (h *CommentHandler) DeleteReply(c *gin.Context) {
	_, resolved, ok := principalAndResolved(c)
	if !ok {
		return
	}
	if err := h.commentService.DeleteReply(c.Request.Context(), resolved); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}
