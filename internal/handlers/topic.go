package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/classdesk/classdesk-backend/internal/pkg/logger"
	"github.com/classdesk/classdesk-backend/internal/services"
)

type TopicHandler struct {
	log          *logger.Logger
	topicService services.TopicService
}

func NewTopicHandler(log *logger.Logger, topicService services.TopicService) *TopicHandler {
	return &TopicHandler{
		log:          log.With("handler", "TopicHandler"),
		topicService: topicService,
	}
}

func (h *TopicHandler) List(c *gin.Context) {
	_, resolved, ok := principalAndResolved(c)
	if !ok {
		return
	}
	topics, err := h.topicService.List(c.Request.Context(), resolved)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"topics": topics})
}

func (h *TopicHandler) Create(c *gin.Context) {
	_, resolved, ok := principalAndResolved(c)
	if !ok {
		return
	}
	var input services.TopicInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	topic, err := h.topicService.Create(c.Request.Context(), resolved, input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{"topic": topic})
}

func (h *TopicHandler) Update(c *gin.Context) {
	_, resolved, ok := principalAndResolved(c)
	if !ok {
		return
	}
	topicID, err := uuid.Parse(c.Param("topic_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_topic_id", err)
		return
	}
	var input services.TopicInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	topic, err := h.topicService.Update(c.Request.Context(), resolved, topicID, input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"topic": topic})
}

func (h *TopicHandler) Delete(c *gin.Context) {
	_, resolved, ok := principalAndResolved(c)
	if !ok {
		return
	}
	topicID, err := uuid.Parse(c.Param("topic_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_topic_id", err)
		return
	}
	if err := h.topicService.Delete(c.Request.Context(), resolved, topicID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

type reorderRequest struct {
	TopicIDs []uuid.UUID `json:"topic_ids"`
}

func (h *TopicHandler) Reorder(c *gin.Context) {
	_, resolved, ok := principalAndResolved(c)
	if !ok {
		return
	}
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	topics, err := h.topicService.Reorder(c.Request.Context(), resolved, req.TopicIDs)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"topics": topics})
}
