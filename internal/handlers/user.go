package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/classdesk/classdesk-backend/internal/pkg/logger"
	"github.com/classdesk/classdesk-backend/internal/services"
)

type UserHandler struct {
	log         *logger.Logger
	userService services.UserService
}

func NewUserHandler(log *logger.Logger, userService services.UserService) *UserHandler {
	return &UserHandler{
		log:         log.With("handler", "UserHandler"),
		userService: userService,
	}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	principal, _, ok := principalAndResolved(c)
	if !ok {
		return
	}
	user, err := h.userService.GetProfile(c.Request.Context(), principal.ID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"user": user})
}

// GetProfileByID serves /users/:user_id/profile; policy has already
// checked the subject matches the caller (or the caller is admin).
func (h *UserHandler) GetProfileByID(c *gin.Context) {
	_, _, ok := principalAndResolved(c)
	if !ok {
		return
	}
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
		return
	}
	user, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"user": user})
}

func (h *UserHandler) PromoteToAdmin(c *gin.Context) {
	_, _, ok := principalAndResolved(c)
	if !ok {
		return
	}
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
		return
	}
	user, err := h.userService.PromoteToAdmin(c.Request.Context(), userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"user": user})
}
