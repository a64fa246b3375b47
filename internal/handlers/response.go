package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classdesk/classdesk-backend/internal/authz"
	"github.com/classdesk/classdesk-backend/internal/services"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

// RespondServiceError routes a business-operation failure: typed authz
// failures keep their taxonomy, invalid input is a 400, anything else
// is internal.
func RespondServiceError(c *gin.Context, err error) {
	var ae *authz.Error
	if errors.As(err, &ae) {
		RespondAuthzError(c, ae)
		return
	}
	var ie *services.InvalidInputError
	if errors.As(err, &ie) {
		RespondError(c, http.StatusBadRequest, "invalid_input", ie)
		return
	}
	RespondAuthzError(c, authz.AsError(err))
}

// RespondAuthzError is the single caller-visible translation of a typed
// pipeline failure. Internal causes are never leaked in release mode.
func RespondAuthzError(c *gin.Context, ae *authz.Error) {
	msg := ae.Message()
	if ae.Kind == authz.KindInternal && gin.Mode() == gin.ReleaseMode {
		msg = "internal error"
	}
	c.JSON(ae.HTTPStatus(), ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    ae.Kind.String(),
			Reason:  string(ae.Reason),
		},
	})
}
