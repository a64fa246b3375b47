package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/classdesk/classdesk-backend/internal/pkg/logger"
	"github.com/classdesk/classdesk-backend/internal/services"
)

type MaterialHandler struct {
	log             *logger.Logger
	materialService services.MaterialService
}

func NewMaterialHandler(log *logger.Logger, materialService services.MaterialService) *MaterialHandler {
	return &MaterialHandler{
		log:             log.With("handler", "MaterialHandler"),
		materialService: materialService,
	}
}

// materialInput parses the multipart form: a "material" JSON part plus
// an optional "file" part. A plain JSON body works too when no
// attachment is sent.
func materialInput(c *gin.Context) (services.MaterialInput, *services.Attachment, error) {
	var input services.MaterialInput
	if c.ContentType() != "multipart/form-data" {
		if err := c.ShouldBindJSON(&input); err != nil {
			return input, nil, err
		}
		return input, nil, nil
	}
	if raw := c.PostForm("material"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &input); err != nil {
			return input, nil, err
		}
	} else {
		input.Title = c.PostForm("title")
		input.ExternalURL = c.PostForm("external_url")
		if deadline := c.PostForm("deadline"); deadline != "" {
			t, err := time.Parse(time.RFC3339, deadline)
			if err != nil {
				return input, nil, err
			}
			input.Deadline = &t
		}
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		// no attachment part
		return input, nil, nil
	}
	f, err := fileHeader.Open()
	if err != nil {
		return input, nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return input, nil, err
	}
	return input, &services.Attachment{
		Name: fileHeader.Filename,
		MIME: fileHeader.Header.Get("Content-Type"),
		Data: data,
	}, nil
}

func (h *MaterialHandler) Create(c *gin.Context) {
	_, resolved, ok := principalAndResolved(c)
	if !ok {
		return
	}
	topicID, err := uuid.Parse(c.Param("topic_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_topic_id", err)
		return
	}
	input, attachment, err := materialInput(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	material, err := h.materialService.Create(c.Request.Context(), resolved, topicID, input, attachment)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, gin.H{"material": material})
}

func (h *MaterialHandler) ListByTopic(c *gin.Context) {
	_, resolved, ok := principalAndResolved(c)
	if !ok {
		return
	}
	topicID, err := uuid.Parse(c.Param("topic_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_topic_id", err)
		return
	}
	materials, err := h.materialService.ListByTopic(c.Request.Context(), resolved, topicID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"materials": materials})
}

func (h *MaterialHandler) Get(c *gin.Context) {
	_, resolved, ok := principalAndResolved(c)
	if !ok {
		return
	}
	materialID, err := uuid.Parse(c.Param("material_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_material_id", err)
		return
	}
	material, err := h.materialService.Get(c.Request.Context(), resolved, materialID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"material": material})
}

func (h *MaterialHandler) Update(c *gin.Context) {
	_, resolved, ok := principalAndResolved(c)
	if !ok {
		return
	}
	materialID, err := uuid.Parse(c.Param("material_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_material_id", err)
		return
	}
	input, attachment, err := materialInput(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	material, err := h.materialService.Update(c.Request.Context(), resolved, materialID, input, attachment)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"material": material})
}

func (h *MaterialHandler) Delete(c *gin.Context) {
	_, resolved, ok := principalAndResolved(c)
	if !ok {
		return
	}
	materialID, err := uuid.Parse(c.Param("material_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_material_id", err)
		return
	}
	if err := h.materialService.Delete(c.Request.Context(), resolved, materialID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

// Download streams the attachment only after the membership decision
// allowed it; a DENY upstream means no body is ever sent.
func (h *MaterialHandler) Download(c *gin.Context) {
	_, resolved, ok := principalAndResolved(c)
	if !ok {
		return
	}
	materialID, err := uuid.Parse(c.Param("material_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_material_id", err)
		return
	}
	material, err := h.materialService.Download(c.Request.Context(), resolved, materialID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	mime := material.AttachmentMIME
	if mime == "" {
		mime = "application/octet-stream"
	}
	c.Header("Content-Disposition", `attachment; filename="`+material.AttachmentName+`"`)
	c.Data(http.StatusOK, mime, material.AttachmentData)
}
