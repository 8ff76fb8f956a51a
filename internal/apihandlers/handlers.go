package apihandlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"triage/internal/app"
	"triage/internal/models"
	"triage/internal/services"
)

type APIHandler struct {
	App *app.App
}

func NewAPIHandler(a *app.App) *APIHandler {
	return &APIHandler{App: a}
}

// ClassifyHandler accepts a skill request body and answers with one result per record.
// The response is 200 JSON unless the body itself is unreadable or malformed.
func (h *APIHandler) ClassifyHandler(c *gin.Context) {
	body := c.Request.Body
	if limit := h.App.Config.Server.MaxBodyBytes; limit > 0 {
		body = http.MaxBytesReader(c.Writer, body, limit)
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		h.App.Logger.WithField("request_id", c.GetString(requestIDKey)).WithError(err).Warn("Failed to read classification request body")
		h.App.Metrics.BatchRejected()
		c.Data(http.StatusBadRequest, services.ContentTypeText, []byte(models.InvalidBodyMessage))
		return
	}

	ctx := c.Request.Context()
	if id := c.GetString(requestIDKey); id != "" {
		ctx = services.WithBatchID(ctx, id)
	}

	resp, status := h.App.BatchHandler.Handle(ctx, raw)
	contentType := services.ContentTypeJSON
	if status != http.StatusOK {
		contentType = services.ContentTypeText
	}
	c.Data(status, contentType, resp)
}

// HealthHandler reports liveness and the active classifier.
func (h *APIHandler) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"classifier": h.App.ClassifierName,
	})
}
