package controllers

import (
	"encoding/json"
	"net/http"

	"product-importer/models"
	"product-importer/repository"
	"product-importer/services"
	"product-importer/tasks"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreateWebhookRequest defines the expected structure for creating a webhook.
type CreateWebhookRequest struct {
	URL     string `json:"url" validate:"required,url"`
	Event   string `json:"event" validate:"required"`
	Enabled *bool  `json:"enabled"`
}

// WebhookController handles webhook CRUD and test delivery requests.
type WebhookController struct {
	repo      repository.WebhookRepository
	runner    *tasks.Runner
	validator *RequestValidator
}

func NewWebhookController(repo repository.WebhookRepository, runner *tasks.Runner, validator *RequestValidator) *WebhookController {
	return &WebhookController{repo: repo, runner: runner, validator: validator}
}

// ListWebhooks returns webhooks with an optional enabled filter.
func (wc *WebhookController) ListWebhooks(c *gin.Context) {
	skip, limit, err := wc.validator.ParseSkipLimit(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// The query param is named "active" for backward compatibility even
	// though it filters the enabled column.
	enabled, err := wc.validator.ParseOptionalBool(c, "active")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	webhooks, err := wc.repo.List(c.Request.Context(), enabled, skip, limit)
	if err != nil {
		zap.L().Error("Failed to list webhooks", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list webhooks"})
		return
	}

	c.JSON(http.StatusOK, webhooks)
}

// CreateWebhook registers a new webhook endpoint.
func (wc *WebhookController) CreateWebhook(c *gin.Context) {
	var req CreateWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := wc.validator.ValidateStruct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	webhook := &models.Webhook{URL: req.URL, Event: req.Event, Enabled: enabled}
	if err := wc.repo.Create(c.Request.Context(), webhook); err != nil {
		zap.L().Error("Failed to create webhook", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create webhook"})
		return
	}

	c.JSON(http.StatusOK, webhook)
}

// UpdateWebhook partially updates an existing webhook.
func (wc *WebhookController) UpdateWebhook(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var patch models.WebhookPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	webhook, err := wc.repo.Patch(c.Request.Context(), id, patch)
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Webhook not found"})
		return
	}
	if err != nil {
		zap.L().Error("Failed to patch webhook", zap.Uint("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update webhook"})
		return
	}

	c.JSON(http.StatusOK, webhook)
}

// DeleteWebhook deletes a webhook by ID.
func (wc *WebhookController) DeleteWebhook(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = wc.repo.Delete(c.Request.Context(), id)
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Webhook not found"})
		return
	}
	if err != nil {
		zap.L().Error("Failed to delete webhook", zap.Uint("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete webhook"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// TestWebhook triggers an asynchronous test delivery to the webhook's URL.
// The outcome lands in the task's result store, not the progress channel.
func (wc *WebhookController) TestWebhook(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	webhook, err := wc.repo.FindByID(c.Request.Context(), id)
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Webhook not found"})
		return
	}
	if err != nil {
		zap.L().Error("Failed to load webhook", zap.Uint("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load webhook"})
		return
	}

	taskID, err := wc.runner.Submit(c.Request.Context(), services.TaskKindDeliverWebhook, services.DeliveryPayload{
		URL:     webhook.URL,
		Payload: mustJSON(gin.H{"event": webhook.Event, "test": true}),
	})
	if err != nil {
		zap.L().Error("Failed to submit delivery task", zap.Uint("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue delivery"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"task_id": taskID, "status": "Test triggered"})
}

func mustJSON(v interface{}) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}
