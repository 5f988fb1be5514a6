package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"product-importer/models"
	"product-importer/tasks"

	"go.uber.org/zap"
)

const (
	deliveryTimeout = 10 * time.Second
	maxBodyBytes    = 1000
)

// DeliveryPayload is the task payload for a webhook delivery.
type DeliveryPayload struct {
	URL     string          `json:"url"`
	Payload json.RawMessage `json:"payload"`
}

// WebhookDispatcher performs single-attempt, best-effort HTTP delivery.
// There is no retry, no backoff and no queue; failures are captured in the
// result instead of raised.
type WebhookDispatcher struct {
	client *http.Client
	logger *zap.Logger
}

func NewWebhookDispatcher(logger *zap.Logger) *WebhookDispatcher {
	return &WebhookDispatcher{
		client: &http.Client{Timeout: deliveryTimeout},
		logger: logger,
	}
}

// Deliver POSTs the payload as JSON to url exactly once. Any failure to
// complete the exchange is returned inside the DeliveryResult.
func (d *WebhookDispatcher) Deliver(ctx context.Context, url string, payload interface{}) models.DeliveryResult {
	body, err := json.Marshal(payload)
	if err != nil {
		return models.DeliveryResult{Error: fmt.Sprintf("marshal payload: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return models.DeliveryResult{Error: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		d.logger.Warn("webhook delivery failed",
			zap.String("url", url),
			zap.Error(err),
		)
		return models.DeliveryResult{Error: err.Error()}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return models.DeliveryResult{StatusCode: resp.StatusCode, Error: fmt.Sprintf("read response: %v", err)}
	}

	return models.DeliveryResult{StatusCode: resp.StatusCode, Body: string(b)}
}

// HandleDeliveryTask is the tasks.Handler for TaskKindDeliverWebhook.
// Delivery failures are a normal result, not a task failure: the caller
// reads the outcome from the task's result store either way.
func (d *WebhookDispatcher) HandleDeliveryTask(ctx context.Context, t *tasks.Task) (interface{}, error) {
	var p DeliveryPayload
	if err := json.Unmarshal(t.Payload, &p); err != nil {
		return nil, fmt.Errorf("parse delivery payload: %w", err)
	}
	return d.Deliver(ctx, p.URL, p.Payload), nil
}
