package models

import "time"

// Webhook is a registered outbound endpoint. The event field is
// descriptive metadata; it does not filter dispatch.
type Webhook struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	URL       string    `json:"url" gorm:"size:2048;not null"`
	Event     string    `json:"event" gorm:"size:128;not null"`
	Enabled   bool      `json:"enabled" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (Webhook) TableName() string { return "webhooks" }

// WebhookPatch enumerates the fields a partial update may change.
type WebhookPatch struct {
	URL     *string `json:"url"`
	Event   *string `json:"event"`
	Enabled *bool   `json:"enabled"`
}

// DeliveryResult is the outcome of a single webhook delivery attempt.
// Exactly one of StatusCode/Error is meaningful: network-level failures
// populate Error, everything else is a completed HTTP exchange.
type DeliveryResult struct {
	StatusCode int    `json:"status_code,omitempty"`
	Body       string `json:"text,omitempty"`
	Error      string `json:"error,omitempty"`
}
