package repository

import (
	"context"

	"product-importer/models"

	"gorm.io/gorm"
)

// WebhookRepository defines data-access operations for webhooks.
type WebhookRepository interface {
	Create(ctx context.Context, w *models.Webhook) error
	FindByID(ctx context.Context, id uint) (*models.Webhook, error)
	List(ctx context.Context, enabled *bool, skip, limit int) ([]models.Webhook, error)
	Patch(ctx context.Context, id uint, patch models.WebhookPatch) (*models.Webhook, error)
	Delete(ctx context.Context, id uint) error
}

// GormWebhookRepository implements WebhookRepository using GORM.
type GormWebhookRepository struct {
	db *gorm.DB
}

func NewGormWebhookRepository(db *gorm.DB) WebhookRepository {
	return &GormWebhookRepository{db: db}
}

func (r *GormWebhookRepository) Create(ctx context.Context, w *models.Webhook) error {
	return r.db.WithContext(ctx).Create(w).Error
}

func (r *GormWebhookRepository) FindByID(ctx context.Context, id uint) (*models.Webhook, error) {
	var w models.Webhook
	if err := r.db.WithContext(ctx).First(&w, id).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *GormWebhookRepository) List(ctx context.Context, enabled *bool, skip, limit int) ([]models.Webhook, error) {
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}

	query := r.db.WithContext(ctx).Model(&models.Webhook{})
	if enabled != nil {
		query = query.Where("enabled = ?", *enabled)
	}

	var webhooks []models.Webhook
	err := query.Order("id DESC").
		Offset(skip).
		Limit(limit).
		Find(&webhooks).Error
	return webhooks, err
}

func (r *GormWebhookRepository) Patch(ctx context.Context, id uint, patch models.WebhookPatch) (*models.Webhook, error) {
	var w models.Webhook
	if err := r.db.WithContext(ctx).First(&w, id).Error; err != nil {
		return nil, err
	}

	if patch.URL != nil {
		w.URL = *patch.URL
	}
	if patch.Event != nil {
		w.Event = *patch.Event
	}
	if patch.Enabled != nil {
		w.Enabled = *patch.Enabled
	}

	if err := r.db.WithContext(ctx).Save(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *GormWebhookRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Webhook{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
