package repository_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"product-importer/models"
	"product-importer/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func webhookRows(webhooks ...models.Webhook) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "url", "event", "enabled", "created_at"})
	now := time.Now()
	for _, w := range webhooks {
		rows.AddRow(w.ID, w.URL, w.Event, w.Enabled, now)
	}
	return rows
}

func TestWebhookCreate(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormWebhookRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "webhooks"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	w := &models.Webhook{URL: "https://example.com/hook", Event: "import.completed", Enabled: true}
	err := repo.Create(context.Background(), w)
	assert.NoError(t, err)
	assert.Equal(t, uint(1), w.ID)
}

func TestWebhookList_FiltersEnabled(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormWebhookRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "webhooks"`)).
		WillReturnRows(webhookRows(models.Webhook{ID: 1, URL: "https://example.com/hook", Event: "import.completed", Enabled: true}))

	enabled := true
	webhooks, err := repo.List(context.Background(), &enabled, 0, 10)
	assert.NoError(t, err)
	assert.Len(t, webhooks, 1)
}

func TestWebhookPatch_TogglesEnabled(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormWebhookRepository(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "webhooks"`)).
		WithArgs(3, 1).
		WillReturnRows(webhookRows(models.Webhook{ID: 3, URL: "https://example.com/hook", Event: "import.completed", Enabled: true}))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "webhooks"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	enabled := false
	w, err := repo.Patch(context.Background(), 3, models.WebhookPatch{Enabled: &enabled})
	assert.NoError(t, err)
	assert.False(t, w.Enabled)
	assert.Equal(t, "import.completed", w.Event)
}

func TestWebhookDelete_NotFound(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	repo := repository.NewGormWebhookRepository(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "webhooks"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), 9)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
