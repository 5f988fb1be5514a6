package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"product-importer/models"
	"product-importer/pubsub"
	"product-importer/repository"
	"product-importer/tasks"

	"go.uber.org/zap"
)

// Task kinds handled by this service.
const (
	TaskKindImportProducts = "import_products"
	TaskKindDeliverWebhook = "deliver_webhook"
)

// ImportPayload is the task payload for a product CSV import.
type ImportPayload struct {
	FilePath      string `json:"file_path"`
	DefaultActive bool   `json:"default_active"`
}

// ImportService orchestrates one ingestion run end-to-end: parse, bulk
// merge, and a progress narrative on the task's channel.
type ImportService struct {
	products repository.ProductRepository
	broker   pubsub.Broker
	logger   *zap.Logger
}

func NewImportService(products repository.ProductRepository, broker pubsub.Broker, logger *zap.Logger) *ImportService {
	return &ImportService{
		products: products,
		broker:   broker,
		logger:   logger,
	}
}

// HandleImportTask is the tasks.Handler for TaskKindImportProducts. The
// staged upload file is removed unconditionally, success or failure.
func (s *ImportService) HandleImportTask(ctx context.Context, t *tasks.Task) (interface{}, error) {
	var p ImportPayload
	if err := json.Unmarshal(t.Payload, &p); err != nil {
		return nil, fmt.Errorf("parse import payload: %w", err)
	}
	defer os.Remove(p.FilePath)

	data, err := os.ReadFile(p.FilePath)
	if err != nil {
		s.publish(ctx, t.ID, 100, fmt.Sprintf("Error during import: %v", err))
		return nil, fmt.Errorf("read upload: %w", err)
	}

	return s.Run(ctx, t.ID, data, p.DefaultActive)
}

// Run executes one ingestion run for the given task id. Errors are both
// published as the terminal progress status and returned, so the task
// record flips to failed while disconnected submitters still observe the
// outcome on the channel.
func (s *ImportService) Run(ctx context.Context, taskID string, data []byte, defaultActive bool) (*models.ImportResult, error) {
	s.publish(ctx, taskID, 0, "Upload received. Preparing CSV...")

	records, total, err := ParseProductCSV(data, defaultActive)
	if err != nil {
		s.publish(ctx, taskID, 100, fmt.Sprintf("Error during import: %v", err))
		return nil, err
	}

	if total == 0 {
		s.publish(ctx, taskID, 100, "No rows found in CSV")
		return &models.ImportResult{Processed: 0}, nil
	}

	s.publish(ctx, taskID, 5, fmt.Sprintf("CSV loaded: %d rows", total))

	if err := s.products.BulkInsertSkipDuplicates(ctx, records); err != nil {
		s.publish(ctx, taskID, 100, fmt.Sprintf("Error during import: %v", err))
		return nil, err
	}

	s.logger.Info("import complete",
		zap.String("task_id", taskID),
		zap.Int("rows", total),
		zap.Int("staged", len(records)),
	)
	s.publish(ctx, taskID, 100, fmt.Sprintf("Import complete: %d rows processed (duplicates skipped)", total))
	return &models.ImportResult{Processed: total}, nil
}

func (s *ImportService) publish(ctx context.Context, taskID string, progress int, status string) {
	b, err := json.Marshal(models.ProgressEvent{Progress: progress, Status: status})
	if err != nil {
		return
	}
	if err := s.broker.Publish(ctx, pubsub.TaskChannel(taskID), b); err != nil {
		s.logger.Warn("progress publish failed",
			zap.String("task_id", taskID),
			zap.Error(err),
		)
	}
}
