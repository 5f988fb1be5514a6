package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"product-importer/models"
	"product-importer/pubsub"
	"product-importer/services"
	"product-importer/tasks"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	receiveWait = 1 * time.Second
	pollYield   = 100 * time.Millisecond
)

// ImportController handles CSV uploads, progress streaming and task polling.
type ImportController struct {
	runner     *tasks.Runner
	broker     pubsub.Broker
	validator  *RequestValidator
	storageDir string
}

func NewImportController(runner *tasks.Runner, broker pubsub.Broker, validator *RequestValidator, storageDir string) *ImportController {
	return &ImportController{
		runner:     runner,
		broker:     broker,
		validator:  validator,
		storageDir: storageDir,
	}
}

// UploadCSV accepts a CSV upload and starts an asynchronous import task.
// Returns the task id so clients can subscribe to progress events.
func (ic *ImportController) UploadCSV(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if !ic.validator.IsValidCSVFile(file) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file type. Only CSV files are allowed"})
		return
	}
	if err := ic.validator.ValidateFileSize(file); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fileHandle, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open file"})
		return
	}
	defer fileHandle.Close()

	data, err := io.ReadAll(fileHandle)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}
	if len(data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Empty file"})
		return
	}

	defaultActive := true
	if raw := strings.TrimSpace(c.Query("default_active")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid boolean value for 'default_active'"})
			return
		}
		defaultActive = v
	}

	if err := os.MkdirAll(ic.storageDir, 0o755); err != nil {
		zap.L().Error("Failed to create upload storage dir", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to stage upload"})
		return
	}

	filePath := filepath.Join(ic.storageDir, uuid.New().String()+".csv")
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		zap.L().Error("Failed to persist upload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to stage upload"})
		return
	}

	taskID, err := ic.runner.Submit(c.Request.Context(), services.TaskKindImportProducts, services.ImportPayload{
		FilePath:      filePath,
		DefaultActive: defaultActive,
	})
	if err != nil {
		os.Remove(filePath)
		zap.L().Error("Failed to submit import task", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to queue import"})
		return
	}

	zap.L().Info("Import task queued",
		zap.String("task_id", taskID),
		zap.Int("bytes", len(data)),
	)
	c.JSON(http.StatusAccepted, gin.H{"task_id": taskID})
}

// StreamEvents streams progress events for a task as server-sent events.
// The stream ends when a terminal event (progress 100) arrives or the
// client disconnects; a task id with no active run yields an empty stream.
func (ic *ImportController) StreamEvents(c *gin.Context) {
	taskID := strings.TrimSpace(c.Param("task_id"))
	if taskID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "task id required"})
		return
	}

	ctx := c.Request.Context()
	sub, err := ic.broker.Subscribe(ctx, pubsub.TaskChannel(taskID))
	if err != nil {
		zap.L().Error("Failed to subscribe to progress channel",
			zap.String("task_id", taskID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to subscribe"})
		return
	}
	defer sub.Close()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		payload, err := sub.Receive(ctx, receiveWait)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			zap.L().Warn("Progress receive failed", zap.String("task_id", taskID), zap.Error(err))
			return
		}
		if payload != nil {
			fmt.Fprintf(c.Writer, "data: %s\n\n", payload)
			c.Writer.Flush()

			var ev models.ProgressEvent
			if json.Unmarshal(payload, &ev) == nil && ev.Progress >= 100 {
				return
			}
		}
		time.Sleep(pollYield)
	}
}

// GetTask returns the state and result for a task id.
func (ic *ImportController) GetTask(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "task id required"})
		return
	}

	t, err := ic.runner.Poll(c.Request.Context(), id)
	if errors.Is(err, tasks.ErrTaskNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}
	if err != nil {
		zap.L().Error("Failed to poll task", zap.String("task_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"task_id": t.ID,
		"kind":    t.Kind,
		"state":   t.State,
		"result":  t.Result,
		"error":   t.Error,
	})
}
