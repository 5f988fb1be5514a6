package services_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"product-importer/models"
	"product-importer/services"
	"product-importer/tasks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDispatcher() *services.WebhookDispatcher {
	logger, _ := zap.NewDevelopment()
	return services.NewWebhookDispatcher(logger)
}

func TestDeliver_Success(t *testing.T) {
	var gotBody []byte
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	d := newTestDispatcher()
	result := d.Deliver(context.Background(), srv.URL, map[string]interface{}{"event": "test", "test": true})

	assert.Empty(t, result.Error)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, "ok", result.Body)
	assert.Equal(t, "application/json", gotContentType)
	assert.JSONEq(t, `{"event":"test","test":true}`, string(gotBody))
}

func TestDeliver_TruncatesLongBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(strings.Repeat("x", 5000)))
	}))
	defer srv.Close()

	d := newTestDispatcher()
	result := d.Deliver(context.Background(), srv.URL, map[string]string{"k": "v"})

	assert.Empty(t, result.Error)
	assert.Equal(t, http.StatusInternalServerError, result.StatusCode)
	assert.Len(t, result.Body, 1000)
}

func TestDeliver_UnreachableURL(t *testing.T) {
	// Port 1 on loopback, nothing listens there.
	d := newTestDispatcher()

	start := time.Now()
	result := d.Deliver(context.Background(), "http://127.0.0.1:1/hook", map[string]string{"k": "v"})
	elapsed := time.Since(start)

	assert.NotEmpty(t, result.Error)
	assert.Zero(t, result.StatusCode)
	assert.Less(t, elapsed, 11*time.Second)
}

func TestDeliver_InvalidURL(t *testing.T) {
	d := newTestDispatcher()
	result := d.Deliver(context.Background(), "://not-a-url", nil)
	assert.NotEmpty(t, result.Error)
}

func TestHandleDeliveryTask_FailureIsStillAResult(t *testing.T) {
	d := newTestDispatcher()

	payload, err := json.Marshal(services.DeliveryPayload{
		URL:     "http://127.0.0.1:1/hook",
		Payload: json.RawMessage(`{"event":"x"}`),
	})
	require.NoError(t, err)

	result, err := d.HandleDeliveryTask(context.Background(), &tasks.Task{
		ID:      "d1",
		Kind:    services.TaskKindDeliverWebhook,
		Payload: payload,
	})
	require.NoError(t, err)

	dr, ok := result.(models.DeliveryResult)
	require.True(t, ok)
	assert.NotEmpty(t, dr.Error)
}

func TestHandleDeliveryTask_BadPayload(t *testing.T) {
	d := newTestDispatcher()

	_, err := d.HandleDeliveryTask(context.Background(), &tasks.Task{
		ID:      "d2",
		Kind:    services.TaskKindDeliverWebhook,
		Payload: json.RawMessage(`not json`),
	})
	assert.Error(t, err)
}
