package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"product-importer/models"
	"product-importer/pubsub"
	"product-importer/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ---- mock repository ----

type mockProductRepo struct {
	bulkErr     error
	bulkRecords []models.StagingRecord
	bulkCalls   int
}

func (m *mockProductRepo) Upsert(_ context.Context, p *models.Product) (*models.Product, error) {
	return p, nil
}
func (m *mockProductRepo) FindByID(_ context.Context, _ uint) (*models.Product, error) {
	return nil, nil
}
func (m *mockProductRepo) List(_ context.Context, _ models.ProductFilter) ([]models.Product, int64, error) {
	return nil, 0, nil
}
func (m *mockProductRepo) Patch(_ context.Context, _ uint, _ models.ProductPatch) (*models.Product, error) {
	return nil, nil
}
func (m *mockProductRepo) Delete(_ context.Context, _ uint) error        { return nil }
func (m *mockProductRepo) DeleteAll(_ context.Context) (int64, error)    { return 0, nil }
func (m *mockProductRepo) BulkInsertSkipDuplicates(_ context.Context, records []models.StagingRecord) error {
	m.bulkCalls++
	m.bulkRecords = records
	return m.bulkErr
}

// ---- helpers ----

func collectEvents(t *testing.T, sub pubsub.Subscription) []models.ProgressEvent {
	t.Helper()
	var events []models.ProgressEvent
	for {
		payload, err := sub.Receive(context.Background(), 50*time.Millisecond)
		require.NoError(t, err)
		if payload == nil {
			return events
		}
		var ev models.ProgressEvent
		require.NoError(t, json.Unmarshal(payload, &ev))
		events = append(events, ev)
	}
}

func newTestImportService(repo *mockProductRepo, broker pubsub.Broker) *services.ImportService {
	logger, _ := zap.NewDevelopment()
	return services.NewImportService(repo, broker, logger)
}

// ---- tests ----

func TestRun_Success(t *testing.T) {
	repo := &mockProductRepo{}
	broker := pubsub.NewMemoryBroker()
	svc := newTestImportService(repo, broker)

	sub, err := broker.Subscribe(context.Background(), pubsub.TaskChannel("t1"))
	require.NoError(t, err)
	defer sub.Close()

	csv := "sku,name\nabc,Widget\ndef,Gadget\n"
	result, err := svc.Run(context.Background(), "t1", []byte(csv), true)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 1, repo.bulkCalls)
	assert.Len(t, repo.bulkRecords, 2)

	events := collectEvents(t, sub)
	require.Len(t, events, 3)
	assert.Equal(t, 0, events[0].Progress)
	assert.Equal(t, "Upload received. Preparing CSV...", events[0].Status)
	assert.Equal(t, 5, events[1].Progress)
	assert.Equal(t, "CSV loaded: 2 rows", events[1].Status)
	assert.Equal(t, 100, events[2].Progress)
	assert.Equal(t, "Import complete: 2 rows processed (duplicates skipped)", events[2].Status)
}

func TestRun_EmptyCSV(t *testing.T) {
	repo := &mockProductRepo{}
	broker := pubsub.NewMemoryBroker()
	svc := newTestImportService(repo, broker)

	sub, err := broker.Subscribe(context.Background(), pubsub.TaskChannel("t2"))
	require.NoError(t, err)
	defer sub.Close()

	result, err := svc.Run(context.Background(), "t2", []byte("sku,name\n"), true)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Processed)
	assert.Zero(t, repo.bulkCalls)

	events := collectEvents(t, sub)
	require.Len(t, events, 2)
	assert.Equal(t, 100, events[1].Progress)
	assert.Equal(t, "No rows found in CSV", events[1].Status)
}

func TestRun_AllRowsDroppedStillReportsTotal(t *testing.T) {
	repo := &mockProductRepo{}
	broker := pubsub.NewMemoryBroker()
	svc := newTestImportService(repo, broker)

	sub, err := broker.Subscribe(context.Background(), pubsub.TaskChannel("t3"))
	require.NoError(t, err)
	defer sub.Close()

	csv := "sku,name\n,NoSku\n  ,AlsoNoSku\n"
	result, err := svc.Run(context.Background(), "t3", []byte(csv), true)
	require.NoError(t, err)
	// Dropped rows are counted in the processed total but never staged.
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 1, repo.bulkCalls)
	assert.Empty(t, repo.bulkRecords)

	events := collectEvents(t, sub)
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, 100, last.Progress)
	assert.Equal(t, "Import complete: 2 rows processed (duplicates skipped)", last.Status)
}

func TestRun_StoreError(t *testing.T) {
	repo := &mockProductRepo{bulkErr: errors.New("connection refused")}
	broker := pubsub.NewMemoryBroker()
	svc := newTestImportService(repo, broker)

	sub, err := broker.Subscribe(context.Background(), pubsub.TaskChannel("t4"))
	require.NoError(t, err)
	defer sub.Close()

	_, err = svc.Run(context.Background(), "t4", []byte("sku\nabc\n"), true)
	require.Error(t, err)

	events := collectEvents(t, sub)
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, 100, last.Progress)
	assert.Contains(t, last.Status, "Error during import")
	assert.Contains(t, last.Status, "connection refused")

	// Exactly one terminal event.
	terminal := 0
	for _, ev := range events {
		if ev.Progress == 100 {
			terminal++
		}
	}
	assert.Equal(t, 1, terminal)
}

func TestRun_NoSubscriberIsFine(t *testing.T) {
	repo := &mockProductRepo{}
	broker := pubsub.NewMemoryBroker()
	svc := newTestImportService(repo, broker)

	result, err := svc.Run(context.Background(), "t5", []byte("sku\nabc\n"), true)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
}
