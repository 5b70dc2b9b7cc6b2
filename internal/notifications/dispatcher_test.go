package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/solemate/solemate-backend/pkg/config"
	dbpkg "github.com/solemate/solemate-backend/pkg/db"
	"github.com/solemate/solemate-backend/pkg/db/models"
	"github.com/solemate/solemate-backend/pkg/enums"
	"github.com/solemate/solemate-backend/pkg/logger"
)

func openTestDB(t *testing.T) *dbpkg.Client {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared&_fk=1"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.OutboxEvent{}))
	t.Cleanup(func() {
		sqlDB, _ := conn.DB()
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	})
	return dbpkg.FromGorm(conn)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel, Output: io.Discard})
}

type fakeSender struct {
	calls    []json.RawMessage
	failures int
}

func (f *fakeSender) Send(ctx context.Context, eventType string, payload json.RawMessage) error {
	if f.failures > 0 {
		f.failures--
		return fmt.Errorf("simulated webhook failure")
	}
	f.calls = append(f.calls, payload)
	return nil
}

func queueEvent(t *testing.T, client *dbpkg.Client, svc *Service) uuid.UUID {
	t.Helper()
	paymentID := uuid.New()
	payload := WebhookPayload{
		Type:          enums.NotificationTypeInitiated,
		OrderNumber:   1001,
		CustomerEmail: "shopper@example.com",
		Amount:        decimal.NewFromInt(4999),
		AmountPaid:    decimal.Zero,
		PaymentMethod: enums.PaymentMethodUPI,
		Status:        enums.PaymentStatusPending,
	}
	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		return svc.EmitPaymentEvent(context.Background(), tx, enums.EventPaymentInitiated, paymentID, payload)
	})
	require.NoError(t, err)
	return paymentID
}

func newTestDispatcher(t *testing.T, client *dbpkg.Client, repo *Repository, sender Sender, maxAttempts int) *Dispatcher {
	t.Helper()
	cfg := &config.Config{}
	cfg.Outbox.BatchSize = 10
	cfg.Outbox.PollIntervalMS = 10
	cfg.Outbox.MaxAttempts = maxAttempts

	d, err := NewDispatcher(DispatcherParams{
		Config:     cfg,
		Logger:     testLogger(),
		DB:         client,
		Repository: repo,
		Sender:     sender,
	})
	require.NoError(t, err)
	return d
}

func TestDispatcherDeliversAndMarksPublished(t *testing.T) {
	client := openTestDB(t)
	repo := NewRepository(client.DB())
	svc := NewService(repo, testLogger())
	sender := &fakeSender{}

	paymentID := queueEvent(t, client, svc)

	d := newTestDispatcher(t, client, repo, sender, 5)
	processed, err := d.ProcessBatch(context.Background())
	require.NoError(t, err)
	require.True(t, processed)
	require.Len(t, sender.calls, 1)

	var payload WebhookPayload
	require.NoError(t, json.Unmarshal(sender.calls[0], &payload))
	require.Equal(t, enums.NotificationTypeInitiated, payload.Type)
	require.Equal(t, int64(1001), payload.OrderNumber)
	require.True(t, payload.Amount.Equal(decimal.NewFromInt(4999)))

	var row models.OutboxEvent
	require.NoError(t, client.DB().First(&row, "aggregate_id = ?", paymentID).Error)
	require.NotNil(t, row.PublishedAt)
	require.Equal(t, 0, row.AttemptCount)

	// Nothing left to drain.
	processed, err = d.ProcessBatch(context.Background())
	require.NoError(t, err)
	require.False(t, processed)
}

func TestDispatcherRetriesThenDelivers(t *testing.T) {
	client := openTestDB(t)
	repo := NewRepository(client.DB())
	svc := NewService(repo, testLogger())
	sender := &fakeSender{failures: 1}

	paymentID := queueEvent(t, client, svc)

	d := newTestDispatcher(t, client, repo, sender, 5)

	processed, err := d.ProcessBatch(context.Background())
	require.NoError(t, err)
	require.True(t, processed)
	require.Empty(t, sender.calls)

	var row models.OutboxEvent
	require.NoError(t, client.DB().First(&row, "aggregate_id = ?", paymentID).Error)
	require.Nil(t, row.PublishedAt)
	require.Equal(t, 1, row.AttemptCount)
	require.NotNil(t, row.LastError)

	processed, err = d.ProcessBatch(context.Background())
	require.NoError(t, err)
	require.True(t, processed)
	require.Len(t, sender.calls, 1)
}

func TestDispatcherMarksTerminalAfterMaxAttempts(t *testing.T) {
	client := openTestDB(t)
	repo := NewRepository(client.DB())
	svc := NewService(repo, testLogger())
	sender := &fakeSender{failures: 100}

	paymentID := queueEvent(t, client, svc)

	d := newTestDispatcher(t, client, repo, sender, 2)

	for i := 0; i < 3; i++ {
		_, err := d.ProcessBatch(context.Background())
		require.NoError(t, err)
	}

	var row models.OutboxEvent
	require.NoError(t, client.DB().First(&row, "aggregate_id = ?", paymentID).Error)
	require.NotNil(t, row.TerminalAt)
	require.Nil(t, row.PublishedAt)

	// Terminal rows are never fetched again.
	processed, err := d.ProcessBatch(context.Background())
	require.NoError(t, err)
	require.False(t, processed)
}
