package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/solemate/solemate-backend/pkg/config"
	"github.com/solemate/solemate-backend/pkg/db/models"
	"github.com/solemate/solemate-backend/pkg/logger"
	"github.com/solemate/solemate-backend/pkg/metrics"
)

const (
	defaultBatchSize   = 50
	defaultPollMs      = 500
	defaultMaxAttempts = 10
	maxBackoff         = 10 * time.Second
	jitterWindow       = 250 * time.Millisecond
)

var jitterSource = rand.New(rand.NewSource(time.Now().UnixNano()))

type dbClient interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type outboxRepository interface {
	FetchUnpublishedTx(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, cause error) error
	MarkTerminalTx(tx *gorm.DB, id uuid.UUID, cause error) error
}

// DispatcherParams wires the dispatcher dependencies.
type DispatcherParams struct {
	Config     *config.Config
	Logger     *logger.Logger
	DB         dbClient
	Repository outboxRepository
	Sender     Sender
	Metrics    *metrics.NotifierMetrics
}

// Dispatcher drains the outbox and posts each event to the webhook with
// bounded retry. Events that exhaust their attempts are marked terminal and
// never retried again.
type Dispatcher struct {
	cfg          *config.Config
	logg         *logger.Logger
	db           dbClient
	repo         outboxRepository
	sender       Sender
	metrics      *metrics.NotifierMetrics
	batchSize    int
	maxAttempts  int
	pollInterval time.Duration
}

func NewDispatcher(params DispatcherParams) (*Dispatcher, error) {
	if params.Config == nil {
		return nil, errors.New("config is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.DB == nil {
		return nil, errors.New("database client is required")
	}
	if params.Repository == nil {
		return nil, errors.New("outbox repository is required")
	}
	if params.Sender == nil {
		return nil, errors.New("sender is required")
	}

	batch := params.Config.Outbox.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	pollMs := params.Config.Outbox.PollIntervalMS
	if pollMs <= 0 {
		pollMs = defaultPollMs
	}
	maxAttempts := params.Config.Outbox.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	return &Dispatcher{
		cfg:          params.Config,
		logg:         params.Logger,
		db:           params.DB,
		repo:         params.Repository,
		sender:       params.Sender,
		metrics:      params.Metrics,
		batchSize:    batch,
		maxAttempts:  maxAttempts,
		pollInterval: time.Duration(pollMs) * time.Millisecond,
	}, nil
}

// Run polls until the context is canceled.
func (d *Dispatcher) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := d.db.Ping(ctx); err != nil {
		d.logg.Error(ctx, "database ping failed", err)
		return fmt.Errorf("database ping failed: %w", err)
	}

	interval := d.pollInterval
	backoff := interval

	for {
		select {
		case <-ctx.Done():
			d.logg.Info(ctx, "notification dispatcher context canceled")
			return ctx.Err()
		default:
		}

		processed, err := d.ProcessBatch(ctx)
		if err != nil {
			d.logg.Error(ctx, "notification dispatch batch error", err)
			backoff = nextBackoff(backoff, interval, maxBackoff)
			if err := d.sleep(ctx, withJitter(backoff)); err != nil {
				return err
			}
			continue
		}

		backoff = interval

		if processed {
			continue
		}

		if err := d.sleep(ctx, withJitter(interval)); err != nil {
			return err
		}
	}
}

// ProcessBatch drains one batch. Returns true when any row was handled.
func (d *Dispatcher) ProcessBatch(ctx context.Context) (bool, error) {
	processed := false
	err := d.db.WithTx(ctx, func(tx *gorm.DB) error {
		events, err := d.repo.FetchUnpublishedTx(tx, d.batchSize, d.maxAttempts)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}

		processed = true
		for _, event := range events {
			fields := d.eventFields(event)
			start := time.Now()
			sendErr := d.sender.Send(ctx, string(event.EventType), json.RawMessage(event.Payload))
			d.metrics.ObserveDispatch(string(event.EventType), time.Since(start))

			if sendErr != nil {
				d.metrics.IncFailure(string(event.EventType))
				nextAttempt := event.AttemptCount + 1
				fields["attempt_count"] = nextAttempt

				if nextAttempt >= d.maxAttempts {
					fields["terminal_reason"] = "max_attempts"
					ctxWithFields := d.logg.WithField(d.logg.WithFields(ctx, fields), "error", sendErr.Error())
					d.logg.Warn(ctxWithFields, "notification will not be retried")
					d.metrics.IncTerminal(string(event.EventType))
					if markErr := d.repo.MarkTerminalTx(tx, event.ID, sendErr); markErr != nil {
						return fmt.Errorf("mark terminal %s: %w", event.ID, markErr)
					}
					continue
				}

				ctxWithFields := d.logg.WithField(d.logg.WithFields(ctx, fields), "error", sendErr.Error())
				d.logg.Warn(ctxWithFields, "notification dispatch failed")
				if markErr := d.repo.MarkFailedTx(tx, event.ID, sendErr); markErr != nil {
					return fmt.Errorf("mark failure %s: %w", event.ID, markErr)
				}
				continue
			}

			if markErr := d.repo.MarkPublishedTx(tx, event.ID); markErr != nil {
				return fmt.Errorf("mark published %s: %w", event.ID, markErr)
			}
			d.metrics.IncSuccess(string(event.EventType))
			d.logg.Info(d.logg.WithFields(ctx, fields), "notification delivered")
		}
		return nil
	})
	return processed, err
}

func (d *Dispatcher) eventFields(event models.OutboxEvent) map[string]any {
	fields := map[string]any{
		"outbox_id":      event.ID.String(),
		"event_type":     event.EventType,
		"aggregate_type": event.AggregateType,
		"aggregate_id":   event.AggregateID.String(),
		"batch_size":     d.batchSize,
		"attempt_count":  event.AttemptCount,
	}
	if event.LastError != nil {
		fields["last_error"] = *event.LastError
	}
	return fields
}

func (d *Dispatcher) sleep(ctx context.Context, dur time.Duration) error {
	if dur <= 0 {
		return nil
	}
	timer := time.NewTimer(dur)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func nextBackoff(current, base, max time.Duration) time.Duration {
	if current <= 0 {
		current = base
	}
	next := current * 2
	if next > max {
		return max
	}
	return next
}

func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	jitter := time.Duration(jitterSource.Int63n(int64(jitterWindow)))
	return d + jitter
}
