package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	notification "github.com/solemate/solemate-backend/internal/notifications"
	dbpkg "github.com/solemate/solemate-backend/pkg/db"
	"github.com/solemate/solemate-backend/pkg/db/models"
	"github.com/solemate/solemate-backend/pkg/enums"
	pkgerrors "github.com/solemate/solemate-backend/pkg/errors"
	"github.com/solemate/solemate-backend/pkg/logger"
)

// defaultListLimit bounds the admin listing when no limit is given.
const defaultListLimit = 100

// orderStore is the slice of the order repository this service needs.
type orderStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	SetFinancialStatusTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, status enums.FinancialStatus) error
}

// userStore resolves the customer email carried on webhook payloads.
type userStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service owns the payment lifecycle: idempotent creation at checkout,
// one-shot initiation, and admin reconciliation with the order's financial
// status mirrored in the same transaction.
type Service interface {
	CreatePaymentTx(ctx context.Context, tx *gorm.DB, orderID, userID uuid.UUID, amount decimal.Decimal) (*models.Payment, error)
	InitiatePayment(ctx context.Context, userID, paymentID uuid.UUID) (*InitiationDTO, error)
	AdminUpdatePayment(ctx context.Context, paymentID uuid.UUID, input UpdateInput) (*UpdateResult, error)
	GetPaymentForOrder(ctx context.Context, userID, orderID uuid.UUID) (*PaymentDTO, error)
	ListPendingForUser(ctx context.Context, userID uuid.UUID) ([]PaymentDTO, error)
	AdminGetPayment(ctx context.Context, paymentID uuid.UUID) (*PaymentDTO, error)
	AdminListPayments(ctx context.Context, status string, limit int) ([]PaymentDTO, error)
}

// ServiceParams bundles the service dependencies.
type ServiceParams struct {
	DB         *dbpkg.Client
	Repository *Repository
	Orders     orderStore
	Users      userStore
	Emitter    notification.Emitter
	Logger     *logger.Logger
}

type service struct {
	db      *dbpkg.Client
	repo    *Repository
	orders  orderStore
	users   userStore
	emitter notification.Emitter
	logg    *logger.Logger
	now     func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("payment repository required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order store required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user store required")
	}
	if params.Emitter == nil {
		return nil, fmt.Errorf("notification emitter required")
	}
	return &service{
		db:      params.DB,
		repo:    params.Repository,
		orders:  params.Orders,
		users:   params.Users,
		emitter: params.Emitter,
		logg:    params.Logger,
		now:     time.Now,
	}, nil
}

// CreatePaymentTx inserts the payment for an order, or returns the existing
// one. Runs inside the checkout transaction; the unique index on order_id
// backstops the check-then-insert against a racing caller.
func (s *service) CreatePaymentTx(ctx context.Context, tx *gorm.DB, orderID, userID uuid.UUID, amount decimal.Decimal) (*models.Payment, error) {
	existing, err := s.repo.FindByOrderIDTx(ctx, tx, orderID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find payment by order")
	}

	row := &models.Payment{
		OrderID:    orderID,
		UserID:     userID,
		Amount:     amount,
		AmountPaid: decimal.Zero,
		Status:     enums.PaymentStatusPending,
		Method:     enums.PaymentMethodUPI,
	}
	if err := s.repo.CreateTx(ctx, tx, row); err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_payments_order_id", "payments.order_id") {
			return s.repo.FindByOrderIDTx(ctx, tx, orderID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert payment")
	}
	return row, nil
}

// InitiatePayment stamps payment_initiated_at once and queues the single
// "initiated" notification in the same transaction. Re-invocation returns the
// stored timestamp without touching the row or re-notifying.
func (s *service) InitiatePayment(ctx context.Context, userID, paymentID uuid.UUID) (*InitiationDTO, error) {
	row, err := s.loadOwned(ctx, userID, paymentID)
	if err != nil {
		return nil, err
	}
	if row.PaymentInitiatedAt != nil {
		return &InitiationDTO{PaymentID: row.ID, PaymentInitiatedAt: *row.PaymentInitiatedAt}, nil
	}

	var initiatedAt time.Time
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		fresh, err := s.repo.FindByIDTx(ctx, tx, paymentID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load payment")
		}
		if fresh.PaymentInitiatedAt != nil {
			initiatedAt = *fresh.PaymentInitiatedAt
			return nil
		}

		now := s.now().UTC()
		fresh.PaymentInitiatedAt = &now
		if err := s.repo.SaveTx(ctx, tx, fresh); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: initiate payment")
		}
		initiatedAt = now

		payload, err := s.buildPayload(ctx, fresh, enums.NotificationTypeInitiated)
		if err != nil {
			return err
		}
		return s.emitter.EmitPaymentEvent(ctx, tx, enums.EventPaymentInitiated, fresh.ID, payload)
	})
	if err != nil {
		return nil, err
	}
	return &InitiationDTO{PaymentID: paymentID, PaymentInitiatedAt: initiatedAt}, nil
}

// AdminUpdatePayment records a manual bank-transfer reconciliation. The
// payment write, the order's financial status, and the outbound notification
// row all commit together.
func (s *service) AdminUpdatePayment(ctx context.Context, paymentID uuid.UUID, input UpdateInput) (*UpdateResult, error) {
	if input.AmountPaid.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount_paid cannot be negative")
	}

	var result *UpdateResult
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		row, err := s.repo.FindByIDTx(ctx, tx, paymentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load payment")
		}

		row.AmountPaid = input.AmountPaid
		row.Status = DeriveStatus(row.Amount, row.AmountPaid)
		if input.TransactionID != nil {
			row.TransactionID = input.TransactionID
		}
		if input.Notes != nil {
			row.Notes = input.Notes
		}
		if err := s.repo.SaveTx(ctx, tx, row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update payment")
		}

		financial := enums.FinancialStatusPending
		if row.Status == enums.PaymentStatusPaid {
			financial = enums.FinancialStatusPaid
		}
		if err := s.orders.SetFinancialStatusTx(ctx, tx, row.OrderID, financial); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: mirror financial status")
		}

		payload, err := s.buildPayload(ctx, row, NotificationTypeFor(row.Status))
		if err != nil {
			return err
		}
		if err := s.emitter.EmitPaymentEvent(ctx, tx, enums.EventPaymentUpdated, row.ID, payload); err != nil {
			return err
		}

		result = &UpdateResult{Success: true, Status: row.Status, Payment: FromModel(row)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		fields := map[string]any{
			"payment_id": paymentID.String(),
			"status":     result.Status,
		}
		s.logg.Info(s.logg.WithFields(ctx, fields), "payment reconciled")
	}
	return result, nil
}

// GetPaymentForOrder drives the storefront's "watch for confirmation" poll.
func (s *service) GetPaymentForOrder(ctx context.Context, userID, orderID uuid.UUID) (*PaymentDTO, error) {
	row, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find payment by order")
	}
	if row.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
	}
	return FromModel(row), nil
}

func (s *service) ListPendingForUser(ctx context.Context, userID uuid.UUID) ([]PaymentDTO, error) {
	rows, err := s.repo.ListPendingByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list pending payments")
	}
	return toDTOs(rows), nil
}

func (s *service) AdminGetPayment(ctx context.Context, paymentID uuid.UUID) (*PaymentDTO, error) {
	row, err := s.repo.FindByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load payment")
	}
	return FromModel(row), nil
}

func (s *service) AdminListPayments(ctx context.Context, status string, limit int) ([]PaymentDTO, error) {
	var parsed enums.PaymentStatus
	if status != "" {
		p, err := enums.ParsePaymentStatus(status)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		parsed = p
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.repo.List(ctx, parsed, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list payments")
	}
	return toDTOs(rows), nil
}

func (s *service) loadOwned(ctx context.Context, userID, paymentID uuid.UUID) (*models.Payment, error) {
	row, err := s.repo.FindByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load payment")
	}
	if row.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
	}
	return row, nil
}

func (s *service) buildPayload(ctx context.Context, row *models.Payment, kind enums.NotificationType) (notification.WebhookPayload, error) {
	order, err := s.orders.FindByID(ctx, row.OrderID)
	if err != nil {
		return notification.WebhookPayload{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order for payload")
	}
	user, err := s.users.FindByID(ctx, row.UserID)
	if err != nil {
		return notification.WebhookPayload{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load user for payload")
	}
	return notification.WebhookPayload{
		Type:          kind,
		OrderNumber:   order.OrderNumber,
		CustomerEmail: user.Email,
		Amount:        row.Amount,
		AmountPaid:    row.AmountPaid,
		PaymentMethod: row.Method,
		Status:        row.Status,
	}, nil
}

func toDTOs(rows []models.Payment) []PaymentDTO {
	out := make([]PaymentDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
