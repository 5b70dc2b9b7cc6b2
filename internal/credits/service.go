package credit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbpkg "github.com/solemate/solemate-backend/pkg/db"
	"github.com/solemate/solemate-backend/pkg/db/models"
	"github.com/solemate/solemate-backend/pkg/enums"
	pkgerrors "github.com/solemate/solemate-backend/pkg/errors"
)

// EntryDTO is one ledger row as surfaced to clients.
type EntryDTO struct {
	ID        uuid.UUID             `json:"id"`
	Type      enums.CreditEntryType `json:"type"`
	Amount    decimal.Decimal       `json:"amount"`
	Reason    string                `json:"reason"`
	OrderID   *uuid.UUID            `json:"order_id,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
}

// BalanceDTO is the storefront credit summary.
type BalanceDTO struct {
	Balance decimal.Decimal `json:"balance"`
}

// AdjustInput is an admin-initiated ledger correction. Amount is signed.
type AdjustInput struct {
	UserID uuid.UUID
	Amount decimal.Decimal
	Reason string
}

// Service owns the platform-credit ledger. Spends happen inside the
// checkout transaction so the balance check and the debit are atomic.
type Service interface {
	Balance(ctx context.Context, userID uuid.UUID) (*BalanceDTO, error)
	History(ctx context.Context, userID uuid.UUID, limit int) ([]EntryDTO, error)
	AdminAdjust(ctx context.Context, input AdjustInput) (*EntryDTO, error)
	SpendForOrderTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID, amount decimal.Decimal, orderID uuid.UUID) error
	RefundForOrder(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, orderID uuid.UUID, reason string) (*EntryDTO, error)
}

type service struct {
	db   *dbpkg.Client
	repo *Repository
}

type ServiceParams struct {
	DB         *dbpkg.Client
	Repository *Repository
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("credit repository required")
	}
	return &service{db: params.DB, repo: params.Repository}, nil
}

func (s *service) Balance(ctx context.Context, userID uuid.UUID) (*BalanceDTO, error) {
	balance, err := s.repo.Balance(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: credit balance")
	}
	return &BalanceDTO{Balance: balance}, nil
}

func (s *service) History(ctx context.Context, userID uuid.UUID, limit int) ([]EntryDTO, error) {
	rows, err := s.repo.History(ctx, userID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: credit history")
	}
	out := make([]EntryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, entryDTO(&rows[i]))
	}
	return out, nil
}

// AdminAdjust appends a signed adjustment row. Negative adjustments may not
// push the balance below zero.
func (s *service) AdminAdjust(ctx context.Context, input AdjustInput) (*EntryDTO, error) {
	if input.Amount.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "adjustment amount must be non-zero")
	}
	if strings.TrimSpace(input.Reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "adjustment reason required")
	}

	var entry *models.CreditTransaction
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if input.Amount.IsNegative() {
			balance, err := s.repo.BalanceTx(ctx, tx, input.UserID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: credit balance")
			}
			if balance.Add(input.Amount).IsNegative() {
				return pkgerrors.New(pkgerrors.CodeValidation, "adjustment would make balance negative")
			}
		}
		entry = &models.CreditTransaction{
			UserID: input.UserID,
			Type:   enums.CreditEntryTypeAdjustment,
			Amount: input.Amount,
			Reason: input.Reason,
		}
		if err := s.repo.AppendTx(ctx, tx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: append adjustment")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := entryDTO(entry)
	return &dto, nil
}

// SpendForOrderTx debits credits against an order inside the caller's
// transaction. The debit is rejected when it exceeds the current balance.
func (s *service) SpendForOrderTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID, amount decimal.Decimal, orderID uuid.UUID) error {
	if !amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "credit spend must be positive")
	}
	balance, err := s.repo.BalanceTx(ctx, tx, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: credit balance")
	}
	if balance.LessThan(amount) {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("insufficient credits: have %s, want %s", balance.StringFixed(2), amount.StringFixed(2)))
	}
	entry := &models.CreditTransaction{
		UserID:  userID,
		Type:    enums.CreditEntryTypeSpent,
		Amount:  amount.Neg(),
		Reason:  "applied at checkout",
		OrderID: &orderID,
	}
	if err := s.repo.AppendTx(ctx, tx, entry); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: append spend")
	}
	return nil
}

// RefundForOrder credits a user back for a cancelled or refunded order.
func (s *service) RefundForOrder(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, orderID uuid.UUID, reason string) (*EntryDTO, error) {
	if !amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "refund amount must be positive")
	}
	if strings.TrimSpace(reason) == "" {
		reason = "order refund"
	}
	entry := &models.CreditTransaction{
		UserID:  userID,
		Type:    enums.CreditEntryTypeRefund,
		Amount:  amount,
		Reason:  reason,
		OrderID: &orderID,
	}
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.AppendTx(ctx, tx, entry)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: append refund")
	}
	dto := entryDTO(entry)
	return &dto, nil
}

func entryDTO(entry *models.CreditTransaction) EntryDTO {
	return EntryDTO{
		ID:        entry.ID,
		Type:      entry.Type,
		Amount:    entry.Amount,
		Reason:    entry.Reason,
		OrderID:   entry.OrderID,
		CreatedAt: entry.CreatedAt,
	}
}
