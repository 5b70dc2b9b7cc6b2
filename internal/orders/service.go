package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/solemate/solemate-backend/pkg/enums"
	pkgerrors "github.com/solemate/solemate-backend/pkg/errors"
	"github.com/solemate/solemate-backend/pkg/pagination"
)

// AdminListInput narrows and pages the admin order listing.
type AdminListInput struct {
	FinancialStatus   string
	FulfillmentStatus string
	Limit             int
	Cursor            string
}

// StatusUpdateInput carries an admin status change; empty fields are left
// untouched.
type StatusUpdateInput struct {
	FulfillmentStatus string
	FinancialStatus   string
}

// Service reads orders and applies admin status transitions. Order creation
// lives in the checkout flow.
type Service interface {
	GetOrderForUser(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error)
	ListOrdersForUser(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error)
	AdminGetOrder(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error)
	AdminGetOrderByNumber(ctx context.Context, number int64) (*OrderDTO, error)
	AdminListOrders(ctx context.Context, input AdminListInput) (*ListResult, error)
	AdminUpdateStatus(ctx context.Context, orderID uuid.UUID, input StatusUpdateInput) (*OrderDTO, error)
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	return &service{repo: repo}, nil
}

// GetOrderForUser loads an order only when the caller owns it. A hit on
// someone else's order reads as not found.
func (s *service) GetOrderForUser(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error) {
	row, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
	}
	if row.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return FromModel(row), nil
}

func (s *service) ListOrdersForUser(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
	}
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) AdminGetOrder(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	row, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
	}
	return FromModel(row), nil
}

func (s *service) AdminGetOrderByNumber(ctx context.Context, number int64) (*OrderDTO, error) {
	row, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
	}
	return FromModel(row), nil
}

func (s *service) AdminListOrders(ctx context.Context, input AdminListInput) (*ListResult, error) {
	query := AdminListQuery{Limit: pagination.LimitWithBuffer(input.Limit)}

	if input.FinancialStatus != "" {
		status, err := enums.ParseFinancialStatus(input.FinancialStatus)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		query.FinancialStatus = status
	}
	if input.FulfillmentStatus != "" {
		status, err := enums.ParseFulfillmentStatus(input.FulfillmentStatus)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		query.FulfillmentStatus = status
	}
	if cursor, err := pagination.ParseCursor(input.Cursor); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	} else if cursor != nil {
		query.CursorCreatedAt = cursor.CreatedAt
		query.CursorID = cursor.ID
	}

	rows, err := s.repo.AdminList(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: admin list orders")
	}

	limit := pagination.NormalizeLimit(input.Limit)
	result := &ListResult{Orders: make([]OrderDTO, 0, len(rows))}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		cursor := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		result.NextCursor = &cursor
	}
	for i := range rows {
		result.Orders = append(result.Orders, *FromModel(&rows[i]))
	}
	return result, nil
}

// AdminUpdateStatus moves fulfillment and/or financial state. The financial
// side normally follows reconciliation; a direct write here covers refunds
// and manual corrections.
func (s *service) AdminUpdateStatus(ctx context.Context, orderID uuid.UUID, input StatusUpdateInput) (*OrderDTO, error) {
	if input.FulfillmentStatus == "" && input.FinancialStatus == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no status fields provided")
	}

	var fulfillment enums.FulfillmentStatus
	var financial enums.FinancialStatus
	if input.FulfillmentStatus != "" {
		parsed, err := enums.ParseFulfillmentStatus(input.FulfillmentStatus)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		fulfillment = parsed
	}
	if input.FinancialStatus != "" {
		parsed, err := enums.ParseFinancialStatus(input.FinancialStatus)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		financial = parsed
	}

	if _, err := s.AdminGetOrder(ctx, orderID); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatuses(ctx, orderID, fulfillment, financial); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update order status")
	}
	return s.AdminGetOrder(ctx, orderID)
}
