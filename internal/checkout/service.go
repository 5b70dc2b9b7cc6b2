package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	creditpkg "github.com/solemate/solemate-backend/internal/credits"
	discountpkg "github.com/solemate/solemate-backend/internal/discounts"
	orderpkg "github.com/solemate/solemate-backend/internal/orders"
	"github.com/solemate/solemate-backend/pkg/config"
	dbpkg "github.com/solemate/solemate-backend/pkg/db"
	"github.com/solemate/solemate-backend/pkg/db/models"
	"github.com/solemate/solemate-backend/pkg/enums"
	pkgerrors "github.com/solemate/solemate-backend/pkg/errors"
	"github.com/solemate/solemate-backend/pkg/logger"
)

// CartItem is one line of the client's cart. Prices are never trusted from
// the client; the server reprices against the live catalog.
type CartItem struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Size      string    `json:"size"`
	Qty       int       `json:"qty" validate:"required,min=1"`
}

// QuoteInput prices a cart without committing anything.
type QuoteInput struct {
	Items        []CartItem `json:"items" validate:"required,min=1,dive"`
	DiscountCode string     `json:"discount_code"`
	ApplyCredits bool       `json:"apply_credits"`
}

// QuoteDTO is the server-priced view of a cart.
type QuoteDTO struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountCode   *string         `json:"discount_code,omitempty"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	CreditsApplied decimal.Decimal `json:"credits_applied"`
	Total          decimal.Decimal `json:"total"`
}

// PlaceOrderResult is returned once the order, payment, credit spend, and
// discount redemption have committed together.
type PlaceOrderResult struct {
	Order                *orderpkg.OrderDTO `json:"order"`
	PaymentID            uuid.UUID          `json:"payment_id"`
	UPILink              string             `json:"upi_link"`
	PaymentWindowSeconds int                `json:"payment_window_seconds"`
}

// productStore resolves live catalog rows for repricing.
type productStore interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

// paymentCreator is the payment service's checkout-facing surface.
type paymentCreator interface {
	CreatePaymentTx(ctx context.Context, tx *gorm.DB, orderID, userID uuid.UUID, amount decimal.Decimal) (*models.Payment, error)
}

// creditService is the slice of the credit ledger this flow needs: a balance
// read for quoting and a transactional spend at placement.
type creditService interface {
	Balance(ctx context.Context, userID uuid.UUID) (*creditpkg.BalanceDTO, error)
	SpendForOrderTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID, amount decimal.Decimal, orderID uuid.UUID) error
}

// discountRedeemer validates and consumes discount codes.
type discountRedeemer interface {
	ValidateForCart(ctx context.Context, code string, subtotal decimal.Decimal) (*discountpkg.ValidationDTO, error)
	RedeemTx(ctx context.Context, tx *gorm.DB, code string, amountUsed decimal.Decimal) (*models.Discount, error)
}

// Service prices carts and turns them into orders.
type Service interface {
	Quote(ctx context.Context, userID uuid.UUID, input QuoteInput) (*QuoteDTO, error)
	PlaceOrder(ctx context.Context, userID uuid.UUID, input QuoteInput) (*PlaceOrderResult, error)
}

// ServiceParams bundles the checkout dependencies.
type ServiceParams struct {
	Config    config.CheckoutConfig
	DB        *dbpkg.Client
	Products  productStore
	Orders    *orderpkg.Repository
	Payments  paymentCreator
	Credits   creditService
	Discounts discountRedeemer
	Logger    *logger.Logger
}

type service struct {
	cfg       config.CheckoutConfig
	db        *dbpkg.Client
	products  productStore
	orders    *orderpkg.Repository
	payments  paymentCreator
	credits   creditService
	discounts discountRedeemer
	logg      *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product store required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if params.Payments == nil {
		return nil, fmt.Errorf("payment creator required")
	}
	if params.Credits == nil {
		return nil, fmt.Errorf("credit service required")
	}
	if params.Discounts == nil {
		return nil, fmt.Errorf("discount service required")
	}
	return &service{
		cfg:       params.Config,
		db:        params.DB,
		products:  params.Products,
		orders:    params.Orders,
		payments:  params.Payments,
		credits:   params.Credits,
		discounts: params.Discounts,
		logg:      params.Logger,
	}, nil
}

// pricedLine is a cart line joined with its live catalog row.
type pricedLine struct {
	item    CartItem
	product models.Product
}

// Quote reprices the cart server-side and previews discount and credit
// application without consuming either.
func (s *service) Quote(ctx context.Context, userID uuid.UUID, input QuoteInput) (*QuoteDTO, error) {
	_, subtotal, err := s.price(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	quote := &QuoteDTO{
		Subtotal:       subtotal,
		DiscountAmount: decimal.Zero,
		CreditsApplied: decimal.Zero,
	}

	remaining := subtotal
	if input.DiscountCode != "" {
		validated, err := s.discounts.ValidateForCart(ctx, input.DiscountCode, subtotal)
		if err != nil {
			return nil, err
		}
		quote.DiscountCode = &validated.Code
		quote.DiscountAmount = validated.DiscountAmount
		remaining = remaining.Sub(validated.DiscountAmount)
	}

	if input.ApplyCredits && remaining.IsPositive() {
		balance, err := s.credits.Balance(ctx, userID)
		if err != nil {
			return nil, err
		}
		applied := decimal.Min(balance.Balance, remaining)
		if applied.IsPositive() {
			quote.CreditsApplied = applied
			remaining = remaining.Sub(applied)
		}
	}

	quote.Total = remaining
	return quote, nil
}

// PlaceOrder commits the quoted cart: order with snapshotted line items,
// pending payment, credit spend, and discount redemption in one transaction.
func (s *service) PlaceOrder(ctx context.Context, userID uuid.UUID, input QuoteInput) (*PlaceOrderResult, error) {
	lines, _, err := s.price(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	quote, err := s.Quote(ctx, userID, input)
	if err != nil {
		return nil, err
	}

	row := &models.Order{
		UserID:            userID,
		CurrencyCode:      enums.Currency(s.cfg.DefaultCurrency),
		TotalPrice:        quote.Total,
		DiscountCode:      quote.DiscountCode,
		DiscountAmount:    quote.DiscountAmount,
		CreditsApplied:    quote.CreditsApplied,
		FulfillmentStatus: enums.FulfillmentStatusUnfulfilled,
		FinancialStatus:   enums.FinancialStatusPending,
	}
	for _, line := range lines {
		item := models.OrderLineItem{
			Title:     line.product.Title,
			Qty:       line.item.Qty,
			UnitPrice: line.product.Price,
		}
		productID := line.product.ID
		item.ProductID = &productID
		if line.item.Size != "" {
			size := line.item.Size
			item.Size = &size
		}
		if line.product.ImageURL != "" {
			image := line.product.ImageURL
			item.ImageURL = &image
		}
		row.Items = append(row.Items, item)
	}

	var paymentID uuid.UUID
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		number, err := s.orders.NextOrderNumberTx(ctx, tx)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: draw order number")
		}
		row.OrderNumber = number
		if err := s.orders.CreateTx(ctx, tx, row); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order")
		}

		if quote.DiscountCode != nil {
			if _, err := s.discounts.RedeemTx(ctx, tx, *quote.DiscountCode, quote.DiscountAmount); err != nil {
				return err
			}
		}
		if quote.CreditsApplied.IsPositive() {
			if err := s.credits.SpendForOrderTx(ctx, tx, userID, quote.CreditsApplied, row.ID); err != nil {
				return err
			}
		}

		payment, err := s.payments.CreatePaymentTx(ctx, tx, row.ID, userID, quote.Total)
		if err != nil {
			return err
		}
		paymentID = payment.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		fields := map[string]any{
			"order_number": row.OrderNumber,
			"total":        quote.Total.StringFixed(2),
		}
		s.logg.Info(s.logg.WithFields(ctx, fields), "order placed")
	}

	note := fmt.Sprintf("SoleMate order #%d", row.OrderNumber)
	return &PlaceOrderResult{
		Order:                orderpkg.FromModel(row),
		PaymentID:            paymentID,
		UPILink:              BuildUPILink(s.cfg.UPIPayeeVPA, s.cfg.UPIPayeeName, quote.Total, note),
		PaymentWindowSeconds: int(s.cfg.PaymentWindow.Seconds()),
	}, nil
}

// price joins cart lines with live catalog rows and sums the subtotal.
func (s *service) price(ctx context.Context, items []CartItem) ([]pricedLine, decimal.Decimal, error) {
	if len(items) == 0 {
		return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if item.Qty < 1 {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "qty must be at least 1")
		}
		ids = append(ids, item.ProductID)
	}

	rows, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart products")
	}
	byID := make(map[uuid.UUID]models.Product, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	lines := make([]pricedLine, 0, len(items))
	subtotal := decimal.Zero
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok || !product.IsActive {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("product %s is not available", item.ProductID))
		}
		lines = append(lines, pricedLine{item: item, product: product})
		subtotal = subtotal.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Qty))))
	}
	return lines, subtotal, nil
}
