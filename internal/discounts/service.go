package discount

import (
	"context"
	"errors"
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

// DiscountDTO is the admin view of a redeemable code.
type DiscountDTO struct {
	ID          uuid.UUID          `json:"id"`
	Code        string             `json:"code"`
	Type        enums.DiscountType `json:"type"`
	PercentOff  *int               `json:"percent_off,omitempty"`
	AmountOff   *decimal.Decimal   `json:"amount_off,omitempty"`
	Balance     *decimal.Decimal   `json:"balance,omitempty"`
	MinPurchase decimal.Decimal    `json:"min_purchase"`
	UsageLimit  *int               `json:"usage_limit,omitempty"`
	UsageCount  int                `json:"usage_count"`
	ExpiresAt   *time.Time         `json:"expires_at,omitempty"`
	IsActive    bool               `json:"is_active"`
	CreatedAt   time.Time          `json:"created_at"`
}

// ValidationDTO is the storefront preview of applying a code to a cart.
type ValidationDTO struct {
	Code           string             `json:"code"`
	Type           enums.DiscountType `json:"type"`
	DiscountAmount decimal.Decimal    `json:"discount_amount"`
}

// CreateInput carries admin fields for a new code.
type CreateInput struct {
	Code        string
	Type        enums.DiscountType
	PercentOff  *int
	AmountOff   *decimal.Decimal
	Balance     *decimal.Decimal
	MinPurchase decimal.Decimal
	UsageLimit  *int
	ExpiresAt   *time.Time
}

// UpdateInput carries partial admin updates.
type UpdateInput struct {
	MinPurchase *decimal.Decimal
	UsageLimit  *int
	ExpiresAt   *time.Time
	IsActive    *bool
}

// Service manages coupons and gift cards.
type Service interface {
	ValidateForCart(ctx context.Context, code string, subtotal decimal.Decimal) (*ValidationDTO, error)
	RedeemTx(ctx context.Context, tx *gorm.DB, code string, amountUsed decimal.Decimal) (*models.Discount, error)
	CreateDiscount(ctx context.Context, input CreateInput) (*DiscountDTO, error)
	UpdateDiscount(ctx context.Context, discountID uuid.UUID, input UpdateInput) (*DiscountDTO, error)
	DeleteDiscount(ctx context.Context, discountID uuid.UUID) error
	GetDiscount(ctx context.Context, discountID uuid.UUID) (*DiscountDTO, error)
	ListDiscounts(ctx context.Context) ([]DiscountDTO, error)
}

type service struct {
	repo *Repository
	now  func() time.Time
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("discount repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

// ValidateForCart checks a code against a cart subtotal and returns the
// amount it would knock off. Nothing is consumed; redemption happens at
// order placement.
func (s *service) ValidateForCart(ctx context.Context, code string, subtotal decimal.Decimal) (*ValidationDTO, error) {
	discount, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "discount code not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: find discount")
	}
	if err := s.checkUsable(discount, subtotal); err != nil {
		return nil, err
	}

	amount := discountAmount(discount, subtotal)
	return &ValidationDTO{
		Code:           discount.Code,
		Type:           discount.Type,
		DiscountAmount: amount,
	}, nil
}

// RedeemTx consumes a code inside the caller's transaction: the usage counter
// moves for every redemption, and a gift card's balance is drawn down by the
// amount actually used.
func (s *service) RedeemTx(ctx context.Context, tx *gorm.DB, code string, amountUsed decimal.Decimal) (*models.Discount, error) {
	discount, err := s.repo.FindByCodeForUpdateTx(ctx, tx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "discount code not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: lock discount")
	}
	if err := s.checkUsable(discount, decimal.Zero); err != nil {
		return nil, err
	}

	discount.UsageCount++
	if discount.Type == enums.DiscountTypeGiftCard {
		if discount.Balance == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "gift card has no balance")
		}
		if discount.Balance.LessThan(amountUsed) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "gift card balance too low")
		}
		remaining := discount.Balance.Sub(amountUsed)
		discount.Balance = &remaining
	}
	if err := s.repo.SaveTx(ctx, tx, discount); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: redeem discount")
	}
	return discount, nil
}

func (s *service) CreateDiscount(ctx context.Context, input CreateInput) (*DiscountDTO, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount code required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid discount type %q", input.Type))
	}

	switch input.Type {
	case enums.DiscountTypeCoupon:
		hasPercent := input.PercentOff != nil
		hasAmount := input.AmountOff != nil
		if hasPercent == hasAmount {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon needs exactly one of percent_off or amount_off")
		}
		if hasPercent && (*input.PercentOff < 1 || *input.PercentOff > 100) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "percent_off must be between 1 and 100")
		}
		if hasAmount && !input.AmountOff.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount_off must be positive")
		}
	case enums.DiscountTypeGiftCard:
		if input.Balance == nil || !input.Balance.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "gift card needs a positive balance")
		}
		if input.PercentOff != nil || input.AmountOff != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "gift card cannot carry coupon fields")
		}
	}
	if input.MinPurchase.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "min_purchase cannot be negative")
	}
	if input.UsageLimit != nil && *input.UsageLimit < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "usage_limit must be at least 1")
	}

	discount := &models.Discount{
		Code:        code,
		Type:        input.Type,
		PercentOff:  input.PercentOff,
		AmountOff:   input.AmountOff,
		Balance:     input.Balance,
		MinPurchase: input.MinPurchase,
		UsageLimit:  input.UsageLimit,
		ExpiresAt:   input.ExpiresAt,
		IsActive:    true,
	}
	created, err := s.repo.Create(ctx, discount)
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_discounts_code", "discounts.code") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "discount code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert discount")
	}
	dto := toDTO(created)
	return &dto, nil
}

func (s *service) UpdateDiscount(ctx context.Context, discountID uuid.UUID, input UpdateInput) (*DiscountDTO, error) {
	discount, err := s.repo.FindByID(ctx, discountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "discount not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load discount")
	}

	if input.MinPurchase != nil {
		if input.MinPurchase.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "min_purchase cannot be negative")
		}
		discount.MinPurchase = *input.MinPurchase
	}
	if input.UsageLimit != nil {
		if *input.UsageLimit < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "usage_limit must be at least 1")
		}
		discount.UsageLimit = input.UsageLimit
	}
	if input.ExpiresAt != nil {
		discount.ExpiresAt = input.ExpiresAt
	}
	if input.IsActive != nil {
		discount.IsActive = *input.IsActive
	}

	updated, err := s.repo.Update(ctx, discount)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update discount")
	}
	dto := toDTO(updated)
	return &dto, nil
}

func (s *service) DeleteDiscount(ctx context.Context, discountID uuid.UUID) error {
	if err := s.repo.Delete(ctx, discountID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete discount")
	}
	return nil
}

func (s *service) GetDiscount(ctx context.Context, discountID uuid.UUID) (*DiscountDTO, error) {
	discount, err := s.repo.FindByID(ctx, discountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "discount not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load discount")
	}
	dto := toDTO(discount)
	return &dto, nil
}

func (s *service) ListDiscounts(ctx context.Context) ([]DiscountDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list discounts")
	}
	out := make([]DiscountDTO, 0, len(rows))
	for i := range rows {
		out = append(out, toDTO(&rows[i]))
	}
	return out, nil
}

// checkUsable rejects codes that are inactive, expired, over their usage
// limit, drained, or gated behind a higher subtotal.
func (s *service) checkUsable(discount *models.Discount, subtotal decimal.Decimal) error {
	if !discount.IsActive {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount code is inactive")
	}
	if discount.ExpiresAt != nil && s.now().After(*discount.ExpiresAt) {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount code has expired")
	}
	if discount.UsageLimit != nil && discount.UsageCount >= *discount.UsageLimit {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount code usage limit reached")
	}
	if discount.Type == enums.DiscountTypeGiftCard &&
		(discount.Balance == nil || !discount.Balance.IsPositive()) {
		return pkgerrors.New(pkgerrors.CodeValidation, "gift card has no remaining balance")
	}
	if subtotal.IsPositive() && subtotal.LessThan(discount.MinPurchase) {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("cart must be at least %s to use this code", discount.MinPurchase.StringFixed(2)))
	}
	return nil
}

// discountAmount computes what the code takes off the subtotal, never more
// than the subtotal itself.
func discountAmount(discount *models.Discount, subtotal decimal.Decimal) decimal.Decimal {
	var amount decimal.Decimal
	switch discount.Type {
	case enums.DiscountTypeGiftCard:
		amount = *discount.Balance
	case enums.DiscountTypeCoupon:
		if discount.PercentOff != nil {
			amount = subtotal.Mul(decimal.NewFromInt(int64(*discount.PercentOff))).
				Div(decimal.NewFromInt(100)).Round(2)
		} else if discount.AmountOff != nil {
			amount = *discount.AmountOff
		}
	}
	if amount.GreaterThan(subtotal) {
		amount = subtotal
	}
	return amount
}

func toDTO(discount *models.Discount) DiscountDTO {
	return DiscountDTO{
		ID:          discount.ID,
		Code:        discount.Code,
		Type:        discount.Type,
		PercentOff:  discount.PercentOff,
		AmountOff:   discount.AmountOff,
		Balance:     discount.Balance,
		MinPurchase: discount.MinPurchase,
		UsageLimit:  discount.UsageLimit,
		UsageCount:  discount.UsageCount,
		ExpiresAt:   discount.ExpiresAt,
		IsActive:    discount.IsActive,
		CreatedAt:   discount.CreatedAt,
	}
}
