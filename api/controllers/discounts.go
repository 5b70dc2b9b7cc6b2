package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/solemate/solemate-backend/api/responses"
	"github.com/solemate/solemate-backend/api/validators"
	discountsvc "github.com/solemate/solemate-backend/internal/discounts"
	"github.com/solemate/solemate-backend/pkg/enums"
	pkgerrors "github.com/solemate/solemate-backend/pkg/errors"
	"github.com/solemate/solemate-backend/pkg/logger"
)

type validateDiscountRequest struct {
	Code     string          `json:"code" validate:"required"`
	Subtotal decimal.Decimal `json:"subtotal" validate:"required"`
}

// ValidateDiscount checks a code against the cart subtotal and returns the
// computed deduction.
func ValidateDiscount(svc discountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		var body validateDiscountRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.ValidateForCart(r.Context(), strings.TrimSpace(body.Code), body.Subtotal)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

// AdminListDiscounts returns every code, newest first.
func AdminListDiscounts(svc discountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		discounts, err := svc.ListDiscounts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, discounts)
	}
}

// AdminGetDiscount loads one code by id.
func AdminGetDiscount(svc discountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		discountID, err := pathUUID(r, "discountId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.GetDiscount(r.Context(), discountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

type createDiscountRequest struct {
	Code        string           `json:"code" validate:"required"`
	Type        string           `json:"type" validate:"required,oneof=coupon gift_card"`
	PercentOff  *int             `json:"percent_off,omitempty"`
	AmountOff   *decimal.Decimal `json:"amount_off,omitempty"`
	Balance     *decimal.Decimal `json:"balance,omitempty"`
	MinPurchase decimal.Decimal  `json:"min_purchase"`
	UsageLimit  *int             `json:"usage_limit,omitempty"`
	ExpiresAt   *time.Time       `json:"expires_at,omitempty"`
}

// AdminCreateDiscount registers a coupon or gift card.
func AdminCreateDiscount(svc discountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		var body createDiscountRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kind, err := enums.ParseDiscountType(strings.TrimSpace(body.Type))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount type"))
			return
		}

		dto, err := svc.CreateDiscount(r.Context(), discountsvc.CreateInput{
			Code:        strings.TrimSpace(body.Code),
			Type:        kind,
			PercentOff:  body.PercentOff,
			AmountOff:   body.AmountOff,
			Balance:     body.Balance,
			MinPurchase: body.MinPurchase,
			UsageLimit:  body.UsageLimit,
			ExpiresAt:   body.ExpiresAt,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

type updateDiscountRequest struct {
	MinPurchase *decimal.Decimal `json:"min_purchase,omitempty"`
	UsageLimit  *int             `json:"usage_limit,omitempty"`
	ExpiresAt   *time.Time       `json:"expires_at,omitempty"`
	IsActive    *bool            `json:"is_active,omitempty"`
}

// AdminUpdateDiscount applies a partial update to a code.
func AdminUpdateDiscount(svc discountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		discountID, err := pathUUID(r, "discountId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateDiscountRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.UpdateDiscount(r.Context(), discountID, discountsvc.UpdateInput{
			MinPurchase: body.MinPurchase,
			UsageLimit:  body.UsageLimit,
			ExpiresAt:   body.ExpiresAt,
			IsActive:    body.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

// AdminDeleteDiscount removes a code.
func AdminDeleteDiscount(svc discountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		discountID, err := pathUUID(r, "discountId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteDiscount(r.Context(), discountID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
