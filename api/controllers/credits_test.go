package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/solemate/solemate-backend/api/middleware"
	creditsvc "github.com/solemate/solemate-backend/internal/credits"
	"github.com/solemate/solemate-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func TestAdminAdjustCredits(t *testing.T) {
	logg := testLogger()
	userID := uuid.New()

	makeRequest := func(stub *stubCreditService, param string, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/credits/"+param+"/adjust", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("userId", param)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
		rec := httptest.NewRecorder()
		AdminAdjustCredits(stub, logg).ServeHTTP(rec, req)
		return rec
	}

	t.Run("invalid user id", func(t *testing.T) {
		rec := makeRequest(&stubCreditService{}, "not-a-uuid", `{"amount":"10","reason":"goodwill"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for invalid user id, got %d", rec.Code)
		}
	})

	t.Run("missing reason", func(t *testing.T) {
		rec := makeRequest(&stubCreditService{}, userID.String(), `{"amount":"10"}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 when reason missing, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		stub := &stubCreditService{}
		rec := makeRequest(stub, userID.String(), `{"amount":"-25.50","reason":" chargeback "}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 on success, got %d", rec.Code)
		}
		if stub.adjusted == nil {
			t.Fatal("expected AdminAdjust to be invoked")
		}
		if stub.adjusted.UserID != userID {
			t.Fatalf("expected adjustment for %s, got %s", userID, stub.adjusted.UserID)
		}
		if !stub.adjusted.Amount.Equal(decimal.RequireFromString("-25.50")) {
			t.Fatalf("expected signed amount -25.50, got %s", stub.adjusted.Amount)
		}
		if stub.adjusted.Reason != "chargeback" {
			t.Fatalf("expected trimmed reason, got %q", stub.adjusted.Reason)
		}
	})
}

func TestCreditBalanceRequiresUser(t *testing.T) {
	logg := testLogger()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/credits", nil)
	rec := httptest.NewRecorder()
	CreditBalance(&stubCreditService{}, logg).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without user in context, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/credits", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	rec = httptest.NewRecorder()
	CreditBalance(&stubCreditService{}, logg).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with user in context, got %d", rec.Code)
	}
}

type stubCreditService struct {
	adjusted *creditsvc.AdjustInput
}

func (s *stubCreditService) Balance(ctx context.Context, userID uuid.UUID) (*creditsvc.BalanceDTO, error) {
	return &creditsvc.BalanceDTO{Balance: decimal.Zero}, nil
}

func (s *stubCreditService) History(ctx context.Context, userID uuid.UUID, limit int) ([]creditsvc.EntryDTO, error) {
	return nil, nil
}

func (s *stubCreditService) AdminAdjust(ctx context.Context, input creditsvc.AdjustInput) (*creditsvc.EntryDTO, error) {
	s.adjusted = &input
	return &creditsvc.EntryDTO{ID: uuid.New(), Amount: input.Amount, Reason: input.Reason}, nil
}

func (s *stubCreditService) SpendForOrderTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID, amount decimal.Decimal, orderID uuid.UUID) error {
	panic("unimplemented")
}

func (s *stubCreditService) RefundForOrder(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, orderID uuid.UUID, reason string) (*creditsvc.EntryDTO, error) {
	panic("unimplemented")
}
