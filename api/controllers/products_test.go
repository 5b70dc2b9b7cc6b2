package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	productsvc "github.com/solemate/solemate-backend/internal/products"
	pkgerrors "github.com/solemate/solemate-backend/pkg/errors"
	"github.com/solemate/solemate-backend/pkg/logger"
)

func TestAdminDeleteProduct(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
	productID := uuid.New()

	makeRequest := func(stub *stubProductService, param string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodDelete, "/api/admin/v1/products/"+param, nil)
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("productId", param)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
		rec := httptest.NewRecorder()
		AdminDeleteProduct(stub, logg).ServeHTTP(rec, req)
		return rec
	}

	t.Run("invalid product id", func(t *testing.T) {
		rec := makeRequest(&stubProductService{}, "not-a-uuid")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for invalid id, got %d", rec.Code)
		}
	})

	t.Run("not found", func(t *testing.T) {
		stub := &stubProductService{deleteErr: pkgerrors.New(pkgerrors.CodeNotFound, "product not found")}
		rec := makeRequest(stub, productID.String())
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		stub := &stubProductService{}
		rec := makeRequest(stub, productID.String())
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 on success, got %d", rec.Code)
		}
		if stub.deletedID != productID {
			t.Fatalf("expected DeleteProduct for %s, got %s", productID, stub.deletedID)
		}
	})
}

func TestGetProduct(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})

	t.Run("passes slug through", func(t *testing.T) {
		stub := &stubProductService{dto: &productsvc.ProductDTO{Slug: "aero-glide-97"}}
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products/aero-glide-97", nil)
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("idOrSlug", "aero-glide-97")
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
		rec := httptest.NewRecorder()
		GetProduct(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if stub.gotIDOrSlug != "aero-glide-97" {
			t.Fatalf("expected slug to reach the service, got %q", stub.gotIDOrSlug)
		}
	})

	t.Run("nil service", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products/whatever", nil)
		rec := httptest.NewRecorder()
		GetProduct(nil, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500 with nil service, got %d", rec.Code)
		}
	})
}

type stubProductService struct {
	dto         *productsvc.ProductDTO
	deleteErr   error
	deletedID   uuid.UUID
	gotIDOrSlug string
}

func (s *stubProductService) ListProducts(ctx context.Context, input productsvc.ListProductsInput) (*productsvc.ProductListResult, error) {
	return &productsvc.ProductListResult{}, nil
}

func (s *stubProductService) GetProduct(ctx context.Context, idOrSlug string) (*productsvc.ProductDTO, error) {
	s.gotIDOrSlug = idOrSlug
	if s.dto == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return s.dto, nil
}

func (s *stubProductService) CreateProduct(ctx context.Context, input productsvc.CreateProductInput) (*productsvc.ProductDTO, error) {
	panic("unimplemented")
}

func (s *stubProductService) UpdateProduct(ctx context.Context, productID uuid.UUID, input productsvc.UpdateProductInput) (*productsvc.ProductDTO, error) {
	panic("unimplemented")
}

func (s *stubProductService) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	s.deletedID = productID
	return s.deleteErr
}

func (s *stubProductService) ListFilters(ctx context.Context) ([]productsvc.FilterDTO, error) {
	return nil, nil
}

func (s *stubProductService) CreateFilter(ctx context.Context, input productsvc.FilterInput) (*productsvc.FilterDTO, error) {
	panic("unimplemented")
}

func (s *stubProductService) UpdateFilter(ctx context.Context, filterID uuid.UUID, input productsvc.FilterInput) (*productsvc.FilterDTO, error) {
	panic("unimplemented")
}

func (s *stubProductService) DeleteFilter(ctx context.Context, filterID uuid.UUID) error {
	panic("unimplemented")
}
