package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/solemate/solemate-backend/api/responses"
	"github.com/solemate/solemate-backend/api/validators"
	productsvc "github.com/solemate/solemate-backend/internal/products"
	pkgerrors "github.com/solemate/solemate-backend/pkg/errors"
	"github.com/solemate/solemate-backend/pkg/logger"
)

// ListProducts serves the storefront catalog with filter and search params.
func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		q := r.URL.Query()
		result, err := svc.ListProducts(r.Context(), productsvc.ListProductsInput{
			Category:   strings.TrimSpace(q.Get("category")),
			Collection: strings.TrimSpace(q.Get("collection")),
			Brand:      strings.TrimSpace(q.Get("brand")),
			Color:      strings.TrimSpace(q.Get("color")),
			Size:       strings.TrimSpace(q.Get("size")),
			Search:     strings.TrimSpace(q.Get("q")),
			Limit:      limit,
			Cursor:     strings.TrimSpace(q.Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// GetProduct looks one product up by id or slug.
func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		dto, err := svc.GetProduct(r.Context(), chi.URLParam(r, "idOrSlug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

// ListFilters returns the admin-curated storefront filter groups.
func ListFilters(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		filters, err := svc.ListFilters(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, filters)
	}
}

// AdminListProducts lists the catalog including inactive rows.
func AdminListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		q := r.URL.Query()
		result, err := svc.ListProducts(r.Context(), productsvc.ListProductsInput{
			Search:          strings.TrimSpace(q.Get("q")),
			IncludeInactive: true,
			Limit:           limit,
			Cursor:          strings.TrimSpace(q.Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type createProductRequest struct {
	Slug           string           `json:"slug" validate:"required"`
	Title          string           `json:"title" validate:"required"`
	Brand          string           `json:"brand" validate:"required"`
	Color          string           `json:"color"`
	Category       string           `json:"category" validate:"required"`
	Collection     string           `json:"collection"`
	Description    string           `json:"description"`
	Price          decimal.Decimal  `json:"price" validate:"required"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price,omitempty"`
	ImageURL       string           `json:"image_url"`
	Images         []string         `json:"images,omitempty"`
	Tags           []string         `json:"tags,omitempty"`
	Sizes          []string         `json:"sizes,omitempty"`
	IsActive       *bool            `json:"is_active,omitempty"`
}

// AdminCreateProduct adds a catalog entry.
func AdminCreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var body createProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		isActive := true
		if body.IsActive != nil {
			isActive = *body.IsActive
		}

		dto, err := svc.CreateProduct(r.Context(), productsvc.CreateProductInput{
			Slug:           strings.TrimSpace(body.Slug),
			Title:          strings.TrimSpace(body.Title),
			Brand:          strings.TrimSpace(body.Brand),
			Color:          strings.TrimSpace(body.Color),
			Category:       strings.TrimSpace(body.Category),
			Collection:     strings.TrimSpace(body.Collection),
			Description:    body.Description,
			Price:          body.Price,
			CompareAtPrice: body.CompareAtPrice,
			ImageURL:       strings.TrimSpace(body.ImageURL),
			Images:         body.Images,
			Tags:           body.Tags,
			Sizes:          body.Sizes,
			IsActive:       isActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

type updateProductRequest struct {
	Slug           *string          `json:"slug,omitempty"`
	Title          *string          `json:"title,omitempty"`
	Brand          *string          `json:"brand,omitempty"`
	Color          *string          `json:"color,omitempty"`
	Category       *string          `json:"category,omitempty"`
	Collection     *string          `json:"collection,omitempty"`
	Description    *string          `json:"description,omitempty"`
	Price          *decimal.Decimal `json:"price,omitempty"`
	CompareAtPrice *decimal.Decimal `json:"compare_at_price,omitempty"`
	ImageURL       *string          `json:"image_url,omitempty"`
	Images         *[]string        `json:"images,omitempty"`
	Tags           *[]string        `json:"tags,omitempty"`
	Sizes          *[]string        `json:"sizes,omitempty"`
	IsActive       *bool            `json:"is_active,omitempty"`
}

// AdminUpdateProduct applies a partial catalog update.
func AdminUpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateProductRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.UpdateProduct(r.Context(), productID, productsvc.UpdateProductInput{
			Slug:           body.Slug,
			Title:          body.Title,
			Brand:          body.Brand,
			Color:          body.Color,
			Category:       body.Category,
			Collection:     body.Collection,
			Description:    body.Description,
			Price:          body.Price,
			CompareAtPrice: body.CompareAtPrice,
			ImageURL:       body.ImageURL,
			Images:         body.Images,
			Tags:           body.Tags,
			Sizes:          body.Sizes,
			IsActive:       body.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

// AdminDeleteProduct removes a catalog entry.
func AdminDeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := pathUUID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type filterRequest struct {
	Name     string   `json:"name" validate:"required"`
	Label    string   `json:"label" validate:"required"`
	Options  []string `json:"options" validate:"required,min=1,dive,required"`
	Position int      `json:"position"`
}

func (f filterRequest) toInput() productsvc.FilterInput {
	return productsvc.FilterInput{
		Name:     strings.TrimSpace(f.Name),
		Label:    strings.TrimSpace(f.Label),
		Options:  f.Options,
		Position: f.Position,
	}
}

// AdminCreateFilter adds a storefront filter group.
func AdminCreateFilter(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var body filterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.CreateFilter(r.Context(), body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// AdminUpdateFilter replaces a filter group's fields.
func AdminUpdateFilter(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		filterID, err := pathUUID(r, "filterId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body filterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.UpdateFilter(r.Context(), filterID, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dto)
	}
}

// AdminDeleteFilter removes a filter group.
func AdminDeleteFilter(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		filterID, err := pathUUID(r, "filterId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteFilter(r.Context(), filterID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
