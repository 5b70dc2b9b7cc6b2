package product

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/solemate/solemate-backend/pkg/db/models"
	pkgerrors "github.com/solemate/solemate-backend/pkg/errors"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:?_fk=1"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Product{}, &models.ProductFilter{}))
	t.Cleanup(func() {
		sqlDB, _ := conn.DB()
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

func newTestService(t *testing.T) (Service, *Repository) {
	t.Helper()
	repo := NewRepository(openTestDB(t))
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc, repo
}

func seedProduct(t *testing.T, svc Service, slug, brand, category string, price int64) *ProductDTO {
	t.Helper()
	dto, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Slug:     slug,
		Title:    "Test " + slug,
		Brand:    brand,
		Category: category,
		Price:    decimal.NewFromInt(price),
		Sizes:    []string{"8", "9", "10"},
		IsActive: true,
	})
	require.NoError(t, err)
	return dto
}

func TestCreateProductValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, CreateProductInput{
		Slug:  "Bad Slug!",
		Title: "x",
		Price: decimal.NewFromInt(100),
	})
	require.Error(t, err)

	_, err = svc.CreateProduct(ctx, CreateProductInput{
		Slug:  "ok-slug",
		Title: "x",
		Price: decimal.Zero,
	})
	require.Error(t, err)

	_, err = svc.CreateProduct(ctx, CreateProductInput{
		Slug:  "ok-slug",
		Title: "   ",
		Price: decimal.NewFromInt(100),
	})
	require.Error(t, err)
}

func TestCreateProductDuplicateSlug(t *testing.T) {
	svc, _ := newTestService(t)
	seedProduct(t, svc, "air-drift", "Nike", "running", 4999)

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Slug:     "air-drift",
		Title:    "Dup",
		Price:    decimal.NewFromInt(100),
		IsActive: true,
	})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeConflict, appErr.Code())
}

func TestGetProductByIDAndSlug(t *testing.T) {
	svc, _ := newTestService(t)
	created := seedProduct(t, svc, "air-drift", "Nike", "running", 4999)

	bySlug, err := svc.GetProduct(context.Background(), "air-drift")
	require.NoError(t, err)
	require.Equal(t, created.ID, bySlug.ID)

	byID, err := svc.GetProduct(context.Background(), created.ID.String())
	require.NoError(t, err)
	require.Equal(t, "air-drift", byID.Slug)

	_, err = svc.GetProduct(context.Background(), "missing-slug")
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestListProductsFiltersAndPagination(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		seedProduct(t, svc, fmt.Sprintf("runner-%d", i), "Nike", "running", 2000)
	}
	seedProduct(t, svc, "court-classic", "Adidas", "casual", 3000)

	// Spread created_at so keyset ordering is deterministic under sqlite.
	var all []models.Product
	require.NoError(t, repo.db.Find(&all).Error)
	base := time.Now().Add(-time.Hour)
	for i := range all {
		require.NoError(t, repo.db.Model(&all[i]).
			UpdateColumn("created_at", base.Add(time.Duration(i)*time.Minute)).Error)
	}

	byBrand, err := svc.ListProducts(ctx, ListProductsInput{Brand: "Adidas"})
	require.NoError(t, err)
	require.Len(t, byBrand.Products, 1)
	require.Equal(t, "court-classic", byBrand.Products[0].Slug)

	byCategory, err := svc.ListProducts(ctx, ListProductsInput{Category: "running"})
	require.NoError(t, err)
	require.Len(t, byCategory.Products, 5)

	page1, err := svc.ListProducts(ctx, ListProductsInput{Limit: 4})
	require.NoError(t, err)
	require.Len(t, page1.Products, 4)
	require.NotNil(t, page1.NextCursor)

	page2, err := svc.ListProducts(ctx, ListProductsInput{Limit: 4, Cursor: *page1.NextCursor})
	require.NoError(t, err)
	require.Len(t, page2.Products, 2)
	require.Nil(t, page2.NextCursor)

	seen := map[string]bool{}
	for _, p := range append(page1.Products, page2.Products...) {
		require.False(t, seen[p.Slug], "duplicate %s across pages", p.Slug)
		seen[p.Slug] = true
	}
}

func TestListProductsHidesInactive(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created := seedProduct(t, svc, "air-drift", "Nike", "running", 4999)

	inactive := false
	_, err := svc.UpdateProduct(ctx, created.ID, UpdateProductInput{IsActive: &inactive})
	require.NoError(t, err)

	visible, err := svc.ListProducts(ctx, ListProductsInput{})
	require.NoError(t, err)
	require.Empty(t, visible.Products)

	adminView, err := svc.ListProducts(ctx, ListProductsInput{IncludeInactive: true})
	require.NoError(t, err)
	require.Len(t, adminView.Products, 1)
}

func TestUpdateProductPartial(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	created := seedProduct(t, svc, "air-drift", "Nike", "running", 4999)

	newPrice := decimal.NewFromInt(5999)
	updated, err := svc.UpdateProduct(ctx, created.ID, UpdateProductInput{Price: &newPrice})
	require.NoError(t, err)
	require.True(t, updated.Price.Equal(newPrice))
	require.Equal(t, "Nike", updated.Brand)
	require.Equal(t, "air-drift", updated.Slug)
}

func TestSearchMatchesTitleAndBrand(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	seedProduct(t, svc, "air-drift", "Nike", "running", 4999)
	seedProduct(t, svc, "court-classic", "Adidas", "casual", 3000)

	res, err := svc.ListProducts(ctx, ListProductsInput{Search: "adidas"})
	require.NoError(t, err)
	require.Len(t, res.Products, 1)
	require.Equal(t, "court-classic", res.Products[0].Slug)
}

func TestFilterCRUD(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateFilter(ctx, FilterInput{
		Name:     "Brand",
		Label:    "Brand",
		Options:  []string{"Nike", "Adidas"},
		Position: 1,
	})
	require.NoError(t, err)
	require.Equal(t, "brand", created.Name)

	_, err = svc.CreateFilter(ctx, FilterInput{Name: "brand", Label: "Dup"})
	require.Error(t, err)

	updated, err := svc.UpdateFilter(ctx, created.ID, FilterInput{
		Label:    "Shoe Brand",
		Options:  []string{"Nike", "Adidas", "Puma"},
		Position: 2,
	})
	require.NoError(t, err)
	require.Equal(t, "Shoe Brand", updated.Label)
	require.Len(t, updated.Options, 3)

	filters, err := svc.ListFilters(ctx)
	require.NoError(t, err)
	require.Len(t, filters, 1)

	require.NoError(t, svc.DeleteFilter(ctx, created.ID))
	filters, err = svc.ListFilters(ctx)
	require.NoError(t, err)
	require.Empty(t, filters)
}
