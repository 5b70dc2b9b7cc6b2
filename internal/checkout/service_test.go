package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	creditpkg "github.com/solemate/solemate-backend/internal/credits"
	discountpkg "github.com/solemate/solemate-backend/internal/discounts"
	notification "github.com/solemate/solemate-backend/internal/notifications"
	orderpkg "github.com/solemate/solemate-backend/internal/orders"
	paymentpkg "github.com/solemate/solemate-backend/internal/payments"
	productpkg "github.com/solemate/solemate-backend/internal/products"
	"github.com/solemate/solemate-backend/internal/users"
	"github.com/solemate/solemate-backend/pkg/config"
	dbpkg "github.com/solemate/solemate-backend/pkg/db"
	"github.com/solemate/solemate-backend/pkg/db/models"
	"github.com/solemate/solemate-backend/pkg/enums"
)

type fixture struct {
	svc       Service
	client    *dbpkg.Client
	credits   creditpkg.Service
	discounts discountpkg.Service
	products  productpkg.Service
	userID    uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:?_fk=1"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.User{}, &models.Product{}, &models.Order{}, &models.OrderLineItem{},
		&models.Payment{}, &models.CreditTransaction{}, &models.Discount{},
		&models.OutboxEvent{},
	))
	t.Cleanup(func() {
		sqlDB, _ := conn.DB()
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	})

	client := dbpkg.FromGorm(conn)
	userRepo := users.NewRepository(conn)
	user, err := userRepo.Create(context.Background(), users.CreateUserDTO{
		Email:        "buyer@example.com",
		PasswordHash: "irrelevant",
		FirstName:    "Dev",
		LastName:     "Iyer",
		Role:         enums.UserRoleCustomer,
	})
	require.NoError(t, err)

	productRepo := productpkg.NewRepository(conn)
	productSvc, err := productpkg.NewService(productRepo)
	require.NoError(t, err)

	orderRepo := orderpkg.NewRepository(conn)
	creditSvc, err := creditpkg.NewService(creditpkg.ServiceParams{
		DB:         client,
		Repository: creditpkg.NewRepository(conn),
	})
	require.NoError(t, err)
	discountSvc, err := discountpkg.NewService(discountpkg.NewRepository(conn))
	require.NoError(t, err)

	emitter := notification.NewService(notification.NewRepository(conn), nil)
	paymentSvc, err := paymentpkg.NewService(paymentpkg.ServiceParams{
		DB:         client,
		Repository: paymentpkg.NewRepository(conn),
		Orders:     orderRepo,
		Users:      userRepo,
		Emitter:    emitter,
	})
	require.NoError(t, err)

	svc, err := NewService(ServiceParams{
		Config: config.CheckoutConfig{
			UPIPayeeVPA:     "solemate@okaxis",
			UPIPayeeName:    "SoleMate",
			PaymentWindow:   5 * time.Minute,
			DefaultCurrency: "INR",
		},
		DB:        client,
		Products:  productRepo,
		Orders:    orderRepo,
		Payments:  paymentSvc,
		Credits:   creditSvc,
		Discounts: discountSvc,
	})
	require.NoError(t, err)

	return &fixture{
		svc:       svc,
		client:    client,
		credits:   creditSvc,
		discounts: discountSvc,
		products:  productSvc,
		userID:    user.ID,
	}
}

func (f *fixture) seedProduct(t *testing.T, slug string, price int64) uuid.UUID {
	t.Helper()
	dto, err := f.products.CreateProduct(context.Background(), productpkg.CreateProductInput{
		Slug:     slug,
		Title:    "Test " + slug,
		Brand:    "Nike",
		Category: "running",
		Price:    decimal.NewFromInt(price),
		IsActive: true,
	})
	require.NoError(t, err)
	return dto.ID
}

func TestUPILinkEncodesTwoDecimalAmount(t *testing.T) {
	link := BuildUPILink("solemate@okaxis", "SoleMate", decimal.NewFromInt(1980), "SoleMate order #1001")
	require.Contains(t, link, "am=1980.00")
	require.Contains(t, link, "pa=solemate%40okaxis")
	require.Contains(t, link, "cu=INR")
	require.True(t, len(link) > len("upi://pay?"))

	link = BuildUPILink("solemate@okaxis", "SoleMate", decimal.NewFromFloat(1980.5), "note")
	require.Contains(t, link, "am=1980.50")
}

func TestQuotePricesServerSide(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.seedProduct(t, "air-drift", 990)

	quote, err := f.svc.Quote(ctx, f.userID, QuoteInput{
		Items: []CartItem{{ProductID: productID, Qty: 2, Size: "9"}},
	})
	require.NoError(t, err)
	require.True(t, quote.Subtotal.Equal(decimal.NewFromInt(1980)))
	require.True(t, quote.Total.Equal(decimal.NewFromInt(1980)))

	_, err = f.svc.Quote(ctx, f.userID, QuoteInput{Items: []CartItem{}})
	require.Error(t, err)

	_, err = f.svc.Quote(ctx, f.userID, QuoteInput{
		Items: []CartItem{{ProductID: uuid.New(), Qty: 1}},
	})
	require.Error(t, err)
}

func TestQuoteAppliesDiscountThenCredits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.seedProduct(t, "air-drift", 2000)

	pct := 10
	_, err := f.discounts.CreateDiscount(ctx, discountpkg.CreateInput{
		Code:       "TEN",
		Type:       enums.DiscountTypeCoupon,
		PercentOff: &pct,
	})
	require.NoError(t, err)

	_, err = f.credits.AdminAdjust(ctx, creditpkg.AdjustInput{
		UserID: f.userID,
		Amount: decimal.NewFromInt(300),
		Reason: "signup bonus",
	})
	require.NoError(t, err)

	quote, err := f.svc.Quote(ctx, f.userID, QuoteInput{
		Items:        []CartItem{{ProductID: productID, Qty: 1}},
		DiscountCode: "TEN",
		ApplyCredits: true,
	})
	require.NoError(t, err)
	require.True(t, quote.DiscountAmount.Equal(decimal.NewFromInt(200)))
	// Credits cap at the balance, not the remaining total.
	require.True(t, quote.CreditsApplied.Equal(decimal.NewFromInt(300)))
	require.True(t, quote.Total.Equal(decimal.NewFromInt(1500)))
}

func TestPlaceOrderCommitsEverythingTogether(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.seedProduct(t, "air-drift", 2000)

	pct := 10
	_, err := f.discounts.CreateDiscount(ctx, discountpkg.CreateInput{
		Code:       "TEN",
		Type:       enums.DiscountTypeCoupon,
		PercentOff: &pct,
	})
	require.NoError(t, err)
	_, err = f.credits.AdminAdjust(ctx, creditpkg.AdjustInput{
		UserID: f.userID,
		Amount: decimal.NewFromInt(300),
		Reason: "signup bonus",
	})
	require.NoError(t, err)

	res, err := f.svc.PlaceOrder(ctx, f.userID, QuoteInput{
		Items:        []CartItem{{ProductID: productID, Qty: 1, Size: "10"}},
		DiscountCode: "TEN",
		ApplyCredits: true,
	})
	require.NoError(t, err)
	require.EqualValues(t, 1001, res.Order.OrderNumber)
	require.True(t, res.Order.TotalPrice.Equal(decimal.NewFromInt(1500)))
	require.Len(t, res.Order.Items, 1)
	require.Equal(t, "Test air-drift", res.Order.Items[0].Title)
	require.Contains(t, res.UPILink, "am=1500.00")
	require.Contains(t, res.UPILink, "tn=SoleMate+order+%231001")
	require.Equal(t, 300, res.PaymentWindowSeconds)

	// Payment row pending for the discounted total.
	var payment models.Payment
	require.NoError(t, f.client.DB().First(&payment, "order_id = ?", res.Order.ID).Error)
	require.Equal(t, payment.ID, res.PaymentID)
	require.Equal(t, enums.PaymentStatusPending, payment.Status)
	require.True(t, payment.Amount.Equal(decimal.NewFromInt(1500)))

	// Credits were spent and the coupon consumed.
	balance, err := f.credits.Balance(ctx, f.userID)
	require.NoError(t, err)
	require.True(t, balance.Balance.IsZero())

	discounts, err := f.discounts.ListDiscounts(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, discounts[0].UsageCount)
}

func TestPlaceOrderRejectsExhaustedCoupon(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.seedProduct(t, "air-drift", 2000)
	amountOff := decimal.NewFromInt(100)
	limit := 1
	created, err := f.discounts.CreateDiscount(ctx, discountpkg.CreateInput{
		Code:       "ONCE",
		Type:       enums.DiscountTypeCoupon,
		AmountOff:  &amountOff,
		UsageLimit: &limit,
	})
	require.NoError(t, err)
	require.NoError(t, f.client.DB().Model(&models.Discount{}).
		Where("id = ?", created.ID).
		Update("usage_count", 1).Error)

	_, err = f.svc.PlaceOrder(ctx, f.userID, QuoteInput{
		Items:        []CartItem{{ProductID: productID, Qty: 1}},
		DiscountCode: "ONCE",
	})
	require.Error(t, err)

	var orders int64
	require.NoError(t, f.client.DB().Model(&models.Order{}).Count(&orders).Error)
	require.Zero(t, orders)
	var payments int64
	require.NoError(t, f.client.DB().Model(&models.Payment{}).Count(&payments).Error)
	require.Zero(t, payments)
}

func TestPlaceOrderRejectsInactiveProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.seedProduct(t, "air-drift", 2000)

	inactive := false
	_, err := f.products.UpdateProduct(ctx, productID, productpkg.UpdateProductInput{IsActive: &inactive})
	require.NoError(t, err)

	_, err = f.svc.PlaceOrder(ctx, f.userID, QuoteInput{
		Items: []CartItem{{ProductID: productID, Qty: 1}},
	})
	require.Error(t, err)
}
