package discount

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	dbpkg "github.com/solemate/solemate-backend/pkg/db"
	"github.com/solemate/solemate-backend/pkg/db/models"
	"github.com/solemate/solemate-backend/pkg/enums"
	pkgerrors "github.com/solemate/solemate-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *dbpkg.Client) {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:?_fk=1"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Discount{}))
	t.Cleanup(func() {
		sqlDB, _ := conn.DB()
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	})

	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	return svc, dbpkg.FromGorm(conn)
}

func intPtr(v int) *int { return &v }

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestCreateDiscountValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateDiscount(ctx, CreateInput{Code: "", Type: enums.DiscountTypeCoupon})
	require.Error(t, err)

	// Coupon with both percent and amount off.
	_, err = svc.CreateDiscount(ctx, CreateInput{
		Code:       "BOTH",
		Type:       enums.DiscountTypeCoupon,
		PercentOff: intPtr(10),
		AmountOff:  decPtr(100),
	})
	require.Error(t, err)

	_, err = svc.CreateDiscount(ctx, CreateInput{
		Code:       "PCT",
		Type:       enums.DiscountTypeCoupon,
		PercentOff: intPtr(150),
	})
	require.Error(t, err)

	_, err = svc.CreateDiscount(ctx, CreateInput{Code: "CARD", Type: enums.DiscountTypeGiftCard})
	require.Error(t, err)

	created, err := svc.CreateDiscount(ctx, CreateInput{
		Code:       "welcome10",
		Type:       enums.DiscountTypeCoupon,
		PercentOff: intPtr(10),
	})
	require.NoError(t, err)
	require.Equal(t, "WELCOME10", created.Code)
	require.True(t, created.IsActive)

	_, err = svc.CreateDiscount(ctx, CreateInput{
		Code:       "WELCOME10",
		Type:       enums.DiscountTypeCoupon,
		PercentOff: intPtr(20),
	})
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeConflict, appErr.Code())
}

func TestValidateForCart(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateDiscount(ctx, CreateInput{
		Code:        "TEN",
		Type:        enums.DiscountTypeCoupon,
		PercentOff:  intPtr(10),
		MinPurchase: decimal.NewFromInt(1000),
	})
	require.NoError(t, err)

	res, err := svc.ValidateForCart(ctx, "ten", decimal.NewFromInt(2000))
	require.NoError(t, err)
	require.True(t, res.DiscountAmount.Equal(decimal.NewFromInt(200)))

	// Below the minimum purchase.
	_, err = svc.ValidateForCart(ctx, "TEN", decimal.NewFromInt(500))
	require.Error(t, err)

	_, err = svc.ValidateForCart(ctx, "NOPE", decimal.NewFromInt(2000))
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestValidateRejectsExpiredAndInactive(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	_, err := svc.CreateDiscount(ctx, CreateInput{
		Code:      "OLD",
		Type:      enums.DiscountTypeCoupon,
		AmountOff: decPtr(50),
		ExpiresAt: &past,
	})
	require.NoError(t, err)

	_, err = svc.ValidateForCart(ctx, "OLD", decimal.NewFromInt(1000))
	require.Error(t, err)

	created, err := svc.CreateDiscount(ctx, CreateInput{
		Code:      "PAUSED",
		Type:      enums.DiscountTypeCoupon,
		AmountOff: decPtr(50),
	})
	require.NoError(t, err)

	off := false
	_, err = svc.UpdateDiscount(ctx, created.ID, UpdateInput{IsActive: &off})
	require.NoError(t, err)

	_, err = svc.ValidateForCart(ctx, "PAUSED", decimal.NewFromInt(1000))
	require.Error(t, err)
}

func TestFixedCouponCappedAtSubtotal(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateDiscount(ctx, CreateInput{
		Code:      "FLAT500",
		Type:      enums.DiscountTypeCoupon,
		AmountOff: decPtr(500),
	})
	require.NoError(t, err)

	res, err := svc.ValidateForCart(ctx, "FLAT500", decimal.NewFromInt(300))
	require.NoError(t, err)
	require.True(t, res.DiscountAmount.Equal(decimal.NewFromInt(300)))
}

func TestRedeemMovesUsageAndGiftBalance(t *testing.T) {
	svc, client := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateDiscount(ctx, CreateInput{
		Code:       "ONCE",
		Type:       enums.DiscountTypeCoupon,
		AmountOff:  decPtr(100),
		UsageLimit: intPtr(1),
	})
	require.NoError(t, err)

	err = client.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := svc.RedeemTx(ctx, tx, "ONCE", decimal.NewFromInt(100))
		return err
	})
	require.NoError(t, err)

	// Second redemption trips the usage limit.
	err = client.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := svc.RedeemTx(ctx, tx, "ONCE", decimal.NewFromInt(100))
		return err
	})
	require.Error(t, err)

	_, err = svc.CreateDiscount(ctx, CreateInput{
		Code:    "GIFT",
		Type:    enums.DiscountTypeGiftCard,
		Balance: decPtr(1000),
	})
	require.NoError(t, err)

	err = client.WithTx(ctx, func(tx *gorm.DB) error {
		redeemed, err := svc.RedeemTx(ctx, tx, "GIFT", decimal.NewFromInt(400))
		if err != nil {
			return err
		}
		require.True(t, redeemed.Balance.Equal(decimal.NewFromInt(600)))
		return nil
	})
	require.NoError(t, err)

	res, err := svc.ValidateForCart(ctx, "GIFT", decimal.NewFromInt(5000))
	require.NoError(t, err)
	require.True(t, res.DiscountAmount.Equal(decimal.NewFromInt(600)))

	// Draw past the remaining balance.
	err = client.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := svc.RedeemTx(ctx, tx, "GIFT", decimal.NewFromInt(700))
		return err
	})
	require.Error(t, err)
}
