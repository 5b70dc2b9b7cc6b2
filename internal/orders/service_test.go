package order

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

	dbpkg "github.com/solemate/solemate-backend/pkg/db"
	"github.com/solemate/solemate-backend/pkg/db/models"
	"github.com/solemate/solemate-backend/pkg/enums"
	pkgerrors "github.com/solemate/solemate-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *Repository, *dbpkg.Client) {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:?_fk=1"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.Order{}, &models.OrderLineItem{}, &models.Payment{}))
	t.Cleanup(func() {
		sqlDB, _ := conn.DB()
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	})

	repo := NewRepository(conn)
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc, repo, dbpkg.FromGorm(conn)
}

func seedOrder(t *testing.T, repo *Repository, client *dbpkg.Client, userID uuid.UUID, total int64) *models.Order {
	t.Helper()
	ctx := context.Background()
	row := &models.Order{
		UserID:       userID,
		CurrencyCode: enums.CurrencyINR,
		TotalPrice:   decimal.NewFromInt(total),
		Items: []models.OrderLineItem{
			{Title: "Court Classic", Qty: 1, UnitPrice: decimal.NewFromInt(total)},
		},
	}
	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		number, err := repo.NextOrderNumberTx(ctx, tx)
		if err != nil {
			return err
		}
		row.OrderNumber = number
		return repo.CreateTx(ctx, tx, row)
	})
	require.NoError(t, err)
	return row
}

func TestOrderNumbersAreSequential(t *testing.T) {
	_, repo, client := newTestService(t)
	userID := uuid.New()

	first := seedOrder(t, repo, client, userID, 1000)
	second := seedOrder(t, repo, client, userID, 2000)

	require.Equal(t, int64(1001), first.OrderNumber)
	require.Equal(t, int64(1002), second.OrderNumber)
}

func TestGetOrderForUserHidesForeignOrders(t *testing.T) {
	svc, repo, client := newTestService(t)
	owner := uuid.New()
	row := seedOrder(t, repo, client, owner, 4999)

	got, err := svc.GetOrderForUser(context.Background(), owner, row.ID)
	require.NoError(t, err)
	require.Equal(t, row.OrderNumber, got.OrderNumber)
	require.Len(t, got.Items, 1)

	_, err = svc.GetOrderForUser(context.Background(), uuid.New(), row.ID)
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestListOrdersForUser(t *testing.T) {
	svc, repo, client := newTestService(t)
	userID := uuid.New()
	seedOrder(t, repo, client, userID, 1000)
	seedOrder(t, repo, client, userID, 2000)
	seedOrder(t, repo, client, uuid.New(), 3000)

	mine, err := svc.ListOrdersForUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
}

func TestAdminListOrdersFiltersAndPages(t *testing.T) {
	svc, repo, client := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	var rows []*models.Order
	for i := 0; i < 5; i++ {
		rows = append(rows, seedOrder(t, repo, client, userID, int64(1000+i)))
	}
	// Spread created_at so keyset ordering is deterministic under sqlite.
	base := time.Now().Add(-time.Hour)
	for i, row := range rows {
		require.NoError(t, client.DB().Model(row).
			UpdateColumn("created_at", base.Add(time.Duration(i)*time.Minute)).Error)
	}
	require.NoError(t, client.DB().Model(rows[0]).
		UpdateColumn("financial_status", enums.FinancialStatusPaid).Error)

	paid, err := svc.AdminListOrders(ctx, AdminListInput{FinancialStatus: "paid"})
	require.NoError(t, err)
	require.Len(t, paid.Orders, 1)

	_, err = svc.AdminListOrders(ctx, AdminListInput{FinancialStatus: "bogus"})
	require.Error(t, err)

	page1, err := svc.AdminListOrders(ctx, AdminListInput{Limit: 3})
	require.NoError(t, err)
	require.Len(t, page1.Orders, 3)
	require.NotNil(t, page1.NextCursor)

	page2, err := svc.AdminListOrders(ctx, AdminListInput{Limit: 3, Cursor: *page1.NextCursor})
	require.NoError(t, err)
	require.Len(t, page2.Orders, 2)
	require.Nil(t, page2.NextCursor)

	seen := map[int64]bool{}
	for _, o := range append(page1.Orders, page2.Orders...) {
		require.False(t, seen[o.OrderNumber], "duplicate order %d across pages", o.OrderNumber)
		seen[o.OrderNumber] = true
	}
}

func TestAdminUpdateStatus(t *testing.T) {
	svc, repo, client := newTestService(t)
	row := seedOrder(t, repo, client, uuid.New(), 2500)
	ctx := context.Background()

	_, err := svc.AdminUpdateStatus(ctx, row.ID, StatusUpdateInput{})
	require.Error(t, err)

	_, err = svc.AdminUpdateStatus(ctx, row.ID, StatusUpdateInput{FulfillmentStatus: "teleported"})
	require.Error(t, err)

	updated, err := svc.AdminUpdateStatus(ctx, row.ID, StatusUpdateInput{FulfillmentStatus: "fulfilled"})
	require.NoError(t, err)
	require.Equal(t, enums.FulfillmentStatusFulfilled, updated.FulfillmentStatus)
	require.Equal(t, enums.FinancialStatusPending, updated.FinancialStatus)

	updated, err = svc.AdminUpdateStatus(ctx, row.ID, StatusUpdateInput{FinancialStatus: "refunded"})
	require.NoError(t, err)
	require.Equal(t, enums.FinancialStatusRefunded, updated.FinancialStatus)

	_, err = svc.AdminUpdateStatus(ctx, uuid.New(), StatusUpdateInput{FulfillmentStatus: "fulfilled"})
	require.Error(t, err)
}
