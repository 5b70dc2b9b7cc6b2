package payment

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	notification "github.com/solemate/solemate-backend/internal/notifications"
	orderpkg "github.com/solemate/solemate-backend/internal/orders"
	"github.com/solemate/solemate-backend/internal/users"
	dbpkg "github.com/solemate/solemate-backend/pkg/db"
	"github.com/solemate/solemate-backend/pkg/db/models"
	"github.com/solemate/solemate-backend/pkg/enums"
	pkgerrors "github.com/solemate/solemate-backend/pkg/errors"
)

type fixture struct {
	svc    Service
	client *dbpkg.Client
	orders *orderpkg.Repository
	userID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "payments.db") + "?_fk=1&_busy_timeout=5000"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.User{}, &models.Order{}, &models.OrderLineItem{},
		&models.Payment{}, &models.OutboxEvent{},
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
		Email:        "customer@example.com",
		PasswordHash: "irrelevant",
		FirstName:    "Asha",
		LastName:     "Rao",
		Role:         enums.UserRoleCustomer,
	})
	require.NoError(t, err)

	orderRepo := orderpkg.NewRepository(conn)
	emitter := notification.NewService(notification.NewRepository(conn), nil)
	svc, err := NewService(ServiceParams{
		DB:         client,
		Repository: NewRepository(conn),
		Orders:     orderRepo,
		Users:      userRepo,
		Emitter:    emitter,
	})
	require.NoError(t, err)

	return &fixture{svc: svc, client: client, orders: orderRepo, userID: user.ID}
}

func (f *fixture) placeOrder(t *testing.T, total int64) *models.Order {
	t.Helper()
	ctx := context.Background()
	row := &models.Order{
		UserID:       f.userID,
		CurrencyCode: enums.CurrencyINR,
		TotalPrice:   decimal.NewFromInt(total),
	}
	err := f.client.WithTx(ctx, func(tx *gorm.DB) error {
		number, err := f.orders.NextOrderNumberTx(ctx, tx)
		if err != nil {
			return err
		}
		row.OrderNumber = number
		return f.orders.CreateTx(ctx, tx, row)
	})
	require.NoError(t, err)
	return row
}

func (f *fixture) createPayment(t *testing.T, orderID uuid.UUID, amount int64) *models.Payment {
	t.Helper()
	ctx := context.Background()
	var row *models.Payment
	err := f.client.WithTx(ctx, func(tx *gorm.DB) error {
		created, err := f.svc.CreatePaymentTx(ctx, tx, orderID, f.userID, decimal.NewFromInt(amount))
		row = created
		return err
	})
	require.NoError(t, err)
	return row
}

func (f *fixture) outboxRows(t *testing.T) []models.OutboxEvent {
	t.Helper()
	var rows []models.OutboxEvent
	require.NoError(t, f.client.DB().Order("created_at ASC").Find(&rows).Error)
	return rows
}

func TestDeriveStatus(t *testing.T) {
	amount := decimal.NewFromInt(1980)
	require.Equal(t, enums.PaymentStatusPending, DeriveStatus(amount, decimal.Zero))
	require.Equal(t, enums.PaymentStatusPartial, DeriveStatus(amount, decimal.NewFromInt(1000)))
	require.Equal(t, enums.PaymentStatusPaid, DeriveStatus(amount, amount))
	require.Equal(t, enums.PaymentStatusPaid, DeriveStatus(amount, decimal.NewFromInt(2000)))
}

func TestCreatePaymentIdempotentByOrder(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, 1980)

	first := f.createPayment(t, order.ID, 1980)
	second := f.createPayment(t, order.ID, 1980)
	require.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, f.client.DB().Model(&models.Payment{}).
		Where("order_id = ?", order.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestInitiateIsOneShot(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, 1980)
	row := f.createPayment(t, order.ID, 1980)
	ctx := context.Background()

	first, err := f.svc.InitiatePayment(ctx, f.userID, row.ID)
	require.NoError(t, err)
	second, err := f.svc.InitiatePayment(ctx, f.userID, row.ID)
	require.NoError(t, err)
	require.Equal(t, first.PaymentInitiatedAt, second.PaymentInitiatedAt)

	// Exactly one initiated event queued despite two calls.
	rows := f.outboxRows(t)
	require.Len(t, rows, 1)
	require.Equal(t, enums.EventPaymentInitiated, rows[0].EventType)

	_, err = f.svc.InitiatePayment(ctx, uuid.New(), row.ID)
	require.Error(t, err)

	_, err = f.svc.InitiatePayment(ctx, f.userID, uuid.New())
	require.Error(t, err)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	require.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestAdminUpdateDerivesStatusAndMirrorsOrder(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, 1980)
	row := f.createPayment(t, order.ID, 1980)
	ctx := context.Background()

	res, err := f.svc.AdminUpdatePayment(ctx, row.ID, UpdateInput{AmountPaid: decimal.NewFromInt(1000)})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, enums.PaymentStatusPartial, res.Status)

	reloaded, err := f.orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.FinancialStatusPending, reloaded.FinancialStatus)

	res, err = f.svc.AdminUpdatePayment(ctx, row.ID, UpdateInput{AmountPaid: decimal.NewFromInt(1980)})
	require.NoError(t, err)
	require.Equal(t, enums.PaymentStatusPaid, res.Status)

	reloaded, err = f.orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.FinancialStatusPaid, reloaded.FinancialStatus)

	// Permissive recomputation: a smaller amount un-pays the order.
	res, err = f.svc.AdminUpdatePayment(ctx, row.ID, UpdateInput{AmountPaid: decimal.Zero})
	require.NoError(t, err)
	require.Equal(t, enums.PaymentStatusPending, res.Status)

	reloaded, err = f.orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.FinancialStatusPending, reloaded.FinancialStatus)

	_, err = f.svc.AdminUpdatePayment(ctx, uuid.New(), UpdateInput{AmountPaid: decimal.NewFromInt(10)})
	require.Error(t, err)

	_, err = f.svc.AdminUpdatePayment(ctx, row.ID, UpdateInput{AmountPaid: decimal.NewFromInt(-5)})
	require.Error(t, err)
}

func TestAdminUpdatePartialFieldSemantics(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, 1000)
	row := f.createPayment(t, order.ID, 1000)
	ctx := context.Background()

	txn := "UTR123456"
	_, err := f.svc.AdminUpdatePayment(ctx, row.ID, UpdateInput{
		AmountPaid:    decimal.NewFromInt(500),
		TransactionID: &txn,
	})
	require.NoError(t, err)

	// Omitted transaction id keeps the stored value.
	_, err = f.svc.AdminUpdatePayment(ctx, row.ID, UpdateInput{AmountPaid: decimal.NewFromInt(600)})
	require.NoError(t, err)
	got, err := f.svc.AdminGetPayment(ctx, row.ID)
	require.NoError(t, err)
	require.NotNil(t, got.TransactionID)
	require.Equal(t, "UTR123456", *got.TransactionID)

	// Empty string explicitly clears it.
	empty := ""
	_, err = f.svc.AdminUpdatePayment(ctx, row.ID, UpdateInput{
		AmountPaid:    decimal.NewFromInt(600),
		TransactionID: &empty,
	})
	require.NoError(t, err)
	got, err = f.svc.AdminGetPayment(ctx, row.ID)
	require.NoError(t, err)
	require.NotNil(t, got.TransactionID)
	require.Empty(t, *got.TransactionID)
}

func TestNotificationLabels(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, 1980)
	row := f.createPayment(t, order.ID, 1980)
	ctx := context.Background()

	_, err := f.svc.InitiatePayment(ctx, f.userID, row.ID)
	require.NoError(t, err)
	_, err = f.svc.AdminUpdatePayment(ctx, row.ID, UpdateInput{AmountPaid: decimal.NewFromInt(1000)})
	require.NoError(t, err)
	_, err = f.svc.AdminUpdatePayment(ctx, row.ID, UpdateInput{AmountPaid: decimal.NewFromInt(1980)})
	require.NoError(t, err)
	// A pending-valued admin update after initiation re-emits the
	// initiated label on purpose.
	_, err = f.svc.AdminUpdatePayment(ctx, row.ID, UpdateInput{AmountPaid: decimal.Zero})
	require.NoError(t, err)

	rows := f.outboxRows(t)
	require.Len(t, rows, 4)
	wantTypes := []string{`"initiated"`, `"partial"`, `"completed"`, `"initiated"`}
	for i, want := range wantTypes {
		require.Contains(t, string(rows[i].Payload), `"type":`+want)
	}
	require.Contains(t, string(rows[0].Payload), `"customerEmail":"customer@example.com"`)
}

func TestGetPaymentForOrderOwnership(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, 1500)
	f.createPayment(t, order.ID, 1500)
	ctx := context.Background()

	got, err := f.svc.GetPaymentForOrder(ctx, f.userID, order.ID)
	require.NoError(t, err)
	require.Equal(t, enums.PaymentStatusPending, got.Status)

	_, err = f.svc.GetPaymentForOrder(ctx, uuid.New(), order.ID)
	require.Error(t, err)
}

func TestListPendingAndAdminList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	amounts := []int64{1000, 2000, 3000, 4000}
	var paymentIDs []uuid.UUID
	for _, amount := range amounts {
		order := f.placeOrder(t, amount)
		row := f.createPayment(t, order.ID, amount)
		paymentIDs = append(paymentIDs, row.ID)
	}

	// statuses: paid, pending, paid, partial
	_, err := f.svc.AdminUpdatePayment(ctx, paymentIDs[0], UpdateInput{AmountPaid: decimal.NewFromInt(1000)})
	require.NoError(t, err)
	_, err = f.svc.AdminUpdatePayment(ctx, paymentIDs[2], UpdateInput{AmountPaid: decimal.NewFromInt(3000)})
	require.NoError(t, err)
	_, err = f.svc.AdminUpdatePayment(ctx, paymentIDs[3], UpdateInput{AmountPaid: decimal.NewFromInt(100)})
	require.NoError(t, err)

	pending, err := f.svc.ListPendingForUser(ctx, f.userID)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	for _, p := range pending {
		require.Contains(t, []enums.PaymentStatus{
			enums.PaymentStatusPending, enums.PaymentStatusPartial,
		}, p.Status)
	}

	// Filter applies before the limit truncates.
	paid, err := f.svc.AdminListPayments(ctx, "paid", 1)
	require.NoError(t, err)
	require.Len(t, paid, 1)
	require.Equal(t, enums.PaymentStatusPaid, paid[0].Status)

	all, err := f.svc.AdminListPayments(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 4)

	_, err = f.svc.AdminListPayments(ctx, "exploded", 10)
	require.Error(t, err)
}
