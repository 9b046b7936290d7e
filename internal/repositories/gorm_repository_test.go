package repositories_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"kedai/internal/models"
	"kedai/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory SQLite database with the schema migrated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.MenuItem{},
		&models.DiscountCode{},
		&models.Order{},
		&models.OrderLine{},
		&models.PaymentTransaction{},
	))
	return db
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newOrder(userID *string, status models.OrderStatus, createdAt time.Time) *models.Order {
	return &models.Order{
		UserID:          userID,
		Status:          status,
		PaymentMethod:   models.PaymentMethodPayAtCounter,
		PaymentProvider: "Cash",
		Subtotal:        money("20.00"),
		ServiceTax:      money("2.00"),
		SST:             money("1.20"),
		GrandTotal:      money("23.20"),
		DiscountAmount:  decimal.Zero,
		CreatedAt:       createdAt,
		Lines: []models.OrderLine{
			{MenuItemID: "nasi-lemak", Name: "Nasi Lemak", UnitPrice: money("10.00"), Quantity: 2},
			{MenuItemID: "teh-tarik", Name: "Teh Tarik", UnitPrice: money("3.50"), Quantity: 1, Sweetness: "50", IceLevel: "Less ice"},
		},
	}
}

func TestGORMOrderRepository_CreateAndGet(t *testing.T) {
	repo := repositories.NewGORMOrderRepository(newTestDB(t))
	ctx := context.Background()

	order := newOrder(nil, models.OrderStatusReceived, time.Now())
	require.NoError(t, repo.Create(ctx, order))
	require.NotEmpty(t, order.ID)

	got, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusReceived, got.Status)
	assert.Nil(t, got.UserID)
	assert.True(t, money("23.20").Equal(got.GrandTotal))
	require.Len(t, got.Lines, 2)
	assert.Equal(t, "Less ice", got.Lines[1].IceLevel)

	_, err = repo.GetByID(ctx, "missing")
	assert.True(t, errors.Is(err, repositories.ErrOrderNotFound))
}

func TestGORMOrderRepository_UpdateWritesLifecycleFields(t *testing.T) {
	repo := repositories.NewGORMOrderRepository(newTestDB(t))
	ctx := context.Background()

	order := newOrder(nil, models.OrderStatusReceived, time.Now())
	require.NoError(t, repo.Create(ctx, order))

	require.NoError(t, order.TransitionTo(models.OrderStatusCancelled, "payment declined", time.Now()))
	require.NoError(t, repo.Update(ctx, order, models.OrderStatusReceived))

	got, err := repo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, got.Status)
	require.NotNil(t, got.CancellationReason)
	assert.Equal(t, "payment declined", *got.CancellationReason)
	assert.NotNil(t, got.UpdatedAt)
	assert.Len(t, got.Lines, 2)

	missing := &models.Order{ID: "nope", Status: models.OrderStatusPending}
	assert.True(t, errors.Is(repo.Update(ctx, missing, models.OrderStatusReceived), repositories.ErrOrderNotFound))
}

func TestOrderRepositories_UpdateRejectsStaleStatus(t *testing.T) {
	stores := map[string]repositories.OrderRepository{
		"gorm": repositories.NewGORMOrderRepository(newTestDB(t)),
		"mock": repositories.NewMockOrderRepository(),
	}
	for name, repo := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			order := newOrder(nil, models.OrderStatusReady, time.Now())
			require.NoError(t, repo.Create(ctx, order))

			first, err := repo.GetByID(ctx, order.ID)
			require.NoError(t, err)
			second, err := repo.GetByID(ctx, order.ID)
			require.NoError(t, err)

			require.NoError(t, first.TransitionTo(models.OrderStatusCompleted, "", time.Now()))
			require.NoError(t, repo.Update(ctx, first, models.OrderStatusReady))

			require.NoError(t, second.TransitionTo(models.OrderStatusCancelled, "oops", time.Now()))
			err = repo.Update(ctx, second, models.OrderStatusReady)

			var terr *models.TransitionError
			require.ErrorAs(t, err, &terr)
			assert.Equal(t, models.OrderStatusCompleted, terr.From)
			assert.Equal(t, models.OrderStatusCancelled, terr.To)

			got, err := repo.GetByID(ctx, order.ID)
			require.NoError(t, err)
			assert.Equal(t, models.OrderStatusCompleted, got.Status)
			assert.NotNil(t, got.CompletedAt)
			assert.Nil(t, got.CancellationReason)
		})
	}
}

func TestGORMOrderRepository_ListAndCount(t *testing.T) {
	repo := repositories.NewGORMOrderRepository(newTestDB(t))
	ctx := context.Background()
	user := "user-1"
	base := time.Now().Add(-time.Hour)

	require.NoError(t, repo.Create(ctx, newOrder(&user, models.OrderStatusReceived, base)))
	require.NoError(t, repo.Create(ctx, newOrder(&user, models.OrderStatusReady, base.Add(time.Minute))))
	require.NoError(t, repo.Create(ctx, newOrder(nil, models.OrderStatusReady, base.Add(2*time.Minute))))

	all, err := repo.ListByStatus(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].CreatedAt.After(all[1].CreatedAt))

	ready, err := repo.ListByStatus(ctx, models.OrderStatusReady)
	require.NoError(t, err)
	assert.Len(t, ready, 2)

	mine, err := repo.ListByUser(ctx, user)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[models.OrderStatusReceived])
	assert.Equal(t, int64(2), counts[models.OrderStatusReady])
	assert.Equal(t, int64(0), counts[models.OrderStatusCancelled])
}

func TestGORMDiscountRepository_FindByCodeIgnoresCase(t *testing.T) {
	repo := repositories.NewGORMDiscountRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.DiscountCode{
		Code:       "save10",
		Percentage: money("10"),
		IsActive:   true,
	}))

	got, err := repo.FindByCode(ctx, "Save10")
	require.NoError(t, err)
	assert.Equal(t, "SAVE10", got.Code)
	assert.False(t, got.MaxDiscountAmount.Valid)

	_, err = repo.FindByCode(ctx, "NOPE")
	assert.True(t, errors.Is(err, repositories.ErrDiscountNotFound))
}

func TestGORMDiscountRepository_IncrementUsageRespectsCap(t *testing.T) {
	repo := repositories.NewGORMDiscountRepository(newTestDB(t))
	ctx := context.Background()
	maxUses := 1

	code := &models.DiscountCode{Code: "ONCE", Percentage: money("5"), MaxUses: &maxUses, IsActive: true}
	require.NoError(t, repo.Create(ctx, code))

	require.NoError(t, repo.IncrementUsage(ctx, code.ID))
	err := repo.IncrementUsage(ctx, code.ID)
	assert.True(t, errors.Is(err, repositories.ErrDiscountExhausted))

	require.NoError(t, repo.DecrementUsage(ctx, code.ID))
	got, err := repo.GetByID(ctx, code.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.TimesUsed)

	assert.True(t, errors.Is(repo.IncrementUsage(ctx, 999), repositories.ErrDiscountNotFound))
}

func TestGORMDiscountRepository_ConcurrentClaimsNeverExceedCap(t *testing.T) {
	repo := repositories.NewGORMDiscountRepository(newTestDB(t))
	ctx := context.Background()
	maxUses := 3

	code := &models.DiscountCode{Code: "RUSH", Percentage: money("20"), MaxUses: &maxUses, IsActive: true}
	require.NoError(t, repo.Create(ctx, code))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.IncrementUsage(ctx, code.ID); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	got, err := repo.GetByID(ctx, code.ID)
	require.NoError(t, err)
	assert.Equal(t, maxUses, succeeded)
	assert.Equal(t, maxUses, got.TimesUsed)
}

func TestGORMPaymentRepository_ListByOrder(t *testing.T) {
	repo := repositories.NewGORMPaymentRepository(newTestDB(t))
	ctx := context.Background()
	reason := "Invalid card number"

	require.NoError(t, repo.Create(ctx, &models.PaymentTransaction{
		OrderID: "order-1", PaymentMethod: models.PaymentMethodCard, TransactionID: "TXN1",
		Amount: money("23.20"), Status: models.PaymentStatusFailed, ErrorMessage: &reason,
	}))
	require.NoError(t, repo.Create(ctx, &models.PaymentTransaction{
		OrderID: "order-1", PaymentMethod: models.PaymentMethodPayAtCounter, TransactionID: "TXN2",
		Amount: money("23.20"), Status: models.PaymentStatusSuccess,
	}))
	require.NoError(t, repo.Create(ctx, &models.PaymentTransaction{
		OrderID: "order-2", PaymentMethod: models.PaymentMethodPayAtCounter, TransactionID: "TXN3",
		Amount: money("5.00"), Status: models.PaymentStatusSuccess,
	}))

	txns, err := repo.ListByOrder(ctx, "order-1")
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, "TXN1", txns[0].TransactionID)
	assert.Equal(t, models.PaymentStatusSuccess, txns[1].Status)
}

func TestGORMMenuRepository_GetByID(t *testing.T) {
	repo := repositories.NewGORMMenuRepository(newTestDB(t))
	ctx := context.Background()

	item := &models.MenuItem{Name: "Roti Canai", Price: money("2.50"), IsAvailable: true}
	require.NoError(t, repo.Create(ctx, item))

	got, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Roti Canai", got.Name)
	assert.True(t, money("2.50").Equal(got.Price))

	_, err = repo.GetByID(ctx, "missing")
	assert.True(t, errors.Is(err, repositories.ErrMenuItemNotFound))
}

func TestMockDiscountRepository_IncrementUsageRespectsCap(t *testing.T) {
	repo := repositories.NewMockDiscountRepository()
	ctx := context.Background()
	maxUses := 2

	code := &models.DiscountCode{Code: "twice", Percentage: money("5"), MaxUses: &maxUses, IsActive: true}
	require.NoError(t, repo.Create(ctx, code))

	require.NoError(t, repo.IncrementUsage(ctx, code.ID))
	require.NoError(t, repo.IncrementUsage(ctx, code.ID))
	assert.True(t, errors.Is(repo.IncrementUsage(ctx, code.ID), repositories.ErrDiscountExhausted))

	got, err := repo.FindByCode(ctx, "TWICE")
	require.NoError(t, err)
	assert.Equal(t, 2, got.TimesUsed)
}
