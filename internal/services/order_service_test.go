package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"kedai/internal/models"
	"kedai/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleDraft() services.OrderDraft {
	lines := []models.CartLine{{
		MenuItemID: "m1",
		Name:       "Nasi Lemak",
		UnitPrice:  dec("10.00"),
		Quantity:   2,
		Options:    models.LineOptions{Sweetness: "Normal"},
	}}
	return services.OrderDraft{
		PaymentMethod:   models.PaymentMethodPayAtCounter,
		PaymentProvider: "Cash",
		Totals:          services.CalculateTotals(lines),
		Lines:           lines,
		DiscountAmount:  dec("2.32"),
	}
}

func TestOrderService_CreateOrder(t *testing.T) {
	repo := new(MockOrderRepository)
	pub := new(MockPublisher)
	svc := services.NewOrderService(repo, pub, zap.NewNop())

	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Order")).
		Run(func(args mock.Arguments) { args.Get(1).(*models.Order).ID = "order-1" }).
		Return(nil).Once()
	pub.On("Publish", services.OrderExchange, services.EventOrderCreated, mock.MatchedBy(func(body []byte) bool {
		var ev services.OrderEvent
		return json.Unmarshal(body, &ev) == nil && ev.OrderID == "order-1" && ev.ChargeAmount.StringFixed(2) == "20.88"
	})).Return(nil).Once()

	order, err := svc.CreateOrder(context.Background(), sampleDraft())

	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusReceived, order.Status)
	assertMoney(t, "23.20", order.GrandTotal)
	require.Len(t, order.Lines, 1)
	assert.Equal(t, "Nasi Lemak", order.Lines[0].Name)
	assert.Equal(t, "Normal", order.Lines[0].Sweetness)
	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestOrderService_CreateOrderSurvivesPublishFailure(t *testing.T) {
	repo := new(MockOrderRepository)
	pub := new(MockPublisher)
	svc := services.NewOrderService(repo, pub, zap.NewNop())

	repo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	_, err := svc.CreateOrder(context.Background(), sampleDraft())
	assert.NoError(t, err)
}

func TestOrderService_CreateOrderRejectsEmptyDraft(t *testing.T) {
	svc := services.NewOrderService(new(MockOrderRepository), nil, zap.NewNop())

	_, err := svc.CreateOrder(context.Background(), services.OrderDraft{})
	assert.ErrorIs(t, err, services.ErrCartEmpty)
}

func TestOrderService_UpdateStatusRejectsSkippedStep(t *testing.T) {
	repo := new(MockOrderRepository)
	svc := services.NewOrderService(repo, nil, zap.NewNop())

	repo.On("GetByID", mock.Anything, "order-1").
		Return(&models.Order{ID: "order-1", Status: models.OrderStatusReceived}, nil).Once()

	_, err := svc.UpdateStatus(context.Background(), "order-1", models.OrderStatusReady, "")

	var terr *models.TransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, models.OrderStatusReceived, terr.From)
	assert.Equal(t, models.OrderStatusReady, terr.To)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_AdvanceStatus(t *testing.T) {
	repo := new(MockOrderRepository)
	pub := new(MockPublisher)
	svc := services.NewOrderService(repo, pub, zap.NewNop())

	repo.On("GetByID", mock.Anything, "order-1").
		Return(&models.Order{ID: "order-1", Status: models.OrderStatusReady}, nil).Twice()
	repo.On("Update", mock.Anything, mock.MatchedBy(func(o *models.Order) bool {
		return o.Status == models.OrderStatusCompleted && o.CompletedAt != nil
	}), models.OrderStatusReady).Return(nil).Once()
	pub.On("Publish", services.OrderExchange, services.EventOrderStatusChanged, mock.Anything).Return(nil).Once()

	order, err := svc.AdvanceStatus(context.Background(), "order-1")

	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCompleted, order.Status)
	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestOrderService_AdvanceTerminalOrder(t *testing.T) {
	repo := new(MockOrderRepository)
	svc := services.NewOrderService(repo, nil, zap.NewNop())

	repo.On("GetByID", mock.Anything, "order-1").
		Return(&models.Order{ID: "order-1", Status: models.OrderStatusCancelled}, nil).Once()

	_, err := svc.AdvanceStatus(context.Background(), "order-1")

	var terr *models.TransitionError
	assert.ErrorAs(t, err, &terr)
}

func TestOrderService_CancelOrderRecordsReason(t *testing.T) {
	repo := new(MockOrderRepository)
	svc := services.NewOrderService(repo, nil, zap.NewNop())

	repo.On("GetByID", mock.Anything, "order-1").
		Return(&models.Order{ID: "order-1", Status: models.OrderStatusPreparing}, nil).Once()
	repo.On("Update", mock.Anything, mock.AnythingOfType("*models.Order"), models.OrderStatusPreparing).Return(nil).Once()

	order, err := svc.CancelOrder(context.Background(), "order-1", "customer left")

	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)
	require.NotNil(t, order.CancellationReason)
	assert.Equal(t, "customer left", *order.CancellationReason)
}

func TestOrderService_UpdateStatusLosesToConcurrentChange(t *testing.T) {
	repo := new(MockOrderRepository)
	pub := new(MockPublisher)
	svc := services.NewOrderService(repo, pub, zap.NewNop())

	repo.On("GetByID", mock.Anything, "order-1").
		Return(&models.Order{ID: "order-1", Status: models.OrderStatusReady}, nil).Once()
	repo.On("Update", mock.Anything, mock.AnythingOfType("*models.Order"), models.OrderStatusReady).
		Return(&models.TransitionError{From: models.OrderStatusCompleted, To: models.OrderStatusCancelled}).Once()

	_, err := svc.CancelOrder(context.Background(), "order-1", "oops")

	var terr *models.TransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, models.OrderStatusCompleted, terr.From)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_UpdateStatusNotFound(t *testing.T) {
	repo := new(MockOrderRepository)
	svc := services.NewOrderService(repo, nil, zap.NewNop())

	repo.On("GetByID", mock.Anything, "missing").Return(nil, services.ErrOrderNotFound).Once()

	_, err := svc.UpdateStatus(context.Background(), "missing", models.OrderStatusPending, "")
	assert.ErrorIs(t, err, services.ErrOrderNotFound)
}

func TestOrderService_ListAndCount(t *testing.T) {
	repo := new(MockOrderRepository)
	svc := services.NewOrderService(repo, nil, zap.NewNop())
	ctx := context.Background()

	repo.On("ListByStatus", mock.Anything, models.OrderStatusReady).Return([]models.Order{{ID: "a"}}, nil).Once()
	repo.On("ListByUser", mock.Anything, "user-1").Return([]models.Order{{ID: "b"}, {ID: "c"}}, nil).Once()
	repo.On("CountByStatus", mock.Anything).Return(map[models.OrderStatus]int64{models.OrderStatusReady: 1}, nil).Once()

	ready, err := svc.ListOrders(ctx, models.OrderStatusReady)
	require.NoError(t, err)
	assert.Len(t, ready, 1)

	mine, err := svc.ListOrdersByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	counts, err := svc.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[models.OrderStatusReady])
	repo.AssertExpectations(t)
}
