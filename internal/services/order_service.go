package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"kedai/internal/models"
	"kedai/internal/repositories"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderExchange is the AMQP exchange order events are published to.
const OrderExchange = "orders"

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// EventPublisher delivers an event body to an exchange.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// OrderEvent is the message body published for every order change.
type OrderEvent struct {
	Event          string             `json:"event"`
	OrderID        string             `json:"order_id"`
	UserID         *string            `json:"user_id,omitempty"`
	Status         models.OrderStatus `json:"status"`
	PreviousStatus models.OrderStatus `json:"previous_status,omitempty"`
	GrandTotal     decimal.Decimal    `json:"grand_total"`
	ChargeAmount   decimal.Decimal    `json:"charge_amount"`
	Reason         *string            `json:"reason,omitempty"`
	OccurredAt     time.Time          `json:"occurred_at"`
}

// OrderDraft is everything needed to place an order from a priced cart.
type OrderDraft struct {
	UserID          *string
	PaymentMethod   models.PaymentMethod
	PaymentProvider string
	Totals          models.Totals
	Lines           []models.CartLine
	DiscountCodeID  *uint
	DiscountAmount  decimal.Decimal
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo repositories.OrderRepository
	publisher EventPublisher
	log       *zap.Logger
	now       func() time.Time
}

// NewOrderService creates a new OrderService. publisher may be nil, in which
// case no events are sent.
func NewOrderService(orderRepo repositories.OrderRepository, publisher EventPublisher, log *zap.Logger) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// CreateOrder places a new order in Received status with a snapshot of the cart lines.
func (s *OrderService) CreateOrder(ctx context.Context, draft OrderDraft) (*models.Order, error) {
	if len(draft.Lines) == 0 {
		return nil, ErrCartEmpty
	}

	lines := make([]models.OrderLine, 0, len(draft.Lines))
	for _, l := range draft.Lines {
		lines = append(lines, models.OrderLine{
			MenuItemID: l.MenuItemID,
			Name:       l.Name,
			UnitPrice:  l.UnitPrice,
			Quantity:   l.Quantity,
			Sweetness:  l.Options.Sweetness,
			IceLevel:   l.Options.IceLevel,
		})
	}

	order := &models.Order{
		UserID:          draft.UserID,
		Status:          models.OrderStatusReceived,
		PaymentMethod:   draft.PaymentMethod,
		PaymentProvider: draft.PaymentProvider,
		Subtotal:        draft.Totals.Subtotal,
		ServiceTax:      draft.Totals.ServiceTax,
		SST:             draft.Totals.SST,
		GrandTotal:      draft.Totals.GrandTotal,
		DiscountCodeID:  draft.DiscountCodeID,
		DiscountAmount:  draft.DiscountAmount,
		Lines:           lines,
		CreatedAt:       s.now(),
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order in repository: %w", err)
	}

	s.log.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("grand_total", order.GrandTotal.StringFixed(2)),
		zap.String("discount", order.DiscountAmount.StringFixed(2)),
	)
	s.publish(EventOrderCreated, order, "")
	return order, nil
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	return s.orderRepo.GetByID(ctx, id)
}

// ListOrders returns orders newest first, optionally filtered by status.
func (s *OrderService) ListOrders(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	return s.orderRepo.ListByStatus(ctx, status)
}

// ListOrdersByUser returns a customer's order history newest first.
func (s *OrderService) ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return s.orderRepo.ListByUser(ctx, userID)
}

// CountByStatus returns how many orders sit in each status.
func (s *OrderService) CountByStatus(ctx context.Context) (map[models.OrderStatus]int64, error) {
	return s.orderRepo.CountByStatus(ctx)
}

// UpdateStatus moves an order to status to. reason is only kept when cancelling.
// An illegal move returns *models.TransitionError and leaves the order as it was.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, to models.OrderStatus, reason string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	from := order.Status
	if err := order.TransitionTo(to, reason, s.now()); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Update(ctx, order, from); err != nil {
		return nil, fmt.Errorf("failed to update order status for order %s: %w", id, err)
	}

	s.log.Info("order status changed",
		zap.String("order_id", id),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
	)
	s.publish(EventOrderStatusChanged, order, from)
	return order, nil
}

// AdvanceStatus moves an order one step forward in the kitchen workflow.
func (s *OrderService) AdvanceStatus(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next, ok := order.Status.Next()
	if !ok {
		return nil, &models.TransitionError{From: order.Status, To: order.Status}
	}
	return s.UpdateStatus(ctx, id, next, "")
}

// CancelOrder cancels a non-terminal order and records reason.
func (s *OrderService) CancelOrder(ctx context.Context, id, reason string) (*models.Order, error) {
	return s.UpdateStatus(ctx, id, models.OrderStatusCancelled, reason)
}

// publish is best effort: the order change is already committed.
func (s *OrderService) publish(event string, order *models.Order, previous models.OrderStatus) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(OrderEvent{
		Event:          event,
		OrderID:        order.ID,
		UserID:         order.UserID,
		Status:         order.Status,
		PreviousStatus: previous,
		GrandTotal:     order.GrandTotal,
		ChargeAmount:   order.ChargeAmount(),
		Reason:         order.CancellationReason,
		OccurredAt:     s.now(),
	})
	if err != nil {
		s.log.Error("failed to marshal order event", zap.String("order_id", order.ID), zap.Error(err))
		return
	}
	if err := s.publisher.Publish(OrderExchange, event, body); err != nil {
		s.log.Warn("failed to publish order event",
			zap.String("event", event),
			zap.String("order_id", order.ID),
			zap.Error(err),
		)
	}
}
