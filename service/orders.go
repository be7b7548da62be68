package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"storefront/logging"
	"storefront/model"
	"storefront/queue"
	"storefront/store"
)

// TaskOrderConfirmation is the queue task type carrying a model.OrderSnapshot
// to the confirmation mail handler.
const TaskOrderConfirmation = "order.confirmation"

const maxNumberAttempts = 3

// enqueueTimeout bounds how long a checkout waits on the task queue.
const enqueueTimeout = 2 * time.Second

var (
	// ErrCreateOrder is the generic failure returned when an order could not
	// be saved. The cause stays reachable via errors.Is.
	ErrCreateOrder = errors.New("failed to create order")
	// ErrUpdateStatus wraps the cause of a failed status update;
	// errors.Is(err, store.ErrNotFound) tells a bad id apart.
	ErrUpdateStatus = errors.New("failed to update order status")
)

type CreateOrderRequest struct {
	CustomerName    string                `json:"customerName"`
	CustomerEmail   string                `json:"customerEmail"`
	CustomerPhone   string                `json:"customerPhone"`
	ShippingAddress model.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   model.PaymentMethod   `json:"paymentMethod"`
	Items           []model.CartItem      `json:"items"`
	Subtotal        float64               `json:"subtotal"`
	Shipping        float64               `json:"shipping"`
	VAT             float64               `json:"vat"`
	GrandTotal      float64               `json:"grandTotal"`
}

type CreateOrderResult struct {
	OrderID     string `json:"orderId"`
	OrderNumber string `json:"orderNumber"`
}

// Orders implements OrderService.
type Orders struct {
	store     store.OrderStore
	queue     queue.Queue
	logger    logging.Logger
	now       func() time.Time
	newID     func() string
	newNumber func(time.Time) string

	tracer  trace.Tracer
	created metric.Int64Counter
}

type Option func(*Orders)

func WithClock(now func() time.Time) Option { return func(o *Orders) { o.now = now } }

func WithIDGenerator(fn func() string) Option { return func(o *Orders) { o.newID = fn } }

func WithOrderNumbers(fn func(time.Time) string) Option {
	return func(o *Orders) { o.newNumber = fn }
}

// NewOrders builds the order service. q may be nil, in which case no
// confirmation is ever scheduled.
func NewOrders(s store.OrderStore, q queue.Queue, logger logging.Logger, opts ...Option) *Orders {
	if logger == nil {
		logger = logging.NoOp()
	}
	o := &Orders{
		store:     s,
		queue:     q,
		logger:    logger.With(map[string]interface{}{"component": "orders"}),
		now:       time.Now,
		newID:     uuid.NewString,
		newNumber: NewOrderNumber,
		tracer:    otel.Tracer("storefront/service"),
	}
	for _, opt := range opts {
		opt(o)
	}
	counter, err := otel.Meter("storefront/service").Int64Counter("orders.created",
		metric.WithDescription("Orders persisted"))
	if err != nil {
		o.logger.Warn("Order counter unavailable", map[string]interface{}{"error": err})
	}
	o.created = counter
	return o
}

// CreateOrder saves the order as pending and schedules its confirmation
// mail. It returns once the order is stored; the mail is sent later, at most
// once, and its outcome never reaches the caller.
func (o *Orders) CreateOrder(ctx context.Context, req CreateOrderRequest) (CreateOrderResult, error) {
	ctx, span := o.tracer.Start(ctx, "Orders.CreateOrder")
	defer span.End()

	order := model.Order{
		ID:              o.newID(),
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		Items:           append([]model.CartItem(nil), req.Items...),
		Subtotal:        req.Subtotal,
		Shipping:        req.Shipping,
		VAT:             req.VAT,
		GrandTotal:      req.GrandTotal,
		Status:          model.StatusPending,
		CreatedAt:       o.now().UTC(),
	}

	var err error
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		order.OrderNumber = o.newNumber(order.CreatedAt)
		err = o.store.InsertOrder(ctx, orderToRow(order))
		if !errors.Is(err, store.ErrDuplicateOrderNumber) {
			break
		}
		o.logger.Warn("Order number taken, drawing another", map[string]interface{}{
			"order_number": order.OrderNumber,
			"attempt":      attempt,
		})
	}
	if err != nil {
		o.logger.Error("Failed to create order", map[string]interface{}{
			"customer_email": order.CustomerEmail,
			"error":          err,
		})
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return CreateOrderResult{}, fmt.Errorf("%w: %w", ErrCreateOrder, err)
	}

	span.SetAttributes(
		attribute.String("order.id", order.ID),
		attribute.String("order.number", order.OrderNumber),
		attribute.Int("order.items", len(order.Items)),
	)
	if o.created != nil {
		o.created.Add(ctx, 1, metric.WithAttributes(
			attribute.String("payment_method", string(order.PaymentMethod))))
	}
	o.logger.Info("Order created", map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"grand_total":  order.GrandTotal,
	})

	o.scheduleConfirmation(ctx, order)
	return CreateOrderResult{OrderID: order.ID, OrderNumber: order.OrderNumber}, nil
}

// scheduleConfirmation enqueues the snapshot. Failures are logged only; the
// order is already committed.
func (o *Orders) scheduleConfirmation(ctx context.Context, order model.Order) {
	if o.queue == nil {
		return
	}
	fields := map[string]interface{}{"order_number": order.OrderNumber}
	task, err := queue.NewTask(TaskOrderConfirmation, order.Snapshot())
	if err != nil {
		o.logger.Error("Failed to encode confirmation task", merge(fields, "error", err))
		return
	}
	// the client may already have gone away; the order exists regardless
	enqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), enqueueTimeout)
	defer cancel()
	if err := o.queue.Enqueue(enqCtx, task); err != nil {
		o.logger.Error("Confirmation email dropped", merge(fields, "error", err))
		return
	}
	o.logger.Debug("Confirmation email scheduled", merge(fields, "task_id", task.ID))
}

// UpdateStatus overwrites the status with any string.
func (o *Orders) UpdateStatus(ctx context.Context, orderID, status string) error {
	ctx, span := o.tracer.Start(ctx, "Orders.UpdateStatus",
		trace.WithAttributes(attribute.String("order.id", orderID)))
	defer span.End()

	if err := o.store.UpdateOrderStatus(ctx, orderID, status); err != nil {
		o.logger.Error("Failed to update order status", map[string]interface{}{
			"order_id": orderID,
			"status":   status,
			"error":    err,
		})
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return fmt.Errorf("%w: %w", ErrUpdateStatus, err)
	}
	o.logger.Info("Order status updated", map[string]interface{}{
		"order_id": orderID,
		"status":   status,
	})
	return nil
}

func (o *Orders) GetByOrderNumber(ctx context.Context, orderNumber string) *model.Order {
	row, err := o.store.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		o.readFailed("get order by number", err, "order_number", orderNumber)
		return nil
	}
	order := orderFromRow(row)
	return &order
}

func (o *Orders) GetByID(ctx context.Context, orderID string) *model.Order {
	row, err := o.store.GetOrder(ctx, orderID)
	if err != nil {
		o.readFailed("get order", err, "order_id", orderID)
		return nil
	}
	order := orderFromRow(row)
	return &order
}

func (o *Orders) GetByEmail(ctx context.Context, email string) []model.Order {
	rows, err := o.store.ListOrdersByEmail(ctx, email)
	if err != nil {
		o.readFailed("list orders by email", err, "customer_email", email)
		return []model.Order{}
	}
	return ordersFromRows(rows)
}

func (o *Orders) GetAll(ctx context.Context) []model.Order {
	rows, err := o.store.ListOrders(ctx)
	if err != nil {
		o.readFailed("list orders", err, "", nil)
		return []model.Order{}
	}
	return ordersFromRows(rows)
}

// readFailed logs a masked read error. A miss is routine; anything else means
// the store could not answer.
func (o *Orders) readFailed(op string, err error, key string, value interface{}) {
	fields := map[string]interface{}{"op": op, "error": err}
	if key != "" {
		fields[key] = value
	}
	if errors.Is(err, store.ErrNotFound) {
		o.logger.Debug("Order not found", fields)
		return
	}
	o.logger.Error("Order read failed", fields)
}

func merge(fields map[string]interface{}, key string, value interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out[key] = value
	return out
}
