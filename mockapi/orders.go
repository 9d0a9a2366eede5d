package mockapi

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/bookstore/api"
	apperrors "github.com/kbukum/bookstore/errors"
)

// Orders holds orders and moves stock through the catalog.
type Orders struct {
	mu      sync.RWMutex
	orders  map[string]api.Order
	order   []string
	catalog *Catalog
	now     func() time.Time
}

// NewOrders creates an empty order store.
func NewOrders(catalog *Catalog, now func() time.Time) *Orders {
	return &Orders{orders: make(map[string]api.Order), catalog: catalog, now: now}
}

// Create reserves stock for every item and records a pending order. On
// failure stock already reserved is released.
func (o *Orders) Create(userID string, req api.CreateOrderRequest) (api.Order, error) {
	items := make([]api.OrderItem, 0, len(req.Items))
	var total int64
	for _, it := range req.Items {
		b, err := o.catalog.Reserve(it.BookID, it.Quantity)
		if err != nil {
			for _, done := range items {
				o.catalog.Release(done.BookID, done.Quantity)
			}
			return api.Order{}, err
		}
		it.Price = b.Price
		total += b.Price * int64(it.Quantity)
		items = append(items, it)
	}

	now := o.now()
	order := api.Order{
		ID:        uuid.NewString(),
		UserID:    userID,
		Items:     items,
		Total:     total,
		Status:    api.OrderPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.orders[order.ID] = order
	o.order = append(o.order, order.ID)
	return order, nil
}

// Get returns an order. Unless all is set, orders of other users are
// reported as NOT_FOUND.
func (o *Orders) Get(id, userID string, all bool) (api.Order, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	order, ok := o.orders[id]
	if !ok || (!all && order.UserID != userID) {
		return api.Order{}, apperrors.NotFound("order", id)
	}
	return order, nil
}

// List returns the orders of userID, or every order when all is set.
func (o *Orders) List(userID string, all bool, p api.OrderListParams) api.OrderList {
	o.mu.RLock()
	orders := []api.Order{}
	for _, id := range o.order {
		order := o.orders[id]
		if (all || order.UserID == userID) && (p.Status == "" || order.Status == p.Status) {
			orders = append(orders, order)
		}
	}
	o.mu.RUnlock()

	page, limit := clampPage(p.Page, p.Limit)
	start := min((page-1)*limit, len(orders))
	end := min(start+limit, len(orders))
	return api.OrderList{Orders: orders[start:end], Total: len(orders)}
}

// terminal statuses accept no further change.
var terminal = []api.OrderStatus{api.OrderDelivered, api.OrderCancelled}

// UpdateStatus moves an order to status. Cancelling returns its stock.
func (o *Orders) UpdateStatus(id string, status api.OrderStatus) (api.Order, error) {
	if !status.Valid() {
		return api.Order{}, apperrors.InvalidInput("status", "unknown order status "+string(status))
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	order, ok := o.orders[id]
	if !ok {
		return api.Order{}, apperrors.NotFound("order", id)
	}
	if order.Status == status {
		return order, nil
	}
	if slices.Contains(terminal, order.Status) {
		return api.Order{}, apperrors.Conflict("order is already " + string(order.Status))
	}
	if status == api.OrderCancelled {
		for _, it := range order.Items {
			o.catalog.Release(it.BookID, it.Quantity)
		}
	}
	order.Status = status
	order.UpdatedAt = o.now()
	o.orders[id] = order
	return order, nil
}
