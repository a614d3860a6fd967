package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"shop/pkg/domain/model"
)

const (
	// maxOrderItems bounds the request size as a DoS guard.
	maxOrderItems = 100
	// maxItemQuantity caps a single line.
	maxItemQuantity = 1000
)

// OrderItemData is one requested line: which product and how many.
type OrderItemData struct {
	ProductID uuid.UUID
	Quantity  int
}

type OrderService interface {
	CreateOrder(userID uuid.UUID, items []OrderItemData) (*model.Order, error)
	GetOrder(orderID, requestingUserID uuid.UUID) (*model.Order, error)
	ListUserOrders(userID uuid.UUID, limit, offset int) ([]*model.Order, error)
	CancelOrder(orderID, requestingUserID uuid.UUID) error
	MarkOrderShipped(orderID uuid.UUID) error
	MarkOrderDelivered(orderID uuid.UUID) error
}

func NewOrderService(orders model.OrderRepository, products model.ProductRepository, dispatcher EventDispatcher) OrderService {
	return &orderService{
		orders:     orders,
		products:   products,
		dispatcher: dispatcher,
	}
}

type orderService struct {
	orders     model.OrderRepository
	products   model.ProductRepository
	dispatcher EventDispatcher
}

func (s *orderService) CreateOrder(userID uuid.UUID, items []OrderItemData) (*model.Order, error) {
	if len(items) == 0 {
		return nil, model.ErrEmptyOrder
	}
	if len(items) > maxOrderItems {
		return nil, model.ErrTooManyItems
	}

	productIDs := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			return nil, model.ErrDuplicateLineItem
		}
		seen[item.ProductID] = struct{}{}

		if item.Quantity <= 0 || item.Quantity > maxItemQuantity {
			return nil, model.ErrInvalidQuantity
		}
		productIDs = append(productIDs, item.ProductID)
	}

	products, err := s.products.FindByIDs(productIDs)
	if err != nil {
		return nil, err
	}

	productsByID := make(map[uuid.UUID]*model.Product, len(products))
	for _, p := range products {
		productsByID[p.ID] = p
	}

	// Existence errors take precedence over activity errors.
	var missing []uuid.UUID
	for _, id := range productIDs {
		if _, ok := productsByID[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, &model.ProductsNotFoundError{IDs: missing}
	}

	var inactive []uuid.UUID
	for _, id := range productIDs {
		if !productsByID[id].IsActive {
			inactive = append(inactive, id)
		}
	}
	if len(inactive) > 0 {
		return nil, &model.ProductsInactiveError{IDs: inactive}
	}

	orderID, err := s.orders.NextID()
	if err != nil {
		return nil, err
	}

	orderItems := make([]model.OrderItem, 0, len(items))
	total := decimal.Zero
	for _, item := range items {
		itemID, err := s.orders.NextID()
		if err != nil {
			return nil, err
		}

		// Snapshot of the product price at this instant.
		price := productsByID[item.ProductID].Price
		orderItems = append(orderItems, model.OrderItem{
			ID:        itemID,
			OrderID:   orderID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     price,
		})
		total = total.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	now := time.Now().UTC()
	order := &model.Order{
		ID:         orderID,
		UserID:     userID,
		Status:     model.OrderPending,
		TotalPrice: total,
		Items:      orderItems,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.orders.Create(order); err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.OrderCreated{OrderID: orderID, UserID: userID, TotalPrice: total})
	return order, nil
}

func (s *orderService) GetOrder(orderID, requestingUserID uuid.UUID) (*model.Order, error) {
	order, err := s.orders.Find(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != requestingUserID {
		return nil, model.ErrOrderNotOwned
	}
	return order, nil
}

func (s *orderService) ListUserOrders(userID uuid.UUID, limit, offset int) ([]*model.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.orders.FindByUser(userID, limit, offset)
}

func (s *orderService) CancelOrder(orderID, requestingUserID uuid.UUID) error {
	order, err := s.orders.Find(orderID)
	if err != nil {
		return err
	}
	if order.UserID != requestingUserID {
		return model.ErrOrderNotOwned
	}

	moved, err := s.orders.TransitionStatus(orderID, model.OrderPending, model.OrderCancelled)
	if err != nil {
		return err
	}
	if !moved {
		return model.ErrOrderCannotBeModified
	}

	_ = s.dispatcher.Dispatch(model.OrderCancelledEvent{OrderID: orderID})
	return nil
}

func (s *orderService) MarkOrderShipped(orderID uuid.UUID) error {
	return s.transition(orderID, model.OrderPaid, model.OrderShipped)
}

func (s *orderService) MarkOrderDelivered(orderID uuid.UUID) error {
	return s.transition(orderID, model.OrderShipped, model.OrderDelivered)
}

func (s *orderService) transition(orderID uuid.UUID, from, to model.OrderStatus) error {
	if _, err := s.orders.Find(orderID); err != nil {
		return err
	}

	moved, err := s.orders.TransitionStatus(orderID, from, to)
	if err != nil {
		return err
	}
	if !moved {
		return model.ErrOrderCannotBeModified
	}
	return nil
}
