package tests

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"shop/pkg/domain/model"
	"shop/pkg/domain/service"
	"shop/pkg/gateway"
)

type mockEventDispatcher struct {
	mu     sync.Mutex
	events []service.Event
}

func (m *mockEventDispatcher) Dispatch(event service.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *mockEventDispatcher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}

func (m *mockEventDispatcher) Events() []service.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]service.Event(nil), m.events...)
}

// --- users ---

type mockUserRepository struct {
	store map[uuid.UUID]*model.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{store: make(map[uuid.UUID]*model.User)}
}

func (m *mockUserRepository) NextID() (uuid.UUID, error) { return uuid.New(), nil }

func (m *mockUserRepository) Create(user *model.User) error {
	for _, u := range m.store {
		if u.Email == user.Email {
			return model.ErrEmailTaken
		}
	}
	val := *user
	m.store[user.ID] = &val
	return nil
}

func (m *mockUserRepository) Find(id uuid.UUID) (*model.User, error) {
	user, ok := m.store[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	val := *user
	return &val, nil
}

func (m *mockUserRepository) FindByEmail(email string) (*model.User, error) {
	for _, u := range m.store {
		if u.Email == email {
			val := *u
			return &val, nil
		}
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) Update(user *model.User) error {
	if _, ok := m.store[user.ID]; !ok {
		return model.ErrUserNotFound
	}
	val := *user
	m.store[user.ID] = &val
	return nil
}

type mockPasswordManager struct{}

func (mockPasswordManager) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (mockPasswordManager) Verify(password, hashed string) bool {
	return hashed == "hashed:"+password
}

type mockTokenManager struct{}

func (mockTokenManager) Issue(subject string) (string, error) {
	return "token:" + subject, nil
}

func (mockTokenManager) Decode(token string) (string, error) {
	const prefix = "token:"
	if len(token) <= len(prefix) || token[:len(prefix)] != prefix {
		return "", fmt.Errorf("malformed token")
	}
	return token[len(prefix):], nil
}

// --- catalog ---

type mockCategoryRepository struct {
	store map[uuid.UUID]*model.Category
}

func newMockCategoryRepository() *mockCategoryRepository {
	return &mockCategoryRepository{store: make(map[uuid.UUID]*model.Category)}
}

func (m *mockCategoryRepository) NextID() (uuid.UUID, error) { return uuid.New(), nil }

func (m *mockCategoryRepository) Create(category *model.Category) error {
	for _, c := range m.store {
		if c.Name == category.Name || c.Slug == category.Slug {
			return model.ErrCategoryExists
		}
	}
	val := *category
	m.store[category.ID] = &val
	return nil
}

func (m *mockCategoryRepository) Find(id uuid.UUID) (*model.Category, error) {
	category, ok := m.store[id]
	if !ok {
		return nil, model.ErrCategoryNotFound
	}
	val := *category
	return &val, nil
}

func (m *mockCategoryRepository) List() ([]*model.Category, error) {
	categories := make([]*model.Category, 0, len(m.store))
	for _, c := range m.store {
		val := *c
		categories = append(categories, &val)
	}
	return categories, nil
}

func (m *mockCategoryRepository) Update(category *model.Category) error {
	if _, ok := m.store[category.ID]; !ok {
		return model.ErrCategoryNotFound
	}
	for id, c := range m.store {
		if id != category.ID && (c.Name == category.Name || c.Slug == category.Slug) {
			return model.ErrCategoryExists
		}
	}
	val := *category
	m.store[category.ID] = &val
	return nil
}

type mockProductRepository struct {
	store      map[uuid.UUID]*model.Product
	referenced map[uuid.UUID]bool
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{
		store:      make(map[uuid.UUID]*model.Product),
		referenced: make(map[uuid.UUID]bool),
	}
}

func (m *mockProductRepository) NextID() (uuid.UUID, error) { return uuid.New(), nil }

func (m *mockProductRepository) Create(product *model.Product) error {
	val := *product
	m.store[product.ID] = &val
	return nil
}

func (m *mockProductRepository) Find(id uuid.UUID) (*model.Product, error) {
	product, ok := m.store[id]
	if !ok {
		return nil, model.ErrProductNotFound
	}
	val := *product
	return &val, nil
}

func (m *mockProductRepository) FindByIDs(ids []uuid.UUID) ([]*model.Product, error) {
	var products []*model.Product
	for _, id := range ids {
		if product, ok := m.store[id]; ok {
			val := *product
			products = append(products, &val)
		}
	}
	return products, nil
}

func (m *mockProductRepository) List(filter model.ProductFilter) ([]*model.Product, error) {
	var products []*model.Product
	for _, product := range m.store {
		if filter.ActiveOnly && !product.IsActive {
			continue
		}
		if filter.CategoryID != uuid.Nil && product.CategoryID != filter.CategoryID {
			continue
		}
		val := *product
		products = append(products, &val)
	}
	return products, nil
}

func (m *mockProductRepository) Update(product *model.Product) error {
	if _, ok := m.store[product.ID]; !ok {
		return model.ErrProductNotFound
	}
	val := *product
	m.store[product.ID] = &val
	return nil
}

func (m *mockProductRepository) Delete(id uuid.UUID) error {
	if _, ok := m.store[id]; !ok {
		return model.ErrProductNotFound
	}
	if m.referenced[id] {
		return model.ErrProductInUse
	}
	delete(m.store, id)
	return nil
}

// --- orders ---

type mockOrderRepository struct {
	mu    sync.Mutex
	store map[uuid.UUID]*model.Order
}

func newMockOrderRepository() *mockOrderRepository {
	return &mockOrderRepository{store: make(map[uuid.UUID]*model.Order)}
}

func (m *mockOrderRepository) NextID() (uuid.UUID, error) { return uuid.New(), nil }

func (m *mockOrderRepository) Create(order *model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	val := *order
	val.Items = append([]model.OrderItem(nil), order.Items...)
	m.store[order.ID] = &val
	return nil
}

func (m *mockOrderRepository) Find(id uuid.UUID) (*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.store[id]
	if !ok {
		return nil, model.ErrOrderNotFound
	}
	val := *order
	val.Items = append([]model.OrderItem(nil), order.Items...)
	return &val, nil
}

func (m *mockOrderRepository) FindByUser(userID uuid.UUID, limit, offset int) ([]*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var orders []*model.Order
	for _, order := range m.store {
		if order.UserID == userID {
			val := *order
			orders = append(orders, &val)
		}
	}
	return orders, nil
}

func (m *mockOrderRepository) TransitionStatus(id uuid.UUID, from, to model.OrderStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.store[id]
	if !ok {
		return false, nil
	}
	if order.Status != from {
		return false, nil
	}
	order.Status = to
	order.UpdatedAt = time.Now().UTC()
	return true, nil
}

// --- payments ---

// mockPaymentRepository mirrors the database arbiter: Create refuses a second
// active payment per order, Reconcile applies the conditional order promotion
// against the shared order store.
type mockPaymentRepository struct {
	mu     sync.Mutex
	store  map[uuid.UUID]*model.Payment
	orders *mockOrderRepository
}

func newMockPaymentRepository(orders *mockOrderRepository) *mockPaymentRepository {
	return &mockPaymentRepository{
		store:  make(map[uuid.UUID]*model.Payment),
		orders: orders,
	}
}

func (m *mockPaymentRepository) NextID() (uuid.UUID, error) { return uuid.New(), nil }

func (m *mockPaymentRepository) Create(payment *model.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.store {
		if p.OrderID == payment.OrderID && p.Status.IsActive() {
			return model.ErrActivePaymentExists
		}
	}
	val := *payment
	m.store[payment.ID] = &val
	return nil
}

func (m *mockPaymentRepository) Find(id uuid.UUID) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.store[id]
	if !ok {
		return nil, model.ErrPaymentNotFound
	}
	val := *payment
	return &val, nil
}

func (m *mockPaymentRepository) FindByProviderPaymentID(providerPaymentID string) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.store {
		if p.ProviderPaymentID != nil && *p.ProviderPaymentID == providerPaymentID {
			val := *p
			return &val, nil
		}
	}
	return nil, model.ErrPaymentNotFound
}

func (m *mockPaymentRepository) FindActiveByOrder(orderID uuid.UUID) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.store {
		if p.OrderID == orderID && p.Status.IsActive() {
			val := *p
			return &val, nil
		}
	}
	return nil, nil
}

func (m *mockPaymentRepository) Update(payment *model.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[payment.ID]; !ok {
		return model.ErrPaymentNotFound
	}
	val := *payment
	m.store[payment.ID] = &val
	return nil
}

func (m *mockPaymentRepository) Reconcile(payment *model.Payment, fromStatus model.PaymentStatus, markOrderPaid bool) (bool, error) {
	m.mu.Lock()
	stored, ok := m.store[payment.ID]
	if !ok {
		m.mu.Unlock()
		return false, model.ErrPaymentNotFound
	}
	if stored.Status != fromStatus {
		m.mu.Unlock()
		return false, nil
	}
	val := *payment
	m.store[payment.ID] = &val
	m.mu.Unlock()

	if markOrderPaid {
		if _, err := m.orders.TransitionStatus(payment.OrderID, model.OrderPending, model.OrderPaid); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (m *mockPaymentRepository) CancelStaleCreated(before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var swept int64
	for _, p := range m.store {
		if p.Status == model.PaymentCreated && p.CreatedAt.Before(before) {
			p.Status = model.PaymentCanceled
			swept++
		}
	}
	return swept, nil
}

// --- gateway ---

// stubGateway lets tests script the provider: a fixed payment id or a forced
// error per call.
type stubGateway struct {
	mu       sync.Mutex
	nextID   string
	failWith error
	requests []gateway.CreatePaymentRequest
}

func (g *stubGateway) ProviderName() string { return "stub" }

func (g *stubGateway) CreatePayment(_ context.Context, req gateway.CreatePaymentRequest) (*gateway.CreatePaymentResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.failWith != nil {
		return nil, g.failWith
	}

	id := g.nextID
	if id == "" {
		id = "stub_" + uuid.NewString()
	}
	raw, _ := json.Marshal(map[string]string{"provider_payment_id": id})
	return &gateway.CreatePaymentResult{
		ProviderPaymentID: id,
		CheckoutURL:       "https://stub-pay.local/checkout/" + id,
		Raw:               raw,
	}, nil
}

func (g *stubGateway) VerifyWebhookSignature(map[string]string, []byte) bool { return true }

func (g *stubGateway) ParseWebhook(_ map[string]string, body []byte) (*gateway.WebhookEvent, error) {
	var payload struct {
		EventID           string `json:"event_id"`
		ProviderPaymentID string `json:"provider_payment_id"`
		Status            string `json:"status"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	return &gateway.WebhookEvent{
		EventID:           payload.EventID,
		ProviderPaymentID: payload.ProviderPaymentID,
		Status:            payload.Status,
		Raw:               json.RawMessage(body),
	}, nil
}
