package tests

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop/pkg/domain/model"
	"shop/pkg/domain/service"
)

func setupOrderTest(t *testing.T) (service.OrderService, *mockOrderRepository, *mockProductRepository, *mockEventDispatcher) {
	t.Helper()
	orders := newMockOrderRepository()
	products := newMockProductRepository()
	dispatcher := &mockEventDispatcher{}
	svc := service.NewOrderService(orders, products, dispatcher)
	return svc, orders, products, dispatcher
}

func seedProduct(products *mockProductRepository, price string, active bool) *model.Product {
	product := &model.Product{
		ID:         uuid.New(),
		CategoryID: uuid.New(),
		Name:       "product",
		Price:      decimal.RequireFromString(price),
		IsActive:   active,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	products.store[product.ID] = product
	return product
}

func TestCreateOrder(t *testing.T) {
	svc, orders, products, dispatcher := setupOrderTest(t)
	userID := uuid.New()
	product := seedProduct(products, "10.00", true)

	order, err := svc.CreateOrder(userID, []service.OrderItemData{
		{ProductID: product.ID, Quantity: 2},
	})

	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, model.OrderPending, order.Status)
	assert.Equal(t, userID, order.UserID)
	assert.True(t, order.TotalPrice.Equal(decimal.RequireFromString("20.00")),
		"total_price = %s", order.TotalPrice)

	require.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].Price.Equal(product.Price))
	assert.Equal(t, 2, order.Items[0].Quantity)

	saved, err := orders.Find(order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, saved.ID)

	require.Len(t, dispatcher.Events(), 1)
	_, ok := dispatcher.Events()[0].(model.OrderCreated)
	require.True(t, ok)
}

func TestCreateOrder_TotalIsExactDecimalSum(t *testing.T) {
	svc, _, products, _ := setupOrderTest(t)
	// 0.10 * 3 drifts under binary floating point.
	p1 := seedProduct(products, "0.10", true)
	p2 := seedProduct(products, "19.99", true)

	order, err := svc.CreateOrder(uuid.New(), []service.OrderItemData{
		{ProductID: p1.ID, Quantity: 3},
		{ProductID: p2.ID, Quantity: 7},
	})

	require.NoError(t, err)
	assert.True(t, order.TotalPrice.Equal(decimal.RequireFromString("140.23")),
		"total_price = %s", order.TotalPrice)
}

func TestCreateOrder_PriceSnapshotSurvivesPriceChange(t *testing.T) {
	svc, orders, products, _ := setupOrderTest(t)
	product := seedProduct(products, "10.00", true)

	order, err := svc.CreateOrder(uuid.New(), []service.OrderItemData{
		{ProductID: product.ID, Quantity: 2},
	})
	require.NoError(t, err)

	products.store[product.ID].Price = decimal.RequireFromString("99.99")

	saved, err := orders.Find(order.ID)
	require.NoError(t, err)
	assert.True(t, saved.Items[0].Price.Equal(decimal.RequireFromString("10.00")))
	assert.True(t, saved.TotalPrice.Equal(decimal.RequireFromString("20.00")))
}

func TestCreateOrder_Validation(t *testing.T) {
	svc, _, products, _ := setupOrderTest(t)
	product := seedProduct(products, "5.00", true)

	t.Run("EmptyItems", func(t *testing.T) {
		_, err := svc.CreateOrder(uuid.New(), nil)
		assert.ErrorIs(t, err, model.ErrEmptyOrder)
	})

	t.Run("TooManyItems", func(t *testing.T) {
		items := make([]service.OrderItemData, 101)
		for i := range items {
			items[i] = service.OrderItemData{ProductID: uuid.New(), Quantity: 1}
		}
		_, err := svc.CreateOrder(uuid.New(), items)
		assert.ErrorIs(t, err, model.ErrTooManyItems)
	})

	t.Run("DuplicateLineItem", func(t *testing.T) {
		_, err := svc.CreateOrder(uuid.New(), []service.OrderItemData{
			{ProductID: product.ID, Quantity: 1},
			{ProductID: product.ID, Quantity: 2},
		})
		assert.ErrorIs(t, err, model.ErrDuplicateLineItem)
	})

	t.Run("ZeroQuantity", func(t *testing.T) {
		_, err := svc.CreateOrder(uuid.New(), []service.OrderItemData{
			{ProductID: product.ID, Quantity: 0},
		})
		assert.ErrorIs(t, err, model.ErrInvalidQuantity)
	})

	t.Run("OverCapQuantity", func(t *testing.T) {
		_, err := svc.CreateOrder(uuid.New(), []service.OrderItemData{
			{ProductID: product.ID, Quantity: 1001},
		})
		assert.ErrorIs(t, err, model.ErrInvalidQuantity)
	})
}

func TestCreateOrder_ProductNotFoundListsMissingIDs(t *testing.T) {
	svc, _, products, _ := setupOrderTest(t)
	existing := seedProduct(products, "5.00", true)
	missing1 := uuid.New()
	missing2 := uuid.New()

	_, err := svc.CreateOrder(uuid.New(), []service.OrderItemData{
		{ProductID: existing.ID, Quantity: 1},
		{ProductID: missing1, Quantity: 1},
		{ProductID: missing2, Quantity: 1},
	})

	var notFound *model.ProductsNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.ElementsMatch(t, []uuid.UUID{missing1, missing2}, notFound.IDs)
}

func TestCreateOrder_InactiveProduct(t *testing.T) {
	svc, _, products, _ := setupOrderTest(t)
	active := seedProduct(products, "5.00", true)
	inactive := seedProduct(products, "5.00", false)

	_, err := svc.CreateOrder(uuid.New(), []service.OrderItemData{
		{ProductID: active.ID, Quantity: 1},
		{ProductID: inactive.ID, Quantity: 1},
	})

	var inactiveErr *model.ProductsInactiveError
	require.ErrorAs(t, err, &inactiveErr)
	assert.Equal(t, []uuid.UUID{inactive.ID}, inactiveErr.IDs)
}

func TestCreateOrder_MissingTakesPrecedenceOverInactive(t *testing.T) {
	svc, _, products, _ := setupOrderTest(t)
	inactive := seedProduct(products, "5.00", false)
	missing := uuid.New()

	_, err := svc.CreateOrder(uuid.New(), []service.OrderItemData{
		{ProductID: inactive.ID, Quantity: 1},
		{ProductID: missing, Quantity: 1},
	})

	var notFound *model.ProductsNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, []uuid.UUID{missing}, notFound.IDs)
}

func TestCancelOrder(t *testing.T) {
	svc, orders, products, dispatcher := setupOrderTest(t)
	userID := uuid.New()
	product := seedProduct(products, "5.00", true)
	order, err := svc.CreateOrder(userID, []service.OrderItemData{{ProductID: product.ID, Quantity: 1}})
	require.NoError(t, err)
	dispatcher.Reset()

	t.Run("NotFound", func(t *testing.T) {
		err := svc.CancelOrder(uuid.New(), userID)
		assert.ErrorIs(t, err, model.ErrOrderNotFound)
	})

	t.Run("Forbidden", func(t *testing.T) {
		err := svc.CancelOrder(order.ID, uuid.New())
		assert.ErrorIs(t, err, model.ErrOrderNotOwned)
	})

	t.Run("Success", func(t *testing.T) {
		require.NoError(t, svc.CancelOrder(order.ID, userID))

		saved, err := orders.Find(order.ID)
		require.NoError(t, err)
		assert.Equal(t, model.OrderCancelled, saved.Status)

		require.Len(t, dispatcher.Events(), 1)
		_, ok := dispatcher.Events()[0].(model.OrderCancelledEvent)
		require.True(t, ok)
	})

	t.Run("AlreadyCancelled", func(t *testing.T) {
		err := svc.CancelOrder(order.ID, userID)
		assert.ErrorIs(t, err, model.ErrOrderCannotBeModified)
	})
}

func TestCancelOrder_PaidOrderConflicts(t *testing.T) {
	svc, orders, products, _ := setupOrderTest(t)
	userID := uuid.New()
	product := seedProduct(products, "5.00", true)
	order, err := svc.CreateOrder(userID, []service.OrderItemData{{ProductID: product.ID, Quantity: 1}})
	require.NoError(t, err)

	moved, err := orders.TransitionStatus(order.ID, model.OrderPending, model.OrderPaid)
	require.NoError(t, err)
	require.True(t, moved)

	err = svc.CancelOrder(order.ID, userID)
	assert.ErrorIs(t, err, model.ErrOrderCannotBeModified)

	saved, err := orders.Find(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderPaid, saved.Status)
}

func TestOrderFulfilmentTransitions(t *testing.T) {
	svc, orders, products, _ := setupOrderTest(t)
	userID := uuid.New()
	product := seedProduct(products, "5.00", true)
	order, err := svc.CreateOrder(userID, []service.OrderItemData{{ProductID: product.ID, Quantity: 1}})
	require.NoError(t, err)

	// Not paid yet.
	assert.ErrorIs(t, svc.MarkOrderShipped(order.ID), model.ErrOrderCannotBeModified)

	_, err = orders.TransitionStatus(order.ID, model.OrderPending, model.OrderPaid)
	require.NoError(t, err)

	require.NoError(t, svc.MarkOrderShipped(order.ID))
	require.NoError(t, svc.MarkOrderDelivered(order.ID))

	saved, err := orders.Find(order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderDelivered, saved.Status)
}

func TestGetOrder_OwnershipEnforced(t *testing.T) {
	svc, _, products, _ := setupOrderTest(t)
	userID := uuid.New()
	product := seedProduct(products, "5.00", true)
	order, err := svc.CreateOrder(userID, []service.OrderItemData{{ProductID: product.ID, Quantity: 1}})
	require.NoError(t, err)

	_, err = svc.GetOrder(order.ID, uuid.New())
	assert.ErrorIs(t, err, model.ErrOrderNotOwned)

	got, err := svc.GetOrder(order.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}
