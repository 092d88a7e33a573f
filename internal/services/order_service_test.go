package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visioneers/marketplace-api/internal/dto"
)

func TestCreateOrder(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	svc := NewOrderService(db)
	products := NewProductService(db)

	t.Run("snapshots prices and decrements stock", func(t *testing.T) {
		order, err := svc.CreateOrder(7, &dto.OrderCreateRequest{
			Items: []dto.OrderItemRequest{
				{ProductID: 1, Quantity: 2}, // Gazelle $85
				{ProductID: 2, Quantity: 1}, // Old Skool $65
			},
			ShippingAddress: "1 Test Street",
		})
		require.NoError(t, err)

		assert.NotEmpty(t, order.OrderNumber)
		assert.InDelta(t, 235.0, order.TotalAmount, 0.001)
		assert.Equal(t, "1 Test Street", order.BillingAddress) // falls back to shipping
		require.Len(t, order.Items, 2)
		assert.Equal(t, 85.0, order.Items[0].UnitPrice)

		gazelle, err := products.GetByID(1)
		require.NoError(t, err)
		assert.Equal(t, 8, gazelle.StockQuantity)
	})

	t.Run("insufficient stock rolls everything back", func(t *testing.T) {
		_, err := svc.CreateOrder(7, &dto.OrderCreateRequest{
			Items: []dto.OrderItemRequest{
				{ProductID: 2, Quantity: 1},
				{ProductID: 3, Quantity: 5}, // Chuck 70 has 0 in stock
			},
			ShippingAddress: "1 Test Street",
		})
		assert.ErrorIs(t, err, ErrInsufficientStock)

		// The first line's decrement was rolled back.
		oldSkool, err := products.GetByID(2)
		require.NoError(t, err)
		assert.Equal(t, 4, oldSkool.StockQuantity)
	})

	t.Run("empty order rejected", func(t *testing.T) {
		_, err := svc.CreateOrder(7, &dto.OrderCreateRequest{ShippingAddress: "x"})
		assert.Error(t, err)
	})

	t.Run("missing shipping address rejected", func(t *testing.T) {
		_, err := svc.CreateOrder(7, &dto.OrderCreateRequest{
			Items: []dto.OrderItemRequest{{ProductID: 1, Quantity: 1}},
		})
		assert.Error(t, err)
	})

	t.Run("inactive product rejected", func(t *testing.T) {
		_, err := svc.CreateOrder(7, &dto.OrderCreateRequest{
			Items:           []dto.OrderItemRequest{{ProductID: 4, Quantity: 1}},
			ShippingAddress: "x",
		})
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestOrderScopedToBuyer(t *testing.T) {
	db := newTestDB(t)
	seedCatalog(t, db)
	svc := NewOrderService(db)

	order, err := svc.CreateOrder(7, &dto.OrderCreateRequest{
		Items:           []dto.OrderItemRequest{{ProductID: 1, Quantity: 1}},
		ShippingAddress: "1 Test Street",
	})
	require.NoError(t, err)

	got, err := svc.GetOrder(7, order.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)

	_, err = svc.GetOrder(8, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	mine, err := svc.ListOrders(7)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := svc.ListOrders(8)
	require.NoError(t, err)
	assert.Empty(t, theirs)
}
