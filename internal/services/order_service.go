package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/visioneers/marketplace-api/internal/dto"
	"github.com/visioneers/marketplace-api/internal/models"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

type OrderService struct {
	db *gorm.DB
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{db: db}
}

// CreateOrder places an order for the buyer. Stock is decremented with a
// guarded update inside one transaction, so a shortfall on any line rolls the
// whole order back. Unit prices are snapshotted from the catalog, never taken
// from the request.
func (s *OrderService) CreateOrder(buyerID uint, req *dto.OrderCreateRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, errors.New("order must contain at least one item")
	}
	if req.ShippingAddress == "" {
		return nil, errors.New("shipping_address is required")
	}

	billing := req.BillingAddress
	if billing == "" {
		billing = req.ShippingAddress
	}

	order := models.Order{
		OrderNumber:     uuid.NewString(),
		BuyerID:         buyerID,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  billing,
		PaymentMethod:   req.PaymentMethod,
		OrderStatus:     models.OrderPending,
		PaymentStatus:   models.PaymentPending,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		products := NewProductService(tx)

		for _, item := range req.Items {
			if item.Quantity <= 0 {
				return fmt.Errorf("quantity for product %d must be positive", item.ProductID)
			}

			product, err := products.GetByID(item.ProductID)
			if err != nil {
				return err
			}
			if !product.IsActive {
				return ErrProductNotFound
			}

			if err := products.DecrementStock(product.ID, item.Quantity); err != nil {
				return fmt.Errorf("%w for %s", ErrInsufficientStock, product.Name)
			}

			lineTotal := product.Price * float64(item.Quantity)
			order.Items = append(order.Items, models.OrderItem{
				ProductID:  product.ID,
				Quantity:   item.Quantity,
				UnitPrice:  product.Price,
				TotalPrice: lineTotal,
			})
			order.TotalAmount += lineTotal
		}

		return tx.Create(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders returns the buyer's orders, newest first.
func (s *OrderService) ListOrders(buyerID uint) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.Preload("Items").
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").Order("id DESC").
		Find(&orders).Error
	return orders, err
}

// GetOrder returns one of the buyer's orders; other buyers' orders are not
// found rather than forbidden.
func (s *OrderService) GetOrder(buyerID, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("Items").
		Where("id = ? AND buyer_id = ?", orderID, buyerID).
		First(&order).Error
	if err != nil {
		return nil, ErrOrderNotFound
	}
	return &order, nil
}
