package services

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/Rakhulsr/go-storefront/app/utils/calc"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type OrderStatusInput struct {
	PaymentStatus  *string
	DeliveryStatus *string
}

type OrderService struct {
	db            *gorm.DB
	cartRepo      repositories.CartRepository
	cartItemRepo  repositories.CartItemRepository
	customerRepo  repositories.CustomerRepository
	orderRepo     repositories.OrderRepository
	orderItemRepo repositories.OrderItemRepository
	notifier      OrderNotifier
	logger        *zap.Logger
}

func NewOrderService(
	db *gorm.DB,
	cartRepo repositories.CartRepository,
	cartItemRepo repositories.CartItemRepository,
	customerRepo repositories.CustomerRepository,
	orderRepo repositories.OrderRepository,
	orderItemRepo repositories.OrderItemRepository,
	notifier OrderNotifier,
	logger *zap.Logger,
) *OrderService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &OrderService{
		db:            db,
		cartRepo:      cartRepo,
		cartItemRepo:  cartItemRepo,
		customerRepo:  customerRepo,
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
		notifier:      notifier,
		logger:        logger,
	}
}

func cartNotFoundError() error {
	return NewValidationError("cart_id", "No cart with the given ID was found.", ErrCartNotFound)
}

// PlaceOrder turns the cart into an order owned by the caller's customer. Everything happens in
// one transaction: the cart row is locked, order items copy the current product price, and the
// cart is deleted. When two requests race on the same cart only one of them deletes the cart row;
// the other rolls back with ErrCartNotFound.
func (s *OrderService) PlaceOrder(ctx context.Context, caller Caller, cartID string) (*models.Order, error) {
	if !caller.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}

	var orderID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.cartRepo.LockByID(ctx, tx, cartID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return cartNotFoundError()
			}
			return fmt.Errorf("failed to lock cart: %w", err)
		}

		cartItems, err := s.cartItemRepo.GetByCartIDTx(ctx, tx, cartID)
		if err != nil {
			return fmt.Errorf("failed to load cart items: %w", err)
		}
		if len(cartItems) == 0 {
			return NewValidationError("cart_id", "The cart is empty.", ErrCartEmpty)
		}

		customer, err := s.customerRepo.FindByUserID(ctx, tx, caller.UserID)
		if err != nil {
			return notFound(err, "customer")
		}

		order := &models.Order{CustomerID: customer.ID}
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		orderItems := make([]models.OrderItem, 0, len(cartItems))
		for _, item := range cartItems {
			if item.Product.ID == 0 {
				return NewValidationError("cart_id", fmt.Sprintf("Product %d is no longer available.", item.ProductID), ErrNotFound)
			}
			orderItems = append(orderItems, models.OrderItem{
				OrderID:   order.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     item.Product.Price,
			})
		}
		if err := s.orderItemRepo.BulkCreate(ctx, tx, orderItems); err != nil {
			return fmt.Errorf("failed to create order items: %w", err)
		}

		if err := s.cartItemRepo.ClearCartItems(ctx, tx, cartID); err != nil {
			return fmt.Errorf("failed to clear cart items: %w", err)
		}
		affected, err := s.cartRepo.Delete(ctx, tx, cartID)
		if err != nil {
			return fmt.Errorf("failed to delete cart: %w", err)
		}
		if affected != 1 {
			return cartNotFoundError()
		}

		orderID = order.ID
		return nil
	})
	if err != nil {
		var verr *ValidationError
		if !errors.As(err, &verr) {
			s.logger.Error("OrderService.PlaceOrder: placement failed", zap.String("cart_id", cartID), zap.Error(err))
		}
		return nil, err
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload order: %w", err)
	}
	s.logger.Info("OrderService.PlaceOrder: order placed",
		zap.Uint("order_id", order.ID), zap.String("code", order.Code), zap.Int("items", len(order.Items)))

	s.notifier.OrderPlaced(ctx, order)
	return order, nil
}

// customerFor returns the caller's customer, or nil for staff, who see every order.
func (s *OrderService) customerFor(ctx context.Context, caller Caller) (*models.Customer, error) {
	if !caller.IsAuthenticated() {
		return nil, ErrUnauthenticated
	}
	if caller.IsStaff {
		return nil, nil
	}
	customer, err := s.customerRepo.FindByUserID(ctx, nil, caller.UserID)
	if err != nil {
		return nil, notFound(err, "customer")
	}
	return customer, nil
}

func (s *OrderService) ListOrders(ctx context.Context, caller Caller) ([]models.Order, error) {
	customer, err := s.customerFor(ctx, caller)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []models.Order{}, nil
		}
		return nil, err
	}

	var orders []models.Order
	if customer == nil {
		orders, err = s.orderRepo.GetAllOrders(ctx)
	} else {
		orders, err = s.orderRepo.FindByCustomerID(ctx, customer.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetOrder hides other customers' orders behind ErrNotFound.
func (s *OrderService) GetOrder(ctx context.Context, caller Caller, id uint) (*models.Order, error) {
	customer, err := s.customerFor(ctx, caller)
	if err != nil {
		return nil, err
	}

	var order *models.Order
	if customer == nil {
		order, err = s.orderRepo.GetByID(ctx, id)
	} else {
		order, err = s.orderRepo.GetByIDForCustomer(ctx, id, customer.ID)
	}
	if err != nil {
		return nil, notFound(err, "order")
	}
	return order, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, caller Caller, id uint, in OrderStatusInput) (*models.Order, error) {
	if err := requireStaff(caller); err != nil {
		return nil, err
	}

	fields := map[string]string{}
	updates := map[string]interface{}{}
	if in.PaymentStatus != nil {
		if !slices.Contains(models.OrderStatuses, *in.PaymentStatus) {
			fields["payment_status"] = fmt.Sprintf("%q is not a valid choice.", *in.PaymentStatus)
		}
		updates["payment_status"] = *in.PaymentStatus
	}
	if in.DeliveryStatus != nil {
		if !slices.Contains(models.OrderStatuses, *in.DeliveryStatus) {
			fields["delivery_status"] = fmt.Sprintf("%q is not a valid choice.", *in.DeliveryStatus)
		}
		updates["delivery_status"] = *in.DeliveryStatus
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if len(updates) > 0 {
		if err := s.orderRepo.UpdateStatuses(ctx, id, updates); err != nil {
			return nil, notFound(err, "order")
		}
	}
	return s.GetOrder(ctx, caller, id)
}

// DeleteOrder refuses orders that still have items, which keeps the item history intact.
func (s *OrderService) DeleteOrder(ctx context.Context, caller Caller, id uint) error {
	if err := requireStaff(caller); err != nil {
		return err
	}
	if _, err := s.orderRepo.GetByID(ctx, id); err != nil {
		return notFound(err, "order")
	}

	count, err := s.orderItemRepo.CountByOrderID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count order items: %w", err)
	}
	if count > 0 {
		return NewValidationError("detail", "Order cannot be deleted because it includes one or more order items.", nil)
	}

	if err := s.orderRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return nil
}

// OrderTotal sums the snapshot prices of the order items.
func OrderTotal(order *models.Order) decimal.Decimal {
	total := decimal.Zero
	for _, item := range order.Items {
		total = total.Add(calc.CalculateSubTotal(item.Price, item.Quantity))
	}
	return total
}
