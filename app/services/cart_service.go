package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MaxCartItemQuantity is the largest quantity a single cart line can hold.
const MaxCartItemQuantity = 32767

type CartService struct {
	cartRepo     repositories.CartRepository
	cartItemRepo repositories.CartItemRepository
	productRepo  repositories.ProductRepository
	logger       *zap.Logger
}

func NewCartService(cartRepo repositories.CartRepository, cartItemRepo repositories.CartItemRepository, productRepo repositories.ProductRepository, logger *zap.Logger) *CartService {
	return &CartService{
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		productRepo:  productRepo,
		logger:       logger,
	}
}

func (s *CartService) CreateCart(ctx context.Context) (*models.Cart, error) {
	cart := &models.Cart{}
	if err := s.cartRepo.CreateCart(ctx, cart); err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	cart.Items = []models.CartItem{}
	return cart, nil
}

func (s *CartService) GetCart(ctx context.Context, cartID string) (*models.Cart, error) {
	cart, err := s.cartRepo.GetCartWithItems(ctx, cartID)
	if err != nil {
		return nil, notFound(err, "cart")
	}
	return cart, nil
}

func (s *CartService) DeleteCart(ctx context.Context, cartID string) error {
	affected, err := s.cartRepo.Delete(ctx, nil, cartID)
	if err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("cart: %w", ErrNotFound)
	}
	return nil
}

func (s *CartService) ensureCart(ctx context.Context, cartID string) error {
	if _, err := s.cartRepo.GetByID(ctx, cartID); err != nil {
		return notFound(err, "cart")
	}
	return nil
}

func (s *CartService) ListItems(ctx context.Context, cartID string) ([]models.CartItem, error) {
	if err := s.ensureCart(ctx, cartID); err != nil {
		return nil, err
	}
	items, err := s.cartItemRepo.GetByCartID(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	return items, nil
}

func (s *CartService) GetItem(ctx context.Context, cartID string, itemID uint) (*models.CartItem, error) {
	item, err := s.cartItemRepo.GetForCart(ctx, cartID, itemID)
	if err != nil {
		return nil, notFound(err, "cart item")
	}
	return item, nil
}

func validateQuantity(qty int) error {
	if qty < 1 || qty > MaxCartItemQuantity {
		return NewValidationError("quantity", fmt.Sprintf("Ensure this value is between 1 and %d.", MaxCartItemQuantity), nil)
	}
	return nil
}

// AddItem merges into the existing line for the product or creates one, so a cart never holds
// two lines for the same product.
func (s *CartService) AddItem(ctx context.Context, cartID string, productID uint, qty int) (*models.CartItem, error) {
	if err := s.ensureCart(ctx, cartID); err != nil {
		return nil, err
	}
	if err := validateQuantity(qty); err != nil {
		return nil, err
	}

	exists, err := s.productRepo.Exists(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to check product: %w", err)
	}
	if !exists {
		return nil, NewValidationError("product_id", "No product with the given ID was found.", ErrNotFound)
	}

	itemID, err := s.mergeOrCreate(ctx, cartID, productID, qty)
	if err != nil {
		return nil, err
	}
	return s.GetItem(ctx, cartID, itemID)
}

func (s *CartService) mergeOrCreate(ctx context.Context, cartID string, productID uint, qty int) (uint, error) {
	existing, err := s.cartItemRepo.GetCartAndProduct(ctx, cartID, productID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("failed to check existing cart item: %w", err)
	}

	if existing == nil {
		item := &models.CartItem{CartID: cartID, ProductID: productID, Quantity: qty}
		err := s.cartItemRepo.Add(ctx, item)
		if err == nil {
			return item.ID, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, fmt.Errorf("failed to add new cart item: %w", err)
		}
		// Lost the insert race to a concurrent request; merge into its row instead.
		existing, err = s.cartItemRepo.GetCartAndProduct(ctx, cartID, productID)
		if err != nil {
			return 0, fmt.Errorf("failed to reload cart item: %w", err)
		}
	}

	updated, err := s.cartItemRepo.IncrementQuantity(ctx, existing.ID, qty, MaxCartItemQuantity)
	if err != nil {
		return 0, fmt.Errorf("failed to update cart item: %w", err)
	}
	if updated == 0 {
		return 0, NewValidationError("quantity", fmt.Sprintf("Cart quantity for this product cannot exceed %d.", MaxCartItemQuantity), nil)
	}
	return existing.ID, nil
}

func (s *CartService) UpdateItem(ctx context.Context, cartID string, itemID uint, qty int) (*models.CartItem, error) {
	if err := validateQuantity(qty); err != nil {
		return nil, err
	}
	item, err := s.GetItem(ctx, cartID, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.cartItemRepo.UpdateQuantity(ctx, item.ID, qty); err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	item.Quantity = qty
	return item, nil
}

func (s *CartService) RemoveItem(ctx context.Context, cartID string, itemID uint) error {
	affected, err := s.cartItemRepo.Delete(ctx, cartID, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("cart item: %w", ErrNotFound)
	}
	return nil
}
