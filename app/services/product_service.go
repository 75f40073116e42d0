package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Prices are stored as decimal(6,2).
const (
	priceMaxDigits     = 6
	priceDecimalPlaces = 2
)

type ProductInput struct {
	Title        string
	Slug         string
	Description  string
	Price        decimal.Decimal
	CategoryID   uint
	PromotionIDs []uint
}

type ProductPage struct {
	Products []models.Product
	Count    int64
}

type ProductService struct {
	productRepo   repositories.ProductRepository
	categoryRepo  repositories.CategoryRepository
	promotionRepo repositories.PromotionRepository
	minPrice      decimal.Decimal
	logger        *zap.Logger
}

func NewProductService(
	productRepo repositories.ProductRepository,
	categoryRepo repositories.CategoryRepository,
	promotionRepo repositories.PromotionRepository,
	minPrice decimal.Decimal,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo:   productRepo,
		categoryRepo:  categoryRepo,
		promotionRepo: promotionRepo,
		minPrice:      minPrice,
		logger:        logger,
	}
}

func (s *ProductService) List(ctx context.Context, filter repositories.ProductFilter) (*ProductPage, error) {
	if !repositories.IsValidProductOrdering(filter.Ordering) {
		return nil, NewValidationError("ordering", fmt.Sprintf("Unknown ordering %q.", filter.Ordering), nil)
	}
	products, count, err := s.productRepo.GetPaginated(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return &ProductPage{Products: products, Count: count}, nil
}

func (s *ProductService) Get(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "product")
	}
	return product, nil
}

// ValidatePrice applies the minimum price and the decimal(6,2) shape.
func (s *ProductService) ValidatePrice(price decimal.Decimal) map[string]string {
	fields := map[string]string{}
	switch {
	case !price.Equal(price.Round(priceDecimalPlaces)):
		fields["price"] = fmt.Sprintf("Ensure that there are no more than %d decimal places.", priceDecimalPlaces)
	case len(price.Abs().Truncate(0).String()) > priceMaxDigits-priceDecimalPlaces:
		fields["price"] = fmt.Sprintf("Ensure that there are no more than %d digits in total.", priceMaxDigits)
	case price.LessThan(s.minPrice):
		fields["price"] = fmt.Sprintf("Invalid Price! Price cannot be less than %s", s.minPrice.String())
	}
	return fields
}

func (s *ProductService) build(ctx context.Context, product *models.Product, in ProductInput) error {
	fields := s.ValidatePrice(in.Price)

	title := strings.TrimSpace(in.Title)
	if title == "" {
		fields["title"] = "This field may not be blank."
	}

	if _, err := s.categoryRepo.GetByID(ctx, in.CategoryID); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to load category: %w", err)
		}
		fields["category_id"] = fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", in.CategoryID)
	}

	promotions, err := s.promotionRepo.GetByIDs(ctx, in.PromotionIDs)
	if err != nil {
		return fmt.Errorf("failed to load promotions: %w", err)
	}
	if len(promotions) != len(uniqueIDs(in.PromotionIDs)) {
		fields["promotion_ids"] = "One or more promotions do not exist."
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	product.Title = title
	product.Slug = strings.TrimSpace(in.Slug)
	if product.Slug == "" {
		product.Slug = slug.Make(title)
	}
	product.Description = in.Description
	product.Price = in.Price
	product.CategoryID = in.CategoryID
	product.Promotions = promotions
	return nil
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	product := &models.Product{}
	if err := s.build(ctx, product, in); err != nil {
		return nil, err
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.logger.Info("ProductService.Create: product created", zap.Uint("product_id", product.ID))
	return s.Get(ctx, product.ID)
}

func (s *ProductService) Update(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.build(ctx, product, in); err != nil {
		return nil, err
	}
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return s.Get(ctx, id)
}

// Delete rejects the protected product for every caller before looking at privileges.
func (s *ProductService) Delete(ctx context.Context, caller Caller, id uint) error {
	if id == models.ProtectedProductID {
		return NewValidationError("detail", "This product cannot be deleted.", ErrProtectedProduct)
	}
	if err := requireStaff(caller); err != nil {
		return err
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return notFound(err, "product")
	}
	s.logger.Info("ProductService.Delete: product deleted", zap.Uint("product_id", id), zap.Uint("by_user", caller.UserID))
	return nil
}

// Exists reports whether a live product has the given id.
func (s *ProductService) Exists(ctx context.Context, id uint) (bool, error) {
	return s.productRepo.Exists(ctx, id)
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
