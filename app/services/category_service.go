package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"go.uber.org/zap"
)

type CategoryWithCount struct {
	models.Category
	ProductCount int64
}

type CategoryService struct {
	categoryRepo repositories.CategoryRepository
	statsRepo    repositories.CategoryStatsRepository
	logger       *zap.Logger
}

func NewCategoryService(categoryRepo repositories.CategoryRepository, statsRepo repositories.CategoryStatsRepository, logger *zap.Logger) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo, statsRepo: statsRepo, logger: logger}
}

func (s *CategoryService) List(ctx context.Context) ([]CategoryWithCount, error) {
	categories, err := s.categoryRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	counts, err := s.statsRepo.ProductCounts(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]CategoryWithCount, 0, len(categories))
	for _, c := range categories {
		result = append(result, CategoryWithCount{Category: c, ProductCount: counts[c.ID]})
	}
	return result, nil
}

func (s *CategoryService) Get(ctx context.Context, id uint) (*CategoryWithCount, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "category")
	}
	count, err := s.statsRepo.ProductCount(ctx, id)
	if err != nil {
		return nil, err
	}
	return &CategoryWithCount{Category: *category, ProductCount: count}, nil
}

func (s *CategoryService) Create(ctx context.Context, title string) (*CategoryWithCount, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, NewValidationError("title", "This field may not be blank.", nil)
	}

	category := &models.Category{Title: title}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return &CategoryWithCount{Category: *category}, nil
}

func (s *CategoryService) Update(ctx context.Context, id uint, title string) (*CategoryWithCount, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, NewValidationError("title", "This field may not be blank.", nil)
	}

	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "category")
	}
	category.Title = title
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return s.Get(ctx, id)
}

// Delete refuses categories that still have products attached.
func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	if _, err := s.categoryRepo.GetByID(ctx, id); err != nil {
		return notFound(err, "category")
	}

	hasProducts, err := s.categoryRepo.HasProducts(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check category products: %w", err)
	}
	if hasProducts {
		return NewValidationError("detail", "Category cannot be deleted because it includes one or more products.", nil)
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	s.logger.Info("CategoryService.Delete: category deleted", zap.Uint("category_id", id))
	return nil
}
