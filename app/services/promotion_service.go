package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/repositories"
)

type PromotionService struct {
	promotionRepo repositories.PromotionRepository
}

func NewPromotionService(promotionRepo repositories.PromotionRepository) *PromotionService {
	return &PromotionService{promotionRepo: promotionRepo}
}

func (s *PromotionService) List(ctx context.Context) ([]models.Promotion, error) {
	promotions, err := s.promotionRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list promotions: %w", err)
	}
	return promotions, nil
}

func (s *PromotionService) Get(ctx context.Context, id uint) (*models.Promotion, error) {
	promotion, err := s.promotionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "promotion")
	}
	return promotion, nil
}

func (s *PromotionService) Create(ctx context.Context, title string) (*models.Promotion, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, NewValidationError("title", "This field may not be blank.", nil)
	}
	promotion := &models.Promotion{Title: title}
	if err := s.promotionRepo.Create(ctx, promotion); err != nil {
		return nil, fmt.Errorf("failed to create promotion: %w", err)
	}
	return promotion, nil
}

func (s *PromotionService) Update(ctx context.Context, id uint, title string) (*models.Promotion, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, NewValidationError("title", "This field may not be blank.", nil)
	}
	promotion, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	promotion.Title = title
	if err := s.promotionRepo.Update(ctx, promotion); err != nil {
		return nil, fmt.Errorf("failed to update promotion: %w", err)
	}
	return promotion, nil
}

func (s *PromotionService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.promotionRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete promotion: %w", err)
	}
	return nil
}
