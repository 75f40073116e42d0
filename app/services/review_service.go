package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/repositories"
)

type ReviewInput struct {
	ReviewerName string
	Remark       string
}

type ReviewService struct {
	reviewRepo  repositories.ReviewRepository
	productRepo repositories.ProductRepository
}

func NewReviewService(reviewRepo repositories.ReviewRepository, productRepo repositories.ProductRepository) *ReviewService {
	return &ReviewService{reviewRepo: reviewRepo, productRepo: productRepo}
}

func (s *ReviewService) ensureProduct(ctx context.Context, productID uint) error {
	exists, err := s.productRepo.Exists(ctx, productID)
	if err != nil {
		return fmt.Errorf("failed to check product: %w", err)
	}
	if !exists {
		return fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}
	return nil
}

func validateReview(in ReviewInput) error {
	fields := map[string]string{}
	if strings.TrimSpace(in.ReviewerName) == "" {
		fields["reviewer_name"] = "This field may not be blank."
	}
	if strings.TrimSpace(in.Remark) == "" {
		fields["remark"] = "This field may not be blank."
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (s *ReviewService) List(ctx context.Context, productID uint) ([]models.Review, error) {
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}
	reviews, err := s.reviewRepo.GetByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

func (s *ReviewService) Get(ctx context.Context, productID, id uint) (*models.Review, error) {
	review, err := s.reviewRepo.GetForProduct(ctx, productID, id)
	if err != nil {
		return nil, notFound(err, "review")
	}
	return review, nil
}

// Create takes the product from the URL, never from the request body.
func (s *ReviewService) Create(ctx context.Context, productID uint, in ReviewInput) (*models.Review, error) {
	if err := s.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}
	if err := validateReview(in); err != nil {
		return nil, err
	}

	review := &models.Review{
		ProductID:    productID,
		ReviewerName: strings.TrimSpace(in.ReviewerName),
		Remark:       in.Remark,
		PostedAt:     time.Now().UTC().Truncate(24 * time.Hour),
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	return s.Get(ctx, productID, review.ID)
}

func (s *ReviewService) Update(ctx context.Context, productID, id uint, in ReviewInput) (*models.Review, error) {
	review, err := s.Get(ctx, productID, id)
	if err != nil {
		return nil, err
	}
	if err := validateReview(in); err != nil {
		return nil, err
	}
	review.ReviewerName = strings.TrimSpace(in.ReviewerName)
	review.Remark = in.Remark
	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}
	return review, nil
}

func (s *ReviewService) Delete(ctx context.Context, productID, id uint) error {
	if _, err := s.Get(ctx, productID, id); err != nil {
		return err
	}
	if err := s.reviewRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return nil
}
