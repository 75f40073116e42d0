package seeders

import (
	"errors"
	"fmt"

	"github.com/Rakhulsr/go-storefront/app/db/fakers"
	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultCategoryTitle = "General"
	promotionCount       = 3
	reviewsPerProduct    = 2
)

type Seeder struct {
	Name string
	Run  func(tx *gorm.DB) error
}

// SeedersRegister lists the seeders in the order they run. The protected product comes first
// so it always receives id 1 on an empty database.
func SeedersRegister(products int) []Seeder {
	return []Seeder{
		{Name: "protected product", Run: seedProtectedProduct},
		{Name: "catalog", Run: func(tx *gorm.DB) error { return seedCatalog(tx, products) }},
	}
}

func DBSeed(db *gorm.DB, products int, logger *zap.Logger) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, seeder := range SeedersRegister(products) {
			if err := seeder.Run(tx); err != nil {
				return fmt.Errorf("seeder %s: %w", seeder.Name, err)
			}
			logger.Info("DBSeed: seeder finished", zap.String("seeder", seeder.Name))
		}
		return nil
	})
}

func defaultCategory(tx *gorm.DB) (*models.Category, error) {
	category := &models.Category{}
	if err := tx.Where("title = ?", defaultCategoryTitle).FirstOrCreate(category, models.Category{Title: defaultCategoryTitle}).Error; err != nil {
		return nil, err
	}
	return category, nil
}

func seedProtectedProduct(tx *gorm.DB) error {
	var existing models.Product
	err := tx.Unscoped().First(&existing, models.ProtectedProductID).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	category, err := defaultCategory(tx)
	if err != nil {
		return err
	}
	product := &models.Product{
		ID:          models.ProtectedProductID,
		Title:       "Storefront Gift Card",
		Slug:        "storefront-gift-card",
		Description: "Gift card redeemable for any product in the store.",
		Price:       decimal.NewFromInt(5000),
		CategoryID:  category.ID,
	}
	return tx.Omit("Category", "Images", "Reviews", "Promotions").Create(product).Error
}

func seedCatalog(tx *gorm.DB, products int) error {
	if products <= 0 {
		return nil
	}

	promotions := make([]models.Promotion, 0, promotionCount)
	for i := 0; i < promotionCount; i++ {
		promotion := fakers.PromotionFaker()
		if err := tx.Create(promotion).Error; err != nil {
			return err
		}
		promotions = append(promotions, *promotion)
	}

	categories := []models.Category{}
	for i := 0; i < 1+products/5; i++ {
		category := fakers.CategoryFaker()
		if err := tx.Create(category).Error; err != nil {
			return err
		}
		categories = append(categories, *category)
	}

	for i := 0; i < products; i++ {
		category := categories[i%len(categories)]
		product := fakers.ProductFaker(category.ID, promotions[i%len(promotions)])
		if err := tx.Omit("Category", "Images", "Reviews").Create(product).Error; err != nil {
			return err
		}
		for j := 0; j < reviewsPerProduct; j++ {
			if err := tx.Omit("Product").Create(fakers.ReviewFaker(product.ID)).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
