package fakers

import (
	"math/rand"
	"strings"
	"time"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/go-faker/faker/v4"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
)

// Prices stay inside decimal(6,2) and above the default minimum price.
const (
	minFakePriceCents = 500000
	maxFakePriceCents = 999999
)

func CategoryFaker() *models.Category {
	return &models.Category{Title: titleCase(faker.Word())}
}

func PromotionFaker() *models.Promotion {
	return &models.Promotion{Title: titleCase(faker.Word()) + " Sale"}
}

func ProductFaker(categoryID uint, promotions ...models.Promotion) *models.Product {
	title := productTitle()
	return &models.Product{
		Title:       title,
		Slug:        slug.Make(title),
		Description: faker.Paragraph(),
		Price:       FakePrice(),
		CategoryID:  categoryID,
		Promotions:  promotions,
	}
}

func ReviewFaker(productID uint) *models.Review {
	return &models.Review{
		ProductID:    productID,
		ReviewerName: faker.Name(),
		Remark:       faker.Sentence(),
		PostedAt:     time.Now().UTC().Truncate(24 * time.Hour),
	}
}

// FakePrice returns a price with two decimal places.
func FakePrice() decimal.Decimal {
	cents := minFakePriceCents + rand.Int63n(maxFakePriceCents-minFakePriceCents+1)
	return decimal.New(cents, -2)
}

func productTitle() string {
	words := strings.Fields(strings.TrimSuffix(faker.Sentence(), "."))
	if len(words) > 3 {
		words = words[:3]
	}
	return titleCase(strings.Join(words, " "))
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
