package repositories

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

// CategoryStatsRepository is a read model over the live product table. It shares the
// connection pool owned by gorm.
type CategoryStatsRepository interface {
	ProductCounts(ctx context.Context) (map[uint]int64, error)
	ProductCount(ctx context.Context, categoryID uint) (int64, error)
}

type categoryProductCount struct {
	CategoryID uint  `db:"category_id"`
	Count      int64 `db:"product_count"`
}

type categoryStatsRepository struct {
	db *sqlx.DB
}

func NewCategoryStatsRepository(db *gorm.DB) (CategoryStatsRepository, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB from gorm: %w", err)
	}
	return &categoryStatsRepository{db: sqlx.NewDb(sqlDB, sqlxDriverName(db.Dialector.Name()))}, nil
}

func sqlxDriverName(dialect string) string {
	if dialect == "sqlite" {
		return "sqlite3"
	}
	return dialect
}

const productCountsQuery = `
SELECT c.id AS category_id, COUNT(p.id) AS product_count
FROM categories c
LEFT JOIN products p ON p.category_id = c.id AND p.deleted_at IS NULL
GROUP BY c.id`

func (r *categoryStatsRepository) ProductCounts(ctx context.Context) (map[uint]int64, error) {
	var rows []categoryProductCount
	if err := r.db.SelectContext(ctx, &rows, productCountsQuery); err != nil {
		return nil, fmt.Errorf("failed to count products per category: %w", err)
	}

	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.CategoryID] = row.Count
	}
	return counts, nil
}

func (r *categoryStatsRepository) ProductCount(ctx context.Context, categoryID uint) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM products WHERE category_id = ? AND deleted_at IS NULL`, categoryID)
	if err != nil {
		return 0, fmt.Errorf("failed to count products for category %d: %w", categoryID, err)
	}
	return count, nil
}
