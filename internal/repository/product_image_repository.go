package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/dejanvasic/shopgram/internal/models"
)

type ProductImageRepository interface {
	// ListByProductID returns a product's images in upload order.
	ListByProductID(ctx context.Context, productID int64) ([]*models.ProductImage, error)
	Create(ctx context.Context, img *models.ProductImage) (int64, error)
}

type productImageRepository struct {
	db *sql.DB
}

func NewProductImageRepository(db *sql.DB) ProductImageRepository {
	return &productImageRepository{db: db}
}

func (r *productImageRepository) ListByProductID(ctx context.Context, productID int64) ([]*models.ProductImage, error) {
	query := `SELECT id, product_id, file_url, is_main, created_at FROM product_images WHERE product_id = $1 ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var images []*models.ProductImage
	for rows.Next() {
		var img models.ProductImage
		err := rows.Scan(&img.ID, &img.ProductID, &img.FileURL, &img.IsMain, &img.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		images = append(images, &img)
	}
	return images, nil
}

func (r *productImageRepository) Create(ctx context.Context, img *models.ProductImage) (int64, error) {
	query := `
		INSERT INTO product_images (product_id, file_url, is_main)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, img.ProductID, img.FileURL, img.IsMain).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}
