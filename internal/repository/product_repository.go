package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/dejanvasic/shopgram/internal/models"
)

type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	List(ctx context.Context) ([]*models.Product, error)
}

type productRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	query := `SELECT id, name, opis_fb_insta, opis, opis_kp, created_at, updated_at FROM products WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var p models.Product
	err := row.Scan(&p.ID, &p.Name, &p.OpisFbInsta, &p.Opis, &p.OpisKp, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &p, nil
}

func (r *productRepository) List(ctx context.Context) ([]*models.Product, error) {
	query := `SELECT id, name, opis_fb_insta, opis, opis_kp, created_at, updated_at FROM products ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		var p models.Product
		err := rows.Scan(&p.ID, &p.Name, &p.OpisFbInsta, &p.Opis, &p.OpisKp, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		products = append(products, &p)
	}
	return products, nil
}
