package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/dejanvasic/shopgram/internal/models"
)

type ScheduledPostRepository interface {
	GetByID(ctx context.Context, id int64) (*models.ScheduledPost, error)
	Create(ctx context.Context, sp *models.ScheduledPost) (int64, error)
	List(ctx context.Context) ([]*models.ScheduledPost, error)
	UpdateStatus(ctx context.Context, id int64, status, errorMessage string) error
	MarkStaleProcessingFailed(ctx context.Context, olderThan time.Time, errorMessage string) (int64, error)
	Remove(ctx context.Context, id int64) error
}

type scheduledPostRepository struct {
	db *sql.DB
}

func NewScheduledPostRepository(db *sql.DB) ScheduledPostRepository {
	return &scheduledPostRepository{db: db}
}

func (r *scheduledPostRepository) Create(ctx context.Context, sp *models.ScheduledPost) (int64, error) {
	query := `
		INSERT INTO scheduled_posts (product_id, platform, scheduled_for, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, sp.ProductID, sp.Platform, sp.ScheduledFor, sp.Status).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *scheduledPostRepository) GetByID(ctx context.Context, id int64) (*models.ScheduledPost, error) {
	query := `SELECT id, product_id, platform, scheduled_for, status, error_message, created_at FROM scheduled_posts WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var sp models.ScheduledPost
	err := row.Scan(&sp.ID, &sp.ProductID, &sp.Platform, &sp.ScheduledFor, &sp.Status, &sp.ErrorMessage, &sp.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &sp, nil
}

func (r *scheduledPostRepository) List(ctx context.Context) ([]*models.ScheduledPost, error) {
	query := `SELECT id, product_id, platform, scheduled_for, status, error_message, created_at FROM scheduled_posts ORDER BY scheduled_for`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.ScheduledPost
	for rows.Next() {
		var sp models.ScheduledPost
		err := rows.Scan(&sp.ID, &sp.ProductID, &sp.Platform, &sp.ScheduledFor, &sp.Status, &sp.ErrorMessage, &sp.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, &sp)
	}
	return posts, nil
}

func (r *scheduledPostRepository) UpdateStatus(ctx context.Context, id int64, status, errorMessage string) error {
	query := `UPDATE scheduled_posts SET status = $1, error_message = $2 WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, status, errorMessage, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// MarkStaleProcessingFailed flips records that have been sitting in
// processing since before olderThan to failed so a human can re-trigger
// them. Returns the number of records touched.
func (r *scheduledPostRepository) MarkStaleProcessingFailed(ctx context.Context, olderThan time.Time, errorMessage string) (int64, error) {
	query := `UPDATE scheduled_posts SET status = $1, error_message = $2 WHERE status = $3 AND scheduled_for < $4`
	res, err := r.db.ExecContext(ctx, query, models.ScheduledPostStatusFailed, errorMessage, models.ScheduledPostStatusProcessing, olderThan)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return affected, nil
}

func (r *scheduledPostRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM scheduled_posts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
