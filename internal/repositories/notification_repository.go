package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"shop-backend/internal/models"
)

type NotificationRepository struct {
	DB *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO notifications(store_id, title, message, type, is_read)
         VALUES($1, $2, $3, $4, false)
         RETURNING id, created_at`,
		n.StoreID, n.Title, n.Message, n.Type,
	).Scan(&n.ID, &n.CreatedAt)
}

// List returns the latest notifications for a store, newest first
func (r *NotificationRepository) List(ctx context.Context, storeID, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.DB.Query(ctx,
		`SELECT id, store_id, title, message, type, is_read, created_at
         FROM notifications WHERE store_id=$1
         ORDER BY created_at DESC, id DESC LIMIT $2`, storeID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		err := rows.Scan(&n.ID, &n.StoreID, &n.Title, &n.Message, &n.Type, &n.IsRead, &n.CreatedAt)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *NotificationRepository) MarkRead(ctx context.Context, storeID, id int) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE notifications SET is_read=true WHERE id=$1 AND store_id=$2`, id, storeID)
	return err
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, storeID int) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE notifications SET is_read=true WHERE store_id=$1 AND is_read=false`, storeID)
	return err
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, storeID int) (int, error) {
	var count int
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE store_id=$1 AND is_read=false`, storeID,
	).Scan(&count)
	return count, err
}
