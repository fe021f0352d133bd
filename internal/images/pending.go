package images

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	StatusPending = "pending"
	StatusDeleted = "deleted"
	StatusFailed  = "failed"
)

type PendingDeletion struct {
	ID        int64
	PublicID  string
	ImageURL  string
	Status    string
	CreatedAt time.Time
}

// DeletionQueue records images that should be removed from Cloudinary.
// Destroy needs the API secret, which the API process may not hold, so
// deletes are queued here and drained by cmd/cleanup-images.
type DeletionQueue struct {
	DB *sql.DB
}

func NewDeletionQueue(db *sql.DB) *DeletionQueue {
	return &DeletionQueue{DB: db}
}

func (q *DeletionQueue) Enqueue(ctx context.Context, imageURL string) error {
	publicID := PublicIDFromURL(imageURL)
	if publicID == "" {
		return fmt.Errorf("not a cloudinary url: %s", imageURL)
	}

	_, err := q.DB.ExecContext(ctx, `
		INSERT INTO pending_image_deletions (public_id, image_url)
		VALUES (?, ?)
	`, publicID, imageURL)
	if err != nil {
		return fmt.Errorf("enqueue image deletion: %w", err)
	}
	return nil
}

func (q *DeletionQueue) ListPending(ctx context.Context, limit int) ([]PendingDeletion, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := q.DB.QueryContext(ctx, `
		SELECT id, public_id, image_url, status, created_at
		FROM pending_image_deletions
		WHERE status = ?
		ORDER BY created_at ASC
		LIMIT ?
	`, StatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending deletions: %w", err)
	}
	defer rows.Close()

	out := make([]PendingDeletion, 0, limit)
	for rows.Next() {
		var d PendingDeletion
		if err := rows.Scan(&d.ID, &d.PublicID, &d.ImageURL, &d.Status, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending deletion: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (q *DeletionQueue) MarkDeleted(ctx context.Context, id int64) error {
	_, err := q.DB.ExecContext(ctx, `
		UPDATE pending_image_deletions
		SET status = ?, processed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, StatusDeleted, id)
	if err != nil {
		return fmt.Errorf("mark deleted: %w", err)
	}
	return nil
}

func (q *DeletionQueue) MarkFailed(ctx context.Context, id int64, reason string) error {
	_, err := q.DB.ExecContext(ctx, `
		UPDATE pending_image_deletions
		SET status = ?, error = ?, processed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, StatusFailed, reason, id)
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return nil
}
