package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"recordmoa/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

const recordColumns = `
	id, user_id, category, title, rating, review, image_url,
	director, cast_names, date_watched,
	author, publisher, date_started, date_finished,
	place_name, location, date_visited,
	created_at, updated_at
`

// Create assigns the id and both timestamps, then inserts. The caller
// gets the stored record back through the same struct.
func (r *Repo) Create(ctx context.Context, rec *models.Record) error {
	rec.ID = uuid.NewString()
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	castJSON, err := castToJSON(rec.Cast)
	if err != nil {
		return fmt.Errorf("encode cast: %w", err)
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO records (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID, rec.UserID, rec.Category, rec.Title, rec.Rating, rec.Review, nullStr(rec.ImageURL),
		nullStr(rec.Director), castJSON, nullTime(rec.DateWatched),
		nullStr(rec.Author), nullStr(rec.Publisher), nullTime(rec.DateStarted), nullTime(rec.DateFinished),
		nullStr(rec.PlaceName), nullStr(rec.Location), nullTime(rec.DateVisited),
		rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.Record, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM records
		WHERE id = ?
	`, id)

	rec, err := scanRecord(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan record: %w", err)
	}
	return rec, nil
}

// ListByUser returns the user's entire record set in one call; the
// query engine filters, sorts, and pages it in memory. category may be
// empty for all categories.
func (r *Repo) ListByUser(ctx context.Context, userID, category string) ([]models.Record, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if category == "" {
		rows, err = r.DB.QueryContext(ctx, `
			SELECT `+recordColumns+`
			FROM records
			WHERE user_id = ?
			ORDER BY created_at DESC
		`, userID)
	} else {
		rows, err = r.DB.QueryContext(ctx, `
			SELECT `+recordColumns+`
			FROM records
			WHERE user_id = ? AND category = ?
			ORDER BY created_at DESC
		`, userID, category)
	}
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	out := make([]models.Record, 0, 64)
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan record row: %w", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// Update rewrites every mutable field from rec and refreshes
// updated_at. Category and created_at are immutable. The update is
// scoped to the owner; false means no such record for that user.
func (r *Repo) Update(ctx context.Context, rec *models.Record) (bool, error) {
	rec.UpdatedAt = time.Now().UTC()

	castJSON, err := castToJSON(rec.Cast)
	if err != nil {
		return false, fmt.Errorf("encode cast: %w", err)
	}

	res, err := r.DB.ExecContext(ctx, `
		UPDATE records SET
			title = ?, rating = ?, review = ?, image_url = ?,
			director = ?, cast_names = ?, date_watched = ?,
			author = ?, publisher = ?, date_started = ?, date_finished = ?,
			place_name = ?, location = ?, date_visited = ?,
			updated_at = ?
		WHERE id = ? AND user_id = ?
	`,
		rec.Title, rec.Rating, rec.Review, nullStr(rec.ImageURL),
		nullStr(rec.Director), castJSON, nullTime(rec.DateWatched),
		nullStr(rec.Author), nullStr(rec.Publisher), nullTime(rec.DateStarted), nullTime(rec.DateFinished),
		nullStr(rec.PlaceName), nullStr(rec.Location), nullTime(rec.DateVisited),
		rec.UpdatedAt,
		rec.ID, rec.UserID,
	)
	if err != nil {
		return false, fmt.Errorf("update record: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *Repo) Delete(ctx context.Context, id, userID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM records
		WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete record: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// scanRecord is the single conversion point from store columns into the
// model: NULLs become zero values, cast_names JSON becomes a slice.
func scanRecord(scan func(...any) error) (*models.Record, error) {
	var (
		rec       models.Record
		review    sql.NullString
		imageURL  sql.NullString
		director  sql.NullString
		castJSON  sql.NullString
		watched   sql.NullTime
		author    sql.NullString
		publisher sql.NullString
		started   sql.NullTime
		finished  sql.NullTime
		placeName sql.NullString
		location  sql.NullString
		visited   sql.NullTime
	)

	if err := scan(
		&rec.ID, &rec.UserID, &rec.Category, &rec.Title, &rec.Rating, &review, &imageURL,
		&director, &castJSON, &watched,
		&author, &publisher, &started, &finished,
		&placeName, &location, &visited,
		&rec.CreatedAt, &rec.UpdatedAt,
	); err != nil {
		return nil, err
	}

	rec.Review = review.String
	rec.ImageURL = imageURL.String
	rec.Director = director.String
	rec.Author = author.String
	rec.Publisher = publisher.String
	rec.PlaceName = placeName.String
	rec.Location = location.String
	if castJSON.Valid && castJSON.String != "" {
		_ = json.Unmarshal([]byte(castJSON.String), &rec.Cast)
	}
	rec.DateWatched = timePtr(watched)
	rec.DateStarted = timePtr(started)
	rec.DateFinished = timePtr(finished)
	rec.DateVisited = timePtr(visited)

	return &rec, nil
}

func castToJSON(cast []string) (any, error) {
	if len(cast) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(cast)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
