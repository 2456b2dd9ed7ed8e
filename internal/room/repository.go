package room

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"roomstatus/internal/tracking"
)

// Seed describes a room as the dev seeder provides it.
type Seed struct {
	Number   string          `yaml:"number"`
	Category string          `yaml:"category"`
	Price    decimal.Decimal `yaml:"price"`
	Images   []string        `yaml:"images"`
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context) ([]tracking.Room, error) {
	const q = `
SELECT r.id::text, r.number, COALESCE(c.name, ''), r.price::text, r.images,
       r.current_status_id::text, COALESCE(s.name, ''), COALESCE(s.color, ''), r.updated_at
FROM rooms r
LEFT JOIN room_categories c ON c.id = r.category_id
LEFT JOIN room_statuses s ON s.id = r.current_status_id
ORDER BY r.number ASC
`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []tracking.Room{}
	for rows.Next() {
		var (
			rm    tracking.Room
			price string
		)
		if err := rows.Scan(
			&rm.ID, &rm.Number, &rm.CategoryName, &price, &rm.Images,
			&rm.CurrentStatusID, &rm.StatusName, &rm.StatusColor, &rm.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if rm.Price, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		if rm.Images == nil {
			rm.Images = []string{}
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

// Upsert creates or refreshes a room by number. Only the dev seeder writes
// descriptive room fields.
func (r *Repository) Upsert(ctx context.Context, s Seed) (string, error) {
	const category = `
INSERT INTO room_categories (name) VALUES ($1)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id::text
`
	const room = `
INSERT INTO rooms (number, category_id, price, images)
VALUES ($1, $2, $3::numeric, $4)
ON CONFLICT (number) DO UPDATE
SET category_id = EXCLUDED.category_id, price = EXCLUDED.price, images = EXCLUDED.images, updated_at = NOW()
RETURNING id::text
`
	var categoryID *string
	if s.Category != "" {
		var id string
		if err := r.db.QueryRow(ctx, category, s.Category).Scan(&id); err != nil {
			return "", err
		}
		categoryID = &id
	}
	images := s.Images
	if images == nil {
		images = []string{}
	}

	var id string
	err := r.db.QueryRow(ctx, room, s.Number, categoryID, s.Price.StringFixed(2), images).Scan(&id)
	return id, err
}

// GetForUpdate locks the room row until the transaction ends so concurrent
// transitions on one room apply one at a time.
func GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*tracking.Room, error) {
	const q = `
SELECT id::text, number, current_status_id::text, updated_at
FROM rooms
WHERE id = $1
FOR UPDATE
`
	var rm tracking.Room
	if err := tx.QueryRow(ctx, q, id).Scan(&rm.ID, &rm.Number, &rm.CurrentStatusID, &rm.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tracking.ErrRecordNotFound
		}
		return nil, err
	}
	return &rm, nil
}

func SetCurrentStatus(ctx context.Context, tx pgx.Tx, roomID, statusID string, at time.Time) error {
	tag, err := tx.Exec(ctx, `UPDATE rooms SET current_status_id = $2, updated_at = $3 WHERE id = $1`, roomID, statusID, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return tracking.ErrRecordNotFound
	}
	return nil
}
