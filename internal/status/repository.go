package status

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"roomstatus/internal/tracking"
	"roomstatus/pkg/db"
)

const (
	nameConstraint    = "room_statuses_name_key"
	defaultConstraint = "room_statuses_one_default"
)

const selectColumns = `
SELECT id::text, name, color, description, is_default, is_active, created_at, updated_at
FROM room_statuses
`

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context, activeOnly bool) ([]tracking.Status, error) {
	q := selectColumns
	if activeOnly {
		q += "WHERE is_active\n"
	}
	q += "ORDER BY name ASC"

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []tracking.Status{}
	for rows.Next() {
		s, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// GetForUpdate locks the row against concurrent catalog writes and deletion.
func GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*tracking.Status, error) {
	return scan(tx.QueryRow(ctx, selectColumns+"WHERE id = $1\nFOR UPDATE", id))
}

// GetForKeyShare only blocks deletion, so concurrent transitions to the same
// status do not serialize on it.
func GetForKeyShare(ctx context.Context, tx pgx.Tx, id string) (*tracking.Status, error) {
	return scan(tx.QueryRow(ctx, selectColumns+"WHERE id = $1\nFOR KEY SHARE", id))
}

func GetDefault(ctx context.Context, tx pgx.Tx) (*tracking.Status, error) {
	return scan(tx.QueryRow(ctx, selectColumns+"WHERE is_default\nFOR KEY SHARE"))
}

func Insert(ctx context.Context, tx pgx.Tx, s tracking.Status) error {
	const q = `
INSERT INTO room_statuses (id, name, color, description, is_default, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`
	_, err := tx.Exec(ctx, q, s.ID, s.Name, s.Color, s.Description, s.IsDefault, s.IsActive, s.CreatedAt, s.UpdatedAt)
	return translate(err)
}

func Update(ctx context.Context, tx pgx.Tx, s tracking.Status) error {
	const q = `
UPDATE room_statuses
SET name = $2, color = $3, description = $4, is_default = $5, is_active = $6, updated_at = $7
WHERE id = $1
`
	tag, err := tx.Exec(ctx, q, s.ID, s.Name, s.Color, s.Description, s.IsDefault, s.IsActive, s.UpdatedAt)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return tracking.ErrRecordNotFound
	}
	return nil
}

// ClearDefaults unsets the default flag everywhere except on exceptID
// (empty clears every row).
func ClearDefaults(ctx context.Context, tx pgx.Tx, exceptID string) error {
	const q = `
UPDATE room_statuses
SET is_default = false, updated_at = NOW()
WHERE is_default AND ($1::uuid IS NULL OR id <> $1::uuid)
`
	var except *string
	if exceptID != "" {
		except = &exceptID
	}
	_, err := tx.Exec(ctx, q, except)
	return err
}

func Delete(ctx context.Context, tx pgx.Tx, id string) error {
	tag, err := tx.Exec(ctx, `DELETE FROM room_statuses WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return tracking.InUseError{StatusID: id}
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return tracking.ErrRecordNotFound
	}
	return nil
}

func CountRooms(ctx context.Context, tx pgx.Tx, id string) (int, error) {
	var n int
	err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM rooms WHERE current_status_id = $1`, id).Scan(&n)
	return n, err
}

func scan(row pgx.Row) (*tracking.Status, error) {
	var s tracking.Status
	if err := row.Scan(&s.ID, &s.Name, &s.Color, &s.Description, &s.IsDefault, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tracking.ErrRecordNotFound
		}
		return nil, err
	}
	return &s, nil
}

func translate(err error) error {
	if db.IsUniqueViolation(err, nameConstraint) {
		return tracking.ValidationError{Field: "name", Message: "a status with this name already exists"}
	}
	// Lost a race with a concurrent default assignment.
	if db.IsUniqueViolation(err, defaultConstraint) {
		return tracking.ValidationError{Field: "isDefault", Message: "another status became the default concurrently"}
	}
	return err
}
