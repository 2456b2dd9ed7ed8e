package history

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"roomstatus/internal/tracking"
)

const selectRecords = `
SELECT h.id::text, h.room_id::text, h.status_id::text, h.previous_status_id::text,
       h.notes, h.changed_by, h.booking_id::text, h.changed_at,
       COALESCE(r.number, ''), COALESCE(c.name, ''), COALESCE(s.name, ''), COALESCE(s.color, ''),
       COALESCE(btrim(b.guest_first_name || ' ' || b.guest_last_name), '')
FROM room_status_history h
LEFT JOIN rooms r ON r.id = h.room_id
LEFT JOIN room_categories c ON c.id = r.category_id
LEFT JOIN room_statuses s ON s.id = h.status_id
LEFT JOIN bookings b ON b.id = h.booking_id
`

// searchable lists the expressions free text is matched against.
var searchable = []string{
	"r.number",
	"c.name",
	"s.name",
	"h.notes",
	"h.changed_by",
	"(b.guest_first_name || ' ' || b.guest_last_name)",
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func Append(ctx context.Context, tx pgx.Tx, e tracking.Entry) error {
	const q = `
INSERT INTO room_status_history (id, room_id, status_id, previous_status_id, notes, changed_by, booking_id, changed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`
	_, err := tx.Exec(ctx, q, e.ID, e.RoomID, e.StatusID, e.PreviousStatusID, e.Notes, e.ChangedBy, e.BookingID, e.ChangedAt)
	return err
}

// Query streams matching records newest first. Each range runs the query.
func (r *Repository) Query(ctx context.Context, f tracking.HistoryFilter) iter.Seq2[tracking.Record, error] {
	return func(yield func(tracking.Record, error) bool) {
		q, args := buildQuery(f)
		rows, err := r.db.Query(ctx, q, args...)
		if err != nil {
			yield(tracking.Record{}, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			var rec tracking.Record
			if err := rows.Scan(
				&rec.ID, &rec.RoomID, &rec.StatusID, &rec.PreviousStatusID,
				&rec.Notes, &rec.ChangedBy, &rec.BookingID, &rec.ChangedAt,
				&rec.RoomNumber, &rec.CategoryName, &rec.StatusName, &rec.StatusColor, &rec.GuestName,
			); err != nil {
				yield(tracking.Record{}, err)
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(tracking.Record{}, err)
		}
	}
}

func buildQuery(f tracking.HistoryFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.RoomID != "" {
		where = append(where, "h.room_id = "+arg(f.RoomID))
	}
	if f.StatusName != "" {
		where = append(where, "lower(s.name) = lower("+arg(f.StatusName)+")")
	}
	if f.From != nil {
		where = append(where, "h.changed_at >= "+arg(*f.From))
	}
	if f.To != nil {
		where = append(where, "h.changed_at <= "+arg(*f.To))
	}
	if f.FreeText != "" {
		p := arg("%" + escapeLike(f.FreeText) + "%")
		ors := make([]string, len(searchable))
		for i, col := range searchable {
			ors[i] = fmt.Sprintf(`COALESCE(%s, '') ILIKE %s ESCAPE '\'`, col, p)
		}
		where = append(where, "("+strings.Join(ors, " OR ")+")")
	}

	var b strings.Builder
	b.WriteString(selectRecords)
	if len(where) > 0 {
		b.WriteString("WHERE ")
		b.WriteString(strings.Join(where, "\n  AND "))
		b.WriteString("\n")
	}
	b.WriteString("ORDER BY h.changed_at DESC, h.id DESC")
	if f.Limit > 0 {
		b.WriteString("\nLIMIT " + arg(f.Limit))
	}
	if f.Offset > 0 {
		b.WriteString("\nOFFSET " + arg(f.Offset))
	}
	return b.String(), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
