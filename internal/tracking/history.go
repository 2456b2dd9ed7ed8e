package tracking

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"iter"
	"strings"
	"time"

	"github.com/google/uuid"
)

// HistoryColumns is the column set of the history table, shared by the JSON
// listing and the CSV export.
var HistoryColumns = []string{
	"changedAt",
	"roomNumber",
	"categoryName",
	"statusName",
	"previousStatusId",
	"changedBy",
	"guestName",
	"notes",
}

// HistoryFilter narrows a history query. Zero-valued fields do not filter;
// all set fields must match.
type HistoryFilter struct {
	RoomID     string
	StatusName string
	From       *time.Time
	To         *time.Time
	FreeText   string

	// Limit and Offset page the result; Limit 0 means no limit.
	Limit  int
	Offset int
}

func (f HistoryFilter) normalize() (HistoryFilter, error) {
	f.RoomID = strings.TrimSpace(f.RoomID)
	f.StatusName = strings.TrimSpace(f.StatusName)
	f.FreeText = strings.TrimSpace(f.FreeText)

	if f.RoomID != "" {
		if _, err := uuid.Parse(f.RoomID); err != nil {
			return f, ValidationError{Field: "roomId", Message: "must be a valid id"}
		}
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return f, ValidationError{Field: "from", Message: "must not be after to"}
	}
	if f.Limit < 0 {
		return f, ValidationError{Field: "limit", Message: "must not be negative"}
	}
	if f.Offset < 0 {
		return f, ValidationError{Field: "offset", Message: "must not be negative"}
	}
	return f, nil
}

// Match reports whether r satisfies every set field of f. Stores that
// cannot push filtering down use it directly; SQL stores mirror it.
func (f HistoryFilter) Match(r Record) bool {
	if f.RoomID != "" && r.RoomID != f.RoomID {
		return false
	}
	if f.StatusName != "" && !strings.EqualFold(r.StatusName, f.StatusName) {
		return false
	}
	if f.From != nil && r.ChangedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && r.ChangedAt.After(*f.To) {
		return false
	}
	if f.FreeText != "" {
		needle := strings.ToLower(f.FreeText)
		for _, hay := range []string{r.RoomNumber, r.CategoryName, r.StatusName, r.Notes, r.ChangedBy, r.GuestName} {
			if strings.Contains(strings.ToLower(hay), needle) {
				return true
			}
		}
		return false
	}
	return true
}

// Columns renders r in HistoryColumns order. Timestamps keep full precision
// so they read the same as the JSON encoding of Record.
func (r Record) Columns() []string {
	prev := ""
	if r.PreviousStatusID != nil {
		prev = *r.PreviousStatusID
	}
	return []string{
		r.ChangedAt.UTC().Format(time.RFC3339Nano),
		r.RoomNumber,
		r.CategoryName,
		r.StatusName,
		prev,
		r.ChangedBy,
		r.GuestName,
		r.Notes,
	}
}

// QueryHistory returns the matching ledger records, newest first. The
// sequence is lazy and may be ranged over more than once.
func (s *Service) QueryHistory(ctx context.Context, f HistoryFilter) (iter.Seq2[Record, error], error) {
	f, err := f.normalize()
	if err != nil {
		return nil, err
	}
	return s.store.History(ctx, f), nil
}

// CollectHistory drains QueryHistory into a slice.
func (s *Service) CollectHistory(ctx context.Context, f HistoryFilter) ([]Record, error) {
	seq, err := s.QueryHistory(ctx, f)
	if err != nil {
		return nil, err
	}
	out := []Record{}
	for rec, err := range seq {
		if err != nil {
			return nil, fmt.Errorf("query history: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// ExportHistory writes the filtered ledger as CSV. Paging is ignored so the
// export covers everything the filter matches. It returns the number of rows
// written, header excluded. Nothing reaches w until the first record has been
// read, so a query that fails up front leaves w untouched.
func (s *Service) ExportHistory(ctx context.Context, w io.Writer, f HistoryFilter) (int, error) {
	f.Limit, f.Offset = 0, 0
	seq, err := s.QueryHistory(ctx, f)
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	header := func() error { return cw.Write(HistoryColumns) }
	n := 0
	for rec, err := range seq {
		if err != nil {
			return n, fmt.Errorf("export history: %w", err)
		}
		if n == 0 {
			if err := header(); err != nil {
				return 0, fmt.Errorf("export history: %w", err)
			}
		}
		if err := cw.Write(rec.Columns()); err != nil {
			return n, fmt.Errorf("export history: %w", err)
		}
		n++
	}
	if n == 0 {
		if err := header(); err != nil {
			return 0, fmt.Errorf("export history: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return n, fmt.Errorf("export history: %w", err)
	}
	return n, nil
}
