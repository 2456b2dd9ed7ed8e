package history

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"roomstatus/internal/tracking"
)

func TestBuildQuery_NoFilter(t *testing.T) {
	q, args := buildQuery(tracking.HistoryFilter{})

	assert.Empty(t, args)
	assert.NotContains(t, q, "WHERE")
	assert.NotContains(t, q, "LIMIT")
	assert.True(t, strings.HasSuffix(q, "ORDER BY h.changed_at DESC, h.id DESC"))
}

func TestBuildQuery_AllFilters(t *testing.T) {
	from := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	q, args := buildQuery(tracking.HistoryFilter{
		RoomID:     "7d0c1d4e-8d52-4e2b-9f7e-1b5a3f0c2a11",
		StatusName: "Dirty",
		From:       &from,
		To:         &to,
		FreeText:   "50%_off",
		Limit:      25,
		Offset:     50,
	})

	assert.Contains(t, q, "h.room_id = $1")
	assert.Contains(t, q, "lower(s.name) = lower($2)")
	assert.Contains(t, q, "h.changed_at >= $3")
	assert.Contains(t, q, "h.changed_at <= $4")
	assert.Contains(t, q, `COALESCE(h.notes, '') ILIKE $5 ESCAPE '\'`)
	assert.Contains(t, q, "LIMIT $6")
	assert.Contains(t, q, "OFFSET $7")
	assert.Equal(t, 1, strings.Count(q, "WHERE"))
	assert.Equal(t, []any{
		"7d0c1d4e-8d52-4e2b-9f7e-1b5a3f0c2a11", "Dirty", from, to, `%50\%\_off%`, 25, 50,
	}, args)
}

func TestBuildQuery_FreeTextSearchesEveryColumn(t *testing.T) {
	q, args := buildQuery(tracking.HistoryFilter{FreeText: "hopper"})

	for _, col := range searchable {
		assert.Contains(t, q, col)
	}
	assert.Equal(t, len(searchable), strings.Count(q, "ILIKE $1"))
	assert.Equal(t, []any{"%hopper%"}, args)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `a\\b`, escapeLike(`a\b`))
	assert.Equal(t, `100\%`, escapeLike(`100%`))
	assert.Equal(t, `room\_1`, escapeLike(`room_1`))
	assert.Equal(t, "plain", escapeLike("plain"))
}
