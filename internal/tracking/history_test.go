package tracking_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomstatus/internal/tracking"
	"roomstatus/internal/tracking/trackingtest"
)

type ledgerFixture struct {
	svc       *tracking.Service
	store     *trackingtest.Store
	room101   string
	room102   string
	booked    *tracking.Status
	dirty     *tracking.Status
	available *tracking.Status
	entries   []*tracking.Entry
}

// newLedgerFixture records five transitions one minute apart, starting at
// testEpoch+3m (three catalog writes consume the first clock readings).
func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	svc, store := newTestService(t)
	f := &ledgerFixture{svc: svc, store: store}
	f.available = mustCreateStatus(t, svc, "Available", true)
	f.booked = mustCreateStatus(t, svc, "Booked", false)
	f.dirty = mustCreateStatus(t, svc, "Dirty", false)
	f.room101 = store.AddRoom("101", "Deluxe King")
	f.room102 = store.AddRoom("102", "Standard Twin")
	guest := store.AddBooking("Grace", "Hopper")

	for _, in := range []tracking.TransitionInput{
		{RoomID: f.room101, StatusID: f.available.ID},
		{RoomID: f.room101, StatusID: f.booked.ID, BookingID: guest, Notes: "Guest arrived", ChangedBy: "frontdesk"},
		{RoomID: f.room102, StatusID: f.dirty.ID, Notes: "Spill, needs deep clean", ChangedBy: "housekeeping"},
		{RoomID: f.room101, StatusID: f.dirty.ID, Notes: "checked out, late", ChangedBy: "frontdesk"},
		{RoomID: f.room102, StatusID: f.available.ID, ChangedBy: "housekeeping"},
	} {
		f.entries = append(f.entries, mustTransition(t, svc, in))
	}
	return f
}

func ids(recs []tracking.Record) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ID)
	}
	return out
}

func TestQueryHistory_NoFilterNewestFirst(t *testing.T) {
	f := newLedgerFixture(t)

	recs, err := f.svc.CollectHistory(context.Background(), tracking.HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, recs, 5)
	for i := 1; i < len(recs); i++ {
		assert.True(t, recs[i-1].ChangedAt.After(recs[i].ChangedAt))
	}
	assert.Equal(t, f.entries[4].ID, recs[0].ID)
}

func TestQueryHistory_RoomAndDateRange(t *testing.T) {
	f := newLedgerFixture(t)
	from := f.entries[1].ChangedAt
	to := f.entries[3].ChangedAt

	recs, err := f.svc.CollectHistory(context.Background(), tracking.HistoryFilter{RoomID: f.room101, From: &from, To: &to})
	require.NoError(t, err)

	assert.Equal(t, []string{f.entries[3].ID, f.entries[1].ID}, ids(recs))
	for _, r := range recs {
		assert.Equal(t, "101", r.RoomNumber)
		assert.False(t, r.ChangedAt.Before(from))
		assert.False(t, r.ChangedAt.After(to))
	}
}

func TestQueryHistory_StatusNameCaseInsensitive(t *testing.T) {
	f := newLedgerFixture(t)

	recs, err := f.svc.CollectHistory(context.Background(), tracking.HistoryFilter{StatusName: "dIRTY"})
	require.NoError(t, err)
	assert.Equal(t, []string{f.entries[3].ID, f.entries[2].ID}, ids(recs))
}

func TestQueryHistory_FreeText(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	tests := []struct {
		text string
		want []string
	}{
		{"hopper", []string{f.entries[1].ID}},
		{"DEEP CLEAN", []string{f.entries[2].ID}},
		{"twin", []string{f.entries[4].ID, f.entries[2].ID}},
		{"frontdesk", []string{f.entries[3].ID, f.entries[1].ID}},
		{"availab", []string{f.entries[4].ID, f.entries[0].ID}},
		{"nobody", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			recs, err := f.svc.CollectHistory(ctx, tracking.HistoryFilter{FreeText: tt.text})
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(recs))
		})
	}
}

func TestQueryHistory_GuestNameJoined(t *testing.T) {
	f := newLedgerFixture(t)

	recs, err := f.svc.CollectHistory(context.Background(), tracking.HistoryFilter{RoomID: f.room101, StatusName: "Booked"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Grace Hopper", recs[0].GuestName)
	assert.Equal(t, "Deluxe King", recs[0].CategoryName)
}

// Dropping any filter from a conjunction never loses a result.
func TestQueryHistory_RelaxationIsMonotonic(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	from := f.entries[0].ChangedAt
	to := f.entries[3].ChangedAt

	strict := tracking.HistoryFilter{RoomID: f.room101, StatusName: "dirty", From: &from, To: &to, FreeText: "late"}
	strictRecs, err := f.svc.CollectHistory(ctx, strict)
	require.NoError(t, err)
	require.Len(t, strictRecs, 1)

	relaxations := []func(tracking.HistoryFilter) tracking.HistoryFilter{
		func(h tracking.HistoryFilter) tracking.HistoryFilter { h.RoomID = ""; return h },
		func(h tracking.HistoryFilter) tracking.HistoryFilter { h.StatusName = ""; return h },
		func(h tracking.HistoryFilter) tracking.HistoryFilter { h.From = nil; return h },
		func(h tracking.HistoryFilter) tracking.HistoryFilter { h.To = nil; return h },
		func(h tracking.HistoryFilter) tracking.HistoryFilter { h.FreeText = ""; return h },
	}
	for _, relax := range relaxations {
		looser, err := f.svc.CollectHistory(ctx, relax(strict))
		require.NoError(t, err)
		assert.Subset(t, ids(looser), ids(strictRecs))
		for _, r := range looser {
			assert.True(t, relax(strict).Match(r))
		}
	}
}

func TestQueryHistory_Restartable(t *testing.T) {
	f := newLedgerFixture(t)

	seq, err := f.svc.QueryHistory(context.Background(), tracking.HistoryFilter{RoomID: f.room102})
	require.NoError(t, err)

	var first, second []string
	for rec, err := range seq {
		require.NoError(t, err)
		first = append(first, rec.ID)
	}
	for rec, err := range seq {
		require.NoError(t, err)
		second = append(second, rec.ID)
	}
	assert.Equal(t, first, second)
	assert.Len(t, first, 2)

	// Entries appended between runs show up on the next run.
	mustTransition(t, f.svc, tracking.TransitionInput{RoomID: f.room102, StatusID: f.dirty.ID})
	count := 0
	for _, err := range seq {
		require.NoError(t, err)
		count++
	}
	assert.Equal(t, 3, count)
}

func TestQueryHistory_Paging(t *testing.T) {
	f := newLedgerFixture(t)

	recs, err := f.svc.CollectHistory(context.Background(), tracking.HistoryFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{f.entries[3].ID, f.entries[2].ID}, ids(recs))
}

func TestQueryHistory_InvalidFilter(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	later := testEpoch.Add(time.Hour)

	for name, f := range map[string]tracking.HistoryFilter{
		"bad room id":     {RoomID: "101"},
		"inverted range":  {From: &later, To: &testEpoch},
		"negative limit":  {Limit: -1},
		"negative offset": {Offset: -5},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.QueryHistory(ctx, f)
			var ve tracking.ValidationError
			require.ErrorAs(t, err, &ve)
		})
	}
}

func TestExportHistory_MatchesDisplayRows(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	filter := tracking.HistoryFilter{RoomID: f.room101, Limit: 1}

	var buf bytes.Buffer
	n, err := f.svc.ExportHistory(ctx, &buf, filter)
	require.NoError(t, err)
	assert.Equal(t, 3, n, "export ignores paging")

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, tracking.HistoryColumns, rows[0])

	filter.Limit = 0
	recs, err := f.svc.CollectHistory(ctx, filter)
	require.NoError(t, err)
	for i, rec := range recs {
		assert.Equal(t, rec.Columns(), rows[i+1])
	}

	newest := rows[1]
	assert.Equal(t, f.entries[3].ChangedAt.Format(time.RFC3339Nano), newest[0])
	assert.Equal(t, "Dirty", newest[3])
	assert.Equal(t, f.booked.ID, newest[4])
	assert.Equal(t, "checked out, late", newest[7])

	oldest := rows[3]
	assert.Equal(t, "", oldest[4])
	assert.Equal(t, tracking.SystemActor, oldest[5])
}

func TestRecordJSON_CarriesEveryHistoryColumn(t *testing.T) {
	f := newLedgerFixture(t)
	recs, err := f.svc.CollectHistory(context.Background(), tracking.HistoryFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, recs, 1)

	b, err := json.Marshal(recs[0])
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(b, &fields))

	for _, col := range tracking.HistoryColumns {
		assert.Contains(t, fields, col)
	}
}

func TestRecordColumns_MatchJSONValues(t *testing.T) {
	at := time.Date(2026, 10, 1, 8, 0, 0, 123456000, time.UTC)
	svc, store := newTestService(t, tracking.WithClock(func() time.Time { return at }))
	ctx := context.Background()
	booked := mustCreateStatus(t, svc, "Booked", false)
	dirty := mustCreateStatus(t, svc, "Dirty", false)
	roomID := store.AddRoom("101", "Deluxe King")
	guest := store.AddBooking("Grace", "Hopper")
	mustTransition(t, svc, tracking.TransitionInput{RoomID: roomID, StatusID: booked.ID, BookingID: guest})
	mustTransition(t, svc, tracking.TransitionInput{RoomID: roomID, StatusID: dirty.ID, Notes: "late checkout", ChangedBy: "frontdesk"})

	recs, err := svc.CollectHistory(ctx, tracking.HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, recs, 2)

	var buf bytes.Buffer
	_, err = svc.ExportHistory(ctx, &buf, tracking.HistoryFilter{})
	require.NoError(t, err)
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	for i, rec := range recs {
		b, err := json.Marshal(rec)
		require.NoError(t, err)
		var fields map[string]any
		require.NoError(t, json.Unmarshal(b, &fields))

		for j, col := range tracking.HistoryColumns {
			want, _ := fields[col].(string) // null renders as an empty cell
			assert.Equal(t, want, rows[i+1][j], "column %s", col)
		}
	}
	assert.Equal(t, "2026-10-01T08:00:00.123456Z", rows[1][0])
}
