// Package trackingtest provides an in-memory tracking.Store for tests.
package trackingtest

import (
	"context"
	"iter"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"roomstatus/internal/tracking"
)

type memState struct {
	statuses map[string]tracking.Status
	rooms    map[string]tracking.Room
	entries  []tracking.Entry
}

func (s memState) clone() memState {
	out := memState{
		statuses: make(map[string]tracking.Status, len(s.statuses)),
		rooms:    make(map[string]tracking.Room, len(s.rooms)),
		entries:  append([]tracking.Entry(nil), s.entries...),
	}
	for k, v := range s.statuses {
		out.statuses[k] = v
	}
	for k, v := range s.rooms {
		out.rooms[k] = v
	}
	return out
}

// Store is an in-memory tracking.Store. WithTx works on a copy of the state
// and swaps it in only when fn and the simulated commit both succeed.
type Store struct {
	mu     sync.Mutex
	state  memState
	guests map[string]string

	failAppend  error
	failCommit  error
	failHistory error
}

func NewStore() *Store {
	return &Store{
		state:  memState{statuses: map[string]tracking.Status{}, rooms: map[string]tracking.Room{}},
		guests: map[string]string{},
	}
}

// AddRoom registers a room in the given category and returns its id.
func (m *Store) AddRoom(number, category string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	m.state.rooms[id] = tracking.Room{ID: id, Number: number, CategoryName: category, Price: decimal.RequireFromString("120.00")}
	return id
}

// AddBooking registers a booking for the guest and returns its id.
func (m *Store) AddBooking(first, last string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	m.guests[id] = strings.TrimSpace(first + " " + last)
	return id
}

func (m *Store) Room(id string) tracking.Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.rooms[id]
}

func (m *Store) Status(id string) (tracking.Status, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.state.statuses[id]
	return s, ok
}

// Entries returns the committed ledger in append order.
func (m *Store) Entries() []tracking.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]tracking.Entry(nil), m.state.entries...)
}

// FailAppend makes every AppendEntry return err until reset with nil.
func (m *Store) FailAppend(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAppend = err
}

// FailCommit makes WithTx discard the transaction and return err.
func (m *Store) FailCommit(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failCommit = err
}

// FailHistory makes History yield err as its first element.
func (m *Store) FailHistory(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failHistory = err
}

func (m *Store) ListStatuses(_ context.Context, activeOnly bool) ([]tracking.Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []tracking.Status{}
	for _, s := range m.state.statuses {
		if activeOnly && !s.IsActive {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Store) ListRooms(_ context.Context) ([]tracking.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []tracking.Room{}
	for _, r := range m.state.rooms {
		if r.CurrentStatusID != nil {
			st := m.state.statuses[*r.CurrentStatusID]
			r.StatusName, r.StatusColor = st.Name, st.Color
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (m *Store) History(_ context.Context, f tracking.HistoryFilter) iter.Seq2[tracking.Record, error] {
	return func(yield func(tracking.Record, error) bool) {
		m.mu.Lock()
		if err := m.failHistory; err != nil {
			m.mu.Unlock()
			yield(tracking.Record{}, err)
			return
		}
		var recs []tracking.Record
		for _, e := range m.state.entries {
			r := m.state.rooms[e.RoomID]
			rec := tracking.Record{Entry: e, RoomNumber: r.Number, CategoryName: r.CategoryName}
			if st, ok := m.state.statuses[e.StatusID]; ok {
				rec.StatusName, rec.StatusColor = st.Name, st.Color
			}
			if e.BookingID != nil {
				rec.GuestName = m.guests[*e.BookingID]
			}
			if f.Match(rec) {
				recs = append(recs, rec)
			}
		}
		m.mu.Unlock()

		sort.SliceStable(recs, func(i, j int) bool {
			if !recs[i].ChangedAt.Equal(recs[j].ChangedAt) {
				return recs[i].ChangedAt.After(recs[j].ChangedAt)
			}
			return recs[i].ID > recs[j].ID
		})
		if f.Offset > 0 {
			if f.Offset >= len(recs) {
				recs = nil
			} else {
				recs = recs[f.Offset:]
			}
		}
		if f.Limit > 0 && len(recs) > f.Limit {
			recs = recs[:f.Limit]
		}
		for _, rec := range recs {
			if !yield(rec, nil) {
				return
			}
		}
	}
}

func (m *Store) WithTx(_ context.Context, fn func(tx tracking.Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memTx{store: m, state: m.state.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	if m.failCommit != nil {
		return m.failCommit
	}
	m.state = tx.state
	return nil
}

var _ tracking.Store = (*Store)(nil)

type memTx struct {
	store *Store
	state memState
}

func (t *memTx) LockStatus(ctx context.Context, id string) (*tracking.Status, error) {
	return t.GetStatus(ctx, id)
}

func (t *memTx) GetStatus(_ context.Context, id string) (*tracking.Status, error) {
	s, ok := t.state.statuses[id]
	if !ok {
		return nil, tracking.ErrRecordNotFound
	}
	return &s, nil
}

func (t *memTx) DefaultStatus(_ context.Context) (*tracking.Status, error) {
	for _, s := range t.state.statuses {
		if s.IsDefault {
			return &s, nil
		}
	}
	return nil, tracking.ErrRecordNotFound
}

// checkConstraints mirrors the unique indexes of the SQL schema.
func (t *memTx) checkConstraints(s tracking.Status) error {
	for _, o := range t.state.statuses {
		if o.ID == s.ID {
			continue
		}
		if strings.EqualFold(o.Name, s.Name) {
			return tracking.ValidationError{Field: "name", Message: "a status with this name already exists"}
		}
		if o.IsDefault && s.IsDefault {
			return tracking.ValidationError{Field: "isDefault", Message: "another status became the default concurrently"}
		}
	}
	return nil
}

func (t *memTx) InsertStatus(_ context.Context, s tracking.Status) error {
	if err := t.checkConstraints(s); err != nil {
		return err
	}
	t.state.statuses[s.ID] = s
	return nil
}

func (t *memTx) SaveStatus(_ context.Context, s tracking.Status) error {
	if _, ok := t.state.statuses[s.ID]; !ok {
		return tracking.ErrRecordNotFound
	}
	if err := t.checkConstraints(s); err != nil {
		return err
	}
	t.state.statuses[s.ID] = s
	return nil
}

func (t *memTx) ClearDefaults(_ context.Context, exceptID string) error {
	for id, s := range t.state.statuses {
		if id != exceptID && s.IsDefault {
			s.IsDefault = false
			t.state.statuses[id] = s
		}
	}
	return nil
}

func (t *memTx) DeleteStatus(_ context.Context, id string) error {
	for _, r := range t.state.rooms {
		if r.CurrentStatusID != nil && *r.CurrentStatusID == id {
			return tracking.InUseError{StatusID: id}
		}
	}
	delete(t.state.statuses, id)
	return nil
}

func (t *memTx) CountRoomsWithStatus(_ context.Context, statusID string) (int, error) {
	n := 0
	for _, r := range t.state.rooms {
		if r.CurrentStatusID != nil && *r.CurrentStatusID == statusID {
			n++
		}
	}
	return n, nil
}

func (t *memTx) RoomForUpdate(_ context.Context, id string) (*tracking.Room, error) {
	r, ok := t.state.rooms[id]
	if !ok {
		return nil, tracking.ErrRecordNotFound
	}
	return &r, nil
}

func (t *memTx) SetRoomStatus(_ context.Context, roomID, statusID string, at time.Time) error {
	r, ok := t.state.rooms[roomID]
	if !ok {
		return tracking.ErrRecordNotFound
	}
	id := statusID
	r.CurrentStatusID = &id
	r.UpdatedAt = at
	t.state.rooms[roomID] = r
	return nil
}

func (t *memTx) AppendEntry(_ context.Context, e tracking.Entry) error {
	if t.store.failAppend != nil {
		return t.store.failAppend
	}
	t.state.entries = append(t.state.entries, e)
	return nil
}
