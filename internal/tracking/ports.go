package tracking

import (
	"context"
	"iter"
	"time"
)

// Store is the persistence boundary of the tracking core.
type Store interface {
	// ListStatuses returns statuses ordered by name ascending.
	ListStatuses(ctx context.Context, activeOnly bool) ([]Status, error)
	ListRooms(ctx context.Context) ([]Room, error)
	// History streams matching ledger records newest first. Each range over
	// the returned sequence runs the query again.
	History(ctx context.Context, f HistoryFilter) iter.Seq2[Record, error]
	// WithTx runs fn atomically: every write made through tx commits, or none does.
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the write side, valid only inside Store.WithTx.
// Lookups return ErrRecordNotFound for missing rows.
type Tx interface {
	// LockStatus reads a status and holds it against concurrent catalog writes.
	LockStatus(ctx context.Context, id string) (*Status, error)
	// GetStatus reads a status, holding it only against deletion.
	GetStatus(ctx context.Context, id string) (*Status, error)
	DefaultStatus(ctx context.Context) (*Status, error)
	InsertStatus(ctx context.Context, s Status) error
	SaveStatus(ctx context.Context, s Status) error
	// ClearDefaults unsets IsDefault on every status except exceptID.
	ClearDefaults(ctx context.Context, exceptID string) error
	DeleteStatus(ctx context.Context, id string) error
	CountRoomsWithStatus(ctx context.Context, statusID string) (int, error)

	// RoomForUpdate reads a room and locks it until the transaction ends.
	RoomForUpdate(ctx context.Context, id string) (*Room, error)
	SetRoomStatus(ctx context.Context, roomID, statusID string, at time.Time) error
	AppendEntry(ctx context.Context, e Entry) error
}

// CatalogCache holds the active catalog listing. Implementations handle
// their own failures; a miss simply falls through to the Store.
type CatalogCache interface {
	Get(ctx context.Context) ([]Status, bool)
	Set(ctx context.Context, statuses []Status)
	Invalidate(ctx context.Context)
}

// Notifier publishes committed transitions to other systems.
type Notifier interface {
	StatusChanged(ctx context.Context, c StatusChange) error
}
