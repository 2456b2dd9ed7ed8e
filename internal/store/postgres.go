// Package store adapts the Postgres repositories to the tracking ports.
package store

import (
	"context"
	"iter"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"roomstatus/internal/history"
	"roomstatus/internal/room"
	"roomstatus/internal/status"
	"roomstatus/internal/tracking"
	"roomstatus/pkg/db"
)

type Postgres struct {
	pool     *pgxpool.Pool
	statuses *status.Repository
	rooms    *room.Repository
	history  *history.Repository
}

var _ tracking.Store = (*Postgres)(nil)

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{
		pool:     pool,
		statuses: status.NewRepository(pool),
		rooms:    room.NewRepository(pool),
		history:  history.NewRepository(pool),
	}
}

func (p *Postgres) ListStatuses(ctx context.Context, activeOnly bool) ([]tracking.Status, error) {
	return p.statuses.List(ctx, activeOnly)
}

func (p *Postgres) ListRooms(ctx context.Context) ([]tracking.Room, error) {
	return p.rooms.List(ctx)
}

func (p *Postgres) History(ctx context.Context, f tracking.HistoryFilter) iter.Seq2[tracking.Record, error] {
	return p.history.Query(ctx, f)
}

func (p *Postgres) WithTx(ctx context.Context, fn func(tx tracking.Tx) error) error {
	return db.WithTx(ctx, p.pool, func(tx pgx.Tx) error {
		return fn(pgTx{tx: tx})
	})
}

type pgTx struct {
	tx pgx.Tx
}

func (t pgTx) LockStatus(ctx context.Context, id string) (*tracking.Status, error) {
	return status.GetForUpdate(ctx, t.tx, id)
}

func (t pgTx) GetStatus(ctx context.Context, id string) (*tracking.Status, error) {
	return status.GetForKeyShare(ctx, t.tx, id)
}

func (t pgTx) DefaultStatus(ctx context.Context) (*tracking.Status, error) {
	return status.GetDefault(ctx, t.tx)
}

func (t pgTx) InsertStatus(ctx context.Context, s tracking.Status) error {
	return status.Insert(ctx, t.tx, s)
}

func (t pgTx) SaveStatus(ctx context.Context, s tracking.Status) error {
	return status.Update(ctx, t.tx, s)
}

func (t pgTx) ClearDefaults(ctx context.Context, exceptID string) error {
	return status.ClearDefaults(ctx, t.tx, exceptID)
}

func (t pgTx) DeleteStatus(ctx context.Context, id string) error {
	return status.Delete(ctx, t.tx, id)
}

func (t pgTx) CountRoomsWithStatus(ctx context.Context, statusID string) (int, error) {
	return status.CountRooms(ctx, t.tx, statusID)
}

func (t pgTx) RoomForUpdate(ctx context.Context, id string) (*tracking.Room, error) {
	return room.GetForUpdate(ctx, t.tx, id)
}

func (t pgTx) SetRoomStatus(ctx context.Context, roomID, statusID string, at time.Time) error {
	return room.SetCurrentStatus(ctx, t.tx, roomID, statusID, at)
}

func (t pgTx) AppendEntry(ctx context.Context, e tracking.Entry) error {
	return history.Append(ctx, t.tx, e)
}
