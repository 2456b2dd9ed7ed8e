package tracking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

// Transition sets a room's current status and appends the matching ledger
// entry in one transaction. The entry's PreviousStatusID is the value read
// from the locked room row, so concurrent catalog edits cannot change it.
//
// Each successful call appends exactly one entry, including resubmissions of
// the same input.
func (s *Service) Transition(ctx context.Context, in TransitionInput) (*Entry, error) {
	roomID := strings.TrimSpace(in.RoomID)
	statusID := strings.TrimSpace(in.StatusID)
	if roomID == "" {
		return nil, ValidationError{Field: "roomId", Message: "room id is required"}
	}
	if statusID == "" {
		return nil, ValidationError{Field: "statusId", Message: "status id is required"}
	}
	if _, err := uuid.Parse(roomID); err != nil {
		return nil, NotFoundError{Kind: "room", ID: roomID}
	}
	if _, err := uuid.Parse(statusID); err != nil {
		return nil, NotFoundError{Kind: "status", ID: statusID}
	}
	bookingID, err := optionalID("bookingId", in.BookingID)
	if err != nil {
		return nil, err
	}

	var (
		entry Entry
		room  Room
		next  Status
	)
	err = s.store.WithTx(ctx, func(tx Tx) error {
		r, err := tx.RoomForUpdate(ctx, roomID)
		if errors.Is(err, ErrRecordNotFound) {
			return NotFoundError{Kind: "room", ID: roomID}
		}
		if err != nil {
			return err
		}

		st, err := tx.GetStatus(ctx, statusID)
		if errors.Is(err, ErrRecordNotFound) {
			return NotFoundError{Kind: "status", ID: statusID}
		}
		if err != nil {
			return err
		}

		entry, err = s.apply(ctx, tx, r, st, in.Notes, in.ChangedBy, bookingID)
		room, next = *r, *st
		return err
	})
	if err != nil {
		return nil, transactionError("transition", err)
	}

	s.committed(ctx, entry, room, next)
	return &entry, nil
}

// AssignDefault moves a room that has never had a status to the catalog
// default. A room that already has a status is left alone and (nil, nil) is
// returned.
func (s *Service) AssignDefault(ctx context.Context, roomID, changedBy string) (*Entry, error) {
	roomID = strings.TrimSpace(roomID)
	if _, err := uuid.Parse(roomID); err != nil {
		return nil, NotFoundError{Kind: "room", ID: roomID}
	}

	var (
		entry    Entry
		room     Room
		next     Status
		assigned bool
	)
	err := s.store.WithTx(ctx, func(tx Tx) error {
		r, err := tx.RoomForUpdate(ctx, roomID)
		if errors.Is(err, ErrRecordNotFound) {
			return NotFoundError{Kind: "room", ID: roomID}
		}
		if err != nil {
			return err
		}
		if r.CurrentStatusID != nil {
			return nil
		}

		st, err := tx.DefaultStatus(ctx)
		if errors.Is(err, ErrRecordNotFound) {
			return NotFoundError{Kind: "default status"}
		}
		if err != nil {
			return err
		}

		entry, err = s.apply(ctx, tx, r, st, "initial status", changedBy, nil)
		if err != nil {
			return err
		}
		room, next, assigned = *r, *st, true
		return nil
	})
	if err != nil {
		return nil, transactionError("assign default status", err)
	}
	if !assigned {
		return nil, nil
	}

	s.committed(ctx, entry, room, next)
	return &entry, nil
}

// apply writes the new current status and its ledger entry for a room that
// is already locked by tx.
func (s *Service) apply(ctx context.Context, tx Tx, r *Room, st *Status, notes, changedBy string, bookingID *string) (Entry, error) {
	if !st.IsActive {
		return Entry{}, ValidationError{Field: "statusId", Message: fmt.Sprintf("status %q is inactive", st.Name)}
	}

	actor := strings.TrimSpace(changedBy)
	if actor == "" {
		actor = SystemActor
	}

	var prev *string
	if r.CurrentStatusID != nil {
		v := *r.CurrentStatusID
		prev = &v
	}

	now := s.now()
	if err := tx.SetRoomStatus(ctx, r.ID, st.ID, now); err != nil {
		return Entry{}, err
	}

	e := Entry{
		ID:               uuid.Must(uuid.NewV7()).String(),
		RoomID:           r.ID,
		StatusID:         st.ID,
		PreviousStatusID: prev,
		Notes:            strings.TrimSpace(notes),
		ChangedBy:        actor,
		BookingID:        bookingID,
		ChangedAt:        now,
	}
	if err := tx.AppendEntry(ctx, e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

func (s *Service) committed(ctx context.Context, e Entry, r Room, st Status) {
	attrs := []any{
		slog.String("entry_id", e.ID),
		slog.String("room_id", e.RoomID),
		slog.String("room_number", r.Number),
		slog.String("status", st.Name),
		slog.String("changed_by", e.ChangedBy),
	}
	if e.PreviousStatusID != nil {
		attrs = append(attrs, slog.String("previous_status_id", *e.PreviousStatusID))
	}
	s.log.InfoContext(ctx, "room status changed", attrs...)

	if s.notifier == nil {
		return
	}
	change := StatusChange{
		EntryID:          e.ID,
		RoomID:           e.RoomID,
		RoomNumber:       r.Number,
		StatusID:         e.StatusID,
		StatusName:       st.Name,
		PreviousStatusID: e.PreviousStatusID,
		ChangedBy:        e.ChangedBy,
		BookingID:        e.BookingID,
		ChangedAt:        e.ChangedAt,
	}
	// The transition is already committed; a failed publish is only logged.
	if err := s.notifier.StatusChanged(ctx, change); err != nil {
		s.log.ErrorContext(ctx, "publish status change",
			slog.String("entry_id", e.ID),
			slog.Any("error", err),
		)
	}
}

func optionalID(field, v string) (*string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	if _, err := uuid.Parse(v); err != nil {
		return nil, ValidationError{Field: field, Message: "must be a valid id"}
	}
	return &v, nil
}

func transactionError(op string, err error) error {
	if isDomainError(err) {
		return err
	}
	return TransactionError{Op: op, Err: err}
}
