package tracking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	store    Store
	cache    CatalogCache
	notifier Notifier
	log      *slog.Logger
	now      func() time.Time

	// catalogGen counts catalog writes so a listing read before a write is
	// never cached after it.
	catalogGen atomic.Uint64
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

func WithCatalogCache(c CatalogCache) Option {
	return func(s *Service) { s.cache = c }
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		log:   slog.Default(),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListActiveStatuses returns the statuses available for new assignment,
// ordered by name.
func (s *Service) ListActiveStatuses(ctx context.Context) ([]Status, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx); ok {
			return cached, nil
		}
	}
	gen := s.catalogGen.Load()
	out, err := s.store.ListStatuses(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list active statuses: %w", err)
	}
	if s.cache != nil && s.catalogGen.Load() == gen {
		s.cache.Set(ctx, out)
		// A write that landed between the check and Set would be masked.
		if s.catalogGen.Load() != gen {
			s.cache.Invalidate(ctx)
		}
	}
	return out, nil
}

// ListStatuses returns the whole catalog, inactive entries included.
func (s *Service) ListStatuses(ctx context.Context) ([]Status, error) {
	out, err := s.store.ListStatuses(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list statuses: %w", err)
	}
	return out, nil
}

func (s *Service) CreateStatus(ctx context.Context, in StatusInput) (*Status, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ValidationError{Field: "name", Message: "name is required"}
	}

	now := s.now()
	st := Status{
		ID:          uuid.NewString(),
		Name:        name,
		Color:       strings.TrimSpace(in.Color),
		Description: strings.TrimSpace(in.Description),
		IsDefault:   in.IsDefault,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.store.WithTx(ctx, func(tx Tx) error {
		if st.IsDefault {
			if err := tx.ClearDefaults(ctx, ""); err != nil {
				return err
			}
		}
		return tx.InsertStatus(ctx, st)
	})
	if err != nil {
		return nil, writeError("create status", err)
	}

	s.invalidateCatalog(ctx)
	s.log.InfoContext(ctx, "room status created",
		slog.String("status_id", st.ID),
		slog.String("name", st.Name),
		slog.Bool("is_default", st.IsDefault),
	)
	return &st, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id string, patch StatusPatch) (*Status, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, NotFoundError{Kind: "status", ID: id}
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, ValidationError{Field: "name", Message: "name must not be empty"}
		}
		patch.Name = &name
	}

	var out Status
	err := s.store.WithTx(ctx, func(tx Tx) error {
		cur, err := tx.LockStatus(ctx, id)
		if errors.Is(err, ErrRecordNotFound) {
			return NotFoundError{Kind: "status", ID: id}
		}
		if err != nil {
			return err
		}

		next := patch.apply(*cur)
		next.UpdatedAt = s.now()

		if patch.IsDefault != nil && *patch.IsDefault {
			if err := tx.ClearDefaults(ctx, id); err != nil {
				return err
			}
		}
		if err := tx.SaveStatus(ctx, next); err != nil {
			return err
		}
		out = next
		return nil
	})
	if err != nil {
		return nil, writeError("update status", err)
	}

	s.invalidateCatalog(ctx)
	s.log.InfoContext(ctx, "room status updated",
		slog.String("status_id", out.ID),
		slog.Bool("is_default", out.IsDefault),
		slog.Bool("is_active", out.IsActive),
	)
	return &out, nil
}

// DeleteStatus removes a catalog entry permanently. Ledger entries that
// reference it keep the id.
func (s *Service) DeleteStatus(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return NotFoundError{Kind: "status", ID: id}
	}

	err := s.store.WithTx(ctx, func(tx Tx) error {
		cur, err := tx.LockStatus(ctx, id)
		if errors.Is(err, ErrRecordNotFound) {
			return NotFoundError{Kind: "status", ID: id}
		}
		if err != nil {
			return err
		}

		n, err := tx.CountRoomsWithStatus(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return InUseError{StatusID: id, Name: cur.Name, Rooms: n}
		}
		return tx.DeleteStatus(ctx, id)
	})
	if err != nil {
		return writeError("delete status", err)
	}

	s.invalidateCatalog(ctx)
	s.log.InfoContext(ctx, "room status deleted", slog.String("status_id", id))
	return nil
}

// ListRooms returns every room with its current status for display.
func (s *Service) ListRooms(ctx context.Context) ([]Room, error) {
	out, err := s.store.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return out, nil
}

func (s *Service) invalidateCatalog(ctx context.Context) {
	s.catalogGen.Add(1)
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

// writeError keeps domain errors intact and wraps everything else.
func writeError(op string, err error) error {
	if isDomainError(err) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
