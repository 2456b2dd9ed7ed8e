// Package tracking implements room status tracking: the status catalog, the
// transition operation that moves a room between statuses, and the
// append-only history ledger that records every transition.
//
// The package is storage-agnostic. Persistence is reached through Store and
// Tx; HTTP and database adapters live in sibling packages.
package tracking

import (
	"time"

	"github.com/shopspring/decimal"
)

// SystemActor is recorded as ChangedBy when a transition is not attributed.
const SystemActor = "system"

// Status is a catalog entry such as "Available" or "Dirty".
type Status struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	Description string    `json:"description"`
	IsDefault   bool      `json:"isDefault"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// StatusInput describes a new catalog entry.
type StatusInput struct {
	Name        string
	Color       string
	Description string
	IsDefault   bool
}

// StatusPatch carries a partial update; nil fields are left untouched.
type StatusPatch struct {
	Name        *string
	Color       *string
	Description *string
	IsDefault   *bool
	IsActive    *bool
}

func (p StatusPatch) apply(s Status) Status {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Color != nil {
		s.Color = *p.Color
	}
	if p.Description != nil {
		s.Description = *p.Description
	}
	if p.IsDefault != nil {
		s.IsDefault = *p.IsDefault
	}
	if p.IsActive != nil {
		s.IsActive = *p.IsActive
	}
	return s
}

// Room is the subject of tracking. Only CurrentStatusID is written here; the
// descriptive fields are owned elsewhere and read for display.
type Room struct {
	ID              string          `json:"id"`
	Number          string          `json:"number"`
	CategoryName    string          `json:"categoryName"`
	Price           decimal.Decimal `json:"price"`
	Images          []string        `json:"images"`
	CurrentStatusID *string         `json:"currentStatusId"`
	StatusName      string          `json:"statusName,omitempty"`
	StatusColor     string          `json:"statusColor,omitempty"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Entry is one immutable ledger row.
type Entry struct {
	ID               string    `json:"id"`
	RoomID           string    `json:"roomId"`
	StatusID         string    `json:"statusId"`
	PreviousStatusID *string   `json:"previousStatusId"`
	Notes            string    `json:"notes"`
	ChangedBy        string    `json:"changedBy"`
	BookingID        *string   `json:"bookingId"`
	ChangedAt        time.Time `json:"changedAt"`
}

// Record is a ledger entry joined with the names shown in the history table.
// StatusName is empty when the status has since been deleted from the catalog.
type Record struct {
	Entry
	RoomNumber   string `json:"roomNumber"`
	CategoryName string `json:"categoryName"`
	StatusName   string `json:"statusName"`
	StatusColor  string `json:"statusColor"`
	GuestName    string `json:"guestName"`
}

// TransitionInput asks for a room to move to a status. Empty ChangedBy is
// recorded as SystemActor.
type TransitionInput struct {
	RoomID    string
	StatusID  string
	Notes     string
	ChangedBy string
	BookingID string
}

// StatusChange is published after a transition commits.
type StatusChange struct {
	EntryID          string    `json:"entryId"`
	RoomID           string    `json:"roomId"`
	RoomNumber       string    `json:"roomNumber"`
	StatusID         string    `json:"statusId"`
	StatusName       string    `json:"statusName"`
	PreviousStatusID *string   `json:"previousStatusId"`
	ChangedBy        string    `json:"changedBy"`
	BookingID        *string   `json:"bookingId,omitempty"`
	ChangedAt        time.Time `json:"changedAt"`
}
