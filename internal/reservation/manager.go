// ABOUTME: Restaurant/cafe table reservation lifecycle: prepare, confirm, cancel, lookup.
// ABOUTME: Mirrors the booking state machine without payment; confirm mints a single confirmation number.

// Package reservation manages table reservations for dining attractions.
// Only attractions in the dining categories accept reservations; no payment
// is involved at any stage.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alpenstack/tour-gateway/internal/catalog"
	"github.com/alpenstack/tour-gateway/internal/ident"
	"github.com/alpenstack/tour-gateway/internal/ttlstore"
)

const (
	reservationKeyPrefix = "reservation:"
	reservationIndexKey  = "reservations:index"
)

// DefaultTTL is how long a reservation stays retrievable after its last write.
const DefaultTTL = 2 * time.Hour

var (
	// ErrNotFound means no reservation exists under the id, including expired ones.
	ErrNotFound = errors.New("reservation not found")
	// ErrCategoryMismatch rejects reservations against non-dining attractions.
	ErrCategoryMismatch = errors.New("attraction does not take table reservations")
	// ErrAlreadyConfirmed accompanies the unchanged record on re-confirmation.
	ErrAlreadyConfirmed = errors.New("reservation already confirmed")
	// ErrInvalidState rejects transitions out of a terminal state.
	ErrInvalidState = errors.New("invalid reservation state transition")
	// ErrInvalidPartySize rejects prepare calls with fewer than one guest.
	ErrInvalidPartySize = errors.New("number of people must be at least 1")
)

// Status is a reservation's lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Location is the venue's coordinates, copied from the catalog at prepare time.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Reservation is a table hold at a restaurant or cafe.
type Reservation struct {
	ReservationID      string     `json:"reservation_id"`
	AttractionID       int        `json:"attraction_id"`
	AttractionName     string     `json:"attraction_name"`
	Category           string     `json:"category"`
	NumberOfPeople     int        `json:"number_of_people"`
	ReservationDate    string     `json:"reservation_date"`
	ReservationTime    string     `json:"reservation_time"`
	GuestName          string     `json:"guest_name"`
	GuestEmail         string     `json:"guest_email"`
	SpecialRequests    string     `json:"special_requests,omitempty"`
	Status             Status     `json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
	ConfirmedAt        *time.Time `json:"confirmed_at"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	ConfirmationNumber string     `json:"confirmation_number,omitempty"`
	OpeningHours       string     `json:"opening_hours,omitempty"`
	Location           Location   `json:"location"`
}

// PrepareRequest carries everything needed to open a table hold.
type PrepareRequest struct {
	AttractionID    int
	NumberOfPeople  int
	ReservationDate string
	ReservationTime string
	GuestName       string
	GuestEmail      string
	SpecialRequests string
}

// Manager owns the reservation lifecycle.
type Manager struct {
	mu      sync.Mutex
	store   ttlstore.Store
	catalog *catalog.Repository
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger
}

// NewManager builds a Manager on the given store and catalog. ttl <= 0
// applies DefaultTTL.
func NewManager(store ttlstore.Store, repo *catalog.Repository, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		store:   store,
		catalog: repo,
		ttl:     ttl,
		now:     time.Now,
		logger:  slog.With("component", "reservation"),
	}
}

// Prepare opens a pending reservation. Only dining attractions qualify.
func (m *Manager) Prepare(ctx context.Context, req PrepareRequest) (Reservation, error) {
	if req.NumberOfPeople < 1 {
		return Reservation{}, ErrInvalidPartySize
	}
	attraction, ok := m.catalog.Attraction(req.AttractionID)
	if !ok {
		return Reservation{}, fmt.Errorf("attraction %d: %w", req.AttractionID, ErrNotFound)
	}
	if !attraction.IsDining() {
		return Reservation{}, fmt.Errorf("attraction %d (%s): %w", req.AttractionID, attraction.Category, ErrCategoryMismatch)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	r := Reservation{
		ReservationID:   ident.NewReservationID(),
		AttractionID:    attraction.ID,
		AttractionName:  attraction.Name,
		Category:        attraction.Category,
		NumberOfPeople:  req.NumberOfPeople,
		ReservationDate: req.ReservationDate,
		ReservationTime: req.ReservationTime,
		GuestName:       req.GuestName,
		GuestEmail:      req.GuestEmail,
		SpecialRequests: req.SpecialRequests,
		Status:          StatusPending,
		CreatedAt:       m.now().UTC(),
		OpeningHours:    attraction.OpeningHours,
		Location: Location{
			Latitude:  attraction.Latitude,
			Longitude: attraction.Longitude,
		},
	}

	if err := m.put(ctx, r); err != nil {
		return Reservation{}, err
	}
	if err := m.appendIndex(ctx, r.ReservationID); err != nil {
		return Reservation{}, err
	}

	m.logger.Info("reservation prepared",
		"reservation_id", r.ReservationID,
		"restaurant", r.AttractionName,
		"guest", r.GuestName)
	return r, nil
}

// Confirm finalizes a pending reservation, deriving the confirmation number
// from the reservation id. Re-confirming returns the unchanged record with
// ErrAlreadyConfirmed; confirming a cancelled reservation fails with
// ErrInvalidState.
func (m *Manager) Confirm(ctx context.Context, reservationID string) (Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, err := m.get(ctx, reservationID)
	if err != nil {
		return Reservation{}, err
	}

	switch r.Status {
	case StatusConfirmed:
		return r, ErrAlreadyConfirmed
	case StatusCancelled:
		return Reservation{}, fmt.Errorf("cannot confirm cancelled reservation %s: %w", reservationID, ErrInvalidState)
	}

	confirmedAt := m.now().UTC()
	r.Status = StatusConfirmed
	r.ConfirmedAt = &confirmedAt
	r.ConfirmationNumber = ident.ConfirmationNumber(r.ReservationID)

	if err := m.put(ctx, r); err != nil {
		return Reservation{}, err
	}

	m.logger.Info("reservation confirmed",
		"reservation_id", r.ReservationID,
		"confirmation_number", r.ConfirmationNumber)
	return r, nil
}

// Cancel moves a pending reservation to cancelled. Already-cancelled is an
// idempotent success; cancelling a confirmed reservation fails with
// ErrInvalidState.
func (m *Manager) Cancel(ctx context.Context, reservationID string) (Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, err := m.get(ctx, reservationID)
	if err != nil {
		return Reservation{}, err
	}

	switch r.Status {
	case StatusCancelled:
		return r, nil
	case StatusConfirmed:
		return Reservation{}, fmt.Errorf("cannot cancel confirmed reservation %s: %w", reservationID, ErrInvalidState)
	}

	cancelledAt := m.now().UTC()
	r.Status = StatusCancelled
	r.CancelledAt = &cancelledAt

	if err := m.put(ctx, r); err != nil {
		return Reservation{}, err
	}

	m.logger.Info("reservation cancelled", "reservation_id", r.ReservationID)
	return r, nil
}

// Get returns the reservation under the id, or ErrNotFound once expired.
func (m *Manager) Get(ctx context.Context, reservationID string) (Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(ctx, reservationID)
}

// List returns every reservation still present in the store, in creation order.
func (m *Manager) List(ctx context.Context) ([]Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var ids []string
	if _, err := ttlstore.GetJSON(ctx, m.store, reservationIndexKey, &ids); err != nil {
		return nil, fmt.Errorf("loading reservation index: %w", err)
	}

	out := make([]Reservation, 0, len(ids))
	for _, id := range ids {
		r, err := m.get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *Manager) get(ctx context.Context, reservationID string) (Reservation, error) {
	var r Reservation
	ok, err := ttlstore.GetJSON(ctx, m.store, reservationKeyPrefix+reservationID, &r)
	if err != nil {
		return Reservation{}, fmt.Errorf("loading reservation %s: %w", reservationID, err)
	}
	if !ok {
		return Reservation{}, fmt.Errorf("reservation %s: %w", reservationID, ErrNotFound)
	}
	return r, nil
}

func (m *Manager) put(ctx context.Context, r Reservation) error {
	if err := ttlstore.PutJSON(ctx, m.store, reservationKeyPrefix+r.ReservationID, r, m.ttl); err != nil {
		return fmt.Errorf("storing reservation %s: %w", r.ReservationID, err)
	}
	return nil
}

func (m *Manager) appendIndex(ctx context.Context, reservationID string) error {
	var ids []string
	if _, err := ttlstore.GetJSON(ctx, m.store, reservationIndexKey, &ids); err != nil {
		return fmt.Errorf("loading reservation index: %w", err)
	}
	for _, id := range ids {
		if id == reservationID {
			return nil
		}
	}
	ids = append(ids, reservationID)
	if err := ttlstore.PutJSON(ctx, m.store, reservationIndexKey, ids, m.ttl); err != nil {
		return fmt.Errorf("storing reservation index: %w", err)
	}
	return nil
}
