// ABOUTME: Booking lifecycle manager: prepare, confirm, cancel, lookup, listing.
// ABOUTME: The TTL store is the only place of record; an index key tracks known ids.

package booking

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
	bookingKeyPrefix = "booking:"
	bookingIndexKey  = "bookings:index"
)

// DefaultTTL is how long a booking stays retrievable after its last write.
const DefaultTTL = 2 * time.Hour

var (
	// ErrNotFound means no booking exists under the id, including expired ones.
	ErrNotFound = errors.New("booking not found")
	// ErrNotBookable means the attraction exists but does not sell tickets.
	ErrNotBookable = errors.New("attraction is not bookable")
	// ErrAlreadyConfirmed accompanies the unchanged record on re-confirmation.
	ErrAlreadyConfirmed = errors.New("booking already confirmed")
	// ErrInvalidState rejects transitions out of a terminal state.
	ErrInvalidState = errors.New("invalid booking state transition")
	// ErrInvalidTicketCount rejects prepare calls with fewer than one ticket.
	ErrInvalidTicketCount = errors.New("number of tickets must be at least 1")
	// ErrMissingPayment rejects prepare calls without a payment summary.
	ErrMissingPayment = errors.New("payment summary is required")
)

// PrepareRequest carries everything needed to open a booking quote.
type PrepareRequest struct {
	AttractionID    int
	NumberOfTickets int
	VisitDate       string
	VisitorName     string
	VisitorEmail    string
	Payment         PaymentSummary
}

// Manager owns the booking lifecycle. All mutations run under a single mutex;
// the store holds the only copy of each record.
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
		logger:  slog.With("component", "booking"),
	}
}

// Prepare opens a pending booking for a bookable attraction, freezing the
// quote at the attraction's current price.
func (m *Manager) Prepare(ctx context.Context, req PrepareRequest) (Booking, error) {
	if req.NumberOfTickets < 1 {
		return Booking{}, ErrInvalidTicketCount
	}
	if req.Payment.Empty() {
		return Booking{}, ErrMissingPayment
	}
	attraction, ok := m.catalog.Attraction(req.AttractionID)
	if !ok {
		return Booking{}, fmt.Errorf("attraction %d: %w", req.AttractionID, ErrNotFound)
	}
	if !attraction.Bookable {
		return Booking{}, fmt.Errorf("attraction %d: %w", req.AttractionID, ErrNotBookable)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	b := Booking{
		BookingID:       ident.NewBookingID(),
		AttractionID:    attraction.ID,
		AttractionName:  attraction.Name,
		Category:        attraction.Category,
		NumberOfTickets: req.NumberOfTickets,
		PricePerTicket:  attraction.Price,
		TotalAmount:     attraction.Price * float64(req.NumberOfTickets),
		Currency:        attraction.Currency,
		VisitDate:       req.VisitDate,
		VisitorName:     req.VisitorName,
		VisitorEmail:    req.VisitorEmail,
		Payment:         req.Payment,
		Status:          StatusPending,
		CreatedAt:       m.now().UTC(),
		BookingDetails:  attraction.BookingDetails,
		OpeningHours:    attraction.OpeningHours,
		DurationMinutes: attraction.DurationMinutes,
	}

	if err := m.put(ctx, b); err != nil {
		return Booking{}, err
	}
	if err := m.appendIndex(ctx, b.BookingID); err != nil {
		return Booking{}, err
	}

	m.logger.Info("booking prepared",
		"booking_id", b.BookingID,
		"attraction", b.AttractionName,
		"tickets", b.NumberOfTickets,
		"card_type", b.Payment.CardType)
	return b, nil
}

// Confirm finalizes a pending booking: mints the ticket numbers, stamps
// confirmation time, and attaches the transaction id when supplied. A missing
// transaction id mints a synthetic one. Confirming an already-confirmed
// booking returns the record unchanged alongside ErrAlreadyConfirmed;
// confirming a cancelled booking fails with ErrInvalidState.
func (m *Manager) Confirm(ctx context.Context, bookingID, transactionID string) (Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, err := m.get(ctx, bookingID)
	if err != nil {
		return Booking{}, err
	}

	switch b.Status {
	case StatusConfirmed:
		return b, ErrAlreadyConfirmed
	case StatusCancelled:
		return Booking{}, fmt.Errorf("cannot confirm cancelled booking %s: %w", bookingID, ErrInvalidState)
	}

	if transactionID == "" {
		transactionID = ident.NewTransactionID()
	}

	tickets := make([]string, 0, b.NumberOfTickets)
	for i := 1; i <= b.NumberOfTickets; i++ {
		tickets = append(tickets, ident.TicketNumber(b.BookingID, i))
	}

	confirmedAt := m.now().UTC()
	b.Status = StatusConfirmed
	b.ConfirmedAt = &confirmedAt
	b.TicketNumbers = tickets
	b.PaymentTransactionID = transactionID

	if err := m.put(ctx, b); err != nil {
		return Booking{}, err
	}

	m.logger.Info("booking confirmed",
		"booking_id", b.BookingID,
		"transaction_id", transactionID,
		"tickets", len(tickets))
	return b, nil
}

// Cancel moves a pending booking to cancelled. Cancelling an already-cancelled
// booking is an idempotent success; cancelling a confirmed booking fails with
// ErrInvalidState.
func (m *Manager) Cancel(ctx context.Context, bookingID string) (Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, err := m.get(ctx, bookingID)
	if err != nil {
		return Booking{}, err
	}

	switch b.Status {
	case StatusCancelled:
		return b, nil
	case StatusConfirmed:
		return Booking{}, fmt.Errorf("cannot cancel confirmed booking %s: %w", bookingID, ErrInvalidState)
	}

	cancelledAt := m.now().UTC()
	b.Status = StatusCancelled
	b.CancelledAt = &cancelledAt

	if err := m.put(ctx, b); err != nil {
		return Booking{}, err
	}

	m.logger.Info("booking cancelled", "booking_id", b.BookingID)
	return b, nil
}

// Get returns the booking under the id, or ErrNotFound once it has expired.
func (m *Manager) Get(ctx context.Context, bookingID string) (Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.get(ctx, bookingID)
}

// List returns every booking still present in the store, in creation order.
// Expired ids in the index are skipped.
func (m *Manager) List(ctx context.Context) ([]Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var ids []string
	if _, err := ttlstore.GetJSON(ctx, m.store, bookingIndexKey, &ids); err != nil {
		return nil, fmt.Errorf("loading booking index: %w", err)
	}

	out := make([]Booking, 0, len(ids))
	for _, id := range ids {
		b, err := m.get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (m *Manager) get(ctx context.Context, bookingID string) (Booking, error) {
	var b Booking
	ok, err := ttlstore.GetJSON(ctx, m.store, bookingKeyPrefix+bookingID, &b)
	if err != nil {
		return Booking{}, fmt.Errorf("loading booking %s: %w", bookingID, err)
	}
	if !ok {
		return Booking{}, fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
	}
	return b, nil
}

// put re-stores the record, re-arming its TTL window.
func (m *Manager) put(ctx context.Context, b Booking) error {
	if err := ttlstore.PutJSON(ctx, m.store, bookingKeyPrefix+b.BookingID, b, m.ttl); err != nil {
		return fmt.Errorf("storing booking %s: %w", b.BookingID, err)
	}
	return nil
}

func (m *Manager) appendIndex(ctx context.Context, bookingID string) error {
	var ids []string
	if _, err := ttlstore.GetJSON(ctx, m.store, bookingIndexKey, &ids); err != nil {
		return fmt.Errorf("loading booking index: %w", err)
	}
	for _, id := range ids {
		if id == bookingID {
			return nil
		}
	}
	ids = append(ids, bookingID)
	if err := ttlstore.PutJSON(ctx, m.store, bookingIndexKey, ids, m.ttl); err != nil {
		return fmt.Errorf("storing booking index: %w", err)
	}
	return nil
}
