// ABOUTME: Tests for the booking lifecycle manager.
// ABOUTME: Covers quote freezing, confirm/cancel transitions, idempotency, expiry, and listing.

package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alpenstack/tour-gateway/internal/catalog"
	"github.com/alpenstack/tour-gateway/internal/ttlstore"
)

func newTestManager(t *testing.T, ttl time.Duration) *Manager {
	t.Helper()
	repo, err := catalog.Load()
	require.NoError(t, err)
	store := ttlstore.NewMemoryStore()
	t.Cleanup(func() { store.Close() })
	return NewManager(store, repo, ttl)
}

func validRequest() PrepareRequest {
	return PrepareRequest{
		AttractionID:    101, // Schönbrunn Palace, 26 EUR
		NumberOfTickets: 2,
		VisitDate:       "2026-09-15",
		VisitorName:     "Anna Gruber",
		VisitorEmail:    "anna@example.com",
		Payment: PaymentSummary{
			CardType:   "Visa",
			LastFour:   "4242",
			HolderName: "Anna Gruber",
			Expiry:     "12/27",
		},
	}
}

func TestPrepare_FreezesQuote(t *testing.T) {
	m := newTestManager(t, time.Minute)

	b, err := m.Prepare(context.Background(), validRequest())
	require.NoError(t, err)

	assert.Regexp(t, `^BKG-[0-9A-F]{8}$`, b.BookingID)
	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, 26.0, b.PricePerTicket)
	assert.Equal(t, 52.0, b.TotalAmount, "total is price times ticket count")
	assert.Equal(t, "EUR", b.Currency)
	assert.Equal(t, "Schönbrunn Palace", b.AttractionName)
	assert.Nil(t, b.ConfirmedAt)
	assert.Empty(t, b.TicketNumbers)
	assert.False(t, b.CreatedAt.IsZero())
}

func TestPrepare_UnknownAttraction(t *testing.T) {
	m := newTestManager(t, time.Minute)

	req := validRequest()
	req.AttractionID = 999
	_, err := m.Prepare(context.Background(), req)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPrepare_NotBookable(t *testing.T) {
	m := newTestManager(t, time.Minute)

	req := validRequest()
	req.AttractionID = 403 // Lake Hallstatt, free
	_, err := m.Prepare(context.Background(), req)
	assert.ErrorIs(t, err, ErrNotBookable)
}

func TestPrepare_InvalidTicketCount(t *testing.T) {
	m := newTestManager(t, time.Minute)

	req := validRequest()
	req.NumberOfTickets = 0
	_, err := m.Prepare(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidTicketCount)
}

func TestPrepare_RequiresPayment(t *testing.T) {
	m := newTestManager(t, time.Minute)

	req := validRequest()
	req.Payment = PaymentSummary{}
	_, err := m.Prepare(context.Background(), req)
	assert.ErrorIs(t, err, ErrMissingPayment)
}

func TestConfirm_MintsTickets(t *testing.T) {
	m := newTestManager(t, time.Minute)
	ctx := context.Background()

	prepared, err := m.Prepare(ctx, validRequest())
	require.NoError(t, err)

	confirmed, err := m.Confirm(ctx, prepared.BookingID, "TXN-DEADBEEF")
	require.NoError(t, err)

	assert.Equal(t, StatusConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.ConfirmedAt)
	assert.Equal(t, "TXN-DEADBEEF", confirmed.PaymentTransactionID)
	require.Len(t, confirmed.TicketNumbers, 2)
	for _, tkt := range confirmed.TicketNumbers {
		assert.Regexp(t, `^TKT-[0-9A-F]{10}$`, tkt)
	}
	assert.NotEqual(t, confirmed.TicketNumbers[0], confirmed.TicketNumbers[1])
}

func TestConfirm_MintsTransactionIDWhenAbsent(t *testing.T) {
	m := newTestManager(t, time.Minute)
	ctx := context.Background()

	prepared, err := m.Prepare(ctx, validRequest())
	require.NoError(t, err)

	confirmed, err := m.Confirm(ctx, prepared.BookingID, "")
	require.NoError(t, err)
	assert.Regexp(t, `^TXN-[0-9A-F]{8}$`, confirmed.PaymentTransactionID)
}

func TestConfirm_Idempotent(t *testing.T) {
	m := newTestManager(t, time.Minute)
	ctx := context.Background()

	prepared, err := m.Prepare(ctx, validRequest())
	require.NoError(t, err)

	first, err := m.Confirm(ctx, prepared.BookingID, "")
	require.NoError(t, err)

	// Re-confirming signals "already confirmed" but returns the record
	// unchanged: same tickets, same confirmation time, same transaction.
	again, err := m.Confirm(ctx, prepared.BookingID, "TXN-OTHER")
	assert.ErrorIs(t, err, ErrAlreadyConfirmed)
	assert.Equal(t, first.TicketNumbers, again.TicketNumbers)
	assert.Equal(t, first.ConfirmedAt, again.ConfirmedAt)
	assert.Equal(t, first.PaymentTransactionID, again.PaymentTransactionID)
}

func TestConfirm_NotFound(t *testing.T) {
	m := newTestManager(t, time.Minute)

	_, err := m.Confirm(context.Background(), "BKG-00000000", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConfirm_AfterCancelRejected(t *testing.T) {
	m := newTestManager(t, time.Minute)
	ctx := context.Background()

	prepared, err := m.Prepare(ctx, validRequest())
	require.NoError(t, err)

	_, err = m.Cancel(ctx, prepared.BookingID)
	require.NoError(t, err)

	_, err = m.Confirm(ctx, prepared.BookingID, "")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCancel_Transitions(t *testing.T) {
	m := newTestManager(t, time.Minute)
	ctx := context.Background()

	prepared, err := m.Prepare(ctx, validRequest())
	require.NoError(t, err)

	cancelled, err := m.Cancel(ctx, prepared.BookingID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)

	// Cancelling twice is an idempotent success.
	again, err := m.Cancel(ctx, prepared.BookingID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, again.Status)
}

func TestCancel_ConfirmedRejected(t *testing.T) {
	m := newTestManager(t, time.Minute)
	ctx := context.Background()

	prepared, err := m.Prepare(ctx, validRequest())
	require.NoError(t, err)
	_, err = m.Confirm(ctx, prepared.BookingID, "")
	require.NoError(t, err)

	_, err = m.Cancel(ctx, prepared.BookingID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCancel_NotFound(t *testing.T) {
	m := newTestManager(t, time.Minute)

	_, err := m.Cancel(context.Background(), "BKG-00000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGet_ExpiredBookingIsGone(t *testing.T) {
	m := newTestManager(t, 20*time.Millisecond)
	ctx := context.Background()

	prepared, err := m.Prepare(ctx, validRequest())
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)

	_, err = m.Get(ctx, prepared.BookingID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Confirm(ctx, prepared.BookingID, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList_SkipsExpired(t *testing.T) {
	m := newTestManager(t, time.Minute)
	ctx := context.Background()

	first, err := m.Prepare(ctx, validRequest())
	require.NoError(t, err)

	req := validRequest()
	req.AttractionID = 302
	second, err := m.Prepare(ctx, req)
	require.NoError(t, err)

	all, err := m.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, first.BookingID, all[0].BookingID)
	assert.Equal(t, second.BookingID, all[1].BookingID)

	// Drop the first record directly; the index entry must be skipped.
	require.NoError(t, m.store.Delete(ctx, bookingKeyPrefix+first.BookingID))
	all, err = m.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, second.BookingID, all[0].BookingID)
}

func TestList_EmptyStore(t *testing.T) {
	m := newTestManager(t, time.Minute)

	all, err := m.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}
