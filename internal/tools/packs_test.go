// ABOUTME: Tests for the tourism, booking, and reservation tool packs.
// ABOUTME: Exercises handlers end to end against in-memory managers.

package tools

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alpenstack/tour-gateway/internal/booking"
	"github.com/alpenstack/tour-gateway/internal/catalog"
	"github.com/alpenstack/tour-gateway/internal/recommend"
	"github.com/alpenstack/tour-gateway/internal/reservation"
	"github.com/alpenstack/tour-gateway/internal/ttlstore"
)

type fixture struct {
	repo     *catalog.Repository
	store    *ttlstore.MemoryStore
	profiles *recommend.ProfileStore
	bookings *booking.Manager
	tables   *reservation.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo, err := catalog.Load()
	require.NoError(t, err)
	store := ttlstore.NewMemoryStore()
	t.Cleanup(func() { store.Close() })
	return &fixture{
		repo:     repo,
		store:    store,
		profiles: recommend.NewProfileStore(store, time.Minute),
		bookings: booking.NewManager(store, repo, time.Minute),
		tables:   reservation.NewManager(store, repo, time.Minute),
	}
}

func call(t *testing.T, tool *Tool, input string) json.RawMessage {
	t.Helper()
	out, err := tool.Handler(context.Background(), "caller-1", json.RawMessage(input))
	require.NoError(t, err)
	return out
}

func toolByName(t *testing.T, pack *Pack, name string) *Tool {
	t.Helper()
	for _, tool := range pack.Tools {
		if tool.Definition.Name == name {
			return tool
		}
	}
	t.Fatalf("tool %s not in pack %s", name, pack.ID)
	return nil
}

func TestTourismPack_SearchAndLookup(t *testing.T) {
	f := newFixture(t)
	pack := TourismPack(f.repo, f.profiles)

	out := call(t, toolByName(t, pack, "search_destinations"), `{"query":"vienna"}`)
	var search struct {
		Destinations []catalog.Destination `json:"destinations"`
	}
	require.NoError(t, json.Unmarshal(out, &search))
	require.Len(t, search.Destinations, 1)
	assert.Equal(t, 1, search.Destinations[0].ID)

	out = call(t, toolByName(t, pack, "get_destination"), `{"destination_id":2}`)
	var dest catalog.Destination
	require.NoError(t, json.Unmarshal(out, &dest))
	assert.Equal(t, "Salzburg", dest.Name)

	_, err := toolByName(t, pack, "get_destination").Handler(context.Background(), "c", json.RawMessage(`{"destination_id":99}`))
	assert.ErrorContains(t, err, "not found")

	_, err = toolByName(t, pack, "get_destination").Handler(context.Background(), "c", json.RawMessage(`{}`))
	assert.ErrorContains(t, err, "invalid input")
}

func TestTourismPack_AttractionTools(t *testing.T) {
	f := newFixture(t)
	pack := TourismPack(f.repo, f.profiles)

	out := call(t, toolByName(t, pack, "get_top_attractions"), `{"destination_id":1,"limit":3}`)
	var top struct {
		Attractions []catalog.Attraction `json:"attractions"`
	}
	require.NoError(t, json.Unmarshal(out, &top))
	require.Len(t, top.Attractions, 3)
	for _, a := range top.Attractions {
		assert.True(t, a.Bookable)
	}

	out = call(t, toolByName(t, pack, "get_attraction_details"), `{"attraction_id":101}`)
	var attraction catalog.Attraction
	require.NoError(t, json.Unmarshal(out, &attraction))
	assert.Equal(t, "Schönbrunn Palace", attraction.Name)

	out = call(t, toolByName(t, pack, "find_nearby_attractions"), `{"latitude":48.2082,"longitude":16.3738,"radius_km":5}`)
	var nearby struct {
		Results []catalog.NearbyResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(out, &nearby))
	assert.NotEmpty(t, nearby.Results)

	out = call(t, toolByName(t, pack, "get_restaurants_and_cafes"), `{"destination_id":1}`)
	var dining struct {
		Venues []catalog.Attraction `json:"venues"`
	}
	require.NoError(t, json.Unmarshal(out, &dining))
	assert.Len(t, dining.Venues, 6)
}

func TestTourismPack_RecommendPersistsProfile(t *testing.T) {
	f := newFixture(t)
	pack := TourismPack(f.repo, f.profiles)

	out := call(t, toolByName(t, pack, "recommend_attractions"),
		`{"destination_id":1,"user_id":"u1","preferences":["art","history"],"budget":"moderate","limit":3}`)

	var rec struct {
		Recommendations []recommend.Scored `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(out, &rec))
	require.Len(t, rec.Recommendations, 3)
	assert.Equal(t, 95, rec.Recommendations[0].MatchScore)

	saved, ok, err := f.profiles.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"art", "history"}, saved.Preferences)
}

const validBookingInput = `{
	"attraction_id": 101,
	"number_of_tickets": 2,
	"visit_date": "2026-09-15",
	"visitor_name": "Anna Gruber",
	"visitor_email": "anna@example.com",
	"payment": {"card_type":"Visa","last_four":"4242","holder_name":"Anna Gruber","expiry":"12/27"}
}`

func TestBookingPack_Lifecycle(t *testing.T) {
	f := newFixture(t)
	pack := BookingPack(f.bookings)

	out := call(t, toolByName(t, pack, "prepare_booking"), validBookingInput)
	var prepared booking.Booking
	require.NoError(t, json.Unmarshal(out, &prepared))
	assert.Equal(t, booking.StatusPending, prepared.Status)
	assert.Equal(t, 52.0, prepared.TotalAmount)

	out = call(t, toolByName(t, pack, "confirm_booking"),
		`{"booking_id":"`+prepared.BookingID+`"}`)
	var confirmed booking.Booking
	require.NoError(t, json.Unmarshal(out, &confirmed))
	assert.Equal(t, booking.StatusConfirmed, confirmed.Status)
	assert.Len(t, confirmed.TicketNumbers, 2)
	assert.NotEmpty(t, confirmed.PaymentTransactionID)

	// Re-confirmation reports the unchanged record.
	out = call(t, toolByName(t, pack, "confirm_booking"),
		`{"booking_id":"`+prepared.BookingID+`"}`)
	var again struct {
		Booking          booking.Booking `json:"booking"`
		AlreadyConfirmed bool            `json:"already_confirmed"`
	}
	require.NoError(t, json.Unmarshal(out, &again))
	assert.True(t, again.AlreadyConfirmed)
	assert.Equal(t, confirmed.TicketNumbers, again.Booking.TicketNumbers)

	out = call(t, toolByName(t, pack, "get_booking"), `{"booking_id":"`+prepared.BookingID+`"}`)
	var got booking.Booking
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, prepared.BookingID, got.BookingID)

	out = call(t, toolByName(t, pack, "list_bookings"), `{}`)
	var list struct {
		Bookings []booking.Booking `json:"bookings"`
	}
	require.NoError(t, json.Unmarshal(out, &list))
	assert.Len(t, list.Bookings, 1)
}

func TestBookingPack_ValidationErrors(t *testing.T) {
	f := newFixture(t)
	pack := BookingPack(f.bookings)
	prepare := toolByName(t, pack, "prepare_booking")
	ctx := context.Background()

	_, err := prepare.Handler(ctx, "c", json.RawMessage(`{"attraction_id":101}`))
	assert.ErrorContains(t, err, "invalid input")

	_, err = prepare.Handler(ctx, "c", json.RawMessage(`{
		"attraction_id": 101, "number_of_tickets": 1, "visit_date": "2026-09-15",
		"visitor_name": "A", "visitor_email": "not-an-email",
		"payment": {"card_type":"Visa","last_four":"4242","holder_name":"A","expiry":"12/27"}
	}`))
	assert.ErrorContains(t, err, "invalid input")

	_, err = toolByName(t, pack, "cancel_booking").Handler(ctx, "c", json.RawMessage(`{"booking_id":"BKG-00000000"}`))
	assert.ErrorIs(t, err, booking.ErrNotFound)
}

func TestReservationPack_Lifecycle(t *testing.T) {
	f := newFixture(t)
	pack := ReservationPack(f.tables)

	out := call(t, toolByName(t, pack, "prepare_restaurant_reservation"), `{
		"attraction_id": 504, "number_of_people": 4,
		"reservation_date": "2026-09-15", "reservation_time": "19:30",
		"guest_name": "Max Berger", "guest_email": "max@example.com"
	}`)
	var prepared reservation.Reservation
	require.NoError(t, json.Unmarshal(out, &prepared))
	assert.Equal(t, reservation.StatusPending, prepared.Status)

	out = call(t, toolByName(t, pack, "confirm_restaurant_reservation"),
		`{"reservation_id":"`+prepared.ReservationID+`"}`)
	var confirmed reservation.Reservation
	require.NoError(t, json.Unmarshal(out, &confirmed))
	assert.Regexp(t, `^CNF-[0-9A-F]{10}$`, confirmed.ConfirmationNumber)

	out = call(t, toolByName(t, pack, "list_reservations"), `{}`)
	var list struct {
		Reservations []reservation.Reservation `json:"reservations"`
	}
	require.NoError(t, json.Unmarshal(out, &list))
	assert.Len(t, list.Reservations, 1)
}

func TestReservationPack_CategoryMismatch(t *testing.T) {
	f := newFixture(t)
	pack := ReservationPack(f.tables)

	_, err := toolByName(t, pack, "prepare_restaurant_reservation").Handler(context.Background(), "c", json.RawMessage(`{
		"attraction_id": 101, "number_of_people": 2,
		"reservation_date": "2026-09-15", "reservation_time": "19:30",
		"guest_name": "Max", "guest_email": "max@example.com"
	}`))
	assert.ErrorIs(t, err, reservation.ErrCategoryMismatch)
}
