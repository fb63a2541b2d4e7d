// ABOUTME: Booking record types and the pending/confirmed/cancelled state machine vocabulary.
// ABOUTME: Records carry a quote frozen at prepare time and a masked payment summary.

// Package booking manages the attraction ticket booking lifecycle: prepare
// holds a priced quote in the TTL store, confirm finalizes it and mints
// ticket numbers, cancel closes it out.
package booking

import "time"

// Status is a booking's lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transition is allowed out of s.
func (s Status) Terminal() bool {
	return s == StatusConfirmed || s == StatusCancelled
}

// PaymentSummary is the masked payment record kept on a booking. Full card
// numbers and CVVs are never accepted, stored, or logged.
type PaymentSummary struct {
	CardType   string `json:"card_type"`
	LastFour   string `json:"last_four"`
	HolderName string `json:"holder_name"`
	Expiry     string `json:"expiry"`
}

// Empty reports whether no payment information was provided.
func (p PaymentSummary) Empty() bool {
	return p == PaymentSummary{}
}

// Booking is an attraction ticket purchase. Price and currency are copied
// from the attraction when the booking is prepared and never re-read, so a
// later catalog change cannot move an open quote.
type Booking struct {
	BookingID            string         `json:"booking_id"`
	AttractionID         int            `json:"attraction_id"`
	AttractionName       string         `json:"attraction_name"`
	Category             string         `json:"category"`
	NumberOfTickets      int            `json:"number_of_tickets"`
	PricePerTicket       float64        `json:"price_per_ticket"`
	TotalAmount          float64        `json:"total_amount"`
	Currency             string         `json:"currency"`
	VisitDate            string         `json:"visit_date"`
	VisitorName          string         `json:"visitor_name"`
	VisitorEmail         string         `json:"visitor_email"`
	Payment              PaymentSummary `json:"payment_details"`
	Status               Status         `json:"status"`
	CreatedAt            time.Time      `json:"created_at"`
	ConfirmedAt          *time.Time     `json:"confirmed_at"`
	CancelledAt          *time.Time     `json:"cancelled_at,omitempty"`
	TicketNumbers        []string       `json:"ticket_numbers,omitempty"`
	PaymentTransactionID string         `json:"payment_transaction_id,omitempty"`
	BookingDetails       string         `json:"booking_details,omitempty"`
	OpeningHours         string         `json:"opening_hours,omitempty"`
	DurationMinutes      int            `json:"duration_minutes,omitempty"`
}
