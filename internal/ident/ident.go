// ABOUTME: Display-identifier generation for bookings, reservations, tickets, and confirmations.
// ABOUTME: Random ids come from a uuid seed; ticket/confirmation numbers are pure functions of their inputs.

// Package ident produces short prefixed identifiers. These are display
// identifiers, not security tokens: collision resistance in practice is the
// requirement, unpredictability is not.
package ident

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Identifier prefixes by domain.
const (
	BookingPrefix      = "BKG-"
	ReservationPrefix  = "RSV-"
	TicketPrefix       = "TKT-"
	ConfirmationPrefix = "CNF-"
	TransactionPrefix  = "TXN-"
)

const (
	idLen      = 8  // random entity identifiers
	derivedLen = 10 // deterministic ticket/confirmation numbers
)

// hashToken returns the first n uppercase hex characters of sha256(seed).
func hashToken(seed string, n int) string {
	sum := sha256.Sum256([]byte(seed))
	return strings.ToUpper(hex.EncodeToString(sum[:]))[:n]
}

// random returns a fresh token derived from a random uuid seed. Tokens are
// never regenerated for the same entity; the seed exists only here.
func random(n int) string {
	return hashToken(uuid.NewString(), n)
}

// NewBookingID returns a fresh booking identifier, e.g. BKG-3F9A01BC.
func NewBookingID() string {
	return BookingPrefix + random(idLen)
}

// NewReservationID returns a fresh reservation identifier.
func NewReservationID() string {
	return ReservationPrefix + random(idLen)
}

// NewTransactionID returns a fresh mock payment transaction identifier.
func NewTransactionID() string {
	return TransactionPrefix + random(idLen)
}

// TicketNumber derives the ticket number for the index-th ticket (1-based) of
// a booking. It is a pure function of its inputs: recomputing with the same
// booking id and index always reproduces the same value.
func TicketNumber(bookingID string, index int) string {
	return TicketPrefix + hashToken(fmt.Sprintf("%s%d", bookingID, index), derivedLen)
}

// ConfirmationNumber derives the confirmation number for a reservation.
// Pure function of the reservation id.
func ConfirmationNumber(reservationID string) string {
	return ConfirmationPrefix + hashToken(reservationID, derivedLen)
}
