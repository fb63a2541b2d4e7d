// ABOUTME: Booking pack: prepare, confirm, cancel, and inspect attraction ticket bookings.
// ABOUTME: Thin validation layer over the booking lifecycle manager.

package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alpenstack/tour-gateway/internal/booking"
)

// BookingPack builds the attraction booking tools. Requires the "booking"
// capability.
func BookingPack(manager *booking.Manager) *Pack {
	h := &bookingHandlers{manager: manager}
	return &Pack{
		ID: "booking",
		Tools: []*Tool{
			{
				Definition: Definition{
					Name:                 "prepare_booking",
					Description:          "Open a pending ticket booking for a bookable attraction, freezing the price quote",
					InputSchema:          `{"type":"object","properties":{"attraction_id":{"type":"integer"},"number_of_tickets":{"type":"integer","minimum":1},"visit_date":{"type":"string"},"visitor_name":{"type":"string"},"visitor_email":{"type":"string"},"payment":{"type":"object","properties":{"card_type":{"type":"string"},"last_four":{"type":"string"},"holder_name":{"type":"string"},"expiry":{"type":"string"}},"required":["card_type","last_four","holder_name","expiry"]}},"required":["attraction_id","number_of_tickets","visit_date","visitor_name","visitor_email","payment"]}`,
					RequiredCapabilities: []string{"booking"},
				},
				Handler: h.Prepare,
			},
			{
				Definition: Definition{
					Name:                 "confirm_booking",
					Description:          "Finalize a pending booking and mint its ticket numbers",
					InputSchema:          `{"type":"object","properties":{"booking_id":{"type":"string"},"payment_transaction_id":{"type":"string"}},"required":["booking_id"]}`,
					RequiredCapabilities: []string{"booking"},
				},
				Handler: h.Confirm,
			},
			{
				Definition: Definition{
					Name:                 "cancel_booking",
					Description:          "Cancel a pending booking",
					InputSchema:          `{"type":"object","properties":{"booking_id":{"type":"string"}},"required":["booking_id"]}`,
					RequiredCapabilities: []string{"booking"},
				},
				Handler: h.Cancel,
			},
			{
				Definition: Definition{
					Name:                 "get_booking",
					Description:          "Look up a booking by id",
					InputSchema:          `{"type":"object","properties":{"booking_id":{"type":"string"}},"required":["booking_id"]}`,
					RequiredCapabilities: []string{"booking"},
				},
				Handler: h.Get,
			},
			{
				Definition: Definition{
					Name:                 "list_bookings",
					Description:          "List all bookings still present in the store",
					InputSchema:          `{"type":"object","properties":{}}`,
					RequiredCapabilities: []string{"booking"},
				},
				Handler: h.List,
			},
		},
	}
}

type bookingHandlers struct {
	manager *booking.Manager
}

type preparePaymentInput struct {
	CardType   string `json:"card_type" validate:"required"`
	LastFour   string `json:"last_four" validate:"required,len=4,numeric"`
	HolderName string `json:"holder_name" validate:"required"`
	Expiry     string `json:"expiry" validate:"required"`
}

type prepareBookingInput struct {
	AttractionID    int                 `json:"attraction_id" validate:"required"`
	NumberOfTickets int                 `json:"number_of_tickets" validate:"required,gte=1"`
	VisitDate       string              `json:"visit_date" validate:"required"`
	VisitorName     string              `json:"visitor_name" validate:"required"`
	VisitorEmail    string              `json:"visitor_email" validate:"required,email"`
	Payment         preparePaymentInput `json:"payment" validate:"required"`
}

func (h *bookingHandlers) Prepare(ctx context.Context, callerID string, input json.RawMessage) (json.RawMessage, error) {
	var in prepareBookingInput
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}

	b, err := h.manager.Prepare(ctx, booking.PrepareRequest{
		AttractionID:    in.AttractionID,
		NumberOfTickets: in.NumberOfTickets,
		VisitDate:       in.VisitDate,
		VisitorName:     in.VisitorName,
		VisitorEmail:    in.VisitorEmail,
		Payment: booking.PaymentSummary{
			CardType:   in.Payment.CardType,
			LastFour:   in.Payment.LastFour,
			HolderName: in.Payment.HolderName,
			Expiry:     in.Payment.Expiry,
		},
	})
	if err != nil {
		return nil, bookingToolError(err)
	}
	return json.Marshal(b)
}

type confirmBookingInput struct {
	BookingID            string `json:"booking_id" validate:"required"`
	PaymentTransactionID string `json:"payment_transaction_id"`
}

func (h *bookingHandlers) Confirm(ctx context.Context, callerID string, input json.RawMessage) (json.RawMessage, error) {
	var in confirmBookingInput
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}

	b, err := h.manager.Confirm(ctx, in.BookingID, in.PaymentTransactionID)
	if errors.Is(err, booking.ErrAlreadyConfirmed) {
		// Idempotent read: return the unchanged record, flagged.
		return json.Marshal(map[string]any{
			"booking":           b,
			"already_confirmed": true,
		})
	}
	if err != nil {
		return nil, bookingToolError(err)
	}
	return json.Marshal(b)
}

type bookingIDInput struct {
	BookingID string `json:"booking_id" validate:"required"`
}

func (h *bookingHandlers) Cancel(ctx context.Context, callerID string, input json.RawMessage) (json.RawMessage, error) {
	var in bookingIDInput
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}
	b, err := h.manager.Cancel(ctx, in.BookingID)
	if err != nil {
		return nil, bookingToolError(err)
	}
	return json.Marshal(b)
}

func (h *bookingHandlers) Get(ctx context.Context, callerID string, input json.RawMessage) (json.RawMessage, error) {
	var in bookingIDInput
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}
	b, err := h.manager.Get(ctx, in.BookingID)
	if err != nil {
		return nil, bookingToolError(err)
	}
	return json.Marshal(b)
}

func (h *bookingHandlers) List(ctx context.Context, callerID string, input json.RawMessage) (json.RawMessage, error) {
	all, err := h.manager.List(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]any{"bookings": all})
}

// bookingToolError keeps manager sentinels intact while giving callers a
// stable message shape.
func bookingToolError(err error) error {
	switch {
	case errors.Is(err, booking.ErrNotFound),
		errors.Is(err, booking.ErrNotBookable),
		errors.Is(err, booking.ErrInvalidState),
		errors.Is(err, booking.ErrInvalidTicketCount),
		errors.Is(err, booking.ErrMissingPayment):
		return err
	default:
		return fmt.Errorf("booking operation failed: %w", err)
	}
}
