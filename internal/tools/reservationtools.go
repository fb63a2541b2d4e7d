// ABOUTME: Reservation pack: table holds at restaurants and cafes.
// ABOUTME: Thin validation layer over the reservation lifecycle manager.

package tools

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/alpenstack/tour-gateway/internal/reservation"
)

// ReservationPack builds the restaurant reservation tools. Requires the
// "booking" capability.
func ReservationPack(manager *reservation.Manager) *Pack {
	h := &reservationHandlers{manager: manager}
	return &Pack{
		ID: "reservation",
		Tools: []*Tool{
			{
				Definition: Definition{
					Name:                 "prepare_restaurant_reservation",
					Description:          "Open a pending table reservation at a restaurant or cafe",
					InputSchema:          `{"type":"object","properties":{"attraction_id":{"type":"integer"},"number_of_people":{"type":"integer","minimum":1},"reservation_date":{"type":"string"},"reservation_time":{"type":"string"},"guest_name":{"type":"string"},"guest_email":{"type":"string"},"special_requests":{"type":"string"}},"required":["attraction_id","number_of_people","reservation_date","reservation_time","guest_name","guest_email"]}`,
					RequiredCapabilities: []string{"booking"},
				},
				Handler: h.Prepare,
			},
			{
				Definition: Definition{
					Name:                 "confirm_restaurant_reservation",
					Description:          "Finalize a pending reservation and issue its confirmation number",
					InputSchema:          `{"type":"object","properties":{"reservation_id":{"type":"string"}},"required":["reservation_id"]}`,
					RequiredCapabilities: []string{"booking"},
				},
				Handler: h.Confirm,
			},
			{
				Definition: Definition{
					Name:                 "cancel_reservation",
					Description:          "Cancel a pending reservation",
					InputSchema:          `{"type":"object","properties":{"reservation_id":{"type":"string"}},"required":["reservation_id"]}`,
					RequiredCapabilities: []string{"booking"},
				},
				Handler: h.Cancel,
			},
			{
				Definition: Definition{
					Name:                 "get_reservation",
					Description:          "Look up a reservation by id",
					InputSchema:          `{"type":"object","properties":{"reservation_id":{"type":"string"}},"required":["reservation_id"]}`,
					RequiredCapabilities: []string{"booking"},
				},
				Handler: h.Get,
			},
			{
				Definition: Definition{
					Name:                 "list_reservations",
					Description:          "List all reservations still present in the store",
					InputSchema:          `{"type":"object","properties":{}}`,
					RequiredCapabilities: []string{"booking"},
				},
				Handler: h.List,
			},
		},
	}
}

type reservationHandlers struct {
	manager *reservation.Manager
}

type prepareReservationInput struct {
	AttractionID    int    `json:"attraction_id" validate:"required"`
	NumberOfPeople  int    `json:"number_of_people" validate:"required,gte=1"`
	ReservationDate string `json:"reservation_date" validate:"required"`
	ReservationTime string `json:"reservation_time" validate:"required"`
	GuestName       string `json:"guest_name" validate:"required"`
	GuestEmail      string `json:"guest_email" validate:"required,email"`
	SpecialRequests string `json:"special_requests"`
}

func (h *reservationHandlers) Prepare(ctx context.Context, callerID string, input json.RawMessage) (json.RawMessage, error) {
	var in prepareReservationInput
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}

	r, err := h.manager.Prepare(ctx, reservation.PrepareRequest{
		AttractionID:    in.AttractionID,
		NumberOfPeople:  in.NumberOfPeople,
		ReservationDate: in.ReservationDate,
		ReservationTime: in.ReservationTime,
		GuestName:       in.GuestName,
		GuestEmail:      in.GuestEmail,
		SpecialRequests: in.SpecialRequests,
	})
	if err != nil {
		return nil, err
	}
	return json.Marshal(r)
}

type reservationIDInput struct {
	ReservationID string `json:"reservation_id" validate:"required"`
}

func (h *reservationHandlers) Confirm(ctx context.Context, callerID string, input json.RawMessage) (json.RawMessage, error) {
	var in reservationIDInput
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}

	r, err := h.manager.Confirm(ctx, in.ReservationID)
	if errors.Is(err, reservation.ErrAlreadyConfirmed) {
		return json.Marshal(map[string]any{
			"reservation":       r,
			"already_confirmed": true,
		})
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(r)
}

func (h *reservationHandlers) Cancel(ctx context.Context, callerID string, input json.RawMessage) (json.RawMessage, error) {
	var in reservationIDInput
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}
	r, err := h.manager.Cancel(ctx, in.ReservationID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(r)
}

func (h *reservationHandlers) Get(ctx context.Context, callerID string, input json.RawMessage) (json.RawMessage, error) {
	var in reservationIDInput
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}
	r, err := h.manager.Get(ctx, in.ReservationID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(r)
}

func (h *reservationHandlers) List(ctx context.Context, callerID string, input json.RawMessage) (json.RawMessage, error) {
	all, err := h.manager.List(ctx)
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]any{"reservations": all})
}
