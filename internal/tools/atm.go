// ABOUTME: ATM pack: nearby cash machine lookup through the signed locations API.
// ABOUTME: One tool wrapping the OAuth-signed ATM search.

package tools

import (
	"context"
	"encoding/json"

	"github.com/alpenstack/tour-gateway/internal/mastercard"
)

// ATMPack builds the ATM lookup tool. Requires the "finance" capability.
func ATMPack(client *mastercard.Client) *Pack {
	h := &atmHandlers{client: client}
	return &Pack{
		ID: "atm",
		Tools: []*Tool{
			{
				Definition: Definition{
					Name:                 "find_nearby_atms",
					Description:          "Find ATMs near a coordinate or postal address",
					InputSchema:          `{"type":"object","properties":{"latitude":{"type":"number"},"longitude":{"type":"number"},"postal_code":{"type":"string"},"country_code":{"type":"string"},"city":{"type":"string"},"limit":{"type":"integer"},"offset":{"type":"integer"},"distance":{"type":"integer"},"distance_unit":{"type":"string","enum":["km","mile"]}}}`,
					RequiredCapabilities: []string{"finance"},
				},
				Handler: h.FindNearbyATMs,
			},
		},
	}
}

type atmHandlers struct {
	client *mastercard.Client
}

type findATMsInput struct {
	Latitude     float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude    float64 `json:"longitude" validate:"gte=-180,lte=180"`
	PostalCode   string  `json:"postal_code"`
	CountryCode  string  `json:"country_code"`
	City         string  `json:"city"`
	Limit        int     `json:"limit" validate:"gte=0"`
	Offset       int     `json:"offset" validate:"gte=0"`
	Distance     int     `json:"distance" validate:"gte=0"`
	DistanceUnit string  `json:"distance_unit" validate:"omitempty,oneof=km mile"`
}

func (h *atmHandlers) FindNearbyATMs(ctx context.Context, callerID string, input json.RawMessage) (json.RawMessage, error) {
	var in findATMsInput
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}

	resp, err := h.client.SearchATMs(ctx, mastercard.ATMSearchRequest{
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		PostalCode:   in.PostalCode,
		CountryCode:  in.CountryCode,
		City:         in.City,
		Limit:        in.Limit,
		Offset:       in.Offset,
		Distance:     in.Distance,
		DistanceUnit: in.DistanceUnit,
	})
	if err != nil {
		return nil, err
	}
	return json.Marshal(resp)
}
