// ABOUTME: Tourism pack: destination search, attraction discovery, and recommendations.
// ABOUTME: Reads the embedded catalog; recommendation calls persist the supplied profile.

package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alpenstack/tour-gateway/internal/catalog"
	"github.com/alpenstack/tour-gateway/internal/recommend"
)

// TourismPack builds the attraction discovery and recommendation tools.
// Requires the "tourism" capability.
func TourismPack(repo *catalog.Repository, profiles *recommend.ProfileStore) *Pack {
	h := &tourismHandlers{repo: repo, profiles: profiles}
	return &Pack{
		ID: "tourism",
		Tools: []*Tool{
			{
				Definition: Definition{
					Name:                 "search_destinations",
					Description:          "Search travel destinations by name, country, or description",
					InputSchema:          `{"type":"object","properties":{"query":{"type":"string"}}}`,
					RequiredCapabilities: []string{"tourism"},
				},
				Handler: h.SearchDestinations,
			},
			{
				Definition: Definition{
					Name:                 "get_destination",
					Description:          "Get details for one destination by id",
					InputSchema:          `{"type":"object","properties":{"destination_id":{"type":"integer"}},"required":["destination_id"]}`,
					RequiredCapabilities: []string{"tourism"},
				},
				Handler: h.GetDestination,
			},
			{
				Definition: Definition{
					Name:                 "get_top_attractions",
					Description:          "List a destination's attractions, bookable ones first",
					InputSchema:          `{"type":"object","properties":{"destination_id":{"type":"integer"},"limit":{"type":"integer"}},"required":["destination_id"]}`,
					RequiredCapabilities: []string{"tourism"},
				},
				Handler: h.GetTopAttractions,
			},
			{
				Definition: Definition{
					Name:                 "get_attraction_details",
					Description:          "Get full details for one attraction by id",
					InputSchema:          `{"type":"object","properties":{"attraction_id":{"type":"integer"}},"required":["attraction_id"]}`,
					RequiredCapabilities: []string{"tourism"},
				},
				Handler: h.GetAttractionDetails,
			},
			{
				Definition: Definition{
					Name:                 "find_nearby_attractions",
					Description:          "Find attractions within a radius of a coordinate, closest first",
					InputSchema:          `{"type":"object","properties":{"latitude":{"type":"number"},"longitude":{"type":"number"},"radius_km":{"type":"number"},"limit":{"type":"integer"}},"required":["latitude","longitude"]}`,
					RequiredCapabilities: []string{"tourism"},
				},
				Handler: h.FindNearbyAttractions,
			},
			{
				Definition: Definition{
					Name:                 "get_restaurants_and_cafes",
					Description:          "List a destination's restaurants and cafes, cheapest first",
					InputSchema:          `{"type":"object","properties":{"destination_id":{"type":"integer"}},"required":["destination_id"]}`,
					RequiredCapabilities: []string{"tourism"},
				},
				Handler: h.GetRestaurantsAndCafes,
			},
			{
				Definition: Definition{
					Name:                 "recommend_attractions",
					Description:          "Recommend attractions in a destination scored against a traveller profile",
					InputSchema:          `{"type":"object","properties":{"destination_id":{"type":"integer"},"user_id":{"type":"string"},"preferences":{"type":"array","items":{"type":"string"}},"travel_type":{"type":"string","enum":["general","solo","family","romantic","business","adventure","cultural","budget","luxury"]},"age_group":{"type":"string","enum":["adult","child","teen","family","senior"]},"budget":{"type":"string","enum":["budget","moderate","luxury"]},"limit":{"type":"integer"}},"required":["destination_id","user_id"]}`,
					RequiredCapabilities: []string{"tourism"},
				},
				Handler: h.RecommendAttractions,
			},
		},
	}
}

type tourismHandlers struct {
	repo     *catalog.Repository
	profiles *recommend.ProfileStore
}

type searchDestinationsInput struct {
	Query string `json:"query"`
}

func (h *tourismHandlers) SearchDestinations(ctx context.Context, callerID string, input json.RawMessage) (json.RawMessage, error) {
	var in searchDestinationsInput
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}
	return json.Marshal(map[string]any{
		"destinations": h.repo.SearchDestinations(in.Query),
	})
}

type destinationInput struct {
	DestinationID int `json:"destination_id" validate:"required"`
}

func (h *tourismHandlers) GetDestination(ctx context.Context, callerID string, input json.RawMessage) (json.RawMessage, error) {
	var in destinationInput
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}
	d, ok := h.repo.Destination(in.DestinationID)
	if !ok {
		return nil, fmt.Errorf("destination %d not found", in.DestinationID)
	}
	return json.Marshal(d)
}

type topAttractionsInput struct {
	DestinationID int `json:"destination_id" validate:"required"`
	Limit         int `json:"limit" validate:"gte=0"`
}

func (h *tourismHandlers) GetTopAttractions(ctx context.Context, callerID string, input json.RawMessage) (json.RawMessage, error) {
	var in topAttractionsInput
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}
	if _, ok := h.repo.Destination(in.DestinationID); !ok {
		return nil, fmt.Errorf("destination %d not found", in.DestinationID)
	}
	return json.Marshal(map[string]any{
		"attractions": h.repo.TopAttractions(in.DestinationID, in.Limit),
	})
}

type attractionInput struct {
	AttractionID int `json:"attraction_id" validate:"required"`
}

func (h *tourismHandlers) GetAttractionDetails(ctx context.Context, callerID string, input json.RawMessage) (json.RawMessage, error) {
	var in attractionInput
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}
	a, ok := h.repo.Attraction(in.AttractionID)
	if !ok {
		return nil, fmt.Errorf("attraction %d not found", in.AttractionID)
	}
	return json.Marshal(a)
}

type nearbyInput struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
	RadiusKM  float64 `json:"radius_km" validate:"gte=0"`
	Limit     int     `json:"limit" validate:"gte=0"`
}

func (h *tourismHandlers) FindNearbyAttractions(ctx context.Context, callerID string, input json.RawMessage) (json.RawMessage, error) {
	var in nearbyInput
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}
	if in.RadiusKM == 0 {
		in.RadiusKM = 10
	}
	return json.Marshal(map[string]any{
		"results": h.repo.Nearby(in.Latitude, in.Longitude, in.RadiusKM, in.Limit),
	})
}

func (h *tourismHandlers) GetRestaurantsAndCafes(ctx context.Context, callerID string, input json.RawMessage) (json.RawMessage, error) {
	var in destinationInput
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}
	if _, ok := h.repo.Destination(in.DestinationID); !ok {
		return nil, fmt.Errorf("destination %d not found", in.DestinationID)
	}
	return json.Marshal(map[string]any{
		"venues": h.repo.RestaurantsAndCafes(in.DestinationID),
	})
}

type recommendInput struct {
	DestinationID int      `json:"destination_id" validate:"required"`
	UserID        string   `json:"user_id" validate:"required"`
	Preferences   []string `json:"preferences"`
	TravelType    string   `json:"travel_type"`
	AgeGroup      string   `json:"age_group"`
	Budget        string   `json:"budget"`
	Limit         int      `json:"limit" validate:"gte=0"`
}

func (h *tourismHandlers) RecommendAttractions(ctx context.Context, callerID string, input json.RawMessage) (json.RawMessage, error) {
	var in recommendInput
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}
	if _, ok := h.repo.Destination(in.DestinationID); !ok {
		return nil, fmt.Errorf("destination %d not found", in.DestinationID)
	}

	profile := recommend.Profile{
		UserID:      in.UserID,
		Preferences: in.Preferences,
		TravelType:  in.TravelType,
		AgeGroup:    in.AgeGroup,
		Budget:      in.Budget,
	}
	// Last write wins; the profile is stored as supplied, no merging.
	if err := h.profiles.Save(ctx, profile); err != nil {
		return nil, err
	}

	return json.Marshal(map[string]any{
		"recommendations": recommend.Recommend(h.repo, in.DestinationID, profile, in.Limit),
	})
}
