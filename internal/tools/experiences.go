// ABOUTME: Experiences pack: DSAPI searches, filters, products, availability, shopping lists.
// ABOUTME: Provider JSON passes through untouched; this layer validates arguments and shapes calls.

package tools

import (
	"context"
	"encoding/json"

	"github.com/alpenstack/tour-gateway/internal/dsapi"
)

// ExperiencesPack builds the experience booking tools. Requires the
// "experiences" capability.
func ExperiencesPack(client *dsapi.Client) *Pack {
	h := &experienceHandlers{client: client}
	return &Pack{
		ID: "experiences",
		Tools: []*Tool{
			{
				Definition: Definition{
					Name:                 "create_experience_search",
					Description:          "Open a date-bounded availability search for experiences",
					InputSchema:          `{"type":"object","properties":{"date_from":{"type":"string"},"date_to":{"type":"string"}},"required":["date_from","date_to"]}`,
					RequiredCapabilities: []string{"experiences"},
				},
				Handler: h.CreateSearch,
			},
			{
				Definition: Definition{
					Name:                 "update_experience_search",
					Description:          "Re-date an existing experience search",
					InputSchema:          `{"type":"object","properties":{"search_id":{"type":"string"},"date_from":{"type":"string"},"date_to":{"type":"string"}},"required":["search_id","date_from","date_to"]}`,
					RequiredCapabilities: []string{"experiences"},
				},
				Handler: h.UpdateSearch,
			},
			{
				Definition: Definition{
					Name:                 "create_experience_filter",
					Description:          "Register a filter narrowing experiences by type, location, theme, or guest card",
					InputSchema:          `{"type":"object","properties":{"types":{"type":"array","items":{"type":"string"}},"locations":{"type":"array","items":{"type":"string"}},"holiday_themes":{"type":"array","items":{"type":"string"}},"guest_cards":{"type":"array","items":{"type":"string"}},"name":{"type":"string"}}}`,
					RequiredCapabilities: []string{"experiences"},
				},
				Handler: h.CreateFilter,
			},
			{
				Definition: Definition{
					Name:                 "update_experience_filter",
					Description:          "Replace an existing filter's criteria",
					InputSchema:          `{"type":"object","properties":{"filter_id":{"type":"string"},"types":{"type":"array","items":{"type":"string"}},"locations":{"type":"array","items":{"type":"string"}},"holiday_themes":{"type":"array","items":{"type":"string"}},"guest_cards":{"type":"array","items":{"type":"string"}},"name":{"type":"string"}},"required":["filter_id"]}`,
					RequiredCapabilities: []string{"experiences"},
				},
				Handler: h.UpdateFilter,
			},
			{
				Definition: Definition{
					Name:                 "get_filter_options",
					Description:          "List the facet values available under a filter",
					InputSchema:          `{"type":"object","properties":{"filter_id":{"type":"string"},"language":{"type":"string"}},"required":["filter_id"]}`,
					RequiredCapabilities: []string{"experiences"},
				},
				Handler: h.GetFilterOptions,
			},
			{
				Definition: Definition{
					Name:                 "list_experiences",
					Description:          "List experiences matching a filter without date constraints",
					InputSchema:          `{"type":"object","properties":{"filter_id":{"type":"string"},"language":{"type":"string"},"currency":{"type":"string"},"page_no":{"type":"integer"},"page_size":{"type":"integer"}},"required":["filter_id"]}`,
					RequiredCapabilities: []string{"experiences"},
				},
				Handler: h.ListExperiences,
			},
			{
				Definition: Definition{
					Name:                 "search_experiences",
					Description:          "List experiences matching a filter within a search's date window",
					InputSchema:          `{"type":"object","properties":{"search_id":{"type":"string"},"filter_id":{"type":"string"},"language":{"type":"string"},"currency":{"type":"string"},"page_no":{"type":"integer"},"page_size":{"type":"integer"}},"required":["search_id","filter_id"]}`,
					RequiredCapabilities: []string{"experiences"},
				},
				Handler: h.SearchExperiences,
			},
			{
				Definition: Definition{
					Name:                 "get_service_products",
					Description:          "List the products of one service provider's service",
					InputSchema:          `{"type":"object","properties":{"sp_identity":{"type":"string"},"service_id":{"type":"string"},"filter_id":{"type":"string"},"language":{"type":"string"},"currency":{"type":"string"}},"required":["sp_identity","service_id","filter_id"]}`,
					RequiredCapabilities: []string{"experiences"},
				},
				Handler: h.GetServiceProducts,
			},
			{
				Definition: Definition{
					Name:                 "get_product_availability",
					Description:          "Get day-by-day bookability for one service within a search window",
					InputSchema:          `{"type":"object","properties":{"sp_identity":{"type":"string"},"service_id":{"type":"string"},"search_id":{"type":"string"},"filter_id":{"type":"string"},"language":{"type":"string"},"currency":{"type":"string"}},"required":["sp_identity","service_id","search_id","filter_id"]}`,
					RequiredCapabilities: []string{"experiences"},
				},
				Handler: h.GetProductAvailability,
			},
			{
				Definition: Definition{
					Name:                 "create_shopping_list",
					Description:          "Open an empty provider-side shopping list",
					InputSchema:          `{"type":"object","properties":{}}`,
					RequiredCapabilities: []string{"experiences"},
				},
				Handler: h.CreateShoppingList,
			},
			{
				Definition: Definition{
					Name:                 "add_to_shopping_list",
					Description:          "Append experience items to an existing shopping list",
					InputSchema:          `{"type":"object","properties":{"shopping_list_id":{"type":"string"},"add_service_items":{"type":"array","items":{"type":"object"}}},"required":["shopping_list_id"]}`,
					RequiredCapabilities: []string{"experiences"},
				},
				Handler: h.AddToShoppingList,
			},
		},
	}
}

type experienceHandlers struct {
	client *dsapi.Client
}

type createSearchInput struct {
	DateFrom string `json:"date_from" validate:"required"`
	DateTo   string `json:"date_to" validate:"required"`
}

func (h *experienceHandlers) CreateSearch(ctx context.Context, callerID string, input json.RawMessage) (json.RawMessage, error) {
	var in createSearchInput
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}
	return h.client.CreateSearch(ctx, in.DateFrom, in.DateTo)
}

type updateSearchInput struct {
	SearchID string `json:"search_id" validate:"required"`
	DateFrom string `json:"date_from" validate:"required"`
	DateTo   string `json:"date_to" validate:"required"`
}

func (h *experienceHandlers) UpdateSearch(ctx context.Context, callerID string, input json.RawMessage) (json.RawMessage, error) {
	var in updateSearchInput
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}
	return h.client.UpdateSearch(ctx, in.SearchID, in.DateFrom, in.DateTo)
}

type filterInput struct {
	Types         []string `json:"types"`
	Locations     []string `json:"locations"`
	HolidayThemes []string `json:"holiday_themes"`
	GuestCards    []string `json:"guest_cards"`
	Name          string   `json:"name"`
}

func (in filterInput) params() dsapi.FilterParams {
	return dsapi.FilterParams{
		Types:         in.Types,
		Locations:     in.Locations,
		HolidayThemes: in.HolidayThemes,
		GuestCards:    in.GuestCards,
		Name:          in.Name,
	}
}

func (h *experienceHandlers) CreateFilter(ctx context.Context, callerID string, input json.RawMessage) (json.RawMessage, error) {
	var in filterInput
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}
	return h.client.CreateFilter(ctx, in.params())
}

type updateFilterInput struct {
	filterInput
	FilterID string `json:"filter_id" validate:"required"`
}

func (h *experienceHandlers) UpdateFilter(ctx context.Context, callerID string, input json.RawMessage) (json.RawMessage, error) {
	var in updateFilterInput
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}
	return h.client.UpdateFilter(ctx, in.FilterID, in.params())
}

type filterOptionsInput struct {
	FilterID string `json:"filter_id" validate:"required"`
	Language string `json:"language"`
}

func (h *experienceHandlers) GetFilterOptions(ctx context.Context, callerID string, input json.RawMessage) (json.RawMessage, error) {
	var in filterOptionsInput
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}
	return h.client.GetFilterOptions(ctx, in.FilterID, in.Language)
}

type listExperiencesInput struct {
	FilterID string `json:"filter_id" validate:"required"`
	Language string `json:"language"`
	Currency string `json:"currency"`
	PageNo   int    `json:"page_no" validate:"gte=0"`
	PageSize int    `json:"page_size" validate:"gte=0"`
}

func (h *experienceHandlers) ListExperiences(ctx context.Context, callerID string, input json.RawMessage) (json.RawMessage, error) {
	var in listExperiencesInput
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}
	return h.client.ListExperiences(ctx, in.FilterID, in.Language, in.Currency, in.PageNo, in.PageSize)
}

type searchExperiencesInput struct {
	SearchID string `json:"search_id" validate:"required"`
	FilterID string `json:"filter_id" validate:"required"`
	Language string `json:"language"`
	Currency string `json:"currency"`
	PageNo   int    `json:"page_no" validate:"gte=0"`
	PageSize int    `json:"page_size" validate:"gte=0"`
}

func (h *experienceHandlers) SearchExperiences(ctx context.Context, callerID string, input json.RawMessage) (json.RawMessage, error) {
	var in searchExperiencesInput
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}
	return h.client.SearchExperiences(ctx, in.SearchID, in.FilterID, in.Language, in.Currency, in.PageNo, in.PageSize)
}

type serviceProductsInput struct {
	SpIdentity string `json:"sp_identity" validate:"required"`
	ServiceID  string `json:"service_id" validate:"required"`
	FilterID   string `json:"filter_id" validate:"required"`
	Language   string `json:"language"`
	Currency   string `json:"currency"`
}

func (h *experienceHandlers) GetServiceProducts(ctx context.Context, callerID string, input json.RawMessage) (json.RawMessage, error) {
	var in serviceProductsInput
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}
	return h.client.GetServiceProducts(ctx, in.SpIdentity, in.ServiceID, in.FilterID, in.Language, in.Currency)
}

type productAvailabilityInput struct {
	SpIdentity string `json:"sp_identity" validate:"required"`
	ServiceID  string `json:"service_id" validate:"required"`
	SearchID   string `json:"search_id" validate:"required"`
	FilterID   string `json:"filter_id" validate:"required"`
	Language   string `json:"language"`
	Currency   string `json:"currency"`
}

func (h *experienceHandlers) GetProductAvailability(ctx context.Context, callerID string, input json.RawMessage) (json.RawMessage, error) {
	var in productAvailabilityInput
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}
	return h.client.GetProductAvailability(ctx, in.SpIdentity, in.ServiceID, in.SearchID, in.FilterID, in.Language, in.Currency)
}

func (h *experienceHandlers) CreateShoppingList(ctx context.Context, callerID string, input json.RawMessage) (json.RawMessage, error) {
	return h.client.CreateShoppingList(ctx)
}

type addToShoppingListInput struct {
	ShoppingListID  string           `json:"shopping_list_id" validate:"required"`
	AddServiceItems []map[string]any `json:"add_service_items"`
}

func (h *experienceHandlers) AddToShoppingList(ctx context.Context, callerID string, input json.RawMessage) (json.RawMessage, error) {
	var in addToShoppingListInput
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}
	return h.client.AddToShoppingList(ctx, in.ShoppingListID, dsapi.ShoppingListItems{
		AddServiceItems: in.AddServiceItems,
	})
}
