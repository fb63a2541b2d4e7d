// ABOUTME: Client for the DSAPI experience booking service (searches, filters, products, shopping lists).
// ABOUTME: Authenticates with username/password for a bearer token cached in the TTL store.

// Package dsapi wraps the destination-system API for bookable experiences.
// All read endpoints return the provider's JSON untouched; this client owns
// authentication, session headers, and URL construction.
package dsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/alpenstack/tour-gateway/internal/ttlstore"
)

// tokenTTL is how long an issued bearer token stays cached.
const tokenTTL = 8 * time.Hour

const (
	defaultLanguage   = "de"
	defaultCurrency   = "EUR"
	defaultPageSize   = 5000
	defaultThemeLimit = 50
)

// APIError is a non-2xx response from DSAPI.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("dsapi error: status %d: %s", e.Status, e.Body)
}

// Config carries the connection settings for one DSAPI tenant.
type Config struct {
	BaseURL    string
	Username   string
	Password   string
	Region     string
	DBCode     string
	ThemeLimit int
}

// Client issues authenticated DSAPI requests. Safe for concurrent use; the
// bearer token is fetched lazily and shared via the TTL store.
type Client struct {
	cfg        Config
	themeLimit string
	store      ttlstore.Store
	http       *http.Client
	logger     *slog.Logger

	mu    sync.Mutex
	token string
}

// NewClient builds a Client. httpClient may be nil for a default with a
// 30-second timeout.
func NewClient(cfg Config, store ttlstore.Store, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.ThemeLimit <= 0 {
		cfg.ThemeLimit = defaultThemeLimit
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		cfg:        cfg,
		themeLimit: strconv.Itoa(cfg.ThemeLimit),
		store:      store,
		http:       httpClient,
		logger:     slog.With("component", "dsapi"),
	}
}

func (c *Client) tokenCacheKey() string {
	return "dsapi_token_" + c.cfg.Username
}

// ensureToken returns a valid bearer token, authenticating if the cache is cold.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" {
		return c.token, nil
	}

	var cached string
	ok, err := ttlstore.GetJSON(ctx, c.store, c.tokenCacheKey(), &cached)
	if err != nil {
		return "", fmt.Errorf("loading cached token: %w", err)
	}
	if ok && cached != "" {
		c.token = cached
		return cached, nil
	}

	if c.cfg.Username == "" || c.cfg.Password == "" {
		return "", fmt.Errorf("dsapi credentials not configured")
	}

	// Credentials travel as query parameters, not a JSON body.
	authURL := c.cfg.BaseURL + "/Auth?" + url.Values{
		"username": {c.cfg.Username},
		"password": {c.cfg.Password},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, authURL, nil)
	if err != nil {
		return "", fmt.Errorf("building auth request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("authenticating: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading auth response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	// The token arrives either as {"token": "..."} or as the bare body.
	token := strings.TrimSpace(string(body))
	var parsed struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Token != "" {
		token = parsed.Token
	}

	if err := ttlstore.PutJSON(ctx, c.store, c.tokenCacheKey(), token, tokenTTL); err != nil {
		return "", fmt.Errorf("caching token: %w", err)
	}
	c.token = token
	c.logger.Info("dsapi token refreshed", "username", c.cfg.Username)
	return token, nil
}

// do issues one authenticated request and returns the raw JSON response.
func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, body any) (json.RawMessage, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	fullURL := c.cfg.BaseURL + endpoint
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("DW-SessionId", token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling dsapi: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("dsapi request failed",
			"method", method,
			"endpoint", endpoint,
			"status", resp.StatusCode)
		return nil, &APIError{Status: resp.StatusCode, Body: string(data)}
	}
	return json.RawMessage(data), nil
}

// CreateSearch opens a date-bounded availability search and returns its id.
func (c *Client) CreateSearch(ctx context.Context, dateFrom, dateTo string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/searches", nil, map[string]any{
		"searchObject": map[string]any{
			"searchGeneral": map[string]string{
				"dateFrom": dateFrom,
				"dateTo":   dateTo,
			},
		},
	})
}

// UpdateSearch re-dates an existing search.
func (c *Client) UpdateSearch(ctx context.Context, searchID, dateFrom, dateTo string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPut, "/searches/"+searchID, nil, map[string]any{
		"searchObject": map[string]any{
			"id": searchID,
			"searchGeneral": map[string]string{
				"dateFrom": dateFrom,
				"dateTo":   dateTo,
			},
		},
	})
}

// FilterParams narrows the experience listing. Nil slices leave a dimension
// unconstrained.
type FilterParams struct {
	Types         []string
	Locations     []string
	HolidayThemes []string
	GuestCards    []string
	Name          string
}

const nilFilterID = "00000000-0000-0000-0000-000000000000"

func filterBody(id string, p FilterParams) map[string]any {
	return map[string]any{
		"filterObject": map[string]any{
			"id":            id,
			"filterGeneral": struct{}{},
			"filterAddServices": map[string]any{
				"types":         p.Types,
				"holidayThemes": p.HolidayThemes,
				"locations":     p.Locations,
				"guestCards":    p.GuestCards,
				"name":          p.Name,
			},
		},
	}
}

// CreateFilter registers a new experience filter.
func (c *Client) CreateFilter(ctx context.Context, p FilterParams) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/filters", nil, filterBody(nilFilterID, p))
}

// UpdateFilter replaces an existing filter's criteria.
func (c *Client) UpdateFilter(ctx context.Context, filterID string, p FilterParams) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPut, "/filters/"+filterID, nil, filterBody(filterID, p))
}

// GetFilterOptions returns the facet values (types, themes, locations, guest
// cards) available under a filter.
func (c *Client) GetFilterOptions(ctx context.Context, filterID, language string) (json.RawMessage, error) {
	if language == "" {
		language = defaultLanguage
	}
	fields := strings.Join([]string{
		"types{id,name,count}",
		"holidayThemes{id,name,count}",
		"locations(locTypes:[3]){id,name,count}",
		"guestCards{id,name,count,type,typeId,iconUrl,webLink}",
	}, ",")

	endpoint := fmt.Sprintf("/addservices/%s/%s/filterresults/%s", c.cfg.Region, language, filterID)
	return c.do(ctx, http.MethodGet, endpoint, url.Values{
		"fields":           {fields},
		"limAddSrvTHEME":   {c.themeLimit},
		"limExAccShSPwoPr": {"false"},
	}, nil)
}

// ListExperiences pages through all experiences matching a filter, without
// date constraints.
func (c *Client) ListExperiences(ctx context.Context, filterID, language, currency string, pageNo, pageSize int) (json.RawMessage, error) {
	if language == "" {
		language = defaultLanguage
	}
	if currency == "" {
		currency = defaultCurrency
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	endpoint := fmt.Sprintf("/addservices/%s/%s/", c.cfg.Region, language)
	return c.do(ctx, http.MethodGet, endpoint, url.Values{
		"filterId": {filterID},
		"currency": {currency},
		"pageNo":   {strconv.Itoa(pageNo)},
		"pageSize": {strconv.Itoa(pageSize)},
	}, nil)
}

// SearchExperiences lists experiences matching a filter within a search's
// date window.
func (c *Client) SearchExperiences(ctx context.Context, searchID, filterID, language, currency string, pageNo, pageSize int) (json.RawMessage, error) {
	if language == "" {
		language = defaultLanguage
	}
	if currency == "" {
		currency = defaultCurrency
	}
	if pageNo <= 0 {
		pageNo = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	endpoint := fmt.Sprintf("/addservices/%s/%s/searchresults/%s", c.cfg.Region, language, searchID)
	return c.do(ctx, http.MethodGet, endpoint, url.Values{
		"filterId": {filterID},
		"currency": {currency},
		"pageNo":   {strconv.Itoa(pageNo)},
		"pageSize": {strconv.Itoa(pageSize)},
	}, nil)
}

// GetServiceProducts lists the products of one service provider's service.
func (c *Client) GetServiceProducts(ctx context.Context, spIdentity, serviceID, filterID, language, currency string) (json.RawMessage, error) {
	if language == "" {
		language = defaultLanguage
	}
	if currency == "" {
		currency = defaultCurrency
	}
	endpoint := fmt.Sprintf("/addservices/%s/%s/%s/%s/services/%s/products",
		c.cfg.Region, language, c.cfg.DBCode, spIdentity, serviceID)
	return c.do(ctx, http.MethodGet, endpoint, url.Values{
		"fields":           {"id,name,isFreeBookable,price{from,to,insteadFrom,insteadTo}"},
		"currency":         {currency},
		"limAddSrvTHEME":   {c.themeLimit},
		"limExAccShSPwoPr": {"false"},
		"filterId":         {filterID},
	}, nil)
}

// availabilityFields selects per-date booking info including the full
// cancellation policy tree.
const availabilityFields = "id,name,isFreeBookable,isOwnAvailability," +
	"priceChoosableByGuest{active,minPrice,maxPrice}," +
	"bookInfo{date,startTime,duration,price,insteadPrice,availability," +
	"isBookable,isBookableOnRequest,isOfferable," +
	"paymentCancellationPolicy{cancellationPolicy{" +
	"cancellationTextType,defaultHeaderTextNumber,hasFreeCancellation," +
	"lastFreeDate,lastFreeTime," +
	"textLines{cancellationCalculationType,cancellationNights,cancellationPercentage," +
	"defaultTextNumber,hasFreeTime,freeTime,cancellationDate}}}}"

// GetProductAvailability returns day-by-day bookability for one service
// within a search window.
func (c *Client) GetProductAvailability(ctx context.Context, spIdentity, serviceID, searchID, filterID, language, currency string) (json.RawMessage, error) {
	if language == "" {
		language = defaultLanguage
	}
	if currency == "" {
		currency = defaultCurrency
	}
	endpoint := fmt.Sprintf("/addservices/%s/%s/%s/%s/services/%s/searchresults/%s",
		c.cfg.Region, language, c.cfg.DBCode, spIdentity, serviceID, searchID)
	return c.do(ctx, http.MethodGet, endpoint, url.Values{
		"filterId":         {filterID},
		"fields":           {availabilityFields},
		"currency":         {currency},
		"limAddSrvTHEME":   {c.themeLimit},
		"limExAccShSPwoPr": {"false"},
	}, nil)
}

// CreateShoppingList opens an empty provider-side shopping list.
func (c *Client) CreateShoppingList(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/shoppinglist/"+c.cfg.Region, nil, nil)
}

// ShoppingListItems groups the item kinds accepted by AddToShoppingList.
// Empty slices are sent as empty arrays, which the provider requires.
type ShoppingListItems struct {
	AddServiceItems    []map[string]any `json:"addServiceItems"`
	AccommodationItems []map[string]any `json:"accommodationItems"`
	BrochureItems      []map[string]any `json:"brochureItems"`
	PackageItems       []map[string]any `json:"packageItems"`
	TourItems          []map[string]any `json:"tourItems"`
}

func (s ShoppingListItems) normalized() ShoppingListItems {
	ensure := func(v []map[string]any) []map[string]any {
		if v == nil {
			return []map[string]any{}
		}
		return v
	}
	return ShoppingListItems{
		AddServiceItems:    ensure(s.AddServiceItems),
		AccommodationItems: ensure(s.AccommodationItems),
		BrochureItems:      ensure(s.BrochureItems),
		PackageItems:       ensure(s.PackageItems),
		TourItems:          ensure(s.TourItems),
	}
}

// AddToShoppingList appends items to an existing shopping list.
func (c *Client) AddToShoppingList(ctx context.Context, shoppingListID string, items ShoppingListItems) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("/shoppinglist/%s/%s/items/add", c.cfg.Region, shoppingListID)
	return c.do(ctx, http.MethodPost, endpoint, nil, items.normalized())
}
