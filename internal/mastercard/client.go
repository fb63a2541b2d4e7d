// ABOUTME: ATM location search client for the Mastercard Locations API.
// ABOUTME: Sends signed POST searches and decodes JSON or XML response bodies.

package mastercard

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const atmSearchPath = "/locations/atms/searches"

// APIError is a non-200 response from the Locations API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mastercard api error: status %d: %s", e.Status, e.Body)
}

// ATMSearchRequest describes one ATM search. Latitude/Longitude or
// PostalCode+CountryCode anchor the search; the paging fields map onto query
// parameters.
type ATMSearchRequest struct {
	Latitude     float64
	Longitude    float64
	PostalCode   string
	CountryCode  string
	City         string
	Limit        int
	Offset       int
	Distance     int
	DistanceUnit string
}

// hasCoordinates reports whether the request anchors on a geographic point.
func (r ATMSearchRequest) hasCoordinates() bool {
	return r.Latitude != 0 || r.Longitude != 0
}

// ATMSearchResponse is the decoded search result. The same shape is produced
// from both the JSON and the XML wire forms.
type ATMSearchResponse struct {
	PageOffset string `xml:"PageOffset"`
	TotalCount string `xml:"TotalCount"`
	Atms       []ATM  `xml:"Atm"`
}

// jsonATMEnvelope is the JSON wire form: the ATM list nests under Atms.Atm
// and the counters may arrive as numbers.
type jsonATMEnvelope struct {
	PageOffset json.Number `json:"PageOffset"`
	TotalCount json.Number `json:"TotalCount"`
	Atms       struct {
		Atm []ATM `json:"Atm"`
	} `json:"Atms"`
}

func (e jsonATMEnvelope) toResponse() *ATMSearchResponse {
	return &ATMSearchResponse{
		PageOffset: e.PageOffset.String(),
		TotalCount: e.TotalCount.String(),
		Atms:       e.Atms.Atm,
	}
}

// ATM is one machine in a search result.
type ATM struct {
	Location           ATMLocation `json:"Location" xml:"Location"`
	HandicapAccessible string      `json:"HandicapAccessible" xml:"HandicapAccessible"`
	Camera             string      `json:"Camera" xml:"Camera"`
	Availability       string      `json:"Availability" xml:"Availability"`
	AccessFees         string      `json:"AccessFees" xml:"AccessFees"`
	Owner              string      `json:"Owner" xml:"Owner"`
	SharedDeposit      string      `json:"SharedDeposit" xml:"SharedDeposit"`
	Sponsor            string      `json:"Sponsor" xml:"Sponsor"`
	SupportEMV         string      `json:"SupportEMV" xml:"SupportEMV"`
}

// ATMLocation is the venue half of an ATM record.
type ATMLocation struct {
	Name         string     `json:"Name" xml:"Name"`
	Distance     string     `json:"Distance" xml:"Distance"`
	DistanceUnit string     `json:"DistanceUnit" xml:"DistanceUnit"`
	Address      ATMAddress `json:"Address" xml:"Address"`
	Point        ATMPoint   `json:"Point" xml:"Point"`
	LocationType struct {
		Type string `json:"Type" xml:"Type"`
	} `json:"LocationType" xml:"LocationType"`
}

// ATMAddress is a postal address with country subdivision detail.
type ATMAddress struct {
	Line1              string       `json:"Line1" xml:"Line1"`
	Line2              string       `json:"Line2" xml:"Line2"`
	City               string       `json:"City" xml:"City"`
	PostalCode         string       `json:"PostalCode" xml:"PostalCode"`
	CountrySubdivision ATMNamedCode `json:"CountrySubdivision" xml:"CountrySubdivision"`
	Country            ATMNamedCode `json:"Country" xml:"Country"`
}

// ATMNamedCode pairs a display name with its code.
type ATMNamedCode struct {
	Name string `json:"Name" xml:"Name"`
	Code string `json:"Code" xml:"Code"`
}

// ATMPoint is a geographic coordinate pair, kept as strings per the wire form.
type ATMPoint struct {
	Latitude  string `json:"Latitude" xml:"Latitude"`
	Longitude string `json:"Longitude" xml:"Longitude"`
}

// Client calls the Locations API with signed requests.
type Client struct {
	baseURL string
	signer  *Signer
	http    *http.Client
	logger  *slog.Logger
}

// NewClient builds a Client for the given API base URL. httpClient may be nil
// for a default with a 30-second timeout.
func NewClient(baseURL string, signer *Signer, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		signer:  signer,
		http:    httpClient,
		logger:  slog.With("component", "mastercard"),
	}
}

// SearchATMs runs one ATM search. Paging and distance ride as query
// parameters; the location anchor travels in the JSON body. Both halves are
// bound into the OAuth signature.
func (c *Client) SearchATMs(ctx context.Context, req ATMSearchRequest) (*ATMSearchResponse, error) {
	query := url.Values{}
	if req.Limit > 0 {
		query.Set("limit", strconv.Itoa(req.Limit))
	}
	if req.Offset > 0 {
		query.Set("offset", strconv.Itoa(req.Offset))
	}
	if req.Distance > 0 {
		query.Set("distance", strconv.Itoa(req.Distance))
	}
	if req.DistanceUnit != "" {
		query.Set("distance_unit", req.DistanceUnit)
	}

	// Coordinate values travel as strings on the wire.
	body := map[string]string{}
	if req.hasCoordinates() {
		body["latitude"] = strconv.FormatFloat(req.Latitude, 'f', -1, 64)
		body["longitude"] = strconv.FormatFloat(req.Longitude, 'f', -1, 64)
	}
	if req.PostalCode != "" {
		body["postalCode"] = req.PostalCode
	}
	if req.CountryCode != "" {
		body["countryCode"] = req.CountryCode
	}
	if req.City != "" {
		body["city"] = req.City
	}

	raw, err := c.post(ctx, atmSearchPath, query, body)
	if err != nil {
		return nil, err
	}
	return decodeATMResponse(raw)
}

// post signs and issues one POST, returning the raw response body.
func (c *Client) post(ctx context.Context, path string, query url.Values, body map[string]string) (rawResponse, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return rawResponse{}, fmt.Errorf("encoding request body: %w", err)
	}

	auth, err := c.signer.Authorization(http.MethodPost, fullURL, payload)
	if err != nil {
		return rawResponse{}, fmt.Errorf("signing request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(payload))
	if err != nil {
		return rawResponse{}, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Authorization", auth)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return rawResponse{}, fmt.Errorf("calling locations api: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return rawResponse{}, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("locations api request failed",
			"url", fullURL,
			"status", resp.StatusCode)
		return rawResponse{}, &APIError{Status: resp.StatusCode, Body: string(data)}
	}

	return rawResponse{
		contentType: resp.Header.Get("Content-Type"),
		body:        data,
	}, nil
}

type rawResponse struct {
	contentType string
	body        []byte
}

// decodeATMResponse decodes by declared content type, falling back from JSON
// to XML when the server omits one.
func decodeATMResponse(raw rawResponse) (*ATMSearchResponse, error) {
	fromJSON := func() (*ATMSearchResponse, error) {
		var env jsonATMEnvelope
		if err := json.Unmarshal(raw.body, &env); err != nil {
			return nil, err
		}
		return env.toResponse(), nil
	}
	fromXML := func() (*ATMSearchResponse, error) {
		var out ATMSearchResponse
		if err := xml.Unmarshal(raw.body, &out); err != nil {
			return nil, err
		}
		return &out, nil
	}

	switch {
	case strings.Contains(raw.contentType, "xml"):
		out, err := fromXML()
		if err != nil {
			return nil, fmt.Errorf("decoding xml response: %w", err)
		}
		return out, nil
	case strings.Contains(raw.contentType, "json"):
		out, err := fromJSON()
		if err != nil {
			return nil, fmt.Errorf("decoding json response: %w", err)
		}
		return out, nil
	default:
		out, err := fromJSON()
		if err == nil {
			return out, nil
		}
		out, xmlErr := fromXML()
		if xmlErr != nil {
			return nil, fmt.Errorf("decoding response: %w", err)
		}
		return out, nil
	}
}
