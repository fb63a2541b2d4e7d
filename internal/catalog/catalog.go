// ABOUTME: Embedded destination and attraction catalog with lookup and search operations.
// ABOUTME: Data is compiled into the binary; the repository is immutable after load.

package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
)

//go:embed data/catalog.json
var dataFS embed.FS

// Destination is a place travellers visit, grouping a set of attractions.
type Destination struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Country     string  `json:"country"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// Attraction is a bookable or free point of interest within a destination.
// Price, currency, and booking details are only meaningful when Bookable is true.
type Attraction struct {
	ID              int      `json:"id"`
	Name            string   `json:"name"`
	Category        string   `json:"category"`
	Description     string   `json:"description"`
	Latitude        float64  `json:"latitude"`
	Longitude       float64  `json:"longitude"`
	DestinationID   int      `json:"destination_id"`
	Bookable        bool     `json:"bookable"`
	Price           float64  `json:"price"`
	Currency        string   `json:"currency"`
	DurationMinutes int      `json:"duration_minutes,omitempty"`
	OpeningHours    string   `json:"opening_hours,omitempty"`
	BookingDetails  string   `json:"booking_details,omitempty"`
	Tags            []string `json:"tags"`
}

// diningCategories are the attraction categories that accept table reservations.
var diningCategories = map[string]bool{
	"Restaurant": true,
	"Cafe":       true,
}

// IsDining reports whether the attraction accepts table reservations.
func (a *Attraction) IsDining() bool {
	return diningCategories[a.Category]
}

// Repository provides read-only access to the catalog. Safe for concurrent use.
type Repository struct {
	destinations  []Destination
	attractions   []Attraction
	destByID      map[int]*Destination
	attrByID      map[int]*Attraction
	attrsByDestID map[int][]*Attraction
}

// Load parses the embedded catalog and builds lookup indexes.
func Load() (*Repository, error) {
	raw, err := dataFS.ReadFile("data/catalog.json")
	if err != nil {
		return nil, fmt.Errorf("reading embedded catalog: %w", err)
	}

	var payload struct {
		Destinations []Destination `json:"destinations"`
		Attractions  []Attraction  `json:"attractions"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("parsing embedded catalog: %w", err)
	}

	r := &Repository{
		destinations:  payload.Destinations,
		attractions:   payload.Attractions,
		destByID:      make(map[int]*Destination, len(payload.Destinations)),
		attrByID:      make(map[int]*Attraction, len(payload.Attractions)),
		attrsByDestID: make(map[int][]*Attraction),
	}
	for i := range r.destinations {
		d := &r.destinations[i]
		if _, dup := r.destByID[d.ID]; dup {
			return nil, fmt.Errorf("duplicate destination id %d in catalog", d.ID)
		}
		r.destByID[d.ID] = d
	}
	for i := range r.attractions {
		a := &r.attractions[i]
		if _, dup := r.attrByID[a.ID]; dup {
			return nil, fmt.Errorf("duplicate attraction id %d in catalog", a.ID)
		}
		if _, ok := r.destByID[a.DestinationID]; !ok {
			return nil, fmt.Errorf("attraction %d references unknown destination %d", a.ID, a.DestinationID)
		}
		r.attrByID[a.ID] = a
		r.attrsByDestID[a.DestinationID] = append(r.attrsByDestID[a.DestinationID], a)
	}
	return r, nil
}

// Destinations returns all destinations in catalog order.
func (r *Repository) Destinations() []Destination {
	out := make([]Destination, len(r.destinations))
	copy(out, r.destinations)
	return out
}

// Destination looks up a destination by id.
func (r *Repository) Destination(id int) (Destination, bool) {
	d, ok := r.destByID[id]
	if !ok {
		return Destination{}, false
	}
	return *d, true
}

// DestinationByName looks up a destination by exact, case-insensitive name.
func (r *Repository) DestinationByName(name string) (Destination, bool) {
	for i := range r.destinations {
		if strings.EqualFold(r.destinations[i].Name, name) {
			return r.destinations[i], true
		}
	}
	return Destination{}, false
}

// SearchDestinations returns destinations whose name, country, or description
// contains the query, case-insensitively. An empty query matches everything.
func (r *Repository) SearchDestinations(query string) []Destination {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []Destination
	for i := range r.destinations {
		d := &r.destinations[i]
		if q == "" ||
			strings.Contains(strings.ToLower(d.Name), q) ||
			strings.Contains(strings.ToLower(d.Country), q) ||
			strings.Contains(strings.ToLower(d.Description), q) {
			out = append(out, *d)
		}
	}
	return out
}

// Attraction looks up an attraction by id.
func (r *Repository) Attraction(id int) (Attraction, bool) {
	a, ok := r.attrByID[id]
	if !ok {
		return Attraction{}, false
	}
	return *a, true
}

// ByDestination returns every attraction of a destination in catalog order.
func (r *Repository) ByDestination(destinationID int) []Attraction {
	src := r.attrsByDestID[destinationID]
	out := make([]Attraction, 0, len(src))
	for _, a := range src {
		out = append(out, *a)
	}
	return out
}

// TopAttractions returns up to limit attractions of a destination, bookable
// ones first, otherwise preserving catalog order. limit <= 0 means no limit.
func (r *Repository) TopAttractions(destinationID, limit int) []Attraction {
	out := r.ByDestination(destinationID)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Bookable && !out[j].Bookable
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// maxDiningResults caps RestaurantsAndCafes output.
const maxDiningResults = 6

// RestaurantsAndCafes returns a destination's dining venues, cheapest first,
// capped at six results.
func (r *Repository) RestaurantsAndCafes(destinationID int) []Attraction {
	var out []Attraction
	for _, a := range r.attrsByDestID[destinationID] {
		if a.IsDining() {
			out = append(out, *a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Price < out[j].Price
	})
	if len(out) > maxDiningResults {
		out = out[:maxDiningResults]
	}
	return out
}

// NearbyResult pairs an attraction with its distance from a search point.
type NearbyResult struct {
	Attraction Attraction `json:"attraction"`
	DistanceKM float64    `json:"distance_km"`
}

// Nearby returns attractions within radiusKM of the given point, closest
// first, at most limit results. limit <= 0 means no limit.
func (r *Repository) Nearby(lat, lon, radiusKM float64, limit int) []NearbyResult {
	var out []NearbyResult
	for i := range r.attractions {
		a := &r.attractions[i]
		d := haversineKM(lat, lon, a.Latitude, a.Longitude)
		if d <= radiusKM {
			out = append(out, NearbyResult{Attraction: *a, DistanceKM: d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceKM < out[j].DistanceKM
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

const earthRadiusKM = 6371.0

// haversineKM computes the great-circle distance between two points in km.
func haversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	rLat1 := lat1 * math.Pi / 180
	rLat2 := lat2 * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKM * c
}
