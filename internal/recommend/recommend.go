// ABOUTME: Weighted attraction scoring against traveller profiles.
// ABOUTME: Score = base 50 + preference/travel-type/age-group/budget terms, capped at 100.

// Package recommend ranks catalog attractions for a traveller profile using a
// weighted tag-overlap heuristic.
package recommend

import (
	"sort"
	"strings"

	"github.com/alpenstack/tour-gateway/internal/catalog"
)

// Profile describes a traveller's stated preferences. All fields are optional;
// zero values fall back to the neutral defaults (general travel, adult, moderate budget).
type Profile struct {
	UserID      string   `json:"user_id"`
	Preferences []string `json:"preferences,omitempty"`
	TravelType  string   `json:"travel_type,omitempty"`
	AgeGroup    string   `json:"age_group,omitempty"`
	Budget      string   `json:"budget,omitempty"`
}

// travelTypeTags maps a travel type to the attraction tags it favours.
// Unknown types contribute nothing.
var travelTypeTags = map[string][]string{
	"solo":      {"budget", "culture", "photography", "adventure"},
	"family":    {"family-friendly", "budget", "outdoor"},
	"romantic":  {"romantic", "luxury", "photography"},
	"business":  {"culture", "architecture"},
	"adventure": {"adventure", "outdoor", "sports", "nature"},
	"cultural":  {"culture", "history", "art", "architecture", "music"},
	"budget":    {"budget"},
	"luxury":    {"luxury", "romantic"},
}

// ageGroupTags maps an age group to favoured tags. "adult" and unknown groups
// contribute nothing.
var ageGroupTags = map[string][]string{
	"child":  {"family-friendly", "adventure", "outdoor"},
	"teen":   {"adventure", "sports", "outdoor", "photography"},
	"family": {"family-friendly", "budget"},
	"senior": {"culture", "history", "art", "architecture"},
}

// Scoring weights. Terms accumulate as floats and the total truncates to int.
const (
	baseScore        = 50
	preferenceWeight = 40
	travelWeight     = 20
	ageWeight        = 10
	budgetFullBonus  = 10
	budgetHalfBonus  = 5
	maxScore         = 100
)

func overlap(tags []string, wanted []string) int {
	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		set[t] = true
	}
	n := 0
	for _, w := range wanted {
		if set[w] {
			n++
		}
	}
	return n
}

// Score computes the match score of an attraction for a profile.
//
// The preference term divides by the profile's preference count, not by the
// number that exist in the tag vocabulary, so a preference no attraction
// carries permanently dilutes the term. That is the established behaviour and
// callers depend on the exact arithmetic.
func Score(a catalog.Attraction, p Profile) int {
	score := float64(baseScore)

	if len(p.Preferences) > 0 {
		score += float64(overlap(a.Tags, p.Preferences)) / float64(len(p.Preferences)) * preferenceWeight
	}

	if expected, ok := travelTypeTags[p.TravelType]; ok && len(expected) > 0 {
		score += float64(overlap(a.Tags, expected)) / float64(len(expected)) * travelWeight
	}

	if expected, ok := ageGroupTags[p.AgeGroup]; ok && len(expected) > 0 {
		score += float64(overlap(a.Tags, expected)) / float64(len(expected)) * ageWeight
	}

	switch p.Budget {
	case "budget":
		if overlap(a.Tags, []string{"budget"}) > 0 {
			score += budgetFullBonus
		}
	case "luxury":
		if overlap(a.Tags, []string{"luxury"}) > 0 {
			score += budgetFullBonus
		}
	case "moderate", "":
		score += budgetHalfBonus
	}

	if score > maxScore {
		return maxScore
	}
	return int(score)
}

// MatchedTags returns the attraction tags that appear in the profile's
// preferences, humanized ("family-friendly" becomes "Family friendly"),
// in the attraction's tag order.
func MatchedTags(a catalog.Attraction, p Profile) []string {
	if len(p.Preferences) == 0 {
		return nil
	}
	prefs := make(map[string]bool, len(p.Preferences))
	for _, pref := range p.Preferences {
		prefs[pref] = true
	}
	var out []string
	for _, tag := range a.Tags {
		if prefs[tag] {
			out = append(out, humanize(tag))
		}
	}
	return out
}

func humanize(tag string) string {
	s := strings.ReplaceAll(tag, "-", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Scored is an attraction annotated with its match score.
type Scored struct {
	catalog.Attraction
	MatchScore  int      `json:"match_score"`
	MatchedTags []string `json:"matched_tags"`
}

// DefaultLimit is the recommendation count when the caller does not specify one.
const DefaultLimit = 6

// Recommend scores every attraction of a destination and returns the top
// limit results, highest score first. Equal scores keep catalog order.
// limit <= 0 applies DefaultLimit.
func Recommend(repo *catalog.Repository, destinationID int, p Profile, limit int) []Scored {
	attractions := repo.ByDestination(destinationID)
	if len(attractions) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	out := make([]Scored, 0, len(attractions))
	for _, a := range attractions {
		out = append(out, Scored{
			Attraction:  a,
			MatchScore:  Score(a, p),
			MatchedTags: MatchedTags(a, p),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MatchScore > out[j].MatchScore
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
