// ABOUTME: Tests for the recommendation scorer and profile store.
// ABOUTME: Pins the exact scoring arithmetic, ordering, and profile TTL behaviour.

package recommend

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alpenstack/tour-gateway/internal/catalog"
	"github.com/alpenstack/tour-gateway/internal/ttlstore"
)

var belvedereTags = []string{"art", "history", "architecture", "culture", "romantic", "photography"}

func attractionWithTags(tags []string) catalog.Attraction {
	return catalog.Attraction{ID: 1, Name: "test", Tags: tags}
}

func TestScore_WorkedExample(t *testing.T) {
	// Two of two preferences match (+40), travel type and age group are
	// neutral, moderate budget adds 5: 50+40+5 = 95.
	a := attractionWithTags(belvedereTags)
	p := Profile{Preferences: []string{"art", "history"}, Budget: "moderate"}
	assert.Equal(t, 95, Score(a, p))
}

func TestScore_NeutralProfile(t *testing.T) {
	a := attractionWithTags(belvedereTags)
	// Empty profile: base 50 plus the moderate-budget default of 5.
	assert.Equal(t, 55, Score(a, Profile{}))
}

func TestScore_PreferenceDenominatorIsProfileCount(t *testing.T) {
	a := attractionWithTags([]string{"art"})
	// One of three preferences matches: 50 + 40*(1/3) + 5 = 68.33 → 68.
	p := Profile{Preferences: []string{"art", "skiing", "diving"}}
	assert.Equal(t, 68, Score(a, p))
}

func TestScore_TravelTypeTerm(t *testing.T) {
	a := attractionWithTags([]string{"culture", "history", "art", "architecture", "music"})
	// All five cultural tags match: 50 + 20 + 5 = 75. (senior age term not set)
	p := Profile{TravelType: "cultural"}
	assert.Equal(t, 75, Score(a, p))

	// Unknown travel types contribute nothing.
	p.TravelType = "interstellar"
	assert.Equal(t, 55, Score(a, p))
}

func TestScore_AgeGroupTerm(t *testing.T) {
	a := attractionWithTags([]string{"family-friendly", "budget"})
	// Both family tags match: 50 + 10 + 5 = 65.
	assert.Equal(t, 65, Score(a, Profile{AgeGroup: "family"}))

	// "adult" has no tag mapping.
	assert.Equal(t, 55, Score(a, Profile{AgeGroup: "adult"}))
}

func TestScore_BudgetTerm(t *testing.T) {
	budget := attractionWithTags([]string{"budget"})
	luxury := attractionWithTags([]string{"luxury"})

	assert.Equal(t, 60, Score(budget, Profile{Budget: "budget"}))
	assert.Equal(t, 50, Score(luxury, Profile{Budget: "budget"}), "no bonus without the matching tag")
	assert.Equal(t, 60, Score(luxury, Profile{Budget: "luxury"}))
	assert.Equal(t, 55, Score(budget, Profile{Budget: "moderate"}))
	assert.Equal(t, 55, Score(budget, Profile{}), "empty budget behaves as moderate")
}

func TestScore_CappedAt100(t *testing.T) {
	a := attractionWithTags([]string{"culture", "history", "art", "architecture", "music", "budget"})
	p := Profile{
		Preferences: []string{"culture", "history"},
		TravelType:  "cultural",
		AgeGroup:    "senior",
		Budget:      "budget",
	}
	// 50 + 40 + 20 + 10 + 10 = 130, capped.
	assert.Equal(t, 100, Score(a, p))
}

func TestMatchedTags_Humanized(t *testing.T) {
	a := attractionWithTags([]string{"family-friendly", "art", "outdoor"})
	p := Profile{Preferences: []string{"art", "family-friendly", "skiing"}}

	assert.Equal(t, []string{"Family friendly", "Art"}, MatchedTags(a, p))
	assert.Nil(t, MatchedTags(a, Profile{}))
}

func TestRecommend_OrderAndLimit(t *testing.T) {
	repo, err := catalog.Load()
	require.NoError(t, err)

	p := Profile{Preferences: []string{"art", "history"}, Budget: "moderate"}
	results := Recommend(repo, 1, p, 0)
	require.Len(t, results, DefaultLimit)

	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i].MatchScore, results[i-1].MatchScore)
	}
	// Belvedere carries both preferred tags; nothing in Vienna outranks 95.
	assert.Equal(t, 103, results[0].ID)
	assert.Equal(t, 95, results[0].MatchScore)
	assert.Equal(t, []string{"Art", "History"}, results[0].MatchedTags)

	assert.Len(t, Recommend(repo, 1, p, 2), 2)
	assert.Nil(t, Recommend(repo, 42, p, 5), "unknown destination yields nothing")
}

func TestProfileStore_SaveGet(t *testing.T) {
	store := ttlstore.NewMemoryStore()
	defer store.Close()
	ps := NewProfileStore(store, time.Minute)
	ctx := context.Background()

	p := Profile{UserID: "u1", Preferences: []string{"art"}, TravelType: "solo"}
	require.NoError(t, ps.Save(ctx, p))

	got, ok, err := ps.Get(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, p, got)

	_, ok, err = ps.Get(ctx, "stranger")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProfileStore_SaveOverwrites(t *testing.T) {
	store := ttlstore.NewMemoryStore()
	defer store.Close()
	ps := NewProfileStore(store, time.Minute)
	ctx := context.Background()

	require.NoError(t, ps.Save(ctx, Profile{UserID: "u1", Budget: "budget"}))
	require.NoError(t, ps.Save(ctx, Profile{UserID: "u1", Budget: "luxury"}))

	got, ok, err := ps.Get(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "luxury", got.Budget)
}

func TestProfileStore_RequiresUserID(t *testing.T) {
	store := ttlstore.NewMemoryStore()
	defer store.Close()
	ps := NewProfileStore(store, time.Minute)

	assert.ErrorIs(t, ps.Save(context.Background(), Profile{}), ErrMissingUserID)
}

func TestProfileStore_Expiry(t *testing.T) {
	store := ttlstore.NewMemoryStore()
	defer store.Close()
	ps := NewProfileStore(store, 20*time.Millisecond)
	ctx := context.Background()

	require.NoError(t, ps.Save(ctx, Profile{UserID: "u1"}))
	time.Sleep(40 * time.Millisecond)

	_, ok, err := ps.Get(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)
}
