// ABOUTME: Traveller profile persistence on the shared TTL store.
// ABOUTME: Profiles are keyed by user id and expire after the configured window.

package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alpenstack/tour-gateway/internal/ttlstore"
)

const profileKeyPrefix = "user_profile:"

// DefaultProfileTTL is how long a saved profile stays retrievable.
const DefaultProfileTTL = 2 * time.Hour

// ErrMissingUserID is returned when saving a profile without a user id.
var ErrMissingUserID = errors.New("profile user_id is required")

// ProfileStore persists traveller profiles with a TTL. Saving an existing
// user id overwrites the previous profile and re-arms its window.
type ProfileStore struct {
	store  ttlstore.Store
	ttl    time.Duration
	logger *slog.Logger
}

// NewProfileStore wraps the given store. ttl <= 0 applies DefaultProfileTTL.
func NewProfileStore(store ttlstore.Store, ttl time.Duration) *ProfileStore {
	if ttl <= 0 {
		ttl = DefaultProfileTTL
	}
	return &ProfileStore{
		store:  store,
		ttl:    ttl,
		logger: slog.With("component", "profiles"),
	}
}

// Save stores or replaces the profile for its user id.
func (s *ProfileStore) Save(ctx context.Context, p Profile) error {
	if p.UserID == "" {
		return ErrMissingUserID
	}
	if err := ttlstore.PutJSON(ctx, s.store, profileKeyPrefix+p.UserID, p, s.ttl); err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	s.logger.Info("user profile saved", "user_id", p.UserID)
	return nil
}

// Get retrieves the profile for a user id. The second return value is false
// when no profile exists or it has expired.
func (s *ProfileStore) Get(ctx context.Context, userID string) (Profile, bool, error) {
	var p Profile
	ok, err := ttlstore.GetJSON(ctx, s.store, profileKeyPrefix+userID, &p)
	if err != nil {
		return Profile{}, false, fmt.Errorf("loading profile: %w", err)
	}
	return p, ok, nil
}
