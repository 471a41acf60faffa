package constants

import (
	"time"

	"github.com/google/uuid"
)

// Redis key layout
// Pattern: venuebook:{module}:{operation}:{identifier}

// ================== CACHE TTL DURATIONS ==================

// Static Data (Long TTL: rarely changes)
const (
	TTL_STATIC_LONG   = 24 * time.Hour
	TTL_STATIC_MEDIUM = 12 * time.Hour
)

// Semi-Static Data (Medium TTL: changes occasionally)
const (
	TTL_SEMI_STATIC_SHORT = 1 * time.Hour
	TTL_SEMI_STATIC_QUICK = 15 * time.Minute
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "venuebook"
)

// ================== VENUES MODULE ==================

const (
	CACHE_KEY_VENUE_SETTINGS = CACHE_PREFIX + ":venues:settings:uuid:" // + venue-id
	TTL_VENUE_SETTINGS       = TTL_SEMI_STATIC_SHORT
)

// ================== CANCELLATION MODULE ==================

const (
	CACHE_KEY_CANCELLATION_POLICY = CACHE_PREFIX + ":cancellation:policy:venue:" // + venue-id
	TTL_CANCELLATION_POLICY       = TTL_SEMI_STATIC_QUICK
)

// ================== LOCKS & RATE LIMITS ==================

// Capacity figures are never cached; only locks and counters live here.
const (
	LOCK_KEY_SLOT         = CACHE_PREFIX + ":lock:slot:" // + slot-id
	RATE_LIMIT_KEY_PREFIX = CACHE_PREFIX + ":ratelimit:"
)

// VenueSettingsKey returns the cache key for a venue's admission settings
func VenueSettingsKey(venueID uuid.UUID) string {
	return CACHE_KEY_VENUE_SETTINGS + venueID.String()
}

// CancellationPolicyKey returns the cache key for a venue's cancellation policy
func CancellationPolicyKey(venueID uuid.UUID) string {
	return CACHE_KEY_CANCELLATION_POLICY + venueID.String()
}

// SlotLockKey returns the distributed lock key serializing one slot
func SlotLockKey(slotID uuid.UUID) string {
	return LOCK_KEY_SLOT + slotID.String()
}
