package audit

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Candidate identifies a record about to be written.
type Candidate struct {
	Category    Category
	SessionID   *uint
	Fingerprint string
}

// DedupQuery asks the activity store for a matching record newer than Since.
// An empty Fingerprint matches any record of the category and session.
type DedupQuery struct {
	Category    Category
	SessionID   *uint
	Fingerprint string
	Since       time.Time
}

// Guard decides whether a candidate is new. Guards are advisory: two writers
// racing on the same fingerprint may both pass.
type Guard interface {
	ShouldEmit(ctx context.Context, candidate Candidate, window time.Duration) bool
}

// Releaser is implemented by guards whose claims live outside the activity
// store. Release drops a claim whose record was never committed.
type Releaser interface {
	Release(ctx context.Context, candidate Candidate)
}

// ActivityLookup is the read side of the activity store used for dedup.
type ActivityLookup interface {
	Exists(ctx context.Context, query DedupQuery) (bool, error)
}

// StoreGuard checks the activity log itself. Run inside the business
// transaction it also sees records written earlier by the same operation.
type StoreGuard struct {
	store  ActivityLookup
	now    func() time.Time
	logger zerolog.Logger
}

// NewStoreGuard constructs the default guard.
func NewStoreGuard(store ActivityLookup, logger zerolog.Logger) *StoreGuard {
	return &StoreGuard{
		store:  store,
		now:    time.Now,
		logger: logger.With().Str("component", "audit_store_guard").Logger(),
	}
}

func (g *StoreGuard) ShouldEmit(ctx context.Context, candidate Candidate, window time.Duration) bool {
	if candidate.Fingerprint == "" || window <= 0 || g.store == nil {
		return true
	}
	exists, err := g.store.Exists(ctx, DedupQuery{
		Category:    candidate.Category,
		SessionID:   candidate.SessionID,
		Fingerprint: candidate.Fingerprint,
		Since:       g.now().UTC().Add(-window),
	})
	if err != nil {
		g.logger.Warn().Err(err).Str("fingerprint", candidate.Fingerprint).Msg("dedup lookup failed, emitting")
		return true
	}
	return !exists
}

// RedisGuard claims fingerprints with SET NX and a TTL equal to the window.
// Redis errors fail open.
type RedisGuard struct {
	client *redis.Client
	prefix string
	logger zerolog.Logger
}

// NewRedisGuard constructs a Redis backed guard. Keys are namespaced by prefix.
func NewRedisGuard(client *redis.Client, prefix string, logger zerolog.Logger) *RedisGuard {
	if prefix == "" {
		prefix = "almacen:audit:dedup"
	}
	return &RedisGuard{
		client: client,
		prefix: prefix,
		logger: logger.With().Str("component", "audit_redis_guard").Logger(),
	}
}

func (g *RedisGuard) ShouldEmit(ctx context.Context, candidate Candidate, window time.Duration) bool {
	if candidate.Fingerprint == "" || window <= 0 || g.client == nil {
		return true
	}
	claimed, err := g.client.SetNX(ctx, g.key(candidate), 1, window).Result()
	if err != nil {
		g.logger.Warn().Err(err).Str("fingerprint", candidate.Fingerprint).Msg("redis dedup failed, emitting")
		return true
	}
	return claimed
}

// Release deletes the claim so the next attempt within the window emits.
func (g *RedisGuard) Release(ctx context.Context, candidate Candidate) {
	if candidate.Fingerprint == "" || g.client == nil {
		return
	}
	if err := g.client.Del(ctx, g.key(candidate)).Err(); err != nil {
		g.logger.Warn().Err(err).Str("fingerprint", candidate.Fingerprint).Msg("redis dedup release failed")
	}
}

func (g *RedisGuard) key(candidate Candidate) string {
	session := "none"
	if candidate.SessionID != nil {
		session = strconv.FormatUint(uint64(*candidate.SessionID), 10)
	}
	return strings.Join([]string{g.prefix, string(candidate.Category), session, candidate.Fingerprint}, ":")
}
