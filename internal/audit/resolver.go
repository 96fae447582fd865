package audit

import (
	"context"
	"strconv"

	"github.com/rs/zerolog"
)

const defaultFallbackActorName = "sistema"

// Actor is the user an activity is attributed to. A nil ID means no user
// could be found at all.
type Actor struct {
	ID   *uint
	Name string
}

// SessionRef identifies the open register an activity happened under.
type SessionRef struct {
	ID      uint
	OwnerID *uint
}

// UserDirectory resolves user ids to actors.
type UserDirectory interface {
	Lookup(ctx context.Context, id uint) (Actor, error)
	// Fallback returns the deterministic default actor: the first superuser,
	// else the first user.
	Fallback(ctx context.Context) (Actor, error)
}

// SessionProvider returns the most recently opened register that is still open.
type SessionProvider interface {
	ActiveSession(ctx context.Context) (*SessionRef, error)
}

// Resolver determines who did something and under which session. Lookup
// failures degrade to the next source and are never returned.
type Resolver struct {
	users        UserDirectory
	sessions     SessionProvider
	fallbackName string
	logger       zerolog.Logger
}

// NewResolver constructs a resolver. Either provider may be nil.
func NewResolver(users UserDirectory, sessions SessionProvider, fallbackName string, logger zerolog.Logger) *Resolver {
	if fallbackName == "" {
		fallbackName = defaultFallbackActorName
	}
	return &Resolver{
		users:        users,
		sessions:     sessions,
		fallbackName: fallbackName,
		logger:       logger.With().Str("component", "audit_resolver").Logger(),
	}
}

// Resolve picks the actor in order: the explicit (entity carried) user, the
// acting user bound to ctx, the owner of the active session, the directory
// fallback.
func (r *Resolver) Resolve(ctx context.Context, explicit *uint) (Actor, *SessionRef) {
	session := r.Session(ctx)

	candidates := make([]uint, 0, 3)
	if explicit != nil && *explicit > 0 {
		candidates = append(candidates, *explicit)
	}
	if id, ok := ActorFromContext(ctx); ok {
		candidates = append(candidates, id)
	}
	if session != nil && session.OwnerID != nil && *session.OwnerID > 0 {
		candidates = append(candidates, *session.OwnerID)
	}

	if r.users != nil {
		for _, id := range candidates {
			actor, err := r.users.Lookup(ctx, id)
			if err != nil {
				r.logger.Debug().Err(err).Uint("user_id", id).Msg("actor lookup failed")
				continue
			}
			if actor.ID != nil {
				return actor, session
			}
		}

		actor, err := r.users.Fallback(ctx)
		if err != nil {
			r.logger.Debug().Err(err).Msg("fallback actor lookup failed")
		} else if actor.ID != nil {
			return actor, session
		}
	}

	return Actor{Name: r.fallbackName}, session
}

// Session returns the active session or nil.
func (r *Resolver) Session(ctx context.Context) *SessionRef {
	if r.sessions == nil {
		return nil
	}
	session, err := r.sessions.ActiveSession(ctx)
	if err != nil {
		r.logger.Debug().Err(err).Msg("active session lookup failed")
		return nil
	}
	return session
}

// FallbackName is the name recorded when no user exists.
func (r *Resolver) FallbackName() string {
	return r.fallbackName
}

func explicitActor(schema EntitySchema, state Fields) *uint {
	if schema.ActorField == "" || state == nil {
		return nil
	}
	id, ok := toUint(state[schema.ActorField])
	if !ok {
		return nil
	}
	return &id
}

func toUint(value interface{}) (uint, bool) {
	switch v := value.(type) {
	case uint:
		return v, v > 0
	case *uint:
		if v == nil {
			return 0, false
		}
		return *v, *v > 0
	case int:
		return uint(v), v > 0
	case int64:
		return uint(v), v > 0
	case uint64:
		return uint(v), v > 0
	case string:
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return uint(parsed), parsed > 0
	}
	return 0, false
}
