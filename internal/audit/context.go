package audit

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/noah-isme/almacen-api/internal/models"
)

type actorKey struct{}
type causeKey struct{}
type correlationKey struct{}
type pendingKey struct{}

// WithActor records the user performing the current operation.
func WithActor(ctx context.Context, userID uint) context.Context {
	if userID == 0 {
		return ctx
	}
	return context.WithValue(ctx, actorKey{}, userID)
}

// ActorFromContext returns the acting user id bound by WithActor.
func ActorFromContext(ctx context.Context) (uint, bool) {
	if ctx == nil {
		return 0, false
	}
	id, ok := ctx.Value(actorKey{}).(uint)
	return id, ok && id > 0
}

// WithCorrelation binds a request or operation id that is copied onto every
// activity written under ctx.
func WithCorrelation(ctx context.Context, id string) context.Context {
	id = strings.TrimSpace(id)
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationFromContext returns the id bound by WithCorrelation or WithCause.
func CorrelationFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if cause, ok := CauseFromContext(ctx); ok && cause.CorrelationID != "" {
		return cause.CorrelationID
	}
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// Cause marks mutations that happen as a consequence of a domain operation
// (a sale decrementing stock, a receipt incrementing it).
type Cause struct {
	Category      Category
	CorrelationID string
}

// WithCause binds a causing category to ctx. The correlation id is inherited
// from ctx or generated.
func WithCause(ctx context.Context, category Category) context.Context {
	correlation := CorrelationFromContext(ctx)
	if correlation == "" {
		correlation = uuid.NewString()
	}
	return context.WithValue(ctx, causeKey{}, Cause{Category: category, CorrelationID: correlation})
}

// CauseFromContext returns the cause bound by WithCause.
func CauseFromContext(ctx context.Context) (Cause, bool) {
	if ctx == nil {
		return Cause{}, false
	}
	cause, ok := ctx.Value(causeKey{}).(Cause)
	return cause, ok
}

// Pending collects the records written inside one transaction so they can be
// published once it commits.
type Pending struct {
	mu       sync.Mutex
	records  []models.Activity
	releases []func(context.Context)
}

// WithPending attaches a fresh collector to ctx.
func WithPending(ctx context.Context) (context.Context, *Pending) {
	p := &Pending{}
	return context.WithValue(ctx, pendingKey{}, p), p
}

func pendingFromContext(ctx context.Context) *Pending {
	if ctx == nil {
		return nil
	}
	p, _ := ctx.Value(pendingKey{}).(*Pending)
	return p
}

func (p *Pending) add(record models.Activity, release func(context.Context)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, record)
	if release != nil {
		p.releases = append(p.releases, release)
	}
}

// Drain returns and clears the collected records. Dedup claims taken for
// them stay in place.
func (p *Pending) Drain() []models.Activity {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.records
	p.records = nil
	p.releases = nil
	return out
}

// Abort clears the collected records of a rolled back transaction and
// releases the dedup claims taken for them.
func (p *Pending) Abort(ctx context.Context) []models.Activity {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	out, releases := p.records, p.releases
	p.records, p.releases = nil, nil
	p.mu.Unlock()

	for _, release := range releases {
		release(ctx)
	}
	return out
}
