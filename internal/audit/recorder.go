package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"

	"github.com/noah-isme/almacen-api/internal/models"
	"github.com/noah-isme/almacen-api/internal/observability"
)

const (
	defaultDedupWindow    = 5 * time.Second
	defaultLowStockWindow = time.Hour
)

// Hooks is what the mutation pipeline calls around every persisted change.
// Implementations never return errors and never panic into the caller.
type Hooks interface {
	BeforeMutate(ctx context.Context, entityType, id string, current Fields)
	AfterMutate(ctx context.Context, entityType, id string, op Operation, final Fields)
	Emit(ctx context.Context, event Event)
}

// Event is a hand-authored domain event (a sale, a register opening).
type Event struct {
	Category    Category
	Description string
	EntityType  string
	EntityID    string
	Fingerprint string
	// ActorID overrides the request actor, e.g. the cashier stored on a sale.
	ActorID *uint
	// Window overrides the dedup window of the category.
	Window   time.Duration
	Metadata map[string]interface{}
}

// ActivityStore is the persistence the recorder writes to.
type ActivityStore interface {
	ActivityLookup
	Append(ctx context.Context, activity *models.Activity) error
}

// Publisher forwards committed records to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, records []models.Activity) error
}

// Options tunes the recorder. Zero values fall back to defaults, except
// SaleEditWindow where zero disables the heuristic.
type Options struct {
	DedupWindow       time.Duration
	LowStockWindow    time.Duration
	SaleEditWindow    time.Duration
	DescriptionMax    int
	FallbackActorName string
}

// Recorder subscribes to the mutation hooks and appends activity records.
type Recorder struct {
	registry   *Registry
	classifier *Classifier
	snapshots  SnapshotStore
	resolver   *Resolver
	guard      Guard
	store      ActivityStore
	publisher  Publisher
	opts       Options
	logger     zerolog.Logger
	tracer     trace.Tracer

	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

// RecorderDeps groups the collaborators of a Recorder. Guard defaults to a
// StoreGuard over Store; Publisher may be nil.
type RecorderDeps struct {
	Registry  *Registry
	Snapshots SnapshotStore
	Resolver  *Resolver
	Guard     Guard
	Store     ActivityStore
	Publisher Publisher
}

// NewRecorder wires the audit pipeline.
func NewRecorder(deps RecorderDeps, opts Options, logger zerolog.Logger) *Recorder {
	if deps.Registry == nil {
		deps.Registry = DefaultRegistry()
	}
	if deps.Snapshots == nil {
		deps.Snapshots = NewMemorySnapshotStore(deps.Registry, 0, 0)
	}
	if deps.Resolver == nil {
		deps.Resolver = NewResolver(nil, nil, opts.FallbackActorName, logger)
	}
	if deps.Guard == nil {
		deps.Guard = NewStoreGuard(deps.Store, logger)
	}
	if opts.DedupWindow <= 0 {
		opts.DedupWindow = defaultDedupWindow
	}
	if opts.LowStockWindow <= 0 {
		opts.LowStockWindow = defaultLowStockWindow
	}
	if opts.DescriptionMax <= 0 {
		opts.DescriptionMax = DefaultDescriptionMax
	}

	return &Recorder{
		registry:   deps.Registry,
		classifier: NewClassifier(deps.Registry),
		snapshots:  deps.Snapshots,
		resolver:   deps.Resolver,
		guard:      deps.Guard,
		store:      deps.Store,
		publisher:  deps.Publisher,
		opts:       opts,
		logger:     logger.With().Str("component", "audit_recorder").Logger(),
		tracer:     otel.Tracer("github.com/noah-isme/almacen-api/internal/audit"),
		now:        time.Now,
	}
}

// BeforeMutate captures the before-image of an existing instance.
func (r *Recorder) BeforeMutate(ctx context.Context, entityType, id string, current Fields) {
	defer r.recoverStage("before_mutate", entityType, id)

	_, span := r.tracer.Start(ctx, "audit.before_mutate", trace.WithAttributes(
		attribute.String("audit.entity_type", entityType),
		attribute.String("audit.entity_id", id),
	))
	defer span.End()

	r.snapshots.Capture(entityType, id, current)
	observability.AuditSnapshotsPending().Set(float64(r.snapshots.Len()))
}

// AfterMutate diffs, classifies and records a persisted change.
func (r *Recorder) AfterMutate(ctx context.Context, entityType, id string, op Operation, final Fields) {
	defer r.recoverStage("after_mutate", entityType, id)

	ctx, span := r.tracer.Start(ctx, "audit.after_mutate", trace.WithAttributes(
		attribute.String("audit.entity_type", entityType),
		attribute.String("audit.entity_id", id),
		attribute.String("audit.operation", string(op)),
	))
	defer span.End()

	schema, ok := r.registry.Lookup(entityType)
	if !ok {
		r.suppress(VerdictExcluded)
		return
	}

	var snapshot *Snapshot
	if op != OpCreate {
		if snap, found := r.snapshots.Consume(entityType, id); found {
			snapshot = &snap
		}
		observability.AuditSnapshotsPending().Set(float64(r.snapshots.Len()))
	}

	actor, session := r.resolver.Resolve(ctx, explicitActor(schema, final))
	mutation := Mutation{
		EntityType: entityType,
		ID:         id,
		Op:         op,
		Fields:     final,
		Snapshot:   snapshot,
		ActorName:  actor.Name,
	}
	if cause, found := CauseFromContext(ctx); found {
		mutation.Cause = &cause
	}
	if op == OpUpdate && r.opts.SaleEditWindow > 0 && session != nil {
		mutation.RecentSale = r.recentSale(ctx, session.ID)
	}

	emission, verdict := r.classifier.Classify(mutation)
	if verdict != VerdictEmit {
		r.suppress(verdict)
		r.logger.Debug().Str("entity_type", entityType).Str("entity_id", id).Str("reason", string(verdict)).Msg("mutation not recorded")
	} else {
		description := Finalize(emission.Description, r.opts.DescriptionMax)
		metadata := map[string]interface{}{"operation": string(op)}
		if len(emission.Changes) > 0 {
			metadata["fields"] = emission.Changes.Keys()
		}
		r.write(ctx, models.Activity{
			Category:    string(emission.Category),
			Description: description,
			EntityType:  entityType,
			EntityID:    id,
			Fingerprint: Fingerprint(entityType, id, description),
		}, actor, session, metadata, r.opts.DedupWindow)
	}

	if op == OpUpdate {
		if alert, fire := LowStock(emission.Schema, id, final, emission.Changes); fire {
			r.emit(ctx, alert, actor, session)
		}
	}
}

// Emit records a hand-authored event through the same resolve, dedup and
// append path as hook events.
func (r *Recorder) Emit(ctx context.Context, event Event) {
	defer r.recoverStage("emit", event.EntityType, event.EntityID)

	ctx, span := r.tracer.Start(ctx, "audit.emit", trace.WithAttributes(
		attribute.String("audit.category", string(event.Category)),
	))
	defer span.End()

	actor, session := r.resolver.Resolve(ctx, event.ActorID)
	r.emit(ctx, event, actor, session)
}

func (r *Recorder) emit(ctx context.Context, event Event, actor Actor, session *SessionRef) {
	window := event.Window
	if window <= 0 {
		window = r.opts.DedupWindow
		if event.Category == CategoryLowStock {
			window = r.opts.LowStockWindow
		}
	}
	description := Finalize(event.Description, r.opts.DescriptionMax)
	fingerprint := event.Fingerprint
	if fingerprint == "" && event.EntityType != "" {
		fingerprint = Fingerprint(event.EntityType, event.EntityID, description)
	}

	metadata := map[string]interface{}{}
	for k, v := range event.Metadata {
		metadata[k] = v
	}
	r.write(ctx, models.Activity{
		Category:    string(event.Category),
		Description: description,
		EntityType:  event.EntityType,
		EntityID:    event.EntityID,
		Fingerprint: fingerprint,
	}, actor, session, metadata, window)
}

func (r *Recorder) write(ctx context.Context, record models.Activity, actor Actor, session *SessionRef, metadata map[string]interface{}, window time.Duration) {
	if session != nil {
		id := session.ID
		record.SessionID = &id
	}
	record.ActorID = actor.ID
	record.ActorName = actor.Name
	if record.ActorName == "" {
		record.ActorName = r.resolver.FallbackName()
	}
	record.CorrelationID = CorrelationFromContext(ctx)
	if cause, ok := CauseFromContext(ctx); ok {
		metadata["cause"] = string(cause.Category)
	}
	record.Metadata = datatypes.JSONMap(metadata)

	candidate := Candidate{
		Category:    Category(record.Category),
		SessionID:   record.SessionID,
		Fingerprint: record.Fingerprint,
	}
	if !r.guard.ShouldEmit(ctx, candidate, window) {
		r.suppress(VerdictDuplicate)
		return
	}

	release := r.releaseFor(candidate)
	if r.store == nil {
		if release != nil {
			release(ctx)
		}
		r.fail("append", record.EntityType, record.EntityID, fmt.Errorf("no activity store configured"))
		return
	}

	record.CreatedAt = r.stamp()
	if err := r.store.Append(ctx, &record); err != nil {
		if release != nil {
			release(ctx)
		}
		r.fail("append", record.EntityType, record.EntityID, err)
		return
	}

	observability.AuditEvents().WithLabelValues(record.Category).Inc()
	if pending := pendingFromContext(ctx); pending != nil {
		pending.add(record, release)
		return
	}
	r.publish(ctx, []models.Activity{record})
}

func (r *Recorder) releaseFor(candidate Candidate) func(context.Context) {
	releaser, ok := r.guard.(Releaser)
	if !ok || candidate.Fingerprint == "" {
		return nil
	}
	return func(ctx context.Context) {
		defer r.recoverStage("release", "", "")
		releaser.Release(ctx, candidate)
	}
}

// Flush publishes the records collected for a committed transaction.
func (r *Recorder) Flush(ctx context.Context, pending *Pending) {
	defer r.recoverStage("publish", "", "")
	r.publish(ctx, pending.Drain())
}

func (r *Recorder) publish(ctx context.Context, records []models.Activity) {
	if r.publisher == nil || len(records) == 0 {
		return
	}
	if err := r.publisher.Publish(ctx, records); err != nil {
		r.fail("publish", "", "", err)
		return
	}
	observability.AuditPublished().Add(float64(len(records)))
}

func (r *Recorder) recentSale(ctx context.Context, sessionID uint) bool {
	if r.store == nil {
		return false
	}
	exists, err := r.store.Exists(ctx, DedupQuery{
		Category:  CategorySale,
		SessionID: &sessionID,
		Since:     r.now().UTC().Add(-r.opts.SaleEditWindow),
	})
	if err != nil {
		r.fail("recent_sale", "", "", err)
		return false
	}
	return exists
}

// stamp returns a creation time that never goes backwards.
func (r *Recorder) stamp() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.now().UTC()
	if t.Before(r.last) {
		t = r.last
	}
	r.last = t
	return t
}

func (r *Recorder) suppress(verdict Verdict) {
	observability.AuditSuppressed().WithLabelValues(string(verdict)).Inc()
}

func (r *Recorder) fail(stage, entityType, id string, err error) {
	observability.AuditFailures().WithLabelValues(stage).Inc()
	r.logger.Error().Err(err).Str("stage", stage).Str("entity_type", entityType).Str("entity_id", id).Msg("audit failure ignored")
}

func (r *Recorder) recoverStage(stage, entityType, id string) {
	if rec := recover(); rec != nil {
		r.fail(stage, entityType, id, fmt.Errorf("panic: %v", rec))
	}
}
