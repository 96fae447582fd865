package repository

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/almacen-api/internal/audit"
	"github.com/noah-isme/almacen-api/internal/database"
)

// Auditable is implemented by every model that flows through the Mutator.
type Auditable interface {
	AuditEntity() string
	AuditID() string
	AuditFields() map[string]interface{}
}

// Flusher publishes the activity collected for a committed transaction.
type Flusher interface {
	Flush(ctx context.Context, pending *audit.Pending)
}

// Mutator persists auditable models and fires the audit hooks around each
// create, update and delete. Host services never write auditable rows any
// other way.
type Mutator struct {
	db      *gorm.DB
	hooks   audit.Hooks
	flusher Flusher
	logger  zerolog.Logger
}

// NewMutator constructs a Mutator. hooks may be nil, which disables auditing.
func NewMutator(db *gorm.DB, hooks audit.Hooks, flusher Flusher, logger zerolog.Logger) *Mutator {
	return &Mutator{
		db:      db,
		hooks:   hooks,
		flusher: flusher,
		logger:  logger.With().Str("component", "mutator").Logger(),
	}
}

// InTx runs fn inside a transaction bound to the context handed to fn. Nested
// calls join the outer transaction. Activity produced inside is published
// only once the outermost transaction commits.
func (m *Mutator) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := database.TxFrom(ctx); ok {
		return fn(ctx)
	}

	ctx, pending := audit.WithPending(ctx)
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(database.WithTx(ctx, tx))
	})
	if err != nil {
		discarded := pending.Abort(context.WithoutCancel(ctx))
		if len(discarded) > 0 {
			m.logger.Debug().Int("records", len(discarded)).Msg("rolled back activity not published")
		}
		return err
	}

	if m.flusher != nil {
		m.flusher.Flush(ctx, pending)
	}
	return nil
}

// Create inserts entity and records its creation.
func (m *Mutator) Create(ctx context.Context, entity Auditable) error {
	if err := database.Conn(ctx, m.db).Create(entity).Error; err != nil {
		return fmt.Errorf("create %s: %w", entity.AuditEntity(), err)
	}
	if m.hooks != nil {
		m.hooks.AfterMutate(ctx, entity.AuditEntity(), entity.AuditID(), audit.OpCreate, audit.Fields(entity.AuditFields()))
	}
	return nil
}

// Update snapshots entity as loaded, applies the change and saves it. entity
// must be freshly read from the database for the diff to be meaningful.
func (m *Mutator) Update(ctx context.Context, entity Auditable, apply func() error) error {
	if m.hooks != nil {
		m.hooks.BeforeMutate(ctx, entity.AuditEntity(), entity.AuditID(), audit.Fields(entity.AuditFields()))
	}

	if apply != nil {
		if err := apply(); err != nil {
			return err
		}
	}

	if err := database.Conn(ctx, m.db).Save(entity).Error; err != nil {
		return fmt.Errorf("update %s: %w", entity.AuditEntity(), err)
	}
	if m.hooks != nil {
		m.hooks.AfterMutate(ctx, entity.AuditEntity(), entity.AuditID(), audit.OpUpdate, audit.Fields(entity.AuditFields()))
	}
	return nil
}

// Delete removes entity and records the state it had before removal.
func (m *Mutator) Delete(ctx context.Context, entity Auditable) error {
	entityType, id := entity.AuditEntity(), entity.AuditID()
	fields := audit.Fields(entity.AuditFields())
	if m.hooks != nil {
		m.hooks.BeforeMutate(ctx, entityType, id, fields)
	}

	if err := database.Conn(ctx, m.db).Delete(entity).Error; err != nil {
		return fmt.Errorf("delete %s: %w", entityType, err)
	}
	if m.hooks != nil {
		m.hooks.AfterMutate(ctx, entityType, id, audit.OpDelete, fields)
	}
	return nil
}

// Emit records a domain event through the audit hooks.
func (m *Mutator) Emit(ctx context.Context, event audit.Event) {
	if m.hooks != nil {
		m.hooks.Emit(ctx, event)
	}
}
