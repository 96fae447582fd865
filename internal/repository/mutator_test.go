package repository

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/noah-isme/almacen-api/internal/audit"
	"github.com/noah-isme/almacen-api/internal/models"
)

type hookCall struct {
	kind   string
	entity string
	id     string
	op     audit.Operation
	fields audit.Fields
}

type recordingHooks struct {
	mu    sync.Mutex
	calls []hookCall
}

func (h *recordingHooks) BeforeMutate(ctx context.Context, entityType, id string, current audit.Fields) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, hookCall{kind: "before", entity: entityType, id: id, fields: current.Clone()})
}

func (h *recordingHooks) AfterMutate(ctx context.Context, entityType, id string, op audit.Operation, final audit.Fields) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, hookCall{kind: "after", entity: entityType, id: id, op: op, fields: final.Clone()})
}

func (h *recordingHooks) Emit(ctx context.Context, event audit.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, hookCall{kind: "emit", entity: event.EntityType, id: event.EntityID})
}

type countingFlusher struct {
	flushed int
}

func (f *countingFlusher) Flush(ctx context.Context, pending *audit.Pending) {
	f.flushed++
	pending.Drain()
}

func TestMutatorFiresHooksAroundWrites(t *testing.T) {
	db := openTestDB(t)
	hooks := &recordingHooks{}
	flusher := &countingFlusher{}
	mutator := NewMutator(db, hooks, flusher, zerolog.Nop())
	ctx := context.Background()

	category := models.Category{Name: "Bebidas"}
	require.NoError(t, mutator.InTx(ctx, func(ctx context.Context) error {
		return mutator.Create(ctx, &category)
	}))
	require.Equal(t, 1, flusher.flushed)

	description := "Drinks"
	require.NoError(t, mutator.InTx(ctx, func(ctx context.Context) error {
		return mutator.Update(ctx, &category, func() error {
			category.Description = &description
			return nil
		})
	}))

	require.NoError(t, mutator.Delete(ctx, &category))

	require.Len(t, hooks.calls, 5)
	require.Equal(t, "after", hooks.calls[0].kind)
	require.Equal(t, audit.OpCreate, hooks.calls[0].op)
	require.Equal(t, "1", hooks.calls[0].id)

	require.Equal(t, "before", hooks.calls[1].kind)
	require.Nil(t, hooks.calls[1].fields["descripcion"])
	require.Equal(t, "Drinks", hooks.calls[2].fields["descripcion"])
	require.Equal(t, audit.OpUpdate, hooks.calls[2].op)

	require.Equal(t, "before", hooks.calls[3].kind)
	require.Equal(t, audit.OpDelete, hooks.calls[4].op)
	require.Equal(t, "Bebidas", hooks.calls[4].fields["nombre"], "delete reports the removed state")

	var count int64
	require.NoError(t, db.Model(&models.Category{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestMutatorRollbackSkipsFlush(t *testing.T) {
	db := openTestDB(t)
	flusher := &countingFlusher{}
	mutator := NewMutator(db, &recordingHooks{}, flusher, zerolog.Nop())

	boom := errors.New("boom")
	err := mutator.InTx(context.Background(), func(ctx context.Context) error {
		if err := mutator.Create(ctx, &models.Category{Name: "Temporal"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Zero(t, flusher.flushed)

	var count int64
	require.NoError(t, db.Model(&models.Category{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestMutatorUpdateStopsOnApplyError(t *testing.T) {
	db := openTestDB(t)
	mutator := NewMutator(db, nil, nil, zerolog.Nop())

	category := models.Category{Name: "Lácteos"}
	require.NoError(t, mutator.Create(context.Background(), &category))

	invalid := errors.New("invalid")
	err := mutator.Update(context.Background(), &category, func() error {
		category.Name = "ignored"
		return invalid
	})
	require.ErrorIs(t, err, invalid)

	var stored models.Category
	require.NoError(t, db.First(&stored, category.ID).Error)
	require.Equal(t, "Lácteos", stored.Name)
}

func TestMutatorRollbackReleasesDedupClaims(t *testing.T) {
	db := openTestDB(t)
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	recorder := audit.NewRecorder(audit.RecorderDeps{
		Guard: audit.NewRedisGuard(client, "test", zerolog.Nop()),
		Store: NewActivityRepository(db),
	}, audit.Options{}, zerolog.Nop())
	mutator := NewMutator(db, recorder, recorder, zerolog.Nop())
	ctx := context.Background()

	boom := errors.New("boom")
	err = mutator.InTx(ctx, func(ctx context.Context) error {
		if err := mutator.Create(ctx, &models.Category{Name: "Bebidas"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Empty(t, server.Keys(), "rolled back records leave no claim behind")

	require.NoError(t, mutator.InTx(ctx, func(ctx context.Context) error {
		return mutator.Create(ctx, &models.Category{Name: "Bebidas"})
	}))
	require.Len(t, server.Keys(), 1)

	var count int64
	require.NoError(t, db.Model(&models.Activity{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

type alwaysEmit struct{}

func (alwaysEmit) ShouldEmit(ctx context.Context, candidate audit.Candidate, window time.Duration) bool {
	return true
}

// A failed activity insert rolls back to its savepoint and the business
// transaction still commits.
func TestFailedActivityInsertDoesNotFailMutation(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	recorder := audit.NewRecorder(audit.RecorderDeps{
		Guard: alwaysEmit{},
		Store: NewActivityRepository(db),
	}, audit.Options{}, zerolog.Nop())
	mutator := NewMutator(db, recorder, recorder, zerolog.Nop())

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "categorias"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(`^SAVEPOINT `).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "activities"`)).
		WillReturnError(errors.New("value too long for type character varying(255)"))
	mock.ExpectExec(`^ROLLBACK TO SAVEPOINT `).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	category := models.Category{Name: "Bebidas"}
	err = mutator.InTx(context.Background(), func(ctx context.Context) error {
		return mutator.Create(ctx, &category)
	})
	require.NoError(t, err)
	require.Equal(t, uint(1), category.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
