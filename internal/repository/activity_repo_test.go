package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/almacen-api/internal/audit"
	"github.com/noah-isme/almacen-api/internal/database"
	"github.com/noah-isme/almacen-api/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

func uintPtr(v uint) *uint {
	return &v
}

func TestActivityRepositoryListFiltersAndSorts(t *testing.T) {
	db := openTestDB(t)
	repo := NewActivityRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	entries := []models.Activity{
		{CreatedAt: base, Category: "CREATED", Description: "Creado Categoría 'Bebidas'", EntityType: "category", EntityID: "1", SessionID: uintPtr(1), ActorID: uintPtr(1), ActorName: "ana"},
		{CreatedAt: base.Add(time.Minute), Category: "SALE", Description: "Venta 1 total $1.500 (EFECTIVO)", EntityType: "sale", EntityID: "1", SessionID: uintPtr(1), ActorID: uintPtr(2), ActorName: "mundaca"},
		{CreatedAt: base.Add(2 * time.Minute), Category: "SALE", Description: "Venta 2 total $900 (DEBITO)", EntityType: "sale", EntityID: "2", SessionID: uintPtr(2), ActorID: uintPtr(2), ActorName: "mundaca"},
	}
	for i := range entries {
		require.NoError(t, repo.Append(ctx, &entries[i]))
	}

	all, total, err := repo.List(ctx, ActivityFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Equal(t, "2", all[0].EntityID, "expected newest record first")

	asc, _, err := repo.List(ctx, ActivityFilter{Ascending: true})
	require.NoError(t, err)
	require.Equal(t, "category", asc[0].EntityType)

	sales, total, err := repo.List(ctx, ActivityFilter{Category: "SALE", SessionID: uintPtr(1)})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "1", sales[0].EntityID)

	byActor, total, err := repo.List(ctx, ActivityFilter{ActorID: uintPtr(2), PageSize: 1, Page: 2})
	require.NoError(t, err)
	require.Equal(t, int64(2), total, "total ignores pagination")
	require.Len(t, byActor, 1)
	require.Equal(t, "1", byActor[0].EntityID)

	from := base.Add(30 * time.Second)
	to := base.Add(90 * time.Second)
	ranged, _, err := repo.List(ctx, ActivityFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	require.Equal(t, "SALE", ranged[0].Category)

	typed, _, err := repo.List(ctx, ActivityFilter{EntityType: "category"})
	require.NoError(t, err)
	require.Len(t, typed, 1)
}

func TestActivityRepositoryExists(t *testing.T) {
	db := openTestDB(t)
	repo := NewActivityRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, repo.Append(ctx, &models.Activity{
		CreatedAt:   now,
		Category:    "LOW_STOCK",
		Description: "Stock bajo: leche = 2 (mínimo 5)",
		SessionID:   uintPtr(3),
		Fingerprint: "product:9",
	}))
	require.NoError(t, repo.Append(ctx, &models.Activity{
		CreatedAt:   now,
		Category:    "CREATED",
		Description: "Creado Categoría 'Lácteos'",
		Fingerprint: "category:4:abc",
	}))

	cases := map[string]struct {
		query audit.DedupQuery
		want  bool
	}{
		"same fingerprint in session": {audit.DedupQuery{Category: audit.CategoryLowStock, SessionID: uintPtr(3), Fingerprint: "product:9", Since: now.Add(-time.Hour)}, true},
		"other session":               {audit.DedupQuery{Category: audit.CategoryLowStock, SessionID: uintPtr(4), Fingerprint: "product:9", Since: now.Add(-time.Hour)}, false},
		"outside window":              {audit.DedupQuery{Category: audit.CategoryLowStock, SessionID: uintPtr(3), Fingerprint: "product:9", Since: now.Add(time.Minute)}, false},
		"other fingerprint":           {audit.DedupQuery{Category: audit.CategoryLowStock, SessionID: uintPtr(3), Fingerprint: "product:10", Since: now.Add(-time.Hour)}, false},
		"any in category":             {audit.DedupQuery{Category: audit.CategoryLowStock, SessionID: uintPtr(3), Since: now.Add(-time.Hour)}, true},
		"no session matches null":     {audit.DedupQuery{Category: audit.CategoryCreated, Fingerprint: "category:4:abc", Since: now.Add(-time.Hour)}, true},
	}

	for name, tc := range cases {
		got, err := repo.Exists(ctx, tc.query)
		require.NoError(t, err, name)
		require.Equal(t, tc.want, got, name)
	}
}

func TestActivityRepositoryAppendJoinsContextTransaction(t *testing.T) {
	db := openTestDB(t)
	repo := NewActivityRepository(db)

	tx := db.Begin()
	ctx := database.WithTx(context.Background(), tx)
	require.NoError(t, repo.Append(ctx, &models.Activity{CreatedAt: time.Now().UTC(), Category: "CREATED", Description: "Creado Categoría 'Snacks'"}))
	require.NoError(t, tx.Rollback().Error)

	_, total, err := repo.List(context.Background(), ActivityFilter{})
	require.NoError(t, err)
	require.Zero(t, total, "record follows the business transaction")
}

func TestActivityRecordsAreImmutable(t *testing.T) {
	db := openTestDB(t)
	repo := NewActivityRepository(db)

	record := models.Activity{CreatedAt: time.Now().UTC(), Category: "CREATED", Description: "Creado Categoría 'Aseo'"}
	require.NoError(t, repo.Append(context.Background(), &record))

	record.Description = "rewritten"
	require.ErrorIs(t, db.Save(&record).Error, models.ErrActivityImmutable)
	require.ErrorIs(t, db.Delete(&record).Error, models.ErrActivityImmutable)

	stored, _, err := repo.List(context.Background(), ActivityFilter{})
	require.NoError(t, err)
	require.Equal(t, "Creado Categoría 'Aseo'", stored[0].Description)
}
