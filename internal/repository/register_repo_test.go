package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/almacen-api/internal/models"
)

func TestRegisterRepositoryActiveSession(t *testing.T) {
	db := openTestDB(t)
	repo := NewRegisterRepository(db)
	ctx := context.Background()

	session, err := repo.ActiveSession(ctx)
	require.NoError(t, err)
	require.Nil(t, session, "no register open yet")

	day := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	closedAt := day.Add(20 * time.Hour)
	closed := models.Register{Date: day, OpeningAmount: decimal.NewFromInt(10000), OpenedAt: day.Add(8 * time.Hour), OpenedByID: uintPtr(1), ClosedAt: &closedAt}
	require.NoError(t, db.Create(&closed).Error)
	require.NoError(t, db.Model(&closed).Update("abierta", false).Error)

	today := day.AddDate(0, 0, 1)
	open := models.Register{Date: today, OpeningAmount: decimal.NewFromInt(5000), OpenedAt: today.Add(8 * time.Hour), OpenedByID: uintPtr(2), Open: true}
	require.NoError(t, db.Create(&open).Error)

	session, err = repo.ActiveSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, session)
	require.Equal(t, open.ID, session.ID)
	require.Equal(t, uint(2), *session.OwnerID)

	found, err := repo.FindByDate(ctx, day.Add(15*time.Hour))
	require.NoError(t, err)
	require.Equal(t, closed.ID, found.ID)
	require.False(t, found.Open)
}

func TestRegisterRepositoryTotalsByMethod(t *testing.T) {
	db := openTestDB(t)
	repo := NewRegisterRepository(db)

	sales := []models.Sale{
		{Total: decimal.RequireFromString("1500"), PaymentMethod: models.PaymentCash, UserID: 1, RegisterID: 7},
		{Total: decimal.RequireFromString("2500.50"), PaymentMethod: models.PaymentDebit, UserID: 1, RegisterID: 7},
		{Total: decimal.RequireFromString("990"), PaymentMethod: models.PaymentCash, UserID: 1, RegisterID: 7},
		{Total: decimal.RequireFromString("100"), PaymentMethod: models.PaymentCash, UserID: 1, RegisterID: 8},
	}
	require.NoError(t, db.Create(&sales).Error)

	totals, err := repo.Totals(context.Background(), 7)
	require.NoError(t, err)
	require.True(t, totals.Sold.Equal(decimal.RequireFromString("4990.50")))
	require.True(t, totals.Cash.Equal(decimal.NewFromInt(2490)))
	require.True(t, totals.Debit.Equal(decimal.RequireFromString("2500.5")))
	require.True(t, totals.Transfer.IsZero())
}

func TestUserRepositoryFallbackPrefersSuperuser(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	_, err := repo.Fallback(ctx)
	require.Error(t, err, "empty directory")

	require.NoError(t, repo.Create(ctx, &models.User{Username: "cajero", Name: "Cajero Uno"}))
	actor, err := repo.Fallback(ctx)
	require.NoError(t, err)
	require.Equal(t, "cajero", actor.Name)

	require.NoError(t, repo.Create(ctx, &models.User{Username: "mundaca", IsSuperuser: true}))
	actor, err = repo.Fallback(ctx)
	require.NoError(t, err)
	require.Equal(t, "mundaca", actor.Name)
	require.Equal(t, uint(2), *actor.ID)

	looked, err := repo.Lookup(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "cajero", looked.Name)

	_, err = repo.Lookup(ctx, 99)
	require.Error(t, err)
}
