package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/almacen-api/internal/audit"
	"github.com/noah-isme/almacen-api/internal/dto"
	"github.com/noah-isme/almacen-api/internal/models"
	"github.com/noah-isme/almacen-api/internal/repository"
)

type memoryActivityRepo struct {
	entries []models.Activity
	last    repository.ActivityFilter
}

func (m *memoryActivityRepo) Append(ctx context.Context, entry *models.Activity) error {
	entry.ID = uint(len(m.entries) + 1)
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryActivityRepo) Exists(ctx context.Context, query audit.DedupQuery) (bool, error) {
	return false, nil
}

func (m *memoryActivityRepo) List(ctx context.Context, filter repository.ActivityFilter) ([]models.Activity, int64, error) {
	m.last = filter
	filtered := make([]models.Activity, 0, len(m.entries))
	for _, entry := range m.entries {
		if filter.Category != "" && entry.Category != filter.Category {
			continue
		}
		if filter.SessionID != nil && (entry.SessionID == nil || *entry.SessionID != *filter.SessionID) {
			continue
		}
		filtered = append(filtered, entry)
	}
	return filtered, int64(len(filtered)), nil
}

func ptrUint(v uint) *uint {
	return &v
}

func TestActivityServiceListNormalisesFilters(t *testing.T) {
	repo := &memoryActivityRepo{}
	require.NoError(t, repo.Append(context.Background(), &models.Activity{Category: "SALE", Description: "Venta 1 total $1.500 (EFECTIVO)", SessionID: ptrUint(1), CreatedAt: time.Now()}))
	require.NoError(t, repo.Append(context.Background(), &models.Activity{Category: "CREATED", Description: "Creado Categoría 'Bebidas'", CreatedAt: time.Now()}))

	svc := NewActivityService(repo, testLogger())

	resp, err := svc.List(context.Background(), dto.ActivityListRequest{Category: " sale ", PageSize: 10, SessionID: 1, EntityType: " Sale "})
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	require.Equal(t, "SALE", repo.last.Category)
	require.Equal(t, "sale", repo.last.EntityType)
	require.Equal(t, uint(1), *repo.last.SessionID)
	require.Nil(t, repo.last.ActorID)
	require.Equal(t, 1, resp.Pagination.Page)
	require.Equal(t, 1, resp.Pagination.TotalPages)
}

func TestActivityServiceRejectsInvalidFilters(t *testing.T) {
	svc := NewActivityService(&memoryActivityRepo{}, testLogger())

	_, err := svc.List(context.Background(), dto.ActivityListRequest{Category: "REFUND"})
	require.ErrorIs(t, err, ErrInvalidFilter)

	from := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	to := from.Add(-time.Hour)
	_, err = svc.List(context.Background(), dto.ActivityListRequest{From: &from, To: &to})
	require.ErrorIs(t, err, ErrInvalidFilter)
}
