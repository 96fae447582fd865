package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/almacen-api/internal/audit"
	"github.com/noah-isme/almacen-api/internal/dto"
	"github.com/noah-isme/almacen-api/internal/models"
)

type stubSessions struct {
	session *audit.SessionRef
}

func (s stubSessions) ActiveSession(ctx context.Context) (*audit.SessionRef, error) {
	return s.session, nil
}

func TestActivityFeedServiceCache(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer redisClient.Close()

	repo := &memoryActivityRepo{}
	require.NoError(t, repo.Append(context.Background(), &models.Activity{Category: "SALE", SessionID: ptrUint(3), CreatedAt: time.Now()}))

	svc := NewActivityFeedService(repo, stubSessions{session: &audit.SessionRef{ID: 3}}, redisClient, time.Minute, testLogger())

	resp, err := svc.Current(context.Background(), dto.ActivityFeedRequest{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.False(t, resp.CacheHit)
	require.Len(t, resp.Items, 1)
	require.Equal(t, uint(3), *resp.SessionID)

	// mutate repo to ensure cache keeps previous result
	repo.entries = nil

	cached, err := svc.Current(context.Background(), dto.ActivityFeedRequest{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.True(t, cached.CacheHit)
	require.Len(t, cached.Items, 1)

	server.FastForward(2 * time.Minute)
	expired, err := svc.Current(context.Background(), dto.ActivityFeedRequest{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.False(t, expired.CacheHit)
	require.Empty(t, expired.Items)
}

func TestActivityFeedServiceWithoutSession(t *testing.T) {
	repo := &memoryActivityRepo{}
	require.NoError(t, repo.Append(context.Background(), &models.Activity{Category: "CREATED", CreatedAt: time.Now()}))

	svc := NewActivityFeedService(repo, stubSessions{}, nil, time.Minute, testLogger())

	resp, err := svc.Current(context.Background(), dto.ActivityFeedRequest{PageSize: 500})
	require.NoError(t, err)
	require.Nil(t, resp.SessionID)
	require.Empty(t, resp.Items)
	require.Equal(t, maxFeedPageSize, resp.Pagination.PageSize)

	svc = NewActivityFeedService(repo, stubSessions{session: &audit.SessionRef{ID: 1}}, nil, time.Minute, testLogger())
	_, err = svc.Current(context.Background(), dto.ActivityFeedRequest{Category: "nope"})
	require.ErrorIs(t, err, ErrInvalidFilter)
}
