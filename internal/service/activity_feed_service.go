package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/almacen-api/internal/audit"
	"github.com/noah-isme/almacen-api/internal/dto"
	"github.com/noah-isme/almacen-api/internal/observability"
	"github.com/noah-isme/almacen-api/internal/repository"
)

const (
	defaultFeedPageSize = 20
	maxFeedPageSize     = 100
)

// ActivityFeedService serves the activity of the open register session, the
// view shown next to the till.
type ActivityFeedService interface {
	Current(ctx context.Context, req dto.ActivityFeedRequest) (dto.ActivityFeedResponse, error)
}

type activityFeedService struct {
	repo     repository.ActivityRepository
	sessions audit.SessionProvider
	cache    *redis.Client
	ttl      time.Duration
	logger   zerolog.Logger
}

// NewActivityFeedService builds the feed service. cache may be nil.
func NewActivityFeedService(repo repository.ActivityRepository, sessions audit.SessionProvider, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) ActivityFeedService {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &activityFeedService{
		repo:     repo,
		sessions: sessions,
		cache:    cache,
		ttl:      ttl,
		logger:   logger.With().Str("component", "activity_feed_service").Logger(),
	}
}

func (s *activityFeedService) Current(ctx context.Context, req dto.ActivityFeedRequest) (dto.ActivityFeedResponse, error) {
	start := time.Now()
	defer func() {
		observability.ActivityFeedLatency().Observe(time.Since(start).Seconds())
	}()

	page := maxInt(req.Page, 1)
	pageSize := clampPageSize(req.PageSize)

	session, err := s.sessions.ActiveSession(ctx)
	if err != nil {
		observability.ActivityFeedRequests().WithLabelValues("error").Inc()
		return dto.ActivityFeedResponse{}, err
	}
	if session == nil {
		observability.ActivityFeedRequests().WithLabelValues("empty").Inc()
		return dto.ActivityFeedResponse{Items: []dto.ActivityResponse{}, Pagination: paginate(page, pageSize, 0)}, nil
	}

	filter := repository.ActivityFilter{
		Page:      page,
		PageSize:  pageSize,
		SessionID: &session.ID,
	}
	if trimmed := strings.TrimSpace(req.Category); trimmed != "" {
		category, err := audit.ParseCategory(trimmed)
		if err != nil {
			return dto.ActivityFeedResponse{}, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
		filter.Category = string(category)
	}

	cacheKey := s.cacheKey(filter)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil && cached != "" {
			var response dto.ActivityFeedResponse
			if err := json.Unmarshal([]byte(cached), &response); err == nil {
				response.CacheHit = true
				observability.ActivityFeedRequests().WithLabelValues("hit").Inc()
				return response, nil
			}
		}
	}

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		observability.ActivityFeedRequests().WithLabelValues("error").Inc()
		return dto.ActivityFeedResponse{}, err
	}

	items := make([]dto.ActivityResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.NewActivityResponse(entry))
	}

	sessionID := session.ID
	response := dto.ActivityFeedResponse{
		SessionID:  &sessionID,
		Items:      items,
		Pagination: paginate(page, pageSize, total),
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.ttl).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to write activity feed cache")
			}
		}
	}

	observability.ActivityFeedRequests().WithLabelValues("miss").Inc()
	return response, nil
}

func (s *activityFeedService) cacheKey(filter repository.ActivityFilter) string {
	return fmt.Sprintf("almacen:activity:feed:%d:%s:%d:%d", *filter.SessionID, filter.Category, filter.Page, filter.PageSize)
}

func clampPageSize(size int) int {
	if size <= 0 {
		return defaultFeedPageSize
	}
	if size > maxFeedPageSize {
		return maxFeedPageSize
	}
	return size
}
