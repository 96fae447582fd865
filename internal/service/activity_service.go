package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/almacen-api/internal/audit"
	"github.com/noah-isme/almacen-api/internal/dto"
	"github.com/noah-isme/almacen-api/internal/repository"
)

// ActivityService exposes read access to the activity trail. Records are
// written only by the audit recorder.
type ActivityService interface {
	List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error)
}

type activityService struct {
	repo   repository.ActivityRepository
	logger zerolog.Logger
}

// NewActivityService constructs the activity service.
func NewActivityService(repo repository.ActivityRepository, logger zerolog.Logger) ActivityService {
	return &activityService{
		repo:   repo,
		logger: logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error) {
	filter := repository.ActivityFilter{
		Page:       req.Page,
		PageSize:   req.PageSize,
		EntityType: strings.ToLower(strings.TrimSpace(req.EntityType)),
		From:       req.From,
		To:         req.To,
		Ascending:  req.Ascending,
	}

	if strings.TrimSpace(req.Category) != "" {
		category, err := audit.ParseCategory(req.Category)
		if err != nil {
			return dto.ActivityListResponse{}, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
		filter.Category = string(category)
	}
	if req.ActorID > 0 {
		actorID := req.ActorID
		filter.ActorID = &actorID
	}
	if req.SessionID > 0 {
		sessionID := req.SessionID
		filter.SessionID = &sessionID
	}
	if req.From != nil && req.To != nil && req.To.Before(*req.From) {
		return dto.ActivityListResponse{}, fmt.Errorf("%w: to precedes from", ErrInvalidFilter)
	}

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.ActivityListResponse{}, err
	}

	responses := make([]dto.ActivityResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.NewActivityResponse(entry))
	}

	return dto.ActivityListResponse{
		Items:      responses,
		Pagination: paginate(req.Page, req.PageSize, total),
	}, nil
}

func paginate(page, pageSize int, total int64) dto.PaginationMeta {
	pagination := dto.PaginationMeta{
		Page:       maxInt(page, 1),
		PageSize:   pageSize,
		TotalItems: total,
	}
	if pageSize > 0 {
		pagination.TotalPages = int(math.Ceil(float64(total) / float64(pageSize)))
	} else {
		pagination.TotalPages = 1
	}
	return pagination
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
