package dto

import (
	"time"

	"github.com/noah-isme/almacen-api/internal/models"
)

// PaginationMeta describes pagination details for list endpoints.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// ActivityListRequest defines filters for the activity trail.
type ActivityListRequest struct {
	Page       int
	PageSize   int
	Category   string
	ActorID    uint
	SessionID  uint
	EntityType string
	From       *time.Time
	To         *time.Time
	Ascending  bool
}

// ActivityResponse serializes one activity record.
type ActivityResponse struct {
	ID            uint                   `json:"id"`
	CreatedAt     time.Time              `json:"created_at"`
	Category      string                 `json:"category"`
	Description   string                 `json:"description"`
	ActorID       *uint                  `json:"actor_id"`
	ActorName     string                 `json:"actor_name"`
	SessionID     *uint                  `json:"session_id"`
	EntityType    string                 `json:"entity_type,omitempty"`
	EntityID      string                 `json:"entity_id,omitempty"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

// ActivityListResponse wraps paginated activity records.
type ActivityListResponse struct {
	Items      []ActivityResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
}

// ActivityFeedRequest describes the query for the current session feed.
type ActivityFeedRequest struct {
	Page     int
	PageSize int
	Category string
}

// ActivityFeedResponse is the cached session feed.
type ActivityFeedResponse struct {
	SessionID  *uint              `json:"session_id"`
	Items      []ActivityResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
	CacheHit   bool               `json:"cache_hit"`
}

// NewActivityResponse converts a model into an activity DTO.
func NewActivityResponse(entry models.Activity) ActivityResponse {
	var metadata map[string]interface{}
	if len(entry.Metadata) > 0 {
		metadata = map[string]interface{}(entry.Metadata)
	}
	return ActivityResponse{
		ID:            entry.ID,
		CreatedAt:     entry.CreatedAt,
		Category:      entry.Category,
		Description:   entry.Description,
		ActorID:       entry.ActorID,
		ActorName:     entry.ActorName,
		SessionID:     entry.SessionID,
		EntityType:    entry.EntityType,
		EntityID:      entry.EntityID,
		CorrelationID: entry.CorrelationID,
		Metadata:      metadata,
	}
}
