package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/almacen-api/internal/audit"
	"github.com/noah-isme/almacen-api/internal/database"
	"github.com/noah-isme/almacen-api/internal/models"
)

// ActivityFilter narrows activity queries.
type ActivityFilter struct {
	Page       int
	PageSize   int
	Category   string
	ActorID    *uint
	SessionID  *uint
	EntityType string
	From       *time.Time
	To         *time.Time
	Ascending  bool
}

// ActivityRepository is the append-only activity log. There is deliberately
// no update or delete.
type ActivityRepository interface {
	Append(ctx context.Context, activity *models.Activity) error
	Exists(ctx context.Context, query audit.DedupQuery) (bool, error)
	List(ctx context.Context, filter ActivityFilter) ([]models.Activity, int64, error)
}

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository constructs the activity repository.
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

// Append inserts inside a nested transaction so that, when ctx carries the
// business transaction, a failed insert rolls back to a savepoint instead of
// aborting the whole transaction.
func (r *activityRepository) Append(ctx context.Context, activity *models.Activity) error {
	return database.Conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		return tx.Create(activity).Error
	})
}

func (r *activityRepository) Exists(ctx context.Context, query audit.DedupQuery) (bool, error) {
	q := database.Conn(ctx, r.db).Model(&models.Activity{}).
		Where("category = ?", string(query.Category)).
		Where("created_at >= ?", query.Since)

	if query.SessionID != nil {
		q = q.Where("session_id = ?", *query.SessionID)
	} else {
		q = q.Where("session_id IS NULL")
	}

	if query.Fingerprint != "" {
		q = q.Where("fingerprint = ?", query.Fingerprint)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *activityRepository) List(ctx context.Context, filter ActivityFilter) ([]models.Activity, int64, error) {
	query := database.Conn(ctx, r.db).Model(&models.Activity{})

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	if filter.ActorID != nil {
		query = query.Where("actor_id = ?", *filter.ActorID)
	}

	if filter.SessionID != nil {
		query = query.Where("session_id = ?", *filter.SessionID)
	}

	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}

	if filter.From != nil {
		query = query.Where("created_at >= ?", filter.From.UTC())
	}

	if filter.To != nil {
		query = query.Where("created_at <= ?", filter.To.UTC())
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	order := "created_at DESC, id DESC"
	if filter.Ascending {
		order = "created_at ASC, id ASC"
	}

	var entries []models.Activity
	if err := query.Order(order).Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
