package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/almacen-api/internal/database"
	"github.com/noah-isme/almacen-api/internal/models"
)

// CreditRepository reads customer credit accounts and their payments.
type CreditRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Credit, error)
	ListOpen(ctx context.Context) ([]models.Credit, error)
	Payments(ctx context.Context, creditID uint) ([]models.CreditPayment, error)
}

type creditRepository struct {
	db *gorm.DB
}

// NewCreditRepository constructs the credit repository.
func NewCreditRepository(db *gorm.DB) CreditRepository {
	return &creditRepository{db: db}
}

func (r *creditRepository) GetByID(ctx context.Context, id uint) (*models.Credit, error) {
	var credit models.Credit
	if err := database.Conn(ctx, r.db).First(&credit, id).Error; err != nil {
		return nil, err
	}
	return &credit, nil
}

func (r *creditRepository) ListOpen(ctx context.Context) ([]models.Credit, error) {
	var credits []models.Credit
	if err := database.Conn(ctx, r.db).Where("estado = ?", models.CreditOpen).Order("fecha DESC").Find(&credits).Error; err != nil {
		return nil, err
	}
	return credits, nil
}

func (r *creditRepository) Payments(ctx context.Context, creditID uint) ([]models.CreditPayment, error) {
	var payments []models.CreditPayment
	if err := database.Conn(ctx, r.db).Where("fiado_id = ?", creditID).Order("id ASC").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}
