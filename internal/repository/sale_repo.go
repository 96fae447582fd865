package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/almacen-api/internal/database"
	"github.com/noah-isme/almacen-api/internal/models"
)

// SaleRepository reads recorded sales.
type SaleRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Sale, error)
	ListByRegister(ctx context.Context, registerID uint) ([]models.Sale, error)
}

type saleRepository struct {
	db *gorm.DB
}

// NewSaleRepository constructs the sale repository.
func NewSaleRepository(db *gorm.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) GetByID(ctx context.Context, id uint) (*models.Sale, error) {
	var sale models.Sale
	if err := database.Conn(ctx, r.db).Preload("Lines").First(&sale, id).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *saleRepository) ListByRegister(ctx context.Context, registerID uint) ([]models.Sale, error) {
	var sales []models.Sale
	if err := database.Conn(ctx, r.db).Where("caja_id = ?", registerID).Order("id ASC").Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}
