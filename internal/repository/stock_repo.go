package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/almacen-api/internal/database"
	"github.com/noah-isme/almacen-api/internal/models"
)

// StockReceiptRepository reads stock receipts with their lines.
type StockReceiptRepository interface {
	GetByID(ctx context.Context, id uint) (*models.StockReceipt, error)
}

type stockReceiptRepository struct {
	db *gorm.DB
}

// NewStockReceiptRepository constructs the stock receipt repository.
func NewStockReceiptRepository(db *gorm.DB) StockReceiptRepository {
	return &stockReceiptRepository{db: db}
}

func (r *stockReceiptRepository) GetByID(ctx context.Context, id uint) (*models.StockReceipt, error) {
	var receipt models.StockReceipt
	if err := database.Conn(ctx, r.db).Preload("Lines.Product").First(&receipt, id).Error; err != nil {
		return nil, err
	}
	return &receipt, nil
}
