package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/noah-isme/almacen-api/internal/database"
	"github.com/noah-isme/almacen-api/internal/models"
)

// ProductFilter narrows product listings.
type ProductFilter struct {
	CategoryID *uint
	Search     string
	LowStock   bool
}

// CatalogRepository reads categories and products. Writes go through the Mutator.
type CatalogRepository interface {
	GetCategory(ctx context.Context, id uint) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error)
}

type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository constructs the catalog repository.
func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := database.Conn(ctx, r.db).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *catalogRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := database.Conn(ctx, r.db).Order("nombre ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *catalogRepository) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := database.Conn(ctx, r.db).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *catalogRepository) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	query := database.Conn(ctx, r.db).Model(&models.Product{})

	if filter.CategoryID != nil {
		query = query.Where("categoria_id = ?", *filter.CategoryID)
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(nombre) LIKE ? OR codigo_barra = ?", like, search)
	}

	if filter.LowStock {
		query = query.Where("stock_minimo > 0 AND stock_actual_base <= stock_minimo")
	}

	var products []models.Product
	if err := query.Order("nombre ASC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}
