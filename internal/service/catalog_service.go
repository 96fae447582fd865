package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/almacen-api/internal/dto"
	"github.com/noah-isme/almacen-api/internal/models"
	"github.com/noah-isme/almacen-api/internal/repository"
)

// CatalogService manages categories and products.
type CatalogService interface {
	ListCategories(ctx context.Context) ([]dto.CategoryResponse, error)
	CreateCategory(ctx context.Context, payload dto.CategoryRequest) (dto.CategoryResponse, error)
	UpdateCategory(ctx context.Context, id uint, payload dto.CategoryRequest) (dto.CategoryResponse, error)
	DeleteCategory(ctx context.Context, id uint) error
	ListProducts(ctx context.Context, filter repository.ProductFilter) ([]dto.ProductResponse, error)
	CreateProduct(ctx context.Context, payload dto.ProductRequest) (dto.ProductResponse, error)
	UpdateProduct(ctx context.Context, id uint, payload dto.ProductRequest) (dto.ProductResponse, error)
	DeleteProduct(ctx context.Context, id uint) error
}

type catalogService struct {
	repo      repository.CatalogRepository
	mutator   *repository.Mutator
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewCatalogService constructs the catalog service.
func NewCatalogService(repo repository.CatalogRepository, mutator *repository.Mutator, validator *validator.Validate, logger zerolog.Logger) CatalogService {
	return &catalogService{
		repo:      repo,
		mutator:   mutator,
		validator: validator,
		logger:    logger.With().Str("component", "catalog_service").Logger(),
	}
}

func (s *catalogService) ListCategories(ctx context.Context) ([]dto.CategoryResponse, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.CategoryResponse, 0, len(categories))
	for _, category := range categories {
		responses = append(responses, dto.NewCategoryResponse(category))
	}
	return responses, nil
}

func (s *catalogService) CreateCategory(ctx context.Context, payload dto.CategoryRequest) (dto.CategoryResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CategoryResponse{}, err
	}

	category := models.Category{
		Name:        strings.TrimSpace(payload.Name),
		Description: trimmedOrNil(payload.Description),
	}
	err := s.mutator.InTx(ctx, func(ctx context.Context) error {
		return s.mutator.Create(ctx, &category)
	})
	if err != nil {
		return dto.CategoryResponse{}, err
	}
	return dto.NewCategoryResponse(category), nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, id uint, payload dto.CategoryRequest) (dto.CategoryResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CategoryResponse{}, err
	}

	var updated models.Category
	err := s.mutator.InTx(ctx, func(ctx context.Context) error {
		category, err := s.repo.GetCategory(ctx, id)
		if err != nil {
			return notFound(err)
		}
		if err := s.mutator.Update(ctx, category, func() error {
			category.Name = strings.TrimSpace(payload.Name)
			category.Description = trimmedOrNil(payload.Description)
			return nil
		}); err != nil {
			return err
		}
		updated = *category
		return nil
	})
	if err != nil {
		return dto.CategoryResponse{}, err
	}
	return dto.NewCategoryResponse(updated), nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, id uint) error {
	return s.mutator.InTx(ctx, func(ctx context.Context) error {
		category, err := s.repo.GetCategory(ctx, id)
		if err != nil {
			return notFound(err)
		}
		products, err := s.repo.ListProducts(ctx, repository.ProductFilter{CategoryID: &id})
		if err != nil {
			return err
		}
		if len(products) > 0 {
			return ErrCategoryInUse
		}
		return s.mutator.Delete(ctx, category)
	})
}

func (s *catalogService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]dto.ProductResponse, error) {
	products, err := s.repo.ListProducts(ctx, filter)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.ProductResponse, 0, len(products))
	for _, product := range products {
		responses = append(responses, dto.NewProductResponse(product))
	}
	return responses, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, payload dto.ProductRequest) (dto.ProductResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProductResponse{}, err
	}

	var product models.Product
	if err := applyProduct(&product, payload); err != nil {
		return dto.ProductResponse{}, err
	}

	err := s.mutator.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetCategory(ctx, product.CategoryID); err != nil {
			return notFound(err)
		}
		return s.mutator.Create(ctx, &product)
	})
	if err != nil {
		return dto.ProductResponse{}, err
	}
	return dto.NewProductResponse(product), nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id uint, payload dto.ProductRequest) (dto.ProductResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProductResponse{}, err
	}

	var updated models.Product
	err := s.mutator.InTx(ctx, func(ctx context.Context) error {
		product, err := s.repo.GetProduct(ctx, id)
		if err != nil {
			return notFound(err)
		}
		if payload.CategoryID != product.CategoryID {
			if _, err := s.repo.GetCategory(ctx, payload.CategoryID); err != nil {
				return notFound(err)
			}
		}
		if err := s.mutator.Update(ctx, product, func() error {
			return applyProduct(product, payload)
		}); err != nil {
			return err
		}
		updated = *product
		return nil
	})
	if err != nil {
		return dto.ProductResponse{}, err
	}
	return dto.NewProductResponse(updated), nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, id uint) error {
	return s.mutator.InTx(ctx, func(ctx context.Context) error {
		product, err := s.repo.GetProduct(ctx, id)
		if err != nil {
			return notFound(err)
		}
		return s.mutator.Delete(ctx, product)
	})
}

func applyProduct(product *models.Product, payload dto.ProductRequest) error {
	stock, err := parseAmount(payload.Stock, "stock", true)
	if err != nil {
		return err
	}
	minimum, err := parseAmount(payload.MinimumStock, "minimum_stock", true)
	if err != nil {
		return err
	}
	purchase, err := parseAmount(payload.PurchasePrice, "purchase_price", true)
	if err != nil {
		return err
	}
	sale, err := parseAmount(payload.SalePrice, "sale_price", true)
	if err != nil {
		return err
	}

	product.Name = strings.TrimSpace(payload.Name)
	product.Barcode = trimmedOrNil(&payload.Barcode)
	product.CategoryID = payload.CategoryID
	product.Kind = payload.Kind
	product.BaseUnit = strings.TrimSpace(payload.BaseUnit)
	product.Stock = stock
	product.MinimumStock = minimum
	product.PurchasePrice = purchase
	product.SalePrice = sale
	return nil
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
