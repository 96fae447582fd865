package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/almacen-api/internal/audit"
	"github.com/noah-isme/almacen-api/internal/dto"
	"github.com/noah-isme/almacen-api/internal/models"
	"github.com/noah-isme/almacen-api/internal/repository"
	"github.com/noah-isme/almacen-api/pkg/numfmt"
)

// SaleService records checkouts against the open register.
type SaleService interface {
	Create(ctx context.Context, payload dto.SaleRequest) (dto.SaleResponse, error)
	Get(ctx context.Context, id uint) (dto.SaleResponse, error)
	ListCurrent(ctx context.Context) ([]dto.SaleResponse, error)
}

type saleService struct {
	sales     repository.SaleRepository
	registers repository.RegisterRepository
	catalog   repository.CatalogRepository
	mutator   *repository.Mutator
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewSaleService constructs the sale service.
func NewSaleService(sales repository.SaleRepository, registers repository.RegisterRepository, catalog repository.CatalogRepository, mutator *repository.Mutator, validator *validator.Validate, logger zerolog.Logger) SaleService {
	return &saleService{
		sales:     sales,
		registers: registers,
		catalog:   catalog,
		mutator:   mutator,
		validator: validator,
		logger:    logger.With().Str("component", "sale_service").Logger(),
	}
}

// Create stores the sale, records the SALE event and decrements stock. The
// stock updates run under the sale's cause so they are not logged as generic
// product edits, while low stock alerts still fire.
func (s *saleService) Create(ctx context.Context, payload dto.SaleRequest) (dto.SaleResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/almacen-api/internal/service/sale")
	ctx, span := tracer.Start(ctx, "sale.create")
	span.SetAttributes(
		attribute.String("sale.payment_method", payload.PaymentMethod),
		attribute.Int("sale.lines", len(payload.Lines)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SaleResponse{}, err
	}

	var sale models.Sale
	err := s.mutator.InTx(ctx, func(ctx context.Context) error {
		register, err := activeRegister(ctx, s.registers)
		if err != nil {
			return err
		}

		products := make([]*models.Product, 0, len(payload.Lines))
		loaded := map[uint]*models.Product{}
		requested := map[uint]decimal.Decimal{}
		total := decimal.Zero
		lines := make([]models.SaleLine, 0, len(payload.Lines))
		for _, line := range payload.Lines {
			quantity, err := parseAmount(line.Quantity, "quantity", false)
			if err != nil {
				return err
			}
			product, ok := loaded[line.ProductID]
			if !ok {
				product, err = s.catalog.GetProduct(ctx, line.ProductID)
				if err != nil {
					return notFound(err)
				}
				loaded[product.ID] = product
			}
			requested[product.ID] = requested[product.ID].Add(quantity)
			if product.Stock.LessThan(requested[product.ID]) {
				return fmt.Errorf("%w: %s", ErrInsufficientStock, product.Name)
			}

			subtotal := product.SalePrice.Mul(quantity).Round(2)
			total = total.Add(subtotal)
			lines = append(lines, models.SaleLine{
				ProductID: product.ID,
				Quantity:  quantity,
				UnitPrice: product.SalePrice,
				Subtotal:  subtotal,
			})
			products = append(products, product)
		}

		sale = models.Sale{
			Total:         total,
			PaymentMethod: payload.PaymentMethod,
			UserID:        userIDOrZero(actingUser(ctx, register)),
			RegisterID:    register.ID,
			Lines:         lines,
		}
		if err := s.mutator.Create(ctx, &sale); err != nil {
			return err
		}

		caused := audit.WithCause(ctx, audit.CategorySale)
		cashier := sale.UserID
		// The sale shares its correlation id with the stock changes it causes.
		s.mutator.Emit(audit.WithCorrelation(ctx, audit.CorrelationFromContext(caused)), audit.Event{
			Category:    audit.CategorySale,
			Description: fmt.Sprintf("Venta %d total %s (%s)", sale.ID, numfmt.MoneyOr(sale.Total), sale.PaymentMethod),
			EntityType:  models.EntitySale,
			EntityID:    sale.AuditID(),
			Fingerprint: fmt.Sprintf("sale:%d", sale.ID),
			ActorID:     &cashier,
		})

		for i, product := range products {
			product, sold := product, lines[i].Quantity
			if err := s.mutator.Update(caused, product, func() error {
				product.Stock = product.Stock.Sub(sold)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "sale_failed")
		return dto.SaleResponse{}, err
	}

	span.SetAttributes(attribute.Int64("sale.id", int64(sale.ID)))
	return dto.NewSaleResponse(sale), nil
}

func (s *saleService) Get(ctx context.Context, id uint) (dto.SaleResponse, error) {
	sale, err := s.sales.GetByID(ctx, id)
	if err != nil {
		return dto.SaleResponse{}, notFound(err)
	}
	return dto.NewSaleResponse(*sale), nil
}

// ListCurrent returns the sales of the open register.
func (s *saleService) ListCurrent(ctx context.Context) ([]dto.SaleResponse, error) {
	register, err := activeRegister(ctx, s.registers)
	if err != nil {
		return nil, err
	}
	sales, err := s.sales.ListByRegister(ctx, register.ID)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.SaleResponse, 0, len(sales))
	for _, sale := range sales {
		responses = append(responses, dto.NewSaleResponse(sale))
	}
	return responses, nil
}
