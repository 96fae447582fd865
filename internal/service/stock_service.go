package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/almacen-api/internal/audit"
	"github.com/noah-isme/almacen-api/internal/dto"
	"github.com/noah-isme/almacen-api/internal/models"
	"github.com/noah-isme/almacen-api/internal/repository"
	"github.com/noah-isme/almacen-api/pkg/numfmt"
)

// StockService records goods received into the store.
type StockService interface {
	Receive(ctx context.Context, payload dto.StockReceiptRequest) (dto.StockReceiptResponse, error)
	Get(ctx context.Context, id uint) (dto.StockReceiptResponse, error)
}

type stockService struct {
	receipts  repository.StockReceiptRepository
	registers repository.RegisterRepository
	catalog   repository.CatalogRepository
	mutator   *repository.Mutator
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewStockService constructs the stock receipt service.
func NewStockService(receipts repository.StockReceiptRepository, registers repository.RegisterRepository, catalog repository.CatalogRepository, mutator *repository.Mutator, validator *validator.Validate, logger zerolog.Logger) StockService {
	return &stockService{
		receipts:  receipts,
		registers: registers,
		catalog:   catalog,
		mutator:   mutator,
		validator: validator,
		logger:    logger.With().Str("component", "stock_service").Logger(),
	}
}

func (s *stockService) Receive(ctx context.Context, payload dto.StockReceiptRequest) (dto.StockReceiptResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/almacen-api/internal/service/stock")
	ctx, span := tracer.Start(ctx, "stock.receive")
	span.SetAttributes(attribute.Int("stock.lines", len(payload.Lines)))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.StockReceiptResponse{}, err
	}

	var receipt models.StockReceipt
	err := s.mutator.InTx(ctx, func(ctx context.Context) error {
		var owner *models.Register
		if register, err := s.registers.Active(ctx); err == nil {
			owner = register
		}

		products := make([]*models.Product, 0, len(payload.Lines))
		loaded := map[uint]*models.Product{}
		lines := make([]models.StockReceiptLine, 0, len(payload.Lines))
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
			lines = append(lines, models.StockReceiptLine{ProductID: product.ID, Quantity: quantity})
			products = append(products, product)
		}

		receipt = models.StockReceipt{
			UserID: userIDOrZero(actingUser(ctx, owner)),
			Note:   trimmedOrNil(payload.Note),
			Lines:  lines,
		}
		if err := s.mutator.Create(ctx, &receipt); err != nil {
			return err
		}

		parts := make([]string, 0, len(lines))
		for i, line := range lines {
			parts = append(parts, fmt.Sprintf("%s +%s", products[i].Name, numfmt.Quantity(line.Quantity)))
		}
		caused := audit.WithCause(ctx, audit.CategoryStockReceipt)
		receiver := receipt.UserID
		s.mutator.Emit(audit.WithCorrelation(ctx, audit.CorrelationFromContext(caused)), audit.Event{
			Category:    audit.CategoryStockReceipt,
			Description: fmt.Sprintf("Ingreso de stock %d: %s", receipt.ID, strings.Join(parts, "; ")),
			EntityType:  models.EntityStockReceipt,
			EntityID:    receipt.AuditID(),
			Fingerprint: fmt.Sprintf("stock_receipt:%d", receipt.ID),
			ActorID:     &receiver,
		})

		for i, product := range products {
			product, received := product, lines[i].Quantity
			if err := s.mutator.Update(caused, product, func() error {
				product.Stock = product.Stock.Add(received)
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "stock_receipt_failed")
		return dto.StockReceiptResponse{}, err
	}

	span.SetAttributes(attribute.Int64("stock.receipt_id", int64(receipt.ID)))
	return dto.NewStockReceiptResponse(receipt), nil
}

func (s *stockService) Get(ctx context.Context, id uint) (dto.StockReceiptResponse, error) {
	receipt, err := s.receipts.GetByID(ctx, id)
	if err != nil {
		return dto.StockReceiptResponse{}, notFound(err)
	}
	return dto.NewStockReceiptResponse(*receipt), nil
}
