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

	"github.com/noah-isme/almacen-api/internal/dto"
	"github.com/noah-isme/almacen-api/internal/models"
	"github.com/noah-isme/almacen-api/internal/repository"
)

// CreditService manages customer credit accounts ("fiados").
type CreditService interface {
	Open(ctx context.Context, payload dto.CreditRequest) (dto.CreditResponse, error)
	Pay(ctx context.Context, creditID uint, payload dto.CreditPaymentRequest) (dto.CreditResponse, error)
	ListOpen(ctx context.Context) ([]dto.CreditResponse, error)
}

type creditService struct {
	repo      repository.CreditRepository
	registers repository.RegisterRepository
	mutator   *repository.Mutator
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewCreditService constructs the credit service.
func NewCreditService(repo repository.CreditRepository, registers repository.RegisterRepository, mutator *repository.Mutator, validator *validator.Validate, logger zerolog.Logger) CreditService {
	return &creditService{
		repo:      repo,
		registers: registers,
		mutator:   mutator,
		validator: validator,
		logger:    logger.With().Str("component", "credit_service").Logger(),
	}
}

func (s *creditService) Open(ctx context.Context, payload dto.CreditRequest) (dto.CreditResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CreditResponse{}, err
	}
	total, err := parseAmount(payload.Total, "total", false)
	if err != nil {
		return dto.CreditResponse{}, err
	}

	var credit models.Credit
	err = s.mutator.InTx(ctx, func(ctx context.Context) error {
		register, err := activeRegister(ctx, s.registers)
		if err != nil {
			return err
		}
		credit = models.Credit{
			Customer:   strings.TrimSpace(payload.Customer),
			Phone:      strings.TrimSpace(payload.Phone),
			Total:      total,
			Balance:    total,
			Status:     models.CreditOpen,
			Note:       strings.TrimSpace(payload.Note),
			UserID:     userIDOrZero(actingUser(ctx, register)),
			RegisterID: register.ID,
		}
		return s.mutator.Create(ctx, &credit)
	})
	if err != nil {
		return dto.CreditResponse{}, err
	}
	return dto.NewCreditResponse(credit), nil
}

// Pay records a payment and lowers the balance, settling the account when it
// reaches zero.
func (s *creditService) Pay(ctx context.Context, creditID uint, payload dto.CreditPaymentRequest) (dto.CreditResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/almacen-api/internal/service/credit")
	ctx, span := tracer.Start(ctx, "credit.pay")
	span.SetAttributes(attribute.Int64("credit.id", int64(creditID)))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.CreditResponse{}, err
	}
	amount, err := parseAmount(payload.Amount, "amount", false)
	if err != nil {
		return dto.CreditResponse{}, err
	}

	var credit *models.Credit
	err = s.mutator.InTx(ctx, func(ctx context.Context) error {
		register, err := activeRegister(ctx, s.registers)
		if err != nil {
			return err
		}
		credit, err = s.repo.GetByID(ctx, creditID)
		if err != nil {
			return notFound(err)
		}
		if credit.Status != models.CreditOpen {
			return ErrCreditClosed
		}
		if amount.GreaterThan(credit.Balance) {
			return fmt.Errorf("%w: exceeds balance", ErrInvalidAmount)
		}

		payment := models.CreditPayment{
			CreditID:      credit.ID,
			Amount:        amount,
			PaymentMethod: payload.PaymentMethod,
			Reference:     strings.TrimSpace(payload.Reference),
			UserID:        userIDOrZero(actingUser(ctx, register)),
			RegisterID:    register.ID,
			Credit:        credit,
		}
		if err := s.mutator.Create(ctx, &payment); err != nil {
			return err
		}

		return s.mutator.Update(ctx, credit, func() error {
			credit.Balance = credit.Balance.Sub(amount)
			if credit.Balance.IsZero() {
				credit.Status = models.CreditPaid
			}
			return nil
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "credit_payment_failed")
		return dto.CreditResponse{}, err
	}
	return dto.NewCreditResponse(*credit), nil
}

func (s *creditService) ListOpen(ctx context.Context) ([]dto.CreditResponse, error) {
	credits, err := s.repo.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.CreditResponse, 0, len(credits))
	for _, credit := range credits {
		responses = append(responses, dto.NewCreditResponse(credit))
	}
	return responses, nil
}
