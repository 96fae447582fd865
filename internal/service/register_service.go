package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/noah-isme/almacen-api/internal/audit"
	"github.com/noah-isme/almacen-api/internal/dto"
	"github.com/noah-isme/almacen-api/internal/models"
	"github.com/noah-isme/almacen-api/internal/repository"
	"github.com/noah-isme/almacen-api/pkg/numfmt"
)

// RegisterService opens and closes the daily cash register.
type RegisterService interface {
	Open(ctx context.Context, payload dto.RegisterOpenRequest) (dto.RegisterResponse, error)
	Close(ctx context.Context) (dto.RegisterResponse, error)
	Current(ctx context.Context) (dto.RegisterResponse, error)
}

type registerService struct {
	repo      repository.RegisterRepository
	mutator   *repository.Mutator
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewRegisterService constructs the register service.
func NewRegisterService(repo repository.RegisterRepository, mutator *repository.Mutator, validator *validator.Validate, logger zerolog.Logger) RegisterService {
	return &registerService{
		repo:      repo,
		mutator:   mutator,
		validator: validator,
		logger:    logger.With().Str("component", "register_service").Logger(),
		now:       time.Now,
	}
}

// Open starts the register of the day. A register closed earlier the same day
// is reopened instead of creating a second one.
func (s *registerService) Open(ctx context.Context, payload dto.RegisterOpenRequest) (dto.RegisterResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/almacen-api/internal/service/register")
	ctx, span := tracer.Start(ctx, "register.open")
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.RegisterResponse{}, err
	}
	amount, err := parseAmount(payload.OpeningAmount, "opening_amount", true)
	if err != nil {
		return dto.RegisterResponse{}, err
	}

	var register models.Register
	err = s.mutator.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.repo.Active(ctx); err == nil {
			return ErrRegisterAlreadyOpen
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := s.now().UTC()
		opener := actingUser(ctx, nil)

		existing, err := s.repo.FindByDate(ctx, now)
		switch {
		case err == nil:
			register = *existing
			if err := s.mutator.Update(ctx, &register, func() error {
				register.Open = true
				register.ClosedAt = nil
				register.ClosedByID = nil
				return nil
			}); err != nil {
				return err
			}
			s.mutator.Emit(ctx, audit.Event{
				Category:    audit.CategoryRegisterOpened,
				Description: "Caja reabierta",
				EntityType:  models.EntityRegister,
				EntityID:    register.AuditID(),
				Fingerprint: fmt.Sprintf("register:%d:reopened:%d", register.ID, now.Unix()),
				ActorID:     opener,
			})
			return nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		register = models.Register{
			Date:          repository.DayOf(now),
			OpeningAmount: amount,
			Open:          true,
			OpenedByID:    opener,
			OpenedAt:      now,
		}
		if err := s.mutator.Create(ctx, &register); err != nil {
			return err
		}
		s.mutator.Emit(ctx, audit.Event{
			Category:    audit.CategoryRegisterOpened,
			Description: "Caja abierta. Monto inicial " + numfmt.MoneyOr(register.OpeningAmount),
			EntityType:  models.EntityRegister,
			EntityID:    register.AuditID(),
			Fingerprint: fmt.Sprintf("register:%d:opened:%d", register.ID, now.Unix()),
			ActorID:     opener,
		})
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "register_open_failed")
		return dto.RegisterResponse{}, err
	}

	span.SetAttributes(attribute.Int64("register.id", int64(register.ID)))
	return dto.NewRegisterResponse(register), nil
}

// Close totals the session's sales and closes the active register.
func (s *registerService) Close(ctx context.Context) (dto.RegisterResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/almacen-api/internal/service/register")
	ctx, span := tracer.Start(ctx, "register.close")
	defer span.End()

	var register models.Register
	err := s.mutator.InTx(ctx, func(ctx context.Context) error {
		active, err := activeRegister(ctx, s.repo)
		if err != nil {
			return err
		}
		register = *active

		totals, err := s.repo.Totals(ctx, register.ID)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		closer := actingUser(ctx, &register)

		// Emitted before the update so the register is still the active session.
		s.mutator.Emit(ctx, audit.Event{
			Category:    audit.CategoryRegisterClosed,
			Description: "Caja cerrada. Total vendido: " + numfmt.MoneyOr(totals.Sold),
			EntityType:  models.EntityRegister,
			EntityID:    register.AuditID(),
			Fingerprint: fmt.Sprintf("register:%d:closed:%d", register.ID, now.Unix()),
			ActorID:     closer,
		})

		return s.mutator.Update(ctx, &register, func() error {
			register.TotalSold = totals.Sold
			register.TotalCash = totals.Cash
			register.TotalDebit = totals.Debit
			register.TotalTransfer = totals.Transfer
			register.Open = false
			register.ClosedAt = &now
			register.ClosedByID = closer
			return nil
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "register_close_failed")
		return dto.RegisterResponse{}, err
	}

	span.SetAttributes(attribute.Int64("register.id", int64(register.ID)))
	return dto.NewRegisterResponse(register), nil
}

func (s *registerService) Current(ctx context.Context) (dto.RegisterResponse, error) {
	register, err := activeRegister(ctx, s.repo)
	if err != nil {
		return dto.RegisterResponse{}, err
	}
	return dto.NewRegisterResponse(*register), nil
}

// actingUser returns the request user, else the owner of register.
func actingUser(ctx context.Context, register *models.Register) *uint {
	if id, ok := audit.ActorFromContext(ctx); ok {
		return &id
	}
	if register != nil && register.OpenedByID != nil {
		id := *register.OpenedByID
		return &id
	}
	return nil
}

func userIDOrZero(id *uint) uint {
	if id == nil {
		return 0
	}
	return *id
}

func activeRegister(ctx context.Context, repo repository.RegisterRepository) (*models.Register, error) {
	register, err := repo.Active(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoOpenRegister
	}
	return register, err
}
