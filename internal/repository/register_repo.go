package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/noah-isme/almacen-api/internal/audit"
	"github.com/noah-isme/almacen-api/internal/database"
	"github.com/noah-isme/almacen-api/internal/models"
)

// RegisterTotals are the plain sums of a register's sales.
type RegisterTotals struct {
	Sold     decimal.Decimal
	Cash     decimal.Decimal
	Debit    decimal.Decimal
	Transfer decimal.Decimal
}

// RegisterRepository reads cash registers and exposes the active one as the
// audit session.
type RegisterRepository interface {
	audit.SessionProvider
	GetByID(ctx context.Context, id uint) (*models.Register, error)
	FindByDate(ctx context.Context, day time.Time) (*models.Register, error)
	Active(ctx context.Context) (*models.Register, error)
	Totals(ctx context.Context, registerID uint) (RegisterTotals, error)
}

type registerRepository struct {
	db *gorm.DB
}

// NewRegisterRepository constructs the register repository.
func NewRegisterRepository(db *gorm.DB) RegisterRepository {
	return &registerRepository{db: db}
}

// DayOf truncates t to its calendar day, expressed in UTC so that stored
// dates compare consistently across drivers.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (r *registerRepository) GetByID(ctx context.Context, id uint) (*models.Register, error) {
	var register models.Register
	if err := database.Conn(ctx, r.db).First(&register, id).Error; err != nil {
		return nil, err
	}
	return &register, nil
}

func (r *registerRepository) FindByDate(ctx context.Context, day time.Time) (*models.Register, error) {
	start := DayOf(day)
	var register models.Register
	err := database.Conn(ctx, r.db).
		Where("fecha >= ? AND fecha < ?", start, start.AddDate(0, 0, 1)).
		Order("id DESC").
		First(&register).Error
	if err != nil {
		return nil, err
	}
	return &register, nil
}

// Active returns the most recently opened register that is still open.
func (r *registerRepository) Active(ctx context.Context) (*models.Register, error) {
	var register models.Register
	err := database.Conn(ctx, r.db).
		Where("abierta = ?", true).
		Order("hora_apertura DESC, id DESC").
		First(&register).Error
	if err != nil {
		return nil, err
	}
	return &register, nil
}

func (r *registerRepository) ActiveSession(ctx context.Context) (*audit.SessionRef, error) {
	register, err := r.Active(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &audit.SessionRef{ID: register.ID, OwnerID: register.OpenedByID}, nil
}

func (r *registerRepository) Totals(ctx context.Context, registerID uint) (RegisterTotals, error) {
	var sales []models.Sale
	if err := database.Conn(ctx, r.db).Where("caja_id = ?", registerID).Find(&sales).Error; err != nil {
		return RegisterTotals{}, err
	}

	totals := RegisterTotals{}
	for _, sale := range sales {
		totals.Sold = totals.Sold.Add(sale.Total)
		switch sale.PaymentMethod {
		case models.PaymentCash:
			totals.Cash = totals.Cash.Add(sale.Total)
		case models.PaymentDebit:
			totals.Debit = totals.Debit.Add(sale.Total)
		case models.PaymentTransfer:
			totals.Transfer = totals.Transfer.Add(sale.Total)
		}
	}
	return totals, nil
}
