package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Register is a cash register period ("caja"): the operational session that
// sales and activity entries are attributed to.
type Register struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Date          time.Time       `gorm:"column:fecha;type:date;index;not null" json:"date"`
	OpeningAmount decimal.Decimal `gorm:"column:monto_inicial;type:decimal(10,2);not null" json:"opening_amount"`
	TotalSold     decimal.Decimal `gorm:"column:total_vendido;type:decimal(10,2);not null;default:0" json:"total_sold"`
	TotalCash     decimal.Decimal `gorm:"column:total_efectivo;type:decimal(10,2);not null;default:0" json:"total_cash"`
	TotalDebit    decimal.Decimal `gorm:"column:total_debito;type:decimal(10,2);not null;default:0" json:"total_debit"`
	TotalTransfer decimal.Decimal `gorm:"column:total_transferencia;type:decimal(10,2);not null;default:0" json:"total_transfer"`
	Open          bool            `gorm:"column:abierta;index;not null;default:true" json:"open"`
	OpenedByID    *uint           `gorm:"column:abierta_por_id" json:"opened_by_id"`
	ClosedByID    *uint           `gorm:"column:cerrada_por_id" json:"closed_by_id"`
	OpenedAt      time.Time       `gorm:"column:hora_apertura;not null" json:"opened_at"`
	ClosedAt      *time.Time      `gorm:"column:hora_cierre" json:"closed_at"`
}

// TableName pins the table name.
func (Register) TableName() string {
	return "cajas"
}

func (r *Register) AuditEntity() string { return EntityRegister }

func (r *Register) AuditID() string { return idString(r.ID) }

func (r *Register) AuditFields() map[string]interface{} {
	return map[string]interface{}{
		"id":                  r.ID,
		"fecha":               r.Date.Format("2006-01-02"),
		"monto_inicial":       decimalString(r.OpeningAmount),
		"total_vendido":       decimalString(r.TotalSold),
		"total_efectivo":      decimalString(r.TotalCash),
		"total_debito":        decimalString(r.TotalDebit),
		"total_transferencia": decimalString(r.TotalTransfer),
		"abierta":             r.Open,
		"abierta_por_id":      optionalID(r.OpenedByID),
		"cerrada_por_id":      optionalID(r.ClosedByID),
		"hora_apertura":       r.OpenedAt,
		"hora_cierre":         optionalTime(r.ClosedAt),
	}
}
