package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment methods accepted at the counter.
const (
	PaymentCash     = "EFECTIVO"
	PaymentDebit    = "DEBITO"
	PaymentTransfer = "TRANSFERENCIA"
)

// Sale is a completed checkout.
type Sale struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time       `gorm:"column:fecha" json:"created_at"`
	Total         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	PaymentMethod string          `gorm:"column:metodo_pago;size:15;not null" json:"payment_method"`
	UserID        uint            `gorm:"column:usuario_id;not null" json:"user_id"`
	RegisterID    uint            `gorm:"column:caja_id;index;not null" json:"register_id"`
	Lines         []SaleLine      `gorm:"foreignKey:SaleID" json:"lines"`
}

// TableName pins the table name.
func (Sale) TableName() string {
	return "ventas"
}

func (s *Sale) AuditEntity() string { return EntitySale }

func (s *Sale) AuditID() string { return idString(s.ID) }

func (s *Sale) AuditFields() map[string]interface{} {
	return map[string]interface{}{
		"id":          s.ID,
		"fecha":       s.CreatedAt,
		"total":       decimalString(s.Total),
		"metodo_pago": s.PaymentMethod,
		"usuario_id":  s.UserID,
		"caja_id":     s.RegisterID,
	}
}

// SaleLine is one product line of a sale.
type SaleLine struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	SaleID    uint            `gorm:"column:venta_id;index;not null" json:"sale_id"`
	ProductID uint            `gorm:"column:producto_id;not null" json:"product_id"`
	Quantity  decimal.Decimal `gorm:"column:cantidad_base;type:decimal(10,3);not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"column:precio_unitario;type:decimal(10,2);not null" json:"unit_price"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
}

// TableName pins the table name.
func (SaleLine) TableName() string {
	return "ventas_detalle"
}

func (l *SaleLine) AuditEntity() string { return EntitySaleLine }

func (l *SaleLine) AuditID() string { return idString(l.ID) }

func (l *SaleLine) AuditFields() map[string]interface{} {
	return map[string]interface{}{
		"id":              l.ID,
		"venta_id":        l.SaleID,
		"producto_id":     l.ProductID,
		"cantidad_base":   decimalString(l.Quantity),
		"precio_unitario": decimalString(l.UnitPrice),
		"subtotal":        decimalString(l.Subtotal),
	}
}
