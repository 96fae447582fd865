package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockReceipt records goods received from a supplier.
type StockReceipt struct {
	ID        uint               `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time          `gorm:"column:fecha" json:"created_at"`
	UserID    uint               `gorm:"column:usuario_id;not null" json:"user_id"`
	Note      *string            `gorm:"column:observacion;size:200" json:"note"`
	Lines     []StockReceiptLine `gorm:"foreignKey:ReceiptID" json:"lines"`
}

// TableName pins the table name.
func (StockReceipt) TableName() string {
	return "ingresos_stock"
}

func (r *StockReceipt) AuditEntity() string { return EntityStockReceipt }

func (r *StockReceipt) AuditID() string { return idString(r.ID) }

func (r *StockReceipt) AuditFields() map[string]interface{} {
	return map[string]interface{}{
		"id":          r.ID,
		"fecha":       r.CreatedAt,
		"usuario_id":  r.UserID,
		"observacion": optionalString(r.Note),
	}
}

// StockReceiptLine is one product line of a receipt.
type StockReceiptLine struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	ReceiptID uint            `gorm:"column:ingreso_id;index;not null" json:"receipt_id"`
	ProductID uint            `gorm:"column:producto_id;not null" json:"product_id"`
	Quantity  decimal.Decimal `gorm:"column:cantidad_base;type:decimal(10,3);not null" json:"quantity"`
	Product   *Product        `gorm:"foreignKey:ProductID" json:"-"`
}

// TableName pins the table name.
func (StockReceiptLine) TableName() string {
	return "ingresos_stock_detalle"
}

func (l *StockReceiptLine) AuditEntity() string { return EntityStockReceiptLine }

func (l *StockReceiptLine) AuditID() string { return idString(l.ID) }

func (l *StockReceiptLine) AuditFields() map[string]interface{} {
	return map[string]interface{}{
		"id":            l.ID,
		"ingreso_id":    l.ReceiptID,
		"producto_id":   l.ProductID,
		"cantidad_base": decimalString(l.Quantity),
	}
}
