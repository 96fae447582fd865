package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product kinds.
const (
	ProductKindUnit = "UNITARIO"
	ProductKindPack = "PACK"
	ProductKindBulk = "GRANEL"
)

// Category groups products on the shelf and in reports.
type Category struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"column:nombre;size:50;not null" json:"name"`
	Description *string `gorm:"column:descripcion;size:100" json:"description"`
}

// TableName pins the table name.
func (Category) TableName() string {
	return "categorias"
}

func (c *Category) AuditEntity() string { return EntityCategory }

func (c *Category) AuditID() string { return idString(c.ID) }

func (c *Category) AuditFields() map[string]interface{} {
	return map[string]interface{}{
		"id":          c.ID,
		"nombre":      c.Name,
		"descripcion": optionalString(c.Description),
	}
}

// Product is a stock keeping unit. Quantities are expressed in the base unit.
type Product struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"column:nombre;size:100;not null" json:"name"`
	Barcode       *string         `gorm:"column:codigo_barra;size:50;uniqueIndex" json:"barcode"`
	CategoryID    uint            `gorm:"column:categoria_id;index;not null" json:"category_id"`
	Kind          string          `gorm:"column:tipo_producto;size:10;not null" json:"kind"`
	BaseUnit      string          `gorm:"column:unidad_base;size:10;not null" json:"base_unit"`
	Stock         decimal.Decimal `gorm:"column:stock_actual_base;type:decimal(10,3);not null;default:0" json:"stock"`
	MinimumStock  decimal.Decimal `gorm:"column:stock_minimo;type:decimal(10,3);not null;default:0" json:"minimum_stock"`
	PurchasePrice decimal.Decimal `gorm:"column:precio_compra;type:decimal(10,2);not null;default:0" json:"purchase_price"`
	SalePrice     decimal.Decimal `gorm:"column:precio_venta;type:decimal(10,2);not null;default:0" json:"sale_price"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TableName pins the table name.
func (Product) TableName() string {
	return "productos"
}

func (p *Product) AuditEntity() string { return EntityProduct }

func (p *Product) AuditID() string { return idString(p.ID) }

func (p *Product) AuditFields() map[string]interface{} {
	return map[string]interface{}{
		"id":                p.ID,
		"nombre":            p.Name,
		"codigo_barra":      optionalString(p.Barcode),
		"categoria_id":      p.CategoryID,
		"tipo_producto":     p.Kind,
		"unidad_base":       p.BaseUnit,
		"stock_actual_base": decimalString(p.Stock),
		"stock_minimo":      decimalString(p.MinimumStock),
		"precio_compra":     decimalString(p.PurchasePrice),
		"precio_venta":      decimalString(p.SalePrice),
		"created_at":        p.CreatedAt,
		"updated_at":        p.UpdatedAt,
	}
}
