package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Credit account states.
const (
	CreditOpen      = "ABIERTO"
	CreditPaid      = "PAGADO"
	CreditCancelled = "ANULADO"
)

// Credit is a customer tab ("fiado") opened against a register.
type Credit struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time       `gorm:"column:fecha" json:"created_at"`
	Customer   string          `gorm:"column:cliente_nombre;size:120;not null" json:"customer"`
	Phone      string          `gorm:"column:cliente_telefono;size:30" json:"phone"`
	Total      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	Balance    decimal.Decimal `gorm:"column:saldo;type:decimal(10,2);not null" json:"balance"`
	Status     string          `gorm:"column:estado;size:10;not null;default:ABIERTO" json:"status"`
	Note       string          `gorm:"column:observacion;size:255" json:"note"`
	UserID     uint            `gorm:"column:usuario_id;not null" json:"user_id"`
	RegisterID uint            `gorm:"column:caja_id;index;not null" json:"register_id"`
}

// TableName pins the table name.
func (Credit) TableName() string {
	return "fiados"
}

func (c *Credit) AuditEntity() string { return EntityCredit }

func (c *Credit) AuditID() string { return idString(c.ID) }

func (c *Credit) AuditFields() map[string]interface{} {
	return map[string]interface{}{
		"id":               c.ID,
		"fecha":            c.CreatedAt,
		"cliente_nombre":   c.Customer,
		"cliente_telefono": c.Phone,
		"total":            decimalString(c.Total),
		"saldo":            decimalString(c.Balance),
		"estado":           c.Status,
		"observacion":      c.Note,
		"usuario_id":       c.UserID,
		"caja_id":          c.RegisterID,
	}
}

// CreditPayment is a payment ("abono") against a credit account.
type CreditPayment struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time       `gorm:"column:fecha" json:"created_at"`
	CreditID      uint            `gorm:"column:fiado_id;index;not null" json:"credit_id"`
	Amount        decimal.Decimal `gorm:"column:monto;type:decimal(10,2);not null" json:"amount"`
	PaymentMethod string          `gorm:"column:metodo_pago;size:15;not null" json:"payment_method"`
	Reference     string          `gorm:"column:referencia;size:60" json:"reference"`
	UserID        uint            `gorm:"column:usuario_id;not null" json:"user_id"`
	RegisterID    uint            `gorm:"column:caja_id;not null" json:"register_id"`
	Credit        *Credit         `gorm:"-" json:"-"`
}

// TableName pins the table name.
func (CreditPayment) TableName() string {
	return "fiados_abonos"
}

func (p *CreditPayment) AuditEntity() string { return EntityCreditPayment }

func (p *CreditPayment) AuditID() string { return idString(p.ID) }

// AuditFields includes the customer name of the parent account, when the
// caller attached it, so the payment can be described without another lookup.
func (p *CreditPayment) AuditFields() map[string]interface{} {
	customer := ""
	if p.Credit != nil {
		customer = p.Credit.Customer
	}
	return map[string]interface{}{
		"id":             p.ID,
		"fecha":          p.CreatedAt,
		"fiado_id":       p.CreditID,
		"cliente_nombre": customer,
		"monto":          decimalString(p.Amount),
		"metodo_pago":    p.PaymentMethod,
		"referencia":     p.Reference,
		"usuario_id":     p.UserID,
		"caja_id":        p.RegisterID,
	}
}

// AllModels lists every table the service migrates.
func AllModels() []interface{} {
	return []interface{}{
		&User{}, &Register{}, &Category{}, &Product{},
		&StockReceipt{}, &StockReceiptLine{},
		&Sale{}, &SaleLine{},
		&Credit{}, &CreditPayment{},
		&Activity{},
	}
}
