package models

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Entity type names shared by the mutation pipeline and the audit registry.
const (
	EntityUser             = "user"
	EntityActivity         = "activity"
	EntityRegister         = "register"
	EntityCategory         = "category"
	EntityProduct          = "product"
	EntityStockReceipt     = "stock_receipt"
	EntityStockReceiptLine = "stock_receipt_line"
	EntitySale             = "sale"
	EntitySaleLine         = "sale_line"
	EntityCredit           = "credit"
	EntityCreditPayment    = "credit_payment"
)

func idString(id uint) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(id), 10)
}

func optionalID(id *uint) interface{} {
	if id == nil {
		return nil
	}
	return *id
}

func optionalString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func optionalTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func decimalString(d decimal.Decimal) string {
	return d.String()
}
