package audit

import (
	"fmt"
	"strings"
)

// Category is the closed set of event kinds an activity record can carry.
type Category string

const (
	CategoryCreated        Category = "CREATED"
	CategoryUpdated        Category = "UPDATED"
	CategoryDeleted        Category = "DELETED"
	CategoryRegisterOpened Category = "REGISTER_OPENED"
	CategoryRegisterClosed Category = "REGISTER_CLOSED"
	CategorySale           Category = "SALE"
	CategoryStockReceipt   Category = "STOCK_RECEIPT"
	CategoryLowStock       Category = "LOW_STOCK"
	CategoryCreditPayment  Category = "CREDIT_PAYMENT"
)

var categories = []Category{
	CategoryCreated,
	CategoryUpdated,
	CategoryDeleted,
	CategoryRegisterOpened,
	CategoryRegisterClosed,
	CategorySale,
	CategoryStockReceipt,
	CategoryLowStock,
	CategoryCreditPayment,
}

// Categories returns every known category in declaration order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

// ParseCategory normalises the input and rejects anything outside the closed set.
func ParseCategory(value string) (Category, error) {
	candidate := Category(strings.ToUpper(strings.TrimSpace(value)))
	for _, c := range categories {
		if c == candidate {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown activity category %q", value)
}

func (c Category) String() string {
	return string(c)
}

// Operation is the kind of persistence mutation observed by the hooks.
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Category maps an operation to its generic fallback category.
func (o Operation) Category() Category {
	switch o {
	case OpCreate:
		return CategoryCreated
	case OpDelete:
		return CategoryDeleted
	default:
		return CategoryUpdated
	}
}
