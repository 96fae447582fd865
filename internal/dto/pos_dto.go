package dto

import (
	"time"

	"github.com/noah-isme/almacen-api/internal/models"
)

// CategoryRequest creates or updates a category.
type CategoryRequest struct {
	Name        string  `json:"name" validate:"required,max=50"`
	Description *string `json:"description" validate:"omitempty,max=100"`
}

// CategoryResponse serializes a category.
type CategoryResponse struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// ProductRequest creates or updates a product. Amounts are decimal strings.
type ProductRequest struct {
	Name          string `json:"name" validate:"required,max=100"`
	Barcode       string `json:"barcode" validate:"omitempty,max=50"`
	CategoryID    uint   `json:"category_id" validate:"required"`
	Kind          string `json:"kind" validate:"required,oneof=UNITARIO PACK GRANEL"`
	BaseUnit      string `json:"base_unit" validate:"required,max=10"`
	Stock         string `json:"stock" validate:"omitempty,numeric"`
	MinimumStock  string `json:"minimum_stock" validate:"omitempty,numeric"`
	PurchasePrice string `json:"purchase_price" validate:"omitempty,numeric"`
	SalePrice     string `json:"sale_price" validate:"required,numeric"`
}

// ProductResponse serializes a product.
type ProductResponse struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	Barcode       *string   `json:"barcode"`
	CategoryID    uint      `json:"category_id"`
	Kind          string    `json:"kind"`
	BaseUnit      string    `json:"base_unit"`
	Stock         string    `json:"stock"`
	MinimumStock  string    `json:"minimum_stock"`
	PurchasePrice string    `json:"purchase_price"`
	SalePrice     string    `json:"sale_price"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RegisterOpenRequest opens the register of the day.
type RegisterOpenRequest struct {
	OpeningAmount string `json:"opening_amount" validate:"required,numeric"`
}

// RegisterResponse serializes a register period.
type RegisterResponse struct {
	ID            uint       `json:"id"`
	Date          string     `json:"date"`
	OpeningAmount string     `json:"opening_amount"`
	TotalSold     string     `json:"total_sold"`
	TotalCash     string     `json:"total_cash"`
	TotalDebit    string     `json:"total_debit"`
	TotalTransfer string     `json:"total_transfer"`
	Open          bool       `json:"open"`
	OpenedAt      time.Time  `json:"opened_at"`
	ClosedAt      *time.Time `json:"closed_at"`
}

// SaleLineRequest is one product line of a checkout.
type SaleLineRequest struct {
	ProductID uint   `json:"product_id" validate:"required"`
	Quantity  string `json:"quantity" validate:"required,numeric"`
}

// SaleRequest records a checkout against the open register.
type SaleRequest struct {
	PaymentMethod string            `json:"payment_method" validate:"required,oneof=EFECTIVO DEBITO TRANSFERENCIA"`
	Lines         []SaleLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// SaleResponse serializes a sale.
type SaleResponse struct {
	ID            uint      `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	Total         string    `json:"total"`
	PaymentMethod string    `json:"payment_method"`
	RegisterID    uint      `json:"register_id"`
	Lines         int       `json:"lines"`
}

// StockReceiptLineRequest is one received product.
type StockReceiptLineRequest struct {
	ProductID uint   `json:"product_id" validate:"required"`
	Quantity  string `json:"quantity" validate:"required,numeric"`
}

// StockReceiptRequest records received goods.
type StockReceiptRequest struct {
	Note  *string                   `json:"note" validate:"omitempty,max=200"`
	Lines []StockReceiptLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// StockReceiptItemResponse is one received product.
type StockReceiptItemResponse struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name,omitempty"`
	Quantity    string `json:"quantity"`
}

// StockReceiptResponse serializes a stock receipt.
type StockReceiptResponse struct {
	ID        uint                       `json:"id"`
	CreatedAt time.Time                  `json:"created_at"`
	Note      *string                    `json:"note"`
	Lines     int                        `json:"lines"`
	Items     []StockReceiptItemResponse `json:"items"`
}

// CreditRequest opens a customer credit account.
type CreditRequest struct {
	Customer string `json:"customer" validate:"required,max=120"`
	Phone    string `json:"phone" validate:"omitempty,max=30"`
	Total    string `json:"total" validate:"required,numeric"`
	Note     string `json:"note" validate:"omitempty,max=255"`
}

// CreditPaymentRequest pays part or all of a credit balance.
type CreditPaymentRequest struct {
	Amount        string `json:"amount" validate:"required,numeric"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=EFECTIVO DEBITO TRANSFERENCIA"`
	Reference     string `json:"reference" validate:"omitempty,max=60"`
}

// CreditResponse serializes a credit account.
type CreditResponse struct {
	ID        uint      `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Customer  string    `json:"customer"`
	Total     string    `json:"total"`
	Balance   string    `json:"balance"`
	Status    string    `json:"status"`
}

// NewCategoryResponse converts a category model.
func NewCategoryResponse(category models.Category) CategoryResponse {
	return CategoryResponse{ID: category.ID, Name: category.Name, Description: category.Description}
}

// NewProductResponse converts a product model.
func NewProductResponse(product models.Product) ProductResponse {
	return ProductResponse{
		ID:            product.ID,
		Name:          product.Name,
		Barcode:       product.Barcode,
		CategoryID:    product.CategoryID,
		Kind:          product.Kind,
		BaseUnit:      product.BaseUnit,
		Stock:         product.Stock.String(),
		MinimumStock:  product.MinimumStock.String(),
		PurchasePrice: product.PurchasePrice.String(),
		SalePrice:     product.SalePrice.String(),
		UpdatedAt:     product.UpdatedAt,
	}
}

// NewRegisterResponse converts a register model.
func NewRegisterResponse(register models.Register) RegisterResponse {
	return RegisterResponse{
		ID:            register.ID,
		Date:          register.Date.Format("2006-01-02"),
		OpeningAmount: register.OpeningAmount.String(),
		TotalSold:     register.TotalSold.String(),
		TotalCash:     register.TotalCash.String(),
		TotalDebit:    register.TotalDebit.String(),
		TotalTransfer: register.TotalTransfer.String(),
		Open:          register.Open,
		OpenedAt:      register.OpenedAt,
		ClosedAt:      register.ClosedAt,
	}
}

// NewSaleResponse converts a sale model.
func NewSaleResponse(sale models.Sale) SaleResponse {
	return SaleResponse{
		ID:            sale.ID,
		CreatedAt:     sale.CreatedAt,
		Total:         sale.Total.String(),
		PaymentMethod: sale.PaymentMethod,
		RegisterID:    sale.RegisterID,
		Lines:         len(sale.Lines),
	}
}

// NewStockReceiptResponse converts a stock receipt model.
func NewStockReceiptResponse(receipt models.StockReceipt) StockReceiptResponse {
	items := make([]StockReceiptItemResponse, 0, len(receipt.Lines))
	for _, line := range receipt.Lines {
		item := StockReceiptItemResponse{ProductID: line.ProductID, Quantity: line.Quantity.String()}
		if line.Product != nil {
			item.ProductName = line.Product.Name
		}
		items = append(items, item)
	}
	return StockReceiptResponse{ID: receipt.ID, CreatedAt: receipt.CreatedAt, Note: receipt.Note, Lines: len(receipt.Lines), Items: items}
}

// NewCreditResponse converts a credit model.
func NewCreditResponse(credit models.Credit) CreditResponse {
	return CreditResponse{
		ID:        credit.ID,
		CreatedAt: credit.CreatedAt,
		Customer:  credit.Customer,
		Total:     credit.Total.String(),
		Balance:   credit.Balance.String(),
		Status:    credit.Status,
	}
}
