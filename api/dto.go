/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

MONEY:
  Internally all money is decimal.Decimal. DTOs expose float64 because
  JSON clients expect numbers; the conversion happens only here, at the
  boundary.

DATES:
  Expiration dates travel as "2006-01-02" strings. Invoice dates and
  transaction timestamps are RFC3339.

VALIDATION:
  Validation is done in handlers and the domain, not in DTOs. DTOs are
  pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - inventory/types.go, invoicing/types.go: The domain models behind them
*/
package api

import (
	"time"

	"github.com/warp/inventory-engine/inventory"
	"github.com/warp/inventory-engine/invoicing"
)

const dateLayout = "2006-01-02"

// =============================================================================
// ITEMS
// =============================================================================

// ItemDTO represents an item in API responses.
type ItemDTO struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Quantity       int      `json:"quantity"`
	Price          float64  `json:"price"`
	Category       string   `json:"category"`
	MinStock       int      `json:"min_stock"`
	ExpirationDate *string  `json:"expiration_date"`
	SupplierID     *int64   `json:"supplier_id"`
	Barcode        string   `json:"barcode"`
}

// CreateItemRequest is the request to create an item.
type CreateItemRequest struct {
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Quantity       int     `json:"quantity"`
	Price          float64 `json:"price"`
	Category       string  `json:"category"`
	MinStock       *int    `json:"min_stock"`
	ExpirationDate *string `json:"expiration_date"`
	SupplierID     *int64  `json:"supplier_id"`
	Barcode        string  `json:"barcode"`
}

// UpdateItemRequest is a partial item update. Nil fields are left unchanged.
type UpdateItemRequest struct {
	Name           *string  `json:"name"`
	Description    *string  `json:"description"`
	Quantity       *int     `json:"quantity"`
	Price          *float64 `json:"price"`
	Category       *string  `json:"category"`
	MinStock       *int     `json:"min_stock"`
	ExpirationDate *string  `json:"expiration_date"`
	SupplierID     *int64   `json:"supplier_id"`
	Barcode        *string  `json:"barcode"`
}

func toItemDTO(item inventory.Item) ItemDTO {
	price, _ := item.Price.Float64()
	dto := ItemDTO{
		ID:          int64(item.ID),
		Name:        item.Name,
		Description: item.Description,
		Quantity:    item.Quantity,
		Price:       price,
		Category:    item.Category,
		MinStock:    item.MinStock,
		Barcode:     item.Barcode,
	}
	if item.Expiration != nil {
		s := item.Expiration.Format(dateLayout)
		dto.ExpirationDate = &s
	}
	if item.SupplierID != nil {
		id := int64(*item.SupplierID)
		dto.SupplierID = &id
	}
	return dto
}

func toItemDTOs(items []inventory.Item) []ItemDTO {
	dtos := make([]ItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, toItemDTO(item))
	}
	return dtos
}

func (req CreateItemRequest) toItem() (inventory.Item, error) {
	item := inventory.Item{
		Name:        req.Name,
		Description: req.Description,
		Quantity:    req.Quantity,
		Price:       inventory.NewPrice(req.Price),
		Category:    req.Category,
		MinStock:    1,
		Barcode:     req.Barcode,
	}
	if req.MinStock != nil {
		item.MinStock = *req.MinStock
	}
	if req.ExpirationDate != nil {
		t, err := time.Parse(dateLayout, *req.ExpirationDate)
		if err != nil {
			return item, &inventory.ValidationError{Field: "expiration_date", Message: "must be YYYY-MM-DD"}
		}
		item.Expiration = &t
	}
	if req.SupplierID != nil {
		sid := inventory.SupplierID(*req.SupplierID)
		item.SupplierID = &sid
	}
	return item, nil
}

// apply copies the non-nil request fields onto item.
func (req UpdateItemRequest) apply(item *inventory.Item) error {
	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return &inventory.ValidationError{Field: "quantity", Message: "must not be negative"}
		}
		item.Quantity = *req.Quantity
	}
	if req.Price != nil {
		item.Price = inventory.NewPrice(*req.Price)
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.MinStock != nil {
		item.MinStock = *req.MinStock
	}
	if req.ExpirationDate != nil {
		t, err := time.Parse(dateLayout, *req.ExpirationDate)
		if err != nil {
			return &inventory.ValidationError{Field: "expiration_date", Message: "must be YYYY-MM-DD"}
		}
		item.Expiration = &t
	}
	if req.SupplierID != nil {
		sid := inventory.SupplierID(*req.SupplierID)
		item.SupplierID = &sid
	}
	if req.Barcode != nil {
		item.Barcode = *req.Barcode
	}
	return nil
}

// =============================================================================
// SUPPLIERS / CUSTOMERS
// =============================================================================

// SupplierDTO represents a supplier in API responses and requests.
type SupplierDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ContactInfo string `json:"contact_info"`
}

func toSupplierDTO(s inventory.Supplier) SupplierDTO {
	return SupplierDTO{ID: int64(s.ID), Name: s.Name, ContactInfo: s.ContactInfo}
}

// CustomerDTO represents a customer in API responses and requests.
type CustomerDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	ContactInfo string `json:"contact_info"`
}

func toCustomerDTO(c inventory.Customer) CustomerDTO {
	return CustomerDTO{
		ID:          int64(c.ID),
		Name:        c.Name,
		Phone:       c.Phone,
		Address:     c.Address,
		ContactInfo: c.ContactInfo,
	}
}

// =============================================================================
// STOCK OPERATIONS
// =============================================================================

// TransactionDTO represents a ledger record in API responses.
type TransactionDTO struct {
	ID             int64  `json:"id"`
	ItemID         int64  `json:"item_id"`
	ChangeQuantity int    `json:"change_quantity"`
	Timestamp      string `json:"timestamp"`
	Reason         string `json:"reason"`
}

func toTransactionDTO(tx inventory.StockTransaction) TransactionDTO {
	return TransactionDTO{
		ID:             int64(tx.ID),
		ItemID:         int64(tx.ItemID),
		ChangeQuantity: tx.ChangeQuantity,
		Timestamp:      tx.Timestamp.Format(time.RFC3339),
		Reason:         tx.Reason,
	}
}

// SellRequest is the request body for selling or restocking an item.
type SellRequest struct {
	Quantity int `json:"quantity"`
}

// SellResponse reports the quantity left after a sale or restock.
type SellResponse struct {
	Message           string `json:"message"`
	RemainingQuantity int    `json:"remaining_quantity"`
}

// =============================================================================
// INVOICES
// =============================================================================

// CreateInvoiceRequest is the request to build an invoice.
type CreateInvoiceRequest struct {
	CustomerID *int64              `json:"customer_id"`
	Items      []InvoiceLineInput  `json:"items"`
}

// InvoiceLineInput is one requested line.
type InvoiceLineInput struct {
	ItemID   int64 `json:"item_id"`
	Quantity int   `json:"quantity"`
}

// InvoiceDTO represents an invoice header in API responses.
type InvoiceDTO struct {
	ID          int64   `json:"id"`
	CustomerID  *int64  `json:"customer_id"`
	TotalAmount float64 `json:"total_amount"`
	Date        string  `json:"date"`
	Status      string  `json:"status"`
}

func toInvoiceDTO(inv invoicing.Invoice) InvoiceDTO {
	total, _ := inv.Total.Float64()
	dto := InvoiceDTO{
		ID:          int64(inv.ID),
		TotalAmount: total,
		Date:        inv.Date.Format(time.RFC3339),
		Status:      string(inv.Status),
	}
	if inv.CustomerID != nil {
		id := int64(*inv.CustomerID)
		dto.CustomerID = &id
	}
	return dto
}

// InvoiceLineDTO represents a line in the invoice detail response. ItemName
// is resolved at read time; the stored line only carries the item id.
type InvoiceLineDTO struct {
	ID        int64   `json:"id"`
	InvoiceID int64   `json:"invoice_id"`
	ItemID    int64   `json:"item_id"`
	ItemName  string  `json:"item_name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

func toInvoiceLineDTO(line invoicing.InvoiceLine, itemName string) InvoiceLineDTO {
	price, _ := line.UnitPrice.Float64()
	return InvoiceLineDTO{
		ID:        line.ID,
		InvoiceID: int64(line.InvoiceID),
		ItemID:    int64(line.ItemID),
		ItemName:  itemName,
		Quantity:  line.Quantity,
		Price:     price,
	}
}

// InvoiceDetailResponse is the full invoice view: header, resolved
// customer, lines with item names, and the computed due date.
type InvoiceDetailResponse struct {
	Invoice  InvoiceDTO       `json:"invoice"`
	Customer *CustomerDTO     `json:"customer"`
	Lines    []InvoiceLineDTO `json:"lines"`
	DueDate  string           `json:"due_date"`
}

// UpdateStatusRequest is the request to transition an invoice status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// =============================================================================
// REPORTS
// =============================================================================

// TotalValueResponse is the stock valuation report.
type TotalValueResponse struct {
	TotalValue float64 `json:"total_value"`
}

// TotalRevenueResponse is the sales revenue report.
type TotalRevenueResponse struct {
	TotalRevenue float64 `json:"total_revenue"`
}

// MonthlyRevenueDTO is one row of the revenue-by-date report.
type MonthlyRevenueDTO struct {
	Year    int     `json:"year"`
	Month   int     `json:"month"`
	Revenue float64 `json:"revenue"`
}

// =============================================================================
// COMMON
// =============================================================================

// MessageResponse is a simple confirmation payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the JSON error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
