/*
handlers.go - HTTP API handlers for the inventory backend

PURPOSE:
  Exposes the inventory engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Suppliers:
    GET    /api/suppliers               List suppliers
    POST   /api/suppliers               Create supplier
    GET    /api/suppliers/{id}          Get supplier
    PUT    /api/suppliers/{id}          Update supplier
    DELETE /api/suppliers/{id}          Delete supplier

  Customers: same five operations under /api/customers

  Items:
    GET    /api/items                   List items (?category= filter)
    POST   /api/items                   Create item
    GET    /api/items/low-stock         Items at or below reorder threshold
    GET    /api/items/expiring-soon     Items expiring within 7 days
    GET    /api/items/{id}              Get item
    PUT    /api/items/{id}              Partial update (quantity edits audited)
    DELETE /api/items/{id}              Delete item (fails when referenced)
    POST   /api/items/{id}/sell         Decrement stock with ledger record
    POST   /api/items/{id}/restock      Increment stock with ledger record

  Transactions:
    GET    /api/transactions            Ledger records (?item_id= filter)

  Invoices:
    POST   /api/invoices                Build invoice (all-or-nothing)
    GET    /api/invoices                List invoice headers
    GET    /api/invoices/{id}           Full detail with customer and lines
    PUT    /api/invoices/{id}/status    Transition status

  Reports:
    GET    /api/reports/total-value
    GET    /api/reports/by-category
    GET    /api/reports/sales/total-revenue
    GET    /api/reports/sales/revenue-by-date

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, insufficient stock, referenced deletes
  - 404: Entity not found
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - invoicing/builder.go: The unit of work behind POST /api/invoices
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/inventory-engine/inventory"
	"github.com/warp/inventory-engine/invoicing"
	"github.com/warp/inventory-engine/reports"
)

// ExpiringSoonDays is the default window for the expiring-soon report.
const ExpiringSoonDays = 7

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   invoicing.TxStore
	Builder *invoicing.Builder
	Reports *reports.Aggregator
}

// NewHandler creates a new handler with the given store.
func NewHandler(store invoicing.TxStore) *Handler {
	return &Handler{
		Store:   store,
		Builder: invoicing.NewBuilder(store),
		Reports: reports.NewAggregator(store),
	}
}

// =============================================================================
// SUPPLIER ENDPOINTS
// =============================================================================

// ListSuppliers returns all suppliers.
// GET /api/suppliers
func (h *Handler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.Store.ListSuppliers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list suppliers", err)
		return
	}

	dtos := make([]SupplierDTO, 0, len(suppliers))
	for _, s := range suppliers {
		dtos = append(dtos, toSupplierDTO(s))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetSupplier returns one supplier.
// GET /api/suppliers/{id}
func (h *Handler) GetSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	supplier, err := h.Store.GetSupplier(r.Context(), inventory.SupplierID(id))
	if err != nil {
		writeDomainError(w, "Failed to get supplier", err)
		return
	}
	writeJSON(w, http.StatusOK, toSupplierDTO(*supplier))
}

// CreateSupplier creates a supplier.
// POST /api/suppliers
func (h *Handler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req SupplierDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}

	supplier := inventory.Supplier{Name: req.Name, ContactInfo: req.ContactInfo}
	if err := h.Store.SaveSupplier(r.Context(), &supplier); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create supplier", err)
		return
	}
	writeJSON(w, http.StatusCreated, toSupplierDTO(supplier))
}

// UpdateSupplier replaces a supplier's fields.
// PUT /api/suppliers/{id}
func (h *Handler) UpdateSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req SupplierDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	supplier := inventory.Supplier{
		ID:          inventory.SupplierID(id),
		Name:        req.Name,
		ContactInfo: req.ContactInfo,
	}
	if err := h.Store.SaveSupplier(r.Context(), &supplier); err != nil {
		writeDomainError(w, "Failed to update supplier", err)
		return
	}
	writeJSON(w, http.StatusOK, toSupplierDTO(supplier))
}

// DeleteSupplier removes a supplier. Linked items keep existing without
// the supplier reference.
// DELETE /api/suppliers/{id}
func (h *Handler) DeleteSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.Store.DeleteSupplier(r.Context(), inventory.SupplierID(id)); err != nil {
		writeDomainError(w, "Failed to delete supplier", err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Supplier deleted"})
}

// =============================================================================
// CUSTOMER ENDPOINTS
// =============================================================================

// ListCustomers returns all customers.
// GET /api/customers
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.Store.ListCustomers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list customers", err)
		return
	}

	dtos := make([]CustomerDTO, 0, len(customers))
	for _, c := range customers {
		dtos = append(dtos, toCustomerDTO(c))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCustomer returns one customer.
// GET /api/customers/{id}
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	customer, err := h.Store.GetCustomer(r.Context(), inventory.CustomerID(id))
	if err != nil {
		writeDomainError(w, "Failed to get customer", err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerDTO(*customer))
}

// CreateCustomer creates a customer.
// POST /api/customers
func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CustomerDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}

	customer := inventory.Customer{
		Name:        req.Name,
		Phone:       req.Phone,
		Address:     req.Address,
		ContactInfo: req.ContactInfo,
	}
	if err := h.Store.SaveCustomer(r.Context(), &customer); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create customer", err)
		return
	}
	writeJSON(w, http.StatusCreated, toCustomerDTO(customer))
}

// UpdateCustomer replaces a customer's fields.
// PUT /api/customers/{id}
func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req CustomerDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	customer := inventory.Customer{
		ID:          inventory.CustomerID(id),
		Name:        req.Name,
		Phone:       req.Phone,
		Address:     req.Address,
		ContactInfo: req.ContactInfo,
	}
	if err := h.Store.SaveCustomer(r.Context(), &customer); err != nil {
		writeDomainError(w, "Failed to update customer", err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerDTO(customer))
}

// DeleteCustomer removes a customer. Their invoices survive unlinked.
// DELETE /api/customers/{id}
func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.Store.DeleteCustomer(r.Context(), inventory.CustomerID(id)); err != nil {
		writeDomainError(w, "Failed to delete customer", err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Customer deleted"})
}

// =============================================================================
// ITEM ENDPOINTS
// =============================================================================

// ListItems returns all items, optionally filtered by category.
// GET /api/items?category=
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListItems(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list items", err)
		return
	}
	writeJSON(w, http.StatusOK, toItemDTOs(items))
}

// GetItem returns one item.
// GET /api/items/{id}
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	item, err := h.Store.GetItem(r.Context(), inventory.ItemID(id))
	if err != nil {
		writeDomainError(w, "Failed to get item", err)
		return
	}
	writeJSON(w, http.StatusOK, toItemDTO(*item))
}

// CreateItem creates an item. The initial quantity is the audit baseline;
// no ledger record is written for it.
// POST /api/items
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}
	if req.Quantity < 0 {
		writeError(w, http.StatusBadRequest, "Quantity must not be negative", nil)
		return
	}
	if req.Price < 0 {
		writeError(w, http.StatusBadRequest, "Price must not be negative", nil)
		return
	}

	item, err := req.toItem()
	if err != nil {
		writeDomainError(w, "Invalid item", err)
		return
	}
	if err := h.Store.SaveItem(r.Context(), &item); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create item", err)
		return
	}
	writeJSON(w, http.StatusCreated, toItemDTO(item))
}

// UpdateItem applies a partial update. Quantity edits are routed through
// the ledger as adjustments so the audit trail stays complete.
// PUT /api/items/{id}
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	item, err := h.Store.GetItem(r.Context(), inventory.ItemID(id))
	if err != nil {
		writeDomainError(w, "Failed to get item", err)
		return
	}
	if err := req.apply(item); err != nil {
		writeDomainError(w, "Invalid update", err)
		return
	}

	if err := h.Builder.UpdateItem(r.Context(), item); err != nil {
		writeDomainError(w, "Failed to update item", err)
		return
	}
	writeJSON(w, http.StatusOK, toItemDTO(*item))
}

// DeleteItem removes an item. Items referenced by invoices or ledger
// records cannot be deleted.
// DELETE /api/items/{id}
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.Store.DeleteItem(r.Context(), inventory.ItemID(id)); err != nil {
		writeDomainError(w, "Failed to delete item", err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Item deleted"})
}

// ListLowStock returns items at or below their reorder threshold.
// GET /api/items/low-stock
func (h *Handler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListLowStock(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list low-stock items", err)
		return
	}
	writeJSON(w, http.StatusOK, toItemDTOs(items))
}

// ListExpiringSoon returns items whose expiration date falls within the
// window (default 7 days, ?days= overrides).
// GET /api/items/expiring-soon
func (h *Handler) ListExpiringSoon(w http.ResponseWriter, r *http.Request) {
	days := ExpiringSoonDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "Invalid days parameter", err)
			return
		}
		days = parsed
	}

	items, err := h.Store.ListExpiringSoon(r.Context(), days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list expiring items", err)
		return
	}
	writeJSON(w, http.StatusOK, toItemDTOs(items))
}

// SellItem decrements stock for a direct sale.
// POST /api/items/{id}/sell
func (h *Handler) SellItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req SellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	remaining, err := h.Builder.SellItem(r.Context(), inventory.ItemID(id), req.Quantity)
	if err != nil {
		writeDomainError(w, "Failed to sell item", err)
		return
	}
	writeJSON(w, http.StatusOK, SellResponse{
		Message:           "Item sold successfully",
		RemainingQuantity: remaining,
	})
}

// RestockItem increments stock from a delivery.
// POST /api/items/{id}/restock
func (h *Handler) RestockItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req SellRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	remaining, err := h.Builder.Restock(r.Context(), inventory.ItemID(id), req.Quantity)
	if err != nil {
		writeDomainError(w, "Failed to restock item", err)
		return
	}
	writeJSON(w, http.StatusOK, SellResponse{
		Message:           "Item restocked successfully",
		RemainingQuantity: remaining,
	})
}

// =============================================================================
// TRANSACTION ENDPOINTS
// =============================================================================

// ListTransactions returns ledger records, optionally for one item.
// GET /api/transactions?item_id=
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	var itemID inventory.ItemID
	if raw := r.URL.Query().Get("item_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid item_id parameter", err)
			return
		}
		itemID = inventory.ItemID(parsed)
	}

	txs, err := h.Store.ListTransactions(r.Context(), itemID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list transactions", err)
		return
	}

	dtos := make([]TransactionDTO, 0, len(txs))
	for _, tx := range txs {
		dtos = append(dtos, toTransactionDTO(tx))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// INVOICE ENDPOINTS
// =============================================================================

// CreateInvoice builds an invoice as one unit of work. Any invalid line
// aborts the whole request with no state change.
// POST /api/invoices
func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	lines := make([]invoicing.LineRequest, 0, len(req.Items))
	for _, input := range req.Items {
		lines = append(lines, invoicing.LineRequest{
			ItemID:   inventory.ItemID(input.ItemID),
			Quantity: input.Quantity,
		})
	}

	var customerID *inventory.CustomerID
	if req.CustomerID != nil {
		id := inventory.CustomerID(*req.CustomerID)
		customerID = &id
	}

	invoice, _, err := h.Builder.BuildInvoice(r.Context(), customerID, lines)
	if err != nil {
		writeDomainError(w, "Failed to create invoice", err)
		return
	}
	writeJSON(w, http.StatusCreated, toInvoiceDTO(*invoice))
}

// ListInvoices returns all invoice headers.
// GET /api/invoices
func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.Store.ListInvoices(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list invoices", err)
		return
	}

	dtos := make([]InvoiceDTO, 0, len(invoices))
	for _, inv := range invoices {
		dtos = append(dtos, toInvoiceDTO(inv))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetInvoice returns the full invoice view: header, resolved customer,
// lines with item names, and the computed due date.
// GET /api/invoices/{id}
func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	invoice, err := h.Store.GetInvoice(ctx, invoicing.InvoiceID(id))
	if err != nil {
		writeDomainError(w, "Failed to get invoice", err)
		return
	}

	lines, err := h.Store.LinesByInvoice(ctx, invoice.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load invoice lines", err)
		return
	}

	itemIDs := make([]inventory.ItemID, 0, len(lines))
	for _, line := range lines {
		itemIDs = append(itemIDs, line.ItemID)
	}
	items, err := h.Store.GetItemsByIDs(ctx, itemIDs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load invoice items", err)
		return
	}

	lineDTOs := make([]InvoiceLineDTO, 0, len(lines))
	for _, line := range lines {
		itemName := "Unknown"
		if item, ok := items[line.ItemID]; ok {
			itemName = item.Name
		}
		lineDTOs = append(lineDTOs, toInvoiceLineDTO(line, itemName))
	}

	var customer *CustomerDTO
	if invoice.CustomerID != nil {
		// The customer may have been deleted since; the invoice still renders.
		if c, err := h.Store.GetCustomer(ctx, *invoice.CustomerID); err == nil {
			dto := toCustomerDTO(*c)
			customer = &dto
		}
	}

	writeJSON(w, http.StatusOK, InvoiceDetailResponse{
		Invoice:  toInvoiceDTO(*invoice),
		Customer: customer,
		Lines:    lineDTOs,
		DueDate:  invoice.DueDate().Format(time.RFC3339),
	})
}

// UpdateInvoiceStatus transitions the invoice status. Only pending, paid,
// and cancelled are accepted.
// PUT /api/invoices/{id}/status
func (h *Handler) UpdateInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	status, valid := invoicing.ParseStatus(req.Status)
	if !valid {
		writeError(w, http.StatusBadRequest, "Invalid status", nil)
		return
	}

	if err := h.Store.SetInvoiceStatus(r.Context(), invoicing.InvoiceID(id), status); err != nil {
		writeDomainError(w, "Failed to update invoice status", err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Invoice status updated"})
}

// =============================================================================
// REPORT ENDPOINTS
// =============================================================================

// TotalInventoryValue returns the summed stock valuation.
// GET /api/reports/total-value
func (h *Handler) TotalInventoryValue(w http.ResponseWriter, r *http.Request) {
	total, err := h.Reports.TotalInventoryValue(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute total value", err)
		return
	}
	value, _ := total.Float64()
	writeJSON(w, http.StatusOK, TotalValueResponse{TotalValue: value})
}

// InventoryByCategory returns stock valuation keyed by category.
// GET /api/reports/by-category
func (h *Handler) InventoryByCategory(w http.ResponseWriter, r *http.Request) {
	byCategory, err := h.Reports.ValueByCategory(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute category report", err)
		return
	}

	report := make(map[string]float64, len(byCategory))
	for _, cv := range byCategory {
		value, _ := cv.Value.Float64()
		report[cv.Category] = value
	}
	writeJSON(w, http.StatusOK, report)
}

// TotalRevenue returns the summed invoice totals.
// GET /api/reports/sales/total-revenue
func (h *Handler) TotalRevenue(w http.ResponseWriter, r *http.Request) {
	total, err := h.Reports.TotalRevenue(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute total revenue", err)
		return
	}
	value, _ := total.Float64()
	writeJSON(w, http.StatusOK, TotalRevenueResponse{TotalRevenue: value})
}

// RevenueByDate returns invoice totals grouped by calendar month.
// GET /api/reports/sales/revenue-by-date
func (h *Handler) RevenueByDate(w http.ResponseWriter, r *http.Request) {
	monthly, err := h.Reports.RevenueByMonth(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute revenue by date", err)
		return
	}

	dtos := make([]MonthlyRevenueDTO, 0, len(monthly))
	for _, row := range monthly {
		revenue, _ := row.Revenue.Float64()
		dtos = append(dtos, MonthlyRevenueDTO{Year: row.Year, Month: row.Month, Revenue: revenue})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case inventory.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case inventory.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
