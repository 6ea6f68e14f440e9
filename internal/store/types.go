// internal/store/types.go
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Database is the single root aggregate persisted as one JSON document.
// All mutation goes through engine operations; the store only loads and
// saves the whole document.
type Database struct {
	Shops          []Shop           `json:"shops"`
	GlobalExpenses ExpenseMap       `json:"globalExpenses"`
	Inventory      []InventoryItem  `json:"inventory"`
	Shipments      []Shipment       `json:"shipments"`
	Sales          []Sale           `json:"sales"`
	Transfers      []Transfer       `json:"transfers"`
	Quotations     []Quotation      `json:"quotations"`
	Ledger         []FinancialEntry `json:"ledger"`
	Employees      []Employee       `json:"employees"`
	AuditLog       []AuditEntry     `json:"auditLog"`
}

// NewDatabase returns the documented empty-but-valid shape: every collection
// present and non-nil so downstream readers never null-check.
func NewDatabase() *Database {
	return &Database{
		Shops:          []Shop{},
		GlobalExpenses: ExpenseMap{},
		Inventory:      []InventoryItem{},
		Shipments:      []Shipment{},
		Sales:          []Sale{},
		Transfers:      []Transfer{},
		Quotations:     []Quotation{},
		Ledger:         []FinancialEntry{},
		Employees:      []Employee{},
		AuditLog:       []AuditEntry{},
	}
}

type ShopExpenses struct {
	Rent      float64 `json:"rent"`
	Salaries  float64 `json:"salaries"`
	Utilities float64 `json:"utilities"`
	Misc      float64 `json:"misc"`
}

// Total is the shop's expense weight used for proportional rationalization.
func (e ShopExpenses) Total() float64 {
	return e.Rent + e.Salaries + e.Utilities + e.Misc
}

type Shop struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Expenses ShopExpenses `json:"expenses"`
}

// Allocation is the slice of an item's stock assigned to one shop.
type Allocation struct {
	ShopID   string `json:"shopId"`
	Quantity int    `json:"quantity"`
}

type InventoryItem struct {
	ID               string    `json:"id"`
	ShipmentID       string    `json:"shipmentId"`
	Category         string    `json:"category"`
	Name             string    `json:"name"`
	AcquisitionPrice float64   `json:"acquisitionPrice"` // per unit
	LandedCost       float64   `json:"landedCost"`       // unit acquisition + per-piece logistics fee
	// OverheadContribution is computed on demand by reports, not at intake.
	OverheadContribution float64      `json:"overheadContribution"`
	Quantity             int          `json:"quantity"` // global remaining units
	DateAdded            time.Time    `json:"dateAdded"`
	Allocations          []Allocation `json:"allocations"`
}

// AllocationFor returns a pointer into Allocations for the given shop, or nil.
func (i *InventoryItem) AllocationFor(shopID string) *Allocation {
	for idx := range i.Allocations {
		if i.Allocations[idx].ShopID == shopID {
			return &i.Allocations[idx]
		}
	}
	return nil
}

type Shipment struct {
	ID             string    `json:"id"`
	Date           time.Time `json:"date"`
	Supplier       string    `json:"supplier"`
	ShipmentNumber string    `json:"shipmentNumber"`
	PurchasePrice  float64   `json:"purchasePrice"`
	ShippingCost   float64   `json:"shippingCost"`
	DutyCost       float64   `json:"dutyCost"`
	MiscCost       float64   `json:"miscCost"`
	ManifestPieces int       `json:"manifestPieces"`
	Items          []string  `json:"items"` // inventory item ids
	TotalQuantity  int       `json:"totalQuantity"`
}

type Sale struct {
	ID             string    `json:"id"`
	ShopID         string    `json:"shopId"`
	ItemID         string    `json:"itemId"`
	ItemName       string    `json:"itemName"`
	EmployeeID     string    `json:"employeeId"`
	ClientName     string    `json:"clientName,omitempty"`
	Quantity       int       `json:"quantity"`
	UnitPrice      float64   `json:"unitPrice"`
	TotalBeforeTax float64   `json:"totalBeforeTax"`
	Tax            float64   `json:"tax"` // fixed 15.5%
	TotalWithTax   float64   `json:"totalWithTax"`
	Date           time.Time `json:"date"`
}

type Transfer struct {
	ID         string    `json:"id"`
	ItemID     string    `json:"itemId"`
	ItemName   string    `json:"itemName"`
	FromShopID string    `json:"fromShopId"`
	ToShopID   string    `json:"toShopId"`
	Quantity   int       `json:"quantity"`
	Date       time.Time `json:"date"`
}

// Quotation statuses.
const (
	QuoteStatusPending   = "pending"
	QuoteStatusConverted = "converted"
	QuoteStatusExpired   = "expired"
)

type QuotationLine struct {
	ItemID    string  `json:"itemId"`
	ItemName  string  `json:"itemName"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Total     float64 `json:"total"` // line total including tax
}

type Quotation struct {
	ID             string          `json:"id"`
	ShopID         string          `json:"shopId"`
	EmployeeID     string          `json:"employeeId"`
	ClientName     string          `json:"clientName,omitempty"`
	Items          []QuotationLine `json:"items"`
	TotalBeforeTax float64         `json:"totalBeforeTax"`
	Tax            float64         `json:"tax"`
	TotalWithTax   float64         `json:"totalWithTax"`
	Date           time.Time       `json:"date"`
	ExpiryDate     time.Time       `json:"expiryDate"` // stored timestamp only, no expiry sweep
	Status         string          `json:"status"`
}

// Ledger entry types.
const (
	EntryAsset     = "asset"
	EntryExpense   = "expense"
	EntryIncome    = "income"
	EntryLiability = "liability"
)

// FinancialEntry is one append-only ledger line.
type FinancialEntry struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
}

// Employee roles.
const (
	RoleSales   = "sales"
	RoleManager = "manager"
	RoleOwner   = "owner"
)

type Employee struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Role     string    `json:"role"`
	ShopID   string    `json:"shopId"`
	HireDate time.Time `json:"hireDate"`
	Active   bool      `json:"active"`
}

// AuditEntry is the accountability trail, appended for every mutating operation.
type AuditEntry struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	EmployeeID string    `json:"employeeId"`
	Action     string    `json:"action"`
	Details    string    `json:"details"`
}

// =============================================================================
// ORDERED EXPENSE MAP
// =============================================================================

// ExpenseLine is one named monthly expense category.
type ExpenseLine struct {
	Category string
	Amount   float64
}

// ExpenseMap is an insertion-ordered mapping from expense category to monthly
// amount. The category set is open-ended, and iteration order is deterministic
// so allocation math and rendering stay stable across reads. It round-trips
// as a plain JSON object.
type ExpenseMap []ExpenseLine

// Get returns the amount for a category.
func (m ExpenseMap) Get(category string) (float64, bool) {
	for _, line := range m {
		if line.Category == category {
			return line.Amount, true
		}
	}
	return 0, false
}

// Set updates a category in place or appends it, preserving insertion order.
func (m *ExpenseMap) Set(category string, amount float64) {
	for i := range *m {
		if (*m)[i].Category == category {
			(*m)[i].Amount = amount
			return
		}
	}
	*m = append(*m, ExpenseLine{Category: category, Amount: amount})
}

// Total sums all categories.
func (m ExpenseMap) Total() float64 {
	var total float64
	for _, line := range m {
		total += line.Amount
	}
	return total
}

func (m ExpenseMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, line := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(line.Category)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(line.Amount)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (m *ExpenseMap) UnmarshalJSON(data []byte) error {
	*m = ExpenseMap{}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("expense map: %w", err)
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expense map: expected object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("expense map key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expense map: non-string key %v", keyTok)
		}

		var amount float64
		if err := dec.Decode(&amount); err != nil {
			return fmt.Errorf("expense map value for %q: %w", key, err)
		}
		*m = append(*m, ExpenseLine{Category: key, Amount: amount})
	}

	return nil
}
