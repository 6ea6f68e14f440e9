// internal/engine/quotation.go
package engine

import (
	"fmt"
	"time"

	"github.com/Ashtonex/nirvana/internal/store"
)

// QuoteValidity is how long a recorded quotation remains valid. The expiry is
// a stored timestamp only; nothing sweeps expired quotes automatically.
const QuoteValidity = 7 * 24 * time.Hour

type QuotationLineInput struct {
	ItemID    string  `json:"itemId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

type QuotationInput struct {
	ShopID     string               `json:"shopId"`
	EmployeeID string               `json:"employeeId"`
	ClientName string               `json:"clientName,omitempty"`
	Items      []QuotationLineInput `json:"items"`
}

// RecordQuotation stores a pending multi-line proposal. Line totals carry the
// same tax split a direct sale would, so finalizing later reuses the numbers
// quoted to the client.
func (e *Engine) RecordQuotation(input QuotationInput) (*store.Quotation, error) {
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("quotation has no lines: %w", ErrInvalidState)
	}
	for _, line := range input.Items {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("quotation line for %s has non-positive quantity: %w", line.ItemID, ErrInvalidState)
		}
		if line.UnitPrice < 0 {
			return nil, fmt.Errorf("quotation line for %s has negative price: %w", line.ItemID, ErrInvalidState)
		}
	}

	db, err := e.Store.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if findShop(db, input.ShopID) == nil {
		return nil, fmt.Errorf("shop %s: %w", input.ShopID, ErrNotFound)
	}
	if findEmployee(db, input.EmployeeID) == nil {
		return nil, fmt.Errorf("employee %s: %w", input.EmployeeID, ErrNotFound)
	}

	now := e.Now()
	quote := store.Quotation{
		ID:         e.NewID(),
		ShopID:     input.ShopID,
		EmployeeID: input.EmployeeID,
		ClientName: input.ClientName,
		Date:       now,
		ExpiryDate: now.Add(QuoteValidity),
		Status:     store.QuoteStatusPending,
	}

	for _, line := range input.Items {
		item := findItem(db, line.ItemID)
		if item == nil {
			return nil, fmt.Errorf("item %s: %w", line.ItemID, ErrNotFound)
		}

		lineBeforeTax := line.UnitPrice * float64(line.Quantity)
		lineTax := lineBeforeTax * TaxRate

		quote.Items = append(quote.Items, store.QuotationLine{
			ItemID:    line.ItemID,
			ItemName:  item.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Total:     lineBeforeTax + lineTax,
		})
		quote.TotalBeforeTax += lineBeforeTax
		quote.Tax += lineTax
	}
	quote.TotalWithTax = quote.TotalBeforeTax + quote.Tax

	db.Quotations = append(db.Quotations, quote)

	e.audit(db, input.EmployeeID, "QUOTE_RECORDED",
		fmt.Sprintf("Quote ID: %s, Shop: %s, Lines: %d, Total: $%.2f",
			quote.ID, input.ShopID, len(quote.Items), quote.TotalWithTax))

	if err := e.persist(db); err != nil {
		return nil, err
	}

	return &quote, nil
}

// DeleteQuotation removes a quotation that is still pending. Converted quotes
// are part of the sales history and cannot be deleted.
func (e *Engine) DeleteQuotation(quoteID string) error {
	db, err := e.Store.Read()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	quote := findQuotation(db, quoteID)
	if quote == nil {
		return fmt.Errorf("quotation %s: %w", quoteID, ErrNotFound)
	}
	if quote.Status != store.QuoteStatusPending {
		return fmt.Errorf("quotation %s is %s, only pending quotes can be deleted: %w",
			quoteID, quote.Status, ErrInvalidState)
	}

	kept := db.Quotations[:0]
	for _, q := range db.Quotations {
		if q.ID != quoteID {
			kept = append(kept, q)
		}
	}
	db.Quotations = kept

	e.audit(db, AdminActor, "QUOTE_DELETED", fmt.Sprintf("Quote ID: %s", quoteID))

	return e.persist(db)
}

// FinalizeQuotation converts a pending quotation into sales, reusing the
// quote's already-computed unit prices and tax split and applying the same
// inventory decrement as a direct sale. Double finalization is rejected:
// a second call on the same id fails with ErrInvalidState and creates no
// additional sales. Stock for every line is verified before any mutation so
// the conversion is all-or-nothing.
func (e *Engine) FinalizeQuotation(quoteID string) ([]store.Sale, error) {
	db, err := e.Store.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	quote := findQuotation(db, quoteID)
	if quote == nil {
		return nil, fmt.Errorf("quotation %s: %w", quoteID, ErrNotFound)
	}
	if quote.Status != store.QuoteStatusPending {
		return nil, fmt.Errorf("quotation %s already processed: %w", quoteID, ErrInvalidState)
	}

	for _, line := range quote.Items {
		item := findItem(db, line.ItemID)
		if item == nil {
			return nil, fmt.Errorf("item %s: %w", line.ItemID, ErrNotFound)
		}
		allocation := item.AllocationFor(quote.ShopID)
		if allocation == nil || allocation.Quantity < line.Quantity {
			have := 0
			if allocation != nil {
				have = allocation.Quantity
			}
			return nil, fmt.Errorf("%s at %s: have %d, want %d: %w",
				item.Name, quote.ShopID, have, line.Quantity, ErrInsufficientStock)
		}
	}

	now := e.Now()
	sales := make([]store.Sale, 0, len(quote.Items))

	for _, line := range quote.Items {
		totalBeforeTax := line.UnitPrice * float64(line.Quantity)

		sale := store.Sale{
			ID:             e.NewID(),
			ShopID:         quote.ShopID,
			ItemID:         line.ItemID,
			ItemName:       line.ItemName,
			EmployeeID:     quote.EmployeeID,
			ClientName:     quote.ClientName,
			Quantity:       line.Quantity,
			UnitPrice:      line.UnitPrice,
			TotalBeforeTax: totalBeforeTax,
			Tax:            totalBeforeTax * TaxRate,
			TotalWithTax:   line.Total,
			Date:           now,
		}
		db.Sales = append(db.Sales, sale)
		sales = append(sales, sale)

		item := findItem(db, line.ItemID)
		item.AllocationFor(quote.ShopID).Quantity -= line.Quantity
		item.Quantity -= line.Quantity
	}

	quote.Status = store.QuoteStatusConverted

	e.audit(db, quote.EmployeeID, "QUOTE_CONVERTED",
		fmt.Sprintf("Quote ID: %s, Total: $%.2f", quoteID, quote.TotalWithTax))

	if err := e.persist(db); err != nil {
		return nil, err
	}

	return sales, nil
}
