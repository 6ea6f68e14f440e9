// internal/engine/sales.go
package engine

import (
	"fmt"

	"github.com/Ashtonex/nirvana/internal/logger"
	"github.com/Ashtonex/nirvana/internal/store"
)

type SaleInput struct {
	ShopID     string  `json:"shopId"`
	ItemID     string  `json:"itemId"`
	EmployeeID string  `json:"employeeId"`
	ClientName string  `json:"clientName,omitempty"`
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unitPrice"`
}

// RecordSale books a POS checkout: the fixed tax rate is applied to the
// pre-tax total, the shop allocation and the item's global quantity are
// decremented together, and the sale is appended as an immutable record.
// A sale that would drive the shop allocation negative is rejected with
// ErrInsufficientStock; overselling is not permitted.
func (e *Engine) RecordSale(input SaleInput) (*store.Sale, error) {
	if input.Quantity <= 0 {
		return nil, fmt.Errorf("sale quantity must be positive: %w", ErrInvalidState)
	}
	if input.UnitPrice < 0 {
		return nil, fmt.Errorf("sale unit price must not be negative: %w", ErrInvalidState)
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
	item := findItem(db, input.ItemID)
	if item == nil {
		return nil, fmt.Errorf("item %s: %w", input.ItemID, ErrNotFound)
	}

	allocation := item.AllocationFor(input.ShopID)
	if allocation == nil || allocation.Quantity < input.Quantity {
		have := 0
		if allocation != nil {
			have = allocation.Quantity
		}
		return nil, fmt.Errorf("%s at %s: have %d, want %d: %w",
			item.Name, input.ShopID, have, input.Quantity, ErrInsufficientStock)
	}

	totalBeforeTax := input.UnitPrice * float64(input.Quantity)
	tax := totalBeforeTax * TaxRate

	sale := store.Sale{
		ID:             e.NewID(),
		ShopID:         input.ShopID,
		ItemID:         input.ItemID,
		ItemName:       item.Name,
		EmployeeID:     input.EmployeeID,
		ClientName:     input.ClientName,
		Quantity:       input.Quantity,
		UnitPrice:      input.UnitPrice,
		TotalBeforeTax: totalBeforeTax,
		Tax:            tax,
		TotalWithTax:   totalBeforeTax + tax,
		Date:           e.Now(),
	}

	allocation.Quantity -= input.Quantity
	item.Quantity -= input.Quantity
	db.Sales = append(db.Sales, sale)

	e.audit(db, input.EmployeeID, "SALE_RECORDED",
		fmt.Sprintf("Item: %s, Qty: %d, Total: $%.2f", item.Name, input.Quantity, sale.TotalWithTax))

	if err := e.persist(db); err != nil {
		return nil, err
	}

	return &sale, nil
}

// TransferInventory moves quantity between two shops' allocations of the same
// item. It fails atomically: on any error no mutation is written. The
// destination allocation is created when it does not exist yet.
func (e *Engine) TransferInventory(itemID, fromShopID, toShopID string, quantity int) (*store.Transfer, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("transfer quantity must be positive: %w", ErrInvalidState)
	}
	if fromShopID == toShopID {
		return nil, fmt.Errorf("transfer source and destination are the same shop: %w", ErrInvalidState)
	}

	db, err := e.Store.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if findShop(db, fromShopID) == nil {
		return nil, fmt.Errorf("shop %s: %w", fromShopID, ErrNotFound)
	}
	if findShop(db, toShopID) == nil {
		return nil, fmt.Errorf("shop %s: %w", toShopID, ErrNotFound)
	}
	item := findItem(db, itemID)
	if item == nil {
		return nil, fmt.Errorf("item %s: %w", itemID, ErrNotFound)
	}

	fromAlloc := item.AllocationFor(fromShopID)
	if fromAlloc == nil || fromAlloc.Quantity < quantity {
		have := 0
		if fromAlloc != nil {
			have = fromAlloc.Quantity
		}
		return nil, fmt.Errorf("%s at %s: have %d, want %d: %w",
			item.Name, fromShopID, have, quantity, ErrInsufficientStock)
	}

	fromAlloc.Quantity -= quantity

	if toAlloc := item.AllocationFor(toShopID); toAlloc != nil {
		toAlloc.Quantity += quantity
	} else {
		item.Allocations = append(item.Allocations, store.Allocation{ShopID: toShopID, Quantity: quantity})
	}

	transfer := store.Transfer{
		ID:         e.NewID(),
		ItemID:     itemID,
		ItemName:   item.Name,
		FromShopID: fromShopID,
		ToShopID:   toShopID,
		Quantity:   quantity,
		Date:       e.Now(),
	}
	db.Transfers = append(db.Transfers, transfer)

	e.audit(db, SystemActor, "INV_TRANSFER",
		fmt.Sprintf("Moved %d units of %s from %s to %s", quantity, item.Name, fromShopID, toShopID))

	if err := e.persist(db); err != nil {
		return nil, err
	}

	logger.LogInfo("Transferred %d x %s: %s -> %s", quantity, item.Name, fromShopID, toShopID)
	return &transfer, nil
}
