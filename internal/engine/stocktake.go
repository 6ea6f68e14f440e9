// internal/engine/stocktake.go
package engine

import (
	"fmt"
	"math"

	"github.com/Ashtonex/nirvana/internal/logger"
	"github.com/Ashtonex/nirvana/internal/store"
)

type StocktakeCount struct {
	ItemID           string `json:"itemId"`
	PhysicalQuantity int    `json:"physicalQuantity"`
}

type StocktakeInput struct {
	ShopID     string           `json:"shopId"`
	EmployeeID string           `json:"employeeId"`
	Items      []StocktakeCount `json:"items"`
}

type StocktakeResult struct {
	TotalShrinkageValue float64
	AdjustedItems       int
}

// RecordStocktake reconciles a shop's physical count against the system
// allocation. Shortfalls are booked as shrinkage at landed cost; overages
// adjust upward without a ledger line. The shop allocation is set to the
// physical count and the item's global quantity is nudged by exactly the
// observed local delta; other shops' allocations are untouched. Items whose
// count matches the system are skipped entirely.
func (e *Engine) RecordStocktake(input StocktakeInput) (*StocktakeResult, error) {
	for _, record := range input.Items {
		if record.PhysicalQuantity < 0 {
			return nil, fmt.Errorf("negative physical count for item %s: %w", record.ItemID, ErrInvalidState)
		}
	}

	db, err := e.Store.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if findShop(db, input.ShopID) == nil {
		return nil, fmt.Errorf("shop %s: %w", input.ShopID, ErrNotFound)
	}

	result := &StocktakeResult{}

	for _, record := range input.Items {
		item := findItem(db, record.ItemID)
		if item == nil {
			logger.LogWarn("Stocktake at %s referenced unknown item %s, skipping", input.ShopID, record.ItemID)
			continue
		}

		allocation := item.AllocationFor(input.ShopID)
		if allocation == nil {
			logger.LogWarn("Stocktake at %s counted %s which has no allocation there, skipping", input.ShopID, item.Name)
			continue
		}

		systemQty := allocation.Quantity
		diff := record.PhysicalQuantity - systemQty
		if diff == 0 {
			continue
		}

		if diff < 0 {
			lossValue := math.Abs(float64(diff)) * item.LandedCost
			result.TotalShrinkageValue += lossValue

			db.Ledger = append(db.Ledger, store.FinancialEntry{
				ID:       e.NewID(),
				Type:     store.EntryExpense,
				Category: "Inventory Shrinkage",
				Amount:   lossValue,
				Date:     e.Now(),
				Description: fmt.Sprintf("Shrinkage: %s (%d units lost at %s)",
					item.Name, -diff, input.ShopID),
			})
		}

		// Sync system to physical and track the same delta globally.
		allocation.Quantity = record.PhysicalQuantity
		item.Quantity += diff
		result.AdjustedItems++

		e.audit(db, input.EmployeeID, "STOCK_ADJUSTMENT",
			fmt.Sprintf("Item: %s, Shop: %s, System: %d, Physical: %d, Diff: %d",
				item.Name, input.ShopID, systemQty, record.PhysicalQuantity, diff))
	}

	if err := e.persist(db); err != nil {
		return nil, err
	}

	logger.LogInfo("Stocktake at %s: %d items adjusted, shrinkage value %.2f",
		input.ShopID, result.AdjustedItems, result.TotalShrinkageValue)
	return result, nil
}
