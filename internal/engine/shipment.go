// internal/engine/shipment.go
package engine

import (
	"fmt"
	"math"

	"github.com/Ashtonex/nirvana/internal/logger"
	"github.com/Ashtonex/nirvana/internal/store"
)

// ShipmentItemInput is one product class arriving in a shipment.
// AcquisitionPrice is the total cost for the whole class, not a unit price.
type ShipmentItemInput struct {
	Name             string  `json:"name"`
	Category         string  `json:"category"`
	Quantity         int     `json:"quantity"`
	AcquisitionPrice float64 `json:"acquisitionPrice"`
}

type ShipmentInput struct {
	Supplier       string  `json:"supplier"`
	ShipmentNumber string  `json:"shipmentNumber"`
	PurchasePrice  float64 `json:"purchasePrice"`
	ShippingCost   float64 `json:"shippingCost"`
	DutyCost       float64 `json:"dutyCost"`
	MiscCost       float64 `json:"miscCost"`
	// ManifestPieces is the expected total unit count from the shipping
	// manifest. It is the logistics-fee divisor so a partially arrived
	// shipment does not distort the per-piece fee. Zero falls back to the
	// summed line-item quantity.
	ManifestPieces int                 `json:"manifestPieces"`
	Items          []ShipmentItemInput `json:"items"`
}

type ShipmentResult struct {
	Shipment    store.Shipment
	Items       []store.InventoryItem
	FeePerPiece float64
}

// ProcessShipment computes per-unit landed costs for every product class in a
// shipment, rationalizes the physical quantities across shops in proportion to
// their declared operating expenses, and records the acquisition in the
// ledger. All of it lands in a single store write.
func (e *Engine) ProcessShipment(input ShipmentInput) (*ShipmentResult, error) {
	if input.Supplier == "" {
		return nil, fmt.Errorf("shipment supplier is required: %w", ErrInvalidState)
	}
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("shipment has no items: %w", ErrInvalidState)
	}
	for _, item := range input.Items {
		if item.Quantity < 0 || item.AcquisitionPrice < 0 {
			return nil, fmt.Errorf("item %q has negative quantity or cost: %w", item.Name, ErrInvalidState)
		}
	}

	db, err := e.Store.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	now := e.Now()
	shipmentID := e.NewID()

	totalQty := 0
	for _, item := range input.Items {
		totalQty += item.Quantity
	}

	totalLogistics := input.ShippingCost + input.DutyCost + input.MiscCost

	// Per-piece logistics fee is shared across all pieces in the shipment.
	logisticsBasis := totalQty
	if input.ManifestPieces > 0 {
		logisticsBasis = input.ManifestPieces
	}
	feePerPiece := 0.0
	if logisticsBasis > 0 {
		feePerPiece = totalLogistics / float64(logisticsBasis)
	}

	newItems := make([]store.InventoryItem, 0, len(input.Items))
	itemIDs := make([]string, 0, len(input.Items))

	for _, itemData := range input.Items {
		unitAcquisitionPrice := 0.0
		if itemData.Quantity > 0 {
			unitAcquisitionPrice = itemData.AcquisitionPrice / float64(itemData.Quantity)
		}

		newItem := store.InventoryItem{
			ID:               e.NewID(),
			ShipmentID:       shipmentID,
			Name:             itemData.Name,
			Category:         itemData.Category,
			Quantity:         itemData.Quantity,
			AcquisitionPrice: unitAcquisitionPrice,
			LandedCost:       unitAcquisitionPrice + feePerPiece,
			// Overhead contribution is derived on demand by reports.
			OverheadContribution: 0,
			DateAdded:            now,
			Allocations:          allocateAcrossShops(itemData.Quantity, db.Shops),
		}

		newItems = append(newItems, newItem)
		itemIDs = append(itemIDs, newItem.ID)
	}

	shipment := store.Shipment{
		ID:             shipmentID,
		Date:           now,
		Supplier:       input.Supplier,
		ShipmentNumber: input.ShipmentNumber,
		PurchasePrice:  input.PurchasePrice,
		ShippingCost:   input.ShippingCost,
		DutyCost:       input.DutyCost,
		MiscCost:       input.MiscCost,
		ManifestPieces: input.ManifestPieces,
		Items:          itemIDs,
		TotalQuantity:  totalQty,
	}

	db.Inventory = append(db.Inventory, newItems...)
	db.Shipments = append(db.Shipments, shipment)

	db.Ledger = append(db.Ledger, store.FinancialEntry{
		ID:          e.NewID(),
		Type:        store.EntryAsset,
		Category:    "Inventory Acquisition",
		Amount:      input.PurchasePrice,
		Date:        now,
		Description: fmt.Sprintf("Source: %s - %d units", input.Supplier, totalQty),
	})

	if totalLogistics > 0 {
		db.Ledger = append(db.Ledger, store.FinancialEntry{
			ID:          e.NewID(),
			Type:        store.EntryExpense,
			Category:    "Shipping & Logistics",
			Amount:      totalLogistics,
			Date:        now,
			Description: fmt.Sprintf("Shipment Fees for %s", input.Supplier),
		})
	}

	e.audit(db, SystemActor, "SHIPMENT_PROCESSED",
		fmt.Sprintf("Supplier: %s, Ref: %s, Total Qty: %d", input.Supplier, input.ShipmentNumber, totalQty))

	if err := e.persist(db); err != nil {
		return nil, err
	}

	logger.LogInfo("Processed shipment %s from %s: %d classes, %d units, fee/piece %.4f",
		input.ShipmentNumber, input.Supplier, len(newItems), totalQty, feePerPiece)

	return &ShipmentResult{
		Shipment:    shipment,
		Items:       newItems,
		FeePerPiece: feePerPiece,
	}, nil
}

// allocateAcrossShops splits quantity proportionally to each shop's declared
// expense total. With zero total weight no allocations are created and the
// item sits unallocated, which is a valid state. Otherwise the allocations
// always sum to quantity: the flooring remainder is assigned by
// assignRemainder.
func allocateAcrossShops(quantity int, shops []store.Shop) []store.Allocation {
	allocations := []store.Allocation{}

	totalShopExpenses := 0.0
	for _, shop := range shops {
		totalShopExpenses += shop.Expenses.Total()
	}
	if totalShopExpenses <= 0 {
		return allocations
	}

	allocated := 0
	for _, shop := range shops {
		ratio := shop.Expenses.Total() / totalShopExpenses
		qty := int(math.Floor(float64(quantity) * ratio))
		if qty > 0 {
			allocations = append(allocations, store.Allocation{ShopID: shop.ID, Quantity: qty})
			allocated += qty
		}
	}

	return assignRemainder(allocations, quantity-allocated, shops)
}

// assignRemainder gives the whole rounding remainder to the first allocation
// with a non-zero quantity in shop list order. If flooring produced no
// allocation at all (small quantities spread over many shops), the first shop
// carrying any expense weight takes the full remainder, so the allocations
// still sum to the item quantity.
func assignRemainder(allocations []store.Allocation, remainder int, shops []store.Shop) []store.Allocation {
	if remainder <= 0 {
		return allocations
	}
	if len(allocations) > 0 {
		allocations[0].Quantity += remainder
		return allocations
	}
	for _, shop := range shops {
		if shop.Expenses.Total() > 0 {
			return append(allocations, store.Allocation{ShopID: shop.ID, Quantity: remainder})
		}
	}
	return allocations
}
