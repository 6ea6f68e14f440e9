// internal/engine/sales_test.go
package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSale(t *testing.T) {
	eng, mem := newTestEngine(t)
	seedShops(t, mem)
	seedItem(t, mem, "item-1", "kipasa", 100, 24)

	sale, err := eng.RecordSale(SaleInput{
		ShopID:     "kipasa",
		ItemID:     "item-1",
		EmployeeID: "emp-1",
		ClientName: "Walk-in",
		Quantity:   4,
		UnitPrice:  50,
	})
	require.NoError(t, err)

	assert.Equal(t, 200.0, sale.TotalBeforeTax)
	assert.Equal(t, 31.0, sale.Tax) // 15.5% of 200
	assert.Equal(t, 231.0, sale.TotalWithTax)

	db := mustRead(t, mem)
	item := db.Inventory[0]
	assert.Equal(t, 96, item.AllocationFor("kipasa").Quantity)
	assert.Equal(t, 96, item.Quantity, "global and shop counts decrement together")

	require.Len(t, db.Sales, 1)
	audit := lastAudit(t, db)
	assert.Equal(t, "SALE_RECORDED", audit.Action)
	assert.Equal(t, "emp-1", audit.EmployeeID)

	t.Log("✅ Sale applies the fixed tax and decrements both counters")
}

func TestRecordSaleInsufficientStock(t *testing.T) {
	eng, mem := newTestEngine(t)
	seedShops(t, mem)
	seedItem(t, mem, "item-1", "kipasa", 3, 24)

	t.Run("ShortAllocation", func(t *testing.T) {
		_, err := eng.RecordSale(SaleInput{
			ShopID: "kipasa", ItemID: "item-1", EmployeeID: "emp-1", Quantity: 4, UnitPrice: 50,
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInsufficientStock))
	})

	t.Run("NoAllocationAtShop", func(t *testing.T) {
		_, err := eng.RecordSale(SaleInput{
			ShopID: "dubdub", ItemID: "item-1", EmployeeID: "emp-2", Quantity: 1, UnitPrice: 50,
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInsufficientStock))
	})

	// Rejections leave the stored state untouched.
	assert.Zero(t, mem.Writes())
	db := mustRead(t, mem)
	assert.Equal(t, 3, db.Inventory[0].Quantity)
	assert.Empty(t, db.Sales)
}

func TestRecordSaleRejections(t *testing.T) {
	eng, mem := newTestEngine(t)
	seedShops(t, mem)
	seedItem(t, mem, "item-1", "kipasa", 10, 24)

	cases := []struct {
		name  string
		input SaleInput
		class error
	}{
		{"ZeroQuantity", SaleInput{ShopID: "kipasa", ItemID: "item-1", EmployeeID: "emp-1", Quantity: 0, UnitPrice: 1}, ErrInvalidState},
		{"NegativePrice", SaleInput{ShopID: "kipasa", ItemID: "item-1", EmployeeID: "emp-1", Quantity: 1, UnitPrice: -1}, ErrInvalidState},
		{"UnknownShop", SaleInput{ShopID: "nowhere", ItemID: "item-1", EmployeeID: "emp-1", Quantity: 1, UnitPrice: 1}, ErrNotFound},
		{"UnknownEmployee", SaleInput{ShopID: "kipasa", ItemID: "item-1", EmployeeID: "ghost", Quantity: 1, UnitPrice: 1}, ErrNotFound},
		{"UnknownItem", SaleInput{ShopID: "kipasa", ItemID: "ghost", EmployeeID: "emp-1", Quantity: 1, UnitPrice: 1}, ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := eng.RecordSale(tc.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.class), "want %v, got %v", tc.class, err)
		})
	}
	assert.Zero(t, mem.Writes())
}

func TestTransferInventory(t *testing.T) {
	eng, mem := newTestEngine(t)
	seedShops(t, mem)
	seedItem(t, mem, "item-1", "kipasa", 100, 24)

	transfer, err := eng.TransferInventory("item-1", "kipasa", "dubdub", 30)
	require.NoError(t, err)
	assert.Equal(t, 30, transfer.Quantity)

	db := mustRead(t, mem)
	item := db.Inventory[0]
	assert.Equal(t, 70, item.AllocationFor("kipasa").Quantity)
	assert.Equal(t, 30, item.AllocationFor("dubdub").Quantity, "destination allocation is created on demand")
	assert.Equal(t, 100, item.Quantity, "transfers conserve the global quantity")

	require.Len(t, db.Transfers, 1)
	assert.Equal(t, "INV_TRANSFER", lastAudit(t, db).Action)

	t.Run("IntoExistingAllocation", func(t *testing.T) {
		_, err := eng.TransferInventory("item-1", "kipasa", "dubdub", 10)
		require.NoError(t, err)
		db := mustRead(t, mem)
		assert.Equal(t, 40, db.Inventory[0].AllocationFor("dubdub").Quantity)
	})

	t.Log("✅ Transfer moves stock between shops without changing the total")
}

func TestTransferInventoryFailsAtomically(t *testing.T) {
	eng, mem := newTestEngine(t)
	seedShops(t, mem)
	seedItem(t, mem, "item-1", "kipasa", 20, 24)

	cases := []struct {
		name     string
		from, to string
		qty      int
		class    error
	}{
		{"Oversized", "kipasa", "dubdub", 21, ErrInsufficientStock},
		{"SourceWithoutStock", "dubdub", "kipasa", 1, ErrInsufficientStock},
		{"SameShop", "kipasa", "kipasa", 1, ErrInvalidState},
		{"ZeroQuantity", "kipasa", "dubdub", 0, ErrInvalidState},
		{"UnknownDestination", "kipasa", "nowhere", 1, ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := eng.TransferInventory("item-1", tc.from, tc.to, tc.qty)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.class), "want %v, got %v", tc.class, err)
		})
	}

	// No partial movement survives a failed transfer.
	assert.Zero(t, mem.Writes())
	db := mustRead(t, mem)
	item := db.Inventory[0]
	assert.Equal(t, 20, item.AllocationFor("kipasa").Quantity)
	assert.Nil(t, item.AllocationFor("dubdub"))
	assert.Empty(t, db.Transfers)
}
