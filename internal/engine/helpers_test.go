// internal/engine/helpers_test.go
package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/Ashtonex/nirvana/internal/store"
)

var testClock = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

// newTestEngine returns an engine over a fresh MemStore with a fixed clock and
// deterministic sequential ids (id-1, id-2, ...).
func newTestEngine(t *testing.T) (*Engine, *store.MemStore) {
	t.Helper()
	mem := store.NewMemStore()
	eng := New(mem)
	eng.Now = func() time.Time { return testClock }

	seq := 0
	eng.NewID = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	return eng, mem
}

// seedShops stores three shops with the expense weights 1000/500/500 used
// throughout the allocation tests.
func seedShops(t *testing.T, mem *store.MemStore) {
	t.Helper()
	db := store.NewDatabase()
	db.Shops = []store.Shop{
		{ID: "kipasa", Name: "Kipasa", Expenses: store.ShopExpenses{Rent: 600, Salaries: 400}},
		{ID: "dubdub", Name: "DubDub", Expenses: store.ShopExpenses{Rent: 300, Salaries: 200}},
		{ID: "tradecenter", Name: "TradeCenter", Expenses: store.ShopExpenses{Rent: 250, Salaries: 250}},
	}
	db.Employees = []store.Employee{
		{ID: "emp-1", Name: "Amara", Role: store.RoleSales, ShopID: "kipasa", HireDate: testClock, Active: true},
		{ID: "emp-2", Name: "Jonas", Role: store.RoleManager, ShopID: "dubdub", HireDate: testClock, Active: true},
	}
	if err := mem.Seed(db); err != nil {
		t.Fatal(err)
	}
}

// seedItem adds one inventory item with a single allocation and matching
// global quantity on top of whatever is already stored.
func seedItem(t *testing.T, mem *store.MemStore, id, shopID string, qty int, landedCost float64) {
	t.Helper()
	db, err := mem.Read()
	if err != nil {
		t.Fatal(err)
	}
	db.Inventory = append(db.Inventory, store.InventoryItem{
		ID:          id,
		Name:        "Item " + id,
		Quantity:    qty,
		LandedCost:  landedCost,
		DateAdded:   testClock,
		Allocations: []store.Allocation{{ShopID: shopID, Quantity: qty}},
	})
	if err := mem.Seed(db); err != nil {
		t.Fatal(err)
	}
}

func mustRead(t *testing.T, mem *store.MemStore) *store.Database {
	t.Helper()
	db, err := mem.Read()
	if err != nil {
		t.Fatal(err)
	}
	return db
}

func lastAudit(t *testing.T, db *store.Database) store.AuditEntry {
	t.Helper()
	if len(db.AuditLog) == 0 {
		t.Fatal("expected at least one audit entry")
	}
	return db.AuditLog[len(db.AuditLog)-1]
}
