// internal/engine/queries.go
package engine

import (
	"fmt"
	"sort"

	"github.com/Ashtonex/nirvana/internal/store"
)

// Snapshot returns the whole document for dashboard-style consumers.
func (e *Engine) Snapshot() (*store.Database, error) {
	db, err := e.Store.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return db, nil
}

// InventoryHistory lists inventory newest first.
func (e *Engine) InventoryHistory() ([]store.InventoryItem, error) {
	db, err := e.Snapshot()
	if err != nil {
		return nil, err
	}

	items := append([]store.InventoryItem(nil), db.Inventory...)
	sort.Slice(items, func(i, j int) bool {
		return items[i].DateAdded.After(items[j].DateAdded)
	})
	return items, nil
}

func (e *Engine) Shipments() ([]store.Shipment, error) {
	db, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	return db.Shipments, nil
}

// Financials bundles the read model the finance pages consume.
type Financials struct {
	Ledger         []store.FinancialEntry
	Sales          []store.Sale
	GlobalExpenses store.ExpenseMap
	Shops          []store.Shop
}

func (e *Engine) Financials() (*Financials, error) {
	db, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	return &Financials{
		Ledger:         db.Ledger,
		Sales:          db.Sales,
		GlobalExpenses: db.GlobalExpenses,
		Shops:          db.Shops,
	}, nil
}

func (e *Engine) Employees() ([]store.Employee, error) {
	db, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	return db.Employees, nil
}

func (e *Engine) Quotations() ([]store.Quotation, error) {
	db, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	return db.Quotations, nil
}

func (e *Engine) Transfers() ([]store.Transfer, error) {
	db, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	return db.Transfers, nil
}

func (e *Engine) AuditLog() ([]store.AuditEntry, error) {
	db, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	return db.AuditLog, nil
}
