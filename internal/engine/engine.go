// internal/engine/engine.go
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Ashtonex/nirvana/internal/store"
)

// Error taxonomy. Operations reject with one of these (wrapped with context);
// callers classify with errors.Is. NotFound and InvalidState leave the stored
// document untouched: the in-memory copy is discarded, never written.
var (
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidState      = errors.New("invalid state")
	ErrPersistence       = errors.New("persistence failure")
)

// TaxRate is the fixed sales tax applied to every sale.
const TaxRate = 0.155

// SystemActor marks audit entries for operations not tied to one employee.
const SystemActor = "SYSTEM"

// AdminActor marks audit entries for administrative operations.
const AdminActor = "ADMIN"

// Engine implements the operation surface over a Store. Each public operation
// performs one Read, an in-memory compute phase, and one Write. There is no
// cross-operation locking: two operations racing against the same process can
// lose an update, which is accepted for the single-operator context this
// serves.
type Engine struct {
	Store store.Store

	// Now and NewID are swappable for tests.
	Now   func() time.Time
	NewID func() string
}

func New(s store.Store) *Engine {
	return &Engine{
		Store: s,
		Now:   time.Now,
		NewID: uuid.NewString,
	}
}

// persist writes the document, mapping any store failure into the
// PersistenceFailure class. The operation has already mutated only the
// in-memory copy, so an error here means no visible state change happened.
func (e *Engine) persist(db *store.Database) error {
	if err := e.Store.Write(db); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// audit appends one accountability-trail entry.
func (e *Engine) audit(db *store.Database, employeeID, action, details string) store.AuditEntry {
	entry := store.AuditEntry{
		ID:         e.NewID(),
		Timestamp:  e.Now(),
		EmployeeID: employeeID,
		Action:     action,
		Details:    details,
	}
	db.AuditLog = append(db.AuditLog, entry)
	return entry
}

func findShop(db *store.Database, shopID string) *store.Shop {
	for i := range db.Shops {
		if db.Shops[i].ID == shopID {
			return &db.Shops[i]
		}
	}
	return nil
}

func findItem(db *store.Database, itemID string) *store.InventoryItem {
	for i := range db.Inventory {
		if db.Inventory[i].ID == itemID {
			return &db.Inventory[i]
		}
	}
	return nil
}

func findEmployee(db *store.Database, employeeID string) *store.Employee {
	for i := range db.Employees {
		if db.Employees[i].ID == employeeID {
			return &db.Employees[i]
		}
	}
	return nil
}

func findQuotation(db *store.Database, quoteID string) *store.Quotation {
	for i := range db.Quotations {
		if db.Quotations[i].ID == quoteID {
			return &db.Quotations[i]
		}
	}
	return nil
}

func validRole(role string) bool {
	switch role {
	case store.RoleSales, store.RoleManager, store.RoleOwner:
		return true
	}
	return false
}
