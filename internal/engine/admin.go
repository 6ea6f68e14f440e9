// internal/engine/admin.go
package engine

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Ashtonex/nirvana/internal/store"
)

// AddShop registers a new shop with its declared operating expenses. The
// expense total becomes the shop's weight in shipment rationalization.
func (e *Engine) AddShop(name string, expenses store.ShopExpenses) (*store.Shop, error) {
	if name == "" {
		return nil, fmt.Errorf("shop name is required: %w", ErrInvalidState)
	}

	db, err := e.Store.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	shop := store.Shop{
		ID:       e.NewID(),
		Name:     name,
		Expenses: expenses,
	}
	db.Shops = append(db.Shops, shop)

	e.audit(db, AdminActor, "SHOP_ADDED",
		fmt.Sprintf("Name: %s, Expense weight: %.2f", name, expenses.Total()))

	if err := e.persist(db); err != nil {
		return nil, err
	}
	return &shop, nil
}

// UpdateShopExpenses replaces one shop's declared expenses.
func (e *Engine) UpdateShopExpenses(shopID string, expenses store.ShopExpenses) error {
	db, err := e.Store.Read()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	shop := findShop(db, shopID)
	if shop == nil {
		return fmt.Errorf("shop %s: %w", shopID, ErrNotFound)
	}
	shop.Expenses = expenses

	e.audit(db, AdminActor, "SHOP_EXPENSES_UPDATED",
		fmt.Sprintf("Shop: %s, New weight: %.2f", shop.Name, expenses.Total()))

	return e.persist(db)
}

// UpdateGlobalExpenses replaces the whole category map.
func (e *Engine) UpdateGlobalExpenses(expenses store.ExpenseMap) error {
	db, err := e.Store.Read()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	db.GlobalExpenses = expenses

	e.audit(db, AdminActor, "GLOBAL_EXPENSES_UPDATED",
		fmt.Sprintf("Categories: %d, Monthly total: %.2f", len(expenses), expenses.Total()))

	return e.persist(db)
}

// SetGlobalExpense updates or appends a single category, preserving the
// insertion order of the map.
func (e *Engine) SetGlobalExpense(category string, amount float64) error {
	if category == "" {
		return fmt.Errorf("expense category is required: %w", ErrInvalidState)
	}

	db, err := e.Store.Read()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	db.GlobalExpenses.Set(category, amount)

	e.audit(db, AdminActor, "GLOBAL_EXPENSES_UPDATED",
		fmt.Sprintf("Category: %s, Amount: %.2f", category, amount))

	return e.persist(db)
}

type EmployeeInput struct {
	Name     string    `json:"name"`
	Role     string    `json:"role"`
	ShopID   string    `json:"shopId"`
	HireDate time.Time `json:"hireDate"`
}

// EmployeeUpdate carries optional field changes; nil fields are left alone.
type EmployeeUpdate struct {
	Name   *string `json:"name,omitempty"`
	Role   *string `json:"role,omitempty"`
	ShopID *string `json:"shopId,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

func (e *Engine) AddEmployee(input EmployeeInput) (*store.Employee, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("employee name is required: %w", ErrInvalidState)
	}
	if !validRole(input.Role) {
		return nil, fmt.Errorf("invalid employee role %q: %w", input.Role, ErrInvalidState)
	}

	db, err := e.Store.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if findShop(db, input.ShopID) == nil {
		return nil, fmt.Errorf("shop %s: %w", input.ShopID, ErrNotFound)
	}

	hireDate := input.HireDate
	if hireDate.IsZero() {
		hireDate = e.Now()
	}

	employee := store.Employee{
		ID:       e.NewID(),
		Name:     input.Name,
		Role:     input.Role,
		ShopID:   input.ShopID,
		HireDate: hireDate,
		Active:   true,
	}
	db.Employees = append(db.Employees, employee)

	e.audit(db, AdminActor, "EMPLOYEE_ADDED",
		fmt.Sprintf("Name: %s, Role: %s, Shop: %s", employee.Name, employee.Role, employee.ShopID))

	if err := e.persist(db); err != nil {
		return nil, err
	}
	return &employee, nil
}

func (e *Engine) UpdateEmployee(id string, updates EmployeeUpdate) (*store.Employee, error) {
	if updates.Role != nil && !validRole(*updates.Role) {
		return nil, fmt.Errorf("invalid employee role %q: %w", *updates.Role, ErrInvalidState)
	}

	db, err := e.Store.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	employee := findEmployee(db, id)
	if employee == nil {
		return nil, fmt.Errorf("employee %s: %w", id, ErrNotFound)
	}
	if updates.ShopID != nil && findShop(db, *updates.ShopID) == nil {
		return nil, fmt.Errorf("shop %s: %w", *updates.ShopID, ErrNotFound)
	}

	if updates.Name != nil {
		employee.Name = *updates.Name
	}
	if updates.Role != nil {
		employee.Role = *updates.Role
	}
	if updates.ShopID != nil {
		employee.ShopID = *updates.ShopID
	}
	if updates.Active != nil {
		employee.Active = *updates.Active
	}

	changed, _ := json.Marshal(updates)
	e.audit(db, AdminActor, "EMPLOYEE_UPDATED", fmt.Sprintf("ID: %s, Updates: %s", id, changed))

	if err := e.persist(db); err != nil {
		return nil, err
	}
	return employee, nil
}

func (e *Engine) DeleteEmployee(id string) error {
	db, err := e.Store.Read()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	employee := findEmployee(db, id)
	if employee == nil {
		return fmt.Errorf("employee %s: %w", id, ErrNotFound)
	}
	name := employee.Name

	kept := db.Employees[:0]
	for _, emp := range db.Employees {
		if emp.ID != id {
			kept = append(kept, emp)
		}
	}
	db.Employees = kept

	e.audit(db, AdminActor, "EMPLOYEE_DELETED", fmt.Sprintf("ID: %s, Name: %s", id, name))

	return e.persist(db)
}

// ExportDatabase records the export in the audit trail and returns the full
// document as indented JSON.
func (e *Engine) ExportDatabase() (string, error) {
	db, err := e.Store.Read()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	e.audit(db, AdminActor, "SYSTEM_EXPORT", "Full database snapshot exported.")

	if err := e.persist(db); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding export: %w", err)
	}
	return string(data), nil
}
