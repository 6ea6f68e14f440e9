// internal/store/store_test.go
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func testDB(marker string) *Database {
	db := NewDatabase()
	db.Shops = append(db.Shops, Shop{ID: "shop-1", Name: marker})
	return db
}

func TestFileStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	fileStore := NewFileStore(filepath.Join(dir, "db.json"), 3)

	original := testDB("round-trip")
	original.GlobalExpenses.Set("Warehouse Rent", 1200)
	original.Inventory = append(original.Inventory, InventoryItem{
		ID: "item-1", Name: "Solar Lamp", Quantity: 10, LandedCost: 24,
		Allocations: []Allocation{{ShopID: "shop-1", Quantity: 10}},
	})

	if err := fileStore.Write(original); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	loaded, err := fileStore.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if len(loaded.Shops) != 1 || loaded.Shops[0].Name != "round-trip" {
		t.Errorf("shops did not survive the round trip: %+v", loaded.Shops)
	}
	if amount, ok := loaded.GlobalExpenses.Get("Warehouse Rent"); !ok || amount != 1200 {
		t.Errorf("global expenses did not survive: got %v, %v", amount, ok)
	}
	if len(loaded.Inventory) != 1 || loaded.Inventory[0].Allocations[0].Quantity != 10 {
		t.Errorf("inventory did not survive: %+v", loaded.Inventory)
	}

	t.Log("✅ Database round-trips through the file store")
}

func TestFileStoreMissingFile(t *testing.T) {
	fileStore := NewFileStore(filepath.Join(t.TempDir(), "nope.json"), 0)

	db, err := fileStore.Read()
	if err != nil {
		t.Fatalf("Read of missing file should not error, got: %v", err)
	}
	assertEmptyShape(t, db)

	t.Log("✅ Missing file reads as empty-but-valid database")
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	if err := os.WriteFile(path, []byte(`{"shops": [truncated`), 0664); err != nil {
		t.Fatal(err)
	}

	fileStore := NewFileStore(path, 0)
	db, err := fileStore.Read()
	if err != nil {
		t.Fatalf("Read of corrupt file should not error, got: %v", err)
	}
	assertEmptyShape(t, db)

	t.Log("✅ Corrupt file reads as empty-but-valid database")
}

func assertEmptyShape(t *testing.T, db *Database) {
	t.Helper()
	if db == nil {
		t.Fatal("expected a database, got nil")
	}
	if db.Shops == nil || db.Inventory == nil || db.Sales == nil || db.Ledger == nil ||
		db.Shipments == nil || db.Transfers == nil || db.Quotations == nil ||
		db.Employees == nil || db.AuditLog == nil || db.GlobalExpenses == nil {
		t.Errorf("empty shape must have all collections non-nil: %+v", db)
	}
	if len(db.Shops) != 0 || len(db.Inventory) != 0 {
		t.Errorf("empty shape must be empty: %+v", db)
	}
}

func TestBackupRotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "db.json")
	retention := 3
	fileStore := NewFileStore(path, retention)

	// First write has nothing to back up.
	if err := fileStore.Write(testDB("v1")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if _, err := os.Stat(path + ".bak.1"); !os.IsNotExist(err) {
		t.Error("first write must not create a backup")
	}

	// Write v2..v6; each write backs up the previous version.
	for v := 2; v <= 6; v++ {
		if err := fileStore.Write(testDB(fmt.Sprintf("v%d", v))); err != nil {
			t.Fatalf("write v%d: %v", v, err)
		}
	}

	t.Run("RetentionBound", func(t *testing.T) {
		for slot := 1; slot <= retention; slot++ {
			if _, err := os.Stat(fmt.Sprintf("%s.bak.%d", path, slot)); err != nil {
				t.Errorf("backup slot %d missing: %v", slot, err)
			}
		}
		if _, err := os.Stat(fmt.Sprintf("%s.bak.%d", path, retention+1)); !os.IsNotExist(err) {
			t.Errorf("slot %d must be evicted", retention+1)
		}
	})

	t.Run("SlotOneIsPriorState", func(t *testing.T) {
		// After writing v6, slot 1 holds v5, slot 2 holds v4, slot 3 holds v3.
		for slot := 1; slot <= retention; slot++ {
			data, err := os.ReadFile(fmt.Sprintf("%s.bak.%d", path, slot))
			if err != nil {
				t.Fatalf("read slot %d: %v", slot, err)
			}
			var db Database
			if err := json.Unmarshal(data, &db); err != nil {
				t.Fatalf("decode slot %d: %v", slot, err)
			}
			want := fmt.Sprintf("v%d", 6-slot)
			if got := db.Shops[0].Name; got != want {
				t.Errorf("slot %d: got %s, want %s", slot, got, want)
			}
		}
	})

	t.Run("NoTempFileLeftBehind", func(t *testing.T) {
		if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
			t.Error("temp file must not survive a successful write")
		}
	})

	t.Log("✅ Backup ring holds exactly the newest N prior versions")
}

func TestWriteAbortsWhenRotationFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "db.json")
	fileStore := NewFileStore(path, 3)

	if err := fileStore.Write(testDB("v1")); err != nil {
		t.Fatalf("seed write: %v", err)
	}

	// A non-empty directory squatting on the oldest slot makes the eviction
	// step of the rotation fail.
	squatter := path + ".bak.3"
	if err := os.Mkdir(squatter, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(squatter, "occupied"), []byte("x"), 0664); err != nil {
		t.Fatal(err)
	}

	if err := fileStore.Write(testDB("v2")); err == nil {
		t.Fatal("write must abort when the backup cannot be taken")
	}

	// Canonical file is untouched.
	db, err := fileStore.Read()
	if err != nil {
		t.Fatal(err)
	}
	if db.Shops[0].Name != "v1" {
		t.Errorf("canonical file changed despite aborted write: %s", db.Shops[0].Name)
	}

	t.Log("✅ Failed rotation aborts the write and preserves the canonical file")
}

func TestListAndRestoreBackups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "db.json")
	fileStore := NewFileStore(path, 5)

	for _, v := range []string{"v1", "v2", "v3"} {
		if err := fileStore.Write(testDB(v)); err != nil {
			t.Fatalf("write %s: %v", v, err)
		}
	}

	backups, err := fileStore.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups: %v", err)
	}
	if len(backups) != 2 {
		t.Fatalf("expected 2 backups after 3 writes, got %d", len(backups))
	}

	if err := fileStore.RestoreBackup("db.json.bak.2"); err != nil {
		t.Fatalf("RestoreBackup: %v", err)
	}
	db, err := fileStore.Read()
	if err != nil {
		t.Fatal(err)
	}
	if db.Shops[0].Name != "v1" {
		t.Errorf("restore brought back %s, want v1", db.Shops[0].Name)
	}

	t.Run("RejectsForeignPaths", func(t *testing.T) {
		if err := fileStore.RestoreBackup("../elsewhere.json"); err == nil {
			t.Error("restore must reject names outside the data directory")
		}
		if err := fileStore.RestoreBackup("other.json.bak.1"); err == nil {
			t.Error("restore must reject backups of other files")
		}
	})

	t.Log("✅ Backups list newest first and restore cleanly")
}

func TestExpenseMapOrderPreserved(t *testing.T) {
	m := ExpenseMap{}
	m.Set("Warehouse Rent", 1000)
	m.Set("Fuel", 300)
	m.Set("Accounting", 150)
	m.Set("Fuel", 350) // update must not reorder

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"Warehouse Rent":1000,"Fuel":350,"Accounting":150}`
	if string(data) != want {
		t.Errorf("marshal order wrong:\n got %s\nwant %s", data, want)
	}

	var back ExpenseMap
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if len(back) != 3 || back[0].Category != "Warehouse Rent" || back[1].Category != "Fuel" || back[2].Category != "Accounting" {
		t.Errorf("unmarshal lost the order: %+v", back)
	}
	if back.Total() != 1500 {
		t.Errorf("total mismatch: %v", back.Total())
	}

	t.Run("NullDecodesEmpty", func(t *testing.T) {
		var m ExpenseMap
		if err := json.Unmarshal([]byte("null"), &m); err != nil {
			t.Fatalf("null must decode: %v", err)
		}
		if m == nil || len(m) != 0 {
			t.Errorf("null must decode as empty non-nil map: %+v", m)
		}
	})

	t.Log("✅ Expense map keeps insertion order through JSON")
}

func TestMemStoreIsolation(t *testing.T) {
	mem := NewMemStore()

	db, err := mem.Read()
	if err != nil {
		t.Fatal(err)
	}
	db.Shops = append(db.Shops, Shop{ID: "s1", Name: "Kipasa"})
	if err := mem.Write(db); err != nil {
		t.Fatal(err)
	}

	// Mutating the handed-back copy must not affect stored state.
	again, err := mem.Read()
	if err != nil {
		t.Fatal(err)
	}
	again.Shops[0].Name = "mutated"

	fresh, err := mem.Read()
	if err != nil {
		t.Fatal(err)
	}
	if fresh.Shops[0].Name != "Kipasa" {
		t.Error("MemStore leaked mutable state between reads")
	}
	if mem.Writes() != 1 {
		t.Errorf("expected 1 counted write, got %d", mem.Writes())
	}
}
