// internal/store/store.go
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/Ashtonex/nirvana/internal/logger"
)

// DefaultBackupRetention is the number of point-in-time backups kept next to
// the canonical file.
const DefaultBackupRetention = 5

// Store is the persistence port for the Database aggregate. Engine operations
// depend on this interface so tests can substitute an in-memory fake.
type Store interface {
	Read() (*Database, error)
	Write(*Database) error
}

// FileStore persists the Database as one JSON document on disk. Writes rotate
// a bounded ring of numbered backups (<path>.bak.1 is newest) and then replace
// the canonical file via a temp-file-then-rename so a crash mid-write can
// never leave a half-written document.
type FileStore struct {
	path      string
	retention int
}

// NewFileStore opens a store at path. retention <= 0 selects the default.
func NewFileStore(path string, retention int) *FileStore {
	if retention <= 0 {
		retention = DefaultBackupRetention
	}
	return &FileStore{path: path, retention: retention}
}

// Path returns the canonical file path.
func (s *FileStore) Path() string {
	return s.path
}

// Read loads the document. A missing or corrupt file yields the empty shape
// rather than an error so the caller never starts from a nil document.
func (s *FileStore) Read() (*Database, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.LogWarn("Data file %s not found, starting from empty database", s.path)
			return NewDatabase(), nil
		}
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	db := NewDatabase()
	if err := json.Unmarshal(data, db); err != nil {
		logger.LogWarn("Data file %s is corrupt (%v), starting from empty database", s.path, err)
		return NewDatabase(), nil
	}

	db.normalize()
	return db, nil
}

// Write rotates backups and atomically replaces the canonical file. If
// rotation fails for any reason other than "no prior file exists" the write
// is aborted: a write we cannot prove was backed up is not safe to proceed
// from.
func (s *FileStore) Write(db *Database) error {
	if err := s.rotateBackups(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("backup rotation for %s: %w", s.path, err)
	}

	data, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding database: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0664); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}

	return nil
}

// rotateBackups shifts each numbered backup up one slot, evicting the oldest,
// and copies the current canonical content into slot 1. Returns fs.ErrNotExist
// untouched when there is no canonical file yet (first ever write).
func (s *FileStore) rotateBackups() error {
	current, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}

	if err := os.Remove(s.backupPath(s.retention)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	for i := s.retention - 1; i >= 1; i-- {
		src := s.backupPath(i)
		if _, err := os.Stat(src); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
		if err := os.Rename(src, s.backupPath(i+1)); err != nil {
			return err
		}
	}

	return os.WriteFile(s.backupPath(1), current, 0664)
}

func (s *FileStore) backupPath(slot int) string {
	return fmt.Sprintf("%s.bak.%d", s.path, slot)
}

// normalize repairs nil collections in documents written by older versions so
// the non-nil guarantee of NewDatabase holds after every read.
func (db *Database) normalize() {
	if db.Shops == nil {
		db.Shops = []Shop{}
	}
	if db.GlobalExpenses == nil {
		db.GlobalExpenses = ExpenseMap{}
	}
	if db.Inventory == nil {
		db.Inventory = []InventoryItem{}
	}
	if db.Shipments == nil {
		db.Shipments = []Shipment{}
	}
	if db.Sales == nil {
		db.Sales = []Sale{}
	}
	if db.Transfers == nil {
		db.Transfers = []Transfer{}
	}
	if db.Quotations == nil {
		db.Quotations = []Quotation{}
	}
	if db.Ledger == nil {
		db.Ledger = []FinancialEntry{}
	}
	if db.Employees == nil {
		db.Employees = []Employee{}
	}
	if db.AuditLog == nil {
		db.AuditLog = []AuditEntry{}
	}
}

// MemStore is an in-memory Store used by tests. It serializes through JSON on
// every round trip so tests exercise the same encoding path as the file store
// and never share mutable state with the engine.
type MemStore struct {
	data   []byte
	writes int
}

func NewMemStore() *MemStore {
	return &MemStore{}
}

func (s *MemStore) Read() (*Database, error) {
	if s.data == nil {
		return NewDatabase(), nil
	}
	db := NewDatabase()
	if err := json.Unmarshal(s.data, db); err != nil {
		return nil, err
	}
	db.normalize()
	return db, nil
}

func (s *MemStore) Write(db *Database) error {
	data, err := json.Marshal(db)
	if err != nil {
		return err
	}
	s.data = data
	s.writes++
	return nil
}

// Writes reports how many times Write succeeded.
func (s *MemStore) Writes() int {
	return s.writes
}

// Seed writes db without counting it as an operation write.
func (s *MemStore) Seed(db *Database) error {
	if err := s.Write(db); err != nil {
		return err
	}
	s.writes--
	return nil
}
