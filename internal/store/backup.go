// internal/store/backup.go
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Ashtonex/nirvana/internal/logger"
)

// BackupInfo describes one backup sibling of the canonical data file.
type BackupInfo struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// ListBackups returns the numbered backup files next to the canonical file,
// newest first.
func (s *FileStore) ListBackups() ([]BackupInfo, error) {
	dir := filepath.Dir(s.path)
	base := filepath.Base(s.path)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing backups in %s: %w", dir, err)
	}

	var backups []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), base+".bak") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}
		backups = append(backups, BackupInfo{
			Name:    entry.Name(),
			Path:    filepath.Join(dir, entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].ModTime.After(backups[j].ModTime)
	})
	return backups, nil
}

// ReadBackup returns the raw content of one named backup for download.
func (s *FileStore) ReadBackup(name string) ([]byte, error) {
	if err := s.validBackupName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(filepath.Dir(s.path), name))
	if err != nil {
		return nil, fmt.Errorf("reading backup %s: %w", name, err)
	}
	return data, nil
}

// RestoreBackup copies a chosen backup over the canonical file. The current
// canonical content is first saved to a safety sibling so a mistaken restore
// can itself be undone by hand.
func (s *FileStore) RestoreBackup(name string) error {
	if err := s.validBackupName(name); err != nil {
		return err
	}

	backupPath := filepath.Join(filepath.Dir(s.path), name)
	content, err := os.ReadFile(backupPath)
	if err != nil {
		return fmt.Errorf("reading backup %s: %w", name, err)
	}

	if current, err := os.ReadFile(s.path); err == nil {
		if err := os.WriteFile(s.path+".safety_restore_bak", current, 0664); err != nil {
			return fmt.Errorf("safety backup before restore: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, content, 0664); err != nil {
		return fmt.Errorf("staging restore: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("restoring %s: %w", name, err)
	}

	logger.LogInfo("Restored %s from backup %s", s.path, name)
	return nil
}

// validBackupName rejects anything that is not a direct backup sibling, so a
// caller-supplied name can never reach outside the data directory.
func (s *FileStore) validBackupName(name string) error {
	base := filepath.Base(s.path)
	if name != filepath.Base(name) || !strings.HasPrefix(name, base+".bak") {
		return fmt.Errorf("invalid backup selection: %s", name)
	}
	return nil
}
