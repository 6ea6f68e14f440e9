// internal/config/config_test.go
package config

import (
	"path/filepath"
	"testing"
)

func TestGetEnvBasedSetting(t *testing.T) {
	t.Setenv("DATA_DIRECTORY_DEV", "/tmp/dev-data")
	t.Setenv("DATA_DIRECTORY_PROD", "/srv/prod-data")

	t.Run("DefaultsToDev", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "")
		if got := GetEnvBasedSetting("DATA_DIRECTORY"); got != "/tmp/dev-data" {
			t.Errorf("expected dev value, got %q", got)
		}
	})

	t.Run("ProdSelectsProd", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "prod")
		if got := GetEnvBasedSetting("DATA_DIRECTORY"); got != "/srv/prod-data" {
			t.Errorf("expected prod value, got %q", got)
		}
	})
}

func TestConfigurePathsDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "dev")
	t.Setenv("DATA_DIRECTORY_DEV", "")
	t.Setenv("LOGS_DIRECTORY_DEV", "")
	t.Setenv("DATA_FILE_DEV", "")
	t.Setenv("BACKUP_RETENTION", "")

	ConfigurePaths()

	if filepath.Base(DataFilePath()) != "db.json" {
		t.Errorf("default data file should be db.json, got %s", DataFilePath())
	}
	if DataDirectory() == "" || LogsDirectory() == "" {
		t.Error("directories must have defaults")
	}
	if BackupRetention() != 0 {
		t.Errorf("unset retention should defer to the store default, got %d", BackupRetention())
	}
}

func TestConfigurePathsOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ENVIRONMENT", "dev")
	t.Setenv("DATA_DIRECTORY_DEV", dir)
	t.Setenv("DATA_FILE_DEV", "inventory.json")
	t.Setenv("BACKUP_RETENTION", "9")

	ConfigurePaths()

	want := filepath.Join(dir, "inventory.json")
	if DataFilePath() != want {
		t.Errorf("data file path: got %s, want %s", DataFilePath(), want)
	}
	if BackupRetention() != 9 {
		t.Errorf("retention: got %d, want 9", BackupRetention())
	}

	t.Run("InvalidRetentionFallsBack", func(t *testing.T) {
		t.Setenv("BACKUP_RETENTION", "banana")
		ConfigurePaths()
		if BackupRetention() != 0 {
			t.Errorf("invalid retention should defer to the store default, got %d", BackupRetention())
		}
	})
}
