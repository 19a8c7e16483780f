package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/collabtrack/server/internal/config"
	"github.com/collabtrack/server/internal/database"
	"github.com/collabtrack/server/internal/handlers"
	"github.com/collabtrack/server/internal/models"
	"github.com/collabtrack/server/pkg/logger"
	"gorm.io/gorm"
)

func setupCLIEnv(t *testing.T) *gorm.DB {
	t.Helper()
	logger.SetOutput(io.Discard)

	path := filepath.Join(t.TempDir(), "collabtrack.db")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_SQLITE_PATH", path)
	t.Setenv("PREFERENCES_BACKEND", "db")
	t.Setenv("APP_ENV", "test")

	if _, err := runCommand(t, "migrate"); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	db, err := database.Connect(config.DBConfig{Driver: "sqlite", SQLitePath: path})
	if err != nil {
		t.Fatalf("failed opening database: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestUsersCommands(t *testing.T) {
	db := setupCLIEnv(t)

	user := models.User{ID: "sub-1", Email: "jane@example.com", FullName: "Jane", Role: models.UserRoleObserver}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed creating user: %v", err)
	}

	if _, err := runCommand(t, "users", "lock", "Jane@Example.com"); err != nil {
		t.Fatalf("lock failed: %v", err)
	}
	if _, err := runCommand(t, "users", "set-role", "jane@example.com", "ProjectResponsible"); err != nil {
		t.Fatalf("set-role failed: %v", err)
	}

	var reloaded models.User
	if err := db.First(&reloaded, "id = ?", "sub-1").Error; err != nil {
		t.Fatalf("failed reloading user: %v", err)
	}
	if !reloaded.IsLocked || reloaded.Role != models.UserRoleProjectResponsible {
		t.Fatalf("unexpected user state %+v", reloaded)
	}

	out, err := runCommand(t, "users", "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "jane@example.com") || !strings.Contains(out, "ProjectResponsible") || !strings.Contains(out, "yes") {
		t.Fatalf("unexpected list output:\n%s", out)
	}

	out, err = runCommand(t, "users", "list", "--json")
	if err != nil {
		t.Fatalf("list --json failed: %v", err)
	}
	var listed []models.User
	if err := json.Unmarshal([]byte(out), &listed); err != nil || len(listed) != 1 {
		t.Fatalf("expected one user as JSON, got %q (%v)", out, err)
	}

	if _, err := runCommand(t, "users", "unlock", "jane@example.com"); err != nil {
		t.Fatalf("unlock failed: %v", err)
	}
	db.First(&reloaded, "id = ?", "sub-1")
	if reloaded.IsLocked {
		t.Fatal("expected user to be unlocked")
	}
}

func TestUsersCommandErrors(t *testing.T) {
	setupCLIEnv(t)

	if _, err := runCommand(t, "users", "lock", "ghost@example.com"); err == nil || !strings.Contains(err.Error(), "no user with email ghost@example.com") {
		t.Fatalf("expected missing user error, got %v", err)
	}
	if _, err := runCommand(t, "users", "set-role", "ghost@example.com", "Superuser"); err == nil || !strings.Contains(err.Error(), "unknown role") {
		t.Fatalf("expected unknown role error, got %v", err)
	}
	if _, err := runCommand(t, "users", "lock"); err == nil {
		t.Fatal("expected argument error")
	}
}

func TestInvalidConfigurationIsRejected(t *testing.T) {
	logger.SetOutput(io.Discard)
	t.Setenv("DB_DRIVER", "mysql")

	if _, err := runCommand(t, "version"); err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	setupCLIEnv(t)

	out, err := runCommand(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if strings.TrimSpace(out) != "collabtrack "+handlers.Version {
		t.Fatalf("unexpected output %q", out)
	}

	out, err = runCommand(t, "version", "--json")
	if err != nil {
		t.Fatalf("version --json failed: %v", err)
	}
	var payload map[string]string
	if err := json.Unmarshal([]byte(out), &payload); err != nil || payload["version"] != handlers.Version {
		t.Fatalf("unexpected JSON output %q", out)
	}
}
