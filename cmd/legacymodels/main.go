package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"

	"github.com/skipperbent/pecee-legacy-models/pkg/legacymodels"
	"github.com/skipperbent/pecee-legacy-models/pkg/legacymodels/domain"
)

// Bootstraps the database: runs migrations and makes sure an initial admin
// account exists. The generated admin password is logged once.
func main() {
	legacymodels.SetupLogger()

	registry, err := legacymodels.Open()
	if err != nil {
		slog.Error("Startup failed", "error", err)
		os.Exit(1)
	}
	defer registry.DB.Close()

	if err := ensureAdminUser(registry); err != nil {
		slog.Error("Admin bootstrap failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Database ready")
}

func ensureAdminUser(registry *legacymodels.Registry) error {
	existing, err := registry.Users.GetByUsername("admin")
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return err
	}
	password := hex.EncodeToString(buf)

	user := domain.NewUser("admin")
	user.AdminLevel = 1
	if err := user.SetPassword(password); err != nil {
		return err
	}
	if err := registry.Users.Create(user); err != nil {
		return err
	}

	slog.Info("Created initial admin user", "username", "admin")
	// shown once on stdout so the password never lands in shipped logs
	fmt.Printf("Initial admin password: %s\n", password)
	return nil
}
