// seed-admin creates or updates the shop's operator account.
//
// Usage:
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... \
//	  go run ./cmd/seed-admin -username=owner -name="Shop Owner" -password=...
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"bitbucket.org/mmdatafocus/coldstore_backend/config"
	"bitbucket.org/mmdatafocus/coldstore_backend/models"
	"bitbucket.org/mmdatafocus/coldstore_backend/utils"
)

func main() {
	username := flag.String("username", "admin", "Login username")
	name := flag.String("name", "Administrator", "Display name")
	password := flag.String("password", "", "Required: login password")
	flag.Parse()

	if strings.TrimSpace(*password) == "" {
		fmt.Fprintln(os.Stderr, "--password is required")
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	if err := db.AutoMigrate(&models.Admin{}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to migrate admins table: %v\n", err)
		os.Exit(1)
	}

	hashed, err := utils.HashPassword(*password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}

	admin, err := models.UpsertAdmin(context.Background(), *username, *name, string(hashed))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to upsert admin: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("admin ready: id=%d username=%s\n", admin.ID, admin.Username)
}
