// recalc-credit-status rebuilds the denormalized is_fully_paid flag on every
// supplier credit transaction from the payment rows. Run it after manual DB
// surgery or when the flag is suspected stale.
//
// Usage:
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... \
//	  go run ./cmd/recalc-credit-status
package main

import (
	"context"
	"fmt"
	"os"

	"bitbucket.org/mmdatafocus/coldstore_backend/config"
	"bitbucket.org/mmdatafocus/coldstore_backend/workflow"
)

func main() {
	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	// Redis is optional here; without it the run is unguarded but still safe
	// against itself (per-row updates are idempotent).
	config.ConnectRedisWithRetry()

	changed, err := workflow.RecalculateAllCreditStatuses(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "recalc failed after %d changes: %v\n", changed, err)
		os.Exit(1)
	}
	fmt.Printf("done: %d transaction(s) changed status\n", changed)
}
