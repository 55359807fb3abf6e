// stock-negative-debug prints the movement ledger running balance for one
// product so you can see exactly which row drives stock negative. Without
// -product-id it scans all products and reports the ones whose timeline ever
// dips below zero.
//
// Example:
//
//	go run ./cmd/stock-negative-debug -product-id=137
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"bitbucket.org/mmdatafocus/coldstore_backend/config"
)

type ledgerRow struct {
	ID           int
	MovementDate time.Time
	Type         string
	Qty          int
	SignedQty    int
	RunningQty   int
	Notes        string
}

const ledgerSQL = `
SELECT
  id,
  movement_date,
  type,
  qty,
  CASE WHEN type IN ('received', 'adjustment_in') THEN qty ELSE -qty END AS signed_qty,
  SUM(CASE WHEN type IN ('received', 'adjustment_in') THEN qty ELSE -qty END) OVER (
    ORDER BY movement_date, id
    ROWS BETWEEN UNBOUNDED PRECEDING AND CURRENT ROW
  ) AS running_qty,
  notes
FROM stock_movements
WHERE product_id = ?
ORDER BY movement_date, id
`

func main() {
	productID := flag.Int("product-id", 0, "Product id to dump; 0 scans all products")
	negativeOnly := flag.Bool("negative-only", false, "Print only rows where the running balance is negative")
	flag.Parse()

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}

	if *productID > 0 {
		var name string
		_ = db.Raw("SELECT name FROM products WHERE id = ? LIMIT 1", *productID).Scan(&name).Error
		fmt.Printf("product_id=%d name=%q\n", *productID, name)

		var rows []ledgerRow
		if err := db.Raw(ledgerSQL, *productID).Scan(&rows).Error; err != nil {
			fmt.Fprintf(os.Stderr, "query failed: %v\n", err)
			os.Exit(1)
		}
		dipped := false
		for _, r := range rows {
			if *negativeOnly && r.RunningQty >= 0 {
				continue
			}
			marker := ""
			if r.RunningQty < 0 {
				marker = "  <-- NEGATIVE"
				dipped = true
			}
			fmt.Printf("%s id=%-6d %-14s qty=%-6d signed=%-6d running=%-6d %s%s\n",
				r.MovementDate.Format("2006-01-02 15:04:05"), r.ID, r.Type, r.Qty, r.SignedQty, r.RunningQty, r.Notes, marker)
		}
		if !dipped {
			fmt.Println("running balance never goes negative")
		}
		return
	}

	// Scan mode: one line per product whose timeline ever dips negative.
	type dipRow struct {
		ProductId  int
		Name       string
		MinRunning int
	}
	sql := `
SELECT product_id, name, MIN(running_qty) AS min_running
FROM (
    SELECT
      sm.product_id,
      p.name,
      SUM(CASE WHEN sm.type IN ('received', 'adjustment_in') THEN sm.qty ELSE -sm.qty END) OVER (
        PARTITION BY sm.product_id
        ORDER BY sm.movement_date, sm.id
        ROWS BETWEEN UNBOUNDED PRECEDING AND CURRENT ROW
      ) AS running_qty
    FROM stock_movements AS sm
    JOIN products AS p ON p.id = sm.product_id
) AS t
GROUP BY product_id, name
HAVING MIN(running_qty) < 0
ORDER BY min_running
`
	var dips []dipRow
	if err := db.Raw(sql).Scan(&dips).Error; err != nil {
		fmt.Fprintf(os.Stderr, "scan failed: %v\n", err)
		os.Exit(1)
	}
	if len(dips) == 0 {
		fmt.Println("no product ever goes negative")
		return
	}
	for _, d := range dips {
		fmt.Printf("product_id=%-6d min_running=%-6d name=%q\n", d.ProductId, d.MinRunning, d.Name)
	}
	fmt.Printf("%d product(s) dip negative; rerun with -product-id=N for details\n", len(dips))
}
