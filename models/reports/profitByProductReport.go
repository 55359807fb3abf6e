package reports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"bitbucket.org/mmdatafocus/coldstore_backend/config"
)

type ProfitByProductResponse struct {
	ProductName  string          `json:"productName"`
	SoldQtyLines int             `json:"soldQtyLines"`
	SaleCount    int             `json:"saleCount"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	TotalProfit  decimal.Decimal `json:"totalProfit"`
}

// GetProfitByProductReport aggregates sale line snapshots per product name for
// the given date range. Snapshots are grouped by name rather than product id so
// renamed or deleted products keep their historical rows intact.
func GetProfitByProductReport(ctx context.Context, fromDate time.Time, toDate time.Time) ([]*ProfitByProductResponse, error) {
	sql := `
SELECT
    si.product_name,
    SUM(si.qty_lines) AS sold_qty_lines,
    COUNT(DISTINCT s.id) AS sale_count,
    SUM(si.total) AS total_revenue,
    SUM(si.profit) AS total_profit
FROM
    sale_items AS si
        JOIN
    sales AS s ON s.id = si.sale_id
WHERE
    s.sale_date >= @fromDate AND s.sale_date < @toDate
GROUP BY si.product_name
ORDER BY total_profit DESC;
`
	var records []*ProfitByProductResponse
	db := config.GetDB()
	err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"fromDate": fromDate,
		"toDate":   toDate,
	}).Scan(&records).Error
	if err != nil {
		return nil, err
	}

	return records, nil
}
