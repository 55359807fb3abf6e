package reports

import (
	"context"

	"bitbucket.org/mmdatafocus/coldstore_backend/config"
	"bitbucket.org/mmdatafocus/coldstore_backend/models"
)

type StockSummaryResponse struct {
	ProductId      int    `json:"productId"`
	ProductName    string `json:"productName"`
	Sku            string `json:"sku"`
	LinesPerCarton int    `json:"linesPerCarton"`
	OnHandLines    int    `json:"onHandLines"`
	OnHandDisplay  string `json:"onHandDisplay"`
}

// GetStockSummaryReport sums the signed movement ledger per active product.
// OnHandDisplay renders the line total in the product's carton notation.
func GetStockSummaryReport(ctx context.Context) ([]*StockSummaryResponse, error) {
	sql := `
SELECT
    p.id AS product_id,
    p.name AS product_name,
    p.sku,
    p.lines_per_carton,
    COALESCE(SUM(CASE
        WHEN sm.type IN ('received', 'adjustment_in') THEN sm.qty
        ELSE -sm.qty
    END), 0) AS on_hand_lines
FROM
    products AS p
        LEFT JOIN
    stock_movements AS sm ON sm.product_id = p.id
WHERE
    p.is_active = 1
GROUP BY p.id, p.name, p.sku, p.lines_per_carton
ORDER BY p.name;
`
	var records []*StockSummaryResponse
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql).Scan(&records).Error; err != nil {
		return nil, err
	}

	for _, r := range records {
		r.OnHandDisplay = models.FormatQuantity(r.OnHandLines, r.LinesPerCarton)
	}

	return records, nil
}
