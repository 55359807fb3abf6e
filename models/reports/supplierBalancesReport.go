package reports

import (
	"context"

	"github.com/shopspring/decimal"

	"bitbucket.org/mmdatafocus/coldstore_backend/config"
	"bitbucket.org/mmdatafocus/coldstore_backend/utils"
)

type SupplierBalancesResponse struct {
	SupplierId       int             `json:"supplierId"`
	SupplierName     string          `json:"supplierName"`
	TotalOwed        decimal.Decimal `json:"totalOwed"`
	TotalPaid        decimal.Decimal `json:"totalPaid"`
	Outstanding      decimal.Decimal `json:"outstanding"`
	OpenTransactions int             `json:"openTransactions"`
}

// GetSupplierBalancesReport lists every supplier with what we owe them, what
// we have paid, and how many credit transactions are still open. Display
// outstanding is floored at zero; overpayments show as zero here and are
// surfaced on the per-supplier detail page instead.
func GetSupplierBalancesReport(ctx context.Context) ([]*SupplierBalancesResponse, error) {
	sql := `
SELECT
    sup.id AS supplier_id,
    sup.name AS supplier_name,
    COALESCE(owed.total_owed, 0) AS total_owed,
    COALESCE(paid.total_paid, 0) AS total_paid,
    COALESCE(owed.open_transactions, 0) AS open_transactions
FROM
    suppliers AS sup
        LEFT JOIN
    (SELECT
        supplier_id,
        SUM(amount_owed) AS total_owed,
        SUM(CASE WHEN is_fully_paid = 0 THEN 1 ELSE 0 END) AS open_transactions
    FROM supplier_credit_transactions
    GROUP BY supplier_id) AS owed ON owed.supplier_id = sup.id
        LEFT JOIN
    (SELECT
        supplier_id,
        SUM(payment_amount) AS total_paid
    FROM supplier_payments
    GROUP BY supplier_id) AS paid ON paid.supplier_id = sup.id
ORDER BY sup.name;
`
	var records []*SupplierBalancesResponse
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql).Scan(&records).Error; err != nil {
		return nil, err
	}

	for _, r := range records {
		r.Outstanding = utils.FloorZero(r.TotalOwed.Sub(r.TotalPaid))
	}

	return records, nil
}
