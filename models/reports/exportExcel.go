package reports

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Sheet1"

// ExportProfitByProductExcel streams the profit-by-product report for the
// given date range as an xlsx attachment.
func ExportProfitByProductExcel(ctx context.Context, w http.ResponseWriter, fromDate time.Time, toDate time.Time) error {
	data, err := GetProfitByProductReport(ctx, fromDate, toDate)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	if _, err := f.NewSheet(exportSheet); err != nil {
		return err
	}

	f.SetCellValue(exportSheet, "A1", "ProductName")
	f.SetCellValue(exportSheet, "B1", "SoldQtyLines")
	f.SetCellValue(exportSheet, "C1", "SaleCount")
	f.SetCellValue(exportSheet, "D1", "Revenue")
	f.SetCellValue(exportSheet, "E1", "Profit")

	for i, d := range data {
		row := fmt.Sprint(i + 2)
		f.SetCellValue(exportSheet, "A"+row, d.ProductName)
		f.SetCellValue(exportSheet, "B"+row, d.SoldQtyLines)
		f.SetCellValue(exportSheet, "C"+row, d.SaleCount)
		f.SetCellValue(exportSheet, "D"+row, d.TotalRevenue.String())
		f.SetCellValue(exportSheet, "E"+row, d.TotalProfit.String())
	}

	return writeAttachment(w, f, fmt.Sprintf("profit-by-product-%s.xlsx", fromDate.Format("2006-01-02")))
}

// ExportStockSummaryExcel streams the current on-hand stock per product.
func ExportStockSummaryExcel(ctx context.Context, w http.ResponseWriter) error {
	data, err := GetStockSummaryReport(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	if _, err := f.NewSheet(exportSheet); err != nil {
		return err
	}

	f.SetCellValue(exportSheet, "A1", "ProductName")
	f.SetCellValue(exportSheet, "B1", "Sku")
	f.SetCellValue(exportSheet, "C1", "OnHand")
	f.SetCellValue(exportSheet, "D1", "OnHandLines")

	for i, d := range data {
		row := fmt.Sprint(i + 2)
		f.SetCellValue(exportSheet, "A"+row, d.ProductName)
		f.SetCellValue(exportSheet, "B"+row, d.Sku)
		f.SetCellValue(exportSheet, "C"+row, d.OnHandDisplay)
		f.SetCellValue(exportSheet, "D"+row, d.OnHandLines)
	}

	return writeAttachment(w, f, "stock-summary.xlsx")
}

func writeAttachment(w http.ResponseWriter, f *excelize.File, filename string) error {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	return f.Write(w)
}
