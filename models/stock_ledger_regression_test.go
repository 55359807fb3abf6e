package models_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bitbucket.org/mmdatafocus/coldstore_backend/config"
	"bitbucket.org/mmdatafocus/coldstore_backend/models"
	"bitbucket.org/mmdatafocus/coldstore_backend/utils"
	"bitbucket.org/mmdatafocus/coldstore_backend/workflow"
)

// End-to-end flow over a real MySQL: receive stock, sell on credit, block the
// oversell, reconcile a count, and settle the supplier credit.
func TestStockAndCreditFlow(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "coldstore_test")

	config.ConnectDatabaseWithRetry()
	models.MigrateTable()

	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetUserNameInContext(ctx, "Test")

	product, err := models.CreateProduct(ctx, &models.NewProduct{
		Name:                  "Frozen Chicken",
		LinesPerCarton:        10,
		CostPricePerCarton:    decimal.NewNullDecimal(decimal.NewFromInt(100)),
		SellingPricePerCarton: decimal.NewNullDecimal(decimal.NewFromInt(150)),
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}

	supplier, err := models.CreateSupplier(ctx, &models.NewSupplier{Name: "Cold Chain Ltd"})
	if err != nil {
		t.Fatalf("CreateSupplier: %v", err)
	}
	customer, err := models.CreateCustomer(ctx, &models.NewCustomer{Name: "Daw Mya"})
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}

	day := models.StartOfDay(time.Now())

	// Receive 2C5L = 25 lines.
	qty, err := models.ParseQuantity("2C5L", product.LinesPerCarton)
	if err != nil {
		t.Fatalf("ParseQuantity: %v", err)
	}
	receivedAt := day.Add(8 * time.Hour)
	_, err = models.RecordStockMovement(ctx, &models.NewStockMovement{
		ProductId:    product.ID,
		Type:         models.StockMovementTypeReceived,
		Qty:          qty,
		MovementDate: &receivedAt,
		SupplierId:   &supplier.ID,
	})
	if err != nil {
		t.Fatalf("RecordStockMovement: %v", err)
	}

	// Credit sale of 10 lines.
	due := day.AddDate(0, 0, 14)
	soldAt := day.Add(10 * time.Hour)
	sale, err := models.CreateSale(ctx, &models.NewSale{
		CustomerId:  &customer.ID,
		PaymentType: models.PaymentTypeCredit,
		SaleDate:    &soldAt,
		DueDate:     &due,
		Items: []models.NewSaleItem{
			{ProductId: product.ID, Quantity: "1C", UnitSellingPricePerCarton: decimal.NewFromInt(150)},
		},
	})
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}
	if got := sale.TotalProfit.StringFixed(2); got != "50.00" {
		t.Errorf("sale profit = %s, want 50.00", got)
	}

	onHand, err := models.CurrentStock(ctx, product.ID)
	if err != nil {
		t.Fatalf("CurrentStock: %v", err)
	}
	if onHand != 15 {
		t.Errorf("on hand = %d lines, want 15", onHand)
	}

	// The sale's ledger entry is owned by the sale; it only goes away with
	// DeleteSale.
	var soldMovement models.StockMovement
	if err := config.GetDB().Where("sale_id = ?", sale.ID).First(&soldMovement).Error; err != nil {
		t.Fatalf("fetch sold movement: %v", err)
	}
	if err := models.DeleteStockMovement(ctx, soldMovement.ID); !utils.IsValidationError(err) {
		t.Fatalf("deleting sale-owned movement: got %v, want validation error", err)
	}
	if onHand, _ := models.CurrentStock(ctx, product.ID); onHand != 15 {
		t.Errorf("on hand after refused delete = %d, want 15", onHand)
	}

	// Oversell must be rejected before anything is written.
	oversoldAt := day.Add(11 * time.Hour)
	_, err = models.CreateSale(ctx, &models.NewSale{
		CustomerId:  &customer.ID,
		PaymentType: models.PaymentTypeCredit,
		SaleDate:    &oversoldAt,
		DueDate:     &due,
		Items: []models.NewSaleItem{
			{ProductId: product.ID, Quantity: "2C", UnitSellingPricePerCarton: decimal.NewFromInt(150)},
		},
	})
	if !utils.IsConstraintViolation(err) {
		t.Fatalf("oversell: got %v, want constraint violation", err)
	}
	if onHand, _ := models.CurrentStock(ctx, product.ID); onHand != 15 {
		t.Errorf("on hand after rejected sale = %d, want 15", onHand)
	}

	// A physical count finds only 1 carton available at start of day; the
	// reconciliation closes the gap with one adjustment.
	target := "1C"
	adjustments, err := workflow.ApplyStockReconciliation(ctx, &workflow.StockReconciliationInput{
		ProductId:            product.ID,
		Date:                 day.AddDate(0, 0, 1),
		AvailableStockTarget: &target,
		Notes:                "morning count",
	})
	if err != nil {
		t.Fatalf("ApplyStockReconciliation: %v", err)
	}
	if len(adjustments) != 1 {
		t.Fatalf("adjustments = %d, want 1", len(adjustments))
	}
	if adjustments[0].Type != models.StockMovementTypeAdjustmentOut || adjustments[0].Qty != 5 {
		t.Errorf("adjustment = %s/%d, want adjustment_out/5", adjustments[0].Type, adjustments[0].Qty)
	}

	// Recounts of the same product must serialize on the posting lock and
	// leave it free once their transactions commit.
	recount := "1C"
	recountErrs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range recountErrs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, recountErrs[i] = workflow.ApplyStockReconciliation(ctx, &workflow.StockReconciliationInput{
				ProductId:            product.ID,
				Date:                 day.AddDate(0, 0, 1),
				AvailableStockTarget: &recount,
				Notes:                "recount",
			})
		}(i)
	}
	wg.Wait()
	for i, err := range recountErrs {
		if err != nil {
			t.Fatalf("concurrent reconciliation %d: %v", i, err)
		}
	}
	if onHand, _ := models.StockAsOf(ctx, product.ID, day.AddDate(0, 0, 2)); onHand != 10 {
		t.Errorf("on hand after recounts = %d, want 10", onHand)
	}

	// Supplier credit purchase and full settlement.
	credit, err := models.CreateSupplierCreditTransaction(ctx, &models.NewSupplierCreditTransaction{
		SupplierId:      supplier.ID,
		TransactionDate: day,
		Items: []models.NewSupplierCreditItem{
			{ProductId: product.ID, Quantity: "2C5L", UnitPricePerCarton: decimal.NewFromInt(100)},
		},
	})
	if err != nil {
		t.Fatalf("CreateSupplierCreditTransaction: %v", err)
	}
	if got := credit.AmountOwed.StringFixed(2); got != "250.00" {
		t.Errorf("amount owed = %s, want 250.00", got)
	}

	_, err = models.CreateSupplierPayment(ctx, &models.NewSupplierPayment{
		SupplierId:                  supplier.ID,
		SupplierCreditTransactionId: &credit.ID,
		PaymentAmount:               decimal.NewFromInt(250),
		PaymentDate:                 day.AddDate(0, 0, 2),
	})
	if err != nil {
		t.Fatalf("CreateSupplierPayment: %v", err)
	}
	settled, err := models.GetSupplierCreditTransaction(ctx, credit.ID)
	if err != nil {
		t.Fatalf("GetSupplierCreditTransaction: %v", err)
	}
	if settled.Status() != models.CreditStatusPaid {
		t.Errorf("status = %s, want paid", settled.Status())
	}
	outstanding, err := models.SupplierOutstandingBalance(ctx, supplier.ID)
	if err != nil {
		t.Fatalf("SupplierOutstandingBalance: %v", err)
	}
	if !outstanding.IsZero() {
		t.Errorf("supplier outstanding = %s, want 0", outstanding)
	}

	// Statuses were already refreshed inside the payment transaction, so a
	// batch recalculation converges: a second run changes nothing.
	if _, err := workflow.RecalculateAllCreditStatuses(ctx); err != nil {
		t.Fatalf("RecalculateAllCreditStatuses: %v", err)
	}
	changed, err := workflow.RecalculateAllCreditStatuses(ctx)
	if err != nil {
		t.Fatalf("RecalculateAllCreditStatuses: %v", err)
	}
	if changed != 0 {
		t.Errorf("second recalculation changed %d statuses, want 0", changed)
	}
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("coldstore-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=coldstore_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
