package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"bitbucket.org/mmdatafocus/coldstore_backend/config"
	"bitbucket.org/mmdatafocus/coldstore_backend/models"
	"bitbucket.org/mmdatafocus/coldstore_backend/models/reports"
	"bitbucket.org/mmdatafocus/coldstore_backend/utils"
	"bitbucket.org/mmdatafocus/coldstore_backend/workflow"
)

const sessionTTL = 24 * time.Hour

// respondError maps the model error kinds onto HTTP statuses. Validation
// failures are the caller's fault, constraint violations mean the requested
// change would corrupt a ledger, anything else is ours.
func respondError(c *gin.Context, err error) {
	switch {
	case err == utils.ErrorRecordNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case utils.IsValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case utils.IsConstraintViolation(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func pathId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// dateParam parses a yyyy-mm-dd query value in shop-local time.
func dateParam(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + ", want yyyy-mm-dd"})
		return nil, false
	}
	return &t, true
}

func intParam(c *gin.Context, name string) (*int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return nil, false
	}
	return &n, true
}

// --- auth ---

type loginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func loginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input loginInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}

		admin, err := models.GetAdminByUsername(c.Request.Context(), input.Username)
		if err != nil || utils.ComparePassword(admin.Password, input.Password) != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		if config.GetRedisDB() == nil {
			c.JSON(http.StatusOK, gin.H{"token": "", "name": admin.Name})
			return
		}

		token := uuid.NewString()
		session := map[string]interface{}{"admin_id": admin.ID, "username": admin.Username}
		if err := config.SetRedisObject("Token:"+token, session, sessionTTL); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token, "name": admin.Name})
	}
}

func logoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := c.Request.Header.Get("token"); token != "" {
			_ = config.RemoveRedisKey("Token:" + token)
		}
		c.Status(http.StatusNoContent)
	}
}

// --- products and stock ---

func listProductsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := models.ListActiveProducts(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

func createProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewProduct
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		product, err := models.CreateProduct(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}

func getProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		product, err := models.GetProduct(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		onHand, err := models.CurrentStock(c.Request.Context(), product.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"product":         product,
			"on_hand_lines":   onHand,
			"on_hand_display": models.FormatQuantity(onHand, product.LinesPerCarton),
		})
	}
}

func updateProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input models.NewProduct
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		product, err := models.UpdateProduct(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func deleteProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		if err := models.DeleteProduct(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func listProductMovementsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		movements, err := models.ListStockMovements(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, movements)
	}
}

func productStockHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		product, err := models.GetProduct(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		at, ok := dateParam(c, "at")
		if !ok {
			return
		}
		if at != nil {
			// End of the requested day, exclusive.
			lines, err := models.StockAsOf(c.Request.Context(), id, models.StartOfDay(*at).AddDate(0, 0, 1))
			if err != nil {
				respondError(c, err)
				return
			}
			received, err := models.ReceivedOnDate(c.Request.Context(), id, *at)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"lines":            lines,
				"display":          models.FormatQuantity(lines, product.LinesPerCarton),
				"received_lines":   received,
				"received_display": models.FormatQuantity(received, product.LinesPerCarton),
			})
			return
		}
		lines, err := models.CurrentStock(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"lines":   lines,
			"display": models.FormatQuantity(lines, product.LinesPerCarton),
		})
	}
}

func recordStockMovementHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewStockMovement
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		movement, err := models.RecordStockMovement(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, movement)
	}
}

func updateStockMovementHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input models.NewStockMovement
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		movement, err := models.UpdateStockMovement(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, movement)
	}
}

func deleteStockMovementHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		if err := models.DeleteStockMovement(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func stockReconciliationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input workflow.StockReconciliationInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		movements, err := workflow.ApplyStockReconciliation(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"adjustments": movements})
	}
}

// --- suppliers ---

func createSupplierHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewSupplier
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		supplier, err := models.CreateSupplier(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, supplier)
	}
}

func listSuppliersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		suppliers, err := utils.FetchAllModels[models.Supplier](c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, suppliers)
	}
}

func getSupplierHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		supplier, err := models.GetSupplier(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, supplier)
	}
}

func updateSupplierHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input models.NewSupplier
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		supplier, err := models.UpdateSupplier(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, supplier)
	}
}

func deleteSupplierHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		if err := models.DeleteSupplier(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func supplierBalanceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		summary, err := models.GetSupplierBalanceSummary(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

// creditLedgerRow is one event in an entity's credit history with the running
// balance before and after it.
type creditLedgerRow struct {
	RefType          string          `json:"ref_type"`
	RefId            int             `json:"ref_id"`
	OccurredAt       time.Time       `json:"occurred_at"`
	Amount           decimal.Decimal `json:"amount"`
	Reducing         bool            `json:"reducing"`
	PreviousDebt     decimal.Decimal `json:"previous_debt"`
	ResultingBalance decimal.Decimal `json:"resulting_balance"`
}

func ledgerRows(events []models.CreditEvent) []creditLedgerRow {
	rows := make([]creditLedgerRow, 0, len(events))
	running := decimal.Zero
	for _, ev := range events {
		prev := running
		running = running.Add(ev.Delta())
		rows = append(rows, creditLedgerRow{
			RefType:          ev.RefType,
			RefId:            ev.RefId,
			OccurredAt:       ev.OccurredAt,
			Amount:           ev.Amount,
			Reducing:         ev.Reducing,
			PreviousDebt:     prev,
			ResultingBalance: running,
		})
	}
	return rows
}

func supplierLedgerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		events, err := models.SupplierCreditEvents(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, ledgerRows(events))
	}
}

// --- supplier credit transactions and payments ---

func listSupplierCreditsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		supplierId, ok := intParam(c, "supplier_id")
		if !ok {
			return
		}
		openOnly := c.Query("open") == "true"
		transactions, err := models.ListSupplierCreditTransactions(c.Request.Context(), supplierId, openOnly)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, transactions)
	}
}

func createSupplierCreditHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewSupplierCreditTransaction
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		transaction, err := models.CreateSupplierCreditTransaction(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, transaction)
	}
}

func getSupplierCreditHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		transaction, err := models.GetSupplierCreditTransaction(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, transaction)
	}
}

func updateSupplierCreditHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input models.NewSupplierCreditTransaction
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		transaction, err := models.UpdateSupplierCreditTransaction(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, transaction)
	}
}

func deleteSupplierCreditHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		if err := models.DeleteSupplierCreditTransaction(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func createSupplierPaymentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewSupplierPayment
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		payment, err := models.CreateSupplierPayment(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		// Receipt context: what the supplier was owed before this payment and
		// what remains after it.
		previousDebt, err := models.SupplierPaymentPreviousDebt(c.Request.Context(), payment.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		resulting, err := models.SupplierPaymentResultingBalance(c.Request.Context(), payment.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"payment":           payment,
			"previous_debt":     previousDebt,
			"resulting_balance": resulting,
		})
	}
}

func deleteSupplierPaymentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		if err := models.DeleteSupplierPayment(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// --- customers, debts, collections ---

func createCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewCustomer
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		customer, err := models.CreateCustomer(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, customer)
	}
}

func listCustomersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		customers, err := utils.FetchAllModels[models.Customer](c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, customers)
	}
}

func getCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		customer, err := models.GetCustomer(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		outstanding, err := models.CustomerOutstandingBalance(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"customer": customer, "outstanding": outstanding})
	}
}

func updateCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input models.NewCustomer
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		customer, err := models.UpdateCustomer(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, customer)
	}
}

func deleteCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		if err := models.DeleteCustomer(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func customerLedgerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		events, err := models.CustomerCreditEvents(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, ledgerRows(events))
	}
}

func createCustomerDebtHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewCustomerDebt
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		debt, err := models.CreateCustomerDebt(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, debt)
	}
}

func deleteCustomerDebtHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		if err := models.DeleteCustomerDebt(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func createCreditCollectionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewCreditCollection
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		collection, err := models.CreateCreditCollection(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		previousDebt, err := models.CollectionPreviousDebt(c.Request.Context(), collection.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		resulting, err := models.CollectionResultingBalance(c.Request.Context(), collection.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"collection":        collection,
			"previous_debt":     previousDebt,
			"resulting_balance": resulting,
		})
	}
}

func deleteCreditCollectionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		if err := models.DeleteCreditCollection(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// --- sales ---

func listSalesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		fromDate, ok := dateParam(c, "from")
		if !ok {
			return
		}
		toDate, ok := dateParam(c, "to")
		if !ok {
			return
		}
		if toDate != nil {
			// to= is inclusive on the day.
			end := models.StartOfDay(*toDate).AddDate(0, 0, 1)
			toDate = &end
		}
		customerId, ok := intParam(c, "customer_id")
		if !ok {
			return
		}
		sales, err := models.ListSales(c.Request.Context(), fromDate, toDate, customerId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, sales)
	}
}

func createSaleHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewSale
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		sale, err := models.CreateSale(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, sale)
	}
}

func getSaleHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		sale, err := models.GetSale(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, sale)
	}
}

func deleteSaleHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		if err := models.DeleteSale(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

type salePaymentInput struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

func recordSalePaymentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		var input salePaymentInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		sale, err := models.RecordSalePayment(c.Request.Context(), id, input.Amount)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, sale)
	}
}

// --- bank transfers ---

func listBankTransfersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		transfers, err := models.ListBankTransfers(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, transfers)
	}
}

func createBankTransferHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewBankTransfer
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": utils.ProcessValidationErrors(err)})
			return
		}
		transfer, err := models.CreateBankTransfer(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, transfer)
	}
}

func deleteBankTransferHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathId(c)
		if !ok {
			return
		}
		if err := models.DeleteBankTransfer(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// --- reports ---

func profitByProductReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		fromDate, ok := dateParam(c, "from")
		if !ok {
			return
		}
		toDate, ok := dateParam(c, "to")
		if !ok {
			return
		}
		if fromDate == nil || toDate == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from and to are required"})
			return
		}
		end := models.StartOfDay(*toDate).AddDate(0, 0, 1)

		if c.Query("format") == "xlsx" {
			if err := reports.ExportProfitByProductExcel(c.Request.Context(), c.Writer, *fromDate, end); err != nil {
				respondError(c, err)
			}
			return
		}
		records, err := reports.GetProfitByProductReport(c.Request.Context(), *fromDate, end)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, records)
	}
}

func supplierBalancesReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := reports.GetSupplierBalancesReport(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, records)
	}
}

func stockSummaryReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Query("format") == "xlsx" {
			if err := reports.ExportStockSummaryExcel(c.Request.Context(), c.Writer); err != nil {
				respondError(c, err)
			}
			return
		}
		records, err := reports.GetStockSummaryReport(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, records)
	}
}

// --- ops ---

func recalcCreditStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		changed, err := workflow.RecalculateAllCreditStatuses(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"changed": changed})
	}
}
