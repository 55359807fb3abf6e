package models

import (
	"log"

	"bitbucket.org/mmdatafocus/coldstore_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Admin{},
		&Product{},
		&StockMovement{},
		&Supplier{}, &SupplierCreditTransaction{}, &SupplierCreditTransactionItem{}, &SupplierPayment{},
		&Customer{}, &CustomerDebt{}, &CreditCollection{},
		&Sale{}, &SaleItem{},
		&BankTransfer{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
