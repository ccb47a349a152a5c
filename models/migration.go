package models

import (
	"log"

	"gorm.io/gorm"
)

func MigrateTable(db *gorm.DB) {
	err := db.AutoMigrate(
		&BusinessSettings{},
		&Customer{}, &Supplier{}, &Product{},
		&Invoice{}, &InvoiceItem{},
		&Purchase{}, &PurchaseItem{},
		&Expense{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
