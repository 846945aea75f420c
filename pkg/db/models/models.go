package models

// All lists every persisted model, in dependency order, for gorm AutoMigrate.
func All() []any {
	return []any{
		&StockVariable{},
		&Product{},
		&StockBinding{},
		&Customer{},
		&Address{},
		&CustomerAddress{},
		&Courier{},
		&Sale{},
		&SaleItem{},
		&SalePayment{},
		&SalesRecord{},
		&Purchase{},
		&CashAdvance{},
		&Notification{},
	}
}
