package domain

import "time"

type Currency struct {
	ID        int64
	TenantID  string
	Symbol    string
	Title     string
	CreatedAt time.Time
}

type Account struct {
	ID         int64
	TenantID   string
	CurrencyID int64
	Title      string
	CreatedAt  time.Time
}

type Transaction struct {
	ID        int64
	TenantID  string
	Notes     string
	CreatedAt time.Time
}
