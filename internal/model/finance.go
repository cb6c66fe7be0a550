package model

import (
	"time"

	"github.com/uptrace/bun"
)

// Category groups incomes for reporting. Threshold is the monthly alert
// level in the user's default currency; zero disables it.
type Category struct {
	bun.BaseModel `bun:"table:category,alias:c" json:"-"`

	ID        string  `bun:"id,pk,type:uuid" json:"id"`
	Name      string  `bun:"name,notnull" json:"name"`
	Colour    string  `bun:"colour" json:"colour"`
	Threshold float64 `bun:"threshold,notnull,default:0" json:"threshold"`
	Username  string  `bun:"username,notnull" json:"username"`
}

// Income is a single earning entry. Amount is in Currency;
// DefaultCurrencyAmount is the converted value in the owner's default
// currency, filled at creation time. Frequency marks recurring incomes:
// empty for one-off, "*" for monthly, or an interval in months.
type Income struct {
	bun.BaseModel `bun:"table:income,alias:i" json:"-"`

	ID                    string    `bun:"id,pk,type:uuid" json:"id"`
	Name                  string    `bun:"name,notnull" json:"name"`
	Amount                float64   `bun:"amount,notnull" json:"amount"`
	Currency              string    `bun:"currency,notnull" json:"currency"`
	DefaultCurrencyAmount float64   `bun:"default_currency_amount,notnull,default:0" json:"defaultCurrencyAmount"`
	Description           string    `bun:"description" json:"description"`
	Frequency             string    `bun:"frequency" json:"frequency"`
	StartDay              int       `bun:"start_day" json:"startDay"`
	StartMonth            int       `bun:"start_month" json:"startMonth"`
	CreatedAt             time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	Username              string    `bun:"username,notnull" json:"username"`
}

// Loan tracks money lent to or borrowed from a counterparty. Receiving is
// true when the user is owed the amount.
type Loan struct {
	bun.BaseModel `bun:"table:loan,alias:l" json:"-"`

	ID           string     `bun:"id,pk,type:uuid" json:"id"`
	Counterparty string     `bun:"counterparty,notnull" json:"counterparty"`
	Amount       float64    `bun:"amount,notnull" json:"amount"`
	Currency     string     `bun:"currency,notnull" json:"currency"`
	Receiving    bool       `bun:"receiving,notnull,default:false" json:"receiving"`
	Active       bool       `bun:"active,notnull,default:true" json:"active"`
	CreatedAt    time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
	UntilDate    *time.Time `bun:"until_date" json:"untilDate,omitempty"`
	Username     string     `bun:"username,notnull" json:"username"`
}
