package views

import (
	"lever/core"

	"github.com/shopspring/decimal"
)

// Account account view
type Account struct {
	UserID        string          `json:"user_id"`
	EModeID       int64           `json:"emode_id"`
	Collateral    decimal.Decimal `json:"collateral"`
	Shortfall     decimal.Decimal `json:"shortfall"`
	SumCollateral decimal.Decimal `json:"sum_collateral"`
	SumBorrow     decimal.Decimal `json:"sum_borrow"`
	Memberships   []string        `json:"memberships"`
	Supplies      []*core.Supply  `json:"supplies"`
	Borrows       []*core.Borrow  `json:"borrows"`
	Reward        decimal.Decimal `json:"reward"`
}
