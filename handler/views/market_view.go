package views

import (
	"lever/core"

	"github.com/shopspring/decimal"
)

// Market market view
type Market struct {
	core.Market
	IsIsolated  bool            `json:"is_isolated"`
	SupplyValue decimal.Decimal `json:"supply_value"`
	BorrowValue decimal.Decimal `json:"borrow_value"`
	SupplySpeed decimal.Decimal `json:"supply_speed"`
	BorrowSpeed decimal.Decimal `json:"borrow_speed"`
}
