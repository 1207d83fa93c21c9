package lever

import (
	"lever/core"
	"lever/pkg/number"

	"github.com/shopspring/decimal"
)

// BorrowBalance current borrow balance including accrued interest.
// balance = borrow.principal * market.borrow_index / borrow.interest_index
// Rounds up: interest owed never rounds away from the protocol.
func BorrowBalance(b *core.Borrow, market *core.Market) decimal.Decimal {
	borrowIndex := market.BorrowIndex
	if !borrowIndex.IsPositive() {
		borrowIndex = decimal.New(1, 0)
	}

	interestIndex := b.InterestIndex
	if !interestIndex.IsPositive() {
		interestIndex = borrowIndex
	}

	return number.Ceil(b.Principal.Mul(borrowIndex).Div(interestIndex), MaxPrecision)
}
