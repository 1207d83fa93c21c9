package lever

import (
	"github.com/shopspring/decimal"
)

// AdvanceIndex distribution index after blockDelta blocks of accrual.
// index += speed * blockDelta / weight, truncated; a zero weight leaves
// the index untouched so no reward is minted into the void.
func AdvanceIndex(index, speed decimal.Decimal, blockDelta int64, weight decimal.Decimal) decimal.Decimal {
	if blockDelta <= 0 || !speed.IsPositive() || !weight.IsPositive() {
		return index
	}

	accrued := speed.Mul(decimal.NewFromInt(blockDelta))
	return index.Add(accrued.Div(weight).Truncate(IndexPrecision))
}

// AccruedDelta pending reward of an account between two index readings.
// Truncates down: dust stays with the protocol.
func AccruedDelta(index, snapshot, weight decimal.Decimal) decimal.Decimal {
	delta := index.Sub(snapshot)
	if !delta.IsPositive() || !weight.IsPositive() {
		return decimal.Zero
	}

	return delta.Mul(weight).Truncate(MaxPrecision)
}

// BorrowWeight borrow-side distribution weight, normalized by the borrow
// index so that interest accrual does not inflate reward share.
func BorrowWeight(totalBorrows, borrowIndex decimal.Decimal) decimal.Decimal {
	if !borrowIndex.IsPositive() {
		return totalBorrows
	}
	return totalBorrows.Div(borrowIndex).Truncate(IndexPrecision)
}
