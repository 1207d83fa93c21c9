package lever

import (
	"testing"

	"lever/core"
	"lever/pkg/number"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvanceIndex(t *testing.T) {
	index := decimal.Zero
	speed := number.Decimal("2")
	weight := number.Decimal("1000")

	next := AdvanceIndex(index, speed, 10, weight)
	assert.Equal(t, "0.02", next.String())

	// zero weight freezes the index
	assert.True(t, AdvanceIndex(next, speed, 10, decimal.Zero).Equal(next))
	// zero delta is a no-op
	assert.True(t, AdvanceIndex(next, speed, 0, weight).Equal(next))
	// the index never decreases
	assert.True(t, AdvanceIndex(next, speed, 5, weight).GreaterThanOrEqual(next))
}

func TestAccruedDelta(t *testing.T) {
	delta := AccruedDelta(number.Decimal("0.02"), decimal.Zero, number.Decimal("500"))
	assert.Equal(t, "10", delta.String())

	// snapshot at head yields nothing
	assert.True(t, AccruedDelta(number.Decimal("0.02"), number.Decimal("0.02"), number.Decimal("500")).IsZero())
}

func TestBorrowBalanceRoundsUp(t *testing.T) {
	market := &core.Market{BorrowIndex: number.Decimal("3")}
	b := &core.Borrow{Principal: number.Decimal("100"), InterestIndex: number.Decimal("1")}

	balance := BorrowBalance(b, market)
	require.True(t, balance.GreaterThanOrEqual(number.Decimal("300")))
	assert.Equal(t, "300", balance.String())

	// 100 * 1.000000000000000001 / 1 must not round down to principal
	market.BorrowIndex = number.Decimal("1.000000000000000001")
	assert.Equal(t, "100.00000001", BorrowBalance(b, market).String())
}

func TestSeizeTokens(t *testing.T) {
	seize := SeizeTokens(
		number.Decimal("100"), // repay
		number.Decimal("2"),   // borrowed price
		number.Decimal("4"),   // collateral price
		number.Decimal("1"),   // exchange rate
		number.Decimal("1.1"), // incentive
	)
	assert.Equal(t, "55", seize.String())
}
