package lever

import (
	"github.com/shopspring/decimal"
)

// SeizeTokens collateral ctokens seized for a repayment.
// seizeTokens = repayAmount * priceBorrowed * incentive / priceCollateral / exchangeRate
// Truncates: the seized amount rounds in favor of the protocol.
func SeizeTokens(repayAmount, priceBorrowed, priceCollateral, exchangeRate, incentive decimal.Decimal) decimal.Decimal {
	return repayAmount.
		Mul(priceBorrowed).
		Mul(incentive).
		Div(priceCollateral).
		Div(exchangeRate).
		Truncate(MaxPrecision)
}

// MaxRepay close-factor-bounded repayable amount
func MaxRepay(borrowBalance, closeFactor decimal.Decimal) decimal.Decimal {
	return borrowBalance.Mul(closeFactor).Truncate(MaxPrecision)
}
