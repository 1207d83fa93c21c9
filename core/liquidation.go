package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// ILiquidationService liquidation eligibility & seize-amount calculator
type ILiquidationService interface {
	// BeforeLiquidateBorrow validates shortfall and the close-factor bound
	BeforeLiquidateBorrow(ctx context.Context, borrowedAssetID, collateralAssetID, liquidator, borrower string, repayAmount decimal.Decimal) error
	// MaxRepay close-factor-bounded repayable amount for the borrower
	MaxRepay(ctx context.Context, borrowedAssetID, collateralAssetID, borrower string) (decimal.Decimal, error)
	// LiquidateCalculateSeizeTokens collateral ctokens seized per repay amount
	LiquidateCalculateSeizeTokens(ctx context.Context, borrowedAssetID, collateralAssetID, borrower string, repayAmount decimal.Decimal) (decimal.Decimal, error)
}
