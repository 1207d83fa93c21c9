package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PauseAction protocol-wide pausable action switch
type PauseAction string

const (
	// PauseActionMint all-market mint switch
	PauseActionMint PauseAction = "mint"
	// PauseActionRedeem all-market redeem switch
	PauseActionRedeem PauseAction = "redeem"
	// PauseActionBorrow all-market borrow switch
	PauseActionBorrow PauseAction = "borrow"
	// PauseActionTransfer transfer switch
	PauseActionTransfer PauseAction = "transfer"
	// PauseActionSeize seize switch
	PauseActionSeize PauseAction = "seize"
)

// IPolicyService policy hook dispatcher invoked by each market operation,
// plus the pause controller. A successful Before hook tags the operation
// in flight until the matching After hook settles it; a re-entrant call
// on the same user and market inside that span fails with
// ErrOperationInProgress.
type IPolicyService interface {
	BeforeMint(ctx context.Context, assetID, minter string, amount decimal.Decimal) error
	AfterMint(ctx context.Context, assetID, minter string, amount decimal.Decimal, now time.Time) error
	BeforeRedeem(ctx context.Context, assetID, redeemer string, redeemTokens decimal.Decimal) error
	AfterRedeem(ctx context.Context, assetID, redeemer string, redeemTokens decimal.Decimal, now time.Time) error
	BeforeBorrow(ctx context.Context, callerAssetID, assetID, borrower string, amount decimal.Decimal) error
	AfterBorrow(ctx context.Context, assetID, borrower string, amount decimal.Decimal, now time.Time) error
	BeforeRepayBorrow(ctx context.Context, assetID, payer, borrower string, amount decimal.Decimal) error
	AfterRepayBorrow(ctx context.Context, assetID, borrower string, amount decimal.Decimal, now time.Time) error
	BeforeLiquidateBorrow(ctx context.Context, borrowedAssetID, collateralAssetID, liquidator, borrower string, repayAmount decimal.Decimal) error
	BeforeSeize(ctx context.Context, collateralAssetID, borrowedAssetID, liquidator, borrower string) error
	AfterSeize(ctx context.Context, collateralAssetID, liquidator, borrower string, seizeTokens decimal.Decimal, now time.Time) error
	BeforeTransfer(ctx context.Context, assetID, src, dst string, tokens decimal.Decimal) error
	AfterTransfer(ctx context.Context, assetID, src, dst string, tokens decimal.Decimal, now time.Time) error
	BeforeFlashloan(ctx context.Context, assetID string) error

	SetProtocolPaused(ctx context.Context, caller string, paused bool) error
	SetActionPaused(ctx context.Context, caller string, action PauseAction, paused bool) error
	SetMarketActionPaused(ctx context.Context, caller, assetID string, action MarketAction, paused bool) error
	ProtocolPaused(ctx context.Context) (bool, error)
	ActionPaused(ctx context.Context, action PauseAction) (bool, error)
}
