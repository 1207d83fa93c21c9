package policy

import (
	"context"
	"time"

	"lever/core"
	"lever/pkg/lever"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/property"
	uuidutil "github.com/fox-one/pkg/uuid"
	"github.com/shopspring/decimal"
)

type policyService struct {
	system              *core.System
	property            property.Store
	marketStore         core.IMarketStore
	borrowStore         core.IBorrowStore
	accountStore        core.IAccountStore
	flowStore           core.IFlowStore
	accountService      core.IAccountService
	liquidationService  core.ILiquidationService
	distributionService core.IDistributionService
	priceService        core.IPriceOracleService
	guard               *opGuard
}

// New new policy service
func New(
	system *core.System,
	propertyStore property.Store,
	marketStore core.IMarketStore,
	borrowStore core.IBorrowStore,
	accountStore core.IAccountStore,
	flowStore core.IFlowStore,
	accountService core.IAccountService,
	liquidationService core.ILiquidationService,
	distributionService core.IDistributionService,
	priceService core.IPriceOracleService,
) core.IPolicyService {
	return &policyService{
		system:              system,
		property:            propertyStore,
		marketStore:         marketStore,
		borrowStore:         borrowStore,
		accountStore:        accountStore,
		flowStore:           flowStore,
		accountService:      accountService,
		liquidationService:  liquidationService,
		distributionService: distributionService,
		priceService:        priceService,
		guard:               newOpGuard(),
	}
}

// Before hooks take the operation tag and hold it until the matching
// After hook runs, so a market calling back into the dispatcher while
// its bookkeeping is in flight is rejected. A denied Before releases
// the tag immediately.
func (s *policyService) BeforeMint(ctx context.Context, assetID, minter string, amount decimal.Decimal) error {
	if err := s.guard.enter("mint", minter, assetID); err != nil {
		return err
	}

	if err := s.checkMint(ctx, assetID, amount); err != nil {
		s.guard.exit("mint", minter, assetID)
		return err
	}

	return nil
}

func (s *policyService) checkMint(ctx context.Context, assetID string, amount decimal.Decimal) error {
	market, err := s.activeMarket(ctx, assetID, core.PauseActionMint, core.MarketActionMint)
	if err != nil {
		return err
	}

	// reaching the cap exactly passes, exceeding it fails
	if market.SupplyCap.IsPositive() {
		postSupply := market.TotalSupply.Mul(market.ExchangeRate).Add(amount)
		if err := lever.Require(postSupply.LessThanOrEqual(market.SupplyCap), "policy/supply-cap"); err != nil {
			logger.FromContext(ctx).WithError(err).Infoln("mint denied")
			return core.ErrSupplyCapExceeded
		}
	}

	return nil
}

func (s *policyService) AfterMint(ctx context.Context, assetID, minter string, amount decimal.Decimal, now time.Time) error {
	defer s.guard.exit("mint", minter, assetID)

	return s.distributionService.DistributeSupplier(ctx, assetID, minter, now)
}

func (s *policyService) BeforeRedeem(ctx context.Context, assetID, redeemer string, redeemTokens decimal.Decimal) error {
	if err := s.guard.enter("redeem", redeemer, assetID); err != nil {
		return err
	}

	if err := s.checkRedeem(ctx, assetID, redeemer, redeemTokens); err != nil {
		s.guard.exit("redeem", redeemer, assetID)
		return err
	}

	return nil
}

func (s *policyService) checkRedeem(ctx context.Context, assetID, redeemer string, redeemTokens decimal.Decimal) error {
	if _, err := s.activeMarket(ctx, assetID, core.PauseActionRedeem, core.MarketActionRedeem); err != nil {
		return err
	}

	equity, err := s.accountService.CalcAccountEquity(ctx, redeemer, core.EquityBorrowLimit, &core.Hypothetical{
		AssetID:      assetID,
		RedeemTokens: redeemTokens,
	})
	if err != nil {
		return err
	}
	if err := lever.Require(equity.Shortfall.IsZero(), "policy/redeem-shortfall"); err != nil {
		logger.FromContext(ctx).WithError(err).Infoln("redeem denied")
		return core.ErrInsufficientLiquidity
	}

	return nil
}

func (s *policyService) AfterRedeem(ctx context.Context, assetID, redeemer string, redeemTokens decimal.Decimal, now time.Time) error {
	defer s.guard.exit("redeem", redeemer, assetID)

	return s.distributionService.DistributeSupplier(ctx, assetID, redeemer, now)
}

func (s *policyService) BeforeBorrow(ctx context.Context, callerAssetID, assetID, borrower string, amount decimal.Decimal) error {
	if err := s.guard.enter("borrow", borrower, assetID); err != nil {
		return err
	}

	if err := s.checkBorrow(ctx, callerAssetID, assetID, borrower, amount); err != nil {
		s.guard.exit("borrow", borrower, assetID)
		return err
	}

	return nil
}

func (s *policyService) checkBorrow(ctx context.Context, callerAssetID, assetID, borrower string, amount decimal.Decimal) error {
	log := logger.FromContext(ctx).WithField("hook", "before_borrow")

	// only the market being borrowed from may invoke its borrow hook
	if callerAssetID != assetID {
		return core.ErrOperationForbidden
	}

	market, err := s.activeMarket(ctx, assetID, core.PauseActionBorrow, core.MarketActionBorrow)
	if err != nil {
		return err
	}

	price, err := s.priceService.GetUnderlyingPrice(ctx, market)
	if err != nil {
		return err
	}

	if market.BorrowCap.IsPositive() {
		postBorrows := market.TotalBorrows.Add(amount)
		if err := lever.Require(postBorrows.LessThanOrEqual(market.BorrowCap), "policy/borrow-cap"); err != nil {
			log.WithError(err).Infoln("borrow denied")
			return core.ErrBorrowCapExceeded
		}
	}

	account, err := s.accountStore.Find(ctx, borrower)
	if err != nil {
		return err
	}
	if account.EModeID != 0 && market.EModeID != 0 && market.EModeID != account.EModeID {
		log.Infoln("borrow denied: emode mismatch")
		return core.ErrEModeMismatch
	}

	isolated, err := s.accountService.IsolatedCollateral(ctx, borrower)
	if err != nil {
		return err
	}
	if isolated != nil {
		if err := lever.Require(market.BorrowableInIsolation, "policy/not-borrowable-in-isolation"); err != nil {
			log.WithError(err).Infoln("borrow denied")
			return core.ErrNotBorrowableInIsolation
		}

		postDebt := isolated.CurrentDebt.Add(amount.Mul(price))
		if err := lever.Require(postDebt.LessThanOrEqual(isolated.DebtCeiling), "policy/debt-ceiling"); err != nil {
			log.WithError(err).Infoln("borrow denied")
			return core.ErrDebtCeilingExceeded
		}
	}

	equity, err := s.accountService.CalcAccountEquity(ctx, borrower, core.EquityBorrowLimit, &core.Hypothetical{
		AssetID:      assetID,
		BorrowAmount: amount,
	})
	if err != nil {
		return err
	}
	if err := lever.Require(equity.Shortfall.IsZero(), "policy/borrow-shortfall"); err != nil {
		log.WithError(err).Infoln("borrow denied")
		return core.ErrInsufficientLiquidity
	}

	return nil
}

func (s *policyService) AfterBorrow(ctx context.Context, assetID, borrower string, amount decimal.Decimal, now time.Time) error {
	defer s.guard.exit("borrow", borrower, assetID)

	if err := s.trackIsolatedDebt(ctx, assetID, borrower, amount); err != nil {
		return err
	}

	return s.distributionService.DistributeBorrower(ctx, assetID, borrower, now)
}

func (s *policyService) BeforeRepayBorrow(ctx context.Context, assetID, payer, borrower string, amount decimal.Decimal) error {
	market, err := s.marketStore.Find(ctx, assetID)
	if err != nil {
		return err
	}
	if market.ID == 0 {
		return core.ErrMarketNotFound
	}
	if !amount.IsPositive() {
		return core.ErrInvalidAmount
	}

	// repay stays open even while the protocol is paused

	return nil
}

func (s *policyService) AfterRepayBorrow(ctx context.Context, assetID, borrower string, amount decimal.Decimal, now time.Time) error {
	if err := s.trackIsolatedDebt(ctx, assetID, borrower, amount.Neg()); err != nil {
		return err
	}

	return s.distributionService.DistributeBorrower(ctx, assetID, borrower, now)
}

func (s *policyService) BeforeLiquidateBorrow(ctx context.Context, borrowedAssetID, collateralAssetID, liquidator, borrower string, repayAmount decimal.Decimal) error {
	// the tag covers the whole liquidation and is released by AfterSeize,
	// which only knows the borrower, so it is keyed by borrower alone
	if err := s.guard.enter("liquidate", borrower, ""); err != nil {
		return err
	}

	if err := s.checkLiquidateBorrow(ctx, borrowedAssetID, collateralAssetID, liquidator, borrower, repayAmount); err != nil {
		s.guard.exit("liquidate", borrower, "")
		return err
	}

	return nil
}

func (s *policyService) checkLiquidateBorrow(ctx context.Context, borrowedAssetID, collateralAssetID, liquidator, borrower string, repayAmount decimal.Decimal) error {
	paused, err := s.ProtocolPaused(ctx)
	if err != nil {
		return err
	}
	if paused {
		return core.ErrProtocolPaused
	}

	return s.liquidationService.BeforeLiquidateBorrow(ctx, borrowedAssetID, collateralAssetID, liquidator, borrower, repayAmount)
}

func (s *policyService) BeforeSeize(ctx context.Context, collateralAssetID, borrowedAssetID, liquidator, borrower string) error {
	paused, err := s.ProtocolPaused(ctx)
	if err != nil {
		return err
	}
	if paused {
		return core.ErrProtocolPaused
	}

	seizePaused, err := s.ActionPaused(ctx, core.PauseActionSeize)
	if err != nil {
		return err
	}
	if seizePaused {
		return core.ErrActionPaused
	}

	// both sides must live in this registry
	for _, assetID := range []string{collateralAssetID, borrowedAssetID} {
		market, err := s.marketStore.Find(ctx, assetID)
		if err != nil {
			return err
		}
		if market.ID == 0 {
			return core.ErrMarketNotFound
		}
	}

	return nil
}

func (s *policyService) AfterSeize(ctx context.Context, collateralAssetID, liquidator, borrower string, seizeTokens decimal.Decimal, now time.Time) error {
	defer s.guard.exit("liquidate", borrower, "")

	if err := s.distributionService.DistributeSupplier(ctx, collateralAssetID, borrower, now); err != nil {
		return err
	}

	if err := s.distributionService.DistributeSupplier(ctx, collateralAssetID, liquidator, now); err != nil {
		return err
	}

	extra := core.NewFlowExtra()
	extra.Put("liquidator", liquidator)
	extra.Put("seize_tokens", seizeTokens)
	return s.flowStore.Create(ctx, &core.Flow{
		TraceID: uuidutil.New(),
		UserID:  borrower,
		AssetID: collateralAssetID,
		Action:  core.ActionTypeLiquidation,
		Data:    extra.Format(),
	})
}

func (s *policyService) BeforeTransfer(ctx context.Context, assetID, src, dst string, tokens decimal.Decimal) error {
	if err := s.guard.enter("transfer", src, assetID); err != nil {
		return err
	}

	if err := s.checkTransfer(ctx, assetID, src, tokens); err != nil {
		s.guard.exit("transfer", src, assetID)
		return err
	}

	return nil
}

func (s *policyService) checkTransfer(ctx context.Context, assetID, src string, tokens decimal.Decimal) error {
	paused, err := s.ProtocolPaused(ctx)
	if err != nil {
		return err
	}
	if paused {
		return core.ErrProtocolPaused
	}

	transferPaused, err := s.ActionPaused(ctx, core.PauseActionTransfer)
	if err != nil {
		return err
	}
	if transferPaused {
		return core.ErrActionPaused
	}

	market, err := s.marketStore.Find(ctx, assetID)
	if err != nil {
		return err
	}
	if market.ID == 0 {
		return core.ErrMarketNotFound
	}

	equity, err := s.accountService.CalcAccountEquity(ctx, src, core.EquityBorrowLimit, &core.Hypothetical{
		AssetID:      assetID,
		RedeemTokens: tokens,
	})
	if err != nil {
		return err
	}
	if err := lever.Require(equity.Shortfall.IsZero(), "policy/transfer-shortfall"); err != nil {
		logger.FromContext(ctx).WithError(err).Infoln("transfer denied")
		return core.ErrInsufficientLiquidity
	}

	return nil
}

func (s *policyService) AfterTransfer(ctx context.Context, assetID, src, dst string, tokens decimal.Decimal, now time.Time) error {
	defer s.guard.exit("transfer", src, assetID)

	if err := s.distributionService.DistributeSupplier(ctx, assetID, src, now); err != nil {
		return err
	}

	return s.distributionService.DistributeSupplier(ctx, assetID, dst, now)
}

func (s *policyService) BeforeFlashloan(ctx context.Context, assetID string) error {
	paused, err := s.ProtocolPaused(ctx)
	if err != nil {
		return err
	}
	if paused {
		return core.ErrProtocolPaused
	}

	market, err := s.marketStore.Find(ctx, assetID)
	if err != nil {
		return err
	}
	if market.ID == 0 {
		return core.ErrMarketNotFound
	}

	return nil
}

// activeMarket loads a listed market and enforces the pause ladder:
// global protocol switch, global action switch, per-market flag.
func (s *policyService) activeMarket(ctx context.Context, assetID string, pauseAction core.PauseAction, marketAction core.MarketAction) (*core.Market, error) {
	market, err := s.marketStore.Find(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if market.ID == 0 {
		return nil, core.ErrMarketNotFound
	}

	paused, err := s.ProtocolPaused(ctx)
	if err != nil {
		return nil, err
	}
	if paused {
		return nil, core.ErrProtocolPaused
	}

	actionPaused, err := s.ActionPaused(ctx, pauseAction)
	if err != nil {
		return nil, err
	}
	if actionPaused || market.ActionPaused(marketAction) {
		return nil, core.ErrActionPaused
	}

	return market, nil
}

// trackIsolatedDebt mirrors borrow/repay on the isolated collateral's
// debt counter, valued at the borrowed market's oracle price.
// The counter never goes below zero.
func (s *policyService) trackIsolatedDebt(ctx context.Context, assetID, borrower string, amount decimal.Decimal) error {
	isolated, err := s.accountService.IsolatedCollateral(ctx, borrower)
	if err != nil {
		return err
	}
	if isolated == nil {
		return nil
	}

	market, err := s.marketStore.Find(ctx, assetID)
	if err != nil {
		return err
	}
	if market.ID == 0 {
		return core.ErrMarketNotFound
	}

	price, err := s.priceService.GetUnderlyingPrice(ctx, market)
	if err != nil {
		return err
	}

	debt := isolated.CurrentDebt.Add(amount.Mul(price))
	if debt.IsNegative() {
		debt = decimal.Zero
	}
	isolated.CurrentDebt = debt

	return s.marketStore.Update(ctx, isolated, isolated.Version)
}
