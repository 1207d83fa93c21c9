package liquidation

import (
	"context"

	"lever/core"
	"lever/pkg/lever"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

type liquidationService struct {
	system         *core.System
	marketStore    core.IMarketStore
	borrowStore    core.IBorrowStore
	accountStore   core.IAccountStore
	emodeStore     core.IEModeStore
	accountService core.IAccountService
	priceService   core.IPriceOracleService
}

// New new liquidation service
func New(
	system *core.System,
	marketStore core.IMarketStore,
	borrowStore core.IBorrowStore,
	accountStore core.IAccountStore,
	emodeStore core.IEModeStore,
	accountService core.IAccountService,
	priceService core.IPriceOracleService,
) core.ILiquidationService {
	return &liquidationService{
		system:         system,
		marketStore:    marketStore,
		borrowStore:    borrowStore,
		accountStore:   accountStore,
		emodeStore:     emodeStore,
		accountService: accountService,
		priceService:   priceService,
	}
}

func (s *liquidationService) BeforeLiquidateBorrow(ctx context.Context, borrowedAssetID, collateralAssetID, liquidator, borrower string, repayAmount decimal.Decimal) error {
	log := logger.FromContext(ctx).WithField("service", "liquidation")

	if !repayAmount.IsPositive() {
		return core.ErrInvalidAmount
	}

	if _, _, err := s.markets(ctx, borrowedAssetID, collateralAssetID); err != nil {
		return err
	}

	// the borrower must actually be under water, measured at the
	// liquidation threshold
	equity, err := s.accountService.CalcAccountEquity(ctx, borrower, core.EquityLiquidation, nil)
	if err != nil {
		return err
	}
	if err := lever.Require(equity.Shortfall.IsPositive(), "liquidation/no-shortfall"); err != nil {
		log.WithError(err).Infoln("liquidation denied")
		return core.ErrNoShortfall
	}

	maxRepay, err := s.MaxRepay(ctx, borrowedAssetID, collateralAssetID, borrower)
	if err != nil {
		return err
	}
	if err := lever.Require(repayAmount.LessThanOrEqual(maxRepay), "liquidation/too-much-repay"); err != nil {
		log.WithError(err).Infoln("liquidation denied")
		return core.ErrTooMuchRepay
	}

	return nil
}

func (s *liquidationService) MaxRepay(ctx context.Context, borrowedAssetID, collateralAssetID, borrower string) (decimal.Decimal, error) {
	borrowedMarket, collateralMarket, err := s.markets(ctx, borrowedAssetID, collateralAssetID)
	if err != nil {
		return decimal.Zero, err
	}

	borrow, err := s.borrowStore.Find(ctx, borrower, borrowedAssetID)
	if err != nil {
		return decimal.Zero, err
	}

	closeFactor, _, err := s.liquidationParams(ctx, borrower, borrowedMarket, collateralMarket)
	if err != nil {
		return decimal.Zero, err
	}

	return lever.MaxRepay(lever.BorrowBalance(borrow, borrowedMarket), closeFactor), nil
}

func (s *liquidationService) LiquidateCalculateSeizeTokens(ctx context.Context, borrowedAssetID, collateralAssetID, borrower string, repayAmount decimal.Decimal) (decimal.Decimal, error) {
	borrowedMarket, collateralMarket, err := s.markets(ctx, borrowedAssetID, collateralAssetID)
	if err != nil {
		return decimal.Zero, err
	}

	borrowedPrice, err := s.priceService.GetUnderlyingPrice(ctx, borrowedMarket)
	if err != nil {
		return decimal.Zero, err
	}
	collateralPrice, err := s.priceService.GetUnderlyingPrice(ctx, collateralMarket)
	if err != nil {
		return decimal.Zero, err
	}

	_, incentive, err := s.liquidationParams(ctx, borrower, borrowedMarket, collateralMarket)
	if err != nil {
		return decimal.Zero, err
	}

	exchangeRate := collateralMarket.ExchangeRate
	if !exchangeRate.IsPositive() {
		return decimal.Zero, core.ErrInvalidParameter
	}

	return lever.SeizeTokens(repayAmount, borrowedPrice, collateralPrice, exchangeRate, incentive), nil
}

// liquidationParams selects the close factor and liquidation incentive:
// the eMode category's values when the borrower and both markets share a
// nonzero eMode, the system defaults otherwise.
func (s *liquidationService) liquidationParams(ctx context.Context, borrower string, borrowedMarket, collateralMarket *core.Market) (decimal.Decimal, decimal.Decimal, error) {
	closeFactor := s.system.CloseFactor
	incentive := s.system.LiquidationIncentive

	account, err := s.accountStore.Find(ctx, borrower)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	if account.EModeID == 0 ||
		borrowedMarket.EModeID != account.EModeID ||
		collateralMarket.EModeID != account.EModeID {
		return closeFactor, incentive, nil
	}

	category, err := s.emodeStore.Find(ctx, account.EModeID)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if category.ID > 0 {
		if category.CloseFactor.IsPositive() {
			closeFactor = category.CloseFactor
		}
		if category.LiquidationIncentive.IsPositive() {
			incentive = category.LiquidationIncentive
		}
	}

	return closeFactor, incentive, nil
}

func (s *liquidationService) markets(ctx context.Context, borrowedAssetID, collateralAssetID string) (*core.Market, *core.Market, error) {
	borrowedMarket, err := s.marketStore.Find(ctx, borrowedAssetID)
	if err != nil {
		return nil, nil, err
	}
	if borrowedMarket.ID == 0 {
		return nil, nil, core.ErrMarketNotFound
	}

	collateralMarket, err := s.marketStore.Find(ctx, collateralAssetID)
	if err != nil {
		return nil, nil, err
	}
	if collateralMarket.ID == 0 {
		return nil, nil, core.ErrMarketNotFound
	}

	return borrowedMarket, collateralMarket, nil
}
