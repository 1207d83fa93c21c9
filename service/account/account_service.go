package account

import (
	"context"

	"lever/core"
	"lever/pkg/lever"

	"github.com/fox-one/pkg/logger"
	uuidutil "github.com/fox-one/pkg/uuid"
	"github.com/shopspring/decimal"
)

type accountService struct {
	marketStore  core.IMarketStore
	supplyStore  core.ISupplyStore
	borrowStore  core.IBorrowStore
	accountStore core.IAccountStore
	emodeStore   core.IEModeStore
	flowStore    core.IFlowStore
	priceService core.IPriceOracleService
}

// New new account service
func New(
	marketStore core.IMarketStore,
	supplyStore core.ISupplyStore,
	borrowStore core.IBorrowStore,
	accountStore core.IAccountStore,
	emodeStore core.IEModeStore,
	flowStore core.IFlowStore,
	priceService core.IPriceOracleService,
) core.IAccountService {
	return &accountService{
		marketStore:  marketStore,
		supplyStore:  supplyStore,
		borrowStore:  borrowStore,
		accountStore: accountStore,
		emodeStore:   emodeStore,
		flowStore:    flowStore,
		priceService: priceService,
	}
}

func (s *accountService) CalcAccountEquity(ctx context.Context, userID string, variant core.EquityVariant, hypo *core.Hypothetical) (*core.AccountEquity, error) {
	account, err := s.accountStore.Find(ctx, userID)
	if err != nil {
		return nil, err
	}

	threshold := variant == core.EquityLiquidation

	memberships, err := s.accountStore.Memberships(ctx, userID)
	if err != nil {
		return nil, err
	}

	sumCollateral := decimal.Zero
	for _, m := range memberships {
		market, err := s.marketStore.Find(ctx, m.AssetID)
		if err != nil {
			return nil, err
		}
		if market.ID == 0 {
			continue
		}

		price, err := s.priceService.GetUnderlyingPrice(ctx, market)
		if err != nil {
			return nil, err
		}

		factor := market.EffectiveCollateralFactor(account.EModeID, threshold)

		supply, err := s.supplyStore.Find(ctx, userID, market.CTokenAssetID)
		if err != nil {
			return nil, err
		}

		tokens := supply.Collaterals
		if hypo != nil && hypo.AssetID == market.AssetID && hypo.RedeemTokens.IsPositive() {
			tokens = tokens.Sub(hypo.RedeemTokens)
		}

		value := tokens.Mul(market.ExchangeRate).Mul(price).Mul(factor)
		sumCollateral = sumCollateral.Add(value)
	}

	borrows, err := s.borrowStore.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	sumBorrow := decimal.Zero
	for _, borrow := range borrows {
		if !borrow.Principal.IsPositive() {
			continue
		}

		market, err := s.marketStore.Find(ctx, borrow.AssetID)
		if err != nil {
			return nil, err
		}
		if market.ID == 0 {
			continue
		}

		price, err := s.priceService.GetUnderlyingPrice(ctx, market)
		if err != nil {
			return nil, err
		}

		balance := lever.BorrowBalance(borrow, market)
		sumBorrow = sumBorrow.Add(balance.Mul(price).Mul(market.BorrowFactor))
	}

	if hypo != nil && hypo.BorrowAmount.IsPositive() {
		market, err := s.marketStore.Find(ctx, hypo.AssetID)
		if err != nil {
			return nil, err
		}
		if market.ID == 0 {
			return nil, core.ErrMarketNotFound
		}

		price, err := s.priceService.GetUnderlyingPrice(ctx, market)
		if err != nil {
			return nil, err
		}

		sumBorrow = sumBorrow.Add(hypo.BorrowAmount.Mul(price).Mul(market.BorrowFactor))
	}

	equity := &core.AccountEquity{
		SumCollateral: sumCollateral,
		SumBorrow:     sumBorrow,
		Collateral:    decimal.Zero,
		Shortfall:     decimal.Zero,
	}
	if sumCollateral.GreaterThanOrEqual(sumBorrow) {
		equity.Collateral = sumCollateral.Sub(sumBorrow)
	} else {
		equity.Shortfall = sumBorrow.Sub(sumCollateral)
	}

	return equity, nil
}

func (s *accountService) EnterMarkets(ctx context.Context, userID string, assetIDs []string) ([]bool, error) {
	log := logger.FromContext(ctx).WithField("service", "account")

	account, err := s.ensureAccount(ctx, userID)
	if err != nil {
		return nil, err
	}

	results := make([]bool, len(assetIDs))
	for idx, assetID := range assetIDs {
		ok, err := s.enterMarket(ctx, account, assetID)
		if err != nil {
			return nil, err
		}

		if ok {
			log.WithField("asset_id", assetID).Infoln("market entered")
		}
		results[idx] = ok
	}

	return results, nil
}

func (s *accountService) enterMarket(ctx context.Context, account *core.Account, assetID string) (bool, error) {
	market, err := s.marketStore.Find(ctx, assetID)
	if err != nil {
		return false, err
	}
	// entering a non-listed market is a no-op, not a fault
	if market.ID == 0 {
		return false, nil
	}

	membership, err := s.accountStore.FindMembership(ctx, account.UserID, assetID)
	if err != nil {
		return false, err
	}
	if membership.ID > 0 {
		return false, nil
	}

	if account.EModeID != 0 && market.EModeID != 0 && market.EModeID != account.EModeID {
		return false, nil
	}

	entered, err := s.enteredMarkets(ctx, account.UserID)
	if err != nil {
		return false, err
	}

	// at most one isolated collateral, never mixed with any other collateral
	if market.IsIsolated() && len(entered) > 0 {
		return false, nil
	}
	for _, m := range entered {
		if m.IsIsolated() {
			return false, nil
		}
	}

	if err := s.accountStore.EnterMarket(ctx, account.UserID, assetID); err != nil {
		return false, err
	}

	extra := core.NewFlowExtra()
	extra.Put("asset_id", assetID)
	if err := s.flowStore.Create(ctx, &core.Flow{
		TraceID: uuidutil.New(),
		UserID:  account.UserID,
		AssetID: assetID,
		Action:  core.ActionTypeMarketEntered,
		Data:    extra.Format(),
	}); err != nil {
		return false, err
	}

	return true, nil
}

func (s *accountService) ExitMarkets(ctx context.Context, userID string, assetIDs []string) ([]bool, error) {
	log := logger.FromContext(ctx).WithField("service", "account")

	results := make([]bool, len(assetIDs))
	for idx, assetID := range assetIDs {
		membership, err := s.accountStore.FindMembership(ctx, userID, assetID)
		if err != nil {
			return nil, err
		}
		// exiting a non-entered market is a no-op
		if membership.ID == 0 {
			continue
		}

		market, err := s.marketStore.Find(ctx, assetID)
		if err != nil {
			return nil, err
		}
		if market.ID == 0 {
			continue
		}

		borrow, err := s.borrowStore.Find(ctx, userID, assetID)
		if err != nil {
			return nil, err
		}
		if err := lever.Require(!borrow.Principal.IsPositive(), "account/exit-with-borrow"); err != nil {
			log.WithError(err).Infoln("exit denied")
			return nil, core.ErrExitNotAllowed
		}

		supply, err := s.supplyStore.Find(ctx, userID, market.CTokenAssetID)
		if err != nil {
			return nil, err
		}

		if supply.Collaterals.IsPositive() {
			equity, err := s.CalcAccountEquity(ctx, userID, core.EquityBorrowLimit, &core.Hypothetical{
				AssetID:      assetID,
				RedeemTokens: supply.Collaterals,
			})
			if err != nil {
				return nil, err
			}
			if err := lever.Require(equity.Shortfall.IsZero(), "account/exit-shortfall"); err != nil {
				log.WithError(err).Infoln("exit denied")
				return nil, core.ErrExitNotAllowed
			}
		}

		if err := s.accountStore.ExitMarket(ctx, userID, assetID); err != nil {
			return nil, err
		}

		extra := core.NewFlowExtra()
		extra.Put("asset_id", assetID)
		if err := s.flowStore.Create(ctx, &core.Flow{
			TraceID: uuidutil.New(),
			UserID:  userID,
			AssetID: assetID,
			Action:  core.ActionTypeMarketExited,
			Data:    extra.Format(),
		}); err != nil {
			return nil, err
		}

		results[idx] = true
	}

	return results, nil
}

func (s *accountService) SetAccountEMode(ctx context.Context, userID string, emodeID int64) error {
	account, err := s.ensureAccount(ctx, userID)
	if err != nil {
		return err
	}

	if account.EModeID == emodeID {
		return nil
	}

	if emodeID != 0 {
		category, err := s.emodeStore.Find(ctx, emodeID)
		if err != nil {
			return err
		}
		if category.ID == 0 {
			return core.ErrInvalidParameter
		}

		entered, err := s.enteredMarkets(ctx, userID)
		if err != nil {
			return err
		}

		borrows, err := s.borrowStore.FindByUser(ctx, userID)
		if err != nil {
			return err
		}
		for _, borrow := range borrows {
			if !borrow.Principal.IsPositive() {
				continue
			}
			market, err := s.marketStore.Find(ctx, borrow.AssetID)
			if err != nil {
				return err
			}
			if market.ID > 0 {
				entered = append(entered, market)
			}
		}

		// cross-eMode assets with no category stay at default parameters
		for _, market := range entered {
			if market.EModeID != 0 && market.EModeID != emodeID {
				return core.ErrEModeMismatch
			}
		}
	}

	old := account.EModeID
	account.EModeID = emodeID
	if err := s.accountStore.Update(ctx, account, account.Version); err != nil {
		return err
	}

	extra := core.NewFlowExtra()
	extra.Put("old_emode_id", old)
	extra.Put("new_emode_id", emodeID)
	return s.flowStore.Create(ctx, &core.Flow{
		TraceID: uuidutil.New(),
		UserID:  userID,
		Action:  core.ActionTypeEModeChanged,
		Data:    extra.Format(),
	})
}

func (s *accountService) HasBorrows(ctx context.Context, userID string) (bool, error) {
	borrows, err := s.borrowStore.FindByUser(ctx, userID)
	if err != nil {
		return false, err
	}

	for _, b := range borrows {
		if b.Principal.IsPositive() {
			return true, nil
		}
	}

	return false, nil
}

func (s *accountService) IsolatedCollateral(ctx context.Context, userID string) (*core.Market, error) {
	entered, err := s.enteredMarkets(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, market := range entered {
		if market.IsIsolated() {
			return market, nil
		}
	}

	return nil, nil
}

func (s *accountService) enteredMarkets(ctx context.Context, userID string) ([]*core.Market, error) {
	memberships, err := s.accountStore.Memberships(ctx, userID)
	if err != nil {
		return nil, err
	}

	markets := make([]*core.Market, 0, len(memberships))
	for _, m := range memberships {
		market, err := s.marketStore.Find(ctx, m.AssetID)
		if err != nil {
			return nil, err
		}
		if market.ID > 0 {
			markets = append(markets, market)
		}
	}

	return markets, nil
}

func (s *accountService) ensureAccount(ctx context.Context, userID string) (*core.Account, error) {
	account, err := s.accountStore.Find(ctx, userID)
	if err != nil {
		return nil, err
	}

	if account.ID == 0 {
		account = &core.Account{UserID: userID}
		if err := s.accountStore.Save(ctx, account); err != nil {
			return nil, err
		}
	}

	return account, nil
}
