package market

import (
	"context"
	"time"

	"lever/core"
	"lever/pkg/lever"

	"github.com/fox-one/pkg/logger"
	uuidutil "github.com/fox-one/pkg/uuid"
	"github.com/shopspring/decimal"
)

var one = decimal.New(1, 0)

type marketService struct {
	system       *core.System
	marketStore  core.IMarketStore
	flowStore    core.IFlowStore
	priceService core.IPriceOracleService
}

// New new market service
func New(
	system *core.System,
	marketStore core.IMarketStore,
	flowStore core.IFlowStore,
	priceService core.IPriceOracleService,
) core.IMarketService {
	return &marketService{
		system:       system,
		marketStore:  marketStore,
		flowStore:    flowStore,
		priceService: priceService,
	}
}

// ListMarket registers a new market. The candidate must expose a complete
// identity, carry a valid oracle price and sane factors; the liquidation
// threshold defaults to the collateral factor plus the protocol margin.
func (s *marketService) ListMarket(ctx context.Context, caller string, req core.AddMarketReq) (*core.Market, error) {
	log := logger.FromContext(ctx).WithField("service", "market")

	if !s.system.IsAdmin(caller) {
		return nil, core.ErrOperationForbidden
	}

	existing, err := s.marketStore.Find(ctx, req.AssetID)
	if err != nil {
		return nil, err
	}
	if err := lever.Require(existing.ID == 0, "market/already-listed"); err != nil {
		log.WithError(err).Infoln("list denied")
		return nil, core.ErrMarketAlreadyListed
	}

	if err := lever.Require(supported(req), "market/not-supported"); err != nil {
		log.WithError(err).Infoln("list denied")
		return nil, core.ErrMarketNotSupported
	}

	if req.CollateralFactor.IsNegative() || req.CollateralFactor.GreaterThan(one) {
		return nil, core.ErrInvalidParameter
	}
	if !req.BorrowFactor.IsPositive() || req.BorrowFactor.GreaterThan(one) {
		return nil, core.ErrInvalidParameter
	}
	if req.SupplyCap.IsNegative() || req.BorrowCap.IsNegative() {
		return nil, core.ErrInvalidParameter
	}

	threshold := req.CollateralFactor.Add(s.system.LiquidationThresholdMargin)
	if threshold.GreaterThan(one) {
		threshold = one
	}

	// the candidate must already be quoted by the feed
	price, err := s.priceService.GetPrice(ctx, req.AssetID)
	if err != nil {
		log.WithError(err).Infoln("list denied: no valid price")
		return nil, err
	}

	market := &core.Market{
		AssetID:              req.AssetID,
		Symbol:               req.Symbol,
		CTokenAssetID:        req.CTokenAssetID,
		ExchangeRate:         one,
		BorrowIndex:          one,
		Price:                price,
		PriceUpdatedAt:       time.Now(),
		CollateralFactor:     req.CollateralFactor,
		BorrowFactor:         req.BorrowFactor,
		LiquidationThreshold: threshold,
		SupplyCap:            req.SupplyCap,
		BorrowCap:            req.BorrowCap,
		DistributionFactor:   req.DistributionFactor,
	}

	if err := s.marketStore.Create(ctx, market); err != nil {
		return nil, err
	}

	extra := core.NewFlowExtra()
	extra.Put("asset_id", market.AssetID)
	extra.Put("symbol", market.Symbol)
	extra.Put("collateral_factor", market.CollateralFactor)
	extra.Put("borrow_factor", market.BorrowFactor)
	extra.Put("liquidation_threshold", market.LiquidationThreshold)
	if err := s.flowStore.Create(ctx, &core.Flow{
		TraceID: uuidutil.New(),
		UserID:  caller,
		AssetID: market.AssetID,
		Action:  core.ActionTypeMarketAdded,
		Data:    extra.Format(),
	}); err != nil {
		return nil, err
	}

	log.WithField("asset_id", market.AssetID).Infoln("market listed")
	return market, nil
}

// supported is the "is a genuine market" capability check: the candidate must
// expose a complete identity before it may join the registry.
func supported(req core.AddMarketReq) bool {
	return req.AssetID != "" && req.CTokenAssetID != "" && req.Symbol != "" && req.AssetID != req.CTokenAssetID
}

func (s *marketService) SetCollateralFactor(ctx context.Context, caller, assetID string, value decimal.Decimal) error {
	return s.mutate(ctx, caller, assetID, "collateral_factor", func(m *core.Market) error {
		if value.IsNegative() || value.GreaterThan(m.LiquidationThreshold) {
			return core.ErrInvalidParameter
		}
		// collateral factor changes require a priced asset
		if _, err := s.priceService.GetUnderlyingPrice(ctx, m); err != nil {
			return err
		}

		m.CollateralFactor = value
		return nil
	})
}

func (s *marketService) SetBorrowFactor(ctx context.Context, caller, assetID string, value decimal.Decimal) error {
	return s.mutate(ctx, caller, assetID, "borrow_factor", func(m *core.Market) error {
		if !value.IsPositive() || value.GreaterThan(one) {
			return core.ErrInvalidParameter
		}

		m.BorrowFactor = value
		return nil
	})
}

func (s *marketService) SetLiquidationThreshold(ctx context.Context, caller, assetID string, value decimal.Decimal) error {
	return s.mutate(ctx, caller, assetID, "liquidation_threshold", func(m *core.Market) error {
		// never clamp: lowering below the collateral factor must fail
		if value.LessThan(m.CollateralFactor) || value.GreaterThan(one) {
			return core.ErrInvalidParameter
		}

		m.LiquidationThreshold = value
		return nil
	})
}

func (s *marketService) SetSupplyCap(ctx context.Context, caller, assetID string, value decimal.Decimal) error {
	return s.mutate(ctx, caller, assetID, "supply_cap", func(m *core.Market) error {
		if value.IsNegative() {
			return core.ErrInvalidParameter
		}

		m.SupplyCap = value
		return nil
	})
}

func (s *marketService) SetBorrowCap(ctx context.Context, caller, assetID string, value decimal.Decimal) error {
	return s.mutate(ctx, caller, assetID, "borrow_cap", func(m *core.Market) error {
		if value.IsNegative() {
			return core.ErrInvalidParameter
		}

		m.BorrowCap = value
		return nil
	})
}

func (s *marketService) SetDebtCeiling(ctx context.Context, caller, assetID string, value decimal.Decimal) error {
	return s.mutate(ctx, caller, assetID, "debt_ceiling", func(m *core.Market) error {
		if value.IsNegative() {
			return core.ErrInvalidParameter
		}
		// leaving isolation is one-directional
		if value.IsPositive() && m.IsolationRetired {
			return core.ErrInvalidParameter
		}

		if m.DebtCeiling.IsPositive() && value.IsZero() {
			m.IsolationRetired = true
		}
		m.DebtCeiling = value
		return nil
	})
}

func (s *marketService) SetBorrowableInIsolation(ctx context.Context, caller, assetID string, borrowable bool) error {
	return s.mutate(ctx, caller, assetID, "borrowable_in_isolation", func(m *core.Market) error {
		m.BorrowableInIsolation = borrowable
		return nil
	})
}

func (s *marketService) SetMarketEMode(ctx context.Context, caller, assetID string, emodeID int64, ltv, threshold decimal.Decimal) error {
	return s.mutate(ctx, caller, assetID, "emode", func(m *core.Market) error {
		if emodeID == 0 {
			m.EModeID = 0
			m.EModeLTV = decimal.Zero
			m.EModeLiquidationThreshold = decimal.Zero
			return nil
		}

		if !ltv.IsPositive() || ltv.GreaterThan(threshold) || threshold.GreaterThan(one) {
			return core.ErrInvalidParameter
		}

		m.EModeID = emodeID
		m.EModeLTV = ltv
		m.EModeLiquidationThreshold = threshold
		return nil
	})
}

func (s *marketService) mutate(ctx context.Context, caller, assetID, parameter string, apply func(m *core.Market) error) error {
	log := logger.FromContext(ctx).WithField("service", "market")

	if !s.system.IsAdmin(caller) {
		return core.ErrOperationForbidden
	}

	market, err := s.marketStore.Find(ctx, assetID)
	if err != nil {
		return err
	}
	if market.ID == 0 {
		return core.ErrMarketNotFound
	}

	extra := core.NewFlowExtra()
	extra.Put("parameter", parameter)
	extra.Put("old", snapshotParameter(market, parameter))

	if err := apply(market); err != nil {
		log.WithError(err).WithField("parameter", parameter).Infoln("setter denied")
		return err
	}

	if err := s.marketStore.Update(ctx, market, market.Version); err != nil {
		return err
	}

	extra.Put("new", snapshotParameter(market, parameter))
	return s.flowStore.Create(ctx, &core.Flow{
		TraceID: uuidutil.New(),
		UserID:  caller,
		AssetID: assetID,
		Action:  core.ActionTypeParameterChanged,
		Data:    extra.Format(),
	})
}

func snapshotParameter(m *core.Market, parameter string) interface{} {
	switch parameter {
	case "collateral_factor":
		return m.CollateralFactor
	case "borrow_factor":
		return m.BorrowFactor
	case "liquidation_threshold":
		return m.LiquidationThreshold
	case "supply_cap":
		return m.SupplyCap
	case "borrow_cap":
		return m.BorrowCap
	case "debt_ceiling":
		return m.DebtCeiling
	case "borrowable_in_isolation":
		return m.BorrowableInIsolation
	case "emode":
		return map[string]interface{}{
			"emode_id":  m.EModeID,
			"ltv":       m.EModeLTV,
			"threshold": m.EModeLiquidationThreshold,
		}
	}
	return nil
}
