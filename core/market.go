package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// MarketAction per-market pausable action
type MarketAction int

const (
	// MarketActionMint mint
	MarketActionMint MarketAction = iota + 1
	// MarketActionRedeem redeem
	MarketActionRedeem
	// MarketActionBorrow borrow
	MarketActionBorrow
)

// Market market info
type Market struct {
	ID            uint64 `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	AssetID       string `sql:"size:36;unique_index:asset_idx" json:"asset_id"`
	Symbol        string `sql:"size:20;unique_index:symbol_idx" json:"symbol"`
	CTokenAssetID string `sql:"size:36;unique_index:ctoken_asset_idx" json:"ctoken_asset_id"`
	// ctokens minted so far, maintained by the market's own bookkeeping
	TotalSupply  decimal.Decimal `sql:"type:decimal(20,8)" json:"total_supply"`
	TotalBorrows decimal.Decimal `sql:"type:decimal(20,8)" json:"total_borrows"`
	ExchangeRate decimal.Decimal `sql:"type:decimal(20,16);default:1" json:"exchange_rate"`
	BorrowIndex  decimal.Decimal `sql:"type:decimal(28,16);default:1" json:"borrow_index"`
	// last oracle price, refreshed by the pricesync worker
	Price          decimal.Decimal `sql:"type:decimal(20,8)" json:"price"`
	PriceUpdatedAt time.Time       `json:"price_updated_at"`

	// fraction of supplied value usable as borrowing power, [0, 1]
	CollateralFactor decimal.Decimal `sql:"type:decimal(20,8)" json:"collateral_factor"`
	// debt weight multiplier, (0, 1]
	BorrowFactor decimal.Decimal `sql:"type:decimal(20,8);default:1" json:"borrow_factor"`
	// liquidation eligibility bound, >= collateral factor
	LiquidationThreshold decimal.Decimal `sql:"type:decimal(20,8)" json:"liquidation_threshold"`
	// 0 disables the cap
	SupplyCap decimal.Decimal `sql:"type:decimal(20,8);default:0" json:"supply_cap"`
	BorrowCap decimal.Decimal `sql:"type:decimal(20,8);default:0" json:"borrow_cap"`
	// reward weight of this market inside the distribution engine
	DistributionFactor decimal.Decimal `sql:"type:decimal(20,8);default:1" json:"distribution_factor"`

	MintPaused   bool `sql:"default:0" json:"mint_paused"`
	RedeemPaused bool `sql:"default:0" json:"redeem_paused"`
	BorrowPaused bool `sql:"default:0" json:"borrow_paused"`

	// efficiency mode, 0 = none
	EModeID                   int64           `sql:"default:0" json:"emode_id"`
	EModeLTV                  decimal.Decimal `sql:"type:decimal(20,8)" json:"emode_ltv"`
	EModeLiquidationThreshold decimal.Decimal `sql:"type:decimal(20,8)" json:"emode_liquidation_threshold"`

	// isolation mode, 0 = not isolated
	DebtCeiling           decimal.Decimal `sql:"type:decimal(20,8);default:0" json:"debt_ceiling"`
	CurrentDebt           decimal.Decimal `sql:"type:decimal(20,8);default:0" json:"current_debt"`
	BorrowableInIsolation bool            `sql:"default:0" json:"borrowable_in_isolation"`
	// set once the market leaves isolation; it can never re-enter
	IsolationRetired bool `sql:"default:0" json:"isolation_retired"`

	Version   int64     `sql:"default:0" json:"version"`
	CreatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// IsIsolated isolated collateral carries a nonzero debt ceiling
func (m *Market) IsIsolated() bool {
	return m.DebtCeiling.IsPositive()
}

// HasValidPrice reports whether the oracle price is usable
func (m *Market) HasValidPrice(now time.Time, maxAge time.Duration) bool {
	if !m.Price.IsPositive() {
		return false
	}
	if maxAge > 0 && now.Sub(m.PriceUpdatedAt) > maxAge {
		return false
	}
	return true
}

// ActionPaused per-market pause flag for the action
func (m *Market) ActionPaused(action MarketAction) bool {
	switch action {
	case MarketActionMint:
		return m.MintPaused
	case MarketActionRedeem:
		return m.RedeemPaused
	case MarketActionBorrow:
		return m.BorrowPaused
	}
	return false
}

// EffectiveCollateralFactor selects the collateral factor (or, for
// threshold checks, the liquidation threshold), honoring the account's
// efficiency mode when it matches the market's.
func (m *Market) EffectiveCollateralFactor(accountEMode int64, threshold bool) decimal.Decimal {
	if accountEMode != 0 && m.EModeID == accountEMode {
		if threshold {
			return m.EModeLiquidationThreshold
		}
		return m.EModeLTV
	}
	if threshold {
		return m.LiquidationThreshold
	}
	return m.CollateralFactor
}

// IMarketStore market store interface
type IMarketStore interface {
	Create(ctx context.Context, market *Market) error
	Find(ctx context.Context, assetID string) (*Market, error)
	FindBySymbol(ctx context.Context, symbol string) (*Market, error)
	FindByCToken(ctx context.Context, ctokenAssetID string) (*Market, error)
	All(ctx context.Context) ([]*Market, error)
	AllAsMap(ctx context.Context) (map[string]*Market, error)
	Update(ctx context.Context, market *Market, version int64) error
}

// IMarketService market registry & risk parameter store
type IMarketService interface {
	ListMarket(ctx context.Context, caller string, req AddMarketReq) (*Market, error)
	SetCollateralFactor(ctx context.Context, caller, assetID string, value decimal.Decimal) error
	SetBorrowFactor(ctx context.Context, caller, assetID string, value decimal.Decimal) error
	SetLiquidationThreshold(ctx context.Context, caller, assetID string, value decimal.Decimal) error
	SetSupplyCap(ctx context.Context, caller, assetID string, value decimal.Decimal) error
	SetBorrowCap(ctx context.Context, caller, assetID string, value decimal.Decimal) error
	SetDebtCeiling(ctx context.Context, caller, assetID string, value decimal.Decimal) error
	SetBorrowableInIsolation(ctx context.Context, caller, assetID string, borrowable bool) error
	SetMarketEMode(ctx context.Context, caller, assetID string, emodeID int64, ltv, threshold decimal.Decimal) error
}

// AddMarketReq add market request
type AddMarketReq struct {
	Symbol             string          `json:"symbol,omitempty"`
	AssetID            string          `json:"asset_id,omitempty"`
	CTokenAssetID      string          `json:"ctoken_asset_id,omitempty"`
	CollateralFactor   decimal.Decimal `json:"collateral_factor,omitempty"`
	BorrowFactor       decimal.Decimal `json:"borrow_factor,omitempty"`
	SupplyCap          decimal.Decimal `json:"supply_cap,omitempty"`
	BorrowCap          decimal.Decimal `json:"borrow_cap,omitempty"`
	DistributionFactor decimal.Decimal `json:"distribution_factor,omitempty"`
}
