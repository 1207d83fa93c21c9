package market

import (
	"context"

	"lever/core"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
)

type marketStore struct {
	db *db.DB
}

// New new market store
func New(db *db.DB) core.IMarketStore {
	return &marketStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Market{})
		if err := tx.AutoMigrate(core.Market{}).Error; err != nil {
			return err
		}

		if err := tx.AddUniqueIndex("idx_markets_asset_id", "asset_id").Error; err != nil {
			return err
		}

		if err := tx.AddUniqueIndex("idx_markets_ctoken_asset_id", "c_token_asset_id").Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *marketStore) Create(ctx context.Context, market *core.Market) error {
	return s.db.Update().Where("asset_id = ?", market.AssetID).FirstOrCreate(market).Error
}

func (s *marketStore) Find(ctx context.Context, assetID string) (*core.Market, error) {
	var market core.Market
	err := s.db.View().Where("asset_id = ?", assetID).First(&market).Error
	if store.IsErrNotFound(err) {
		return &core.Market{}, nil
	}
	return &market, err
}

func (s *marketStore) FindBySymbol(ctx context.Context, symbol string) (*core.Market, error) {
	var market core.Market
	err := s.db.View().Where("symbol = ?", symbol).First(&market).Error
	if store.IsErrNotFound(err) {
		return &core.Market{}, nil
	}
	return &market, err
}

func (s *marketStore) FindByCToken(ctx context.Context, ctokenAssetID string) (*core.Market, error) {
	var market core.Market
	err := s.db.View().Where("c_token_asset_id = ?", ctokenAssetID).First(&market).Error
	if store.IsErrNotFound(err) {
		return &core.Market{}, nil
	}
	return &market, err
}

func (s *marketStore) All(ctx context.Context) ([]*core.Market, error) {
	var markets []*core.Market
	if err := s.db.View().Find(&markets).Error; err != nil {
		return nil, err
	}
	return markets, nil
}

func (s *marketStore) AllAsMap(ctx context.Context) (map[string]*core.Market, error) {
	markets, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	maps := make(map[string]*core.Market, len(markets))
	for _, m := range markets {
		maps[m.AssetID] = m
	}

	return maps, nil
}

// zero values must update too, pause flags and caps go back and forth
func toUpdateParams(market *core.Market) map[string]interface{} {
	return map[string]interface{}{
		"total_supply":                 market.TotalSupply,
		"total_borrows":                market.TotalBorrows,
		"exchange_rate":                market.ExchangeRate,
		"borrow_index":                 market.BorrowIndex,
		"price":                        market.Price,
		"price_updated_at":             market.PriceUpdatedAt,
		"collateral_factor":            market.CollateralFactor,
		"borrow_factor":                market.BorrowFactor,
		"liquidation_threshold":        market.LiquidationThreshold,
		"supply_cap":                   market.SupplyCap,
		"borrow_cap":                   market.BorrowCap,
		"distribution_factor":          market.DistributionFactor,
		"mint_paused":                  market.MintPaused,
		"redeem_paused":                market.RedeemPaused,
		"borrow_paused":                market.BorrowPaused,
		"e_mode_id":                    market.EModeID,
		"e_mode_ltv":                   market.EModeLTV,
		"e_mode_liquidation_threshold": market.EModeLiquidationThreshold,
		"debt_ceiling":                 market.DebtCeiling,
		"current_debt":                 market.CurrentDebt,
		"borrowable_in_isolation":      market.BorrowableInIsolation,
		"isolation_retired":            market.IsolationRetired,
	}
}

func (s *marketStore) Update(ctx context.Context, market *core.Market, version int64) error {
	updates := toUpdateParams(market)
	updates["version"] = version + 1

	tx := s.db.Update().Model(core.Market{}).
		Where("asset_id = ? and version = ?", market.AssetID, version).
		Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	market.Version = version + 1
	return nil
}
