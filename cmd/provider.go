package cmd

import (
	"time"

	"lever/core"
	accountservice "lever/service/account"
	distributionservice "lever/service/distribution"
	liquidationservice "lever/service/liquidation"
	marketservice "lever/service/market"
	oracleservice "lever/service/oracle"
	policyservice "lever/service/policy"
	treasuryservice "lever/service/treasury"
	"lever/store/account"
	"lever/store/borrow"
	"lever/store/distribution"
	"lever/store/emode"
	"lever/store/flow"
	"lever/store/market"
	"lever/store/price"
	"lever/store/reward"
	"lever/store/supply"
	"lever/store/vault"

	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	propertystore "github.com/fox-one/pkg/store/property"
)

func provideDatabase() *db.DB {
	return db.MustOpen(cfg.DB)
}

func provideSystem() *core.System {
	return &core.System{
		Admins:                     cfg.Admins,
		Guardian:                   cfg.Guardian,
		CloseFactor:                cfg.Risk.CloseFactor,
		LiquidationIncentive:       cfg.Risk.LiquidationIncentive,
		LiquidationThresholdMargin: cfg.Risk.LiquidationThresholdMargin,
		RewardAssetID:              cfg.App.RewardAssetID,
		Genesis:                    cfg.App.Genesis,
		Version:                    rootCmd.Version,
	}
}

// ---------------store-----------------------------------------

func providePropertyStore(db *db.DB) property.Store {
	return propertystore.New(db)
}

func provideMarketStore(db *db.DB) core.IMarketStore {
	return market.New(db)
}

func provideAccountStore(db *db.DB) core.IAccountStore {
	return account.Cache(account.New(db))
}

func provideSupplyStore(db *db.DB) core.ISupplyStore {
	return supply.New(db)
}

func provideBorrowStore(db *db.DB) core.IBorrowStore {
	return borrow.New(db)
}

func provideEModeStore(db *db.DB) core.IEModeStore {
	return emode.New(db)
}

func provideDistributionStore(db *db.DB) core.IDistributionStore {
	return distribution.New(db)
}

func provideRewardStore(db *db.DB) core.IRewardStore {
	return reward.New(db)
}

func provideVaultStore(db *db.DB) core.IVaultStore {
	return vault.New(db)
}

func provideFlowStore(db *db.DB) core.IFlowStore {
	return flow.New(db)
}

func providePriceStore(db *db.DB) core.IPriceStore {
	return price.New(db)
}

// ------------------service------------------------------------

func providePriceService(db *db.DB) core.IPriceOracleService {
	return oracleservice.New(providePriceStore(db), time.Duration(cfg.PriceOracle.MaxAge)*time.Second)
}

func provideTreasuryService(vaultStore core.IVaultStore) core.ITreasuryService {
	return treasuryservice.New(vaultStore)
}

func provideMarketService(
	system *core.System,
	marketStore core.IMarketStore,
	flowStore core.IFlowStore,
	priceService core.IPriceOracleService,
) core.IMarketService {
	return marketservice.New(system, marketStore, flowStore, priceService)
}

func provideAccountService(
	marketStore core.IMarketStore,
	supplyStore core.ISupplyStore,
	borrowStore core.IBorrowStore,
	accountStore core.IAccountStore,
	emodeStore core.IEModeStore,
	flowStore core.IFlowStore,
	priceService core.IPriceOracleService,
) core.IAccountService {
	return accountservice.New(marketStore, supplyStore, borrowStore, accountStore, emodeStore, flowStore, priceService)
}

func provideLiquidationService(
	system *core.System,
	marketStore core.IMarketStore,
	borrowStore core.IBorrowStore,
	accountStore core.IAccountStore,
	emodeStore core.IEModeStore,
	accountService core.IAccountService,
	priceService core.IPriceOracleService,
) core.ILiquidationService {
	return liquidationservice.New(system, marketStore, borrowStore, accountStore, emodeStore, accountService, priceService)
}

func provideDistributionService(
	system *core.System,
	propertyStore property.Store,
	marketStore core.IMarketStore,
	supplyStore core.ISupplyStore,
	borrowStore core.IBorrowStore,
	distributionStore core.IDistributionStore,
	rewardStore core.IRewardStore,
	flowStore core.IFlowStore,
	treasuryService core.ITreasuryService,
) core.IDistributionService {
	return distributionservice.New(system, propertyStore, marketStore, supplyStore, borrowStore, distributionStore, rewardStore, flowStore, treasuryService)
}

func providePolicyService(
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
	return policyservice.New(system, propertyStore, marketStore, borrowStore, accountStore, flowStore, accountService, liquidationService, distributionService, priceService)
}
