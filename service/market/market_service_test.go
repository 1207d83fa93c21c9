package market

import (
	"context"
	"testing"
	"time"

	"lever/core"
	"lever/service/oracle"
	"lever/service/servicetest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const admin = "admin-user"

func newService(markets *servicetest.MarketStore, prices *servicetest.PriceStore) core.IMarketService {
	system := &core.System{
		Admins:                     []string{admin},
		CloseFactor:                core.DefaultCloseFactor,
		LiquidationIncentive:       core.DefaultLiquidationIncentive,
		LiquidationThresholdMargin: core.DefaultLiquidationThresholdMargin,
	}
	return New(system, markets, servicetest.NewFlowStore(), oracle.New(prices, 0))
}

func listedMarket(ctx context.Context, t *testing.T, markets *servicetest.MarketStore) *core.Market {
	t.Helper()

	market := &core.Market{
		AssetID:              "btc",
		Symbol:               "BTC",
		CTokenAssetID:        "cbtc",
		Price:                decimal.New(1, 0),
		PriceUpdatedAt:       time.Now(),
		ExchangeRate:         decimal.New(1, 0),
		BorrowIndex:          decimal.New(1, 0),
		CollateralFactor:     decimal.NewFromFloat(0.7),
		BorrowFactor:         decimal.New(1, 0),
		LiquidationThreshold: decimal.NewFromFloat(0.8),
	}
	require.Nil(t, markets.Create(ctx, market))
	return market
}

func TestListMarket(t *testing.T) {
	ctx := context.Background()
	markets := servicetest.NewMarketStore()
	prices := servicetest.NewPriceStore()
	service := newService(markets, prices)

	req := core.AddMarketReq{
		Symbol:           "BTC",
		AssetID:          "btc",
		CTokenAssetID:    "cbtc",
		CollateralFactor: decimal.NewFromFloat(0.7),
		BorrowFactor:     decimal.New(1, 0),
	}

	_, err := service.ListMarket(ctx, "nobody", req)
	assert.Equal(t, core.ErrOperationForbidden, err)

	// the feed has not quoted the asset yet, so the listing is refused
	_, err = service.ListMarket(ctx, admin, req)
	assert.Equal(t, core.ErrInvalidPrice, err)

	// once the feed quotes it, the same request goes through
	require.Nil(t, prices.Save(ctx, "btc", decimal.New(50000, 0), time.Now()))
	market, err := service.ListMarket(ctx, admin, req)
	require.Nil(t, err)
	assert.Equal(t, "50000", market.Price.String())
	assert.False(t, market.PriceUpdatedAt.IsZero())
	assert.Equal(t, "0.75", market.LiquidationThreshold.String())

	stored, err := markets.Find(ctx, "btc")
	require.Nil(t, err)
	assert.NotZero(t, stored.ID)
	assert.Equal(t, "1", stored.ExchangeRate.String())
}

func TestListMarketValidation(t *testing.T) {
	ctx := context.Background()
	service := newService(servicetest.NewMarketStore(), servicetest.NewPriceStore())

	base := core.AddMarketReq{
		Symbol:           "BTC",
		AssetID:          "btc",
		CTokenAssetID:    "cbtc",
		CollateralFactor: decimal.NewFromFloat(0.7),
		BorrowFactor:     decimal.New(1, 0),
	}

	req := base
	req.CTokenAssetID = ""
	_, err := service.ListMarket(ctx, admin, req)
	assert.Equal(t, core.ErrMarketNotSupported, err)

	req = base
	req.CTokenAssetID = req.AssetID
	_, err = service.ListMarket(ctx, admin, req)
	assert.Equal(t, core.ErrMarketNotSupported, err)

	req = base
	req.CollateralFactor = decimal.NewFromFloat(1.1)
	_, err = service.ListMarket(ctx, admin, req)
	assert.Equal(t, core.ErrInvalidParameter, err)

	req = base
	req.BorrowFactor = decimal.Zero
	_, err = service.ListMarket(ctx, admin, req)
	assert.Equal(t, core.ErrInvalidParameter, err)

	req = base
	req.SupplyCap = decimal.New(-1, 0)
	_, err = service.ListMarket(ctx, admin, req)
	assert.Equal(t, core.ErrInvalidParameter, err)
}

func TestListMarketAlreadyListed(t *testing.T) {
	ctx := context.Background()
	markets := servicetest.NewMarketStore()
	service := newService(markets, servicetest.NewPriceStore())
	listedMarket(ctx, t, markets)

	_, err := service.ListMarket(ctx, admin, core.AddMarketReq{
		Symbol:           "BTC",
		AssetID:          "btc",
		CTokenAssetID:    "cbtc",
		CollateralFactor: decimal.NewFromFloat(0.7),
		BorrowFactor:     decimal.New(1, 0),
	})
	assert.Equal(t, core.ErrMarketAlreadyListed, err)
}

func TestSetCollateralFactor(t *testing.T) {
	ctx := context.Background()
	markets := servicetest.NewMarketStore()
	service := newService(markets, servicetest.NewPriceStore())
	listedMarket(ctx, t, markets)

	assert.Equal(t, core.ErrOperationForbidden, service.SetCollateralFactor(ctx, "nobody", "btc", decimal.NewFromFloat(0.5)))
	assert.Equal(t, core.ErrMarketNotFound, service.SetCollateralFactor(ctx, admin, "eth", decimal.NewFromFloat(0.5)))

	// cannot exceed the liquidation threshold
	err := service.SetCollateralFactor(ctx, admin, "btc", decimal.NewFromFloat(0.85))
	assert.Equal(t, core.ErrInvalidParameter, err)

	require.Nil(t, service.SetCollateralFactor(ctx, admin, "btc", decimal.NewFromFloat(0.75)))
	market, err := markets.Find(ctx, "btc")
	require.Nil(t, err)
	assert.Equal(t, "0.75", market.CollateralFactor.String())
	assert.Equal(t, int64(1), market.Version)
}

func TestSetLiquidationThreshold(t *testing.T) {
	ctx := context.Background()
	markets := servicetest.NewMarketStore()
	service := newService(markets, servicetest.NewPriceStore())
	listedMarket(ctx, t, markets)

	// lowering under the collateral factor must fail, never clamp
	err := service.SetLiquidationThreshold(ctx, admin, "btc", decimal.NewFromFloat(0.6))
	assert.Equal(t, core.ErrInvalidParameter, err)

	err = service.SetLiquidationThreshold(ctx, admin, "btc", decimal.NewFromFloat(1.1))
	assert.Equal(t, core.ErrInvalidParameter, err)

	require.Nil(t, service.SetLiquidationThreshold(ctx, admin, "btc", decimal.NewFromFloat(0.9)))
	market, err := markets.Find(ctx, "btc")
	require.Nil(t, err)
	assert.Equal(t, "0.9", market.LiquidationThreshold.String())
}

func TestSetDebtCeiling(t *testing.T) {
	ctx := context.Background()
	markets := servicetest.NewMarketStore()
	service := newService(markets, servicetest.NewPriceStore())
	listedMarket(ctx, t, markets)

	require.Nil(t, service.SetDebtCeiling(ctx, admin, "btc", decimal.New(1000, 0)))
	market, err := markets.Find(ctx, "btc")
	require.Nil(t, err)
	assert.True(t, market.IsIsolated())

	// dropping the ceiling to zero retires isolation for good
	require.Nil(t, service.SetDebtCeiling(ctx, admin, "btc", decimal.Zero))
	market, err = markets.Find(ctx, "btc")
	require.Nil(t, err)
	assert.False(t, market.IsIsolated())
	assert.True(t, market.IsolationRetired)

	err = service.SetDebtCeiling(ctx, admin, "btc", decimal.New(500, 0))
	assert.Equal(t, core.ErrInvalidParameter, err)
}

func TestSetMarketEMode(t *testing.T) {
	ctx := context.Background()
	markets := servicetest.NewMarketStore()
	service := newService(markets, servicetest.NewPriceStore())
	listedMarket(ctx, t, markets)

	err := service.SetMarketEMode(ctx, admin, "btc", 1, decimal.NewFromFloat(0.99), decimal.NewFromFloat(0.97))
	assert.Equal(t, core.ErrInvalidParameter, err)

	require.Nil(t, service.SetMarketEMode(ctx, admin, "btc", 1, decimal.NewFromFloat(0.9), decimal.NewFromFloat(0.95)))
	market, err := markets.Find(ctx, "btc")
	require.Nil(t, err)
	assert.Equal(t, int64(1), market.EModeID)
	assert.Equal(t, "0.9", market.EModeLTV.String())

	// clearing the category resets the overrides
	require.Nil(t, service.SetMarketEMode(ctx, admin, "btc", 0, decimal.Zero, decimal.Zero))
	market, err = markets.Find(ctx, "btc")
	require.Nil(t, err)
	assert.Equal(t, int64(0), market.EModeID)
	assert.True(t, market.EModeLTV.IsZero())
	assert.True(t, market.EModeLiquidationThreshold.IsZero())
}
