package liquidation

import (
	"context"
	"testing"
	"time"

	"lever/core"
	"lever/service/account"
	"lever/service/oracle"
	"lever/service/servicetest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	markets  *servicetest.MarketStore
	borrows  *servicetest.BorrowStore
	supplies *servicetest.SupplyStore
	accounts *servicetest.AccountStore
	emodes   *servicetest.EModeStore
	service  core.ILiquidationService
}

func newEnv() *env {
	e := &env{
		markets:  servicetest.NewMarketStore(),
		borrows:  servicetest.NewBorrowStore(),
		supplies: servicetest.NewSupplyStore(),
		accounts: servicetest.NewAccountStore(),
		emodes:   servicetest.NewEModeStore(),
	}

	system := &core.System{
		CloseFactor:          core.DefaultCloseFactor,
		LiquidationIncentive: core.DefaultLiquidationIncentive,
	}
	prices := oracle.New(servicetest.NewPriceStore(), 0)
	accountz := account.New(e.markets, e.supplies, e.borrows, e.accounts, e.emodes, servicetest.NewFlowStore(), prices)
	e.service = New(system, e.markets, e.borrows, e.accounts, e.emodes, accountz, prices)
	return e
}

// seed lists a collateral market and a borrowed market and puts the
// borrower under water: 500 cBTC backing a 600 USD debt.
func (e *env) seed(ctx context.Context, t *testing.T) {
	t.Helper()

	require.Nil(t, e.markets.Create(ctx, &core.Market{
		AssetID:              "btc",
		Symbol:               "BTC",
		CTokenAssetID:        "cbtc",
		Price:                decimal.New(2, 0),
		PriceUpdatedAt:       time.Now(),
		ExchangeRate:         decimal.New(1, 0),
		BorrowIndex:          decimal.New(1, 0),
		BorrowFactor:         decimal.New(1, 0),
		CollateralFactor:     decimal.NewFromFloat(0.5),
		LiquidationThreshold: decimal.NewFromFloat(0.5),
	}))
	require.Nil(t, e.markets.Create(ctx, &core.Market{
		AssetID:        "usd",
		Symbol:         "USD",
		CTokenAssetID:  "cusd",
		Price:          decimal.New(1, 0),
		PriceUpdatedAt: time.Now(),
		ExchangeRate:   decimal.New(1, 0),
		BorrowIndex:    decimal.New(1, 0),
		BorrowFactor:   decimal.New(1, 0),
	}))

	require.Nil(t, e.accounts.Save(ctx, &core.Account{UserID: "borrower"}))
	require.Nil(t, e.accounts.EnterMarket(ctx, "borrower", "btc"))
	require.Nil(t, e.supplies.Save(ctx, &core.Supply{
		UserID:        "borrower",
		CTokenAssetID: "cbtc",
		Collaterals:   decimal.New(500, 0),
	}))
	require.Nil(t, e.borrows.Create(ctx, &core.Borrow{
		UserID:        "borrower",
		AssetID:       "usd",
		Principal:     decimal.New(600, 0),
		InterestIndex: decimal.New(1, 0),
	}))
}

func TestBeforeLiquidateBorrow(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	e.seed(ctx, t)

	err := e.service.BeforeLiquidateBorrow(ctx, "usd", "btc", "liquidator", "borrower", decimal.Zero)
	assert.Equal(t, core.ErrInvalidAmount, err)

	err = e.service.BeforeLiquidateBorrow(ctx, "eth", "btc", "liquidator", "borrower", decimal.New(1, 0))
	assert.Equal(t, core.ErrMarketNotFound, err)

	// default close factor 0.5 caps the repay at 300 of the 600 debt
	err = e.service.BeforeLiquidateBorrow(ctx, "usd", "btc", "liquidator", "borrower", decimal.New(301, 0))
	assert.Equal(t, core.ErrTooMuchRepay, err)

	err = e.service.BeforeLiquidateBorrow(ctx, "usd", "btc", "liquidator", "borrower", decimal.New(300, 0))
	assert.Nil(t, err)
}

func TestBeforeLiquidateBorrowNoShortfall(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	e.seed(ctx, t)

	// a healthy account with collateral and no debt cannot be liquidated
	require.Nil(t, e.accounts.Save(ctx, &core.Account{UserID: "healthy"}))
	require.Nil(t, e.accounts.EnterMarket(ctx, "healthy", "btc"))
	require.Nil(t, e.supplies.Save(ctx, &core.Supply{
		UserID:        "healthy",
		CTokenAssetID: "cbtc",
		Collaterals:   decimal.New(500, 0),
	}))

	err := e.service.BeforeLiquidateBorrow(ctx, "usd", "btc", "liquidator", "healthy", decimal.New(1, 0))
	assert.Equal(t, core.ErrNoShortfall, err)
}

func TestMaxRepay(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	e.seed(ctx, t)

	max, err := e.service.MaxRepay(ctx, "usd", "btc", "borrower")
	require.Nil(t, err)
	assert.Equal(t, "300", max.String())
}

func TestLiquidateCalculateSeizeTokens(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	e.seed(ctx, t)

	// 100 * 1 * 1.08 / 2 / 1 = 54
	seize, err := e.service.LiquidateCalculateSeizeTokens(ctx, "usd", "btc", "borrower", decimal.New(100, 0))
	require.Nil(t, err)
	assert.Equal(t, "54", seize.String())
}

func TestLiquidationParamsEMode(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	e.seed(ctx, t)

	require.Nil(t, e.emodes.Save(ctx, &core.EModeCategory{
		ID:                   1,
		Label:                "correlated",
		CloseFactor:          decimal.NewFromFloat(0.4),
		LiquidationIncentive: decimal.NewFromFloat(1.1),
	}))

	// category parameters only kick in once the account and both markets
	// share the category
	account, err := e.accounts.Find(ctx, "borrower")
	require.Nil(t, err)
	account.EModeID = 1
	require.Nil(t, e.accounts.Update(ctx, account, account.Version))

	seize, err := e.service.LiquidateCalculateSeizeTokens(ctx, "usd", "btc", "borrower", decimal.New(100, 0))
	require.Nil(t, err)
	assert.Equal(t, "54", seize.String())

	for _, assetID := range []string{"usd", "btc"} {
		market, err := e.markets.Find(ctx, assetID)
		require.Nil(t, err)
		market.EModeID = 1
		require.Nil(t, e.markets.Update(ctx, market, market.Version))
	}

	// 100 * 1 * 1.1 / 2 / 1 = 55
	seize, err = e.service.LiquidateCalculateSeizeTokens(ctx, "usd", "btc", "borrower", decimal.New(100, 0))
	require.Nil(t, err)
	assert.Equal(t, "55", seize.String())

	max, err := e.service.MaxRepay(ctx, "usd", "btc", "borrower")
	require.Nil(t, err)
	assert.Equal(t, "240", max.String())
}
