package account

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

type env struct {
	markets  *servicetest.MarketStore
	supplies *servicetest.SupplyStore
	borrows  *servicetest.BorrowStore
	accounts *servicetest.AccountStore
	emodes   *servicetest.EModeStore
	service  core.IAccountService
}

func newEnv() *env {
	e := &env{
		markets:  servicetest.NewMarketStore(),
		supplies: servicetest.NewSupplyStore(),
		borrows:  servicetest.NewBorrowStore(),
		accounts: servicetest.NewAccountStore(),
		emodes:   servicetest.NewEModeStore(),
	}
	e.service = New(e.markets, e.supplies, e.borrows, e.accounts, e.emodes, servicetest.NewFlowStore(), oracle.New(servicetest.NewPriceStore(), 0))
	return e
}

func (e *env) addMarket(ctx context.Context, t *testing.T, market *core.Market) *core.Market {
	t.Helper()

	if market.ExchangeRate.IsZero() {
		market.ExchangeRate = decimal.New(1, 0)
	}
	if market.BorrowIndex.IsZero() {
		market.BorrowIndex = decimal.New(1, 0)
	}
	if market.BorrowFactor.IsZero() {
		market.BorrowFactor = decimal.New(1, 0)
	}
	market.PriceUpdatedAt = time.Now()
	require.Nil(t, e.markets.Create(ctx, market))
	return market
}

func TestCalcAccountEquity(t *testing.T) {
	ctx := context.Background()
	e := newEnv()

	e.addMarket(ctx, t, &core.Market{
		AssetID:              "btc",
		Symbol:               "BTC",
		CTokenAssetID:        "cbtc",
		Price:                decimal.New(1, 0),
		CollateralFactor:     decimal.NewFromFloat(0.9),
		LiquidationThreshold: decimal.NewFromFloat(0.95),
	})
	e.addMarket(ctx, t, &core.Market{
		AssetID:          "usd",
		Symbol:           "USD",
		CTokenAssetID:    "cusd",
		Price:            decimal.New(1, 0),
		CollateralFactor: decimal.NewFromFloat(0.8),
	})

	_, err := e.service.EnterMarkets(ctx, "u1", []string{"btc"})
	require.Nil(t, err)
	require.Nil(t, e.supplies.Save(ctx, &core.Supply{
		UserID:        "u1",
		CTokenAssetID: "cbtc",
		Collaterals:   decimal.New(1000, 0),
	}))

	equity, err := e.service.CalcAccountEquity(ctx, "u1", core.EquityBorrowLimit, nil)
	require.Nil(t, err)
	assert.Equal(t, "900", equity.Collateral.String())
	assert.True(t, equity.Shortfall.IsZero())

	// 920 of debt pushes the borrow-limit equity under water while the
	// liquidation equity still clears at the 0.95 threshold
	require.Nil(t, e.borrows.Create(ctx, &core.Borrow{
		UserID:        "u1",
		AssetID:       "usd",
		Principal:     decimal.New(920, 0),
		InterestIndex: decimal.New(1, 0),
	}))

	equity, err = e.service.CalcAccountEquity(ctx, "u1", core.EquityBorrowLimit, nil)
	require.Nil(t, err)
	assert.Equal(t, "20", equity.Shortfall.String())
	assert.True(t, equity.Collateral.IsZero())

	equity, err = e.service.CalcAccountEquity(ctx, "u1", core.EquityLiquidation, nil)
	require.Nil(t, err)
	assert.Equal(t, "30", equity.Collateral.String())
	assert.True(t, equity.Shortfall.IsZero())
}

func TestCalcAccountEquityHypothetical(t *testing.T) {
	ctx := context.Background()
	e := newEnv()

	e.addMarket(ctx, t, &core.Market{
		AssetID:          "btc",
		Symbol:           "BTC",
		CTokenAssetID:    "cbtc",
		Price:            decimal.New(2, 0),
		CollateralFactor: decimal.NewFromFloat(0.5),
	})

	_, err := e.service.EnterMarkets(ctx, "u1", []string{"btc"})
	require.Nil(t, err)
	require.Nil(t, e.supplies.Save(ctx, &core.Supply{
		UserID:        "u1",
		CTokenAssetID: "cbtc",
		Collaterals:   decimal.New(100, 0),
	}))

	// 100 tokens * price 2 * cf 0.5 = 100; redeeming 40 leaves 60
	equity, err := e.service.CalcAccountEquity(ctx, "u1", core.EquityBorrowLimit, &core.Hypothetical{
		AssetID:      "btc",
		RedeemTokens: decimal.New(40, 0),
	})
	require.Nil(t, err)
	assert.Equal(t, "60", equity.Collateral.String())

	// borrowing 70 on top of the redeem flips it into shortfall
	equity, err = e.service.CalcAccountEquity(ctx, "u1", core.EquityBorrowLimit, &core.Hypothetical{
		AssetID:      "btc",
		RedeemTokens: decimal.New(40, 0),
		BorrowAmount: decimal.New(35, 0),
	})
	require.Nil(t, err)
	assert.Equal(t, "10", equity.Shortfall.String())
}

func TestEnterMarkets(t *testing.T) {
	ctx := context.Background()
	e := newEnv()

	e.addMarket(ctx, t, &core.Market{
		AssetID:       "btc",
		Symbol:        "BTC",
		CTokenAssetID: "cbtc",
		Price:         decimal.New(1, 0),
	})

	results, err := e.service.EnterMarkets(ctx, "u1", []string{"btc", "btc", "eth"})
	require.Nil(t, err)
	require.Len(t, results, 3)
	assert.True(t, results[0])
	// already entered within the same call
	assert.False(t, results[1])
	// unknown market is a no-op
	assert.False(t, results[2])
}

func TestEnterMarketsIsolation(t *testing.T) {
	ctx := context.Background()
	e := newEnv()

	e.addMarket(ctx, t, &core.Market{
		AssetID:       "btc",
		Symbol:        "BTC",
		CTokenAssetID: "cbtc",
		Price:         decimal.New(1, 0),
	})
	e.addMarket(ctx, t, &core.Market{
		AssetID:       "doge",
		Symbol:        "DOGE",
		CTokenAssetID: "cdoge",
		Price:         decimal.New(1, 0),
		DebtCeiling:   decimal.New(1000, 0),
	})

	// isolated collateral cannot join an account that already has collateral
	results, err := e.service.EnterMarkets(ctx, "u1", []string{"btc", "doge"})
	require.Nil(t, err)
	assert.True(t, results[0])
	assert.False(t, results[1])

	// and nothing can join an account holding isolated collateral
	results, err = e.service.EnterMarkets(ctx, "u2", []string{"doge", "btc"})
	require.Nil(t, err)
	assert.True(t, results[0])
	assert.False(t, results[1])
}

func TestExitMarkets(t *testing.T) {
	ctx := context.Background()
	e := newEnv()

	e.addMarket(ctx, t, &core.Market{
		AssetID:          "btc",
		Symbol:           "BTC",
		CTokenAssetID:    "cbtc",
		Price:            decimal.New(1, 0),
		CollateralFactor: decimal.NewFromFloat(0.9),
	})

	// not entered yet
	results, err := e.service.ExitMarkets(ctx, "u1", []string{"btc"})
	require.Nil(t, err)
	assert.False(t, results[0])

	_, err = e.service.EnterMarkets(ctx, "u1", []string{"btc"})
	require.Nil(t, err)

	// an open borrow in the market blocks the exit
	require.Nil(t, e.borrows.Create(ctx, &core.Borrow{
		UserID:        "u1",
		AssetID:       "btc",
		Principal:     decimal.New(10, 0),
		InterestIndex: decimal.New(1, 0),
	}))
	_, err = e.service.ExitMarkets(ctx, "u1", []string{"btc"})
	assert.Equal(t, core.ErrExitNotAllowed, err)

	borrow, err := e.borrows.Find(ctx, "u1", "btc")
	require.Nil(t, err)
	borrow.Principal = decimal.Zero
	require.Nil(t, e.borrows.Update(ctx, borrow, borrow.Version))

	results, err = e.service.ExitMarkets(ctx, "u1", []string{"btc"})
	require.Nil(t, err)
	assert.True(t, results[0])
}

func TestExitMarketsShortfall(t *testing.T) {
	ctx := context.Background()
	e := newEnv()

	e.addMarket(ctx, t, &core.Market{
		AssetID:          "btc",
		Symbol:           "BTC",
		CTokenAssetID:    "cbtc",
		Price:            decimal.New(1, 0),
		CollateralFactor: decimal.NewFromFloat(0.9),
	})
	e.addMarket(ctx, t, &core.Market{
		AssetID:          "usd",
		Symbol:           "USD",
		CTokenAssetID:    "cusd",
		Price:            decimal.New(1, 0),
		CollateralFactor: decimal.NewFromFloat(0.8),
	})

	_, err := e.service.EnterMarkets(ctx, "u1", []string{"btc"})
	require.Nil(t, err)
	require.Nil(t, e.supplies.Save(ctx, &core.Supply{
		UserID:        "u1",
		CTokenAssetID: "cbtc",
		Collaterals:   decimal.New(1000, 0),
	}))
	require.Nil(t, e.borrows.Create(ctx, &core.Borrow{
		UserID:        "u1",
		AssetID:       "usd",
		Principal:     decimal.New(100, 0),
		InterestIndex: decimal.New(1, 0),
	}))

	// the collateral still backs an open borrow elsewhere
	_, err = e.service.ExitMarkets(ctx, "u1", []string{"btc"})
	assert.Equal(t, core.ErrExitNotAllowed, err)
}

func TestSetAccountEMode(t *testing.T) {
	ctx := context.Background()
	e := newEnv()

	require.Nil(t, e.emodes.Save(ctx, &core.EModeCategory{
		ID:                   1,
		Label:                "stablecoins",
		CloseFactor:          decimal.NewFromFloat(0.5),
		LiquidationIncentive: decimal.NewFromFloat(1.01),
	}))

	assert.Equal(t, core.ErrInvalidParameter, e.service.SetAccountEMode(ctx, "u1", 9))
	require.Nil(t, e.service.SetAccountEMode(ctx, "u1", 1))

	account, err := e.accounts.Find(ctx, "u1")
	require.Nil(t, err)
	assert.Equal(t, int64(1), account.EModeID)

	// leaving emode is always allowed without borrows
	require.Nil(t, e.service.SetAccountEMode(ctx, "u1", 0))
}

func TestSetAccountEModeMismatch(t *testing.T) {
	ctx := context.Background()
	e := newEnv()

	require.Nil(t, e.emodes.Save(ctx, &core.EModeCategory{ID: 1, Label: "stablecoins"}))
	require.Nil(t, e.emodes.Save(ctx, &core.EModeCategory{ID: 2, Label: "eth"}))

	e.addMarket(ctx, t, &core.Market{
		AssetID:       "usd",
		Symbol:        "USD",
		CTokenAssetID: "cusd",
		Price:         decimal.New(1, 0),
		EModeID:       1,
	})

	_, err := e.service.EnterMarkets(ctx, "u1", []string{"usd"})
	require.Nil(t, err)

	assert.Equal(t, core.ErrEModeMismatch, e.service.SetAccountEMode(ctx, "u1", 2))
	require.Nil(t, e.service.SetAccountEMode(ctx, "u1", 1))
}
