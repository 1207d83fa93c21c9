package distribution

import (
	"context"
	"testing"
	"time"

	"lever/core"
	"lever/pkg/lever"
	"lever/service/servicetest"
	"lever/service/treasury"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	admin       = "admin-user"
	guardian    = "guardian-user"
	rewardAsset = "xin"
)

type env struct {
	markets       *servicetest.MarketStore
	supplies      *servicetest.SupplyStore
	borrows       *servicetest.BorrowStore
	distributions *servicetest.DistributionStore
	rewards       *servicetest.RewardStore
	vaults        *servicetest.VaultStore
	service       core.IDistributionService

	genesis time.Time
}

func newEnv(t *testing.T) *env {
	t.Helper()

	e := &env{
		markets:       servicetest.NewMarketStore(),
		supplies:      servicetest.NewSupplyStore(),
		borrows:       servicetest.NewBorrowStore(),
		distributions: servicetest.NewDistributionStore(),
		rewards:       servicetest.NewRewardStore(),
		vaults:        servicetest.NewVaultStore(),
		genesis:       time.Unix(1600000000, 0),
	}
	lever.SetupGenesis(e.genesis.Unix())

	system := &core.System{
		Admins:        []string{admin},
		Guardian:      guardian,
		RewardAssetID: rewardAsset,
	}
	e.service = New(
		system,
		servicetest.NewPropertyStore(),
		e.markets,
		e.supplies,
		e.borrows,
		e.distributions,
		e.rewards,
		servicetest.NewFlowStore(),
		treasury.New(e.vaults),
	)
	return e
}

// at returns a wall time n logical blocks after genesis.
func (e *env) at(blocks int64) time.Time {
	return e.genesis.Add(time.Duration(blocks*lever.SecondsPerBlock) * time.Second)
}

// seed lists a market with two equal suppliers and pins their snapshots
// at index zero so later accrual splits between them.
func (e *env) seed(ctx context.Context, t *testing.T) {
	t.Helper()

	require.Nil(t, e.markets.Create(ctx, &core.Market{
		AssetID:            "btc",
		Symbol:             "BTC",
		CTokenAssetID:      "cbtc",
		ExchangeRate:       decimal.New(1, 0),
		BorrowIndex:        decimal.New(1, 0),
		TotalSupply:        decimal.New(100, 0),
		DistributionFactor: decimal.New(1, 0),
	}))

	for _, userID := range []string{"alice", "bob"} {
		require.Nil(t, e.supplies.Save(ctx, &core.Supply{
			UserID:        userID,
			CTokenAssetID: "cbtc",
			Collaterals:   decimal.New(50, 0),
		}))
	}

	require.Nil(t, e.service.SetSpeed(ctx, admin, "btc", core.DistributionSideSupply, decimal.New(10, 0), e.at(1)))
	require.Nil(t, e.service.DistributeSupplier(ctx, "btc", "alice", e.at(1)))
	require.Nil(t, e.service.DistributeSupplier(ctx, "btc", "bob", e.at(1)))
}

func (e *env) accrued(ctx context.Context, t *testing.T, userID string) string {
	t.Helper()

	reward, err := e.rewards.Find(ctx, userID)
	require.Nil(t, err)
	return reward.Accrued.String()
}

func TestSetSpeed(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	require.Nil(t, e.markets.Create(ctx, &core.Market{
		AssetID:            "btc",
		Symbol:             "BTC",
		CTokenAssetID:      "cbtc",
		DistributionFactor: decimal.New(1, 0),
	}))

	err := e.service.SetSpeed(ctx, "nobody", "btc", core.DistributionSideSupply, decimal.New(10, 0), e.at(1))
	assert.Equal(t, core.ErrOperationForbidden, err)

	err = e.service.SetSpeed(ctx, admin, "btc", core.DistributionSideSupply, decimal.New(-1, 0), e.at(1))
	assert.Equal(t, core.ErrInvalidParameter, err)

	err = e.service.SetSpeed(ctx, admin, "eth", core.DistributionSideSupply, decimal.New(10, 0), e.at(1))
	assert.Equal(t, core.ErrMarketNotFound, err)

	require.Nil(t, e.service.SetSpeed(ctx, admin, "btc", core.DistributionSideSupply, decimal.New(10, 0), e.at(1)))
	require.Nil(t, e.service.SetSpeed(ctx, admin, "btc", core.DistributionSideBorrow, decimal.New(5, 0), e.at(1)))

	global, err := e.service.GlobalSpeed(ctx)
	require.Nil(t, err)
	assert.Equal(t, "15", global.String())
}

func TestAccrueSplitsBetweenSuppliers(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.seed(ctx, t)

	// 10 blocks at speed 10 over a weight of 100: index grows by 1,
	// each 50-token supplier earns 50
	require.Nil(t, e.service.DistributeSupplier(ctx, "btc", "alice", e.at(11)))
	require.Nil(t, e.service.DistributeSupplier(ctx, "btc", "bob", e.at(11)))

	assert.Equal(t, "50", e.accrued(ctx, t, "alice"))
	assert.Equal(t, "50", e.accrued(ctx, t, "bob"))

	// same block again accrues nothing more
	require.Nil(t, e.service.DistributeSupplier(ctx, "btc", "alice", e.at(11)))
	assert.Equal(t, "50", e.accrued(ctx, t, "alice"))
}

func TestAccrueDistributionFactor(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.seed(ctx, t)

	// halving the factor halves the effective speed
	market, err := e.markets.Find(ctx, "btc")
	require.Nil(t, err)
	market.DistributionFactor = decimal.NewFromFloat(0.5)
	require.Nil(t, e.markets.Update(ctx, market, market.Version))

	require.Nil(t, e.service.DistributeSupplier(ctx, "btc", "alice", e.at(11)))
	assert.Equal(t, "25", e.accrued(ctx, t, "alice"))
}

func TestDistributeBorrower(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	require.Nil(t, e.markets.Create(ctx, &core.Market{
		AssetID:            "btc",
		Symbol:             "BTC",
		CTokenAssetID:      "cbtc",
		ExchangeRate:       decimal.New(1, 0),
		BorrowIndex:        decimal.New(2, 0),
		TotalBorrows:       decimal.New(200, 0),
		DistributionFactor: decimal.New(1, 0),
	}))
	// principal 100 at interest index 1 doubles to 200 under borrow
	// index 2, but the normalized weight stays at 100 of 100
	require.Nil(t, e.borrows.Create(ctx, &core.Borrow{
		UserID:        "alice",
		AssetID:       "btc",
		Principal:     decimal.New(100, 0),
		InterestIndex: decimal.New(1, 0),
	}))

	require.Nil(t, e.service.SetSpeed(ctx, admin, "btc", core.DistributionSideBorrow, decimal.New(10, 0), e.at(1)))
	require.Nil(t, e.service.DistributeBorrower(ctx, "btc", "alice", e.at(1)))

	require.Nil(t, e.service.DistributeBorrower(ctx, "btc", "alice", e.at(11)))
	assert.Equal(t, "100", e.accrued(ctx, t, "alice"))
}

func TestClaimReward(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.seed(ctx, t)
	require.Nil(t, e.vaults.Credit(ctx, rewardAsset, decimal.New(1000, 0)))

	amount, err := e.service.ClaimReward(ctx, "alice", []string{"btc"}, e.at(11))
	require.Nil(t, err)
	assert.Equal(t, "50", amount.String())

	vault, err := e.vaults.Find(ctx, rewardAsset)
	require.Nil(t, err)
	assert.Equal(t, "950", vault.Balance.String())

	claims, err := e.rewards.Claims(ctx, "alice", 10)
	require.Nil(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, "50", claims[0].Amount.String())

	// nothing left to claim in the same block
	amount, err = e.service.ClaimReward(ctx, "alice", []string{"btc"}, e.at(11))
	require.Nil(t, err)
	assert.True(t, amount.IsZero())
}

func TestClaimRewardTreasuryShortfall(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.seed(ctx, t)

	// the vault is empty, so the payout fails and the settled balance
	// must land back on the account
	_, err := e.service.ClaimReward(ctx, "alice", []string{"btc"}, e.at(11))
	assert.Equal(t, core.ErrInsufficientTreasury, err)
	assert.Equal(t, "50", e.accrued(ctx, t, "alice"))
}

func TestPauseUnpause(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.seed(ctx, t)

	assert.Equal(t, core.ErrOperationForbidden, e.service.Pause(ctx, "nobody"))
	require.Nil(t, e.service.Pause(ctx, guardian))

	// the frozen span mints nothing
	require.Nil(t, e.service.DistributeSupplier(ctx, "btc", "alice", e.at(11)))
	assert.Equal(t, "0", e.accrued(ctx, t, "alice"))

	// the guardian may pause but never unpause
	assert.Equal(t, core.ErrOperationForbidden, e.service.Unpause(ctx, guardian, e.at(11)))
	require.Nil(t, e.service.Unpause(ctx, admin, e.at(11)))

	// accrual resumes from the unpause block, not retroactively
	require.Nil(t, e.service.DistributeSupplier(ctx, "btc", "alice", e.at(21)))
	assert.Equal(t, "50", e.accrued(ctx, t, "alice"))
}
