package distribution

import (
	"context"
	"time"

	"lever/core"
	"lever/pkg/lever"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/property"
	uuidutil "github.com/fox-one/pkg/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const distributionPausedKey = "pause_distribution"

type distributionService struct {
	system            *core.System
	property          property.Store
	marketStore       core.IMarketStore
	supplyStore       core.ISupplyStore
	borrowStore       core.IBorrowStore
	distributionStore core.IDistributionStore
	rewardStore       core.IRewardStore
	flowStore         core.IFlowStore
	treasury          core.ITreasuryService
}

// New new distribution service
func New(
	system *core.System,
	propertyStore property.Store,
	marketStore core.IMarketStore,
	supplyStore core.ISupplyStore,
	borrowStore core.IBorrowStore,
	distributionStore core.IDistributionStore,
	rewardStore core.IRewardStore,
	flowStore core.IFlowStore,
	treasury core.ITreasuryService,
) core.IDistributionService {
	return &distributionService{
		system:            system,
		property:          propertyStore,
		marketStore:       marketStore,
		supplyStore:       supplyStore,
		borrowStore:       borrowStore,
		distributionStore: distributionStore,
		rewardStore:       rewardStore,
		flowStore:         flowStore,
		treasury:          treasury,
	}
}

func (s *distributionService) SetSpeed(ctx context.Context, caller, assetID string, side core.DistributionSide, speed decimal.Decimal, now time.Time) error {
	if !s.system.IsAdmin(caller) {
		return core.ErrOperationForbidden
	}
	if speed.IsNegative() {
		return core.ErrInvalidParameter
	}

	market, err := s.marketStore.Find(ctx, assetID)
	if err != nil {
		return err
	}
	if market.ID == 0 {
		return core.ErrMarketNotFound
	}

	// settle the old speed up to now before the new one takes over
	if err := s.Accrue(ctx, assetID, side, now); err != nil {
		return err
	}

	state, err := s.distributionStore.FindState(ctx, assetID, side)
	if err != nil {
		return err
	}

	old := decimal.Zero
	if state.ID == 0 {
		block, err := lever.GetBlockByTime(now)
		if err != nil {
			return err
		}

		state = &core.DistributionState{
			AssetID: assetID,
			Side:    side,
			Speed:   speed,
			Block:   block,
		}
		if err := s.distributionStore.SaveState(ctx, state); err != nil {
			return err
		}
	} else {
		old = state.Speed
		state.Speed = speed
		if err := s.distributionStore.UpdateState(ctx, state, state.Version); err != nil {
			return err
		}
	}

	global, err := s.GlobalSpeed(ctx)
	if err != nil {
		return err
	}

	extra := core.NewFlowExtra()
	extra.Put("asset_id", assetID)
	extra.Put("side", side.String())
	extra.Put("old_speed", old)
	extra.Put("new_speed", speed)
	extra.Put("global_speed", global)
	if err := s.flowStore.Create(ctx, &core.Flow{
		TraceID: uuidutil.New(),
		UserID:  caller,
		AssetID: assetID,
		Action:  core.ActionTypeSpeedChanged,
		Data:    extra.Format(),
	}); err != nil {
		return err
	}

	logger.FromContext(ctx).
		WithField("asset_id", assetID).
		WithField("side", side.String()).
		WithField("global_speed", global).
		Infoln("distribution speed changed")
	return nil
}

// GlobalSpeed the sum of every market's supply and borrow speeds
func (s *distributionService) GlobalSpeed(ctx context.Context) (decimal.Decimal, error) {
	states, err := s.distributionStore.AllStates(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	sum := decimal.Zero
	for _, state := range states {
		sum = sum.Add(state.Speed)
	}

	return sum, nil
}

// Accrue lazily advances the market side's index up to now. Idempotent
// within the same block; frozen entirely while distribution is paused.
func (s *distributionService) Accrue(ctx context.Context, assetID string, side core.DistributionSide, now time.Time) error {
	state, err := s.distributionStore.FindState(ctx, assetID, side)
	if err != nil {
		return err
	}
	if state.ID == 0 {
		return nil
	}

	paused, err := s.paused(ctx)
	if err != nil {
		return err
	}
	if paused {
		return nil
	}

	block, err := lever.GetBlockByTime(now)
	if err != nil {
		return err
	}
	if block <= state.Block {
		return nil
	}

	market, err := s.marketStore.Find(ctx, assetID)
	if err != nil {
		return err
	}
	if market.ID == 0 {
		return core.ErrMarketNotFound
	}

	weight := market.TotalSupply
	if side == core.DistributionSideBorrow {
		weight = lever.BorrowWeight(market.TotalBorrows, market.BorrowIndex)
	}

	// the market's distribution factor scales its effective speed
	speed := state.Speed.Mul(market.DistributionFactor)

	state.Index = lever.AdvanceIndex(state.Index, speed, block-state.Block, weight)
	state.Block = block

	return s.distributionStore.UpdateState(ctx, state, state.Version)
}

func (s *distributionService) DistributeSupplier(ctx context.Context, assetID, userID string, now time.Time) error {
	if err := s.Accrue(ctx, assetID, core.DistributionSideSupply, now); err != nil {
		return err
	}

	state, err := s.distributionStore.FindState(ctx, assetID, core.DistributionSideSupply)
	if err != nil {
		return err
	}
	if state.ID == 0 {
		return nil
	}

	market, err := s.marketStore.Find(ctx, assetID)
	if err != nil {
		return err
	}

	supply, err := s.supplyStore.Find(ctx, userID, market.CTokenAssetID)
	if err != nil {
		return err
	}

	return s.settleSnapshot(ctx, state, userID, supply.Collaterals)
}

func (s *distributionService) DistributeBorrower(ctx context.Context, assetID, userID string, now time.Time) error {
	if err := s.Accrue(ctx, assetID, core.DistributionSideBorrow, now); err != nil {
		return err
	}

	state, err := s.distributionStore.FindState(ctx, assetID, core.DistributionSideBorrow)
	if err != nil {
		return err
	}
	if state.ID == 0 {
		return nil
	}

	market, err := s.marketStore.Find(ctx, assetID)
	if err != nil {
		return err
	}

	borrow, err := s.borrowStore.Find(ctx, userID, assetID)
	if err != nil {
		return err
	}

	// normalize away accrued interest so the weight tracks principal share
	weight := lever.BorrowWeight(lever.BorrowBalance(borrow, market), market.BorrowIndex)
	return s.settleSnapshot(ctx, state, userID, weight)
}

// settleSnapshot accrues the pending delta between the state index and the
// account snapshot, then pins the snapshot at the state index. A fresh
// snapshot starts at the current index and accrues nothing: the position
// had no weight before this operation.
func (s *distributionService) settleSnapshot(ctx context.Context, state *core.DistributionState, userID string, weight decimal.Decimal) error {
	snapshot, err := s.distributionStore.FindSnapshot(ctx, userID, state.AssetID, state.Side)
	if err != nil {
		return err
	}

	if snapshot.ID == 0 {
		return s.distributionStore.SaveSnapshot(ctx, &core.DistributionSnapshot{
			UserID:  userID,
			AssetID: state.AssetID,
			Side:    state.Side,
			Index:   state.Index,
		})
	}

	delta := lever.AccruedDelta(state.Index, snapshot.Index, weight)
	if delta.IsPositive() {
		if err := s.rewardStore.Add(ctx, userID, delta); err != nil {
			return err
		}
	}

	if snapshot.Index.Equal(state.Index) {
		return nil
	}

	snapshot.Index = state.Index
	return s.distributionStore.UpdateSnapshot(ctx, snapshot, snapshot.Version)
}

func (s *distributionService) Pause(ctx context.Context, caller string) error {
	if !s.system.IsAdmin(caller) && !s.system.IsGuardian(caller) {
		return core.ErrOperationForbidden
	}

	// property values are typed strings; the switch is stored as 0/1
	return s.property.Save(ctx, distributionPausedKey, 1)
}

// Unpause re-bases every state to the current block before speed accrual
// resumes, so the frozen span mints nothing retroactively.
func (s *distributionService) Unpause(ctx context.Context, caller string, now time.Time) error {
	if !s.system.IsAdmin(caller) {
		return core.ErrOperationForbidden
	}

	block, err := lever.GetBlockByTime(now)
	if err != nil {
		return err
	}

	states, err := s.distributionStore.AllStates(ctx)
	if err != nil {
		return err
	}

	for _, state := range states {
		if state.Block >= block {
			continue
		}

		state.Block = block
		if err := s.distributionStore.UpdateState(ctx, state, state.Version); err != nil {
			return err
		}
	}

	return s.property.Save(ctx, distributionPausedKey, 0)
}

func (s *distributionService) ClaimReward(ctx context.Context, userID string, assetIDs []string, now time.Time) (decimal.Decimal, error) {
	log := logger.FromContext(ctx).WithField("service", "distribution")

	for _, assetID := range assetIDs {
		if err := s.DistributeSupplier(ctx, assetID, userID, now); err != nil {
			return decimal.Zero, err
		}
		if err := s.DistributeBorrower(ctx, assetID, userID, now); err != nil {
			return decimal.Zero, err
		}
	}

	amount, err := s.rewardStore.Settle(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	if !amount.IsPositive() {
		return decimal.Zero, nil
	}

	traceID := uuidutil.New()
	if err := s.treasury.Transfer(ctx, userID, s.system.RewardAssetID, amount, traceID); err != nil {
		// the claim fails whole: put the settled balance back
		if addErr := s.rewardStore.Add(ctx, userID, amount); addErr != nil {
			log.WithError(addErr).Errorln("rewards.Add compensation failed")
			return decimal.Zero, addErr
		}
		return decimal.Zero, err
	}

	if err := s.rewardStore.CreateClaim(ctx, &core.Claim{
		TraceID: traceID,
		UserID:  userID,
		AssetID: s.system.RewardAssetID,
		Amount:  amount,
		Markets: pq.StringArray(assetIDs),
	}); err != nil {
		return decimal.Zero, err
	}

	extra := core.NewFlowExtra()
	extra.Put("amount", amount)
	extra.Put("markets", assetIDs)
	if err := s.flowStore.Create(ctx, &core.Flow{
		TraceID: uuidutil.Modify(traceID, "flow"),
		UserID:  userID,
		AssetID: s.system.RewardAssetID,
		Action:  core.ActionTypeRewardClaimed,
		Data:    extra.Format(),
	}); err != nil {
		return decimal.Zero, err
	}

	log.WithField("user_id", userID).WithField("amount", amount).Infoln("reward claimed")
	return amount, nil
}

func (s *distributionService) ClaimAllReward(ctx context.Context, userID string, now time.Time) (decimal.Decimal, error) {
	markets, err := s.marketStore.All(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	assetIDs := make([]string, 0, len(markets))
	for _, market := range markets {
		assetIDs = append(assetIDs, market.AssetID)
	}

	return s.ClaimReward(ctx, userID, assetIDs, now)
}

func (s *distributionService) paused(ctx context.Context) (bool, error) {
	v, err := s.property.Get(ctx, distributionPausedKey)
	if err != nil {
		return false, err
	}

	return v.Int() != 0, nil
}
