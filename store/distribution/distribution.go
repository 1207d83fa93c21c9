package distribution

import (
	"context"

	"lever/core"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
)

type distributionStore struct {
	db *db.DB
}

// New new distribution store
func New(db *db.DB) core.IDistributionStore {
	return &distributionStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update()
		if err := tx.AutoMigrate(core.DistributionState{}).Error; err != nil {
			return err
		}

		if err := tx.AutoMigrate(core.DistributionSnapshot{}).Error; err != nil {
			return err
		}

		if err := tx.Model(core.DistributionState{}).AddUniqueIndex("idx_distribution_states_asset_side", "asset_id", "side").Error; err != nil {
			return err
		}

		if err := tx.Model(core.DistributionSnapshot{}).AddUniqueIndex("idx_distribution_snapshots_user_asset_side", "user_id", "asset_id", "side").Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *distributionStore) SaveState(ctx context.Context, state *core.DistributionState) error {
	return s.db.Update().
		Where("asset_id = ? and side = ?", state.AssetID, state.Side).
		FirstOrCreate(state).Error
}

func (s *distributionStore) FindState(ctx context.Context, assetID string, side core.DistributionSide) (*core.DistributionState, error) {
	var state core.DistributionState
	err := s.db.View().Where("asset_id = ? and side = ?", assetID, side).First(&state).Error
	if store.IsErrNotFound(err) {
		return &core.DistributionState{}, nil
	}
	return &state, err
}

func (s *distributionStore) AllStates(ctx context.Context) ([]*core.DistributionState, error) {
	var states []*core.DistributionState
	if err := s.db.View().Find(&states).Error; err != nil {
		return nil, err
	}
	return states, nil
}

func (s *distributionStore) UpdateState(ctx context.Context, state *core.DistributionState, version int64) error {
	tx := s.db.Update().Model(core.DistributionState{}).
		Where("asset_id = ? and side = ? and version = ?", state.AssetID, state.Side, version).
		Updates(map[string]interface{}{
			"index":   state.Index,
			"speed":   state.Speed,
			"block":   state.Block,
			"version": version + 1,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	state.Version = version + 1
	return nil
}

func (s *distributionStore) SaveSnapshot(ctx context.Context, snapshot *core.DistributionSnapshot) error {
	return s.db.Update().
		Where("user_id = ? and asset_id = ? and side = ?", snapshot.UserID, snapshot.AssetID, snapshot.Side).
		FirstOrCreate(snapshot).Error
}

func (s *distributionStore) FindSnapshot(ctx context.Context, userID, assetID string, side core.DistributionSide) (*core.DistributionSnapshot, error) {
	var snapshot core.DistributionSnapshot
	err := s.db.View().Where("user_id = ? and asset_id = ? and side = ?", userID, assetID, side).First(&snapshot).Error
	if store.IsErrNotFound(err) {
		return &core.DistributionSnapshot{}, nil
	}
	return &snapshot, err
}

func (s *distributionStore) UpdateSnapshot(ctx context.Context, snapshot *core.DistributionSnapshot, version int64) error {
	tx := s.db.Update().Model(core.DistributionSnapshot{}).
		Where("user_id = ? and asset_id = ? and side = ? and version = ?", snapshot.UserID, snapshot.AssetID, snapshot.Side, version).
		Updates(map[string]interface{}{
			"index":   snapshot.Index,
			"version": version + 1,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	snapshot.Version = version + 1
	return nil
}
