package supply

import (
	"context"

	"lever/core"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
)

type supplyStore struct {
	db *db.DB
}

// New new supply store
func New(db *db.DB) core.ISupplyStore {
	return &supplyStore{
		db: db,
	}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Supply{})
		if err := tx.AutoMigrate(core.Supply{}).Error; err != nil {
			return err
		}

		if err := tx.AddUniqueIndex("idx_supplies_user_ctoken", "user_id", "c_token_asset_id").Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *supplyStore) Save(ctx context.Context, supply *core.Supply) error {
	return s.db.Update().
		Where("user_id = ? and c_token_asset_id = ?", supply.UserID, supply.CTokenAssetID).
		FirstOrCreate(supply).Error
}

func (s *supplyStore) Find(ctx context.Context, userID, ctokenAssetID string) (*core.Supply, error) {
	var supply core.Supply
	err := s.db.View().Where("user_id = ? and c_token_asset_id = ?", userID, ctokenAssetID).First(&supply).Error
	if store.IsErrNotFound(err) {
		return &core.Supply{}, nil
	}
	return &supply, err
}

func (s *supplyStore) FindByUser(ctx context.Context, userID string) ([]*core.Supply, error) {
	var supplies []*core.Supply
	if err := s.db.View().Where("user_id = ?", userID).Find(&supplies).Error; err != nil {
		return nil, err
	}
	return supplies, nil
}

func (s *supplyStore) FindByCToken(ctx context.Context, ctokenAssetID string) ([]*core.Supply, error) {
	var supplies []*core.Supply
	if err := s.db.View().Where("c_token_asset_id = ?", ctokenAssetID).Find(&supplies).Error; err != nil {
		return nil, err
	}
	return supplies, nil
}

func (s *supplyStore) Update(ctx context.Context, supply *core.Supply, version int64) error {
	tx := s.db.Update().Model(core.Supply{}).
		Where("user_id = ? and c_token_asset_id = ? and version = ?", supply.UserID, supply.CTokenAssetID, version).
		Updates(map[string]interface{}{
			"collaterals": supply.Collaterals,
			"version":     version + 1,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	supply.Version = version + 1
	return nil
}
