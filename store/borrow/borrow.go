package borrow

import (
	"context"

	"lever/core"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
)

type borrowStore struct {
	db *db.DB
}

// New new borrow store
func New(db *db.DB) core.IBorrowStore {
	return &borrowStore{
		db: db,
	}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Borrow{})
		if err := tx.AutoMigrate(core.Borrow{}).Error; err != nil {
			return err
		}

		if err := tx.AddUniqueIndex("idx_borrows_user_asset", "user_id", "asset_id").Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *borrowStore) Create(ctx context.Context, borrow *core.Borrow) error {
	return s.db.Update().
		Where("user_id = ? and asset_id = ?", borrow.UserID, borrow.AssetID).
		FirstOrCreate(borrow).Error
}

func (s *borrowStore) Find(ctx context.Context, userID, assetID string) (*core.Borrow, error) {
	var borrow core.Borrow
	err := s.db.View().Where("user_id = ? and asset_id = ?", userID, assetID).First(&borrow).Error
	if store.IsErrNotFound(err) {
		return &core.Borrow{}, nil
	}
	return &borrow, err
}

func (s *borrowStore) FindByUser(ctx context.Context, userID string) ([]*core.Borrow, error) {
	var borrows []*core.Borrow
	if err := s.db.View().Where("user_id = ?", userID).Find(&borrows).Error; err != nil {
		return nil, err
	}
	return borrows, nil
}

func (s *borrowStore) FindByAssetID(ctx context.Context, assetID string) ([]*core.Borrow, error) {
	var borrows []*core.Borrow
	if err := s.db.View().Where("asset_id = ?", assetID).Find(&borrows).Error; err != nil {
		return nil, err
	}
	return borrows, nil
}

func (s *borrowStore) Update(ctx context.Context, borrow *core.Borrow, version int64) error {
	tx := s.db.Update().Model(core.Borrow{}).
		Where("user_id = ? and asset_id = ? and version = ?", borrow.UserID, borrow.AssetID, version).
		Updates(map[string]interface{}{
			"principal":      borrow.Principal,
			"interest_index": borrow.InterestIndex,
			"version":        version + 1,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	borrow.Version = version + 1
	return nil
}

func (s *borrowStore) Users(ctx context.Context) ([]string, error) {
	var users []string
	if err := s.db.View().Model(core.Borrow{}).Select("distinct user_id").Pluck("user_id", &users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
