package account

import (
	"context"

	"lever/core"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
)

type accountStore struct {
	db *db.DB
}

// New new account store
func New(db *db.DB) core.IAccountStore {
	return &accountStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update()
		if err := tx.AutoMigrate(core.Account{}).Error; err != nil {
			return err
		}

		if err := tx.AutoMigrate(core.Membership{}).Error; err != nil {
			return err
		}

		if err := tx.Model(core.Account{}).AddUniqueIndex("idx_accounts_user_id", "user_id").Error; err != nil {
			return err
		}

		if err := tx.Model(core.Membership{}).AddUniqueIndex("idx_memberships_user_asset", "user_id", "asset_id").Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *accountStore) Save(ctx context.Context, account *core.Account) error {
	return s.db.Update().Where("user_id = ?", account.UserID).FirstOrCreate(account).Error
}

func (s *accountStore) Find(ctx context.Context, userID string) (*core.Account, error) {
	var account core.Account
	err := s.db.View().Where("user_id = ?", userID).First(&account).Error
	if store.IsErrNotFound(err) {
		return &core.Account{}, nil
	}
	return &account, err
}

func (s *accountStore) Update(ctx context.Context, account *core.Account, version int64) error {
	tx := s.db.Update().Model(core.Account{}).
		Where("user_id = ? and version = ?", account.UserID, version).
		Updates(map[string]interface{}{
			"e_mode_id": account.EModeID,
			"version":   version + 1,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	account.Version = version + 1
	return nil
}

func (s *accountStore) EnterMarket(ctx context.Context, userID, assetID string) error {
	membership := core.Membership{
		UserID:  userID,
		AssetID: assetID,
	}
	return s.db.Update().
		Where("user_id = ? and asset_id = ?", userID, assetID).
		FirstOrCreate(&membership).Error
}

func (s *accountStore) ExitMarket(ctx context.Context, userID, assetID string) error {
	return s.db.Update().
		Where("user_id = ? and asset_id = ?", userID, assetID).
		Delete(core.Membership{}).Error
}

func (s *accountStore) FindMembership(ctx context.Context, userID, assetID string) (*core.Membership, error) {
	var membership core.Membership
	err := s.db.View().Where("user_id = ? and asset_id = ?", userID, assetID).First(&membership).Error
	if store.IsErrNotFound(err) {
		return &core.Membership{}, nil
	}
	return &membership, err
}

func (s *accountStore) Memberships(ctx context.Context, userID string) ([]*core.Membership, error) {
	var memberships []*core.Membership
	if err := s.db.View().Where("user_id = ?", userID).Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}
