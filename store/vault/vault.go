package vault

import (
	"context"

	"lever/core"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

type vaultStore struct {
	db *db.DB
}

// New new vault store
func New(db *db.DB) core.IVaultStore {
	return &vaultStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update()
		if err := tx.AutoMigrate(core.Vault{}).Error; err != nil {
			return err
		}

		if err := tx.AutoMigrate(core.Transfer{}).Error; err != nil {
			return err
		}

		if err := tx.Model(core.Vault{}).AddUniqueIndex("idx_vaults_asset_id", "asset_id").Error; err != nil {
			return err
		}

		if err := tx.Model(core.Transfer{}).AddUniqueIndex("idx_transfers_trace_id", "trace_id").Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *vaultStore) Find(ctx context.Context, assetID string) (*core.Vault, error) {
	var vault core.Vault
	err := s.db.View().Where("asset_id = ?", assetID).First(&vault).Error
	if store.IsErrNotFound(err) {
		return &core.Vault{}, nil
	}
	return &vault, err
}

func (s *vaultStore) Credit(ctx context.Context, assetID string, amount decimal.Decimal) error {
	return s.db.Tx(func(tx *db.DB) error {
		var vault core.Vault
		err := tx.Update().Where("asset_id = ?", assetID).First(&vault).Error
		if gorm.IsRecordNotFoundError(err) {
			return tx.Update().Create(&core.Vault{
				AssetID: assetID,
				Balance: amount,
			}).Error
		}
		if err != nil {
			return err
		}

		updates := tx.Update().Model(core.Vault{}).
			Where("asset_id = ? and version = ?", assetID, vault.Version).
			Updates(map[string]interface{}{
				"balance": vault.Balance.Add(amount),
				"version": vault.Version + 1,
			})
		if updates.Error != nil {
			return updates.Error
		}
		if updates.RowsAffected == 0 {
			return db.ErrOptimisticLock
		}
		return nil
	})
}

func (s *vaultStore) Debit(ctx context.Context, vault *core.Vault, amount decimal.Decimal, version int64) error {
	balance := vault.Balance.Sub(amount)
	if balance.IsNegative() {
		return core.ErrInsufficientTreasury
	}

	tx := s.db.Update().Model(core.Vault{}).
		Where("asset_id = ? and version = ?", vault.AssetID, version).
		Updates(map[string]interface{}{
			"balance": balance,
			"version": version + 1,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	vault.Balance = balance
	vault.Version = version + 1
	return nil
}

func (s *vaultStore) CreateTransfer(ctx context.Context, transfer *core.Transfer) error {
	return s.db.Update().Where("trace_id = ?", transfer.TraceID).FirstOrCreate(transfer).Error
}

func (s *vaultStore) Transfers(ctx context.Context, userID string, limit int) ([]*core.Transfer, error) {
	var transfers []*core.Transfer
	if err := s.db.View().Where("user_id = ?", userID).Order("id desc").Limit(limit).Find(&transfers).Error; err != nil {
		return nil, err
	}
	return transfers, nil
}
