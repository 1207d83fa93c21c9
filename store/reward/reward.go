package reward

import (
	"context"

	"lever/core"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

type rewardStore struct {
	db *db.DB
}

// New new reward store
func New(db *db.DB) core.IRewardStore {
	return &rewardStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update()
		if err := tx.AutoMigrate(core.Reward{}).Error; err != nil {
			return err
		}

		if err := tx.AutoMigrate(core.Claim{}).Error; err != nil {
			return err
		}

		if err := tx.Model(core.Reward{}).AddUniqueIndex("idx_rewards_user_id", "user_id").Error; err != nil {
			return err
		}

		if err := tx.Model(core.Claim{}).AddUniqueIndex("idx_claims_trace_id", "trace_id").Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *rewardStore) Find(ctx context.Context, userID string) (*core.Reward, error) {
	var reward core.Reward
	err := s.db.View().Where("user_id = ?", userID).First(&reward).Error
	if store.IsErrNotFound(err) {
		return &core.Reward{}, nil
	}
	return &reward, err
}

func (s *rewardStore) Add(ctx context.Context, userID string, amount decimal.Decimal) error {
	return s.db.Tx(func(tx *db.DB) error {
		var reward core.Reward
		err := tx.Update().Where("user_id = ?", userID).First(&reward).Error
		if gorm.IsRecordNotFoundError(err) {
			return tx.Update().Create(&core.Reward{
				UserID:  userID,
				Accrued: amount,
			}).Error
		}
		if err != nil {
			return err
		}

		updates := tx.Update().Model(core.Reward{}).
			Where("user_id = ? and version = ?", userID, reward.Version).
			Updates(map[string]interface{}{
				"accrued": reward.Accrued.Add(amount),
				"version": reward.Version + 1,
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

func (s *rewardStore) Settle(ctx context.Context, userID string) (decimal.Decimal, error) {
	settled := decimal.Zero
	err := s.db.Tx(func(tx *db.DB) error {
		var reward core.Reward
		err := tx.Update().Where("user_id = ?", userID).First(&reward).Error
		if gorm.IsRecordNotFoundError(err) {
			return nil
		}
		if err != nil {
			return err
		}
		if !reward.Accrued.IsPositive() {
			return nil
		}

		updates := tx.Update().Model(core.Reward{}).
			Where("user_id = ? and version = ?", userID, reward.Version).
			Updates(map[string]interface{}{
				"accrued": decimal.Zero,
				"version": reward.Version + 1,
			})
		if updates.Error != nil {
			return updates.Error
		}
		if updates.RowsAffected == 0 {
			return db.ErrOptimisticLock
		}

		settled = reward.Accrued
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return settled, nil
}

func (s *rewardStore) CreateClaim(ctx context.Context, claim *core.Claim) error {
	return s.db.Update().Where("trace_id = ?", claim.TraceID).FirstOrCreate(claim).Error
}

func (s *rewardStore) Claims(ctx context.Context, userID string, limit int) ([]*core.Claim, error) {
	var claims []*core.Claim
	if err := s.db.View().Where("user_id = ?", userID).Order("id desc").Limit(limit).Find(&claims).Error; err != nil {
		return nil, err
	}
	return claims, nil
}
