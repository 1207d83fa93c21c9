package emode

import (
	"context"

	"lever/core"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
)

type emodeStore struct {
	db *db.DB
}

// New new emode category store
func New(db *db.DB) core.IEModeStore {
	return &emodeStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		return db.Update().AutoMigrate(core.EModeCategory{}).Error
	})
}

func (s *emodeStore) Save(ctx context.Context, category *core.EModeCategory) error {
	tx := s.db.Update().Model(core.EModeCategory{}).
		Where("id = ?", category.ID).
		Updates(map[string]interface{}{
			"label":                 category.Label,
			"close_factor":          category.CloseFactor,
			"liquidation_incentive": category.LiquidationIncentive,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return s.db.Update().Create(category).Error
	}
	return nil
}

func (s *emodeStore) Find(ctx context.Context, id int64) (*core.EModeCategory, error) {
	var category core.EModeCategory
	err := s.db.View().Where("id = ?", id).First(&category).Error
	if store.IsErrNotFound(err) {
		return &core.EModeCategory{}, nil
	}
	return &category, err
}

func (s *emodeStore) All(ctx context.Context) ([]*core.EModeCategory, error) {
	var categories []*core.EModeCategory
	if err := s.db.View().Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}
