package price

import (
	"context"
	"time"

	"lever/core"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

type priceStore struct {
	db *db.DB
}

// New new price store
func New(db *db.DB) core.IPriceStore {
	return &priceStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		if err := db.Update().AutoMigrate(core.Price{}).Error; err != nil {
			return err
		}
		return db.Update().Model(core.Price{}).
			AddUniqueIndex("price_asset_idx", "asset_id").Error
	})
}

func (s *priceStore) Save(ctx context.Context, assetID string, price decimal.Decimal, at time.Time) error {
	tx := s.db.Update().Model(core.Price{}).
		Where("asset_id = ?", assetID).
		Updates(map[string]interface{}{
			"price":      price,
			"updated_at": at,
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return s.db.Update().Create(&core.Price{
			AssetID:   assetID,
			Price:     price,
			UpdatedAt: at,
		}).Error
	}
	return nil
}

func (s *priceStore) Find(ctx context.Context, assetID string) (*core.Price, error) {
	var price core.Price
	err := s.db.View().Where("asset_id = ?", assetID).First(&price).Error
	if store.IsErrNotFound(err) {
		return &core.Price{}, nil
	}
	return &price, err
}
