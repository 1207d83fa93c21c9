package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Supply deposited ctoken balance, maintained by the market's own bookkeeping
type Supply struct {
	ID            uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	UserID        string          `sql:"size:36;unique_index:supply_idx" json:"user_id"`
	CTokenAssetID string          `sql:"size:36;unique_index:supply_idx" json:"ctoken_asset_id"`
	Collaterals   decimal.Decimal `sql:"type:decimal(20,8)" json:"collaterals"`
	Version       int64           `sql:"default:0" json:"version"`
	CreatedAt     time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// ISupplyStore supply store interface
type ISupplyStore interface {
	Save(ctx context.Context, supply *Supply) error
	Find(ctx context.Context, userID, ctokenAssetID string) (*Supply, error)
	FindByUser(ctx context.Context, userID string) ([]*Supply, error)
	FindByCToken(ctx context.Context, ctokenAssetID string) ([]*Supply, error)
	Update(ctx context.Context, supply *Supply, version int64) error
}
