package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Price latest oracle quote for an asset, kept for every asset the feed
// reports so a market can be priced before it is listed.
type Price struct {
	ID        uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	AssetID   string          `sql:"size:36;unique_index:price_asset_idx" json:"asset_id"`
	Price     decimal.Decimal `sql:"type:decimal(32,8);default:0" json:"price"`
	UpdatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// IPriceStore price store interface
type IPriceStore interface {
	Save(ctx context.Context, assetID string, price decimal.Decimal, at time.Time) error
	Find(ctx context.Context, assetID string) (*Price, error)
}

// IPriceOracleService price oracle adapter. A zero or stale price must be
// reported as ErrInvalidPrice; equity cannot be computed with an unpriced
// asset.
type IPriceOracleService interface {
	GetPrice(ctx context.Context, assetID string) (decimal.Decimal, error)
	GetUnderlyingPrice(ctx context.Context, market *Market) (decimal.Decimal, error)
}
