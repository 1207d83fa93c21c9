package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Borrow user borrow model
type Borrow struct {
	ID      uint64 `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	UserID  string `sql:"size:36;unique_index:borrow_idx" json:"-"`
	AssetID string `sql:"size:36;unique_index:borrow_idx" json:"asset_id"`
	// principal scaled by the interest index snapshot below
	Principal     decimal.Decimal `sql:"type:decimal(32,16)" json:"principal"`
	InterestIndex decimal.Decimal `sql:"type:decimal(32,16);default:1" json:"interest_index"`
	Version       int64           `sql:"default:0" json:"version"`
	CreatedAt     time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// IBorrowStore borrow store interface
type IBorrowStore interface {
	Create(ctx context.Context, borrow *Borrow) error
	Find(ctx context.Context, userID, assetID string) (*Borrow, error)
	FindByUser(ctx context.Context, userID string) ([]*Borrow, error)
	FindByAssetID(ctx context.Context, assetID string) ([]*Borrow, error)
	Update(ctx context.Context, borrow *Borrow, version int64) error
	Users(ctx context.Context) ([]string, error)
}
