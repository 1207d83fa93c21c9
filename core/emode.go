package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// EModeCategory efficiency mode category. Markets joining a category carry
// their own LTV/threshold overrides; the category owns the liquidation
// economics shared by its members.
type EModeCategory struct {
	ID                   int64           `sql:"PRIMARY_KEY" json:"id"`
	Label                string          `sql:"size:32" json:"label"`
	CloseFactor          decimal.Decimal `sql:"type:decimal(20,8)" json:"close_factor"`
	LiquidationIncentive decimal.Decimal `sql:"type:decimal(20,8)" json:"liquidation_incentive"`
	Version              int64           `sql:"default:0" json:"version"`
	CreatedAt            time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt            time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// IEModeStore emode category store interface
type IEModeStore interface {
	Save(ctx context.Context, category *EModeCategory) error
	Find(ctx context.Context, id int64) (*EModeCategory, error)
	All(ctx context.Context) ([]*EModeCategory, error)
}
