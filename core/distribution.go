package core

import (
	"context"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// DistributionSide supply or borrow side of a market
type DistributionSide int

const (
	// DistributionSideSupply supply side
	DistributionSideSupply DistributionSide = iota + 1
	// DistributionSideBorrow borrow side
	DistributionSideBorrow
)

func (s DistributionSide) String() string {
	if s == DistributionSideBorrow {
		return "borrow"
	}
	return "supply"
}

// DistributionState per-market per-side reward accumulator
type DistributionState struct {
	ID      uint64           `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	AssetID string           `sql:"size:36;unique_index:dist_idx" json:"asset_id"`
	Side    DistributionSide `sql:"unique_index:dist_idx" json:"side"`
	// monotonically increasing scaled accumulator
	Index decimal.Decimal `sql:"type:decimal(32,16);default:0" json:"index"`
	// reward tokens per block
	Speed decimal.Decimal `sql:"type:decimal(20,8);default:0" json:"speed"`
	// block of the last index advance
	Block     int64     `sql:"default:0" json:"block"`
	Version   int64     `sql:"default:0" json:"version"`
	CreatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// DistributionSnapshot last index seen by an account on a market side
type DistributionSnapshot struct {
	ID        uint64           `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	UserID    string           `sql:"size:36;unique_index:snap_idx" json:"user_id"`
	AssetID   string           `sql:"size:36;unique_index:snap_idx" json:"asset_id"`
	Side      DistributionSide `sql:"unique_index:snap_idx" json:"side"`
	Index     decimal.Decimal  `sql:"type:decimal(32,16);default:0" json:"index"`
	Version   int64            `sql:"default:0" json:"version"`
	UpdatedAt time.Time        `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Reward accrued-but-unclaimed balance of an account
type Reward struct {
	ID        uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	UserID    string          `sql:"size:36;unique_index:reward_user_idx" json:"user_id"`
	Accrued   decimal.Decimal `sql:"type:decimal(32,8);default:0" json:"accrued"`
	Version   int64           `sql:"default:0" json:"version"`
	UpdatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Claim settled reward payout record
type Claim struct {
	ID        uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	TraceID   string          `sql:"size:36;unique_index:claim_trace_idx" json:"trace_id"`
	UserID    string          `sql:"size:36;index:claim_user_idx" json:"user_id"`
	AssetID   string          `sql:"size:36" json:"asset_id"`
	Amount    decimal.Decimal `sql:"type:decimal(32,8)" json:"amount"`
	Markets   pq.StringArray  `sql:"type:varchar(1024)" json:"markets"`
	CreatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// IDistributionStore distribution state & snapshot store interface
type IDistributionStore interface {
	SaveState(ctx context.Context, state *DistributionState) error
	FindState(ctx context.Context, assetID string, side DistributionSide) (*DistributionState, error)
	AllStates(ctx context.Context) ([]*DistributionState, error)
	UpdateState(ctx context.Context, state *DistributionState, version int64) error
	SaveSnapshot(ctx context.Context, snapshot *DistributionSnapshot) error
	FindSnapshot(ctx context.Context, userID, assetID string, side DistributionSide) (*DistributionSnapshot, error)
	UpdateSnapshot(ctx context.Context, snapshot *DistributionSnapshot, version int64) error
}

// IRewardStore accrued reward ledger interface
type IRewardStore interface {
	Find(ctx context.Context, userID string) (*Reward, error)
	Add(ctx context.Context, userID string, amount decimal.Decimal) error
	// Settle zeroes the accrued balance and returns the settled amount
	Settle(ctx context.Context, userID string) (decimal.Decimal, error)
	CreateClaim(ctx context.Context, claim *Claim) error
	Claims(ctx context.Context, userID string, limit int) ([]*Claim, error)
}

// IDistributionService reward distribution engine
type IDistributionService interface {
	SetSpeed(ctx context.Context, caller, assetID string, side DistributionSide, speed decimal.Decimal, now time.Time) error
	GlobalSpeed(ctx context.Context) (decimal.Decimal, error)
	Accrue(ctx context.Context, assetID string, side DistributionSide, now time.Time) error
	DistributeSupplier(ctx context.Context, assetID, userID string, now time.Time) error
	DistributeBorrower(ctx context.Context, assetID, userID string, now time.Time) error
	Pause(ctx context.Context, caller string) error
	Unpause(ctx context.Context, caller string, now time.Time) error
	ClaimReward(ctx context.Context, userID string, assetIDs []string, now time.Time) (decimal.Decimal, error)
	ClaimAllReward(ctx context.Context, userID string, now time.Time) (decimal.Decimal, error)
}
