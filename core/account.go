package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Account lending account, created lazily on first interaction
type Account struct {
	ID     uint64 `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	UserID string `sql:"size:36;unique_index:user_idx" json:"user_id"`
	// efficiency mode the account has opted into, 0 = default
	EModeID   int64     `sql:"default:0" json:"emode_id"`
	Version   int64     `sql:"default:0" json:"version"`
	CreatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Membership a market the account has entered as collateral
type Membership struct {
	ID        uint64    `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	UserID    string    `sql:"size:36;unique_index:member_idx" json:"user_id"`
	AssetID   string    `sql:"size:36;unique_index:member_idx" json:"asset_id"`
	Version   int64     `sql:"default:0" json:"version"`
	CreatedAt time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// EquityVariant factor selection for equity computation
type EquityVariant int

const (
	// EquityBorrowLimit weights collateral by collateral factor / eMode LTV
	EquityBorrowLimit EquityVariant = iota
	// EquityLiquidation weights collateral by the liquidation threshold
	EquityLiquidation
)

// Hypothetical simulated effect applied on top of the stored position
type Hypothetical struct {
	AssetID      string
	RedeemTokens decimal.Decimal
	BorrowAmount decimal.Decimal
}

// AccountEquity signed cross-market position of an account.
// Collateral and Shortfall are both non-negative and never both nonzero.
type AccountEquity struct {
	Collateral    decimal.Decimal `json:"collateral"`
	Shortfall     decimal.Decimal `json:"shortfall"`
	SumCollateral decimal.Decimal `json:"sum_collateral"`
	SumBorrow     decimal.Decimal `json:"sum_borrow"`
}

// IAccountStore account & membership store interface
type IAccountStore interface {
	Save(ctx context.Context, account *Account) error
	Find(ctx context.Context, userID string) (*Account, error)
	Update(ctx context.Context, account *Account, version int64) error
	EnterMarket(ctx context.Context, userID, assetID string) error
	ExitMarket(ctx context.Context, userID, assetID string) error
	FindMembership(ctx context.Context, userID, assetID string) (*Membership, error)
	Memberships(ctx context.Context, userID string) ([]*Membership, error)
}

// IAccountService membership tracker & account equity calculator
type IAccountService interface {
	EnterMarkets(ctx context.Context, userID string, assetIDs []string) ([]bool, error)
	ExitMarkets(ctx context.Context, userID string, assetIDs []string) ([]bool, error)
	SetAccountEMode(ctx context.Context, userID string, emodeID int64) error
	CalcAccountEquity(ctx context.Context, userID string, variant EquityVariant, hypo *Hypothetical) (*AccountEquity, error)
	HasBorrows(ctx context.Context, userID string) (bool, error)
	// isolated collateral of the account, nil when not in isolation mode
	IsolatedCollateral(ctx context.Context, userID string) (*Market, error)
}
