package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Vault per asset balance held by the protocol for paying rewards
type Vault struct {
	ID        uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	AssetID   string          `sql:"size:36;unique_index:vault_asset_idx" json:"asset_id"`
	Balance   decimal.Decimal `sql:"type:decimal(32,8)" json:"balance"`
	Version   int64           `sql:"default:0" json:"version"`
	CreatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Transfer an outbound payment debited from a vault
type Transfer struct {
	ID        uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	TraceID   string          `sql:"size:36;unique_index:transfer_trace_idx" json:"trace_id"`
	UserID    string          `sql:"size:36;index:transfer_user_idx" json:"user_id"`
	AssetID   string          `sql:"size:36" json:"asset_id"`
	Amount    decimal.Decimal `sql:"type:decimal(32,8)" json:"amount"`
	CreatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// IVaultStore vault store interface
type IVaultStore interface {
	Find(ctx context.Context, assetID string) (*Vault, error)
	Credit(ctx context.Context, assetID string, amount decimal.Decimal) error
	Debit(ctx context.Context, vault *Vault, amount decimal.Decimal, version int64) error
	CreateTransfer(ctx context.Context, transfer *Transfer) error
	Transfers(ctx context.Context, userID string, limit int) ([]*Transfer, error)
}

// ITreasuryService holds the reward token supply and pays claims out.
// A failed transfer must fail the enclosing claim, never partially pay.
type ITreasuryService interface {
	Balance(ctx context.Context, assetID string) (decimal.Decimal, error)
	Transfer(ctx context.Context, userID, assetID string, amount decimal.Decimal, traceID string) error
}
