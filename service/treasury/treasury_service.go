package treasury

import (
	"context"

	"lever/core"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

type treasuryService struct {
	vaults core.IVaultStore
}

// New new treasury service
func New(vaults core.IVaultStore) core.ITreasuryService {
	return &treasuryService{vaults: vaults}
}

func (s *treasuryService) Balance(ctx context.Context, assetID string) (decimal.Decimal, error) {
	vault, err := s.vaults.Find(ctx, assetID)
	if err != nil {
		return decimal.Zero, err
	}

	return vault.Balance, nil
}

func (s *treasuryService) Transfer(ctx context.Context, userID, assetID string, amount decimal.Decimal, traceID string) error {
	if !amount.IsPositive() {
		return core.ErrInvalidAmount
	}

	vault, err := s.vaults.Find(ctx, assetID)
	if err != nil {
		return err
	}
	if vault.Balance.LessThan(amount) {
		return core.ErrInsufficientTreasury
	}

	if err := s.vaults.Debit(ctx, vault, amount, vault.Version); err != nil {
		return err
	}

	if err := s.vaults.CreateTransfer(ctx, &core.Transfer{
		TraceID: traceID,
		UserID:  userID,
		AssetID: assetID,
		Amount:  amount,
	}); err != nil {
		return err
	}

	logger.FromContext(ctx).
		WithField("user_id", userID).
		WithField("asset_id", assetID).
		WithField("amount", amount).
		Infoln("treasury transfer out")
	return nil
}
