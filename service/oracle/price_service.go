package oracle

import (
	"context"
	"time"

	"lever/core"

	"github.com/shopspring/decimal"
)

type priceService struct {
	prices core.IPriceStore
	maxAge time.Duration
}

// New new price oracle service. maxAge bounds how stale an on-record
// price may be before risk checks refuse to use it; non-positive
// disables the check.
func New(prices core.IPriceStore, maxAge time.Duration) core.IPriceOracleService {
	return &priceService{prices: prices, maxAge: maxAge}
}

// GetPrice reads the asset's latest feed quote, listed market or not.
func (s *priceService) GetPrice(ctx context.Context, assetID string) (decimal.Decimal, error) {
	price, err := s.prices.Find(ctx, assetID)
	if err != nil {
		return decimal.Zero, err
	}

	if !price.Price.IsPositive() {
		return decimal.Zero, core.ErrInvalidPrice
	}
	if s.maxAge > 0 && time.Since(price.UpdatedAt) > s.maxAge {
		return decimal.Zero, core.ErrInvalidPrice
	}

	return price.Price, nil
}

func (s *priceService) GetUnderlyingPrice(_ context.Context, market *core.Market) (decimal.Decimal, error) {
	if !market.HasValidPrice(time.Now(), s.maxAge) {
		return decimal.Zero, core.ErrInvalidPrice
	}

	return market.Price, nil
}
