package oracle

import (
	"context"
	"testing"
	"time"

	"lever/core"
	"lever/service/servicetest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPrice(t *testing.T) {
	ctx := context.Background()
	prices := servicetest.NewPriceStore()
	service := New(prices, time.Minute)

	// unquoted assets have no usable price
	_, err := service.GetPrice(ctx, "btc")
	assert.Equal(t, core.ErrInvalidPrice, err)

	require.Nil(t, prices.Save(ctx, "btc", decimal.New(50000, 0), time.Now()))
	price, err := service.GetPrice(ctx, "btc")
	require.Nil(t, err)
	assert.Equal(t, "50000", price.String())

	// a quote past its freshness window is refused
	require.Nil(t, prices.Save(ctx, "btc", decimal.New(50000, 0), time.Now().Add(-2*time.Minute)))
	_, err = service.GetPrice(ctx, "btc")
	assert.Equal(t, core.ErrInvalidPrice, err)

	// non-positive maxAge disables the staleness gate
	stale := New(prices, 0)
	price, err = stale.GetPrice(ctx, "btc")
	require.Nil(t, err)
	assert.Equal(t, "50000", price.String())

	// a zero quote never prices anything
	require.Nil(t, prices.Save(ctx, "eth", decimal.Zero, time.Now()))
	_, err = service.GetPrice(ctx, "eth")
	assert.Equal(t, core.ErrInvalidPrice, err)
}

func TestGetUnderlyingPrice(t *testing.T) {
	ctx := context.Background()
	service := New(servicetest.NewPriceStore(), time.Minute)

	market := &core.Market{
		AssetID:        "btc",
		Price:          decimal.New(3, 0),
		PriceUpdatedAt: time.Now(),
	}

	price, err := service.GetUnderlyingPrice(ctx, market)
	require.Nil(t, err)
	assert.Equal(t, "3", price.String())

	market.PriceUpdatedAt = time.Now().Add(-time.Hour)
	_, err = service.GetUnderlyingPrice(ctx, market)
	assert.Equal(t, core.ErrInvalidPrice, err)
}
