package rest

import (
	"context"
	"net/http"
	"strings"

	"lever/core"
	"lever/handler/param"
	"lever/handler/render"
	"lever/handler/views"

	"github.com/shopspring/decimal"
)

func allMarketsHandler(marketStore core.IMarketStore, distributionStore core.IDistributionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		markets, err := marketStore.All(ctx)
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		marketViews := make([]*views.Market, 0, len(markets))
		for _, m := range markets {
			marketViews = append(marketViews, getMarketView(ctx, m, distributionStore))
		}

		render.JSON(w, marketViews)
	}
}

func marketHandler(marketStore core.IMarketStore, distributionStore core.IDistributionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var params struct {
			Symbol string `json:"symbol"`
		}
		if err := param.Binding(r, &params); err != nil {
			render.BadRequest(w, err)
			return
		}

		market, err := marketStore.FindBySymbol(ctx, strings.ToUpper(params.Symbol))
		if err != nil {
			render.BadRequest(w, err)
			return
		}
		if market.ID == 0 {
			render.Err(w, core.ErrMarketNotFound)
			return
		}

		render.JSON(w, getMarketView(ctx, market, distributionStore))
	}
}

func getMarketView(ctx context.Context, market *core.Market, distributionStore core.IDistributionStore) *views.Market {
	supplySpeed, borrowSpeed := decimal.Zero, decimal.Zero
	if state, err := distributionStore.FindState(ctx, market.AssetID, core.DistributionSideSupply); err == nil {
		supplySpeed = state.Speed
	}
	if state, err := distributionStore.FindState(ctx, market.AssetID, core.DistributionSideBorrow); err == nil {
		borrowSpeed = state.Speed
	}

	return &views.Market{
		Market:      *market,
		IsIsolated:  market.IsIsolated(),
		SupplyValue: market.TotalSupply.Mul(market.ExchangeRate).Mul(market.Price),
		BorrowValue: market.TotalBorrows.Mul(market.Price),
		SupplySpeed: supplySpeed,
		BorrowSpeed: borrowSpeed,
	}
}
