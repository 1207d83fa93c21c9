package pricesync

import (
	"context"
	"time"

	"lever/core"
	"lever/pkg/resthttp"
	"lever/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// Worker polls the price endpoint, records every quoted asset and
// refreshes prices on listed markets
type Worker struct {
	worker.TickWorker
	endpoint    string
	marketStore core.IMarketStore
	priceStore  core.IPriceStore
}

type priceItem struct {
	AssetID string          `json:"asset_id"`
	Price   decimal.Decimal `json:"price"`
}

// New new price sync worker
func New(endpoint string, interval time.Duration, marketStore core.IMarketStore, priceStore core.IPriceStore) *Worker {
	return &Worker{
		TickWorker: worker.TickWorker{
			Delay:    interval,
			ErrDelay: 10 * time.Second,
		},
		endpoint:    endpoint,
		marketStore: marketStore,
		priceStore:  priceStore,
	}
}

// Run run worker
func (w *Worker) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "pricesync")
	ctx = logger.WithContext(ctx, log)

	return w.StartTick(ctx, func(ctx context.Context) error {
		return w.onWork(ctx)
	})
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx)

	var items []priceItem
	if _, err := resthttp.Execute(resthttp.Request(ctx), "GET", w.endpoint, nil, &items); err != nil {
		log.WithError(err).Errorln("fetch prices failed")
		return err
	}

	now := time.Now()

	// quotes are kept per asset so markets can be priced before listing
	prices := make(map[string]decimal.Decimal, len(items))
	for _, item := range items {
		if !item.Price.IsPositive() {
			continue
		}

		if err := w.priceStore.Save(ctx, item.AssetID, item.Price, now); err != nil {
			log.WithError(err).WithField("asset_id", item.AssetID).Errorln("save price failed")
			return err
		}
		prices[item.AssetID] = item.Price
	}

	markets, err := w.marketStore.All(ctx)
	if err != nil {
		return err
	}

	for _, market := range markets {
		price, ok := prices[market.AssetID]
		if !ok {
			continue
		}

		// an unchanged quote still refreshes the timestamp, otherwise a
		// stable price would age past the staleness window
		market.Price = price
		market.PriceUpdatedAt = now
		if err := w.marketStore.Update(ctx, market, market.Version); err != nil {
			log.WithError(err).WithField("asset_id", market.AssetID).Errorln("update price failed")
			return err
		}
	}

	return nil
}
