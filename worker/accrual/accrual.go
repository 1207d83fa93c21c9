package accrual

import (
	"context"
	"time"

	"lever/core"
	"lever/worker"

	"github.com/fox-one/pkg/logger"
)

// Worker keeps distribution indices fresh so long idle spans never pile
// up into a single giant catch-up at claim time
type Worker struct {
	worker.TickWorker
	marketStore         core.IMarketStore
	distributionService core.IDistributionService
}

// New new accrual worker
func New(marketStore core.IMarketStore, distributionService core.IDistributionService) *Worker {
	return &Worker{
		TickWorker: worker.TickWorker{
			Delay:    time.Minute,
			ErrDelay: 10 * time.Second,
		},
		marketStore:         marketStore,
		distributionService: distributionService,
	}
}

// Run run worker
func (w *Worker) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "accrual")
	ctx = logger.WithContext(ctx, log)

	return w.StartTick(ctx, func(ctx context.Context) error {
		return w.onWork(ctx)
	})
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx)

	markets, err := w.marketStore.All(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	for _, market := range markets {
		for _, side := range []core.DistributionSide{core.DistributionSideSupply, core.DistributionSideBorrow} {
			if err := w.distributionService.Accrue(ctx, market.AssetID, side, now); err != nil {
				log.WithError(err).
					WithField("asset_id", market.AssetID).
					WithField("side", side.String()).
					Errorln("accrue failed")
				return err
			}
		}
	}

	return nil
}
