package cmd

import (
	"sync"
	"time"

	"lever/worker"
	"lever/worker/accrual"
	"lever/worker/pricesync"

	"github.com/fox-one/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "lever job worker",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)
		ctx = logger.WithContext(ctx, log)

		database := provideDatabase()
		defer database.Close()

		system := provideSystem()

		propertyStore := providePropertyStore(database)
		marketStore := provideMarketStore(database)
		supplyStore := provideSupplyStore(database)
		borrowStore := provideBorrowStore(database)
		distributionStore := provideDistributionStore(database)
		rewardStore := provideRewardStore(database)
		vaultStore := provideVaultStore(database)
		flowStore := provideFlowStore(database)

		treasuryService := provideTreasuryService(vaultStore)
		distributionService := provideDistributionService(system, propertyStore, marketStore, supplyStore, borrowStore, distributionStore, rewardStore, flowStore, treasuryService)

		workers := []worker.Worker{
			accrual.New(marketStore, distributionService),
			pricesync.New(cfg.PriceOracle.EndPoint, time.Duration(cfg.PriceOracle.Interval)*time.Second, marketStore, providePriceStore(database)),
		}

		wg := sync.WaitGroup{}
		for _, w := range workers {
			wg.Add(1)

			go func(worker worker.Worker) {
				defer wg.Done()
				_ = worker.Run(ctx)
			}(w)
		}

		wg.Wait()
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
