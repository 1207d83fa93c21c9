package cmd

import (
	"time"

	"lever/core"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

func provideDistribution() (core.IDistributionService, core.IVaultStore, func() error) {
	database := provideDatabase()
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
	service := provideDistributionService(system, propertyStore, marketStore, supplyStore, borrowStore, distributionStore, rewardStore, flowStore, treasuryService)
	return service, vaultStore, database.Close
}

var setSpeedCmd = &cobra.Command{
	Use:   "set-speed",
	Short: "set the reward speed of a market side",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		service, _, closer := provideDistribution()
		defer closer()

		assetID, _ := cmd.Flags().GetString("asset")
		sideFlag, _ := cmd.Flags().GetString("side")

		side := core.DistributionSideSupply
		if sideFlag == "borrow" {
			side = core.DistributionSideBorrow
		}

		if err := service.SetSpeed(ctx, adminID(cmd), assetID, side, mustDecimalFlag(cmd, "speed"), time.Now()); err != nil {
			cmd.PrintErrln("set speed failed:", err)
			return
		}

		global, err := service.GlobalSpeed(ctx)
		if err != nil {
			cmd.PrintErrln("read global speed failed:", err)
			return
		}

		cmd.Println("speed set, global speed:", global)
	},
}

var fundTreasuryCmd = &cobra.Command{
	Use:   "fund-treasury",
	Short: "credit the reward vault",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		_, vaultStore, closer := provideDistribution()
		defer closer()

		assetID, _ := cmd.Flags().GetString("asset")
		if assetID == "" {
			assetID = cfg.App.RewardAssetID
		}

		amount := mustDecimalFlag(cmd, "amount")
		if err := vaultStore.Credit(ctx, assetID, amount); err != nil {
			cmd.PrintErrln("fund treasury failed:", err)
			return
		}

		cmd.Println("treasury credited:", cast.ToString(amount))
	},
}

func init() {
	rootCmd.AddCommand(setSpeedCmd)
	rootCmd.AddCommand(fundTreasuryCmd)

	setSpeedCmd.Flags().String("admin", "", "admin user id")
	setSpeedCmd.Flags().String("asset", "", "asset id")
	setSpeedCmd.Flags().String("side", "supply", "supply or borrow")
	setSpeedCmd.Flags().String("speed", "0", "reward tokens per block")

	fundTreasuryCmd.Flags().String("asset", "", "asset id, default reward asset")
	fundTreasuryCmd.Flags().String("amount", "0", "amount to credit")
}
