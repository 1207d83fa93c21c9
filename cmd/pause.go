package cmd

import (
	"lever/core"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

func providePolicy() (core.IPolicyService, func() error) {
	database := provideDatabase()
	system := provideSystem()

	propertyStore := providePropertyStore(database)
	marketStore := provideMarketStore(database)
	supplyStore := provideSupplyStore(database)
	borrowStore := provideBorrowStore(database)
	accountStore := provideAccountStore(database)
	emodeStore := provideEModeStore(database)
	distributionStore := provideDistributionStore(database)
	rewardStore := provideRewardStore(database)
	vaultStore := provideVaultStore(database)
	flowStore := provideFlowStore(database)

	priceService := providePriceService(database)
	treasuryService := provideTreasuryService(vaultStore)
	accountService := provideAccountService(marketStore, supplyStore, borrowStore, accountStore, emodeStore, flowStore, priceService)
	liquidationService := provideLiquidationService(system, marketStore, borrowStore, accountStore, emodeStore, accountService, priceService)
	distributionService := provideDistributionService(system, propertyStore, marketStore, supplyStore, borrowStore, distributionStore, rewardStore, flowStore, treasuryService)

	policy := providePolicyService(system, propertyStore, marketStore, borrowStore, accountStore, flowStore, accountService, liquidationService, distributionService, priceService)
	return policy, database.Close
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "pause the protocol or a single action",
	Run: func(cmd *cobra.Command, args []string) {
		setPaused(cmd, true)
	},
}

var unpauseCmd = &cobra.Command{
	Use:   "unpause",
	Short: "release the protocol or a single action",
	Run: func(cmd *cobra.Command, args []string) {
		setPaused(cmd, false)
	},
}

func setPaused(cmd *cobra.Command, paused bool) {
	ctx := cmd.Context()

	policy, closer := providePolicy()
	defer closer()

	caller, _ := cmd.Flags().GetString("caller")
	if caller == "" && len(cfg.Admins) > 0 {
		caller = cfg.Admins[0]
	}

	action, _ := cmd.Flags().GetString("action")
	assetID, _ := cmd.Flags().GetString("asset")

	var err error
	switch {
	case action == "":
		err = policy.SetProtocolPaused(ctx, caller, paused)
	case assetID != "":
		err = policy.SetMarketActionPaused(ctx, caller, assetID, marketAction(action), paused)
	default:
		err = policy.SetActionPaused(ctx, caller, core.PauseAction(action), paused)
	}
	if err != nil {
		cmd.PrintErrln("pause switch failed:", err)
		return
	}

	cmd.Println("pause switch set to", cast.ToString(paused))
}

func marketAction(action string) core.MarketAction {
	switch action {
	case "redeem":
		return core.MarketActionRedeem
	case "borrow":
		return core.MarketActionBorrow
	default:
		return core.MarketActionMint
	}
}

func init() {
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(unpauseCmd)

	for _, cmd := range []*cobra.Command{pauseCmd, unpauseCmd} {
		cmd.Flags().String("caller", "", "admin or guardian user id")
		cmd.Flags().String("action", "", "action to switch, empty for the whole protocol")
		cmd.Flags().String("asset", "", "limit the switch to a single market")
	}
}
