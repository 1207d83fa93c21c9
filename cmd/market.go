package cmd

import (
	"strings"

	"lever/core"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

func adminID(cmd *cobra.Command) string {
	admin, _ := cmd.Flags().GetString("admin")
	if admin == "" && len(cfg.Admins) > 0 {
		admin = cfg.Admins[0]
	}
	return admin
}

func mustDecimalFlag(cmd *cobra.Command, name string) decimal.Decimal {
	flag, err := cmd.Flags().GetString(name)
	if err != nil {
		panic(err)
	}
	value, err := decimal.NewFromString(flag)
	if err != nil {
		panic("invalid " + name)
	}
	return value
}

var addMarketCmd = &cobra.Command{
	Use:     "add-market",
	Aliases: []string{"am"},
	Short:   "add market",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		marketService := provideMarketService(
			provideSystem(),
			provideMarketStore(database),
			provideFlowStore(database),
			providePriceService(database),
		)

		symbol, _ := cmd.Flags().GetString("symbol")
		assetID, _ := cmd.Flags().GetString("asset")
		ctokenAssetID, _ := cmd.Flags().GetString("ctoken")

		req := core.AddMarketReq{
			Symbol:           strings.ToUpper(symbol),
			AssetID:          assetID,
			CTokenAssetID:    ctokenAssetID,
			CollateralFactor: mustDecimalFlag(cmd, "cf"),
			BorrowFactor:     mustDecimalFlag(cmd, "bf"),
		}

		market, err := marketService.ListMarket(ctx, adminID(cmd), req)
		if err != nil {
			cmd.PrintErrln("add market failed:", err)
			return
		}

		cmd.Println("market added:", market.Symbol, market.AssetID)
	},
}

var updateMarketCmd = &cobra.Command{
	Use:     "update-market",
	Aliases: []string{"um"},
	Short:   "update a market risk parameter",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		marketService := provideMarketService(
			provideSystem(),
			provideMarketStore(database),
			provideFlowStore(database),
			providePriceService(database),
		)

		assetID, _ := cmd.Flags().GetString("asset")
		parameter, _ := cmd.Flags().GetString("param")
		caller := adminID(cmd)

		var err error
		switch parameter {
		case "collateral_factor":
			err = marketService.SetCollateralFactor(ctx, caller, assetID, mustDecimalFlag(cmd, "value"))
		case "borrow_factor":
			err = marketService.SetBorrowFactor(ctx, caller, assetID, mustDecimalFlag(cmd, "value"))
		case "liquidation_threshold":
			err = marketService.SetLiquidationThreshold(ctx, caller, assetID, mustDecimalFlag(cmd, "value"))
		case "supply_cap":
			err = marketService.SetSupplyCap(ctx, caller, assetID, mustDecimalFlag(cmd, "value"))
		case "borrow_cap":
			err = marketService.SetBorrowCap(ctx, caller, assetID, mustDecimalFlag(cmd, "value"))
		case "debt_ceiling":
			err = marketService.SetDebtCeiling(ctx, caller, assetID, mustDecimalFlag(cmd, "value"))
		case "borrowable_in_isolation":
			flag, _ := cmd.Flags().GetString("value")
			err = marketService.SetBorrowableInIsolation(ctx, caller, assetID, cast.ToBool(flag))
		default:
			cmd.PrintErrln("unknown parameter:", parameter)
			return
		}
		if err != nil {
			cmd.PrintErrln("update market failed:", err)
			return
		}

		cmd.Println("market updated")
	},
}

var marketEModeCmd = &cobra.Command{
	Use:   "market-emode",
	Short: "bind a market to an efficiency mode category",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		marketService := provideMarketService(
			provideSystem(),
			provideMarketStore(database),
			provideFlowStore(database),
			providePriceService(database),
		)

		assetID, _ := cmd.Flags().GetString("asset")
		emodeFlag, _ := cmd.Flags().GetString("emode")

		err := marketService.SetMarketEMode(ctx, adminID(cmd), assetID,
			cast.ToInt64(emodeFlag),
			mustDecimalFlag(cmd, "ltv"),
			mustDecimalFlag(cmd, "threshold"),
		)
		if err != nil {
			cmd.PrintErrln("set market emode failed:", err)
			return
		}

		cmd.Println("market emode updated")
	},
}

func init() {
	rootCmd.AddCommand(addMarketCmd)
	rootCmd.AddCommand(updateMarketCmd)
	rootCmd.AddCommand(marketEModeCmd)

	addMarketCmd.Flags().String("admin", "", "admin user id")
	addMarketCmd.Flags().String("symbol", "", "market symbol")
	addMarketCmd.Flags().String("asset", "", "asset id")
	addMarketCmd.Flags().String("ctoken", "", "ctoken asset id")
	addMarketCmd.Flags().String("cf", "0", "collateral factor")
	addMarketCmd.Flags().String("bf", "1", "borrow factor")

	updateMarketCmd.Flags().String("admin", "", "admin user id")
	updateMarketCmd.Flags().String("asset", "", "asset id")
	updateMarketCmd.Flags().String("param", "", "parameter name")
	updateMarketCmd.Flags().String("value", "", "parameter value")

	marketEModeCmd.Flags().String("admin", "", "admin user id")
	marketEModeCmd.Flags().String("asset", "", "asset id")
	marketEModeCmd.Flags().String("emode", "0", "emode category id")
	marketEModeCmd.Flags().String("ltv", "0", "emode ltv")
	marketEModeCmd.Flags().String("threshold", "0", "emode liquidation threshold")
}
