package cmd

import (
	"lever/core"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

var addEModeCmd = &cobra.Command{
	Use:   "add-emode",
	Short: "create or update an efficiency mode category",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		emodeStore := provideEModeStore(database)

		idFlag, _ := cmd.Flags().GetString("id")
		label, _ := cmd.Flags().GetString("label")

		category := &core.EModeCategory{
			ID:                   cast.ToInt64(idFlag),
			Label:                label,
			CloseFactor:          mustDecimalFlag(cmd, "close-factor"),
			LiquidationIncentive: mustDecimalFlag(cmd, "incentive"),
		}
		if category.ID <= 0 {
			cmd.PrintErrln("invalid category id")
			return
		}

		if err := emodeStore.Save(ctx, category); err != nil {
			cmd.PrintErrln("save emode category failed:", err)
			return
		}

		cmd.Println("emode category saved:", category.ID, category.Label)
	},
}

func init() {
	rootCmd.AddCommand(addEModeCmd)

	addEModeCmd.Flags().String("id", "0", "category id")
	addEModeCmd.Flags().String("label", "", "category label")
	addEModeCmd.Flags().String("close-factor", "0.5", "close factor")
	addEModeCmd.Flags().String("incentive", "1.08", "liquidation incentive")
}
