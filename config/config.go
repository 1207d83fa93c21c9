package config

import (
	"fmt"

	"lever/core"

	"github.com/asaskevich/govalidator"
	configUtil "github.com/fox-one/pkg/config"
)

// Load load config file
func Load(configFile string, config *core.Config) error {
	configUtil.AutomaticLoadEnv("LEVER")
	if err := configUtil.LoadYaml(configFile, config); err != nil {
		return err
	}

	defaultConfig(config)
	return validate(config)
}

func defaultConfig(config *core.Config) {
	if config.App.Port == 0 {
		config.App.Port = 80
	}
	if config.PriceOracle.Interval == 0 {
		config.PriceOracle.Interval = 60
	}
	if config.Risk.CloseFactor.IsZero() {
		config.Risk.CloseFactor = core.DefaultCloseFactor
	}
	if config.Risk.LiquidationIncentive.IsZero() {
		config.Risk.LiquidationIncentive = core.DefaultLiquidationIncentive
	}
	if config.Risk.LiquidationThresholdMargin.IsZero() {
		config.Risk.LiquidationThresholdMargin = core.DefaultLiquidationThresholdMargin
	}
}

func validate(config *core.Config) error {
	if config.App.RewardAssetID != "" && !govalidator.IsUUID(config.App.RewardAssetID) {
		return fmt.Errorf("invalid reward asset id %q", config.App.RewardAssetID)
	}

	for _, admin := range config.Admins {
		if !govalidator.IsUUID(admin) {
			return fmt.Errorf("invalid admin id %q", admin)
		}
	}

	if config.Guardian != "" && !govalidator.IsUUID(config.Guardian) {
		return fmt.Errorf("invalid guardian id %q", config.Guardian)
	}

	return nil
}
