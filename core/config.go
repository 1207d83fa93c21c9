package core

import (
	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Config lever node config
type Config struct {
	App         App         `json:"app"`
	DB          db.Config   `json:"db"`
	PriceOracle PriceOracle `json:"price_oracle"`
	Risk        Risk        `json:"risk"`
	Admins      []string    `json:"admins"`
	Guardian    string      `json:"guardian"`
}

// App app config
type App struct {
	Port int `json:"port"`
	// unix timestamp of block zero
	Genesis       int64  `json:"genesis"`
	RewardAssetID string `json:"reward_asset_id"`
}

// PriceOracle price oracle config
type PriceOracle struct {
	EndPoint string `json:"end_point"`
	// seconds between polls
	Interval int64 `json:"interval"`
	// seconds a price stays usable, 0 = forever
	MaxAge int64 `json:"max_age"`
}

// Risk protocol level risk defaults
type Risk struct {
	CloseFactor                decimal.Decimal `json:"close_factor"`
	LiquidationIncentive       decimal.Decimal `json:"liquidation_incentive"`
	LiquidationThresholdMargin decimal.Decimal `json:"liquidation_threshold_margin"`
}
