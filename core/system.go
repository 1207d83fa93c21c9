package core

import (
	"github.com/shopspring/decimal"
)

var (
	// DefaultCloseFactor half the borrow per liquidation
	DefaultCloseFactor = decimal.NewFromFloat(0.5)
	// DefaultLiquidationIncentive 8% liquidator bonus
	DefaultLiquidationIncentive = decimal.NewFromFloat(1.08)
	// DefaultLiquidationThresholdMargin threshold headroom over the
	// collateral factor when a new market is listed
	DefaultLiquidationThresholdMargin = decimal.NewFromFloat(0.05)
)

// System stores protocol-wide information.
type System struct {
	Admins []string
	// guardian may pause but never unpause
	Guardian string
	// default max fraction of a borrow repayable per liquidation
	CloseFactor decimal.Decimal
	// default liquidator bonus multiplier
	LiquidationIncentive decimal.Decimal
	// margin added to the collateral factor when a new market is listed
	LiquidationThresholdMargin decimal.Decimal
	// asset streamed by the distribution engine
	RewardAssetID string
	Genesis       int64
	Version       string
}

// IsAdmin is admin
func (s *System) IsAdmin(userID string) bool {
	for _, a := range s.Admins {
		if a == userID {
			return true
		}
	}

	return false
}

// IsGuardian is the pause guardian
func (s *System) IsGuardian(userID string) bool {
	return s.Guardian != "" && s.Guardian == userID
}
