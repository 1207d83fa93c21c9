package core

import "strconv"

// ErrorCode int
type ErrorCode int

const (
	// ErrUnknown unknown
	ErrUnknown ErrorCode = 100000
	// ErrOperationForbidden caller is not owner/guardian/expected market
	ErrOperationForbidden ErrorCode = 100001
	// ErrOperationInProgress re-entrant call into an in-flight operation
	ErrOperationInProgress ErrorCode = 100002

	// ErrMarketNotFound no market
	ErrMarketNotFound ErrorCode = 100100
	// ErrMarketAlreadyListed asset already listed
	ErrMarketAlreadyListed ErrorCode = 100101
	// ErrMarketNotSupported candidate failed the market identity check
	ErrMarketNotSupported ErrorCode = 100102

	// ErrInvalidParameter parameter out of allowed bounds
	ErrInvalidParameter ErrorCode = 100200
	// ErrInvalidAmount invalid amount
	ErrInvalidAmount ErrorCode = 100201

	// ErrInvalidPrice oracle unavailable or zero for a required asset
	ErrInvalidPrice ErrorCode = 100300

	// ErrSupplyCapExceeded post-mint supply over cap
	ErrSupplyCapExceeded ErrorCode = 100400
	// ErrBorrowCapExceeded post-borrow total borrows over cap
	ErrBorrowCapExceeded ErrorCode = 100401
	// ErrDebtCeilingExceeded isolated collateral debt over ceiling
	ErrDebtCeilingExceeded ErrorCode = 100402
	// ErrInsufficientTreasury treasury cannot cover a reward claim
	ErrInsufficientTreasury ErrorCode = 100403

	// ErrInsufficientLiquidity account has or would have shortfall
	ErrInsufficientLiquidity ErrorCode = 100500
	// ErrNoShortfall liquidation target is not under water
	ErrNoShortfall ErrorCode = 100501
	// ErrTooMuchRepay repay exceeds close-factor-bounded max
	ErrTooMuchRepay ErrorCode = 100502
	// ErrExitNotAllowed residual balance or resulting shortfall on exit
	ErrExitNotAllowed ErrorCode = 100503
	// ErrSeizeNotAllowed seize not allowed
	ErrSeizeNotAllowed ErrorCode = 100504

	// ErrProtocolPaused global pause switch engaged
	ErrProtocolPaused ErrorCode = 100600
	// ErrActionPaused action disabled globally or per-market
	ErrActionPaused ErrorCode = 100601

	// ErrEModeMismatch account and market disagree on efficiency mode
	ErrEModeMismatch ErrorCode = 100700
	// ErrNotBorrowableInIsolation asset not flagged borrowable in isolation
	ErrNotBorrowableInIsolation ErrorCode = 100701
	// ErrIsolationCollateralMix isolated collateral mixed with others
	ErrIsolationCollateralMix ErrorCode = 100702
)

func (e ErrorCode) String() string {
	return strconv.Itoa(int(e))
}

func (e ErrorCode) Error() string {
	return e.String()
}
