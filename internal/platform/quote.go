package platform

import "errors"

// Quote errors.
var (
	ErrEmptyPool     = errors.New("pool has no reserves")
	ErrZeroDeposit   = errors.New("deposit amount must be positive")
)

// LiquidityQuote is the result of quoting a proportional AMM deposit.
type LiquidityQuote struct {
	// LPTokensOut is the LP amount minted for the deposit.
	LPTokensOut float64
	// MaxBase is the maximum token amount committed (slippage applied).
	MaxBase float64
	// MaxQuote is the maximum SOL amount committed (slippage applied).
	MaxQuote float64
}

// QuoteAddLiquidity computes, for a proportional constant-product
// deposit of solIn SOL, the paired token amount required, the LP
// tokens mintable, and the maximum base/quote amounts to commit under
// the given slippage tolerance (percent).
func QuoteAddLiquidity(r PoolReserves, solIn, slippagePct float64) (LiquidityQuote, error) {
	if solIn <= 0 {
		return LiquidityQuote{}, ErrZeroDeposit
	}
	if r.Base <= 0 || r.Quote <= 0 || r.LPSupply <= 0 {
		return LiquidityQuote{}, ErrEmptyPool
	}

	tokenRequired := solIn * r.Base / r.Quote
	lpOut := r.LPSupply * solIn / r.Quote
	factor := 1 + slippagePct/100

	return LiquidityQuote{
		LPTokensOut: lpOut,
		MaxBase:     tokenRequired * factor,
		MaxQuote:    solIn * factor,
	}, nil
}
