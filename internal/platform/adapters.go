package platform

import (
	"context"
	"fmt"
	"log"
	"strings"

	"solana-fee-recycler/internal/domain"
	"solana-fee-recycler/internal/solana"
)

// apiAdapter implements Adapter on top of a platform trade API.
type apiAdapter struct {
	platform  domain.Platform
	liquidity bool
	client    *tradeClient
}

// NewPump creates the pump.fun-style adapter. Post-graduation trading
// moves to the platform's own AMM, so liquidity is supported.
func NewPump(endpoint string, rpc solana.Client, confirm solana.Confirmer, logger *log.Logger) Adapter {
	return &apiAdapter{
		platform:  domain.PlatformPump,
		liquidity: true,
		client:    newTradeClient(endpoint, "amm", rpc, confirm, logger),
	}
}

// NewBonk creates the letsbonk-style adapter. Graduated tokens trade
// on an external AMM the platform can deposit into.
func NewBonk(endpoint string, rpc solana.Client, confirm solana.Confirmer, logger *log.Logger) Adapter {
	return &apiAdapter{
		platform:  domain.PlatformBonk,
		liquidity: true,
		client:    newTradeClient(endpoint, "raydium", rpc, confirm, logger),
	}
}

// NewBags creates the bags-style adapter. The platform has no
// depositable AMM: AddLiquidity reports unsupported.
func NewBags(endpoint string, rpc solana.Client, confirm solana.Confirmer, logger *log.Logger) Adapter {
	return &apiAdapter{
		platform:  domain.PlatformBags,
		liquidity: false,
		client:    newTradeClient(endpoint, "", rpc, confirm, logger),
	}
}

// NewRegistry builds the closed adapter set from per-platform endpoints.
func NewRegistry(pumpEndpoint, bonkEndpoint, bagsEndpoint string, rpc solana.Client, confirm solana.Confirmer, logger *log.Logger) Registry {
	return Registry{
		domain.PlatformPump: NewPump(pumpEndpoint, rpc, confirm, logger),
		domain.PlatformBonk: NewBonk(bonkEndpoint, rpc, confirm, logger),
		domain.PlatformBags: NewBags(bagsEndpoint, rpc, confirm, logger),
	}
}

func (a *apiAdapter) Platform() domain.Platform {
	return a.platform
}

func (a *apiAdapter) SupportsLiquidity() bool {
	return a.liquidity
}

// ClaimFees claims accrued creator fees. "Nothing to claim" responses
// are a success with amount 0, not an error.
func (a *apiAdapter) ClaimFees(ctx context.Context, signer *solana.Keypair, mint string) ClaimResult {
	signature, resp, err := a.client.execute(ctx, signer, tradeRequest{
		Action: actionClaim,
		Mint:   mint,
	})
	if err != nil {
		if isNothingToClaim(err) {
			return ClaimResult{Success: true, AmountKnown: true}
		}
		return ClaimResult{Err: err.Error()}
	}
	if signature == "" {
		// No transaction built: no fees accrued.
		return ClaimResult{Success: true, AmountKnown: true}
	}

	result := ClaimResult{Success: true, Signature: signature}
	if resp != nil && resp.AmountSol != nil {
		result.AmountSol = *resp.AmountSol
		result.AmountKnown = true
	}
	return result
}

// Buy spends solAmount SOL buying the token.
func (a *apiAdapter) Buy(ctx context.Context, signer *solana.Keypair, mint string, solAmount float64) TradeResult {
	signature, resp, err := a.client.execute(ctx, signer, tradeRequest{
		Action:      actionBuy,
		Mint:        mint,
		AmountSol:   solAmount,
		SlippagePct: DefaultSlippagePct,
	})
	if err != nil {
		return TradeResult{Err: err.Error()}
	}
	if signature == "" {
		return TradeResult{Err: "platform returned no transaction for buy"}
	}

	result := TradeResult{Success: true, Signature: signature}
	if resp != nil && resp.TokenAmount != nil {
		result.TokenAmountOut = *resp.TokenAmount
	}
	return result
}

// AddLiquidity deposits SOL plus tokens into the mint's pool.
func (a *apiAdapter) AddLiquidity(ctx context.Context, signer *solana.Keypair, mint string, solAmount float64) LiquidityResult {
	if !a.liquidity {
		return LiquidityResult{Err: fmt.Sprintf("add liquidity unsupported on platform %s", a.platform)}
	}

	signature, resp, err := a.client.execute(ctx, signer, tradeRequest{
		Action:      actionAddLiquidity,
		Mint:        mint,
		AmountSol:   solAmount,
		SlippagePct: DefaultSlippagePct,
	})
	if err != nil {
		return LiquidityResult{Err: err.Error()}
	}
	if signature == "" {
		return LiquidityResult{Err: "platform returned no transaction for add liquidity"}
	}

	result := LiquidityResult{Success: true, Signature: signature}
	if resp != nil && resp.LPTokens != nil {
		result.LPTokensOut = *resp.LPTokens
	}
	return result
}

// Pool looks up the mint's liquidity pool, nil when not graduated yet.
func (a *apiAdapter) Pool(ctx context.Context, mint string) (*PoolInfo, error) {
	return a.client.lookupPool(ctx, mint)
}

// isNothingToClaim matches platform error strings meaning zero accrued
// fees rather than a real failure.
func isNothingToClaim(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "nothing to claim") ||
		strings.Contains(msg, "no fees") ||
		strings.Contains(msg, "no creator fee")
}
