package dlob

import "github.com/shopspring/decimal"

// This file declares the narrow interfaces pkg/dlob needs from its
// external collaborators. pkg/dlob depends only on these — never on a
// concrete on-chain program, oracle client, or fallback AMM/CLOB
// implementation.

// OraclePriceData is the oracle price fed to classification and matching.
type OraclePriceData struct {
	Price decimal.Decimal
}

// StateAccount reports exchange-wide pause state.
type StateAccount interface {
	// ExchangePaused reports whether all trading is halted.
	ExchangePaused() bool
}

// MarketAccount reports per-market pause state and auction parameters.
type MarketAccount interface {
	FillPaused() bool
	AmmPaused() bool
	// MinAuctionDuration is state.min_perp_auction_duration for perp
	// markets; spot markets have none (callers should pass 0 for spot).
	MinAuctionDuration() uint32
}

// FallbackL2Level is one aggregated price level a fallback liquidity
// source (AMM, external CLOB) reports, tagged with the source(s) that
// contributed to it.
type FallbackL2Level struct {
	Price   decimal.Decimal
	Size    decimal.Decimal
	Sources []string
}

// FallbackL2Source is the external fallback liquidity source: it yields
// aggregated levels for GetL2's merge step. Levels are expected in
// best-first order (L2Asks ascending, L2Bids descending) — the same order
// convention every NodeList uses.
type FallbackL2Source interface {
	L2Bids() []FallbackL2Level
	L2Asks() []FallbackL2Level
}

// sliceGenerator adapts a pre-sorted []FallbackL2Level into the same
// restartable Generator-style shape used for L2 level merging.
func sliceGenerator(levels []FallbackL2Level) func() (FallbackL2Level, bool) {
	i := 0
	return func() (FallbackL2Level, bool) {
		if i >= len(levels) {
			return FallbackL2Level{}, false
		}
		lvl := levels[i]
		i++
		return lvl, true
	}
}
