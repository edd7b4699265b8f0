package dlob

import "errors"

var (
	// ErrAlreadyInitialized is available for callers that want to treat a
	// repeat InitFromSnapshot/InitFromOrders call as a hard error; the
	// methods themselves report it as a false return rather than an error,
	// since a second snapshot load is an expected race during exchange
	// restart, not a failure.
	ErrAlreadyInitialized = errors.New("dlob: already initialized")

	// ErrMissingOracle is returned by spot resting-limit getters when no
	// oracle price was supplied — the one precondition elevated to an
	// error rather than a silent no-op.
	ErrMissingOracle = errors.New("dlob: spot market query requires an oracle price")

	// ErrUnknownMarket is returned by the resting-limit and taking getters
	// (GetRestingLimitAsks/Bids, GetTakingAsks/Bids) when they name a
	// (market_type, market_index) pair the DLOB has never seen an order for.
	ErrUnknownMarket = errors.New("dlob: unknown market")
)
