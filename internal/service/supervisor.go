// Package service provides the synchronizing shell a *dlob.DLOB needs: the
// book itself is not safe for concurrent use, so callers wrap it in a
// coarse lock around the whole structure. Supervisor is that shell: a
// tomb-supervised background goroutine that periodically advances the slot
// watermark, with every exported method taking the same mutex. The loop
// does not sweep for expired orders; those are reported by FindNodesToFill.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	tomb "gopkg.in/tomb.v2"

	"github.com/saiputravu/dlob/internal/metrics"
	"github.com/saiputravu/dlob/pkg/dlob"
)

// Clock supplies the current slot and wall-clock time for the background
// tick loop; the demo harness's fake clock and a real slot-clock
// collaborator both satisfy this.
type Clock interface {
	Slot() uint64
	UnixSeconds() int64
}

// Supervisor wraps a *dlob.DLOB behind a mutex and a supervised background
// loop. Every exported method locks for the duration of the call, so
// callers never need to synchronize with each other or with the
// background tick.
type Supervisor struct {
	mu     sync.Mutex
	book   *dlob.DLOB
	clock  Clock
	metric *metrics.Registry
	logger zerolog.Logger

	tickInterval time.Duration
	t            *tomb.Tomb
}

// New constructs a Supervisor around a fresh DLOB. Call Run to start the
// background tick loop.
func New(clock Clock, metric *metrics.Registry, tickInterval time.Duration) *Supervisor {
	return &Supervisor{
		book:         dlob.New(),
		clock:        clock,
		metric:       metric,
		logger:       log.With().Str("component", "dlob-supervisor").Logger(),
		tickInterval: tickInterval,
	}
}

// Run starts the background tick loop and blocks until ctx is done or the
// loop exits with an error: a cancellable tomb.Tomb carrying a single
// supervised goroutine.
func (s *Supervisor) Run(ctx context.Context) error {
	t, ctx := tomb.WithContext(ctx)
	s.t = t

	s.logger.Info().Dur("tickInterval", s.tickInterval).Msg("supervisor starting")
	t.Go(func() error {
		return s.tickLoop(t, ctx)
	})

	<-t.Dying()
	s.logger.Info().Err(t.Err()).Msg("supervisor stopped")
	return t.Err()
}

func (s *Supervisor) tickLoop(t *tomb.Tomb, ctx context.Context) error {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.Dying():
			return nil
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.promote()
		}
	}
}

func (s *Supervisor) promote() {
	start := time.Now()
	s.mu.Lock()
	s.book.UpdateRestingLimitOrders(s.clock.Slot())
	s.mu.Unlock()
	if s.metric != nil {
		s.metric.PromotionLatency.Observe(time.Since(start).Seconds())
	}
}

// InsertOrder locks the DLOB and ingests a single order.
func (s *Supervisor) InsertOrder(order dlob.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.book.InsertOrder(order, s.clock.Slot())
	if s.metric != nil {
		s.metric.OrdersIngested.WithLabelValues(order.MarketType.String()).Inc()
	}
}

// UpdateOrder locks the DLOB and applies a new cumulative filled amount.
func (s *Supervisor) UpdateOrder(key dlob.OrderKey, newCumulativeFilled decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.book.UpdateOrder(key, s.clock.Slot(), newCumulativeFilled)
}

// DeleteOrder locks the DLOB and removes an order.
func (s *Supervisor) DeleteOrder(key dlob.OrderKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.book.DeleteOrder(key, s.clock.Slot())
}

// Trigger locks the DLOB and fires a conditional order.
func (s *Supervisor) Trigger(key dlob.OrderKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.book.Trigger(key, s.clock.Slot())
}

// FindNodesToFill locks the DLOB for the duration of the query and returns
// a snapshot of proposed fills. The NodeToFills reference nodes inside the
// DLOB's live storage, so callers must apply any resulting UpdateOrder
// calls through this same Supervisor before assuming a stale view.
func (s *Supervisor) FindNodesToFill(marketType dlob.MarketType, marketIndex uint16, oracle decimal.Decimal, fallbackBid, fallbackAsk *decimal.Decimal, market dlob.MarketAccount) []dlob.NodeToFill {
	s.mu.Lock()
	defer s.mu.Unlock()
	fills := s.book.FindNodesToFill(marketType, marketIndex, s.clock.Slot(), s.clock.UnixSeconds(), oracle, fallbackBid, fallbackAsk, market)
	if s.metric != nil && len(fills) > 0 {
		s.metric.NodesFilled.WithLabelValues(marketType.String()).Add(float64(len(fills)))
	}
	return fills
}

// FindNodesToTrigger locks the DLOB for the duration of the query.
func (s *Supervisor) FindNodesToTrigger(marketType dlob.MarketType, marketIndex uint16, oraclePrice decimal.Decimal, state dlob.StateAccount) []dlob.NodeToTrigger {
	s.mu.Lock()
	defer s.mu.Unlock()
	triggers := s.book.FindNodesToTrigger(marketType, marketIndex, s.clock.Slot(), oraclePrice, state)
	if s.metric != nil && len(triggers) > 0 {
		s.metric.NodesTriggered.WithLabelValues(marketType.String()).Add(float64(len(triggers)))
	}
	return triggers
}

// BestBid locks the DLOB for the duration of the query and returns the best
// bid per GetBids's merge order (taking nodes first, then resting/floating
// bids best-price-first, with — on perp markets with fallbackBid supplied —
// a synthetic vAMM quote merged into that resting tier by price).
func (s *Supervisor) BestBid(marketType dlob.MarketType, marketIndex uint16, oracle decimal.Decimal, fallbackBid *decimal.Decimal) (*dlob.OrderNode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.BestBid(marketType, marketIndex, oracle, s.clock.Slot(), fallbackBid)
}

// BestAsk is BestBid's mirror.
func (s *Supervisor) BestAsk(marketType dlob.MarketType, marketIndex uint16, oracle decimal.Decimal, fallbackAsk *decimal.Decimal) (*dlob.OrderNode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.BestAsk(marketType, marketIndex, oracle, s.clock.Slot(), fallbackAsk)
}

// GetL2 locks the DLOB for the duration of the query. fallbackBid/
// fallbackAsk exclude book makers already claimed by the fallback cross;
// fallbacks merges in zero or more external L2 sources (e.g. an AMM quote).
func (s *Supervisor) GetL2(marketType dlob.MarketType, marketIndex uint16, oracle decimal.Decimal, depth int, fallbackBid, fallbackAsk *decimal.Decimal, fallbacks []dlob.FallbackL2Source) (bids, asks []dlob.FallbackL2Level, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.GetL2(marketType, marketIndex, oracle, s.clock.Slot(), depth, fallbackBid, fallbackAsk, fallbacks)
}

// GetL3 locks the DLOB for the duration of the query.
func (s *Supervisor) GetL3(marketType dlob.MarketType, marketIndex uint16) (bids, asks []dlob.L3Level, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.GetL3(marketType, marketIndex, s.clock.Slot())
}
