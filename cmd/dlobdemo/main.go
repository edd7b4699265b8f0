// Command dlobdemo is a single-process harness around pkg/dlob and
// internal/service.Supervisor: it seeds a perp market with synthetic
// orders, then walks through ingestion, resting-limit promotion,
// crossing, trigger firing, and L2/L3 projection, logging each step.
// Everything runs in one process against an in-memory fake exchange-state
// collaborator — there is no wire transport.
package main

import (
	"context"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/saiputravu/dlob/internal/config"
	"github.com/saiputravu/dlob/internal/metrics"
	"github.com/saiputravu/dlob/internal/service"
	"github.com/saiputravu/dlob/pkg/dlob"
)

func main() {
	configPath := flag.String("config", "configs/dlobdemo.yaml", "path to the demo harness config file")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed loading config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}
	if cfg.Logging.Level != "" {
		if lvl, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
			zerolog.SetGlobalLevel(lvl)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	reg := metrics.New()
	go serveMetrics(cfg.MetricsAddr)

	clock := &fakeClock{slot: 1}
	sup := service.New(clock, reg, time.Second)

	go func() {
		if err := sup.Run(ctx); err != nil {
			log.Error().Err(err).Msg("supervisor exited")
		}
	}()

	runDemo(sup, cfg)

	<-ctx.Done()
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	log.Info().Str("addr", addr).Msg("serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("metrics listener exited")
	}
}

// fakeClock is the demo's Slot/UnixSeconds collaborator: slot advances one
// tick per call so promotion/expiry have something to observe.
type fakeClock struct {
	slot uint64
	ts   int64
}

func (c *fakeClock) Slot() uint64 {
	c.slot++
	return c.slot
}

func (c *fakeClock) UnixSeconds() int64 {
	c.ts++
	return c.ts
}

// fakeMarket and fakeState are in-memory StateAccount/MarketAccount
// collaborators, standing in for the on-chain accounts a real exchange
// would supply.
type fakeMarket struct {
	minAuctionDuration uint32
}

func (m fakeMarket) FillPaused() bool           { return false }
func (m fakeMarket) AmmPaused() bool            { return false }
func (m fakeMarket) MinAuctionDuration() uint32 { return m.minAuctionDuration }

type fakeState struct{}

func (fakeState) ExchangePaused() bool { return false }

func syntheticUser() dlob.UserAccount {
	var u dlob.UserAccount
	copy(u[:], uuid.New()[:])
	return u
}

func runDemo(sup *service.Supervisor, cfg *config.Config) {
	logger := log.With().Str("component", "dlobdemo").Logger()

	alice, bob := syntheticUser(), syntheticUser()

	ask := dlob.Order{
		OrderID:         1,
		UserAccount:     alice,
		MarketType:      dlob.MarketTypePerp,
		MarketIndex:     0,
		Direction:       dlob.Short,
		OrderType:       dlob.OrderTypeLimit,
		Status:          dlob.StatusOpen,
		BaseAssetAmount: decimal.NewFromInt(10),
		Price:           decimal.NewFromInt(100),
		PostOnly:        true,
	}
	bid := dlob.Order{
		OrderID:         2,
		UserAccount:     bob,
		MarketType:      dlob.MarketTypePerp,
		MarketIndex:     0,
		Direction:       dlob.Long,
		OrderType:       dlob.OrderTypeMarket,
		Status:          dlob.StatusOpen,
		BaseAssetAmount: decimal.NewFromInt(4),
	}

	sup.InsertOrder(ask)
	logger.Info().Uint64("orderID", ask.OrderID).Msg("ask inserted")
	sup.InsertOrder(bid)
	logger.Info().Uint64("orderID", bid.OrderID).Msg("market bid inserted")

	market := fakeMarket{minAuctionDuration: firstMarketAuctionDuration(cfg)}
	fills := sup.FindNodesToFill(dlob.MarketTypePerp, 0, decimal.NewFromInt(100), nil, nil, market)
	for _, f := range fills {
		logger.Info().
			Uint64("taker", f.Node.Order.OrderID).
			Int("makers", len(f.Makers)).
			Msg("fill found")
	}

	bids, asks, err := sup.GetL2(dlob.MarketTypePerp, 0, decimal.NewFromInt(100), 10, nil, nil, nil)
	if err != nil {
		logger.Error().Err(err).Msg("GetL2 failed")
	} else {
		logger.Info().Int("bidLevels", len(bids)).Int("askLevels", len(asks)).Msg("L2 snapshot")
	}

	fallbackAsk := decimal.NewFromInt(101)
	if best, ok := sup.BestAsk(dlob.MarketTypePerp, 0, decimal.NewFromInt(100), &fallbackAsk); ok {
		logger.Info().Uint64("orderID", best.Order.OrderID).Str("price", best.Order.Price.String()).Msg("best ask")
	}

	stop := dlob.Order{
		OrderID:          3,
		UserAccount:      alice,
		MarketType:       dlob.MarketTypePerp,
		MarketIndex:      0,
		Direction:        dlob.Short,
		OrderType:        dlob.OrderTypeTriggerMarket,
		Status:           dlob.StatusOpen,
		BaseAssetAmount:  decimal.NewFromInt(5),
		TriggerPrice:     decimal.NewFromInt(95),
		TriggerCondition: dlob.TriggerBelow,
	}
	sup.InsertOrder(stop)
	logger.Info().Uint64("orderID", stop.OrderID).Msg("stop order armed")

	triggered := sup.FindNodesToTrigger(dlob.MarketTypePerp, 0, decimal.NewFromInt(90), fakeState{})
	for _, trig := range triggered {
		sup.Trigger(trig.Node.Key())
		logger.Info().Uint64("orderID", trig.Node.Order.OrderID).Msg("stop order fired")
	}

	l3Bids, l3Asks, err := sup.GetL3(dlob.MarketTypePerp, 0)
	if err != nil {
		logger.Error().Err(err).Msg("GetL3 failed")
	} else {
		logger.Info().Int("bidOrders", len(l3Bids)).Int("askOrders", len(l3Asks)).Msg("L3 snapshot")
	}
}

func firstMarketAuctionDuration(cfg *config.Config) uint32 {
	for _, m := range cfg.Markets {
		if m.MarketType == "perp" {
			return m.MinAuctionDuration
		}
	}
	return 0
}
