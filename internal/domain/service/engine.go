package service

import (
	"context"
	"sync"
	"time"

	"github.com/dzikowski/barbell-bot/internal/domain/model"
	"github.com/dzikowski/barbell-bot/internal/domain/repository"
	"github.com/dzikowski/barbell-bot/internal/lib/logger"
)

// Config describes the portfolio the engine manages: the base token every
// valuation is expressed in, the stable reference token used only for
// reporting, and the tracked non-base tokens with their shared target.
type Config struct {
	BaseToken      string
	ReferenceToken string
	TrackedTokens  []string
	TargetBasePct  float64
	Tolerance      float64
	// ProbeAmount is the base-token amount used to size price quotes.
	ProbeAmount float64
}

// Deps are the collaborators a cycle runs against. Cache and Publisher are
// optional; Now defaults to time.Now.
type Deps struct {
	Dex       repository.Dex
	Store     repository.PriceStore
	Cache     repository.PriceCache
	Publisher repository.TradePublisher
	Log       *logger.Logger
	Now       func() time.Time
}

// Engine runs one rebalancing cycle: sample prices, persist them, compute
// stats, value balances, decide, execute, reconcile. Phases run strictly in
// that order; only independent per-token fetches fan out, and any failed
// fetch fails the whole cycle.
type Engine struct {
	cfg       Config
	dex       repository.Dex
	store     repository.PriceStore
	cache     repository.PriceCache
	publisher repository.TradePublisher
	log       *logger.Logger
	now       func() time.Time
}

// CycleResult is the observable outcome of one cycle.
type CycleResult struct {
	Time     time.Time           `json:"time"`
	Prices   []model.PricePoint  `json:"prices"`
	Stats    []model.Stats       `json:"stats"`
	Balances []model.BalanceInfo `json:"balances"`
	Trades   []model.Trade       `json:"trades"`
}

func NewEngine(cfg Config, deps Deps) *Engine {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		cfg:       cfg,
		dex:       deps.Dex,
		store:     deps.Store,
		cache:     deps.Cache,
		publisher: deps.Publisher,
		log:       deps.Log,
		now:       now,
	}
}

// RunCycle executes a full rebalancing cycle. Any error aborts the cycle;
// already-executed swaps stay as facts, recovery is operator-driven.
func (e *Engine) RunCycle(ctx context.Context) (*CycleResult, error) {
	started := e.now()

	prices, err := e.SamplePrices(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := e.ComputeAllStats(ctx)
	if err != nil {
		return nil, err
	}

	balances, infos, err := e.Valuate(ctx, prices)
	if err != nil {
		return nil, err
	}

	trades, err := e.Rebalance(ctx, infos, balances, stats)
	if err != nil {
		return nil, err
	}

	return &CycleResult{
		Time:     started,
		Prices:   prices,
		Stats:    stats,
		Balances: infos,
		Trades:   trades,
	}, nil
}

// SamplePrices fetches the base/reference rate and every tracked token's
// price against the base token, reports them and persists the batch. The
// per-token quotes fan out concurrently; results are joined before anything
// is logged so the report order stays deterministic.
func (e *Engine) SamplePrices(ctx context.Context) ([]model.PricePoint, error) {
	e.log.Log("Prices:")
	e.log.Log("")

	baseQuote, err := e.dex.FetchSwapPrice(ctx, e.cfg.BaseToken, e.cfg.ReferenceToken, model.ExactIn{Amount: e.cfg.ProbeAmount})
	if err != nil {
		return nil, e.log.LoggedErrorf("fetching %s/%s price: %w", e.cfg.BaseToken, e.cfg.ReferenceToken, err)
	}
	baseQuote.Date = e.now()
	e.log.Log(formatPriceLine(e.cfg.BaseToken, e.cfg.ReferenceToken, baseQuote.Price))
	e.log.Log("")

	quotes := make([]model.PricePoint, len(e.cfg.TrackedTokens))
	errs := make([]error, len(e.cfg.TrackedTokens))
	var wg sync.WaitGroup
	for i, token := range e.cfg.TrackedTokens {
		wg.Add(1)
		go func(i int, token string) {
			defer wg.Done()
			quotes[i], errs[i] = e.dex.FetchSwapPrice(ctx, token, e.cfg.BaseToken, model.ExactOut{Amount: e.cfg.ProbeAmount})
		}(i, token)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			return nil, e.log.LoggedErrorf("fetching %s/%s price: %w", e.cfg.TrackedTokens[i], e.cfg.BaseToken, err)
		}
	}

	for i := range quotes {
		quotes[i].Date = e.now()
		e.log.Log(formatPriceLineWithRef(quotes[i].TokenIn, e.cfg.BaseToken, e.cfg.ReferenceToken,
			quotes[i].Price, quotes[i].Price*baseQuote.Price))
	}
	e.log.Log("")

	prices := append([]model.PricePoint{baseQuote}, quotes...)
	e.log.Logf("Saving %d price samples...", len(prices))
	if err := e.store.SavePrices(ctx, prices); err != nil {
		return nil, e.log.LoggedErrorf("saving price samples: %w", err)
	}

	if e.cache != nil {
		for _, p := range prices {
			if err := e.cache.SaveLatestPrice(ctx, p); err != nil {
				e.log.Warnf("caching latest price for %s: %v", p.TokenIn, err)
				break
			}
		}
	}

	e.log.Log("")
	return prices, nil
}

// ComputeAllStats reads every tracked token's 24h window from storage and
// derives its statistics. The window reads fan out; a single empty window or
// storage failure fails the cycle.
func (e *Engine) ComputeAllStats(ctx context.Context) ([]model.Stats, error) {
	e.log.Log("Stats:")
	e.log.Log("")

	since := e.now().Add(-24 * time.Hour)
	stats := make([]model.Stats, len(e.cfg.TrackedTokens))
	errs := make([]error, len(e.cfg.TrackedTokens))

	var wg sync.WaitGroup
	for i, token := range e.cfg.TrackedTokens {
		wg.Add(1)
		go func(i int, token string) {
			defer wg.Done()
			points, err := e.store.PricesSince(ctx, token, since)
			if err != nil {
				errs[i] = err
				return
			}
			stats[i], errs[i] = ComputeStats(token, points)
		}(i, token)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			return nil, e.log.LoggedErrorf("computing stats for %s: %w", e.cfg.TrackedTokens[i], err)
		}
	}

	for _, line := range statsTable(e.cfg.BaseToken, stats) {
		e.log.Log(line)
	}
	e.log.Log("")
	return stats, nil
}

// Valuate fetches the wallet's balances and values them with the cycle's
// fresh prices. Returns both the raw snapshot (needed later for
// reconciliation) and the valued entries.
func (e *Engine) Valuate(ctx context.Context, prices []model.PricePoint) ([]model.Balance, []model.BalanceInfo, error) {
	e.log.Log("Balances:")
	e.log.Log("")

	balances, err := e.dex.FetchBalances(ctx)
	if err != nil {
		return nil, nil, e.log.LoggedErrorf("fetching balances: %w", err)
	}

	infos, err := BuildBalanceInfos(e.cfg.BaseToken, e.cfg.ReferenceToken, e.cfg.TrackedTokens, balances, prices)
	if err != nil {
		return nil, nil, e.log.LoggedErrorf("valuating balances: %w", err)
	}

	for _, line := range balanceTable(e.cfg.BaseToken, e.cfg.ReferenceToken, e.targetFor(infos), infos) {
		e.log.Log(line)
	}
	e.log.Log("")
	return balances, infos, nil
}

// targetFor maps a token to its target share for the report: the configured
// share for the base token, the equal-weight split for everything else.
func (e *Engine) targetFor(infos []model.BalanceInfo) func(string) float64 {
	others := 0
	for _, b := range infos {
		if b.Token != e.cfg.BaseToken {
			others++
		}
	}
	targetShare := 0.0
	if others > 0 {
		targetShare = (100 - e.cfg.TargetBasePct) / float64(others)
	}
	return func(token string) float64 {
		if token == e.cfg.BaseToken {
			return e.cfg.TargetBasePct
		}
		return targetShare
	}
}

// Rebalance builds the plan, narrates the decision, executes the resulting
// swaps buy-first then sell, and reconciles the outcomes from balance
// deltas. Both amounts come from the pre-trade snapshot; balances are not
// re-read between the two swaps.
func (e *Engine) Rebalance(ctx context.Context, infos []model.BalanceInfo, before []model.Balance, stats []model.Stats) ([]model.Trade, error) {
	e.log.Log("Rebalancing:")
	e.log.Log("")

	statsByToken := make(map[string]model.Stats, len(stats))
	for _, s := range stats {
		statsByToken[s.Token] = s
	}

	plan, err := BuildPlan(PlanConfig{
		BaseToken:     e.cfg.BaseToken,
		TargetBasePct: e.cfg.TargetBasePct,
		Tolerance:     e.cfg.Tolerance,
	}, infos, statsByToken)
	if err != nil {
		return nil, e.log.LoggedErrorf("planning rebalance: %w", err)
	}

	instructions := Decide(plan)
	e.narrate(plan, instructions)

	if len(instructions) == 0 {
		return nil, nil
	}

	receipts := make([]model.SwapReceipt, 0, len(instructions))
	for _, ins := range instructions {
		var receipt model.SwapReceipt
		var err error
		switch ins.Side {
		case model.Buy:
			receipt, err = e.dex.Swap(ctx, e.cfg.BaseToken, ins.Token, model.ExactIn{Amount: ins.BaseAmount})
		case model.Sell:
			receipt, err = e.dex.Swap(ctx, ins.Token, e.cfg.BaseToken, model.ExactOut{Amount: ins.BaseAmount})
		}
		if err != nil {
			return nil, e.log.LoggedErrorf("executing %s of %s: %w", ins.Side, ins.Token, err)
		}
		receipts = append(receipts, receipt)
	}

	e.log.Log("Trades:")
	e.log.Log("")

	after, err := e.dex.FetchBalances(ctx)
	if err != nil {
		return nil, e.log.LoggedErrorf("fetching balances after trades: %w", err)
	}

	trades, reconcileErr := Reconcile(before, after, receipts)
	if reconcileErr != nil {
		// Per-receipt failures are reported but do not discard the trades
		// that did reconcile.
		e.log.Warnf("reconciliation: %v", reconcileErr)
	}
	for _, t := range trades {
		status := "success"
		if !t.WasSuccessful {
			status = "FAILED"
		}
		e.log.Logf("%s %.8f -> %s %.8f (swap %s): %s", t.TokenIn, t.AmountIn, t.TokenOut, t.AmountOut, t.SwapID, status)
	}
	e.log.Log("")

	if len(trades) > 0 {
		e.log.Logf("Saving %d trades...", len(trades))
		if err := e.store.SaveTrades(ctx, trades); err != nil {
			return nil, e.log.LoggedErrorf("saving trades: %w", err)
		}
		if e.publisher != nil {
			if err := e.publisher.PublishTrades(ctx, trades); err != nil {
				e.log.Warnf("publishing trades: %v", err)
			}
		}
		e.log.Log("")
	}

	return trades, nil
}

// narrate reports both threshold checks and what was decided for each.
func (e *Engine) narrate(plan model.RebalancePlan, instructions []model.TradeInstruction) {
	var buy, sell *model.TradeInstruction
	for i := range instructions {
		switch instructions[i].Side {
		case model.Buy:
			buy = &instructions[i]
		case model.Sell:
			sell = &instructions[i]
		}
	}

	if plan.Min.Percent < plan.BuyThreshold {
		e.log.Logf("%s: %.2f%% is below the threshold: %.2f%%", plan.Min.Token, plan.Min.Percent, plan.BuyThreshold)
		if buy != nil {
			e.log.Logf(" => buying %s for %.0f %s", buy.Token, buy.BaseAmount, e.cfg.BaseToken)
		} else {
			e.log.Log(" => amount rounds to 0, doing nothing")
		}
	} else {
		e.log.Logf("%s: %.2f%% is above the threshold: %.2f%%", plan.Min.Token, plan.Min.Percent, plan.BuyThreshold)
		e.log.Log(" => doing nothing")
	}
	e.log.Log("")

	if plan.Max.Percent > plan.SellThreshold {
		e.log.Logf("%s: %.2f%% is above the threshold: %.2f%%", plan.Max.Token, plan.Max.Percent, plan.SellThreshold)
		if sell != nil {
			e.log.Logf(" => selling %.0f %s worth of %s", sell.BaseAmount, e.cfg.BaseToken, sell.Token)
		} else {
			e.log.Log(" => amount rounds to 0, doing nothing")
		}
	} else {
		e.log.Logf("%s: %.2f%% is below the threshold: %.2f%%", plan.Max.Token, plan.Max.Percent, plan.SellThreshold)
		e.log.Log(" => doing nothing")
	}
	e.log.Log("")
}
