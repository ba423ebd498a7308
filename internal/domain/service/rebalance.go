package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dzikowski/barbell-bot/internal/domain/model"
)

// PlanConfig carries the allocation targets the decision is made against.
// Tolerance is a fraction of the per-token target share (0.05 means a 5%
// band on either side); it is fixed per deployment.
type PlanConfig struct {
	BaseToken     string
	TargetBasePct float64
	Tolerance     float64
}

// BuildPlan reduces the valued balances to the single most underweight and
// single most overweight non-base token and computes the thresholds. Ties
// keep the first occurrence in input order, so the plan is deterministic.
//
// A missing base balance, an empty set of non-base tokens, or a missing
// stats record for either extreme is a *model.ConfigurationError: the cycle
// cannot decide anything and must abort.
func BuildPlan(cfg PlanConfig, infos []model.BalanceInfo, stats map[string]model.Stats) (model.RebalancePlan, error) {
	var base *model.BalanceInfo
	others := make([]model.BalanceInfo, 0, len(infos))
	var total float64
	for i := range infos {
		total += infos[i].ValueInBase
		if infos[i].Token == cfg.BaseToken {
			base = &infos[i]
		} else {
			others = append(others, infos[i])
		}
	}
	if base == nil {
		return model.RebalancePlan{}, &model.ConfigurationError{
			Reason: fmt.Sprintf("base token %s has no balance entry", cfg.BaseToken),
		}
	}
	if len(others) == 0 {
		return model.RebalancePlan{}, &model.ConfigurationError{
			Reason: "no non-base tracked tokens to rebalance",
		}
	}

	// With a single non-base token min and max are the same entry; both
	// threshold checks still apply to it.
	min, max := others[0], others[0]
	for _, b := range others[1:] {
		if b.Percent < min.Percent {
			min = b
		}
		if b.Percent > max.Percent {
			max = b
		}
	}

	minStats, ok := stats[min.Token]
	if !ok {
		return model.RebalancePlan{}, &model.ConfigurationError{
			Reason: fmt.Sprintf("no stats record for %s", min.Token),
		}
	}
	maxStats, ok := stats[max.Token]
	if !ok {
		return model.RebalancePlan{}, &model.ConfigurationError{
			Reason: fmt.Sprintf("no stats record for %s", max.Token),
		}
	}

	targetShare := (100 - cfg.TargetBasePct) / float64(len(others))
	return model.RebalancePlan{
		Min:            min,
		Max:            max,
		MinStats:       minStats,
		MaxStats:       maxStats,
		TargetShare:    targetShare,
		BuyThreshold:   targetShare * (1 - cfg.Tolerance),
		SellThreshold:  targetShare * (1 + cfg.Tolerance),
		TotalBaseValue: total,
	}, nil
}

// Decide turns a plan into at most one buy and one sell instruction. The two
// checks are independent: a cycle may produce both, either, or neither, and
// both amounts are computed from the same balance snapshot before any swap
// runs. An instruction whose amount rounds to zero is suppressed rather than
// sent as a no-op swap.
func Decide(plan model.RebalancePlan) []model.TradeInstruction {
	var instructions []model.TradeInstruction

	if plan.Min.Percent < plan.BuyThreshold {
		amount := roundBaseAmount((plan.TargetShare - plan.Min.Percent) / 100 * plan.TotalBaseValue)
		if amount > 0 {
			instructions = append(instructions, model.TradeInstruction{
				Side:       model.Buy,
				Token:      plan.Min.Token,
				BaseAmount: amount,
			})
		}
	}

	if plan.Max.Percent > plan.SellThreshold {
		amount := roundBaseAmount((plan.Max.Percent - plan.TargetShare) / 100 * plan.TotalBaseValue)
		if amount > 0 {
			instructions = append(instructions, model.TradeInstruction{
				Side:       model.Sell,
				Token:      plan.Max.Token,
				BaseAmount: amount,
			})
		}
	}

	return instructions
}

// roundBaseAmount rounds to a whole number of base-token units, half away
// from zero.
func roundBaseAmount(amount float64) float64 {
	f, _ := decimal.NewFromFloat(amount).Round(0).Float64()
	return f
}
