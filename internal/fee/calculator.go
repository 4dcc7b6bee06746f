// Package fee computes the per-transaction platform fee from an account's
// tier plus a small set of behavioral and market adjustments.
package fee

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/sparevest/roundup/internal/model"
)

// MinimumFee is the absolute floor on any final fee.
const MinimumFee = 0.01

// Adjustment deltas. All discounts, never surcharges.
const (
	loyaltyHighDiscount  = -0.02
	loyaltyMidDiscount   = -0.01
	behaviorDiscount     = -0.01
	marketDiscount       = -0.01
	retentionDiscount    = -0.02
	volumeHighDiscount   = -0.02
	volumeMidDiscount    = -0.01
	fallbackConfidence   = 0.5
	loyaltyHighThreshold = 0.8
	loyaltyMidThreshold  = 0.6
	behaviorThreshold    = 0.7
	marketThreshold      = 0.7
	retentionThreshold   = 0.6
	volumeHighThreshold  = 50
	volumeMidThreshold   = 25
)

type tierKey struct {
	accountType model.AccountType
	tierLevel   int
}

// Calculator resolves base fees from a tier table and applies behavioral
// adjustments. It is stateless per call and safe for concurrent use.
type Calculator struct {
	tiers    map[tierKey]float64
	defaults map[model.AccountType]float64
	logger   *slog.Logger
}

// NewCalculator creates a calculator with the standard tier table.
func NewCalculator(logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{
		tiers: map[tierKey]float64{
			{model.AccountIndividual, 1}: 0.25,
			{model.AccountIndividual, 2}: 0.20,
			{model.AccountIndividual, 3}: 0.15,
			{model.AccountFamily, 1}:     0.10,
			{model.AccountFamily, 2}:     0.08,
			{model.AccountFamily, 3}:     0.06,
			{model.AccountBusiness, 1}:   0.10,
			{model.AccountBusiness, 2}:   0.08,
			{model.AccountBusiness, 3}:   0.06,
		},
		defaults: map[model.AccountType]float64{
			model.AccountIndividual: 0.25,
			model.AccountFamily:     0.10,
			model.AccountBusiness:   0.10,
		},
		logger: logger,
	}
}

// Calculate produces the fee breakdown for one transaction. An unresolvable
// account type or tier never fails the transaction: the calculator degrades
// to the account type's default base fee with zero adjustments and a 0.5
// confidence annotation.
func (c *Calculator) Calculate(accountType model.AccountType, tierLevel int, roundUpAmount float64, signals model.BehaviorSignals) model.FeeBreakdown {
	base, ok := c.tiers[tierKey{accountType, tierLevel}]
	if !ok {
		return c.fallback(accountType, tierLevel, roundUpAmount)
	}

	effective := effectiveBase(accountType, base, roundUpAmount)

	breakdown := model.FeeBreakdown{
		BaseFee: effective,
	}

	switch {
	case signals.LoyaltyScore > loyaltyHighThreshold:
		breakdown.LoyaltyDiscount = loyaltyHighDiscount
	case signals.LoyaltyScore >= loyaltyMidThreshold:
		breakdown.LoyaltyDiscount = loyaltyMidDiscount
	}

	if signals.BehaviorConsistency > behaviorThreshold {
		breakdown.BehaviorBonus = behaviorDiscount
	}

	if signals.MarketCompetitivePressure > marketThreshold {
		breakdown.MarketAdjustment = marketDiscount
	}

	if signals.RetentionChurnRisk > retentionThreshold {
		breakdown.RetentionIncentive = retentionDiscount
	}

	switch {
	case signals.MonthlyTransactionVolume > volumeHighThreshold:
		breakdown.VolumeDiscount = volumeHighDiscount
	case signals.MonthlyTransactionVolume >= volumeMidThreshold:
		breakdown.VolumeDiscount = volumeMidDiscount
	}

	breakdown.TotalAdjustment = breakdown.LoyaltyDiscount +
		breakdown.BehaviorBonus +
		breakdown.MarketAdjustment +
		breakdown.RetentionIncentive +
		breakdown.VolumeDiscount

	breakdown.FinalFee = math.Max(roundCents(effective+breakdown.TotalAdjustment), MinimumFee)
	breakdown.ConfidenceScore = clamp01((signals.LoyaltyScore + signals.BehaviorConsistency + (1 - signals.RetentionChurnRisk)) / 3)

	return breakdown
}

// fallback is the explicit degraded branch for unresolvable tiers.
func (c *Calculator) fallback(accountType model.AccountType, tierLevel int, roundUpAmount float64) model.FeeBreakdown {
	base, ok := c.defaults[accountType]
	if !ok {
		base = c.defaults[model.AccountIndividual]
	}

	effective := effectiveBase(accountType, base, roundUpAmount)

	c.logger.Warn("unresolvable fee tier, using account-type default",
		"account_type", accountType,
		"tier_level", tierLevel)

	return model.FeeBreakdown{
		BaseFee:         effective,
		FinalFee:        math.Max(roundCents(effective), MinimumFee),
		ConfidenceScore: fallbackConfidence,
		Fallback:        true,
		Notes:           fmt.Sprintf("tier %d not found for account type %s; default base fee applied", tierLevel, accountType),
	}
}

// effectiveBase applies the Business percentage-of-round-up fee model.
// Individual and Family accounts pay the flat base.
func effectiveBase(accountType model.AccountType, base, roundUpAmount float64) float64 {
	if accountType == model.AccountBusiness {
		return roundCents(base * roundUpAmount)
	}
	return base
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
