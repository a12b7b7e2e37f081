package policy

import (
	"errors"

	"bankroll-lab/internal/domain"
)

// Factory errors
var (
	ErrUnknownPolicyType  = errors.New("unknown policy type")
	ErrMissingStake       = errors.New("FLAT requires Stake")
	ErrMissingFraction    = errors.New("FIXED_FRACTION requires Fraction")
	ErrMissingProbWin     = errors.New("KELLY and RISK_ADJUSTED_KELLY require ProbWin")
	ErrMissingDecimalOdds = errors.New("KELLY and RISK_ADJUSTED_KELLY require DecimalOdds")
)

// FromConfig creates a Policy from domain.PolicyConfig.
// Validates required parameters per policy type, applies the documented
// defaults for omitted optional parameters, and wraps the base policy with
// min/max stake bounds when configured. With both bounds set the floor
// applies first, so a ceiling below the floor wins.
func FromConfig(cfg domain.PolicyConfig) (Policy, error) {
	base, err := fromBaseConfig(cfg)
	if err != nil {
		return nil, err
	}
	return applyBounds(base, cfg)
}

// fromBaseConfig creates the unwrapped policy for the configured type.
func fromBaseConfig(cfg domain.PolicyConfig) (Policy, error) {
	switch cfg.PolicyType {
	case domain.PolicyTypeFlat:
		return fromFlatConfig(cfg)
	case domain.PolicyTypeFixedFraction:
		return fromFixedFractionConfig(cfg)
	case domain.PolicyTypeKelly:
		return fromKellyConfig(cfg)
	case domain.PolicyTypeRiskAdjustedKelly:
		return fromRiskAdjustedKellyConfig(cfg)
	default:
		return nil, ErrUnknownPolicyType
	}
}

// fromFlatConfig creates FlatPolicy from config.
func fromFlatConfig(cfg domain.PolicyConfig) (*FlatPolicy, error) {
	if cfg.Stake == nil {
		return nil, ErrMissingStake
	}

	return NewFlatPolicy(*cfg.Stake)
}

// fromFixedFractionConfig creates FixedFractionPolicy from config.
func fromFixedFractionConfig(cfg domain.PolicyConfig) (*FixedFractionPolicy, error) {
	if cfg.Fraction == nil {
		return nil, ErrMissingFraction
	}

	return NewFixedFractionPolicy(*cfg.Fraction)
}

// fromKellyConfig creates KellyPolicy from config.
// Multiplier defaults to full Kelly when omitted.
func fromKellyConfig(cfg domain.PolicyConfig) (*KellyPolicy, error) {
	if cfg.ProbWin == nil {
		return nil, ErrMissingProbWin
	}
	if cfg.DecimalOdds == nil {
		return nil, ErrMissingDecimalOdds
	}

	multiplier := DefaultKellyMultiplier
	if cfg.Multiplier != nil {
		multiplier = *cfg.Multiplier
	}

	return NewKellyPolicy(*cfg.ProbWin, *cfg.DecimalOdds, multiplier)
}

// fromRiskAdjustedKellyConfig creates RiskAdjustedKellyPolicy from config.
// Omitted risk parameters take the package defaults.
func fromRiskAdjustedKellyConfig(cfg domain.PolicyConfig) (*RiskAdjustedKellyPolicy, error) {
	if cfg.ProbWin == nil {
		return nil, ErrMissingProbWin
	}
	if cfg.DecimalOdds == nil {
		return nil, ErrMissingDecimalOdds
	}

	probStd := DefaultProbStd
	if cfg.ProbStd != nil {
		probStd = *cfg.ProbStd
	}
	multiplier := DefaultRiskMultiplier
	if cfg.Multiplier != nil {
		multiplier = *cfg.Multiplier
	}
	edgeThreshold := DefaultEdgeThreshold
	if cfg.EdgeThreshold != nil {
		edgeThreshold = *cfg.EdgeThreshold
	}
	maxDrawdown := DefaultMaxDrawdown
	if cfg.MaxDrawdown != nil {
		maxDrawdown = *cfg.MaxDrawdown
	}

	return NewRiskAdjustedKellyPolicy(*cfg.ProbWin, *cfg.DecimalOdds, probStd, multiplier, edgeThreshold, maxDrawdown)
}

// applyBounds wraps pol with the configured min/max stake bounds.
func applyBounds(pol Policy, cfg domain.PolicyConfig) (Policy, error) {
	if cfg.MinStake != nil {
		wrapped, err := NewMinBetPolicy(pol, *cfg.MinStake)
		if err != nil {
			return nil, err
		}
		pol = wrapped
	}
	if cfg.MaxStake != nil {
		wrapped, err := NewMaxBetPolicy(pol, *cfg.MaxStake)
		if err != nil {
			return nil, err
		}
		pol = wrapped
	}
	return pol, nil
}
