// Package pipeline runs a mining job end to end: load transactions, mine
// rules, optionally store them, and render them.
package pipeline

import (
	"github.com/dbsmedya/gobasket/internal/config"
	"github.com/dbsmedya/gobasket/internal/fpgrowth"
)

// OptionsFromConfig converts a mining config section into engine options and
// validates them.
func OptionsFromConfig(m config.MiningConfig) (fpgrowth.Options, error) {
	metric, err := fpgrowth.ParseMetric(m.RankingMetric)
	if err != nil {
		return fpgrowth.Options{}, err
	}
	scope, err := fpgrowth.ParseScope(m.TopNScope)
	if err != nil {
		return fpgrowth.Options{}, err
	}

	opts := fpgrowth.Options{
		MinSupportRatio:   m.MinSupportRatio,
		UpperBoundSupport: m.UpperBoundSupport,
		SupportDelta:      m.LowerBoundSupportDelta,
		MinConfidence:     m.MinConfidence,
		MaxRules:          m.MaxRules,
		MaxItems:          m.MaxItems,
		RankBy:            metric,
		MinLift:           m.MinLift,
		MinLeverage:       m.MinLeverage,
		Scope:             scope,
		Workers:           m.ParallelWorkers,
	}
	if err := opts.Validate(); err != nil {
		return fpgrowth.Options{}, err
	}
	return opts, nil
}
