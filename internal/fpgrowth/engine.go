package fpgrowth

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/dbsmedya/gobasket/internal/logger"
)

// supportEpsilon absorbs floating point noise in ratio arithmetic.
const supportEpsilon = 1e-9

// Options configure a mining run.
type Options struct {
	// MinSupportRatio is the lowest support ratio tried, in [0,1].
	MinSupportRatio float64
	// UpperBoundSupport is the support ratio the search starts from.
	UpperBoundSupport float64
	// SupportDelta is the step by which support is lowered while fewer than
	// MaxRules rules are found. 0 disables the search.
	SupportDelta  float64
	MinConfidence float64
	MaxRules      int // -1 = unbounded
	MaxItems      int // -1 = unbounded
	RankBy        Metric
	MinLift       *float64
	MinLeverage   *float64
	Scope         Scope
	Workers       int
}

// DefaultOptions returns the classic settings: search from 100% support down
// to 5% in steps of 5% until 10 rules with confidence >= 0.9 are found.
func DefaultOptions() Options {
	return Options{
		MinSupportRatio:   0.05,
		UpperBoundSupport: 1.0,
		SupportDelta:      0.05,
		MinConfidence:     0.9,
		MaxRules:          10,
		MaxItems:          -1,
		RankBy:            MetricConfidence,
		Scope:             ScopeGlobal,
	}
}

func inUnitRange(v float64) bool {
	return v >= 0 && v <= 1 // false for NaN
}

// Validate checks every option and returns the first *ConfigError found.
func (o Options) Validate() error {
	switch {
	case !inUnitRange(o.MinSupportRatio):
		return &ConfigError{Field: "min_support_ratio", Message: fmt.Sprintf("%v is outside [0,1]", o.MinSupportRatio)}
	case !inUnitRange(o.MinConfidence):
		return &ConfigError{Field: "min_confidence", Message: fmt.Sprintf("%v is outside [0,1]", o.MinConfidence)}
	case o.MaxRules < -1:
		return &ConfigError{Field: "max_rules", Message: fmt.Sprintf("%d is below -1", o.MaxRules)}
	case !(o.UpperBoundSupport >= o.MinSupportRatio && o.UpperBoundSupport <= 1):
		return &ConfigError{Field: "upper_bound_support", Message: fmt.Sprintf("%v is outside [min_support_ratio,1]", o.UpperBoundSupport)}
	case !inUnitRange(o.SupportDelta):
		return &ConfigError{Field: "lower_bound_support_delta", Message: fmt.Sprintf("%v is outside [0,1]", o.SupportDelta)}
	case o.MaxItems == 0 || o.MaxItems < -1:
		return &ConfigError{Field: "max_items", Message: fmt.Sprintf("%d must be -1 or positive", o.MaxItems)}
	case o.RankBy < MetricConfidence || o.RankBy > MetricConviction:
		return &ConfigError{Field: "ranking_metric", Message: fmt.Sprintf("unknown metric %d", int(o.RankBy))}
	case o.Scope != ScopeGlobal && o.Scope != ScopeConsequentSize:
		return &ConfigError{Field: "top_n_scope", Message: fmt.Sprintf("unknown scope %d", int(o.Scope))}
	case o.MinLift != nil && !(*o.MinLift >= 0):
		return &ConfigError{Field: "min_lift", Message: fmt.Sprintf("%v is negative", *o.MinLift)}
	case o.MinLeverage != nil && !(*o.MinLeverage >= -0.25 && *o.MinLeverage <= 0.25):
		return &ConfigError{Field: "min_leverage", Message: fmt.Sprintf("%v is outside [-0.25,0.25]", *o.MinLeverage)}
	case o.Workers < 0:
		return &ConfigError{Field: "parallel_workers", Message: fmt.Sprintf("%d is negative", o.Workers)}
	}
	return nil
}

// MinSupportCount converts a support ratio into a transaction count:
// ceil(ratio*total), never below 1.
func MinSupportCount(ratio float64, total int) int {
	n := int(math.Ceil(ratio*float64(total) - supportEpsilon))
	if n < 1 {
		return 1
	}
	return n
}

// AssociationRule is a Rule with its items resolved to labels.
type AssociationRule struct {
	Premise            []string
	Consequence        []string
	PremiseSupport     int
	ConsequenceSupport int
	Support            int
	Confidence         float64
	Lift               float64
	Leverage           float64
	Conviction         float64
}

// TreeStats describes the FP-tree of the final pass.
type TreeStats struct {
	Nodes      int
	Items      int
	SinglePath bool
}

// Result is the outcome of Engine.Run.
type Result struct {
	Rules        []AssociationRule
	Itemsets     []Itemset // ids refer to Universe
	Universe     *Universe
	Transactions int
	MinSupport   int     // absolute support of the final pass
	SupportRatio float64 // support ratio of the final pass
	Iterations   int     // passes actually mined
	Skipped      int     // rule candidates skipped for a missing subset support
	Oversized    int     // itemsets over MaxSplitItems that produced no rules
	Tree         TreeStats
	Duration     time.Duration
}

// Engine runs FP-Growth and rule generation over transactions.
type Engine struct {
	opts   Options
	logger *logger.Logger
}

// NewEngine validates opts. A nil logger discards output.
func NewEngine(opts Options, log *logger.Logger) (*Engine, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Engine{opts: opts, logger: log}, nil
}

// Options returns the engine's options.
func (e *Engine) Options() Options { return e.opts }

// Run mines transactions. With a bounded MaxRules and a non-zero
// SupportDelta it starts at UpperBoundSupport and lowers the support ratio
// until MaxRules rules are found or MinSupportRatio has been mined.
// Otherwise it mines MinSupportRatio once. An empty transaction list yields
// an empty Result.
func (e *Engine) Run(ctx context.Context, transactions []Transaction) (*Result, error) {
	start := time.Now()
	total := len(transactions)

	if total == 0 {
		e.logger.Info("No transactions to mine")
		return &Result{Universe: NewUniverse(nil, 1), SupportRatio: e.opts.MinSupportRatio}, nil
	}

	gen := &RuleGenerator{
		MinConfidence: e.opts.MinConfidence,
		MinLift:       e.opts.MinLift,
		MinLeverage:   e.opts.MinLeverage,
		MaxRules:      e.opts.MaxRules,
		RankBy:        e.opts.RankBy,
		Scope:         e.opts.Scope,
	}

	var (
		last     *pass
		lastMin  = -1
		searched = e.opts.MaxRules >= 0 && e.opts.SupportDelta > 0
		result   = &Result{Transactions: total}
	)

	for step := 0; ; step++ {
		ratio, final := e.level(step, searched)
		minSupport := MinSupportCount(ratio, total)

		if minSupport != lastMin {
			p, err := e.mine(ctx, transactions, gen, ratio, minSupport)
			if err != nil {
				return nil, err
			}
			last, lastMin = p, minSupport
			result.Iterations++
			result.SupportRatio = ratio
			if searched && last.stats.Passed >= e.opts.MaxRules {
				break
			}
		}
		if final {
			break
		}
	}

	result.Universe = last.universe
	result.Itemsets = last.itemsets
	result.MinSupport = last.minSupport
	result.Skipped = last.stats.Skipped
	result.Oversized = last.stats.Oversized
	result.Tree = TreeStats{
		Nodes:      last.tree.NodeCount(),
		Items:      last.universe.Len(),
		SinglePath: last.tree.IsSinglePath(),
	}
	result.Rules = make([]AssociationRule, len(last.rules))
	for i, r := range last.rules {
		result.Rules[i] = label(last.universe, &r)
	}
	result.Duration = time.Since(start)

	e.logger.Infow("Mining complete",
		"transactions", total,
		"support_ratio", result.SupportRatio,
		"min_support", result.MinSupport,
		"itemsets", len(result.Itemsets),
		"rules", len(result.Rules),
		"iterations", result.Iterations,
		"duration", result.Duration)
	return result, nil
}

// level returns the support ratio of step and whether it is the last one.
// Ratios are computed from the step count so that repeated subtraction does
// not accumulate error.
func (e *Engine) level(step int, searched bool) (float64, bool) {
	if !searched {
		return e.opts.MinSupportRatio, true
	}
	ratio := e.opts.UpperBoundSupport - float64(step)*e.opts.SupportDelta
	if ratio <= e.opts.MinSupportRatio+supportEpsilon {
		return e.opts.MinSupportRatio, true
	}
	return ratio, false
}

type pass struct {
	universe   *Universe
	tree       *Tree
	itemsets   []Itemset
	rules      []Rule
	stats      GenerateStats
	minSupport int
}

func (e *Engine) mine(ctx context.Context, transactions []Transaction, gen *RuleGenerator, ratio float64, minSupport int) (*pass, error) {
	log := e.logger.WithSupport(ratio, minSupport)

	u := NewUniverse(transactions, minSupport)
	tree := BuildTree(u, transactions)
	log.Debugw("Built FP-tree", "items", u.Len(), "dropped", u.Dropped(), "nodes", tree.NodeCount())

	miner := &Miner{MinSupport: minSupport, MaxItems: e.opts.MaxItems, Workers: e.opts.Workers}
	itemsets, err := miner.Mine(ctx, tree)
	if err != nil {
		return nil, fmt.Errorf("mining at support %.4f: %w", ratio, err)
	}

	rules, stats := gen.Generate(itemsets, len(transactions))
	log.Debugw("Generated rules",
		"itemsets", len(itemsets),
		"candidates", stats.Candidates,
		"passed", stats.Passed,
		"skipped", stats.Skipped)
	if stats.Oversized > 0 {
		log.Warnw("Itemsets too large to split into rules",
			"itemsets", stats.Oversized,
			"max_items", MaxSplitItems)
	}

	return &pass{
		universe:   u,
		tree:       tree,
		itemsets:   itemsets,
		rules:      rules,
		stats:      stats,
		minSupport: minSupport,
	}, nil
}

func label(u *Universe, r *Rule) AssociationRule {
	return AssociationRule{
		Premise:            u.Labels(r.Premise),
		Consequence:        u.Labels(r.Consequence),
		PremiseSupport:     r.PremiseSupport,
		ConsequenceSupport: r.ConsequenceSupport,
		Support:            r.Support,
		Confidence:         r.Confidence,
		Lift:               r.Lift,
		Leverage:           r.Leverage,
		Conviction:         r.Conviction,
	}
}
