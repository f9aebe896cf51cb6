package fpgrowth

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Scope selects how MaxRules is applied.
type Scope int

const (
	// ScopeGlobal keeps the best MaxRules rules overall.
	ScopeGlobal Scope = iota
	// ScopeConsequentSize keeps the best MaxRules rules per consequence size.
	ScopeConsequentSize
)

func (s Scope) String() string {
	if s == ScopeConsequentSize {
		return "consequent_size"
	}
	return "global"
}

// ParseScope parses "global" or "consequent_size". Empty means global.
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "global":
		return ScopeGlobal, nil
	case "consequent_size":
		return ScopeConsequentSize, nil
	}
	return 0, &ConfigError{
		Field:   "top_n_scope",
		Message: fmt.Sprintf("unknown scope %q (want global or consequent_size)", s),
	}
}

// Rule is an association rule premise -> consequence over item ids.
type Rule struct {
	Premise            []ItemID
	Consequence        []ItemID
	PremiseSupport     int
	ConsequenceSupport int
	Support            int // transactions containing premise and consequence
	Total              int

	Confidence float64
	Lift       float64
	Leverage   float64
	Conviction float64
}

// Counts returns the counts the rule's metrics were computed from.
func (r *Rule) Counts() Counts {
	return Counts{
		Premise:     r.PremiseSupport,
		Consequence: r.ConsequenceSupport,
		Rule:        r.Support,
		Total:       r.Total,
	}
}

// Value returns the stored value of metric m.
func (r *Rule) Value(m Metric) float64 {
	switch m {
	case MetricLift:
		return r.Lift
	case MetricLeverage:
		return r.Leverage
	case MetricConviction:
		return r.Conviction
	default:
		return r.Confidence
	}
}

// MaxSplitItems is the largest itemset Generate splits into rules. Splits
// are enumerated as bitmasks over a uint64.
const MaxSplitItems = 62

// GenerateStats summarizes one Generate call.
type GenerateStats struct {
	Candidates int // premise/consequence splits considered
	Skipped    int // splits whose premise or consequence support was not mined
	Oversized  int // itemsets over MaxSplitItems, not split at all
	Passed     int // splits meeting every threshold, before truncation
	Kept       int // rules returned
}

// RuleGenerator derives ranked association rules from frequent itemsets.
type RuleGenerator struct {
	MinConfidence float64
	MinLift       *float64 // optional floor
	MinLeverage   *float64 // optional floor
	MaxRules      int      // -1 = unbounded
	RankBy        Metric
	Scope         Scope
}

// Generate splits every itemset of two or more items into each possible
// premise/consequence pair. Supports of both sides are looked up in
// itemsets; a split whose side is missing is skipped and counted, never
// estimated. Itemsets larger than MaxSplitItems are counted in Oversized.
// Surviving rules are ranked and truncated to MaxRules.
func (g *RuleGenerator) Generate(itemsets []Itemset, total int) ([]Rule, GenerateStats) {
	var stats GenerateStats
	index := newSupportIndex(itemsets)

	var rules []Rule
	for _, s := range itemsets {
		k := len(s.Items)
		if k < 2 {
			continue
		}
		if k > MaxSplitItems {
			stats.Oversized++
			continue
		}
		full := uint64(1)<<k - 1
		for mask := uint64(1); mask < full; mask++ {
			stats.Candidates++
			premise, consequence := split(s.Items, mask)

			ps, ok := index.lookup(premise)
			if !ok {
				stats.Skipped++
				continue
			}
			cs, ok := index.lookup(consequence)
			if !ok {
				stats.Skipped++
				continue
			}

			r := newRule(premise, consequence, Counts{Premise: ps, Consequence: cs, Rule: s.Support, Total: total})
			if !g.accept(&r) {
				continue
			}
			rules = append(rules, r)
		}
	}
	stats.Passed = len(rules)

	rules = g.truncate(rules)
	stats.Kept = len(rules)
	return rules, stats
}

// split partitions items by mask: set bits go to the consequence.
func split(items []ItemID, mask uint64) (premise, consequence []ItemID) {
	for i, id := range items {
		if mask&(1<<i) != 0 {
			consequence = append(consequence, id)
		} else {
			premise = append(premise, id)
		}
	}
	return premise, consequence
}

func newRule(premise, consequence []ItemID, c Counts) Rule {
	return Rule{
		Premise:            premise,
		Consequence:        consequence,
		PremiseSupport:     c.Premise,
		ConsequenceSupport: c.Consequence,
		Support:            c.Rule,
		Total:              c.Total,
		Confidence:         ConfidenceOf(c),
		Lift:               LiftOf(c),
		Leverage:           LeverageOf(c),
		Conviction:         ConvictionOf(c),
	}
}

func (g *RuleGenerator) accept(r *Rule) bool {
	if r.Confidence < g.MinConfidence {
		return false
	}
	if g.MinLift != nil && r.Lift < *g.MinLift {
		return false
	}
	if g.MinLeverage != nil && r.Leverage < *g.MinLeverage {
		return false
	}
	return true
}

// Rank sorts rules best first: ranking metric descending, then lift
// descending (confidence when ranking by lift), then shorter premises, then
// ids.
func (g *RuleGenerator) Rank(rules []Rule) {
	slices.SortStableFunc(rules, g.compare)
}

func (g *RuleGenerator) compare(a, b Rule) int {
	if c := cmp.Compare(b.Value(g.RankBy), a.Value(g.RankBy)); c != 0 {
		return c
	}
	tie := MetricLift
	if g.RankBy == MetricLift {
		tie = MetricConfidence
	}
	if c := cmp.Compare(b.Value(tie), a.Value(tie)); c != 0 {
		return c
	}
	if c := cmp.Compare(len(a.Premise), len(b.Premise)); c != 0 {
		return c
	}
	if c := slices.Compare(a.Premise, b.Premise); c != 0 {
		return c
	}
	return slices.Compare(a.Consequence, b.Consequence)
}

func (g *RuleGenerator) truncate(rules []Rule) []Rule {
	g.Rank(rules)
	if g.MaxRules < 0 {
		return rules
	}
	if g.Scope != ScopeConsequentSize {
		if len(rules) > g.MaxRules {
			rules = rules[:g.MaxRules]
		}
		return rules
	}

	// rules are ranked, so the first MaxRules of each size class are its best
	perSize := make(map[int]int)
	kept := rules[:0]
	for _, r := range rules {
		n := len(r.Consequence)
		if perSize[n] >= g.MaxRules {
			continue
		}
		perSize[n]++
		kept = append(kept, r)
	}
	return kept
}
