package fpgrowth

import (
	"fmt"
	"math"
	"strings"
)

// Metric selects a rule interestingness measure.
type Metric int

const (
	MetricConfidence Metric = iota
	MetricLift
	MetricLeverage
	MetricConviction
)

var metricNames = [...]string{
	MetricConfidence: "confidence",
	MetricLift:       "lift",
	MetricLeverage:   "leverage",
	MetricConviction: "conviction",
}

func (m Metric) String() string {
	if m < 0 || int(m) >= len(metricNames) {
		return fmt.Sprintf("Metric(%d)", int(m))
	}
	return metricNames[m]
}

// ParseMetric parses a metric name. The empty string means confidence.
func ParseMetric(s string) (Metric, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return MetricConfidence, nil
	}
	for i, n := range metricNames {
		if n == name {
			return Metric(i), nil
		}
	}
	return 0, &ConfigError{
		Field:   "ranking_metric",
		Message: fmt.Sprintf("unknown metric %q (want confidence, lift, leverage or conviction)", s),
	}
}

// Counts are the transaction counts a rule's metrics derive from.
type Counts struct {
	Premise     int // transactions containing the premise
	Consequence int // transactions containing the consequence
	Rule        int // transactions containing both
	Total       int // all transactions
}

// ConfidenceOf returns Rule/Premise, or 0 when Premise is 0.
func ConfidenceOf(c Counts) float64 {
	if c.Premise == 0 {
		return 0
	}
	return float64(c.Rule) / float64(c.Premise)
}

// LiftOf returns confidence divided by the consequence's relative support,
// computed as Rule*Total / (Premise*Consequence).
func LiftOf(c Counts) float64 {
	if c.Premise == 0 || c.Consequence == 0 || c.Total == 0 {
		return 0
	}
	return float64(c.Rule) * float64(c.Total) / (float64(c.Premise) * float64(c.Consequence))
}

// LeverageOf returns P(premise,consequence) - P(premise)P(consequence).
func LeverageOf(c Counts) float64 {
	if c.Total == 0 {
		return 0
	}
	n := float64(c.Total)
	return (float64(c.Rule)*n - float64(c.Premise)*float64(c.Consequence)) / (n * n)
}

// ConvictionOf returns (1 - P(consequence)) / (1 - confidence). It is +Inf
// when no transaction contains the premise without the consequence.
func ConvictionOf(c Counts) float64 {
	if c.Premise == 0 || c.Total == 0 {
		return 0
	}
	if c.Rule >= c.Premise {
		return math.Inf(1)
	}
	// (Total-Consequence)/Total / ((Premise-Rule)/Premise)
	return float64(c.Total-c.Consequence) * float64(c.Premise) /
		(float64(c.Total) * float64(c.Premise-c.Rule))
}

// Compute evaluates metric m over c.
func Compute(m Metric, c Counts) float64 {
	switch m {
	case MetricLift:
		return LiftOf(c)
	case MetricLeverage:
		return LeverageOf(c)
	case MetricConviction:
		return ConvictionOf(c)
	default:
		return ConfidenceOf(c)
	}
}
