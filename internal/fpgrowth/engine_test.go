package fpgrowth

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *Options)
		field  string
	}{
		{"support above 1", func(o *Options) { o.MinSupportRatio = 1.2 }, "min_support_ratio"},
		{"support NaN", func(o *Options) { o.MinSupportRatio = math.NaN() }, "min_support_ratio"},
		{"confidence negative", func(o *Options) { o.MinConfidence = -0.1 }, "min_confidence"},
		{"max rules below -1", func(o *Options) { o.MaxRules = -5 }, "max_rules"},
		{"upper below min", func(o *Options) { o.MinSupportRatio = 0.5; o.UpperBoundSupport = 0.2 }, "upper_bound_support"},
		{"delta above 1", func(o *Options) { o.SupportDelta = 1.5 }, "lower_bound_support_delta"},
		{"max items zero", func(o *Options) { o.MaxItems = 0 }, "max_items"},
		{"unknown metric", func(o *Options) { o.RankBy = Metric(7) }, "ranking_metric"},
		{"unknown scope", func(o *Options) { o.Scope = Scope(3) }, "top_n_scope"},
		{"negative lift", func(o *Options) { o.MinLift = floatPtr(-1) }, "min_lift"},
		{"leverage out of range", func(o *Options) { o.MinLeverage = floatPtr(0.3) }, "min_leverage"},
		{"negative workers", func(o *Options) { o.Workers = -1 }, "parallel_workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)

			err := opts.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidOptions))

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
			assert.Contains(t, err.Error(), tt.field)

			_, err = NewEngine(opts, nil)
			assert.ErrorIs(t, err, ErrInvalidOptions)
		})
	}

	require.NoError(t, DefaultOptions().Validate())
}

func TestMinSupportCount(t *testing.T) {
	tests := []struct {
		ratio float64
		total int
		want  int
	}{
		{0.5, 4, 2},
		{0.05, 100, 5},
		{0.3, 10, 3}, // 0.3*10 is 3.0000000000000004
		{0.01, 10, 1},
		{0, 10, 1},
		{1.0, 7, 7},
		{0.35, 10, 4},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MinSupportCount(tt.ratio, tt.total), "ratio %v of %d", tt.ratio, tt.total)
	}
}

func TestEngineRun_EmptyInput(t *testing.T) {
	e, err := NewEngine(DefaultOptions(), nil)
	require.NoError(t, err)

	res, err := e.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Rules)
	assert.Empty(t, res.Itemsets)
	assert.Equal(t, 0, res.Transactions)
	assert.NotNil(t, res.Universe)

	// only empty baskets
	res, err = e.Run(context.Background(), []Transaction{{}, {}})
	require.NoError(t, err)
	assert.Empty(t, res.Rules)
	assert.Equal(t, 2, res.Transactions)
}

func TestEngineRun_Groceries(t *testing.T) {
	opts := DefaultOptions()
	opts.MinSupportRatio = 0.5
	opts.UpperBoundSupport = 0.5
	opts.MaxRules = -1

	e, err := NewEngine(opts, nil)
	require.NoError(t, err)

	res, err := e.Run(context.Background(), groceries())
	require.NoError(t, err)

	assert.Equal(t, 4, res.Transactions)
	assert.Equal(t, 2, res.MinSupport)
	assert.Equal(t, 1, res.Iterations)
	assert.Len(t, res.Itemsets, 5)
	assert.Equal(t, 3, res.Tree.Items)
	assert.Equal(t, 5, res.Tree.Nodes)

	require.Len(t, res.Rules, 1)
	r := res.Rules[0]
	assert.Equal(t, []string{"eggs"}, r.Premise)
	assert.Equal(t, []string{"milk"}, r.Consequence)
	assert.Equal(t, 2, r.PremiseSupport)
	assert.Equal(t, 3, r.ConsequenceSupport)
	assert.Equal(t, 2, r.Support)
	assert.InDelta(t, 4.0/3.0, r.Lift, 1e-12)
	assert.True(t, math.IsInf(r.Conviction, 1))
}

func TestEngineRun_IterativeDeepening(t *testing.T) {
	transactions := randomTransactions(91, 300, 15, 6)

	opts := DefaultOptions()
	opts.MinConfidence = 0.3
	opts.MaxRules = 5
	opts.SupportDelta = 0.05
	opts.MinSupportRatio = 0.01

	e, err := NewEngine(opts, nil)
	require.NoError(t, err)
	res, err := e.Run(context.Background(), transactions)
	require.NoError(t, err)

	require.Len(t, res.Rules, 5)
	assert.Greater(t, res.Iterations, 1)
	assert.Greater(t, res.SupportRatio, opts.MinSupportRatio)

	// the previous level must have produced fewer than MaxRules rules
	prev := opts
	prev.MinSupportRatio = res.SupportRatio + opts.SupportDelta
	prev.UpperBoundSupport = prev.MinSupportRatio
	prev.MaxRules = -1
	pe, err := NewEngine(prev, nil)
	require.NoError(t, err)
	prevRes, err := pe.Run(context.Background(), transactions)
	require.NoError(t, err)
	assert.Less(t, len(prevRes.Rules), opts.MaxRules)
}

func TestEngineRun_StopsAtLowerBound(t *testing.T) {
	opts := DefaultOptions()
	opts.MinSupportRatio = 0.5
	opts.MaxRules = 100

	e, err := NewEngine(opts, nil)
	require.NoError(t, err)
	res, err := e.Run(context.Background(), groceries())
	require.NoError(t, err)

	// 1.0, 0.95 ... 0.55 and 0.5; levels that map to the same absolute
	// support are mined once: 4, 3 and 2 transactions
	assert.Equal(t, 0.5, res.SupportRatio)
	assert.Equal(t, 2, res.MinSupport)
	assert.Equal(t, 3, res.Iterations)
	assert.Len(t, res.Rules, 1)
}

func TestEngineRun_SinglePassWhenUnbounded(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxRules = -1
	opts.MinSupportRatio = 0.25
	opts.MinConfidence = 0

	e, err := NewEngine(opts, nil)
	require.NoError(t, err)
	res, err := e.Run(context.Background(), groceries())
	require.NoError(t, err)

	assert.Equal(t, 1, res.Iterations)
	assert.Equal(t, 1, res.MinSupport)
	// every split of {b,m}, {b,e}, {m,e} and {b,m,e}
	assert.Len(t, res.Rules, 12)
}

func TestEngineRun_ParallelMatchesSequential(t *testing.T) {
	transactions := randomTransactions(101, 400, 20, 7)

	opts := DefaultOptions()
	opts.MinSupportRatio = 0.02
	opts.MinConfidence = 0.4
	opts.MaxRules = 20

	seq, err := NewEngine(opts, nil)
	require.NoError(t, err)
	want, err := seq.Run(context.Background(), transactions)
	require.NoError(t, err)

	opts.Workers = 4
	par, err := NewEngine(opts, nil)
	require.NoError(t, err)
	got, err := par.Run(context.Background(), transactions)
	require.NoError(t, err)

	assert.Equal(t, want.Rules, got.Rules)
	assert.Equal(t, want.Itemsets, got.Itemsets)
}

func TestEngineRun_Cancelled(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxRules = -1
	opts.MinSupportRatio = 0.25

	e, err := NewEngine(opts, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Run(ctx, groceries())
	assert.ErrorIs(t, err, context.Canceled)
}
