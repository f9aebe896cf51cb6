package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/dbsmedya/gobasket/internal/config"
	"github.com/dbsmedya/gobasket/internal/database"
	"github.com/dbsmedya/gobasket/internal/fpgrowth"
	"github.com/dbsmedya/gobasket/internal/logger"
	"github.com/dbsmedya/gobasket/internal/report"
	"github.com/dbsmedya/gobasket/internal/source"
	"github.com/dbsmedya/gobasket/internal/store"
)

// Stage names used in logs and wrapped errors.
const (
	StageLoad   = "load"
	StageMine   = "mine"
	StageStore  = "store"
	StageRender = "render"
)

// RunResult describes one completed job run.
type RunResult struct {
	JobName     string
	Source      string
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration
	Summary     source.Summary
	Mining      *fpgrowth.Result
	RunID       string // set when the run was stored
}

// Runner executes one job. Database connections are opened lazily, only
// for a MySQL input or an enabled store.
type Runner struct {
	config    *config.Config
	jobName   string
	jobConfig *config.JobConfig
	mining    config.MiningConfig
	dbManager *database.Manager
	logger    *logger.Logger

	// newLoader is replaced in tests.
	newLoader func(in *config.InputConfig, db *sql.DB, log *logger.Logger) (source.Loader, error)
}

// NewRunner creates a runner for jobName. mining is the effective mining
// config, CLI overrides already applied. dbManager may be nil when the job
// reads a file and the store is disabled.
func NewRunner(cfg *config.Config, jobName string, jobCfg *config.JobConfig, mining config.MiningConfig, dbManager *database.Manager, log *logger.Logger) (*Runner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if jobCfg == nil {
		return nil, fmt.Errorf("job config is nil")
	}
	if dbManager == nil && (jobCfg.Input.Type == config.InputMySQL || cfg.Store.Enabled) {
		return nil, fmt.Errorf("database manager is nil")
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &Runner{
		config:    cfg,
		jobName:   jobName,
		jobConfig: jobCfg,
		mining:    mining,
		dbManager: dbManager,
		logger:    log.WithJob(jobName),
		newLoader: source.New,
	}, nil
}

// Run loads, mines and, when the store is enabled, stores the job's rules.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	opts, err := OptionsFromConfig(r.mining)
	if err != nil {
		return nil, fmt.Errorf("invalid mining options: %w", err)
	}

	result := &RunResult{JobName: r.jobName, StartedAt: time.Now()}

	transactions, loader, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	result.Source = loader.Describe()
	result.Summary = source.Summarize(transactions)

	log := r.logger.WithStage(StageMine)
	engine, err := fpgrowth.NewEngine(opts, log)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", StageMine, err)
	}
	mined, err := engine.Run(ctx, transactions)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", StageMine, err)
	}
	result.Mining = mined

	if r.config.Store.Enabled {
		runID, err := r.store(ctx, mined)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", StageStore, err)
		}
		result.RunID = runID
	}

	result.CompletedAt = time.Now()
	result.Duration = result.CompletedAt.Sub(result.StartedAt)

	r.logger.Infow("Job complete",
		"source", result.Source,
		"transactions", result.Summary.Transactions,
		"rules", len(mined.Rules),
		"run_id", result.RunID,
		"duration", result.Duration)
	return result, nil
}

// Inspect loads the job's transactions and describes them at the job's
// minimum support without mining.
func (r *Runner) Inspect(ctx context.Context) (*report.Inspection, error) {
	if _, err := OptionsFromConfig(r.mining); err != nil {
		return nil, fmt.Errorf("invalid mining options: %w", err)
	}

	transactions, loader, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	summary := source.Summarize(transactions)
	minSupport := fpgrowth.MinSupportCount(r.mining.MinSupportRatio, len(transactions))
	u := fpgrowth.NewUniverse(transactions, minSupport)
	tree := fpgrowth.BuildTree(u, transactions)

	return &report.Inspection{
		Source:       loader.Describe(),
		Transactions: summary.Transactions,
		Empty:        summary.Empty,
		Distinct:     u.Distinct(),
		MinSupport:   minSupport,
		SupportRatio: r.mining.MinSupportRatio,
		Tree: fpgrowth.TreeStats{
			Nodes:      tree.NodeCount(),
			Items:      u.Len(),
			SinglePath: tree.IsSinglePath(),
		},
		Items: u.Items(),
	}, nil
}

// Render writes the rules of res with the configured output format.
func (r *Runner) Render(w io.Writer, res *RunResult) error {
	renderer, err := report.New(r.config.Output.Format, r.config.Output.Color)
	if err != nil {
		return fmt.Errorf("%s: %w", StageRender, err)
	}
	var rules []fpgrowth.AssociationRule
	if res != nil && res.Mining != nil {
		rules = res.Mining.Rules
	}
	if err := renderer.Render(w, rules); err != nil {
		return fmt.Errorf("%s: %w", StageRender, err)
	}
	return nil
}

type counter interface {
	Count(ctx context.Context) (int64, error)
}

func (r *Runner) load(ctx context.Context) ([]fpgrowth.Transaction, source.Loader, error) {
	log := r.logger.WithStage(StageLoad)

	var db *sql.DB
	if r.jobConfig.Input.Type == config.InputMySQL {
		if err := r.dbManager.ConnectSource(ctx); err != nil {
			return nil, nil, fmt.Errorf("%s: failed to connect to source: %w", StageLoad, err)
		}
		db = r.dbManager.Source
	}

	loader, err := r.newLoader(&r.jobConfig.Input, db, log)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", StageLoad, err)
	}

	if c, ok := loader.(counter); ok {
		if n, err := c.Count(ctx); err == nil {
			log.Infof("Loading %d transactions from %s", n, loader.Describe())
		} else {
			log.Warnf("Could not count transactions: %v", err)
		}
	}

	transactions, err := loader.Load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", StageLoad, err)
	}

	log.Infow("Transactions loaded", "source", loader.Describe(), "transactions", len(transactions))
	return transactions, loader, nil
}

func (r *Runner) store(ctx context.Context, res *fpgrowth.Result) (string, error) {
	if err := r.dbManager.ConnectDestination(ctx); err != nil {
		return "", fmt.Errorf("failed to connect to destination: %w", err)
	}

	rs, err := store.NewRuleStore(r.dbManager.Destination, r.config.Store.LockTimeout, r.logger.WithStage(StageStore))
	if err != nil {
		return "", err
	}
	if err := rs.InitializeTables(ctx); err != nil {
		return "", err
	}
	return rs.SaveRun(ctx, r.jobName, res)
}
