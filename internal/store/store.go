// Package store persists mined rules into the destination MySQL database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/dbsmedya/gobasket/internal/fpgrowth"
	"github.com/dbsmedya/gobasket/internal/lock"
	"github.com/dbsmedya/gobasket/internal/logger"
)

var (
	// ErrLockHeld is returned when another run is writing the same job.
	ErrLockHeld = errors.New("job is being stored by another run")
	// ErrNoRuns is returned by LatestRun for a job that was never stored.
	ErrNoRuns = errors.New("no stored runs")
)

const createRunTableSQL = `
CREATE TABLE IF NOT EXISTS gobasket_run (
	run_id CHAR(36) PRIMARY KEY,
	job_name VARCHAR(255) NOT NULL,
	transactions BIGINT NOT NULL,
	min_support BIGINT NOT NULL,
	support_ratio DOUBLE NOT NULL,
	iterations INT NOT NULL,
	itemset_count INT NOT NULL,
	rule_count INT NOT NULL,
	duration_ms BIGINT NOT NULL,
	created_at TIMESTAMP(3) DEFAULT CURRENT_TIMESTAMP(3),
	INDEX idx_job_created (job_name, created_at)
) ENGINE=InnoDB;
`

const createRuleTableSQL = `
CREATE TABLE IF NOT EXISTS gobasket_rule (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	run_id CHAR(36) NOT NULL,
	rule_rank INT NOT NULL,
	premise JSON NOT NULL,
	consequence JSON NOT NULL,
	premise_support BIGINT NOT NULL,
	consequence_support BIGINT NOT NULL,
	support BIGINT NOT NULL,
	confidence DOUBLE NOT NULL,
	lift DOUBLE NOT NULL,
	leverage DOUBLE NOT NULL,
	conviction DOUBLE NULL,
	UNIQUE KEY uk_run_rank (run_id, rule_rank),
	FOREIGN KEY (run_id) REFERENCES gobasket_run(run_id) ON DELETE CASCADE
) ENGINE=InnoDB;
`

const insertRunSQL = `INSERT INTO gobasket_run
	(run_id, job_name, transactions, min_support, support_ratio, iterations, itemset_count, rule_count, duration_ms)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

const insertRuleSQL = `INSERT INTO gobasket_rule
	(run_id, rule_rank, premise, consequence, premise_support, consequence_support, support, confidence, lift, leverage, conviction)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Run is the metadata row of one stored mining run.
type Run struct {
	ID           string
	JobName      string
	Transactions int
	MinSupport   int
	SupportRatio float64
	Iterations   int
	Itemsets     int
	Rules        int
	Duration     time.Duration
	CreatedAt    time.Time
}

// RuleStore writes runs and their rules.
type RuleStore struct {
	db          *sql.DB
	logger      *logger.Logger
	lockTimeout int
	newID       func() string
}

// NewRuleStore creates a store on db. lockTimeout is in seconds.
func NewRuleStore(db *sql.DB, lockTimeout int, log *logger.Logger) (*RuleStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &RuleStore{
		db:          db,
		logger:      log,
		lockTimeout: lockTimeout,
		newID:       uuid.NewString,
	}, nil
}

// InitializeTables creates the run and rule tables if they don't exist.
func (s *RuleStore) InitializeTables(ctx context.Context) error {
	s.logger.Debug("Initializing rule store tables")

	if _, err := s.db.ExecContext(ctx, createRunTableSQL); err != nil {
		return fmt.Errorf("failed to create gobasket_run table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, createRuleTableSQL); err != nil {
		return fmt.Errorf("failed to create gobasket_rule table: %w", err)
	}
	return nil
}

// SaveRun stores res under jobName and returns the new run id. The run row
// and every rule are written in one transaction while holding the job's
// advisory lock.
func (s *RuleStore) SaveRun(ctx context.Context, jobName string, res *fpgrowth.Result) (string, error) {
	if res == nil {
		return "", fmt.Errorf("no result to store")
	}

	runID := s.newID()
	jobLock := lock.NewJobLock(s.db, jobName)

	err := jobLock.WithLock(ctx, s.lockTimeout, func() error {
		return s.write(ctx, runID, jobName, res)
	})
	if errors.Is(err, lock.ErrLockTimeout) {
		return "", fmt.Errorf("%w: %w", ErrLockHeld, err)
	}
	if err != nil {
		return "", err
	}

	s.logger.Infow("Stored mining run", "run_id", runID, "job", jobName, "rules", len(res.Rules))
	return runID, nil
}

func (s *RuleStore) write(ctx context.Context, runID, jobName string, res *fpgrowth.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin store transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Errorf("Failed to rollback store transaction: %v", rbErr)
			}
		}
	}()

	_, err = tx.ExecContext(ctx, insertRunSQL,
		runID, jobName, res.Transactions, res.MinSupport, res.SupportRatio,
		res.Iterations, len(res.Itemsets), len(res.Rules), res.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	if len(res.Rules) > 0 {
		if err := s.insertRules(ctx, tx, runID, res.Rules); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit store transaction: %w", err)
	}
	tx = nil
	return nil
}

func (s *RuleStore) insertRules(ctx context.Context, tx *sql.Tx, runID string, rules []fpgrowth.AssociationRule) error {
	stmt, err := tx.PrepareContext(ctx, insertRuleSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare rule insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range rules {
		premise, err := json.Marshal(r.Premise)
		if err != nil {
			return fmt.Errorf("failed to encode premise of rule %d: %w", i+1, err)
		}
		consequence, err := json.Marshal(r.Consequence)
		if err != nil {
			return fmt.Errorf("failed to encode consequence of rule %d: %w", i+1, err)
		}

		_, err = stmt.ExecContext(ctx,
			runID, i+1, string(premise), string(consequence),
			r.PremiseSupport, r.ConsequenceSupport, r.Support,
			r.Confidence, r.Lift, r.Leverage, nullConviction(r.Conviction))
		if err != nil {
			return fmt.Errorf("failed to insert rule %d: %w", i+1, err)
		}
	}
	return nil
}

// nullConviction maps the infinite sentinel to NULL; MySQL has no infinity.
func nullConviction(v float64) sql.NullFloat64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

// LatestRun returns the most recent run stored for jobName, or ErrNoRuns.
func (s *RuleStore) LatestRun(ctx context.Context, jobName string) (*Run, error) {
	var (
		run        Run
		durationMS int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT run_id, job_name, transactions, min_support, support_ratio, iterations,
			itemset_count, rule_count, duration_ms, created_at
		FROM gobasket_run WHERE job_name = ? ORDER BY created_at DESC LIMIT 1`,
		jobName,
	).Scan(&run.ID, &run.JobName, &run.Transactions, &run.MinSupport, &run.SupportRatio,
		&run.Iterations, &run.Itemsets, &run.Rules, &durationMS, &run.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w for job %q", ErrNoRuns, jobName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}

	run.Duration = time.Duration(durationMS) * time.Millisecond
	return &run, nil
}

// Rules reads the rules of a stored run in rank order.
func (s *RuleStore) Rules(ctx context.Context, runID string) ([]fpgrowth.AssociationRule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT premise, consequence, premise_support, consequence_support, support,
			confidence, lift, leverage, conviction
		FROM gobasket_rule WHERE run_id = ? ORDER BY rule_rank`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []fpgrowth.AssociationRule
	for rows.Next() {
		var (
			r                    fpgrowth.AssociationRule
			premise, consequence []byte
			conviction           sql.NullFloat64
		)
		if err := rows.Scan(&premise, &consequence, &r.PremiseSupport, &r.ConsequenceSupport,
			&r.Support, &r.Confidence, &r.Lift, &r.Leverage, &conviction); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		if err := json.Unmarshal(premise, &r.Premise); err != nil {
			return nil, fmt.Errorf("failed to decode premise: %w", err)
		}
		if err := json.Unmarshal(consequence, &r.Consequence); err != nil {
			return nil, fmt.Errorf("failed to decode consequence: %w", err)
		}
		r.Conviction = math.Inf(1)
		if conviction.Valid {
			r.Conviction = conviction.Float64
		}
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rules: %w", err)
	}
	return rules, nil
}
