// Package review flags sessions with data-quality problems so curators see
// them before the public does.
package review

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/robfig/cron/v3"
)

// Criterion names one data-quality check.
type Criterion string

const (
	// CriterionMissingData flags sessions with null required fields.
	CriterionMissingData Criterion = "missing_data"
	// CriterionDuplicateDates flags sessions sharing a date; only one
	// session per date should exist.
	CriterionDuplicateDates Criterion = "duplicate_dates"
	// CriterionAutoImported flags auto-imported sessions nobody has
	// verified yet.
	CriterionAutoImported Criterion = "auto_imported"
)

// AllCriteria is the default check set.
var AllCriteria = []Criterion{CriterionMissingData, CriterionDuplicateDates, CriterionAutoImported}

// Finding is one session a check wants reviewed.
type Finding struct {
	SessionID int64
	Criterion Criterion
	Reason    string
}

// Summary accounts for one run across all requested criteria.
type Summary struct {
	Found   map[Criterion]int
	Flagged int
}

// Flagger runs review checks against the session store. With DryRun set,
// findings are reported but nothing is written.
type Flagger struct {
	DB     *sql.DB
	DryRun bool
	// Logger receives per-run summaries. nil means no logging.
	Logger *log.Logger
}

func NewFlagger(conn *sql.DB) *Flagger {
	return &Flagger{DB: conn}
}

// Run executes the requested checks and flags each finding. A session
// already awaiting review is left untouched, so reruns are idempotent.
func (f *Flagger) Run(ctx context.Context, criteria []Criterion) (*Summary, error) {
	summary := &Summary{Found: make(map[Criterion]int)}
	for _, criterion := range criteria {
		findings, err := f.detect(ctx, criterion)
		if err != nil {
			return nil, fmt.Errorf("detect %s: %w", criterion, err)
		}
		summary.Found[criterion] = len(findings)
		for _, finding := range findings {
			flagged, err := f.flag(ctx, finding)
			if err != nil {
				return nil, fmt.Errorf("flag session %d: %w", finding.SessionID, err)
			}
			if flagged {
				summary.Flagged++
			}
		}
	}
	if f.Logger != nil {
		f.Logger.Printf("review run: flagged %d sessions (dry_run=%v)", summary.Flagged, f.DryRun)
	}
	return summary, nil
}

func (f *Flagger) detect(ctx context.Context, criterion Criterion) ([]Finding, error) {
	switch criterion {
	case CriterionMissingData:
		return f.detectMissingData(ctx)
	case CriterionDuplicateDates:
		return f.detectDuplicateDates(ctx)
	case CriterionAutoImported:
		return f.detectAutoImported(ctx)
	default:
		return nil, fmt.Errorf("unknown criterion %q", criterion)
	}
}

func (f *Flagger) detectMissingData(ctx context.Context) ([]Finding, error) {
	rows, err := f.DB.QueryContext(ctx, `
		SELECT id, date, type, term_id
		FROM sessions
		WHERE date IS NULL OR type IS NULL OR term_id IS NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var findings []Finding
	for rows.Next() {
		var id int64
		var date, typ sql.NullString
		var termID sql.NullInt64
		if err := rows.Scan(&id, &date, &typ, &termID); err != nil {
			return nil, err
		}
		var missing []string
		if !date.Valid {
			missing = append(missing, "date")
		}
		if !typ.Valid {
			missing = append(missing, "type")
		}
		if !termID.Valid {
			missing = append(missing, "term_id")
		}
		findings = append(findings, Finding{
			SessionID: id,
			Criterion: CriterionMissingData,
			Reason:    "missing required fields: " + strings.Join(missing, ", "),
		})
	}
	return findings, rows.Err()
}

func (f *Flagger) detectDuplicateDates(ctx context.Context) ([]Finding, error) {
	rows, err := f.DB.QueryContext(ctx, `
		SELECT id, date
		FROM sessions
		WHERE date IN (
			SELECT date FROM sessions
			WHERE date IS NOT NULL
			GROUP BY date
			HAVING COUNT(*) > 1
		)
		ORDER BY date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var findings []Finding
	for rows.Next() {
		var id int64
		var date string
		if err := rows.Scan(&id, &date); err != nil {
			return nil, err
		}
		findings = append(findings, Finding{
			SessionID: id,
			Criterion: CriterionDuplicateDates,
			Reason:    "duplicate session date: " + date,
		})
	}
	return findings, rows.Err()
}

func (f *Flagger) detectAutoImported(ctx context.Context) ([]Finding, error) {
	rows, err := f.DB.QueryContext(ctx, `
		SELECT id, source
		FROM sessions
		WHERE source != 'manual' AND needs_review = 0
		ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var findings []Finding
	for rows.Next() {
		var id int64
		var source string
		if err := rows.Scan(&id, &source); err != nil {
			return nil, err
		}
		findings = append(findings, Finding{
			SessionID: id,
			Criterion: CriterionAutoImported,
			Reason:    "auto-imported session (source: " + source + ") not yet reviewed",
		})
	}
	return findings, rows.Err()
}

// flag marks one session for review. Sessions already awaiting review keep
// their original reason.
func (f *Flagger) flag(ctx context.Context, finding Finding) (bool, error) {
	if f.DryRun {
		if f.Logger != nil {
			f.Logger.Printf("[dry run] would flag session %d: %s", finding.SessionID, finding.Reason)
		}
		return true, nil
	}
	res, err := f.DB.ExecContext(ctx, `
		UPDATE sessions
		SET needs_review = 1, review_reason = ?
		WHERE id = ? AND needs_review = 0`,
		string(finding.Criterion)+": "+finding.Reason, finding.SessionID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Schedule registers a recurring run on c using a standard 5-field cron
// expression.
func (f *Flagger) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		if _, err := f.Run(context.Background(), AllCriteria); err != nil && f.Logger != nil {
			f.Logger.Printf("scheduled review run failed: %v", err)
		}
	})
}
