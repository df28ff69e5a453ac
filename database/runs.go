package database

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/stupid-simple/retention/enforcer"
	"gorm.io/gorm"
)

const iterateBatchSize = 50

type RunParams struct {
	Target     string
	RootDir    string
	TypeTag    string
	StartedAt  time.Time
	FinishedAt time.Time
}

// RecordRun stores the run and one row per decision in a single transaction.
func (d *Database) RecordRun(
	ctx context.Context,
	params RunParams,
	decisions []enforcer.Decision,
	report enforcer.ApplyReport,
) (*Run, error) {
	run := &Run{
		Target:       params.Target,
		RootDir:      params.RootDir,
		TypeTag:      params.TypeTag,
		DryRun:       report.DryRun,
		StartedAt:    params.StartedAt.UTC(),
		FinishedAt:   params.FinishedAt.UTC(),
		KeptCount:    len(report.Kept),
		DeletedCount: len(report.Deleted),
		FailedCount:  len(report.Failed),
		FreedBytes:   report.FreedBytes,
	}

	rows := decisionRows(decisions, report)

	d.Lock.Lock()
	defer d.Lock.Unlock()

	err := d.Cli.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(run).Error; err != nil {
			return fmt.Errorf("failed to record run: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		for i := range rows {
			rows[i].RunID = run.ID
		}
		if err := tx.CreateInBatches(&rows, iterateBatchSize).Error; err != nil {
			return fmt.Errorf("failed to record run decisions: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	d.Logger.Debug().Uint("run", run.ID).Str("target", run.Target).Int("decisions", len(rows)).Msg("recorded retention run")
	return run, nil
}

func decisionRows(decisions []enforcer.Decision, report enforcer.ApplyReport) []RunDecision {
	deleted := make(map[string]struct{}, len(report.Deleted))
	for _, id := range report.Deleted {
		deleted[id] = struct{}{}
	}
	failed := make(map[string]string, len(report.Failed))
	for _, f := range report.Failed {
		failed[f.Identifier] = f.Reason
	}

	rows := make([]RunDecision, 0, len(decisions))
	for _, dec := range decisions {
		row := RunDecision{
			Identifier:        dec.Artifact.Identifier,
			Action:            dec.Action.String(),
			Reason:            dec.Reason,
			SizeBytes:         dec.Artifact.SizeBytes,
			ArtifactCreatedAt: dec.Artifact.CreatedAt.UTC(),
		}

		if dec.Action == enforcer.Keep {
			row.Tier = dec.Tier.String()
			row.Outcome = OutcomeKept
			rows = append(rows, row)
			continue
		}

		if reason, ok := failed[dec.Artifact.Identifier]; ok {
			row.Outcome = OutcomeFailed
			row.Reason = reason
		} else if _, ok := deleted[dec.Artifact.Identifier]; ok {
			row.Outcome = OutcomeDeleted
			if report.DryRun {
				row.Outcome = OutcomeWouldDelete
			}
		} else {
			row.Outcome = OutcomeSkipped
		}
		rows = append(rows, row)
	}
	return rows
}

// FindRuns iterates over recorded runs, newest first.
func (d *Database) FindRuns(ctx context.Context, opts ...FindRunsOptions) (iter.Seq[Run], error) {
	o := findRunsOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	return func(yield func(Run) bool) {
		offset := 0
		remaining := o.limit
		for {
			var thisBatchSize int
			if remaining > 0 {
				thisBatchSize = min(remaining, iterateBatchSize)
			} else {
				thisBatchSize = iterateBatchSize
			}

			query := d.Cli.WithContext(ctx).Model(&Run{})
			if o.target != "" {
				query = query.Where("target = ?", o.target)
			}
			if !o.since.IsZero() {
				query = query.Where("started_at >= ?", o.since.UTC())
			}
			query = query.Order("started_at DESC, id DESC").Limit(thisBatchSize).Offset(offset)

			var runs []Run
			d.Lock.Lock()
			err := query.Find(&runs).Error
			d.Lock.Unlock()

			if err != nil {
				d.Logger.Error().Err(err).Msg("error fetching runs from database")
				return
			}
			for _, run := range runs {
				if ctx.Err() != nil {
					return
				}
				if !yield(run) {
					return
				}
			}
			if len(runs) < thisBatchSize {
				return
			}
			if remaining > 0 && remaining-thisBatchSize <= 0 {
				return
			}

			offset += thisBatchSize
			remaining -= thisBatchSize
		}
	}, nil
}

// RunDecisions returns the decisions recorded for a run, in identifier order.
func (d *Database) RunDecisions(ctx context.Context, runID uint) ([]RunDecision, error) {
	d.Lock.Lock()
	defer d.Lock.Unlock()

	var rows []RunDecision
	err := d.Cli.WithContext(ctx).
		Where("run_id = ?", runID).
		Order("identifier").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// PruneRuns deletes runs started before cutoff together with their decisions.
func (d *Database) PruneRuns(ctx context.Context, cutoff time.Time) (int64, error) {
	d.Lock.Lock()
	defer d.Lock.Unlock()

	var pruned int64
	err := d.Cli.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("run_id IN (SELECT id FROM run WHERE started_at < ?)", cutoff.UTC()).
			Delete(&RunDecision{}).Error; err != nil {
			return fmt.Errorf("failed to delete run decisions: %w", err)
		}
		res := tx.Where("started_at < ?", cutoff.UTC()).Delete(&Run{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete runs: %w", res.Error)
		}
		pruned = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}

	if pruned > 0 {
		d.Logger.Info().Int64("runs", pruned).Time("before", cutoff).Msg("pruned run history")
	}
	return pruned, nil
}
