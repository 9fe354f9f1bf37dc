/*
 * Copyright (C) 2025-2026, Printflow Systems. All rights reserved.
 * See LICENSE for license information.
 */

package client

import (
	"context"
	"fmt"
	"time"

	sqrl "github.com/Masterminds/squirrel"
	"k8s.io/klog/v2"

	dbutils "github.com/printflow/scheduler/pkg/database/utils"
	commonerrors "github.com/printflow/scheduler/pkg/errors"
)

const (
	TJob   = "production_jobs"
	TStage = "production_stages"
)

// GetJob retrieves a job header by id.
func (c *Client) GetJob(ctx context.Context, jobId string) (*ProductionJob, error) {
	if jobId == "" {
		return nil, commonerrors.NewBadRequest("jobId is empty")
	}
	jobs, err := c.selectJobs(ctx, sqrl.Eq{"job_id": jobId}, nil)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, commonerrors.NewNotFound(commonerrors.JobKind, jobId)
	}
	return jobs[0], nil
}

// ListActiveJobs returns every non-completed job in FIFO submission order.
// The ordering makes batch recomputes deterministic.
func (c *Client) ListActiveJobs(ctx context.Context) ([]*ProductionJob, error) {
	query := sqrl.NotEq{"status": "completed"}
	return c.selectJobs(ctx, query, []string{CreatedTime + " " + ASC, "job_id " + ASC})
}

// ListJobsByIds retrieves the given jobs in FIFO submission order.
func (c *Client) ListJobsByIds(ctx context.Context, jobIds []string) ([]*ProductionJob, error) {
	if len(jobIds) == 0 {
		return nil, nil
	}
	return c.selectJobs(ctx, sqrl.Eq{"job_id": jobIds}, []string{CreatedTime + " " + ASC, "job_id " + ASC})
}

// ListJobsAwaitingProof returns jobs that have a pending proof stage and no
// proof approval timestamp yet.
func (c *Client) ListJobsAwaitingProof(ctx context.Context) ([]*ProductionJob, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	cmd := fmt.Sprintf(`SELECT DISTINCT j.* FROM %s j
		JOIN %s si ON si.job_id = j.job_id AND si.job_table_name = j.job_table_name
		WHERE si.stage_name ILIKE '%%proof%%'
		  AND si.status = $1
		  AND j.proof_approved_at IS NULL
		ORDER BY j.created_at ASC, j.job_id ASC`, TJob, TStageInstance)
	var jobs []*ProductionJob
	if err = db.SelectContext(ctx, &jobs, cmd, StagePending); err != nil {
		klog.ErrorS(err, "failed to select jobs awaiting proof")
		return nil, commonerrors.NewPersistenceError(err.Error())
	}
	return jobs, nil
}

// SetJobTentativeDueDate writes the projected completion date of a job.
func (c *Client) SetJobTentativeDueDate(ctx context.Context, jobId string, due time.Time) error {
	if jobId == "" {
		return commonerrors.NewBadRequest("jobId is empty")
	}
	db, err := c.getDB()
	if err != nil {
		return err
	}
	cmd := fmt.Sprintf(`UPDATE %s SET tentative_due_date=$1 WHERE job_id=$2`, TJob)
	_, err = db.ExecContext(ctx, cmd, dbutils.NullTime(due), jobId)
	if err != nil {
		klog.ErrorS(err, "failed to set tentative due date", "job", jobId)
		return commonerrors.NewPersistenceError(err.Error())
	}
	return nil
}

// ListProductionStages returns the active stage configuration.
func (c *Client) ListProductionStages(ctx context.Context) ([]*ProductionStage, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	sql, args, err := sqrl.Select("*").PlaceholderFormat(sqrl.Dollar).
		From(TStage).Where(sqrl.Eq{"is_active": true}).OrderBy("stage_id " + ASC).ToSql()
	if err != nil {
		return nil, err
	}
	var stages []*ProductionStage
	if err = db.SelectContext(ctx, &stages, sql, args...); err != nil {
		klog.ErrorS(err, "failed to select production stages")
		return nil, commonerrors.NewPersistenceError(err.Error())
	}
	return stages, nil
}

// selectJobs retrieves jobs for internal use.
func (c *Client) selectJobs(ctx context.Context, query sqrl.Sqlizer, orderBy []string) ([]*ProductionJob, error) {
	db, err := c.getDB()
	if err != nil {
		return nil, err
	}
	builder := sqrl.StatementBuilder.PlaceholderFormat(sqrl.Dollar).
		Select("*").From(TJob)
	if query != nil {
		builder = builder.Where(query)
	}
	for _, order := range orderBy {
		builder = builder.OrderBy(order)
	}
	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	var jobs []*ProductionJob
	if c.RequestTimeout > 0 {
		ctx2, cancel := context.WithTimeout(ctx, c.RequestTimeout)
		defer cancel()
		err = db.SelectContext(ctx2, &jobs, sql, args...)
	} else {
		err = db.SelectContext(ctx, &jobs, sql, args...)
	}
	if err != nil {
		klog.ErrorS(err, "failed to select jobs", "sql", dbutils.CvtToSqlStr(query))
		return nil, commonerrors.NewPersistenceError(err.Error())
	}
	return jobs, nil
}
