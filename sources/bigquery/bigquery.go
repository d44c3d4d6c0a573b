// Package bigquery pages through BigQuery datasets, tables and query results.
package bigquery

import (
	"context"
	"fmt"
	"log/slog"

	bq "cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/Konsultn-Engineering/bqlab/cache"
	"github.com/Konsultn-Engineering/bqlab/paging"
	"github.com/Konsultn-Engineering/bqlab/query"
	"github.com/Konsultn-Engineering/bqlab/sources"
	"github.com/Konsultn-Engineering/bqlab/tokenizer"
)

// Datasets lists the datasets of project. An empty project means the
// client's own project.
func Datasets(client *bq.Client, project string, pageSize int) paging.FetchFunc[*bq.Dataset] {
	return sources.FromPageable[*bq.Dataset](func(ctx context.Context) (iterator.Pageable, error) {
		it := client.Datasets(ctx)
		if project != "" {
			it.ProjectID = project
		}
		return it, nil
	}, pageSize)
}

// Tables lists the tables, views and models of a dataset.
func Tables(dataset *bq.Dataset, pageSize int) paging.FetchFunc[*bq.Table] {
	return sources.FromPageable[*bq.Table](func(ctx context.Context) (iterator.Pageable, error) {
		return dataset.Tables(ctx), nil
	}, pageSize)
}

// FingerprintLabel is the job label holding the template fingerprint, so
// that runs of one template can be found regardless of its values.
const FingerprintLabel = "bqlab_fingerprint"

// NewQuery expands text against env and prepares a query. Legacy SQL is
// used when legacy is set.
func NewQuery(client *bq.Client, text string, env query.Env, legacy bool) (*bq.Query, error) {
	sql, err := query.Substitute(text, env)
	if err != nil {
		return nil, err
	}
	q := client.Query(sql)
	q.UseLegacySQL = legacy
	q.Labels = map[string]string{FingerprintLabel: tokenizer.FingerprintHex(text)}
	return q, nil
}

// Rows pages through the result of q. The query job is submitted when the
// first page of a traversal is requested, under a fresh job id, so
// resetting the iterator runs the query again. q itself is not modified.
//
// Later page tokens name the job they belong to, so traversals of the same
// FetchFunc never share a job. A token from another process is resolved
// through client.
func Rows(client *bq.Client, q *bq.Query, pageSize int) paging.FetchFunc[[]bq.Value] {
	jobs := mustJobCache()

	return func(ctx context.Context, pageToken string, count int) ([][]bq.Value, string, error) {
		var (
			job      *bq.Job
			rowToken string
			err      error
		)
		if pageToken == "" {
			job, err = submit(ctx, q)
			if err != nil {
				return nil, "", err
			}
			jobs.Add(job.ID(), job)
		} else {
			ref, err := parsePageToken(pageToken)
			if err != nil {
				return nil, "", err
			}
			rowToken = ref.rows
			job, err = lookupJob(ctx, client, jobs, ref)
			if err != nil {
				return nil, "", err
			}
		}

		read := sources.FromPageable[[]bq.Value](func(ctx context.Context) (iterator.Pageable, error) {
			return job.Read(ctx)
		}, pageSize)
		rows, next, err := read(ctx, rowToken, count)
		if err != nil {
			return nil, "", err
		}
		if next == "" {
			return rows, "", nil
		}
		return rows, formatPageToken(pageRef{jobID: job.ID(), location: job.Location(), rows: next}), nil
	}
}

// submit runs a copy of q under a new job id.
func submit(ctx context.Context, q *bq.Query) (*bq.Job, error) {
	id, err := NewJobID()
	if err != nil {
		return nil, err
	}
	run := *q
	run.JobID = id
	job, err := run.Run(ctx)
	if err != nil {
		return nil, err
	}
	slog.Debug("bigquery job submitted", "job_id", job.ID(), "location", job.Location())
	return job, nil
}

func lookupJob(ctx context.Context, client *bq.Client, jobs *cache.TextCache[*bq.Job], ref pageRef) (*bq.Job, error) {
	if job, ok := jobs.Get(ref.jobID); ok {
		return job, nil
	}
	if client == nil {
		return nil, fmt.Errorf("bigquery: job %s is unknown and no client was given", ref.jobID)
	}
	job, err := client.JobFromIDLocation(ctx, ref.jobID, ref.location)
	if err != nil {
		return nil, fmt.Errorf("bigquery: resume job %s: %w", ref.jobID, err)
	}
	jobs.Add(ref.jobID, job)
	return job, nil
}

// jobCacheSize bounds the jobs one FetchFunc remembers. Older jobs are
// fetched again by id.
const jobCacheSize = 16

func mustJobCache() *cache.TextCache[*bq.Job] {
	c, err := cache.NewTextCache[*bq.Job](jobCacheSize)
	if err != nil {
		panic(err)
	}
	return c
}
