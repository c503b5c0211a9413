package indexing

import (
	"context"
	"sync"
	"time"

	"github.com/poiesic/haystack/core"
	"github.com/poiesic/haystack/storage"
)

// Failure records a document that ReindexAll could not index.
type Failure struct {
	Ref core.IdentityHit
	Err error
}

// Report summarizes a ReindexAll run.
type Report struct {
	Indexed  int
	Failures []Failure
	Elapsed  time.Duration
}

// ReindexAll rebuilds the postings of docs.
//
// Documents are analyzed concurrently on the indexer's worker pool and then
// committed in batches, in input order. Commits are retried as configured
// with WithRetry. A batch that still fails is committed again one
// document at a time so a single bad document only fails itself. Failures are
// collected in the report; the returned error is reserved for cancellation.
func (ix *Indexer) ReindexAll(ctx context.Context, docs []core.Indexable) (*Report, error) {
	start := time.Now()
	report := &Report{}

	var progress *Progress
	if ix.progress != nil {
		progress = NewProgress(ix.progress, len(docs), ix.batch)
		progress.Start()
		defer progress.Finish()
	}

	entries, errs := ix.analyzeAll(ctx, docs)
	if err := ctx.Err(); err != nil {
		return report, err
	}

	batch := make([]storage.Entry, 0, ix.batch)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		defer func() { batch = batch[:0] }()

		err := ix.commit(ctx, batch...)
		if err == nil {
			report.Indexed += len(batch)
			progress.add(len(batch))
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		ix.logger.Warn("batch commit failed, committing individually", "size", len(batch), "err", err)
		for _, entry := range batch {
			if err := ix.commit(ctx, entry); err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				report.Failures = append(report.Failures, Failure{Ref: entry.Posting.Identity(), Err: err})
			} else {
				report.Indexed++
			}
			progress.add(1)
		}
		return nil
	}

	for i, doc := range docs {
		if errs[i] != nil {
			report.Failures = append(report.Failures, Failure{Ref: identity(doc), Err: errs[i]})
			progress.add(1)
			continue
		}
		batch = append(batch, entries[i])
		if len(batch) == ix.batch {
			if err := flush(); err != nil {
				report.Elapsed = time.Since(start)
				return report, err
			}
		}
	}
	if err := flush(); err != nil {
		report.Elapsed = time.Since(start)
		return report, err
	}

	report.Elapsed = time.Since(start)
	ix.logger.Info("reindex complete",
		"indexed", report.Indexed,
		"failed", len(report.Failures),
		"elapsed", report.Elapsed)
	return report, nil
}

func (ix *Indexer) commit(ctx context.Context, entries ...storage.Entry) error {
	return retry(ctx, ix.logger, ix.attempts, ix.delay, func() error {
		return ix.index.Upsert(ctx, entries...)
	})
}

// analyzeAll builds the entry of every document on the worker pool.
// Position i of the results belongs to docs[i].
func (ix *Indexer) analyzeAll(ctx context.Context, docs []core.Indexable) ([]storage.Entry, []error) {
	entries := make([]storage.Entry, len(docs))
	errs := make([]error, len(docs))

	var wg sync.WaitGroup
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			continue
		}
		wg.Add(1)
		err := ix.pool.Submit(func() {
			defer wg.Done()
			entries[i], errs[i] = ix.Entry(doc)
		})
		if err != nil {
			wg.Done()
			errs[i] = err
		}
	}
	wg.Wait()
	return entries, errs
}

func identity(doc core.Indexable) core.IdentityHit {
	if doc == nil {
		return core.IdentityHit{}
	}
	return core.IdentityHit{ModelType: doc.SearchModelType(), ModelID: doc.SearchModelID()}
}
