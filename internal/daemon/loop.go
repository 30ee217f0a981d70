package daemon

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/graph"
	"git.home.luguber.info/inful/sitebuilder/internal/history"
	"git.home.luguber.info/inful/sitebuilder/internal/linkcheck"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/notify"
	"git.home.luguber.info/inful/sitebuilder/internal/retry"
)

// Loop drives watch mode: an initial full build, then one incremental
// rebuild per change batch, processed strictly in sequence. A failing pass is
// retried as a whole per the retry policy; content and I/O errors are
// retryable, graph invariant violations are not.
type Loop struct {
	Orchestrator *build.Orchestrator
	Policy       retry.Policy
	Log          *slog.Logger

	// History and Publisher are optional; nil disables them.
	History   *history.Store
	Publisher notify.Publisher
	// AuditLinks enables the post-pass internal-link audit.
	AuditLinks bool
}

// Run blocks until the context ends or the batch stream closes. It fails only
// if the initial build cannot complete within the retry budget.
func (l *Loop) Run(ctx context.Context, batches <-chan Batch) error {
	result, err := l.passWithRetry(ctx, func() (*build.PassResult, error) {
		return l.Orchestrator.InitialBuild(ctx)
	})
	if err != nil {
		return err
	}
	snapshot := result.Snapshot

	for {
		select {
		case <-ctx.Done():
			return nil
		case batch, ok := <-batches:
			if !ok {
				return nil
			}
			l.Log.Debug("processing change batch",
				slog.Int("changes", len(batch.Changes)),
				slog.Bool("global", batch.GlobalChanged))
			result, err := l.passWithRetry(ctx, func() (*build.PassResult, error) {
				return l.Orchestrator.Rebuild(ctx, snapshot, batch.GlobalChanged)
			})
			if err != nil {
				// The old snapshot stays current; the next batch retries
				// against it.
				l.Log.Error("rebuild failed, waiting for next change", logfields.Error(err))
				continue
			}
			snapshot = result.Snapshot
		}
	}
}

func (l *Loop) passWithRetry(ctx context.Context, pass func() (*build.PassResult, error)) (*build.PassResult, error) {
	started := time.Now()
	var lastErr error
	for attempt := 0; attempt <= l.Policy.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := l.Policy.Delay(attempt)
			l.Log.Warn("retrying build pass",
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay),
				logfields.Error(lastErr))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		result, err := pass()
		if err == nil {
			l.finishPass(ctx, result, started)
			return result, nil
		}
		lastErr = err
		if !retryable(err) {
			break
		}
	}
	l.recordFailure(ctx, started, lastErr)
	return nil, lastErr
}

// retryable reports whether an error may succeed on a clean re-run. Graph
// invariant violations mean corrupted state and are never retried.
func retryable(err error) bool {
	return !errors.Is(err, graph.ErrCycle) && !errors.Is(err, graph.ErrNodeNotFound)
}

func (l *Loop) finishPass(ctx context.Context, result *build.PassResult, started time.Time) {
	if l.History != nil {
		err := l.History.Record(ctx, history.Pass{
			ID:            result.ID,
			Kind:          result.Kind,
			Rendered:      len(result.Rendered),
			RemovedOutput: len(result.RemovedOutputs),
			NoOp:          result.NoOp,
			Duration:      result.Duration,
			StartedAt:     started,
		})
		if err != nil {
			l.Log.Warn("record build history", logfields.Error(err))
		}
	}
	if l.Publisher != nil {
		if err := l.Publisher.PublishPass(result); err != nil {
			l.Log.Warn("publish build event", logfields.Error(err))
		}
	}
	if l.AuditLinks && !result.NoOp {
		l.auditLinks(result)
	}
}

func (l *Loop) recordFailure(ctx context.Context, started time.Time, err error) {
	if l.History == nil || err == nil {
		return
	}
	rerr := l.History.Record(ctx, history.Pass{
		ID:        "failed-" + started.UTC().Format(time.RFC3339Nano),
		Kind:      build.KindIncremental,
		Error:     err.Error(),
		Duration:  time.Since(started),
		StartedAt: started,
	})
	if rerr != nil {
		l.Log.Warn("record failed pass", logfields.Error(rerr))
	}
}

// auditLinks reads the pass's written outputs and warns on internal links
// that resolve to no known output path.
func (l *Loop) auditLinks(result *build.PassResult) {
	snap := result.Snapshot
	known := make([]string, 0, snap.Graph.Len())
	for _, id := range snap.Graph.IDs() {
		if out := snap.OutputPath(id); out != "" {
			known = append(known, out)
		}
	}
	pages := make(map[string]string, len(result.Written))
	for _, out := range result.Written {
		text, err := l.Orchestrator.Provider.Read(out)
		if err != nil {
			l.Log.Warn("read output for link audit", logfields.Output(out), logfields.Error(err))
			continue
		}
		pages[out] = text
	}
	for _, link := range linkcheck.Audit(pages, known) {
		l.Log.Warn("broken internal link",
			logfields.Output(link.Page),
			slog.String("href", link.Href),
			slog.String("target", link.Target))
	}
}
