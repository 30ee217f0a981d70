package build

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/content"
	"git.home.luguber.info/inful/sitebuilder/internal/graph"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/templates"
	"git.home.luguber.info/inful/sitebuilder/internal/util/sets"
	"git.home.luguber.info/inful/sitebuilder/internal/version"
)

// Pass kinds.
const (
	KindInitial     = "initial"
	KindIncremental = "incremental"
)

// writeConcurrency bounds parallel output writes.
const writeConcurrency = 8

// PassResult summarizes one completed build pass.
type PassResult struct {
	ID       string
	Kind     string
	Snapshot *Snapshot
	// Rendered lists content paths whose output changed, in render order.
	Rendered []string
	// Written lists output paths written, sorted.
	Written []string
	// RemovedOutputs lists output paths deleted.
	RemovedOutputs []string
	Duration       time.Duration
	NoOp           bool
}

// Orchestrator runs the build pipelines. The global context and snippet table
// are reloaded from the provider on every pass since both may change between
// passes.
type Orchestrator struct {
	Provider content.Provider
	Log      *slog.Logger
	Metrics  metrics.Recorder
}

// InitialBuild constructs the first snapshot and renders every node.
func (o *Orchestrator) InitialBuild(ctx context.Context) (*PassResult, error) {
	return o.run(ctx, KindInitial, func(sched *Scheduler, builder *Builder) (*Snapshot, sets.Set[graph.NodeID], []string, bool, error) {
		snap, err := builder.Build()
		if err != nil {
			return nil, nil, nil, false, err
		}
		renderSet := sets.New(snap.Graph.IDs()...)
		return snap, renderSet, nil, false, nil
	})
}

// Rebuild constructs a fresh snapshot, diffs it against the previous one, and
// renders only what the change batch invalidated. The returned result carries
// the new snapshot; the caller swaps it in as the baseline for the next batch.
func (o *Orchestrator) Rebuild(ctx context.Context, old *Snapshot, globalChanged bool) (*PassResult, error) {
	return o.run(ctx, KindIncremental, func(sched *Scheduler, builder *Builder) (*Snapshot, sets.Set[graph.NodeID], []string, bool, error) {
		snap, err := builder.Build()
		if err != nil {
			return nil, nil, nil, false, err
		}
		diff := ComputeDiff(old, snap, o.Log)
		renderSet := Invalidate(old, snap, diff, globalChanged)
		Reconcile(old, snap, renderSet, o.Log)
		noop := len(renderSet) == 0 && len(diff.Removed) == 0 && !globalChanged
		return snap, renderSet, diff.RemovedOutputPaths, noop, nil
	})
}

type pipelineFunc func(*Scheduler, *Builder) (*Snapshot, sets.Set[graph.NodeID], []string, bool, error)

func (o *Orchestrator) run(ctx context.Context, kind string, pipeline pipelineFunc) (*PassResult, error) {
	start := time.Now()
	result := &PassResult{ID: uuid.NewString(), Kind: kind}
	log := o.Log.With(logfields.BuildID(result.ID))

	global, err := config.LoadGlobal(o.Provider)
	if err != nil {
		return nil, o.fail(kind, start, err)
	}
	snippets, err := o.loadSnippets()
	if err != nil {
		return nil, o.fail(kind, start, err)
	}
	builder := &Builder{Provider: o.Provider, Locale: global.Locale, Log: log}
	sched := &Scheduler{
		Renderer: templates.NewLiquidRenderer(snippets),
		Global:   globalContext(global),
		Log:      log,
	}

	snap, renderSet, removedOutputs, noop, err := pipeline(sched, builder)
	if err != nil {
		return nil, o.fail(kind, start, err)
	}
	o.Metrics.SetGraphSize(snap.Graph.Len())
	result.Snapshot = snap
	result.RemovedOutputs = removedOutputs

	if noop {
		result.NoOp = true
		result.Duration = time.Since(start)
		o.Metrics.ObserveBuildDuration(kind, result.Duration)
		o.Metrics.IncBuildOutcome(kind, metrics.OutcomeNoop)
		log.Info("no changes, skipping render", logfields.Pass(kind))
		return result, nil
	}

	renderedIDs, err := sched.Render(snap, renderSet)
	if err != nil {
		return nil, o.fail(kind, start, err)
	}
	for _, id := range renderedIDs {
		result.Rendered = append(result.Rendered, snap.Doc(id).Path)
	}

	for _, output := range removedOutputs {
		if err := o.Provider.Remove(output); err != nil {
			return nil, o.fail(kind, start, fmt.Errorf("remove %s: %w", output, err))
		}
		log.Info("removed output", logfields.Output(output))
	}

	written, err := o.writeOutputs(ctx, snap, renderedIDs)
	if err != nil {
		return nil, o.fail(kind, start, err)
	}
	result.Written = written
	result.Duration = time.Since(start)

	o.Metrics.ObserveBuildDuration(kind, result.Duration)
	o.Metrics.IncBuildOutcome(kind, metrics.OutcomeSuccess)
	o.Metrics.AddDocumentsRendered(len(renderedIDs))
	log.Info("build pass complete",
		logfields.Pass(kind),
		logfields.Rendered(len(renderedIDs)),
		logfields.Removed(len(removedOutputs)),
		logfields.DurationMS(float64(result.Duration.Milliseconds())))
	return result, nil
}

// writeOutputs persists rendered nodes. Several nodes can resolve to the same
// output path (a page and its layout wrappers); visit order is topological,
// so the outermost wrapper's output wins before writes fan out in parallel.
func (o *Orchestrator) writeOutputs(ctx context.Context, snap *Snapshot, renderedIDs []graph.NodeID) ([]string, error) {
	outputs := make(map[string]string)
	for _, id := range renderedIDs {
		doc := snap.Doc(id)
		path := snap.OutputPath(id)
		if path == "" {
			o.Log.Warn("rendered node has no output path", logfields.Path(doc.Path))
			continue
		}
		outputs[path] = doc.Rendered
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(writeConcurrency)
	for path, body := range outputs {
		g.Go(func() error {
			if err := o.Provider.Write(path, []byte(body)); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	written := sets.New[string]()
	for path := range outputs {
		written.Add(path)
	}
	return sets.SortedStrings(written), nil
}

func (o *Orchestrator) loadSnippets() (map[string]string, error) {
	paths, err := o.Provider.ListSnippets()
	if err != nil {
		return nil, fmt.Errorf("list snippets: %w", err)
	}
	snippets := make(map[string]string, len(paths))
	for _, path := range paths {
		text, err := o.Provider.Read(path)
		if err != nil {
			return nil, fmt.Errorf("read snippet %s: %w", path, err)
		}
		snippets[path] = text
	}
	return snippets, nil
}

func (o *Orchestrator) fail(kind string, start time.Time, err error) error {
	o.Metrics.ObserveBuildDuration(kind, time.Since(start))
	o.Metrics.IncBuildOutcome(kind, metrics.OutcomeFailed)
	return err
}

// globalContext augments the site context with builder metadata, bound under
// "meta".
func globalContext(global config.Global) map[string]any {
	ctx := make(map[string]any, len(global.Context)+1)
	for k, v := range global.Context {
		ctx[k] = v
	}
	ctx["meta"] = map[string]any{
		"builder": "sitebuilder",
		"version": version.Version,
		"locale":  global.Locale.String(),
	}
	return ctx
}
