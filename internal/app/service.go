// Package service runs preparation recipes end to end: prepare, store,
// publish, and account for each run in logs and metrics.
package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/okian/growtho/internal/adapters/blob"
	"github.com/okian/growtho/internal/adapters/blob/core"
	"github.com/okian/growtho/internal/adapters/prepared"
	"github.com/okian/growtho/internal/domain/model"
	"github.com/okian/growtho/internal/domain/prepare"
	"github.com/okian/growtho/internal/domain/rawdata"
	"github.com/okian/growtho/pkg/logger"
	"github.com/okian/growtho/pkg/metrics"
)

const millisecondsPerSecond = 1e3

// Pipeline runs recipes sequentially against one raw table.
type Pipeline struct {
	registry        *prepare.Registry
	store           prepared.Store
	blobs           core.Store
	metrics         *metrics.Manager
	logger          logger.Logger
	continueOnError bool
	runID           string
}

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

// WithRegistry sets the recipes available by name.
func WithRegistry(r *prepare.Registry) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.registry = r
		}
	}
}

// WithStore sets where prepared datasets are written.
func WithStore(s prepared.Store) Option {
	return func(p *Pipeline) {
		if s != nil {
			p.store = s
		}
	}
}

// WithBlobStore enables publishing of each stored dataset. A nil store
// leaves publishing disabled.
func WithBlobStore(s core.Store) Option {
	return func(p *Pipeline) { p.blobs = s }
}

// WithMetrics sets the metrics manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(p *Pipeline) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithLogger sets a custom logger for the pipeline.
func WithLogger(l logger.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithContinueOnError keeps running the remaining recipes after a failure.
func WithContinueOnError(enabled bool) Option {
	return func(p *Pipeline) { p.continueOnError = enabled }
}

// WithRunID overrides the generated run identifier.
func WithRunID(id string) Option {
	return func(p *Pipeline) {
		if id != "" {
			p.runID = id
		}
	}
}

// New constructs a Pipeline. Defaults: compiled-in recipes, a DirStore under
// data/prepared, no publishing, the process-wide metrics and a discarding logger.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		registry: prepare.DefaultRegistry(),
		store:    prepared.NewDirStore(),
		metrics:  metrics.Default(),
		logger:   logger.Nop(),
		runID:    uuid.NewString(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.Named("pipeline").With(logger.String("run_id", p.runID))
	return p
}

// RunID identifies this pipeline's published artifacts.
func (p *Pipeline) RunID() string { return p.runID }

// Result describes one recipe run.
type Result struct {
	Recipe      string
	Dir         string
	ConcRows    int
	BiomassRows int
	Timepoints  int
	Published   []string
	Duration    time.Duration
	Err         error
}

// Report collects the results of one Run, in execution order.
type Report struct {
	RunID   string
	Results []Result
}

// Failed returns the names of recipes that did not complete.
func (r Report) Failed() []string {
	var out []string
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, res.Recipe)
		}
	}
	return out
}

// RunFile reads the raw CSV at path and runs the named recipes on it.
func (p *Pipeline) RunFile(ctx context.Context, path string, names []string) (Report, error) {
	raw, err := rawdata.ReadFile(path)
	if err != nil {
		p.logger.Error(ctx, "read raw table failed", logger.String("path", path), logger.Error(err))
		return Report{RunID: p.runID}, err
	}
	p.logger.Info(ctx, "raw table loaded", logger.String("path", path), logger.Int("rows", raw.Len()))
	return p.Run(ctx, raw, names)
}

// Run prepares, stores and publishes every named recipe in order. The first
// failure aborts the run unless continue-on-error is set, in which case all
// failures are returned joined once every recipe was attempted. A cancelled
// context always aborts.
func (p *Pipeline) Run(ctx context.Context, raw *rawdata.Table, names []string) (Report, error) {
	report := Report{RunID: p.runID}
	if len(names) == 0 {
		return report, ErrNoRecipes
	}
	p.logger.Info(ctx, "run started", logger.Strings("recipes", names), logger.Bool("continue_on_error", p.continueOnError))

	var errs []error
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res := p.runRecipe(ctx, raw, name)
		report.Results = append(report.Results, res)
		if res.Err == nil {
			p.metrics.RecordRecipe(name, metrics.StatusSuccess)
			continue
		}
		p.metrics.RecordRecipe(name, metrics.StatusFailure)
		err := fmt.Errorf("%w: %s: %w", ErrRecipeFailed, name, res.Err)
		if !p.continueOnError || errors.Is(res.Err, context.Canceled) || errors.Is(res.Err, context.DeadlineExceeded) {
			p.logger.Error(ctx, "recipe failed, aborting run", logger.String("recipe", name), logger.Error(res.Err))
			return report, err
		}
		p.logger.Warn(ctx, "recipe failed, continuing", logger.String("recipe", name), logger.Error(res.Err))
		errs = append(errs, err)
	}
	p.logger.Info(ctx, "run finished", logger.Int("recipes", len(names)), logger.Int("failed", len(errs)))
	return report, errors.Join(errs...)
}

func (p *Pipeline) runRecipe(ctx context.Context, raw *rawdata.Table, name string) (res Result) {
	start := time.Now()
	res.Recipe = name
	defer func() {
		res.Duration = time.Since(start)
		p.metrics.ObservePreparationDuration(name, res.Duration.Seconds()*millisecondsPerSecond)
	}()
	log := p.logger.With(logger.String("recipe", name))
	log.Info(ctx, "recipe started")

	recipe, err := p.registry.Get(name)
	if err != nil {
		res.Err = err
		return res
	}
	d, err := recipe.Prepare(ctx, raw)
	if err != nil {
		res.Err = err
		return res
	}
	res.ConcRows, res.BiomassRows, res.Timepoints = len(d.ConcMeasurements), len(d.BiomassMeasurements), len(d.Times)
	p.metrics.SetRows(name, model.TableConc, res.ConcRows)
	p.metrics.SetRows(name, model.TableBiomass, res.BiomassRows)
	p.metrics.SetRows(name, model.TableTimes, res.Timepoints)
	log.Info(ctx, "recipe prepared",
		logger.Int("conc_rows", res.ConcRows),
		logger.Int("biomass_rows", res.BiomassRows),
		logger.Int("timepoints", res.Timepoints),
	)

	if res.Dir, err = p.store.Save(ctx, d); err != nil {
		res.Err = err
		return res
	}
	log.Info(ctx, "prepared data stored", logger.String("dir", res.Dir))

	if p.blobs == nil {
		return res
	}
	prefix := path.Join(name, p.runID)
	infos, err := blob.Publish(ctx, p.blobs, res.Dir, prefix, map[string]string{"recipe": name, "run_id": p.runID})
	for _, info := range infos {
		res.Published = append(res.Published, info.Key)
	}
	p.metrics.RecordPublishedFiles(name, string(p.blobs.Driver()), len(infos))
	if err != nil {
		res.Err = err
		return res
	}
	log.Info(ctx, "prepared data published",
		logger.String("driver", string(p.blobs.Driver())),
		logger.String("prefix", prefix),
		logger.Int("files", len(infos)),
	)
	return res
}
