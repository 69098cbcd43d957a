package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobs-collector/internal/classifier"
	"github.com/maxaizer/jobs-collector/internal/companies"
	"github.com/maxaizer/jobs-collector/internal/config"
	"github.com/maxaizer/jobs-collector/internal/dedup"
	"github.com/maxaizer/jobs-collector/internal/entities"
	"github.com/maxaizer/jobs-collector/internal/events"
	"github.com/maxaizer/jobs-collector/internal/logger"
	"github.com/maxaizer/jobs-collector/internal/metrics"
	"github.com/maxaizer/jobs-collector/internal/parsing"
	"github.com/maxaizer/jobs-collector/internal/sources"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var ErrRunInProgress = errors.New("collection run already in progress")

var errUnknownSource = errors.New("source is not configured or disabled")

const (
	defaultMaxConcurrentAdapters = 4
	defaultAdapterTimeout        = 2 * time.Minute
	defaultLookbackDays          = 60
)

// HardFailure aborts a run without writing anything. Report holds what was
// known when the run stopped.
type HardFailure struct {
	Reason string
	Err    error
	Report entities.RunReport
}

func (e *HardFailure) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("collection failed: %s: %v", e.Reason, e.Err)
	}
	return "collection failed: " + e.Reason
}

func (e *HardFailure) Unwrap() error {
	return e.Err
}

type CollectorStorage interface {
	LoadCompanies(ctx context.Context) ([]entities.CompanyIdentity, error)
	FindPostings(ctx context.Context, companyIDs []string, since time.Time) ([]entities.CanonicalJobPosting, error)
	Commit(ctx context.Context, companies []entities.CompanyIdentity, postings []entities.CanonicalJobPosting) error
}

// Collector runs the collection pipeline: fetch, process, merge, commit.
// At most one run is in flight at a time.
type Collector struct {
	adapters     []sources.Adapter
	parser       *parsing.Parser
	storage      CollectorStorage
	bus          EventBus.Bus
	cfg          config.PipelineConfig
	deduplicator *dedup.Deduplicator
	seeds        []entities.CompanyIdentity
	now          func() time.Time

	runMu   sync.Mutex
	stateMu sync.RWMutex
	state   entities.RunState
}

func NewCollector(adapters []sources.Adapter, parser *parsing.Parser, storage CollectorStorage,
	bus EventBus.Bus, cfg config.PipelineConfig) *Collector {

	priority := lo.Map(adapters, func(adapter sources.Adapter, _ int) string { return adapter.Name() })

	return &Collector{
		adapters:     adapters,
		parser:       parser,
		storage:      storage,
		bus:          bus,
		cfg:          withDefaults(cfg),
		deduplicator: dedup.NewDeduplicator(priority),
		seeds:        companies.DefaultSeeds(),
		now:          time.Now,
		state:        entities.StateIdle,
	}
}

func withDefaults(cfg config.PipelineConfig) config.PipelineConfig {
	if cfg.MaxConcurrentAdapters <= 0 {
		cfg.MaxConcurrentAdapters = defaultMaxConcurrentAdapters
	}
	if cfg.AdapterTimeout <= 0 {
		cfg.AdapterTimeout = defaultAdapterTimeout
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = defaultLookbackDays
	}
	return cfg
}

func (c *Collector) State() entities.RunState {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

func (c *Collector) setState(state entities.RunState) {
	c.stateMu.Lock()
	c.state = state
	c.stateMu.Unlock()
	log.Debugf("collection run state: %s", state)
}

type fetchResult struct {
	source string
	result sources.Result
	err    *sources.AdapterError
}

type ambiguousMatch struct {
	source     string
	observed   string
	resolution companies.Resolution
}

type run struct {
	report    entities.RunReport
	records   []dedup.Record
	ambiguous []ambiguousMatch
}

// RunCollection runs the named sources, or every configured source when none
// are named. It returns ErrRunInProgress when another run holds the lock and a
// *HardFailure when every source failed or the sink could not be used.
func (c *Collector) RunCollection(ctx context.Context, sourceNames ...string) (*entities.RunReport, error) {
	if !c.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer c.runMu.Unlock()

	r := &run{report: entities.RunReport{
		StartedAt:       c.now().UTC(),
		PerSourceStatus: map[string]entities.SourceStatus{},
	}}
	log.Infof("collection run started at %v", r.report.StartedAt)

	report, err := c.execute(ctx, r, sourceNames)
	if err != nil {
		r.report.FinishedAt = c.now().UTC()
		r.report.State = entities.StateFailed
		c.setState(entities.StateFailed)
		c.finish(r.report)

		var hardFailure *HardFailure
		if errors.As(err, &hardFailure) {
			hardFailure.Report = r.report
		}
		return nil, err
	}

	c.finish(*report)
	return report, nil
}

func (c *Collector) execute(ctx context.Context, r *run, sourceNames []string) (*entities.RunReport, error) {
	c.setState(entities.StateFetching)
	start := time.Now()

	selected := c.selectAdapters(r, sourceNames)
	results := c.fetchAll(ctx, selected)
	metrics.StageDuration.WithLabelValues("fetching").Observe(time.Since(start).Seconds())

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "collection canceled, fetched postings discarded")
	}

	succeeded := c.collectStatuses(r, results)
	if succeeded == 0 {
		return nil, &HardFailure{Reason: "all sources failed"}
	}

	c.setState(entities.StateProcessing)
	start = time.Now()

	stored, err := c.storage.LoadCompanies(ctx)
	if err != nil {
		return nil, c.sinkFailure(ctx, "failed to load companies", err)
	}

	registry := companies.NewRegistry()
	registry.Load(stored...)
	registry.Seed(c.seeds...)
	matcher := companies.NewMatcher(registry)

	for _, result := range results {
		if result.err == nil {
			c.process(r, matcher, result)
		}
	}
	metrics.StageDuration.WithLabelValues("processing").Observe(time.Since(start).Seconds())

	c.setState(entities.StateMerging)
	start = time.Now()

	collectedAt := r.report.StartedAt
	companyIDs := lo.Uniq(lo.Map(r.records, func(record dedup.Record, _ int) string { return record.CompanyID }))
	sort.Strings(companyIDs)

	existing, err := c.storage.FindPostings(ctx, companyIDs, collectedAt.AddDate(0, 0, -c.cfg.LookbackDays))
	if err != nil {
		return nil, c.sinkFailure(ctx, "failed to load stored postings", err)
	}

	outcome := c.deduplicator.Deduplicate(r.records, existing, collectedAt)
	metrics.StageDuration.WithLabelValues("merging").Observe(time.Since(start).Seconds())

	if err = ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "collection canceled before commit")
	}

	start = time.Now()
	if err = c.storage.Commit(ctx, matcher.Dirty(), outcome.Postings); err != nil {
		return nil, c.sinkFailure(ctx, "failed to commit postings", err)
	}
	metrics.StageDuration.WithLabelValues("commit").Observe(time.Since(start).Seconds())

	c.publishAmbiguous(r.ambiguous)

	r.report.TotalNewPostings = outcome.New
	r.report.TotalUpdatedPostings = outcome.Updated
	r.report.TotalMergedDuplicates = outcome.Merged
	r.report.FinishedAt = c.now().UTC()

	r.report.State = entities.StateDone
	if len(r.report.FailedSources()) > 0 {
		r.report.State = entities.StatePartiallyFailed
	}
	c.setState(r.report.State)

	return &r.report, nil
}

func (c *Collector) selectAdapters(r *run, sourceNames []string) []sources.Adapter {
	if len(sourceNames) == 0 {
		return c.adapters
	}

	wanted := lo.SliceToMap(sourceNames, func(name string) (string, bool) { return name, true })
	selected := lo.Filter(c.adapters, func(adapter sources.Adapter, _ int) bool { return wanted[adapter.Name()] })

	for _, name := range lo.Uniq(sourceNames) {
		if !lo.ContainsBy(selected, func(adapter sources.Adapter) bool { return adapter.Name() == name }) {
			adapterErr := sources.AsConfigError(name, errUnknownSource)
			r.report.PerSourceStatus[name] = entities.SourceStatus{Error: adapterErr.Error()}
			metrics.AdapterErrorsCounter.WithLabelValues(name, string(adapterErr.Kind)).Inc()
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeConfig).Errorf("skipping source: %v", adapterErr)
		}
	}
	return selected
}

// fetchAll runs the adapters concurrently. A failed adapter never cancels the others.
func (c *Collector) fetchAll(ctx context.Context, adapters []sources.Adapter) []fetchResult {
	results := make([]fetchResult, len(adapters))

	var group errgroup.Group
	group.SetLimit(c.cfg.MaxConcurrentAdapters)

	for i, adapter := range adapters {
		group.Go(func() error {
			results[i] = c.fetch(ctx, adapter)
			return nil
		})
	}
	_ = group.Wait()

	return results
}

func (c *Collector) fetch(ctx context.Context, adapter sources.Adapter) fetchResult {
	fetchCtx, cancel := context.WithTimeout(ctx, c.cfg.AdapterTimeout)
	defer cancel()

	start := time.Now()
	result, err := adapter.Fetch(fetchCtx)
	if err != nil {
		return fetchResult{source: adapter.Name(), err: sources.AsAdapterError(adapter.Name(), err)}
	}

	log.Infof("fetched %d postings from %s in %v, skipped %d", len(result.Postings), adapter.Name(),
		time.Since(start), result.Skipped)
	return fetchResult{source: adapter.Name(), result: result}
}

func (c *Collector) collectStatuses(r *run, results []fetchResult) int {
	succeeded := 0
	for _, result := range results {
		if result.err != nil {
			r.report.PerSourceStatus[result.source] = entities.SourceStatus{Error: result.err.Error()}
			metrics.AdapterErrorsCounter.WithLabelValues(result.source, string(result.err.Kind)).Inc()
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeAdapter).Errorf("source failed: %v", result.err)
			continue
		}

		succeeded++
		r.report.PerSourceStatus[result.source] = entities.SourceStatus{
			Count:   len(result.result.Postings),
			Skipped: result.result.Skipped,
		}
		metrics.FetchedPostingsCounter.WithLabelValues(result.source).Add(float64(len(result.result.Postings)))
	}
	return succeeded
}

func (c *Collector) process(r *run, matcher *companies.Matcher, result fetchResult) {
	status := r.report.PerSourceStatus[result.source]

	for _, raw := range result.result.Postings {
		resolution, err := matcher.Resolve(raw.Company, raw.CompanyDomain)
		if err != nil {
			status.Skipped++
			log.Debugf("skipping posting %s from %s: %v", raw.URL, raw.Source, err)
			continue
		}

		if resolution.Ambiguous {
			r.ambiguous = append(r.ambiguous, ambiguousMatch{
				source:     raw.Source,
				observed:   raw.Company,
				resolution: resolution,
			})
			log.WithFields(log.Fields{
				"observed":  raw.Company,
				"candidate": candidateOf(resolution).Name,
				"score":     fmt.Sprintf("%.3f", resolution.Score),
				"merged":    !resolution.Created,
			}).Warn("ambiguous company match")
		}

		fields := c.parser.Parse(raw)
		r.records = append(r.records, dedup.Record{
			Raw:       raw,
			Fields:    fields,
			Category:  classifier.Classify(raw.Title, fields.Skills, raw.SourceKind, raw.CategoryHint),
			CompanyID: resolution.Company.ID,
		})
	}

	r.report.PerSourceStatus[result.source] = status
	metrics.SkippedItemsCounter.WithLabelValues(result.source).Add(float64(status.Skipped))
}

func (c *Collector) sinkFailure(ctx context.Context, reason string, err error) error {
	if ctx.Err() != nil {
		return errors.Wrap(ctx.Err(), "collection canceled")
	}
	log.WithField(logger.ErrorTypeField, logger.ErrorTypeSink).Errorf("%s: %v", reason, err)
	return &HardFailure{Reason: reason, Err: err}
}

func (c *Collector) publishAmbiguous(matches []ambiguousMatch) {
	for _, match := range matches {
		metrics.AmbiguousMatchesCounter.Inc()
		c.bus.Publish(events.CompanyMatchAmbiguousTopic, events.CompanyMatchAmbiguous{
			ObservedName: match.observed,
			Source:       match.source,
			Candidate:    candidateOf(match.resolution),
			Score:        match.resolution.Score,
			Merged:       !match.resolution.Created,
		})
	}
}

func (c *Collector) finish(report entities.RunReport) {
	metrics.RunsCounter.WithLabelValues(string(report.State)).Inc()
	metrics.RunDuration.Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())
	metrics.CanonicalPostingsCounter.WithLabelValues("new").Add(float64(report.TotalNewPostings))
	metrics.CanonicalPostingsCounter.WithLabelValues("updated").Add(float64(report.TotalUpdatedPostings))
	metrics.CanonicalPostingsCounter.WithLabelValues("merged").Add(float64(report.TotalMergedDuplicates))

	log.WithFields(log.Fields{
		"state":   report.State,
		"new":     report.TotalNewPostings,
		"updated": report.TotalUpdatedPostings,
		"merged":  report.TotalMergedDuplicates,
		"failed":  report.FailedSources(),
	}).Infof("collection run finished after %v", report.FinishedAt.Sub(report.StartedAt))

	c.bus.Publish(events.CollectionFinishedTopic, events.CollectionFinished{Report: report})
}

func candidateOf(resolution companies.Resolution) entities.CompanyIdentity {
	if resolution.Candidate != nil {
		return *resolution.Candidate
	}
	return resolution.Company
}
