package services

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobs-collector/internal/companies"
	"github.com/maxaizer/jobs-collector/internal/config"
	"github.com/maxaizer/jobs-collector/internal/entities"
	"github.com/maxaizer/jobs-collector/internal/events"
	"github.com/maxaizer/jobs-collector/internal/parsing"
	"github.com/maxaizer/jobs-collector/internal/repositories"
	"github.com/maxaizer/jobs-collector/internal/sources"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var collectedAt = time.Date(2024, 10, 15, 9, 0, 0, 0, time.UTC)

type fakeAdapter struct {
	name     string
	postings []entities.RawPosting
	skipped  int
	err      error
	fetch    func(ctx context.Context) error
	calls    int
	mu       sync.Mutex
}

func (f *fakeAdapter) Name() string {
	return f.name
}

func (f *fakeAdapter) Fetch(ctx context.Context) (sources.Result, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.fetch != nil {
		if err := f.fetch(ctx); err != nil {
			return sources.Result{}, err
		}
	}
	if f.err != nil {
		return sources.Result{}, f.err
	}
	return sources.Result{Postings: f.postings, Skipped: f.skipped}, nil
}

type memoryStore struct {
	mu        sync.Mutex
	companies map[string]entities.CompanyIdentity
	postings  map[string]entities.CanonicalJobPosting
	commitErr error
	commits   int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		companies: map[string]entities.CompanyIdentity{},
		postings:  map[string]entities.CanonicalJobPosting{},
	}
}

func (m *memoryStore) LoadCompanies(_ context.Context) ([]entities.CompanyIdentity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []entities.CompanyIdentity
	for _, company := range m.companies {
		company.Aliases = append([]string(nil), company.Aliases...)
		company.Domains = append([]string(nil), company.Domains...)
		result = append(result, company)
	}
	return result, nil
}

func (m *memoryStore) FindPostings(_ context.Context, companyIDs []string,
	since time.Time) ([]entities.CanonicalJobPosting, error) {

	m.mu.Lock()
	defer m.mu.Unlock()
	wanted := map[string]bool{}
	for _, id := range companyIDs {
		wanted[id] = true
	}
	var result []entities.CanonicalJobPosting
	for _, posting := range m.postings {
		if wanted[posting.CompanyID] && !posting.CollectedAt.Before(since) {
			result = append(result, posting)
		}
	}
	return result, nil
}

func (m *memoryStore) Commit(_ context.Context, companies []entities.CompanyIdentity,
	postings []entities.CanonicalJobPosting) error {

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.commitErr != nil {
		return m.commitErr
	}
	m.commits++
	for _, company := range companies {
		m.companies[company.ID] = company
	}
	for _, posting := range postings {
		m.postings[posting.ID] = posting
	}
	return nil
}

func (m *memoryStore) sortedPostings() []entities.CanonicalJobPosting {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []entities.CanonicalJobPosting
	for _, posting := range m.postings {
		result = append(result, posting)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func testPipelineConfig() config.PipelineConfig {
	return config.PipelineConfig{
		MaxConcurrentAdapters: 2,
		AdapterTimeout:        time.Second,
		LookbackDays:          60,
	}
}

func newTestCollector(storage CollectorStorage, bus EventBus.Bus, adapters ...sources.Adapter) *Collector {
	collector := NewCollector(adapters, parsing.NewParser(nil), storage, bus, testPipelineConfig())
	collector.now = func() time.Time { return collectedAt }
	return collector
}

func rawPosting(source, id, title, company, location string) entities.RawPosting {
	return entities.RawPosting{
		Source:     source,
		SourceKind: source,
		SourceID:   id,
		URL:        "https://" + source + ".example/" + id,
		Title:      title,
		Company:    company,
		Location:   location,
		Experience: "경력 3~5년",
		Skills:     []string{"Java", "Spring"},
		FetchedAt:  collectedAt,
	}
}

func Test_Collector_RunCollection_CollapsesCrossSourceDuplicates(t *testing.T) {
	saramin := &fakeAdapter{name: "saramin", postings: []entities.RawPosting{
		rawPosting("saramin", "1", "백엔드 개발자", "(주)쿠팡", "서울 강남구"),
	}}
	wanted := &fakeAdapter{name: "wanted", postings: []entities.RawPosting{
		rawPosting("wanted", "9", "Backend Engineer", "Coupang", "Seoul"),
	}}
	wanted.postings[0].Salary = "연봉 6,000~8,000만원"

	store := newMemoryStore()
	collector := newTestCollector(store, EventBus.New(), saramin, wanted)

	report, err := collector.RunCollection(context.Background())
	require.NoError(t, err)

	assert.Equal(t, entities.StateDone, report.State)
	assert.Equal(t, entities.StateDone, collector.State())
	assert.Equal(t, 1, report.TotalNewPostings)
	assert.Equal(t, 1, report.TotalMergedDuplicates)
	assert.Equal(t, entities.SourceStatus{Count: 1}, report.PerSourceStatus["saramin"])
	assert.Equal(t, collectedAt, report.StartedAt)

	postings := store.sortedPostings()
	require.Len(t, postings, 1)
	posting := postings[0]
	assert.Equal(t, "saramin", posting.Source)
	assert.Equal(t, companies.CompanyID("쿠팡"), posting.CompanyID)
	assert.Equal(t, entities.CategoryBackend, posting.Category)
	assert.Equal(t, []entities.SourceRef{{Source: "wanted", URL: "https://wanted.example/9"}}, posting.AlsoSeenIn)
	require.NotNil(t, posting.Salary)
	assert.Equal(t, int64(60_000_000), *posting.Salary.Min)

	company, ok := store.companies[posting.CompanyID]
	require.True(t, ok)
	assert.Contains(t, company.Aliases, "(주)쿠팡")
}

func Test_Collector_RunCollection_OneAdapterFails_PartiallyFailed(t *testing.T) {
	failing := &fakeAdapter{name: "saramin", err: &sources.AdapterError{
		Source: "saramin", Kind: sources.KindAuth, Message: "invalid access key"}}
	working := &fakeAdapter{name: "jumpit", postings: []entities.RawPosting{
		rawPosting("jumpit", "1", "프론트엔드 개발자", "당근마켓", "서울"),
		rawPosting("jumpit", "2", "iOS 개발자", "토스", "서울"),
	}}

	store := newMemoryStore()
	report, err := newTestCollector(store, EventBus.New(), failing, working).RunCollection(context.Background())
	require.NoError(t, err)

	assert.Equal(t, entities.StatePartiallyFailed, report.State)
	assert.Equal(t, []string{"saramin"}, report.FailedSources())
	assert.Contains(t, report.PerSourceStatus["saramin"].Error, "auth")
	assert.Equal(t, 2, report.PerSourceStatus["jumpit"].Count)
	assert.Equal(t, 2, report.TotalNewPostings)
	assert.Len(t, store.sortedPostings(), 2)
}

func Test_Collector_RunCollection_AllAdaptersFail_HardFailure(t *testing.T) {
	store := newMemoryStore()
	collector := newTestCollector(store, EventBus.New(),
		&fakeAdapter{name: "saramin", err: errors.New("connection refused")},
		&fakeAdapter{name: "wanted", err: &sources.AdapterError{Source: "wanted", Kind: sources.KindSchema}})

	report, err := collector.RunCollection(context.Background())

	assert.Nil(t, report)
	var hardFailure *HardFailure
	require.True(t, errors.As(err, &hardFailure))
	assert.Equal(t, entities.StateFailed, hardFailure.Report.State)
	assert.Equal(t, []string{"saramin", "wanted"}, hardFailure.Report.FailedSources())
	assert.Equal(t, entities.StateFailed, collector.State())
	assert.Zero(t, store.commits)
}

func Test_Collector_RunCollection_SinkFails_HardFailure(t *testing.T) {
	store := newMemoryStore()
	store.commitErr = errors.New("disk full")
	collector := newTestCollector(store, EventBus.New(), &fakeAdapter{name: "jumpit", postings: []entities.RawPosting{
		rawPosting("jumpit", "1", "백엔드 개발자", "당근마켓", "서울"),
	}})

	report, err := collector.RunCollection(context.Background())

	assert.Nil(t, report)
	var hardFailure *HardFailure
	require.True(t, errors.As(err, &hardFailure))
	assert.Equal(t, "failed to commit postings", hardFailure.Reason)
	assert.Empty(t, store.sortedPostings())
	assert.Empty(t, store.companies)
}

func Test_Collector_RunCollection_TimedOutAdapter_IsPartialFailure(t *testing.T) {
	slow := &fakeAdapter{name: "careers", fetch: func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}}
	fast := &fakeAdapter{name: "jumpit", postings: []entities.RawPosting{
		rawPosting("jumpit", "1", "백엔드 개발자", "당근마켓", "서울"),
	}}

	collector := newTestCollector(newMemoryStore(), EventBus.New(), slow, fast)
	collector.cfg.AdapterTimeout = 50 * time.Millisecond

	report, err := collector.RunCollection(context.Background())
	require.NoError(t, err)

	assert.Equal(t, entities.StatePartiallyFailed, report.State)
	assert.Contains(t, report.PerSourceStatus["careers"].Error, string(sources.KindTimeout))
	assert.Equal(t, 1, report.TotalNewPostings)
}

func Test_Collector_RunCollection_CanceledDuringFetch_DiscardsEverything(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	adapter := &fakeAdapter{
		name:     "jumpit",
		postings: []entities.RawPosting{rawPosting("jumpit", "1", "백엔드 개발자", "당근마켓", "서울")},
		fetch: func(context.Context) error {
			cancel()
			return nil
		},
	}

	store := newMemoryStore()
	report, err := newTestCollector(store, EventBus.New(), adapter).RunCollection(ctx)

	assert.Nil(t, report)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Zero(t, store.commits)
}

func Test_Collector_RunCollection_SecondConcurrentRun_Rejected(t *testing.T) {
	started, release := make(chan struct{}), make(chan struct{})
	adapter := &fakeAdapter{name: "jumpit", fetch: func(context.Context) error {
		close(started)
		<-release
		return nil
	}, postings: []entities.RawPosting{rawPosting("jumpit", "1", "백엔드 개발자", "당근마켓", "서울")}}

	collector := newTestCollector(newMemoryStore(), EventBus.New(), adapter)

	done := make(chan error)
	go func() {
		_, err := collector.RunCollection(context.Background())
		done <- err
	}()

	<-started
	_, err := collector.RunCollection(context.Background())
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(release)
	assert.NoError(t, <-done)
	assert.Equal(t, 1, adapter.calls)
}

func Test_Collector_RunCollection_NamedSources(t *testing.T) {
	saramin := &fakeAdapter{name: "saramin"}
	jumpit := &fakeAdapter{name: "jumpit", postings: []entities.RawPosting{
		rawPosting("jumpit", "1", "백엔드 개발자", "당근마켓", "서울"),
	}}

	report, err := newTestCollector(newMemoryStore(), EventBus.New(), saramin, jumpit).
		RunCollection(context.Background(), "jumpit", "linkedin")
	require.NoError(t, err)

	assert.Zero(t, saramin.calls)
	assert.Equal(t, 1, jumpit.calls)
	assert.Equal(t, entities.StatePartiallyFailed, report.State)
	assert.Equal(t, []string{"linkedin"}, report.FailedSources())
	assert.Contains(t, report.PerSourceStatus["linkedin"].Error, string(sources.KindConfig))
}

func Test_Collector_RunCollection_PostingWithoutCompany_IsSkipped(t *testing.T) {
	adapter := &fakeAdapter{name: "rss", skipped: 1, postings: []entities.RawPosting{
		rawPosting("rss", "1", "Backend Engineer", "Acme Robotics", "Remote"),
		rawPosting("rss", "2", "Frontend Engineer", "  ", "Remote"),
	}}

	report, err := newTestCollector(newMemoryStore(), EventBus.New(), adapter).RunCollection(context.Background())
	require.NoError(t, err)

	assert.Equal(t, entities.SourceStatus{Count: 2, Skipped: 2}, report.PerSourceStatus["rss"])
	assert.Equal(t, 1, report.TotalNewPostings)
}

func Test_Collector_RunCollection_Rerun_IsIdempotent(t *testing.T) {
	dbContext, err := repositories.NewDbContext(filepath.Join(t.TempDir(), "postings.db"))
	require.NoError(t, err)
	require.NoError(t, dbContext.Migrate())
	defer dbContext.Close()

	store := repositories.NewStore(dbContext.DB)
	adapters := []sources.Adapter{
		&fakeAdapter{name: "saramin", postings: []entities.RawPosting{
			rawPosting("saramin", "1", "백엔드 개발자", "(주)쿠팡", "서울 강남구"),
			rawPosting("saramin", "2", "데이터 엔지니어", "Acme Analytics", "부산"),
		}},
		&fakeAdapter{name: "wanted", postings: []entities.RawPosting{
			rawPosting("wanted", "9", "Backend Engineer", "Coupang", "Seoul"),
		}},
	}
	collector := newTestCollector(store, EventBus.New(), adapters...)

	first, err := collector.RunCollection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, first.TotalNewPostings)

	companiesAfterFirst, err := repositories.NewCompaniesRepository(dbContext.DB).Count(context.Background())
	require.NoError(t, err)

	collector.now = func() time.Time { return collectedAt.Add(6 * time.Hour) }
	second, err := collector.RunCollection(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second.TotalNewPostings)
	assert.Equal(t, 2, second.TotalUpdatedPostings)

	companiesAfterSecond, err := repositories.NewCompaniesRepository(dbContext.DB).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, companiesAfterFirst, companiesAfterSecond)

	postings, err := repositories.NewPostingsRepository(dbContext.DB).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), postings)

	posting, err := store.FindPostings(context.Background(), []string{companies.CompanyID("쿠팡")}, collectedAt)
	require.NoError(t, err)
	require.Len(t, posting, 1)
	assert.Equal(t, "saramin", posting[0].Source)
	assert.True(t, collectedAt.Equal(posting[0].FirstSeenAt))
	assert.Len(t, posting[0].AlsoSeenIn, 1)
}

type mockMatchReviews struct {
	mock.Mock
}

func (m *mockMatchReviews) Add(ctx context.Context, review entities.MatchReview) error {
	return m.Called(ctx, review).Error(0)
}

type mockRuns struct {
	mock.Mock
}

func (m *mockRuns) Save(ctx context.Context, report entities.RunReport) error {
	return m.Called(ctx, report).Error(0)
}

func Test_Collector_RunCollection_PublishesEvents(t *testing.T) {
	bus := EventBus.New()

	reviews := &mockMatchReviews{}
	reviews.On("Add", mock.Anything, mock.MatchedBy(func(review entities.MatchReview) bool {
		return review.ObservedName == "Yanoljaa" && review.Source == "rss" &&
			review.CompanyName == "야놀자" && !review.Merged && review.Score > 0.8
	})).Return(nil).Once()

	runs := &mockRuns{}
	runs.On("Save", mock.Anything, mock.MatchedBy(func(report entities.RunReport) bool {
		return report.State == entities.StateDone && report.TotalNewPostings == 1
	})).Return(nil).Once()

	_, err := NewEventRecorder(bus, reviews, runs)
	require.NoError(t, err)

	var finished []events.CollectionFinished
	require.NoError(t, bus.Subscribe(events.CollectionFinishedTopic, func(event events.CollectionFinished) {
		finished = append(finished, event)
	}))

	adapter := &fakeAdapter{name: "rss", postings: []entities.RawPosting{
		rawPosting("rss", "1", "Backend Engineer", "Yanoljaa", "서울"),
	}}
	_, err = newTestCollector(newMemoryStore(), bus, adapter).RunCollection(context.Background())
	require.NoError(t, err)

	reviews.AssertExpectations(t)
	runs.AssertExpectations(t)
	require.Len(t, finished, 1)
	assert.Equal(t, entities.StateDone, finished[0].Report.State)
}

func Test_Collector_RunCollection_HardFailure_PublishesNoReview(t *testing.T) {
	bus := EventBus.New()
	reviews, runs := &mockMatchReviews{}, &mockRuns{}
	runs.On("Save", mock.Anything, mock.MatchedBy(func(report entities.RunReport) bool {
		return report.State == entities.StateFailed
	})).Return(nil).Once()

	_, err := NewEventRecorder(bus, reviews, runs)
	require.NoError(t, err)

	store := newMemoryStore()
	store.commitErr = errors.New("locked")
	_, err = newTestCollector(store, bus, &fakeAdapter{name: "rss", postings: []entities.RawPosting{
		rawPosting("rss", "1", "Backend Engineer", "Yanoljaa", "서울"),
	}}).RunCollection(context.Background())
	require.Error(t, err)

	reviews.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	runs.AssertExpectations(t)
}

func Test_HardFailure_Error(t *testing.T) {
	err := &HardFailure{Reason: "failed to commit postings", Err: errors.New("disk full")}
	assert.True(t, strings.HasPrefix(err.Error(), "collection failed: failed to commit postings"))
	assert.EqualError(t, errors.Cause(errors.Wrap(err, "run")), err.Error())
}

func Test_Collector_ZeroPipelineConfig_UsesDefaults(t *testing.T) {
	adapters := []sources.Adapter{
		&fakeAdapter{name: "saramin", postings: []entities.RawPosting{
			rawPosting("saramin", "1", "백엔드 개발자", "당근마켓", "서울"),
		}},
		&fakeAdapter{name: "jumpit", postings: []entities.RawPosting{
			rawPosting("jumpit", "2", "프론트엔드 개발자", "토스", "서울"),
		}},
	}
	collector := NewCollector(adapters, parsing.NewParser(nil), newMemoryStore(), EventBus.New(), config.PipelineConfig{})
	collector.now = func() time.Time { return collectedAt }

	done := make(chan struct{})
	var report *entities.RunReport
	var err error
	go func() {
		report, err = collector.RunCollection(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("collection run did not finish")
	}

	require.NoError(t, err)
	assert.Equal(t, entities.StateDone, report.State)
	assert.Equal(t, 2, report.TotalNewPostings)
	assert.Equal(t, defaultAdapterTimeout, collector.cfg.AdapterTimeout)
	assert.Equal(t, defaultLookbackDays, collector.cfg.LookbackDays)
}

func Test_Collector_CategoryHint_TrustedBySourceKind(t *testing.T) {
	posting := rawPosting("wanted-data", "1", "Engineer", "당근마켓", "서울")
	posting.SourceKind = "wanted"
	posting.CategoryHint = "655"
	store := newMemoryStore()

	_, err := newTestCollector(store, EventBus.New(), &fakeAdapter{
		name:     "wanted-data",
		postings: []entities.RawPosting{posting},
	}).RunCollection(context.Background())
	require.NoError(t, err)

	postings := store.sortedPostings()
	require.Len(t, postings, 1)
	assert.Equal(t, entities.CategoryData, postings[0].Category)
}
