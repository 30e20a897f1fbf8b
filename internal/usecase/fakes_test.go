package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/user/aura-service/internal/entity"
	"github.com/user/aura-service/internal/repository"
	"github.com/user/aura-service/pkg/utils"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeQueue struct {
	ch chan []byte
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{ch: make(chan []byte, 1024)}
}

func (q *fakeQueue) Push(_ context.Context, payload []byte) error {
	q.ch <- payload
	return nil
}

func (q *fakeQueue) Pop(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case p := <-q.ch:
		return p, nil
	}
}

func (q *fakeQueue) Size(context.Context) (int64, error) {
	return int64(len(q.ch)), nil
}

// drain pops every queued job without blocking.
func (q *fakeQueue) drain(t *testing.T) []entity.Job {
	t.Helper()
	var jobs []entity.Job
	for {
		select {
		case p := <-q.ch:
			job, err := entity.ParseJob(p)
			require.NoError(t, err)
			jobs = append(jobs, job)
		default:
			return jobs
		}
	}
}

type fakeDedup struct {
	mu         sync.Mutex
	clock      *fakeClock
	expires    map[string]time.Time
	acquireErr error
}

func newFakeDedup(clock *fakeClock) *fakeDedup {
	return &fakeDedup{clock: clock, expires: make(map[string]time.Time)}
}

func (d *fakeDedup) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.acquireErr != nil {
		return false, d.acquireErr
	}
	now := d.clock.Now()
	if exp, ok := d.expires[key]; ok && now.Before(exp) {
		return false, nil
	}
	d.expires[key] = now.Add(ttl)
	return true, nil
}

func (d *fakeDedup) Release(_ context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.expires, key)
	return nil
}

type fakeProcessed struct {
	mu  sync.Mutex
	set map[string]struct{}
}

func newFakeProcessed() *fakeProcessed {
	return &fakeProcessed{set: make(map[string]struct{})}
}

func (p *fakeProcessed) MarkProcessed(_ context.Context, url string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.set[url]; ok {
		return false, nil
	}
	p.set[url] = struct{}{}
	return true, nil
}

type fakeFetcher struct {
	mu        sync.Mutex
	responses map[string]*entity.FetchResult
	errs      map[string]error
	calls     map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		responses: make(map[string]*entity.FetchResult),
		errs:      make(map[string]error),
		calls:     make(map[string]int),
	}
}

func (f *fakeFetcher) respond(url string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[url] = &entity.FetchResult{URL: url, StatusCode: status, Body: []byte(body)}
}

func (f *fakeFetcher) fail(url string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[url] = err
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (*entity.FetchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[url]++
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	if res, ok := f.responses[url]; ok {
		return res, nil
	}
	return &entity.FetchResult{URL: url, StatusCode: 404}, nil
}

// fakeStore is an in-memory AuraRepository and DomainAuraRepository that
// keeps ids stable across upserts, like the Postgres tables do.
type fakeStore struct {
	mu           sync.Mutex
	nextDomainID int64
	nextPageID   int64
	domains      map[string]*entity.Domain
	pages        map[entity.PageRef]*entity.Page
	topics       map[int64][]string
	links        map[int64][]entity.Link
	saves        int
	saveErr      error
	findErr      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		domains: make(map[string]*entity.Domain),
		pages:   make(map[entity.PageRef]*entity.Page),
		topics:  make(map[int64][]string),
		links:   make(map[int64][]entity.Link),
	}
}

var (
	_ repository.AuraRepository       = (*fakeStore)(nil)
	_ repository.DomainAuraRepository = (*fakeStore)(nil)
)

func (s *fakeStore) SaveCrawl(_ context.Context, rec *entity.CrawlRecord) (*entity.SavedPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	s.saves++

	d, ok := s.domains[rec.Domain]
	if !ok {
		s.nextDomainID++
		d = &entity.Domain{ID: s.nextDomainID, Name: rec.Domain}
		s.domains[rec.Domain] = d
	}
	d.LastAnalyzed = rec.ScrapedAt

	ref := entity.PageRef{Domain: rec.Domain, PathKey: rec.PathKey}
	p, ok := s.pages[ref]
	if !ok {
		s.nextPageID++
		p = &entity.Page{ID: s.nextPageID, DomainID: d.ID, PathKey: rec.PathKey}
		s.pages[ref] = p
	}
	p.Title = rec.Title
	p.MetaDescription = rec.MetaDescription
	p.ContentMap = rec.ContentMap
	p.Aura = rec.Aura
	p.ScoringVersion = rec.ScoringVersion
	p.LastScraped = rec.ScrapedAt

	s.topics[p.ID] = append([]string(nil), rec.Topics...)
	links := make([]entity.Link, 0, len(rec.Links))
	for _, l := range rec.Links {
		l.SourcePageID = p.ID
		links = append(links, l)
	}
	s.links[p.ID] = links

	return &entity.SavedPage{DomainID: d.ID, PageID: p.ID}, nil
}

func (s *fakeStore) DeletePage(_ context.Context, ref entity.PageRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pages[ref]
	if !ok {
		return nil
	}
	delete(s.topics, p.ID)
	delete(s.links, p.ID)
	delete(s.pages, ref)
	return nil
}

func (s *fakeStore) FindDomain(_ context.Context, name string) (*entity.Domain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	d, ok := s.domains[name]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *fakeStore) FindPage(_ context.Context, domainID int64, pathKey string) (*entity.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.pages {
		if p.DomainID == domainID && p.PathKey == pathKey {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeStore) FindLinks(_ context.Context, pageID int64) ([]entity.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.Link(nil), s.links[pageID]...), nil
}

func (s *fakeStore) FindAuras(_ context.Context, refs []entity.PageRef) (map[entity.PageRef]entity.Aura, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[entity.PageRef]entity.Aura)
	for _, ref := range refs {
		if p, ok := s.pages[ref]; ok {
			out[ref] = p.Aura.Aura()
		}
	}
	return out, nil
}

func (s *fakeStore) ListPageColors(_ context.Context, domainID int64) ([]entity.Color, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var colors []entity.Color
	for _, p := range s.pages {
		if p.DomainID == domainID {
			colors = append(colors, p.Aura.Circle.Color)
		}
	}
	return colors, nil
}

func (s *fakeStore) UpdateDomainAura(_ context.Context, domainID int64, circle entity.Circle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.domains {
		if d.ID == domainID {
			c := circle
			d.OverallAura = &c
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *fakeStore) page(t *testing.T, rawURL string) *entity.Page {
	t.Helper()
	u, ok := utils.ParseHTTPURL(rawURL)
	require.True(t, ok)
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pages[entity.PageRef{Domain: u.Hostname(), PathKey: utils.PathKey(u)}]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

func (s *fakeStore) domain(name string) *entity.Domain {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.domains[name]
	if !ok {
		return nil
	}
	cp := *d
	return &cp
}

func (s *fakeStore) counts(pageID int64) (topics, links int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.topics[pageID]), len(s.links[pageID])
}

func (s *fakeStore) pageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pages)
}

// harness wires the use cases to the fakes.
type harness struct {
	clock     *fakeClock
	queue     *fakeQueue
	dedup     *fakeDedup
	processed *fakeProcessed
	fetcher   *fakeFetcher
	store     *fakeStore
	frontier  Frontier
	crawler   *crawlerUseCase
	coord     *coordinatorUseCase
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := zap.NewNop()
	h := &harness{
		clock:     newFakeClock(),
		queue:     newFakeQueue(),
		processed: newFakeProcessed(),
		fetcher:   newFakeFetcher(),
		store:     newFakeStore(),
	}
	h.dedup = newFakeDedup(h.clock)
	h.frontier = NewFrontier(h.queue, h.dedup, h.processed, 600*time.Second, logger)

	h.crawler = NewCrawlerUseCase(h.frontier, h.fetcher, h.store, NewAggregator(h.store, logger), time.Millisecond, logger).(*crawlerUseCase)
	h.crawler.now = h.clock.Now

	h.coord = NewCoordinator(h.frontier, h.store, 30*24*time.Hour, logger).(*coordinatorUseCase)
	h.coord.now = h.clock.Now
	return h
}
