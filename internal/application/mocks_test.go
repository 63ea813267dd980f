package application_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ericfisherdev/rankpanel/internal/application"
	"github.com/ericfisherdev/rankpanel/internal/domain/model"
)

// --- Credential store mock ---

type mockCredentialStore struct {
	mu    sync.Mutex
	creds map[int64]model.Credential
	gets  int
	saves int
}

func newMockCredentialStore() *mockCredentialStore {
	return &mockCredentialStore{creds: make(map[int64]model.Credential)}
}

func (m *mockCredentialStore) Get(_ context.Context, userID int64) (*model.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	cred, ok := m.creds[userID]
	if !ok {
		return nil, nil
	}
	return &cred, nil
}

func (m *mockCredentialStore) SaveTokens(_ context.Context, userID int64, access, refresh string, expiry time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.creds[userID] = model.Credential{
		UserID:       userID,
		AccessToken:  access,
		RefreshToken: refresh,
		Expiry:       expiry,
		UpdatedAt:    time.Now(),
	}
	return nil
}

func (m *mockCredentialStore) UpdateAccessToken(_ context.Context, userID int64, access string, expiry time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	cred := m.creds[userID]
	cred.UserID = userID
	cred.AccessToken = access
	cred.Expiry = expiry
	m.creds[userID] = cred
	return nil
}

func (m *mockCredentialStore) seed(userID int64, access, refresh string, expiry time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds[userID] = model.Credential{UserID: userID, AccessToken: access, RefreshToken: refresh, Expiry: expiry}
}

// --- Token refresher mock ---

type mockRefresher struct {
	mu      sync.Mutex
	calls   int
	access  string
	refresh string // Empty means no rotation: echo the input back.
	expiry  time.Time
	err     error
	delay   time.Duration
}

func (m *mockRefresher) Refresh(_ context.Context, refreshToken string) (string, string, time.Time, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if m.err != nil {
		return "", "", time.Time{}, m.err
	}

	newRefresh := m.refresh
	if newRefresh == "" {
		newRefresh = refreshToken
	}
	return m.access, newRefresh, m.expiry, nil
}

func (m *mockRefresher) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// --- Domain store mock ---

type mockDomainStore struct {
	domains []model.Domain
	listErr error
}

func (m *mockDomainStore) GetByID(_ context.Context, id int64) (*model.Domain, error) {
	for _, d := range m.domains {
		if d.ID == id {
			return &d, nil
		}
	}
	return nil, nil
}

func (m *mockDomainStore) ListByUser(_ context.Context, userID int64) ([]model.Domain, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []model.Domain
	for _, d := range m.domains {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *mockDomainStore) ListAll(_ context.Context) ([]model.Domain, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.domains, nil
}

// --- Keyword store mock ---

type mockKeywordStore struct {
	nextID   int64
	keywords map[string]*model.Keyword // keyed by "domainID/text"
	creates  int
}

func newMockKeywordStore() *mockKeywordStore {
	return &mockKeywordStore{keywords: make(map[string]*model.Keyword)}
}

func (m *mockKeywordStore) GetOrCreate(_ context.Context, domainID, userID int64, text string) (*model.Keyword, error) {
	key := keywordKey(domainID, text)
	if kw, ok := m.keywords[key]; ok {
		return kw, nil
	}
	m.nextID++
	m.creates++
	kw := &model.Keyword{ID: m.nextID, DomainID: domainID, UserID: userID, Text: text}
	m.keywords[key] = kw
	return kw, nil
}

func (m *mockKeywordStore) ListByDomain(_ context.Context, domainID int64) ([]model.Keyword, error) {
	var out []model.Keyword
	for _, kw := range m.keywords {
		if kw.DomainID == domainID {
			out = append(out, *kw)
		}
	}
	return out, nil
}

func keywordKey(domainID int64, text string) string {
	return fmt.Sprintf("%d/%s", domainID, text)
}

// --- History store mock ---

type domainDayWrite struct {
	DomainID int64
	Day      model.Day
	Metrics  model.SearchMetrics
}

type keywordDayWrite struct {
	KeywordID int64
	Day       model.Day
	Metrics   model.SearchMetrics
}

type mockHistoryStore struct {
	domainWrites  []domainDayWrite
	keywordWrites []keywordDayWrite
	domainErr     error
}

func (m *mockHistoryStore) UpsertDomainDay(_ context.Context, domainID int64, day model.Day, metrics model.SearchMetrics) error {
	if m.domainErr != nil {
		return m.domainErr
	}
	m.domainWrites = append(m.domainWrites, domainDayWrite{DomainID: domainID, Day: day, Metrics: metrics})
	return nil
}

func (m *mockHistoryStore) UpsertKeywordDay(_ context.Context, keywordID int64, day model.Day, metrics model.SearchMetrics) error {
	m.keywordWrites = append(m.keywordWrites, keywordDayWrite{KeywordID: keywordID, Day: day, Metrics: metrics})
	return nil
}

func (m *mockHistoryStore) ListDomainHistory(_ context.Context, _ int64, _ int) ([]model.DomainHistory, error) {
	return nil, nil
}

func (m *mockHistoryStore) ListKeywordHistory(_ context.Context, _ int64, _ int) ([]model.KeywordHistory, error) {
	return nil, nil
}

// --- Search analytics client mock ---

type mockAnalyticsClient struct {
	siteMetrics  map[string]model.SearchMetrics
	queryRows    map[string][]model.KeywordMetrics
	siteErr      map[string]error
	siteCalls    int
	queryCalls   int
	lastStart    model.Day
	lastEnd      model.Day
	lastRowLimit int
}

func newMockAnalyticsClient() *mockAnalyticsClient {
	return &mockAnalyticsClient{
		siteMetrics: make(map[string]model.SearchMetrics),
		queryRows:   make(map[string][]model.KeywordMetrics),
		siteErr:     make(map[string]error),
	}
}

func (m *mockAnalyticsClient) FetchSiteMetrics(_ context.Context, _, property string, start, end model.Day) (model.SearchMetrics, error) {
	m.siteCalls++
	m.lastStart, m.lastEnd = start, end
	if err := m.siteErr[property]; err != nil {
		return model.SearchMetrics{}, err
	}
	return m.siteMetrics[property], nil
}

func (m *mockAnalyticsClient) FetchQueryMetrics(_ context.Context, _, property string, _, _ model.Day, limit int) ([]model.KeywordMetrics, error) {
	m.queryCalls++
	m.lastRowLimit = limit
	return m.queryRows[property], nil
}

// --- PageSpeed client and store mocks ---

type mockPageSpeedClient struct {
	mu       sync.Mutex
	metrics  model.PageSpeedMetrics
	raw      []byte
	errByURL map[string]error
	panicURL string
	calls    []string
}

func (m *mockPageSpeedClient) Analyze(_ context.Context, url, _ string) (model.PageSpeedMetrics, []byte, error) {
	m.mu.Lock()
	m.calls = append(m.calls, url)
	m.mu.Unlock()

	if url == m.panicURL {
		panic("malformed audit payload")
	}
	if err := m.errByURL[url]; err != nil {
		return model.PageSpeedMetrics{}, nil, err
	}

	raw := m.raw
	if raw == nil {
		raw = []byte(`{}`)
	}
	return m.metrics, raw, nil
}

func (m *mockPageSpeedClient) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

type mockPageSpeedStore struct {
	mu    sync.Mutex
	snaps []model.PageSpeedHistory
}

func (m *mockPageSpeedStore) UpsertSnapshot(_ context.Context, snap model.PageSpeedHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps = append(m.snaps, snap)
	return nil
}

func (m *mockPageSpeedStore) ListByDomain(_ context.Context, _ int64, _ int) ([]model.PageSpeedHistory, error) {
	return nil, nil
}

// --- Sync run store mock ---

type mockSyncRunStore struct {
	mu       sync.Mutex
	nextID   int64
	begun    []model.SyncRunKind
	finished []model.SyncRun
}

func (m *mockSyncRunStore) Begin(_ context.Context, kind model.SyncRunKind) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.begun = append(m.begun, kind)
	return m.nextID, nil
}

func (m *mockSyncRunStore) Finish(_ context.Context, _ int64, run model.SyncRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finished = append(m.finished, run)
	return nil
}

func (m *mockSyncRunStore) finishedRuns() []model.SyncRun {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.SyncRun(nil), m.finished...)
}

func (m *mockSyncRunStore) Latest(_ context.Context, _ model.SyncRunKind) (*model.SyncRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.finished) == 0 {
		return nil, nil
	}
	run := m.finished[len(m.finished)-1]
	return &run, nil
}

// --- Fake clock ---

// fakeClock hands out manually-fired timer channels so scheduler tests can
// drive warm-up and interval fires without real delays.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	afterCh chan time.Time
	tickCh  chan time.Time
	tickers int
}

func newFakeClock() *fakeClock {
	return &fakeClock{
		now:     time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC),
		afterCh: make(chan time.Time, 1),
		tickCh:  make(chan time.Time, 1),
	}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(time.Duration) <-chan time.Time {
	return c.afterCh
}

func (c *fakeClock) NewTicker(time.Duration) application.Ticker {
	c.mu.Lock()
	c.tickers++
	c.mu.Unlock()
	return fakeTicker{ch: c.tickCh}
}

func (c *fakeClock) tickerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tickers
}

func (c *fakeClock) fireWarmup() { c.afterCh <- c.Now() }
func (c *fakeClock) fireTick()   { c.tickCh <- c.Now() }

type fakeTicker struct{ ch chan time.Time }

func (t fakeTicker) C() <-chan time.Time { return t.ch }
func (t fakeTicker) Stop()               {}
