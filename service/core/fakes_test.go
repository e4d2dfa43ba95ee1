package core

import (
	"context"
	"sync"
	"time"

	"github.com/guregu/null/v6"

	ex "github.com/Dreamtreeme/asset-guardian/data/extensions"
	dm "github.com/Dreamtreeme/asset-guardian/data/models"
	r "github.com/Dreamtreeme/asset-guardian/data/repos"
	"github.com/Dreamtreeme/asset-guardian/service/api"
	sm "github.com/Dreamtreeme/asset-guardian/service/models"
)

// in-memory stand-ins for the repository roles, enough to run the full
// analyze path deterministically without a database

type fakeAssetStore struct {
	mu     sync.Mutex
	nextId int32
	byName map[string]*dm.Asset
}

func newFakeAssetStore() *fakeAssetStore {
	return &fakeAssetStore{byName: make(map[string]*dm.Asset)}
}

func (s *fakeAssetStore) EnsureAsset(_ context.Context, displayName, exchange, currency string) (*dm.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if asset, ok := s.byName[displayName]; ok {
		copied := *asset
		return &copied, nil
	}

	s.nextId++
	asset := &dm.Asset{
		Id:          s.nextId,
		DisplayName: displayName,
		Exchange:    null.NewString(exchange, exchange != ""),
		Currency:    currency,
		UpdatedAt:   time.Now(),
	}
	s.byName[displayName] = asset
	copied := *asset
	return &copied, nil
}

func (s *fakeAssetStore) GetAssetByTicker(_ context.Context, ticker string) (*dm.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, asset := range s.byName {
		if asset.Ticker.Valid && asset.Ticker.String == ticker {
			copied := *asset
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeAssetStore) AttachTicker(_ context.Context, assetId int32, ticker string, exchange, isin null.String) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, asset := range s.byName {
		if asset.Id != assetId {
			continue
		}
		if !asset.Ticker.Valid {
			asset.Ticker = null.StringFrom(ticker)
		}
		if !asset.Exchange.Valid {
			asset.Exchange = exchange
		}
		if !asset.ISIN.Valid {
			asset.ISIN = isin
		}
	}
	return nil
}

type fakeSeriesRepo struct {
	mu         sync.Mutex
	bars       map[int32][]*dm.PriceBar
	financials map[int32]*dm.FinancialHistory
	failWith   error
	priceCalls int
}

func newFakeSeriesRepo() *fakeSeriesRepo {
	return &fakeSeriesRepo{
		bars:       make(map[int32][]*dm.PriceBar),
		financials: make(map[int32]*dm.FinancialHistory),
	}
}

func (s *fakeSeriesRepo) GetDailyPrices(_ context.Context, assetId int32, from, to time.Time) ([]*dm.PriceBar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.priceCalls++
	if s.failWith != nil {
		return nil, s.failWith
	}

	return ex.FilterMultiplePtr(s.bars[assetId], func(bar *dm.PriceBar) bool {
		return !bar.Date.Before(from) && !bar.Date.After(to)
	}), nil
}

func (s *fakeSeriesRepo) GetFinancialHistory(_ context.Context, assetId int32) (*dm.FinancialHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWith != nil {
		return nil, s.failWith
	}
	if fin, ok := s.financials[assetId]; ok {
		return fin, nil
	}
	return &dm.FinancialHistory{}, nil
}

type fakeResolutionLog struct {
	mu       sync.Mutex
	nextId   int64
	attempts []*dm.ResolutionAttempt
}

func (l *fakeResolutionLog) AppendResolutionAttempt(_ context.Context, attempt *dm.ResolutionAttempt) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextId++
	attempt.Id = l.nextId
	attempt.CreatedAt = time.Now()
	l.attempts = append(l.attempts, attempt)
	return nil
}

func (l *fakeResolutionLog) GetRecentResolutionFailure(_ context.Context, name string, since time.Time) (*dm.ResolutionAttempt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := len(l.attempts) - 1; i >= 0; i-- {
		a := l.attempts[i]
		if a.Name == name && a.Status == dm.ResolutionFailed && !a.CreatedAt.Before(since) {
			return a, nil
		}
	}
	return nil, nil
}

type fakeBundleStore struct {
	mu      sync.Mutex
	nextId  int64
	entries []*dm.CachedBundle
	puts    int
}

func (s *fakeBundleStore) GetCachedBundle(_ context.Context, symbol string, asOfDate, notBefore time.Time) (*dm.CachedBundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if e.Symbol == symbol && e.AsOfDate.Equal(asOfDate) && !e.CreatedAt.Before(notBefore) {
			return e, nil
		}
	}
	return nil, nil
}

func (s *fakeBundleStore) PutCachedBundle(_ context.Context, entry *dm.CachedBundle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextId++
	s.puts++
	entry.Id = s.nextId
	entry.CreatedAt = time.Now()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *fakeBundleStore) PurgeExpiredBundles(_ context.Context, olderThan time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	var purged int64
	for _, e := range s.entries {
		if e.CreatedAt.Before(olderThan) {
			purged++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	return purged, nil
}

type fakeSearch struct {
	mu     sync.Mutex
	quotes []api.Quote
	calls  int
}

func (s *fakeSearch) SearchQuotes(_ context.Context, _ string) ([]api.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.quotes, nil
}

func (s *fakeSearch) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type testHarness struct {
	sc      *ServiceContext
	assets  *fakeAssetStore
	series  *fakeSeriesRepo
	log     *fakeResolutionLog
	bundles *fakeBundleStore
	search  *fakeSearch
}

func newTestHarness() *testHarness {
	cfg := sm.DefaultConfig()
	cfg.Resolver.PreferredExchanges = []string{"NYQ"}

	h := &testHarness{
		assets:  newFakeAssetStore(),
		series:  newFakeSeriesRepo(),
		log:     &fakeResolutionLog{},
		bundles: &fakeBundleStore{},
		search:  &fakeSearch{},
	}

	h.sc = &ServiceContext{
		Context: context.Background(),
		Config:  cfg,
		Assets:  h.assets,
		Series:  h.series,
		Log:     h.log,
		Search:  h.search,
		Retry: &r.RetryPolicy{
			Attempts: 2,
			Backoff:  time.Millisecond,
			Timeout:  time.Second,
		},
		Cache: NewResultCache(h.bundles, cfg.CacheTTL()),
	}

	return h
}

// seedResolvedAsset creates an asset with a ticker already attached and
// returns its canonical record.
func (h *testHarness) seedResolvedAsset(name, ticker string, shares float64) *dm.Asset {
	if _, err := h.assets.EnsureAsset(context.Background(), name, "", "USD"); err != nil {
		panic(err)
	}

	h.assets.mu.Lock()
	stored := h.assets.byName[name]
	stored.Ticker = null.StringFrom(ticker)
	if shares > 0 {
		stored.SharesOutstanding = null.FloatFrom(shares)
	}
	copied := *stored
	h.assets.mu.Unlock()
	return &copied
}

// genBars builds a consecutive daily close series starting at startPrice and
// moving by step per bar, ending on endDate.
func genBars(assetId int32, n int, startPrice, step float64, endDate time.Time) []*dm.PriceBar {
	bars := make([]*dm.PriceBar, n)
	for i := 0; i < n; i++ {
		bars[i] = &dm.PriceBar{
			AssetId: assetId,
			Date:    endDate.AddDate(0, 0, i-n+1),
			Close:   startPrice + step*float64(i),
			Source:  "test",
		}
	}
	return bars
}
