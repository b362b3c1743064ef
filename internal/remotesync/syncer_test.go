package remotesync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/repository"
	"go-pos-ledger/internal/service"
	"go-pos-ledger/pkg/clock"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu       sync.Mutex
	snaps    map[string]model.Snapshot
	stores   int
	fetchErr error
	// beforeStore runs under the lock ahead of the compare, to simulate a concurrent writer
	beforeStore func(snaps map[string]model.Snapshot)
}

func newFakeStore() *fakeStore {
	return &fakeStore{snaps: make(map[string]model.Snapshot)}
}

func (f *fakeStore) Fetch(_ context.Context, key string) (*model.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	snap, ok := f.snaps[key]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (f *fakeStore) Store(_ context.Context, key string, snap model.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.beforeStore != nil {
		f.beforeStore(f.snaps)
	}
	if current, ok := f.snaps[key]; ok && !snap.NewerThan(&current) {
		return ErrRemoteNewer
	}
	f.snaps[key] = snap
	f.stores++
	return nil
}

func (f *fakeStore) storeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stores
}

var start = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newLedger(t *testing.T) (service.LedgerService, *clock.MockClock) {
	t.Helper()
	clk := clock.NewMockClock(start)
	l := service.NewLedgerService(repository.NewMemoryStateRepo(), clk, time.UTC)
	require.NoError(t, l.Load())
	return l, clk
}

func firstProductID(l service.LedgerService) string {
	return l.ListProducts(service.ProductFilter{})[0].ID
}

func TestPushNow_WritesWhenRemoteMissing(t *testing.T) {
	l, _ := newLedger(t)
	_, err := l.AddProduction(service.AddProductionRequest{ProductID: firstProductID(l), QtyKg: decimal.NewFromInt(2)})
	require.NoError(t, err)

	store := newFakeStore()
	s := NewSyncer(l, store, "shop", time.Millisecond, time.Hour)

	pushed, err := s.PushNow(context.Background())
	require.NoError(t, err)
	assert.True(t, pushed)

	remote, err := store.Fetch(context.Background(), "shop")
	require.NoError(t, err)
	require.NotNil(t, remote)
	assert.True(t, remote.UpdatedAt.Equal(l.Snapshot().UpdatedAt))
	assert.Len(t, remote.Productions, 1)
}

func TestPushNow_SkipsWhenRemoteNotOlder(t *testing.T) {
	l, _ := newLedger(t)
	_, err := l.AddProduction(service.AddProductionRequest{ProductID: firstProductID(l), QtyKg: decimal.NewFromInt(2)})
	require.NoError(t, err)

	store := newFakeStore()
	store.snaps["shop"] = model.Snapshot{UpdatedAt: l.Snapshot().UpdatedAt}
	s := NewSyncer(l, store, "shop", time.Millisecond, time.Hour)

	pushed, err := s.PushNow(context.Background())
	require.NoError(t, err)
	assert.False(t, pushed)
	assert.Zero(t, store.storeCount())
}

func TestPushNow_ConcurrentNewerWriteWins(t *testing.T) {
	l, _ := newLedger(t)
	_, err := l.AddProduction(service.AddProductionRequest{ProductID: firstProductID(l), QtyKg: decimal.NewFromInt(2)})
	require.NoError(t, err)

	other := model.Snapshot{OrderSeq: 9, UpdatedAt: l.Snapshot().UpdatedAt.Add(time.Minute)}
	store := newFakeStore()
	store.beforeStore = func(snaps map[string]model.Snapshot) {
		snaps["shop"] = other
	}
	s := NewSyncer(l, store, "shop", time.Millisecond, time.Hour)

	pushed, err := s.PushNow(context.Background())
	require.NoError(t, err)
	assert.False(t, pushed)

	remote, err := store.Fetch(context.Background(), "shop")
	require.NoError(t, err)
	assert.Equal(t, 9, remote.OrderSeq)
}

func TestPullNow_RejectsInvalidRemote(t *testing.T) {
	l, _ := newLedger(t)
	bad := l.Snapshot()
	bad.Products[0].StockKg = decimal.NewFromInt(-5)
	bad.UpdatedAt = start.Add(time.Hour)

	store := newFakeStore()
	store.snaps["shop"] = bad
	s := NewSyncer(l, store, "shop", time.Millisecond, time.Hour)

	applied, err := s.PullNow(context.Background())
	assert.ErrorIs(t, err, service.ErrValidation)
	assert.False(t, applied)
	assert.True(t, l.ListProducts(service.ProductFilter{})[0].StockKg.IsZero())
}

func TestPullNow_AppliesNewerRemote(t *testing.T) {
	source, clk := newLedger(t)
	clk.Advance(time.Hour)
	_, err := source.AddProduction(service.AddProductionRequest{ProductID: firstProductID(source), QtyKg: decimal.NewFromInt(5)})
	require.NoError(t, err)

	store := newFakeStore()
	require.NoError(t, store.Store(context.Background(), "shop", source.Snapshot()))

	target, _ := newLedger(t)
	s := NewSyncer(target, store, "shop", time.Millisecond, time.Hour)
	target.Subscribe(s)

	applied, err := s.PullNow(context.Background())
	require.NoError(t, err)
	assert.True(t, applied)
	productions, err := target.ListProductions(service.ProductionFilter{})
	require.NoError(t, err)
	assert.Len(t, productions, 1)

	// the applied snapshot must not schedule a push back
	assert.Len(t, s.trigger, 0)

	applied, err = s.PullNow(context.Background())
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestPullNow_NothingStored(t *testing.T) {
	l, _ := newLedger(t)
	s := NewSyncer(l, newFakeStore(), "shop", time.Millisecond, time.Hour)

	applied, err := s.PullNow(context.Background())
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestPullNow_PropagatesFetchError(t *testing.T) {
	l, _ := newLedger(t)
	store := newFakeStore()
	store.fetchErr = errors.New("connection refused")
	s := NewSyncer(l, store, "shop", time.Millisecond, time.Hour)

	_, err := s.PullNow(context.Background())
	assert.Error(t, err)
}

func TestRun_DebouncesPushes(t *testing.T) {
	l, clk := newLedger(t)
	store := newFakeStore()
	s := NewSyncer(l, store, "shop", 50*time.Millisecond, time.Hour)
	l.Subscribe(s)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	id := firstProductID(l)
	for i := 0; i < 3; i++ {
		clk.Advance(time.Second)
		_, err := l.AddProduction(service.AddProductionRequest{ProductID: id, QtyKg: decimal.NewFromInt(1)})
		require.NoError(t, err)
	}

	assert.Eventually(t, func() bool { return store.storeCount() > 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, store.storeCount())

	remote, err := store.Fetch(context.Background(), "shop")
	require.NoError(t, err)
	assert.Len(t, remote.Productions, 3)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("syncer did not stop")
	}
}

func TestNewSyncer_Defaults(t *testing.T) {
	l, _ := newLedger(t)
	s := NewSyncer(l, newFakeStore(), "shop", 0, 0)
	assert.Equal(t, 1500*time.Millisecond, s.debounce)
	assert.Equal(t, 30*time.Second, s.interval)
}
