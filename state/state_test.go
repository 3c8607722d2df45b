package state

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/sigmaguard/journal"
	"github.com/rustyeddy/sigmaguard/risk"
)

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func prior(d int, smoothed float64) risk.Prior {
	return risk.Prior{Date: day(d), Smoothed: smoothed, Level: 5, Position: 20, Energy: 15, Trap: 4}
}

func TestEntryPushAndBefore(t *testing.T) {
	var e Entry
	e = e.Push(prior(4, 40))
	assert.Nil(t, e.Previous)

	e = e.Push(prior(4, 42))
	assert.Equal(t, 42.0, e.Current.Smoothed)
	assert.Nil(t, e.Previous, "same day replaces")

	e = e.Push(prior(5, 50))
	require.NotNil(t, e.Previous)
	assert.Equal(t, 42.0, e.Previous.Smoothed)

	p, ok := e.Before(day(6))
	require.True(t, ok)
	assert.Equal(t, 50.0, p.Smoothed)

	// re-running day 5 must see day 4
	p, ok = e.Before(day(5))
	require.True(t, ok)
	assert.Equal(t, 42.0, p.Smoothed)

	_, ok = e.Before(day(4))
	assert.False(t, ok)
}

func TestEntryPushBackfillKeepsNewest(t *testing.T) {
	var e Entry
	e = e.Push(prior(10, 60))
	e = e.Push(prior(3, 30))
	assert.Equal(t, 60.0, e.Current.Smoothed)
	require.NotNil(t, e.Previous)
	assert.Equal(t, 30.0, e.Previous.Smoothed)

	p, ok := e.Before(day(11))
	require.True(t, ok)
	assert.Equal(t, 60.0, p.Smoothed)

	e = e.Push(prior(7, 45))
	assert.Equal(t, 60.0, e.Current.Smoothed)
	assert.Equal(t, 45.0, e.Previous.Smoothed)

	e = e.Push(prior(5, 35))
	assert.Equal(t, 45.0, e.Previous.Smoothed, "older than previous is dropped")

	p, ok = e.Before(day(10))
	require.True(t, ok)
	assert.Equal(t, 45.0, p.Smoothed)
}

func storeContract(t *testing.T, s Store) {
	ctx := context.Background()

	_, err := s.Load(ctx, "AAPL", day(10))
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Save(ctx, "AAPL", prior(4, 40)))
	require.NoError(t, s.Save(ctx, "AAPL", prior(5, 50)))
	require.NoError(t, s.Save(ctx, "MSFT", prior(5, 10)))

	p, err := s.Load(ctx, "AAPL", day(6))
	require.NoError(t, err)
	assert.Equal(t, prior(5, 50), p)

	p, err = s.Load(ctx, "AAPL", day(5))
	require.NoError(t, err)
	assert.Equal(t, prior(4, 40), p)

	p, err = s.Load(ctx, "MSFT", day(6))
	require.NoError(t, err)
	assert.Equal(t, 10.0, p.Smoothed)
}

func TestMemoryStore(t *testing.T) {
	m := NewMemory()
	storeContract(t, m)
	assert.Len(t, m.entries, 2)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	s, err := NewSQLite(path)
	require.NoError(t, err)
	storeContract(t, s)
	require.NoError(t, s.Close())

	s, err = NewSQLite(path)
	require.NoError(t, err)
	defer s.Close()
	p, err := s.Load(context.Background(), "AAPL", day(20))
	require.NoError(t, err)
	assert.Equal(t, 50.0, p.Smoothed, "state survives reopen")
}

func TestRedisStoreLoadMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewRedisWithClient(db)

	mock.ExpectGet(KeyPrefix + "AAPL").RedisNil()

	_, err := s.Load(context.Background(), "AAPL", day(10))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStoreSaveAndLoad(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewRedisWithClient(db)
	ctx := context.Background()

	body, err := json.Marshal(Entry{Current: prior(5, 50)})
	require.NoError(t, err)

	mock.ExpectGet(KeyPrefix + "AAPL").RedisNil()
	mock.ExpectSet(KeyPrefix+"AAPL", string(body), 0).SetVal("OK")
	require.NoError(t, s.Save(ctx, "AAPL", prior(5, 50)))

	mock.ExpectGet(KeyPrefix + "AAPL").SetVal(string(body))
	p, err := s.Load(ctx, "AAPL", day(6))
	require.NoError(t, err)
	assert.Equal(t, prior(5, 50), p)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStoreBadBody(t *testing.T) {
	db, mock := redismock.NewClientMock()
	s := NewRedisWithClient(db)

	mock.ExpectGet(KeyPrefix + "AAPL").SetVal("{not json")

	_, err := s.Load(context.Background(), "AAPL", day(6))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestLedgerStore(t *testing.T) {
	ctx := context.Background()
	l, err := journal.NewCSV(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, l.Upsert(ctx, journal.Row{
		AuditDate:      day(4),
		Ticker:         "AAPL",
		RiskScore:      36,
		RiskMultiplier: 0.9,
		RiskLevel:      4,
		ScorePosEMA:    18,
		ScoreEneEMA:    12,
		ScoreTrapEMA:   6,
	}))

	s := NewLedger(l)
	p, err := s.Load(ctx, "AAPL", day(5))
	require.NoError(t, err)
	assert.InDelta(t, 40.0, p.Smoothed, 1e-9)
	assert.Equal(t, 4, p.Level)
	assert.Equal(t, 18.0, p.Position)

	_, err = s.Load(ctx, "AAPL", day(4))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, s.Save(ctx, "AAPL", p))
}

func TestLockerSerialisesKey(t *testing.T) {
	l := NewLocker()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		maxSeen int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("AAPL")
			defer unlock()

			mu.Lock()
			active++
			maxSeen = max(maxSeen, active)
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}
