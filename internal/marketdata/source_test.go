package marketdata

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/chooser/internal/contracts"
	"github.com/wonny/chooser/pkg/config"
	"github.com/wonny/chooser/pkg/database"
	"github.com/wonny/chooser/pkg/logger"
	"github.com/wonny/chooser/pkg/redis"
)

type stubLoader struct {
	calls   int
	markets map[string]*contracts.Market
	err     error
}

func (s *stubLoader) LoadHistory(_ context.Context, code string, _, _ time.Time) (*contracts.Market, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	m, ok := s.markets[code]
	if !ok {
		return &contracts.Market{Name: code, Source: "stub"}, nil
	}
	return m, nil
}

func TestFileListSource(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "AAA.TXT", "20200102 10\n20200103 11\n")
	writeFile(t, dir, "BBB.TXT", "20200102 20\n20200103 21\n")
	list := writeFile(t, dir, "list.txt", "AAA.TXT\nBBB.TXT\n")

	markets, err := NewFileListSource(list).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, markets, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewFileListSource(list).Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDatabaseSource(t *testing.T) {
	from, to := day(2020, 1, 1), day(2020, 12, 31)

	loader := &stubLoader{markets: map[string]*contracts.Market{
		"005930": market("005930", nil, 2, 3),
		"000660": market("000660", nil, 2, 3),
	}}

	src := NewDatabaseSource(loader, []string{"005930", "000660"}, from, to, logger.Nop())
	markets, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, markets, 2)
	assert.Equal(t, "005930", markets[0].Name)
	assert.Equal(t, 2, loader.calls)

	t.Run("no codes", func(t *testing.T) {
		_, err := NewDatabaseSource(loader, nil, from, to, logger.Nop()).Load(context.Background())
		assert.True(t, contracts.IsInputError(err))
	})

	t.Run("empty history", func(t *testing.T) {
		_, err := NewDatabaseSource(loader, []string{"999999"}, from, to, logger.Nop()).Load(context.Background())
		assert.True(t, contracts.IsInputError(err))
	})

	t.Run("loader failure", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := NewDatabaseSource(&stubLoader{err: boom}, []string{"A"}, from, to, logger.Nop()).Load(context.Background())
		assert.ErrorIs(t, err, boom)
	})
}

func TestCachedLoaderDisabledRedis(t *testing.T) {
	ctx := context.Background()
	client, err := redis.New(ctx, &config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)

	inner := &stubLoader{markets: map[string]*contracts.Market{"A": market("A", nil, 2, 3)}}
	cached := NewCachedLoader(inner, redis.NewCache(client, "chooser"), 0, logger.Nop())

	for i := 0; i < 2; i++ {
		m, err := cached.LoadHistory(ctx, "A", day(2020, 1, 1), day(2020, 1, 31))
		require.NoError(t, err)
		assert.Equal(t, 2, m.Len())
	}
	assert.Equal(t, 2, inner.calls, "disabled cache always delegates")
}

func TestCachedLoaderRedis(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	if os.Getenv("REDIS_HOST") == "" {
		t.Skip("REDIS_HOST not set")
	}

	ctx := context.Background()
	cfg := &config.Config{Redis: config.RedisConfig{
		Host:    os.Getenv("REDIS_HOST"),
		Port:    "6379",
		Enabled: true,
	}}
	client, err := redis.New(ctx, cfg)
	require.NoError(t, err)
	defer client.Close()

	cache := redis.NewCache(client, "chooser-test")
	from, to := day(2020, 1, 1), day(2020, 1, 31)
	defer cache.Delete(ctx, redis.MarketHistoryKey("A", from, to))

	inner := &stubLoader{markets: map[string]*contracts.Market{"A": market("A", nil, 2, 3)}}
	cached := NewCachedLoader(inner, cache, time.Minute, logger.Nop())

	first, err := cached.LoadHistory(ctx, "A", from, to)
	require.NoError(t, err)
	second, err := cached.LoadHistory(ctx, "A", from, to)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, first.Closes(), second.Closes())
	assert.True(t, first.LastDate().Equal(second.LastDate()))
}

func TestPriceRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	cfg, err := config.Load()
	require.NoError(t, err)
	if cfg.Database.URL == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.New(ctx, cfg)
	require.NoError(t, err)
	defer db.Close()

	repo := NewPriceRepository(db.Pool)
	from, to := day(2024, 1, 1), day(2024, 12, 31)

	codes, err := repo.ListCodes(ctx, from, to, 100)
	require.NoError(t, err)
	if len(codes) == 0 {
		t.Skip("no price history in database")
	}

	m, err := repo.LoadHistory(ctx, codes[0], from, to)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, m.Len(), 100)
	for i := 1; i < m.Len(); i++ {
		assert.True(t, m.Bars[i].Date.After(m.Bars[i-1].Date))
	}
}
