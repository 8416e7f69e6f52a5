package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"github.com/ichwanardi/portfolio/internal/cache"
	"github.com/ichwanardi/portfolio/internal/database/testutil"
	"github.com/ichwanardi/portfolio/internal/models"
)

var testNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	db       *gorm.DB
	store    *cache.MemoryStore
	accessor *cache.Accessor
	cfg      Config
	logs     *observer.ObservedLogs
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	core, logs := observer.New(zap.WarnLevel)
	store := cache.NewMemoryStore(cache.WithEvictInterval(0))
	t.Cleanup(func() { _ = store.Close() })

	return &testEnv{
		db:       testutil.MustOpenTestDB(t, testutil.WithAutoMigrate()),
		store:    store,
		accessor: cache.NewAccessor(store),
		cfg: Config{
			QueryTimeout:      time.Second,
			InvalidateOnWrite: true,
			Clock:             func() time.Time { return testNow },
			Logger:            zap.New(core),
		},
		logs: logs,
	}
}

func (e *testEnv) cached(t *testing.T, key string) bool {
	t.Helper()
	_, ok, err := e.store.Get(context.Background(), key)
	require.NoError(t, err)
	return ok
}

func (e *testEnv) seedBlog(t *testing.T, blog models.Blog) models.Blog {
	t.Helper()
	require.NoError(t, e.db.Create(&blog).Error)
	return blog
}

func (e *testEnv) seedProject(t *testing.T, project models.Project) models.Project {
	t.Helper()
	require.NoError(t, e.db.Create(&project).Error)
	return project
}

func daysAgo(n int) time.Time {
	return testNow.AddDate(0, 0, -n)
}
