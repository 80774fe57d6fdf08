//go:build integration

package notifier

import (
	"context"
	"sync"
	"testing"
	"time"

	"budgetbell/internal/database"
	"budgetbell/internal/models"
	"budgetbell/internal/services"
	"budgetbell/internal/testutil"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"gorm.io/gorm"
)

func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("budgetbell"),
		tcpostgres.WithUsername("budgetbell"),
		tcpostgres.WithPassword("budgetbell"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	mgr, err := database.NewManager(&database.Config{
		Driver:        database.DriverPostgres,
		Host:          host,
		Port:          port.Port(),
		User:          "budgetbell",
		Password:      "budgetbell",
		DBName:        "budgetbell",
		SSLMode:       "disable",
		MigrationsDir: "../../migrations",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close() })
	require.NoError(t, mgr.RunMigrations())
	return mgr.DB()
}

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	client, err := database.NewRedis(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client.Client
}

func TestPostgres_ConcurrentRunsNotifyOnce(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	db := startPostgres(t)

	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	clock := newFakeClock(now)

	user := testutil.CreateTestUser(t, db)
	testutil.CreateTestPreferences(t, db, user.ID, nil)
	cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
	testutil.CreateTestBudget(t, db, user.ID, cat.ID, 1000, "2026-03")
	testutil.CreateTestExpense(t, db, user.ID, cat.ID, 850, testutil.Day(2026, 3, 3))
	testutil.CreateTestLoan(t, db, user.ID, testutil.Day(2026, 2, 17))
	expense := testutil.CreateTestRecurringExpense(t, db, user.ID, testutil.Day(2026, 3, 15), 3)
	require.NoError(t, db.Model(expense).Update("auto_create_transaction", true).Error)
	for i := 0; i < 10; i++ {
		testutil.CreateTestSavingsGoal(t, db, user.ID, 10000, 5000)
	}

	newOrchestrator := func() *Orchestrator {
		recorder := services.NewRecurringExpenseService(db)
		return NewOrchestrator(NewStore(db), NewGate(db), NewWriter(db, recorder, clock), clock, nil, Options{Workers: 8})
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			summary, err := newOrchestrator().RunAllChecks(context.Background())
			if assert.NoError(t, err) {
				mu.Lock()
				created += summary.Created
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// budget + loan + auto-paid expense + 10 goal milestones
	assert.Equal(t, 13, created)

	var notifications, marks, txns int64
	db.Model(&models.Notification{}).Where("user_id = ?", user.ID).Count(&notifications)
	db.Model(&models.NotificationMark{}).Where("user_id = ?", user.ID).Count(&marks)
	db.Model(&models.Transaction{}).Where("recurring_expense_id = ?", expense.ID).Count(&txns)
	assert.Equal(t, int64(13), notifications)
	assert.Equal(t, int64(13), marks)
	assert.Equal(t, int64(1), txns, "auto-pay must record exactly one payment")
}

func TestRedisLocker(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	client := startRedis(t)
	ctx := context.Background()
	a := NewRedisLocker(client)
	b := NewRedisLocker(client)

	release, ok, err := a.Acquire(ctx, "budgetbell:test:lock", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = b.Acquire(ctx, "budgetbell:test:lock", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second holder must be refused")

	require.NoError(t, release(ctx))

	releaseB, ok, err := b.Acquire(ctx, "budgetbell:test:lock", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	// A stale release from the first holder must not delete the new lease.
	require.NoError(t, release(ctx))
	exists, err := client.Exists(ctx, "budgetbell:test:lock").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)
	require.NoError(t, releaseB(ctx))
}

func TestTrigger_RedisLockAcrossInstances(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	client := startRedis(t)

	runner := newBlockingRunner()
	first := NewTrigger(runner, SystemClock(), NewRedisLocker(client), nil, TriggerOptions{})
	second := NewTrigger(runner, SystemClock(), NewRedisLocker(client), nil, TriggerOptions{})

	errc := make(chan error, 1)
	go func() {
		_, err := first.RunNow(context.Background())
		errc <- err
	}()
	waitFor(t, runner.started)

	_, err := second.RunNow(context.Background())
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(runner.release)
	require.NoError(t, <-errc)
}
