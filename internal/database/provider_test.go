package database_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/mock/gomock"

	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/config"
	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/database"
	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/database/mocks"
	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/logger"
	"github.com/neo4j-labs/mcp-neo4j-cypher/internal/mcperr"
)

func testConfig() *config.Config {
	return &config.Config{
		URI:              "neo4j://localhost:7687",
		Username:         "neo4j",
		Password:         "password",
		Database:         "neo4j",
		ReadTimeout:      30 * time.Second,
		SchemaSampleSize: 100,
	}
}

func testLogger() *logger.Service {
	return logger.New("error", "text", os.Stderr)
}

func TestProviderAcquire(t *testing.T) {
	ctx := context.Background()

	t.Run("driver is not constructed before first acquire", func(t *testing.T) {
		calls := 0
		factory := func(uri string, auth neo4j.AuthToken) (database.Driver, error) {
			calls++
			return nil, errors.New("should not be called")
		}

		database.NewProviderWithFactory(testConfig(), testLogger(), factory)
		if calls != 0 {
			t.Errorf("expected no factory calls at construction, got %d", calls)
		}
	})

	t.Run("first acquire constructs and verifies, second reuses", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDriver := mocks.NewMockDriver(ctrl)
		mockDriver.EXPECT().VerifyConnectivity(gomock.Any()).Return(nil).Times(1)

		calls := 0
		factory := func(uri string, auth neo4j.AuthToken) (database.Driver, error) {
			calls++
			return mockDriver, nil
		}

		provider := database.NewProviderWithFactory(testConfig(), testLogger(), factory)

		first, err := provider.Acquire(ctx)
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		second, err := provider.Acquire(ctx)
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		if first != second {
			t.Error("expected repeated acquire to return the same handle")
		}
		if calls != 1 {
			t.Errorf("expected exactly one factory call, got %d", calls)
		}
	})

	t.Run("failed construction surfaces ConnectionError", func(t *testing.T) {
		factory := func(uri string, auth neo4j.AuthToken) (database.Driver, error) {
			return nil, errors.New("invalid uri")
		}

		provider := database.NewProviderWithFactory(testConfig(), testLogger(), factory)
		_, err := provider.Acquire(ctx)
		if !mcperr.IsKind(err, mcperr.KindConnection) {
			t.Errorf("expected ConnectionError, got: %v", err)
		}
	})

	t.Run("failed liveness check closes the handle and surfaces ConnectionError", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDriver := mocks.NewMockDriver(ctrl)
		mockDriver.EXPECT().VerifyConnectivity(gomock.Any()).Return(errors.New("unreachable"))
		mockDriver.EXPECT().Close(gomock.Any()).Return(nil)

		factory := func(uri string, auth neo4j.AuthToken) (database.Driver, error) {
			return mockDriver, nil
		}

		provider := database.NewProviderWithFactory(testConfig(), testLogger(), factory)
		_, err := provider.Acquire(ctx)
		if !mcperr.IsKind(err, mcperr.KindConnection) {
			t.Errorf("expected ConnectionError, got: %v", err)
		}
	})

	t.Run("acquire succeeds after backend recovers without process restart", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		broken := mocks.NewMockDriver(ctrl)
		broken.EXPECT().VerifyConnectivity(gomock.Any()).Return(errors.New("unreachable"))
		broken.EXPECT().Close(gomock.Any()).Return(nil)

		healthy := mocks.NewMockDriver(ctrl)
		healthy.EXPECT().VerifyConnectivity(gomock.Any()).Return(nil)

		drivers := []database.Driver{broken, healthy}
		factory := func(uri string, auth neo4j.AuthToken) (database.Driver, error) {
			next := drivers[0]
			drivers = drivers[1:]
			return next, nil
		}

		provider := database.NewProviderWithFactory(testConfig(), testLogger(), factory)

		if _, err := provider.Acquire(ctx); !mcperr.IsKind(err, mcperr.KindConnection) {
			t.Fatalf("expected ConnectionError on first acquire, got: %v", err)
		}

		driver, err := provider.Acquire(ctx)
		if err != nil {
			t.Fatalf("expected second acquire to succeed, got: %v", err)
		}
		if driver != healthy {
			t.Error("expected second acquire to return the fresh handle")
		}
	})

	t.Run("concurrent first callers construct a single handle", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDriver := mocks.NewMockDriver(ctrl)
		mockDriver.EXPECT().VerifyConnectivity(gomock.Any()).Return(nil).Times(1)

		var mu sync.Mutex
		calls := 0
		factory := func(uri string, auth neo4j.AuthToken) (database.Driver, error) {
			mu.Lock()
			calls++
			mu.Unlock()
			return mockDriver, nil
		}

		provider := database.NewProviderWithFactory(testConfig(), testLogger(), factory)

		var wg sync.WaitGroup
		for range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := provider.Acquire(ctx); err != nil {
					t.Errorf("expected no error, got: %v", err)
				}
			}()
		}
		wg.Wait()

		if calls != 1 {
			t.Errorf("expected exactly one factory call, got %d", calls)
		}
	})
}

func TestProviderInvalidate(t *testing.T) {
	ctx := context.Background()

	t.Run("invalidated handle is rebuilt on next acquire", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		first := mocks.NewMockDriver(ctrl)
		first.EXPECT().VerifyConnectivity(gomock.Any()).Return(nil)
		first.EXPECT().Close(gomock.Any()).Return(nil)

		second := mocks.NewMockDriver(ctrl)
		second.EXPECT().VerifyConnectivity(gomock.Any()).Return(nil)

		drivers := []database.Driver{first, second}
		factory := func(uri string, auth neo4j.AuthToken) (database.Driver, error) {
			next := drivers[0]
			drivers = drivers[1:]
			return next, nil
		}

		provider := database.NewProviderWithFactory(testConfig(), testLogger(), factory)

		driver, err := provider.Acquire(ctx)
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		provider.Invalidate(ctx, driver)

		rebuilt, err := provider.Acquire(ctx)
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if rebuilt != second {
			t.Error("expected a fresh handle after invalidation")
		}
	})

	t.Run("invalidating a stale handle does not discard the current one", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		current := mocks.NewMockDriver(ctrl)
		current.EXPECT().VerifyConnectivity(gomock.Any()).Return(nil)

		stale := mocks.NewMockDriver(ctrl)

		factory := func(uri string, auth neo4j.AuthToken) (database.Driver, error) {
			return current, nil
		}

		provider := database.NewProviderWithFactory(testConfig(), testLogger(), factory)
		if _, err := provider.Acquire(ctx); err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}

		provider.Invalidate(ctx, stale)

		driver, err := provider.Acquire(ctx)
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if driver != current {
			t.Error("expected the current handle to survive a stale invalidation")
		}
	})
}

func TestProviderClose(t *testing.T) {
	ctx := context.Background()

	t.Run("close without acquire is a no-op", func(t *testing.T) {
		factory := func(uri string, auth neo4j.AuthToken) (database.Driver, error) {
			t.Fatal("factory should not be called")
			return nil, nil
		}
		provider := database.NewProviderWithFactory(testConfig(), testLogger(), factory)
		if err := provider.Close(ctx); err != nil {
			t.Errorf("expected no error, got: %v", err)
		}
	})

	t.Run("close releases the cached handle", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDriver := mocks.NewMockDriver(ctrl)
		mockDriver.EXPECT().VerifyConnectivity(gomock.Any()).Return(nil)
		mockDriver.EXPECT().Close(gomock.Any()).Return(nil)

		factory := func(uri string, auth neo4j.AuthToken) (database.Driver, error) {
			return mockDriver, nil
		}

		provider := database.NewProviderWithFactory(testConfig(), testLogger(), factory)
		if _, err := provider.Acquire(ctx); err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if err := provider.Close(ctx); err != nil {
			t.Errorf("expected no error, got: %v", err)
		}
	})
}
