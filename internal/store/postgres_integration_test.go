package store_test

import (
	"context"
	"os"
	"sync"
	"testing"

	"packflow/internal/store"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func setupTestStore(t *testing.T) *store.Postgres {
	t.Helper()
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database. Set TEST_DATABASE_URL in your .env or
	// environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	s, err := store.NewPostgres(ctx, pool)
	if err != nil {
		t.Fatalf("Failed to bootstrap record store: %v", err)
	}
	return s
}

// Two first writers to a brand-new key must both land: the earlier append
// may not be silently dropped by the later one.
func TestPostgres_UpdateConcurrentFirstWrite(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	key := "it_concurrent_" + uuid.NewString()
	defer s.Delete(ctx, key)

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			errs <- store.Mutate(ctx, s, key, func(ids []int) ([]int, error) {
				return append(ids, n), nil
			})
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Mutate failed: %v", err)
		}
	}

	ids, err := store.Load[[]int](ctx, s, key)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(ids) != writers {
		t.Errorf("expected %d appends to survive, got %d: %v", writers, len(ids), ids)
	}
}

// A failing mutation must roll the whole transaction back, including the
// row created for a key that did not exist yet.
func TestPostgres_UpdateAbortLeavesNoRow(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	key := "it_abort_" + uuid.NewString()
	defer s.Delete(ctx, key)

	wantErr := os.ErrInvalid
	err := s.Update(ctx, key, func(current []byte) ([]byte, error) {
		return nil, wantErr
	})
	if err != wantErr {
		t.Fatalf("expected the mutation error back, got %v", err)
	}

	_, ok, err := s.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("aborted first write must not leave a row behind")
	}
}
