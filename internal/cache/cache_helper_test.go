package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestHelper(t *testing.T, prefix string) (*CacheHelper, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCacheHelper(client, prefix), mr
}

type cachedSubject struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func TestCacheHelperRoundtrip(t *testing.T) {
	ctx := context.Background()
	helper, _ := newTestHelper(t, "subject:")

	in := cachedSubject{ID: 1, Name: "Mathematics"}
	if err := helper.Set(ctx, "1", in, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var out cachedSubject
	if err := helper.Get(ctx, "1", &out); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if out != in {
		t.Errorf("Get = %+v, want %+v", out, in)
	}
}

func TestCacheHelperGetMiss(t *testing.T) {
	helper, _ := newTestHelper(t, "subject:")

	var out cachedSubject
	if err := helper.Get(context.Background(), "missing", &out); err != ErrCacheNotFound {
		t.Errorf("Get miss = %v, want ErrCacheNotFound", err)
	}
}

func TestCacheHelperKeyPrefix(t *testing.T) {
	ctx := context.Background()
	helper, mr := newTestHelper(t, "quiz:")

	if err := helper.SetString(ctx, "5", "cached", time.Minute); err != nil {
		t.Fatalf("SetString: %v", err)
	}

	if !mr.Exists("quiz:5") {
		t.Errorf("expected the prefixed key quiz:5, keys = %v", mr.Keys())
	}

	got, err := helper.GetString(ctx, "5")
	if err != nil {
		t.Fatalf("GetString: %v", err)
	}
	if got != "cached" {
		t.Errorf("GetString = %q, want cached", got)
	}
}

func TestCacheHelperDelete(t *testing.T) {
	ctx := context.Background()
	helper, _ := newTestHelper(t, "quiz:")

	helper.SetString(ctx, "a", "1", time.Minute)
	helper.SetString(ctx, "b", "2", time.Minute)

	if err := helper.Delete(ctx, "a", "b"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	for _, key := range []string{"a", "b"} {
		exists, err := helper.Exists(ctx, key)
		if err != nil {
			t.Fatalf("Exists(%s): %v", key, err)
		}
		if exists {
			t.Errorf("key %s still cached after delete", key)
		}
	}
}

func TestCacheHelperInvalidatePattern(t *testing.T) {
	ctx := context.Background()
	helper, mr := newTestHelper(t, "subject:")

	helper.SetString(ctx, "list:page1", "a", time.Minute)
	helper.SetString(ctx, "list:page2", "b", time.Minute)
	helper.SetString(ctx, "1", "keep", time.Minute)

	if err := helper.InvalidatePattern(ctx, "list:*"); err != nil {
		t.Fatalf("InvalidatePattern: %v", err)
	}

	if mr.Exists("subject:list:page1") || mr.Exists("subject:list:page2") {
		t.Errorf("list keys survived invalidation, keys = %v", mr.Keys())
	}
	if !mr.Exists("subject:1") {
		t.Error("unrelated key was invalidated")
	}
}

func TestCacheHelperExpiry(t *testing.T) {
	ctx := context.Background()
	helper, mr := newTestHelper(t, "fast:")

	helper.SetString(ctx, "k", "v", time.Minute)
	mr.FastForward(2 * time.Minute)

	if _, err := helper.GetString(ctx, "k"); err != ErrCacheNotFound {
		t.Errorf("GetString after expiry = %v, want ErrCacheNotFound", err)
	}
}

func TestCacheHelperCacheOrExecute(t *testing.T) {
	ctx := context.Background()
	helper, _ := newTestHelper(t, "stats:")

	t.Run("fetches on a miss", func(t *testing.T) {
		calls := 0
		var out cachedSubject
		err := helper.CacheOrExecute(ctx, "summary", &out, time.Minute, func() (interface{}, error) {
			calls++
			return cachedSubject{ID: 2, Name: "Physics"}, nil
		})
		if err != nil {
			t.Fatalf("CacheOrExecute: %v", err)
		}
		if calls != 1 {
			t.Errorf("fetch called %d times, want 1", calls)
		}
		if out.Name != "Physics" {
			t.Errorf("out = %+v", out)
		}
	})

	t.Run("serves a warm key without fetching", func(t *testing.T) {
		if err := helper.Set(ctx, "warm", cachedSubject{ID: 3, Name: "Chemistry"}, time.Minute); err != nil {
			t.Fatalf("Set: %v", err)
		}

		calls := 0
		var out cachedSubject
		err := helper.CacheOrExecute(ctx, "warm", &out, time.Minute, func() (interface{}, error) {
			calls++
			return nil, nil
		})
		if err != nil {
			t.Fatalf("CacheOrExecute: %v", err)
		}
		if calls != 0 {
			t.Errorf("fetch called %d times, want 0", calls)
		}
		if out.Name != "Chemistry" {
			t.Errorf("out = %+v", out)
		}
	})
}

func TestCacheHelperNilClientDegradation(t *testing.T) {
	ctx := context.Background()
	helper := NewCacheHelper(nil, "subject:")

	if err := helper.Set(ctx, "1", "v", time.Minute); err != nil {
		t.Errorf("Set with nil client = %v, want nil", err)
	}
	if err := helper.Delete(ctx, "1"); err != nil {
		t.Errorf("Delete with nil client = %v, want nil", err)
	}
	if err := helper.Get(ctx, "1", new(string)); err != ErrCacheNotAvailable {
		t.Errorf("Get with nil client = %v, want ErrCacheNotAvailable", err)
	}

	// Cache-aside still works, it just always fetches.
	var out string
	err := helper.CacheOrExecute(ctx, "1", &out, time.Minute, func() (interface{}, error) {
		return "fetched", nil
	})
	if err != nil {
		t.Fatalf("CacheOrExecute with nil client: %v", err)
	}
	if out != "fetched" {
		t.Errorf("out = %q, want fetched", out)
	}
}

func TestCacheManager(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	t.Run("health check with a live server", func(t *testing.T) {
		cm := NewCacheManager(client)
		if err := cm.HealthCheck(context.Background()); err != nil {
			t.Errorf("HealthCheck: %v", err)
		}
	})

	t.Run("health check without a client", func(t *testing.T) {
		cm := NewCacheManager(nil)
		if err := cm.HealthCheck(context.Background()); err != ErrCacheNotAvailable {
			t.Errorf("HealthCheck = %v, want ErrCacheNotAvailable", err)
		}
	})

	t.Run("clear all flushes every prefix", func(t *testing.T) {
		ctx := context.Background()
		cm := NewCacheManager(client)
		cm.Subject.SetString(ctx, "1", "a", time.Minute)
		cm.Quiz.SetString(ctx, "2", "b", time.Minute)

		if err := cm.ClearAll(ctx); err != nil {
			t.Fatalf("ClearAll: %v", err)
		}
		if len(mr.Keys()) != 0 {
			t.Errorf("keys after ClearAll = %v", mr.Keys())
		}
	})
}
