//go:build e2e

package e2e

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// TestRedisCacheE2E verifies the real search proxy, backed by the Redis
// result cache, serves a second identical search from cache rather than
// hitting the fake index engine again. Requires a Redis at
// 127.0.0.1:6379; skipped otherwise.
func TestRedisCacheE2E(t *testing.T) {
	rc := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		t.Skipf("Skipping: Redis not reachable on 127.0.0.1:6379: %v", err)
	}

	var hits int
	engine := newCountingIndexEngine(t, &hits)
	defer engine.Close()

	rs := buildAndStartServerWithEnv(t, engine.URL, map[string]string{
		"CACHE_ENABLED":     "true",
		"CACHE_TTL_SECONDS": "30",
	}, "--redis_addr=127.0.0.1:6379")

	client := &http.Client{Timeout: 5 * time.Second}
	body := `{"query":"ข้าวผัดกุ้ง","index":"docs","limit":10}`

	for i := 0; i < 2; i++ {
		resp, err := client.Post(rs.baseURL+"/api/v1/search", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatalf("search request %d: %v", i, err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, resp.StatusCode)
		}
	}

	if hits != 1 {
		t.Fatalf("expected exactly 1 index-engine call (second search served from Redis cache), got %d", hits)
	}
}
