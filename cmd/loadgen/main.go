// search-loadgen is a tiny, dependency-free HTTP load generator for the
// search proxy. It reuses HTTP connections (keep-alive) and supports
// concurrency so demo runs finish quickly without relying on external
// tools.
//
// Modes:
//   - single: send N requests, all with the same query
//   - rotate: round-robin over a small built-in set of Thai/English/mixed
//     sample queries, to exercise every query-variant code path
//
// Usage examples:
//
//	search-loadgen -base=http://127.0.0.1:8080 -mode=single -query=ข้าวผัดกุ้ง -n=5000 -c=16
//	search-loadgen -base=http://127.0.0.1:8080 -mode=rotate -n=8000 -c=16
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type modeType string

const (
	modeSingle modeType = "single"
	modeRotate modeType = "rotate"
)

// sampleQueries rotates across pure-Thai, pure-English, and mixed queries so
// a loadgen run in rotate mode exercises every variant-generation branch.
var sampleQueries = []string{
	"สาหร่ายวากาเมะ",
	"ข้าวผัดกุ้ง",
	"ต้มยำกุ้ง",
	"iPhone 15 Pro",
	"ร้านกาแฟ Starbucks",
	"โรงแรม 5 ดาว กรุงเทพ",
}

func main() {
	var (
		base    = flag.String("base", "http://127.0.0.1:8080", "Base URL including scheme and host")
		path    = flag.String("path", "/api/v1/search", "Request path")
		index   = flag.String("index", "default", "Index name to search")
		modeS   = flag.String("mode", string(modeSingle), "Mode: single|rotate")
		query   = flag.String("query", "ข้าวผัดกุ้ง", "Query text for single mode")
		apiKey  = flag.String("api_key", "", "If non-empty, sent as X-API-Key")
		n       = flag.Int("n", 5000, "Total requests to send")
		conc    = flag.Int("c", 8, "Number of concurrent workers")
		timeout = flag.Duration("timeout", 30*time.Second, "Overall timeout for the loadgen run")
		maxIdle = flag.Int("max_idle_per_host", 256, "Max idle connections per host")
	)
	flag.Parse()

	m := modeType(strings.ToLower(*modeS))
	if m != modeSingle && m != modeRotate {
		fmt.Fprintf(os.Stderr, "unknown -mode=%s (want single|rotate)\n", *modeS)
		os.Exit(2)
	}
	if *n <= 0 || *conc <= 0 {
		fmt.Fprintln(os.Stderr, "-n and -c must be > 0")
		os.Exit(2)
	}

	fullURL := strings.TrimRight(*base, "/") + *path

	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        *maxIdle * 2,
		MaxIdleConnsPerHost: *maxIdle,
		IdleConnTimeout:     30 * time.Second,
	}
	client := &http.Client{Transport: tr, Timeout: 10 * time.Second}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	var done, errs int64

	worker := func(id, count int) {
		defer atomic.AddInt64(&done, int64(count))
		for i := 0; i < count; i++ {
			select {
			case <-ctx.Done():
				return
			default:
			}
			q := *query
			if m == modeRotate {
				q = sampleQueries[(i+id)%len(sampleQueries)]
			}
			body, _ := json.Marshal(map[string]any{"query": q, "index": *index, "limit": 10})
			req, _ := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			if *apiKey != "" {
				req.Header.Set("X-API-Key", *apiKey)
			}
			resp, err := client.Do(req)
			if err != nil {
				atomic.AddInt64(&errs, 1)
				time.Sleep(200 * time.Microsecond)
				continue
			}
			if resp.StatusCode >= 400 {
				atomic.AddInt64(&errs, 1)
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}
	}

	per := *n / *conc
	rem := *n - per**conc
	var wg sync.WaitGroup
	wg.Add(*conc)
	for w := 0; w < *conc; w++ {
		count := per
		if w == *conc-1 {
			count += rem
		}
		go func(id, cnt int) {
			defer wg.Done()
			worker(id, cnt)
		}(w, count)
	}
	wg.Wait()

	elapsed := time.Since(start)
	if elapsed <= 0 {
		elapsed = time.Millisecond
	}
	ops := float64(*n) / elapsed.Seconds()
	fmt.Printf("LoadGen: mode=%s n=%d c=%d go=%d errors=%d duration=%s throughput=%.0f req/s\n",
		m, *n, *conc, runtime.GOMAXPROCS(0), errs, elapsed.Truncate(time.Millisecond), ops)
}
