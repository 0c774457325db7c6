// Command authgate-loadtest hammers Authenticate with concurrent workers
// against a Redis-backed user store and reports throughput and latency
// percentiles. Without -redis-addr (or REDIS_ADDR) it runs fully
// self-contained on miniredis.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/authgate/authgate"
	"github.com/authgate/authgate/stores"
	"github.com/authgate/authgate/token"
)

type staticRequest struct {
	header string
}

func (r staticRequest) Cookie(string) (string, bool) { return "", false }
func (r staticRequest) Header(string) string         { return r.header }

func main() {
	var (
		users       = flag.Int("users", 10000, "number of users to seed")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "total authenticate operations")
		invalidPct  = flag.Int("invalid-pct", 10, "percentage of requests with a forged token")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "agu", "user record key prefix")
	)
	flag.Parse()

	if *users <= 0 || *concurrency <= 0 || *ops <= 0 || *invalidPct < 0 || *invalidPct > 100 {
		fmt.Fprintln(os.Stderr, "users, concurrency, and ops must be > 0; invalid-pct in [0,100]")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	secret := []byte("loadtest-secret")
	store := stores.NewRedis(client, *prefix)

	// ---------- seed ----------
	seedStart := time.Now()
	for i := 0; i < *users; i++ {
		id := int64(i + 1)
		err := store.Save(ctx, authgate.Identity{
			ID:   id,
			Name: fmt.Sprintf("user-%d", id),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "seed failed at user %d: %v\n", id, err)
			os.Exit(1)
		}
	}
	fmt.Printf("seeded %d users in %s\n", *users, time.Since(seedStart).Round(time.Millisecond))

	// ---------- tokens ----------
	tm, err := token.NewManager(token.Config{
		SigningMethod: token.MethodHS256,
		Secret:        secret,
		AccessTTL:     time.Hour,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "token manager: %v\n", err)
		os.Exit(1)
	}
	forger, err := token.NewManager(token.Config{
		SigningMethod: token.MethodHS256,
		Secret:        []byte("wrong-secret"),
		AccessTTL:     time.Hour,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "forger manager: %v\n", err)
		os.Exit(1)
	}

	valid := make([]string, *users)
	forged := make([]string, *users)
	for i := 0; i < *users; i++ {
		id := int64(i + 1)
		if valid[i], err = tm.Sign(id); err != nil {
			fmt.Fprintf(os.Stderr, "sign: %v\n", err)
			os.Exit(1)
		}
		if forged[i], err = forger.Sign(id); err != nil {
			fmt.Fprintf(os.Stderr, "sign forged: %v\n", err)
			os.Exit(1)
		}
	}

	// ---------- authenticator ----------
	cfg := authgate.DefaultConfig()
	cfg.Token.Secret = secret
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistogram = true

	auth, err := authgate.New().WithConfig(cfg).WithUserStore(store).Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build authenticator: %v\n", err)
		os.Exit(1)
	}
	defer auth.Close()

	// ---------- run ----------
	var (
		successes atomic.Uint64
		rejected  atomic.Uint64
		failures  atomic.Uint64
		opIndex   atomic.Int64
	)
	latencies := make([]time.Duration, *ops)

	var wg sync.WaitGroup
	runStart := time.Now()
	for w := 0; w < *concurrency; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))

			for {
				op := opIndex.Add(1) - 1
				if op >= int64(*ops) {
					return
				}

				idx := rng.Intn(*users)
				tok := valid[idx]
				wantReject := rng.Intn(100) < *invalidPct
				if wantReject {
					tok = forged[idx]
				}

				start := time.Now()
				_, err := auth.Authenticate(ctx, staticRequest{header: "Bearer " + tok})
				latencies[op] = time.Since(start)

				switch {
				case err == nil && !wantReject:
					successes.Add(1)
				case err != nil && wantReject:
					rejected.Add(1)
				default:
					failures.Add(1)
				}
			}
		}(int64(w) + 1)
	}
	wg.Wait()
	elapsed := time.Since(runStart)

	// ---------- report ----------
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	pct := func(p float64) time.Duration {
		i := int(p * float64(len(latencies)-1))
		return latencies[i]
	}

	fmt.Printf("ops=%d concurrency=%d elapsed=%s throughput=%.0f op/s\n",
		*ops, *concurrency, elapsed.Round(time.Millisecond),
		float64(*ops)/elapsed.Seconds())
	fmt.Printf("success=%d rejected=%d unexpected=%d\n",
		successes.Load(), rejected.Load(), failures.Load())
	fmt.Printf("latency p50=%s p90=%s p99=%s max=%s\n",
		pct(0.50), pct(0.90), pct(0.99), latencies[len(latencies)-1])

	if failures.Load() > 0 {
		os.Exit(1)
	}
}
