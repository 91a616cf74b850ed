package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	goAccount "github.com/MrEthical07/goAccount"
	"github.com/MrEthical07/goAccount/store/memstore"
	"github.com/MrEthical07/goAccount/store/sqlstore"
)

func main() {
	var (
		accounts    = flag.Int("accounts", 2000, "number of accounts to register and confirm")
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 20000, "operations per phase (login + user detail)")
		storeKind   = flag.String("store", "memory", "account store: memory or sqlite")
		argonMemory = flag.Uint("argon-memory", 8*1024, "argon2id memory in KiB")
	)
	flag.Parse()

	if *accounts <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "accounts, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	store, cleanup, err := openStore(ctx, *storeKind)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open store: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	tokens := &tokenBox{byEmail: make(map[string]string, *accounts)}

	cfg := goAccount.DefaultConfig()
	cfg.Token.SigningMethod = "hs256"
	cfg.Token.PrivateKey = []byte(fmt.Sprintf("loadtest-%d-secret-padding-000000", time.Now().UnixNano()))
	cfg.Password.Memory = uint32(*argonMemory)
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Notifications.DropIfFull = false
	cfg.Metrics.EnableLatencyHistograms = true

	engine, err := goAccount.New().
		WithConfig(cfg).
		WithAccountStore(store).
		WithNotifier(tokens).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine build: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	emails := make([]string, *accounts)
	for i := range emails {
		emails[i] = fmt.Sprintf("user-%d@loadtest.local", i)
	}

	fmt.Printf("seeding %d accounts (%s store)...\n", *accounts, *storeKind)
	startSeed := time.Now()
	seed := runPhase(len(emails), *concurrency, func(_ *rand.Rand, i int) error {
		return register(ctx, engine, emails[i])
	})
	if seed.failures > 0 {
		fmt.Fprintf(os.Stderr, "%d registrations failed\n", seed.failures)
		os.Exit(1)
	}
	if err := tokens.wait(len(emails), 30*time.Second); err != nil {
		fmt.Fprintf(os.Stderr, "registration mail: %v\n", err)
		os.Exit(1)
	}
	confirm := runPhase(len(emails), *concurrency, func(_ *rand.Rand, i int) error {
		res, err := engine.Confirm(ctx, tokens.get(emails[i]))
		return resultErr(res, err)
	})
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	var accessMu sync.Mutex
	access := make([]string, len(emails))
	login := runPhase(*ops, *concurrency, func(r *rand.Rand, _ int) error {
		idx := r.Intn(len(emails))
		res, err := engine.Login(ctx, emails[idx], "loadtest-password")
		if err := resultErr(res, err); err != nil {
			return err
		}
		accessMu.Lock()
		access[idx] = res.AccessToken
		accessMu.Unlock()
		return nil
	})

	detail := runPhase(*ops, *concurrency, func(r *rand.Rand, _ int) error {
		tok := access[r.Intn(len(access))]
		if tok == "" {
			return nil
		}
		res, err := engine.UserDetail(ctx, tok)
		return resultErr(res, err)
	})

	fmt.Println("---- results ----")
	printStats("register", seed)
	printStats("confirm", confirm)
	printStats("login", login)
	printStats("user-detail", detail)

	snap := engine.MetricsSnapshot()
	fmt.Printf("flow latency buckets (<=5ms..>500ms): %v\n", snap.Histograms[goAccount.MetricFlowLatency])
}

func openStore(ctx context.Context, kind string) (goAccount.AccountStore, func(), error) {
	switch kind {
	case "memory":
		return memstore.New(), func() {}, nil
	case "sqlite":
		dir, err := os.MkdirTemp("", "goaccount-loadtest")
		if err != nil {
			return nil, nil, err
		}
		s, err := sqlstore.Open(ctx, sqlstore.SQLite, "file:"+filepath.Join(dir, "accounts.db"))
		if err != nil {
			_ = os.RemoveAll(dir)
			return nil, nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			_ = s.Close()
			_ = os.RemoveAll(dir)
			return nil, nil, err
		}
		return s, func() {
			_ = s.Close()
			_ = os.RemoveAll(dir)
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", kind)
	}
}

func register(ctx context.Context, engine *goAccount.Engine, email string) error {
	res, err := engine.Register(ctx, goAccount.RegisterInput{
		Email:     email,
		Password:  "loadtest-password",
		FirstName: "Load",
		LastName:  "Test",
	})
	return resultErr(res, err)
}

func resultErr(res goAccount.Result, err error) error {
	if err != nil {
		return err
	}
	return res.Err()
}

// tokenBox collects registration tokens from mail.
type tokenBox struct {
	mu      sync.Mutex
	byEmail map[string]string
}

func (b *tokenBox) Send(_ context.Context, msg goAccount.MailMessage) error {
	token, _ := msg.Data["token"].(string)
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, to := range msg.Recipients {
		b.byEmail[to] = token
	}
	return nil
}

func (b *tokenBox) get(email string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.byEmail[email]
}

func (b *tokenBox) wait(n int, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		b.mu.Lock()
		got := len(b.byEmail)
		b.mu.Unlock()
		if got >= n {
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	return errors.New("timed out waiting for mail")
}

func runPhase(ops, concurrency int, op func(r *rand.Rand, i int) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				err := op(r, i)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
