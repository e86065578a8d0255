package main

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	redis "github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/latchkit/go-latch/v1/coordinator"
	"github.com/latchkit/go-latch/v1/lifecycle"
	"github.com/latchkit/go-latch/v1/memo"
)

var rootCmd = &cobra.Command{
	Use:   "latch-bench",
	Short: "hammers a shared memoized key through Redis",
	Long: `latch-bench spawns many concurrent callers that all request the same
memoized computation against a Redis coordinator, then reports how many
computations actually ran versus how many calls were answered from cache.`,
	RunE: runBench,
}

func init() {
	cobra.OnInitialize()
	rootCmd.Flags().String("redis-addr", "127.0.0.1:6379", "Redis address")
	rootCmd.Flags().String("key", "latch-bench", "Memoization key")
	rootCmd.Flags().Int("callers", 16, "Number of concurrent callers per round")
	rootCmd.Flags().Int("rounds", 5, "Number of rounds; the cached value expires between rounds")
	rootCmd.Flags().Int("value-ttl", 2, "Cache TTL in seconds (0 disables persistence)")
	rootCmd.Flags().Int("lock-ttl", 10, "Lock lease in seconds")
	rootCmd.Flags().Int("lock-max-wait", 30, "Lock retry budget in seconds")
	rootCmd.Flags().Int("compute-ms", 100, "Simulated computation latency in milliseconds")
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(cmd, "LATCH")
	if err != nil {
		return err
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	client := coordinator.New(coordinator.NewRedis(rdb))

	var computed, preLock, postLock atomic.Int64
	client.Lifecycle().OnFinish(func(info lifecycle.Info) {
		if info.Method != lifecycle.MethodMemoize {
			return
		}
		switch info.Status {
		case lifecycle.StatusValueComputed:
			computed.Add(1)
		case lifecycle.StatusValuePreLock:
			preLock.Add(1)
		case lifecycle.StatusValuePostLock:
			postLock.Add(1)
		}
	})

	engine := memo.New[string](client, memo.WithCoalescing[string]())
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	log.WithFields(log.Fields{
		"redis":   cfg.RedisAddr,
		"callers": cfg.Callers,
		"rounds":  cfg.Rounds,
	}).Info("starting benchmark")

	start := time.Now()
	for round := 0; round < cfg.Rounds; round++ {
		if err := engine.Forget(ctx, cfg.Key); err != nil {
			return fmt.Errorf("forget before round %d: %w", round, err)
		}
		g, gctx := errgroup.WithContext(ctx)
		for i := 0; i < cfg.Callers; i++ {
			g.Go(func() error {
				_, err := engine.Do(gctx, cfg.Key, func(context.Context) (string, error) {
					time.Sleep(time.Duration(cfg.ComputeMs) * time.Millisecond)
					return time.Now().Format(time.RFC3339Nano), nil
				},
					memo.WithTTL(time.Duration(cfg.ValueTTL)*time.Second),
					memo.WithLockTTL(time.Duration(cfg.LockTTL)*time.Second),
					memo.WithLockMaxWait(time.Duration(cfg.LockMaxWait)*time.Second),
				)
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	elapsed := time.Since(start)

	total := int64(cfg.Rounds * cfg.Callers)
	log.WithFields(log.Fields{
		"calls":        total,
		"computed":     computed.Load(),
		"val-prelock":  preLock.Load(),
		"val-postlock": postLock.Load(),
		"elapsed":      elapsed.String(),
	}).Info("benchmark finished")
	if computed.Load() > int64(cfg.Rounds) {
		log.Warnf("expected at most %d computations, saw %d", cfg.Rounds, computed.Load())
	}
	return nil
}
