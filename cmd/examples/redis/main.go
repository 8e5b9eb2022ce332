package main

import (
	"context"
	"fmt"

	"github.com/erain9/marketsim/pkg/logging"
	"github.com/erain9/marketsim/pkg/messaging"
	redisstore "github.com/erain9/marketsim/pkg/store/redis"
)

const (
	redisAddr = "localhost:6379"
	prefix    = "marketsim-example"
)

func main() {
	ctx := context.Background()
	logging.Setup(logging.DefaultConfig())

	redisstore.SetDefaultOptions(&redisstore.Options{Addr: redisAddr})
	client := redisstore.GetClient()
	defer client.Close()

	pong, err := client.Ping(ctx).Result()
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to Redis: %v", err))
	}
	fmt.Printf("Redis connection established: %s\n", pong)

	store := redisstore.NewRunStore(client, prefix)

	// Record a tiny fake run
	runID, err := store.StartRun(ctx)
	if err != nil {
		panic(err)
	}
	fmt.Printf("Started run: %s\n", runID)

	for step := int64(1); step <= 3; step++ {
		msg := &messaging.StepMessage{
			RunID:      runID,
			Step:       step,
			SpotMid:    messaging.FormatDecimal(100.0 + float64(step)*0.5),
			Volatility: messaging.FormatDecimal(0.2),
			NumTrades:  step,
		}
		if err := store.AppendStep(ctx, runID, msg); err != nil {
			panic(err)
		}
	}

	// Read it back
	steps, err := store.Steps(ctx, runID)
	if err != nil {
		panic(err)
	}
	fmt.Println("\nStored step records:")
	for _, s := range steps {
		fmt.Printf("- step=%d mid=%s trades=%d\n", s.Step, s.SpotMid, s.NumTrades)
	}

	runs, err := store.ListRuns(ctx)
	if err != nil {
		panic(err)
	}
	fmt.Printf("\nKnown runs under prefix %q: %d\n", prefix, len(runs))

	// Clean up the example data
	if err := store.DeleteRun(ctx, runID); err != nil {
		panic(err)
	}
	fmt.Println("Run deleted")
}
