package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"

	"github.com/erain9/marketsim/config"
	"github.com/erain9/marketsim/pkg/logging"
	"github.com/erain9/marketsim/pkg/messaging/kafka"
	"github.com/erain9/marketsim/pkg/otel"
	"github.com/erain9/marketsim/pkg/recorder"
	"github.com/erain9/marketsim/pkg/sim"
	redisstore "github.com/erain9/marketsim/pkg/store/redis"
)

var configFile = flag.String("config", "", "Path to config file (YAML)")

func main() {
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(logging.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
	})

	cleanup, err := otel.Init(otel.Config{
		Endpoint:         cfg.Otel.Endpoint,
		CollectorEnabled: cfg.Otel.Enabled,
	})
	if err != nil {
		log.Warn().Err(err).Msg("OpenTelemetry init failed, continuing without telemetry")
	} else {
		defer cleanup()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		log.Info().Msg("Received interrupt signal, stopping run")
		cancel()
	}()

	rec := recorder.New()
	opts := []sim.Option{sim.WithRecorder(rec)}

	if cfg.Kafka.Enabled {
		sender, err := kafka.NewKafkaMessageSender(cfg.Kafka.BrokerAddr, cfg.Kafka.Topic)
		if err != nil {
			log.Warn().Err(err).Msg("Kafka unavailable, continuing without step publishing")
		} else {
			defer sender.Close()
			opts = append(opts, sim.WithSender(sender))
		}
	}

	if cfg.Redis.Enabled {
		redisstore.SetDefaultOptions(&redisstore.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		client := redisstore.GetClient()
		defer client.Close()
		opts = append(opts, sim.WithRunStore(redisstore.NewRunStore(client, "marketsim")))
	}

	runner := sim.NewRunner(cfg, opts...)
	result, err := runner.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Simulation failed")
	}

	printSummary(cfg, result, rec)
}

func printSummary(cfg *config.Config, result *sim.Result, rec *recorder.Recorder) {
	cyan := color.New(color.FgCyan).SprintfFunc()
	green := color.New(color.FgGreen).SprintfFunc()

	fmt.Println()
	fmt.Println(cyan("=== Simulation Summary ==="))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "%s\t%s\n", "Run ID", result.RunID)
	fmt.Fprintf(w, "%s\t%d\n", "Steps", result.Steps)
	fmt.Fprintf(w, "%s\t%s\n", "Final mid", green("%.3f", result.FinalMid))
	fmt.Fprintf(w, "%s\t%.4f\n", "Final vol", result.FinalVol)
	fmt.Fprintf(w, "%s\t%d\n", "Total trades", result.TotalTrades)
	fmt.Fprintf(w, "%s\t%s\n", "Elapsed", result.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "%s\t%s\n", "Output dir", cfg.Sim.OutputDir)
	w.Flush()

	if rows := rec.Surface(); len(rows) > 0 {
		fmt.Println()
		fmt.Println(cyan("=== Final Implied Vol Surface ==="))
		printSurface(rows)
	}
}

// printSurface shows the implied vol rows of the last recorded step.
func printSurface(rows []recorder.SurfaceRow) {
	lastStep := rows[len(rows)-1].Step

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", "Strike", "Kind", "Mid", "IV")
	for _, row := range rows {
		if row.Step != lastStep {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%.4f\t%.4f\n",
			strconv.FormatFloat(row.Strike, 'f', -1, 64), row.Kind, row.Mid, row.ImpliedVol)
	}
	w.Flush()
}
