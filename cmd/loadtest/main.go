package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"text/tabwriter"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/fatih/color"

	"github.com/erain9/marketsim/pkg/book"
	"github.com/erain9/marketsim/pkg/logging"
)

var (
	numOrders = flag.Int("orders", 100000, "Number of orders to submit")
	numOwners = flag.Int("owners", 50, "Number of distinct order owners")
	seed      = flag.Int64("seed", 1, "RNG seed")
)

func main() {
	flag.Parse()
	logging.Setup(logging.DefaultConfig())

	rng := rand.New(rand.NewSource(*seed))
	b := book.NewSpotBook(100.0)

	// Latencies from 100ns to 1s, 3 significant digits.
	hist := hdrhistogram.New(100, int64(time.Second), 3)

	trades := 0
	start := time.Now()
	for i := 0; i < *numOrders; i++ {
		order := randomOrder(rng, i)

		submitStart := time.Now()
		filled, err := b.Submit(order)
		elapsed := time.Since(submitStart)

		if err != nil {
			fmt.Fprintf(os.Stderr, "submit failed: %v\n", err)
			os.Exit(1)
		}
		trades += len(filled)

		if err := hist.RecordValue(elapsed.Nanoseconds()); err != nil {
			fmt.Fprintf(os.Stderr, "histogram record failed: %v\n", err)
			os.Exit(1)
		}

		// Periodic purge keeps resting depth realistic for a quote-driven
		// market instead of letting the book grow without bound.
		if i > 0 && i%1000 == 0 {
			owner := fmt.Sprintf("owner-%d", rng.Intn(*numOwners))
			b.Purge(owner)
		}
	}
	total := time.Since(start)

	printResults(hist, total, trades)
}

func randomOrder(rng *rand.Rand, i int) book.Order {
	side := book.Sell
	if rng.Float64() < 0.5 {
		side = book.Buy
	}
	return book.Order{
		Owner:      fmt.Sprintf("owner-%d", rng.Intn(*numOwners)),
		Side:       side,
		Price:      100.0 + rng.NormFloat64(),
		Quantity:   float64(1 + rng.Intn(10)),
		Instrument: book.Spot,
	}
}

func printResults(hist *hdrhistogram.Histogram, total time.Duration, trades int) {
	cyan := color.New(color.FgCyan).SprintfFunc()
	green := color.New(color.FgGreen).SprintfFunc()

	fmt.Println(cyan("=== Submit Latency ==="))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "%s\t%d\n", "Orders", *numOrders)
	fmt.Fprintf(w, "%s\t%d\n", "Trades", trades)
	fmt.Fprintf(w, "%s\t%s\n", "Total time", total.Round(time.Millisecond))
	fmt.Fprintf(w, "%s\t%s\n", "Throughput", green("%.0f orders/sec", float64(*numOrders)/total.Seconds()))
	fmt.Fprintf(w, "%s\t%v\n", "p50", time.Duration(hist.ValueAtQuantile(50)))
	fmt.Fprintf(w, "%s\t%v\n", "p90", time.Duration(hist.ValueAtQuantile(90)))
	fmt.Fprintf(w, "%s\t%v\n", "p99", time.Duration(hist.ValueAtQuantile(99)))
	fmt.Fprintf(w, "%s\t%v\n", "p99.9", time.Duration(hist.ValueAtQuantile(99.9)))
	fmt.Fprintf(w, "%s\t%v\n", "max", time.Duration(hist.Max()))
	w.Flush()
}
