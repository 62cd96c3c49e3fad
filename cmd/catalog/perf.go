package catalog

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ValentinKolb/flatmsg/cmd/util"
	"github.com/ValentinKolb/flatmsg/lib/catalog"
	"github.com/ValentinKolb/flatmsg/rpc/common"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for flatmsg servers",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfNamePrefix = "__test"
	perfNumThreads = 10
	perfItemSpread = 100
	perfSkip       = make([]string, 0)
)

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. put,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "items"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different items to use for the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	perfItemSpread = max(viper.GetInt("items"), 1)
	perfNumThreads = max(viper.GetInt("threads"), 1)
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

func runPerf(_ *cobra.Command, _ []string) error {
	fmt.Println("Performance testing tool for flatmsg servers")

	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Println()

	fmt.Println("staring tests...")

	ctx := context.Background()
	results := make(map[string]testing.BenchmarkResult)

	results["put"] = benchmark("put", func(b *testing.B, getItem func(int) catalog.Item) {
		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				if err := rpcCatalog.Put(ctx, getItem(counter)); err != nil {
					log.Printf("(put) - error putting item: %v\n", err)
				}
				counter++
			}
		})
	}, false)

	results["get"] = benchmark("get", func(b *testing.B, getItem func(int) catalog.Item) {
		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				if _, _, err := rpcCatalog.Get(ctx, getItem(counter).ID); err != nil {
					log.Printf("(get) - error getting item: %v\n", err)
				}
				counter++
			}
		})
	}, true)

	results["list"] = benchmark("list", func(b *testing.B, _ func(int) catalog.Item) {
		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				if _, err := rpcCatalog.List(ctx); err != nil {
					log.Printf("(list) - error listing items: %v\n", err)
				}
			}
		})
	}, true)

	results["mixed"] = benchmark("mixed", func(b *testing.B, getItem func(int) catalog.Item) {
		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				item := getItem(counter)
				var err error
				switch counter % 4 {
				case 0:
					err = rpcCatalog.Put(ctx, item)
				case 1:
					_, _, err = rpcCatalog.Get(ctx, item.ID)
				case 2:
					err = rpcCatalog.Delete(ctx, item.ID)
				case 3:
					_, err = rpcCatalog.Has(ctx, item.ID)
				}
				if err != nil {
					log.Printf("(mixed) - error performing operation (%d): %v\n", counter%4, err)
				}
				counter++
			}
		})
	}, true)

	// Write results to csv is specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results, util.GetClientConfig()); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// benchmark runs fn against a fresh set of test items, prefilled if requested, and
// deletes the items afterwards
func benchmark(test string, fn func(b *testing.B, getItem func(int) catalog.Item), prefill bool) testing.BenchmarkResult {
	result := testing.Benchmark(func(b *testing.B) {
		if shouldSkip(test) {
			return
		}

		items := testItems(test)
		getItem := func(i int) catalog.Item {
			return items[i%len(items)]
		}

		ctx := context.Background()
		if prefill {
			for _, item := range items {
				if err := rpcCatalog.Put(ctx, item); err != nil {
					log.Printf("(%s) - error putting item: %v\n", test, err)
				}
			}
		}

		b.Cleanup(func() {
			for _, item := range items {
				if err := rpcCatalog.Delete(ctx, item.ID); err != nil {
					log.Printf("(%s) - error deleting item: %v\n", test, err)
				}
			}
		})

		b.SetParallelism(perfNumThreads)
		b.ResetTimer()
		fn(b, getItem)
	})

	printResult(test, result)
	return result
}

func shouldSkip(test string) bool {
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// testItems creates perfItemSpread items with a few members of every category
func testItems(prefix string) []catalog.Item {
	items := make([]catalog.Item, perfItemSpread)
	for i := range items {
		items[i] = catalog.Item{
			ID:         uuid.New(),
			Name:       fmt.Sprintf("%s-%s-%d", perfNamePrefix, prefix, i),
			Tags:       []string{"perf", prefix},
			Price:      float64(i) + 0.99,
			Status:     catalog.StatusActive,
			Attributes: map[string]string{"run": prefix},
			Stock:      map[string]int{"berlin": i},
			Dimensions: &catalog.Dimensions{Width: 1, Height: 2, Depth: 3, Unit: "m"},
		}
	}
	return items
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result testing.BenchmarkResult) {
	if result.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\n", test, nsPerOp, time.Duration(nsPerOp), opsPerSec)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]testing.BenchmarkResult, config *common.ClientConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "Skipped",
		"Endpoints", "TimeoutSec", "RetryCount", "ConnectionsPerEndpoint",
		"Serializer", "Transport", "Threads", "Items",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	for test, result := range results {
		var nsPerOp, opsPerSec float64
		skipped := "true"
		if result.NsPerOp() != 0 {
			skipped = "false"
			nsPerOp = math.Max(float64(result.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			skipped,
			strings.Join(config.Transport.Endpoints, ";"),
			strconv.Itoa(config.TimeoutSecond),
			strconv.Itoa(config.Transport.RetryCount),
			strconv.Itoa(config.Transport.ConnectionsPerEndpoint),
			viper.GetString("serializer"),
			viper.GetString("transport"),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfItemSpread),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
