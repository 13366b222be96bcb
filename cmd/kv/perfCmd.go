package kv

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/trikv-io/triKV/cmd/util"
	"github.com/trikv-io/triKV/rpc/common"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for triKV servers",
		Long:    "",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix        = "__test"
	perfFamily           = "derived"
	perfLargeValueSizeKB = 100
	perfNumThreads       = 10
	perfKeySpread        = 100
	perfOpsPerThread     = 1000
	perfSkip             = make([]string, 0)
)

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. put,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "ops"
	perfTestCmd.Flags().Int(key, 1000, util.WrapString("Number of operations per thread and benchmark"))
	key = "large-value-size"
	perfTestCmd.Flags().Int(key, 1000, util.WrapString("How large the value for the put-large test should be (in KB)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "family"
	perfTestCmd.Flags().String(key, "derived", util.WrapString("Column family to benchmark against"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfLargeValueSizeKB = viper.GetInt("large-value-size")
	perfKeySpread = viper.GetInt("keys")
	perfNumThreads = viper.GetInt("threads")
	perfOpsPerThread = viper.GetInt("ops")
	perfFamily = viper.GetString("family")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

func runPerf(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for triKV servers")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Family: %s\n", perfFamily)
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Printf("Ops per thread: %d\n", perfOpsPerThread)
	fmt.Println()

	fmt.Println("starting tests...")

	// Each benchmark records per-op latencies into its own timer
	results := make(map[string]metrics.Timer)

	putTimer := runBenchmark("put", nil, func(t metrics.Timer, counter int) {
		key := testKey("put", counter)
		t.Time(func() {
			if err := remoteStore.Put(perfFamily, key, []byte("test")); err != nil {
				log.Printf("(put) - error putting key: %v\n", err)
			}
		})
	})
	results["put"] = putTimer
	printResult("put", putTimer)
	cleanupKeys("put")

	largeValue := make([]byte, perfLargeValueSizeKB*1024)
	putLargeTimer := runBenchmark("put-large", nil, func(t metrics.Timer, counter int) {
		key := testKey("put-large", counter)
		t.Time(func() {
			if err := remoteStore.Put(perfFamily, key, largeValue); err != nil {
				log.Printf("(put-large) - error putting key: %v\n", err)
			}
		})
	})
	results["put-large"] = putLargeTimer
	printResult("put-large", putLargeTimer)
	cleanupKeys("put-large")

	getTimer := runBenchmark("get", seedKeys("get"), func(t metrics.Timer, counter int) {
		key := testKey("get", counter)
		t.Time(func() {
			if _, _, err := remoteStore.Get(perfFamily, key); err != nil {
				log.Printf("(get) - error getting key: %v\n", err)
			}
		})
	})
	results["get"] = getTimer
	printResult("get", getTimer)
	cleanupKeys("get")

	deleteTimer := runBenchmark("delete", seedKeys("delete"), func(t metrics.Timer, counter int) {
		key := testKey("delete", counter)
		t.Time(func() {
			if err := remoteStore.Delete(perfFamily, key); err != nil {
				log.Printf("(delete) - error deleting key: %v\n", err)
			}
		})
	})
	results["delete"] = deleteTimer
	printResult("delete", deleteTimer)

	existsTimer := runBenchmark("exists", seedKeys("exists"), func(t metrics.Timer, counter int) {
		key := testKey("exists", counter)
		t.Time(func() {
			if _, err := remoteStore.Exists(perfFamily, key); err != nil {
				log.Printf("(exists) - error checking key: %v\n", err)
			}
		})
	})
	results["exists"] = existsTimer
	printResult("exists", existsTimer)
	cleanupKeys("exists")

	existsNotTimer := runBenchmark("exists-not", nil, func(t metrics.Timer, counter int) {
		key := []byte(fmt.Sprintf("%s/exists-not-%d", perfKeyPrefix, counter%perfKeySpread))
		t.Time(func() {
			if _, err := remoteStore.Exists(perfFamily, key); err != nil {
				log.Printf("(exists-not) - error checking key: %v\n", err)
			}
		})
	})
	results["exists-not"] = existsNotTimer
	printResult("exists-not", existsNotTimer)

	batchTimer := runBenchmark("batch", nil, func(t metrics.Timer, counter int) {
		ops := []common.BatchOp{
			{Op: common.OpPut, Family: perfFamily, Key: testKey("batch", counter), Value: []byte("test")},
			{Op: common.OpPut, Family: perfFamily, Key: testKey("batch", counter+1), Value: []byte("test")},
			{Op: common.OpDelete, Family: perfFamily, Key: testKey("batch", counter+2)},
		}
		t.Time(func() {
			if err := remoteStore.Apply(ops); err != nil {
				log.Printf("(batch) - error applying batch: %v\n", err)
			}
		})
	})
	results["batch"] = batchTimer
	printResult("batch", batchTimer)
	cleanupKeys("batch")

	mixedTimer := runBenchmark("mixed", seedKeys("mixed"), func(t metrics.Timer, counter int) {
		key := testKey("mixed", counter)
		t.Time(func() {
			var err error
			switch counter % 4 {
			case 0: // put
				err = remoteStore.Put(perfFamily, key, []byte("test"))
			case 1: // get
				_, _, err = remoteStore.Get(perfFamily, key)
			case 2: // delete
				err = remoteStore.Delete(perfFamily, key)
			case 3: // exists
				_, err = remoteStore.Exists(perfFamily, key)
			}

			if err != nil {
				log.Printf("(mixed) - error performing operation (%d): %v\n", counter%4, err)
			}
		})
	})
	results["mixed"] = mixedTimer
	printResult("mixed", mixedTimer)
	cleanupKeys("mixed")

	// Write results to csv if specified
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

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// runBenchmark runs fn perfOpsPerThread times on perfNumThreads goroutines
// and returns the timer that collected the per-op latencies. A skipped
// benchmark returns a timer with zero samples.
func runBenchmark(test string, setup func(), fn func(t metrics.Timer, counter int)) metrics.Timer {
	timer := metrics.NewTimer()

	if shouldSkip(test) {
		return timer
	}

	if setup != nil {
		setup()
	}

	var wg sync.WaitGroup
	for thread := 0; thread < perfNumThreads; thread++ {
		wg.Add(1)
		go func(thread int) {
			defer wg.Done()
			for i := 0; i < perfOpsPerThread; i++ {
				fn(timer, thread*perfOpsPerThread+i)
			}
		}(thread)
	}
	wg.Wait()

	return timer
}

// testKey returns the counter's key from the fixed key set of a benchmark
func testKey(test string, counter int) []byte {
	return []byte(fmt.Sprintf("%s-%s-%d", perfKeyPrefix, test, counter%perfKeySpread))
}

// seedKeys returns a setup function that stores all keys of a benchmark
func seedKeys(test string) func() {
	return func() {
		for i := 0; i < perfKeySpread; i++ {
			if err := remoteStore.Put(perfFamily, testKey(test, i), []byte("test")); err != nil {
				log.Printf("(%s) - error seeding key: %v\n", test, err)
			}
		}
	}
}

// cleanupKeys deletes all keys of a benchmark
func cleanupKeys(test string) {
	for i := 0; i < perfKeySpread; i++ {
		if err := remoteStore.Delete(perfFamily, testKey(test, i)); err != nil {
			log.Printf("(%s) - error deleting key: %v\n", test, err)
		}
	}
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, timer metrics.Timer) {
	if timer.Count() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	mean := time.Duration(timer.Mean())
	p95 := time.Duration(timer.Percentile(0.95))
	p99 := time.Duration(timer.Percentile(0.99))

	// Print the formatted result
	fmt.Printf("%-20s%d ops\tmean %s\tp95 %s\tp99 %s\t%.0f ops/sec\n",
		test, timer.Count(), mean, p95, p99, timer.RateMean())
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]metrics.Timer, config *common.ClientConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "Ops", "MeanNs", "P95Ns", "P99Ns", "OpsPerSec", "Skipped",
		"Endpoints", "TimeoutSec", "RetryCount", "ConnectionsPerEndpoint",
		"Store", "Family", "Serializer", "Transport",
		"Threads", "LargeValueSizeKB", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	for test, timer := range results {
		skipped := strconv.FormatBool(timer.Count() == 0)

		row := []string{
			test,
			strconv.FormatInt(timer.Count(), 10),
			fmt.Sprintf("%.0f", timer.Mean()),
			fmt.Sprintf("%.0f", timer.Percentile(0.95)),
			fmt.Sprintf("%.0f", timer.Percentile(0.99)),
			fmt.Sprintf("%.0f", timer.RateMean()),
			skipped,
			strings.Join(config.Endpoints, ";"),
			strconv.Itoa(config.TimeoutSecond),
			strconv.Itoa(config.RetryCount),
			strconv.Itoa(config.ConnectionsPerEndpoint),
			util.GetStorePath(),
			perfFamily,
			viper.GetString("serializer"),
			viper.GetString("transport"),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfLargeValueSizeKB),
			strconv.Itoa(perfKeySpread),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
