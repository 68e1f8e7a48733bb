// Package main provides a performance benchmarking tool for the mfi CLI.
// It measures how long rankings and comparisons take against the MFI API,
// once without the response cache and several times with the SQLite cache,
// treating the first cached run as cold and averaging the rest as warm.
//
// Prerequisites:
// - mfi binary installed and available in PATH
// - MFI API reachable at the given base URL (MFI_API_TOKEN set if required)
//
// Usage: go run benchmark/main.go [api-url]
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Case        string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkCase is one mfi invocation to measure.
type BenchmarkCase struct {
	Name    string
	Command string
	Args    []string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	APIURL      string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	Cases       []BenchmarkCase
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [api-url]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		APIURL:      os.Args[1],
		Timeout:     2 * time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Cases: []BenchmarkCase{
			{Name: "current", Command: "rank", Args: []string{"--limit", "0"}},
			{Name: "2024", Command: "rank", Args: []string{"--cycle", "2024", "--limit", "0"}},
			{Name: "2024-salt", Command: "rank", Args: []string{"--cycle", "2024", "--sector", "Salt"}},
			{Name: "2023->2024", Command: "compare", Args: []string{"--base-cycle", "2023", "--target-cycle", "2024"}},
		},
	}

	if _, err := exec.LookPath("mfi"); err != nil {
		fmt.Printf("Prerequisites check failed: mfi binary not found in PATH\n")
		os.Exit(1)
	}

	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("mfi", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// runBenchmarks executes all configured cases.
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	fmt.Printf("Starting benchmark: %d cases, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.Cases), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	results := make([]BenchmarkResult, 0, len(config.Cases))
	for _, c := range config.Cases {
		results = append(results, runBenchmarkSuite(config, c))
	}
	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a case.
func runBenchmarkSuite(config BenchmarkConfig, c BenchmarkCase) BenchmarkResult {
	fmt.Printf("Running %s %s\n", c.Command, c.Name)

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		times := runBenchmark(config, c, cacheBackend, numRuns)
		if len(times) == 0 {
			return 0, "TIMEOUT"
		}
		// Without a cache every run is cold, so all of them are averaged
		if cacheBackend != "none" {
			coldTime, times = times[0], times[1:]
		}
		if len(times) == 0 {
			return coldTime, "N/A"
		}
		var sum float64
		for _, t := range times {
			sum += t
		}
		return coldTime, fmt.Sprintf("%.3fs", sum/float64(len(times)))
	}

	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Case:        c.Name,
		Command:     c.Command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes an mfi command numRuns times and returns the durations of successful runs.
func runBenchmark(config BenchmarkConfig, c BenchmarkCase, cacheBackend string, numRuns int) []float64 {
	args := append([]string{c.Command, "--api-url", config.APIURL, "--cache-backend", cacheBackend}, c.Args...)

	var times []float64
	for range numRuns {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()
		output, err := exec.CommandContext(ctx, "mfi", args...).Output()
		elapsed := time.Since(start)
		cancel()

		if err == nil && isSuccess(output, c.Command) {
			times = append(times, elapsed.Seconds())
		}
	}
	return times
}

// isSuccess checks if command output indicates successful completion.
func isSuccess(output []byte, command string) bool {
	completionPhrase := "Ranking completed in"
	if command == "compare" {
		completionPhrase = "Comparison completed in"
	}
	return strings.Contains(string(output), completionPhrase)
}

// saveResults writes benchmark results to a timestamped CSV file.
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/mfi_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"case", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Case, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary.
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, command := range []string{"rank", "compare"} {
		fmt.Printf("%s:\n", strings.ToUpper(command[:1])+command[1:])
		for _, result := range results {
			if result.Command == command {
				fmt.Printf("  %-12s: No-cache: %s, Cold: %s, Warm: %s\n", result.Case, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}
}
