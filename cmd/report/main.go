package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/eshaffer321/firefly-merge-backend/internal/infrastructure/config"
	"github.com/eshaffer321/firefly-merge-backend/internal/infrastructure/storage"
)

func main() {
	var (
		dbPath     string
		configFile string
		limit      int
	)
	flag.StringVar(&dbPath, "db", "", "Path to database file (uses config if not specified)")
	flag.StringVar(&configFile, "config", "", "Configuration file path")
	flag.IntVar(&limit, "limit", 10, "Number of recent entries per section")
	flag.Parse()

	// Load config if database path not specified
	if dbPath == "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			log.Printf("Warning: Failed to load config: %v", err)
			dbPath = "merge_history.db" // fallback
		} else {
			dbPath = cfg.Storage.DatabasePath
			if dbPath == "" {
				dbPath = "merge_history.db" // fallback
			}
		}
	}

	store, err := storage.NewStorage(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	fmt.Println("📊 TRANSFER MERGE AUDIT REPORT")
	fmt.Println("=" + strings.Repeat("=", 60))
	fmt.Printf("Database: %s\n", dbPath)
	fmt.Printf("Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	// Overall Statistics
	fmt.Println("📈 OVERALL STATISTICS")
	fmt.Println(strings.Repeat("-", 40))

	stats, err := store.GetStats()
	if err != nil {
		log.Fatalf("Error getting stats: %v", err)
	}

	successRate := 0.0
	if stats.TotalAttempts > 0 {
		successRate = float64(stats.SuccessCount) / float64(stats.TotalAttempts) * 100
	}

	fmt.Printf("Total Pairs Attempted: %d\n", stats.TotalAttempts)
	fmt.Printf("Merged: %d (%.1f%%)\n", stats.SuccessCount, successRate)
	fmt.Printf("Clean Failures (retryable): %d\n", stats.CleanFailures)
	fmt.Printf("Partial Failures (manual cleanup!): %d\n", stats.PartialFailures)
	fmt.Printf("Already Merged (stale candidates): %d\n", stats.AlreadyMerged)
	if len(stats.ByCurrency) > 0 {
		fmt.Println("\nMerged by currency:")
		for code, count := range stats.ByCurrency {
			fmt.Printf("  %s: %d\n", code, count)
		}
	}
	fmt.Println()

	// Job Run History
	fmt.Println("🔄 RECENT MERGE JOBS")
	fmt.Println(strings.Repeat("-", 40))

	runs, err := store.ListJobRuns(limit)
	if err != nil {
		log.Printf("Error getting job runs: %v", err)
	} else {
		fmt.Printf("%-22s %-8s %-12s %s\n", "Started", "Pairs", "Result", "Status")
		fmt.Println(strings.Repeat("-", 70))

		for _, run := range runs {
			result := fmt.Sprintf("✅%d ❌%d", run.Succeeded, run.Failed)
			fmt.Printf("%-22s %-8d %-12s %s\n", run.StartedAt.Format("2006-01-02 15:04"), run.PairCount, result, run.Status)
		}
	}
	fmt.Println()

	// Recent Pair Details
	fmt.Println("📝 RECENT MERGE DETAILS")
	fmt.Println(strings.Repeat("-", 40))

	list, err := store.ListMergeRecords(storage.MergeRecordFilters{Limit: limit})
	if err != nil {
		log.Printf("Error getting merge records: %v", err)
	} else {
		for _, record := range list.Records {
			statusIcon := "✅"
			switch record.Outcome {
			case "clean_failure":
				statusIcon = "❌"
			case "partial_failure":
				statusIcon = "⚠️"
			case "already_merged":
				statusIcon = "⏭️"
			}

			fmt.Printf("\n%s Withdrawal %s + Deposit %s\n", statusIcon, record.WithdrawalID, record.DepositID)
			if record.Amount != "" {
				fmt.Printf("   Amount: %s %s | %s -> %s\n", record.Amount, record.CurrencyCode, record.SourceName, record.DestinationName)
			}
			fmt.Printf("   Outcome: %s | Job: %s | At: %s\n", record.Outcome, record.JobID, record.MergedAt.Format("2006-01-02 15:04"))

			if record.ErrorMessage != "" {
				fmt.Printf("   Error: %s\n", record.ErrorMessage)
			}
		}
	}
	fmt.Println()

	// Partial failures need a human; list every one of them.
	partial, err := store.ListMergeRecords(storage.MergeRecordFilters{Outcome: "partial_failure", Limit: 100})
	if err == nil && partial.TotalCount > 0 {
		fmt.Println("\n⚠️  PARTIAL FAILURES NEEDING MANUAL CLEANUP")
		fmt.Println(strings.Repeat("-", 40))
		for _, record := range partial.Records {
			fmt.Printf("Withdrawal %s is now a transfer but deposit %s was not deleted (%s)\n",
				record.WithdrawalID, record.DepositID, record.MergedAt.Format("2006-01-02 15:04"))
		}
	}
}
