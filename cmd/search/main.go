package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/eshaffer321/firefly-merge-backend/internal/adapters/firefly"
	"github.com/eshaffer321/firefly-merge-backend/internal/application/merge"
	"github.com/eshaffer321/firefly-merge-backend/internal/domain/matcher"
	"github.com/eshaffer321/firefly-merge-backend/internal/infrastructure/config"
	"github.com/eshaffer321/firefly-merge-backend/internal/infrastructure/logging"
)

func main() {
	var (
		configFile = flag.String("config", "", "Configuration file path")
		startDate  = flag.String("start", "", "Start date (YYYY-MM-DD, default: -days from today)")
		endDate    = flag.String("end", "", "End date (YYYY-MM-DD, default: today)")
		days       = flag.Int("days", 30, "Number of days to look back when -start is not set")
		window     = flag.Int("window", 0, "Max business days between withdrawal and deposit (0 = config default)")
		apply      = flag.Bool("apply", false, "Execute the merges instead of only listing candidates")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	configPath := *configFile
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg := config.LoadOrEnvWithPath(configPath)

	logCfg := cfg.Observability.Logging
	logCfg.Format = "text"
	if *verbose {
		logCfg.Level = "debug"
	}
	logger := logging.NewLogger(logCfg)

	end := time.Now()
	if *endDate != "" {
		parsed, err := time.Parse("2006-01-02", *endDate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -end date: %v\n", err)
			os.Exit(1)
		}
		end = parsed
	}
	start := end.AddDate(0, 0, -*days)
	if *startDate != "" {
		parsed, err := time.Parse("2006-01-02", *startDate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -start date: %v\n", err)
			os.Exit(1)
		}
		start = parsed
	}

	maxDays := cfg.Matcher.MaxBusinessDays
	if *window > 0 {
		maxDays = *window
	}

	client := firefly.NewClient(firefly.Config{
		BaseURL:  cfg.Firefly.BaseURL,
		Token:    cfg.Firefly.Token,
		Timeout:  cfg.Firefly.Timeout(),
		RetryMax: cfg.Firefly.RetryMax,
	}, logger)

	ctx := context.Background()

	about, err := client.Validate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to reach Firefly III at %s: %v\n", cfg.Firefly.BaseURL, err)
		os.Exit(1)
	}

	fmt.Println("🔍 TRANSFER MERGE SEARCH")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Firefly III: %s (%s)\n", cfg.Firefly.BaseURL, about.Version)
	fmt.Printf("Date range:  %s to %s\n", start.Format("2006-01-02"), end.Format("2006-01-02"))
	fmt.Printf("Window:      %d business days\n\n", maxDays)

	withdrawals, err := client.ListTransactions(ctx, firefly.TypeWithdrawal, start, end, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to fetch withdrawals: %v\n", err)
		os.Exit(1)
	}
	deposits, err := client.ListTransactions(ctx, firefly.TypeDeposit, start, end, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to fetch deposits: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Fetched %d withdrawals and %d deposits\n\n", len(withdrawals), len(deposits))

	m := matcher.New(matcher.Config{
		MaxBusinessDays: maxDays,
		MaxAlternatives: cfg.Matcher.MaxAlternatives,
	})
	candidates := m.FindMatches(withdrawals, deposits)

	if len(candidates) == 0 {
		fmt.Println("No merge candidates found.")
		return
	}

	fmt.Printf("Found %d merge candidate(s)\n", len(candidates))
	fmt.Println(strings.Repeat("-", 60))
	for i, candidate := range candidates {
		wSplit := candidate.Withdrawal.PrimarySplit()
		dSplit := candidate.Deposit.PrimarySplit()
		fmt.Printf("%2d. %s %s  %s days apart: %d\n", i+1,
			wSplit.Amount.Abs().String(), wSplit.CurrencyCode, wSplit.Description, candidate.DaysApart)
		fmt.Printf("    withdrawal %s  %s -> %s  (%s)\n",
			candidate.Withdrawal.ID, wSplit.SourceName, wSplit.DestinationName, wSplit.Date.Format("2006-01-02"))
		fmt.Printf("    deposit    %s  %s -> %s  (%s)\n",
			candidate.Deposit.ID, dSplit.SourceName, dSplit.DestinationName, dSplit.Date.Format("2006-01-02"))
		if len(candidate.Alternatives) > 0 {
			ids := make([]string, 0, len(candidate.Alternatives))
			for _, alt := range candidate.Alternatives {
				ids = append(ids, alt.Deposit.ID)
			}
			fmt.Printf("    alternatives: %s\n", strings.Join(ids, ", "))
		}
	}

	if !*apply {
		fmt.Println("\nDry run. Re-run with -apply to merge these pairs.")
		return
	}

	fmt.Println("\n⚙️  EXECUTING MERGES")
	fmt.Println(strings.Repeat("-", 60))

	executor := merge.NewExecutor(client, cfg.Firefly.Timeout(), logger)

	var succeeded, failed int
	for _, candidate := range candidates {
		outcome := executor.MergePair(ctx, candidate.Withdrawal.ID, candidate.Deposit.ID)
		if outcome.Success() {
			succeeded++
			fmt.Printf("✅ merged withdrawal %s with deposit %s\n", outcome.WithdrawalID, outcome.DepositID)
			continue
		}
		failed++
		fmt.Printf("❌ %s: withdrawal %s, deposit %s: %s\n", outcome.Kind, outcome.WithdrawalID, outcome.DepositID, outcome.Error)
	}

	fmt.Printf("\nDone: %d merged, %d failed\n", succeeded, failed)
	if failed > 0 {
		os.Exit(1)
	}
}
