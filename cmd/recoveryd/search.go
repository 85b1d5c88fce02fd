package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"github.com/seedrescue/recoveryd/internal/config"
	"github.com/seedrescue/recoveryd/internal/core/application"
	"github.com/seedrescue/recoveryd/internal/core/domain"
	dbinmemory "github.com/seedrescue/recoveryd/internal/infrastructure/storage/db/inmemory"
	"github.com/seedrescue/recoveryd/pkg/explorer"
	"github.com/seedrescue/recoveryd/pkg/httputil"
	"github.com/seedrescue/recoveryd/pkg/oracle"
	"github.com/seedrescue/recoveryd/pkg/stats"
)

var search = cli.Command{
	Name:  "search",
	Usage: "start a recovery session and follow it until it finishes",
	Flags: []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "word",
			Usage: "known word given as position=word, e.g. 0=abandon (repeatable)",
		},
		&cli.IntFlag{
			Name:  "max",
			Usage: "maximum number of combinations to check",
		},
		&cli.StringFlag{
			Name:  "min-balance",
			Usage: "minimum BTC balance for a wallet to be recorded",
			Value: "0",
		},
		&cli.Int64Flag{
			Name:  "seed",
			Usage: "random seed for reproducible runs (0 = time based)",
		},
	},
	Action: searchAction,
}

func searchAction(ctx *cli.Context) error {
	knownWords, err := parseKnownWords(ctx.StringSlice("word"))
	if err != nil {
		return err
	}
	minBalance, err := decimal.NewFromString(ctx.String("min-balance"))
	if err != nil {
		return fmt.Errorf("invalid min-balance: %w", err)
	}

	svc, err := buildRecoveryService()
	if err != nil {
		return err
	}

	if interval := config.GetDuration(config.StatsIntervalKey, time.Second); interval > 0 {
		statsCtx, stopStats := context.WithCancel(context.Background())
		defer stopStats()
		stats.EnableMemoryStatistics(statsCtx, interval)
	}

	sessionID, err := svc.StartSession(context.Background(), application.StartSessionRequest{
		KnownWords:      knownWords,
		MaxCombinations: ctx.Int("max"),
		MinBalance:      minBalance,
		Seed:            ctx.Int64("seed"),
	})
	if err != nil {
		return err
	}
	fmt.Printf("session %s started\n", sessionID)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("stopping session...")
		svc.StopSession(context.Background(), sessionID)
	}()

	return followSession(svc, sessionID)
}

func followSession(svc application.RecoveryService, sessionID string) error {
	printed := 0
	for {
		logs, err := svc.GetLogs(context.Background(), sessionID)
		if err != nil {
			return err
		}
		for _, entry := range logs[printed:] {
			fmt.Println(entry.Format())
		}
		printed = len(logs)

		status, err := svc.GetStatus(context.Background(), sessionID)
		if err != nil {
			return err
		}
		switch status.Status {
		case "completed", "error", "cancelled":
			return printResults(svc, sessionID, status)
		}

		time.Sleep(time.Second)
	}
}

func printResults(
	svc application.RecoveryService,
	sessionID string,
	status application.SessionStatus,
) error {
	results, err := svc.GetResults(context.Background(), sessionID)
	if err != nil {
		return err
	}

	fmt.Printf(
		"\nsession %s %s: %d combinations checked, %d wallets found\n",
		sessionID, status.Status, status.CombinationsChecked, status.FoundWallets,
	)
	for _, result := range results {
		fmt.Printf("\nmnemonic:      %s\n", result.Mnemonic)
		fmt.Printf("private key:   %s\n", result.PrivateKey)
		fmt.Printf("found at:      candidate #%d\n", result.FoundAt)
		fmt.Printf("total balance: %s BTC\n", result.TotalBalance)
		addresses := result.Addresses.ToMap()
		for _, addressType := range domain.AddressTypes {
			fmt.Printf("  %-14s %s (%s BTC)\n",
				addressType, addresses[addressType], result.Balances[addressType])
		}
	}
	return nil
}

func parseKnownWords(entries []string) (map[int]string, error) {
	knownWords := make(map[int]string)
	for _, entry := range entries {
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid word %q, expected position=word", entry)
		}
		position, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid word position %q", parts[0])
		}
		knownWords[position] = strings.ToLower(strings.TrimSpace(parts[1]))
	}
	return knownWords, nil
}

func buildRecoveryService() (application.RecoveryService, error) {
	client := httputil.NewClient(config.GetInt(config.GlobalRequestsPerSecondKey))
	sourceTimeout := config.GetDuration(config.SourceTimeoutKey, time.Second)

	newSources := []func() (explorer.Source, error){
		func() (explorer.Source, error) {
			return explorer.NewBlockstreamSource(
				config.GetString(config.BlockstreamURLKey), sourceTimeout, client)
		},
		func() (explorer.Source, error) {
			return explorer.NewBlockchainInfoSource(
				config.GetString(config.BlockchainInfoURLKey), sourceTimeout, client)
		},
		func() (explorer.Source, error) {
			return explorer.NewBlockCypherSource(
				config.GetString(config.BlockCypherURLKey), sourceTimeout, client)
		},
		func() (explorer.Source, error) {
			return explorer.NewSoChainSource(
				config.GetString(config.SoChainURLKey), sourceTimeout, client)
		},
	}
	sources := make([]explorer.Source, 0, len(newSources))
	for _, newSource := range newSources {
		source, err := newSource()
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}

	oracleSvc, err := oracle.NewService(oracle.Opts{
		Sources:             sources,
		CacheTTL:            config.GetDuration(config.CacheTTLKey, time.Second),
		SourceInterval:      config.GetDuration(config.SourceIntervalKey, time.Millisecond),
		MaxOutboundRequests: int64(config.GetInt(config.MaxOutboundRequestsKey)),
	})
	if err != nil {
		return nil, err
	}

	repoManager := dbinmemory.NewRepoManager()
	return application.NewRecoveryService(application.Opts{
		SessionRepository:      repoManager.SessionRepository(),
		ResultRepository:       repoManager.ResultRepository(),
		OracleService:          oracleSvc,
		DefaultMaxCombinations: config.GetInt(config.MaxCombinationsKey),
	})
}
