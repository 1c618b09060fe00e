// Command ledgerctl runs maintenance tasks against the ledger journal
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/yigit/transcriptledger/internal/bootstrap"
	"github.com/yigit/transcriptledger/internal/config"
	"github.com/yigit/transcriptledger/internal/db"
	"github.com/yigit/transcriptledger/internal/ledger"
	"github.com/yigit/transcriptledger/internal/pkg/logger"
)

const programName = "ledgerctl"

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Transcript ledger maintenance",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", bootstrap.DefaultConfigPath, "path to config file")

	rootCmd.AddCommand(
		migrateCommand(),
		verifyCommand(),
		statsCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Str("component", programName).Msg("Command failed")
		os.Exit(1)
	}
}

// openJournal loads the config and opens the configured journal. The
// returned database is nil for the memory journal.
func openJournal(ctx context.Context) (*config.Config, ledger.Journal, *db.PostgresDB, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configFile)
	if err != nil {
		return nil, nil, nil, err
	}
	if !cfg.UsePostgres() {
		return nil, nil, nil, fmt.Errorf("ledger.journal is %q; ledgerctl needs the %q journal", cfg.Ledger.Journal, config.JournalPostgres)
	}
	journal, database, err := bootstrap.SetupJournal(ctx, cfg, lgr)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, journal, database, nil
}
