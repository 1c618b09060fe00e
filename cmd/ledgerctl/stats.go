package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/yigit/transcriptledger/internal/app/models/dto"
	"github.com/yigit/transcriptledger/internal/ledger"
)

func statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Replay the journal and print ledger totals as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, journal, database, err := openJournal(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close()

			return runStats(cmd.Context(), journal, cmd.OutOrStdout())
		},
	}
}

func runStats(ctx context.Context, journal ledger.Journal, w io.Writer) error {
	registry, err := ledger.Load(ctx, journal)
	if err != nil {
		return fmt.Errorf("failed to replay journal: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(dto.StatsResponse{
		TotalInstitutions: registry.GetTotalInstitutions(),
		TotalTranscripts:  registry.GetTotalTranscripts(),
		JournalHead:       registry.Head().Seq,
	})
}
