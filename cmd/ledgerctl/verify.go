package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/yigit/transcriptledger/internal/ledger"
)

func verifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the journal hash chain",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, journal, database, err := openJournal(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close()

			return runVerify(cmd.Context(), journal, cmd.OutOrStdout())
		},
	}
}

func runVerify(ctx context.Context, journal ledger.Journal, w io.Writer) error {
	head, err := ledger.VerifyJournal(ctx, journal)
	if err != nil {
		return fmt.Errorf("journal verification failed: %w", err)
	}
	fmt.Fprintf(w, "journal ok: %d entries, head %s\n", head.Seq, head.Hash)
	return nil
}
