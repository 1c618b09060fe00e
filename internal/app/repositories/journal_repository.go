package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/transcriptledger/internal/db"
	"github.com/yigit/transcriptledger/internal/ledger"
	"github.com/yigit/transcriptledger/internal/pkg/dberrors"
	"github.com/yigit/transcriptledger/internal/pkg/logger"
)

const (
	journalTable = "ledger_entries"
	// journalPKey is the primary key constraint on seq
	journalPKey = "ledger_entries_pkey"
	// journalLockKey serializes appends across API replicas
	journalLockKey int64 = 0x7472616e73637269
)

var journalColumns = []string{"seq", "kind", "caller", "payload", "prev_hash", "hash", "recorded_at"}

// JournalRepository stores the ledger journal in PostgreSQL
type JournalRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewJournalRepository creates a new JournalRepository
func NewJournalRepository(database *db.PostgresDB) *JournalRepository {
	return &JournalRepository{
		db: database,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ ledger.Journal = (*JournalRepository)(nil)

// Append implements ledger.Journal. The head check and insert run in one
// transaction under an advisory lock.
func (r *JournalRepository) Append(ctx context.Context, e ledger.Entry) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", journalLockKey); err != nil {
			return fmt.Errorf("failed to lock journal: %w", err)
		}

		head, err := r.head(ctx, tx)
		if err != nil {
			return err
		}
		prevHash := head.Hash
		if prevHash == "" {
			prevHash = ledger.GenesisHash
		}
		if e.Seq != head.Seq+1 || e.PrevHash != prevHash {
			return fmt.Errorf("%w: database head is %d", ledger.ErrJournalConflict, head.Seq)
		}

		sql, args, err := r.sb.Insert(journalTable).
			Columns(journalColumns...).
			Values(int64(e.Seq), string(e.Kind), e.Caller.Bytes(), []byte(e.Payload), e.PrevHash, e.Hash, e.RecordedAt).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert journal entry query: %w", err)
		}

		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			if dberrors.IsDuplicateConstraintError(err, journalPKey) {
				return fmt.Errorf("%w: seq %d already written", ledger.ErrJournalConflict, e.Seq)
			}
			logger.Error().Err(err).Uint64("seq", e.Seq).Msg("Error inserting journal entry")
			return fmt.Errorf("error inserting journal entry: %w", err)
		}
		return nil
	})
}

// Head returns the last stored entry, or the zero Head for an empty journal
func (r *JournalRepository) Head(ctx context.Context) (ledger.Head, error) {
	return r.head(ctx, r.db.Pool)
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *JournalRepository) head(ctx context.Context, q queryRower) (ledger.Head, error) {
	sql, args, err := r.sb.Select("seq", "hash").
		From(journalTable).
		OrderBy("seq DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return ledger.Head{}, fmt.Errorf("failed to build journal head query: %w", err)
	}

	var (
		seq  int64
		hash string
	)
	if err := q.QueryRow(ctx, sql, args...).Scan(&seq, &hash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ledger.Head{}, nil
		}
		return ledger.Head{}, fmt.Errorf("error reading journal head: %w", err)
	}
	return ledger.Head{Seq: uint64(seq), Hash: hash}, nil
}

// Replay implements ledger.Journal
func (r *JournalRepository) Replay(ctx context.Context, after uint64, fn func(ledger.Entry) error) error {
	sql, args, err := r.sb.Select(journalColumns...).
		From(journalTable).
		Where(squirrel.Gt{"seq": int64(after)}).
		OrderBy("seq ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build journal replay query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error querying journal: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e       ledger.Entry
			seq     int64
			kind    string
			caller  []byte
			payload []byte
		)
		if err := rows.Scan(&seq, &kind, &caller, &payload, &e.PrevHash, &e.Hash, &e.RecordedAt); err != nil {
			return fmt.Errorf("error scanning journal entry: %w", err)
		}
		e.Seq = uint64(seq)
		e.Kind = ledger.EventType(kind)
		e.Caller = common.BytesToAddress(caller)
		e.Payload = payload
		e.RecordedAt = e.RecordedAt.UTC()

		if err := fn(e); err != nil {
			return err
		}
	}
	return rows.Err()
}
