package pg

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
	"github.com/remiges-tech/txnsim/metrics"
	"github.com/remiges-tech/txnsim/simulator"
)

// TxBeginner starts a database transaction. *pgx.Conn and *pgxpool.Pool satisfy it.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// WriterOptions tunes a Writer.
type WriterOptions struct {
	// BatchSize is the number of rows per commit. Zero commits once, after
	// every row has been sent.
	BatchSize int
	// Metrics receives row counters and insert timings. Optional.
	Metrics metrics.Metrics
}

// InsertResult counts what happened to the rows handed to Insert.
// Inserted and Skipped only cover rows whose transaction committed.
type InsertResult struct {
	Attempted int
	Inserted  int
	Skipped   int
	Commits   int
}

// Writer inserts transactions into one table, ignoring rows whose
// transaction_id is already present.
type Writer struct {
	db        TxBeginner
	table     string
	insertSQL string
	opts      WriterOptions
}

// NewWriter validates table and prepares the insert statement for it.
func NewWriter(db TxBeginner, table string, opts WriterOptions) (*Writer, error) {
	if opts.BatchSize < 0 {
		return nil, fmt.Errorf("batch size must not be negative, got %d", opts.BatchSize)
	}
	quoted, err := QuoteTable(table)
	if err != nil {
		return nil, err
	}
	return &Writer{
		db:        db,
		table:     table,
		insertSQL: insertSQL(quoted),
		opts:      opts,
	}, nil
}

func insertSQL(quoted string) string {
	names := make([]string, len(transactionColumns))
	params := make([]string, len(transactionColumns))
	for i, c := range transactionColumns {
		names[i] = pq.QuoteIdentifier(c.name)
		params[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO NOTHING",
		quoted, strings.Join(names, ", "), strings.Join(params, ", "), pq.QuoteIdentifier("transaction_id"))
}

// insertArgs lists the statement arguments in transactionColumns order.
// The amount travels as exact decimal text so no float conversion happens.
func insertArgs(t simulator.Transaction) []any {
	return []any{
		t.TransactionID,
		t.UserID,
		t.Amount.StringFixed(2),
		t.Timestamp.UTC(),
		t.Currency,
		t.City,
		t.Country,
		t.IPAddress,
		t.PaymentMethod,
		t.VoucherCode,
		t.AffiliateID,
		t.Status,
	}
}

// Insert sends one statement per transaction, in order, and commits after every
// BatchSize rows (or once at the end). A failing statement rolls back the open
// chunk and stops the run; chunks committed before it stay in the table.
func (w *Writer) Insert(ctx context.Context, txns []simulator.Transaction) (InsertResult, error) {
	var res InsertResult
	size := w.opts.BatchSize
	if size == 0 {
		size = len(txns)
	}
	for start := 0; start < len(txns); start += size {
		end := min(start+size, len(txns))
		inserted, skipped, err := w.insertChunk(ctx, txns[start:end], &res.Attempted)
		if err != nil {
			return res, err
		}
		res.Inserted += inserted
		res.Skipped += skipped
		res.Commits++
		w.record(metrics.RowsInsertedTotal, float64(inserted))
		w.record(metrics.RowsSkippedTotal, float64(skipped))
		w.record(metrics.CommitsTotal, 1)
	}
	return res, nil
}

func (w *Writer) insertChunk(ctx context.Context, chunk []simulator.Transaction, attempted *int) (inserted, skipped int, err error) {
	begun := time.Now()
	tx, err := w.db.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			// the original error matters more than a failed rollback
			_ = tx.Rollback(context.Background())
		}
	}()

	for _, t := range chunk {
		*attempted++
		start := time.Now()
		tag, execErr := tx.Exec(ctx, w.insertSQL, insertArgs(t)...)
		elapsed := time.Since(start).Seconds()
		if execErr != nil {
			w.recordWithLabels(metrics.InsertDurationSeconds, elapsed, metrics.OutcomeError)
			return 0, 0, fmt.Errorf("insert transaction %s into %s: %w", t.TransactionID, w.table, execErr)
		}
		if tag.RowsAffected() == 0 {
			skipped++
			w.recordWithLabels(metrics.InsertDurationSeconds, elapsed, metrics.OutcomeSkipped)
		} else {
			inserted++
			w.recordWithLabels(metrics.InsertDurationSeconds, elapsed, metrics.OutcomeInserted)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("commit: %w", err)
	}
	w.record(metrics.CommitDurationSeconds, time.Since(begun).Seconds())
	return inserted, skipped, nil
}

func (w *Writer) record(name string, value float64) {
	if w.opts.Metrics != nil {
		w.opts.Metrics.Record(name, value)
	}
}

func (w *Writer) recordWithLabels(name string, value float64, labelValues ...string) {
	if w.opts.Metrics != nil {
		w.opts.Metrics.RecordWithLabels(name, value, labelValues...)
	}
}
