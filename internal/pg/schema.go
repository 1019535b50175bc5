package pg

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

var ErrInvalidTableName = errors.New("invalid table name")

// maxIdentifierLen is PostgreSQL's NAMEDATALEN - 1.
const maxIdentifierLen = 63

// Execer runs a single statement. *pgx.Conn, *pgxpool.Pool and pgx.Tx all satisfy it.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type column struct {
	name string
	typ  string
}

// transactionColumns is the fixed layout of the transactions table, in insert order.
var transactionColumns = []column{
	{"transaction_id", "UUID PRIMARY KEY"},
	{"user_id", "VARCHAR(255)"},
	{"amount", "NUMERIC(10, 2)"},
	{"timestamp", "TIMESTAMP"},
	{"currency", "VARCHAR(3)"},
	{"city", "VARCHAR(255)"},
	{"country", "VARCHAR(255)"},
	{"ip_address", "VARCHAR(15)"},
	{"payment_method", "VARCHAR(50)"},
	{"voucher_code", "VARCHAR(50)"},
	{"affiliate_id", "UUID"},
	{"status", "VARCHAR(50)"},
}

// ValidateTableName accepts "table" or "schema.table" where each part is
// 1 to 63 bytes long and free of NUL bytes.
func ValidateTableName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidTableName)
	}
	if strings.ContainsRune(name, 0) {
		return fmt.Errorf("%w: %q contains a NUL byte", ErrInvalidTableName, name)
	}
	for _, part := range strings.SplitN(name, ".", 2) {
		if part == "" {
			return fmt.Errorf("%w: %q has an empty part", ErrInvalidTableName, name)
		}
		if len(part) > maxIdentifierLen {
			return fmt.Errorf("%w: %q is longer than %d bytes", ErrInvalidTableName, part, maxIdentifierLen)
		}
	}
	return nil
}

// QuoteTable validates name and quotes it for use as an identifier in SQL text.
// A single dot separates an optional schema from the table.
func QuoteTable(name string) (string, error) {
	if err := ValidateTableName(name); err != nil {
		return "", err
	}
	parts := strings.SplitN(name, ".", 2)
	for i, part := range parts {
		parts[i] = pq.QuoteIdentifier(part)
	}
	return strings.Join(parts, "."), nil
}

func createTableSQL(quoted string) string {
	defs := make([]string, len(transactionColumns))
	for i, c := range transactionColumns {
		defs[i] = fmt.Sprintf("%s %s", pq.QuoteIdentifier(c.name), c.typ)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", quoted, strings.Join(defs, ",\n\t"))
}

func replicaIdentitySQL(quoted string) string {
	return fmt.Sprintf("ALTER TABLE %s REPLICA IDENTITY FULL", quoted)
}

// EnsureTable creates the transactions table if it does not exist and sets its
// replica identity to FULL, so change events carry complete before and after
// row images. Each statement commits on its own. Running it again is a no-op
// for existing rows.
func EnsureTable(ctx context.Context, db Execer, table string) error {
	quoted, err := QuoteTable(table)
	if err != nil {
		return err
	}
	if _, err := db.Exec(ctx, createTableSQL(quoted)); err != nil {
		return fmt.Errorf("create table %s: %w", quoted, err)
	}
	if _, err := db.Exec(ctx, replicaIdentitySQL(quoted)); err != nil {
		return fmt.Errorf("set replica identity on %s: %w", quoted, err)
	}
	return nil
}
