package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"daviz/internal/registry/codec"
	"daviz/pkg/address"
	"daviz/pkg/platform/sentinel"
)

//go:embed schema.sql
var schema string

// PostgresStore keeps accounts in a single table. Memcmp filters run in SQL
// against the raw bytes so filtered scans do not decode every account.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the accounts table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate accounts: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, addr address.Address, data []byte) error {
	tag, err := s.db.Exec(ctx, `
		INSERT INTO accounts (address, discriminator, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (address) DO NOTHING
	`, addr[:], discriminatorOf(data), data)
	if err != nil {
		return fmt.Errorf("insert account %s: %w", addr, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %s: %w", addr, sentinel.ErrAlreadyUsed)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, addr address.Address) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow(ctx, `SELECT data FROM accounts WHERE address = $1`, addr[:]).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", addr, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select account %s: %w", addr, err)
	}
	return data, nil
}

// Execute locks the row with SELECT ... FOR UPDATE for the duration of fn.
func (s *PostgresStore) Execute(ctx context.Context, addr address.Address, fn MutateFunc) ([]byte, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current []byte
	err = tx.QueryRow(ctx, `SELECT data FROM accounts WHERE address = $1 FOR UPDATE`, addr[:]).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", addr, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lock account %s: %w", addr, err)
	}

	next, err := fn(current)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE accounts SET data = $2, updated_at = now() WHERE address = $1
	`, addr[:], next); err != nil {
		return nil, fmt.Errorf("update account %s: %w", addr, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit account %s: %w", addr, err)
	}
	return next, nil
}

func (s *PostgresStore) Scan(ctx context.Context, disc codec.Discriminator, filters ...codec.Memcmp) ([]RawAccount, error) {
	var q strings.Builder
	q.WriteString(`SELECT address, data FROM accounts WHERE discriminator = $1`)
	args := []any{disc[:]}
	for _, f := range filters {
		// SQL substring is 1-indexed
		fmt.Fprintf(&q, ` AND substring(data FROM $%d FOR $%d) = $%d`, len(args)+1, len(args)+2, len(args)+3)
		args = append(args, f.Offset+1, len(f.Bytes), f.Bytes)
	}
	q.WriteString(` ORDER BY address`)

	rows, err := s.db.Query(ctx, q.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("scan accounts: %w", err)
	}
	defer rows.Close()

	var out []RawAccount
	for rows.Next() {
		var rawAddr, data []byte
		if err := rows.Scan(&rawAddr, &data); err != nil {
			return nil, fmt.Errorf("scan account row: %w", err)
		}
		addr, err := address.FromBytes(rawAddr)
		if err != nil {
			return nil, fmt.Errorf("account row: %w", sentinel.ErrInvalidState)
		}
		out = append(out, RawAccount{Address: addr, Data: data})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return out, nil
}

func discriminatorOf(data []byte) []byte {
	if len(data) < codec.DiscriminatorSize {
		return data
	}
	return data[:codec.DiscriminatorSize]
}
