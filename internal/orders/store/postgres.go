package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"daviz/internal/orders/models"
	"daviz/pkg/address"
	"daviz/pkg/platform/sentinel"
	"daviz/pkg/requestcontext"
)

//go:embed schema.sql
var schema string

const orderColumns = `id, buyer_address, asset_address, message, contact_info, budget, timeline, status, created_at, updated_at`

// PostgresStore persists orders in PostgreSQL through database/sql.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the interest_orders table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate interest_orders: %w", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, o *models.InterestOrder) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO interest_orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`, o.ID, o.BuyerAddress.String(), o.AssetAddress.String(), o.Message, o.ContactInfo,
		nullString(o.Budget), nullString(o.Timeline), string(o.Status), o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order %s: %w", o.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert order %s: %w", o.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("order %s: %w", o.ID, sentinel.ErrAlreadyUsed)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*models.InterestOrder, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM interest_orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %s: %w", id, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select order %s: %w", id, err)
	}
	return o, nil
}

func (s *PostgresStore) List(ctx context.Context, filter models.Filter) ([]*models.InterestOrder, error) {
	statuses := make([]string, 0, len(filter.Statuses))
	for _, st := range filter.Statuses {
		statuses = append(statuses, string(st))
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+orderColumns+` FROM interest_orders
		WHERE ($1::text IS NULL OR asset_address = $1)
		  AND ($2::text IS NULL OR buyer_address = $2)
		  AND (cardinality($3::text[]) = 0 OR status = ANY($3))
		ORDER BY created_at DESC, id
	`, nullAddress(filter.Asset), nullAddress(filter.Buyer), pq.Array(statuses))
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []*models.InterestOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	return out, nil
}

// UpdateStatus performs the guarded transition in a single statement. When no
// row matches, a follow-up lookup distinguishes an unknown id from a refused
// transition.
func (s *PostgresStore) UpdateStatus(ctx context.Context, id uuid.UUID, from []models.Status, to models.Status) (*models.InterestOrder, error) {
	allowed := make([]string, 0, len(from))
	for _, st := range from {
		allowed = append(allowed, string(st))
	}
	row := s.db.QueryRowContext(ctx, `
		UPDATE interest_orders SET status = $2, updated_at = $3
		WHERE id = $1 AND status = ANY($4)
		RETURNING `+orderColumns,
		id, string(to), requestcontext.Now(ctx), pq.Array(allowed))
	o, err := scanOrder(row)
	if err == nil {
		return o, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update order %s: %w", id, err)
	}

	var current string
	err = s.db.QueryRowContext(ctx, `SELECT status FROM interest_orders WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order %s: %w", id, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select order %s: %w", id, err)
	}
	return nil, fmt.Errorf("order %s is %s: %w", id, current, sentinel.ErrInvalidState)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*models.InterestOrder, error) {
	var (
		o            models.InterestOrder
		buyer, asset string
		budget, tl   sql.NullString
		status       string
	)
	if err := row.Scan(&o.ID, &buyer, &asset, &o.Message, &o.ContactInfo,
		&budget, &tl, &status, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if o.BuyerAddress, err = address.Parse(buyer); err != nil {
		return nil, fmt.Errorf("buyer address %q: %w", buyer, sentinel.ErrInvalidState)
	}
	if o.AssetAddress, err = address.Parse(asset); err != nil {
		return nil, fmt.Errorf("asset address %q: %w", asset, sentinel.ErrInvalidState)
	}
	o.Status = models.Status(status)
	if budget.Valid {
		o.Budget = &budget.String
	}
	if tl.Valid {
		o.Timeline = &tl.String
	}
	return &o, nil
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func nullAddress(a *address.Address) sql.NullString {
	if a == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: a.String(), Valid: true}
}
