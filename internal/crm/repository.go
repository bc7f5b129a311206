package crm

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/repdesk/repdesk/internal/platform/db"
	"github.com/repdesk/repdesk/internal/shared"
)

// Repository opens write transactions.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Tx) error) error
}

// Tx is the set of writes available inside one transaction.
type Tx interface {
	ClaimKey(ctx context.Context, key, module string) error
	RepresentativeExists(ctx context.Context, tenantID int64, id string) (bool, error)
	InsertVisit(ctx context.Context, v Visit) error
	InsertOrder(ctx context.Context, o Order) error
	InsertCollection(ctx context.Context, c Collection) error
	Audit(ctx context.Context, entry shared.AuditLog) error
}

const (
	representativeExistsSQL = `SELECT EXISTS (SELECT 1 FROM representatives WHERE tenant_id = $1 AND id = $2)`

	insertVisitSQL = `INSERT INTO visits (id, tenant_id, representative_id, clinic_id, visit_date, notes)
VALUES ($1::uuid, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''))`

	insertOrderSQL = `INSERT INTO orders (id, tenant_id, representative_id, clinic_id, order_date, total_amount)
VALUES ($1::uuid, $2, $3, NULLIF($4, ''), $5, $6)`

	insertOrderItemSQL = `INSERT INTO order_items (order_id, line_no, product_id, product_name, price, quantity)
VALUES ($1::uuid, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6)`

	insertCollectionSQL = `INSERT INTO collections (id, tenant_id, representative_id, clinic_id, collection_date, amount, reference)
VALUES ($1::uuid, $2, $3, NULLIF($4, ''), $5, $6, NULLIF($7, ''))`
)

type repository struct {
	pool        *pgxpool.Pool
	idempotency *shared.IdempotencyStore
	audit       *shared.AuditLogger
}

// NewRepository returns a pgx backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{
		pool:        pool,
		idempotency: shared.NewIdempotencyStore(pool),
		audit:       shared.NewAuditLogger(pool),
	}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Tx) error) error {
	return db.WithTxOptions(ctx, r.pool, db.ReadCommitted, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{
			tx:          tx,
			idempotency: r.idempotency.In(tx),
			audit:       r.audit.In(tx),
		})
	})
}

type txRepository struct {
	tx          pgx.Tx
	idempotency *shared.IdempotencyStore
	audit       *shared.AuditLogger
}

func (t *txRepository) ClaimKey(ctx context.Context, key, module string) error {
	return t.idempotency.CheckAndInsert(ctx, key, module)
}

func (t *txRepository) RepresentativeExists(ctx context.Context, tenantID int64, id string) (bool, error) {
	var ok bool
	if err := t.tx.QueryRow(ctx, representativeExistsSQL, tenantID, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("crm: lookup representative: %w", err)
	}
	return ok, nil
}

func (t *txRepository) InsertVisit(ctx context.Context, v Visit) error {
	_, err := t.tx.Exec(ctx, insertVisitSQL, v.ID, v.TenantID, v.RepresentativeID, v.ClinicID, v.VisitDate, v.Notes)
	if err != nil {
		return fmt.Errorf("crm: insert visit: %w", err)
	}
	return nil
}

func (t *txRepository) InsertOrder(ctx context.Context, o Order) error {
	if _, err := t.tx.Exec(ctx, insertOrderSQL, o.ID, o.TenantID, o.RepresentativeID, o.ClinicID, o.OrderDate, o.TotalAmount); err != nil {
		return fmt.Errorf("crm: insert order: %w", err)
	}
	if len(o.Items) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, item := range o.Items {
		batch.Queue(insertOrderItemSQL, o.ID, item.LineNo, item.ProductID, item.ProductName, item.Price, item.Quantity)
	}
	results := t.tx.SendBatch(ctx, batch)
	for range o.Items {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return fmt.Errorf("crm: insert order items: %w", err)
		}
	}
	return results.Close()
}

func (t *txRepository) InsertCollection(ctx context.Context, c Collection) error {
	_, err := t.tx.Exec(ctx, insertCollectionSQL, c.ID, c.TenantID, c.RepresentativeID, c.ClinicID, c.CollectionDate, c.Amount, c.Reference)
	if err != nil {
		return fmt.Errorf("crm: insert collection: %w", err)
	}
	return nil
}

func (t *txRepository) Audit(ctx context.Context, entry shared.AuditLog) error {
	if err := t.audit.Record(ctx, entry); err != nil {
		return fmt.Errorf("crm: audit: %w", err)
	}
	return nil
}
