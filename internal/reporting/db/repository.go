// Package reportingdb reads representative activity from PostgreSQL.
package reportingdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/repdesk/repdesk/internal/reporting"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository implements reporting.Repository with pgx.
type Repository struct {
	db DBTX
}

// New constructs a Repository.
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// ListOrders returns every order of the scope with its line items.
func (r *Repository) ListOrders(ctx context.Context, scope reporting.Scope) ([]reporting.Order, error) {
	rows, err := r.db.Query(ctx, listOrders, scope.TenantID, scope.ActorID)
	if err != nil {
		return nil, fmt.Errorf("reportingdb: list orders: %w", err)
	}
	defer rows.Close()

	orders := []reporting.Order{}
	index := map[string]int{}
	for rows.Next() {
		var (
			o           reporting.Order
			date        *time.Time
			totalAmount decimal.NullDecimal
			total       decimal.NullDecimal
		)
		if err := rows.Scan(&o.ID, &o.RepresentativeID, &date, &totalAmount, &total, &o.ClinicID, &o.ClinicName); err != nil {
			return nil, fmt.Errorf("reportingdb: scan order: %w", err)
		}
		o.OrderDate = utcPtr(date)
		o.TotalAmount = floatPtr(totalAmount)
		o.Total = floatPtr(total)
		index[o.ID] = len(orders)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reportingdb: list orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}
	if err := r.attachItems(ctx, orders, index); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *Repository) attachItems(ctx context.Context, orders []reporting.Order, index map[string]int) error {
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	rows, err := r.db.Query(ctx, listOrderItems, ids)
	if err != nil {
		return fmt.Errorf("reportingdb: list order items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			orderID  string
			item     reporting.OrderItem
			price    decimal.NullDecimal
			quantity decimal.NullDecimal
		)
		if err := rows.Scan(&orderID, &item.ProductID, &item.ProductName, &price, &quantity); err != nil {
			return fmt.Errorf("reportingdb: scan order item: %w", err)
		}
		item.Price = floatPtr(price)
		item.Quantity = floatPtr(quantity)
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}
	return rows.Err()
}

// ListVisits returns every visit of the scope.
func (r *Repository) ListVisits(ctx context.Context, scope reporting.Scope) ([]reporting.Visit, error) {
	rows, err := r.db.Query(ctx, listVisits, scope.TenantID, scope.ActorID)
	if err != nil {
		return nil, fmt.Errorf("reportingdb: list visits: %w", err)
	}
	defer rows.Close()
	visits := []reporting.Visit{}
	for rows.Next() {
		var (
			v    reporting.Visit
			date *time.Time
		)
		if err := rows.Scan(&v.ID, &v.RepresentativeID, &date, &v.ClinicID, &v.ClinicName); err != nil {
			return nil, fmt.Errorf("reportingdb: scan visit: %w", err)
		}
		v.VisitDate = utcPtr(date)
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

// ListCollections returns every collection of the scope.
func (r *Repository) ListCollections(ctx context.Context, scope reporting.Scope) ([]reporting.Collection, error) {
	rows, err := r.db.Query(ctx, listCollections, scope.TenantID, scope.ActorID)
	if err != nil {
		return nil, fmt.Errorf("reportingdb: list collections: %w", err)
	}
	defer rows.Close()
	collections := []reporting.Collection{}
	for rows.Next() {
		var (
			c      reporting.Collection
			date   *time.Time
			amount decimal.NullDecimal
		)
		if err := rows.Scan(&c.ID, &c.RepresentativeID, &date, &amount, &c.ClinicID, &c.ClinicName); err != nil {
			return nil, fmt.Errorf("reportingdb: scan collection: %w", err)
		}
		c.CollectionDate = utcPtr(date)
		c.Amount = floatPtr(amount)
		collections = append(collections, c)
	}
	return collections, rows.Err()
}

// GetRepresentative fetches one representative of a tenant.
func (r *Repository) GetRepresentative(ctx context.Context, tenantID int64, actorID string) (reporting.Representative, error) {
	var rep reporting.Representative
	err := r.db.QueryRow(ctx, getRepresentative, tenantID, actorID).
		Scan(&rep.ID, &rep.TenantID, &rep.Name, &rep.Email, &rep.Region, &rep.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return reporting.Representative{}, reporting.ErrRepresentativeNotFound
		}
		return reporting.Representative{}, fmt.Errorf("reportingdb: get representative: %w", err)
	}
	return rep, nil
}

// ActiveRepresentatives lists the scopes worth warming.
func (r *Repository) ActiveRepresentatives(ctx context.Context) ([]reporting.Scope, error) {
	rows, err := r.db.Query(ctx, activeRepresentatives)
	if err != nil {
		return nil, fmt.Errorf("reportingdb: active representatives: %w", err)
	}
	defer rows.Close()
	scopes := []reporting.Scope{}
	for rows.Next() {
		var s reporting.Scope
		if err := rows.Scan(&s.TenantID, &s.ActorID); err != nil {
			return nil, fmt.Errorf("reportingdb: scan representative: %w", err)
		}
		scopes = append(scopes, s)
	}
	return scopes, rows.Err()
}

func floatPtr(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	v := d.Decimal.InexactFloat64()
	return &v
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}

var _ reporting.Repository = (*Repository)(nil)
