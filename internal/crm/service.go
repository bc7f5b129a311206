package crm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/repdesk/repdesk/internal/shared"
)

// Invalidator drops cached report datasets after a write.
type Invalidator interface {
	Bump(ctx context.Context) error
}

// Service records CRM activity for representatives.
type Service struct {
	repo   Repository
	cache  Invalidator
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// NewService constructs the CRM service.
func NewService(repo Repository, cache Invalidator, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		logger: logger,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
}

// WithNow overrides the clock used for missing dates.
func (s *Service) WithNow(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// WriteContext identifies who writes and the optional idempotency key.
type WriteContext struct {
	Principal      shared.Principal
	IdempotencyKey string
}

// LogVisit stores a visit for the representative.
func (s *Service) LogVisit(ctx context.Context, wc WriteContext, repID string, in VisitInput) (Visit, error) {
	visit := Visit{
		ID:               s.newID(),
		TenantID:         wc.Principal.TenantID,
		RepresentativeID: repID,
		ClinicID:         strings.TrimSpace(in.ClinicID),
		VisitDate:        s.dateOrNow(in.VisitDate),
		Notes:            strings.TrimSpace(in.Notes),
	}
	err := s.write(ctx, wc, ModuleVisits, repID, func(ctx context.Context, tx Tx) error {
		if err := tx.InsertVisit(ctx, visit); err != nil {
			return err
		}
		return tx.Audit(ctx, s.auditEntry(wc, "create", "visit", visit.ID, map[string]any{
			"representative_id": repID,
			"clinic_id":         visit.ClinicID,
		}))
	})
	if err != nil {
		return Visit{}, err
	}
	return visit, nil
}

// CreateOrder stores an order with its lines. A missing total is computed
// from the lines.
func (s *Service) CreateOrder(ctx context.Context, wc WriteContext, repID string, in OrderInput) (Order, error) {
	if in.TotalAmount == nil && len(in.Items) == 0 {
		return Order{}, ErrEmptyOrder
	}
	order := Order{
		ID:               s.newID(),
		TenantID:         wc.Principal.TenantID,
		RepresentativeID: repID,
		ClinicID:         strings.TrimSpace(in.ClinicID),
		OrderDate:        s.dateOrNow(in.OrderDate),
		Items:            make([]OrderItem, 0, len(in.Items)),
	}
	for i, item := range in.Items {
		order.Items = append(order.Items, OrderItem{
			LineNo:      i + 1,
			ProductID:   strings.TrimSpace(item.ProductID),
			ProductName: strings.TrimSpace(item.ProductName),
			Price:       money(item.Price),
			Quantity:    quantity(item.Quantity),
		})
	}
	if in.TotalAmount != nil {
		order.TotalAmount = money(*in.TotalAmount)
	} else {
		order.TotalAmount = orderTotal(order.Items)
	}

	err := s.write(ctx, wc, ModuleOrders, repID, func(ctx context.Context, tx Tx) error {
		if err := tx.InsertOrder(ctx, order); err != nil {
			return err
		}
		return tx.Audit(ctx, s.auditEntry(wc, "create", "order", order.ID, map[string]any{
			"representative_id": repID,
			"clinic_id":         order.ClinicID,
			"total_amount":      order.TotalAmount.String(),
			"lines":             len(order.Items),
		}))
	})
	if err != nil {
		return Order{}, err
	}
	return order, nil
}

// RecordCollection stores a payment collected from a clinic.
func (s *Service) RecordCollection(ctx context.Context, wc WriteContext, repID string, in CollectionInput) (Collection, error) {
	collection := Collection{
		ID:               s.newID(),
		TenantID:         wc.Principal.TenantID,
		RepresentativeID: repID,
		ClinicID:         strings.TrimSpace(in.ClinicID),
		CollectionDate:   s.dateOrNow(in.CollectionDate),
		Amount:           money(in.Amount),
		Reference:        strings.TrimSpace(in.Reference),
	}
	err := s.write(ctx, wc, ModuleCollections, repID, func(ctx context.Context, tx Tx) error {
		if err := tx.InsertCollection(ctx, collection); err != nil {
			return err
		}
		return tx.Audit(ctx, s.auditEntry(wc, "create", "collection", collection.ID, map[string]any{
			"representative_id": repID,
			"clinic_id":         collection.ClinicID,
			"amount":            collection.Amount.String(),
		}))
	})
	if err != nil {
		return Collection{}, err
	}
	return collection, nil
}

// write claims the idempotency key, checks the representative and runs fn in
// one transaction, then invalidates the report cache.
func (s *Service) write(ctx context.Context, wc WriteContext, module, repID string, fn func(context.Context, Tx) error) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		if key := strings.TrimSpace(wc.IdempotencyKey); key != "" {
			if err := tx.ClaimKey(ctx, key, module); err != nil {
				if errors.Is(err, shared.ErrIdempotencyConflict) {
					return ErrDuplicateRequest
				}
				return fmt.Errorf("crm: claim idempotency key: %w", err)
			}
		}
		ok, err := tx.RepresentativeExists(ctx, wc.Principal.TenantID, repID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrUnknownRepresentative
		}
		return fn(ctx, tx)
	})
	if err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Bump(ctx); err != nil && s.logger != nil {
			s.logger.Warn("crm cache bump failed", slog.String("module", module), slog.Any("error", err))
		}
	}
	return nil
}

func (s *Service) auditEntry(wc WriteContext, action, entity, id string, meta map[string]any) shared.AuditLog {
	return shared.AuditLog{
		ActorID:  wc.Principal.UserID,
		TenantID: wc.Principal.TenantID,
		Action:   action,
		Entity:   entity,
		EntityID: id,
		Meta:     meta,
		At:       s.now().UTC(),
	}
}

func (s *Service) dateOrNow(t *time.Time) time.Time {
	if t == nil || t.IsZero() {
		return s.now().UTC()
	}
	return t.UTC()
}
