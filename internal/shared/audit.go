package shared

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// AuditLog is one row of audit_logs.
type AuditLog struct {
	ActorID  int64
	TenantID int64
	Action   string
	Entity   string
	EntityID string
	Meta     map[string]any
	At       time.Time
}

func (a AuditLog) validate() error {
	var errs []error
	if a.TenantID <= 0 {
		errs = append(errs, errors.New("tenant_id"))
	}
	if a.Action == "" {
		errs = append(errs, errors.New("action"))
	}
	if a.Entity == "" {
		errs = append(errs, errors.New("entity"))
	}
	if a.EntityID == "" {
		errs = append(errs, errors.New("entity_id"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("audit log missing fields: %w", errors.Join(errs...))
	}
	return nil
}

const insertAuditSQL = `INSERT INTO audit_logs (tenant_id, actor_id, action, entity, entity_id, meta, occurred_at)
VALUES (@tenant_id, @actor_id, @action, @entity, @entity_id, @meta, @occurred_at)`

// AuditLogger appends rows to audit_logs.
type AuditLogger struct {
	db  Execer
	now func() time.Time
}

// NewAuditLogger returns a logger writing through db.
func NewAuditLogger(db Execer) *AuditLogger {
	return &AuditLogger{db: db, now: time.Now}
}

// In rebinds the logger to db, usually the open transaction of a write.
func (l *AuditLogger) In(db Execer) *AuditLogger {
	return &AuditLogger{db: db, now: l.now}
}

// Record inserts entry. A zero At is stamped with the current UTC time and
// empty Meta is stored as NULL.
func (l *AuditLogger) Record(ctx context.Context, entry AuditLog) error {
	if l == nil || l.db == nil {
		return errors.New("audit logger not initialised")
	}
	if err := entry.validate(); err != nil {
		return err
	}
	var meta []byte
	if len(entry.Meta) > 0 {
		raw, err := json.Marshal(entry.Meta)
		if err != nil {
			return fmt.Errorf("audit meta: %w", err)
		}
		meta = raw
	}
	at := entry.At
	if at.IsZero() {
		at = l.now()
	}
	_, err := l.db.Exec(ctx, insertAuditSQL, pgx.NamedArgs{
		"tenant_id":   entry.TenantID,
		"actor_id":    entry.ActorID,
		"action":      entry.Action,
		"entity":      entry.Entity,
		"entity_id":   entry.EntityID,
		"meta":        meta,
		"occurred_at": at.UTC(),
	})
	return err
}
