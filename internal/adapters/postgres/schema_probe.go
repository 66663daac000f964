package postgres

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"gorm.io/gorm"
)

// SchemaProbe memoizes, once per process, whether the security schema has
// been migrated. The check is a harmless read against a column that only
// exists post-migration; a failed query reads as "absent". A context that
// died before the query answered says nothing about the schema, so that
// outcome is not memoized and the next caller probes again.
type SchemaProbe struct {
	db    *gorm.DB
	check func(ctx context.Context) error

	mu       sync.Mutex
	resolved bool
	ready    bool
}

func NewSchemaProbe(db *gorm.DB) *SchemaProbe {
	p := &SchemaProbe{db: db}
	p.check = p.querySecurityColumns
	return p
}

func (p *SchemaProbe) querySecurityColumns(ctx context.Context) error {
	var n int
	return p.db.WithContext(ctx).
		Raw("SELECT COALESCE(MAX(failed_login_attempts), 0) FROM users").
		Scan(&n).Error
}

func (p *SchemaProbe) SecuritySchemaReady(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.resolved {
		return p.ready
	}

	err := p.check(ctx)
	if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return false
	}

	p.resolved = true
	p.ready = err == nil
	if !p.ready {
		slog.Default().WarnContext(ctx, "security schema not present, running in degraded mode",
			"module", "postgres",
			"layer", "adapter",
			"operation", "schema_probe",
			"outcome", "degraded",
			"error", err,
		)
	}
	return p.ready
}
