package postgres

import (
	"context"
	"errors"
	"testing"
)

func TestSchemaProbeRetriesAfterContextFailure(t *testing.T) {
	t.Parallel()

	calls := 0
	probe := &SchemaProbe{}
	probe.check = func(context.Context) error {
		calls++
		if calls == 1 {
			return context.Canceled
		}
		return nil
	}

	// A dead caller context must not decide the schema question for the
	// whole process.
	if probe.SecuritySchemaReady(context.Background()) {
		t.Fatalf("probe must answer false while the context failure is unresolved")
	}
	if !probe.SecuritySchemaReady(context.Background()) {
		t.Fatalf("probe must retry and report the schema after a transient context failure")
	}

	if !probe.SecuritySchemaReady(context.Background()) || calls != 2 {
		t.Fatalf("resolved answer must be memoized, got %d probe queries", calls)
	}
}

func TestSchemaProbeMemoizesAbsentSchema(t *testing.T) {
	t.Parallel()

	calls := 0
	probe := &SchemaProbe{}
	probe.check = func(context.Context) error {
		calls++
		return errors.New(`column "failed_login_attempts" does not exist`)
	}

	if probe.SecuritySchemaReady(context.Background()) {
		t.Fatalf("missing schema must read as not ready")
	}
	if probe.SecuritySchemaReady(context.Background()) {
		t.Fatalf("absent answer must stay memoized")
	}
	if calls != 1 {
		t.Fatalf("expected a single probe query, got %d", calls)
	}
}
