package services_test

import (
	"context"
	"testing"

	"roster/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRefreshID(ctx, "refresh-42")
	ctx = services.WithTrigger(ctx, "scheduled")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.RefreshIDFromContext(ctx); !ok || id != "refresh-42" {
		t.Fatalf("unexpected refresh id: %v %v", id, ok)
	}
	if trigger, ok := services.TriggerFromContext(ctx); !ok || trigger != "scheduled" {
		t.Fatalf("unexpected trigger: %v %v", trigger, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestTriggerBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithTrigger(ctx, "")
	if _, ok := services.TriggerFromContext(ctx); ok {
		t.Fatal("expected no trigger value")
	}
}
