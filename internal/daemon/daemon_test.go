package daemon

import (
	"context"
	"testing"

	"clipper/internal/logging"
	"clipper/internal/testsupport"
)

func TestNewWiresRealDependencies(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())

	d, err := New(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop()

	if d.Addr() == "" {
		t.Fatal("daemon did not bind an address")
	}
}

func TestNewRejectsUnknownStorageBackend(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Storage.Backend = "tape"

	if _, err := New(context.Background(), cfg, logging.NewNop()); err == nil {
		t.Fatal("expected error for unknown storage backend")
	}
}
