package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"communityfund/internal/adapter/boltstore"
	"communityfund/internal/adapter/memstore"
	"communityfund/internal/infra"
)

func TestOpenStoreMemory(t *testing.T) {
	store, closeFn, err := OpenStore(context.Background(), &infra.Config{StoreDriver: infra.StoreDriverMemory}, zerolog.Nop())
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer closeFn()
	if _, ok := store.(*memstore.Store); !ok {
		t.Fatalf("store = %T, want *memstore.Store", store)
	}
}

func TestOpenStoreBolt(t *testing.T) {
	cfg := &infra.Config{StoreDriver: infra.StoreDriverBolt, BoltPath: filepath.Join(t.TempDir(), "fund.db")}
	store, closeFn, err := OpenStore(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer closeFn()
	if _, ok := store.(*boltstore.Store); !ok {
		t.Fatalf("store = %T, want *boltstore.Store", store)
	}
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	_, closeFn, err := OpenStore(context.Background(), &infra.Config{StoreDriver: "mongo"}, zerolog.Nop())
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
	closeFn()
}
