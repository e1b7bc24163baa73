package memstore_test

import (
	"context"
	"testing"

	"github.com/voxkey/voxkey/pkg/storage/memstore"
)

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()

	if err := s.Set(ctx, "voiceSettings", `{"speed":1}`); err != nil {
		t.Fatalf("Set: %v", err)
	}

	v, ok, err := s.Get(ctx, "voiceSettings")
	if err != nil || !ok {
		t.Fatalf("Get = %q, %v, %v", v, ok, err)
	}
	if v != `{"speed":1}` {
		t.Errorf("value = %q", v)
	}
}

func TestStore_MissingKey(t *testing.T) {
	s := memstore.New()

	_, ok, err := s.Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("ok = true for missing key")
	}
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()

	if err := s.Set(ctx, "isMuted", "true"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "isMuted"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "isMuted"); ok {
		t.Error("key survived Delete")
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d, want 0", s.Len())
	}
}
