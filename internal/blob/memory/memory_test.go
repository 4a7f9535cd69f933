package memory

import (
	"context"
	"testing"
)

func TestStoreGetSet(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}

	in := []byte(`[1,2,3]`)
	if err := s.Set(ctx, "k", in); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	in[0] = 'x'

	got, ok, err := s.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("get failed: ok=%v err=%v", ok, err)
	}
	if string(got) != `[1,2,3]` {
		t.Fatalf("stored value was aliased: %s", got)
	}
	got[0] = 'y'
	again, _, _ := s.Get(ctx, "k")
	if string(again) != `[1,2,3]` {
		t.Fatalf("returned value was aliased: %s", again)
	}
}

func TestStoreDeleteClear(t *testing.T) {
	ctx := context.Background()
	s := NewWith(map[string][]byte{"a": []byte("1"), "b": []byte("2")})

	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("deleting a missing key must not fail: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "a"); ok {
		t.Fatal("a should be gone")
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get(ctx, "b"); ok {
		t.Fatal("b should be gone after clear")
	}
}
