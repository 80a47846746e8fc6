package store

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGetRegister(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	reg := Register{
		KeyHash:  "abc123",
		KeyJSON:  `["retro-gaming","daily"]`,
		Document: `{"count":1}`,
		Revision: 1,
		Seq:      7,
	}
	if err := s.PutRegister(ctx, reg); err != nil {
		t.Fatalf("PutRegister() failed: %v", err)
	}

	got, err := s.GetRegister(ctx, "abc123")
	if err != nil {
		t.Fatalf("GetRegister() failed: %v", err)
	}
	if got == nil {
		t.Fatal("GetRegister() returned nil for existing key")
	}
	if *got != reg {
		t.Errorf("GetRegister() = %+v, expected %+v", *got, reg)
	}
}

func TestGetRegister_Missing(t *testing.T) {
	s := openTestStore(t)

	got, err := s.GetRegister(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetRegister() failed: %v", err)
	}
	if got != nil {
		t.Errorf("GetRegister() = %+v, expected nil for missing key", *got)
	}
}

func TestPutRegister_Upsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := Register{KeyHash: "k1", KeyJSON: `["a"]`, Document: `{"n":1}`, Revision: 1, Seq: 1}
	if err := s.PutRegister(ctx, first); err != nil {
		t.Fatalf("PutRegister() failed: %v", err)
	}

	second := first
	second.Document = `{"n":3}`
	second.Revision = 2
	second.Seq = 5
	if err := s.PutRegister(ctx, second); err != nil {
		t.Fatalf("PutRegister() upsert failed: %v", err)
	}

	got, err := s.GetRegister(ctx, "k1")
	if err != nil {
		t.Fatalf("GetRegister() failed: %v", err)
	}
	if got == nil || *got != second {
		t.Errorf("GetRegister() = %+v, expected %+v", got, second)
	}

	// Upsert must not create a second row
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM registers").Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("register count = %d, expected 1", count)
	}
}

func TestListRegisters_Empty(t *testing.T) {
	s := openTestStore(t)

	registers, err := s.ListRegisters(context.Background())
	if err != nil {
		t.Fatalf("ListRegisters() failed: %v", err)
	}
	if registers == nil {
		t.Error("ListRegisters() returned nil, expected empty slice")
	}
	if len(registers) != 0 {
		t.Errorf("ListRegisters() returned %d registers, expected 0", len(registers))
	}
}

func TestListRegisters_DeterministicOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// Insert out of key order
	for _, reg := range []Register{
		{KeyHash: "cc", KeyJSON: `["c"]`, Document: `3`, Revision: 1, Seq: 1},
		{KeyHash: "aa", KeyJSON: `["a"]`, Document: `1`, Revision: 1, Seq: 2},
		{KeyHash: "bb", KeyJSON: `["b"]`, Document: `2`, Revision: 1, Seq: 3},
	} {
		if err := s.PutRegister(ctx, reg); err != nil {
			t.Fatalf("PutRegister(%s) failed: %v", reg.KeyHash, err)
		}
	}

	registers, err := s.ListRegisters(ctx)
	if err != nil {
		t.Fatalf("ListRegisters() failed: %v", err)
	}

	var hashes []string
	for _, reg := range registers {
		hashes = append(hashes, reg.KeyHash)
	}
	expected := []string{"aa", "bb", "cc"}
	if len(hashes) != len(expected) {
		t.Fatalf("ListRegisters() returned %d registers, expected %d", len(hashes), len(expected))
	}
	for i := range expected {
		if hashes[i] != expected[i] {
			t.Errorf("register[%d] = %q, expected %q", i, hashes[i], expected[i])
		}
	}
}

func TestPurgeRegisters(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, keyHash := range []string{"x", "y"} {
		reg := Register{KeyHash: keyHash, KeyJSON: `[null]`, Document: `{}`, Revision: 1, Seq: 1}
		if err := s.PutRegister(ctx, reg); err != nil {
			t.Fatalf("PutRegister() failed: %v", err)
		}
	}

	n, err := s.PurgeRegisters(ctx)
	if err != nil {
		t.Fatalf("PurgeRegisters() failed: %v", err)
	}
	if n != 2 {
		t.Errorf("PurgeRegisters() = %d, expected 2", n)
	}

	registers, err := s.ListRegisters(ctx)
	if err != nil {
		t.Fatalf("ListRegisters() failed: %v", err)
	}
	if len(registers) != 0 {
		t.Errorf("expected empty store after purge, got %d registers", len(registers))
	}
}
