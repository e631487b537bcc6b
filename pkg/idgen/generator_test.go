package idgen

import "testing"

func TestSnowflakeGenerator_UniqueIDs(t *testing.T) {
	gen, err := NewSnowflakeGenerator(1)
	if err != nil {
		t.Fatalf("failed to create generator: %v", err)
	}

	seen := make(map[int64]bool)
	for i := 0; i < 1000; i++ {
		id := gen.GenerateID()
		if seen[id] {
			t.Fatalf("duplicate id generated: %d", id)
		}
		seen[id] = true
	}
}

func TestSnowflakeGenerator_RequestID(t *testing.T) {
	gen, err := NewSnowflakeGenerator(1)
	if err != nil {
		t.Fatalf("failed to create generator: %v", err)
	}

	a := gen.RequestID()
	b := gen.RequestID()

	if a == "" || b == "" {
		t.Fatal("expected non-empty request ids")
	}
	if a == b {
		t.Fatalf("expected distinct request ids, got %q twice", a)
	}
}

func TestNewSnowflakeGenerator_InvalidNode(t *testing.T) {
	if _, err := NewSnowflakeGenerator(1024); err == nil {
		t.Fatal("expected error for node id out of range")
	}
}
