package store

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	if _, err := kv.Get(ctx, "gallery"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get on empty store err = %v, want ErrNotFound", err)
	}
	if err := kv.Put(ctx, "gallery", []byte("one")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := kv.Put(ctx, "gallery", []byte("two")); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, err := kv.Get(ctx, "gallery")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !bytes.Equal(got, []byte("two")) {
		t.Errorf("Get = %q, want %q (whole-value overwrite)", got, "two")
	}
	if _, err := kv.Get(ctx, "other"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get other err = %v, want ErrNotFound", err)
	}
}

func TestMemory(t *testing.T) {
	exerciseKV(t, NewMemory())
}

func TestMemory_CopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	v := []byte("abc")
	if err := m.Put(ctx, "k", v); err != nil {
		t.Fatal(err)
	}
	v[0] = 'X'
	got, _ := m.Get(ctx, "k")
	got[1] = 'Y'
	again, _ := m.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("stored value mutated: %q", again)
	}
}

func TestMemory_PutErr(t *testing.T) {
	m := NewMemory()
	m.PutErr = errors.New("disk full")
	if err := m.Put(context.Background(), "k", nil); err == nil {
		t.Error("expected injected error")
	}
}

func TestSQLite_InMemory(t *testing.T) {
	s, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer s.Close()
	exerciseKV(t, s)
}

func TestSQLite_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "booth.db")

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := s.Put(ctx, "gallery", []byte{0x28, 0xb5, 0x2f, 0xfd}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, err := s.Get(ctx, "gallery")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if !bytes.Equal(got, []byte{0x28, 0xb5, 0x2f, 0xfd}) {
		t.Errorf("Get = %x", got)
	}
}
