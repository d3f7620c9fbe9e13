package iopool

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func tempFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	return path
}

func TestPoolLowestFreeSlot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := tempFile(t, dir, "a")
	b := tempFile(t, dir, "b")
	c := tempFile(t, dir, "c")

	p := New(3, nil)
	fa, err := p.OpenRead(a)
	if err != nil {
		t.Fatalf("open a: %v", err)
	}
	fb, err := p.OpenRead(b)
	if err != nil {
		t.Fatalf("open b: %v", err)
	}
	if got, _ := p.Path(0); got != a {
		t.Fatalf("slot 0: got %q want %q", got, a)
	}
	if got, _ := p.Path(1); got != b {
		t.Fatalf("slot 1: got %q want %q", got, b)
	}

	// Freeing slot 0 makes it the next slot handed out.
	if err := fa.Close(); err != nil {
		t.Fatalf("close a: %v", err)
	}
	fc, err := p.OpenRead(c)
	if err != nil {
		t.Fatalf("open c: %v", err)
	}
	if got, _ := p.Path(0); got != c {
		t.Fatalf("reused slot 0: got %q want %q", got, c)
	}

	_ = fb.Close()
	_ = fc.Close()
	if p.InUse() != 0 {
		t.Fatalf("in use after closes: %d", p.InUse())
	}
}

func TestPoolExhaustion(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := tempFile(t, dir, "a")
	b := tempFile(t, dir, "b")

	p := New(1, nil)
	fa, err := p.OpenRead(a)
	if err != nil {
		t.Fatalf("open a: %v", err)
	}
	if _, err := p.OpenRead(b); !errors.Is(err, ErrNoFreeSlots) {
		t.Fatalf("full pool: got %v want ErrNoFreeSlots", err)
	}
	if err := fa.Close(); err != nil {
		t.Fatalf("close a: %v", err)
	}
	fb, err := p.OpenRead(b)
	if err != nil {
		t.Fatalf("open after release: %v", err)
	}
	_ = fb.Close()
}

func TestPoolFailedOpenFreesSlot(t *testing.T) {
	t.Parallel()

	p := New(1, nil)
	if _, err := p.OpenRead(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatalf("open of missing file succeeded")
	}
	if p.InUse() != 0 {
		t.Fatalf("failed open leaked a slot")
	}
}

func TestPoolDoubleCloseIsSafe(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := tempFile(t, dir, "a")
	b := tempFile(t, dir, "b")

	p := New(1, nil)
	fa, err := p.OpenRead(a)
	if err != nil {
		t.Fatalf("open a: %v", err)
	}
	_ = fa.Close()
	fb, err := p.OpenRead(b)
	if err != nil {
		t.Fatalf("open b: %v", err)
	}
	// Closing a again must not free b's slot.
	_ = fa.Close()
	if got, _ := p.Path(0); got != b {
		t.Fatalf("slot 0 after stale close: got %q want %q", got, b)
	}
	_ = fb.Close()

	if _, err := p.Path(0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("freed slot lookup: got %v want ErrNotFound", err)
	}
}
