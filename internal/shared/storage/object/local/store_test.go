package local

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
)

func TestSaveOpenDelete(t *testing.T) {
	ctx := context.Background()
	store := New(t.TempDir())

	key, size, err := store.Save(ctx, "alice@example.com", "resume.pdf", "application/pdf", strings.NewReader("%PDF-1.4 body"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if size != int64(len("%PDF-1.4 body")) {
		t.Fatalf("unexpected size %d", size)
	}

	data, err := store.ReadAll(ctx, key)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != "%PDF-1.4 body" {
		t.Fatalf("unexpected content %q", data)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Open(ctx, key); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not exist after delete, got %v", err)
	}
	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("second Delete should be a no-op: %v", err)
	}
}

func TestOpenRejectsTraversal(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.Open(context.Background(), "../secret"); err == nil {
		t.Fatalf("expected invalid storage key error")
	}
}
