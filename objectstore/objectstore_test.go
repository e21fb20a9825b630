package objectstore

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func TestLocalPutWritesFileAndReturnsURL(t *testing.T) {
	dir := t.TempDir()
	store := &Local{Dir: dir, BaseURL: "http://localhost:3000/public/uploads/"}

	url, err := store.Put(context.Background(), Object{
		Key:         "files/1-abc.txt",
		ContentType: "text/plain",
		Size:        5,
		Body:        strings.NewReader("hello"),
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if url != "http://localhost:3000/public/uploads/files/1-abc.txt" {
		t.Fatalf("unexpected url %q", url)
	}
	data, err := os.ReadFile(filepath.Join(dir, "files", "1-abc.txt"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestLocalPutRefusesOverwrite(t *testing.T) {
	store := &Local{Dir: t.TempDir(), BaseURL: "/u"}
	obj := func() Object { return Object{Key: "images/a.png", Body: strings.NewReader("x")} }

	if _, err := store.Put(context.Background(), obj()); err != nil {
		t.Fatalf("first put: %v", err)
	}
	if _, err := store.Put(context.Background(), obj()); err == nil {
		t.Fatalf("expected second put with same key to fail")
	}
}

func TestLocalPutStaysInsideDir(t *testing.T) {
	dir := t.TempDir()
	store := &Local{Dir: filepath.Join(dir, "uploads"), BaseURL: "/u"}

	url, err := store.Put(context.Background(), Object{Key: "../../escape.txt", Body: strings.NewReader("x")})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if url != "/u/escape.txt" {
		t.Fatalf("unexpected url %q", url)
	}
	if _, err := os.Stat(filepath.Join(dir, "uploads", "escape.txt")); err != nil {
		t.Fatalf("expected file inside upload dir: %v", err)
	}
}

func TestNewKeyFormat(t *testing.T) {
	re := regexp.MustCompile(`^images/\d{13}-[0-9a-f]{8}\.png$`)
	key := NewKey("images", ".PNG")
	if !re.MatchString(key) {
		t.Fatalf("unexpected key %q", key)
	}
	if NewKey("images", "png") == NewKey("images", "png") {
		t.Fatalf("expected distinct keys")
	}
	if !strings.HasSuffix(NewKey("files", ""), ".bin") {
		t.Fatalf("expected .bin fallback extension")
	}
}

func TestNewRequiresSomeStorage(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected error without storage config")
	}
	s, err := New(Config{LocalDir: t.TempDir()})
	if err != nil {
		t.Fatalf("new local: %v", err)
	}
	if _, ok := s.(*Local); !ok {
		t.Fatalf("expected *Local, got %T", s)
	}
}
