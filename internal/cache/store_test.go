package cache

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "cache", "ffgraph.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenSQLiteBootstrapsTable(t *testing.T) {
	t.Parallel()

	db, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	var name string
	if err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?;", "compiled_pipeline").Scan(&name); err != nil {
		t.Fatalf("table compiled_pipeline missing: %v", err)
	}
	if err := Bootstrap(context.Background(), db); err != nil {
		t.Fatalf("second Bootstrap: %v", err)
	}
}

func TestPutGetCountsHits(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := openTestStore(t)

	args := []string{"-i", "in.mp4", "out.mp4"}
	put, err := store.Put(ctx, "blake3:abc", "copy", args)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if put.ID == "" || put.Hits != 0 {
		t.Fatalf("put entry = %+v", put)
	}

	got, err := store.Get(ctx, "blake3:abc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !reflect.DeepEqual(got.Args, args) {
		t.Fatalf("args = %v, want %v", got.Args, args)
	}
	if got.Hits != 1 || got.LastHitAt.IsZero() {
		t.Fatalf("hits = %d last_hit_at = %v, want 1 and set", got.Hits, got.LastHitAt)
	}

	got, err = store.Get(ctx, "blake3:abc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Hits != 2 {
		t.Fatalf("hits = %d, want 2", got.Hits)
	}
}

func TestPutKeepsExistingEntry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := openTestStore(t)

	first, err := store.Put(ctx, "blake3:same", "a", []string{"a.mp4"})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	second, err := store.Put(ctx, "blake3:same", "b", []string{"b.mp4"})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if second.ID != first.ID || second.Name != "a" {
		t.Fatalf("second put = %+v, want original entry %+v", second, first)
	}
}

func TestGetMissing(t *testing.T) {
	t.Parallel()
	store := openTestStore(t)

	_, err := store.Get(context.Background(), "blake3:missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get error = %v, want ErrNotFound", err)
	}
	if _, err := store.Put(context.Background(), "", "x", nil); err == nil {
		t.Fatalf("Put with empty fingerprint succeeded")
	}
}

func TestRecentNewestFirst(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := openTestStore(t)

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	step := 0
	store.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Second)
	}
	for _, name := range []string{"one", "two", "three"} {
		if _, err := store.Put(ctx, "blake3:"+name, name, []string{name}); err != nil {
			t.Fatalf("Put %s: %v", name, err)
		}
	}

	recent, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 || recent[0].Name != "three" || recent[1].Name != "two" {
		t.Fatalf("recent = %+v, want [three two]", recent)
	}
	if !recent[0].CreatedAt.Equal(base.Add(3 * time.Second)) {
		t.Fatalf("created_at = %v", recent[0].CreatedAt)
	}
}

func TestValidateFilesystem(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	path := filepath.Join(root, "nested", "dir", "cache.db")

	var inspected string
	err := validateFilesystemWith(path, func(p string) (string, error) {
		inspected = p
		return "ext4", nil
	})
	if err != nil {
		t.Fatalf("local filesystem rejected: %v", err)
	}
	if inspected != root {
		t.Fatalf("inspected %q, want nearest existing path %q", inspected, root)
	}

	err = validateFilesystemWith(path, func(string) (string, error) { return "NFS", nil })
	if err == nil || !strings.Contains(err.Error(), `network filesystem "NFS"`) {
		t.Fatalf("error = %v, want network filesystem rejection", err)
	}

	err = validateFilesystemWith(path, func(string) (string, error) { return "", errors.New("unsupported") })
	if err != nil {
		t.Fatalf("detector failure should not block: %v", err)
	}

	if err := validateFilesystemWith("", nil); err == nil {
		t.Fatalf("empty path accepted")
	}
}
