// Package archivetest writes zip fixtures for tests.
package archivetest

import (
	"archive/zip"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// WriteZip writes a zip file named name into a fresh test temp dir and
// returns its path. Entries are written in order when given, else sorted.
func WriteZip(t testing.TB, name string, entries map[string][]byte, order ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	defer f.Close()

	if len(order) == 0 {
		for n := range entries {
			order = append(order, n)
		}
		sort.Strings(order)
	}

	zw := zip.NewWriter(f)
	for _, n := range order {
		w, err := zw.Create(n)
		if err != nil {
			t.Fatalf("create entry %s: %v", n, err)
		}
		if _, err := w.Write(entries[n]); err != nil {
			t.Fatalf("write entry %s: %v", n, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return path
}
