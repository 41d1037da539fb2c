package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSQLMigrations_HaveGooseDirectives(t *testing.T) {
	dir := repoMigrationsDir(t)
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir(%s): %v", dir, err)
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		b, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			t.Fatalf("ReadFile(%s): %v", e.Name(), err)
		}
		s := string(b)
		up := strings.Index(s, "-- +goose Up")
		down := strings.Index(s, "-- +goose Down")
		if up < 0 || down < 0 {
			t.Fatalf("%s missing goose Up/Down directives", e.Name())
		}
		if down < up {
			t.Fatalf("%s has Down before Up", e.Name())
		}
	}
}
