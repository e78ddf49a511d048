package migrations

import (
	"io/fs"
	"sort"
	"strings"
	"testing"
)

func TestAuditMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(AuditFS, "audit")
	if err != nil {
		t.Fatalf("read audit migrations: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected audit migrations to be embedded")
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	if files[0] != "001_audit_events.sql" {
		t.Fatalf("expected first audit migration 001_audit_events.sql, got %s", files[0])
	}

	content, err := fs.ReadFile(AuditFS, "audit/"+files[0])
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if !strings.Contains(string(content), "-- +migrate Up") {
		t.Fatal("expected migration to carry an Up section")
	}
}
