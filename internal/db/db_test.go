package db

import (
	"path/filepath"
	"testing"
)

func TestOpenMemory(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	// Verify tables exist by counting rows in each one.
	tables := []string{"risk_events", "audit_entries", "chat_sessions", "chat_messages"}

	for _, table := range tables {
		var count int
		err := d.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count)
		if err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestMigrateIdempotent(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	// Running migrate again should not fail.
	if err := d.migrate(); err != nil {
		t.Fatalf("second migrate() error: %v", err)
	}
}

func TestRiskLevelConstraint(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	_, err = d.Exec(`INSERT INTO risk_events (event_id, occurred_at, risk_level) VALUES ('EVT-1', '2024-01-01 00:00:00', 'Extremo')`)
	if err == nil {
		t.Fatal("expected check constraint violation for unknown risk level")
	}

	_, err = d.Exec(`INSERT INTO risk_events (event_id, occurred_at, risk_level, status) VALUES ('EVT-2', '2024-01-01 00:00:00', 'Alto', 'fechado')`)
	if err == nil {
		t.Fatal("expected check constraint violation for unknown status")
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "riskdesk.db")
	d, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer d.Close()

	if d.Path() != path {
		t.Errorf("Path() = %q, want %q", d.Path(), path)
	}
}

func TestUnicodeLower(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	defer d.Close()

	var got string
	if err := d.QueryRow("SELECT " + UnicodeLower + "('INVASÃO TRANSFERÊNCIA')").Scan(&got); err != nil {
		t.Fatalf("query: %v", err)
	}
	if got != "invasão transferência" {
		t.Errorf("%s() = %q, want %q", UnicodeLower, got, "invasão transferência")
	}

	var null *string
	if err := d.QueryRow("SELECT " + UnicodeLower + "(NULL)").Scan(&null); err != nil {
		t.Fatalf("query NULL: %v", err)
	}
	if null != nil {
		t.Errorf("%s(NULL) = %q, want NULL", UnicodeLower, *null)
	}
}
