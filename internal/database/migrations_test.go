package database

import (
	"testing"
	"testing/fstest"

	"github.com/nikhilbhutani/podcastsummarizer/migrations"
)

func TestPendingFilesSortedSQLOnly(t *testing.T) {
	fsys := fstest.MapFS{
		"010_b.sql": {Data: []byte("SELECT 1")},
		"002_a.sql": {Data: []byte("SELECT 1")},
		"README.md": {Data: []byte("docs")},
	}
	got, err := pendingFiles(fsys)
	if err != nil {
		t.Fatalf("pendingFiles() error = %v", err)
	}
	if len(got) != 2 || got[0] != "002_a.sql" || got[1] != "010_b.sql" {
		t.Fatalf("pendingFiles() = %v", got)
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	got, err := pendingFiles(migrations.FS)
	if err != nil {
		t.Fatalf("pendingFiles() error = %v", err)
	}
	if len(got) == 0 || got[0] != "001_process_records.sql" {
		t.Fatalf("embedded migrations = %v", got)
	}
}
