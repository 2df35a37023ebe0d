package repo

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/applicationtrack/applicationtrack-backend/internal/domain"
	"github.com/applicationtrack/applicationtrack-backend/internal/status"
)

func TestOpenSQLite_ErrorOnMissingParentDir(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "does-not-exist", "app.db")
	db, err := OpenSQLite(bad)
	if err == nil || db != nil {
		t.Fatalf("expected error opening %q, got db=%v err=%v", bad, db, err)
	}
}

func TestOpenSQLite_AndAutoMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")
	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	for _, m := range []any{&domain.User{}, &domain.Application{}, &domain.Document{}, &domain.Idempotency{}} {
		if !db.Migrator().HasTable(m) {
			t.Fatalf("missing table for %T", m)
		}
	}
}

// Writes must work on the schema OpenSQLite produces, with foreign keys
// enforced: id stays the applications primary key, the documents FK resolves,
// and deleting an application cascades to its documents.
func TestOpenSQLite_SchemaSupportsWritesWithForeignKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.db")
	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	ctx := context.Background()
	now := time.Now().UTC()
	ids := make([]string, 0, 3)
	for _, company := range []string{"Acme", "Beta", "Gamma"} {
		app := &domain.Application{
			ID:          uuid.NewString(),
			UserID:      "u1",
			Company:     company,
			Description: "Backend role",
			AppliedAt:   now,
			Status:      string(status.Pending),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := CreateApplication(ctx, db, app); err != nil {
			t.Fatalf("CreateApplication(%s): %v", company, err)
		}
		ids = append(ids, app.ID)
	}

	// Insertion order survives the round trip.
	out, err := ListApplications(ctx, db, "u1", Filter{})
	if err != nil {
		t.Fatalf("ListApplications: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(out))
	}
	for i, id := range ids {
		if out[i].ID != id {
			t.Fatalf("row %d out of insertion order", i)
		}
	}

	// The documents FK references applications(id) and cascades on delete.
	doc, err := CreateDocument(ctx, db, ids[0], "cv.pdf", "cv", "s3://bucket/cv.pdf", 1024)
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	if err := DeleteApplication(ctx, db, ids[0], "u1"); err != nil {
		t.Fatalf("DeleteApplication: %v", err)
	}
	if _, err := GetDocument(ctx, db, doc.ID); err != ErrNotFound {
		t.Fatalf("document must be cascade-deleted, got %v", err)
	}
}
