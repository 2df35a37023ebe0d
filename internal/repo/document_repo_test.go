package repo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/applicationtrack/applicationtrack-backend/internal/domain"
)

func TestDocuments_CRUD(t *testing.T) {
	db := newApplicationRepoDB(t, &domain.Application{}, &domain.Document{})
	ctx := context.Background()

	app := seedApp(t, db, "u1", "Acme", "role", time.Now().UTC())

	d1, err := CreateDocument(ctx, db, app.ID, "cv.pdf", "cv", "s3://bucket/cv.pdf", 1024)
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	time.Sleep(5 * time.Millisecond) // distinct created_at for ordering
	d2, err := CreateDocument(ctx, db, app.ID, "letter.pdf", "cover_letter", "s3://bucket/letter.pdf", 2048)
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}

	out, err := ListDocuments(ctx, db, app.ID)
	if err != nil {
		t.Fatalf("ListDocuments: %v", err)
	}
	if len(out) != 2 || out[0].ID != d2.ID || out[1].ID != d1.ID {
		t.Fatalf("expected newest first, got %d rows", len(out))
	}

	got, err := GetDocument(ctx, db, d1.ID)
	if err != nil || got.FileName != "cv.pdf" {
		t.Fatalf("GetDocument: %+v, %v", got, err)
	}

	if err := DeleteDocument(ctx, db, d1.ID); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	if err := DeleteDocument(ctx, db, d1.ID); err != ErrNotFound {
		t.Fatalf("second delete must be ErrNotFound, got %v", err)
	}
	if _, err := GetDocument(ctx, db, uuid.NewString()); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListDocuments_EmptyIsNotAnError(t *testing.T) {
	db := newApplicationRepoDB(t, &domain.Application{}, &domain.Document{})
	out, err := ListDocuments(context.Background(), db, uuid.NewString())
	if err != nil || len(out) != 0 {
		t.Fatalf("want empty slice, got %d rows, err %v", len(out), err)
	}
}
