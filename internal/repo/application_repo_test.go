package repo

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/applicationtrack/applicationtrack-backend/internal/domain"
	"github.com/applicationtrack/applicationtrack-backend/internal/status"
)

func newApplicationRepoDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("application_repo_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Same pragma as OpenSQLite so the tests see the production FK behavior.
	db.Exec("PRAGMA foreign_keys=ON;")

	// Ensure the file handle is released before TempDir cleanup (Windows needs this).
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func seedApp(t *testing.T, db *gorm.DB, userID, company, description string, appliedAt time.Time, mut ...func(*domain.Application)) *domain.Application {
	t.Helper()
	now := time.Now().UTC()
	app := &domain.Application{
		ID:          uuid.NewString(),
		UserID:      userID,
		Company:     company,
		Description: description,
		AppliedAt:   appliedAt,
		Status:      string(status.Pending),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, m := range mut {
		m(app)
	}
	if err := CreateApplication(context.Background(), db, app); err != nil {
		t.Fatalf("seed application: %v", err)
	}
	return app
}

func TestCreateApplication_Error_NoTable(t *testing.T) {
	db := newApplicationRepoDB(t /* no migrations */)
	err := CreateApplication(context.Background(), db, &domain.Application{ID: uuid.NewString()})
	if err == nil {
		t.Fatalf("expected error creating without table")
	}
}

func TestGetApplication_OwnershipDoesNotLeak(t *testing.T) {
	db := newApplicationRepoDB(t, &domain.Application{})
	app := seedApp(t, db, "u1", "Acme", "Backend role", time.Now().UTC())

	got, err := GetApplication(context.Background(), db, app.ID, "u1")
	if err != nil {
		t.Fatalf("GetApplication: %v", err)
	}
	if got.Company != "Acme" {
		t.Fatalf("unexpected record: %+v", got)
	}

	// Someone else's record looks exactly like a missing one.
	if _, err := GetApplication(context.Background(), db, app.ID, "u2"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for foreign record, got %v", err)
	}
	if _, err := GetApplication(context.Background(), db, uuid.NewString(), "u1"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for missing record, got %v", err)
	}
}

func TestListApplications_InsertionOrderAndEmpty(t *testing.T) {
	db := newApplicationRepoDB(t, &domain.Application{})
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	a := seedApp(t, db, "u1", "Acme", "first", day)
	b := seedApp(t, db, "u1", "Beta", "second", day.Add(-48*time.Hour))
	seedApp(t, db, "u2", "Other", "foreign", day)

	out, err := ListApplications(context.Background(), db, "u1", Filter{})
	if err != nil {
		t.Fatalf("ListApplications: %v", err)
	}
	if len(out) != 2 || out[0].ID != a.ID || out[1].ID != b.ID {
		t.Fatalf("expected insertion order [a b], got %d rows", len(out))
	}

	out, err = ListApplications(context.Background(), db, "nobody", Filter{})
	if err != nil {
		t.Fatalf("ListApplications empty: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected no rows, got %d", len(out))
	}
}

func TestListApplications_Filters(t *testing.T) {
	db := newApplicationRepoDB(t, &domain.Application{})
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	acme := seedApp(t, db, "u1", "Acme Corp", "Go backend engineer", day)
	beta := seedApp(t, db, "u1", "Beta SAS", "Frontend react position", day.Add(-72*time.Hour), func(a *domain.Application) {
		a.Status = string(status.InterviewDone)
		a.ContractTags = []string{"CDI", "Remote"}
	})

	ctx := context.Background()

	cases := []struct {
		name string
		f    Filter
		want []string
	}{
		{"search matches description", Filter{Search: "react"}, []string{beta.ID}},
		{"search matches company", Filter{Search: "acme"}, []string{acme.ID}},
		{"company only", Filter{Company: "beta"}, []string{beta.ID}},
		{"status", Filter{Status: string(status.InterviewDone)}, []string{beta.ID}},
		{"contract tag", Filter{ContractType: "CDI"}, []string{beta.ID}},
		{"date from", Filter{DateFrom: &day}, []string{acme.ID}},
		{"no match", Filter{Search: "devops"}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := ListApplications(ctx, db, "u1", tc.f)
			if err != nil {
				t.Fatalf("ListApplications: %v", err)
			}
			if len(out) != len(tc.want) {
				t.Fatalf("got %d rows, want %d", len(out), len(tc.want))
			}
			for i, id := range tc.want {
				if out[i].ID != id {
					t.Fatalf("row %d: got %s want %s", i, out[i].ID, id)
				}
			}
		})
	}

	// DateTo is inclusive.
	to := day.Add(-72 * time.Hour)
	out, err := ListApplications(ctx, db, "u1", Filter{DateTo: &to})
	if err != nil {
		t.Fatalf("ListApplications: %v", err)
	}
	if len(out) != 1 || out[0].ID != beta.ID {
		t.Fatalf("DateTo should include the boundary day")
	}
}

func TestListApplications_SearchEscapesWildcards(t *testing.T) {
	db := newApplicationRepoDB(t, &domain.Application{})
	day := time.Now().UTC()

	lit := seedApp(t, db, "u1", "100% Remote Inc", "fully remote", day)
	seedApp(t, db, "u1", "Acme", "on site", day)

	out, err := ListApplications(context.Background(), db, "u1", Filter{Search: "100%"})
	if err != nil {
		t.Fatalf("ListApplications: %v", err)
	}
	if len(out) != 1 || out[0].ID != lit.ID {
		t.Fatalf("%% must match literally, got %d rows", len(out))
	}

	if out, _ := ListApplications(context.Background(), db, "u1", Filter{Search: "_cme"}); len(out) != 0 {
		t.Fatalf("_ must not act as a single-char wildcard")
	}
}

func TestUpdateApplication_RowsAffectedSemantics(t *testing.T) {
	db := newApplicationRepoDB(t, &domain.Application{})
	app := seedApp(t, db, "u1", "Acme", "role", time.Now().UTC())

	updates := map[string]any{"notes": "followed up", "updated_at": time.Now().UTC()}
	if err := UpdateApplication(context.Background(), db, app.ID, "u1", updates); err != nil {
		t.Fatalf("UpdateApplication: %v", err)
	}
	got, _ := GetApplication(context.Background(), db, app.ID, "u1")
	if got.Notes != "followed up" {
		t.Fatalf("notes not persisted: %+v", got)
	}

	if err := UpdateApplication(context.Background(), db, app.ID, "u2", updates); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound updating foreign record, got %v", err)
	}
	if err := UpdateApplication(context.Background(), db, uuid.NewString(), "u1", updates); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound updating missing record, got %v", err)
	}
}

func TestDeleteApplication(t *testing.T) {
	db := newApplicationRepoDB(t, &domain.Application{})
	app := seedApp(t, db, "u1", "Acme", "role", time.Now().UTC())

	if err := DeleteApplication(context.Background(), db, app.ID, "u2"); err != ErrNotFound {
		t.Fatalf("foreign delete must be ErrNotFound, got %v", err)
	}
	if err := DeleteApplication(context.Background(), db, app.ID, "u1"); err != nil {
		t.Fatalf("DeleteApplication: %v", err)
	}
	if err := DeleteApplication(context.Background(), db, app.ID, "u1"); err != ErrNotFound {
		t.Fatalf("second delete must be ErrNotFound, got %v", err)
	}
}

func TestListReminders_DueOnlySoonestFirst(t *testing.T) {
	db := newApplicationRepoDB(t, &domain.Application{})
	now := time.Now().UTC()

	soon := now.Add(24 * time.Hour)
	sooner := now.Add(2 * time.Hour)
	far := now.Add(30 * 24 * time.Hour)

	a := seedApp(t, db, "u1", "Acme", "r", now, func(x *domain.Application) { x.ReminderAt = &soon })
	b := seedApp(t, db, "u1", "Beta", "r", now, func(x *domain.Application) { x.ReminderAt = &sooner })
	seedApp(t, db, "u1", "Gamma", "r", now, func(x *domain.Application) { x.ReminderAt = &far })
	seedApp(t, db, "u1", "NoReminder", "r", now)

	out, err := ListReminders(context.Background(), db, "u1", now.Add(7*24*time.Hour))
	if err != nil {
		t.Fatalf("ListReminders: %v", err)
	}
	if len(out) != 2 || out[0].ID != b.ID || out[1].ID != a.ID {
		t.Fatalf("expected [sooner soon], got %d rows", len(out))
	}
}

func TestCountApplications(t *testing.T) {
	db := newApplicationRepoDB(t, &domain.Application{})
	now := time.Now().UTC()
	seedApp(t, db, "u1", "Acme", "r", now)
	seedApp(t, db, "u1", "Beta", "r", now)
	seedApp(t, db, "u2", "Other", "r", now)

	n, err := CountApplications(context.Background(), db, "u1")
	if err != nil || n != 2 {
		t.Fatalf("CountApplications = %d, %v; want 2, nil", n, err)
	}
}

func TestEscapeLike(t *testing.T) {
	cases := []struct{ in, want string }{
		{"plain", "plain"},
		{"50%", `50\%`},
		{"a_b", `a\_b`},
		{`back\slash`, `back\\slash`},
	}
	for _, c := range cases {
		if got := escapeLike(c.in); got != c.want {
			t.Errorf("escapeLike(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
