// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Application
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When an application is not found — or exists but belongs to another
//     user — functions return ErrNotFound. The two cases are deliberately
//     indistinguishable so ownership information never leaks.
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// Ordering: list queries return rows in insertion order (SQLite's implicit
// rowid). Display ordering is applied by the service layer with a stable
// sort, so insertion order is what breaks ties.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/applicationtrack/applicationtrack-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// Filter narrows a list query. Zero-valued fields impose no constraint; all
// set fields combine with logical AND.
type Filter struct {
	// Search matches case-insensitively against company OR description.
	Search string
	// Company matches case-insensitively against the company name only.
	Company string
	// Status restricts to one status value (already validated by the caller).
	Status string
	// ContractType restricts to records whose tag set contains this value.
	ContractType string
	// DateFrom / DateTo are inclusive bounds on the application date.
	DateFrom *time.Time
	DateTo   *time.Time
}

// applyFilter composes the WHERE clause for f on top of q.
func applyFilter(q *gorm.DB, f Filter) *gorm.DB {
	// SQLite LIKE is case-insensitive for ASCII, which matches the UI's
	// search semantics.
	if f.Search != "" {
		like := "%" + escapeLike(f.Search) + "%"
		q = q.Where("(company LIKE ? ESCAPE '\\' OR description LIKE ? ESCAPE '\\')", like, like)
	}
	if f.Company != "" {
		q = q.Where("company LIKE ? ESCAPE '\\'", "%"+escapeLike(f.Company)+"%")
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ContractType != "" {
		// Tags are stored as a JSON array of strings; an exact element match
		// is a quoted substring match on the serialized form.
		q = q.Where("contract_tags LIKE ?", `%"`+f.ContractType+`"%`)
	}
	if f.DateFrom != nil {
		q = q.Where("applied_at >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		q = q.Where("applied_at <= ?", *f.DateTo)
	}
	return q
}

// escapeLike escapes the SQL LIKE wildcards in user-supplied search text.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}

// CreateApplication inserts a new application row. The caller is responsible
// for populating ID, UserID, Status, and timestamps.
func CreateApplication(ctx context.Context, db *gorm.DB, app *domain.Application) error {
	return db.WithContext(ctx).Create(app).Error
}

// GetApplication fetches a single application by its ID and owner. If the
// record does not exist or belongs to a different user, it returns ErrNotFound.
func GetApplication(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Application, error) {
	var app domain.Application
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// ListApplications returns the user's applications matching f, in insertion
// order. It returns an empty slice when nothing matches.
func ListApplications(ctx context.Context, db *gorm.DB, userID string, f Filter) ([]domain.Application, error) {
	var out []domain.Application
	q := db.WithContext(ctx).Where("user_id = ?", userID)
	err := applyFilter(q, f).
		Order("rowid asc").
		Find(&out).Error
	return out, err
}

// CountApplications returns the total number of applications owned by userID.
func CountApplications(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Application{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// UpdateApplication applies the given column updates to an application owned
// by userID. If no rows are affected (record missing or owned by someone
// else), it returns ErrNotFound. The updates map must include "updated_at".
func UpdateApplication(ctx context.Context, db *gorm.DB, id, userID string, updates map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.Application{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteApplication removes an application permanently. Deleting an id that
// does not exist (or is not owned by userID) returns ErrNotFound; callers
// treat that as "already gone", not a system fault.
func DeleteApplication(ctx context.Context, db *gorm.DB, id, userID string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Application{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListReminders returns the user's applications with a reminder scheduled at
// or before until, soonest first.
func ListReminders(ctx context.Context, db *gorm.DB, userID string, until time.Time) ([]domain.Application, error) {
	var out []domain.Application
	err := db.WithContext(ctx).
		Where("user_id = ? AND reminder_at IS NOT NULL AND reminder_at <= ?", userID, until).
		Order("reminder_at asc").
		Find(&out).Error
	return out, err
}
